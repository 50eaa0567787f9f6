package corpus

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// fingerprintKey separates corpus digests from any other BLAKE3 use.
var fingerprintKey = [32]byte{
	'a', 'u', 't', 'o', 'c', 'o', 'm', 'p', 'o', 'u', 'n', 'd', '.',
	'c', 'o', 'r', 'p', 'u', 's', 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// Fingerprint returns a hex BLAKE3 digest identifying blocks. Order
// matters, and a nil block differs from an empty one.
func Fingerprint(blocks []*string) string {
	h, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		// only returned for keys that are not 32 bytes
		panic("corpus: fingerprint key: " + err.Error())
	}
	var lenBuf [binary.MaxVarintLen64]byte
	for _, b := range blocks {
		if b == nil {
			h.Write([]byte{0})
			continue
		}
		h.Write([]byte{1})
		n := binary.PutUvarint(lenBuf[:], uint64(len(*b)))
		h.Write(lenBuf[:n])
		h.Write([]byte(*b))
	}
	return hex.EncodeToString(h.Sum(nil))
}
