package corpus

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

const (
	extZstd = ".zst"
	extLZ4  = ".lz4"
)

// Open opens path for reading, decompressing .zst (zstd) and .lz4 (LZ4
// frame) files on the fly.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case extZstd:
		dec, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("zstd reader %s: %w", path, err)
		}
		return &stackedReader{Reader: dec, close: func() error {
			dec.Close()
			return f.Close()
		}}, nil
	case extLZ4:
		return &stackedReader{Reader: lz4.NewReader(f), close: f.Close}, nil
	default:
		return f, nil
	}
}

// stackedReader reads through a decompressor and closes the file beneath it.
type stackedReader struct {
	io.Reader
	close func() error
}

func (r *stackedReader) Close() error {
	if r.close == nil {
		return errors.New("corpus reader already closed")
	}
	err := r.close()
	r.close = nil
	return err
}
