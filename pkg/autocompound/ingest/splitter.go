package ingest

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// SplitSentences flattens raw text blocks into lowercase sub-sentences.
// Nil blocks are skipped. Each block is split on every rune that is not
// a letter, digit or whitespace; fragments are trimmed, lowercased and
// dropped when empty.
func SplitSentences(blocks []*string) []string {
	var out []string
	for _, b := range blocks {
		if b == nil {
			continue
		}
		for _, frag := range strings.FieldsFunc(norm.NFC.String(*b), isBoundary) {
			frag = strings.ToLower(strings.TrimSpace(frag))
			if frag != "" {
				out = append(out, frag)
			}
		}
	}
	return out
}

// Blocks converts plain strings into the nullable block form accepted by
// SplitSentences. Every entry is present.
func Blocks(texts ...string) []*string {
	out := make([]*string, len(texts))
	for i := range texts {
		out[i] = &texts[i]
	}
	return out
}

func isBoundary(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}
