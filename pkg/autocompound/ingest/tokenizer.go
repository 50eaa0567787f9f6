package ingest

import (
	"strings"
	"unicode"

	lru "github.com/hashicorp/golang-lru/v2"
)

// contractions are fused forms split by Treebank-style word tokenizers.
// Only the apostrophe-free ones can survive sentence splitting.
var contractions = map[string][2]string{
	"cannot": {"can", "not"},
	"gimme":  {"gim", "me"},
	"gonna":  {"gon", "na"},
	"gotta":  {"got", "ta"},
	"lemme":  {"lem", "me"},
	"wanna":  {"wan", "na"},
}

// Tokenizer turns sub-sentences into word tokens. It is safe for
// concurrent use.
type Tokenizer struct {
	cache *lru.Cache[string, []string]
}

// NewTokenizer creates a tokenizer memoizing up to cacheSize
// sub-sentences. A cacheSize of 0 disables memoization.
func NewTokenizer(cacheSize int) *Tokenizer {
	t := &Tokenizer{}
	if cacheSize > 0 {
		// lru.New only fails for non-positive sizes
		t.cache, _ = lru.New[string, []string](cacheSize)
	}
	return t
}

// Tokenize splits a sub-sentence into word tokens, dropping tokens made
// only of digits. The returned slice must not be modified.
func (t *Tokenizer) Tokenize(sentence string) []string {
	if t.cache == nil {
		return tokenize(sentence)
	}
	if tokens, ok := t.cache.Get(sentence); ok {
		return tokens
	}
	tokens := tokenize(sentence)
	t.cache.Add(sentence, tokens)
	return tokens
}

// TokenizeAll tokenizes every sentence, preserving order.
func (t *Tokenizer) TokenizeAll(sentences []string) [][]string {
	out := make([][]string, len(sentences))
	for i, s := range sentences {
		out[i] = t.Tokenize(s)
	}
	return out
}

func tokenize(sentence string) []string {
	fields := strings.Fields(sentence)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if parts, ok := contractions[f]; ok {
			tokens = append(tokens, parts[0], parts[1])
			continue
		}
		if IsNumeric(f) {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

// IsNumeric reports whether s is non-empty and made only of digits.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
