package ingest

import "strings"

// Joiner rewrites token streams so that known compounds become single
// tokens, e.g. [new york city hall] -> [new_york_city hall].
type Joiner struct {
	known  map[string]struct{}
	maxLen int
	sep    string
}

// NewJoiner creates a joiner for the given compounds, each a sequence of
// tokens. sep glues the parts of a matched compound; "_" when empty.
func NewJoiner(compounds [][]string, sep string) *Joiner {
	if sep == "" {
		sep = "_"
	}
	j := &Joiner{known: make(map[string]struct{}, len(compounds)), maxLen: 1, sep: sep}
	for _, c := range compounds {
		if len(c) < 2 {
			continue
		}
		j.known[strings.Join(c, " ")] = struct{}{}
		if len(c) > j.maxLen {
			j.maxLen = len(c)
		}
	}
	return j
}

// Join applies greedy longest-match from left to right.
func (j *Joiner) Join(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for i := 0; i < len(tokens); {
		n := min(j.maxLen, len(tokens)-i)
		for ; n >= 2; n-- {
			if _, ok := j.known[strings.Join(tokens[i:i+n], " ")]; ok {
				break
			}
		}
		if n < 2 {
			out = append(out, tokens[i])
			i++
			continue
		}
		out = append(out, strings.Join(tokens[i:i+n], j.sep))
		i += n
	}
	return out
}
