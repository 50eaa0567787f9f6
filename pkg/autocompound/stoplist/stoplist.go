package stoplist

import (
	"sort"
	"strings"

	"github.com/kljensen/snowball/english"
)

// Source names accepted by ByName.
const (
	SourceEnglish  = "english"
	SourceSnowball = "snowball"
	SourceNone     = "none"
)

// Manager holds the stopword set consulted by the n-gram boundary filter.
// A Manager is not safe for concurrent mutation; the extractor clones it
// at construction and only reads from its copy afterwards.
type Manager struct {
	stops    map[string]struct{}
	fallback func(string) bool
}

// NewManager creates a new stoplist manager
func NewManager(initialStops []string) *Manager {
	m := &Manager{stops: make(map[string]struct{}, len(initialStops))}
	m.Add(initialStops...)
	return m
}

// IsStop checks if a token is a stopword
func (m *Manager) IsStop(token string) bool {
	if m == nil {
		return false
	}
	if _, ok := m.stops[token]; ok {
		return true
	}
	return m.fallback != nil && m.fallback(token)
}

// Add adds tokens to the stoplist. Tokens are lowercased and trimmed;
// blanks are ignored.
func (m *Manager) Add(tokens ...string) {
	for _, t := range tokens {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		m.stops[t] = struct{}{}
	}
}

// Remove removes a token from the stoplist. Words matched by a fallback
// predicate (see Snowball) cannot be removed.
func (m *Manager) Remove(token string) {
	delete(m.stops, strings.ToLower(token))
}

// All returns the explicit stopwords in sorted order.
func (m *Manager) All() []string {
	result := make([]string, 0, len(m.stops))
	for s := range m.stops {
		result = append(result, s)
	}
	sort.Strings(result)
	return result
}

// Len returns the number of explicit stopwords.
func (m *Manager) Len() int {
	return len(m.stops)
}

// Clone returns an independent copy sharing only the fallback predicate.
func (m *Manager) Clone() *Manager {
	c := &Manager{
		stops:    make(map[string]struct{}, len(m.stops)),
		fallback: m.fallback,
	}
	for s := range m.stops {
		c.stops[s] = struct{}{}
	}
	return c
}

// English returns a fresh manager holding the classic English stopword
// list used by NLTK. Each call allocates a new set.
func English() *Manager {
	return NewManager(englishTerms())
}

// Snowball returns a manager backed by the Snowball English stopword
// predicate, plus any explicit terms added later.
func Snowball() *Manager {
	m := NewManager(nil)
	m.fallback = english.IsStopWord
	return m
}

// ByName resolves a built-in source name. The second return is false for
// unknown names.
func ByName(name string) (*Manager, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case SourceEnglish, "":
		return English(), true
	case SourceSnowball:
		return Snowball(), true
	case SourceNone:
		return NewManager(nil), true
	default:
		return nil, false
	}
}

func englishTerms() []string {
	return []string{
		"i", "me", "my", "myself", "we", "our", "ours", "ourselves",
		"you", "you're", "you've", "you'll", "you'd", "your", "yours",
		"yourself", "yourselves", "he", "him", "his", "himself", "she",
		"she's", "her", "hers", "herself", "it", "it's", "its", "itself",
		"they", "them", "their", "theirs", "themselves", "what", "which",
		"who", "whom", "this", "that", "that'll", "these", "those", "am",
		"is", "are", "was", "were", "be", "been", "being", "have", "has",
		"had", "having", "do", "does", "did", "doing", "a", "an", "the",
		"and", "but", "if", "or", "because", "as", "until", "while", "of",
		"at", "by", "for", "with", "about", "against", "between", "into",
		"through", "during", "before", "after", "above", "below", "to",
		"from", "up", "down", "in", "out", "on", "off", "over", "under",
		"again", "further", "then", "once", "here", "there", "when",
		"where", "why", "how", "all", "any", "both", "each", "few", "more",
		"most", "other", "some", "such", "no", "nor", "not", "only", "own",
		"same", "so", "than", "too", "very", "s", "t", "can", "will",
		"just", "don", "don't", "should", "should've", "now", "d", "ll",
		"m", "o", "re", "ve", "y", "ain", "aren", "aren't", "couldn",
		"couldn't", "didn", "didn't", "doesn", "doesn't", "hadn", "hadn't",
		"hasn", "hasn't", "haven", "haven't", "isn", "isn't", "ma",
		"mightn", "mightn't", "mustn", "mustn't", "needn", "needn't",
		"shan", "shan't", "shouldn", "shouldn't", "wasn", "wasn't",
		"weren", "weren't", "won", "won't", "wouldn", "wouldn't",
	}
}
