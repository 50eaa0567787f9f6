package autocompound

import (
	"time"

	"github.com/cognicore/autocompound/pkg/autocompound/ingest"
	"github.com/cognicore/autocompound/pkg/autocompound/ngram"
)

// Result is the outcome of one extraction run.
type Result struct {
	// Compounds is the union of survivors of every window that was not
	// dropped, ordered by phrase.
	Compounds []ngram.Compound `json:"compounds" yaml:"compounds"`

	// Thresholds holds the accepted multiplier per window size. Skipped
	// windows have no entry.
	Thresholds map[int]float64 `json:"thresholds" yaml:"thresholds"`

	// Drops marks window sizes whose cutoff removed nothing beyond the mean.
	Drops map[int]bool `json:"drops" yaml:"drops"`

	// Trace lists every scan step of every window, largest window first.
	Trace []TracePoint `json:"trace" yaml:"trace"`

	Passes       []Pass `json:"passes" yaml:"passes"`
	SubSentences int    `json:"sub_sentences" yaml:"sub_sentences"`
}

// Phrases returns the compounds as space-joined phrases.
func (r *Result) Phrases() []string {
	out := make([]string, len(r.Compounds))
	for i, c := range r.Compounds {
		out[i] = c.Key()
	}
	return out
}

// Joiner returns a joiner that merges the result's compounds into single
// tokens glued by sep.
func (r *Result) Joiner(sep string) *ingest.Joiner {
	parts := make([][]string, len(r.Compounds))
	for i, c := range r.Compounds {
		parts[i] = c
	}
	return ingest.NewJoiner(parts, sep)
}

// TracePoint is one step of a threshold scan.
type TracePoint struct {
	Context     int     `json:"context" yaml:"context"`
	Threshold   float64 `json:"threshold" yaml:"threshold"`
	Total       int     `json:"total" yaml:"total"`
	FracRemoved float64 `json:"frac_removed" yaml:"frac_removed"`
	Delta       float64 `json:"delta" yaml:"delta"`
}

// Pass summarizes one window size.
type Pass struct {
	Context   int     `json:"context" yaml:"context"`
	Windows   int     `json:"windows" yaml:"windows"`
	Rejected  int     `json:"rejected" yaml:"rejected"`
	Distinct  int     `json:"distinct" yaml:"distinct"`
	Mean      float64 `json:"mean" yaml:"mean"`
	Std       float64 `json:"std" yaml:"std"`
	Baseline  int     `json:"baseline" yaml:"baseline"`
	Threshold float64 `json:"threshold" yaml:"threshold"`
	Survivors int     `json:"survivors" yaml:"survivors"`
	Dropped   bool    `json:"dropped" yaml:"dropped"`

	// Skipped is the reason the window produced no selection; empty otherwise.
	Skipped string        `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Err     error         `json:"-" yaml:"-" cbor:"-" msgpack:"-"`
	Elapsed time.Duration `json:"elapsed_ns" yaml:"elapsed_ns"`
}
