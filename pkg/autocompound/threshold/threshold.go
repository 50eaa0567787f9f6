// Package threshold picks, per window size, the frequency cutoff above
// which n-grams count as compounds.
//
// The cutoff is expressed as a multiplier i of the standard deviation:
// a compound survives when its count exceeds mean + i*std. Multipliers are
// scanned upward from 0 while watching the fraction of the baseline
// (i = 0) survivors that each step removes. The accepted multiplier
// ratchets forward while that fraction still moves by more than Beta
// (relative) and the step lies within Alpha of the last accepted one.
// A scan that keeps moving until its final step found no stable point and
// falls back to 0.
package threshold

import (
	"fmt"
	"math"

	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
	"github.com/cognicore/autocompound/pkg/autocompound/ngram"
)

// Params configures the scan.
type Params struct {
	MaxThreshold float64 // exclusive upper bound of the multiplier scan
	Increments   float64 // scan step
	Alpha        float64 // continuity window, in multiplier units
	Beta         float64 // minimum relative change still counted as movement
}

// StepCount returns the number of multipliers scanned: 0, inc, 2*inc, ...
// strictly below MaxThreshold.
func (p Params) StepCount() int {
	if p.Increments <= 0 || p.MaxThreshold <= 0 {
		return 0
	}
	return int(math.Ceil(p.MaxThreshold / p.Increments))
}

// Step records one point of the scan.
type Step struct {
	Threshold   float64 `json:"threshold" yaml:"threshold"`
	Survivors   int     `json:"survivors" yaml:"survivors"`
	FracRemoved float64 `json:"frac_removed" yaml:"frac_removed"`
	Delta       float64 `json:"delta" yaml:"delta"`
}

// Selection is the outcome of scanning one frequency table.
type Selection struct {
	Mean      float64
	Std       float64
	Baseline  int     // distinct compounds above the mean
	Threshold float64 // accepted multiplier
	Cutoff    float64 // Mean + Threshold*Std
	Steps     []Step
	Survivors []ngram.Compound // ordered by phrase
	Drop      bool             // the cutoff removed nothing relative to the baseline
}

// Select scans table and returns the accepted threshold and survivors.
// An empty table has no distribution to scan and yields
// internalerr.ErrEmptyDistribution.
func Select(table *ngram.Table, p Params) (Selection, error) {
	mean, std, ok := table.Stats()
	if !ok {
		return Selection{}, internalerr.ErrEmptyDistribution
	}
	n := p.StepCount()
	if n == 0 {
		return Selection{}, fmt.Errorf("%w: threshold scan has no steps", internalerr.ErrInvalidConfig)
	}

	baseline := table.CountAbove(mean)
	steps := make([]Step, 0, n)

	var (
		lastFrac float64
		best     float64
		bestStep int
		foundAny bool
	)
	for k := 0; k < n; k++ {
		i := float64(k) * p.Increments
		survivors := table.CountAbove(mean + float64(i*std))

		var frac float64
		if baseline > 0 {
			frac = float64(baseline-survivors) / float64(baseline)
		}

		// 1 until a non-zero fraction has been removed
		delta := 1.0
		if lastFrac > 0 {
			delta = (frac - lastFrac) / lastFrac
		}

		if !foundAny || best+p.Alpha >= i {
			if delta > p.Beta {
				foundAny = true
				best = i
				bestStep = k
			}
		}
		lastFrac = frac

		steps = append(steps, Step{Threshold: i, Survivors: survivors, FracRemoved: frac, Delta: delta})
	}

	if bestStep == n-1 {
		best = 0
	}

	cutoff := mean + float64(best*std)
	survivors := table.Above(cutoff)
	return Selection{
		Mean:      mean,
		Std:       std,
		Baseline:  baseline,
		Threshold: best,
		Cutoff:    cutoff,
		Steps:     steps,
		Survivors: survivors,
		Drop:      len(survivors) == baseline,
	}, nil
}
