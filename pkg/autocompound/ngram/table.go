package ngram

import (
	"math"
	"sort"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// Compound is an ordered tuple of consecutive tokens. Two compounds are
// the same when their tokens are equal element by element.
type Compound []string

// Key returns the space-joined phrase. Tokens never contain whitespace,
// so Key is a unique identity for the tuple and doubles as the surface
// text removed from sub-sentences.
func (c Compound) Key() string {
	return strings.Join(c, " ")
}

func (c Compound) String() string {
	return c.Key()
}

// Parse splits a phrase back into a compound.
func Parse(phrase string) Compound {
	return Compound(strings.Fields(phrase))
}

// Entry pairs a compound with its frequency.
type Entry struct {
	Compound Compound
	Count    int
}

// Table maintains n-gram frequencies for a single window size. It also
// remembers the order in which compounds were first seen.
type Table struct {
	size   int
	counts map[string]int
	order  []string
}

// NewTable creates an empty table for compounds of the given size.
func NewTable(size int) *Table {
	return &Table{size: size, counts: make(map[string]int)}
}

// Size returns the window size the table was built for.
func (t *Table) Size() int {
	return t.size
}

// Add records one occurrence of c.
func (t *Table) Add(c Compound) {
	t.addKey(c.Key(), 1)
}

func (t *Table) addKey(key string, n int) {
	if _, ok := t.counts[key]; !ok {
		t.order = append(t.order, key)
	}
	t.counts[key] += n
}

// Count returns the frequency of c.
func (t *Table) Count(c Compound) int {
	return t.counts[c.Key()]
}

// Len returns the number of distinct compounds.
func (t *Table) Len() int {
	return len(t.counts)
}

// Total returns the number of occurrences across all compounds.
func (t *Table) Total() int {
	total := 0
	for _, n := range t.counts {
		total += n
	}
	return total
}

// Merge adds every count of other into t. Compounds new to t are appended
// in the order other first saw them.
func (t *Table) Merge(other *Table) {
	for _, k := range other.order {
		t.addKey(k, other.counts[k])
	}
}

// Counts returns the frequencies in first-seen order.
func (t *Table) Counts() []int {
	out := make([]int, len(t.order))
	for i, k := range t.order {
		out[i] = t.counts[k]
	}
	return out
}

// Entries returns all compounds with their counts, ordered by phrase.
func (t *Table) Entries() []Entry {
	keys := t.sortedKeys()
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Compound: Parse(k), Count: t.counts[k]}
	}
	return out
}

// Above returns, ordered by phrase, the compounds whose count is strictly
// greater than cutoff.
func (t *Table) Above(cutoff float64) []Compound {
	var out []Compound
	for _, k := range t.sortedKeys() {
		if float64(t.counts[k]) > cutoff {
			out = append(out, Parse(k))
		}
	}
	return out
}

// CountAbove returns how many distinct compounds have a count strictly
// greater than cutoff.
func (t *Table) CountAbove(cutoff float64) int {
	n := 0
	for _, c := range t.counts {
		if float64(c) > cutoff {
			n++
		}
	}
	return n
}

// Stats returns the mean and population standard deviation of the
// counts. ok is false for an empty table, whose statistics are undefined.
//
// The deviation is computed in two passes over the counts in first-seen
// order, summing squared deviations pairwise in blocks of eight. Counts
// that land exactly on mean + i*std therefore compare the same way on
// every run and for every worker count.
func (t *Table) Stats() (mean, std float64, ok bool) {
	if len(t.order) == 0 {
		return 0, 0, false
	}
	values := make([]float64, len(t.order))
	for i, k := range t.order {
		values[i] = float64(t.counts[k])
	}
	// integer counts: the sum is exact in any order
	mean = stat.Mean(values, nil)
	for i, v := range values {
		d := v - mean
		values[i] = float64(d * d)
	}
	std = math.Sqrt(pairwiseSum(values) / float64(len(values)))
	return mean, std, true
}

const pairwiseBlock = 128

// pairwiseSum adds xs with eight interleaved accumulators per block of up
// to pairwiseBlock values, halving longer inputs on multiples of eight.
func pairwiseSum(xs []float64) float64 {
	n := len(xs)
	switch {
	case n < 8:
		var sum float64
		for _, x := range xs {
			sum += x
		}
		return sum
	case n <= pairwiseBlock:
		var r [8]float64
		copy(r[:], xs[:8])
		i := 8
		for ; i < n-n%8; i += 8 {
			for j := range r {
				r[j] += xs[i+j]
			}
		}
		sum := ((r[0] + r[1]) + (r[2] + r[3])) + ((r[4] + r[5]) + (r[6] + r[7]))
		for ; i < n; i++ {
			sum += xs[i]
		}
		return sum
	default:
		half := n / 2
		half -= half % 8
		return pairwiseSum(xs[:half]) + pairwiseSum(xs[half:])
	}
}

func (t *Table) sortedKeys() []string {
	keys := make([]string, 0, len(t.counts))
	for k := range t.counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
