package ngram

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/cognicore/autocompound/pkg/autocompound/ingest"
)

// cancelCheckEvery is how many sentences a worker counts between context checks.
const cancelCheckEvery = 1024

// StopFunc reports whether a token is a stopword.
type StopFunc func(token string) bool

// Tally summarizes the boundary filter for one pass.
type Tally struct {
	Windows  int // candidate windows enumerated
	Rejected int // windows whose first or last token is a stopword or numeric
}

// Accepted returns the number of windows that reached the table.
func (t Tally) Accepted() int {
	return t.Windows - t.Rejected
}

func (t *Tally) add(o Tally) {
	t.Windows += o.Windows
	t.Rejected += o.Rejected
}

// Count enumerates every window of size tokens in each sentence and tallies
// the windows whose boundary tokens are neither stopwords nor numeric.
// Interior tokens are not restricted. With workers > 1 the sentences are
// split into contiguous chunks counted concurrently and merged afterwards;
// the result does not depend on the worker count.
func Count(ctx context.Context, sentences [][]string, size int, isStop StopFunc, workers int) (*Table, Tally, error) {
	if isStop == nil {
		isStop = func(string) bool { return false }
	}
	if workers <= 1 || len(sentences) < 2 {
		table := NewTable(size)
		tally, err := countChunk(ctx, table, sentences, size, isStop)
		return table, tally, err
	}

	chunk := (len(sentences) + workers - 1) / workers
	var parts []*Table
	var tallies []Tally
	for lo := 0; lo < len(sentences); lo += chunk {
		parts = append(parts, NewTable(size))
		tallies = append(tallies, Tally{})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range parts {
		lo := i * chunk
		hi := min(lo+chunk, len(sentences))
		g.Go(func() error {
			tally, err := countChunk(gctx, parts[i], sentences[lo:hi], size, isStop)
			tallies[i] = tally
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, Tally{}, err
	}

	table := NewTable(size)
	var tally Tally
	for i, p := range parts {
		table.Merge(p)
		tally.add(tallies[i])
	}
	return table, tally, nil
}

func countChunk(ctx context.Context, table *Table, sentences [][]string, size int, isStop StopFunc) (Tally, error) {
	var tally Tally
	if size < 1 {
		return tally, nil
	}
	for i, words := range sentences {
		if i%cancelCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return tally, err
			}
		}
		for lo := 0; lo+size <= len(words); lo++ {
			tally.Windows++
			first, last := words[lo], words[lo+size-1]
			if isStop(first) || ingest.IsNumeric(first) || isStop(last) || ingest.IsNumeric(last) {
				tally.Rejected++
				continue
			}
			table.addKey(strings.Join(words[lo:lo+size], " "), 1)
		}
	}
	return tally, nil
}
