// Package autocompound extracts multi-word compounds from raw text by
// counting n-grams over decreasing window sizes and keeping, for each size,
// the phrases whose frequency stands out from the rest of the distribution.
//
// Longer compounds are mined first. Before each shorter window, the text
// of every compound accepted so far is cut out of the corpus, so a phrase
// is not counted again through its own fragments.
package autocompound

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"strings"
	"time"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/cognicore/autocompound/pkg/autocompound/config"
	"github.com/cognicore/autocompound/pkg/autocompound/ingest"
	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
	"github.com/cognicore/autocompound/pkg/autocompound/metrics"
	"github.com/cognicore/autocompound/pkg/autocompound/ngram"
	"github.com/cognicore/autocompound/pkg/autocompound/stoplist"
	"github.com/cognicore/autocompound/pkg/autocompound/threshold"
)

// Options configures an AutoCompounder beyond its Config.
type Options struct {
	// Logger receives progress output. Nil discards it.
	Logger *slog.Logger

	// Stopwords replaces the base stoplist named by Config.Stoplist.
	// It is cloned; Config.ExtraStops are still added.
	Stopwords *stoplist.Manager

	// Metrics, when set, records every pass and run.
	Metrics *metrics.Recorder
}

// AutoCompounder is safe for concurrent use; each Process call works on
// its own copy of the corpus.
type AutoCompounder struct {
	cfg       config.Config
	stops     *stoplist.Manager
	tokenizer *ingest.Tokenizer
	logger    *slog.Logger
	metrics   *metrics.Recorder
}

// New validates cfg and builds an extractor.
func New(cfg config.Config, opts Options) (*AutoCompounder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("autocompound: %w", err)
	}

	var stops *stoplist.Manager
	if opts.Stopwords != nil {
		stops = opts.Stopwords.Clone()
		stops.Add(cfg.ExtraStops...)
	} else {
		var err error
		if stops, err = config.NewStoplist(cfg); err != nil {
			return nil, fmt.Errorf("autocompound: %w", err)
		}
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &AutoCompounder{
		cfg:       cfg,
		stops:     stops,
		tokenizer: ingest.NewTokenizer(cfg.TokenCacheSize),
		logger:    logger,
		metrics:   opts.Metrics,
	}, nil
}

// Config returns the configuration the extractor was built with.
func (a *AutoCompounder) Config() config.Config {
	return a.cfg
}

// IsStop reports whether token is in the extractor's stoplist.
func (a *AutoCompounder) IsStop(token string) bool {
	return a.stops.IsStop(token)
}

// Process extracts compounds from texts.
func (a *AutoCompounder) Process(ctx context.Context, texts []string) (*Result, error) {
	return a.ProcessBlocks(ctx, ingest.Blocks(texts...))
}

// ProcessBlocks extracts compounds from blocks. Nil blocks stand for
// missing entries and are skipped.
//
// Windows that yield no countable n-grams are recorded on Result.Passes
// and otherwise ignored. Only cancellation of ctx is returned as an error.
func (a *AutoCompounder) ProcessBlocks(ctx context.Context, blocks []*string) (*Result, error) {
	start := time.Now()
	sentences := ingest.SplitSentences(blocks)
	a.logger.Info("extracting compounds",
		"sub_sentences", len(sentences),
		"max_context", a.cfg.MaxContext)

	reg := threshold.NewRegistry()
	union := mapset.NewThreadUnsafeSet[string]()
	var removed []string
	res := &Result{SubSentences: len(sentences)}

	for size := a.cfg.MaxContext; size >= 2; size-- {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("window %d: %w", size, err)
		}

		// Cut out everything accepted so far, again on every pass, so that
		// text joined by an earlier cut is cut as well.
		for _, phrase := range removed {
			for i, s := range sentences {
				sentences[i] = strings.ReplaceAll(s, phrase, "")
			}
		}

		passStart := time.Now()
		pass, sel, err := a.runPass(ctx, sentences, size)
		pass.Elapsed = time.Since(passStart)
		if err != nil {
			if ctx.Err() != nil {
				return nil, fmt.Errorf("window %d: %w", size, err)
			}
			pass.Skipped = err.Error()
			pass.Err = err
			res.Passes = append(res.Passes, pass)
			a.metrics.ObservePass(size, metrics.OutcomeSkipped, 0, 0, pass.Elapsed)
			a.logger.Debug("window skipped", "context", size, "reason", err)
			continue
		}

		if err := reg.Record(size, sel.Threshold, sel.Drop); err != nil {
			return nil, fmt.Errorf("window %d: %w", size, err)
		}
		for _, st := range sel.Steps {
			res.Trace = append(res.Trace, TracePoint{
				Context:     size,
				Threshold:   st.Threshold,
				Total:       st.Survivors,
				FracRemoved: st.FracRemoved,
				Delta:       st.Delta,
			})
		}
		for _, c := range sel.Survivors {
			removed = append(removed, c.Key())
			if !sel.Drop {
				union.Add(c.Key())
			}
		}
		res.Passes = append(res.Passes, pass)

		outcome := metrics.OutcomeAccepted
		if sel.Drop {
			outcome = metrics.OutcomeDropped
		}
		a.metrics.ObservePass(size, outcome, sel.Threshold, len(sel.Survivors), pass.Elapsed)
		a.logger.Info("window pass",
			"context", size,
			"distinct", pass.Distinct,
			"threshold", sel.Threshold,
			"survivors", len(sel.Survivors),
			"dropped", sel.Drop)
	}

	phrases := union.ToSlice()
	sort.Strings(phrases)
	res.Compounds = make([]ngram.Compound, len(phrases))
	for i, p := range phrases {
		res.Compounds[i] = ngram.Parse(p)
	}
	res.Thresholds = reg.Thresholds()
	res.Drops = reg.Drops()

	a.metrics.ObserveRun()
	a.logger.Info("extraction complete",
		"compounds", len(res.Compounds),
		"windows", reg.Len(),
		"elapsed", time.Since(start))
	return res, nil
}

// runPass counts one window size and selects its threshold.
func (a *AutoCompounder) runPass(ctx context.Context, sentences []string, size int) (Pass, threshold.Selection, error) {
	pass := Pass{Context: size}

	tokens := a.tokenizer.TokenizeAll(sentences)
	table, tally, err := ngram.Count(ctx, tokens, size, a.stops.IsStop, a.workers())
	if err != nil {
		return pass, threshold.Selection{}, err
	}
	pass.Windows = tally.Windows
	pass.Rejected = tally.Rejected
	pass.Distinct = table.Len()

	if table.Len() == 0 && tally.Windows > 0 {
		return pass, threshold.Selection{}, internalerr.ErrDegenerateStopwordFilter
	}

	sel, err := threshold.Select(table, a.params())
	if err != nil {
		return pass, threshold.Selection{}, err
	}
	pass.Mean = sel.Mean
	pass.Std = sel.Std
	pass.Baseline = sel.Baseline
	pass.Threshold = sel.Threshold
	pass.Survivors = len(sel.Survivors)
	pass.Dropped = sel.Drop
	return pass, sel, nil
}

func (a *AutoCompounder) params() threshold.Params {
	return threshold.Params{
		MaxThreshold: a.cfg.MaxThreshold,
		Increments:   a.cfg.ThresholdIncrements,
		Alpha:        a.cfg.Alpha,
		Beta:         a.cfg.Beta,
	}
}

func (a *AutoCompounder) workers() int {
	if a.cfg.Workers == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return a.cfg.Workers
}

// IsSkipped reports whether err marks a window that produced no
// distribution to threshold.
func IsSkipped(err error) bool {
	return errors.Is(err, internalerr.ErrEmptyDistribution) ||
		errors.Is(err, internalerr.ErrDegenerateStopwordFilter)
}
