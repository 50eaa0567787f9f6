// autocompound extracts multi-word compounds from a text corpus and writes
// them as a report.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/cognicore/autocompound/pkg/autocompound"
	"github.com/cognicore/autocompound/pkg/autocompound/config"
	"github.com/cognicore/autocompound/pkg/autocompound/corpus"
	"github.com/cognicore/autocompound/pkg/autocompound/ingest"
	"github.com/cognicore/autocompound/pkg/autocompound/metrics"
	"github.com/cognicore/autocompound/pkg/autocompound/report"
	"github.com/cognicore/autocompound/pkg/autocompound/store"
	"github.com/cognicore/autocompound/pkg/autocompound/store/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts == nil {
		return nil
	}

	logger, closer, err := newLogger(opts, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	loader := config.Loader{
		ConfigPath: opts.configPath,
		EnvFile:    opts.envFile,
		Override:   opts.override,
	}
	comps, err := loader.Load()
	if err != nil {
		return err
	}

	src := corpus.Source{
		Path:   opts.corpusPath,
		Kind:   opts.format,
		Field:  opts.field,
		Query:  opts.query,
		Logger: logger,
	}
	blocks, err := corpus.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("load corpus: %w", err)
	}
	fingerprint := corpus.Fingerprint(blocks)
	logger.Info("corpus loaded", "path", opts.corpusPath, "blocks", len(blocks), "fingerprint", fingerprint[:16])

	var history store.Store
	if opts.historyPath != "" {
		history, err = sqlite.OpenSQLite(ctx, opts.historyPath)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer history.Close()
	}

	var rep *report.Report
	reused := false
	if opts.reuse {
		prev, found, err := history.LatestByFingerprint(ctx, fingerprint)
		if err != nil {
			return fmt.Errorf("look up history: %w", err)
		}
		if found && prev.Config.Equal(comps.Config) {
			logger.Info("reusing previous run", "run_id", prev.ID, "started_at", prev.StartedAt)
			rep = prev.Report()
			reused = true
		}
	}

	if rep == nil {
		rep, err = extract(ctx, logger, comps, blocks, opts.metricsFile)
		if err != nil {
			return err
		}
		rep.Fingerprint = fingerprint
		rep.RunID = store.NewIDSource().New(rep.CreatedAt)

		if history != nil {
			if err := history.SaveRun(ctx, store.FromReport(rep.RunID, opts.corpusPath, rep)); err != nil {
				return fmt.Errorf("record run: %w", err)
			}
		}
	}

	if err := writeReport(opts, stdout, rep); err != nil {
		return err
	}
	if opts.rewrite != "" {
		if err := writeRewritten(opts.rewrite, blocks, rep.Compounds); err != nil {
			return err
		}
	}
	logger.Info(report.Summary(rep), "run_id", rep.RunID, "reused", reused)
	return nil
}

func extract(ctx context.Context, logger *slog.Logger, comps *config.Components, blocks []*string, metricsFile string) (*report.Report, error) {
	var rec *metrics.Recorder
	if metricsFile != "" {
		rec = metrics.NewRecorder()
	}

	ac, err := autocompound.New(comps.Config, autocompound.Options{
		Logger:    logger,
		Stopwords: comps.Stoplist,
		Metrics:   rec,
	})
	if err != nil {
		return nil, err
	}

	started := time.Now()
	res, err := ac.ProcessBlocks(ctx, blocks)
	if err != nil {
		return nil, err
	}
	rep := report.New(comps.Config, res)
	rep.CreatedAt = started.UTC()

	if err := rec.WriteTextfile(metricsFile); err != nil {
		return nil, fmt.Errorf("write metrics: %w", err)
	}
	return rep, nil
}

func writeReport(opts *options, stdout io.Writer, rep *report.Report) error {
	if opts.output == "" {
		return report.Write(stdout, opts.outFormat, rep)
	}

	f, err := os.Create(opts.output)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.Write(f, opts.outFormat, rep); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}

// writeRewritten writes every sub-sentence of the corpus, one per line,
// with the extracted compounds glued into single tokens.
func writeRewritten(path string, blocks []*string, phrases []string) error {
	compounds := make([][]string, len(phrases))
	for i, p := range phrases {
		compounds[i] = strings.Fields(p)
	}
	joiner := ingest.NewJoiner(compounds, "_")
	tokenizer := ingest.NewTokenizer(0)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create rewritten corpus: %w", err)
	}
	bw := bufio.NewWriter(f)
	for _, s := range ingest.SplitSentences(blocks) {
		bw.WriteString(strings.Join(joiner.Join(tokenizer.Tokenize(s)), " "))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write rewritten corpus: %w", err)
	}
	return f.Close()
}
