package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/cognicore/autocompound/pkg/autocompound/config"
	"github.com/cognicore/autocompound/pkg/autocompound/corpus"
	"github.com/cognicore/autocompound/pkg/autocompound/report"
)

type options struct {
	corpusPath string

	configPath string
	envFile    string

	format string
	field  string
	query  string

	output    string
	outFormat string
	rewrite   string

	historyPath string
	reuse       bool
	metricsFile string

	logLevel  string
	logFormat string
	logFile   string

	// tuning flags, applied only when set
	maxContext          int
	alpha               float64
	beta                float64
	maxThreshold        float64
	thresholdIncrements float64
	stoplist            string
	extraStops          []string
	workers             int

	flags *pflag.FlagSet
}

func newFlagSet(opts *options) *pflag.FlagSet {
	fs := pflag.NewFlagSet("autocompound", pflag.ContinueOnError)
	fs.SortFlags = false

	fs.StringVarP(&opts.configPath, "config", "c", "", "config file (yaml, json, jsonc, toml, env)")
	fs.StringVar(&opts.envFile, "env-file", "", ".env file loaded before the config")

	fs.IntVar(&opts.maxContext, "max-context", 0, "largest n-gram window")
	fs.Float64Var(&opts.alpha, "alpha", 0, "threshold continuity window")
	fs.Float64Var(&opts.beta, "beta", 0, "minimum relative change in removed fraction")
	fs.Float64Var(&opts.maxThreshold, "max-threshold", 0, "exclusive upper bound of the threshold scan")
	fs.Float64Var(&opts.thresholdIncrements, "threshold-increments", 0, "threshold scan step")
	fs.StringVar(&opts.stoplist, "stoplist", "", "base stoplist: english, snowball, none or a YAML file")
	fs.StringSliceVar(&opts.extraStops, "extra-stops", nil, "additional stopwords (comma separated)")
	fs.IntVarP(&opts.workers, "workers", "j", 0, "counting goroutines per pass (0 = GOMAXPROCS)")

	fs.StringVar(&opts.format, "format", "", "corpus format: lines, jsonl, html, sqlite (default: from extension)")
	fs.StringVar(&opts.field, "field", corpus.DefaultField, "JSONL field holding the text")
	fs.StringVar(&opts.query, "query", "", "SQLite query returning one text column")

	fs.StringVarP(&opts.output, "output", "o", "", "report file (default: stdout)")
	fs.StringVar(&opts.outFormat, "out-format", report.FormatText, "report format: "+strings.Join(report.Formats, ", "))
	fs.StringVar(&opts.rewrite, "rewrite", "", "write the tokenized corpus with compounds joined by '_' to this file")

	fs.StringVar(&opts.historyPath, "history", "", "SQLite database recording every run")
	fs.BoolVar(&opts.reuse, "reuse", false, "with --history, reuse the latest run over an identical corpus")
	fs.StringVar(&opts.metricsFile, "metrics-file", "", "write Prometheus metrics to this file")

	fs.StringVar(&opts.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&opts.logFormat, "log-format", "text", "text or json")
	fs.StringVar(&opts.logFile, "log-file", "", "also write logs to this rotated file")

	fs.BoolP("help", "h", false, "show help")
	return fs
}

// parseFlags parses args (without the program name). A nil options with a
// nil error means help was requested.
func parseFlags(args []string, stderr io.Writer) (*options, error) {
	opts := &options{}
	fs := newFlagSet(opts)
	fs.SetOutput(stderr)
	fs.Usage = func() { printUsage(stderr, fs) }

	if err := fs.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil, nil
		}
		return nil, err
	}
	if help, _ := fs.GetBool("help"); help {
		printUsage(stderr, fs)
		return nil, nil
	}

	rest := fs.Args()
	if len(rest) != 1 {
		return nil, fmt.Errorf("expected exactly one corpus argument, got %d", len(rest))
	}
	opts.corpusPath = rest[0]
	opts.flags = fs

	if opts.reuse && opts.historyPath == "" {
		return nil, fmt.Errorf("--reuse requires --history")
	}
	return opts, nil
}

// override copies the tuning flags given on the command line into cfg.
func (o *options) override(cfg *config.Config) {
	changed := func(name string) bool { return o.flags != nil && o.flags.Changed(name) }

	if changed("max-context") {
		cfg.MaxContext = o.maxContext
	}
	if changed("alpha") {
		cfg.Alpha = o.alpha
	}
	if changed("beta") {
		cfg.Beta = o.beta
	}
	if changed("max-threshold") {
		cfg.MaxThreshold = o.maxThreshold
	}
	if changed("threshold-increments") {
		cfg.ThresholdIncrements = o.thresholdIncrements
	}
	if changed("stoplist") {
		cfg.Stoplist = o.stoplist
	}
	if changed("extra-stops") {
		cfg.ExtraStops = append(cfg.ExtraStops, o.extraStops...)
	}
	if changed("workers") {
		cfg.Workers = o.workers
	}
}

func printUsage(w io.Writer, fs *pflag.FlagSet) {
	fmt.Fprintf(w, `autocompound extracts multi-word compounds from a text corpus.

Usage: autocompound [flags] <corpus>

The corpus is a text file with one entry per line, a JSONL file, an HTML
page or a SQLite database (with --query). Files ending in .zst or .lz4 are
decompressed on the fly.

Flags:
%s`, fs.FlagUsages())
}
