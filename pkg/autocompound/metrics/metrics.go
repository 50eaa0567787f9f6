// Package metrics exposes Prometheus collectors for extraction runs.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pass outcomes used as the "outcome" label.
const (
	OutcomeAccepted = "accepted"
	OutcomeDropped  = "dropped"
	OutcomeSkipped  = "skipped"
)

// Recorder owns a private registry so several extractors, and tests, can
// record without colliding on the default registerer. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry  *prometheus.Registry
	passes    *prometheus.CounterVec
	compounds prometheus.Counter
	threshold *prometheus.GaugeVec
	duration  prometheus.Histogram
	runs      prometheus.Counter
}

// NewRecorder creates a recorder with all collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "autocompound_passes_total",
				Help: "Window passes by outcome.",
			},
			[]string{"outcome"},
		),
		compounds: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autocompound_compounds_accepted_total",
				Help: "Compounds contributed to results by non-dropped windows.",
			},
		),
		threshold: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "autocompound_threshold",
				Help: "Threshold multiplier chosen for each window size in the latest run.",
			},
			[]string{"window"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "autocompound_pass_duration_seconds",
				Help:    "Wall time of one window pass.",
				Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
			},
		),
		runs: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "autocompound_runs_total",
				Help: "Completed extraction runs.",
			},
		),
	}
	r.registry.MustRegister(r.passes, r.compounds, r.threshold, r.duration, r.runs)
	return r
}

// Registry returns the registry backing the recorder.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// ObservePass records one window pass. threshold is ignored for skipped
// passes, which have none.
func (r *Recorder) ObservePass(window int, outcome string, threshold float64, accepted int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.passes.WithLabelValues(outcome).Inc()
	r.duration.Observe(elapsed.Seconds())
	if outcome == OutcomeSkipped {
		return
	}
	r.threshold.WithLabelValues(strconv.Itoa(window)).Set(threshold)
	if outcome == OutcomeAccepted {
		r.compounds.Add(float64(accepted))
	}
}

// ObserveRun records a completed run.
func (r *Recorder) ObserveRun() {
	if r == nil {
		return
	}
	r.runs.Inc()
}

// WriteTextfile writes the current metrics in the text exposition format,
// for node_exporter's textfile collector or batch inspection.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.registry)
}
