// Package store keeps a history of extraction runs.
package store

import (
	"context"
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/cognicore/autocompound/pkg/autocompound"
	"github.com/cognicore/autocompound/pkg/autocompound/config"
	"github.com/cognicore/autocompound/pkg/autocompound/report"
)

// Store is the interface for persisting run history
type Store interface {
	Close() error

	// SaveRun stores a new run. Saving an ID twice fails with
	// internalerr.ErrDuplicate.
	SaveRun(ctx context.Context, r RunRecord) error

	// GetRun fails with internalerr.ErrNotFound for unknown IDs.
	GetRun(ctx context.Context, id string) (RunRecord, error)

	// ListRuns returns up to limit runs, newest first. A limit <= 0
	// returns every run.
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	// LatestByFingerprint returns the newest run over the corpus with the
	// given fingerprint.
	LatestByFingerprint(ctx context.Context, fingerprint string) (RunRecord, bool, error)
}

// RunRecord represents a stored extraction run
type RunRecord struct {
	ID          string
	StartedAt   time.Time
	Source      string // corpus path or DSN
	Fingerprint string
	Config      config.Config
	Compounds   []string
	Thresholds  map[int]float64
	Drops       map[int]bool
	Trace       []autocompound.TracePoint
}

// FromReport builds a record for a finished run.
func FromReport(id, source string, r *report.Report) RunRecord {
	return RunRecord{
		ID:          id,
		StartedAt:   r.CreatedAt,
		Source:      source,
		Fingerprint: r.Fingerprint,
		Config:      r.Config,
		Compounds:   r.Compounds,
		Thresholds:  r.Thresholds,
		Drops:       r.Drops,
		Trace:       r.Trace,
	}
}

// Report rebuilds the report of a stored run. Per-pass diagnostics are
// not kept in history.
func (r RunRecord) Report() *report.Report {
	return &report.Report{
		RunID:       r.ID,
		CreatedAt:   r.StartedAt,
		Fingerprint: r.Fingerprint,
		Config:      r.Config,
		Compounds:   r.Compounds,
		Thresholds:  r.Thresholds,
		Drops:       r.Drops,
		Trace:       r.Trace,
	}
}

// IDSource issues lexically sortable run IDs. IDs from one source are
// strictly increasing, even within the same millisecond.
type IDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates an ID source
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns an ID for a run started at t.
func (s *IDSource) New(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}
