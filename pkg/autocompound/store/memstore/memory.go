package memstore

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
	"github.com/cognicore/autocompound/pkg/autocompound/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu   sync.RWMutex
	runs map[string]store.RunRecord
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{runs: make(map[string]store.RunRecord)}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// SaveRun implements store.Store.
func (s *Store) SaveRun(ctx context.Context, r store.RunRecord) error {
	if r.ID == "" {
		return fmt.Errorf("%w: run without ID", internalerr.ErrInvalidInput)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.runs[r.ID]; ok {
		return fmt.Errorf("%w: run %s", internalerr.ErrDuplicate, r.ID)
	}
	s.runs[r.ID] = clone(r)
	return nil
}

// GetRun implements store.Store.
func (s *Store) GetRun(ctx context.Context, id string) (store.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.runs[id]
	if !ok {
		return store.RunRecord{}, fmt.Errorf("%w: run %s", internalerr.ErrNotFound, id)
	}
	return clone(r), nil
}

// ListRuns implements store.Store.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]store.RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.RunRecord, 0, len(s.runs))
	for _, r := range s.runs {
		out = append(out, clone(r))
	}
	sortNewestFirst(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// LatestByFingerprint implements store.Store.
func (s *Store) LatestByFingerprint(ctx context.Context, fingerprint string) (store.RunRecord, bool, error) {
	runs, _ := s.ListRuns(ctx, 0)
	for _, r := range runs {
		if r.Fingerprint == fingerprint {
			return r, true, nil
		}
	}
	return store.RunRecord{}, false, nil
}

func sortNewestFirst(runs []store.RunRecord) {
	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].StartedAt.Equal(runs[j].StartedAt) {
			return runs[i].StartedAt.After(runs[j].StartedAt)
		}
		return runs[i].ID > runs[j].ID
	})
}

func clone(r store.RunRecord) store.RunRecord {
	r.Config.ExtraStops = slices.Clone(r.Config.ExtraStops)
	r.Compounds = slices.Clone(r.Compounds)
	r.Thresholds = maps.Clone(r.Thresholds)
	r.Drops = maps.Clone(r.Drops)
	r.Trace = slices.Clone(r.Trace)
	return r
}
