package threshold

import (
	"fmt"
	"maps"

	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
)

// Registry records the accepted threshold and drop flag of every window
// size. Entries are write-once.
type Registry struct {
	thresholds map[int]float64
	drops      map[int]bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		thresholds: make(map[int]float64),
		drops:      make(map[int]bool),
	}
}

// Record stores the outcome for a window size. A second record for the
// same size fails with internalerr.ErrDuplicate and leaves the first intact.
func (r *Registry) Record(size int, threshold float64, drop bool) error {
	if _, ok := r.thresholds[size]; ok {
		return fmt.Errorf("%w: window size %d already recorded", internalerr.ErrDuplicate, size)
	}
	r.thresholds[size] = threshold
	r.drops[size] = drop
	return nil
}

// Threshold returns the accepted multiplier for a window size.
func (r *Registry) Threshold(size int) (float64, bool) {
	v, ok := r.thresholds[size]
	return v, ok
}

// Dropped reports whether a window size's compounds are excluded from the
// result. Unrecorded sizes are not dropped.
func (r *Registry) Dropped(size int) bool {
	return r.drops[size]
}

// Len returns the number of recorded window sizes.
func (r *Registry) Len() int {
	return len(r.thresholds)
}

// Thresholds returns a copy of the threshold entries.
func (r *Registry) Thresholds() map[int]float64 {
	return maps.Clone(r.thresholds)
}

// Drops returns a copy of the drop flags.
func (r *Registry) Drops() map[int]bool {
	return maps.Clone(r.drops)
}
