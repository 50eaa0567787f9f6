package internalerr

import "errors"

// Sentinel errors for common cases
var (
	ErrNotFound      = errors.New("not found")
	ErrInvalidInput  = errors.New("invalid input")
	ErrDuplicate     = errors.New("duplicate entry")
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmptyDistribution marks a window size with no countable n-grams:
	// nothing to compute a mean or standard deviation over.
	ErrEmptyDistribution = errors.New("empty frequency distribution")

	// ErrDegenerateStopwordFilter marks a window size where candidate
	// n-grams existed but every one was rejected by the boundary filter.
	ErrDegenerateStopwordFilter = errors.New("all candidates rejected by stopword boundary filter")
)
