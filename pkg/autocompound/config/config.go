// Package config holds the tunable parameters of the compound extractor
// and the loaders that populate them from files and the environment.
//
// Parameters resolve in this order: struct defaults (env-default tags),
// then the config file, then AUTOCOMPOUND_* environment variables. Note
// that a zero value in a file is indistinguishable from an absent key, so
// it is replaced by the default.
package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/cognicore/autocompound/pkg/autocompound/internalerr"
	"github.com/cognicore/autocompound/pkg/autocompound/stoplist"
)

// Config represents the extractor configuration
type Config struct {
	// MaxContext is the largest n-gram window mined; passes run from here down to 2.
	MaxContext int `yaml:"max_context" json:"max_context" env:"AUTOCOMPOUND_MAX_CONTEXT" env-default:"10"`

	// Alpha is the continuity window, in threshold-multiplier units. Like
	// Beta and Workers, a 0 here can only come from the environment or a flag.
	Alpha float64 `yaml:"alpha" json:"alpha" env:"AUTOCOMPOUND_ALPHA" env-default:"5"`

	// Beta is the minimum relative change in removed fraction that still counts as movement.
	Beta float64 `yaml:"beta" json:"beta" env:"AUTOCOMPOUND_BETA" env-default:"0.05"`

	// MaxThreshold is the exclusive upper bound of the threshold scan.
	MaxThreshold float64 `yaml:"max_threshold" json:"max_threshold" env:"AUTOCOMPOUND_MAX_THRESHOLD" env-default:"20.25"`

	// ThresholdIncrements is the scan step.
	ThresholdIncrements float64 `yaml:"threshold_increments" json:"threshold_increments" env:"AUTOCOMPOUND_THRESHOLD_INCREMENTS" env-default:"0.25"`

	// Stoplist names the base stopword set: a built-in source
	// (english, snowball, none) or the path of a YAML stoplist file.
	Stoplist string `yaml:"stoplist" json:"stoplist" env:"AUTOCOMPOUND_STOPLIST" env-default:"english"`

	// ExtraStops are added on top of the base stoplist.
	ExtraStops []string `yaml:"extra_stops" json:"extra_stops" env:"AUTOCOMPOUND_EXTRA_STOPS" env-separator:","`

	// Workers bounds the goroutines used to count n-grams within one pass;
	// 0 uses GOMAXPROCS. A 0 in a config file reads as absent, so select it
	// through AUTOCOMPOUND_WORKERS=0 or the --workers flag.
	Workers int `yaml:"workers" json:"workers" env:"AUTOCOMPOUND_WORKERS" env-default:"1"`

	// TokenCacheSize is the number of tokenized sub-sentences memoized across passes; 0 disables the cache.
	TokenCacheSize int `yaml:"token_cache_size" json:"token_cache_size" env:"AUTOCOMPOUND_TOKEN_CACHE_SIZE" env-default:"65536"`
}

// Default returns the stock configuration. A new value is built on every
// call; callers may modify it freely.
func Default() Config {
	return Config{
		MaxContext:          10,
		Alpha:               5,
		Beta:                0.05,
		MaxThreshold:        20.25,
		ThresholdIncrements: 0.25,
		Stoplist:            stoplist.SourceEnglish,
		Workers:             1,
		TokenCacheSize:      65536,
	}
}

// Validate reports the first invalid parameter, wrapped in
// internalerr.ErrInvalidConfig.
func (c Config) Validate() error {
	switch {
	case c.MaxContext <= 0:
		return invalid("max_context must be positive, got %d", c.MaxContext)
	case c.ThresholdIncrements <= 0:
		return invalid("threshold_increments must be positive, got %g", c.ThresholdIncrements)
	case c.MaxThreshold <= 0:
		return invalid("max_threshold must be positive, got %g", c.MaxThreshold)
	case c.Alpha < 0:
		return invalid("alpha must not be negative, got %g", c.Alpha)
	case c.Beta < 0:
		return invalid("beta must not be negative, got %g", c.Beta)
	case c.Workers < 0:
		return invalid("workers must not be negative, got %d", c.Workers)
	case c.TokenCacheSize < 0:
		return invalid("token_cache_size must not be negative, got %d", c.TokenCacheSize)
	}
	if !isStoplistFile(c.Stoplist) {
		if _, ok := stoplist.ByName(c.Stoplist); !ok {
			return invalid("unknown stoplist %q (want english, snowball, none or a .yaml file)", c.Stoplist)
		}
	}
	return nil
}

// Equal reports whether c and o would configure identical runs.
func (c Config) Equal(o Config) bool {
	return c.MaxContext == o.MaxContext &&
		c.Alpha == o.Alpha &&
		c.Beta == o.Beta &&
		c.MaxThreshold == o.MaxThreshold &&
		c.ThresholdIncrements == o.ThresholdIncrements &&
		c.Stoplist == o.Stoplist &&
		slices.Equal(c.ExtraStops, o.ExtraStops) &&
		c.Workers == o.Workers &&
		c.TokenCacheSize == o.TokenCacheSize
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", internalerr.ErrInvalidConfig, fmt.Sprintf(format, args...))
}

func isStoplistFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
