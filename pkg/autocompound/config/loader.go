package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/autocompound/pkg/autocompound/stoplist"
)

// Load reads a configuration file and applies environment overrides.
// YAML, TOML and .env files go through cleanenv; .json and .jsonc files
// may carry comments and trailing commas. An empty path reads the
// environment only. The result is validated.
func Load(path string) (Config, error) {
	cfg, err := read(path)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func read(path string) (Config, error) {
	var cfg Config

	switch ext := strings.ToLower(filepath.Ext(path)); {
	case path == "":
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	case ext == ".json" || ext == ".jsonc":
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
	default:
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	return cfg, nil
}

// LoadDotEnv seeds the process environment from a .env file. Variables
// already set in the environment win.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// Stoplist represents the stopword list configuration
type Stoplist struct {
	Terms []string `yaml:"terms"`
}

// LoadStoplist loads stopwords from a YAML file
func LoadStoplist(path string) (*Stoplist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var sl Stoplist
	if err := yaml.Unmarshal(data, &sl); err != nil {
		return nil, err
	}

	return &sl, nil
}

// NewStoplist builds the stopword set for cfg: the base source named by
// cfg.Stoplist plus cfg.ExtraStops.
func NewStoplist(cfg Config) (*stoplist.Manager, error) {
	var mgr *stoplist.Manager
	if isStoplistFile(cfg.Stoplist) {
		sl, err := LoadStoplist(cfg.Stoplist)
		if err != nil {
			return nil, fmt.Errorf("load stoplist: %w", err)
		}
		mgr = stoplist.NewManager(sl.Terms)
	} else {
		var ok bool
		if mgr, ok = stoplist.ByName(cfg.Stoplist); !ok {
			return nil, invalid("unknown stoplist %q", cfg.Stoplist)
		}
	}
	mgr.Add(cfg.ExtraStops...)
	return mgr, nil
}

// Loader loads all configuration files and constructs components
type Loader struct {
	ConfigPath string
	EnvFile    string

	// Override, when set, adjusts the loaded values (e.g. from command-line
	// flags) before validation.
	Override func(*Config)
}

// Components holds all loaded configuration components
type Components struct {
	Config   Config
	Stoplist *stoplist.Manager
}

// Load reads all configuration files and returns initialized components
func (l *Loader) Load() (*Components, error) {
	if l.EnvFile != "" {
		if err := LoadDotEnv(l.EnvFile); err != nil {
			return nil, err
		}
	}

	cfg, err := read(l.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if l.Override != nil {
		l.Override(&cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stops, err := NewStoplist(cfg)
	if err != nil {
		return nil, err
	}

	return &Components{Config: cfg, Stoplist: stops}, nil
}
