package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the per-project configuration file looked up by the CLI.
const FileName = "ruchy.yaml"

// Config is the runtime configuration loaded from ruchy.yaml.
type Config struct {
	Limits Limits     `yaml:"limits"`
	Repl   ReplConfig `yaml:"repl"`
	Kernel Kernel     `yaml:"kernel"`
}

// Limits bound a single top-level evaluation.
type Limits struct {
	MaxEvalDepth int `yaml:"max_eval_depth,omitempty"`
	MaxCallDepth int `yaml:"max_call_depth,omitempty"`
	// StepBudget caps loop iterations plus calls per unit; 0 is unlimited.
	StepBudget int64 `yaml:"step_budget,omitempty"`
	// Timeout is the wall-clock limit per unit; 0 is unlimited.
	Timeout time.Duration `yaml:"timeout,omitempty"`
	// MaxCollectionSize caps the elements of one array (or bytes of one
	// string) built by repetition or range materialisation.
	MaxCollectionSize int64 `yaml:"max_collection_size,omitempty"`
}

type ReplConfig struct {
	HistoryFile string `yaml:"history_file,omitempty"`
	// HistoryDB, when set, records every submitted unit into SQLite.
	HistoryDB string `yaml:"history_db,omitempty"`
	// Color is "auto", "always" or "never".
	Color string `yaml:"color,omitempty"`
}

type Kernel struct {
	Addr string `yaml:"addr,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

// Load reads path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse parses ruchy.yaml content from bytes.
// The path argument is used only for error messages.
func Parse(data []byte, path string) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := cfg.validate(path); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	return &cfg, nil
}

// Find searches for ruchy.yaml starting from dir and walking up to parent
// directories. It returns "" when no file is found.
func Find(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolving directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

func (c *Config) validate(path string) error {
	if c.Limits.MaxEvalDepth < 0 {
		return fmt.Errorf("%s: limits.max_eval_depth must not be negative", path)
	}
	if c.Limits.MaxCallDepth < 0 {
		return fmt.Errorf("%s: limits.max_call_depth must not be negative", path)
	}
	if c.Limits.StepBudget < 0 {
		return fmt.Errorf("%s: limits.step_budget must not be negative", path)
	}
	if c.Limits.MaxCollectionSize < 0 {
		return fmt.Errorf("%s: limits.max_collection_size must not be negative", path)
	}
	if c.Limits.Timeout < 0 {
		return fmt.Errorf("%s: limits.timeout must not be negative", path)
	}
	switch c.Repl.Color {
	case "", "auto", "always", "never":
	default:
		return fmt.Errorf("%s: repl.color must be auto, always or never, got %q", path, c.Repl.Color)
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Limits.MaxEvalDepth == 0 {
		c.Limits.MaxEvalDepth = DefaultMaxEvalDepth
	}
	if c.Limits.MaxCallDepth == 0 {
		c.Limits.MaxCallDepth = DefaultMaxCallDepth
	}
	if c.Limits.MaxCollectionSize == 0 {
		c.Limits.MaxCollectionSize = DefaultMaxCollectionSize
	}
	if c.Repl.Color == "" {
		c.Repl.Color = "auto"
	}
	if c.Repl.HistoryFile == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.Repl.HistoryFile = filepath.Join(home, ".ruchy_history")
		}
	}
	if c.Kernel.Addr == "" {
		c.Kernel.Addr = "127.0.0.1:7878"
	}
}
