// Package config loads the optional .microtap YAML file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// FileName is the name of the configuration file.
const FileName = ".microtap"

// Default values.
const (
	DefaultPattern   = "test_*.yaml"
	DefaultMaxOutput = 1 << 20 // 1 MB
	DefaultHistory   = 5

	DefaultSkipCode    = 77
	DefaultFailCode    = 1
	DefaultBailOutCode = 99
)

// Config holds the parsed .microtap configuration.
// All fields are optional; zero values represent defaults.
type Config struct {
	Version      int       `yaml:"version"`
	RootPlan     *bool     `yaml:"root_plan"`  // wrap multi-plan reports in a root plan
	Pattern      string    `yaml:"pattern"`    // glob for plan manifests
	RawTimeout   string    `yaml:"timeout"`    // bound on each command, e.g. "30s"; none when empty
	RawMaxOutput int       `yaml:"max_output"` // bytes captured per stream
	ExitCodes    ExitCodes `yaml:"exit_codes"`
	Log          LogConfig `yaml:"log"`
	History      int       `yaml:"history"`   // runs kept in memory for inspection
	StoreDir     string    `yaml:"store_dir"` // where run records are written; temp dir when empty
}

// ExitCodes maps command exit statuses to test point outcomes. Zero means
// "use the default"; ToDo has no default and is unmapped unless set.
type ExitCodes struct {
	Skip    int `yaml:"skip"`
	ToDo    int `yaml:"todo"`
	Fail    int `yaml:"fail"`
	BailOut int `yaml:"bail_out"`
}

// LogConfig controls operational logging.
type LogConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Human bool   `yaml:"human"` // console output instead of JSON
}

// RootPlanEnabled returns the configured root-plan flag, true by default.
func (c *Config) RootPlanEnabled() bool {
	if c.RootPlan != nil {
		return *c.RootPlan
	}
	return true
}

// ManifestPattern returns the configured manifest glob or the default.
func (c *Config) ManifestPattern() string {
	if c.Pattern != "" {
		return c.Pattern
	}
	return DefaultPattern
}

// Timeout returns the configured per-command bound, or zero for none.
func (c *Config) Timeout() time.Duration {
	if c.RawTimeout != "" {
		d, err := time.ParseDuration(c.RawTimeout)
		if err == nil && d > 0 {
			return d
		}
	}
	return 0
}

// MaxOutputBytes returns the configured max output size or the default.
func (c *Config) MaxOutputBytes() int {
	if c.RawMaxOutput > 0 {
		return c.RawMaxOutput
	}
	return DefaultMaxOutput
}

// HistorySize returns the number of runs to keep in memory.
func (c *Config) HistorySize() int {
	if c.History > 0 {
		return c.History
	}
	return DefaultHistory
}

// SkipCode returns the exit status that marks a command as skipped.
func (e ExitCodes) SkipCode() int { return orDefault(e.Skip, DefaultSkipCode) }

// FailCode returns the exit status that marks a command as failed.
func (e ExitCodes) FailCode() int { return orDefault(e.Fail, DefaultFailCode) }

// BailOutCode returns the exit status that ends the session.
func (e ExitCodes) BailOutCode() int { return orDefault(e.BailOut, DefaultBailOutCode) }

// ToDoCode returns the exit status that marks a command as incomplete,
// or zero when none is configured.
func (e ExitCodes) ToDoCode() int { return e.ToDo }

func orDefault(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

// Validate reports configurations that cannot be honoured.
func (c *Config) Validate() error {
	if _, err := filepath.Match(c.ManifestPattern(), ""); err != nil {
		return fmt.Errorf("invalid pattern %q: %w", c.ManifestPattern(), err)
	}
	if c.RawTimeout != "" {
		if _, err := time.ParseDuration(c.RawTimeout); err != nil {
			return fmt.Errorf("invalid timeout %q: %w", c.RawTimeout, err)
		}
	}

	codes := map[string]int{
		"skip":     c.ExitCodes.SkipCode(),
		"fail":     c.ExitCodes.FailCode(),
		"bail_out": c.ExitCodes.BailOutCode(),
	}
	if c.ExitCodes.ToDoCode() != 0 {
		codes["todo"] = c.ExitCodes.ToDoCode()
	}
	seen := make(map[int]string, len(codes))
	for _, name := range []string{"skip", "todo", "fail", "bail_out"} {
		code, ok := codes[name]
		if !ok {
			continue
		}
		if code < 0 || code > 255 {
			return fmt.Errorf("exit_codes.%s: %d is not a valid exit status", name, code)
		}
		if other, dup := seen[code]; dup {
			return fmt.Errorf("exit_codes.%s and exit_codes.%s both use %d", other, name, code)
		}
		seen[code] = name
	}
	return nil
}

// LoadResult holds the parsed config and the directory it was found in.
type LoadResult struct {
	Config *Config
	Root   string // directory holding .microtap; falls back to the start directory
}

// Load reads the .microtap file. It is searched for by walking upward from
// dir. If no file exists, a default Config rooted at dir is returned.
func Load(dir string) (*LoadResult, error) {
	root, err := findRoot(dir)
	if err != nil {
		return &LoadResult{Config: &Config{}, Root: dir}, nil
	}

	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", FileName, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &LoadResult{Config: cfg, Root: root}, nil
}

// findRoot walks upward from dir looking for a directory containing the
// configuration file.
func findRoot(dir string) (string, error) {
	dir, err := filepath.Abs(dir)
	if err != nil {
		return "", err
	}
	for {
		if fi, err := os.Stat(filepath.Join(dir, FileName)); err == nil && !fi.IsDir() {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("%s not found", FileName)
		}
		dir = parent
	}
}
