// Package config holds the regscan configuration: where to read the
// registry, where to write the two output artifacts, which rule set to use,
// and where run history is kept. Config is YAML on disk with environment
// overrides; every value has a default so the tool runs with no config file
// at all.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the unified regscan configuration.
type Config struct {
	// Input is the registry file ("code - description" lines, or CSV).
	Input string `yaml:"input"`

	// OutputDir receives included.csv and summary.txt.
	OutputDir string `yaml:"output_dir"`

	// RulesPath points to a YAML rule-set override. Empty means the
	// built-in curated set.
	RulesPath string `yaml:"rules,omitempty"`

	// DatabasePath is the run-history SQLite database. Empty disables
	// history.
	DatabasePath string `yaml:"database,omitempty"`

	// SampleSize is how many included entries the summary lists.
	SampleSize int `yaml:"sample_size"`

	// Workers bounds the classification worker pool. Zero means
	// GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// DefaultConfig keeps the original single-script behavior: fixed local
// locations, now overridable via config, flags, or environment.
func DefaultConfig() *Config {
	return &Config{
		Input:        "gmdn_terms.txt",
		OutputDir:    "out",
		DatabasePath: filepath.Join(".regscan", "runs.db"),
		SampleSize:   10,
		Workers:      0,
	}
}

// Load reads config from path, falling back to defaults when the file does
// not exist, then applies environment overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No file is fine; defaults plus env carry the day.
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config as YAML, creating the parent directory if needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides lets REGSCAN_* variables override file values, which is
// how CI invocations configure the tool without a config file.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("REGSCAN_INPUT"); v != "" {
		c.Input = v
	}
	if v := os.Getenv("REGSCAN_OUTPUT_DIR"); v != "" {
		c.OutputDir = v
	}
	if v := os.Getenv("REGSCAN_RULES"); v != "" {
		c.RulesPath = v
	}
	if v := os.Getenv("REGSCAN_DB"); v != "" {
		c.DatabasePath = v
	}
	if v := os.Getenv("REGSCAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
}

// Validate rejects configurations that could not possibly run.
func (c *Config) Validate() error {
	if c.Input == "" {
		return fmt.Errorf("input path is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory is required")
	}
	if c.SampleSize < 0 {
		return fmt.Errorf("sample_size must be >= 0, got %d", c.SampleSize)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must be >= 0, got %d", c.Workers)
	}
	return nil
}

// CSVPath is the included-entries artifact location.
func (c *Config) CSVPath() string {
	return filepath.Join(c.OutputDir, "included.csv")
}

// SummaryPath is the plain-text summary artifact location.
func (c *Config) SummaryPath() string {
	return filepath.Join(c.OutputDir, "summary.txt")
}
