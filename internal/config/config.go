// Package config loads, normalizes, and validates the lessonpress
// configuration file. Loading follows a fixed pipeline: environment files,
// YAML parse with ${VAR} expansion, a normalization pass that canonicalizes
// enumerated fields, default application, then validation.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration document.
type Config struct {
	Version string        `yaml:"version"`
	Content ContentConfig `yaml:"content"`
	Render  RenderConfig  `yaml:"render,omitempty"`
	Ledger  LedgerConfig  `yaml:"ledger,omitempty"`
	Watch   *WatchConfig  `yaml:"watch,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// ContentConfig locates records and rendered output.
type ContentConfig struct {
	Root   string `yaml:"root"`           // record discovery root
	Output string `yaml:"output"`         // rendered PDF tree, mirrors the root layout
	Logo   string `yaml:"logo,omitempty"` // default banner logo, relative to the config file
}

// RenderConfig tunes the render pipeline.
type RenderConfig struct {
	// Templates lists which documents to produce per record. Empty means
	// all of them.
	Templates []string `yaml:"templates,omitempty"`

	// GradeLevels expands every record across these levels during batch
	// runs, overriding the record's own grade. Empty renders each record
	// at its own level.
	GradeLevels []string `yaml:"grade_levels,omitempty"`

	Workers      int `yaml:"workers,omitempty"`       // parallel record renders
	ImageDecodes int `yaml:"image_decodes,omitempty"` // concurrent image decodes across workers

	MaxRetries        int              `yaml:"max_retries,omitempty"`
	RetryBackoff      RetryBackoffMode `yaml:"retry_backoff,omitempty"`
	RetryInitialDelay string           `yaml:"retry_initial_delay,omitempty"`
	RetryMaxDelay     string           `yaml:"retry_max_delay,omitempty"`
}

// LedgerConfig locates the render ledger database.
type LedgerConfig struct {
	Path string `yaml:"path,omitempty"`
}

// WatchConfig enables continuous mode. A nil Watch section means one-shot
// runs only.
type WatchConfig struct {
	DebounceMS    int    `yaml:"debounce_ms,omitempty"`
	SweepInterval string `yaml:"sweep_interval,omitempty"` // periodic full-tree reconcile
	MetricsAddr   string `yaml:"metrics_addr,omitempty"`   // e.g. ":9090"; empty disables the endpoint
}

// LoggingConfig selects log verbosity and encoding.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level,omitempty"`
	Format LogFormat `yaml:"format,omitempty"`
}

// Load reads a configuration file and runs the full load pipeline.
func Load(configPath string) (*Config, error) {
	// Pick up .env files first so ${VAR} expansion sees them.
	loadEnvFiles()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", configPath)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expandedData := os.ExpandEnv(string(data))

	var config Config
	if err := yaml.Unmarshal([]byte(expandedData), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.Version != "1.0" {
		return nil, fmt.Errorf("unsupported configuration version: %q (expected 1.0)", config.Version)
	}

	// Canonicalize enumerations before defaults so canonical values drive them.
	nres, err := NormalizeConfig(&config)
	if err != nil {
		return nil, fmt.Errorf("normalize: %w", err)
	}
	for _, w := range nres.Warnings {
		fmt.Fprintf(os.Stderr, "config normalization: %s\n", w)
	}

	applyDefaults(&config)

	if err := ValidateConfig(&config); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &config, nil
}

// Init writes an example configuration file.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("configuration file already exists: %s (use --force to overwrite)", configPath)
	}

	exampleConfig := Config{
		Version: "1.0",
		Content: ContentConfig{
			Root:   "./content",
			Output: "./dist",
			Logo:   "assets/logo.png",
		},
		Render: RenderConfig{
			Templates:         []string{"lesson-guide", "5e-plan", "rubric", "exit-ticket"},
			Workers:           4,
			ImageDecodes:      2,
			MaxRetries:        2,
			RetryBackoff:      RetryBackoffLinear,
			RetryInitialDelay: "1s",
			RetryMaxDelay:     "30s",
		},
		Ledger: LedgerConfig{
			Path: ".lessonpress/ledger.db",
		},
		Watch: &WatchConfig{
			DebounceMS:    300,
			SweepInterval: "15m",
			MetricsAddr:   "",
		},
		Logging: LoggingConfig{
			Level:  LogLevelInfo,
			Format: LogFormatText,
		},
	}

	data, err := yaml.Marshal(&exampleConfig)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
