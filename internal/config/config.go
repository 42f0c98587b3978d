// Package config provides unified configuration loading for influsim.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/influsim/influsim/internal/experiment"
)

// Config contains all influsim configuration settings.
type Config struct {
	// Database is the path to the results database. Supports ${VAR} syntax
	// for env vars.
	Database string `json:"database" yaml:"database"`

	// Defaults supplies values for experiment fields left unset.
	Defaults ExperimentConfig `json:"defaults" yaml:"defaults"`

	// Experiments lists the batches to run, in order.
	Experiments []ExperimentConfig `json:"experiments" yaml:"experiments"`

	// Report contains settings for derived statistics.
	Report ReportConfig `json:"report" yaml:"report"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`
}

// ExperimentConfig describes one batch in a config file. Threshold and Seed
// are pointers so that an explicit zero can be told apart from an unset field
// when defaults are applied.
type ExperimentConfig struct {
	// Name labels the batch. Unnamed experiments are numbered.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Nodes is the graph size n.
	Nodes int `json:"nodes,omitempty" yaml:"nodes,omitempty"`

	// AvgDegree is the target mean degree z; generation attaches floor(z/2)
	// edges per new node.
	AvgDegree float64 `json:"avg_degree,omitempty" yaml:"avg_degree,omitempty"`

	// Threshold is the uniform engagement threshold in [0,1].
	Threshold *float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`

	// Thresholds optionally assigns per-node thresholds; it overrides
	// Threshold and must have Nodes entries.
	Thresholds []float64 `json:"thresholds,omitempty" yaml:"thresholds,omitempty"`

	// Realizations is the number of independent graph realizations.
	Realizations int `json:"realizations,omitempty" yaml:"realizations,omitempty"`

	// Seed is the base RNG seed for the batch.
	Seed *int64 `json:"seed,omitempty" yaml:"seed,omitempty"`

	// Workers caps the batch's worker pool; 0 uses all processors.
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// ReportConfig configures derived statistics.
type ReportConfig struct {
	// CascadeFraction is the fraction of the node count an activation must
	// exceed to count as a global cascade. Range: (0.0, 1.0].
	CascadeFraction float64 `json:"cascade_fraction" yaml:"cascade_fraction"`
}

// LoggingConfig configures influsim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables realization tracing to trace.jsonl next to the
	// database. "trace" additionally includes per-round cascade detail.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	threshold := 0.18
	return &Config{
		Database: defaultDatabasePath(),
		Defaults: ExperimentConfig{
			Nodes:        1000,
			AvgDegree:    4,
			Threshold:    &threshold,
			Realizations: 100,
		},
		Report: ReportConfig{
			CascadeFraction: 0.1,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.influsim/config.yaml -> environment variables
func Load() (*Config, error) {
	config := Default()

	// Try to load from default config file
	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".influsim", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			config = fileConfig
		}
	}

	// Apply environment variable overrides
	applyEnvOverrides(config)

	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in the database path
	config.Database = expandEnvVars(config.Database)

	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Database == "" {
		return fmt.Errorf("database path must not be empty")
	}

	if c.Report.CascadeFraction <= 0 || c.Report.CascadeFraction > 1 {
		return fmt.Errorf("cascade_fraction must be in (0,1], got %g", c.Report.CascadeFraction)
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}

	return nil
}

// ResolvedExperiments applies defaults to every configured experiment and
// converts them to driver configs, validating each one.
func (c *Config) ResolvedExperiments() ([]experiment.Config, error) {
	if len(c.Experiments) == 0 {
		return nil, fmt.Errorf("no experiments configured")
	}

	out := make([]experiment.Config, 0, len(c.Experiments))
	for i, e := range c.Experiments {
		cfg := e.withDefaults(c.Defaults).toDriver(i)
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("experiment %q: %w", cfg.Name, err)
		}
		out = append(out, cfg)
	}
	return out, nil
}

// AdHocExperiment builds a single experiment from the config defaults with
// the given overrides applied. Used for flag-driven runs without a config
// file experiment list.
func (c *Config) AdHocExperiment(overrides ExperimentConfig) (experiment.Config, error) {
	cfg := overrides.withDefaults(c.Defaults).toDriver(0)
	if err := cfg.Validate(); err != nil {
		return experiment.Config{}, fmt.Errorf("experiment %q: %w", cfg.Name, err)
	}
	return cfg, nil
}

// withDefaults fills unset fields from d.
func (e ExperimentConfig) withDefaults(d ExperimentConfig) ExperimentConfig {
	if e.Nodes == 0 {
		e.Nodes = d.Nodes
	}
	if e.AvgDegree == 0 {
		e.AvgDegree = d.AvgDegree
	}
	if e.Threshold == nil {
		e.Threshold = d.Threshold
	}
	if e.Thresholds == nil {
		e.Thresholds = d.Thresholds
	}
	if e.Realizations == 0 {
		e.Realizations = d.Realizations
	}
	if e.Seed == nil {
		e.Seed = d.Seed
	}
	if e.Workers == 0 {
		e.Workers = d.Workers
	}
	return e
}

// toDriver converts a fully-defaulted experiment to a driver config. i is
// the experiment's position, used to number unnamed batches.
func (e ExperimentConfig) toDriver(i int) experiment.Config {
	name := e.Name
	if name == "" {
		name = fmt.Sprintf("experiment-%d", i+1)
	}
	var threshold float64
	if e.Threshold != nil {
		threshold = *e.Threshold
	}
	var seed int64
	if e.Seed != nil {
		seed = *e.Seed
	}
	return experiment.Config{
		Name:            name,
		Nodes:           e.Nodes,
		AvgDegree:       e.AvgDegree,
		Threshold:       threshold,
		ThresholdVector: e.Thresholds,
		Realizations:    e.Realizations,
		Seed:            seed,
		Workers:         e.Workers,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	if v := os.Getenv("INFLUSIM_DB"); v != "" {
		config.Database = v
	}

	if v := os.Getenv("INFLUSIM_LOG_LEVEL"); v != "" {
		config.Logging.Level = v
	}

	if v := os.Getenv("INFLUSIM_CASCADE_FRACTION"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Report.CascadeFraction = f
		}
	}

	if v := os.Getenv("INFLUSIM_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			config.Defaults.Seed = &n
		}
	}

	if v := os.Getenv("INFLUSIM_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Defaults.Workers = n
		}
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}

// defaultDatabasePath returns ~/.influsim/results.db, falling back to a
// relative path when the home directory is unknown.
func defaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".influsim", "results.db")
	}
	return filepath.Join(home, ".influsim", "results.db")
}
