package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	config := Default()

	if config.Database == "" {
		t.Error("expected a default database path")
	}
	if config.Defaults.Nodes != 1000 {
		t.Errorf("expected default nodes 1000, got %d", config.Defaults.Nodes)
	}
	if config.Defaults.AvgDegree != 4 {
		t.Errorf("expected default avg degree 4, got %g", config.Defaults.AvgDegree)
	}
	if config.Defaults.Threshold == nil || *config.Defaults.Threshold != 0.18 {
		t.Errorf("expected default threshold 0.18, got %v", config.Defaults.Threshold)
	}
	if config.Defaults.Realizations != 100 {
		t.Errorf("expected default realizations 100, got %d", config.Defaults.Realizations)
	}
	if config.Report.CascadeFraction != 0.1 {
		t.Errorf("expected default cascade fraction 0.1, got %g", config.Report.CascadeFraction)
	}
	if config.Logging.Level != "info" {
		t.Errorf("expected default log level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
database: /tmp/influsim-test/results.db

defaults:
  nodes: 500
  avg_degree: 6
  threshold: 0.2
  realizations: 25
  seed: 17

experiments:
  - name: baseline
  - name: sparse
    avg_degree: 2
    workers: 3

logging:
  level: debug
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Database != "/tmp/influsim-test/results.db" {
		t.Errorf("expected database path from file, got '%s'", config.Database)
	}
	if config.Defaults.Nodes != 500 {
		t.Errorf("expected defaults.nodes 500, got %d", config.Defaults.Nodes)
	}
	if len(config.Experiments) != 2 {
		t.Fatalf("expected 2 experiments, got %d", len(config.Experiments))
	}
	if config.Experiments[1].AvgDegree != 2 {
		t.Errorf("expected sparse avg degree 2, got %g", config.Experiments[1].AvgDegree)
	}
	if config.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got '%s'", config.Logging.Level)
	}
	// Fields absent from the file keep their defaults.
	if config.Report.CascadeFraction != 0.1 {
		t.Errorf("expected cascade fraction to keep default 0.1, got %g", config.Report.CascadeFraction)
	}
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
database: ${INFLUSIM_TEST_DIR}/results.db
`
	if err := os.WriteFile(configPath, []byte(configContent), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	t.Setenv("INFLUSIM_TEST_DIR", "/data/sims")

	config, err := LoadFromFile(configPath)
	if err != nil {
		t.Fatalf("LoadFromFile failed: %v", err)
	}

	if config.Database != "/data/sims/results.db" {
		t.Errorf("expected expanded database path, got '%s'", config.Database)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("INFLUSIM_DB", "/override/results.db")
	t.Setenv("INFLUSIM_LOG_LEVEL", "trace")
	t.Setenv("INFLUSIM_CASCADE_FRACTION", "0.25")
	t.Setenv("INFLUSIM_SEED", "99")
	t.Setenv("INFLUSIM_WORKERS", "6")

	config := Default()
	applyEnvOverrides(config)

	if config.Database != "/override/results.db" {
		t.Errorf("expected overridden database, got '%s'", config.Database)
	}
	if config.Logging.Level != "trace" {
		t.Errorf("expected log level 'trace', got '%s'", config.Logging.Level)
	}
	if config.Report.CascadeFraction != 0.25 {
		t.Errorf("expected cascade fraction 0.25, got %g", config.Report.CascadeFraction)
	}
	if config.Defaults.Seed == nil || *config.Defaults.Seed != 99 {
		t.Errorf("expected default seed 99, got %v", config.Defaults.Seed)
	}
	if config.Defaults.Workers != 6 {
		t.Errorf("expected default workers 6, got %d", config.Defaults.Workers)
	}
}

func TestValidate_Valid(t *testing.T) {
	config := Default()
	if err := config.Validate(); err != nil {
		t.Errorf("expected valid config, got error: %v", err)
	}
}

func TestValidate_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty database", func(c *Config) { c.Database = "" }},
		{"zero cascade fraction", func(c *Config) { c.Report.CascadeFraction = 0 }},
		{"cascade fraction above 1", func(c *Config) { c.Report.CascadeFraction = 1.5 }},
		{"unknown log level", func(c *Config) { c.Logging.Level = "verbose" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := Default()
			tt.mutate(config)
			if err := config.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestValidate_ValidLogLevels(t *testing.T) {
	validLevels := []string{"", "info", "debug", "trace"}

	for _, level := range validLevels {
		t.Run(level, func(t *testing.T) {
			config := Default()
			config.Logging.Level = level
			if err := config.Validate(); err != nil {
				t.Errorf("expected log level '%s' to be valid, got error: %v", level, err)
			}
		})
	}
}

func TestResolvedExperiments_AppliesDefaults(t *testing.T) {
	config := Default()
	config.Experiments = []ExperimentConfig{
		{Name: "baseline"},
		{Name: "dense", AvgDegree: 8},
	}

	exps, err := config.ResolvedExperiments()
	if err != nil {
		t.Fatalf("ResolvedExperiments failed: %v", err)
	}

	if len(exps) != 2 {
		t.Fatalf("expected 2 experiments, got %d", len(exps))
	}
	if exps[0].Nodes != 1000 || exps[0].AvgDegree != 4 || exps[0].Threshold != 0.18 {
		t.Errorf("expected defaults applied to baseline, got %+v", exps[0])
	}
	if exps[1].AvgDegree != 8 {
		t.Errorf("expected explicit avg degree 8 to win, got %g", exps[1].AvgDegree)
	}
	if exps[1].Nodes != 1000 {
		t.Errorf("expected unset nodes to take default, got %d", exps[1].Nodes)
	}
}

func TestResolvedExperiments_ExplicitZeroThreshold(t *testing.T) {
	zero := 0.0
	config := Default()
	config.Experiments = []ExperimentConfig{
		{Name: "no-resistance", Threshold: &zero},
	}

	exps, err := config.ResolvedExperiments()
	if err != nil {
		t.Fatalf("ResolvedExperiments failed: %v", err)
	}

	if exps[0].Threshold != 0 {
		t.Errorf("expected explicit zero threshold to survive defaulting, got %g", exps[0].Threshold)
	}
}

func TestResolvedExperiments_NamesUnnamed(t *testing.T) {
	config := Default()
	config.Experiments = []ExperimentConfig{{}, {Name: "named"}}

	exps, err := config.ResolvedExperiments()
	if err != nil {
		t.Fatalf("ResolvedExperiments failed: %v", err)
	}

	if exps[0].Name != "experiment-1" {
		t.Errorf("expected auto-generated name 'experiment-1', got '%s'", exps[0].Name)
	}
	if exps[1].Name != "named" {
		t.Errorf("expected explicit name to survive, got '%s'", exps[1].Name)
	}
}

func TestResolvedExperiments_Errors(t *testing.T) {
	config := Default()
	if _, err := config.ResolvedExperiments(); err == nil {
		t.Error("expected error when no experiments are configured")
	}

	config.Experiments = []ExperimentConfig{{Name: "bad", Nodes: -1}}
	if _, err := config.ResolvedExperiments(); err == nil {
		t.Error("expected error for invalid experiment")
	}
}

func TestLoadFromFile_NotFound(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for nonexistent file")
	}
}

func TestLoadFromFile_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	invalidYAML := `
experiments:
  - name: [invalid yaml
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0600); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFromFile(configPath)
	if err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestAdHocExperiment(t *testing.T) {
	config := Default()

	nodes := 500
	threshold := 0.25
	cfg, err := config.AdHocExperiment(ExperimentConfig{
		Name:      "ad-hoc",
		Nodes:     nodes,
		Threshold: &threshold,
	})
	if err != nil {
		t.Fatalf("AdHocExperiment failed: %v", err)
	}

	if cfg.Name != "ad-hoc" {
		t.Errorf("expected name ad-hoc, got %q", cfg.Name)
	}
	if cfg.Nodes != nodes {
		t.Errorf("expected nodes %d, got %d", nodes, cfg.Nodes)
	}
	if cfg.Threshold != threshold {
		t.Errorf("expected threshold %v, got %v", threshold, cfg.Threshold)
	}
	// Unset fields come from the defaults
	if cfg.AvgDegree != config.Defaults.AvgDegree {
		t.Errorf("expected default avg degree %v, got %v", config.Defaults.AvgDegree, cfg.AvgDegree)
	}
	if cfg.Realizations != config.Defaults.Realizations {
		t.Errorf("expected default realizations %d, got %d", config.Defaults.Realizations, cfg.Realizations)
	}
}

func TestAdHocExperiment_Invalid(t *testing.T) {
	config := Default()

	if _, err := config.AdHocExperiment(ExperimentConfig{Nodes: -5}); err == nil {
		t.Error("expected error for invalid ad-hoc experiment")
	}
}
