package experiment

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/influsim/influsim/internal/cascade"
	"github.com/influsim/influsim/internal/logging"
)

func testRunner() *Runner {
	return NewRunner(logging.NewLogger("info", io.Discard), nil)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Nodes: 100, AvgDegree: 4, Threshold: 0.18, Realizations: 10}
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero nodes", Config{Nodes: 0, AvgDegree: 4, Realizations: 10}},
		{"avg degree below 2", Config{Nodes: 100, AvgDegree: 1.9, Realizations: 10}},
		{"nodes below halfDegree+1", Config{Nodes: 2, AvgDegree: 4, Realizations: 10}},
		{"zero realizations", Config{Nodes: 100, AvgDegree: 4, Realizations: 0}},
		{"negative workers", Config{Nodes: 100, AvgDegree: 4, Realizations: 10, Workers: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_ValidateThresholds(t *testing.T) {
	cfg := Config{Nodes: 100, AvgDegree: 4, Threshold: 1.5, Realizations: 10}
	if err := cfg.Validate(); !errors.Is(err, cascade.ErrInvalidParameter) {
		t.Errorf("expected cascade.ErrInvalidParameter, got %v", err)
	}

	cfg = Config{Nodes: 100, AvgDegree: 4, ThresholdVector: []float64{0.1, 0.2}, Realizations: 10}
	if err := cfg.Validate(); !errors.Is(err, cascade.ErrInvalidParameter) {
		t.Errorf("expected cascade.ErrInvalidParameter for short vector, got %v", err)
	}
}

func TestConfig_HalfDegree(t *testing.T) {
	tests := []struct {
		avgDegree float64
		want      int
	}{
		{4, 2},
		{5, 2},
		{2, 1},
		{3.8, 1},
	}
	for _, tt := range tests {
		cfg := Config{AvgDegree: tt.avgDegree}
		if got := cfg.HalfDegree(); got != tt.want {
			t.Errorf("HalfDegree with avg %g = %d, want %d", tt.avgDegree, got, tt.want)
		}
	}
}

func TestRun_ProducesRequestedRows(t *testing.T) {
	cfg := Config{
		Name:         "scenario-c",
		Nodes:        100,
		AvgDegree:    4,
		Threshold:    0.1,
		Realizations: 50,
		Seed:         42,
		Workers:      4,
	}

	table, err := testRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(table.Rows) != 50 {
		t.Fatalf("expected 50 rows, got %d", len(table.Rows))
	}
	if table.Nodes != 100 {
		t.Errorf("expected table over 100 nodes, got %d", table.Nodes)
	}
	for i, row := range table.Rows {
		if row.RandomActivation < 1 || row.RandomRounds < 1 || row.InfluentialActivation < 1 || row.InfluentialRounds < 1 {
			t.Errorf("row %d has a field below 1: %+v", i, row)
		}
		if row.RandomActivation > 100 || row.InfluentialActivation > 100 {
			t.Errorf("row %d activation exceeds node count: %+v", i, row)
		}
		if row.RandomRounds > 100 || row.InfluentialRounds > 100 {
			t.Errorf("row %d rounds exceed node count: %+v", i, row)
		}
	}
}

func TestRun_DeterministicAcrossWorkerCounts(t *testing.T) {
	base := Config{
		Name:         "determinism",
		Nodes:        60,
		AvgDegree:    4,
		Threshold:    0.15,
		Realizations: 20,
		Seed:         7,
	}

	serial := base
	serial.Workers = 1
	parallel := base
	parallel.Workers = 5

	a, err := testRunner().Run(context.Background(), serial)
	if err != nil {
		t.Fatalf("serial Run failed: %v", err)
	}
	b, err := testRunner().Run(context.Background(), parallel)
	if err != nil {
		t.Fatalf("parallel Run failed: %v", err)
	}

	if !slices.Equal(a.Rows, b.Rows) {
		t.Error("expected identical rows regardless of worker count")
	}
}

func TestRun_ZeroThresholdSweepsWholeGraph(t *testing.T) {
	// Generated graphs are connected, and with threshold 0 any engaged
	// neighbor is enough, so both seeding strategies must reach every node.
	cfg := Config{
		Name:         "sweep",
		Nodes:        50,
		AvgDegree:    4,
		Threshold:    0,
		Realizations: 10,
		Seed:         3,
		Workers:      2,
	}

	table, err := testRunner().Run(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	for i, row := range table.Rows {
		if row.RandomActivation != 50 || row.InfluentialActivation != 50 {
			t.Errorf("row %d: expected full sweeps on the shared graph, got %+v", i, row)
		}
	}
}

func TestRun_InvalidConfigRejected(t *testing.T) {
	if _, err := testRunner().Run(context.Background(), Config{}); err == nil {
		t.Error("expected error for zero config")
	}

	cfg := Config{Nodes: 100, AvgDegree: 4, Threshold: 2, Realizations: 5}
	if _, err := testRunner().Run(context.Background(), cfg); !errors.Is(err, cascade.ErrInvalidParameter) {
		t.Errorf("expected cascade.ErrInvalidParameter, got %v", err)
	}
}

func TestRun_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	cfg := Config{
		Name:         "cancelled",
		Nodes:        200,
		AvgDegree:    4,
		Threshold:    0.2,
		Realizations: 100,
		Seed:         1,
		Workers:      2,
	}

	if _, err := testRunner().Run(ctx, cfg); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestRun_WorkerPoolSizing(t *testing.T) {
	// Workers=0 falls back to GOMAXPROCS; more workers than realizations
	// is capped rather than an error.
	for _, workers := range []int{0, 8} {
		cfg := Config{
			Name:         "sizing",
			Nodes:        30,
			AvgDegree:    4,
			Threshold:    0.2,
			Realizations: 2,
			Seed:         5,
			Workers:      workers,
		}
		table, err := testRunner().Run(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Run with workers=%d failed: %v", workers, err)
		}
		if len(table.Rows) != 2 {
			t.Errorf("workers=%d: expected 2 rows, got %d", workers, len(table.Rows))
		}
	}
}

func TestRun_WritesRealizationTrace(t *testing.T) {
	dir := t.TempDir()
	trace := logging.NewTraceLogger(dir, "debug")
	runner := NewRunner(logging.NewLogger("info", io.Discard), trace)

	cfg := Config{
		Name:         "traced",
		Nodes:        40,
		AvgDegree:    4,
		Threshold:    0.2,
		Realizations: 5,
		Seed:         9,
		Workers:      2,
	}
	if _, err := runner.Run(context.Background(), cfg); err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	trace.Close()

	data, err := os.ReadFile(filepath.Join(dir, "trace.jsonl"))
	if err != nil {
		t.Fatalf("failed to read trace.jsonl: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 5 {
		t.Errorf("expected 5 trace lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], `"batch":"traced"`) {
		t.Errorf("expected batch name in trace line, got %q", lines[0])
	}
}
