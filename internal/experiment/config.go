package experiment

import (
	"fmt"
	"math"

	"github.com/influsim/influsim/internal/cascade"
)

// Config describes one simulation batch.
type Config struct {
	// Name labels the batch in stores and reports.
	Name string

	// Nodes is the graph size n.
	Nodes int

	// AvgDegree is the target mean degree z. Attachment uses floor(z/2)
	// edges per new node, so the realized mean approaches 2*floor(z/2).
	AvgDegree float64

	// Threshold is the uniform engagement threshold applied to every node.
	Threshold float64

	// ThresholdVector optionally assigns per-node thresholds, indexed by
	// node ID. When set it overrides Threshold and must have Nodes entries.
	ThresholdVector []float64

	// Realizations is the number of independent graph realizations.
	Realizations int

	// Seed is the base RNG seed. Realization i derives its own generator
	// from Seed+i, so tables are reproducible and independent of worker
	// scheduling.
	Seed int64

	// Workers caps the pool size. 0 selects runtime.GOMAXPROCS(0).
	Workers int
}

// HalfDegree returns the number of edges each new node attaches during
// generation, floor(AvgDegree/2).
func (c Config) HalfDegree() int {
	return int(math.Floor(c.AvgDegree / 2))
}

// Validate checks the batch parameters before any worker starts.
func (c Config) Validate() error {
	if c.Nodes <= 0 {
		return fmt.Errorf("nodes must be positive, got %d", c.Nodes)
	}
	if c.HalfDegree() < 1 {
		return fmt.Errorf("avg degree %g yields half-degree %d, need avg degree >= 2", c.AvgDegree, c.HalfDegree())
	}
	if c.Nodes < c.HalfDegree()+1 {
		return fmt.Errorf("nodes=%d too small for avg degree %g, need at least %d", c.Nodes, c.AvgDegree, c.HalfDegree()+1)
	}
	if c.Realizations <= 0 {
		return fmt.Errorf("realizations must be positive, got %d", c.Realizations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return c.thresholds().Validate(c.Nodes)
}

// thresholds resolves the configured thresholds into engine form.
func (c Config) thresholds() cascade.Thresholds {
	if c.ThresholdVector != nil {
		return cascade.PerNode(c.ThresholdVector)
	}
	return cascade.Uniform(c.Threshold)
}
