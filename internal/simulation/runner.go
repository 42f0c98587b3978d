package simulation

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/influsim/influsim/internal/cascade"
	"github.com/influsim/influsim/internal/graph"
)

// Runner executes cascade scenarios against the real generator and engine.
// It owns one graph arena and one engine and reuses them across runs, the
// same way a driver worker does.
type Runner struct {
	t      *testing.T
	arena  *graph.Arena
	engine *cascade.Engine
}

// NewRunner creates a scenario runner.
func NewRunner(t *testing.T) *Runner {
	t.Helper()
	return &Runner{
		t:      t,
		arena:  graph.NewArena(),
		engine: cascade.NewEngine(),
	}
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(s Scenario) ScenarioResult {
	r.t.Helper()
	ctx := context.Background()

	rng := rand.New(rand.NewSource(s.GraphSeed))

	// Phase 1: build the graph.
	var (
		g   *graph.Graph
		err error
	)
	if s.Adjacency != nil {
		g, err = graph.FromAdjacency(s.Adjacency)
	} else {
		g, err = r.arena.Generate(rng, s.Nodes, s.HalfDegree)
	}
	if err != nil {
		r.t.Fatalf("%s: failed to build graph: %v", s.Name, err)
	}

	// Phase 2: resolve the threshold rule.
	var th cascade.Thresholds
	if s.Thresholds != nil {
		th = cascade.PerNode(s.Thresholds)
	} else {
		th = cascade.Uniform(s.Threshold)
	}

	// Phase 3: run the cascades in order on the shared random stream.
	result := ScenarioResult{
		Nodes:    g.NumNodes(),
		Cascades: make([]CascadeResult, len(s.Seeds)),
	}
	for i, seed := range s.Seeds {
		node := seed
		if seed == SeedMaxDegree {
			node = g.MaxDegreeNode()
		}
		res, err := r.engine.Run(ctx, g, node, th, rng)
		if err != nil {
			r.t.Fatalf("%s: cascade %d from node %d: %v", s.Name, i, node, err)
		}
		result.Cascades[i] = CascadeResult{
			Index:  i,
			Seed:   node,
			Count:  res.ActivationCount,
			Rounds: res.Rounds,
		}
	}

	return result
}

// FormatCascadeDebug returns a debug string for a cascade result.
func FormatCascadeDebug(result ScenarioResult, cascadeIndex int) string {
	cr := result.Cascades[cascadeIndex]
	return fmt.Sprintf("cascade %d: seed=%d engaged=%d/%d rounds=%d",
		cr.Index, cr.Seed, cr.Count, result.Nodes, cr.Rounds)
}
