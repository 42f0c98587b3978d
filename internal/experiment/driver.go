// Package experiment runs simulation batches. A batch generates many
// independent graph realizations and, on each one, compares a cascade seeded
// at a uniformly random node against a cascade seeded at the highest-degree
// node. Realizations are distributed over a worker pool; each worker owns its
// generation arena and cascade engine, so steady-state batches reuse buffers
// instead of allocating per realization.
package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/influsim/influsim/internal/cascade"
	"github.com/influsim/influsim/internal/graph"
	"github.com/influsim/influsim/internal/logging"
	"github.com/influsim/influsim/internal/results"
)

// Runner executes simulation batches.
type Runner struct {
	log   *slog.Logger
	trace *logging.TraceLogger
}

// NewRunner creates a batch runner. trace may be nil to disable per-realization
// trace output.
func NewRunner(log *slog.Logger, trace *logging.TraceLogger) *Runner {
	if log == nil {
		log = slog.Default()
	}
	return &Runner{log: log, trace: trace}
}

// Run executes cfg.Realizations independent realizations and returns the
// completed result table. Each realization writes its own preallocated row,
// so workers never contend on the table; results are collected after the
// pool joins.
//
// The first realization failure cancels the remaining work and is returned.
// Rows completed by other workers are unaffected, but the partial table is
// discarded: a failed batch produces no output.
func (r *Runner) Run(ctx context.Context, cfg Config) (*results.Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("experiment %q: %w", cfg.Name, err)
	}

	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > cfg.Realizations {
		workers = cfg.Realizations
	}

	table := results.New(cfg.Nodes, cfg.Realizations)
	th := cfg.thresholds()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	start := time.Now()
	r.log.Info("batch started",
		"name", cfg.Name,
		"nodes", cfg.Nodes,
		"avg_degree", cfg.AvgDegree,
		"realizations", cfg.Realizations,
		"workers", workers,
		"seed", cfg.Seed)

	indices := make(chan int)
	errCh := make(chan error, workers)
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			arena := graph.NewArena()
			engine := cascade.NewEngine()
			for i := range indices {
				row, err := r.runRealization(ctx, arena, engine, cfg, th, i)
				if err != nil {
					// Only the first failure is reported; the rest of the
					// batch is cancelled.
					select {
					case errCh <- fmt.Errorf("realization %d: %w", i, err):
					default:
					}
					cancel()
					return
				}
				table.Rows[i] = row
			}
		}()
	}

	go func() {
		defer close(indices)
		for i := 0; i < cfg.Realizations; i++ {
			select {
			case indices <- i:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()

	select {
	case err := <-errCh:
		return nil, fmt.Errorf("experiment %q: %w", cfg.Name, err)
	default:
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.log.Info("batch finished",
		"name", cfg.Name,
		"realizations", cfg.Realizations,
		"duration", time.Since(start))
	return table, nil
}

// runRealization generates one graph and runs the paired cascades on it. The
// realization's RNG is derived from the batch seed and the realization index,
// so every row is reproducible no matter which worker executes it.
func (r *Runner) runRealization(ctx context.Context, arena *graph.Arena, engine *cascade.Engine, cfg Config, th cascade.Thresholds, i int) (results.Row, error) {
	rng := rand.New(rand.NewSource(cfg.Seed + int64(i)))

	g, err := arena.Generate(rng, cfg.Nodes, cfg.HalfDegree())
	if err != nil {
		return results.Row{}, fmt.Errorf("generate graph: %w", err)
	}

	randomSeed := rng.Intn(cfg.Nodes)
	randomRes, err := engine.Run(ctx, g, randomSeed, th, rng)
	if err != nil {
		return results.Row{}, fmt.Errorf("random-seed cascade: %w", err)
	}

	influentialSeed := g.MaxDegreeNode()
	influentialRes, err := engine.Run(ctx, g, influentialSeed, th, rng)
	if err != nil {
		return results.Row{}, fmt.Errorf("influential-seed cascade: %w", err)
	}

	row := results.Row{
		RandomActivation:      randomRes.ActivationCount,
		RandomRounds:          randomRes.Rounds,
		InfluentialActivation: influentialRes.ActivationCount,
		InfluentialRounds:     influentialRes.Rounds,
	}

	r.log.Debug("realization complete",
		"name", cfg.Name,
		"index", i,
		"random_seed", randomSeed,
		"influential_seed", influentialSeed,
		"random_activation", row.RandomActivation,
		"influential_activation", row.InfluentialActivation)
	r.trace.Log(map[string]any{
		"batch":                  cfg.Name,
		"realization":            i,
		"random_seed":            randomSeed,
		"influential_seed":       influentialSeed,
		"random_activation":      row.RandomActivation,
		"random_rounds":          row.RandomRounds,
		"influential_activation": row.InfluentialActivation,
		"influential_rounds":     row.InfluentialRounds,
	})

	return row, nil
}
