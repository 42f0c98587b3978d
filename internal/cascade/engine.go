// Package cascade implements threshold-based engagement dynamics on a fixed
// graph. A node engages once the fraction of its engaged neighbors strictly
// exceeds its threshold, engagement never reverts, and a cascade runs until
// a full round changes nothing.
package cascade

import (
	"context"
	"errors"
	"fmt"
	"math/rand"

	"github.com/influsim/influsim/internal/graph"
)

var (
	// ErrInvalidParameter reports arguments that violate an operation's
	// preconditions.
	ErrInvalidParameter = errors.New("cascade: invalid parameter")

	// ErrZeroDegreeNode reports an engagement-fraction query against a node
	// with no neighbors. Generated graphs never contain one; seeing this
	// error means the input graph violated the generator's contract.
	ErrZeroDegreeNode = errors.New("cascade: zero-degree node")

	// ErrNonTerminating reports a cascade that failed to reach a fixed point
	// within n rounds. Monotone dynamics guarantee stability by then, so
	// this error always indicates an internal invariant violation.
	ErrNonTerminating = errors.New("cascade: no fixed point reached")
)

// Result describes a completed cascade.
type Result struct {
	// ActivationCount is the number of engaged nodes at the fixed point,
	// including the seed.
	ActivationCount int

	// Rounds is the number of update rounds until stability, counting the
	// terminal no-change round. A cascade that never spreads reports 1.
	Rounds int
}

// FractionEngaged returns the fraction of v's neighbors that are engaged in
// st, in [0,1]. Querying a node with no neighbors returns ErrZeroDegreeNode.
func FractionEngaged(g *graph.Graph, st *State, v int) (float64, error) {
	deg := g.Degree(v)
	if deg == 0 {
		return 0, fmt.Errorf("%w: node %d", ErrZeroDegreeNode, v)
	}
	engaged := 0
	for _, w := range g.Neighbors(v) {
		if st.Engaged(int(w)) {
			engaged++
		}
	}
	return float64(engaged) / float64(deg), nil
}

// Advance applies one update round to cur: it snapshots cur into prev, then
// visits every node in a fresh uniformly random permutation and engages each
// disengaged node whose engaged-neighbor fraction strictly exceeds its
// threshold. Nodes visited later in the round see engagements made earlier in
// the same round. It returns the number of nodes that engaged; the caller's
// pre-round view of the state survives in prev.
func Advance(g *graph.Graph, cur, prev *State, th Thresholds, rng *rand.Rand) (int, error) {
	n := g.NumNodes()
	if cur.Len() != n || prev.Len() != n {
		return 0, fmt.Errorf("%w: state covers %d/%d nodes, graph has %d", ErrInvalidParameter, cur.Len(), prev.Len(), n)
	}
	if err := th.Validate(n); err != nil {
		return 0, err
	}
	if rng == nil {
		return 0, fmt.Errorf("%w: nil rng", ErrInvalidParameter)
	}
	return advance(g, cur, prev, th, rng, make([]int32, n))
}

// advance is Advance without validation, writing the visit order into perm.
func advance(g *graph.Graph, cur, prev *State, th Thresholds, rng *rand.Rand, perm []int32) (int, error) {
	prev.CopyFrom(cur)

	for i := range perm {
		perm[i] = int32(i)
	}
	rng.Shuffle(len(perm), func(i, j int) {
		perm[i], perm[j] = perm[j], perm[i]
	})

	changed := 0
	for _, vi := range perm {
		v := int(vi)
		if cur.Engaged(v) {
			continue
		}
		f, err := FractionEngaged(g, cur, v)
		if err != nil {
			return changed, err
		}
		if f > th.At(v) {
			cur.Engage(v)
			changed++
		}
	}
	return changed, nil
}

// Engine drives cascades to their fixed point. It owns reusable state and
// permutation buffers, so one engine serves many runs without reallocating.
// An engine must not be shared between goroutines.
type Engine struct {
	cur  State
	prev State
	perm []int32
}

// NewEngine returns an engine with empty buffers, sized on first run.
func NewEngine() *Engine {
	return &Engine{}
}

// Run starts a cascade with only seed engaged and applies update rounds until
// a round leaves the state identical to its input, comparing each post-round
// state against the snapshot of the state the round started from. The round
// counter starts at 1 and the terminal round is counted.
//
// Monotone engagement bounds the process: every non-terminal round engages at
// least one node, so stability arrives within n rounds. If it does not, Run
// aborts with ErrNonTerminating rather than loop forever. Cancellation is
// checked between rounds.
func (e *Engine) Run(ctx context.Context, g *graph.Graph, seed int, th Thresholds, rng *rand.Rand) (Result, error) {
	n := g.NumNodes()
	if seed < 0 || seed >= n {
		return Result{}, fmt.Errorf("%w: seed node %d outside [0,%d)", ErrInvalidParameter, seed, n)
	}
	if err := th.Validate(n); err != nil {
		return Result{}, err
	}
	if rng == nil {
		return Result{}, fmt.Errorf("%w: nil rng", ErrInvalidParameter)
	}

	e.cur.Reset(n)
	e.prev.Reset(n)
	if cap(e.perm) >= n {
		e.perm = e.perm[:n]
	} else {
		e.perm = make([]int32, n)
	}
	e.cur.Engage(seed)

	for round := 1; round <= n; round++ {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		if _, err := advance(g, &e.cur, &e.prev, th, rng, e.perm); err != nil {
			return Result{}, err
		}
		if e.cur.Equal(&e.prev) {
			return Result{ActivationCount: e.cur.Count(), Rounds: round}, nil
		}
	}
	return Result{}, fmt.Errorf("%w: seed %d still spreading after %d rounds", ErrNonTerminating, seed, n)
}
