package graph

import (
	"fmt"
	"math/rand"
)

// Arena holds reusable buffers for graph generation. Batch drivers give each
// worker its own arena so that regenerating a graph every realization reuses
// the previous realization's storage instead of reallocating it. An arena
// must not be shared between goroutines.
type Arena struct {
	offsets   []int32
	neighbors []int32
	edges     []int32 // attachment targets, m per source, in source order
	degrees   []int32
	fill      []int32
	endpoints []int32 // edge endpoints repeated by degree, sampled for attachment
	targets   []int32
}

// NewArena returns an empty arena. Buffers are sized on first use.
func NewArena() *Arena {
	return &Arena{}
}

// Generate produces a scale-free random graph with n nodes by preferential
// attachment: starting from halfDegree unconnected founder nodes, each new
// node attaches to halfDegree distinct existing nodes chosen with probability
// proportional to their current degree. The mean degree approaches
// 2*halfDegree as n grows, and every node ends with degree at least one.
//
// The draw sequence is fully determined by rng, so a fixed seed reproduces
// the graph exactly. The returned graph aliases the arena's buffers and is
// valid only until the next Generate call on the same arena.
func (a *Arena) Generate(rng *rand.Rand, n, halfDegree int) (*Graph, error) {
	// Step 1: Validate parameters.
	if rng == nil {
		return nil, fmt.Errorf("%w: nil rng", ErrInvalidParameter)
	}
	if n <= 0 || halfDegree <= 0 {
		return nil, fmt.Errorf("%w: n=%d halfDegree=%d, both must be positive", ErrInvalidParameter, n, halfDegree)
	}
	if n < halfDegree+1 {
		return nil, fmt.Errorf("%w: n=%d too small for halfDegree=%d, need n >= halfDegree+1", ErrInvalidParameter, n, halfDegree)
	}

	m := halfDegree
	numEdges := m * (n - m)

	// Step 2: Run the attachment process. The first source attaches to all
	// founders; each later source attaches to a degree-weighted sample of
	// distinct endpoints drawn from the edges created so far.
	a.edges = grow(a.edges, 0)
	a.endpoints = grow(a.endpoints, 0)
	a.targets = grow(a.targets, m)
	for i := 0; i < m; i++ {
		a.targets[i] = int32(i)
	}
	for src := m; src < n; src++ {
		a.edges = append(a.edges, a.targets...)
		a.endpoints = append(a.endpoints, a.targets...)
		for i := 0; i < m; i++ {
			a.endpoints = append(a.endpoints, int32(src))
		}
		if src < n-1 {
			a.sampleTargets(rng, m)
		}
	}

	// Step 3: Assemble the CSR layout from the edge list.
	a.degrees = grow(a.degrees, n)
	for i := range a.degrees {
		a.degrees[i] = 0
	}
	for k, t := range a.edges {
		a.degrees[m+k/m]++
		a.degrees[t]++
	}

	a.offsets = grow(a.offsets, n+1)
	a.offsets[0] = 0
	for v := 0; v < n; v++ {
		a.offsets[v+1] = a.offsets[v] + a.degrees[v]
	}

	a.fill = grow(a.fill, n)
	copy(a.fill, a.offsets[:n])
	a.neighbors = grow(a.neighbors, 2*numEdges)
	for k, t := range a.edges {
		src := int32(m + k/m)
		a.neighbors[a.fill[src]] = t
		a.fill[src]++
		a.neighbors[a.fill[t]] = src
		a.fill[t]++
	}

	return &Graph{offsets: a.offsets, neighbors: a.neighbors}, nil
}

// sampleTargets fills a.targets with m distinct endpoints drawn uniformly
// from the repeated-endpoints list. Endpoints appear in that list once per
// incident edge, which makes a uniform draw degree-proportional.
func (a *Arena) sampleTargets(rng *rand.Rand, m int) {
	a.targets = a.targets[:0]
	for len(a.targets) < m {
		x := a.endpoints[rng.Intn(len(a.endpoints))]
		if !containsInt32(a.targets, x) {
			a.targets = append(a.targets, x)
		}
	}
}

// Generate is shorthand for NewArena().Generate for one-shot callers that do
// not need buffer reuse.
func Generate(rng *rand.Rand, n, halfDegree int) (*Graph, error) {
	return NewArena().Generate(rng, n, halfDegree)
}

// grow reslices s to length n, reusing capacity when possible.
func grow(s []int32, n int) []int32 {
	if cap(s) >= n {
		return s[:n]
	}
	return make([]int32, n)
}

func containsInt32(s []int32, x int32) bool {
	for _, v := range s {
		if v == x {
			return true
		}
	}
	return false
}
