// Package graph provides the networks cascade simulations run on: a compact
// undirected graph in compressed sparse row form, plus a preferential
// attachment generator that produces the scale-free degree distributions the
// influential hypothesis is tested against.
package graph

import (
	"errors"
	"fmt"
)

// ErrInvalidParameter reports constructor or generator arguments that violate
// their preconditions.
var ErrInvalidParameter = errors.New("graph: invalid parameter")

// Graph is a simple undirected graph over dense integer node IDs. It is
// immutable once built. Adjacency is stored in compressed sparse row form:
// the neighbors of node v occupy neighbors[offsets[v]:offsets[v+1]], so
// degree lookups and neighbor scans touch contiguous memory.
type Graph struct {
	offsets   []int32
	neighbors []int32
}

// NumNodes returns the number of nodes.
func (g *Graph) NumNodes() int {
	return len(g.offsets) - 1
}

// NumEdges returns the number of undirected edges.
func (g *Graph) NumEdges() int {
	return len(g.neighbors) / 2
}

// Degree returns the number of neighbors of node v.
func (g *Graph) Degree(v int) int {
	return int(g.offsets[v+1] - g.offsets[v])
}

// Neighbors returns the neighbor list of node v. The slice aliases the
// graph's internal storage and must not be modified.
func (g *Graph) Neighbors(v int) []int32 {
	return g.neighbors[g.offsets[v]:g.offsets[v+1]]
}

// AvgDegree returns the mean node degree.
func (g *Graph) AvgDegree() float64 {
	n := g.NumNodes()
	if n == 0 {
		return 0
	}
	return float64(len(g.neighbors)) / float64(n)
}

// MaxDegreeNode returns the node with the highest degree. Ties are broken
// toward the lowest node ID: the scan is linear and keeps the first
// occurrence of the maximum.
func (g *Graph) MaxDegreeNode() int {
	best := 0
	bestDeg := -1
	for v := 0; v < g.NumNodes(); v++ {
		if d := g.Degree(v); d > bestDeg {
			best = v
			bestDeg = d
		}
	}
	return best
}

// FromAdjacency builds a graph from explicit neighbor lists, for callers
// bringing their own topology. The input must describe a simple undirected
// graph: no self-loops, no duplicate edges, and every edge listed from both
// endpoints.
func FromAdjacency(adj [][]int) (*Graph, error) {
	n := len(adj)
	if n == 0 {
		return nil, fmt.Errorf("%w: empty adjacency", ErrInvalidParameter)
	}

	seen := make(map[int64]bool)
	total := 0
	for u, row := range adj {
		for _, v := range row {
			if v < 0 || v >= n {
				return nil, fmt.Errorf("%w: node %d lists neighbor %d outside [0,%d)", ErrInvalidParameter, u, v, n)
			}
			if v == u {
				return nil, fmt.Errorf("%w: self-loop on node %d", ErrInvalidParameter, u)
			}
			key := int64(u)*int64(n) + int64(v)
			if seen[key] {
				return nil, fmt.Errorf("%w: duplicate edge %d-%d", ErrInvalidParameter, u, v)
			}
			seen[key] = true
		}
		total += len(row)
	}
	for key := range seen {
		u, v := key/int64(n), key%int64(n)
		if !seen[v*int64(n)+u] {
			return nil, fmt.Errorf("%w: edge %d-%d missing reverse entry", ErrInvalidParameter, u, v)
		}
	}

	g := &Graph{
		offsets:   make([]int32, n+1),
		neighbors: make([]int32, 0, total),
	}
	for u, row := range adj {
		for _, v := range row {
			g.neighbors = append(g.neighbors, int32(v))
		}
		g.offsets[u+1] = int32(len(g.neighbors))
	}
	return g, nil
}
