// Package results defines the output matrix of a simulation batch and the
// derived statistics reported from it.
package results

import "fmt"

// Row records one realization: a cascade seeded at a uniformly random node
// and a cascade seeded at the highest-degree node, both run on the same
// graph.
type Row struct {
	RandomActivation      int `json:"random_activation"`
	RandomRounds          int `json:"random_rounds"`
	InfluentialActivation int `json:"influential_activation"`
	InfluentialRounds     int `json:"influential_rounds"`
}

// Table holds realization rows for graphs of a fixed node count.
type Table struct {
	Nodes int   `json:"nodes"`
	Rows  []Row `json:"rows"`
}

// New returns a table with realizations preallocated rows, ready for
// index-addressed writes by a batch driver.
func New(nodes, realizations int) *Table {
	return &Table{Nodes: nodes, Rows: make([]Row, realizations)}
}

// Concat merges tables row-wise. All tables must share the same node count,
// since per-row statistics such as the global-cascade test scale with it.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return nil, fmt.Errorf("results: no tables to concatenate")
	}
	nodes := tables[0].Nodes
	total := 0
	for _, t := range tables {
		if t.Nodes != nodes {
			return nil, fmt.Errorf("results: cannot concatenate tables with %d and %d nodes", nodes, t.Nodes)
		}
		total += len(t.Rows)
	}

	out := &Table{Nodes: nodes, Rows: make([]Row, 0, total)}
	for _, t := range tables {
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out, nil
}
