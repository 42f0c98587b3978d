package simulation

// Scenario defines a complete cascade experiment: one graph, a threshold
// rule, and a sequence of seed cascades run in order on a shared random
// stream.
type Scenario struct {
	Name string

	// Graph shape. Adjacency wins when non-nil; otherwise a preferential
	// attachment graph with Nodes and HalfDegree is generated from GraphSeed.
	Adjacency  [][]int
	Nodes      int
	HalfDegree int
	GraphSeed  int64

	// Threshold rule. Thresholds wins when non-nil; otherwise Threshold
	// applies uniformly.
	Threshold  float64
	Thresholds []float64

	// Seeds lists one cascade per entry: a node index, or SeedMaxDegree
	// for the highest-degree node.
	Seeds []int
}

// SeedMaxDegree selects the highest-degree node as the cascade seed.
const SeedMaxDegree = -1

// CascadeResult captures the outcome of a single seed cascade.
type CascadeResult struct {
	Index  int
	Seed   int // resolved seed node
	Count  int
	Rounds int
}

// ScenarioResult captures the graph and all cascade outcomes of a run.
type ScenarioResult struct {
	Nodes    int
	Cascades []CascadeResult
}
