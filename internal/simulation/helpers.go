package simulation

// PathAdjacency returns the adjacency of a path 0-1-...-(n-1).
func PathAdjacency(n int) [][]int {
	adj := make([][]int, n)
	for v := 0; v < n; v++ {
		if v > 0 {
			adj[v] = append(adj[v], v-1)
		}
		if v < n-1 {
			adj[v] = append(adj[v], v+1)
		}
	}
	return adj
}

// CycleAdjacency returns the adjacency of a cycle on n nodes.
func CycleAdjacency(n int) [][]int {
	adj := make([][]int, n)
	for v := 0; v < n; v++ {
		adj[v] = []int{(v + n - 1) % n, (v + 1) % n}
	}
	return adj
}

// StarAdjacency returns the adjacency of a star: hub 0 with the given
// number of leaves.
func StarAdjacency(leaves int) [][]int {
	adj := make([][]int, leaves+1)
	for leaf := 1; leaf <= leaves; leaf++ {
		adj[0] = append(adj[0], leaf)
		adj[leaf] = []int{0}
	}
	return adj
}

// CompleteAdjacency returns the adjacency of a complete graph on n nodes.
func CompleteAdjacency(n int) [][]int {
	adj := make([][]int, n)
	for u := 0; u < n; u++ {
		for v := 0; v < n; v++ {
			if u != v {
				adj[u] = append(adj[u], v)
			}
		}
	}
	return adj
}
