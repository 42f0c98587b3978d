// Package simulation provides a scenario harness for validating emergent
// cascade dynamics end to end.
//
// Scenarios exercise the real preferential attachment generator and the real
// cascade engine, no mocks. A scenario describes one graph (generated or
// handcrafted), a threshold rule, and a sequence of seed cascades; results
// feed property-based assertions.
//
// Usage:
//
//	func TestHubSeeding(t *testing.T) {
//	    r := simulation.NewRunner(t)
//	    result := r.Run(simulation.Scenario{
//	        Name:      "hub-seeding",
//	        Adjacency: simulation.StarAdjacency(10),
//	        Threshold: 0.5,
//	        Seeds:     []int{simulation.SeedMaxDegree, 1},
//	    })
//	    simulation.AssertFullCascade(t, result, 0)
//	    simulation.AssertNoSpread(t, result, 1)
//	}
package simulation
