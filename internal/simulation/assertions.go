package simulation

import "testing"

// AssertFullCascade asserts that the cascade engaged every node.
func AssertFullCascade(t *testing.T, result ScenarioResult, cascadeIndex int) {
	t.Helper()
	cr := result.Cascades[cascadeIndex]
	if cr.Count != result.Nodes {
		t.Errorf("AssertFullCascade: cascade %d engaged %d of %d nodes", cascadeIndex, cr.Count, result.Nodes)
	}
}

// AssertNoSpread asserts that the cascade never left its seed: one engaged
// node and a fixed point in the first round.
func AssertNoSpread(t *testing.T, result ScenarioResult, cascadeIndex int) {
	t.Helper()
	cr := result.Cascades[cascadeIndex]
	if cr.Count != 1 || cr.Rounds != 1 {
		t.Errorf("AssertNoSpread: cascade %d engaged %d nodes in %d rounds (want 1 in 1)", cascadeIndex, cr.Count, cr.Rounds)
	}
}

// AssertCountWithin asserts that the engaged count falls in [min, max].
func AssertCountWithin(t *testing.T, result ScenarioResult, cascadeIndex, min, max int) {
	t.Helper()
	cr := result.Cascades[cascadeIndex]
	if cr.Count < min || cr.Count > max {
		t.Errorf("AssertCountWithin: cascade %d engaged %d nodes, not in [%d, %d]", cascadeIndex, cr.Count, min, max)
	}
}

// AssertRoundsWithin asserts that the round count falls in [min, max].
func AssertRoundsWithin(t *testing.T, result ScenarioResult, cascadeIndex, min, max int) {
	t.Helper()
	cr := result.Cascades[cascadeIndex]
	if cr.Rounds < min || cr.Rounds > max {
		t.Errorf("AssertRoundsWithin: cascade %d took %d rounds, not in [%d, %d]", cascadeIndex, cr.Rounds, min, max)
	}
}

// AssertGlobalCascade asserts that the cascade engaged strictly more than
// the given fraction of all nodes.
func AssertGlobalCascade(t *testing.T, result ScenarioResult, cascadeIndex int, fraction float64) {
	t.Helper()
	if !IsGlobalCascade(result, cascadeIndex, fraction) {
		cr := result.Cascades[cascadeIndex]
		t.Errorf("AssertGlobalCascade: cascade %d engaged %d of %d nodes, not above %.0f%%",
			cascadeIndex, cr.Count, result.Nodes, fraction*100)
	}
}

// AssertNoGlobalCascade asserts that the cascade stayed at or below the
// given fraction of all nodes.
func AssertNoGlobalCascade(t *testing.T, result ScenarioResult, cascadeIndex int, fraction float64) {
	t.Helper()
	if IsGlobalCascade(result, cascadeIndex, fraction) {
		cr := result.Cascades[cascadeIndex]
		t.Errorf("AssertNoGlobalCascade: cascade %d engaged %d of %d nodes, above %.0f%%",
			cascadeIndex, cr.Count, result.Nodes, fraction*100)
	}
}

// AssertSameResults asserts that two scenario runs produced identical
// cascade outcomes.
func AssertSameResults(t *testing.T, a, b ScenarioResult) {
	t.Helper()
	if a.Nodes != b.Nodes {
		t.Errorf("AssertSameResults: node counts differ: %d vs %d", a.Nodes, b.Nodes)
		return
	}
	if len(a.Cascades) != len(b.Cascades) {
		t.Errorf("AssertSameResults: cascade counts differ: %d vs %d", len(a.Cascades), len(b.Cascades))
		return
	}
	for i := range a.Cascades {
		if a.Cascades[i] != b.Cascades[i] {
			t.Errorf("AssertSameResults: cascade %d differs: %+v vs %+v", i, a.Cascades[i], b.Cascades[i])
		}
	}
}

// IsGlobalCascade reports whether the cascade engaged strictly more than
// the given fraction of all nodes.
func IsGlobalCascade(result ScenarioResult, cascadeIndex int, fraction float64) bool {
	return float64(result.Cascades[cascadeIndex].Count) > fraction*float64(result.Nodes)
}
