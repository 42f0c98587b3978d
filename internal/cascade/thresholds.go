package cascade

import "fmt"

// Thresholds assigns each node the engaged-neighbor fraction it must strictly
// exceed before engaging. The zero value is a uniform threshold of 0.
type Thresholds struct {
	uniform float64
	perNode []float64
}

// Uniform returns thresholds where every node shares the same value. No
// per-node vector is materialized, so uniform thresholds cost nothing
// regardless of graph size.
func Uniform(v float64) Thresholds {
	return Thresholds{uniform: v}
}

// PerNode returns thresholds taken from an explicit vector, indexed by node
// ID. The caller must not modify values afterwards.
func PerNode(values []float64) Thresholds {
	return Thresholds{perNode: values}
}

// At returns the threshold of node v.
func (t Thresholds) At(v int) float64 {
	if t.perNode != nil {
		return t.perNode[v]
	}
	return t.uniform
}

// Validate checks that thresholds fit a graph of n nodes and that every value
// lies in [0,1].
func (t Thresholds) Validate(n int) error {
	if t.perNode != nil {
		if len(t.perNode) != n {
			return fmt.Errorf("%w: %d thresholds for %d nodes", ErrInvalidParameter, len(t.perNode), n)
		}
		for i, v := range t.perNode {
			if v < 0 || v > 1 {
				return fmt.Errorf("%w: threshold[%d]=%g outside [0,1]", ErrInvalidParameter, i, v)
			}
		}
		return nil
	}
	if t.uniform < 0 || t.uniform > 1 {
		return fmt.Errorf("%w: threshold %g outside [0,1]", ErrInvalidParameter, t.uniform)
	}
	return nil
}
