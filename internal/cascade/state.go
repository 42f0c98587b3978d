package cascade

// State tracks which nodes are engaged. Engagement is monotone: a node can
// flip from disengaged to engaged but never back, so the engaged count only
// grows over the lifetime of a run.
type State struct {
	engaged []bool
	count   int
}

// NewState returns an all-disengaged state over n nodes.
func NewState(n int) *State {
	return &State{engaged: make([]bool, n)}
}

// Reset makes the state all-disengaged over n nodes, reusing storage when
// possible.
func (s *State) Reset(n int) {
	if cap(s.engaged) >= n {
		s.engaged = s.engaged[:n]
		for i := range s.engaged {
			s.engaged[i] = false
		}
	} else {
		s.engaged = make([]bool, n)
	}
	s.count = 0
}

// Len returns the number of nodes the state covers.
func (s *State) Len() int {
	return len(s.engaged)
}

// Engaged reports whether node v is engaged.
func (s *State) Engaged(v int) bool {
	return s.engaged[v]
}

// Engage marks node v engaged. Engaging an already-engaged node is a no-op.
func (s *State) Engage(v int) {
	if !s.engaged[v] {
		s.engaged[v] = true
		s.count++
	}
}

// Count returns the number of engaged nodes.
func (s *State) Count() int {
	return s.count
}

// Equal reports whether two states mark the same nodes engaged.
func (s *State) Equal(o *State) bool {
	if len(s.engaged) != len(o.engaged) || s.count != o.count {
		return false
	}
	for i, e := range s.engaged {
		if e != o.engaged[i] {
			return false
		}
	}
	return true
}

// CopyFrom overwrites s with a snapshot of o. The states must cover the same
// number of nodes.
func (s *State) CopyFrom(o *State) {
	copy(s.engaged, o.engaged)
	s.count = o.count
}
