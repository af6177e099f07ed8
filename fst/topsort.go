package fst

// TopOrder returns all states in a topological order (every arc goes from an
// earlier to a later state). States without incoming arcs are visited in
// increasing id order. ErrCyclic is returned if no such order exists.
func TopOrder(f *Fst) ([]StateID, error) {
	n := len(f.states)
	indeg := make([]int, n)
	for s := range f.states {
		for _, a := range f.states[s].arcs {
			indeg[a.NextState]++
		}
	}
	order := make([]StateID, 0, n)
	for s := 0; s < n; s++ {
		if indeg[s] == 0 {
			order = append(order, StateID(s))
		}
	}
	for head := 0; head < len(order); head++ {
		s := order[head]
		for _, a := range f.states[s].arcs {
			indeg[a.NextState]--
			if indeg[a.NextState] == 0 {
				order = append(order, a.NextState)
			}
		}
	}
	if len(order) != n {
		return nil, ErrCyclic
	}
	return order, nil
}

// IsAcyclic reports whether f has no cycles.
func IsAcyclic(f *Fst) bool {
	_, err := TopOrder(f)
	return err == nil
}

// positions inverts a topological order.
func positions(order []StateID) []int {
	pos := make([]int, len(order))
	for i, s := range order {
		pos[s] = i
	}
	return pos
}
