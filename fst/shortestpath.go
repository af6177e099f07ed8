package fst

// Path is a complete path of an automaton.
type Path struct {
	Weight  float64 // Times of the arc weights and the final weight
	ILabels []Label // non-epsilon input labels in path order
	OLabels []Label // non-epsilon output labels in path order
}

type partialPath struct {
	weight  float64
	prev    StateID
	prevIdx int
	arc     int
}

// insertBest inserts p into list, kept sorted by ascending weight and capped
// at n entries. Equal weights keep insertion order.
func insertBest(list []partialPath, p partialPath, n int) []partialPath {
	if len(list) == n && p.weight >= list[n-1].weight {
		return list
	}
	i := len(list)
	for i > 0 && p.weight < list[i-1].weight {
		i--
	}
	if len(list) < n {
		list = append(list, partialPath{})
	}
	copy(list[i+1:], list[i:len(list)-1])
	list[i] = p
	return list
}

// ShortestPaths returns up to n complete paths of f in ascending weight
// order. Paths are relaxed over the states in topological order, keeping the
// n cheapest prefixes reaching each state; among equal weights the path
// discovered first wins. An automaton without successful paths yields an
// empty result.
func ShortestPaths(f *Fst, n int) ([]Path, error) {
	if n <= 0 || len(f.states) == 0 || f.start == NoStateID {
		return nil, nil
	}
	order, err := TopOrder(f)
	if err != nil {
		return nil, err
	}
	sr := f.sr
	lists := make([][]partialPath, len(f.states))
	lists[f.start] = []partialPath{{weight: sr.One(), prev: NoStateID, prevIdx: -1, arc: -1}}

	// finals reuse partialPath: prev is the final state, prevIdx its entry
	var finals []partialPath
	for _, s := range order {
		st := &f.states[s]
		for idx, p := range lists[s] {
			if w := sr.Times(p.weight, st.final); !sr.IsZero(w) {
				finals = insertBest(finals, partialPath{weight: w, prev: s, prevIdx: idx, arc: -1}, n)
			}
			for ai, a := range st.arcs {
				w := sr.Times(p.weight, a.Weight)
				if sr.IsZero(w) {
					continue
				}
				lists[a.NextState] = insertBest(lists[a.NextState], partialPath{weight: w, prev: s, prevIdx: idx, arc: ai}, n)
			}
		}
	}

	paths := make([]Path, 0, len(finals))
	for _, fp := range finals {
		var arcs []Arc
		s, idx := fp.prev, fp.prevIdx
		for {
			p := lists[s][idx]
			if p.prev == NoStateID {
				break
			}
			arcs = append(arcs, f.states[p.prev].arcs[p.arc])
			s, idx = p.prev, p.prevIdx
		}
		path := Path{Weight: fp.weight}
		for i := len(arcs) - 1; i >= 0; i-- {
			if arcs[i].ILabel != Epsilon {
				path.ILabels = append(path.ILabels, arcs[i].ILabel)
			}
			if arcs[i].OLabel != Epsilon {
				path.OLabels = append(path.OLabels, arcs[i].OLabel)
			}
		}
		paths = append(paths, path)
	}
	return paths, nil
}
