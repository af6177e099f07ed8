package fst

import "sort"

type arcKey struct {
	ilabel, olabel Label
	next           StateID
}

// RmEpsilon replaces every path of epsilon arcs followed by a non-epsilon arc
// with a single arc, and folds final weights reachable through epsilon arcs
// into the state the epsilon path starts at. Arcs that end up with the same
// labels and destination are merged with Plus. The automaton must be acyclic,
// so each closure is computed in one pass in topological order. States that
// only were reachable through epsilon arcs become inaccessible; call Connect
// to drop them.
func RmEpsilon(f *Fst) error {
	order, err := TopOrder(f)
	if err != nil {
		return err
	}
	pos := positions(order)
	sr := f.sr
	n := len(f.states)

	newArcs := make([][]Arc, n)
	newFinal := make([]float64, n)
	dist := make([]float64, n)
	seen := make([]bool, n)

	var closure, stack []StateID
	for s := StateID(0); int(s) < n; s++ {
		// collect the epsilon closure of s
		closure = closure[:0]
		stack = append(stack[:0], s)
		seen[s] = true
		for len(stack) > 0 {
			q := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			closure = append(closure, q)
			for _, a := range f.states[q].arcs {
				if a.IsEpsilon() && !seen[a.NextState] {
					seen[a.NextState] = true
					stack = append(stack, a.NextState)
				}
			}
		}
		sort.Slice(closure, func(i, j int) bool { return pos[closure[i]] < pos[closure[j]] })

		for _, q := range closure {
			dist[q] = sr.Zero()
		}
		dist[s] = sr.One()
		final := sr.Zero()
		var arcs []Arc
		index := make(map[arcKey]int)
		for _, q := range closure {
			seen[q] = false
			dq := dist[q]
			if sr.IsZero(dq) {
				continue
			}
			final = sr.Plus(final, sr.Times(dq, f.states[q].final))
			for _, a := range f.states[q].arcs {
				w := sr.Times(dq, a.Weight)
				if a.IsEpsilon() {
					dist[a.NextState] = sr.Plus(dist[a.NextState], w)
					continue
				}
				k := arcKey{a.ILabel, a.OLabel, a.NextState}
				if i, ok := index[k]; ok {
					arcs[i].Weight = sr.Plus(arcs[i].Weight, w)
					continue
				}
				index[k] = len(arcs)
				arcs = append(arcs, Arc{ILabel: a.ILabel, OLabel: a.OLabel, Weight: w, NextState: a.NextState})
			}
		}
		newArcs[s] = arcs
		newFinal[s] = final
	}

	for s := range f.states {
		f.states[s].arcs = newArcs[s]
		f.states[s].final = newFinal[s]
	}
	return nil
}
