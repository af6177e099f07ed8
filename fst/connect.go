package fst

// Connect removes every state that is not both accessible from the start
// state and coaccessible to a final state, together with arcs touching them.
// Surviving states keep their relative order. An automaton without any
// successful path ends up with no states.
func Connect(f *Fst) {
	n := len(f.states)
	if n == 0 || f.start == NoStateID {
		f.DeleteStates()
		return
	}
	access := make([]bool, n)
	stack := []StateID{f.start}
	access[f.start] = true
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, a := range f.states[s].arcs {
			if !access[a.NextState] {
				access[a.NextState] = true
				stack = append(stack, a.NextState)
			}
		}
	}

	// coaccessibility over the reversed graph
	preds := make([][]StateID, n)
	coaccess := make([]bool, n)
	stack = stack[:0]
	for s := 0; s < n; s++ {
		for _, a := range f.states[s].arcs {
			preds[a.NextState] = append(preds[a.NextState], StateID(s))
		}
		if f.IsFinal(StateID(s)) {
			coaccess[s] = true
			stack = append(stack, StateID(s))
		}
	}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, p := range preds[s] {
			if !coaccess[p] {
				coaccess[p] = true
				stack = append(stack, p)
			}
		}
	}

	if !access[f.start] || !coaccess[f.start] {
		f.DeleteStates()
		return
	}
	remap := make([]StateID, n)
	next := StateID(0)
	for s := 0; s < n; s++ {
		if access[s] && coaccess[s] {
			remap[s] = next
			next++
		} else {
			remap[s] = NoStateID
		}
	}
	kept := make([]state, 0, next)
	for s := 0; s < n; s++ {
		if remap[s] == NoStateID {
			continue
		}
		st := f.states[s]
		arcs := st.arcs[:0]
		for _, a := range st.arcs {
			if remap[a.NextState] == NoStateID {
				continue
			}
			a.NextState = remap[a.NextState]
			arcs = append(arcs, a)
		}
		st.arcs = arcs
		kept = append(kept, st)
	}
	f.states = kept
	f.start = remap[f.start]
}
