package fst

// PushToInitial reweights f so that the weight of every path is moved as
// close as possible to the start state, leaving the weight of each complete
// path unchanged. The potential of a state is its reverse shortest distance.
// After pushing, the outgoing weights of every state (arcs and final weight)
// Plus to One, and the start state carries the total weight of the
// automaton. States that cannot reach a final state are left untouched.
func PushToInitial(f *Fst) error {
	if len(f.states) == 0 {
		return nil
	}
	beta, err := ShortestDistance(f, true)
	if err != nil {
		return err
	}
	sr := f.sr
	for s := range f.states {
		bs := beta[s]
		if sr.IsZero(bs) {
			continue
		}
		st := &f.states[s]
		for i := range st.arcs {
			a := &st.arcs[i]
			a.Weight = sr.Divide(sr.Times(a.Weight, beta[a.NextState]), bs)
		}
		st.final = sr.Divide(st.final, bs)
	}

	total := beta[f.start]
	if sr.IsZero(total) || total == sr.One() {
		return nil
	}
	start := f.start
	if hasIncoming(f, start) {
		// the old start is also an interior state; give the total weight to a
		// fresh copy of it instead
		ns := f.AddState()
		f.states[ns].arcs = append([]Arc(nil), f.states[start].arcs...)
		f.states[ns].final = f.states[start].final
		f.start = ns
		start = ns
	}
	st := &f.states[start]
	for i := range st.arcs {
		st.arcs[i].Weight = sr.Times(total, st.arcs[i].Weight)
	}
	st.final = sr.Times(total, st.final)
	return nil
}

func hasIncoming(f *Fst, target StateID) bool {
	for s := range f.states {
		for _, a := range f.states[s].arcs {
			if a.NextState == target {
				return true
			}
		}
	}
	return false
}
