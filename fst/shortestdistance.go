package fst

import "github.com/ieee0824/wordindex-go/internal/mathutil"

// ShortestDistance returns, for every state, the Plus over all path weights
// from the start state to it (reverse == false), or from it to any final
// state including the final weight (reverse == true). Unreachable states get
// Zero. A single topological pass is made; cycles yield ErrCyclic.
func ShortestDistance(f *Fst, reverse bool) ([]float64, error) {
	order, err := TopOrder(f)
	if err != nil {
		return nil, err
	}
	sr := f.sr
	d := mathutil.NewVecFill(len(f.states), sr.Zero())
	if len(f.states) == 0 {
		return d, nil
	}
	if !reverse {
		d[f.start] = sr.One()
		for _, s := range order {
			if sr.IsZero(d[s]) {
				continue
			}
			for _, a := range f.states[s].arcs {
				d[a.NextState] = sr.Plus(d[a.NextState], sr.Times(d[s], a.Weight))
			}
		}
		return d, nil
	}
	for i := len(order) - 1; i >= 0; i-- {
		s := order[i]
		w := f.states[s].final
		for _, a := range f.states[s].arcs {
			w = sr.Plus(w, sr.Times(a.Weight, d[a.NextState]))
		}
		d[s] = w
	}
	return d, nil
}
