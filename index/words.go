package index

import (
	"github.com/golang/glog"

	"github.com/ieee0824/wordindex-go/fst"
)

// WordsFst rewrites a character automaton in place into an automaton that
// accepts the words of the original: every maximal run of non-separator
// characters along some path. The weight of a word path is the weight mass
// of all original paths through that occurrence, divided by the total mass,
// so it reads as a negative log posterior. Forward and backward scores are
// computed in f's semiring. The empty word is never accepted, and f must be
// acyclic.
func WordsFst(f *fst.Fst, separators SeparatorSet) error {
	if f.Start() == fst.NoStateID {
		return nil
	}
	sr := f.Semiring()
	fw, err := fst.ShortestDistance(f, false)
	if err != nil {
		return err
	}
	bw, err := fst.ShortestDistance(f, true)
	if err != nil {
		return err
	}
	start := f.Start()
	total := bw[start]
	if sr.IsZero(total) {
		f.DeleteStates()
		return nil
	}

	final := f.AddState()
	var fromStart []fst.Arc
	for s := fst.StateID(0); s < final; s++ {
		arcs := f.Arcs(s)
		next := make([]fst.Arc, 0, len(arcs)+1)
		if f.IsFinal(s) {
			next = append(next, fst.Arc{Weight: f.Final(s), NextState: final})
			f.SetFinal(s, sr.Zero())
		}
		for _, a := range arcs {
			if !separators.Contains(a.ILabel) {
				next = append(next, a)
				continue
			}
			// s closes a word, a.NextState opens one
			if w := sr.Times(a.Weight, bw[a.NextState]); !sr.IsZero(w) {
				next = append(next, fst.Arc{Weight: w, NextState: final})
			}
			if w := sr.Times(fw[s], a.Weight); !sr.IsZero(w) {
				fromStart = append(fromStart, fst.Arc{Weight: w, NextState: a.NextState})
			}
		}
		f.SetArcs(s, next)
	}
	for _, a := range fromStart {
		f.AddArc(start, a)
	}
	f.SetFinal(final, sr.Divide(sr.One(), total))

	if err := fst.RmEpsilon(f); err != nil {
		return err
	}
	fst.Connect(f)
	if f.Start() == fst.NoStateID {
		return nil
	}
	if f.IsFinal(f.Start()) {
		f.SetFinal(f.Start(), sr.Zero())
		fst.Connect(f)
	}
	if glog.V(2) {
		glog.Infof("words fst: %d states, %d arcs, total %g", f.NumStates(), f.TotalArcs(), total)
	}
	return fst.PushToInitial(f)
}
