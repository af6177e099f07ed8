package index

import (
	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/fst"
)

// CollapseSegments replaces the per-character segment labels of a word
// automaton by word boundaries, so that every segmentation of a word with the
// same first and last frame carries the same output sequence:
//
//   - arcs leaving the start state get the start frame of their segment + 1,
//   - the final weight of every final state moves onto an input-epsilon arc
//     labeled with the end frame of the word + 1, leading to a new unique
//     final state,
//   - every other arc gets Epsilon.
//
// The end frame of a final state is the end of the segments on its incoming
// arcs, which all agree because frames are a function of the lattice state.
func CollapseSegments(f *fst.Fst, segs *SegmentTable) error {
	n := f.NumStates()
	if n == 0 {
		return nil
	}
	sr := f.Semiring()
	start := f.Start()

	end := make([]int, n)
	for i := range end {
		end[i] = -1
	}
	for s := fst.StateID(0); int(s) < n; s++ {
		for _, a := range f.Arcs(s) {
			if !f.IsFinal(a.NextState) || a.OLabel == fst.Epsilon {
				continue
			}
			seg, ok := segs.Lookup(a.OLabel)
			if !ok {
				return errors.Errorf("state %d: unknown segment id %d", s, a.OLabel)
			}
			switch {
			case end[a.NextState] < 0:
				end[a.NextState] = seg.End
			case end[a.NextState] != seg.End:
				return errors.Errorf("state %d ends at frames %d and %d", a.NextState, end[a.NextState], seg.End)
			}
		}
	}

	for s := fst.StateID(0); int(s) < n; s++ {
		arcs := f.Arcs(s)
		for i := range arcs {
			if s != start || arcs[i].OLabel == fst.Epsilon {
				arcs[i].OLabel = fst.Epsilon
				continue
			}
			seg, ok := segs.Lookup(arcs[i].OLabel)
			if !ok {
				return errors.Errorf("state %d: unknown segment id %d", s, arcs[i].OLabel)
			}
			arcs[i].OLabel = fst.Label(seg.Start + 1)
		}
	}

	final := f.AddState()
	f.SetFinal(final, sr.One())
	for s := fst.StateID(0); int(s) < n; s++ {
		if !f.IsFinal(s) {
			continue
		}
		if end[s] < 0 {
			return errors.Errorf("final state %d has no incoming segment", s)
		}
		f.AddArc(s, fst.Arc{OLabel: fst.Label(end[s] + 1), Weight: f.Final(s), NextState: final})
		f.SetFinal(s, sr.Zero())
	}
	return nil
}
