package index

import (
	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/fst"
	"github.com/ieee0824/wordindex-go/lattice"
)

// CharFst is a character automaton whose output labels identify the frame
// segment of each character.
type CharFst struct {
	Fst       *fst.Fst // tropical; state ids equal the lattice state ids
	Segments  *SegmentTable
	NumFrames int
}

// BuildCharFst converts a lattice into a character automaton. Each arc keeps
// its character as input label, gets the id of the segment
// (times[src], times[dst]) as output label and the sum of its cost
// components as weight. Segment ids are assigned in state order, then arc
// order. Epsilon arcs become plain epsilon arcs without a segment. times
// must hold the frame index of every lattice state.
func BuildCharFst(lat *lattice.Lattice, times []int) (*CharFst, error) {
	if len(times) != lat.NumStates() {
		return nil, errors.Errorf("got %d state times for %d states", len(times), lat.NumStates())
	}
	cf := &CharFst{
		Fst:      fst.New(fst.Tropical),
		Segments: NewSegmentTable(),
	}
	f := cf.Fst
	for range lat.States {
		f.AddState()
	}
	if lat.NumStates() == 0 {
		return cf, nil
	}
	f.SetStart(fst.StateID(lat.Start))

	for s := range lat.States {
		st := &lat.States[s]
		if times[s] < 0 {
			return nil, errors.Wrapf(lattice.ErrMalformed, "state %d has no time", s)
		}
		if !st.Final.IsZero() {
			f.SetFinal(fst.StateID(s), st.Final.Cost())
			if end := times[s] + st.FinalFrames; end > cf.NumFrames {
				cf.NumFrames = end
			}
		}
		for _, a := range st.Arcs {
			arc := fst.Arc{Weight: a.Weight.Cost(), NextState: fst.StateID(a.NextState)}
			if a.ILabel != fst.Epsilon {
				seg := Segment{Start: times[s], End: times[a.NextState]}
				if seg.End < seg.Start {
					return nil, errors.Wrapf(lattice.ErrMalformed, "state %d: arc goes back in time", s)
				}
				arc.ILabel = a.ILabel
				arc.OLabel = cf.Segments.ID(seg)
			}
			f.AddArc(fst.StateID(s), arc)
		}
	}
	if err := fst.Verify(f); err != nil {
		return nil, errors.Wrap(err, "character automaton")
	}
	return cf, nil
}
