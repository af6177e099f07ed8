package lattice

import (
	"math"

	"github.com/pkg/errors"
)

// pruneDelta absorbs rounding differences when comparing path costs against
// the pruning threshold, so that a zero beam keeps the best path.
const pruneDelta = 1e-5

// Check verifies that l is a well-formed acyclic acceptor with valid weights.
func Check(l *Lattice) error {
	n := len(l.States)
	if n == 0 {
		return nil
	}
	if l.Start < 0 || l.Start >= n {
		return errors.Wrapf(ErrMalformed, "start state %d out of range", l.Start)
	}
	for s := range l.States {
		st := &l.States[s]
		if !st.Final.valid() {
			return errors.Wrapf(ErrMalformed, "state %d: invalid final weight %v", s, st.Final)
		}
		for _, a := range st.Arcs {
			if a.NextState < 0 || a.NextState >= n {
				return errors.Wrapf(ErrMalformed, "state %d: arc to missing state %d", s, a.NextState)
			}
			if !a.Weight.valid() {
				return errors.Wrapf(ErrMalformed, "state %d: invalid arc weight %v", s, a.Weight)
			}
			if a.Frames < 0 {
				return errors.Wrapf(ErrMalformed, "state %d: negative frame count", s)
			}
			if a.ILabel < 0 || a.OLabel < 0 {
				return errors.Wrapf(ErrMalformed, "state %d: negative label", s)
			}
			if a.ILabel != a.OLabel {
				return errors.Wrapf(ErrNotAcceptor, "state %d: arc %d:%d", s, a.ILabel, a.OLabel)
			}
		}
	}
	if l.topOrder() == nil {
		return ErrCyclic
	}
	return nil
}

// Scale multiplies the graph and acoustic parts of every weight.
func Scale(l *Lattice, graphScale, acousticScale float64) {
	if graphScale == 1 && acousticScale == 1 {
		return
	}
	scale := func(w Weight) Weight {
		if w.IsZero() {
			return w
		}
		return Weight{w.Graph * graphScale, w.Acoustic * acousticScale}
	}
	for s := range l.States {
		st := &l.States[s]
		st.Final = scale(st.Final)
		for i := range st.Arcs {
			st.Arcs[i].Weight = scale(st.Arcs[i].Weight)
		}
	}
}

// AddInsertionPenalty adds penalty to the graph cost of every arc with a
// non-epsilon label.
func AddInsertionPenalty(l *Lattice, penalty float64) {
	if penalty == 0 {
		return
	}
	for s := range l.States {
		arcs := l.States[s].Arcs
		for i := range arcs {
			if arcs[i].OLabel != 0 {
				arcs[i].Weight.Graph += penalty
			}
		}
	}
}

// Prune removes every arc and final weight that only lies on paths whose
// cost exceeds the best path cost by more than beam, then drops the states
// that became useless. An infinite beam leaves l untouched.
func Prune(l *Lattice, beam float64) error {
	if math.IsInf(beam, 1) || len(l.States) == 0 {
		return nil
	}
	if math.IsNaN(beam) || beam < 0 {
		return errors.Errorf("invalid pruning beam %v", beam)
	}
	order := l.topOrder()
	if order == nil {
		return ErrCyclic
	}
	n := len(l.States)
	inf := math.Inf(1)
	alpha := make([]float64, n)
	beta := make([]float64, n)
	for i := range alpha {
		alpha[i], beta[i] = inf, inf
	}
	alpha[l.Start] = 0
	for _, s := range order {
		if math.IsInf(alpha[s], 1) {
			continue
		}
		for _, a := range l.States[s].Arcs {
			if c := alpha[s] + a.Weight.Cost(); c < alpha[a.NextState] {
				alpha[a.NextState] = c
			}
		}
	}
	for i := len(order) - 1; i >= 0; i-- {
		s := order[i]
		b := l.States[s].Final.Cost()
		for _, a := range l.States[s].Arcs {
			if c := a.Weight.Cost() + beta[a.NextState]; c < b {
				b = c
			}
		}
		beta[s] = b
	}
	best := beta[l.Start]
	if math.IsInf(best, 1) {
		Connect(l)
		return nil
	}
	cutoff := best + beam + pruneDelta
	for s := range l.States {
		st := &l.States[s]
		if math.IsInf(alpha[s], 1) {
			st.Arcs = nil
			st.Final = ZeroWeight
			continue
		}
		if !st.Final.IsZero() && alpha[s]+st.Final.Cost() > cutoff {
			st.Final = ZeroWeight
		}
		arcs := st.Arcs[:0]
		for _, a := range st.Arcs {
			if alpha[s]+a.Weight.Cost()+beta[a.NextState] > cutoff {
				continue
			}
			arcs = append(arcs, a)
		}
		st.Arcs = arcs
	}
	Connect(l)
	return nil
}

// StateTimes returns the frame index of every state: the number of frames
// consumed along any path from the start state. It fails when two paths
// reach a state at different times. The second result is the total number
// of frames of the utterance. l must be connected and acyclic.
func StateTimes(l *Lattice) ([]int, int, error) {
	n := len(l.States)
	if n == 0 {
		return nil, 0, nil
	}
	order := l.topOrder()
	if order == nil {
		return nil, 0, ErrCyclic
	}
	times := make([]int, n)
	for i := range times {
		times[i] = -1
	}
	times[l.Start] = 0
	numFrames := 0
	for _, s := range order {
		t := times[s]
		if t < 0 {
			continue
		}
		st := &l.States[s]
		if !st.Final.IsZero() && t+st.FinalFrames > numFrames {
			numFrames = t + st.FinalFrames
		}
		for _, a := range st.Arcs {
			next := t + a.Frames
			switch {
			case times[a.NextState] < 0:
				times[a.NextState] = next
			case times[a.NextState] != next:
				return nil, 0, errors.Wrapf(ErrMalformed, "state %d reached at frames %d and %d",
					a.NextState, times[a.NextState], next)
			}
		}
	}
	return times, numFrames, nil
}
