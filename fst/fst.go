// Package fst implements weighted finite-state automata over float64 costs
// and the handful of algorithms needed to turn character lattices into word
// indices. Every algorithm assumes acyclic input and reports ErrCyclic
// otherwise.
package fst

import (
	"math"

	"github.com/pkg/errors"
)

// Label is an arc symbol. Epsilon (0) means no symbol.
type Label int32

// Epsilon is the reserved empty label.
const Epsilon Label = 0

// StateID identifies a state; ids are dense from 0.
type StateID int

// NoStateID marks a missing state, e.g. the start of an empty automaton.
const NoStateID StateID = -1

// Arc is a transition leaving some state.
type Arc struct {
	ILabel    Label
	OLabel    Label
	Weight    float64
	NextState StateID
}

// IsEpsilon reports whether both labels are Epsilon.
func (a Arc) IsEpsilon() bool {
	return a.ILabel == Epsilon && a.OLabel == Epsilon
}

type state struct {
	final float64
	arcs  []Arc
}

// Fst is a mutable weighted transducer. States are never removed except by
// Connect, which renumbers the survivors.
type Fst struct {
	sr     Semiring
	start  StateID
	states []state
}

// New creates an empty automaton over the given semiring.
func New(sr Semiring) *Fst {
	return &Fst{sr: sr, start: NoStateID}
}

// Semiring returns the semiring the weights are interpreted in.
func (f *Fst) Semiring() Semiring { return f.sr }

// SetSemiring reinterprets all weights in sr. Values are unchanged; only the
// way alternatives combine differs afterwards.
func (f *Fst) SetSemiring(sr Semiring) { f.sr = sr }

// AddState appends a non-final state and returns its id.
func (f *Fst) AddState() StateID {
	f.states = append(f.states, state{final: f.sr.Zero()})
	return StateID(len(f.states) - 1)
}

// NumStates returns the number of states.
func (f *Fst) NumStates() int { return len(f.states) }

// Start returns the start state, or NoStateID when the automaton is empty.
func (f *Fst) Start() StateID { return f.start }

// SetStart sets the start state.
func (f *Fst) SetStart(s StateID) { f.start = s }

// Final returns the final weight of s (Zero when s is not final).
func (f *Fst) Final(s StateID) float64 { return f.states[s].final }

// SetFinal sets the final weight of s. Zero makes s non-final.
func (f *Fst) SetFinal(s StateID, w float64) { f.states[s].final = w }

// IsFinal reports whether s has a non-Zero final weight.
func (f *Fst) IsFinal(s StateID) bool { return !f.sr.IsZero(f.states[s].final) }

// AddArc appends an arc leaving s.
func (f *Fst) AddArc(s StateID, arc Arc) {
	f.states[s].arcs = append(f.states[s].arcs, arc)
}

// Arcs returns the arcs leaving s. The slice is owned by the automaton and is
// only valid until the next mutation of s.
func (f *Fst) Arcs(s StateID) []Arc { return f.states[s].arcs }

// SetArcs replaces the arcs leaving s.
func (f *Fst) SetArcs(s StateID, arcs []Arc) { f.states[s].arcs = arcs }

// DeleteArcs removes all arcs leaving s.
func (f *Fst) DeleteArcs(s StateID) { f.states[s].arcs = nil }

// NumArcs returns the number of arcs leaving s.
func (f *Fst) NumArcs(s StateID) int { return len(f.states[s].arcs) }

// TotalArcs returns the number of arcs in the automaton.
func (f *Fst) TotalArcs() int {
	n := 0
	for i := range f.states {
		n += len(f.states[i].arcs)
	}
	return n
}

// DeleteStates removes every state.
func (f *Fst) DeleteStates() {
	f.states = nil
	f.start = NoStateID
}

// Copy returns a deep copy of f.
func (f *Fst) Copy() *Fst {
	c := &Fst{sr: f.sr, start: f.start, states: make([]state, len(f.states))}
	for i, st := range f.states {
		c.states[i].final = st.final
		c.states[i].arcs = append([]Arc(nil), st.arcs...)
	}
	return c
}

// IsAcceptor reports whether every arc has equal input and output labels.
func (f *Fst) IsAcceptor() bool {
	for i := range f.states {
		for _, a := range f.states[i].arcs {
			if a.ILabel != a.OLabel {
				return false
			}
		}
	}
	return true
}

// HasEpsilons reports whether any arc has an epsilon input label.
func (f *Fst) HasEpsilons() bool {
	for i := range f.states {
		for _, a := range f.states[i].arcs {
			if a.ILabel == Epsilon {
				return true
			}
		}
	}
	return false
}

// Verify checks the structural invariants: a valid start state, in-range
// arc destinations, non-negative labels and no NaN or -Inf weights.
func Verify(f *Fst) error {
	n := StateID(len(f.states))
	if n == 0 {
		if f.start != NoStateID {
			return errors.Wrapf(ErrInvalid, "start state %d in empty fst", f.start)
		}
		return nil
	}
	if f.start < 0 || f.start >= n {
		return errors.Wrapf(ErrInvalid, "start state %d out of range", f.start)
	}
	for s := StateID(0); s < n; s++ {
		st := &f.states[s]
		if !f.sr.Valid(st.final) {
			return errors.Wrapf(ErrInvalid, "state %d: final weight %v", s, st.final)
		}
		for _, a := range st.arcs {
			if a.NextState < 0 || a.NextState >= n {
				return errors.Wrapf(ErrInvalid, "state %d: arc to missing state %d", s, a.NextState)
			}
			if a.ILabel < 0 || a.OLabel < 0 {
				return errors.Wrapf(ErrInvalid, "state %d: negative label", s)
			}
			if math.IsNaN(a.Weight) || !f.sr.Valid(a.Weight) {
				return errors.Wrapf(ErrInvalid, "state %d: arc weight %v", s, a.Weight)
			}
		}
	}
	return nil
}
