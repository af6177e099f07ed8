// Package lattice holds character lattices as produced by a recognizer:
// acyclic acceptors whose arcs carry a two-component cost and the number of
// frames they span. It also provides the pointwise preprocessing applied
// before indexing (scaling, insertion penalty, beam pruning).
package lattice

import (
	"math"

	"github.com/ieee0824/wordindex-go/fst"
)

// Weight is a lattice cost split into graph (language model) and acoustic
// parts. Both are negative log probabilities.
type Weight struct {
	Graph    float64
	Acoustic float64
}

// ZeroWeight marks a non-final state.
var ZeroWeight = Weight{math.Inf(1), math.Inf(1)}

// Cost returns the combined cost.
func (w Weight) Cost() float64 {
	return w.Graph + w.Acoustic
}

// IsZero reports whether w is ZeroWeight.
func (w Weight) IsZero() bool {
	return math.IsInf(w.Graph, 1) || math.IsInf(w.Acoustic, 1)
}

func (w Weight) valid() bool {
	return !math.IsNaN(w.Graph) && !math.IsNaN(w.Acoustic) &&
		!math.IsInf(w.Graph, -1) && !math.IsInf(w.Acoustic, -1)
}

// Arc is a lattice transition.
type Arc struct {
	ILabel    fst.Label
	OLabel    fst.Label
	Weight    Weight
	Frames    int // number of frames consumed by the arc
	NextState int
}

// State is a lattice state. Final is ZeroWeight for non-final states.
type State struct {
	Arcs        []Arc
	Final       Weight
	FinalFrames int
}

// Lattice is a per-utterance recognition lattice.
type Lattice struct {
	Start  int
	States []State
}

// New creates an empty lattice.
func New() *Lattice {
	return &Lattice{Start: -1}
}

// AddState appends a non-final state and returns its id.
func (l *Lattice) AddState() int {
	l.States = append(l.States, State{Final: ZeroWeight})
	return len(l.States) - 1
}

// AddArc appends an arc leaving s.
func (l *Lattice) AddArc(s int, a Arc) {
	l.States[s].Arcs = append(l.States[s].Arcs, a)
}

// SetFinal sets the final weight of s.
func (l *Lattice) SetFinal(s int, w Weight) {
	l.States[s].Final = w
}

// NumStates returns the number of states.
func (l *Lattice) NumStates() int {
	return len(l.States)
}

// NumArcs returns the total number of arcs.
func (l *Lattice) NumArcs() int {
	n := 0
	for i := range l.States {
		n += len(l.States[i].Arcs)
	}
	return n
}

// topOrder returns the states in topological order, or nil when l is cyclic.
func (l *Lattice) topOrder() []int {
	n := len(l.States)
	indeg := make([]int, n)
	for s := range l.States {
		for _, a := range l.States[s].Arcs {
			indeg[a.NextState]++
		}
	}
	order := make([]int, 0, n)
	for s := 0; s < n; s++ {
		if indeg[s] == 0 {
			order = append(order, s)
		}
	}
	for head := 0; head < len(order); head++ {
		for _, a := range l.States[order[head]].Arcs {
			indeg[a.NextState]--
			if indeg[a.NextState] == 0 {
				order = append(order, a.NextState)
			}
		}
	}
	if len(order) != n {
		return nil
	}
	return order
}

// Connect removes states that are not on any path from the start state to a
// final state. State ids are renumbered keeping their relative order.
func Connect(l *Lattice) {
	n := len(l.States)
	if n == 0 || l.Start < 0 {
		l.States, l.Start = nil, -1
		return
	}
	access := make([]bool, n)
	access[l.Start] = true
	stack := []int{l.Start}
	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, a := range l.States[s].Arcs {
			if !access[a.NextState] {
				access[a.NextState] = true
				stack = append(stack, a.NextState)
			}
		}
	}
	preds := make([][]int, n)
	coaccess := make([]bool, n)
	for s := range l.States {
		for _, a := range l.States[s].Arcs {
			preds[a.NextState] = append(preds[a.NextState], s)
		}
		if !l.States[s].Final.IsZero() {
			coaccess[s] = true
			stack = append(stack, s)
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
	if !access[l.Start] || !coaccess[l.Start] {
		l.States, l.Start = nil, -1
		return
	}
	remap := make([]int, n)
	kept := make([]State, 0, n)
	for s := range l.States {
		if access[s] && coaccess[s] {
			remap[s] = len(kept)
			kept = append(kept, l.States[s])
		} else {
			remap[s] = -1
		}
	}
	for i := range kept {
		arcs := kept[i].Arcs[:0]
		for _, a := range kept[i].Arcs {
			if remap[a.NextState] < 0 {
				continue
			}
			a.NextState = remap[a.NextState]
			arcs = append(arcs, a)
		}
		kept[i].Arcs = arcs
	}
	l.States = kept
	l.Start = remap[l.Start]
}
