package fst

import (
	"encoding/binary"
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/internal/mathutil"
)

// DefaultDelta is the default quantization step used to compare residual
// weights when deciding whether two subsets are the same state.
const DefaultDelta = 1.0 / 1024

// DeterminizeOptions controls Determinize and DeterminizeDisambiguate.
type DeterminizeOptions struct {
	Delta  float64 // residual weight quantization; <= 0 uses DefaultDelta
	MaxMem int64   // approximate byte ceiling; <= 0 means unlimited
}

// DefaultDeterminizeOptions returns the default options.
func DefaultDeterminizeOptions() DeterminizeOptions {
	return DeterminizeOptions{Delta: DefaultDelta, MaxMem: 50000000}
}

// rough per-object footprints used for the memory ceiling
const (
	stateBytes   = 64
	arcBytes     = 24
	elementBytes = 24
)

type memCounter struct {
	limit  int64
	used   int64
	states int
	arcs   int
}

func (m *memCounter) addState(elements, keyLen int) error {
	m.states++
	m.used += stateBytes + int64(elements)*elementBytes + int64(keyLen)
	return m.check()
}

func (m *memCounter) addArc() error {
	m.arcs++
	m.used += arcBytes
	return m.check()
}

func (m *memCounter) check() error {
	if m.limit > 0 && m.used > m.limit {
		return errors.Wrapf(ErrMemoryLimit, "%d bytes (limit %d) after %d states and %d arcs",
			m.used, m.limit, m.states, m.arcs)
	}
	return nil
}

type element struct {
	state    StateID
	residual float64
}

// Determinize returns a deterministic acceptor equivalent to f: states
// reached by the same label sequence are merged and the weights of all paths
// sharing a label sequence are combined with Plus of f's semiring. In the Log
// semiring this sums the probability mass of duplicate paths. f must be an
// acyclic, epsilon-free acceptor; transducers must be encoded first (see
// Encoder). Arcs leaving each result state are ordered by label.
func Determinize(f *Fst, opts DeterminizeOptions) (*Fst, error) {
	sr := f.sr
	out := New(sr)
	if len(f.states) == 0 || f.start == NoStateID {
		return out, nil
	}
	if !f.IsAcceptor() {
		return nil, ErrNotAcceptor
	}
	if f.HasEpsilons() {
		return nil, ErrEpsilon
	}
	if !IsAcyclic(f) {
		return nil, ErrCyclic
	}
	delta := opts.Delta
	if delta <= 0 {
		delta = DefaultDelta
	}
	mem := &memCounter{limit: opts.MaxMem}

	var subsets [][]element
	index := make(map[string]StateID)
	var keyBuf []byte
	lookup := func(sub []element) (StateID, error) {
		keyBuf = subsetKey(keyBuf[:0], sub, delta)
		if id, ok := index[string(keyBuf)]; ok {
			return id, nil
		}
		id := out.AddState()
		index[string(keyBuf)] = id
		subsets = append(subsets, sub)
		return id, mem.addState(len(sub), len(keyBuf))
	}

	start, err := lookup([]element{{f.start, sr.One()}})
	if err != nil {
		return nil, err
	}
	out.SetStart(start)

	type transition struct {
		weight float64
		dests  map[StateID]float64
	}
	for cur := 0; cur < len(subsets); cur++ {
		sub := subsets[cur]
		final := sr.Zero()
		trans := make(map[Label]*transition)
		var labels []Label
		for _, e := range sub {
			final = sr.Plus(final, sr.Times(e.residual, f.states[e.state].final))
			for _, a := range f.states[e.state].arcs {
				w := sr.Times(e.residual, a.Weight)
				t, ok := trans[a.ILabel]
				if !ok {
					t = &transition{weight: sr.Zero(), dests: make(map[StateID]float64)}
					trans[a.ILabel] = t
					labels = append(labels, a.ILabel)
				}
				t.weight = sr.Plus(t.weight, w)
				if d, ok := t.dests[a.NextState]; ok {
					t.dests[a.NextState] = sr.Plus(d, w)
				} else {
					t.dests[a.NextState] = w
				}
			}
		}
		out.SetFinal(StateID(cur), final)

		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
		for _, l := range labels {
			t := trans[l]
			if sr.IsZero(t.weight) {
				continue
			}
			next := make([]element, 0, len(t.dests))
			for q, w := range t.dests {
				r := sr.Divide(w, t.weight)
				if sr.IsZero(r) {
					continue
				}
				next = append(next, element{q, r})
			}
			sort.Slice(next, func(i, j int) bool { return next[i].state < next[j].state })
			id, err := lookup(next)
			if err != nil {
				return nil, err
			}
			out.AddArc(StateID(cur), Arc{ILabel: l, OLabel: l, Weight: t.weight, NextState: id})
			if err := mem.addArc(); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func subsetKey(buf []byte, sub []element, delta float64) []byte {
	for _, e := range sub {
		buf = binary.AppendUvarint(buf, uint64(e.state))
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(mathutil.Quantize(e.residual, delta)))
	}
	return buf
}

// pendingElement is a subset element of DeterminizeDisambiguate: a state, its
// residual weight and the output labels read so far but not yet emitted.
type pendingElement struct {
	state    StateID
	residual float64
	output   []Label
}

func (e pendingElement) better(o pendingElement) bool {
	if e.residual != o.residual {
		return e.residual < o.residual
	}
	if len(e.output) != len(o.output) {
		return len(e.output) < len(o.output)
	}
	for i := range e.output {
		if e.output[i] != o.output[i] {
			return e.output[i] < o.output[i]
		}
	}
	return false
}

func appendOutput(out []Label, l Label) []Label {
	if l == Epsilon {
		return out
	}
	res := make([]Label, len(out), len(out)+1)
	copy(res, out)
	return append(res, l)
}

// DeterminizeDisambiguate determinizes f over its input labels, keeping for
// every input sequence only the cheapest of its output sequences (ties go to
// the shorter, then lexicographically smaller, output). Its weight is the
// tropical Plus over all paths with that input sequence. Output labels are
// delayed: they are emitted on input-epsilon arcs just before a final state.
// Input-epsilon arcs of f are followed transparently. Only the Tropical
// semiring is supported because Plus must select a single alternative.
func DeterminizeDisambiguate(f *Fst, opts DeterminizeOptions) (*Fst, error) {
	if f.sr != Tropical {
		return nil, errors.Errorf("disambiguating determinization needs the tropical semiring, got %s", f.sr)
	}
	sr := f.sr
	out := New(sr)
	if len(f.states) == 0 || f.start == NoStateID {
		return out, nil
	}
	order, err := TopOrder(f)
	if err != nil {
		return nil, err
	}
	pos := positions(order)
	delta := opts.Delta
	if delta <= 0 {
		delta = DefaultDelta
	}
	mem := &memCounter{limit: opts.MaxMem}

	// closure follows input-epsilon arcs, keeping the best element per state
	closure := func(sub map[StateID]pendingElement) []pendingElement {
		var todo []StateID
		seen := make(map[StateID]bool)
		var stack []StateID
		for q := range sub {
			stack = append(stack, q)
			seen[q] = true
		}
		for len(stack) > 0 {
			q := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			todo = append(todo, q)
			for _, a := range f.states[q].arcs {
				if a.ILabel == Epsilon && !seen[a.NextState] {
					seen[a.NextState] = true
					stack = append(stack, a.NextState)
				}
			}
		}
		sort.Slice(todo, func(i, j int) bool { return pos[todo[i]] < pos[todo[j]] })
		for _, q := range todo {
			e, ok := sub[q]
			if !ok {
				continue
			}
			for _, a := range f.states[q].arcs {
				if a.ILabel != Epsilon {
					continue
				}
				cand := pendingElement{a.NextState, sr.Times(e.residual, a.Weight), appendOutput(e.output, a.OLabel)}
				if sr.IsZero(cand.residual) {
					continue
				}
				if old, ok := sub[a.NextState]; !ok || cand.better(old) {
					sub[a.NextState] = cand
				}
			}
		}
		res := make([]pendingElement, 0, len(sub))
		for _, e := range sub {
			res = append(res, e)
		}
		sort.Slice(res, func(i, j int) bool { return res[i].state < res[j].state })
		return res
	}

	var subsets [][]pendingElement
	index := make(map[string]StateID)
	var keyBuf []byte
	lookup := func(sub []pendingElement) (StateID, error) {
		keyBuf = keyBuf[:0]
		for _, e := range sub {
			keyBuf = binary.AppendUvarint(keyBuf, uint64(e.state))
			keyBuf = binary.LittleEndian.AppendUint64(keyBuf, math.Float64bits(mathutil.Quantize(e.residual, delta)))
			keyBuf = binary.AppendUvarint(keyBuf, uint64(len(e.output)))
			for _, l := range e.output {
				keyBuf = binary.AppendUvarint(keyBuf, uint64(l))
			}
		}
		if id, ok := index[string(keyBuf)]; ok {
			return id, nil
		}
		id := out.AddState()
		index[string(keyBuf)] = id
		subsets = append(subsets, sub)
		return id, mem.addState(len(sub), len(keyBuf))
	}

	start, err := lookup(closure(map[StateID]pendingElement{f.start: {f.start, sr.One(), nil}}))
	if err != nil {
		return nil, err
	}
	out.SetStart(start)

	// emitted output chains share a single final state
	superFinal := NoStateID
	for cur := 0; cur < len(subsets); cur++ {
		sub := subsets[cur]
		src := StateID(cur)

		var best *pendingElement
		bestWeight := sr.Zero()
		for i := range sub {
			e := &sub[i]
			w := sr.Times(e.residual, f.states[e.state].final)
			if sr.IsZero(w) {
				continue
			}
			cand := pendingElement{e.state, w, e.output}
			if best == nil || cand.better(pendingElement{best.state, bestWeight, best.output}) {
				best = e
				bestWeight = w
			}
		}
		if best != nil {
			if len(best.output) == 0 {
				out.SetFinal(src, bestWeight)
			} else {
				if superFinal == NoStateID {
					superFinal = out.AddState()
					subsets = append(subsets, nil)
					out.SetFinal(superFinal, sr.One())
					if err := mem.addState(0, 0); err != nil {
						return nil, err
					}
				}
				prev, w := src, bestWeight
				for i, l := range best.output {
					next := superFinal
					if i < len(best.output)-1 {
						next = out.AddState()
						subsets = append(subsets, nil)
						if err := mem.addState(0, 0); err != nil {
							return nil, err
						}
					}
					out.AddArc(prev, Arc{ILabel: Epsilon, OLabel: l, Weight: w, NextState: next})
					if err := mem.addArc(); err != nil {
						return nil, err
					}
					prev, w = next, sr.One()
				}
			}
		}

		trans := make(map[Label]map[StateID]pendingElement)
		var labels []Label
		for _, e := range sub {
			for _, a := range f.states[e.state].arcs {
				if a.ILabel == Epsilon {
					continue
				}
				cand := pendingElement{a.NextState, sr.Times(e.residual, a.Weight), appendOutput(e.output, a.OLabel)}
				if sr.IsZero(cand.residual) {
					continue
				}
				dests, ok := trans[a.ILabel]
				if !ok {
					dests = make(map[StateID]pendingElement)
					trans[a.ILabel] = dests
					labels = append(labels, a.ILabel)
				}
				if old, ok := dests[a.NextState]; !ok || cand.better(old) {
					dests[a.NextState] = cand
				}
			}
		}
		sort.Slice(labels, func(i, j int) bool { return labels[i] < labels[j] })
		for _, l := range labels {
			next := closure(trans[l])
			w := sr.Zero()
			for _, e := range next {
				w = sr.Plus(w, e.residual)
			}
			for i := range next {
				next[i].residual = sr.Divide(next[i].residual, w)
			}
			id, err := lookup(next)
			if err != nil {
				return nil, err
			}
			out.AddArc(src, Arc{ILabel: l, OLabel: Epsilon, Weight: w, NextState: id})
			if err := mem.addArc(); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
