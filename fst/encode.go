package fst

// LabelPair is an (input, output) label pair.
type LabelPair struct {
	ILabel, OLabel Label
}

// Encoder maps label pairs to single labels so that a transducer can be
// treated as an acceptor. Codes are assigned densely from 1 in first-seen
// order; the pair (Epsilon, Epsilon) always encodes to Epsilon. The same
// Encoder must be used to decode.
type Encoder struct {
	codes map[LabelPair]Label
	pairs []LabelPair // pairs[code-1]
}

// NewEncoder creates an empty encoder.
func NewEncoder() *Encoder {
	return &Encoder{codes: make(map[LabelPair]Label)}
}

// Code returns the code of p, assigning a new one if needed.
func (e *Encoder) Code(p LabelPair) Label {
	if p.ILabel == Epsilon && p.OLabel == Epsilon {
		return Epsilon
	}
	if c, ok := e.codes[p]; ok {
		return c
	}
	e.pairs = append(e.pairs, p)
	c := Label(len(e.pairs))
	e.codes[p] = c
	return c
}

// Pair returns the label pair encoded by c.
func (e *Encoder) Pair(c Label) (LabelPair, bool) {
	if c == Epsilon {
		return LabelPair{}, true
	}
	if c < 0 || int(c) > len(e.pairs) {
		return LabelPair{}, false
	}
	return e.pairs[c-1], true
}

// Len returns the number of codes assigned.
func (e *Encoder) Len() int { return len(e.pairs) }

// Encode rewrites every arc of f so that both labels hold the code of the
// original pair.
func (e *Encoder) Encode(f *Fst) {
	for s := range f.states {
		arcs := f.states[s].arcs
		for i := range arcs {
			c := e.Code(LabelPair{arcs[i].ILabel, arcs[i].OLabel})
			arcs[i].ILabel, arcs[i].OLabel = c, c
		}
	}
}

// Decode restores the label pairs of an automaton encoded with e. Codes
// unknown to e make Decode return ErrInvalid.
func (e *Encoder) Decode(f *Fst) error {
	for s := range f.states {
		arcs := f.states[s].arcs
		for i := range arcs {
			p, ok := e.Pair(arcs[i].ILabel)
			if !ok || arcs[i].ILabel != arcs[i].OLabel {
				return ErrInvalid
			}
			arcs[i].ILabel, arcs[i].OLabel = p.ILabel, p.OLabel
		}
	}
	return nil
}
