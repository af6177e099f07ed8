package lattice

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/fst"
)

// Reader reads lattices sequentially from a text archive. Each entry is a
// key line followed by one line per arc or final state and terminated by an
// empty line:
//
//	utt1
//	0 1 5 1.5,2.25,3_3_3
//	0 2 6 2.5,1,3_3
//	1 3 5 0,0.5,4
//	2 3 7 1,1,4_4
//	3 0,0
//
// Arc lines are "src dst label [weight]" or "src dst ilabel olabel [weight]";
// final lines are "state weight" or just "state". A weight is
// "graph,acoustic" optionally followed by ",tid_tid_..." whose length is the
// number of frames. The source of the first arc line is the start state.
type Reader struct {
	sc   *bufio.Scanner
	line int
	key  string
	lat  *Lattice
	err  error
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &Reader{sc: sc}
}

// Next advances to the next lattice. It returns false at the end of the
// archive or on error; check Err afterwards.
func (r *Reader) Next() bool {
	if r.err != nil {
		return false
	}
	r.key, r.lat = "", nil

	// Skip blank lines before the key
	for {
		if !r.sc.Scan() {
			r.err = r.sc.Err()
			return false
		}
		r.line++
		if line := strings.TrimSpace(r.sc.Text()); line != "" {
			fields := strings.Fields(line)
			r.key = fields[0]
			break
		}
	}

	lat := New()
	for r.sc.Scan() {
		r.line++
		line := strings.TrimSpace(r.sc.Text())
		if line == "" {
			break
		}
		if err := parseLine(lat, strings.Fields(line)); err != nil {
			r.err = errors.Wrapf(err, "lattice %s, line %d", r.key, r.line)
			return false
		}
	}
	if err := r.sc.Err(); err != nil {
		r.err = err
		return false
	}
	if lat.Start < 0 && len(lat.States) > 0 {
		lat.Start = 0
	}
	r.lat = lat
	return true
}

// Key returns the key of the current lattice.
func (r *Reader) Key() string { return r.key }

// Lattice returns the current lattice. The caller owns it.
func (r *Reader) Lattice() *Lattice { return r.lat }

// Err returns the first error encountered.
func (r *Reader) Err() error { return r.err }

func ensureState(lat *Lattice, s int) {
	for len(lat.States) <= s {
		lat.AddState()
	}
}

func parseState(field string) (int, error) {
	s, err := strconv.Atoi(field)
	if err != nil || s < 0 {
		return 0, errors.Wrapf(ErrMalformed, "bad state id %q", field)
	}
	return s, nil
}

func parseLabel(field string) (fst.Label, error) {
	l, err := strconv.ParseInt(field, 10, 32)
	if err != nil || l < 0 {
		return 0, errors.Wrapf(ErrMalformed, "bad label %q", field)
	}
	return fst.Label(l), nil
}

// parseWeight parses "graph,acoustic[,tid_tid...]" and returns the weight
// and the number of transition ids.
func parseWeight(field string) (Weight, int, error) {
	parts := strings.SplitN(field, ",", 3)
	if len(parts) < 2 {
		return Weight{}, 0, errors.Wrapf(ErrMalformed, "bad weight %q", field)
	}
	g, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return Weight{}, 0, errors.Wrapf(ErrMalformed, "bad graph cost %q", parts[0])
	}
	a, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return Weight{}, 0, errors.Wrapf(ErrMalformed, "bad acoustic cost %q", parts[1])
	}
	w := Weight{g, a}
	if !w.valid() {
		return Weight{}, 0, errors.Wrapf(ErrMalformed, "invalid weight %q", field)
	}
	frames := 0
	if len(parts) == 3 && parts[2] != "" {
		frames = strings.Count(parts[2], "_") + 1
	}
	return w, frames, nil
}

func parseLine(lat *Lattice, fields []string) error {
	switch len(fields) {
	case 1, 2:
		s, err := parseState(fields[0])
		if err != nil {
			return err
		}
		w, frames := Weight{}, 0
		if len(fields) == 2 {
			if w, frames, err = parseWeight(fields[1]); err != nil {
				return err
			}
		}
		ensureState(lat, s)
		lat.SetFinal(s, w)
		lat.States[s].FinalFrames = frames
		return nil
	case 3, 4, 5:
		src, err := parseState(fields[0])
		if err != nil {
			return err
		}
		dst, err := parseState(fields[1])
		if err != nil {
			return err
		}
		ilabel, err := parseLabel(fields[2])
		if err != nil {
			return err
		}
		olabel := ilabel
		weightField := ""
		switch len(fields) {
		case 4:
			// a weight always has a comma; otherwise it is an output label
			if strings.Contains(fields[3], ",") {
				weightField = fields[3]
			} else if olabel, err = parseLabel(fields[3]); err != nil {
				return err
			}
		case 5:
			if olabel, err = parseLabel(fields[3]); err != nil {
				return err
			}
			weightField = fields[4]
		}
		w, frames := Weight{}, 0
		if weightField != "" {
			if w, frames, err = parseWeight(weightField); err != nil {
				return err
			}
		}
		ensureState(lat, src)
		ensureState(lat, dst)
		if lat.Start < 0 {
			lat.Start = src
		}
		lat.AddArc(src, Arc{ILabel: ilabel, OLabel: olabel, Weight: w, Frames: frames, NextState: dst})
		return nil
	}
	return errors.Wrapf(ErrMalformed, "unexpected %d fields", len(fields))
}
