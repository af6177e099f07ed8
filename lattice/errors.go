package lattice

import (
	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/fst"
)

var (
	// ErrMalformed is returned for lattices that cannot be parsed or violate
	// basic structural constraints.
	ErrMalformed = errors.New("malformed lattice")
	// ErrNotAcceptor is returned for lattices whose arcs carry different
	// input and output labels.
	ErrNotAcceptor = errors.New("lattice is not an acceptor")
	// ErrCyclic is returned for lattices with cycles.
	ErrCyclic = errors.New("lattice is not acyclic")
)

// IsMalformed reports whether err is caused by an input lattice violating the
// assumptions of the indexer, including cycles discovered after epsilon
// removal and automata built from it that fail fst.Verify.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrNotAcceptor) ||
		errors.Is(err, ErrCyclic) ||
		errors.Is(err, fst.ErrCyclic) ||
		errors.Is(err, fst.ErrInvalid)
}
