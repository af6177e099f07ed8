package fst

import "github.com/pkg/errors"

var (
	// ErrCyclic is returned by algorithms that require an acyclic automaton.
	ErrCyclic = errors.New("fst is cyclic")
	// ErrMemoryLimit is returned when determinization would exceed its memory
	// ceiling.
	ErrMemoryLimit = errors.New("determinization exceeded memory limit")
	// ErrEpsilon is returned when an algorithm does not accept epsilon arcs.
	ErrEpsilon = errors.New("fst has epsilon arcs")
	// ErrNotAcceptor is returned when an acceptor was expected.
	ErrNotAcceptor = errors.New("fst is not an acceptor")
	// ErrInvalid is returned by Verify for malformed automata.
	ErrInvalid = errors.New("invalid fst")
)
