package fst

import (
	"math"

	"github.com/ieee0824/wordindex-go/internal/mathutil"
)

// Semiring selects how weights combine. Weights are always float64 costs
// (negative log probabilities); only Plus differs between the variants.
type Semiring uint8

const (
	// Tropical is the score semiring: Plus keeps the cheaper alternative.
	Tropical Semiring = iota
	// Log is the summing semiring: Plus adds the probabilities of both
	// alternatives (log-sum-exp in the cost domain).
	Log
)

func (s Semiring) String() string {
	switch s {
	case Tropical:
		return "tropical"
	case Log:
		return "log"
	}
	return "unknown"
}

// Zero is the identity of Plus and the annihilator of Times.
func (s Semiring) Zero() float64 { return mathutil.CostZero }

// One is the identity of Times.
func (s Semiring) One() float64 { return 0 }

// IsZero reports whether w is Zero.
func (s Semiring) IsZero(w float64) bool { return mathutil.IsCostZero(w) }

// Plus combines two alternative weights.
func (s Semiring) Plus(a, b float64) float64 {
	if s == Log {
		return mathutil.LogAdd(a, b)
	}
	if b < a {
		return b
	}
	return a
}

// Times combines two weights in sequence.
func (s Semiring) Times(a, b float64) float64 {
	if mathutil.IsCostZero(a) || mathutil.IsCostZero(b) {
		return mathutil.CostZero
	}
	return a + b
}

// Divide returns the weight c with Times(b, c) == a. Division by Zero yields
// NaN, which Verify reports.
func (s Semiring) Divide(a, b float64) float64 {
	if mathutil.IsCostZero(b) {
		return math.NaN()
	}
	if mathutil.IsCostZero(a) {
		return mathutil.CostZero
	}
	return a - b
}

// ApproxEqual reports whether a and b differ by at most delta.
func (s Semiring) ApproxEqual(a, b, delta float64) bool {
	if mathutil.IsCostZero(a) || mathutil.IsCostZero(b) {
		return mathutil.IsCostZero(a) && mathutil.IsCostZero(b)
	}
	return math.Abs(a-b) <= delta
}

// Less orders weights by preference; only meaningful for path selection.
func (s Semiring) Less(a, b float64) bool { return a < b }

// Valid reports whether w may appear in an automaton.
func (s Semiring) Valid(w float64) bool {
	return !math.IsNaN(w) && !math.IsInf(w, -1)
}
