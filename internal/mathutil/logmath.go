package mathutil

import "math"

// CostZero is the cost of an impossible event, -log(0).
var CostZero = math.Inf(1)

// IsCostZero reports whether c is CostZero.
func IsCostZero(c float64) bool {
	return math.IsInf(c, 1)
}

// LogAdd returns -log(exp(-a) + exp(-b)) for costs a and b in a numerically
// stable way. Uses threshold-based early exit to skip expensive exp/log1p when
// the larger cost contributes less than float64 precision (exp(-36) ≈ 2.3e-16).
func LogAdd(a, b float64) float64 {
	if a > b {
		a, b = b, a
	}
	// a <= b from here on
	if IsCostZero(b) {
		return a
	}
	d := a - b
	if d < -36.0 {
		return a
	}
	return a - math.Log1p(math.Exp(d))
}

// NewVecFill creates a vector of length n filled with val.
func NewVecFill(n int, val float64) []float64 {
	v := make([]float64, n)
	FillVec(v, val)
	return v
}

// FillVec sets every element of v to val.
func FillVec(v []float64, val float64) {
	for i := range v {
		v[i] = val
	}
}

// Quantize rounds c to the nearest multiple of delta. CostZero is preserved.
func Quantize(c, delta float64) float64 {
	if IsCostZero(c) || delta <= 0 {
		return c
	}
	return math.Floor(c/delta+0.5) * delta
}
