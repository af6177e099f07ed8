package mathutil

import (
	"math"
	"testing"
)

func TestLogAdd(t *testing.T) {
	// -log(0.2 + 0.3) = -log(0.5)
	a := -math.Log(0.2)
	b := -math.Log(0.3)
	got := LogAdd(a, b)
	want := -math.Log(0.5)
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("LogAdd(-log(0.2), -log(0.3)) = %f, want %f", got, want)
	}
	if got := LogAdd(b, a); math.Abs(got-want) > 1e-10 {
		t.Errorf("LogAdd is not symmetric: %f vs %f", got, want)
	}
}

func TestLogAddWithCostZero(t *testing.T) {
	a := -math.Log(0.5)
	if got := LogAdd(CostZero, a); math.Abs(got-a) > 1e-10 {
		t.Errorf("LogAdd(CostZero, %f) = %f, want %f", a, got, a)
	}
	if got := LogAdd(a, CostZero); math.Abs(got-a) > 1e-10 {
		t.Errorf("LogAdd(%f, CostZero) = %f, want %f", a, got, a)
	}
	if got := LogAdd(CostZero, CostZero); !IsCostZero(got) {
		t.Errorf("LogAdd(CostZero, CostZero) = %f, want +Inf", got)
	}
}

func TestLogAddNegativeCosts(t *testing.T) {
	// costs below zero are probabilities above one: -log(2 + 3) = -log(5)
	got := LogAdd(-math.Log(2), -math.Log(3))
	want := -math.Log(5)
	if math.Abs(got-want) > 1e-10 {
		t.Errorf("LogAdd = %f, want %f", got, want)
	}
}

func TestQuantize(t *testing.T) {
	delta := 1.0 / 1024
	if got := Quantize(0.50001, delta); got != 0.5 {
		t.Errorf("Quantize(0.50001) = %v, want 0.5", got)
	}
	if got := Quantize(CostZero, delta); !IsCostZero(got) {
		t.Errorf("Quantize(CostZero) = %v, want +Inf", got)
	}
}

func TestNewVecFill(t *testing.T) {
	v := NewVecFill(3, CostZero)
	for i, x := range v {
		if !IsCostZero(x) {
			t.Errorf("v[%d] = %f, want +Inf", i, x)
		}
	}
}
