package fst

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

// testArc is src, dst, ilabel, olabel, weight.
type testArc struct {
	src, dst       int
	ilabel, olabel Label
	weight         float64
}

// buildFst creates an automaton with n states, start state 0 and the given
// final weights.
func buildFst(sr Semiring, n int, finals map[int]float64, arcs []testArc) *Fst {
	f := New(sr)
	for i := 0; i < n; i++ {
		f.AddState()
	}
	if n > 0 {
		f.SetStart(0)
	}
	for s, w := range finals {
		f.SetFinal(StateID(s), w)
	}
	for _, a := range arcs {
		f.AddArc(StateID(a.src), Arc{ILabel: a.ilabel, OLabel: a.olabel, Weight: a.weight, NextState: StateID(a.dst)})
	}
	return f
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSemiringPlus(t *testing.T) {
	a, b := -math.Log(0.2), -math.Log(0.3)
	if got := Tropical.Plus(a, b); got != b {
		t.Errorf("Tropical.Plus = %f, want %f", got, b)
	}
	if got := Log.Plus(a, b); !approx(got, -math.Log(0.5)) {
		t.Errorf("Log.Plus = %f, want %f", got, -math.Log(0.5))
	}
	for _, sr := range []Semiring{Tropical, Log} {
		if got := sr.Plus(sr.Zero(), a); got != a {
			t.Errorf("%s: Plus(Zero, a) = %f, want %f", sr, got, a)
		}
		if got := sr.Times(sr.One(), a); got != a {
			t.Errorf("%s: Times(One, a) = %f, want %f", sr, got, a)
		}
		if !sr.IsZero(sr.Times(sr.Zero(), a)) {
			t.Errorf("%s: Times(Zero, a) is not Zero", sr)
		}
		if got := sr.Divide(sr.Times(a, b), b); !approx(got, a) {
			t.Errorf("%s: Divide(Times(a, b), b) = %f, want %f", sr, got, a)
		}
		if !math.IsNaN(sr.Divide(a, sr.Zero())) {
			t.Errorf("%s: Divide by Zero should be NaN", sr)
		}
	}
}

func TestVerify(t *testing.T) {
	f := buildFst(Tropical, 2, map[int]float64{1: 0}, []testArc{{0, 1, 1, 1, 0.5}})
	if err := Verify(f); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	f.AddArc(1, Arc{ILabel: 1, OLabel: 1, Weight: math.NaN(), NextState: 0})
	if err := Verify(f); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify NaN weight: got %v, want ErrInvalid", err)
	}
	g := buildFst(Tropical, 1, nil, []testArc{{0, 3, 1, 1, 0}})
	if err := Verify(g); !errors.Is(err, ErrInvalid) {
		t.Errorf("Verify bad destination: got %v, want ErrInvalid", err)
	}
	if err := Verify(New(Log)); err != nil {
		t.Errorf("Verify empty fst: %v", err)
	}
}

func TestCopyIsIndependent(t *testing.T) {
	f := buildFst(Tropical, 2, map[int]float64{1: 0}, []testArc{{0, 1, 1, 1, 0.5}})
	c := f.Copy()
	c.SetArcs(0, nil)
	c.SetFinal(1, c.Semiring().Zero())
	if f.NumArcs(0) != 1 || !f.IsFinal(1) {
		t.Error("mutating the copy changed the original")
	}
}

func TestTopOrderCyclic(t *testing.T) {
	f := buildFst(Tropical, 2, map[int]float64{1: 0}, []testArc{
		{0, 1, 1, 1, 0},
		{1, 0, 2, 2, 0},
	})
	if _, err := TopOrder(f); err != ErrCyclic {
		t.Errorf("TopOrder: got %v, want ErrCyclic", err)
	}
	if IsAcyclic(f) {
		t.Error("IsAcyclic = true for a cycle")
	}
}

func TestShortestDistance(t *testing.T) {
	// diamond: 0 -> 1 -> 3, 0 -> 2 -> 3
	arcs := []testArc{
		{0, 1, 1, 1, -math.Log(0.6)},
		{0, 2, 2, 2, -math.Log(0.4)},
		{1, 3, 3, 3, -math.Log(0.5)},
		{2, 3, 3, 3, -math.Log(0.5)},
	}
	for _, tc := range []struct {
		sr   Semiring
		want float64
	}{
		{Tropical, -math.Log(0.3)},
		{Log, -math.Log(0.5)},
	} {
		f := buildFst(tc.sr, 4, map[int]float64{3: 0}, arcs)
		fw, err := ShortestDistance(f, false)
		if err != nil {
			t.Fatalf("%s forward: %v", tc.sr, err)
		}
		if !approx(fw[3], tc.want) {
			t.Errorf("%s forward[3] = %f, want %f", tc.sr, fw[3], tc.want)
		}
		bw, err := ShortestDistance(f, true)
		if err != nil {
			t.Fatalf("%s backward: %v", tc.sr, err)
		}
		if !approx(bw[0], tc.want) {
			t.Errorf("%s backward[0] = %f, want %f", tc.sr, bw[0], tc.want)
		}
		if !approx(bw[3], 0) {
			t.Errorf("%s backward[3] = %f, want 0", tc.sr, bw[3])
		}
	}
}

func TestShortestDistanceUnreachable(t *testing.T) {
	f := buildFst(Log, 3, map[int]float64{1: 0}, []testArc{{0, 1, 1, 1, 1}})
	fw, err := ShortestDistance(f, false)
	if err != nil {
		t.Fatal(err)
	}
	if !Log.IsZero(fw[2]) {
		t.Errorf("forward[2] = %f, want Zero", fw[2])
	}
	bw, err := ShortestDistance(f, true)
	if err != nil {
		t.Fatal(err)
	}
	if !Log.IsZero(bw[2]) {
		t.Errorf("backward[2] = %f, want Zero", bw[2])
	}
}

func TestShortestDistanceCyclic(t *testing.T) {
	f := buildFst(Log, 2, map[int]float64{1: 0}, []testArc{{0, 1, 1, 1, 0}, {1, 1, 1, 1, 0}})
	if _, err := ShortestDistance(f, false); err != ErrCyclic {
		t.Errorf("got %v, want ErrCyclic", err)
	}
}

func epsilonFst(sr Semiring) *Fst {
	return buildFst(sr, 4, map[int]float64{1: 4, 2: 0.5}, []testArc{
		{0, 1, 0, 0, 1},
		{1, 2, 5, 5, 2},
		{0, 3, 0, 0, 0.5},
		{3, 2, 5, 5, 2.5},
	})
}

func TestRmEpsilon(t *testing.T) {
	f := epsilonFst(Tropical)
	if err := RmEpsilon(f); err != nil {
		t.Fatalf("RmEpsilon: %v", err)
	}
	if f.HasEpsilons() {
		t.Fatal("epsilon arcs left")
	}
	arcs := f.Arcs(0)
	if len(arcs) != 1 {
		t.Fatalf("state 0 has %d arcs, want 1 (parallel arcs merged)", len(arcs))
	}
	if arcs[0].ILabel != 5 || arcs[0].NextState != 2 || !approx(arcs[0].Weight, 3) {
		t.Errorf("arc = %+v, want 5/3 -> 2", arcs[0])
	}
	if !approx(f.Final(0), 5) {
		t.Errorf("final(0) = %f, want 5", f.Final(0))
	}

	g := epsilonFst(Log)
	if err := RmEpsilon(g); err != nil {
		t.Fatalf("RmEpsilon: %v", err)
	}
	if got := g.Arcs(0)[0].Weight; !approx(got, 3-math.Log(2)) {
		t.Errorf("log merged weight = %f, want %f", got, 3-math.Log(2))
	}
}

func TestConnect(t *testing.T) {
	f := epsilonFst(Tropical)
	if err := RmEpsilon(f); err != nil {
		t.Fatal(err)
	}
	Connect(f)
	// states 1 and 3 were only reachable through epsilon arcs
	if f.NumStates() != 2 {
		t.Errorf("NumStates = %d, want 2", f.NumStates())
	}
	if err := Verify(f); err != nil {
		t.Errorf("Verify after Connect: %v", err)
	}

	dead := buildFst(Tropical, 3, nil, []testArc{{0, 1, 1, 1, 0}, {1, 2, 2, 2, 0}})
	Connect(dead)
	if dead.NumStates() != 0 || dead.Start() != NoStateID {
		t.Errorf("automaton without final states should become empty, got %d states", dead.NumStates())
	}
}

func TestEncoderRoundTrip(t *testing.T) {
	f := buildFst(Tropical, 3, map[int]float64{2: 0}, []testArc{
		{0, 1, 1, 7, 0},
		{0, 1, 1, 8, 0},
		{1, 2, 2, 7, 0},
		{1, 2, 1, 7, 0},
	})
	orig := f.Copy()
	enc := NewEncoder()
	enc.Encode(f)
	if !f.IsAcceptor() {
		t.Fatal("encoded fst is not an acceptor")
	}
	if enc.Len() != 3 {
		t.Errorf("encoder has %d codes, want 3", enc.Len())
	}
	if err := enc.Decode(f); err != nil {
		t.Fatalf("Decode: %v", err)
	}
	for s := StateID(0); int(s) < f.NumStates(); s++ {
		for i, a := range f.Arcs(s) {
			if a != orig.Arcs(s)[i] {
				t.Errorf("state %d arc %d = %+v, want %+v", s, i, a, orig.Arcs(s)[i])
			}
		}
	}
	if c := enc.Code(LabelPair{}); c != Epsilon {
		t.Errorf("(0,0) encodes to %d, want 0", c)
	}
}

func TestPushToInitial(t *testing.T) {
	f := buildFst(Tropical, 3, map[int]float64{2: 0}, []testArc{
		{0, 1, 1, 1, 1},
		{1, 2, 2, 2, 2},
		{0, 2, 3, 3, 3},
	})
	before, err := ShortestPaths(f, 10)
	if err != nil {
		t.Fatal(err)
	}
	if err := PushToInitial(f); err != nil {
		t.Fatalf("PushToInitial: %v", err)
	}
	if w := f.Arcs(1)[0].Weight; !approx(w, 0) {
		t.Errorf("pushed interior weight = %f, want 0", w)
	}
	after, err := ShortestPaths(f, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(before) != len(after) {
		t.Fatalf("path count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		if !approx(before[i].Weight, after[i].Weight) {
			t.Errorf("path %d weight %f -> %f", i, before[i].Weight, after[i].Weight)
		}
	}
}

func TestPushToInitialStartWithIncomingArcs(t *testing.T) {
	f := buildFst(Log, 3, map[int]float64{2: 0}, []testArc{
		{1, 0, 9, 9, 0},
		{0, 2, 1, 1, 2},
	})
	f.SetStart(0)
	if err := PushToInitial(f); err != nil {
		t.Fatal(err)
	}
	if f.Start() == 0 {
		t.Fatal("start state with incoming arcs should be replaced")
	}
	paths, err := ShortestPaths(f, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || !approx(paths[0].Weight, 2) {
		t.Errorf("paths = %+v, want one path of weight 2", paths)
	}
}
