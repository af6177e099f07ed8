package fst

import "testing"

func TestShortestPathsOrder(t *testing.T) {
	f := buildFst(Tropical, 4, map[int]float64{3: 0, 1: 2}, []testArc{
		{0, 1, 1, 1, 1},
		{0, 2, 2, 2, 0.5},
		{1, 3, 3, 3, 1},
		{2, 3, 4, 4, 3},
	})
	paths, err := ShortestPaths(f, 10)
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		labels []Label
		weight float64
	}{
		{[]Label{1, 3}, 2},
		{[]Label{1}, 3},
		{[]Label{2, 4}, 3.5},
	}
	if len(paths) != len(want) {
		t.Fatalf("got %d paths, want %d", len(paths), len(want))
	}
	for i, w := range want {
		if !equalLabels(paths[i].ILabels, w.labels) || !approx(paths[i].Weight, w.weight) {
			t.Errorf("path %d = %v@%f, want %v@%f", i, paths[i].ILabels, paths[i].Weight, w.labels, w.weight)
		}
	}

	top, err := ShortestPaths(f, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != 2 || !approx(top[1].Weight, 3) {
		t.Errorf("n=2 paths = %+v", top)
	}
}

func TestShortestPathsTiesKeepDiscoveryOrder(t *testing.T) {
	f := buildFst(Tropical, 3, map[int]float64{1: 0, 2: 0}, []testArc{
		{0, 1, 7, 7, 1},
		{0, 2, 3, 3, 1},
	})
	paths, err := ShortestPaths(f, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 2 || paths[0].ILabels[0] != 7 || paths[1].ILabels[0] != 3 {
		t.Errorf("paths = %+v, want label 7 before label 3", paths)
	}
}

func TestShortestPathsEmpty(t *testing.T) {
	paths, err := ShortestPaths(New(Tropical), 5)
	if err != nil || len(paths) != 0 {
		t.Errorf("empty fst: %v, %v", paths, err)
	}
	noFinal := buildFst(Tropical, 2, nil, []testArc{{0, 1, 1, 1, 0}})
	paths, err = ShortestPaths(noFinal, 5)
	if err != nil || len(paths) != 0 {
		t.Errorf("no final state: %v, %v", paths, err)
	}
	if paths, _ := ShortestPaths(noFinal, 0); paths != nil {
		t.Errorf("n=0 should return nothing")
	}
}
