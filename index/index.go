package index

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/fst"
	"github.com/ieee0824/wordindex-go/lattice"
)

// Build indexes the words of one utterance lattice. lat is modified. The
// result is empty when the lattice has no successful path.
//
// lattice.IsMalformed reports whether an error is caused by unusable input.
// Errors wrapping fst.ErrMemoryLimit report that determinization exceeded
// cfg.MaxMem.
func Build(key string, lat *lattice.Lattice, cfg Config) ([]Entry, error) {
	if err := lattice.Check(lat); err != nil {
		return nil, errors.Wrapf(err, "lattice %s", key)
	}
	lattice.Scale(lat, cfg.GraphScale, cfg.AcousticScale)
	if cfg.InsertionPenalty != 0 {
		lattice.AddInsertionPenalty(lat, cfg.InsertionPenalty)
	}
	if err := lattice.Prune(lat, cfg.Beam); err != nil {
		return nil, errors.Wrapf(err, "lattice %s", key)
	}
	lattice.Connect(lat)
	if lat.NumStates() == 0 {
		glog.V(1).Infof("%s: no successful path", key)
		return nil, nil
	}
	times, numFrames, err := lattice.StateTimes(lat)
	if err != nil {
		return nil, errors.Wrapf(err, "lattice %s", key)
	}
	cf, err := BuildCharFst(lat, times)
	if err != nil {
		return nil, errors.Wrapf(err, "lattice %s", key)
	}
	cf.NumFrames = numFrames
	if glog.V(1) {
		glog.Infof("%s: %d states, %d arcs, %d frames, %d segments",
			key, cf.Fst.NumStates(), cf.Fst.TotalArcs(), numFrames, cf.Segments.Len())
	}

	// forward/backward and merging sum path probabilities, or keep the
	// Viterbi path only
	sr := fst.Tropical
	if cfg.UseLog {
		sr = fst.Log
	}
	f := cf.Fst
	f.SetSemiring(sr)
	if err := WordsFst(f, cfg.Separators); err != nil {
		return nil, errors.Wrapf(err, "lattice %s", key)
	}
	if f.NumStates() == 0 {
		glog.V(1).Infof("%s: no words", key)
		return nil, nil
	}
	if cfg.WordSegmentation {
		if err := CollapseSegments(f, cf.Segments); err != nil {
			return nil, errors.Wrapf(err, "lattice %s", key)
		}
	}

	opts := cfg.determinizeOptions()
	switch {
	case cfg.Determinize:
		f, err = Merge(f, MergeOptions{
			Determinize:          opts,
			Semiring:             sr,
			OnlyBestSegmentation: cfg.OnlyBestSegmentation,
		})
	case cfg.OnlyBestSegmentation:
		f.SetSemiring(fst.Tropical)
		f, err = fst.DeterminizeDisambiguate(f, opts)
	default:
		f.SetSemiring(fst.Tropical)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "lattice %s", key)
	}

	entries, err := Extract(key, f, cfg.NBest, cf.Segments, cfg.WordSegmentation)
	if err != nil {
		return nil, err
	}
	glog.V(1).Infof("%s: %d entries", key, len(entries))
	return entries, nil
}
