package index

import (
	"github.com/golang/glog"
	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/fst"
)

// MergeOptions controls Merge.
type MergeOptions struct {
	Determinize fst.DeterminizeOptions
	// Semiring combines duplicate paths: fst.Log sums their probabilities,
	// fst.Tropical keeps the best one.
	Semiring fst.Semiring
	// OnlyBestSegmentation keeps only the cheapest output sequence for each
	// word.
	OnlyBestSegmentation bool
}

// Merge combines the paths of a word automaton that denote the same word and
// the same segmentation. The (word, segmentation) label pairs are encoded so
// the transducer can be determinized as an acceptor in opts.Semiring; in
// fst.Log this adds the probability mass of duplicate paths. The result is decoded
// and returned in the score semiring, ready for best-path search. With
// OnlyBestSegmentation a second determinization keeps only the best
// segmentation of each word. f is consumed.
func Merge(f *fst.Fst, opts MergeOptions) (*fst.Fst, error) {
	enc := fst.NewEncoder()
	enc.Encode(f)
	f.SetSemiring(opts.Semiring)
	det, err := fst.Determinize(f, opts.Determinize)
	if err != nil {
		return nil, errors.Wrap(err, "determinize")
	}
	if err := enc.Decode(det); err != nil {
		return nil, errors.Wrap(err, "decode")
	}
	det.SetSemiring(fst.Tropical)
	if glog.V(2) {
		glog.Infof("merged fst: %d states, %d arcs, %d label pairs", det.NumStates(), det.TotalArcs(), enc.Len())
	}
	if !opts.OnlyBestSegmentation {
		return det, nil
	}
	best, err := fst.DeterminizeDisambiguate(det, opts.Determinize)
	if err != nil {
		return nil, errors.Wrap(err, "disambiguate")
	}
	return best, nil
}
