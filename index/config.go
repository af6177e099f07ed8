package index

import (
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/fst"
)

// ErrConfig is returned for invalid configuration values.
var ErrConfig = errors.New("invalid configuration")

// SeparatorSet is an immutable set of labels that delimit words.
type SeparatorSet struct {
	labels map[fst.Label]struct{}
}

// NewSeparatorSet creates a separator set. Epsilon and negative labels are
// rejected.
func NewSeparatorSet(labels ...fst.Label) (SeparatorSet, error) {
	m := make(map[fst.Label]struct{}, len(labels))
	for _, l := range labels {
		if l == fst.Epsilon {
			return SeparatorSet{}, errors.Wrap(ErrConfig, "epsilon (0) cannot be a separator symbol")
		}
		if l < 0 {
			return SeparatorSet{}, errors.Wrapf(ErrConfig, "negative separator symbol %d", l)
		}
		m[l] = struct{}{}
	}
	return SeparatorSet{labels: m}, nil
}

// ParseSeparators parses a whitespace-separated list of labels, e.g. "1 2".
func ParseSeparators(s string) (SeparatorSet, error) {
	var labels []fst.Label
	for _, field := range strings.Fields(s) {
		v, err := strconv.ParseInt(field, 10, 32)
		if err != nil {
			return SeparatorSet{}, errors.Wrapf(ErrConfig, "bad separator symbol %q", field)
		}
		labels = append(labels, fst.Label(v))
	}
	return NewSeparatorSet(labels...)
}

// Contains reports whether l is a separator.
func (s SeparatorSet) Contains(l fst.Label) bool {
	_, ok := s.labels[l]
	return ok
}

// Len returns the number of separators.
func (s SeparatorSet) Len() int { return len(s.labels) }

// Labels returns the separators in increasing order.
func (s SeparatorSet) Labels() []fst.Label {
	res := make([]fst.Label, 0, len(s.labels))
	for l := range s.labels {
		res = append(res, l)
	}
	sort.Slice(res, func(i, j int) bool { return res[i] < res[j] })
	return res
}

// Config holds the indexing parameters. It is read-only once processing
// starts.
type Config struct {
	Separators       SeparatorSet
	AcousticScale    float64 // multiplier of acoustic costs
	GraphScale       float64 // multiplier of graph costs
	InsertionPenalty float64 // added to the graph cost of non-epsilon arcs
	Beam             float64 // lattice pruning beam; +Inf disables pruning
	NBest            int     // maximum number of entries per utterance
	Delta            float64 // determinization quantization step
	MaxMem           int64   // determinization memory ceiling in bytes; <= 0 disables it

	// OnlyBestSegmentation keeps a single segmentation per word. Scores
	// become lower bounds of the word presence probability.
	OnlyBestSegmentation bool
	// WordSegmentation reports word boundaries only instead of the
	// boundaries of every character.
	WordSegmentation bool
	// Determinize merges paths denoting the same word and segmentation.
	Determinize bool
	// UseLog computes forward/backward scores in the summing semiring;
	// otherwise the score semiring is used.
	UseLog bool
}

// DefaultConfig returns the default parameters.
func DefaultConfig() Config {
	return Config{
		AcousticScale: 1.0,
		GraphScale:    1.0,
		Beam:          math.Inf(1),
		NBest:         100,
		Delta:         fst.DefaultDelta,
		MaxMem:        50000000,
		Determinize:   true,
		UseLog:        true,
	}
}

// Validate checks the parameters.
func (c Config) Validate() error {
	finite := func(name string, v float64) error {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.Wrapf(ErrConfig, "%s must be finite, got %v", name, v)
		}
		return nil
	}
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"acoustic-scale", c.AcousticScale},
		{"graph-scale", c.GraphScale},
		{"insertion-penalty", c.InsertionPenalty},
	} {
		if err := finite(p.name, p.v); err != nil {
			return err
		}
	}
	if math.IsNaN(c.Beam) || c.Beam < 0 {
		return errors.Wrapf(ErrConfig, "beam must be non-negative, got %v", c.Beam)
	}
	if c.NBest <= 0 {
		return errors.Wrapf(ErrConfig, "nbest must be positive, got %d", c.NBest)
	}
	if math.IsNaN(c.Delta) || c.Delta <= 0 {
		return errors.Wrapf(ErrConfig, "delta must be positive, got %v", c.Delta)
	}
	if c.Separators.Contains(fst.Epsilon) {
		return errors.Wrap(ErrConfig, "epsilon (0) cannot be a separator symbol")
	}
	return nil
}

func (c Config) determinizeOptions() fst.DeterminizeOptions {
	return fst.DeterminizeOptions{Delta: c.Delta, MaxMem: c.MaxMem}
}
