package index

import (
	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/fst"
)

// Entry is one line of the word index.
type Entry struct {
	Key    string
	Score  float64     // log probability (lower bound) of the word
	Labels []fst.Label // characters of the word
	// Frames holds the segmentation. In word mode it is the start and end
	// frame of the word; otherwise it is the start frame of every character
	// followed by the end frame of the last one.
	Frames []int
}

// Extract returns the nbest best paths of f as index entries, best first. An
// automaton without successful paths gives no entries.
func Extract(key string, f *fst.Fst, nbest int, segs *SegmentTable, wordSegmentation bool) ([]Entry, error) {
	paths, err := fst.ShortestPaths(f, nbest)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(paths))
	for _, p := range paths {
		e := Entry{Key: key, Score: -p.Weight, Labels: p.ILabels}
		if e.Score == 0 {
			e.Score = 0 // no -0 in the output
		}
		if wordSegmentation {
			e.Frames, err = wordFrames(p.OLabels)
		} else {
			e.Frames, err = charFrames(p, segs)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "utterance %s", key)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func wordFrames(olabels []fst.Label) ([]int, error) {
	if len(olabels) != 2 {
		return nil, errors.Errorf("word path has %d boundary labels, want 2", len(olabels))
	}
	return []int{int(olabels[0]) - 1, int(olabels[1]) - 1}, nil
}

func charFrames(p fst.Path, segs *SegmentTable) ([]int, error) {
	if len(p.OLabels) != len(p.ILabels) {
		return nil, errors.Errorf("path has %d characters and %d segments", len(p.ILabels), len(p.OLabels))
	}
	frames := make([]int, 0, len(p.OLabels)+1)
	var last Segment
	for _, id := range p.OLabels {
		seg, ok := segs.Lookup(id)
		if !ok {
			return nil, errors.Errorf("unknown segment id %d", id)
		}
		frames = append(frames, seg.Start)
		last = seg
	}
	if len(frames) > 0 {
		frames = append(frames, last.End)
	}
	return frames, nil
}
