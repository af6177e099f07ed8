package index

import "github.com/ieee0824/wordindex-go/fst"

// Segment is a frame interval. Frames are 0-based; Start is inclusive and
// End is exclusive.
type Segment struct {
	Start int
	End   int
}

// SegmentTable assigns dense ids, starting from 1, to segments in the order
// they are first seen. Equal intervals share an id.
type SegmentTable struct {
	ids  map[Segment]fst.Label
	segs []Segment // segs[id-1]
}

// NewSegmentTable creates an empty table.
func NewSegmentTable() *SegmentTable {
	return &SegmentTable{ids: make(map[Segment]fst.Label)}
}

// ID returns the id of seg, assigning the next free one on first use.
func (t *SegmentTable) ID(seg Segment) fst.Label {
	if id, ok := t.ids[seg]; ok {
		return id
	}
	t.segs = append(t.segs, seg)
	id := fst.Label(len(t.segs))
	t.ids[seg] = id
	return id
}

// Lookup returns the segment with the given id.
func (t *SegmentTable) Lookup(id fst.Label) (Segment, bool) {
	if id <= 0 || int(id) > len(t.segs) {
		return Segment{}, false
	}
	return t.segs[id-1], true
}

// Len returns the number of distinct segments.
func (t *SegmentTable) Len() int { return len(t.segs) }
