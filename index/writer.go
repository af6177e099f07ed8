package index

import (
	"bufio"
	"io"
	"strconv"

	"github.com/ieee0824/wordindex-go/fst"
)

// SymbolLookup maps labels to display strings.
type SymbolLookup interface {
	Find(l fst.Label) (string, bool)
}

// Writer prints entries as
//
//	<key> <score> <label>... <frame>...
//
// with labels mapped through the symbol table when one is set. Labels
// missing from the table are printed as numbers.
type Writer struct {
	w    *bufio.Writer
	syms SymbolLookup
	buf  []byte
}

// NewWriter creates a Writer. syms may be nil.
func NewWriter(w io.Writer, syms SymbolLookup) *Writer {
	return &Writer{w: bufio.NewWriter(w), syms: syms}
}

// Write prints one entry.
func (w *Writer) Write(e Entry) error {
	b := w.buf[:0]
	b = append(b, e.Key...)
	b = append(b, ' ')
	b = strconv.AppendFloat(b, e.Score, 'g', 6, 64)
	for _, l := range e.Labels {
		b = append(b, ' ')
		if w.syms != nil {
			if s, ok := w.syms.Find(l); ok {
				b = append(b, s...)
				continue
			}
		}
		b = strconv.AppendInt(b, int64(l), 10)
	}
	for _, t := range e.Frames {
		b = append(b, ' ')
		b = strconv.AppendInt(b, int64(t), 10)
	}
	b = append(b, '\n')
	w.buf = b
	_, err := w.w.Write(b)
	return err
}

// Flush writes buffered output.
func (w *Writer) Flush() error {
	return w.w.Flush()
}
