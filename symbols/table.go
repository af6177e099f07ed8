// Package symbols reads symbol tables mapping integer labels to display
// strings, in the "symbol id" text format used by OpenFst and Kaldi.
package symbols

import (
	"bufio"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/ieee0824/wordindex-go/fst"
)

// ErrFormat is returned for malformed symbol table lines.
var ErrFormat = errors.New("malformed symbol table")

// Table maps labels to symbols and back. Symbols are stored in NFC form.
type Table struct {
	symbols map[fst.Label]string
	labels  map[string]fst.Label
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		symbols: make(map[fst.Label]string),
		labels:  make(map[string]fst.Label),
	}
}

// Add maps label to symbol, replacing any previous symbol of label.
func (t *Table) Add(symbol string, label fst.Label) {
	symbol = norm.NFC.String(symbol)
	t.symbols[label] = symbol
	if _, ok := t.labels[symbol]; !ok {
		t.labels[symbol] = label
	}
}

// Load reads a symbol table, one "symbol id" pair per line. Blank lines are
// skipped. When a label appears twice the last symbol wins.
func Load(r io.Reader) (*Table, error) {
	t := NewTable()
	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if len(fields) != 2 {
			return nil, errors.Wrapf(ErrFormat, "line %d: expected 2 fields, got %d", lineNum, len(fields))
		}
		id, err := strconv.ParseInt(fields[1], 10, 32)
		if err != nil || id < 0 {
			return nil, errors.Wrapf(ErrFormat, "line %d: bad label %q", lineNum, fields[1])
		}
		t.Add(fields[0], fst.Label(id))
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read symbol table")
	}
	return t, nil
}

// LoadEncoded reads a symbol table stored in the given character encoding.
func LoadEncoded(r io.Reader, enc encoding.Encoding) (*Table, error) {
	return Load(transform.NewReader(r, enc.NewDecoder()))
}

// LoadFile reads a symbol table from path. A non-empty encodingName (any
// WHATWG label such as "latin1" or "shift_jis") selects the file encoding;
// UTF-8 is assumed otherwise.
func LoadFile(path, encodingName string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if encodingName == "" {
		return Load(f)
	}
	enc, err := htmlindex.Get(encodingName)
	if err != nil {
		return nil, errors.Wrapf(err, "symbol table encoding %q", encodingName)
	}
	return LoadEncoded(f, enc)
}

// Find returns the symbol of label.
func (t *Table) Find(label fst.Label) (string, bool) {
	s, ok := t.symbols[label]
	return s, ok
}

// Label returns the label of symbol, which is normalized to NFC first.
func (t *Table) Label(symbol string) (fst.Label, bool) {
	l, ok := t.labels[norm.NFC.String(symbol)]
	return l, ok
}

// Len returns the number of labels with a symbol.
func (t *Table) Len() int { return len(t.symbols) }
