// Package wordindex builds word indexes from character lattices: for every
// utterance it lists the words most likely present in the transcription with
// a lower bound of their log probability and their time segmentation.
package wordindex

import (
	"io"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/fst"
	"github.com/ieee0824/wordindex-go/index"
	"github.com/ieee0824/wordindex-go/lattice"
	"github.com/ieee0824/wordindex-go/symbols"
)

// Source is a sequential stream of keyed lattices, such as *lattice.Reader.
type Source interface {
	Next() bool
	Key() string
	Lattice() *lattice.Lattice
	Err() error
}

// Indexer is the top-level word indexer.
type Indexer struct {
	Config  index.Config
	Symbols index.SymbolLookup // optional display strings for labels
	Strict  bool               // abort on malformed lattices

	symbolsPath     string
	symbolsEncoding string
}

// Stats summarizes a run.
type Stats struct {
	RunID      string
	Utterances int // lattices read
	Empty      int // lattices without any word
	Failed     int // lattices skipped because of an error
	Entries    int // index lines written
}

// Option configures an Indexer.
type Option func(*Indexer)

// WithConfig sets the indexing parameters. The separators passed to
// NewIndexer replace cfg.Separators.
func WithConfig(cfg index.Config) Option {
	return func(ix *Indexer) {
		ix.Config = cfg
	}
}

// WithSymbols sets the table used to print labels.
func WithSymbols(syms index.SymbolLookup) Option {
	return func(ix *Indexer) {
		ix.Symbols = syms
	}
}

// WithSymbolsFile loads the symbol table used to print labels from path.
// encoding names the file's character encoding; empty means UTF-8.
func WithSymbolsFile(path, encoding string) Option {
	return func(ix *Indexer) {
		ix.symbolsPath = path
		ix.symbolsEncoding = encoding
	}
}

// WithStrict controls whether a malformed lattice aborts the run (true, the
// default) or is logged and skipped.
func WithStrict(strict bool) Option {
	return func(ix *Indexer) {
		ix.Strict = strict
	}
}

// NewIndexer creates an Indexer splitting words at the given separator
// labels, a whitespace-separated list such as "1 2". Configuration problems
// are reported as index.ErrConfig.
func NewIndexer(separators string, opts ...Option) (*Indexer, error) {
	ix := &Indexer{
		Config: index.DefaultConfig(),
		Strict: true,
	}
	for _, opt := range opts {
		opt(ix)
	}
	seps, err := index.ParseSeparators(separators)
	if err != nil {
		return nil, err
	}
	ix.Config.Separators = seps
	if err := ix.Config.Validate(); err != nil {
		return nil, err
	}
	if ix.symbolsPath != "" {
		tab, err := symbols.LoadFile(ix.symbolsPath, ix.symbolsEncoding)
		if err != nil {
			return nil, errors.Wrapf(index.ErrConfig, "load symbol table %s: %v", ix.symbolsPath, err)
		}
		ix.Symbols = tab
	}
	return ix, nil
}

// Run indexes every lattice of src and writes the entries to w, one
// utterance after the other. Utterances whose determinization exceeds the
// memory ceiling are logged and skipped, as are malformed lattices unless
// the Indexer is strict. Any other error stops the run.
func (ix *Indexer) Run(src Source, w io.Writer) (Stats, error) {
	st := Stats{RunID: uuid.New().String()}
	out := index.NewWriter(w, ix.Symbols)
	glog.Infof("run %s: separators %v, nbest %d, beam %g", st.RunID, ix.Config.Separators.Labels(), ix.Config.NBest, ix.Config.Beam)

	for src.Next() {
		key := src.Key()
		st.Utterances++
		entries, err := index.Build(key, src.Lattice(), ix.Config)
		if err != nil {
			switch {
			case errors.Is(err, fst.ErrMemoryLimit):
				glog.Warningf("run %s: skipping %s: %v", st.RunID, key, err)
				st.Failed++
				continue
			case lattice.IsMalformed(err) && !ix.Strict:
				glog.Warningf("run %s: skipping malformed %s: %v", st.RunID, key, err)
				st.Failed++
				continue
			}
			if ferr := out.Flush(); ferr != nil {
				return st, errors.Wrapf(err, "write index: %v", ferr)
			}
			return st, err
		}
		if len(entries) == 0 {
			st.Empty++
		}
		for _, e := range entries {
			if err := out.Write(e); err != nil {
				return st, errors.Wrap(err, "write index")
			}
		}
		st.Entries += len(entries)
	}
	if err := out.Flush(); err != nil {
		return st, errors.Wrap(err, "write index")
	}
	if err := src.Err(); err != nil {
		return st, errors.Wrap(err, "read lattices")
	}
	glog.Infof("run %s: %d utterances, %d empty, %d failed, %d entries",
		st.RunID, st.Utterances, st.Empty, st.Failed, st.Entries)
	return st, nil
}

// RunFile indexes the lattice archive named by rspec ("ark:lats.txt",
// "-" for standard input, ...).
func (ix *Indexer) RunFile(rspec string, w io.Writer) (Stats, error) {
	ar, err := lattice.Open(rspec)
	if err != nil {
		return Stats{}, err
	}
	defer ar.Close()
	return ix.Run(ar, w)
}
