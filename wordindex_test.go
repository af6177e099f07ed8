package wordindex

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"

	"github.com/ieee0824/wordindex-go/index"
	"github.com/ieee0824/wordindex-go/lattice"
	"github.com/ieee0824/wordindex-go/symbols"
)

// catDog spells "cat" twice with the same segmentation (0.3 each) and "dog"
// once (0.4). Labels: c=1 a=2 t=3 d=4 o=5 g=6, space=7.
const catDog = `utt1
0 1 1 1.2039728043259361,0,1
1 2 2 0,0,1
2 3 3 0,0,1
0 4 1 1.2039728043259361,0,1
4 5 2 0,0,1
5 6 3 0,0,1
0 7 4 0.916290731874155,0,1
7 8 5 0,0,1
8 9 6 0,0,1
3 0,0
6 0,0
9 0,0

`

const onlySpace = `utt2
0 1 7 0,0,1
1 0,0

`

const transducer = `utt3
0 1 1 2 0,0,1
1 0,0

`

const catDogIndex = "utt1 -0.510826 1 2 3 0 1 2 3\n" +
	"utt1 -0.916291 4 5 6 0 1 2 3\n"

func TestRun(t *testing.T) {
	ix, err := NewIndexer("7")
	if err != nil {
		t.Fatalf("NewIndexer: %v", err)
	}
	var buf bytes.Buffer
	st, err := ix.Run(lattice.NewReader(strings.NewReader(catDog+onlySpace)), &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if buf.String() != catDogIndex {
		t.Errorf("index =\n%s\nwant\n%s", buf.String(), catDogIndex)
	}
	if st.Utterances != 2 || st.Empty != 1 || st.Failed != 0 || st.Entries != 2 {
		t.Errorf("stats = %+v", st)
	}
	if st.RunID == "" {
		t.Error("missing run id")
	}
}

func TestRunWordSegmentationWithSymbols(t *testing.T) {
	tab, err := symbols.Load(strings.NewReader("<eps> 0\nc 1\na 2\nt 3\nd 4\no 5\ng 6\n<space> 7\n"))
	if err != nil {
		t.Fatal(err)
	}
	cfg := index.DefaultConfig()
	cfg.WordSegmentation = true
	cfg.NBest = 1
	ix, err := NewIndexer("7", WithConfig(cfg), WithSymbols(tab))
	if err != nil {
		t.Fatalf("NewIndexer: %v", err)
	}
	var buf bytes.Buffer
	if _, err := ix.Run(lattice.NewReader(strings.NewReader(catDog)), &buf); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := "utt1 -0.510826 c a t 0 3\n"; buf.String() != want {
		t.Errorf("index = %q, want %q", buf.String(), want)
	}
}

func TestRunStrict(t *testing.T) {
	in := catDog + transducer + onlySpace

	ix, err := NewIndexer("7")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	st, err := ix.Run(lattice.NewReader(strings.NewReader(in)), &buf)
	if !lattice.IsMalformed(err) {
		t.Fatalf("strict run: got %v, want a malformed-input error", err)
	}
	if st.Utterances != 2 {
		t.Errorf("strict run stopped after %d utterances, want 2", st.Utterances)
	}
	if buf.String() != catDogIndex {
		t.Errorf("entries before the failure should be written, got %q", buf.String())
	}

	ix, err = NewIndexer("7", WithStrict(false))
	if err != nil {
		t.Fatal(err)
	}
	buf.Reset()
	st, err = ix.Run(lattice.NewReader(strings.NewReader(in)), &buf)
	if err != nil {
		t.Fatalf("lenient run: %v", err)
	}
	if st.Utterances != 3 || st.Failed != 1 || st.Empty != 1 || st.Entries != 2 {
		t.Errorf("stats = %+v", st)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestRunStrictReportsFlushError(t *testing.T) {
	ix, err := NewIndexer("7")
	if err != nil {
		t.Fatal(err)
	}
	_, err = ix.Run(lattice.NewReader(strings.NewReader(catDog+transducer)), failingWriter{})
	if !lattice.IsMalformed(err) {
		t.Fatalf("got %v, want a malformed-input error", err)
	}
	if !strings.Contains(err.Error(), "disk full") {
		t.Errorf("error %q does not report the failed write", err)
	}
}

func TestRunMemoryLimitSkipsUtterance(t *testing.T) {
	cfg := index.DefaultConfig()
	cfg.MaxMem = 1
	ix, err := NewIndexer("7", WithConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	st, err := ix.Run(lattice.NewReader(strings.NewReader(catDog+onlySpace)), &buf)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if st.Utterances != 2 || st.Failed != 1 || st.Empty != 1 {
		t.Errorf("stats = %+v", st)
	}
	if buf.Len() != 0 {
		t.Errorf("unexpected output %q", buf.String())
	}
}

func TestRunReadError(t *testing.T) {
	ix, err := NewIndexer("7")
	if err != nil {
		t.Fatal(err)
	}
	_, err = ix.Run(lattice.NewReader(strings.NewReader("utt1\n0 1 x 0,0\n")), &bytes.Buffer{})
	if err == nil {
		t.Error("expected a read error")
	}
}

func TestNewIndexerConfigErrors(t *testing.T) {
	for _, seps := range []string{"0", "7 0", "seven"} {
		if _, err := NewIndexer(seps); !errors.Is(err, index.ErrConfig) {
			t.Errorf("NewIndexer(%q): got %v, want ErrConfig", seps, err)
		}
	}
	cfg := index.DefaultConfig()
	cfg.NBest = 0
	if _, err := NewIndexer("7", WithConfig(cfg)); !errors.Is(err, index.ErrConfig) {
		t.Errorf("nbest 0: got %v, want ErrConfig", err)
	}
	missing := filepath.Join(t.TempDir(), "missing.txt")
	if _, err := NewIndexer("7", WithSymbolsFile(missing, "")); !errors.Is(err, index.ErrConfig) {
		t.Errorf("missing symbol table: got %v, want ErrConfig", err)
	}
}

func TestRunFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lats.txt")
	if err := os.WriteFile(path, []byte(catDog), 0o644); err != nil {
		t.Fatal(err)
	}
	ix, err := NewIndexer("7")
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	st, err := ix.RunFile("ark,t:"+path, &buf)
	if err != nil {
		t.Fatalf("RunFile: %v", err)
	}
	if st.Entries != 2 || buf.String() != catDogIndex {
		t.Errorf("stats %+v, index %q", st, buf.String())
	}
}
