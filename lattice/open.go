package lattice

import (
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/edsrzf/mmap-go"
	"github.com/pkg/errors"
)

// Archive is an opened lattice archive.
type Archive struct {
	*Reader
	closer func() error
}

// Close releases the underlying file or mapping.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}

// ParseRspecifier strips a Kaldi-style table prefix ("ark:", "ark,t:", ...)
// and returns the path. "-" denotes standard input.
func ParseRspecifier(rspec string) (string, error) {
	path := rspec
	if i := strings.IndexByte(rspec, ':'); i >= 0 {
		opts := strings.Split(rspec[:i], ",")
		if opts[0] == "ark" {
			for _, o := range opts[1:] {
				switch o {
				case "t", "s", "o", "cs", "p":
				default:
					return "", errors.Errorf("unsupported rspecifier option %q in %q", o, rspec)
				}
			}
			path = rspec[i+1:]
		} else if opts[0] == "scp" {
			return "", errors.Errorf("script rspecifiers are not supported: %q", rspec)
		}
	}
	if path == "" {
		return "", errors.Errorf("empty rspecifier %q", rspec)
	}
	return path, nil
}

// Open opens the lattice archive named by rspec. Regular files are mapped
// read-only into memory; "-" reads standard input.
func Open(rspec string) (*Archive, error) {
	path, err := ParseRspecifier(rspec)
	if err != nil {
		return nil, err
	}
	if path == "-" {
		return &Archive{Reader: NewReader(os.Stdin)}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open lattice archive")
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "stat lattice archive")
	}
	if !fi.Mode().IsRegular() || fi.Size() == 0 {
		// pipes and empty files cannot be mapped
		return &Archive{Reader: NewReader(f), closer: f.Close}, nil
	}
	m, err := mmap.Map(f, mmap.RDONLY, 0)
	if err != nil {
		f.Close()
		return nil, errors.Wrap(err, "map lattice archive")
	}
	closer := func() error {
		uerr := m.Unmap()
		cerr := f.Close()
		if uerr != nil {
			return uerr
		}
		return cerr
	}
	return &Archive{Reader: NewReader(bytes.NewReader(m)), closer: closer}, nil
}

var _ io.Closer = (*Archive)(nil)
