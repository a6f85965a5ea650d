// Package archive bundles a conversion output directory into a compressed
// tar archive and reads such bundles back. Both tar.xz and tar.gz are
// supported.
package archive

import (
	"archive/tar"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Entry describes one file stored in a bundle.
type Entry struct {
	Name    string
	Size    int64
	ModTime time.Time
}

// openBundle returns a tar stream over the decompressed content of path and
// a function releasing the file and decompressor.
func openBundle(path string) (*tar.Reader, func(), error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open bundle: %w", err)
	}

	switch {
	case strings.HasSuffix(path, SuffixTarXz):
		xzr, err := xz.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("xz reader: %w", err)
		}
		return tar.NewReader(xzr), func() { f.Close() }, nil
	case strings.HasSuffix(path, SuffixTarGz):
		gzr, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("gzip reader: %w", err)
		}
		return tar.NewReader(gzr), func() { gzr.Close(); f.Close() }, nil
	default:
		f.Close()
		return nil, nil, fmt.Errorf("%w: %s", ErrUnsupported, path)
	}
}

// walk calls fn for every regular file until fn returns done or an error.
func walk(path string, fn func(h *tar.Header, r io.Reader) (done bool, err error)) error {
	tr, release, err := openBundle(path)
	if err != nil {
		return err
	}
	defer release()

	for {
		h, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read header: %w", err)
		}
		if h.Typeflag != tar.TypeReg {
			continue
		}
		done, err := fn(h, tr)
		if err != nil || done {
			return err
		}
	}
}

// List returns the files stored in the bundle at path, in archive order.
func List(path string) ([]Entry, error) {
	var entries []Entry
	err := walk(path, func(h *tar.Header, _ io.Reader) (bool, error) {
		entries = append(entries, Entry{Name: h.Name, Size: h.Size, ModTime: h.ModTime})
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ReadFile returns the content of the entry called name. A missing entry
// yields an error matching fs.ErrNotExist.
func ReadFile(path, name string) ([]byte, error) {
	var data []byte
	found := false
	err := walk(path, func(h *tar.Header, r io.Reader) (bool, error) {
		if h.Name != name {
			return false, nil
		}
		found = true
		var err error
		data, err = io.ReadAll(r)
		return true, err
	})
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s in %s: %w", name, path, fs.ErrNotExist)
	}
	return data, nil
}

// IsBundle reports whether path names a supported bundle format.
func IsBundle(path string) bool {
	return strings.HasSuffix(path, SuffixTarXz) || strings.HasSuffix(path, SuffixTarGz)
}
