package archive

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ulikunitz/xz"
)

// Compressed archive suffixes understood by CreateBundle and List.
const (
	SuffixTarXz = ".tar.xz"
	SuffixTarGz = ".tar.gz"
)

// ErrUnsupported is returned for archive names without a known suffix.
var ErrUnsupported = errors.New("unsupported archive format")

// Test hooks.
var (
	xzNewWriter = xz.NewWriter
	timeNow     = time.Now
)

// BundleName derives the directory name used inside an archive from its
// file name: "out/laws.tar.xz" gives "laws".
func BundleName(dstPath string) string {
	base := filepath.Base(dstPath)
	for _, ext := range []string{SuffixTarXz, SuffixTarGz} {
		if strings.HasSuffix(base, ext) {
			return strings.TrimSuffix(base, ext)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// CreateBundle archives srcDir into dstPath, compressed according to the
// suffix of dstPath. Entries are stored under baseDir. When dstPath lies
// inside srcDir it is left out of the archive. Parent directories of dstPath
// are created.
func CreateBundle(srcDir, dstPath, baseDir string) (err error) {
	if err := os.MkdirAll(filepath.Dir(dstPath), 0755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	outFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close archive file: %w", cerr)
		}
		if err != nil {
			os.Remove(dstPath)
		}
	}()

	cw, err := compressor(outFile, dstPath)
	if err != nil {
		return err
	}

	tw := tar.NewWriter(cw)
	if err := writeTree(tw, srcDir, dstPath, baseDir); err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	if err := tw.Close(); err != nil {
		return fmt.Errorf("failed to finish tar stream: %w", err)
	}
	if err := cw.Close(); err != nil {
		return fmt.Errorf("failed to finish compression: %w", err)
	}
	return nil
}

func compressor(w io.Writer, dstPath string) (io.WriteCloser, error) {
	switch {
	case strings.HasSuffix(dstPath, SuffixTarXz):
		xzw, err := xzNewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("failed to create xz writer: %w", err)
		}
		return xzw, nil
	case strings.HasSuffix(dstPath, SuffixTarGz):
		return gzip.NewWriter(w), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, dstPath)
	}
}

func writeTree(tw *tar.Writer, srcDir, dstPath, baseDir string) error {
	absDst, err := filepath.Abs(dstPath)
	if err != nil {
		return err
	}
	now := timeNow()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}
		if abs, _ := filepath.Abs(path); abs == absDst {
			return nil
		}

		header, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		header.Name = baseDir + "/" + filepath.ToSlash(relPath)
		if info.IsDir() {
			header.Name += "/"
		}
		// One timestamp for the whole bundle.
		header.ModTime = now

		if err := tw.WriteHeader(header); err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		_, err = io.Copy(tw, file)
		return err
	})
}
