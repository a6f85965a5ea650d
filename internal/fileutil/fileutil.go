// Package fileutil provides the file system helpers shared by the converter:
// atomic writes, XML discovery and mirrored output paths.
package fileutil

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// XMLExt is the extension of files picked up by FindXML.
const XMLExt = ".xml"

// Test hooks.
var (
	osRename = os.Rename
	osMkdir  = os.MkdirAll
)

// WriteFileAtomic writes data to path through a temporary file in the same
// directory, so readers never observe a partially written file. Missing
// parent directories are created.
func WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := osMkdir(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tempPath := tempFile.Name()

	if _, err := tempFile.Write(data); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tempFile.Chmod(perm); err != nil {
		tempFile.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to set permissions: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// Rename to final path (atomic on POSIX)
	if err := osRename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename file: %w", err)
	}
	return nil
}

// IsXML reports whether name has the .xml extension, in any case.
func IsXML(name string) bool {
	return strings.EqualFold(filepath.Ext(name), XMLExt)
}

// FindXML lists the XML files under root in lexical order. Without recursive
// only the files directly in root are returned. Directories named in skip
// (relative to root) are not entered.
func FindXML(root string, recursive bool, skip ...string) ([]string, error) {
	skipped := make(map[string]bool, len(skip))
	for _, s := range skip {
		skipped[filepath.Clean(s)] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == root {
				return nil
			}
			rel, _ := filepath.Rel(root, path)
			if !recursive || skipped[rel] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() && IsXML(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	sort.Strings(files)
	return files, nil
}

// MirrorPath returns the output location of path, an input under inRoot.
// With recursive the relative directory structure is kept; otherwise every
// output lands directly in outRoot.
func MirrorPath(inRoot, outRoot, path string, recursive bool) (string, error) {
	if !recursive {
		return filepath.Join(outRoot, filepath.Base(path)), nil
	}
	rel, err := filepath.Rel(inRoot, path)
	if err != nil {
		return "", fmt.Errorf("failed to relate %s to %s: %w", path, inRoot, err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside %s", path, inRoot)
	}
	return filepath.Join(outRoot, rel), nil
}
