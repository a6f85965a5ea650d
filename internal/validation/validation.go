// Package validation checks the paths and files handed to the converter
// before any of them is read or written.
package validation

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
)

// Limits on input that is read whole into memory (CWE-400).
const (
	// MaxFileSize is the maximum size of an input document (256 MB).
	MaxFileSize = 256 << 20
	// MaxFilenameLength is the maximum allowed filename length.
	MaxFilenameLength = 255
	// MaxPathLength is the maximum allowed path length.
	MaxPathLength = 4096
)

// Common validation errors.
var (
	ErrPathTraversal    = errors.New("path traversal detected")
	ErrPathTooLong      = errors.New("path too long")
	ErrFilenameTooLong  = errors.New("filename too long")
	ErrInvalidCharacter = errors.New("invalid character in path")
	ErrEmptyPath        = errors.New("path cannot be empty")
	ErrFileTooLarge     = errors.New("file too large")
	ErrSameLocation     = errors.New("input and output are the same location")
)

// SanitizePath validates a path relative to baseDir and ensures it does not
// escape it. Returns the cleaned relative path.
func SanitizePath(baseDir, userPath string) (string, error) {
	if userPath == "" {
		return "", ErrEmptyPath
	}
	if len(userPath) > MaxPathLength {
		return "", ErrPathTooLong
	}

	cleanPath := filepath.Clean(userPath)
	if filepath.IsAbs(cleanPath) {
		return "", fmt.Errorf("%w: absolute path not allowed", ErrPathTraversal)
	}
	if escapes(cleanPath) {
		return "", ErrPathTraversal
	}

	absBase, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	absPath, err := filepath.Abs(filepath.Join(baseDir, cleanPath))
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	relPath, err := filepath.Rel(absBase, absPath)
	if err != nil || escapes(relPath) {
		return "", ErrPathTraversal
	}

	return cleanPath, nil
}

// escapes reports whether a cleaned relative path climbs out of its base.
func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ValidatePath checks a command-line path: it must be non-empty, free of
// control characters, and neither the whole path nor any element may exceed
// the file system limits.
func ValidatePath(path string) error {
	if path == "" {
		return ErrEmptyPath
	}
	if len(path) > MaxPathLength {
		return ErrPathTooLong
	}
	if i := strings.IndexFunc(path, unicode.IsControl); i >= 0 {
		return fmt.Errorf("%w: %q at byte %d", ErrInvalidCharacter, path[i], i)
	}
	for _, elem := range strings.Split(filepath.ToSlash(path), "/") {
		if len(elem) > MaxFilenameLength {
			return fmt.Errorf("%w: element of %d bytes", ErrFilenameTooLong, len(elem))
		}
	}
	return nil
}

// ValidateFileSize rejects inputs larger than MaxFileSize.
func ValidateFileSize(info os.FileInfo) error {
	if info.Size() > MaxFileSize {
		return fmt.Errorf("%w: %s is %d bytes, limit %d", ErrFileTooLarge, info.Name(), info.Size(), MaxFileSize)
	}
	return nil
}

// ValidateSeparate rejects an output location that resolves to the input
// location, which would overwrite the sources.
func ValidateSeparate(input, output string) error {
	absIn, err := filepath.Abs(input)
	if err != nil {
		return fmt.Errorf("failed to resolve input: %w", err)
	}
	absOut, err := filepath.Abs(output)
	if err != nil {
		return fmt.Errorf("failed to resolve output: %w", err)
	}
	if absIn == absOut {
		return fmt.Errorf("%w: %s", ErrSameLocation, output)
	}
	return nil
}
