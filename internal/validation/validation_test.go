package validation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSanitizePath(t *testing.T) {
	baseDir := "/tmp/test"

	tests := []struct {
		name      string
		userPath  string
		want      string
		wantError error
	}{
		{
			name:     "simple valid path",
			userPath: "law.xml",
			want:     "law.xml",
		},
		{
			name:     "nested valid path",
			userPath: "subdir/law.xml",
			want:     filepath.Join("subdir", "law.xml"),
		},
		{
			name:     "path with redundant separators",
			userPath: "subdir//law.xml",
			want:     filepath.Join("subdir", "law.xml"),
		},
		{
			name:     "dots inside a name",
			userPath: "a..b.xml",
			want:     "a..b.xml",
		},
		{
			name:     "dot dot resolved inside base",
			userPath: "subdir/../law.xml",
			want:     "law.xml",
		},
		{
			name:      "path traversal with dotdot",
			userPath:  "../etc/passwd",
			wantError: ErrPathTraversal,
		},
		{
			name:      "path traversal in middle",
			userPath:  "subdir/../../etc/passwd",
			wantError: ErrPathTraversal,
		},
		{
			name:      "absolute path",
			userPath:  "/etc/passwd",
			wantError: ErrPathTraversal,
		},
		{
			name:      "empty path",
			userPath:  "",
			wantError: ErrEmptyPath,
		},
		{
			name:      "path too long",
			userPath:  strings.Repeat("a", MaxPathLength+1),
			wantError: ErrPathTooLong,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizePath(baseDir, tt.userPath)
			if tt.wantError != nil {
				if !errors.Is(err, tt.wantError) {
					t.Errorf("SanitizePath() error = %v, want %v", err, tt.wantError)
				}
				return
			}
			if err != nil {
				t.Fatalf("SanitizePath() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("SanitizePath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name      string
		path      string
		wantError error
	}{
		{"valid relative path", "in/law.xml", nil},
		{"valid absolute path", "/data/法令/law.xml", nil},
		{"empty", "", ErrEmptyPath},
		{"too long", strings.Repeat("a", MaxPathLength+1), ErrPathTooLong},
		{"null byte", "law\x00.xml", ErrInvalidCharacter},
		{"control character", "law\n.xml", ErrInvalidCharacter},
		{"long element", "in/" + strings.Repeat("法", 86) + ".xml", ErrFilenameTooLong},
		{"long element within limit", "in/" + strings.Repeat("法", 83) + ".xml", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.path)
			if tt.wantError == nil && err != nil {
				t.Errorf("ValidatePath() unexpected error = %v", err)
			}
			if tt.wantError != nil && !errors.Is(err, tt.wantError) {
				t.Errorf("ValidatePath() error = %v, want %v", err, tt.wantError)
			}
		})
	}
}

type sizedInfo struct {
	os.FileInfo
	size int64
}

func (s sizedInfo) Name() string       { return "law.xml" }
func (s sizedInfo) Size() int64        { return s.size }
func (s sizedInfo) ModTime() time.Time { return time.Time{} }

func TestValidateFileSize(t *testing.T) {
	if err := ValidateFileSize(sizedInfo{size: MaxFileSize}); err != nil {
		t.Errorf("ValidateFileSize(limit) = %v", err)
	}
	if err := ValidateFileSize(sizedInfo{size: MaxFileSize + 1}); !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("ValidateFileSize(limit+1) = %v, want ErrFileTooLarge", err)
	}
}

func TestValidateSeparate(t *testing.T) {
	dir := t.TempDir()
	if err := ValidateSeparate(dir, filepath.Join(dir, "out")); err != nil {
		t.Errorf("ValidateSeparate(distinct) = %v", err)
	}
	if err := ValidateSeparate(dir, dir+string(filepath.Separator)+"."); !errors.Is(err, ErrSameLocation) {
		t.Errorf("ValidateSeparate(same) = %v, want ErrSameLocation", err)
	}
}
