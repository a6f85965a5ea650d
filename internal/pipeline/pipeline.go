// Package pipeline converts and verifies single files: read, parse,
// transform, serialize, write, and optionally compare the extracted values
// of input and output.
package pipeline

import (
	"context"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/zeebo/blake3"

	lerrors "github.com/FocuswithJustin/lawlist/core/errors"
	"github.com/FocuswithJustin/lawlist/core/transform"
	"github.com/FocuswithJustin/lawlist/core/verify"
	"github.com/FocuswithJustin/lawlist/core/xml"
	"github.com/FocuswithJustin/lawlist/internal/fileutil"
	"github.com/FocuswithJustin/lawlist/internal/logging"
	"github.com/FocuswithJustin/lawlist/internal/validation"
)

// Options controls a conversion.
type Options struct {
	Transform transform.Options
	// Verify compares the values of input and output after writing.
	Verify bool
}

// Verification is the outcome of comparing a converted file with its source.
type Verification struct {
	Identical   bool
	Differences int
	// Fallback is set when either side was read line by line.
	Fallback bool
}

// Result describes one converted file.
type Result struct {
	Input      string
	Output     string
	InputHash  string
	OutputHash string
	Stats      transform.Stats
	// Verification is nil unless Options.Verify was set.
	Verification *Verification
	Duration     time.Duration
}

// Hash returns the hex BLAKE3-256 digest of data.
func Hash(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Convert transforms an XML document held in memory. name labels parse
// errors and may be empty.
func Convert(data []byte, name string, opts transform.Options) ([]byte, transform.Stats, error) {
	doc, err := xml.ParseNamed(data, name)
	if err != nil {
		return nil, transform.Stats{}, err
	}
	out, stats := transform.Apply(doc, opts)
	return xml.Serialize(out), stats, nil
}

// ConvertFile converts the file at input and writes the result to output.
func ConvertFile(ctx context.Context, input, output string, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	data, err := ReadInput(input)
	if err != nil {
		return nil, err
	}

	converted, stats, err := Convert(data, input, opts.Transform)
	if err != nil {
		return nil, err
	}

	if err := fileutil.WriteFileAtomic(output, converted, 0644); err != nil {
		return nil, lerrors.NewIO("write", output, err)
	}

	res := &Result{
		Input:      input,
		Output:     output,
		InputHash:  Hash(data),
		OutputHash: Hash(converted),
		Stats:      stats,
	}

	if opts.Verify {
		p := verify.ExtractPair(data, converted)
		if p.Fallback() {
			logging.VerifyFallback(ctx, input, output, p.Err)
		}
		r := verify.Compare(p.Values1, p.Values2)
		res.Verification = &Verification{
			Identical:   r.Identical,
			Differences: r.DiffCount(),
			Fallback:    p.Fallback(),
		}
		logging.VerifyResult(ctx, input, output, r.Identical, r.DiffCount())
	}

	res.Duration = time.Since(start)
	logging.FileConverted(ctx, input, output, stats.Transformed, stats.Splits, res.Duration)
	return res, nil
}

// ReadInput reads an input document after checking its size.
func ReadInput(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &lerrors.NotFoundError{Resource: "file", Path: path, Err: err}
		}
		return nil, lerrors.NewIO("stat", path, err)
	}
	if info.IsDir() {
		return nil, &lerrors.ValidationError{Field: "input", Message: path + " is a directory"}
	}
	if err := validation.ValidateFileSize(info); err != nil {
		return nil, &lerrors.ValidationError{Field: "input", Message: err.Error(), Err: err}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lerrors.NewIO("read", path, err)
	}
	return data, nil
}

// VerifyFiles compares the values of two documents on disk.
func VerifyFiles(ctx context.Context, file1, file2 string) (*verify.Report, error) {
	a, err := ReadInput(file1)
	if err != nil {
		return nil, err
	}
	b, err := ReadInput(file2)
	if err != nil {
		return nil, err
	}

	p := verify.ExtractPair(a, b)
	if p.Fallback() {
		logging.VerifyFallback(ctx, file1, file2, p.Err)
	}
	report := verify.NewReport(file1, file2, p)
	logging.VerifyResult(ctx, file1, file2, report.Result.Identical, report.Result.DiffCount())
	return report, nil
}
