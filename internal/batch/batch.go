// Package batch converts every XML file of a directory. Files are processed
// in parallel; a failing file is recorded and never stops the run.
package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	lerrors "github.com/FocuswithJustin/lawlist/core/errors"
	"github.com/FocuswithJustin/lawlist/core/transform"
	"github.com/FocuswithJustin/lawlist/internal/archive"
	"github.com/FocuswithJustin/lawlist/internal/fileutil"
	"github.com/FocuswithJustin/lawlist/internal/logging"
	"github.com/FocuswithJustin/lawlist/internal/pipeline"
	"github.com/FocuswithJustin/lawlist/internal/validation"
)

// Options controls a batch run.
type Options struct {
	// Recursive descends into subdirectories and mirrors their layout.
	Recursive bool
	// Workers bounds the number of files converted at once. Zero means
	// runtime.NumCPU().
	Workers  int
	Pipeline pipeline.Options
	// Bundle, when set, is the path of a .tar.xz or .tar.gz archive of the
	// output directory written after the run.
	Bundle string
}

// FileResult is the outcome for one input file.
type FileResult struct {
	Input string
	// Rel is Input relative to the input directory.
	Rel    string
	Output string
	Result *pipeline.Result
	Err    error
	Kind   string
	Line   int
	Column int
}

// OK reports whether the file was converted.
func (r FileResult) OK() bool {
	return r.Err == nil
}

// Summary describes a finished run. Files are in input order.
type Summary struct {
	RunID     string
	InputDir  string
	OutputDir string
	Started   time.Time
	Duration  time.Duration
	Files     []FileResult
	Succeeded int
	Failed    int
	// Diverged counts verified files whose values differ from the source.
	Diverged int
	Stats    transform.Stats
	// ReportPath is set when an error report was written.
	ReportPath    string
	BundlePath    string
	BundleEntries int
}

// Failures returns the failed files in input order.
func (s *Summary) Failures() []FileResult {
	var out []FileResult
	for _, f := range s.Files {
		if !f.OK() {
			out = append(out, f)
		}
	}
	return out
}

// Run converts the XML files of inputDir into outputDir.
//
// Errors returned by Run concern the run as a whole: an invalid or missing
// input directory, a cancelled context, or a failure writing the error
// report or bundle. Per-file failures are reported in Summary.Files.
func Run(ctx context.Context, inputDir, outputDir string, opts Options) (*Summary, error) {
	if err := validation.ValidateSeparate(inputDir, outputDir); err != nil {
		return nil, &lerrors.ValidationError{Field: "output", Message: err.Error(), Err: err}
	}
	info, err := os.Stat(inputDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &lerrors.NotFoundError{Resource: "input directory", Path: inputDir, Err: err}
		}
		return nil, lerrors.NewIO("stat", inputDir, err)
	}
	if !info.IsDir() {
		return nil, lerrors.NewValidation("input", inputDir+" is not a directory")
	}
	if opts.Bundle != "" && !archive.IsBundle(opts.Bundle) {
		return nil, &lerrors.ValidationError{Field: "bundle", Message: opts.Bundle, Err: archive.ErrUnsupported}
	}

	files, err := fileutil.FindXML(inputDir, opts.Recursive, nestedSkip(inputDir, outputDir)...)
	if err != nil {
		return nil, lerrors.NewIO("scan", inputDir, err)
	}

	sum := &Summary{
		RunID:     uuid.New().String(),
		InputDir:  inputDir,
		OutputDir: outputDir,
		Started:   time.Now(),
		Files:     make([]FileResult, len(files)),
	}
	ctx = logging.WithRunID(ctx, sum.RunID)

	if len(files) == 0 {
		logging.LoggerFromContext(ctx).Warn("no XML files found", "input", inputDir, "recursive", opts.Recursive)
		return sum, nil
	}
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, lerrors.NewIO("mkdir", outputDir, err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			sum.Files[i] = convertOne(gctx, inputDir, outputDir, path, opts)
			return nil
		})
	}
	g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	for _, f := range sum.Files {
		if !f.OK() {
			sum.Failed++
			continue
		}
		sum.Succeeded++
		sum.Stats.Add(f.Result.Stats)
		if v := f.Result.Verification; v != nil && !v.Identical {
			sum.Diverged++
		}
	}

	if sum.Failed > 0 {
		path, err := WriteErrorReport(sum)
		if err != nil {
			return sum, err
		}
		sum.ReportPath = path
	}

	if opts.Bundle != "" {
		if err := bundle(ctx, sum, opts.Bundle); err != nil {
			return sum, err
		}
	}

	sum.Duration = time.Since(sum.Started)
	logging.BatchSummary(ctx, len(files), sum.Succeeded, sum.Failed, sum.Duration,
		"splits", sum.Stats.Splits, "diverged", sum.Diverged)
	return sum, nil
}

func convertOne(ctx context.Context, inputDir, outputDir, path string, opts Options) FileResult {
	res := FileResult{Input: path, Rel: relName(inputDir, path)}

	out, err := outputPath(inputDir, outputDir, path, opts.Recursive)
	if err != nil {
		res.Err = &lerrors.ValidationError{Field: "output", Message: err.Error(), Err: err}
	} else {
		res.Output = out
		res.Result, res.Err = pipeline.ConvertFile(ctx, path, out, opts.Pipeline)
	}

	if res.Err != nil {
		res.Kind = lerrors.Kind(res.Err)
		res.Line, res.Column, _ = lerrors.Position(res.Err)
		logging.FileFailed(ctx, res.Rel, res.Kind, res.Err)
	}
	return res
}

// outputPath mirrors path into outputDir and checks the result stays there.
func outputPath(inputDir, outputDir, path string, recursive bool) (string, error) {
	out, err := fileutil.MirrorPath(inputDir, outputDir, path, recursive)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(outputDir, out)
	if err != nil {
		return "", err
	}
	rel, err = validation.SanitizePath(outputDir, rel)
	if err != nil {
		return "", fmt.Errorf("output for %s: %w", path, err)
	}
	return filepath.Join(outputDir, rel), nil
}

func relName(root, path string) string {
	if rel, err := filepath.Rel(root, path); err == nil {
		return filepath.ToSlash(rel)
	}
	return path
}

// nestedSkip returns outputDir relative to inputDir when it lies inside it,
// so earlier outputs are not converted again.
func nestedSkip(inputDir, outputDir string) []string {
	absIn, err1 := filepath.Abs(inputDir)
	absOut, err2 := filepath.Abs(outputDir)
	if err1 != nil || err2 != nil {
		return nil
	}
	rel, err := filepath.Rel(absIn, absOut)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return nil
	}
	return []string{rel}
}

func bundle(ctx context.Context, sum *Summary, dst string) error {
	if err := archive.CreateBundle(sum.OutputDir, dst, archive.BundleName(dst)); err != nil {
		return lerrors.NewIO("bundle", dst, err)
	}
	entries, err := archive.List(dst)
	if err != nil {
		return lerrors.NewIO("read bundle", dst, err)
	}
	sum.BundlePath = dst
	sum.BundleEntries = len(entries)
	logging.LoggerFromContext(ctx).Info("bundle_written", "path", dst, "entries", len(entries))
	return nil
}
