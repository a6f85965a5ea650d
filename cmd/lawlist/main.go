// Command lawlist converts the enumerated sentences of legal XML documents
// into List/Column structures and verifies that conversions preserve every
// value.
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/alecthomas/kong"

	lerrors "github.com/FocuswithJustin/lawlist/core/errors"
	"github.com/FocuswithJustin/lawlist/core/transform"
	"github.com/FocuswithJustin/lawlist/internal/batch"
	"github.com/FocuswithJustin/lawlist/internal/fileutil"
	"github.com/FocuswithJustin/lawlist/internal/ledger"
	"github.com/FocuswithJustin/lawlist/internal/logging"
	"github.com/FocuswithJustin/lawlist/internal/pipeline"
	"github.com/FocuswithJustin/lawlist/internal/validation"
)

const version = "0.1.0"

var (
	// errDiverged is returned when compared values differ. The report has
	// already been printed, so main only sets the exit status.
	errDiverged = errors.New("values differ")
	// errFailures is returned when some files of a batch failed.
	errFailures = errors.New("some files failed to convert")
)

// CLI defines the command-line interface for lawlist.
type CLI struct {
	// Global flags
	LogLevel  string          `name:"log-level" help:"Log level (debug, info, warn, error)" default:"info" enum:"debug,info,warn,error"`
	LogFormat string          `name:"log-format" help:"Log format (text, json)" default:"text" enum:"text,json"`
	Config    kong.ConfigFlag `help:"JSON file with flag defaults"`

	Convert ConvertCmd `cmd:"" help:"Convert an XML file or a directory of XML files"`
	Verify  VerifyCmd  `cmd:"" help:"Compare the values of two XML files"`
	History HistoryCmd `cmd:"" help:"List recorded batch runs"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// Env carries what commands need from the process.
type Env struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
}

// ConvertCmd converts a file or directory.
type ConvertCmd struct {
	Input     string `arg:"" help:"Input XML file or directory" type:"path"`
	Output    string `arg:"" help:"Output XML file or directory" type:"path"`
	Recursive bool   `short:"r" help:"Include subdirectories and mirror their layout"`
	Workers   int    `help:"Files converted in parallel" default:"${workers}"`
	Verify    bool   `help:"Compare the values of every output with its input"`
	Bundle    string `help:"Write a .tar.xz or .tar.gz archive of the output directory" type:"path"`
	Ledger    string `help:"Record the run in this SQLite database" type:"path"`
	Container string `help:"Element whose sentences are converted" default:"${container}"`
	Threshold int    `help:"Minimum number of sentences for a container to be converted" default:"${threshold}"`
	Window    int    `help:"Code points searched for the first whitespace" default:"${window}"`
}

func (c *ConvertCmd) options() pipeline.Options {
	return pipeline.Options{
		Transform: transform.Options{
			Container: c.Container,
			Threshold: c.Threshold,
			Window:    c.Window,
		},
		Verify: c.Verify,
	}
}

func (c *ConvertCmd) Run(env *Env) error {
	if err := validation.ValidatePath(c.Input); err != nil {
		return fmt.Errorf("invalid input path: %w", err)
	}
	if err := validation.ValidatePath(c.Output); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	if err := validation.ValidateSeparate(c.Input, c.Output); err != nil {
		return err
	}

	info, err := os.Stat(c.Input)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &lerrors.NotFoundError{Resource: "input", Path: c.Input, Err: err}
		}
		return lerrors.NewIO("stat", c.Input, err)
	}
	if info.IsDir() {
		return c.runBatch(env)
	}
	if c.Bundle != "" || c.Ledger != "" {
		return lerrors.NewValidation("input", "--bundle and --ledger need a directory input")
	}

	res, err := pipeline.ConvertFile(env.Ctx, c.Input, c.Output, c.options())
	if err != nil {
		return err
	}
	printConverted(env.Stdout, res)
	if v := res.Verification; v != nil && !v.Identical {
		return errDiverged
	}
	return nil
}

func (c *ConvertCmd) runBatch(env *Env) error {
	sum, err := batch.Run(env.Ctx, c.Input, c.Output, batch.Options{
		Recursive: c.Recursive,
		Workers:   c.Workers,
		Pipeline:  c.options(),
		Bundle:    c.Bundle,
	})
	if err != nil {
		return err
	}
	printSummary(env.Stdout, sum)

	if c.Ledger != "" {
		l, err := ledger.Open(env.Ctx, c.Ledger)
		if err != nil {
			return err
		}
		defer l.Close()
		if err := l.Record(env.Ctx, ledger.FromSummary(sum)); err != nil {
			return err
		}
	}

	switch {
	case sum.Failed > 0:
		return errFailures
	case sum.Diverged > 0:
		return errDiverged
	}
	return nil
}

// VerifyCmd compares the values of two files.
type VerifyCmd struct {
	File1   string `arg:"" help:"Original XML file" type:"path"`
	File2   string `arg:"" help:"Converted XML file" type:"path"`
	MaxDiff int    `name:"max-diff" help:"Items listed per report section" default:"10"`
	Output  string `short:"o" help:"Write the Markdown report to this file (.md is added when there is no extension)" type:"path"`
}

func (c *VerifyCmd) Run(env *Env) error {
	report, err := pipeline.VerifyFiles(env.Ctx, c.File1, c.File2)
	if err != nil {
		return err
	}
	report.MaxDiff = c.MaxDiff

	if c.Output == "" {
		if err := report.WriteMarkdown(env.Stdout); err != nil {
			return err
		}
	} else {
		path := reportPath(c.Output)
		var buf bytes.Buffer
		if err := report.WriteMarkdown(&buf); err != nil {
			return err
		}
		if err := fileutil.WriteFileAtomic(path, buf.Bytes(), 0644); err != nil {
			return lerrors.NewIO("write", path, err)
		}
		printVerdict(env.Stdout, report, path)
	}

	if !report.Result.Identical {
		return errDiverged
	}
	return nil
}

// reportPath adds the .md extension to paths that have none.
func reportPath(p string) string {
	if filepath.Ext(p) == "" {
		return p + ".md"
	}
	return p
}

// HistoryCmd lists recorded runs.
type HistoryCmd struct {
	Ledger string `required:"" help:"SQLite database written by convert --ledger" type:"path"`
	Limit  int    `help:"Maximum number of runs to list" default:"20"`
	RunID  string `name:"run" help:"List the files of this run instead"`
}

func (c *HistoryCmd) Run(env *Env) error {
	if _, err := os.Stat(c.Ledger); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &lerrors.NotFoundError{Resource: "ledger", Path: c.Ledger, Err: err}
		}
		return lerrors.NewIO("stat", c.Ledger, err)
	}
	l, err := ledger.Open(env.Ctx, c.Ledger)
	if err != nil {
		return err
	}
	defer l.Close()

	if c.RunID != "" {
		files, err := l.Files(env.Ctx, c.RunID)
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return lerrors.NewNotFound("run", c.RunID)
		}
		printRunFiles(env.Stdout, c.RunID, files)
		return nil
	}

	runs, err := l.Runs(env.Ctx, c.Limit)
	if err != nil {
		return err
	}
	printHistory(env.Stdout, runs)
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run(env *Env) error {
	fmt.Fprintf(env.Stdout, "lawlist version %s\n", version)
	return nil
}

func newParser(cli *CLI, stdout, stderr io.Writer, exit func(int)) (*kong.Kong, error) {
	defaults := transform.DefaultOptions()
	return kong.New(cli,
		kong.Name("lawlist"),
		kong.Description("Convert enumerated sentences of legal XML into List/Column structures"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Configuration(kong.JSON),
		kong.DefaultEnvars("LAWLIST"),
		kong.Writers(stdout, stderr),
		kong.Exit(exit),
		kong.Vars{
			"workers":   strconv.Itoa(runtime.NumCPU()),
			"container": defaults.Container,
			"threshold": strconv.Itoa(defaults.Threshold),
			"window":    strconv.Itoa(defaults.Window),
		},
	)
}

// run parses args and executes the selected command.
func run(ctx context.Context, args []string, stdout, stderr io.Writer, exit func(int)) error {
	var cli CLI
	parser, err := newParser(&cli, stdout, stderr, exit)
	if err != nil {
		return err
	}
	kctx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level, err := logging.ParseLevel(cli.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(cli.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format, stderr)

	return kctx.Run(&Env{Ctx: ctx, Stdout: stdout, Stderr: stderr})
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, os.Exit)
	if err == nil {
		return
	}
	if !errors.Is(err, errDiverged) {
		var pe *kong.ParseError
		if errors.As(err, &pe) && pe.Context != nil {
			pe.Context.PrintUsage(false)
		}
		printError(os.Stderr, err)
	}
	stop()
	os.Exit(1)
}
