package batch

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	lerrors "github.com/FocuswithJustin/lawlist/core/errors"
	"github.com/FocuswithJustin/lawlist/internal/fileutil"
)

// Error report location inside the output directory.
const (
	ReportDir  = "validation_results"
	ReportFile = "conversion_errors.md"
)

// WriteErrorReport writes the Markdown error report of sum into its output
// directory and returns the report path.
func WriteErrorReport(sum *Summary) (string, error) {
	var sb strings.Builder
	if err := RenderErrorReport(&sb, sum); err != nil {
		return "", err
	}
	path := filepath.Join(sum.OutputDir, ReportDir, ReportFile)
	if err := fileutil.WriteFileAtomic(path, []byte(sb.String()), 0644); err != nil {
		return "", lerrors.NewIO("write", path, err)
	}
	return path, nil
}

// RenderErrorReport writes the run metadata and one section per failed file.
func RenderErrorReport(w io.Writer, sum *Summary) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "# XML Conversion Errors\n\n")
	fmt.Fprintf(bw, "## Run\n\n")
	fmt.Fprintf(bw, "- **Run ID**: %s\n", sum.RunID)
	fmt.Fprintf(bw, "- **Started**: %s\n", sum.Started.Format(time.DateTime))
	fmt.Fprintf(bw, "- **Input folder**: %s\n", sum.InputDir)
	fmt.Fprintf(bw, "- **Output folder**: %s\n", sum.OutputDir)
	fmt.Fprintf(bw, "- **Files processed**: %d\n", len(sum.Files))
	fmt.Fprintf(bw, "- **✅ Converted**: %d files\n", sum.Succeeded)
	fmt.Fprintf(bw, "- **❌ Failed**: %d files\n\n", sum.Failed)

	fmt.Fprintf(bw, "## Errors\n\n")
	for i, f := range sum.Failures() {
		fmt.Fprintf(bw, "### %d. %s\n\n", i+1, f.Rel)
		fmt.Fprintf(bw, "- **Type**: %s\n", f.Kind)
		fmt.Fprintf(bw, "- **Message**: %s\n", f.Err)
		if f.Line > 0 {
			column := "N/A"
			if f.Column > 0 {
				column = fmt.Sprint(f.Column)
			}
			fmt.Fprintf(bw, "- **Position**: line %d, column %s\n", f.Line, column)
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
