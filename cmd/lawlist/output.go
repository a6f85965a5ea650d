package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	lerrors "github.com/FocuswithJustin/lawlist/core/errors"
	"github.com/FocuswithJustin/lawlist/core/verify"
	"github.com/FocuswithJustin/lawlist/internal/batch"
	"github.com/FocuswithJustin/lawlist/internal/ledger"
	"github.com/FocuswithJustin/lawlist/internal/pipeline"
)

var (
	// titleStyle for bold headers
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("33"))

	// dimStyle for muted metadata text
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	// successStyle for success indicators
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	// warnStyle for divergences
	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("220"))

	// errorStyle for error indicators
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	// boxStyle for the batch summary
	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("33")).
			Padding(0, 1)

	headerCellStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)

func printConverted(w io.Writer, res *pipeline.Result) {
	fmt.Fprintf(w, "%s %s -> %s\n", successStyle.Render("✓"), res.Input, res.Output)
	fmt.Fprintf(w, "  %s %d  %s %d  %s %d\n",
		dimStyle.Render("containers:"), res.Stats.Transformed,
		dimStyle.Render("sentences:"), res.Stats.Sentences,
		dimStyle.Render("splits:"), res.Stats.Splits)
	fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("blake3:"), res.OutputHash)
	if v := res.Verification; v != nil {
		fmt.Fprintf(w, "  %s\n", verification(v))
	}
}

func verification(v *pipeline.Verification) string {
	mode := ""
	if v.Fallback {
		mode = " (line fallback)"
	}
	if v.Identical {
		return successStyle.Render("values identical" + mode)
	}
	return warnStyle.Render(fmt.Sprintf("values differ: %d differences%s", v.Differences, mode))
}

func printSummary(w io.Writer, sum *batch.Summary) {
	for _, f := range sum.Files {
		if f.OK() {
			line := fmt.Sprintf("%s %s", successStyle.Render("✓"), f.Rel)
			if v := f.Result.Verification; v != nil && !v.Identical {
				line += "  " + verification(v)
			}
			fmt.Fprintln(w, line)
			continue
		}
		fmt.Fprintf(w, "%s %s  %s\n", errorStyle.Render("✗"), f.Rel, dimStyle.Render(f.Err.Error()))
	}

	content := fmt.Sprintf("%s %s\n%s %d\n%s %s\n%s %s",
		dimStyle.Render("Run:"), sum.RunID,
		dimStyle.Render("Files:"), len(sum.Files),
		dimStyle.Render("Converted:"), successStyle.Render(strconv.Itoa(sum.Succeeded)),
		dimStyle.Render("Failed:"), failedCount(sum.Failed),
	)
	if sum.Diverged > 0 {
		content += fmt.Sprintf("\n%s %s", dimStyle.Render("Diverged:"), warnStyle.Render(strconv.Itoa(sum.Diverged)))
	}
	content += fmt.Sprintf("\n%s %d", dimStyle.Render("Splits:"), sum.Stats.Splits)
	if sum.ReportPath != "" {
		content += fmt.Sprintf("\n%s %s", dimStyle.Render("Errors:"), sum.ReportPath)
	}
	if sum.BundlePath != "" {
		content += fmt.Sprintf("\n%s %s (%d files)", dimStyle.Render("Bundle:"), sum.BundlePath, sum.BundleEntries)
	}
	fmt.Fprintln(w, boxStyle.Render(content))
}

func failedCount(n int) string {
	if n == 0 {
		return successStyle.Render("0")
	}
	return errorStyle.Render(strconv.Itoa(n))
}

func printVerdict(w io.Writer, r *verify.Report, path string) {
	if r.Result.Identical {
		fmt.Fprintf(w, "%s identical (%d values)\n", successStyle.Render("✓"), r.Result.Total1)
	} else {
		fmt.Fprintf(w, "%s %d differences\n", errorStyle.Render("✗"), r.Result.DiffCount())
	}
	fmt.Fprintf(w, "  %s %s\n", dimStyle.Render("report:"), path)
}

func printHistory(w io.Writer, runs []ledger.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No runs recorded."))
		return
	}
	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.Started.Local().Format(time.DateTime),
			r.InputDir,
			strconv.Itoa(r.Total),
			strconv.Itoa(r.Succeeded),
			strconv.Itoa(r.Failed),
			strconv.Itoa(r.Diverged),
			r.Duration.Round(time.Millisecond).String(),
		})
	}
	fmt.Fprintln(w, titleStyle.Render("Recorded runs"))
	fmt.Fprintln(w, renderTable([]string{"Run", "Started", "Input", "Files", "OK", "Failed", "Diverged", "Duration"}, rows))
}

func printRunFiles(w io.Writer, runID string, files []ledger.File) {
	rows := make([][]string, 0, len(files))
	for _, f := range files {
		status := "ok"
		if f.Kind != "" {
			status = f.Kind
		}
		rows = append(rows, []string{f.Input, status, shortHash(f.OutputHash)})
	}
	fmt.Fprintln(w, titleStyle.Render("Run "+runID))
	fmt.Fprintln(w, renderTable([]string{"File", "Status", "Output BLAKE3"}, rows))
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerCellStyle
			}
			return cellStyle
		}).
		String()
}

func shortHash(h string) string {
	if len(h) > 16 {
		return h[:16]
	}
	return h
}

func printError(w io.Writer, err error) {
	msg := err.Error()
	if kind := lerrors.Kind(err); kind != lerrors.KindInternal {
		msg = kind + ": " + msg
	}
	fmt.Fprintln(w, errorStyle.Render("lawlist: "+msg))
}
