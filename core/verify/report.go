package verify

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/FocuswithJustin/lawlist/core/encoding"
)

// DefaultMaxDiff is the number of differences listed per section.
const DefaultMaxDiff = 10

// valueWidth is the number of code points of a value shown in a report.
const valueWidth = 100

// Report is a comparison ready to be written as Markdown.
type Report struct {
	File1, File2 string
	Result       Result
	// Mode1 and Mode2 record how each file was read.
	Mode1, Mode2 Mode
	// MaxDiff limits the items listed per section. Zero or less uses
	// DefaultMaxDiff.
	MaxDiff   int
	Generated time.Time
}

// NewReport compares the values of a Pair and returns the report.
func NewReport(file1, file2 string, p Pair) *Report {
	return &Report{
		File1:     file1,
		File2:     file2,
		Result:    Compare(p.Values1, p.Values2),
		Mode1:     p.Mode1,
		Mode2:     p.Mode2,
		MaxDiff:   DefaultMaxDiff,
		Generated: time.Now(),
	}
}

// WriteMarkdown writes the report to w.
func (r *Report) WriteMarkdown(w io.Writer) error {
	bw := bufio.NewWriter(w)
	limit := r.MaxDiff
	if limit <= 0 {
		limit = DefaultMaxDiff
	}
	res := r.Result

	fmt.Fprintln(bw, "# XML Value Comparison Report")
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "- **File 1**: `%s` - %d values (%s)\n", base(r.File1), res.Total1, r.Mode1)
	fmt.Fprintf(bw, "- **File 2**: `%s` - %d values (%s)\n", base(r.File2), res.Total2, r.Mode2)
	fmt.Fprintf(bw, "- **Compared at**: %s\n", r.Generated.Format(time.DateTime))
	fmt.Fprintln(bw)

	if res.Identical {
		fmt.Fprintln(bw, "## ✅ Result: identical")
		fmt.Fprintln(bw)
		fmt.Fprintln(bw, "All values match.")
		return bw.Flush()
	}

	fmt.Fprintln(bw, "## ❌ Result: differences found")
	fmt.Fprintln(bw)

	writeValues(bw, "Missing in file 2", res.MissingIn2, limit)
	writeValues(bw, "Extra in file 2", res.ExtraIn2, limit)

	if n := len(res.OrderDifferences); n > 0 {
		fmt.Fprintf(bw, "### 🔄 Positional differences (%d)\n", n)
		fmt.Fprintln(bw)
		for _, d := range res.OrderDifferences[:min(n, limit)] {
			fmt.Fprintf(bw, "**Position %d:**\n", d.Position)
			fmt.Fprintf(bw, "- File 1: `%s`\n", quote(d.Value1))
			fmt.Fprintf(bw, "- File 2: `%s`\n", quote(d.Value2))
			fmt.Fprintln(bw)
		}
		if n > limit {
			fmt.Fprintf(bw, "**... %d more**\n", n-limit)
			fmt.Fprintln(bw)
		}
	}

	fmt.Fprintln(bw, "## 📋 Summary")
	fmt.Fprintln(bw)
	fmt.Fprintf(bw, "- Total differences: %d\n", res.DiffCount())
	fmt.Fprintf(bw, "- Listed per section: at most %d\n", limit)
	return bw.Flush()
}

func writeValues(w io.Writer, title string, values []string, limit int) {
	n := len(values)
	if n == 0 {
		return
	}
	fmt.Fprintf(w, "### 📝 %s (%d)\n", title, n)
	fmt.Fprintln(w)
	for i, v := range values[:min(n, limit)] {
		fmt.Fprintf(w, "%d. `%s`\n", i+1, quote(v))
	}
	if n > limit {
		fmt.Fprintf(w, "**... %d more**\n", n-limit)
	}
	fmt.Fprintln(w)
}

func quote(v string) string {
	return encoding.EscapeMarkdownCode(encoding.QuoteValue(v, valueWidth))
}

func base(path string) string {
	return encoding.EscapeMarkdownCode(filepath.Base(path))
}
