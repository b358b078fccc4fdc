package ui

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"

	"simrun/internal/domain"
)

// Formatter formats and displays output
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a new Formatter writing to stdout
func NewFormatter() *Formatter {
	return &Formatter{out: color.Output}
}

// NewFormatterTo creates a Formatter writing to w.
func NewFormatterTo(w io.Writer) *Formatter {
	return &Formatter{out: w}
}

var (
	cyan   = color.New(color.FgCyan)
	green  = color.New(color.FgGreen)
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	white  = color.New(color.FgWhite)
	hiRed  = color.New(color.FgHiRed, color.Bold)
)

// PrintBanner prints a boxed title.
func (f *Formatter) PrintBanner(title string) {
	const width = 60
	pad := width - len([]rune(title))
	if pad < 0 {
		pad = 0
	}
	left := pad / 2
	fmt.Fprintln(f.out)
	cyan.Fprintln(f.out, "╔"+strings.Repeat("═", width)+"╗")
	cyan.Fprintln(f.out, "║"+strings.Repeat(" ", left)+title+strings.Repeat(" ", pad-left)+"║")
	cyan.Fprintln(f.out, "╚"+strings.Repeat("═", width)+"╝")
}

// PrintCatalog prints the valid names of a kind ("test", "build", "group")
// as a tree.
func (f *Formatter) PrintCatalog(kind string, names []string) {
	green.Fprintf(f.out, "Available %ss:\n", kind)
	if len(names) == 0 {
		red.Fprintln(f.out, "└── (none)")
		return
	}
	for i, name := range names {
		cyan.Fprintf(f.out, "%s%s\n", branch(i, len(names)), name)
	}
}

// PrintUnknown prints the catalog of the kind that was not found and the
// error itself.
func (f *Formatter) PrintUnknown(err *domain.UnknownNameError) {
	f.PrintCatalog(err.Kind, err.Available)
	hiRed.Fprintf(f.out, "%s: %s is unknown\n", err.Kind, err.Name)
}

// PrintTestList prints testcases, optionally with the UVM test classes each
// declares. Tests listed in failed (from the last run) are marked with [F].
func (f *Formatter) PrintTestList(names []string, classes map[string][]string, failed map[string]bool) {
	green.Fprintf(f.out, "Found %d testcase(s):\n", len(names))
	for i, name := range names {
		marker := ""
		if failed[name] {
			marker = " " + red.Sprint("[F]")
		}
		last := i == len(names)-1
		cyan.Fprintf(f.out, "%s%s%s\n", branch(i, len(names)), name, marker)
		if classes == nil {
			continue
		}
		indent := "│   "
		if last {
			indent = "    "
		}
		list := classes[name]
		if len(list) == 0 {
			fmt.Fprintf(f.out, "%s└── %s\n", indent, red.Sprint("(no test classes found)"))
			continue
		}
		for j, c := range list {
			fmt.Fprintf(f.out, "%s%s%s\n", indent, branch(j, len(list)), yellow.Sprint(c))
		}
	}
}

// PrintCompileFailure points at the compile log.
func (f *Formatter) PrintCompileFailure(err *domain.CompileError) {
	hiRed.Fprintln(f.out, "✗ Compile failed")
	fmt.Fprintf(f.out, "  see %s\n", err.LogPath)
}

// PrintFailures prints failing instances grouped by bucket and test, with
// their classified error lines.
func (f *Formatter) PrintFailures(report *domain.RunReport) {
	failures := report.Failures()
	if len(failures) == 0 {
		return
	}

	byBucket := make(map[string][]domain.InstanceResult)
	for _, r := range failures {
		byBucket[r.Bucket] = append(byBucket[r.Bucket], r)
	}
	buckets := make([]string, 0, len(byBucket))
	for b := range byBucket {
		buckets = append(buckets, b)
	}
	sort.Strings(buckets)

	for i, b := range buckets {
		indent := ""
		if b != "" {
			cyan.Fprintf(f.out, "%s%s\n", branch(i, len(buckets)), b)
			indent = "│   "
			if i == len(buckets)-1 {
				indent = "    "
			}
		}
		results := byBucket[b]
		for j, r := range results {
			yellow.Fprintf(f.out, "%s%s%s seed %d [%s]\n", indent, branch(j, len(results)), r.Test, r.Seed, r.Outcome.Status)
			inner := indent + "│   "
			if j == len(results)-1 {
				inner = indent + "    "
			}
			if r.Error != "" {
				red.Fprintf(f.out, "%s%s\n", inner, r.Error)
			}
			for _, l := range r.Outcome.Errors {
				red.Fprintf(f.out, "%s%d: %s\n", inner, l.Number, l.Text)
			}
		}
	}
}

// PrintResult prints the closing line of a run.
func (f *Formatter) PrintResult(report *domain.RunReport) {
	m := report.Meta
	fmt.Fprintln(f.out)
	if m.FailedInstances == 0 {
		green.Fprintf(f.out, "✓ All %d instance(s) passed", m.TotalInstances)
		if m.WarnInstances > 0 {
			yellow.Fprintf(f.out, " (%d with warnings)", m.WarnInstances)
		}
		fmt.Fprintln(f.out)
		return
	}
	red.Fprintf(f.out, "✗ %d of %d instance(s) failed\n", m.FailedInstances, m.TotalInstances)
	fmt.Fprintln(f.out)
	f.PrintFailures(report)
}

// PrintReportPath tells where the report was written.
func (f *Formatter) PrintReportPath(path string) {
	white.Fprintf(f.out, "Report: %s\n", path)
}

func branch(i, n int) string {
	if i == n-1 {
		return "└── "
	}
	return "├── "
}

