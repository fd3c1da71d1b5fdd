package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Colours follow a 256-colour terminal palette.
var (
	colorGreen142 = lipgloss.Color("142")
	colorGreen86  = lipgloss.Color("86")
	colorRed203   = lipgloss.Color("203")
	colorRed196   = lipgloss.Color("196")
	colorGray243  = lipgloss.Color("243")
	colorGray244  = lipgloss.Color("244")
	colorGray245  = lipgloss.Color("245")
	colorBlue75   = lipgloss.Color("75")
	colorYellow   = lipgloss.Color("229")
)

var (
	pathStyle          = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	hunkStyle          = lipgloss.NewStyle().Foreground(colorBlue75)
	subtleStyle        = lipgloss.NewStyle().Foreground(colorGray244)
	gutterStyle        = lipgloss.NewStyle().Foreground(colorGray243)
	contextStyle       = lipgloss.NewStyle().Foreground(colorGray245)
	addedStyle         = lipgloss.NewStyle().Foreground(colorGreen142)
	addedPrefixStyle   = lipgloss.NewStyle().Foreground(colorGreen86).Bold(true)
	removedStyle       = lipgloss.NewStyle().Foreground(colorRed203)
	removedPrefixStyle = lipgloss.NewStyle().Foreground(colorRed196).Bold(true)
	okStyle            = lipgloss.NewStyle().Foreground(colorGreen86).Bold(true)
	failStyle          = lipgloss.NewStyle().Foreground(colorRed196).Bold(true)
)

// CLIFormatter outputs diffs and results as human-readable text.
type CLIFormatter struct {
	Color   bool
	Verbose bool
}

// NewCLIFormatter creates a new CLIFormatter.
func NewCLIFormatter(color, verbose bool) *CLIFormatter {
	return &CLIFormatter{Color: color, Verbose: verbose}
}

// FormatDiff lists every hunk with 1-based line numbers for use with
// --hunk and --line. The first column numbers rows for --row.
func (f *CLIFormatter) FormatDiff(v DiffView) string {
	var b strings.Builder

	side := "unstaged"
	if v.Staged {
		side = "staged"
	}
	status := v.Status
	if status == "" {
		status = "unchanged"
	}
	fmt.Fprintf(&b, "%s %s\n", f.style(v.Path, pathStyle), f.style("("+status+", "+side+")", subtleStyle))

	if v.Binary {
		b.WriteString(f.style("  binary file, no hunks\n", subtleStyle))
		return b.String()
	}
	if len(v.Hunks) == 0 {
		b.WriteString(f.style("  no changes\n", subtleStyle))
		return b.String()
	}

	var hl *highlighter
	if f.Color {
		hl = newHighlighter(v.Path)
	}

	width := len(fmt.Sprint(maxLines(v)))
	rowWidth := len(fmt.Sprint(maxRow(v)))
	for _, h := range v.Hunks {
		fmt.Fprintf(&b, "\n%s  %s %s\n", f.rowGutter(rowWidth, h.Row),
			f.style(fmt.Sprintf("hunk %d", h.Index), pathStyle), f.style(h.Header, hunkStyle))
		for _, l := range h.Lines {
			gutter := f.style(fmt.Sprintf("%*d", width, l.Index), gutterStyle)
			fmt.Fprintf(&b, "%s  %s %s\n", f.rowGutter(rowWidth, l.Row), gutter, f.line(l, hl))
			if l.NoNewline && f.Verbose {
				fmt.Fprintf(&b, "%s  %*s %s\n", f.rowGutter(rowWidth, l.Row+1), width, "",
					f.style(`\ No newline at end of file`, subtleStyle))
			}
		}
	}
	return b.String()
}

// FormatResult reports what an operation did or would do.
func (f *CLIFormatter) FormatResult(r Result) string {
	var b strings.Builder

	target := fmt.Sprintf("%s of %s", r.Selection, r.Path)
	switch {
	case r.Error != "":
		fmt.Fprintf(&b, "%s %s %s failed: %s\n", f.style("✗", failStyle), r.Operation, target, r.Error)
		if r.Diagnostic != "" {
			for _, line := range strings.Split(strings.TrimRight(r.Diagnostic, "\n"), "\n") {
				fmt.Fprintf(&b, "    %s\n", f.style(line, subtleStyle))
			}
		}
	case r.DryRun:
		fmt.Fprintf(&b, "%s would %s %s (git apply %s)\n", f.style("dry run:", subtleStyle), r.Operation, target, r.ApplyMode)
	default:
		fmt.Fprintf(&b, "%s %s %s\n", f.style("✓", okStyle), r.Operation, target)
	}

	if r.Patch != "" && (r.DryRun || f.Verbose) {
		b.WriteString("\n")
		if f.Color {
			b.WriteString(highlightPatch(r.Patch))
		} else {
			b.WriteString(r.Patch)
		}
	}
	return b.String()
}

func (f *CLIFormatter) line(l LineView, hl *highlighter) string {
	var prefix, text string
	switch l.Kind {
	case "added":
		prefix, text = f.style("+", addedPrefixStyle), f.style(l.Text, addedStyle)
	case "removed":
		prefix, text = f.style("-", removedPrefixStyle), f.style(l.Text, removedStyle)
	default:
		prefix, text = " ", f.style(l.Text, contextStyle)
	}
	if hl != nil && l.Kind == "context" {
		text = hl.line(l.Text)
	}
	return prefix + text
}

func (f *CLIFormatter) style(s string, st lipgloss.Style) string {
	if !f.Color {
		return s
	}
	return st.Render(s)
}

func (f *CLIFormatter) rowGutter(width, row int) string {
	return f.style(fmt.Sprintf("%*d", width, row), subtleStyle)
}

// maxRow returns the last row of the rendered diff.
func maxRow(v DiffView) int {
	n := 1
	for _, h := range v.Hunks {
		n = h.Row
		if k := len(h.Lines); k > 0 {
			n = h.Lines[k-1].Row
			if h.Lines[k-1].NoNewline {
				n++
			}
		}
	}
	return n
}

func maxLines(v DiffView) int {
	n := 1
	for _, h := range v.Hunks {
		if len(h.Lines) > n {
			n = len(h.Lines)
		}
	}
	return n
}
