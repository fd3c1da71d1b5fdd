// Package formatter handles formatting diffs and operation results for CLI and JSON output.
package formatter

import (
	"github.com/irahardianto/hunkstage/internal/engine/diff"
)

// LineView is one body line of a hunk. Index is 1-based. Row is the line's
// 1-based row in the rendered diff, as accepted by --row.
type LineView struct {
	Index     int    `json:"index"`
	Row       int    `json:"row"`
	Kind      string `json:"kind"`
	Text      string `json:"text"`
	NoNewline bool   `json:"no_newline,omitempty"`
}

// HunkView is one hunk of a diff. Index is 1-based and Row is the row of its
// "@@" line.
type HunkView struct {
	Index    int        `json:"index"`
	Row      int        `json:"row"`
	Header   string     `json:"header"`
	OldStart int        `json:"old_start"`
	OldCount int        `json:"old_count"`
	NewStart int        `json:"new_start"`
	NewCount int        `json:"new_count"`
	Lines    []LineView `json:"lines"`
}

// DiffView is the presentation of one file's diff.
type DiffView struct {
	Path    string     `json:"path"`
	OldPath string     `json:"old_path"`
	NewPath string     `json:"new_path"`
	Status  string     `json:"status"`
	Staged  bool       `json:"staged"`
	Binary  bool       `json:"binary,omitempty"`
	Hunks   []HunkView `json:"hunks"`
}

// NewDiffView converts a parsed diff into its presentation form. A nil diff
// yields a view of path with no hunks.
func NewDiffView(path string, d *diff.ParsedDiff, staged bool) DiffView {
	v := DiffView{Path: path, Staged: staged, Hunks: []HunkView{}}
	if d == nil {
		return v
	}

	v.Path = d.Path()
	v.OldPath = d.OldPath
	v.NewPath = d.NewPath
	v.Status = string(d.Status)
	v.Binary = d.Binary

	row := len(d.Header)
	for hi, h := range d.Hunks {
		row++
		hv := HunkView{
			Index:    hi + 1,
			Row:      row,
			Header:   h.Header(),
			OldStart: h.OldStart,
			OldCount: h.OldCount,
			NewStart: h.NewStart,
			NewCount: h.NewCount,
			Lines:    make([]LineView, 0, len(h.Lines)),
		}
		for li, l := range h.Lines {
			row++
			hv.Lines = append(hv.Lines, LineView{
				Index:     li + 1,
				Row:       row,
				Kind:      l.Kind.String(),
				Text:      trimEOL(l.Text),
				NoNewline: l.NoNewline,
			})
			if l.NoNewline {
				row++
			}
		}
		v.Hunks = append(v.Hunks, hv)
	}
	return v
}

// Result is the outcome of one stage, unstage or revert invocation.
type Result struct {
	Operation string `json:"operation"`
	Path      string `json:"path"`
	Selection string `json:"selection"`
	ApplyMode string `json:"apply_mode"`
	DryRun    bool   `json:"dry_run,omitempty"`
	Applied   bool   `json:"applied"`
	Patch     string `json:"patch,omitempty"`
	Error     string `json:"error,omitempty"`
	// Diagnostic is git's stderr when it rejected the patch.
	Diagnostic string `json:"diagnostic,omitempty"`
}

// Formatter formats diffs and results into a human-readable or machine-readable string.
type Formatter interface {
	FormatDiff(view DiffView) string
	FormatResult(result Result) string
}

func trimEOL(s string) string {
	if n := len(s); n > 0 && s[n-1] == '\n' {
		s = s[:n-1]
		if n := len(s); n > 0 && s[n-1] == '\r' {
			s = s[:n-1]
		}
	}
	return s
}
