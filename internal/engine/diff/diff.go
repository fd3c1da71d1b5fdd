// Package diff parses single-file unified diffs into hunks and typed lines.
package diff

import (
	"errors"
	"fmt"
)

// ErrMalformed is returned when diff text does not follow the unified-diff grammar.
var ErrMalformed = errors.New("malformed diff")

// LineKind classifies a hunk body line by its leading marker.
type LineKind int

const (
	Context LineKind = iota
	Added
	Removed
)

// Marker returns the one-character prefix used for the kind in diff text.
func (k LineKind) Marker() byte {
	switch k {
	case Added:
		return '+'
	case Removed:
		return '-'
	default:
		return ' '
	}
}

func (k LineKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	default:
		return "context"
	}
}

// NoNewlineMarker is the line git writes after a line that lacks a trailing newline.
const NoNewlineMarker = "\\ No newline at end of file"

// Line is one line of a hunk body.
type Line struct {
	Kind LineKind
	// Text is the content after the marker, including its line terminator.
	Text string
	// NoNewline is set when a NoNewlineMarker follows the line.
	NoNewline bool
}

// IsChange reports whether the line is an addition or a removal.
func (l Line) IsChange() bool {
	return l.Kind == Added || l.Kind == Removed
}

// Hunk is a contiguous change region of one file.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	// Heading is whatever followed the closing "@@", leading space included.
	Heading string
	Lines   []Line

	// oldCountSet and newCountSet record whether the source header spelled out
	// the count. Git omits a count of 1.
	oldCountSet bool
	newCountSet bool
}

// NewHunk builds a hunk whose header counts are tallied from lines.
func NewHunk(oldStart, newStart int, heading string, lines []Line) Hunk {
	h := Hunk{OldStart: oldStart, NewStart: newStart, Heading: heading, Lines: lines}
	h.OldCount, h.NewCount = h.Tally()
	return h
}

// Tally counts old-side (context+removed) and new-side (context+added) lines.
func (h Hunk) Tally() (oldCount, newCount int) {
	for _, l := range h.Lines {
		switch l.Kind {
		case Context:
			oldCount++
			newCount++
		case Removed:
			oldCount++
		case Added:
			newCount++
		}
	}
	return oldCount, newCount
}

// Changes returns the number of added and removed lines.
func (h Hunk) Changes() int {
	n := 0
	for _, l := range h.Lines {
		if l.IsChange() {
			n++
		}
	}
	return n
}

// Validate checks the header counts against the body.
func (h Hunk) Validate() error {
	oldCount, newCount := h.Tally()
	if oldCount != h.OldCount || newCount != h.NewCount {
		return fmt.Errorf("hunk %s: body has -%d +%d lines", h.rangeString(), oldCount, newCount)
	}
	return nil
}

// Derive returns a hunk with the same heading and header style as h but with
// the given starts and body. Counts are tallied from the body.
func (h Hunk) Derive(oldStart, newStart int, lines []Line) Hunk {
	d := h
	d.OldStart = oldStart
	d.NewStart = newStart
	d.Lines = lines
	d.OldCount, d.NewCount = d.Tally()
	return d
}

// FileStatus describes what the diff does to the file as a whole.
type FileStatus string

const (
	StatusModified FileStatus = "modified"
	StatusAdded    FileStatus = "added"
	StatusDeleted  FileStatus = "deleted"
	StatusRenamed  FileStatus = "renamed"
)

// DevNull is the path git uses for the missing side of an added or deleted file.
const DevNull = "/dev/null"

// ParsedDiff is the structured form of one file's unified diff.
type ParsedDiff struct {
	OldPath string
	NewPath string
	Status  FileStatus
	Binary  bool
	// Header holds the raw file-header lines with their terminators.
	Header []string
	Hunks  []Hunk
}

// Path returns the path the file has in the working tree, or its old path
// when the diff deletes it.
func (d *ParsedDiff) Path() string {
	if d.NewPath == "" || d.NewPath == DevNull {
		return d.OldPath
	}
	return d.NewPath
}

// Hunk returns the hunk at index i.
func (d *ParsedDiff) Hunk(i int) (Hunk, bool) {
	if i < 0 || i >= len(d.Hunks) {
		return Hunk{}, false
	}
	return d.Hunks[i], true
}
