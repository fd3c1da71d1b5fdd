package patch

import "fmt"

// SelectionKind distinguishes whole-hunk from line-level selections.
type SelectionKind int

const (
	KindWholeHunk SelectionKind = iota
	KindSingleLine
	KindLineRange
)

// Selection identifies the part of a parsed diff an operation acts on.
// Indexes are 0-based: Hunk into ParsedDiff.Hunks, First/Last into Hunk.Lines.
type Selection struct {
	Kind  SelectionKind
	Hunk  int
	First int
	Last  int
}

// WholeHunk selects hunk h unchanged.
func WholeHunk(h int) Selection {
	return Selection{Kind: KindWholeHunk, Hunk: h}
}

// SingleLine selects one added or removed line of hunk h.
func SingleLine(h, line int) Selection {
	return Selection{Kind: KindSingleLine, Hunk: h, First: line, Last: line}
}

// LineRange selects the change lines between first and last, inclusive.
// Context lines inside the range are ignored.
func LineRange(h, first, last int) Selection {
	return Selection{Kind: KindLineRange, Hunk: h, First: first, Last: last}
}

// IsLines reports whether the selection is line-level.
func (s Selection) IsLines() bool {
	return s.Kind == KindSingleLine || s.Kind == KindLineRange
}

func (s Selection) String() string {
	switch s.Kind {
	case KindSingleLine:
		return fmt.Sprintf("hunk %d line %d", s.Hunk+1, s.First+1)
	case KindLineRange:
		return fmt.Sprintf("hunk %d lines %d-%d", s.Hunk+1, s.First+1, s.Last+1)
	default:
		return fmt.Sprintf("hunk %d", s.Hunk+1)
	}
}
