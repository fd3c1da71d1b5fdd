// Package patch builds minimal, standalone patches that carry exactly one
// selected hunk or a selected set of lines from a parsed diff.
package patch

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/irahardianto/hunkstage/internal/engine/diff"
)

var (
	// ErrInvalidSelection is returned when a selection does not name change lines
	// the mode can act on.
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrInvariantViolation is returned when a built fragment fails its own
	// consistency checks.
	ErrInvariantViolation = errors.New("internal invariant violation")
)

// Mode is the purpose a fragment is built for.
type Mode int

const (
	Stage Mode = iota
	Unstage
	RevertHunk
	RevertLine
)

func (m Mode) String() string {
	switch m {
	case Stage:
		return "stage"
	case Unstage:
		return "unstage"
	case RevertHunk:
		return "revert-hunk"
	case RevertLine:
		return "revert-line"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// Reversed reports whether fragments of this mode are applied in reverse.
// A reverse application matches the new side of the hunk against its target;
// a forward one matches the old side.
func (m Mode) Reversed() bool {
	return m != Stage
}

// Fragment is a complete patch for one file carrying one hunk.
type Fragment struct {
	Mode      Mode
	Selection Selection
	// Header is the file header of the source diff, or a plain modification
	// header when the hunk no longer creates or deletes the whole file.
	Header []string
	Hunk   diff.Hunk
	Text   string
}

// Build produces the fragment for sel in d. Whole-hunk selections copy the
// hunk unchanged. Line selections keep the selected change lines and every
// context line. Other change lines are kept as context when the target holds
// them and dropped when it does not. Header counts are recomputed from the
// resulting body.
func Build(d *diff.ParsedDiff, sel Selection, mode Mode) (*Fragment, error) {
	h, err := checkSelection(d, sel, mode)
	if err != nil {
		return nil, err
	}

	out := h
	if sel.IsLines() {
		out, err = reduce(h, sel, mode.Reversed())
		if err != nil {
			return nil, err
		}
	}

	header := headerFor(d, out)
	frag := &Fragment{
		Mode:      mode,
		Selection: sel,
		Header:    header,
		Hunk:      out,
		Text:      render(header, out),
	}
	if err := verify(frag); err != nil {
		return nil, err
	}
	return frag, nil
}

// headerFor returns the header for a fragment carrying h. A new-file header
// only fits a hunk with an empty old side and a deleted-file header only one
// with an empty new side. Otherwise git would reject the fragment, so the
// file is described as modified in place.
func headerFor(d *diff.ParsedDiff, h diff.Hunk) []string {
	switch {
	case d.Status == diff.StatusAdded && h.OldCount > 0,
		d.Status == diff.StatusDeleted && h.NewCount > 0:
		p := d.Path()
		oldName, newName := quotePath("a/"+p), quotePath("b/"+p)
		return []string{
			"diff --git " + oldName + " " + newName + "\n",
			"--- " + oldName + "\n",
			"+++ " + newName + "\n",
		}
	}
	return d.Header
}

// quotePath applies git's quoting to names with special characters.
func quotePath(name string) string {
	for _, r := range name {
		if r == '"' || r == '\\' || r < ' ' || r == 0x7f {
			return strconv.Quote(name)
		}
	}
	return name
}

// checkSelection returns the selected hunk or an ErrInvalidSelection error.
func checkSelection(d *diff.ParsedDiff, sel Selection, mode Mode) (diff.Hunk, error) {
	if d == nil {
		return diff.Hunk{}, fmt.Errorf("%w: no diff", ErrInvalidSelection)
	}
	h, ok := d.Hunk(sel.Hunk)
	if !ok {
		return diff.Hunk{}, fmt.Errorf("%w: hunk %d out of range (diff has %d)", ErrInvalidSelection, sel.Hunk+1, len(d.Hunks))
	}
	if h.Changes() == 0 {
		return diff.Hunk{}, fmt.Errorf("%w: hunk %d has no changes", ErrInvalidSelection, sel.Hunk+1)
	}

	switch {
	case mode == RevertHunk && sel.IsLines():
		return diff.Hunk{}, fmt.Errorf("%w: %s needs a whole-hunk selection", ErrInvalidSelection, mode)
	case mode == RevertLine && !sel.IsLines():
		return diff.Hunk{}, fmt.Errorf("%w: %s needs a line selection", ErrInvalidSelection, mode)
	}

	switch sel.Kind {
	case KindWholeHunk:
		return h, nil
	case KindSingleLine:
		if sel.First < 0 || sel.First >= len(h.Lines) {
			return diff.Hunk{}, fmt.Errorf("%w: line %d out of range (hunk %d has %d)", ErrInvalidSelection, sel.First+1, sel.Hunk+1, len(h.Lines))
		}
		if !h.Lines[sel.First].IsChange() {
			return diff.Hunk{}, fmt.Errorf("%w: %s is a context line", ErrInvalidSelection, sel)
		}
		return h, nil
	case KindLineRange:
		if sel.First < 0 || sel.Last >= len(h.Lines) || sel.First > sel.Last {
			return diff.Hunk{}, fmt.Errorf("%w: lines %d-%d out of range (hunk %d has %d)", ErrInvalidSelection, sel.First+1, sel.Last+1, sel.Hunk+1, len(h.Lines))
		}
		for i := sel.First; i <= sel.Last; i++ {
			if h.Lines[i].IsChange() {
				return h, nil
			}
		}
		return diff.Hunk{}, fmt.Errorf("%w: %s has no added or removed lines", ErrInvalidSelection, sel)
	default:
		return diff.Hunk{}, fmt.Errorf("%w: unknown selection kind %d", ErrInvalidSelection, sel.Kind)
	}
}

// reduce rebuilds h so that only the selected change lines remain changes.
func reduce(h diff.Hunk, sel Selection, reversed bool) (diff.Hunk, error) {
	// The target of a reverse application holds added lines; a forward one
	// holds removed lines.
	held := diff.Removed
	if reversed {
		held = diff.Added
	}

	lines := make([]diff.Line, 0, len(h.Lines))
	for i, l := range h.Lines {
		switch {
		case l.Kind == diff.Context:
			lines = append(lines, l)
		case i >= sel.First && i <= sel.Last:
			lines = append(lines, l)
		case l.Kind == held:
			l.Kind = diff.Context
			lines = append(lines, l)
		}
	}

	if err := checkNoNewline(lines); err != nil {
		return diff.Hunk{}, fmt.Errorf("%w: %s: %v", ErrInvalidSelection, sel, err)
	}

	out := h.Derive(h.OldStart, h.NewStart, lines)
	if out.Changes() == 0 {
		return diff.Hunk{}, fmt.Errorf("%w: %s leaves no changes", ErrInvalidSelection, sel)
	}
	out.OldStart = adjustStart(h.OldStart, h.OldCount, out.OldCount)
	out.NewStart = adjustStart(h.NewStart, h.NewCount, out.NewCount)
	return out, nil
}

// adjustStart keeps the unified-diff convention that an empty range names the
// line before it while a non-empty range names its first line.
func adjustStart(start, before, after int) int {
	switch {
	case before > 0 && after == 0:
		if start > 0 {
			return start - 1
		}
	case before == 0 && after > 0:
		return start + 1
	}
	return start
}

// checkNoNewline rejects bodies where a line without a trailing newline is
// followed by further lines on the same side.
func checkNoNewline(lines []diff.Line) error {
	oldDone, newDone := false, false
	for _, l := range lines {
		onOld := l.Kind != diff.Added
		onNew := l.Kind != diff.Removed
		if (onOld && oldDone) || (onNew && newDone) {
			return errors.New("a line without trailing newline would not be last")
		}
		if l.NoNewline {
			oldDone = oldDone || onOld
			newDone = newDone || onNew
		}
	}
	return nil
}

func render(header []string, h diff.Hunk) string {
	var b strings.Builder
	for _, line := range header {
		b.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	b.WriteString(h.String())
	if !strings.HasSuffix(b.String(), "\n") {
		b.WriteByte('\n')
	}
	return b.String()
}

// verify re-checks the fragment's hunk against its body and against a re-parse
// of its rendered text.
func verify(frag *Fragment) error {
	if err := frag.Hunk.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvariantViolation, err)
	}

	reparsed, err := diff.Parse("--- a/fragment\n+++ b/fragment\n" + frag.Hunk.String())
	if err != nil {
		return fmt.Errorf("%w: fragment does not re-parse: %v", ErrInvariantViolation, err)
	}
	if len(reparsed.Hunks) != 1 {
		return fmt.Errorf("%w: fragment re-parses into %d hunks", ErrInvariantViolation, len(reparsed.Hunks))
	}
	got := reparsed.Hunks[0]
	want := frag.Hunk
	if got.OldStart != want.OldStart || got.OldCount != want.OldCount ||
		got.NewStart != want.NewStart || got.NewCount != want.NewCount ||
		len(got.Lines) != len(want.Lines) {
		return fmt.Errorf("%w: fragment header %q re-parses as %q", ErrInvariantViolation, want.Header(), got.Header())
	}
	return nil
}
