package commands

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/irahardianto/hunkstage/internal/engine/diff"
	"github.com/irahardianto/hunkstage/internal/engine/patch"
)

// SelectionFlags are the 1-based numbers given on the command line.
// Zero means unset.
type SelectionFlags struct {
	Hunk  int
	Line  int
	Lines string
	Row   int
}

// Resolve turns the flags into a 0-based selection over d.
func (f SelectionFlags) Resolve(d *diff.ParsedDiff) (patch.Selection, error) {
	if f.Row > 0 {
		if f.Hunk > 0 || f.Line > 0 || f.Lines != "" {
			return patch.Selection{}, fmt.Errorf("%w: --row cannot be combined with --hunk, --line or --lines", patch.ErrInvalidSelection)
		}
		hunk, line, err := d.Locate(f.Row - 1)
		if err != nil {
			return patch.Selection{}, fmt.Errorf("%w: %v", patch.ErrInvalidSelection, err)
		}
		if line < 0 {
			return patch.WholeHunk(hunk), nil
		}
		return patch.SingleLine(hunk, line), nil
	}

	if f.Hunk < 1 {
		return patch.Selection{}, fmt.Errorf("%w: --hunk or --row is required", patch.ErrInvalidSelection)
	}
	h := f.Hunk - 1

	switch {
	case f.Line > 0 && f.Lines != "":
		return patch.Selection{}, fmt.Errorf("%w: --line and --lines are mutually exclusive", patch.ErrInvalidSelection)
	case f.Line > 0:
		return patch.SingleLine(h, f.Line-1), nil
	case f.Lines != "":
		first, last, err := parseRange(f.Lines)
		if err != nil {
			return patch.Selection{}, err
		}
		return patch.LineRange(h, first-1, last-1), nil
	default:
		return patch.WholeHunk(h), nil
	}
}

// parseRange parses "A-B" or a single "A".
func parseRange(s string) (first, last int, err error) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found {
		hi = lo
	}
	first, err = strconv.Atoi(strings.TrimSpace(lo))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad --lines value %q", patch.ErrInvalidSelection, s)
	}
	last, err = strconv.Atoi(strings.TrimSpace(hi))
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad --lines value %q", patch.ErrInvalidSelection, s)
	}
	if first < 1 || last < first {
		return 0, 0, fmt.Errorf("%w: --lines %q must be A-B with 1 <= A <= B", patch.ErrInvalidSelection, s)
	}
	return first, last, nil
}
