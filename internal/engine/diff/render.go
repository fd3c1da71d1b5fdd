package diff

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrRowOutOfRange is returned by Locate for rows outside the rendered diff.
var ErrRowOutOfRange = errors.New("row outside diff")

// Header formats the "@@ ... @@" line of the hunk without a terminator.
func (h Hunk) Header() string {
	return "@@ " + h.rangeString() + " @@" + h.Heading
}

func (h Hunk) rangeString() string {
	return "-" + formatRange(h.OldStart, h.OldCount, h.oldCountSet) +
		" +" + formatRange(h.NewStart, h.NewCount, h.newCountSet)
}

// formatRange writes start[,count]. A count of 1 is omitted unless the source
// header spelled it out.
func formatRange(start, count int, explicit bool) string {
	if count == 1 && !explicit {
		return strconv.Itoa(start)
	}
	return strconv.Itoa(start) + "," + strconv.Itoa(count)
}

// writeTo appends the hunk header and body to b.
func (h Hunk) writeTo(b *strings.Builder) {
	b.WriteString(h.Header())
	b.WriteByte('\n')
	for _, l := range h.Lines {
		b.WriteByte(l.Kind.Marker())
		b.WriteString(l.Text)
		if l.NoNewline {
			if !strings.HasSuffix(l.Text, "\n") {
				b.WriteByte('\n')
			}
			b.WriteString(NoNewlineMarker)
			b.WriteByte('\n')
		}
	}
}

// String renders the hunk as diff text.
func (h Hunk) String() string {
	var b strings.Builder
	h.writeTo(&b)
	return b.String()
}

// Render writes the file header and all hunks back out as diff text.
func (d *ParsedDiff) Render() string {
	var b strings.Builder
	for _, line := range d.Header {
		b.WriteString(line)
	}
	for _, h := range d.Hunks {
		h.writeTo(&b)
	}
	return b.String()
}

// Rows returns the number of lines Render produces.
func (d *ParsedDiff) Rows() int {
	n := len(d.Header)
	for _, h := range d.Hunks {
		n++
		for _, l := range h.Lines {
			n++
			if l.NoNewline {
				n++
			}
		}
	}
	return n
}

// Locate maps a 0-based row of the rendered diff to a hunk index and a body
// line index. Rows in the file header resolve to the first hunk, and hunk
// header rows resolve to line -1. A no-newline marker row resolves to the line
// it annotates.
func (d *ParsedDiff) Locate(row int) (hunk, line int, err error) {
	if row < 0 || len(d.Hunks) == 0 {
		return 0, 0, fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
	}
	if row < len(d.Header) {
		return 0, -1, nil
	}

	r := len(d.Header)
	for hi, h := range d.Hunks {
		if row == r {
			return hi, -1, nil
		}
		r++
		for li, l := range h.Lines {
			if row == r {
				return hi, li, nil
			}
			r++
			if l.NoNewline {
				if row == r {
					return hi, li, nil
				}
				r++
			}
		}
	}
	return 0, 0, fmt.Errorf("%w: %d", ErrRowOutOfRange, row)
}
