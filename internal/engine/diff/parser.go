package diff

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

const hunkPrefix = "@@ -"

// Parse parses the unified diff of a single file.
// Line terminators are preserved in Line.Text and Header. The text must
// render back byte for byte; anything else returns an error wrapping
// ErrMalformed and no partial result.
func Parse(text string) (*ParsedDiff, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: empty input", ErrMalformed)
	}

	files, _, err := gitdiff.Parse(strings.NewReader(text))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	switch len(files) {
	case 0:
		return nil, fmt.Errorf("%w: no file header found", ErrMalformed)
	case 1:
	default:
		return nil, fmt.Errorf("%w: more than one file in diff", ErrMalformed)
	}
	f := files[0]

	header, hunkHeaders := splitRaw(text)
	if len(hunkHeaders) != len(f.TextFragments) {
		return nil, fmt.Errorf("%w: found %d hunk headers but %d hunks", ErrMalformed, len(hunkHeaders), len(f.TextFragments))
	}

	d := newParsedDiff(f)
	d.Header = header
	for i, frag := range f.TextFragments {
		h, err := newHunk(frag, hunkHeaders[i])
		if err != nil {
			return nil, err
		}
		d.Hunks = append(d.Hunks, h)
	}

	if d.Render() != text {
		return nil, fmt.Errorf("%w: unexpected content outside hunks", ErrMalformed)
	}
	return d, nil
}

// newParsedDiff records paths and status from a parsed file header.
func newParsedDiff(f *gitdiff.File) *ParsedDiff {
	d := &ParsedDiff{
		OldPath: f.OldName,
		NewPath: f.NewName,
		Status:  StatusModified,
		Binary:  f.IsBinary,
	}
	switch {
	case f.IsNew:
		d.Status = StatusAdded
		d.OldPath = DevNull
	case f.IsDelete:
		d.Status = StatusDeleted
		d.NewPath = DevNull
	case f.IsRename:
		d.Status = StatusRenamed
	case f.IsCopy:
		d.Status = StatusAdded
	}
	return d
}

// newHunk converts a fragment, taking the count style and heading from the
// raw "@@" line so the header renders unchanged.
func newHunk(frag *gitdiff.TextFragment, raw string) (Hunk, error) {
	if err := frag.Validate(); err != nil {
		return Hunk{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	oldRange, newRange, heading, ok := splitHunkHeader(raw)
	if !ok {
		return Hunk{}, fmt.Errorf("%w: invalid hunk header %q", ErrMalformed, raw)
	}

	h := Hunk{
		OldStart:    int(frag.OldPosition),
		OldCount:    int(frag.OldLines),
		NewStart:    int(frag.NewPosition),
		NewCount:    int(frag.NewLines),
		Heading:     heading,
		oldCountSet: strings.Contains(oldRange, ","),
		newCountSet: strings.Contains(newRange, ","),
	}

	h.Lines = make([]Line, 0, len(frag.Lines))
	for _, fl := range frag.Lines {
		l := Line{Text: fl.Line}
		switch fl.Op {
		case gitdiff.OpAdd:
			l.Kind = Added
		case gitdiff.OpDelete:
			l.Kind = Removed
		default:
			l.Kind = Context
		}
		// gitdiff strips the newline from a line followed by the marker.
		if !strings.HasSuffix(l.Text, "\n") {
			l.Text += "\n"
			l.NoNewline = true
		}
		h.Lines = append(h.Lines, l)
	}

	if err := h.Validate(); err != nil {
		return Hunk{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return h, nil
}

// splitRaw returns the raw file-header lines and the "@@" line of each hunk,
// the latter without terminators.
func splitRaw(text string) (header, hunkHeaders []string) {
	inHunks := false
	for _, line := range strings.SplitAfter(text, "\n") {
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, hunkPrefix) {
			inHunks = true
			hunkHeaders = append(hunkHeaders, strings.TrimRight(line, "\r\n"))
			continue
		}
		if !inHunks {
			header = append(header, line)
		}
	}
	return header, hunkHeaders
}

// splitHunkHeader splits "@@ -a[,b] +c[,d] @@[heading]" into its ranges and
// heading.
func splitHunkHeader(line string) (oldRange, newRange, heading string, ok bool) {
	rest, found := strings.CutPrefix(line, "@@ ")
	if !found {
		return "", "", "", false
	}
	ranges, heading, found := strings.Cut(rest, " @@")
	if !found {
		return "", "", "", false
	}
	oldRange, newRange, found = strings.Cut(ranges, " +")
	if !found {
		return "", "", "", false
	}
	return oldRange, newRange, heading, true
}
