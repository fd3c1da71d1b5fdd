package patch

import (
	"errors"
	"strings"
	"testing"

	"github.com/irahardianto/hunkstage/internal/engine/diff"
)

const fileHeader = "diff --git a/f.txt b/f.txt\nindex 1111111..2222222 100644\n--- a/f.txt\n+++ b/f.txt\n"

func mustParse(t *testing.T, text string) *diff.ParsedDiff {
	t.Helper()
	d, err := diff.Parse(text)
	if err != nil {
		t.Fatalf("parsing fixture: %v", err)
	}
	return d
}

// bodyOf returns the fragment text after the file header.
func bodyOf(t *testing.T, frag *Fragment) string {
	t.Helper()
	if !strings.HasPrefix(frag.Text, fileHeader) {
		t.Fatalf("fragment does not start with the file header:\n%s", frag.Text)
	}
	return strings.TrimPrefix(frag.Text, fileHeader)
}

func TestBuild_SingleAddedLineMatchesWholeHunk(t *testing.T) {
	d := mustParse(t, fileHeader+"@@ -10,3 +10,4 @@\n context1\n+added1\n context2\n context3\n")

	line, err := Build(d, SingleLine(0, 1), Stage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	whole, err := Build(d, WholeHunk(0), Stage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := line.Hunk.Header(); got != "@@ -10,3 +10,4 @@" {
		t.Errorf("expected header '@@ -10,3 +10,4 @@', got %q", got)
	}
	if line.Text != whole.Text {
		t.Errorf("expected single-line and whole-hunk fragments to be identical:\nline:\n%s\nwhole:\n%s", line.Text, whole.Text)
	}
}

func TestBuild_SingleRemovedLineStage(t *testing.T) {
	d := mustParse(t, fileHeader+"@@ -5,2 +5,1 @@\n-removed1\n context1\n")

	frag, err := Build(d, SingleLine(0, 0), Stage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := frag.Hunk.Header(); got != "@@ -5,2 +5,1 @@" {
		t.Errorf("expected header '@@ -5,2 +5,1 @@', got %q", got)
	}
	if frag.Mode.Reversed() {
		t.Error("expected stage fragments to be applied forward")
	}
}

func TestBuild_LineSelectionByMode(t *testing.T) {
	const mixed = fileHeader + "@@ -1,3 +1,3 @@\n-a\n-b\n+c\n+d\n e\n"

	tests := []struct {
		name string
		sel  Selection
		mode Mode
		want string
	}{
		{
			name: "stage added keeps removed as context",
			sel:  SingleLine(0, 3),
			mode: Stage,
			want: "@@ -1,3 +1,4 @@\n a\n b\n+d\n e\n",
		},
		{
			name: "stage removed drops added",
			sel:  SingleLine(0, 0),
			mode: Stage,
			want: "@@ -1,3 +1,2 @@\n-a\n b\n e\n",
		},
		{
			name: "unstage removed keeps added as context",
			sel:  SingleLine(0, 0),
			mode: Unstage,
			want: "@@ -1,4 +1,3 @@\n-a\n c\n d\n e\n",
		},
		{
			name: "unstage added drops removed",
			sel:  SingleLine(0, 2),
			mode: Unstage,
			want: "@@ -1,2 +1,3 @@\n+c\n d\n e\n",
		},
		{
			name: "revert added line",
			sel:  SingleLine(0, 2),
			mode: RevertLine,
			want: "@@ -1,2 +1,3 @@\n+c\n d\n e\n",
		},
		{
			name: "revert removed line",
			sel:  SingleLine(0, 1),
			mode: RevertLine,
			want: "@@ -1,4 +1,3 @@\n-b\n c\n d\n e\n",
		},
		{
			name: "stage range of removed lines",
			sel:  LineRange(0, 0, 1),
			mode: Stage,
			want: "@@ -1,3 +1,1 @@\n-a\n-b\n e\n",
		},
		{
			name: "unstage range spanning kinds",
			sel:  LineRange(0, 1, 2),
			mode: Unstage,
			want: "@@ -1,3 +1,3 @@\n-b\n+c\n d\n e\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := Build(mustParse(t, mixed), tt.sel, tt.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := bodyOf(t, frag); got != tt.want {
				t.Errorf("unexpected fragment body:\nwant:\n%s\ngot:\n%s", tt.want, got)
			}
		})
	}
}

func TestBuild_WholeHunkIsUnchanged(t *testing.T) {
	text := fileHeader + "@@ -1,2 +1,2 @@ heading\n a\n-b\n+c\n@@ -20,2 +20,3 @@\n x\n+y\n z\n"
	d := mustParse(t, text)

	for _, mode := range []Mode{Stage, Unstage, RevertHunk} {
		frag, err := Build(d, WholeHunk(1), mode)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", mode, err)
		}
		want := "@@ -20,2 +20,3 @@\n x\n+y\n z\n"
		if got := bodyOf(t, frag); got != want {
			t.Errorf("%s: expected the hunk unchanged, got:\n%s", mode, got)
		}
	}
}

func TestBuild_RevertPureInsertion(t *testing.T) {
	d := mustParse(t, fileHeader+"@@ -3,2 +3,4 @@\n keep1\n+new1\n+new2\n keep2\n")

	frag, err := Build(d, WholeHunk(0), RevertHunk)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !frag.Mode.Reversed() {
		t.Error("expected revert fragments to be applied in reverse")
	}
	var added, removed int
	for _, l := range frag.Hunk.Lines {
		switch l.Kind {
		case diff.Added:
			added++
		case diff.Removed:
			removed++
		}
	}
	if added != 2 || removed != 0 {
		t.Errorf("expected 2 added and 0 removed lines, got %d and %d", added, removed)
	}
}

func TestBuild_ContextLineAlwaysRejected(t *testing.T) {
	text := fileHeader +
		"@@ -1,4 +1,4 @@\n a\n-b\n+c\n d\n e\n" +
		"@@ -10,2 +10,3 @@\n x\n+y\n z\n"
	d := mustParse(t, text)

	for hi, h := range d.Hunks {
		for li, l := range h.Lines {
			if l.IsChange() {
				continue
			}
			for _, mode := range []Mode{Stage, Unstage, RevertLine} {
				_, err := Build(d, SingleLine(hi, li), mode)
				if !errors.Is(err, ErrInvalidSelection) {
					t.Errorf("hunk %d line %d %s: expected ErrInvalidSelection, got %v", hi, li, mode, err)
				}
			}
		}
	}
}

func TestBuild_InvalidSelections(t *testing.T) {
	d := mustParse(t, fileHeader+"@@ -1,2 +1,2 @@\n a\n-b\n+c\n")

	tests := []struct {
		name string
		sel  Selection
		mode Mode
	}{
		{"hunk out of range", WholeHunk(1), Stage},
		{"negative hunk", WholeHunk(-1), Stage},
		{"line out of range", SingleLine(0, 3), Stage},
		{"negative line", SingleLine(0, -1), Unstage},
		{"range out of range", LineRange(0, 1, 5), Stage},
		{"inverted range", LineRange(0, 2, 1), Stage},
		{"range of context only", LineRange(0, 0, 0), Stage},
		{"revert hunk with line selection", SingleLine(0, 1), RevertHunk},
		{"revert line with whole hunk", WholeHunk(0), RevertLine},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := Build(d, tt.sel, tt.mode)
			if !errors.Is(err, ErrInvalidSelection) {
				t.Errorf("expected ErrInvalidSelection, got %v", err)
			}
			if frag != nil {
				t.Error("expected no fragment on error")
			}
		})
	}

	if _, err := Build(nil, WholeHunk(0), Stage); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection for nil diff, got %v", err)
	}
}

func TestBuild_RangeStaysWithinOneHunk(t *testing.T) {
	d := mustParse(t, fileHeader+"@@ -1,2 +1,2 @@\n a\n-b\n+c\n@@ -20,2 +20,3 @@\n x\n+y\n z\n")

	// Lines 1-4 of hunk 0 would run into the first line of hunk 1.
	if _, err := Build(d, LineRange(0, 1, 4), Stage); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection for a range past the hunk, got %v", err)
	}
	frag, err := Build(d, LineRange(0, 1, 2), Stage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(frag.Text, "@@ -") != 1 {
		t.Errorf("expected a fragment with exactly one hunk, got:\n%s", frag.Text)
	}
}

func TestBuild_CountsAlwaysMatchBody(t *testing.T) {
	text := fileHeader +
		"@@ -1,6 +1,6 @@\n a\n-b\n-c\n+C\n d\n+e\n+f\n g\n-h\n" +
		"@@ -30,3 +30,2 @@\n x\n-y\n z\n"
	d := mustParse(t, text)

	for hi, h := range d.Hunks {
		for li, l := range h.Lines {
			if !l.IsChange() {
				continue
			}
			for _, mode := range []Mode{Stage, Unstage, RevertLine} {
				frag, err := Build(d, SingleLine(hi, li), mode)
				if err != nil {
					t.Fatalf("hunk %d line %d %s: unexpected error: %v", hi, li, mode, err)
				}
				oldCount, newCount := frag.Hunk.Tally()
				if frag.Hunk.OldCount != oldCount || frag.Hunk.NewCount != newCount {
					t.Errorf("hunk %d line %d %s: header %s does not match body -%d +%d",
						hi, li, mode, frag.Hunk.Header(), oldCount, newCount)
				}
				if frag.Hunk.Changes() != 1 {
					t.Errorf("hunk %d line %d %s: expected exactly 1 change line, got %d", hi, li, mode, frag.Hunk.Changes())
				}
				if _, err := diff.Parse(frag.Text); err != nil {
					t.Errorf("hunk %d line %d %s: fragment does not parse: %v", hi, li, mode, err)
				}
			}
		}
	}
}

func TestBuild_StartsFollowEmptyRangeConvention(t *testing.T) {
	tests := []struct {
		name string
		text string
		sel  Selection
		mode Mode
		want string
	}{
		{
			name: "new side becomes empty",
			text: fileHeader + "@@ -3,1 +3,2 @@\n-x\n+y\n+z\n",
			sel:  SingleLine(0, 0),
			mode: Stage,
			want: "@@ -3,1 +2,0 @@",
		},
		{
			name: "new side becomes non-empty",
			text: fileHeader + "@@ -3,2 +2,0 @@\n-x\n-y\n",
			sel:  SingleLine(0, 0),
			mode: Stage,
			want: "@@ -3,2 +3,1 @@",
		},
		{
			name: "old side of new file becomes non-empty",
			text: "diff --git a/n.txt b/n.txt\nnew file mode 100644\n--- /dev/null\n+++ b/n.txt\n@@ -0,0 +1,2 @@\n+x\n+y\n",
			sel:  SingleLine(0, 0),
			mode: Unstage,
			want: "@@ -1,1 +1,2 @@",
		},
		{
			name: "first line of file",
			text: fileHeader + "@@ -1,2 +1,3 @@\n+top\n a\n b\n",
			sel:  SingleLine(0, 0),
			mode: Stage,
			want: "@@ -1,2 +1,3 @@",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := Build(mustParse(t, tt.text), tt.sel, tt.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := frag.Hunk.Header(); got != tt.want {
				t.Errorf("expected header %q, got %q", tt.want, got)
			}
		})
	}
}

func TestBuild_NoNewlineAtEndOfFile(t *testing.T) {
	text := fileHeader + "@@ -1,2 +1,3 @@\n a\n-b\n\\ No newline at end of file\n+b\n+c\n"
	d := mustParse(t, text)

	frag, err := Build(d, SingleLine(0, 1), Stage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "@@ -1,2 +1,1 @@\n a\n-b\n\\ No newline at end of file\n"
	if got := bodyOf(t, frag); got != want {
		t.Errorf("unexpected body:\nwant:\n%s\ngot:\n%s", want, got)
	}

	// Staging only "+c" would leave "b" without a newline in front of "c".
	if _, err := Build(d, SingleLine(0, 3), Stage); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("expected ErrInvalidSelection, got %v", err)
	}

	// Reversed: the target holds "b\n" and "c\n"; reverting "+c" is expressible.
	frag, err = Build(d, SingleLine(0, 3), RevertLine)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want = "@@ -1,2 +1,3 @@\n a\n b\n+c\n"
	if got := bodyOf(t, frag); got != want {
		t.Errorf("unexpected body:\nwant:\n%s\ngot:\n%s", want, got)
	}
}

func TestBuild_HeaderCopiedVerbatim(t *testing.T) {
	text := "diff --git a/a.txt b/b.txt\nsimilarity index 90%\nrename from a.txt\nrename to b.txt\n--- a/a.txt\n+++ b/b.txt\n@@ -1 +1 @@\n-x\n+y\n"
	d := mustParse(t, text)

	frag, err := Build(d, SingleLine(0, 1), Stage)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(frag.Text, strings.Join(d.Header, "")) {
		t.Errorf("expected fragment to start with the source header, got:\n%s", frag.Text)
	}
	if !strings.HasSuffix(frag.Text, "\n") {
		t.Error("expected fragment to end with a newline")
	}
}

func TestBuild_PartialNewOrDeletedFileGetsModificationHeader(t *testing.T) {
	const newFile = "diff --git a/n.txt b/n.txt\nnew file mode 100644\nindex 0000000..de98044\n--- /dev/null\n+++ b/n.txt\n"
	const deletedFile = "diff --git a/n.txt b/n.txt\ndeleted file mode 100644\nindex de98044..0000000\n--- a/n.txt\n+++ /dev/null\n"
	const modified = "diff --git a/n.txt b/n.txt\n--- a/n.txt\n+++ b/n.txt\n"

	tests := []struct {
		name string
		text string
		sel  Selection
		mode Mode
		want string
	}{
		{
			name: "unstage one line of a new file",
			text: newFile + "@@ -0,0 +1,3 @@\n+a\n+b\n+c\n",
			sel:  SingleLine(0, 1),
			mode: Unstage,
			want: modified + "@@ -1,2 +1,3 @@\n a\n+b\n c\n",
		},
		{
			name: "stage one line of a deleted file",
			text: deletedFile + "@@ -1,3 +0,0 @@\n-a\n-b\n-c\n",
			sel:  SingleLine(0, 0),
			mode: Stage,
			want: modified + "@@ -1,3 +1,2 @@\n-a\n b\n c\n",
		},
		{
			name: "stage one line of a new file keeps creating it",
			text: newFile + "@@ -0,0 +1,3 @@\n+a\n+b\n+c\n",
			sel:  SingleLine(0, 1),
			mode: Stage,
			want: newFile + "@@ -0,0 +1,1 @@\n+b\n",
		},
		{
			name: "whole hunk of a new file",
			text: newFile + "@@ -0,0 +1,3 @@\n+a\n+b\n+c\n",
			sel:  WholeHunk(0),
			mode: Unstage,
			want: newFile + "@@ -0,0 +1,3 @@\n+a\n+b\n+c\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frag, err := Build(mustParse(t, tt.text), tt.sel, tt.mode)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if frag.Text != tt.want {
				t.Errorf("unexpected fragment:\nwant:\n%s\ngot:\n%s", tt.want, frag.Text)
			}
			if strings.Join(frag.Header, "") != tt.want[:strings.Index(tt.want, "@@")] {
				t.Errorf("Header does not match the rendered text:\n%s", strings.Join(frag.Header, ""))
			}
		})
	}
}

func TestQuotePath(t *testing.T) {
	if got := quotePath("a/plain name.txt"); got != "a/plain name.txt" {
		t.Errorf("expected plain name unchanged, got %q", got)
	}
	if got := quotePath("a/tab\there"); got != `"a/tab\there"` {
		t.Errorf("expected quoted name, got %q", got)
	}
}
