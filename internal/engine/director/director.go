// Package director maps stage, unstage and revert operations onto patch
// fragments and hands them to git.
package director

import (
	"context"
	"errors"
	"fmt"

	"github.com/irahardianto/hunkstage/internal/engine/diff"
	"github.com/irahardianto/hunkstage/internal/engine/git"
	"github.com/irahardianto/hunkstage/internal/engine/patch"
	"github.com/irahardianto/hunkstage/internal/platform/logger"
)

// ErrNotApplicable is returned when the file is not in a state the operation
// can act on.
var ErrNotApplicable = errors.New("operation not applicable")

// Kind is the user-facing action, independent of selection granularity.
type Kind int

const (
	KindStage Kind = iota
	KindUnstage
	KindRevert
)

func (k Kind) String() string {
	switch k {
	case KindStage:
		return "stage"
	case KindUnstage:
		return "unstage"
	case KindRevert:
		return "revert"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Staged reports whether the kind reads the staged diff.
func (k Kind) Staged() bool {
	return k == KindUnstage
}

// Operation is one of the six partial-patch operations.
type Operation int

const (
	StageHunk Operation = iota
	StageLine
	UnstageHunk
	UnstageLine
	RevertHunk
	RevertLine
)

type route struct {
	name  string
	mode  patch.Mode
	apply git.ApplyMode
	lines bool
}

var routes = map[Operation]route{
	StageHunk:   {"stage-hunk", patch.Stage, git.ToIndex, false},
	StageLine:   {"stage-line", patch.Stage, git.ToIndex, true},
	UnstageHunk: {"unstage-hunk", patch.Unstage, git.ToIndexReversed, false},
	UnstageLine: {"unstage-line", patch.Unstage, git.ToIndexReversed, true},
	RevertHunk:  {"revert-hunk", patch.RevertHunk, git.ToWorkingTreeReversed, false},
	RevertLine:  {"revert-line", patch.RevertLine, git.ToWorkingTreeReversed, true},
}

func (o Operation) String() string {
	if r, ok := routes[o]; ok {
		return r.name
	}
	return fmt.Sprintf("operation(%d)", int(o))
}

// Staged reports whether the operation works on the staged (index vs HEAD)
// diff rather than the unstaged one.
func (o Operation) Staged() bool {
	return o.Kind().Staged()
}

// Kind returns the action the operation performs.
func (o Operation) Kind() Kind {
	switch o {
	case UnstageHunk, UnstageLine:
		return KindUnstage
	case RevertHunk, RevertLine:
		return KindRevert
	default:
		return KindStage
	}
}

// OperationFor picks the hunk or line variant of kind for sel.
func OperationFor(kind Kind, sel patch.Selection) Operation {
	lines := sel.IsLines()
	switch kind {
	case KindUnstage:
		if lines {
			return UnstageLine
		}
		return UnstageHunk
	case KindRevert:
		if lines {
			return RevertLine
		}
		return RevertHunk
	default:
		if lines {
			return StageLine
		}
		return StageHunk
	}
}

// Plan is a built fragment together with how it is to be applied.
type Plan struct {
	Operation Operation
	Fragment  *patch.Fragment
	ApplyMode git.ApplyMode
}

// Director builds fragments and applies them. It holds no state between
// calls.
type Director struct {
	sink   git.PatchSink
	status git.StatusChecker
}

// New creates a Director. status may be nil to skip precondition checks.
func New(sink git.PatchSink, status git.StatusChecker) *Director {
	return &Director{sink: sink, status: status}
}

// Plan builds the fragment for op without touching the repository.
func (dr *Director) Plan(op Operation, d *diff.ParsedDiff, sel patch.Selection) (*Plan, error) {
	r, ok := routes[op]
	if !ok {
		return nil, fmt.Errorf("unknown operation %d", int(op))
	}
	if r.lines != sel.IsLines() {
		return nil, fmt.Errorf("%w: %s does not take %s", patch.ErrInvalidSelection, op, sel)
	}
	if d != nil && d.Binary {
		return nil, fmt.Errorf("%w: %s is a binary file", ErrNotApplicable, d.Path())
	}

	frag, err := patch.Build(d, sel, r.mode)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", op, sel, err)
	}
	return &Plan{Operation: op, Fragment: frag, ApplyMode: r.apply}, nil
}

// Execute checks preconditions, builds the fragment for op and applies it.
func (dr *Director) Execute(ctx context.Context, op Operation, d *diff.ParsedDiff, sel patch.Selection) error {
	log := logger.FromContext(ctx)

	if err := dr.checkState(ctx, op, d); err != nil {
		return err
	}

	plan, err := dr.Plan(op, d, sel)
	if err != nil {
		if errors.Is(err, patch.ErrInvariantViolation) {
			log.Error("built fragment failed verification", "operation", op.String(), "selection", sel.String(), "error", err)
		}
		return err
	}

	log.Debug("applying fragment",
		"operation", op.String(),
		"path", d.Path(),
		"selection", sel.String(),
		"header", plan.Fragment.Hunk.Header(),
		"apply_mode", plan.ApplyMode.String(),
	)

	if err := dr.sink.Apply(ctx, plan.Fragment.Text, plan.ApplyMode); err != nil {
		return fmt.Errorf("%s %s: %w", op, sel, err)
	}

	log.Info("operation applied", "operation", op.String(), "path", d.Path(), "selection", sel.String())
	return nil
}

// checkState verifies that the file is tracked and has changes on the side op
// reads from.
func (dr *Director) checkState(ctx context.Context, op Operation, d *diff.ParsedDiff) error {
	if d == nil {
		return fmt.Errorf("%w: no diff", patch.ErrInvalidSelection)
	}
	if dr.status == nil {
		return nil
	}

	path := d.Path()
	state, err := dr.status.FileState(ctx, path)
	if err != nil {
		return fmt.Errorf("reading state of %s: %w", path, err)
	}

	switch {
	case !state.Tracked:
		return fmt.Errorf("%w: %s is not tracked", ErrNotApplicable, path)
	case op.Staged() && !state.Staged:
		return fmt.Errorf("%w: %s has no staged changes", ErrNotApplicable, path)
	case !op.Staged() && !state.Unstaged:
		return fmt.Errorf("%w: %s has no unstaged changes", ErrNotApplicable, path)
	}
	return nil
}
