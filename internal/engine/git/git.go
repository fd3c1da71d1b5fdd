// Package git abstracts git operations for testability.
package git

import (
	"context"
	"errors"
	"fmt"
)

// ErrApplyFailed is matched by every *ApplyError.
var ErrApplyFailed = errors.New("git apply failed")

// ApplyMode says where a patch is applied and in which direction.
type ApplyMode int

const (
	// ToIndex applies the patch forward to the index (git apply --cached).
	ToIndex ApplyMode = iota
	// ToIndexReversed applies the patch in reverse to the index.
	ToIndexReversed
	// ToWorkingTreeReversed applies the patch in reverse to the working tree.
	ToWorkingTreeReversed
)

func (m ApplyMode) String() string {
	switch m {
	case ToIndex:
		return "index"
	case ToIndexReversed:
		return "index-reversed"
	case ToWorkingTreeReversed:
		return "worktree-reversed"
	default:
		return fmt.Sprintf("apply-mode(%d)", int(m))
	}
}

// Args returns the git apply flags for the mode.
func (m ApplyMode) Args() []string {
	switch m {
	case ToIndex:
		return []string{"--cached"}
	case ToIndexReversed:
		return []string{"--cached", "--reverse"}
	case ToWorkingTreeReversed:
		return []string{"--reverse"}
	default:
		return nil
	}
}

// ApplyError carries git's diagnostic for a rejected patch.
type ApplyError struct {
	Mode       ApplyMode
	Diagnostic string
}

func (e *ApplyError) Error() string {
	if e.Diagnostic == "" {
		return fmt.Sprintf("%s (%s)", ErrApplyFailed, e.Mode)
	}
	return fmt.Sprintf("%s (%s): %s", ErrApplyFailed, e.Mode, e.Diagnostic)
}

// Unwrap lets errors.Is match ErrApplyFailed.
func (e *ApplyError) Unwrap() error {
	return ErrApplyFailed
}

// FileState describes a path as seen by the index and the working tree.
type FileState struct {
	// Tracked is true when the index has an entry for the path.
	Tracked bool
	// Staged is true when the index differs from HEAD.
	Staged bool
	// Unstaged is true when the working tree differs from the index.
	Unstaged bool
}

// DiffSource produces unified diff text for one file.
type DiffSource interface {
	// Diff returns the worktree-vs-index diff, or the index-vs-HEAD diff when
	// staged is true. An unchanged file yields an empty string.
	Diff(ctx context.Context, path string, contextLines int, staged bool) (string, error)
}

// PatchSink applies patch text to the repository.
type PatchSink interface {
	// Apply applies text in the given mode. A rejection is an *ApplyError.
	Apply(ctx context.Context, text string, mode ApplyMode) error
}

// StatusChecker answers precondition questions about a path.
type StatusChecker interface {
	FileState(ctx context.Context, path string) (FileState, error)
}

// Service is everything the CLI needs from git.
type Service interface {
	DiffSource
	PatchSink
	StatusChecker
}
