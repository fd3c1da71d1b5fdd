package git

import (
	"context"
)

// AppliedPatch records one call to MockService.Apply.
type AppliedPatch struct {
	Text string
	Mode ApplyMode
}

// MockService is a test double for git.Service.
type MockService struct {
	// Diffs maps a path to its unstaged diff text.
	Diffs map[string]string
	// StagedDiffs maps a path to its staged diff text.
	StagedDiffs map[string]string
	DiffErr     error

	ApplyErr error
	Applied  []AppliedPatch

	// States maps a path to its file state. Unknown paths are untracked.
	States   map[string]FileState
	StateErr error
}

// Diff returns the configured diff text for path.
func (m *MockService) Diff(_ context.Context, path string, _ int, staged bool) (string, error) {
	if m.DiffErr != nil {
		return "", m.DiffErr
	}
	if staged {
		return m.StagedDiffs[path], nil
	}
	return m.Diffs[path], nil
}

// Apply records the patch and returns the configured error.
func (m *MockService) Apply(_ context.Context, text string, mode ApplyMode) error {
	if m.ApplyErr != nil {
		return m.ApplyErr
	}
	m.Applied = append(m.Applied, AppliedPatch{Text: text, Mode: mode})
	return nil
}

// FileState returns the configured state for path.
func (m *MockService) FileState(_ context.Context, path string) (FileState, error) {
	return m.States[path], m.StateErr
}
