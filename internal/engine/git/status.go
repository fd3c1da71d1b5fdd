package git

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/index"

	"github.com/irahardianto/hunkstage/internal/platform/logger"
)

// RepoStatus implements StatusChecker by reading the repository with go-git.
type RepoStatus struct {
	// WorkDir is where repository discovery starts and what relative paths
	// are resolved against. If empty, the current directory is used.
	WorkDir string
}

// NewRepoStatus creates a RepoStatus rooted at workDir.
func NewRepoStatus(workDir string) *RepoStatus {
	return &RepoStatus{WorkDir: workDir}
}

// FileState reports whether path is tracked and where it has changes.
func (s *RepoStatus) FileState(ctx context.Context, path string) (FileState, error) {
	logger.FromContext(ctx).Debug("reading file state", "path", path)

	if err := ctx.Err(); err != nil {
		return FileState{}, err
	}

	repo, root, err := openRepo(s.WorkDir)
	if err != nil {
		return FileState{}, err
	}

	rel, err := s.repoPath(root, path)
	if err != nil {
		return FileState{}, err
	}

	var state FileState

	idx, err := repo.Storer.Index()
	if err != nil {
		return FileState{}, fmt.Errorf("reading index: %w", err)
	}
	if _, err := idx.Entry(rel); err == nil {
		state.Tracked = true
	} else if !errors.Is(err, index.ErrEntryNotFound) {
		return FileState{}, fmt.Errorf("looking up %s in index: %w", rel, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return FileState{}, fmt.Errorf("getting worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return FileState{}, fmt.Errorf("getting status: %w", err)
	}

	// Status.File would insert an untracked entry for unknown paths.
	if fs, ok := status[rel]; ok {
		state.Staged = fs.Staging != gogit.Unmodified && fs.Staging != gogit.Untracked
		state.Unstaged = fs.Worktree != gogit.Unmodified && fs.Worktree != gogit.Untracked
		// A staged deletion has left the index but is still tracked in HEAD.
		if fs.Staging == gogit.Deleted {
			state.Tracked = true
		}
	}

	return state, nil
}

// repoPath turns path into a slash-separated path relative to the repository
// root.
func (s *RepoStatus) repoPath(root, path string) (string, error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(s.WorkDir, path)
	}
	abs, err := filepath.Abs(abs)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	if dir, err := filepath.EvalSymlinks(filepath.Dir(abs)); err == nil {
		abs = filepath.Join(dir, filepath.Base(abs))
	}

	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside repository %s", path, root)
	}
	return filepath.ToSlash(rel), nil
}

// RepoRoot returns the top-level directory of the repository containing dir.
func RepoRoot(dir string) (string, error) {
	_, root, err := openRepo(dir)
	return root, err
}

// Resolve finds the repository containing dir and returns its root together
// with path made relative to that root. A relative path is taken relative to
// dir.
func Resolve(dir, path string) (root, rel string, err error) {
	_, root, err = openRepo(dir)
	if err != nil {
		return "", "", err
	}
	rel, err = (&RepoStatus{WorkDir: dir}).repoPath(root, path)
	if err != nil {
		return "", "", err
	}
	return root, rel, nil
}

func openRepo(dir string) (*gogit.Repository, string, error) {
	if dir == "" {
		dir = "."
	}
	repo, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, "", fmt.Errorf("opening repository at %s: %w", dir, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, "", fmt.Errorf("getting worktree: %w", err)
	}
	root, err := filepath.EvalSymlinks(worktree.Filesystem.Root())
	if err != nil {
		return nil, "", fmt.Errorf("resolving repository root: %w", err)
	}
	return repo, root, nil
}
