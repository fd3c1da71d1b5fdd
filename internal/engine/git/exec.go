package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/irahardianto/hunkstage/internal/engine/diff"
	"github.com/irahardianto/hunkstage/internal/platform/logger"
)

// ExecService implements DiffSource and PatchSink by running git via os/exec.
type ExecService struct {
	// WorkDir is the working directory for git commands.
	// If empty, the current directory is used.
	WorkDir string
	// GitBinary is the git executable. Defaults to "git".
	GitBinary string
	// Whitespace is passed to git apply as --whitespace when set.
	Whitespace string
}

// NewExecService creates a new ExecService with the given working directory.
func NewExecService(workDir string) *ExecService {
	return &ExecService{WorkDir: workDir, GitBinary: "git"}
}

// Diff returns the diff of path against the index, or of the index against
// HEAD when staged is true.
func (s *ExecService) Diff(ctx context.Context, path string, contextLines int, staged bool) (string, error) {
	logger.FromContext(ctx).Debug("getting diff", "path", path, "staged", staged, "context", contextLines)

	if contextLines < 0 {
		return "", fmt.Errorf("invalid context line count %d", contextLines)
	}

	args := []string{
		"diff", "--no-color", "--no-ext-diff",
		"--src-prefix=a/", "--dst-prefix=b/",
		"-U" + strconv.Itoa(contextLines),
	}
	if staged {
		args = append(args, "--cached")
	}
	args = append(args, "--", path)

	out, err := s.runGit(ctx, nil, args...)
	if err != nil {
		return "", fmt.Errorf("getting diff for %s: %w", path, err)
	}
	return out, nil
}

// Apply feeds text to git apply on stdin.
func (s *ExecService) Apply(ctx context.Context, text string, mode ApplyMode) error {
	log := logger.FromContext(ctx)
	log.Debug("applying patch", "mode", mode.String(), "bytes", len(text))

	args := append([]string{"apply"}, mode.Args()...)
	if zeroContext(text) {
		args = append(args, "--unidiff-zero")
	}
	if s.Whitespace != "" {
		args = append(args, "--whitespace="+s.Whitespace)
	}
	args = append(args, "-")

	if _, err := s.runGit(ctx, strings.NewReader(text), args...); err != nil {
		var runErr *runError
		if errors.As(err, &runErr) {
			log.Debug("git apply rejected patch", "mode", mode.String(), "stderr", runErr.stderr)
			return &ApplyError{Mode: mode, Diagnostic: strings.TrimSpace(runErr.stderr)}
		}
		return fmt.Errorf("applying patch: %w", err)
	}
	return nil
}

// zeroContext reports whether any hunk in text starts or ends on a change
// line. git apply otherwise anchors such hunks to the start or end of the file.
func zeroContext(text string) bool {
	d, err := diff.Parse(text)
	if err != nil {
		return false
	}
	for _, h := range d.Hunks {
		n := len(h.Lines)
		if n > 0 && (h.Lines[0].IsChange() || h.Lines[n-1].IsChange()) {
			return true
		}
	}
	return false
}

// IndexPath returns the absolute path of the index file, which lives outside
// WorkDir/.git for linked worktrees.
func (s *ExecService) IndexPath(ctx context.Context) (string, error) {
	out, err := s.runGit(ctx, nil, "rev-parse", "--git-path", "index")
	if err != nil {
		return "", fmt.Errorf("locating index: %w", err)
	}
	p := strings.TrimSpace(out)
	if !filepath.IsAbs(p) {
		p = filepath.Join(s.WorkDir, p)
	}
	return filepath.Abs(p)
}

// runError is a git process that ran and exited non-zero.
type runError struct {
	args   []string
	err    error
	stderr string
}

func (e *runError) Error() string {
	return fmt.Sprintf("git %s: %v (stderr: %s)", strings.Join(e.args, " "), e.err, e.stderr)
}

func (e *runError) Unwrap() error { return e.err }

// runGit executes a git command and returns its stdout.
func (s *ExecService) runGit(ctx context.Context, stdin io.Reader, args ...string) (string, error) {
	bin := s.GitBinary
	if bin == "" {
		bin = "git"
	}

	cmd := exec.CommandContext(ctx, bin, args...) // #nosec G204 -- args are controlled by the application, not user input
	cmd.Dir = s.WorkDir
	cmd.Stdin = stdin

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", &runError{args: args, err: err, stderr: stderr.String()}
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	return stdout.String(), nil
}
