package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/irahardianto/hunkstage/internal/engine/config"
	"github.com/irahardianto/hunkstage/internal/engine/git"
	"github.com/irahardianto/hunkstage/internal/platform/logger"
)

// repoService joins the exec-backed diff/apply service with the go-git status
// reader so both satisfy git.Service.
type repoService struct {
	*git.ExecService
	*git.RepoStatus
}

// session is everything a command needs once the repository and config are
// resolved.
type session struct {
	operator     *Operator
	path         string
	contextLines int
	output       OutputOpts
}

// openSession wires real infrastructure for path. This is a composition root.
func openSession(ctx context.Context, path string) (*session, error) {
	log := logger.FromContext(ctx)

	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}

	var cfg *config.Config
	if flagConfigPath != "" {
		cfg, err = config.LoadFrom(ctx, flagConfigPath)
	} else {
		cfg, err = config.Load(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	contextLines := cfg.ContextLines
	if flagContext >= 0 {
		contextLines = flagContext
	}

	root, rel, err := git.Resolve(wd, path)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", path, err)
	}

	exec := &git.ExecService{
		WorkDir:    root,
		GitBinary:  cfg.GitBinary,
		Whitespace: cfg.Apply.Whitespace,
	}
	svc := &repoService{ExecService: exec, RepoStatus: git.NewRepoStatus(root)}

	watchPaths := []string{filepath.Join(root, filepath.FromSlash(rel))}
	if idx, err := exec.IndexPath(ctx); err != nil {
		log.Warn("locating git index, staged changes will not trigger a refresh", "error", err)
	} else {
		watchPaths = append(watchPaths, idx)
	}

	log.Debug("session opened", "root", root, "path", rel, "context_lines", contextLines)

	return &session{
		operator: &Operator{
			Git:        svc,
			Watch:      newFSWatcher,
			Debounce:   cfg.Watch.Debounce,
			WatchPaths: watchPaths,
			Stdout:     os.Stdout,
			Stderr:     os.Stderr,
		},
		path:         rel,
		contextLines: contextLines,
		output: OutputOpts{
			JSON:    flagJSON,
			Verbose: flagVerbose,
			NoColor: flagNoColor || !cfg.OutputColor,
		},
	}, nil
}

// runShow wires real infrastructure and delegates to Operator.Show.
func runShow(ctx context.Context, path string, staged, watch bool) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := openSession(ctx, path)
	if err != nil {
		return reportSetupError(ctx, err)
	}
	err = s.operator.Show(ctx, ShowOpts{
		OutputOpts:   s.output,
		Path:         s.path,
		Staged:       staged,
		Watch:        watch,
		ContextLines: s.contextLines,
	})
	if err != nil {
		return reportSetupError(ctx, err)
	}
	return nil
}

// runApply wires real infrastructure and delegates to Operator.Apply, which
// reports its own errors.
func runApply(ctx context.Context, path string, opts ApplyOpts) error {
	log := logger.FromContext(ctx)

	s, err := openSession(ctx, path)
	if err != nil {
		return reportSetupError(ctx, err)
	}
	opts.OutputOpts = s.output
	opts.Path = s.path
	opts.ContextLines = s.contextLines

	err = s.operator.Apply(ctx, opts)
	if err != nil {
		log.Debug("command failed", "operation", opts.Kind.String(), "error", err)
	}
	return err
}

func reportSetupError(ctx context.Context, err error) error {
	logger.FromContext(ctx).Debug("command failed", "error", err)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return err
}
