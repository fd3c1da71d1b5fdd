package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/irahardianto/hunkstage/internal/engine/diff"
	"github.com/irahardianto/hunkstage/internal/engine/director"
	"github.com/irahardianto/hunkstage/internal/engine/formatter"
	"github.com/irahardianto/hunkstage/internal/engine/git"
	"github.com/irahardianto/hunkstage/internal/platform/logger"
)

// OutputOpts are the presentation settings shared by every command.
type OutputOpts struct {
	JSON    bool
	Verbose bool
	NoColor bool
}

// ShowOpts holds per-invocation options for show.
type ShowOpts struct {
	OutputOpts
	Path         string
	Staged       bool
	Watch        bool
	ContextLines int
}

// ApplyOpts holds per-invocation options for stage, unstage and revert.
type ApplyOpts struct {
	OutputOpts
	Path         string
	Kind         director.Kind
	Selection    SelectionFlags
	DryRun       bool
	ContextLines int
}

// Operator runs one hunkstage command with injected dependencies.
// This struct enables testing the orchestration logic without a real repository.
type Operator struct {
	// Git reads diffs, applies fragments and reports file state.
	Git git.Service

	// Watch creates the change watcher for show --watch.
	Watch WatcherFactory

	// Debounce is passed to Watch.
	Debounce time.Duration

	// WatchPaths are the files whose changes trigger a refresh, usually the
	// target file and the git index.
	WatchPaths []string

	// Stdout is the output writer for formatted diffs and results.
	Stdout io.Writer

	// Stderr is the output writer for errors in CLI mode.
	Stderr io.Writer
}

// Show prints the diff of opts.Path, and with opts.Watch keeps reprinting it
// whenever the file or index changes until ctx is cancelled.
func (o *Operator) Show(ctx context.Context, opts ShowOpts) error {
	log := logger.FromContext(ctx)
	fmtr := newFormatter(opts.OutputOpts)

	if err := o.show(ctx, fmtr, opts); err != nil {
		return err
	}
	if !opts.Watch {
		return nil
	}
	if o.Watch == nil {
		return errors.New("watching is not available")
	}

	w, err := o.Watch(o.Debounce, o.WatchPaths...)
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil {
			log.Warn("closing watcher", "error", cerr)
		}
	}()

	log.Debug("watching for changes", "paths", o.WatchPaths, "debounce", o.Debounce)
	for {
		if err := w.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("waiting for changes: %w", err)
		}
		if err := o.show(ctx, fmtr, opts); err != nil {
			return err
		}
	}
}

func (o *Operator) show(ctx context.Context, fmtr formatter.Formatter, opts ShowOpts) error {
	d, err := o.fetch(ctx, opts.Path, opts.ContextLines, opts.Staged)
	if err != nil {
		return err
	}
	fmt.Fprint(o.Stdout, fmtr.FormatDiff(formatter.NewDiffView(opts.Path, d, opts.Staged)))
	return nil
}

// Apply runs a stage, unstage or revert of the selected hunk or lines and
// reports the outcome. With opts.DryRun the fragment is built and printed
// without touching the repository.
func (o *Operator) Apply(ctx context.Context, opts ApplyOpts) error {
	log := logger.FromContext(ctx)
	fmtr := newFormatter(opts.OutputOpts)

	result := formatter.Result{
		Operation: opts.Kind.String(),
		Path:      opts.Path,
		DryRun:    opts.DryRun,
	}

	err := o.apply(ctx, opts, &result)
	if err != nil {
		result.Error = err.Error()
		var applyErr *git.ApplyError
		if errors.As(err, &applyErr) {
			result.Diagnostic = applyErr.Diagnostic
		}
		log.Debug("operation failed", "operation", result.Operation, "path", opts.Path, "error", err)
	}

	out := o.Stdout
	if err != nil && !opts.JSON {
		out = o.Stderr
	}
	fmt.Fprint(out, fmtr.FormatResult(result))
	return err
}

func (o *Operator) apply(ctx context.Context, opts ApplyOpts, result *formatter.Result) error {
	staged := opts.Kind.Staged()
	d, err := o.fetch(ctx, opts.Path, opts.ContextLines, staged)
	if err != nil {
		return err
	}
	if d == nil {
		side := "unstaged"
		if staged {
			side = "staged"
		}
		return fmt.Errorf("%w: %s has no %s changes", director.ErrNotApplicable, opts.Path, side)
	}
	result.Path = d.Path()

	sel, err := opts.Selection.Resolve(d)
	if err != nil {
		return err
	}
	result.Selection = sel.String()

	op := director.OperationFor(opts.Kind, sel)
	result.Operation = op.String()

	dr := director.New(o.Git, o.Git)
	plan, err := dr.Plan(op, d, sel)
	if err != nil {
		return err
	}
	result.Patch = plan.Fragment.Text
	result.ApplyMode = strings.Join(plan.ApplyMode.Args(), " ")

	if opts.DryRun {
		return nil
	}
	if err := dr.Execute(ctx, op, d, sel); err != nil {
		return err
	}
	result.Applied = true
	return nil
}

// fetch reads and parses the diff of path. An empty diff yields nil.
func (o *Operator) fetch(ctx context.Context, path string, contextLines int, staged bool) (*diff.ParsedDiff, error) {
	text, err := o.Git.Diff(ctx, path, contextLines, staged)
	if err != nil {
		return nil, fmt.Errorf("reading diff of %s: %w", path, err)
	}
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	d, err := diff.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing diff of %s: %w", path, err)
	}
	return d, nil
}

func newFormatter(opts OutputOpts) formatter.Formatter {
	if opts.JSON {
		return formatter.NewJSONFormatter()
	}
	return formatter.NewCLIFormatter(!opts.NoColor, opts.Verbose)
}
