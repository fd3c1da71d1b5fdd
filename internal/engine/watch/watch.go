// Package watch reports changes to a file and to the git index so a diff view
// can be refreshed.
package watch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/irahardianto/hunkstage/internal/platform/logger"
)

// ErrClosed is returned by Wait after Close.
var ErrClosed = errors.New("watcher closed")

// Watcher waits for writes to a set of files. Each file's directory is
// watched so editors that replace files on save are still seen.
type Watcher struct {
	fsw      *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration
}

// New watches paths. Paths that do not exist yet are watched through their
// parent directory.
func New(debounce time.Duration, paths ...string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}

	w := &Watcher{fsw: fsw, files: make(map[string]bool), debounce: debounce}
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}

	for dir := range dirs {
		if _, err := os.Stat(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
		if err := fsw.Add(dir); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", dir, err)
		}
	}
	return w, nil
}

// Wait blocks until one of the watched files changes, then keeps absorbing
// further changes until the debounce interval passes quietly.
func (w *Watcher) Wait(ctx context.Context) error {
	log := logger.FromContext(ctx)

	if err := w.next(ctx); err != nil {
		return err
	}

	timer := time.NewTimer(w.debounce)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			if w.relevant(ev) {
				log.Debug("change absorbed by debounce", "path", ev.Name, "op", ev.Op.String())
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			return fmt.Errorf("watching: %w", err)
		}
	}
}

// next returns at the first relevant event.
func (w *Watcher) next(ctx context.Context) error {
	log := logger.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return ErrClosed
			}
			if w.relevant(ev) {
				log.Debug("change detected", "path", ev.Name, "op", ev.Op.String())
				return nil
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return ErrClosed
			}
			return fmt.Errorf("watching: %w", err)
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Write) &&
		!ev.Op.Has(fsnotify.Remove) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	return w.files[filepath.Clean(ev.Name)]
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
