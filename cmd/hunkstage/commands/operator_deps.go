package commands

import (
	"context"
	"time"

	"github.com/irahardianto/hunkstage/internal/engine/watch"
)

// Waiter blocks until a watched file changes.
type Waiter interface {
	Wait(ctx context.Context) error
	Close() error
}

// WatcherFactory creates a Waiter over paths.
type WatcherFactory func(debounce time.Duration, paths ...string) (Waiter, error)

// newFSWatcher adapts watch.New to WatcherFactory.
func newFSWatcher(debounce time.Duration, paths ...string) (Waiter, error) {
	return watch.New(debounce, paths...)
}
