package gallery

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// categoryOps are the events that can add or remove a category directory.
const categoryOps = fsnotify.Create | fsnotify.Remove | fsnotify.Rename

// WatchPortfolio invalidates cache whenever an entry directly under dir is
// created, removed or renamed. dir is an OS path. The watcher stops when ctx
// is cancelled.
func WatchPortfolio(ctx context.Context, dir string, cache *CategoryCache, logger Logger) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("new watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return fmt.Errorf("watch %q: %w", dir, err)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Op&categoryOps != 0 {
					cache.Invalidate()
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				if logger != nil {
					logger.Warnf("gallery: watch %s: %v", dir, err)
				}
			}
		}
	}()
	return nil
}
