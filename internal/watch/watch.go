// Package watch re-runs a handler whenever a Go file under the watched
// directories is written.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Handler processes one changed file.
type Handler func(ctx context.Context, filename string)

// DefaultDelay groups the writes an editor makes when saving a file.
const DefaultDelay = 100 * time.Millisecond

// Watcher dispatches file writes to a handler.
type Watcher struct {
	watcher *fsnotify.Watcher
	handle  Handler
	logger  *zap.Logger
	delay   time.Duration
}

// New creates a watcher calling handle for every written .go file.
func New(handle Handler, logger *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{watcher: w, handle: handle, logger: logger, delay: DefaultDelay}, nil
}

// SetDelay changes how long writes to the same file are grouped.
func (w *Watcher) SetDelay(d time.Duration) {
	w.delay = d
}

// Add watches root and every directory below it. A file root watches its
// directory.
func (w *Watcher) Add(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.watcher.Add(path)
		}
		if path == root {
			return w.watcher.Add(filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("error adding directory to watcher: %w", err)
	}
	return nil
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) error {
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.delay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isSourceWrite(event) {
				continue
			}
			pending[event.Name] = struct{}{}
			timer.Reset(w.delay)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Error("watch error", zap.Error(err))

		case <-timer.C:
			for name := range pending {
				delete(pending, name)
				w.handle(ctx, name)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func isSourceWrite(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return false
	}
	return strings.HasSuffix(event.Name, ".go") && !strings.HasSuffix(event.Name, "_test.go")
}
