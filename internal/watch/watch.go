// Package watch re-runs a callback whenever files under a tree change.
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/hashicorp/go-hclog"
)

// DefaultDebounce collapses bursts of events into one trigger.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls Trigger after a quiet period following any change under a root.
type Watcher struct {
	Trigger  func(ctx context.Context)
	Debounce time.Duration
	Logger   hclog.Logger
}

// Run watches root recursively until ctx is done. Newly created directories are added to the watch.
func (w *Watcher) Run(ctx context.Context, root string) error {
	if w.Trigger == nil {
		return errors.New("watch trigger is not set")
	}
	logger := w.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := addRecursive(watcher, root); err != nil {
		return err
	}
	logger.Info("watching for changes", "root", root)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if hidden(root, ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addRecursive(watcher, ev.Name); err != nil {
						logger.Warn("failed to watch new directory", "path", ev.Name, "error", err)
					}
				}
			}
			logger.Trace("change detected", "path", ev.Name, "op", ev.Op.String())
			timer.Reset(debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch error", "error", err)
		case <-timer.C:
			w.Trigger(ctx)
		}
	}
}

func addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// hidden reports whether path sits in a dot-directory below root.
func hidden(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.Dir(rel), string(filepath.Separator)) {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
