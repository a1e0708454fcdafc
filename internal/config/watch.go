package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses the burst of events an editor save produces.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reloads a config file when it changes on disk.
type Watcher struct {
	path     string
	debounce time.Duration
	logger   *slog.Logger
	onChange func(*Config)

	// files of the last successful load
	targets map[string]bool
	dirs    map[string]bool
}

// NewWatcher watches path and calls onChange with each config that loads and
// validates. Broken edits are logged and skipped.
func NewWatcher(path string, logger *slog.Logger, onChange func(*Config)) *Watcher {
	return &Watcher{
		path:     path,
		debounce: DefaultDebounce,
		logger:   logger,
		onChange: onChange,
	}
}

// Run blocks until ctx is cancelled. The config file and every file it
// includes are watched through their parent directories, so that editors
// which replace a file by rename are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	w.dirs = make(map[string]bool)
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	w.dirs[dir] = true

	var files []string
	if res, err := LoadFromPath(w.path); err == nil {
		files = res.Files
	}
	w.track(watcher, files)

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.targets[filepath.Clean(event.Name)] {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)
		case <-timer.C:
			if res := w.reload(); res != nil {
				w.track(watcher, res.Files)
			}
		}
	}
}

// track sets the reload targets to the main file plus files and watches any
// parent directory not seen yet.
func (w *Watcher) track(watcher *fsnotify.Watcher, files []string) {
	targets := map[string]bool{filepath.Clean(w.path): true}
	for _, f := range files {
		targets[filepath.Clean(f)] = true
	}
	for f := range targets {
		dir := filepath.Dir(f)
		if w.dirs[dir] {
			continue
		}
		if err := watcher.Add(dir); err != nil {
			w.logger.Warn("failed to watch included config", "path", f, "error", err)
			continue
		}
		w.dirs[dir] = true
	}
	w.targets = targets
}

func (w *Watcher) reload() *LoadResult {
	res, err := LoadFromPath(w.path)
	if err != nil {
		w.logger.Warn("config reload failed", "path", w.path, "error", err)
		return nil
	}
	w.logger.Info("config reloaded", "path", w.path, "files", len(res.Files))
	w.onChange(res.Config)
	return res
}
