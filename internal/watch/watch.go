// Package watch re-runs a callback whenever one of a set of files changes
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce is the quiet period after the last event before the callback fires
const DefaultDebounce = 250 * time.Millisecond

// ChangeFunc receives the changed files, sorted
type ChangeFunc func(ctx context.Context, changed []string)

// Watcher watches files and calls ChangeFunc once per burst of changes.
// Parent directories are watched so files replaced by rename, or created
// after start, are still seen.
type Watcher struct {
	targets  map[string]struct{}
	dirs     []string
	debounce time.Duration
	onChange ChangeFunc
	logger   *zap.Logger
	ready    chan struct{}
}

// New creates a watcher over paths. Empty paths are ignored.
func New(paths []string, debounce time.Duration, onChange ChangeFunc, logger *zap.Logger) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	targets := make(map[string]struct{})
	dirSet := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			abs = filepath.Clean(p)
		}
		targets[abs] = struct{}{}
		dirSet[filepath.Dir(abs)] = struct{}{}
	}

	dirs := make([]string, 0, len(dirSet))
	for d := range dirSet {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)

	return &Watcher{
		targets:  targets,
		dirs:     dirs,
		debounce: debounce,
		onChange: onChange,
		logger:   logger,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once the watches are registered
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is cancelled. The callback runs on this goroutine, so
// changes arriving during a callback are batched into the next one.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
	}
	close(w.ready)

	w.logger.Info("Watching for changes",
		zap.Strings("dirs", w.dirs),
		zap.Int("files", len(w.targets)),
		zap.Duration("debounce", w.debounce))

	var (
		timer   *time.Timer
		timerC  <-chan time.Time
		pending = make(map[string]struct{})
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Watcher stopped")
			return nil

		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			name := filepath.Clean(ev.Name)
			if _, watched := w.targets[name]; !watched {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}

			w.logger.Debug("File event", zap.String("file", name), zap.String("op", ev.Op.String()))
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("Watcher error", zap.Error(err))

		case <-timerC:
			timerC = nil
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			pending = make(map[string]struct{})

			w.logger.Info("Change detected", zap.Strings("files", changed))
			w.onChange(ctx, changed)
		}
	}
}
