// Package watch re-runs work when input files change.
package watch

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/leapstack-labs/defectgen/internal/errors"
)

// DefaultDelay is how long events are collected before the callback runs.
const DefaultDelay = 100 * time.Millisecond

// Watcher reports changes to a fixed set of files.
//
// The parent directories are watched rather than the files, so editors that
// save by renaming a temporary file are noticed and files may be created
// after the watch starts.
type Watcher struct {
	files  map[string]struct{}
	dirs   []string
	Delay  time.Duration
	Logger *slog.Logger
}

// New creates a watcher for paths. Empty paths are ignored.
func New(paths []string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Watcher{files: make(map[string]struct{}), Delay: DefaultDelay, Logger: logger}

	seen := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, errors.Wrapf(err, "resolve %s", p)
		}
		w.files[abs] = struct{}{}

		dir := filepath.Dir(abs)
		if _, ok := seen[dir]; !ok {
			seen[dir] = struct{}{}
			w.dirs = append(w.dirs, dir)
		}
	}
	if len(w.files) == 0 {
		return nil, errors.New("nothing to watch")
	}
	return w, nil
}

// Run blocks until ctx is cancelled, calling onChange once per burst of
// changes with the last file that changed. onChange runs on the calling
// goroutine; events arriving meanwhile are collected into the next burst.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, path string)) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create file watcher")
	}
	defer func() { _ = fw.Close() }()

	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			return errors.Wrapf(err, "watch %s", dir)
		}
	}

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending string
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if _, watched := w.files[filepath.Clean(event.Name)]; !watched {
				continue
			}
			w.Logger.Debug("file changed", slog.String("path", event.Name), slog.String("op", event.Op.String()))

			pending = event.Name
			if timer == nil {
				timer = time.NewTimer(w.Delay)
			} else {
				timer.Reset(w.Delay)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			onChange(ctx, pending)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.Logger.Warn("watcher error", slog.String("error", err.Error()))
		}
	}
}
