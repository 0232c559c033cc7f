package index

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/sp00kydogz/CuadernoCLI/internal/storage"
)

// DefaultDebounce is the quiet period after the last change before a reindex.
const DefaultDebounce = 500 * time.Millisecond

// ReindexFunc rebuilds and persists the whole index.
type ReindexFunc func(ctx context.Context) error

// Watch starts an fsnotify watcher on the note root and calls reindex once
// changes to eligible notes have settled for debounce. It blocks until ctx is
// cancelled.
//
// New directories created at runtime are added to the watch list. Hidden
// directories and reserved files (including the index itself) never trigger.
func Watch(ctx context.Context, root string, debounce time.Duration, logger *slog.Logger, reindex ReindexFunc) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, root); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", root), slog.Duration("debounce", debounce))

	var timer *time.Timer
	var fire <-chan time.Time

	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			if err := reindex(ctx); err != nil {
				logger.Warn("watcher: reindex failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			rel, relErr := filepath.Rel(root, ev.Name)
			if relErr != nil {
				continue
			}
			rel = filepath.ToSlash(rel)

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if hiddenPath(rel) {
						continue
					}
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", rel),
							slog.String("error", addErr.Error()))
					} else {
						logger.Debug("watcher: watching new dir", slog.String("path", rel))
					}
					// The directory may already hold notes.
					schedule()
					continue
				}
			}

			if !triggers(rel, ev.Op) {
				continue
			}
			logger.Debug("watcher: change", slog.String("path", rel), slog.String("op", ev.Op.String()))
			schedule()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

// triggers reports whether an event on rel should lead to a reindex. Removed
// or renamed extensionless paths are treated as directories, since they can no
// longer be inspected.
func triggers(rel string, op fsnotify.Op) bool {
	if op == fsnotify.Chmod {
		return false
	}
	if storage.IsNote(rel) {
		return true
	}
	if op&(fsnotify.Remove|fsnotify.Rename) != 0 && path.Ext(rel) == "" {
		return !hiddenPath(rel)
	}
	return false
}

func hiddenPath(rel string) bool {
	for dir := rel; dir != "." && dir != "/" && dir != ""; dir = path.Dir(dir) {
		if storage.SkipSegment(path.Base(dir)) {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its non-hidden subdirectories to the
// watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != root && storage.SkipSegment(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(p)
	})
}
