// Package watcher keeps the index current while the server runs: file
// changes under the posts directory are debounced into full rebuilds.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/dagaz/internal/storage"
)

// Rebuilder triggers a full index rebuild.
type Rebuilder interface {
	RebuildAll() error
}

// ChangeCallback is called for every observed markdown change.
// kind is one of "created", "updated", "deleted".
type ChangeCallback func(kind, path string)

// Watch runs an fsnotify watcher on postsRoot until ctx is cancelled.
// Change bursts (editor saves, restores touching many files) are debounced
// into a single rebuild; cb (if non-nil) fires per observed change.
//
// New directories created at runtime are added to the watch list; renames
// are covered by the rebuild, which rescans the whole directory anyway.
func Watch(ctx context.Context, rb Rebuilder, postsRoot string, debounce time.Duration, logger *slog.Logger, cb ChangeCallback) error {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, postsRoot); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", postsRoot))

	var rebuildTimer *time.Timer
	var rebuildCh <-chan time.Time

	scheduleRebuild := func() {
		if rebuildTimer == nil {
			rebuildTimer = time.NewTimer(debounce)
			rebuildCh = rebuildTimer.C
		} else {
			rebuildTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if rebuildTimer != nil {
				rebuildTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-rebuildCh:
			if err := rb.RebuildAll(); err != nil {
				logger.Warn("watcher: rebuild failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			// New directories join the watch list immediately so posts
			// dropped into them are seen.
			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(ev.Name); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, ev.Name); addErr != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", addErr.Error()))
					}
					scheduleRebuild()
					continue
				}
			}

			if !storage.IsMarkdown(ev.Name) {
				continue
			}

			switch {
			case ev.Op&fsnotify.Create != 0:
				notify(cb, "created", ev.Name)
			case ev.Op&fsnotify.Write != 0:
				notify(cb, "updated", ev.Name)
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// A rename surfaces on the old path; the new path arrives
				// as a separate Create event. The rebuild reconciles both.
				notify(cb, "deleted", ev.Name)
			default:
				continue
			}
			scheduleRebuild()

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}

func notify(cb ChangeCallback, kind, path string) {
	if cb != nil {
		cb(kind, filepath.Base(path))
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
