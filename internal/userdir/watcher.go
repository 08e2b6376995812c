package userdir

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// EventCallback is called after a watcher-driven change.
// kind is one of "imported", "removed".
type EventCallback func(kind string, path string)

// Watch re-imports user files on create and write until ctx is cancelled.
// New directories are added to the watch list. Removed files are logged and
// left in the store, since users are never deleted from here.
func (d *Directory) Watch(ctx context.Context, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addDirsRecursive(w, d.root); err != nil {
		return err
	}
	d.logger.Info("userdir: watching", slog.String("root", d.root))

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("userdir: watcher stopped")
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			path := ev.Name

			if ev.Op&fsnotify.Create != 0 {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					if addErr := addDirsRecursive(w, path); addErr != nil {
						d.logger.Warn("userdir: add dir failed", slog.String("path", path), slog.String("error", addErr.Error()))
						continue
					}
					// Files may land before the watch is registered.
					if _, err := d.importTree(ctx, path); err != nil {
						d.logger.Warn("userdir: import dir failed", slog.String("path", path), slog.String("error", err.Error()))
					}
					if cb != nil {
						cb("imported", d.rel(path))
					}
					continue
				}
			}

			if !IsUserFile(path) {
				continue
			}
			rel := d.rel(path)

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				changed, impErr := d.importFile(ctx, path)
				if impErr != nil {
					d.logger.Warn("userdir: import failed", slog.String("path", rel), slog.String("error", impErr.Error()))
					continue
				}
				if changed && cb != nil {
					cb("imported", rel)
				}

			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				d.forget(path)
				d.logger.Info("userdir: file removed, user kept", slog.String("path", rel))
				if cb != nil {
					cb("removed", rel)
				}
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			d.logger.Error("userdir: watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addDirsRecursive adds root and all its subdirectories to the watcher.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			return w.Add(path)
		}
		return nil
	})
}
