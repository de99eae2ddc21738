package store

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dailyayah/dailyayah/internal/logging"
)

// Watch reloads the table when any source file changes on disk. Events are
// debounced so an editor writing three files triggers one rebuild, not
// three. Blocks until ctx is cancelled; watcher failures are logged and
// degrade to no auto-reload.
func (s *Store) Watch(ctx context.Context, debounce time.Duration) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	watched := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, path := range s.cfg.Sources.Paths() {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		watched[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	// Watch directories, not files: most editors replace files on save,
	// which drops a direct file watch.
	for dir := range dirs {
		if err := watcher.Add(dir); err != nil {
			logging.Warn("cannot watch data directory", "dir", dir, "error", err)
		}
	}
	logging.Info("watching source files for changes", "dirs", len(dirs))

	var timer *time.Timer
	var timerC <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				abs = event.Name
			}
			if !watched[abs] {
				continue
			}
			logging.Info("source file changed", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if err := s.Load(ctx, true); err != nil {
				logging.Error("auto-reload failed, keeping previous table", "error", err)
			} else {
				logging.Info("auto-reload complete", "verses", s.Len())
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Warn("file watcher error", "error", err)
		}
	}
}
