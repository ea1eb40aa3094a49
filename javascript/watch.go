package javascript

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-logr/logr"
	"github.com/pkg/errors"
)

// Watch calls rebuild whenever a file under dirs changes, until ctx is done.
// Bursts of events within debounce are collapsed into one rebuild.
func Watch(ctx context.Context, dirs []string, debounce time.Duration, rebuild func() error, log logr.Logger) error {
	watcher, err := newWatcher(dirs)
	if err != nil {
		return err
	}
	defer watcher.Close()

	return watchLoop(ctx, watcher, debounce, rebuild, log)
}

func newWatcher(dirs []string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "create watcher")
	}
	for _, dir := range dirs {
		if err := watchRecursive(watcher, dir); err != nil {
			watcher.Close()
			return nil, err
		}
	}
	return watcher, nil
}

func watchLoop(ctx context.Context, watcher *fsnotify.Watcher, debounce time.Duration, rebuild func() error, log logr.Logger) error {
	var pending <-chan time.Time
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ignored(event.Name) {
				continue
			}
			log.V(1).Info("fsnotify event", "path", event.Name, "op", event.Op.String())
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := watchRecursive(watcher, event.Name); err != nil {
						log.Error(err, "watching new directory", "path", event.Name)
					}
				}
			}
			pending = time.After(debounce)
		case <-pending:
			pending = nil
			if err := rebuild(); err != nil {
				log.Error(err, "rebuild failed")
				continue
			}
			log.Info("rebuilt bundle")
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Error(err, "watcher error")
		case <-ctx.Done():
			return nil
		}
	}
}

func watchRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && ignored(path) {
			return filepath.SkipDir
		}
		return errors.Wrapf(watcher.Add(path), "watch %s", path)
	})
}

func ignored(path string) bool {
	base := filepath.Base(path)
	return base == "node_modules" || (strings.HasPrefix(base, ".") && base != ".")
}
