package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lexandro/codemap/config"
	"github.com/lexandro/codemap/watcher"
)

// DefaultRegistryDelay is the quiet period before a registry edit is applied.
const DefaultRegistryDelay = 500 * time.Millisecond

// WatchRegistry applies every change of the registry file at path to s
// until ctx is cancelled. The registry is saved by rename, so the watch is
// placed on its directory.
func WatchRegistry(ctx context.Context, path string, s *Supervisor, delay time.Duration, logger *slog.Logger) error {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watching registry: %w", err)
	}
	defer fsWatcher.Close()

	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching %s: %w", filepath.Dir(path), err)
	}

	debouncer := watcher.NewDebouncer(delay)
	defer debouncer.Stop()
	name := filepath.Base(path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fsWatcher.Events:
			if !ok {
				return nil
			}
			if filepath.Base(event.Name) == name {
				debouncer.Add(name)
			}

		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("registry watcher error", "error", err)

		case <-debouncer.Ready():
			if debouncer.Settle() == nil {
				continue
			}
			registry, err := config.LoadRegistry(path)
			if err != nil {
				logger.Error("failed to reload project registry", "path", path, "error", err)
				continue
			}
			if err := s.Sync(registry.Enabled()); err != nil {
				logger.Error("failed to apply project registry", "error", err)
			}
			logger.Info("applied project registry", "projects", len(s.Roots()))
		}
	}
}
