package yamlfile

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"workspacemanager/internal/domain/models"
)

// Watch reloads settings files edited by other programs until ctx is done.
// Directories are watched rather than files so rename-based saves are seen;
// missing directories are created so a fresh workspace is watched too.
func (s *Store) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create settings watcher: %w", err)
	}

	byPath := make(map[string]models.Scope, len(s.paths))
	for scope, path := range s.paths {
		byPath[path] = scope
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			watcher.Close()
			return fmt.Errorf("create settings directory: %w", err)
		}
		if err := watcher.Add(filepath.Dir(path)); err != nil {
			watcher.Close()
			return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				scope, tracked := byPath[event.Name]
				if !tracked || !event.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) {
					continue
				}
				if err := s.Reload(scope); err != nil {
					s.logger.Warn("settings reload failed", "path", event.Name, "error", err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				s.logger.Warn("settings watcher error", "error", err)
			}
		}
	}()
	return nil
}
