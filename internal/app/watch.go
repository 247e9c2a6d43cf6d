package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/yangreactor/internal/ctxlog"
	"github.com/specialistvlad/yangreactor/internal/effective"
)

// DefaultDebounce is how long Watch waits for changes to settle.
const DefaultDebounce = 250 * time.Millisecond

// WatchResult is the outcome of one resolution in watch mode.
type WatchResult struct {
	Changed []string // files that triggered the resolution; empty for the first one
	Model   *effective.SchemaContext
	Err     error
}

// Watch resolves the sources, then resolves them again every time files
// under the configured paths change, until ctx is cancelled. Each result is
// passed to onResult. The health check server, when configured, runs for the
// duration of the watch and reports readiness from the last result.
func (a *App) Watch(ctx context.Context, debounce time.Duration, onResult func(WatchResult)) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	if err := a.startHealthCheckServer(); err != nil {
		return err
	}
	defer a.closeHealthCheckServer()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	for _, p := range a.config.Paths {
		root, err := watchRoot(p)
		if err != nil {
			return err
		}
		if err := addWatchRecursive(watcher, root); err != nil {
			return fmt.Errorf("failed to watch %s: %w", root, err)
		}
	}

	resolve := func(changed []string) {
		sc, err := a.Resolve(ctx)
		if ctx.Err() != nil {
			return
		}
		onResult(WatchResult{Changed: changed, Model: sc, Err: err})
	}
	resolve(nil)

	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			a.logger.Debug("Watch stopped.")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			path := filepath.Clean(event.Name)
			if ignoredWatchPath(path) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, statErr := os.Stat(path); statErr == nil && info.IsDir() {
					_ = addWatchRecursive(watcher, path)
				}
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			a.logger.Debug("Source change detected.", "path", path, "op", event.Op.String())
			pending[path] = true
			timer.Reset(debounce)
		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				if p != "" {
					changed = append(changed, p)
				}
			}
			slices.Sort(changed)
			clear(pending)
			resolve(changed)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			if errors.Is(watchErr, fsnotify.ErrEventOverflow) {
				a.logger.Warn("File watcher overflowed, resolving again.")
				// An empty path forces a resolution without naming a file.
				pending[""] = true
				timer.Reset(debounce)
				continue
			}
			return fmt.Errorf("file watcher failed: %w", watchErr)
		}
	}
}

// watchRoot returns the directory to watch for path: the path itself for a
// directory, its parent for a file.
func watchRoot(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot watch %s: %w", path, err)
	}
	if info.IsDir() {
		return abs, nil
	}
	return filepath.Dir(abs), nil
}

func addWatchRecursive(watcher *fsnotify.Watcher, root string) error {
	root = filepath.Clean(root)
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !entry.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// ignoredWatchPath filters editor swap files and other noise.
func ignoredWatchPath(path string) bool {
	base := filepath.Base(path)
	return base == ".DS_Store" ||
		strings.HasSuffix(base, ".swp") ||
		strings.HasSuffix(base, ".swx") ||
		strings.HasSuffix(base, "~") ||
		strings.HasPrefix(base, ".#")
}
