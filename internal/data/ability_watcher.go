package data

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// reloadDebounce collapses the burst of events editors produce on save.
const reloadDebounce = 100 * time.Millisecond

// CatalogWatcher перезагружает каталог способностей при изменении файла.
// Running ability instances keep the definition they were created with.
type CatalogWatcher struct {
	path    string
	watcher *fsnotify.Watcher

	// onReload is called after every successful reload (tests, metrics).
	onReload func()
}

// NewCatalogWatcher watches the directory containing path. Watching the
// directory instead of the file survives editors that replace files on save.
func NewCatalogWatcher(path string, onReload func()) (*CatalogWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving catalog path %s: %w", path, err)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	return &CatalogWatcher{path: abs, watcher: w, onReload: onReload}, nil
}

// Run blocks until ctx is canceled, reloading the catalog on changes.
// A broken file is logged and the previous catalog stays active.
func (cw *CatalogWatcher) Run(ctx context.Context) error {
	defer cw.watcher.Close()

	slog.Info("ability catalog watcher started", "path", cw.path)

	// Reload fires once the file has been quiet for reloadDebounce.
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			slog.Info("ability catalog watcher stopping")
			return nil

		case event, ok := <-cw.watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(event.Name) != cw.path {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(reloadDebounce)
			} else {
				timer.Reset(reloadDebounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			cw.reload()

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("ability catalog watcher error", "error", err)
		}
	}
}

func (cw *CatalogWatcher) reload() {
	if err := LoadAbilities(cw.path); err != nil {
		slog.Warn("ability catalog reload failed, keeping previous", "path", cw.path, "error", err)
		return
	}
	if cw.onReload != nil {
		cw.onReload()
	}
}
