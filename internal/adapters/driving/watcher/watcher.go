// Package watcher reloads the catalog when its dataset files change.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/wikirec/internal/core/ports/driving"
	"github.com/custodia-labs/wikirec/internal/logger"
)

// DefaultDebounce is how long the files must stay quiet before a reload.
const DefaultDebounce = 2 * time.Second

// ErrNoFiles is returned when there is nothing to watch.
var ErrNoFiles = errors.New("watcher: no files to watch")

// Watcher triggers a catalog reload after writes to the watched files
// settle. Parent directories are watched so that files replaced by
// rename are still seen.
type Watcher struct {
	catalog  driving.CatalogService
	files    map[string]struct{}
	debounce time.Duration
	fsw      *fsnotify.Watcher
}

// New watches paths on behalf of catalog. A non-positive debounce uses
// DefaultDebounce.
func New(catalog driving.CatalogService, paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoFiles
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	w := &Watcher{
		catalog:  catalog,
		files:    make(map[string]struct{}, len(paths)),
		debounce: debounce,
		fsw:      fsw,
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			fsw.Close() //nolint:errcheck
			return nil, fmt.Errorf("resolve %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close() //nolint:errcheck
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return w, nil
}

// Run blocks until ctx is cancelled, reloading the catalog once per burst
// of changes. Failed reloads are logged and the previous catalog stays.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close() //nolint:errcheck

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
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			logger.Debug("dataset change: %s %s", ev.Op, ev.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("dataset watcher: %v", err)

		case <-fire:
			fire = nil
			logger.Info("dataset changed, reloading catalog")
			if err := w.catalog.Reload(ctx); err != nil {
				logger.Warn("catalog reload failed: %v", err)
			}
		}
	}
}

// relevant reports whether ev touches a watched file in a way that can
// change its content.
func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Rename) {
		return false
	}
	_, ok := w.files[filepath.Clean(ev.Name)]
	return ok
}
