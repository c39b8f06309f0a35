package structure

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// reloadDebounce coalesces editor write bursts into a single reload.
const reloadDebounce = 500 * time.Millisecond

// Watcher re-parses a structure document whenever it changes on disk,
// invalidating the cache entry first so the reload never serves a stale
// model.
type Watcher struct {
	cache  *Cache
	logger zerolog.Logger
}

// NewWatcher creates a watcher around the given cache.
func NewWatcher(cache *Cache, logger zerolog.Logger) *Watcher {
	return &Watcher{
		cache:  cache,
		logger: logger.With().Str("component", "structure-watcher").Logger(),
	}
}

// Watch blocks until ctx is cancelled, invoking onReload with the fresh
// model (or the pipeline error) after each change to the document. The
// containing directory is watched rather than the file itself, so
// atomic-rename saves keep working.
func (w *Watcher) Watch(ctx context.Context, docPath string, onReload func(*Model, error)) error {
	abs, err := filepath.Abs(docPath)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}

	w.logger.Info().Str("document", abs).Msg("watching structure document")

	var reloadTimer *time.Timer
	defer func() {
		if reloadTimer != nil {
			reloadTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}

			w.logger.Debug().
				Str("document", abs).
				Str("op", event.Op.String()).
				Msg("structure document changed")

			w.cache.Invalidate(abs)

			if reloadTimer != nil {
				reloadTimer.Stop()
			}
			reloadTimer = time.AfterFunc(reloadDebounce, func() {
				model, err := w.cache.GetOrParse(abs)
				onReload(model, err)
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn().Err(err).Msg("watch error")
		}
	}
}
