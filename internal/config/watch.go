package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce coalesces the event bursts editors emit on save.
const defaultDebounce = 500 * time.Millisecond

// Watcher reloads the configuration file when it changes on disk and hands
// each valid result to an apply callback. Invalid edits are logged and
// skipped; the previous configuration stays in effect.
type Watcher struct {
	path     string
	apply    func(*Config)
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher prepares a watcher for the given config path.
func NewWatcher(path string, apply func(*Config), logger *slog.Logger) *Watcher {
	if path == "" {
		path = DefaultPath
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		apply:    apply,
		logger:   logger,
		debounce: defaultDebounce,
	}
}

// Watch blocks until the context is canceled, applying debounced reloads.
func (w *Watcher) Watch(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory rather than the file: editors replace files on
	// save, which silently drops a watch registered on the file itself.
	dir := filepath.Dir(w.path)
	if err := fsw.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	w.logger.Info("watching configuration", "path", w.path)

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			timer.Reset(w.debounce)
			pending = timer.C

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("config watcher error", "error", err)

		case <-pending:
			pending = nil
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.Warn("config reload skipped", "error", err)
		return
	}
	w.logger.Info("configuration reloaded", "path", w.path)
	w.apply(cfg)
}
