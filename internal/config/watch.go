package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

const reloadDebounce = 250 * time.Millisecond

// Watcher reloads the config file whenever it changes on disk and hands the
// new value to OnChange. Invalid edits are logged and ignored.
type Watcher struct {
	path     string
	log      zerolog.Logger
	onChange func(*Config)
	delay    time.Duration
}

// NewWatcher creates a watcher for path (Path() when empty).
func NewWatcher(path string, log zerolog.Logger, onChange func(*Config)) *Watcher {
	if path == "" {
		path = Path()
	}
	return &Watcher{path: path, log: log, onChange: onChange, delay: reloadDebounce}
}

// Run blocks until ctx is done. The parent directory is watched rather than the
// file itself so editors that replace the file atomically are still seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.log.Debug().Str("path", w.path).Msg("watching config")

	schedule := debounce.New(w.delay)
	// Replace a pending reload with a no-op so nothing fires after Run returns.
	defer schedule(func() {})

	base := filepath.Base(w.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("config watcher closed")
			}
			if filepath.Base(ev.Name) != base {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				schedule(w.reload)
			}
		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("config watcher closed")
			}
			w.log.Warn().Err(err).Msg("config watch error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", w.path).Msg("config reload rejected; keeping previous")
		return
	}
	w.log.Info().Str("path", w.path).Msg("config reloaded")
	if w.onChange != nil {
		w.onChange(cfg)
	}
}
