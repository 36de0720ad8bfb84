package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounceInterval coalesces bursts of file events into one reload.
const DefaultDebounceInterval = 200 * time.Millisecond

// Watcher reloads a configuration file when it changes on disk and hands
// each successfully validated result to a callback. A reload that fails to
// parse or validate is logged and the previous configuration stays in
// effect.
type Watcher struct {
	path     string
	load     func(string) (*Config, error)
	logger   *slog.Logger
	debounce *Debouncer

	mu      sync.Mutex
	running bool
	current *Config
}

// NewWatcher creates a watcher for path. load defaults to
// LoadConfigWithEnvOverrides.
func NewWatcher(path string, current *Config, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		path:     path,
		load:     LoadConfigWithEnvOverrides,
		logger:   logger.With("component", "config.watcher"),
		debounce: NewDebouncer(DefaultDebounceInterval),
		current:  current,
	}
}

// Current returns the most recently applied configuration.
func (w *Watcher) Current() *Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Watch blocks until ctx is cancelled, calling onChange after each
// successful reload. The parent directory is watched so editors that
// replace the file by rename are handled.
func (w *Watcher) Watch(ctx context.Context, onChange func(*Config)) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	defer func() {
		w.debounce.Stop()
		_ = fw.Close()
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("resolve %q: %w", w.path, err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %q: %w", filepath.Dir(abs), err)
	}
	w.logger.Info("config watcher started", "path", abs)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("config watcher stopped")
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != abs || event.Op == fsnotify.Chmod {
				continue
			}
			w.logger.Debug("config file event", "op", event.Op.String())
			w.debounce.Trigger(func() { w.reload(onChange) })

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("config watcher error", "error", err)
		}
	}
}

func (w *Watcher) reload(onChange func(*Config)) {
	cfg, err := w.load(w.path)
	if err != nil {
		w.logger.Error("config reload failed, keeping previous configuration", "error", err)
		return
	}
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()

	w.logger.Info("configuration reloaded", "path", w.path)
	onChange(cfg)
}

// Debouncer runs the most recently triggered callback once no new trigger
// has arrived for the interval.
type Debouncer struct {
	interval time.Duration
	timer    *time.Timer
	mu       sync.Mutex
	callback func()
	stopped  bool
}

// NewDebouncer creates a new debouncer.
func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

// Trigger schedules callback, replacing any pending one.
func (d *Debouncer) Trigger(callback func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.callback = callback
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		cb := d.callback
		stopped := d.stopped
		d.mu.Unlock()

		if cb != nil && !stopped {
			cb()
		}
	})
}

// Stop cancels any pending callback. Later triggers are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.callback = nil
}
