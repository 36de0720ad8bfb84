package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer(t *testing.T) {
	d := NewDebouncer(50 * time.Millisecond)
	defer d.Stop()

	var calls atomic.Int32
	for i := 0; i < 5; i++ {
		d.Trigger(func() { calls.Add(1) })
		time.Sleep(5 * time.Millisecond)
	}
	time.Sleep(150 * time.Millisecond)

	if got := calls.Load(); got != 1 {
		t.Errorf("callbacks = %d, want 1", got)
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var calls atomic.Int32
	d.Trigger(func() { calls.Add(1) })
	d.Stop()
	d.Trigger(func() { calls.Add(1) })
	time.Sleep(60 * time.Millisecond)

	if got := calls.Load(); got != 0 {
		t.Errorf("callbacks after stop = %d, want 0", got)
	}
}

func TestWatcher_Reload(t *testing.T) {
	path := writeConfig(t, validYAML)
	initial, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}

	w := NewWatcher(path, initial, slog.New(slog.NewTextHandler(io.Discard, nil)))
	w.load = LoadConfig

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	errc := make(chan error, 1)
	go func() { errc <- w.Watch(ctx, func(c *Config) { changes <- c }) }()

	// Give the watcher time to register.
	time.Sleep(100 * time.Millisecond)

	// An invalid edit is rejected and the previous configuration stays.
	if err := os.WriteFile(path, []byte("auth:\n  jwt_secret: short\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	time.Sleep(400 * time.Millisecond)
	if w.Current() != initial {
		t.Fatal("invalid reload replaced the configuration")
	}

	updated := strings.Replace(validYAML, `credential: "123:key"`, `credential: "rotated"`, 1)
	if err := os.WriteFile(path, []byte(updated), 0o600); err != nil {
		t.Fatal(err)
	}

	select {
	case cfg := <-changes:
		if cfg.Metrics.Credential != "rotated" {
			t.Errorf("credential = %q, want rotated", cfg.Metrics.Credential)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no reload within 3s")
	}

	cancel()
	if err := <-errc; err != nil {
		t.Errorf("Watch() error = %v", err)
	}
}
