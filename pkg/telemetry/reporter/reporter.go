// Package reporter drives the periodic rollover and flush of the metrics
// store.
package reporter

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"pizza-hq/pizzeria/pkg/telemetry/metrics"
)

// DefaultInterval is the flush period.
const DefaultInterval = 5 * time.Second

// TickTolerance is how early a tick may read the clock relative to the
// previous one. cron fires on whole seconds, so consecutive ticks can be
// observed slightly less than one interval apart.
const TickTolerance = 250 * time.Millisecond

// RolloverInterval returns the rollover debounce to use with a reporter
// ticking every interval: the shorter of metrics.DefaultRolloverMinInterval
// and interval, less TickTolerance. Every scheduled tick then rolls, while a
// second rollover right after a tick is still suppressed.
func RolloverInterval(interval time.Duration) time.Duration {
	if interval <= 0 {
		interval = DefaultInterval
	}
	d := min(metrics.DefaultRolloverMinInterval, interval)
	if d <= 2*TickTolerance {
		return d / 2
	}
	return d - TickTolerance
}

// Publisher receives the samples of each flush.
type Publisher interface {
	Publish(name string, value float64, kind metrics.Kind, unit string)
}

// PoolSource reports database connection pool occupancy.
type PoolSource interface {
	PoolStats() (size, used, queue int)
}

// Reporter runs one tick per interval: roll the rate windows, recalculate
// active users, sample CPU and memory, record pool stats, then publish
// every exported sample.
type Reporter struct {
	store    *metrics.Store
	pub      Publisher
	pool     PoolSource
	interval time.Duration

	mu      sync.Mutex
	cron    *cron.Cron
	stopped chan struct{}
	logger  *slog.Logger
	running bool
}

// Options configures a Reporter.
type Options struct {
	Interval time.Duration
	Pool     PoolSource
	Logger   *slog.Logger
}

// New creates a Reporter. It does nothing until Start is called.
func New(store *metrics.Store, pub Publisher, opts Options) *Reporter {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Reporter{
		store:    store,
		pub:      pub,
		pool:     opts.Pool,
		interval: opts.Interval,
		logger:   opts.Logger.With("component", "telemetry.reporter"),
	}
}

func (r *Reporter) newCron() *cron.Cron {
	cl := cronLogger{r.logger}
	return cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
}

// Schedule returns the cron spec the reporter runs on.
func (r *Reporter) Schedule() string {
	return "@every " + r.interval.String()
}

// Start schedules the tick and stops it when ctx is cancelled. A stopped
// reporter may be started again.
func (r *Reporter) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return nil
	}
	c := r.newCron()
	if _, err := c.AddFunc(r.Schedule(), r.Tick); err != nil {
		return fmt.Errorf("failed to schedule metrics flush: %w", err)
	}
	c.Start()
	r.cron = c
	r.stopped = make(chan struct{})
	r.running = true
	r.logger.Info("metrics reporter started", "interval", r.interval)

	go func(stopped <-chan struct{}) {
		select {
		case <-ctx.Done():
			r.Stop()
		case <-stopped:
		}
	}(r.stopped)
	return nil
}

// Stop halts the schedule and waits for a running tick to finish.
func (r *Reporter) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	<-r.cron.Stop().Done()
	close(r.stopped)
	r.cron = nil
	r.running = false
	r.logger.Info("metrics reporter stopped")
}

// IsRunning reports whether the schedule is active.
func (r *Reporter) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Tick performs one rollover and flush. The store is read into a local
// slice before anything is published.
func (r *Reporter) Tick() {
	rolled := r.store.Roll()
	active := r.store.RecalculateActiveUsers()
	r.store.SampleSystem()
	if r.pool != nil {
		r.store.SetPoolStats(r.pool.PoolStats())
	}

	samples := r.store.ExportSamples()
	for _, s := range samples {
		r.pub.Publish(s.Name, s.Value, s.Kind, s.Unit)
	}
	r.logger.Debug("metrics flushed", "samples", len(samples), "rolled", rolled, "active_users", active)
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	l *slog.Logger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debug(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Error(msg, append([]interface{}{"error", err}, keysAndValues...)...)
}
