package metrics

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fakeSampler struct {
	cpu, mem float64
	err      error
}

func (f fakeSampler) SampleSystem() (float64, float64, error) {
	return f.cpu, f.mem, f.err
}

var errSampler = errors.New("sampler unavailable")

// recordingSink collects pushed samples.
type recordingSink struct {
	mu      sync.Mutex
	samples []Sample
}

func (r *recordingSink) Push(s Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.samples = append(r.samples, s)
}

func (r *recordingSink) byName(name string) []Sample {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Sample
	for _, s := range r.samples {
		if s.Name == name {
			out = append(out, s)
		}
	}
	return out
}

func newTestStore(t testing.TB) (*Store, *fakeClock, *recordingSink) {
	t.Helper()
	clock := newFakeClock()
	sink := &recordingSink{}
	s := NewStore(Options{
		Now:    clock.Now,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sink:   sink,
		System: fakeSampler{cpu: 12.5, mem: 40},
	})
	return s, clock, sink
}

func findSample(samples []Sample, name string) (Sample, bool) {
	for _, s := range samples {
		if s.Name == name {
			return s, true
		}
	}
	return Sample{}, false
}
