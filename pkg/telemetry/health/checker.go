package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"
)

// CheckFunc is a function that performs a health check for a component.
// It returns nil if the component is healthy, or an error describing the problem.
type CheckFunc func(ctx context.Context) error

// Check statuses.
const (
	StatusOK        = "ok"
	StatusUnhealthy = "unhealthy"
	StatusDisabled  = "disabled"
)

// Overall statuses.
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
)

// DefaultTimeout bounds a single check.
const DefaultTimeout = 5 * time.Second

var (
	// ErrDisabled marks a component that is not configured.
	ErrDisabled = errors.New("component disabled")

	// ErrCheckTimeout is reported when a check outlives its timeout.
	ErrCheckTimeout = errors.New("health check timeout")
)

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Status     string  `json:"status"`
	Message    string  `json:"message,omitempty"`
	DurationMs float64 `json:"durationMs"`
}

// Report is the aggregated readiness of every registered component.
type Report struct {
	Status    string                 `json:"status"`
	Checks    map[string]CheckResult `json:"checks"`
	Timestamp time.Time              `json:"timestamp"`
}

// Ready reports whether no enabled check failed.
func (r Report) Ready() bool {
	return r.Status == StatusReady
}

// Checker manages health checks for system components.
type Checker struct {
	mu      sync.RWMutex
	checks  map[string]CheckFunc
	timeout time.Duration
	now     func() time.Time
}

// New creates a checker. A zero timeout uses DefaultTimeout.
func New(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{
		checks:  make(map[string]CheckFunc),
		timeout: timeout,
		now:     time.Now,
	}
}

// RegisterCheck registers a health check function for a named component.
// If a check with the same name already exists, it will be replaced.
func (c *Checker) RegisterCheck(name string, check CheckFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// Names returns the registered component names, sorted.
func (c *Checker) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names := make([]string, 0, len(c.checks))
	for name := range c.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Check runs every registered check concurrently.
func (c *Checker) Check(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]CheckFunc, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	report := Report{
		Status: StatusReady,
		Checks: make(map[string]CheckResult, len(checks)),
	}
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for name, check := range checks {
		wg.Add(1)
		go func(name string, check CheckFunc) {
			defer wg.Done()
			result := c.run(ctx, check)

			mu.Lock()
			defer mu.Unlock()
			report.Checks[name] = result
			if result.Status == StatusUnhealthy {
				report.Status = StatusDegraded
			}
		}(name, check)
	}
	wg.Wait()

	report.Timestamp = c.now()
	return report
}

func (c *Checker) run(ctx context.Context, check CheckFunc) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	errChan := make(chan error, 1)
	go func() {
		errChan <- check(ctx)
	}()

	var err error
	select {
	case err = <-errChan:
	case <-ctx.Done():
		err = ErrCheckTimeout
	}

	result := CheckResult{DurationMs: float64(time.Since(start)) / float64(time.Millisecond)}
	switch {
	case err == nil:
		result.Status = StatusOK
	case errors.Is(err, ErrDisabled):
		result.Status = StatusDisabled
	default:
		result.Status = StatusUnhealthy
		result.Message = err.Error()
	}
	return result
}

// Handler serves the readiness report as JSON.
//
// Returns:
//   - 200 OK: every enabled component is healthy
//   - 503 Service Unavailable: at least one component failed
func (c *Checker) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Check(r.Context())

		status := http.StatusOK
		if !report.Ready() {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(report)
	}
}
