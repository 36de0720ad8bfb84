// Package factory is the HTTP client for the pizza fulfillment API.
//
// Every call is reported to a Tracker: TrackFactoryRequest after any
// response, and TrackFactoryError for non-2xx responses and transport
// failures (status 500 when no response arrived).
package factory

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel/trace"

	"pizza-hq/pizzeria/pkg/config"
	"pizza-hq/pizzeria/pkg/telemetry/tracing"
)

// ErrDisabled is returned by Do when no factory URL is configured.
var ErrDisabled = errors.New("factory client disabled")

// Tracker receives per-call instrumentation.
type Tracker interface {
	TrackFactoryRequest(endpoint, method string, status int, duration time.Duration)
	TrackFactoryError(endpoint, method string, status int)
}

// Error is a failed factory call.
type Error struct {
	Endpoint string
	Method   string
	Status   int
	Message  string
}

func (e *Error) Error() string {
	return fmt.Sprintf("factory service error: %s %s: %d %s", e.Method, e.Endpoint, e.Status, e.Message)
}

// Client calls the factory API with a bearer API key.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	tracker Tracker
	tracer  *tracing.Tracer
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client. Its timeout is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithTracer records a client span per call and propagates trace context
// to the factory.
func WithTracer(t *tracing.Tracer) Option {
	return func(c *Client) { c.tracer = t }
}

// WithClock overrides the time source used for call durations.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// New creates a client for cfg. tracker may be nil.
func New(cfg config.FactoryConfig, tracker Tracker, opts ...Option) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = config.DefaultFactoryTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: timeout},
		tracker: tracker,
		logger:  slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "factory")
	return c
}

// Enabled reports whether a factory URL is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != ""
}

// Do sends a JSON request to endpoint and decodes the JSON response into out
// (if non-nil). Non-2xx responses return *Error.
func (c *Client) Do(ctx context.Context, method, endpoint string, body, out any) (err error) {
	if !c.Enabled() {
		return ErrDisabled
	}

	ctx, span := c.tracer.Start(ctx, "factory "+method, trace.WithSpanKind(trace.SpanKindClient))
	status := 0
	defer func() {
		tracing.SetFactoryAttributes(span, method, c.baseURL, endpoint, status)
		tracing.SetError(span, err)
		span.End()
	}()

	var reader io.Reader
	if body != nil && (method == http.MethodPost || method == http.MethodPut) {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode factory request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("build factory request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	tracing.Inject(ctx, req.Header)

	c.logger.Info("factory request", "endpoint", endpoint, "method", method, "request", sanitize(body))

	start := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.trackError(endpoint, method, http.StatusInternalServerError)
		c.logger.Error("factory request failed", "endpoint", endpoint, "method", method, "status", http.StatusInternalServerError, "error", err)
		return fmt.Errorf("factory request %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()
	status = resp.StatusCode

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	duration := c.now().Sub(start)
	if c.tracker != nil {
		c.tracker.TrackFactoryRequest(endpoint, method, resp.StatusCode, duration)
	}

	var decoded any
	_ = json.Unmarshal(raw, &decoded)
	c.logger.Info("factory response",
		"endpoint", endpoint,
		"method", method,
		"status", resp.StatusCode,
		"duration_ms", duration.Milliseconds(),
		"response", sanitize(decoded))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		ferr := &Error{Endpoint: endpoint, Method: method, Status: resp.StatusCode, Message: message(decoded)}
		c.trackError(endpoint, method, resp.StatusCode)
		c.logger.Error("factory call rejected", "endpoint", endpoint, "method", method, "status", resp.StatusCode, "error", ferr.Message)
		return ferr
	}
	if readErr != nil {
		c.trackError(endpoint, method, resp.StatusCode)
		return fmt.Errorf("read factory response: %w", readErr)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			c.trackError(endpoint, method, resp.StatusCode)
			return fmt.Errorf("decode factory response: %w", err)
		}
	}
	return nil
}

func (c *Client) trackError(endpoint, method string, status int) {
	if c.tracker != nil {
		c.tracker.TrackFactoryError(endpoint, method, status)
	}
}

func message(v any) string {
	if m, ok := v.(map[string]any); ok {
		if s, ok := m["message"].(string); ok {
			return s
		}
	}
	return "Unknown error"
}

// sanitize returns a JSON-shaped copy of v with password fields masked.
func sanitize(v any) any {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	var generic any
	if err := json.Unmarshal(data, &generic); err != nil {
		return nil
	}
	maskPasswords(generic)
	out, _ := json.Marshal(generic)
	return string(out)
}

func maskPasswords(v any) {
	switch t := v.(type) {
	case map[string]any:
		for k, val := range t {
			if strings.Contains(strings.ToLower(k), "password") {
				t[k] = "*****"
				continue
			}
			maskPasswords(val)
		}
	case []any:
		for _, val := range t {
			maskPasswords(val)
		}
	}
}

// BaseURL returns the configured factory URL without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}
