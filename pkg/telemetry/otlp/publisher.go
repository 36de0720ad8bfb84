package otlp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"pizza-hq/pizzeria/pkg/config"
	"pizza-hq/pizzeria/pkg/telemetry/metrics"
)

// AuthMode selects the Authorization scheme sent to the collector.
type AuthMode string

const (
	// AuthBasic sends "Basic base64(credential)". The credential is
	// usually "instanceID:apiKey".
	AuthBasic AuthMode = "basic"

	// AuthBearer sends "Bearer credential".
	AuthBearer AuthMode = "bearer"
)

// DefaultSource is the service.name attribute used when none is configured.
const DefaultSource = "pizzeria"

// DefaultTimeout bounds a single push.
const DefaultTimeout = 10 * time.Second

// Config holds collector connection settings.
type Config struct {
	URL        string
	Credential string
	AuthMode   AuthMode
	Source     string
	Timeout    time.Duration
}

// Enabled reports whether both a URL and a credential are configured.
func (c Config) Enabled() bool {
	return c.URL != "" && c.Credential != ""
}

// FromConfig converts the metrics section of the service configuration.
func FromConfig(cfg config.MetricsConfig) Config {
	return Config{
		URL:        cfg.CollectorURL,
		Credential: cfg.Credential,
		AuthMode:   AuthMode(cfg.AuthMode),
		Source:     cfg.Source,
		Timeout:    cfg.PushTimeout,
	}
}

// ErrDisabled is returned by Send when no collector is configured.
var ErrDisabled = errors.New("otlp: collector not configured")

// Publisher pushes samples to the collector. Every Publish is an
// independent fire-and-forget request: failures are logged, never retried,
// and never block the caller.
type Publisher struct {
	mu     sync.RWMutex
	cfg    Config
	closed bool
	client *http.Client

	logger *slog.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithHTTPClient sets the client used for pushes.
func WithHTTPClient(c *http.Client) Option {
	return func(p *Publisher) { p.client = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Publisher) { p.logger = l }
}

// WithClock sets the time source for data point timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Publisher) { p.now = now }
}

// NewPublisher creates a Publisher. A Config without URL or credential
// yields a disabled publisher that drops every sample.
func NewPublisher(cfg Config, opts ...Option) *Publisher {
	p := &Publisher{
		cfg:    normalize(cfg),
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.client == nil {
		p.client = &http.Client{}
	}
	p.logger = p.logger.With("component", "otlp")
	if !p.cfg.Enabled() {
		p.logger.Info("collector not configured, publishing disabled")
	}
	return p
}

func normalize(cfg Config) Config {
	if cfg.AuthMode == "" {
		cfg.AuthMode = AuthBasic
	}
	if cfg.Source == "" {
		cfg.Source = DefaultSource
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return cfg
}

// Update swaps the collector settings. In-flight pushes keep the settings
// they started with.
func (p *Publisher) Update(cfg Config) {
	cfg = normalize(cfg)
	p.mu.Lock()
	was := p.cfg.Enabled()
	p.cfg = cfg
	p.mu.Unlock()

	if was != cfg.Enabled() {
		p.logger.Info("collector configuration changed", "enabled", cfg.Enabled(), "url", cfg.URL)
	}
}

// Config returns the current settings.
func (p *Publisher) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cfg
}

// Enabled reports whether samples are currently being sent.
func (p *Publisher) Enabled() bool {
	return p.Config().Enabled()
}

// Publish sends one sample in the background.
func (p *Publisher) Publish(name string, value float64, kind metrics.Kind, unit string) {
	p.Push(metrics.Sample{Name: name, Value: value, Kind: kind, Unit: unit})
}

// Push implements metrics.Sink. Samples pushed after Close are dropped.
func (p *Publisher) Push(s metrics.Sample) {
	p.mu.RLock()
	cfg := p.cfg
	if p.closed || !cfg.Enabled() {
		p.mu.RUnlock()
		return
	}
	// Add under the lock so Close cannot start waiting in between.
	p.wg.Add(1)
	p.mu.RUnlock()

	at := p.now()
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
		defer cancel()
		if err := p.send(ctx, cfg, s, at); err != nil {
			p.logger.Warn("metric push failed", "metric", s.Name, "error", err)
		}
	}()
}

// Wait blocks until every in-flight push has finished.
func (p *Publisher) Wait() {
	p.wg.Wait()
}

// Close stops accepting pushes and waits for in-flight ones to finish.
func (p *Publisher) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

// Send pushes one sample synchronously.
func (p *Publisher) Send(ctx context.Context, s metrics.Sample) error {
	cfg := p.Config()
	if !cfg.Enabled() {
		return ErrDisabled
	}
	return p.send(ctx, cfg, s, p.now())
}

func (p *Publisher) send(ctx context.Context, cfg Config, s metrics.Sample, at time.Time) error {
	if math.IsNaN(s.Value) || math.IsInf(s.Value, 0) {
		return fmt.Errorf("metric %s: non-finite value %v", s.Name, s.Value)
	}
	body, err := json.Marshal(BuildPayload(cfg.Source, s, at))
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authorization(cfg))

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("collector returned %d: %s", resp.StatusCode, bytes.TrimSpace(text))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func authorization(cfg Config) string {
	if cfg.AuthMode == AuthBearer {
		return "Bearer " + cfg.Credential
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(cfg.Credential))
}
