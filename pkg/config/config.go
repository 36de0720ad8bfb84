package config

import "time"

// Config is the root configuration structure for the pizzeria service.
type Config struct {
	// Server contains HTTP listener configuration.
	Server ServerConfig `yaml:"server"`

	// Auth contains token issuance settings.
	Auth AuthConfig `yaml:"auth"`

	// Database contains the relational store settings.
	Database DatabaseConfig `yaml:"database"`

	// Factory contains the fulfillment API client settings.
	Factory FactoryConfig `yaml:"factory"`

	// Metrics contains the metrics engine and collector settings.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains distributed tracing settings.
	Tracing TracingConfig `yaml:"tracing"`

	// Logging contains process logger settings.
	Logging LoggingConfig `yaml:"logging"`

	// Watch reloads the collector settings when the configuration file
	// changes on disk.
	// Default: false
	Watch bool `yaml:"watch"`
}

// ServerConfig contains configuration for the HTTP server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Default: "0.0.0.0:3000"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response.
	// Default: 30s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the keep-alive idle timeout.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// RequestTimeout bounds the handling of a single API request.
	// Default: 30s
	RequestTimeout time.Duration `yaml:"request_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are sent.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins lists allowed origins. ["*"] reflects any origin.
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods lists allowed methods.
	// Default: ["GET", "POST", "PUT", "DELETE", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders lists allowed request headers.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`

	// MaxAge is the preflight cache lifetime in seconds.
	// Default: 3600
	MaxAge int `yaml:"max_age"`
}

// AuthConfig contains JWT settings.
type AuthConfig struct {
	// JWTSecret signs issued tokens. Required.
	JWTSecret string `yaml:"jwt_secret"`

	// Issuer is the "iss" claim of issued tokens.
	// Default: "pizzeria"
	Issuer string `yaml:"issuer"`

	// TokenTTL is the lifetime of an issued token.
	// Default: 24h
	TokenTTL time.Duration `yaml:"token_ttl"`

	// AdminName, AdminEmail and AdminPassword seed an administrator account
	// on first start when all three are set.
	AdminName     string `yaml:"admin_name"`
	AdminEmail    string `yaml:"admin_email"`
	AdminPassword string `yaml:"admin_password"`
}

// DatabaseConfig contains SQLite settings.
type DatabaseConfig struct {
	// Path is the SQLite database file. ":memory:" keeps it in memory.
	// Default: "data/pizzeria.db"
	Path string `yaml:"path"`

	// MaxOpenConns caps the connection pool. It is also reported as the
	// db_pool_size gauge.
	// Default: 10
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns caps idle connections.
	// Default: 5
	MaxIdleConns int `yaml:"max_idle_conns"`

	// BusyTimeout is the SQLite busy timeout.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`

	// WALMode enables write-ahead logging.
	// Default: true
	WALMode bool `yaml:"wal_mode"`
}

// FactoryConfig contains fulfillment API settings.
type FactoryConfig struct {
	// URL is the base URL of the fulfillment API. Orders are not forwarded
	// when unset.
	URL string `yaml:"url"`

	// APIKey is sent as a bearer token.
	APIKey string `yaml:"api_key"`

	// Timeout bounds each call.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// MetricsConfig contains the metrics engine settings.
type MetricsConfig struct {
	// Enabled turns the periodic flush on. The summary and Prometheus
	// endpoints are served either way.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// FlushInterval is the rollover and publish period.
	// Default: 5s
	FlushInterval time.Duration `yaml:"flush_interval"`

	// CollectorURL is the OTLP/HTTP JSON endpoint. Publishing is disabled
	// when it or Credential is empty.
	CollectorURL string `yaml:"collector_url"`

	// Credential authenticates pushes to the collector.
	Credential string `yaml:"credential"`

	// AuthMode is "basic" or "bearer".
	// Default: "basic"
	AuthMode string `yaml:"auth_mode"`

	// Source is the service.name resource attribute.
	// Default: "pizzeria"
	Source string `yaml:"source"`

	// PushTimeout bounds a single push.
	// Default: 10s
	PushTimeout time.Duration `yaml:"push_timeout"`

	// PrometheusPath is where the scrape endpoint is mounted.
	// Default: "/metrics"
	PrometheusPath string `yaml:"prometheus_path"`

	// Namespace prefixes Prometheus series.
	// Default: "pizzeria"
	Namespace string `yaml:"namespace"`

	// SummaryTopN is how many endpoints the summary lists.
	// Default: 5
	SummaryTopN int `yaml:"summary_top_n"`

	// SessionTTL is the inactivity window of the active-user gauge.
	// Default: 15m
	SessionTTL time.Duration `yaml:"session_ttl"`

	// SlowQueryThreshold flags slow database queries.
	// Default: 300ms
	SlowQueryThreshold time.Duration `yaml:"slow_query_threshold"`
}

// TracingConfig contains distributed tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are recorded and exported.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Sampler determines the sampling strategy.
	// Options: "always", "never", "ratio"
	// Default: "ratio"
	Sampler string `yaml:"sampler"`

	// SampleRatio is the fraction of root traces to sample (0.0 to 1.0).
	// Only used when Sampler is "ratio".
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Endpoint is the OTLP gRPC collector address, e.g. "localhost:4317".
	// Required when tracing is enabled.
	Endpoint string `yaml:"endpoint"`

	// Insecure disables TLS on the collector connection.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// ExportTimeout bounds a single span batch export.
	// Default: 10s
	ExportTimeout time.Duration `yaml:"export_timeout"`

	// ServiceName is the service.name resource attribute on spans.
	// Default: "pizzeria"
	ServiceName string `yaml:"service_name"`
}

// LoggingConfig contains process logger settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format is "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource adds file:line to each record.
	// Default: false
	AddSource bool `yaml:"add_source"`

	// Redact masks credentials and emails in log attributes.
	// Default: true
	Redact bool `yaml:"redact"`
}
