package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "0.0.0.0:3000"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 30 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultRequestTimeout  = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// CORS defaults
	DefaultCORSEnabled = true
	DefaultCORSMaxAge  = 3600

	// Auth defaults
	DefaultIssuer   = "pizzeria"
	DefaultTokenTTL = 24 * time.Hour

	// Database defaults
	DefaultDatabasePath    = "data/pizzeria.db"
	DefaultMaxOpenConns    = 10
	DefaultMaxIdleConns    = 5
	DefaultBusyTimeout     = 5 * time.Second
	DefaultDatabaseWALMode = true

	// Factory defaults
	DefaultFactoryTimeout = 10 * time.Second

	// Metrics defaults
	DefaultMetricsEnabled   = true
	DefaultFlushInterval    = 5 * time.Second
	DefaultAuthMode         = "basic"
	DefaultMetricsSource    = "pizzeria"
	DefaultPushTimeout      = 10 * time.Second
	DefaultPrometheusPath   = "/metrics"
	DefaultMetricsNamespace = "pizzeria"
	DefaultSummaryTopN      = 5
	DefaultSessionTTL       = 15 * time.Minute
	DefaultSlowQuery        = 300 * time.Millisecond

	// Tracing defaults
	DefaultTracingEnabled       = false
	DefaultTracingSampler       = "ratio"
	DefaultTracingSampleRatio   = 1.0
	DefaultTracingExportTimeout = 10 * time.Second
	DefaultTracingServiceName   = "pizzeria"

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultRedact    = true
)

var (
	DefaultCORSAllowedOrigins = []string{"*"}
	DefaultCORSAllowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	DefaultCORSAllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
)

// Defaults returns a configuration with every default applied. Files are
// decoded on top of it, so boolean fields keep their default when the key
// is absent.
func Defaults() *Config {
	cfg := &Config{
		Server:   ServerConfig{CORS: CORSConfig{Enabled: DefaultCORSEnabled}},
		Database: DatabaseConfig{WALMode: DefaultDatabaseWALMode},
		Metrics:  MetricsConfig{Enabled: DefaultMetricsEnabled},
		Logging:  LoggingConfig{Redact: DefaultRedact},
	}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills every zero-valued non-boolean field with its default.
func ApplyDefaults(cfg *Config) {
	s := &cfg.Server
	if s.ListenAddress == "" {
		s.ListenAddress = DefaultListenAddress
	}
	if s.ReadTimeout == 0 {
		s.ReadTimeout = DefaultReadTimeout
	}
	if s.WriteTimeout == 0 {
		s.WriteTimeout = DefaultWriteTimeout
	}
	if s.IdleTimeout == 0 {
		s.IdleTimeout = DefaultIdleTimeout
	}
	if s.ShutdownTimeout == 0 {
		s.ShutdownTimeout = DefaultShutdownTimeout
	}
	if s.RequestTimeout == 0 {
		s.RequestTimeout = DefaultRequestTimeout
	}
	if s.MaxHeaderBytes == 0 {
		s.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	applyCORSDefaults(&s.CORS)

	// Auth defaults
	if cfg.Auth.Issuer == "" {
		cfg.Auth.Issuer = DefaultIssuer
	}
	if cfg.Auth.TokenTTL == 0 {
		cfg.Auth.TokenTTL = DefaultTokenTTL
	}

	// Database defaults
	db := &cfg.Database
	if db.Path == "" {
		db.Path = DefaultDatabasePath
	}
	if db.MaxOpenConns == 0 {
		db.MaxOpenConns = DefaultMaxOpenConns
	}
	if db.MaxIdleConns == 0 {
		db.MaxIdleConns = DefaultMaxIdleConns
	}
	if db.BusyTimeout == 0 {
		db.BusyTimeout = DefaultBusyTimeout
	}

	if cfg.Factory.Timeout == 0 {
		cfg.Factory.Timeout = DefaultFactoryTimeout
	}

	applyMetricsDefaults(&cfg.Metrics)

	// Tracing defaults
	tr := &cfg.Tracing
	if tr.Sampler == "" {
		tr.Sampler = DefaultTracingSampler
	}
	if tr.SampleRatio == 0 {
		tr.SampleRatio = DefaultTracingSampleRatio
	}
	if tr.ExportTimeout == 0 {
		tr.ExportTimeout = DefaultTracingExportTimeout
	}
	if tr.ServiceName == "" {
		tr.ServiceName = DefaultTracingServiceName
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

func applyCORSDefaults(c *CORSConfig) {
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = append([]string(nil), DefaultCORSAllowedOrigins...)
	}
	if len(c.AllowedMethods) == 0 {
		c.AllowedMethods = append([]string(nil), DefaultCORSAllowedMethods...)
	}
	if len(c.AllowedHeaders) == 0 {
		c.AllowedHeaders = append([]string(nil), DefaultCORSAllowedHeaders...)
	}
	if c.MaxAge == 0 {
		c.MaxAge = DefaultCORSMaxAge
	}
}

func applyMetricsDefaults(m *MetricsConfig) {
	if m.FlushInterval == 0 {
		m.FlushInterval = DefaultFlushInterval
	}
	if m.AuthMode == "" {
		m.AuthMode = DefaultAuthMode
	}
	if m.Source == "" {
		m.Source = DefaultMetricsSource
	}
	if m.PushTimeout == 0 {
		m.PushTimeout = DefaultPushTimeout
	}
	if m.PrometheusPath == "" {
		m.PrometheusPath = DefaultPrometheusPath
	}
	if m.Namespace == "" {
		m.Namespace = DefaultMetricsNamespace
	}
	if m.SummaryTopN == 0 {
		m.SummaryTopN = DefaultSummaryTopN
	}
	if m.SessionTTL == 0 {
		m.SessionTTL = DefaultSessionTTL
	}
	if m.SlowQueryThreshold == 0 {
		m.SlowQueryThreshold = DefaultSlowQuery
	}
}
