package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Has reports whether a field failed validation.
func (e ValidationError) Has(field string) bool {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return true
		}
	}
	return false
}

// Validate validates the entire configuration. All validation errors are
// collected and returned together as a ValidationError.
//
// A missing collector URL or credential is not an error: the publisher
// runs disabled.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateAuth(&cfg.Auth)...)
	errs = append(errs, validateDatabase(&cfg.Database)...)
	errs = append(errs, validateFactory(&cfg.Factory)...)
	errs = append(errs, validateMetrics(&cfg.Metrics)...)
	errs = append(errs, validateTracing(&cfg.Tracing)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{Field: "server.listen_address", Message: "listen address is required"})
	}
	timeouts := []struct {
		field string
		d     time.Duration
	}{
		{"server.read_timeout", cfg.ReadTimeout},
		{"server.write_timeout", cfg.WriteTimeout},
		{"server.idle_timeout", cfg.IdleTimeout},
		{"server.shutdown_timeout", cfg.ShutdownTimeout},
		{"server.request_timeout", cfg.RequestTimeout},
	}
	for _, t := range timeouts {
		if t.d < 0 {
			errs = append(errs, FieldError{Field: t.field, Message: "timeout must be positive"})
		}
	}
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{Field: "server.max_header_bytes", Message: "max header bytes must be non-negative"})
	}
	if cfg.CORS.MaxAge < 0 {
		errs = append(errs, FieldError{Field: "server.cors.max_age", Message: "max age must be non-negative"})
	}
	return errs
}

func validateAuth(cfg *AuthConfig) []FieldError {
	var errs []FieldError

	if cfg.JWTSecret == "" {
		errs = append(errs, FieldError{Field: "auth.jwt_secret", Message: "jwt secret is required"})
	} else if len(cfg.JWTSecret) < 16 {
		errs = append(errs, FieldError{Field: "auth.jwt_secret", Message: "jwt secret must be at least 16 characters"})
	}
	if cfg.TokenTTL <= 0 {
		errs = append(errs, FieldError{Field: "auth.token_ttl", Message: "token ttl must be positive"})
	}

	set := 0
	for _, v := range []string{cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		errs = append(errs, FieldError{Field: "auth.admin_email", Message: "admin_name, admin_email and admin_password must be set together"})
	}
	return errs
}

func validateDatabase(cfg *DatabaseConfig) []FieldError {
	var errs []FieldError

	if cfg.Path == "" {
		errs = append(errs, FieldError{Field: "database.path", Message: "database path is required"})
	}
	if cfg.MaxOpenConns < 1 {
		errs = append(errs, FieldError{Field: "database.max_open_conns", Message: "max open connections must be at least 1"})
	}
	if cfg.MaxIdleConns < 0 {
		errs = append(errs, FieldError{Field: "database.max_idle_conns", Message: "max idle connections must be non-negative"})
	}
	if cfg.MaxIdleConns > cfg.MaxOpenConns {
		errs = append(errs, FieldError{Field: "database.max_idle_conns", Message: "max idle connections cannot exceed max open connections"})
	}
	if cfg.BusyTimeout < 0 {
		errs = append(errs, FieldError{Field: "database.busy_timeout", Message: "busy timeout must be positive"})
	}
	return errs
}

func validateFactory(cfg *FactoryConfig) []FieldError {
	var errs []FieldError

	if cfg.URL != "" {
		if err := validateHTTPURL(cfg.URL); err != nil {
			errs = append(errs, FieldError{Field: "factory.url", Message: err.Error()})
		}
	}
	if cfg.Timeout <= 0 {
		errs = append(errs, FieldError{Field: "factory.timeout", Message: "timeout must be positive"})
	}
	return errs
}

func validateMetrics(cfg *MetricsConfig) []FieldError {
	var errs []FieldError

	if cfg.FlushInterval < time.Second {
		errs = append(errs, FieldError{Field: "metrics.flush_interval", Message: "flush interval must be at least 1s"})
	}
	if cfg.CollectorURL != "" {
		if err := validateHTTPURL(cfg.CollectorURL); err != nil {
			errs = append(errs, FieldError{Field: "metrics.collector_url", Message: err.Error()})
		}
	}
	switch strings.ToLower(cfg.AuthMode) {
	case "basic", "bearer":
	default:
		errs = append(errs, FieldError{
			Field:   "metrics.auth_mode",
			Message: fmt.Sprintf("invalid auth mode %q (must be basic or bearer)", cfg.AuthMode),
		})
	}
	if !strings.HasPrefix(cfg.PrometheusPath, "/") {
		errs = append(errs, FieldError{Field: "metrics.prometheus_path", Message: "path must start with /"})
	}
	if cfg.SummaryTopN < 1 {
		errs = append(errs, FieldError{Field: "metrics.summary_top_n", Message: "must be at least 1"})
	}
	if cfg.SessionTTL <= 0 {
		errs = append(errs, FieldError{Field: "metrics.session_ttl", Message: "session ttl must be positive"})
	}
	if cfg.SlowQueryThreshold <= 0 {
		errs = append(errs, FieldError{Field: "metrics.slow_query_threshold", Message: "threshold must be positive"})
	}
	if cfg.PushTimeout <= 0 {
		errs = append(errs, FieldError{Field: "metrics.push_timeout", Message: "push timeout must be positive"})
	}
	return errs
}

func validateTracing(cfg *TracingConfig) []FieldError {
	var errs []FieldError

	if cfg.Enabled && cfg.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	switch cfg.Sampler {
	case "always", "never", "ratio":
	default:
		errs = append(errs, FieldError{
			Field:   "tracing.sampler",
			Message: fmt.Sprintf("invalid sampler %q (must be always, never, or ratio)", cfg.Sampler),
		})
	}
	if cfg.SampleRatio < 0 || cfg.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("invalid log level %q (must be debug, info, warn, or error)", cfg.Level),
		})
	}
	switch strings.ToLower(cfg.Format) {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("invalid log format %q (must be json or text)", cfg.Format),
		})
	}
	return errs
}

func validateHTTPURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("URL must include a host")
	}
	return nil
}
