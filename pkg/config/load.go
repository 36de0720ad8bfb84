package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "PIZZERIA_"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. Environment variables are not consulted; use
// LoadConfigWithEnvOverrides for that.
func LoadConfig(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration %q: %w", path, err)
	}
	return cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and
// applies environment variable overrides named PIZZERIA_SECTION_FIELD
// (e.g. PIZZERIA_METRICS_COLLECTOR_URL). Environment variables always take
// precedence over the file.
//
// The loading sequence is:
// 1. Start from defaults
// 2. Decode YAML from file on top
// 3. Apply environment variable overrides
// 4. Validate final configuration
//
// A missing file is not an error when the environment supplies everything
// required; defaults and overrides are used alone.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := parseFile(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg, err = Defaults(), nil
	}
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg, os.Getenv)
	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration %q: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML from r on top of the defaults without validating.
func Parse(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return parse(data)
}

func parseFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}
	cfg, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}
	return cfg, nil
}

func parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, nil
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Values that do not parse are ignored.
func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	str := func(key string, dst *string) {
		if v := getenv(EnvPrefix + key); v != "" {
			*dst = v
		}
	}
	dur := func(key string, dst *time.Duration) {
		if v := getenv(EnvPrefix + key); v != "" {
			if d, err := time.ParseDuration(v); err == nil {
				*dst = d
			}
		}
	}
	num := func(key string, dst *int) {
		if v := getenv(EnvPrefix + key); v != "" {
			if i, err := strconv.Atoi(v); err == nil {
				*dst = i
			}
		}
	}
	flag := func(key string, dst *bool) {
		if v := getenv(EnvPrefix + key); v != "" {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}

	// Server overrides
	str("SERVER_LISTEN_ADDRESS", &cfg.Server.ListenAddress)
	dur("SERVER_READ_TIMEOUT", &cfg.Server.ReadTimeout)
	dur("SERVER_WRITE_TIMEOUT", &cfg.Server.WriteTimeout)
	dur("SERVER_SHUTDOWN_TIMEOUT", &cfg.Server.ShutdownTimeout)
	if v := getenv(EnvPrefix + "SERVER_CORS_ALLOWED_ORIGINS"); v != "" {
		cfg.Server.CORS.AllowedOrigins = splitList(v)
	}

	// Auth overrides
	str("AUTH_JWT_SECRET", &cfg.Auth.JWTSecret)
	dur("AUTH_TOKEN_TTL", &cfg.Auth.TokenTTL)
	str("AUTH_ADMIN_NAME", &cfg.Auth.AdminName)
	str("AUTH_ADMIN_EMAIL", &cfg.Auth.AdminEmail)
	str("AUTH_ADMIN_PASSWORD", &cfg.Auth.AdminPassword)

	// Database overrides
	str("DATABASE_PATH", &cfg.Database.Path)
	num("DATABASE_MAX_OPEN_CONNS", &cfg.Database.MaxOpenConns)
	num("DATABASE_MAX_IDLE_CONNS", &cfg.Database.MaxIdleConns)

	// Factory overrides
	str("FACTORY_URL", &cfg.Factory.URL)
	str("FACTORY_API_KEY", &cfg.Factory.APIKey)
	dur("FACTORY_TIMEOUT", &cfg.Factory.Timeout)

	// Metrics overrides
	flag("METRICS_ENABLED", &cfg.Metrics.Enabled)
	dur("METRICS_FLUSH_INTERVAL", &cfg.Metrics.FlushInterval)
	str("METRICS_COLLECTOR_URL", &cfg.Metrics.CollectorURL)
	str("METRICS_CREDENTIAL", &cfg.Metrics.Credential)
	str("METRICS_AUTH_MODE", &cfg.Metrics.AuthMode)
	str("METRICS_SOURCE", &cfg.Metrics.Source)
	str("METRICS_PROMETHEUS_PATH", &cfg.Metrics.PrometheusPath)

	// Tracing overrides
	flag("TRACING_ENABLED", &cfg.Tracing.Enabled)
	str("TRACING_ENDPOINT", &cfg.Tracing.Endpoint)
	str("TRACING_SAMPLER", &cfg.Tracing.Sampler)
	if v := getenv(EnvPrefix + "TRACING_SAMPLE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Tracing.SampleRatio = f
		}
	}

	// Logging overrides
	str("LOGGING_LEVEL", &cfg.Logging.Level)
	str("LOGGING_FORMAT", &cfg.Logging.Format)
	flag("LOGGING_REDACT", &cfg.Logging.Redact)
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
