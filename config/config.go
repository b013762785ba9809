package config

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jonwraymond/contentgate/auth"
	"github.com/jonwraymond/contentgate/cache"
	"github.com/jonwraymond/contentgate/observe"
	"github.com/jonwraymond/contentgate/upstream"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("config: invalid configuration")

// LedgerDrivers lists the accepted ledger.driver values.
var LedgerDrivers = []string{"memory", "sqlite", "postgres"}

// Config is the full gateway configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server" env:"SERVER"`
	Auth     AuthConfig     `yaml:"auth" env:"AUTH"`
	Upstream UpstreamConfig `yaml:"upstream" env:"UPSTREAM"`
	Cache    CacheConfig    `yaml:"cache" env:"CACHE"`
	Ledger   LedgerConfig   `yaml:"ledger" env:"LEDGER"`
	Observe  ObserveConfig  `yaml:"observe" env:"OBSERVE"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr         string        `yaml:"addr" env:"ADDR"`
	ReadTimeout  time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	// ShutdownTimeout bounds graceful shutdown after a signal.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
}

// AuthConfig configures bearer token validation.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"JWT_SECRET"`
	Issuer    string        `yaml:"issuer" env:"ISSUER"`
	Audience  string        `yaml:"audience" env:"AUDIENCE"`
	Role      string        `yaml:"role" env:"ROLE"`
	Leeway    time.Duration `yaml:"leeway" env:"LEEWAY"`
}

// UpstreamConfig configures the text-generation service.
type UpstreamConfig struct {
	APIKey    string `yaml:"api_key" env:"API_KEY"`
	Model     string `yaml:"model" env:"MODEL"`
	BaseURL   string `yaml:"base_url" env:"BASE_URL"`
	MaxTokens int64  `yaml:"max_tokens" env:"MAX_TOKENS"`

	GenerateTimeout time.Duration `yaml:"generate_timeout" env:"GENERATE_TIMEOUT"`
	OutlineTimeout  time.Duration `yaml:"outline_timeout" env:"OUTLINE_TIMEOUT"`

	// MaxConcurrent caps in-flight upstream calls. Zero means unlimited.
	MaxConcurrent int `yaml:"max_concurrent" env:"MAX_CONCURRENT"`
}

// CacheConfig configures the response cache.
type CacheConfig struct {
	Capacity int           `yaml:"capacity" env:"CAPACITY"`
	TTL      time.Duration `yaml:"ttl" env:"TTL"`
}

// LedgerConfig selects the usage ledger store.
type LedgerConfig struct {
	Driver string `yaml:"driver" env:"DRIVER"`
	DSN    string `yaml:"dsn" env:"DSN"`
}

// ObserveConfig configures logging, tracing and metrics.
type ObserveConfig struct {
	ServiceName     string  `yaml:"service_name" env:"SERVICE_NAME"`
	LogLevel        string  `yaml:"log_level" env:"LOG_LEVEL"`
	TracingExporter string  `yaml:"tracing_exporter" env:"TRACING_EXPORTER"`
	SamplePct       float64 `yaml:"sample_pct" env:"SAMPLE_PCT"`
	MetricsExporter string  `yaml:"metrics_exporter" env:"METRICS_EXPORTER"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 15 * time.Second,
		},
		Auth: AuthConfig{
			Role:   auth.RoleAdmin,
			Leeway: 30 * time.Second,
		},
		Upstream: UpstreamConfig{
			Model:           upstream.DefaultModel,
			MaxTokens:       upstream.DefaultMaxTokens,
			GenerateTimeout: 30 * time.Second,
			OutlineTimeout:  45 * time.Second,
		},
		Cache: CacheConfig{
			Capacity: cache.DefaultCapacity,
			TTL:      cache.DefaultTTL,
		},
		Ledger: LedgerConfig{
			Driver: "sqlite",
			DSN:    "contentgate.db",
		},
		Observe: ObserveConfig{
			ServiceName:     "contentgate",
			LogLevel:        "info",
			TracingExporter: "none",
			SamplePct:       1.0,
			MetricsExporter: "prometheus",
		},
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(c.Server.Addr != "", "server.addr is required")
	check(c.Server.ShutdownTimeout > 0, "server.shutdown_timeout must be positive")
	check(c.Auth.JWTSecret != "", "auth.jwt_secret is required")
	check(c.Auth.Leeway >= 0, "auth.leeway must not be negative")
	check(c.Upstream.APIKey != "", "upstream.api_key is required")
	check(c.Upstream.MaxTokens > 0, "upstream.max_tokens must be positive")
	check(c.Upstream.GenerateTimeout > 0, "upstream.generate_timeout must be positive")
	check(c.Upstream.OutlineTimeout > 0, "upstream.outline_timeout must be positive")
	check(c.Upstream.MaxConcurrent >= 0, "upstream.max_concurrent must not be negative")
	check(c.Cache.Capacity > 0, "cache.capacity must be positive")
	check(c.Cache.TTL > 0, "cache.ttl must be positive")
	check(slices.Contains(LedgerDrivers, c.Ledger.Driver), "ledger.driver %q is not one of %v", c.Ledger.Driver, LedgerDrivers)
	check(c.Ledger.Driver == "memory" || c.Ledger.DSN != "", "ledger.dsn is required for driver %q", c.Ledger.Driver)

	obs := c.ObserveConfig()
	if err := obs.Validate(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
}

// ObserveConfig converts the observe section for observe.NewObserver.
func (c *Config) ObserveConfig() observe.Config {
	return observe.Config{
		ServiceName: c.Observe.ServiceName,
		Tracing: observe.TracingConfig{
			Enabled:   exporterEnabled(c.Observe.TracingExporter),
			Exporter:  c.Observe.TracingExporter,
			SamplePct: c.Observe.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  exporterEnabled(c.Observe.MetricsExporter),
			Exporter: c.Observe.MetricsExporter,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   c.Observe.LogLevel,
		},
	}
}

func exporterEnabled(name string) bool {
	return name != "" && name != "none"
}

// AnthropicConfig converts the upstream section.
func (c *Config) AnthropicConfig() upstream.AnthropicConfig {
	return upstream.AnthropicConfig{
		APIKey:         c.Upstream.APIKey,
		Model:          c.Upstream.Model,
		MaxTokens:      c.Upstream.MaxTokens,
		BaseURL:        c.Upstream.BaseURL,
		RequestTimeout: c.Upstream.OutlineTimeout,
	}
}

// CachePolicy converts the cache section.
func (c *Config) CachePolicy() cache.Policy {
	return cache.Policy{Capacity: c.Cache.Capacity, TTL: c.Cache.TTL}
}

// JWTConfig converts the auth section.
func (c *Config) JWTConfig() auth.JWTConfig {
	return auth.JWTConfig{
		Issuer:   c.Auth.Issuer,
		Audience: c.Auth.Audience,
		Leeway:   c.Auth.Leeway,
	}
}
