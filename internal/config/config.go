package config

import (
	"time"
)

// Config represents the complete application configuration.
// Values are layered: built-in defaults, then the optional YAML config file,
// then FREDLENS_* environment variables and flags.
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Maps    MapsConfig    `mapstructure:"maps"`
	Retry   RetryConfig   `mapstructure:"retry"`
	Cache   CacheConfig   `mapstructure:"cache"`
	Store   StoreConfig   `mapstructure:"store"`
	Redis   RedisConfig   `mapstructure:"redis"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Health  HealthConfig  `mapstructure:"health"`
	Workers int           `mapstructure:"workers"`
}

// APIConfig configures the FRED client.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Key     string        `mapstructure:"key"`
	Timeout time.Duration `mapstructure:"timeout"`

	// Mode is "sync" (blocking gate) or "async" (adaptive, concurrent callers).
	Mode string `mapstructure:"mode"`

	MaxRequestsPerWindow int           `mapstructure:"max_requests_per_window"`
	Window               time.Duration `mapstructure:"window"`
	RateLimitMargin      float64       `mapstructure:"rate_limit_margin"`

	// PersistLedger carries the request ledger across CLI runs via the store.
	PersistLedger bool `mapstructure:"persist_ledger"`
}

// MapsConfig configures the GeoFRED maps client. It shares the key and
// limits of APIConfig.
type MapsConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

// RetryConfig bounds retries of a failed request.
type RetryConfig struct {
	Attempts int           `mapstructure:"attempts"`
	Wait     time.Duration `mapstructure:"wait"`
}

// CacheConfig contains response cache configuration.
type CacheConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Backend is memory, libsql or redis.
	Backend    string        `mapstructure:"backend"`
	TTL        time.Duration `mapstructure:"ttl"`
	MaxEntries int           `mapstructure:"max_entries"`
}

// StoreConfig contains database configuration for libsql/Turso
type StoreConfig struct {
	Driver    string `mapstructure:"driver"`
	Path      string `mapstructure:"path"`
	URL       string `mapstructure:"url"`
	AuthToken string `mapstructure:"auth_token"`
}

// RedisConfig configures the shared Redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	// Level controls the minimum log level
	// Valid values: trace, debug, info, warn, error
	Level string `mapstructure:"level"`

	// Profile selects the logging complexity level
	// Valid values: SIMPLE, STRUCTURED
	Profile string `mapstructure:"profile"`
}

// MetricsConfig contains Prometheus metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// Port is the dedicated metrics endpoint port (Prometheus format)
	Port int `mapstructure:"port"`
}

// HealthConfig contains health check configuration
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
