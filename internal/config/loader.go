// Package config provides centralized configuration management for fredlens.
// Configuration is layered with viper: built-in defaults, an optional YAML
// file, then environment variables and bound flags. The merged settings are
// decoded into Config with mapstructure.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	gfconfig "github.com/fulmenhq/gofulmen/config"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/namelens/fredlens/internal/appid"
)

const (
	// DefaultBaseURL is the FRED API root.
	DefaultBaseURL = "https://api.stlouisfed.org/fred"
	// DefaultMapsBaseURL is the GeoFRED maps API root.
	DefaultMapsBaseURL = "https://api.stlouisfed.org/geofred"

	// LegacyAPIKeyEnv is the variable most FRED tooling reads the key from.
	LegacyAPIKeyEnv = "FRED_API_KEY"
)

var (
	// appConfig holds the current application configuration
	appConfig *Config
	configMu  sync.RWMutex
)

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.key", "")
	v.SetDefault("api.timeout", "10s")
	v.SetDefault("api.mode", "sync")
	v.SetDefault("api.max_requests_per_window", 120)
	v.SetDefault("api.window", "60s")
	v.SetDefault("api.rate_limit_margin", 1.0)
	v.SetDefault("api.persist_ledger", false)

	v.SetDefault("maps.base_url", DefaultMapsBaseURL)

	v.SetDefault("retry.attempts", 3)
	v.SetDefault("retry.wait", "1s")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.max_entries", 256)

	v.SetDefault("store.driver", "libsql")
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.url", "")
	v.SetDefault("store.auth_token", "")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "fredlens:cache:")

	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "structured")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)

	v.SetDefault("health.enabled", true)

	v.SetDefault("workers", 4)
}

// ConfigureEnv maps FREDLENS_<SECTION>_<KEY> variables onto config keys.
func ConfigureEnv(v *viper.Viper) {
	v.SetEnvPrefix(strings.TrimSuffix(appid.Get().EnvPrefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes the merged settings of v into a Config and validates it.
//
// This function is safe to call multiple times (e.g., for config reload)
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		return nil, errors.New("config: viper instance is required")
	}

	cfg := &Config{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToFloat64HookFunc(),
		),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder: %w", err)
	}

	if err := decoder.Decode(v.AllSettings()); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if strings.TrimSpace(cfg.API.Key) == "" {
		cfg.API.Key = strings.TrimSpace(os.Getenv(LegacyAPIKeyEnv))
	}
	if strings.TrimSpace(cfg.Store.URL) == "" && strings.TrimSpace(cfg.Store.Path) == "" {
		cfg.Store.Path = DefaultStorePath()
	}
	cfg.API.Mode = strings.ToLower(strings.TrimSpace(cfg.API.Mode))
	cfg.Cache.Backend = strings.ToLower(strings.TrimSpace(cfg.Cache.Backend))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	setConfig(cfg)
	return cfg, nil
}

// Validate checks value ranges that decoding cannot.
func (c *Config) Validate() error {
	var problems []string

	switch c.API.Mode {
	case "", "sync", "async":
	default:
		problems = append(problems, fmt.Sprintf("api.mode %q must be sync or async", c.API.Mode))
	}
	if c.API.MaxRequestsPerWindow <= 0 {
		problems = append(problems, "api.max_requests_per_window must be positive")
	}
	if c.API.Window <= 0 {
		problems = append(problems, "api.window must be positive")
	}
	if c.API.Timeout < 0 {
		problems = append(problems, "api.timeout must not be negative")
	}
	if c.API.RateLimitMargin < 0 || c.API.RateLimitMargin > 1 {
		problems = append(problems, "api.rate_limit_margin must be within (0, 1]")
	}
	if c.Retry.Attempts <= 0 {
		problems = append(problems, "retry.attempts must be positive")
	}
	if c.Retry.Wait < 0 {
		problems = append(problems, "retry.wait must not be negative")
	}
	switch c.Cache.Backend {
	case "", "memory", "libsql", "redis":
	default:
		problems = append(problems, fmt.Sprintf("cache.backend %q must be memory, libsql or redis", c.Cache.Backend))
	}
	if c.Cache.TTL < 0 {
		problems = append(problems, "cache.ttl must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// RequestTimeout returns the per-request timeout, falling back to ten seconds.
func (c APIConfig) RequestTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 10 * time.Second
	}
	return c.Timeout
}

// GetConfig returns the current application configuration (thread-safe)
func GetConfig() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return appConfig
}

// setConfig updates the current configuration (thread-safe)
func setConfig(cfg *Config) {
	configMu.Lock()
	defer configMu.Unlock()
	appConfig = cfg
}

// DefaultConfigPath returns the XDG-compliant path to the user config file.
func DefaultConfigPath() string {
	configDir := gfconfig.GetAppConfigDir(appid.Get().ConfigName)
	if strings.TrimSpace(configDir) == "" {
		return ""
	}
	return filepath.Join(configDir, "config.yaml")
}

// DefaultConfigDir returns the XDG-compliant config directory for the app.
func DefaultConfigDir() string {
	return gfconfig.GetAppConfigDir(appid.Get().ConfigName)
}

// DefaultDataDir returns the XDG-compliant data directory for the app.
func DefaultDataDir() string {
	return gfconfig.GetAppDataDir(appid.Get().ConfigName)
}

// DefaultStorePath returns the XDG-compliant path to the database file.
func DefaultStorePath() string {
	id := appid.Get()
	dataDir := gfconfig.GetAppDataDir(id.ConfigName)
	if strings.TrimSpace(dataDir) == "" {
		return "./" + id.BinaryName + ".db"
	}
	return filepath.Join(dataDir, id.BinaryName+".db")
}
