package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"wavy/internal/backend"
	"wavy/internal/cache"
	"wavy/internal/middleware"
	"wavy/internal/storage"
	"wavy/internal/tmdb"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "WAVY"

// Config is the main configuration
type Config struct {
	Server    ServerConfig               `mapstructure:"server"`
	Redis     storage.RedisConfig        `mapstructure:"redis"`
	Storage   StorageConfig              `mapstructure:"storage"`
	Cache     cache.Config               `mapstructure:"cache"`
	TMDB      tmdb.Config                `mapstructure:"tmdb"`
	Backend   backend.Config             `mapstructure:"backend"`
	Events    EventsConfig               `mapstructure:"events"`
	RateLimit middleware.RateLimitConfig `mapstructure:"rate_limit"`
	Logger    LoggerConfig               `mapstructure:"logger"`
}

// ServerConfig configuration of the HTTP server
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	CORSOrigin      string        `mapstructure:"cors_origin"`
}

// StorageConfig selects where local state and the metadata cache live
type StorageConfig struct {
	// Driver is "memory" or "redis"
	Driver string `mapstructure:"driver"`
	Prefix string `mapstructure:"prefix"`
}

// EventsConfig configures change notifications
type EventsConfig struct {
	Buffer       int    `mapstructure:"buffer"`
	RelayEnabled bool   `mapstructure:"relay_enabled"`
	RelayChannel string `mapstructure:"relay_channel"`
}

// LoggerConfig configuration of the logger
type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LoadConfig loads configuration from config files and environment variables
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config", "/etc/wavy"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	// WAVY_TMDB_API_KEY -> tmdb.api_key
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshalling config: %w", err)
	}

	// list values given through the environment arrive as one string
	config.Redis.Addresses = splitList(v.GetStringSlice("redis.addresses"))
	config.TMDB.SupportedLanguages = splitList(v.GetStringSlice("tmdb.supported_languages"))
	config.TMDB.Localization.Languages = splitList(v.GetStringSlice("tmdb.localization.languages"))
	config.TMDB.Localization.Countries = splitList(v.GetStringSlice("tmdb.localization.countries"))

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate checks values that have no safe fallback
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "memory", "redis":
	default:
		return fmt.Errorf("invalid storage.driver %q: want memory or redis", c.Storage.Driver)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server.port %d", c.Server.Port)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("invalid cache.ttl %s", c.Cache.TTL)
	}
	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("invalid cache.max_entries %d", c.Cache.MaxEntries)
	}
	if c.Events.RelayEnabled && c.Storage.Driver != "redis" {
		return errors.New("events.relay_enabled requires storage.driver redis")
	}
	return nil
}

// setDefaults sets the default values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.cors_origin", "*")

	// Storage defaults
	v.SetDefault("storage.driver", "memory")
	v.SetDefault("storage.prefix", storage.DefaultPrefix)

	// Redis defaults
	redisDefaults := storage.DefaultRedisConfig()
	v.SetDefault("redis.addresses", redisDefaults.Addresses)
	v.SetDefault("redis.password", redisDefaults.Password)
	v.SetDefault("redis.database", redisDefaults.Database)
	v.SetDefault("redis.max_retries", redisDefaults.MaxRetries)
	v.SetDefault("redis.pool_size", redisDefaults.PoolSize)
	v.SetDefault("redis.min_idle_conns", redisDefaults.MinIdleConns)
	v.SetDefault("redis.dial_timeout", redisDefaults.DialTimeout)
	v.SetDefault("redis.read_timeout", redisDefaults.ReadTimeout)
	v.SetDefault("redis.write_timeout", redisDefaults.WriteTimeout)
	v.SetDefault("redis.pool_timeout", redisDefaults.PoolTimeout)

	// Cache defaults
	cacheDefaults := cache.DefaultConfig()
	v.SetDefault("cache.ttl", cacheDefaults.TTL)
	v.SetDefault("cache.max_entries", cacheDefaults.MaxEntries)
	v.SetDefault("cache.key_prefix", cacheDefaults.KeyPrefix)

	// Metadata provider defaults
	tmdbDefaults := tmdb.DefaultConfig()
	v.SetDefault("tmdb.base_url", tmdbDefaults.BaseURL)
	v.SetDefault("tmdb.image_base_url", tmdbDefaults.ImageBaseURL)
	v.SetDefault("tmdb.api_key", "")
	v.SetDefault("tmdb.default_language", tmdbDefaults.DefaultLanguage)
	v.SetDefault("tmdb.supported_languages", tmdbDefaults.SupportedLanguages)
	v.SetDefault("tmdb.timeout", tmdbDefaults.Timeout)
	v.SetDefault("tmdb.localization.enabled", tmdbDefaults.Localization.Enabled)
	v.SetDefault("tmdb.localization.languages", tmdbDefaults.Localization.Languages)
	v.SetDefault("tmdb.localization.countries", tmdbDefaults.Localization.Countries)
	v.SetDefault("tmdb.localization.locale", tmdbDefaults.Localization.Locale)
	v.SetDefault("tmdb.localization.max_concurrent", tmdbDefaults.Localization.MaxConcurrent)

	// Backend defaults; an empty base_url keeps collections local only
	backendDefaults := backend.DefaultConfig()
	v.SetDefault("backend.base_url", backendDefaults.BaseURL)
	v.SetDefault("backend.timeout", backendDefaults.Timeout)
	v.SetDefault("backend.retry_max", backendDefaults.RetryMax)

	// Events defaults
	v.SetDefault("events.buffer", 16)
	v.SetDefault("events.relay_enabled", false)
	v.SetDefault("events.relay_channel", "wavy:collection-changed")

	// Rate limit defaults
	rl := middleware.DefaultRateLimitConfig()
	v.SetDefault("rate_limit.enabled", rl.Enabled)
	v.SetDefault("rate_limit.requests_per_second", rl.RequestsPerSecond)
	v.SetDefault("rate_limit.burst", rl.Burst)
	v.SetDefault("rate_limit.max_clients", rl.MaxClients)

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output_path", "stdout")
}

// splitList trims entries and splits comma separated values
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// GetAddress returns the full server address
func (sc *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", sc.Host, sc.Port)
}
