// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

func init() {
	// Load .env file if it exists (silent fail if not)
	_ = godotenv.Load()
}

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Steam     SteamConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
	Store     StoreConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `envconfig:"SERVER_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"SERVER_PORT" default:"8080"`
	ReadTimeout     time.Duration `envconfig:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `envconfig:"SERVER_WRITE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `envconfig:"SERVER_SHUTDOWN_TIMEOUT" default:"10s"`
}

// SteamConfig holds settings for the upstream Steam calls.
type SteamConfig struct {
	ProxyURL      string        `envconfig:"STEAM_PROXY_URL" default:""`
	FetchTimeout  time.Duration `envconfig:"STEAM_FETCH_TIMEOUT" default:"15s"`
	MaxRetries    int           `envconfig:"STEAM_MAX_RETRIES" default:"2"`
	BackoffMin    time.Duration `envconfig:"STEAM_BACKOFF_MIN" default:"500ms"`
	MaxPages      int           `envconfig:"STEAM_MAX_PAGES" default:"15"`
	PriceCacheTTL time.Duration `envconfig:"PRICE_CACHE_TTL" default:"6h"`

	// FastInventory defers price resolution to the client-driven price
	// endpoint instead of pricing during the fetch.
	FastInventory    bool          `envconfig:"FAST_INVENTORY" default:"false"`
	PriceConcurrency int64         `envconfig:"PRICE_CONCURRENCY" default:"4"`
	PriceSpacing     time.Duration `envconfig:"PRICE_SPACING" default:"500ms"`
}

// RateLimitConfig shapes the per-user and global fetch budget.
type RateLimitConfig struct {
	Window         time.Duration `envconfig:"RATELIMIT_WINDOW" default:"60s"`
	MaxPerWindow   int           `envconfig:"RATELIMIT_MAX" default:"3"`
	GlobalCooldown time.Duration `envconfig:"RATELIMIT_GLOBAL_COOLDOWN" default:"10s"`
}

// CacheConfig selects the price cache backend.
type CacheConfig struct {
	Type string `envconfig:"CACHE_TYPE" default:"memory"` // memory or redis

	RedisHost     string `envconfig:"REDIS_HOST" default:"localhost"`
	RedisPort     int    `envconfig:"REDIS_PORT" default:"6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD" default:""`
	RedisDB       int    `envconfig:"REDIS_DB" default:"0"`
}

// RedisAddress returns the Redis address in host:port format.
func (c *CacheConfig) RedisAddress() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// StoreConfig holds the durable inventory cache settings.
type StoreConfig struct {
	Path          string        `envconfig:"STORE_PATH" default:"./data/inventory.db"`
	PruneAfter    time.Duration `envconfig:"STORE_PRUNE_AFTER" default:"720h"`
	PruneInterval time.Duration `envconfig:"STORE_PRUNE_INTERVAL" default:"6h"`
}

// Address returns the server address in host:port format.
func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
