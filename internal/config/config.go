package config

import (
	"fmt"
	"strings"

	pkgconfig "github.com/industriassp/storefront/pkg/config"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"STOREFRONT_HTTP_PORT" envDefault:"8080"`

	// Redis (cart persistence and frequency tables)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Cart TTL in hours (default: 7 days)
	CartTTL int `env:"CART_TTL_HOURS" envDefault:"168"`

	// Postgres (customers directory)
	PostgresHost string `env:"POSTGRES_HOST" envDefault:"localhost"`
	PostgresPort int    `env:"POSTGRES_PORT" envDefault:"5432"`
	PostgresUser string `env:"POSTGRES_USER" envDefault:"storefront"`
	PostgresPass string `env:"POSTGRES_PASSWORD" envDefault:"storefront"`
	PostgresDB   string `env:"POSTGRES_DB" envDefault:"storefront"`

	// Catalog service base URL for product and stock lookups
	CatalogBaseURL string `env:"CATALOG_BASE_URL" envDefault:"http://localhost:8081/api"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Owner search rate limit
	SearchRateRPS   int `env:"SEARCH_RATE_RPS" envDefault:"10"`
	SearchRateBurst int `env:"SEARCH_RATE_BURST" envDefault:"20"`

	// Allowed CORS origins, comma separated; "*" in development
	CORSOrigins []string `env:"CORS_ORIGINS" envDefault:"" envSeparator:","`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load storefront config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.CartTTL < 1 {
		return fmt.Errorf("cart TTL must be at least 1 hour, got %d", c.CartTTL)
	}
	if !strings.HasPrefix(c.CatalogBaseURL, "http://") && !strings.HasPrefix(c.CatalogBaseURL, "https://") {
		return fmt.Errorf("catalog base URL must be http(s): %q", c.CatalogBaseURL)
	}
	if c.SearchRateRPS < 1 || c.SearchRateBurst < c.SearchRateRPS {
		return fmt.Errorf("search rate limit misconfigured: rps=%d burst=%d", c.SearchRateRPS, c.SearchRateBurst)
	}
	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}
