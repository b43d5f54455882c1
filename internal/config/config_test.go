package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "localhost:6379", cfg.RedisAddr)
	assert.Equal(t, 168, cfg.CartTTL)
	assert.Equal(t, "http://localhost:8081/api", cfg.CatalogBaseURL)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoad_InvalidHTTPPort(t *testing.T) {
	t.Setenv("STOREFRONT_HTTP_PORT", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

func TestLoad_InvalidCartTTL(t *testing.T) {
	t.Setenv("CART_TTL_HOURS", "0")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "cart TTL")
}

func TestLoad_InvalidCatalogURL(t *testing.T) {
	t.Setenv("CATALOG_BASE_URL", "localhost:8081")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "catalog base URL")
}

func TestLoad_InvalidRateLimit(t *testing.T) {
	t.Setenv("SEARCH_RATE_BURST", "1")

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.ErrorContains(t, err, "search rate limit")
}

func TestLoad_CustomPostgres(t *testing.T) {
	t.Setenv("POSTGRES_HOST", "pg.prod")
	t.Setenv("POSTGRES_PORT", "5433")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, "pg.prod", cfg.PostgresHost)
	assert.Equal(t, 5433, cfg.PostgresPort)
}

func TestLoad_CustomCartTTL(t *testing.T) {
	t.Setenv("CART_TTL_HOURS", "24")

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 24, cfg.CartTTL)
}
