package product

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/industriassp/storefront/internal/domain"
	apperrors "github.com/industriassp/storefront/pkg/errors"
	"github.com/industriassp/storefront/pkg/httpclient"
)

// Lookup resolves a product by ID from the catalog.
type Lookup interface {
	Get(ctx context.Context, productID int64) (*domain.Product, error)
}

// Client fetches products from the catalog service over HTTP, behind a
// circuit breaker so a degraded catalog fails fast instead of piling up
// requests.
type Client struct {
	baseURL string
	http    *httpclient.CircuitBreakerClient
	logger  *slog.Logger
}

// NewClient creates a catalog client for the given base URL.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	inner := httpclient.New(httpclient.DefaultConfig())
	cb := httpclient.NewCircuitBreakerClient(inner, httpclient.DefaultCircuitBreakerConfig("catalog"), logger)
	return &Client{baseURL: baseURL, http: cb, logger: logger}
}

// NewClientWithHTTP creates a catalog client with a caller-provided transport.
func NewClientWithHTTP(baseURL string, http *httpclient.CircuitBreakerClient, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{baseURL: baseURL, http: http, logger: logger}
}

// Get fetches a product from GET {base}/productos/{id}. A 404 maps to a
// not-found error; any other failure (network, breaker open, non-2xx,
// malformed body) maps to a stock-unavailable error so callers can degrade
// without mutating cart state.
func (c *Client) Get(ctx context.Context, productID int64) (*domain.Product, error) {
	url := fmt.Sprintf("%s/productos/%d", c.baseURL, productID)

	resp, err := c.http.Get(ctx, url)
	if err != nil {
		c.logger.Warn("catalog lookup failed", "product_id", productID, "error", err)
		return nil, apperrors.StockUnavailable("could not validate stock")
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperrors.NotFound("product", fmt.Sprintf("%d", productID))
	case resp.StatusCode != http.StatusOK:
		c.logger.Warn("catalog lookup returned error status", "product_id", productID, "status", resp.StatusCode)
		return nil, apperrors.StockUnavailable("could not validate stock")
	}

	var p domain.Product
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		c.logger.Warn("catalog response malformed", "product_id", productID, "error", err)
		return nil, apperrors.StockUnavailable("could not validate stock")
	}
	return &p, nil
}
