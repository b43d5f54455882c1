package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/industriassp/storefront/internal/service"
	"github.com/industriassp/storefront/pkg/health"
	"github.com/industriassp/storefront/pkg/middleware"
)

// RouterConfig carries the tunables the router needs beyond its handlers.
type RouterConfig struct {
	CORS            middleware.CORSConfig
	SearchRateRPS   int
	SearchRateBurst int
}

// NewRouter creates a chi router with all storefront routes registered.
func NewRouter(
	cartService *service.CartService,
	ownerService *service.OwnerService,
	healthHandler *health.Handler,
	logger *slog.Logger,
	cfg RouterConfig,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.PrometheusMetrics("storefront"))
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.RequestLogger(logger))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	cartHandler := NewCartHandler(cartService, logger)
	customerHandler := NewCustomerHandler(ownerService, logger)

	// Owner autocomplete endpoint, rate limited: it is public and fires on
	// keystrokes.
	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.SearchRateRPS, cfg.SearchRateBurst, logger))
		r.Get("/api/clientes/search", customerHandler.Search)
	})

	r.Route("/api/clientes/select", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)
		r.Post("/", customerHandler.Select)
	})

	// Cart API endpoints
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(SessionIDFromHeader)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)

			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{productId}", cartHandler.UpdateItemQuantity)
			r.Delete("/items/{productId}", cartHandler.RemoveItem)

			r.Get("/overlay", cartHandler.GetOverlay)
			r.Post("/overlay/open", cartHandler.OpenOverlay)
			r.Post("/overlay/close", cartHandler.CloseOverlay)
			r.Post("/overlay/toggle", cartHandler.ToggleOverlay)
		})

		r.Get("/notifications", cartHandler.Notifications)
	})

	return r
}
