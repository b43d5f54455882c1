package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/industriassp/storefront/internal/cart"
	"github.com/industriassp/storefront/internal/config"
	"github.com/industriassp/storefront/internal/event"
	handler "github.com/industriassp/storefront/internal/handler/http"
	"github.com/industriassp/storefront/internal/product"
	pgrepo "github.com/industriassp/storefront/internal/repository/postgres"
	redisrepo "github.com/industriassp/storefront/internal/repository/redis"
	"github.com/industriassp/storefront/internal/service"
	"github.com/industriassp/storefront/pkg/database"
	"github.com/industriassp/storefront/pkg/health"
	pkgkafka "github.com/industriassp/storefront/pkg/kafka"
	"github.com/industriassp/storefront/pkg/middleware"
)

// App wires together all dependencies and runs the storefront service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	rdb        *redis.Client
	pool       *pgxpool.Pool
	producer   *pkgkafka.Producer
	sessions   *cart.Manager
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Redis: cart persistence and frequency tables.
	rdb, err := database.NewRedisClient(ctx, database.RedisConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	logger.Info("connected to Redis",
		slog.String("addr", cfg.RedisAddr),
		slog.Int("db", cfg.RedisDB),
	)

	// Postgres: customers directory.
	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	// Kafka producer for cart lifecycle events.
	kafkaCfg := pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers)
	producer := pkgkafka.NewProducer(kafkaCfg, logger)
	logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))

	// Build the dependency graph.
	cartTTL := time.Duration(cfg.CartTTL) * time.Hour
	cartStore := redisrepo.NewCartStore(rdb, cartTTL, logger)
	freqStore := redisrepo.NewFrequencyStore(rdb, cartTTL)
	customerRepo := pgrepo.NewCustomerRepository(pool)

	sessions := cart.NewManager(cartStore, logger)
	catalog := product.NewClient(cfg.CatalogBaseURL, logger)
	publisher := event.NewKafkaPublisher(producer, logger)
	notifier := service.NewNotifier()

	cartService := service.NewCartService(sessions, catalog, publisher, notifier, logger)
	ownerService := service.NewOwnerService(customerRepo, freqStore, logger)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("redis", func(ctx context.Context) error {
		return rdb.Ping(ctx).Err()
	})
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return producer.Ping(ctx)
	})

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment
	if len(cfg.CORSOrigins) > 0 && cfg.CORSOrigins[0] != "" {
		corsCfg.AllowedOrigins = cfg.CORSOrigins
	}

	router := handler.NewRouter(cartService, ownerService, healthHandler, logger, handler.RouterConfig{
		CORS:            corsCfg,
		SearchRateRPS:   cfg.SearchRateRPS,
		SearchRateBurst: cfg.SearchRateBurst,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		rdb:        rdb,
		pool:       pool,
		producer:   producer,
		sessions:   sessions,
		httpServer: httpServer,
	}, nil
}

// Run starts the HTTP server and blocks until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
	}

	a.sessions.Close()

	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
	}

	a.pool.Close()

	if err := a.rdb.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
	}

	a.logger.Info("application shutdown complete")
	return nil
}
