package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ott-webapp/internal/cache"
	"ott-webapp/internal/catalog"
	"ott-webapp/internal/commerce"
	"ott-webapp/internal/config"
	"ott-webapp/internal/database"
	"ott-webapp/internal/handler"
	"ott-webapp/internal/repository"
	"ott-webapp/internal/router"
	"ott-webapp/internal/service"
)

const serviceName = "ott-webapp"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger := config.NewLogger(cfg.Logger)
	logger.Info().Msg("starting ott-webapp API server")

	// Create context for application lifecycle
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database connection pool
	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	if err := repository.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	healthChecks := map[string]router.HealthCheck{
		"database": database.HealthCheck(pool),
	}

	// Initialize repositories
	sessionRepo := repository.NewSessionRepository(pool, logger)

	// Commerce client; payment methods are cached and fetched once per TTL
	commerceClient := commerce.NewCachingClient(
		commerce.NewHTTPClient(cfg.Commerce.BaseURL, cfg.Commerce.APIKey, cfg.Commerce.Timeout, logger),
		cfg.Commerce.PaymentMethodsTTL,
		logger,
	)

	// Catalog client with optional Redis read-through cache
	catalogClient := catalog.NewHTTPClient(cfg.Catalog.BaseURL, cfg.Catalog.Timeout, logger)
	if cfg.Redis.Enabled {
		store, err := cache.NewRedisStore(ctx, cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}, logger)
		if err != nil {
			logger.Warn().
				Err(err).
				Msg("failed to initialise redis cache, catalog requests are not cached")
		} else {
			defer store.Close()
			catalogClient = catalog.NewCachedClient(catalogClient, store, cfg.Redis.TTL, logger)
			healthChecks["redis"] = store.HealthCheck
		}
	} else {
		logger.Info().Msg("catalog cache disabled")
	}

	// Initialize services
	queue := service.NewMutationQueue()
	checkoutService := service.NewCheckoutService(commerceClient, sessionRepo, queue, logger)
	seriesService := service.NewSeriesService(catalogClient, cfg.Catalog.PageLimit, logger)

	// Initialize HTTP handlers
	checkoutHandler := handler.NewCheckoutHandler(checkoutService, logger)
	seriesHandler := handler.NewSeriesHandler(seriesService, logger)

	// Initialize router
	mux := router.New(checkoutHandler, seriesHandler, router.Options{
		APIKey:          cfg.Auth.APIKey,
		ServiceName:     serviceName,
		RateLimit:       cfg.RateLimit.Requests,
		RateLimitWindow: cfg.RateLimit.Window,
		HealthChecks:    healthChecks,
	}, logger)

	// Create HTTP server
	server := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Channel to listen for errors from the server
	serverErrors := make(chan error, 1)

	// Start HTTP server in a goroutine
	go func() {
		logger.Info().
			Str("address", cfg.Server.Address()).
			Msg("HTTP server started")
		serverErrors <- server.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().
			Str("signal", sig.String()).
			Msg("shutdown signal received, starting graceful shutdown")

		// Create a context with timeout for shutdown
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		// Attempt graceful shutdown
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shutdown server gracefully")
			// Force close
			if closeErr := server.Close(); closeErr != nil {
				logger.Error().Err(closeErr).Msg("failed to close server")
			}
			return fmt.Errorf("server shutdown failed: %w", err)
		}

		logger.Info().Msg("server shutdown completed")
	}

	return nil
}
