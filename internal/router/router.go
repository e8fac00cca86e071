package router

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"ott-webapp/internal/handler"
	"ott-webapp/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

// Options configures the HTTP router.
type Options struct {
	APIKey          string
	ServiceName     string
	RateLimit       int
	RateLimitWindow time.Duration
	// HealthChecks are run by /health, keyed by dependency name.
	HealthChecks map[string]HealthCheck
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	checkoutHandler *handler.CheckoutHandler,
	seriesHandler *handler.SeriesHandler,
	opts Options,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Middleware order: Recovery -> RequestID -> Logging -> Tracing -> CORS -> APIKeyAuth -> CustomerToken
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Tracing(opts.ServiceName))
	r.Use(middleware.CORS)
	r.Use(middleware.APIKeyAuth(opts.APIKey, logger))
	r.Use(middleware.CustomerToken)

	// Health check endpoint (no authentication required)
	r.Get("/health", healthHandler(opts.HealthChecks))
	r.Handle("/metrics", promhttp.Handler())

	limit := opts.RateLimit
	if limit < 1 {
		limit = 60
	}
	window := opts.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/checkout/sessions", func(r chi.Router) {
			r.Post("/", checkoutHandler.Start)
			r.Get("/{id}", checkoutHandler.Get)
			r.Delete("/{id}", checkoutHandler.Close)

			// Order mutations and payments are rate limited per client
			r.Group(func(r chi.Router) {
				r.Use(middleware.RateLimit(limit, window))
				r.Post("/{id}/coupon", checkoutHandler.ApplyCoupon)
				r.Put("/{id}/payment-method", checkoutHandler.ChangePaymentMethod)
				r.Post("/{id}/payments/no-details", checkoutHandler.PayWithoutDetails)
				r.Post("/{id}/payments/paypal", checkoutHandler.PayWithPayPal)
			})
		})

		r.Get("/media/{id}/series", seriesHandler.Resolve)
		r.Post("/media/{id}/series", seriesHandler.Resolve)
	})

	return r
}

// healthHandler reports "healthy" when every check passes, otherwise 503
// with the failing dependencies.
func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		body := map[string]interface{}{"status": "healthy"}
		failures := map[string]string{}

		for name, check := range checks {
			if err := check(ctx); err != nil {
				failures[name] = err.Error()
			}
		}
		if len(failures) > 0 {
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["checks"] = failures
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(body)
	}
}
