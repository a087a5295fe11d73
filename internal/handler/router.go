package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mkondo/nexttrack/internal/metrics"
	"github.com/mkondo/nexttrack/internal/middleware"
)

// RouterDeps bundles the dependencies NewRouter needs.
type RouterDeps struct {
	// middleware dependencies
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Logger            *slog.Logger

	// services
	OpportunityService OpportunityServiceInterface
	HealthChecker      HealthChecker

	// demo; nil disables the reset endpoint
	DemoResetter DemoResetter

	// metrics; nil disables HTTP metrics and the /metrics endpoint
	Metrics         *metrics.Collector
	MetricsGatherer prometheus.Gatherer
}

// NewRouter builds the chi router with the full middleware chain.
//
// Middleware order for API routes:
//
//	Recovery → CORS → Metrics → Logging → Tenant → RateLimit
//
// The tenant resolver runs before any business handler, so a missing or
// malformed tenant id is rejected before store access. Health, banner and
// metrics routes sit outside the tenant chain.
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.Metrics != nil {
		r.Use(deps.Metrics.Middleware())
	}
	if deps.Logger != nil {
		r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	}

	healthHandler := NewHealthHandler(deps.HealthChecker)
	oppHandler := NewOpportunityHandler(deps.OpportunityService)

	// --- routes outside the tenant chain ---

	r.Get("/", healthHandler.Root)
	r.Get("/health", healthHandler.Health)
	if deps.MetricsGatherer != nil {
		r.Handle("/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- tenant-scoped API routes ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewTenantMiddleware())
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Route("/api/v1/opportunities", func(r chi.Router) {
			r.Get("/due", oppHandler.ListDue)
			r.Post("/{id}/complete_action", oppHandler.CompleteAction)
		})

		if deps.DemoResetter != nil {
			demoHandler := NewDemoHandler(deps.DemoResetter)
			r.Post("/api/v1/demo/reset", demoHandler.Reset)
		}
	})

	return r
}
