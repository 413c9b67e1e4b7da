package handler

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/swiftslot/swiftslot/internal/auth"
	"github.com/swiftslot/swiftslot/internal/metrics"
	"github.com/swiftslot/swiftslot/internal/middleware"
	"github.com/swiftslot/swiftslot/internal/service"
)

// RouterConfig holds everything the HTTP router needs.
type RouterConfig struct {
	Logger        *slog.Logger
	Tokens        *auth.TokenIssuer
	Identity      *service.IdentityService
	Organizations *service.OrganizationService
	Customers     *service.CustomerService
	Events        service.EventSink
	Metrics       metrics.Recorder
	Snapshotter   metrics.Snapshotter
	DB            HealthChecker
	Cache         HealthChecker
	Security      middleware.SecurityConfig
	CORS          middleware.CORSConfig
}

// NewRouter configures the chi router with all routes and middleware.
func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	healthHandler := NewHealthHandler(logger, cfg.DB, cfg.Cache)
	metricsHandler := NewMetricsHandler(cfg.Snapshotter)
	authHandler := NewAuthHandler(cfg.Identity, logger)
	orgHandler := NewOrganizationHandler(cfg.Organizations, logger)
	customerHandler := NewCustomerHandler(cfg.Customers, logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(cfg.Security))
	r.Use(middleware.CORS(cfg.CORS))
	if cfg.Security.MaxRequestBodySize > 0 {
		r.Use(middleware.MaxBodySize(cfg.Security.MaxRequestBodySize))
	}

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	authCfg := middleware.AuthConfig{
		Logger: logger,
		Tokens: cfg.Tokens,
	}
	tenantCfg := middleware.TenantConfig{
		Logger:  logger,
		Metrics: cfg.Metrics,
		Events:  cfg.Events,
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Tenant-scoped routes. The boundary runs per route so that chi
		// path parameters are resolved before it reads them.
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(authCfg))
			boundary := middleware.TenantBoundary(tenantCfg)

			r.Route("/organizations/{organizationId}", func(r chi.Router) {
				r.With(boundary).Get("/", orgHandler.Get)
				r.With(boundary).Get("/users", orgHandler.ListUsers)
			})

			r.Route("/customers", func(r chi.Router) {
				r.With(boundary).Get("/", customerHandler.List)
				r.With(boundary).Post("/", customerHandler.Create)
				r.With(boundary).Get("/{id}", customerHandler.Get)
				r.With(boundary).Patch("/{id}", customerHandler.Update)
				r.With(boundary).Delete("/{id}", customerHandler.Delete)
			})
		})
	})

	r.NotFound(NotFound)
	r.MethodNotAllowed(MethodNotAllowed)

	return r
}
