package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/storefront-platform/internal/auth"
	"github.com/wolfman30/storefront-platform/internal/catalog"
	"github.com/wolfman30/storefront-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/storefront-platform/internal/http/middleware"
	"github.com/wolfman30/storefront-platform/internal/leads"
	"github.com/wolfman30/storefront-platform/internal/observability/metrics"
	"github.com/wolfman30/storefront-platform/internal/otp"
	"github.com/wolfman30/storefront-platform/internal/ratelimit"
	"github.com/wolfman30/storefront-platform/internal/resolver"
	"github.com/wolfman30/storefront-platform/internal/stores"
	"github.com/wolfman30/storefront-platform/internal/team"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger *logging.Logger

	// Request pipeline
	Tokens             *auth.TokenManager
	CookieName         string
	PublicRoutes       []auth.PublicRoute
	EdgeSharedSecret   string
	CORSAllowedOrigins []string
	RequestTimeout     time.Duration
	TrustProxyHeaders  bool
	// HostResolver resolves the request host in process when the edge layer
	// did not supply a store. Nil disables in-process resolution.
	HostResolver httpmiddleware.StoreResolver

	// Observability
	HTTPMetrics    *metrics.HTTPMetrics
	AuthMetrics    *metrics.AuthMetrics
	MetricsHandler http.Handler
	Health         *handlers.HealthHandler

	// Abuse protection for unauthenticated writes (optional)
	Limiter ratelimit.Limiter

	// Handlers
	ResolveHandler *resolver.Handler
	OTPHandler     *otp.Handler
	StoresHandler  *stores.Handler
	StoreAccess    stores.AccessChecker
	StoreManagers  stores.ManagerChecker
	TeamHandler    *team.Handler
	LeadsHandler   *leads.Handler
	CatalogHandler *catalog.Handler
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	if cfg.RequestTimeout > 0 {
		r.Use(middleware.Timeout(cfg.RequestTimeout))
	}
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.StripTrustedHeaders(cfg.EdgeSharedSecret))

	// Operational endpoints never resolve a store, so they keep answering
	// while the store lookup is failing.
	r.Group(func(ops chi.Router) {
		ops.Use(httpmiddleware.RequestLogger(logger))
		ops.Use(httpmiddleware.Metrics(cfg.HTTPMetrics))
		if cfg.Health != nil {
			ops.Get("/health", cfg.Health.HealthCheck)
		}
		if cfg.MetricsHandler != nil {
			ops.Handle("/metrics", cfg.MetricsHandler)
		}
		if cfg.ResolveHandler != nil {
			ops.Get("/api/internal/resolve-store", cfg.ResolveHandler.Resolve)
		}
	})

	r.Group(func(app chi.Router) {
		mountApp(app, cfg, logger)
	})

	return r
}

// mountApp registers the store-aware API behind store resolution and the
// authenticator.
func mountApp(r chi.Router, cfg *Config, logger *logging.Logger) {
	r.Use(httpmiddleware.StoreContext(cfg.HostResolver, logger))
	r.Use(httpmiddleware.RequestLogger(logger))
	r.Use(httpmiddleware.Metrics(cfg.HTTPMetrics))
	r.Use(auth.Authenticator(auth.Options{
		Tokens:       cfg.Tokens,
		CookieName:   cfg.CookieName,
		PublicRoutes: cfg.PublicRoutes,
		Logger:       logger,
		Metrics:      cfg.AuthMetrics,
	}))

	limited := func(prefix string) func(http.Handler) http.Handler {
		if cfg.Limiter == nil {
			return func(next http.Handler) http.Handler { return next }
		}
		return httpmiddleware.RateLimit(cfg.Limiter, prefix, httpmiddleware.ClientIP, logger)
	}

	// Sign in
	if cfg.OTPHandler != nil {
		r.Route("/api/auth", func(a chi.Router) {
			a.With(limited("http:otp:request:")).Post("/otp/request", cfg.OTPHandler.RequestCode)
			a.With(limited("http:otp:verify:")).Post("/otp/verify", cfg.OTPHandler.VerifyCode)
			a.Post("/logout", cfg.OTPHandler.Logout)
			a.Get("/me", cfg.OTPHandler.Me)
		})
	}

	// Merchant scoped (no current store needed)
	if cfg.StoresHandler != nil {
		r.Get("/api/stores", cfg.StoresHandler.List)
		r.Post("/api/stores", cfg.StoresHandler.Create)
	}
	if cfg.TeamHandler != nil {
		r.Post("/api/team/invites/accept", cfg.TeamHandler.Accept)
	}

	// Storefront reads and contact form (public, current store required)
	if cfg.CatalogHandler != nil {
		r.Get("/api/products", cfg.CatalogHandler.ListProducts)
		r.Get("/api/products/{productID}", cfg.CatalogHandler.GetProduct)
		r.Get("/api/categories", cfg.CatalogHandler.ListCategories)
		r.Get("/api/brands", cfg.CatalogHandler.ListBrands)
	}
	if cfg.LeadsHandler != nil {
		r.With(limited("http:leads:")).Post("/api/leads", cfg.LeadsHandler.Create)
	}

	// Store management (owner or accepted member of the current store;
	// configuration changes need owner or admin)
	if cfg.StoreAccess != nil {
		r.Group(func(m chi.Router) {
			m.Use(stores.RequireAccess(cfg.StoreAccess, logger))
			if cfg.StoresHandler != nil {
				m.Get("/api/store", cfg.StoresHandler.Current)
				m.Group(func(mgr chi.Router) {
					if cfg.StoreManagers != nil {
						mgr.Use(stores.RequireManager(cfg.StoreManagers, logger))
					}
					mgr.Put("/api/store/settings", cfg.StoresHandler.UpdateSettings)
					mgr.Patch("/api/store/settings", cfg.StoresHandler.UpdateSettings)
					mgr.Put("/api/store/domain", cfg.StoresHandler.UpdateDomain)
				})
			}
			if cfg.TeamHandler != nil {
				m.Get("/api/store/team", cfg.TeamHandler.List)
				m.Post("/api/store/team/invites", cfg.TeamHandler.Invite)
				m.Delete("/api/store/team/{memberID}", cfg.TeamHandler.Remove)
			}
			if cfg.LeadsHandler != nil {
				m.Get("/api/leads", cfg.LeadsHandler.List)
			}
			if cfg.CatalogHandler != nil {
				m.Post("/api/products", cfg.CatalogHandler.CreateProduct)
				m.Post("/api/categories", cfg.CatalogHandler.CreateCategory)
				m.Post("/api/brands", cfg.CatalogHandler.CreateBrand)
			}
		})
	}
}
