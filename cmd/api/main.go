package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/storefront-platform/internal/api/router"
	"github.com/wolfman30/storefront-platform/internal/app/bootstrap"
	"github.com/wolfman30/storefront-platform/internal/auth"
	"github.com/wolfman30/storefront-platform/internal/catalog"
	appconfig "github.com/wolfman30/storefront-platform/internal/config"
	"github.com/wolfman30/storefront-platform/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/storefront-platform/internal/http/middleware"
	"github.com/wolfman30/storefront-platform/internal/leads"
	"github.com/wolfman30/storefront-platform/internal/notify"
	"github.com/wolfman30/storefront-platform/internal/observability/metrics"
	"github.com/wolfman30/storefront-platform/internal/otp"
	"github.com/wolfman30/storefront-platform/internal/ratelimit"
	"github.com/wolfman30/storefront-platform/internal/resolver"
	"github.com/wolfman30/storefront-platform/internal/stores"
	"github.com/wolfman30/storefront-platform/internal/team"
	"github.com/wolfman30/storefront-platform/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// Load configuration
	cfg := appconfig.Load()

	// Initialize logger
	format := "text"
	if cfg.IsProduction() {
		format = "json"
	}
	logger := logging.NewWithOptions(logging.Options{
		Level:   cfg.LogLevel,
		Format:  format,
		Service: "storefront-api",
	})
	logger.Info("starting storefront API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	app, err := buildApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	// Create HTTP server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in a goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err := <-serverErr:
		logger.Error("server error", "error", err)
		app.Close()
		os.Exit(1)
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		app.Close()
		os.Exit(1)
	}

	logger.Info("server stopped")
	fmt.Println("Server exited gracefully")
}

// application is the wired HTTP handler plus the resources it holds open.
type application struct {
	handler http.Handler
	closers []func()
}

// Close releases pools and background goroutines in reverse order.
func (a *application) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func buildApp(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger) (*application, error) {
	app := &application{}

	pool, err := bootstrap.BuildPostgresPool(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if pool == nil {
		logger.Warn("DATABASE_URL not set; using in-memory storage")
	} else {
		app.closers = append(app.closers, pool.Close)
	}

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)
	if redisClient == nil {
		logger.Warn("redis not configured; codes and rate limits are per process")
	} else {
		app.closers = append(app.closers, func() { _ = redisClient.Close() })
	}

	repos := bootstrap.BuildRepositories(pool, cfg.CatalogCacheTTL)
	if !repos.Durable && cfg.IsProduction() {
		logger.Warn("production without a database; all data is lost on restart")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(reg)
	authMetrics := metrics.NewAuthMetrics(reg)
	resolverMetrics := metrics.NewResolverMetrics(reg)
	otpMetrics := metrics.NewOTPMetrics(reg)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.TokenTTL)
	cookie := auth.CookieConfig{Name: cfg.AuthCookieName, Secure: cfg.AuthCookieSecure}

	otpLimiter := bootstrap.BuildLimiter(redisClient, "rl:otp:", cfg.OTPRateLimit, cfg.OTPRateWindow)
	publicLimiter := bootstrap.BuildLimiter(redisClient, "rl:public:", cfg.PublicRateLimit, cfg.PublicRateWindow)
	for _, l := range []ratelimit.Limiter{otpLimiter, publicLimiter} {
		if mem, ok := l.(*ratelimit.MemoryLimiter); ok {
			app.closers = append(app.closers, mem.Close)
		}
	}

	emailSender, err := bootstrap.BuildEmailSender(ctx, cfg, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	mailer := notify.NewMailer(emailSender, cfg.OTPTTL)

	otpSvc := otp.NewService(otp.Config{
		CodeLength:  cfg.OTPLength,
		TTL:         cfg.OTPTTL,
		MaxAttempts: cfg.OTPMaxAttempts,
	}, otp.Deps{
		Store:     bootstrap.BuildOTPStore(redisClient),
		Sender:    mailer,
		Limiter:   otpLimiter,
		Merchants: repos.Merchants,
		Tokens:    tokens,
		Metrics:   otpMetrics,
		Logger:    logger,
	})
	teamSvc := team.NewService(repos.Team, repos.Stores, repos.Merchants, cfg.InviteTTL, cfg.PublicBaseURL, logger).
		WithMailer(mailer)

	hostResolver := resolver.New(repos.Stores, resolverMetrics)
	var inProcess httpmiddleware.StoreResolver
	if cfg.ResolveHostInProcess {
		inProcess = hostResolver
	}

	app.handler = router.New(&router.Config{
		Logger:             logger,
		Tokens:             tokens,
		CookieName:         cookie.Name,
		EdgeSharedSecret:   cfg.EdgeSharedSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		RequestTimeout:     cfg.RequestTimeout,
		TrustProxyHeaders:  cfg.TrustProxyHeaders,
		HostResolver:       inProcess,
		HTTPMetrics:        httpMetrics,
		AuthMetrics:        authMetrics,
		MetricsHandler:     promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}),
		Health:             handlers.NewHealthHandler(bootstrap.HealthChecks(pool, redisClient), logger),
		Limiter:            publicLimiter,
		ResolveHandler:     resolver.NewHandler(hostResolver, logger),
		OTPHandler:         otp.NewHandler(otpSvc, repos.Merchants, cookie, logger),
		StoresHandler:      stores.NewHandler(repos.Stores, logger),
		StoreAccess:        repos.Stores,
		StoreManagers:      teamSvc,
		TeamHandler:        team.NewHandler(teamSvc, logger),
		LeadsHandler:       leads.NewHandler(repos.Leads, logger),
		CatalogHandler:     catalog.NewHandler(repos.Catalog, logger),
	})
	return app, nil
}
