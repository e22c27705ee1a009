package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"time"

	"ecommerce-eda/internal/config"
	"ecommerce-eda/internal/handlers"
	"ecommerce-eda/internal/middleware"
	"ecommerce-eda/internal/observability"
	"ecommerce-eda/internal/pipeline"
	"ecommerce-eda/internal/server"
	"ecommerce-eda/internal/services"
	"ecommerce-eda/internal/ui/templates"
)

const (
	renderTimeout   = 10 * time.Second
	datasetTimeout  = 30 * time.Second
	dashboardMaxAge = "public, max-age=60"
)

func dashboardHandler(analytics *services.Analytics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), renderTimeout)
		defer cancel()

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Cache-Control", dashboardMaxAge)
		view := templates.NewDashboardView(analytics.Report())
		if err := templates.Dashboard(view).Render(ctx, w); err != nil {
			http.Error(w, "render error", http.StatusInternalServerError)
		}
	}
}

func newAnalytics(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *services.Analytics {
	opts := pipeline.DefaultOptions()
	opts.TopCustomers = cfg.Report.TopCustomers

	options := []services.Option{
		services.WithLogger(logger),
		services.WithMetrics(metrics),
		services.WithOptions(opts),
	}
	if cfg.Cache.Enabled {
		options = append(options, services.WithCacheDir(cfg.Cache.Dir))
	}
	return services.NewAnalytics(options...)
}

func newHandler(cfg *config.Config, analytics *services.Analytics, metrics *observability.Metrics, logger *slog.Logger) http.Handler {
	templateHandlers := &server.TemplateHandlers{
		Dashboard: dashboardHandler(analytics),
	}

	srv := server.NewServer(analytics, logger, templateHandlers, server.Options{
		Limits: handlers.Limits{
			TopCustomers:   cfg.Report.TopCustomers,
			UploadMaxBytes: cfg.Upload.MaxBytes,
		},
		Metrics: metrics.Handler(),
	})

	route := middleware.MuxRoute(srv.Mux())
	rateLimiter := middleware.NewRateLimiter(cfg.Security)

	middlewareChain := middleware.Chain(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Tracing(route),
		middleware.Logger(logger),
		middleware.Metrics(metrics, route),
		middleware.SecurityHeaders(),
		middleware.CORS(cfg.Security),
		middleware.CSRF(cfg.Security, logger),
		middleware.TrustedProxy(cfg.Security),
		middleware.RateLimit(rateLimiter, logger),
	)

	return middlewareChain(srv)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.Logger)
	slog.SetDefault(logger)

	logger.Info("starting application",
		"version", "1.0.0",
		"config", cfg,
	)

	tracerProvider, err := observability.NewTracerProvider(cfg.Tracing)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
		os.Exit(1)
	}

	metrics := observability.NewMetrics()
	analytics := newAnalytics(cfg, metrics, logger)

	ctx, cancel := context.WithTimeout(context.Background(), datasetTimeout)
	defer cancel()

	start := time.Now()
	if err := analytics.LoadFromCSV(ctx, cfg.Data.File); err != nil {
		logger.Error("failed to load dataset", "file", cfg.Data.File, "error", err)
		os.Exit(1)
	}
	logger.Info("dataset loaded successfully", "duration", time.Since(start))

	httpServer := &http.Server{
		Addr:         cfg.Address(),
		Handler:      newHandler(cfg, analytics, metrics, logger),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	gracefulServer := server.NewGracefulServer(httpServer, logger, cfg)

	gracefulServer.RegisterShutdownHook("tracer", tracerProvider.Shutdown)

	logger.Info("starting graceful server")
	if err := gracefulServer.ListenAndServe(); err != nil {
		logger.Error("server failed", "error", err)
		os.Exit(1)
	}

	logger.Info("application stopped gracefully")
}
