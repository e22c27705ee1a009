package server

import (
	"log/slog"
	"net/http"

	"ecommerce-eda/internal/handlers"
	"ecommerce-eda/internal/services"
)

type Server struct {
	analytics   *services.Analytics
	mux         *http.ServeMux
	logger      *slog.Logger
	apiHandlers *handlers.APIHandlers
	sseHandlers *handlers.SSEHandlers
}

type TemplateHandlers struct {
	Dashboard http.HandlerFunc
}

// Options carries the optional parts of the route table. A nil Metrics
// handler leaves /metrics unrouted.
type Options struct {
	Limits  handlers.Limits
	Metrics http.Handler
}

func NewServer(analytics *services.Analytics, logger *slog.Logger, templateHandlers *TemplateHandlers, opts Options) *Server {
	s := &Server{
		analytics:   analytics,
		mux:         http.NewServeMux(),
		logger:      logger,
		apiHandlers: handlers.NewAPIHandlers(analytics, logger, opts.Limits),
		sseHandlers: handlers.NewSSEHandlers(analytics, logger, opts.Limits),
	}
	s.setupRoutes(templateHandlers, opts.Metrics)
	return s
}

func (s *Server) setupRoutes(templateHandlers *TemplateHandlers, metrics http.Handler) {
	// Dashboard routes
	s.mux.HandleFunc("GET /{$}", templateHandlers.Dashboard)
	s.mux.HandleFunc("GET /health", s.apiHandlers.HandleHealth)
	s.mux.HandleFunc("GET /admin/stats", s.apiHandlers.HandleStats)
	if metrics != nil {
		s.mux.Handle("GET /metrics", metrics)
	}

	// REST API endpoints
	s.mux.HandleFunc("GET /api/report", s.apiHandlers.HandleReport)
	s.mux.HandleFunc("GET /api/top-customers", s.apiHandlers.HandleTopCustomers)
	s.mux.HandleFunc("GET /api/revenue/{key}", s.apiHandlers.HandleRevenue)
	s.mux.HandleFunc("GET /api/revenue-trend", s.apiHandlers.HandleRevenueTrend)
	s.mux.HandleFunc("GET /api/independence", s.apiHandlers.HandleIndependence)
	s.mux.HandleFunc("GET /api/correlation", s.apiHandlers.HandleCorrelation)
	s.mux.HandleFunc("GET /api/summary", s.apiHandlers.HandleSummary)
	s.mux.HandleFunc("POST /api/analyze", s.apiHandlers.HandleAnalyze)

	// Datastar SSE endpoints
	s.mux.HandleFunc("GET /sse/top-customers", s.sseHandlers.HandleTopCustomers)
	s.mux.HandleFunc("GET /sse/revenue", s.sseHandlers.HandleRevenue)
	s.mux.HandleFunc("GET /sse/revenue-trend", s.sseHandlers.HandleRevenueTrend)
	s.mux.HandleFunc("GET /sse/independence", s.sseHandlers.HandleIndependence)
	s.mux.HandleFunc("GET /sse/refresh-all", s.sseHandlers.HandleRefreshAll)
}

// Mux exposes the route table for middleware that labels requests by pattern.
func (s *Server) Mux() *http.ServeMux {
	return s.mux
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}
