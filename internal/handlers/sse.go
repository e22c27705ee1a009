package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"

	"ecommerce-eda/internal/models"
	"ecommerce-eda/internal/pipeline"
	"ecommerce-eda/internal/services"
	"ecommerce-eda/internal/ui/templates"
)

const maxTableRows = 50

type SSEHandlers struct {
	analytics    *services.Analytics
	logger       *slog.Logger
	topCustomers int
}

func NewSSEHandlers(analytics *services.Analytics, logger *slog.Logger, limits Limits) *SSEHandlers {
	n := limits.TopCustomers
	if n <= 0 {
		n = pipeline.DefaultTopCustomers
	}
	return &SSEHandlers{
		analytics:    analytics,
		logger:       logger,
		topCustomers: min(n, maxTableRows),
	}
}

func renderCustomerTable(ctx context.Context, data []models.KeyTotal) (string, error) {
	if len(data) > maxTableRows {
		data = data[:maxTableRows]
	}
	return renderFragment(ctx, templates.TopCustomersTable(data))
}

func renderVerdict(ctx context.Context, result models.TestResult) (string, error) {
	return renderFragment(ctx, templates.IndependenceVerdict(result))
}

func renderFragment(ctx context.Context, c templ.Component) (string, error) {
	var buf strings.Builder
	err := c.Render(ctx, &buf)
	return buf.String(), err
}

const notLoadedHTML = `<div id="status" class="status-error">Dataset not loaded</div>`

func (h *SSEHandlers) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data, err := h.analytics.TopCustomers(h.topCustomers)
	if err != nil {
		sse.PatchElements(notLoadedHTML)
		return
	}
	html, err := renderCustomerTable(r.Context(), data)
	if err != nil {
		h.logger.Error("render customer table", "error", err)
		return
	}

	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) revenueSignals() (map[string]any, error) {
	signals := make(map[string]any, 3)
	for name, key := range map[string]pipeline.GroupKey{
		"categoryRevenue": pipeline.GroupCategory,
		"regionRevenue":   pipeline.GroupRegion,
		"paymentRevenue":  pipeline.GroupPaymentMethod,
	} {
		data, err := h.analytics.RevenueBy(key)
		if err != nil {
			return nil, err
		}
		signals[name] = data
	}
	return signals, nil
}

func (h *SSEHandlers) HandleRevenue(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	signals, err := h.revenueSignals()
	if err != nil {
		sse.PatchElements(notLoadedHTML)
		return
	}
	jsonData, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal revenue data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="revenue-content">Revenue chart data loaded</div>`)
	flush(w)
}

func (h *SSEHandlers) HandleRevenueTrend(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	data, err := h.analytics.RevenueTrend()
	if err != nil {
		sse.PatchElements(notLoadedHTML)
		return
	}
	jsonData, err := json.Marshal(map[string]any{
		"trendData": data,
	})
	if err != nil {
		h.logger.Error("marshal trend data", "error", err)
		return
	}
	sse.PatchSignals(jsonData)

	sse.PatchElements(`<div id="trend-content">Revenue trend data loaded</div>`)
	flush(w)
}

func (h *SSEHandlers) HandleIndependence(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	result, err := h.analytics.Independence()
	if err != nil {
		sse.PatchElements(notLoadedHTML)
		return
	}
	html, err := renderVerdict(r.Context(), result)
	if err != nil {
		h.logger.Error("render independence verdict", "error", err)
		return
	}

	sse.PatchElements(html)
	flush(w)
}

func (h *SSEHandlers) HandleRefreshAll(w http.ResponseWriter, r *http.Request) {
	sse := datastar.NewSSE(w, r)

	customers, err := h.analytics.TopCustomers(h.topCustomers)
	if err != nil {
		sse.PatchElements(notLoadedHTML)
		return
	}
	html, err := renderCustomerTable(r.Context(), customers)
	if err != nil {
		h.logger.Error("render customer table", "error", err)
		return
	}
	sse.PatchElements(html)

	result, err := h.analytics.Independence()
	if err != nil {
		h.logger.Error("read independence result", "error", err)
		return
	}
	if html, err = renderVerdict(r.Context(), result); err != nil {
		h.logger.Error("render independence verdict", "error", err)
		return
	}
	sse.PatchElements(html)

	signals, err := h.revenueSignals()
	if err != nil {
		h.logger.Error("read revenue rollups", "error", err)
		return
	}
	if signals["trendData"], err = h.analytics.RevenueTrend(); err != nil {
		h.logger.Error("read revenue trend", "error", err)
		return
	}

	// Send all signals in one call
	allSignals, err := json.Marshal(signals)
	if err != nil {
		h.logger.Error("marshal all signals data", "error", err)
		return
	}
	sse.PatchSignals(allSignals)
	flush(w)
}

func flush(w http.ResponseWriter) {
	if f, ok := w.(http.Flusher); ok {
		f.Flush()
	}
}
