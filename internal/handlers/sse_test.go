package handlers

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-eda/internal/models"
	"ecommerce-eda/internal/services"
)

func TestNewSSEHandlers(t *testing.T) {
	analytics := createTestAnalytics(t)
	logger := testLogger()

	h := NewSSEHandlers(analytics, logger, Limits{TopCustomers: 500})
	assert.Same(t, analytics, h.analytics)
	assert.Same(t, logger, h.logger)
	assert.Equal(t, maxTableRows, h.topCustomers)

	assert.Equal(t, 5, NewSSEHandlers(analytics, logger, Limits{}).topCustomers)
}

func TestRenderCustomerTable(t *testing.T) {
	html, err := renderCustomerTable(context.Background(), []models.KeyTotal{
		{Key: "C1", Revenue: 240, Orders: 2},
		{Key: "<script>", Revenue: 59.5, Orders: 1},
	})
	require.NoError(t, err)

	assert.Contains(t, html, `id="top-customers-content"`)
	assert.Contains(t, html, "<td>1</td>")
	assert.Contains(t, html, "<td>C1</td>")
	assert.Contains(t, html, "$240.00")
	assert.Contains(t, html, "$59.50")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<script>")
}

func TestRenderCustomerTable_Truncates(t *testing.T) {
	rows := make([]models.KeyTotal, maxTableRows+10)
	for i := range rows {
		rows[i] = models.KeyTotal{Key: "C", Revenue: 1, Orders: 1}
	}

	html, err := renderCustomerTable(context.Background(), rows)
	require.NoError(t, err)
	assert.Equal(t, maxTableRows, strings.Count(html, "<tr>")-1)
}

func TestRenderVerdict(t *testing.T) {
	tests := []struct {
		name   string
		result models.TestResult
		want   []string
	}{
		{
			name: "dependent",
			result: models.TestResult{
				ColumnA: "region", ColumnB: "payment_method", Outcome: models.OutcomeDefined,
				Statistic: 12.5, PValue: 0.0004, DegreesOfFreedom: 1, Alpha: 0.05,
			},
			want: []string{"region × payment_method", "12.5000", "dof = 1", "Dependent"},
		},
		{
			name: "independent",
			result: models.TestResult{
				ColumnA: "region", ColumnB: "payment_method", Outcome: models.OutcomeDefined,
				Statistic: 0, PValue: 1, DegreesOfFreedom: 1, Alpha: 0.05,
			},
			want: []string{"No evidence of dependence"},
		},
		{
			name: "degenerate",
			result: models.TestResult{
				ColumnA: "region", ColumnB: "payment_method", Outcome: models.OutcomeDegenerate,
				Statistic: math.NaN(), PValue: math.NaN(), Alpha: 0.05,
			},
			want: []string{`data-outcome="degenerate"`, "Test degenerate"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, err := renderVerdict(context.Background(), tt.result)
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, html, w)
			}
			assert.NotContains(t, html, "NaN")
		})
	}
}

func serveSSE(t *testing.T, handler http.HandlerFunc) string {
	t.Helper()
	w := httptest.NewRecorder()
	handler(w, httptest.NewRequest(http.MethodGet, "/sse", nil))
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	return w.Body.String()
}

func TestSSEHandlers(t *testing.T) {
	h := NewSSEHandlers(createTestAnalytics(t), testLogger(), Limits{TopCustomers: 2})

	t.Run("top customers", func(t *testing.T) {
		body := serveSSE(t, h.HandleTopCustomers)
		assert.Contains(t, body, "datastar-patch-elements")
		assert.Contains(t, body, "top-customers-content")
		assert.Contains(t, body, "C1")
		assert.Contains(t, body, "C3")
		assert.NotContains(t, body, "C4")
	})

	t.Run("revenue", func(t *testing.T) {
		body := serveSSE(t, h.HandleRevenue)
		assert.Contains(t, body, "datastar-patch-signals")
		assert.Contains(t, body, "categoryRevenue")
		assert.Contains(t, body, "regionRevenue")
		assert.Contains(t, body, "paymentRevenue")
		assert.Contains(t, body, "Electronics")
	})

	t.Run("revenue trend", func(t *testing.T) {
		body := serveSSE(t, h.HandleRevenueTrend)
		assert.Contains(t, body, "trendData")
		assert.Contains(t, body, "2024-01-03")
	})

	t.Run("independence", func(t *testing.T) {
		body := serveSSE(t, h.HandleIndependence)
		assert.Contains(t, body, "independence-content")
		assert.Contains(t, body, "region")
	})

	t.Run("refresh all", func(t *testing.T) {
		body := serveSSE(t, h.HandleRefreshAll)
		assert.Equal(t, 2, strings.Count(body, "event: datastar-patch-elements"))
		assert.Equal(t, 1, strings.Count(body, "event: datastar-patch-signals"))
		for _, s := range []string{"categoryRevenue", "regionRevenue", "paymentRevenue", "trendData"} {
			assert.Contains(t, body, s)
		}
	})
}

func TestSSEHandlers_NoData(t *testing.T) {
	h := NewSSEHandlers(services.NewAnalytics(), testLogger(), Limits{})

	for name, handler := range map[string]http.HandlerFunc{
		"top customers": h.HandleTopCustomers,
		"revenue":       h.HandleRevenue,
		"trend":         h.HandleRevenueTrend,
		"independence":  h.HandleIndependence,
		"refresh all":   h.HandleRefreshAll,
	} {
		t.Run(name, func(t *testing.T) {
			body := serveSSE(t, handler)
			assert.Contains(t, body, "Dataset not loaded")
		})
	}
}
