package templates

import (
	"context"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-eda/internal/models"
)

func render(t *testing.T, view DashboardView) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, Dashboard(view).Render(context.Background(), &sb))
	return sb.String()
}

func TestDashboard_NotLoaded(t *testing.T) {
	html := render(t, NewDashboardView(nil))

	assert.True(t, strings.HasPrefix(html, "<!doctype html>"))
	assert.Contains(t, html, "Dataset not loaded")
	assert.Contains(t, html, "@get('/sse/refresh-all')")
	assert.NotContains(t, html, "independence-content")
}

func TestDashboard_Loaded(t *testing.T) {
	report := &models.Report{
		RecordCount:       6,
		TotalRevenue:      550,
		RevenueByCategory: []models.KeyTotal{{Key: "A"}, {Key: "B"}},
		RevenueTrend:      []models.DateTotal{{Day: "2024-01-01"}},
		Independence: models.TestResult{
			ColumnA: "region", ColumnB: "<payment>", Outcome: models.OutcomeDefined,
			Statistic: 0.793651, PValue: 0.372998, DegreesOfFreedom: 1, Alpha: 0.05,
		},
		Comparison: models.ComparisonResult{
			GroupA: "Electronics", GroupB: "Sports", Outcome: models.OutcomeUndefined,
			NA: 1, NB: 3, T: math.NaN(), PValue: math.NaN(), Alpha: 0.05,
		},
		GeneratedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}

	html := render(t, NewDashboardView(report))

	assert.Contains(t, html, `<span class="value">6</span>`)
	assert.Contains(t, html, "$550.00")
	assert.Contains(t, html, `<span class="value">2</span>`)
	assert.Contains(t, html, "chi2 = 0.7937, dof = 1, p = 0.3730")
	assert.Contains(t, html, "<strong>No evidence of dependence</strong> at alpha = 0.05")
	assert.Contains(t, html, `id="independence-content"`)
	assert.Contains(t, html, "region vs &lt;payment&gt;")
	assert.Contains(t, html, "Test undefined (n = 1, 3)")
	assert.Contains(t, html, "Wed, 01 May 2024")
	assert.NotContains(t, html, "NaN")
}

func renderComponent(t *testing.T, c templ.Component) string {
	t.Helper()
	var sb strings.Builder
	require.NoError(t, c.Render(context.Background(), &sb))
	return sb.String()
}

func TestIndependenceVerdict(t *testing.T) {
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
			want: []string{`data-outcome="defined"`, "region × payment_method", "12.5000", "dof = 1", "<strong>Dependent</strong>"},
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
				ColumnA: "region", ColumnB: "<b>", Outcome: models.OutcomeDegenerate,
				Statistic: math.NaN(), PValue: math.NaN(), Alpha: 0.05,
			},
			want: []string{`data-outcome="degenerate"`, "Test degenerate", "&lt;b&gt;"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := renderComponent(t, IndependenceVerdict(tt.result))
			assert.True(t, strings.HasPrefix(html, `<div id="independence-content"`))
			for _, w := range tt.want {
				assert.Contains(t, html, w)
			}
			assert.NotContains(t, html, "NaN")
		})
	}
}

func TestTopCustomersTable(t *testing.T) {
	html := renderComponent(t, TopCustomersTable([]models.KeyTotal{
		{Key: "C1", Revenue: 240, Orders: 2},
		{Key: "<script>", Revenue: 59.5, Orders: 1},
	}))

	assert.Contains(t, html, `id="top-customers-content"`)
	assert.Contains(t, html, "<tr><td>1</td><td>C1</td><td><strong>$240.00</strong></td><td>2</td></tr>")
	assert.Contains(t, html, "<td>2</td><td>&lt;script&gt;</td>")
	assert.Contains(t, html, "$59.50")
	assert.NotContains(t, html, "<script>")
	assert.Equal(t, 3, strings.Count(html, "<tr>"))
}

func TestDashboard_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var sb strings.Builder
	assert.ErrorIs(t, Dashboard(NewDashboardView(nil)).Render(ctx, &sb), context.Canceled)
	assert.Zero(t, sb.Len())
}
