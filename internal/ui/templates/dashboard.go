// Package templates renders the dashboard page and the fragments the SSE
// endpoints patch into it. Components live in dashboard.templ; regenerate
// dashboard_templ.go with `templ generate` after editing it.
package templates

import (
	"fmt"
	"time"

	"ecommerce-eda/internal/models"
)

// DashboardView is the server-rendered part of the page: headline numbers and
// the hypothesis-test verdicts as of the served snapshot.
type DashboardView struct {
	Loaded       bool
	RecordCount  int
	TotalRevenue float64
	Categories   int
	Days         int
	Independence models.TestResult
	Comparison   models.ComparisonResult
	GeneratedAt  time.Time
}

func NewDashboardView(report *models.Report) DashboardView {
	if report == nil {
		return DashboardView{}
	}
	return DashboardView{
		Loaded:       true,
		RecordCount:  report.RecordCount,
		TotalRevenue: report.TotalRevenue,
		Categories:   len(report.RevenueByCategory),
		Days:         len(report.RevenueTrend),
		Independence: report.Independence,
		Comparison:   report.Comparison,
		GeneratedAt:  report.GeneratedAt,
	}
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func generatedAt(t time.Time) string {
	return "Generated " + t.Format(time.RFC1123)
}

func independenceStats(r models.TestResult) string {
	return fmt.Sprintf("chi2 = %.4f, dof = %d, p = %.4f", r.Statistic, r.DegreesOfFreedom, r.PValue)
}

func independenceDecision(r models.TestResult) string {
	if r.Significant() {
		return "Dependent"
	}
	return "No evidence of dependence"
}

func alphaText(alpha float64) string {
	return fmt.Sprintf(" at alpha = %.2f", alpha)
}

func comparisonText(c models.ComparisonResult) string {
	if c.Outcome != models.OutcomeDefined {
		return fmt.Sprintf("Test %s (n = %d, %d)", c.Outcome, c.NA, c.NB)
	}
	decision := "no significant difference"
	if c.Significant() {
		decision = "means differ"
	}
	return fmt.Sprintf("t = %.4f, dof = %.2f, p = %.4f: %s at alpha = %.2f",
		c.T, c.DegreesOfFreedom, c.PValue, decision, c.Alpha)
}
