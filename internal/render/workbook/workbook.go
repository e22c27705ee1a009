// Package workbook exports an analysis report as an XLSX file with one sheet
// per table.
package workbook

import (
	"fmt"
	"io"
	"math"

	"github.com/xuri/excelize/v2"

	"ecommerce-eda/internal/models"
)

// Sheet names in workbook order.
const (
	SheetOverview     = "Overview"
	SheetInfo         = "Info"
	SheetPreview      = "Preview"
	SheetSummary      = "Summary"
	SheetMissing      = "Missing"
	SheetCategories   = "Categories"
	SheetTopCustomers = "Top Customers"
	SheetByCategory   = "Revenue by Category"
	SheetByRegion     = "Revenue by Region"
	SheetByPayment    = "Revenue by Payment"
	SheetTrend        = "Revenue Trend"
	SheetCorrelation  = "Correlation"
	SheetIndependence = "Independence"
)

type sheet struct {
	name   string
	header []string
	rows   [][]any
}

// Write encodes report as an XLSX workbook. Undefined statistics are left as
// empty cells.
func Write(w io.Writer, report *models.Report) error {
	if report == nil {
		return fmt.Errorf("write workbook: nil report")
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#3F51B5"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, s := range sheets(report) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("create sheet %s: %w", s.name, err)
		}
		if err := writeSheet(f, s, headerStyle); err != nil {
			return fmt.Errorf("fill sheet %s: %w", s.name, err)
		}
	}
	if err := shadeCorrelation(f, len(report.Correlation.Columns)); err != nil {
		return fmt.Errorf("shade correlation: %w", err)
	}
	f.SetActiveSheet(0)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("encode workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return err
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func sheets(r *models.Report) []sheet {
	out := []sheet{
		{
			name:   SheetOverview,
			header: []string{"Metric", "Value"},
			rows: [][]any{
				{"Orders", r.RecordCount},
				{"Total revenue", r.TotalRevenue},
				{"Discounts outside [0, 1]", r.DiscountOutOfRange},
				{"Generated at", r.GeneratedAt.UTC().Format("2006-01-02 15:04:05")},
			},
		},
	}

	info := sheet{name: SheetInfo, header: []string{"column", "non_null", "dtype"}}
	for _, c := range r.Info {
		info.rows = append(info.rows, []any{c.Column, c.NonNull, c.Dtype})
	}
	out = append(out, info)

	preview := sheet{name: SheetPreview, header: append(append([]string{}, models.SourceColumns...), models.ColumnRevenue)}
	for _, o := range r.Preview {
		preview.rows = append(preview.rows, []any{
			o.CustomerID, o.Category, o.Price, o.Quantity, o.Discount,
			o.Region, o.PaymentMethod, o.OrderDate, o.Revenue,
		})
	}
	out = append(out, preview)

	summary := sheet{name: SheetSummary, header: []string{"column", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}}
	for _, s := range r.Summary {
		summary.rows = append(summary.rows, []any{
			s.Column, s.Count,
			number(s.Mean), number(s.Std), number(s.Min),
			number(s.P25), number(s.P50), number(s.P75), number(s.Max),
		})
	}
	out = append(out, summary)

	missing := sheet{name: SheetMissing, header: []string{"column", "missing"}}
	for _, m := range r.Missing {
		missing.rows = append(missing.rows, []any{m.Column, m.Missing})
	}
	out = append(out, missing)

	categories := sheet{name: SheetCategories, header: []string{"category", "orders"}}
	for _, c := range r.CategoryCounts {
		categories.rows = append(categories.rows, []any{c.Key, c.Count})
	}
	out = append(out, categories)

	out = append(out,
		revenueSheet(SheetTopCustomers, models.ColumnCustomerID, r.TopCustomers),
		revenueSheet(SheetByCategory, models.ColumnCategory, r.RevenueByCategory),
		revenueSheet(SheetByRegion, models.ColumnRegion, r.RevenueByRegion),
		revenueSheet(SheetByPayment, models.ColumnPaymentMethod, r.RevenueByPayment),
	)

	trend := sheet{name: SheetTrend, header: []string{"date", "revenue"}}
	for _, d := range r.RevenueTrend {
		trend.rows = append(trend.rows, []any{d.Day, d.Revenue})
	}
	out = append(out, trend)

	corr := sheet{name: SheetCorrelation, header: append([]string{""}, r.Correlation.Columns...)}
	for i, c := range r.Correlation.Columns {
		row := []any{c}
		if i < len(r.Correlation.Values) {
			for _, v := range r.Correlation.Values[i] {
				row = append(row, number(v))
			}
		}
		corr.rows = append(corr.rows, row)
	}
	out = append(out, corr)

	return append(out, independenceSheet(r.Independence, r.Comparison))
}

// shadeCorrelation colours the n x n coefficient block on a diverging scale
// from -1 (blue) through 0 to 1 (red).
func shadeCorrelation(f *excelize.File, n int) error {
	if n == 0 {
		return nil
	}
	last, err := excelize.CoordinatesToCellName(n+1, n+1)
	if err != nil {
		return err
	}
	return f.SetConditionalFormat(SheetCorrelation, "B2:"+last, []excelize.ConditionalFormatOptions{{
		Type:     "3_color_scale",
		Criteria: "=",
		MinType:  "num",
		MidType:  "num",
		MaxType:  "num",
		MinValue: "-1",
		MidValue: "0",
		MaxValue: "1",
		MinColor: "#3B4CC0",
		MidColor: "#DDDDDD",
		MaxColor: "#B40426",
	}})
}

func revenueSheet(name, key string, totals []models.KeyTotal) sheet {
	s := sheet{name: name, header: []string{key, "revenue", "orders"}}
	for _, t := range totals {
		s.rows = append(s.rows, []any{t.Key, t.Revenue, t.Orders})
	}
	return s
}

// independenceSheet lists both hypothesis tests, then the observed
// contingency table below them.
func independenceSheet(t models.TestResult, c models.ComparisonResult) sheet {
	s := sheet{
		name:   SheetIndependence,
		header: []string{"test", "statistic", "dof", "p_value", "alpha", "significant", "outcome"},
		rows: [][]any{
			{"chi-square " + t.ColumnA + " x " + t.ColumnB, number(t.Statistic), t.DegreesOfFreedom, number(t.PValue), t.Alpha, t.Significant(), string(t.Outcome)},
			{"welch t " + c.GroupA + " vs " + c.GroupB, number(c.T), number(c.DegreesOfFreedom), number(c.PValue), c.Alpha, c.Significant(), string(c.Outcome)},
		},
	}
	if len(t.Table.Rows) == 0 {
		return s
	}

	s.rows = append(s.rows, []any{})
	head := []any{t.ColumnA + " \\ " + t.ColumnB}
	for _, col := range t.Table.Cols {
		head = append(head, col)
	}
	s.rows = append(s.rows, head)
	for i, label := range t.Table.Rows {
		row := []any{label}
		for _, n := range t.Table.Counts[i] {
			row = append(row, n)
		}
		s.rows = append(s.rows, row)
	}
	return s
}

// number maps values a spreadsheet cannot hold to an empty cell.
func number(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
