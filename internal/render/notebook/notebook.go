// Package notebook renders an analysis report as a terminal document: bold
// section headings followed by plain tables, in the order an analyst would
// walk through the dataset.
package notebook

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"ecommerce-eda/internal/models"
)

var (
	headingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	subtle       = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	positive     = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	negative     = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
)

// Render writes every section of report to w in one write.
func Render(w io.Writer, report *models.Report) error {
	if report == nil {
		return fmt.Errorf("render notebook: nil report")
	}

	var buf bytes.Buffer
	heading(&buf, "First %d Rows of the Dataset", len(report.Preview))
	previewTable(&buf, report.Preview)

	heading(&buf, "Dataset Information")
	fmt.Fprintf(&buf, "%d orders, total revenue %s\n", report.RecordCount, money(report.TotalRevenue))
	rows := make([][]string, 0, len(report.Info))
	for i, c := range report.Info {
		rows = append(rows, []string{strconv.Itoa(i), c.Column, fmt.Sprintf("%d non-null", c.NonNull), c.Dtype})
	}
	table(&buf, []string{"#", "Column", "Non-Null Count", "Dtype"}, rows)
	if report.DiscountOutOfRange > 0 {
		fmt.Fprintln(&buf, negative.Render(fmt.Sprintf("%d orders carry a discount outside [0, 1]", report.DiscountOutOfRange)))
	}

	heading(&buf, "Summary Statistics of Numerical Columns")
	summaryTable(&buf, report.Summary)

	heading(&buf, "Missing Values in Dataset")
	rows = make([][]string, 0, len(report.Missing))
	for _, m := range report.Missing {
		rows = append(rows, []string{m.Column, strconv.Itoa(m.Missing)})
	}
	table(&buf, []string{"Column", "Missing"}, rows)

	heading(&buf, "Distribution of Product Categories")
	rows = make([][]string, 0, len(report.CategoryCounts))
	for _, c := range report.CategoryCounts {
		rows = append(rows, []string{c.Key, strconv.Itoa(c.Count)})
	}
	table(&buf, []string{"Category", "Orders"}, rows)

	heading(&buf, "Top %d Customers by Revenue", len(report.TopCustomers))
	revenueTable(&buf, "Customer", report.TopCustomers)

	heading(&buf, "Revenue by Category")
	revenueTable(&buf, "Category", report.RevenueByCategory)

	heading(&buf, "Revenue by Region")
	revenueTable(&buf, "Region", report.RevenueByRegion)

	heading(&buf, "Revenue by Payment Method")
	revenueTable(&buf, "Payment Method", report.RevenueByPayment)

	heading(&buf, "Hypothesis Test: %s vs %s", title(report.Independence.ColumnA), title(report.Independence.ColumnB))
	fmt.Fprintln(&buf, IndependenceVerdict(report.Independence))

	heading(&buf, "Revenue Trend Over Time")
	rows = make([][]string, 0, len(report.RevenueTrend))
	for _, d := range report.RevenueTrend {
		rows = append(rows, []string{d.Day, money(d.Revenue)})
	}
	table(&buf, []string{"Date", "Revenue"}, rows)

	heading(&buf, "Correlation of Numerical Features")
	correlationTable(&buf, report.Correlation)

	c := report.Comparison
	heading(&buf, "Hypothesis Test: %s vs %s Revenue", c.GroupA, c.GroupB)
	fmt.Fprintln(&buf, ComparisonVerdict(c))

	_, err := w.Write(buf.Bytes())
	return err
}

// IndependenceVerdict is the one-line conclusion of a chi-square test.
func IndependenceVerdict(r models.TestResult) string {
	a, b := title(r.ColumnA), title(r.ColumnB)
	if r.Outcome != models.OutcomeDefined {
		return subtle.Render(fmt.Sprintf("Test %s: %s and %s need at least two categories each.", r.Outcome, a, b))
	}

	stats := fmt.Sprintf("Chi2: %.3f, P-value: %.3f, dof: %d", r.Statistic, r.PValue, r.DegreesOfFreedom)
	if r.Significant() {
		return stats + "\n" + positive.Render(fmt.Sprintf("Significant association: %s and %s are related.", a, b))
	}
	return stats + "\n" + negative.Render(fmt.Sprintf("No significant association: %s and %s are independent.", a, b))
}

// ComparisonVerdict is the one-line conclusion of a two-sample t-test.
func ComparisonVerdict(r models.ComparisonResult) string {
	if r.Outcome != models.OutcomeDefined {
		return subtle.Render(fmt.Sprintf("Test %s: %s (n=%d) and %s (n=%d) need at least two orders each with some spread.",
			r.Outcome, r.GroupA, r.NA, r.GroupB, r.NB))
	}

	stats := fmt.Sprintf("T: %.3f, P-value: %.3f, means: %s vs %s", r.T, r.PValue, money(r.MeanA), money(r.MeanB))
	if r.Significant() {
		return stats + "\n" + positive.Render(fmt.Sprintf("Significant difference in revenue between %s and %s.", r.GroupA, r.GroupB))
	}
	return stats + "\n" + negative.Render(fmt.Sprintf("No significant difference in revenue between %s and %s.", r.GroupA, r.GroupB))
}

func heading(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "\n%s\n\n", headingStyle.Render(fmt.Sprintf(format, args...)))
}

func table(w io.Writer, header []string, rows [][]string) {
	t := tablewriter.NewWriter(w)
	t.SetHeader(header)
	t.SetAutoFormatHeaders(false)
	t.AppendBulk(rows)
	t.Render()
}

func previewTable(w io.Writer, orders []models.Order) {
	rows := make([][]string, 0, len(orders))
	for _, o := range orders {
		rows = append(rows, []string{
			o.CustomerID,
			o.Category,
			num(o.Price),
			strconv.Itoa(o.Quantity),
			num(o.Discount),
			o.Region,
			o.PaymentMethod,
			o.OrderDate,
			money(o.Revenue),
		})
	}
	header := append(append([]string{}, models.SourceColumns...), models.ColumnRevenue)
	table(w, header, rows)
}

func summaryTable(w io.Writer, summary []models.ColumnSummary) {
	rows := make([][]string, 0, len(summary))
	for _, s := range summary {
		rows = append(rows, []string{
			s.Column, strconv.Itoa(s.Count),
			num(s.Mean), num(s.Std), num(s.Min), num(s.P25), num(s.P50), num(s.P75), num(s.Max),
		})
	}
	table(w, []string{"", "count", "mean", "std", "min", "25%", "50%", "75%", "max"}, rows)
}

func revenueTable(w io.Writer, label string, totals []models.KeyTotal) {
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		rows = append(rows, []string{t.Key, money(t.Revenue), strconv.Itoa(t.Orders)})
	}
	table(w, []string{label, "Revenue", "Orders"}, rows)
}

func correlationTable(w io.Writer, m models.CorrelationMatrix) {
	if m.Outcome != models.OutcomeDefined {
		fmt.Fprintln(w, subtle.Render("Correlation undefined: fewer than two orders."))
		return
	}
	rows := make([][]string, 0, len(m.Columns))
	for i, c := range m.Columns {
		row := []string{c}
		for _, v := range m.Values[i] {
			row = append(row, corr(v))
		}
		rows = append(rows, row)
	}
	table(w, append([]string{""}, m.Columns...), rows)
}

// title turns a column name such as payment_method into "Payment Method".
func title(column string) string {
	words := strings.Fields(strings.ReplaceAll(column, "_", " "))
	for i, word := range words {
		words[i] = strings.ToUpper(word[:1]) + word[1:]
	}
	return strings.Join(words, " ")
}

func money(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func corr(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
