package pipeline

import (
	"fmt"
	"slices"

	"ecommerce-eda/internal/models"
)

type Options struct {
	TopCustomers  int
	PreviewRows   int
	TestColumns   [2]GroupKey
	CompareKey    GroupKey
	CompareGroups [2]string
	DensityPoints int
	SampleRows    int
}

// DefaultSampleRows caps the rows kept for scatter plots.
const DefaultSampleRows = 1000

func DefaultOptions() Options {
	return Options{
		TopCustomers:  DefaultTopCustomers,
		PreviewRows:   5,
		TestColumns:   [2]GroupKey{GroupRegion, GroupPaymentMethod},
		CompareKey:    GroupCategory,
		CompareGroups: [2]string{"Electronics", "Sports"},
		DensityPoints: DefaultDensityPoints,
		SampleRows:    DefaultSampleRows,
	}
}

// Result is one pipeline run. Customers is the full customer ranking; the
// report keeps only its head.
type Result struct {
	Report    *models.Report
	Customers []models.KeyTotal
}

// Analyze runs every stage over one dataset snapshot and collects the results
// into a Report. It stops at the first stage error. GeneratedAt is left for
// the caller to stamp.
func Analyze(raw []models.RawOrder, opts Options) (*models.Report, error) {
	res, err := Run(raw, opts)
	if err != nil {
		return nil, err
	}
	return res.Report, nil
}

// Run is Analyze keeping the full customer ranking alongside the report.
func Run(raw []models.RawOrder, opts Options) (*Result, error) {
	report := &models.Report{
		RecordCount: len(raw),
		Missing:     MissingValues(raw),
		Info:        DatasetInfo(raw),
	}

	orders, err := ComputeRevenue(raw)
	if err != nil {
		return nil, fmt.Errorf("compute revenue: %w", err)
	}
	report.TotalRevenue = TotalRevenue(orders)
	report.DiscountOutOfRange = DiscountOutOfRange(orders)
	report.Preview = slices.Clone(orders[:max(0, min(opts.PreviewRows, len(orders)))])

	if report.Summary, err = Describe(orders, models.NumericColumns); err != nil {
		return nil, fmt.Errorf("describe: %w", err)
	}
	if report.CategoryCounts, err = ValueCounts(orders, GroupCategory); err != nil {
		return nil, fmt.Errorf("category counts: %w", err)
	}

	customers, err := TopByRevenue(orders, GroupCustomer, 0)
	if err != nil {
		return nil, fmt.Errorf("top customers: %w", err)
	}
	report.TopCustomers = customers
	if opts.TopCustomers > 0 && len(customers) > opts.TopCustomers {
		report.TopCustomers = customers[:opts.TopCustomers:opts.TopCustomers]
	}
	if report.RevenueByCategory, err = TopByRevenue(orders, GroupCategory, 0); err != nil {
		return nil, fmt.Errorf("revenue by category: %w", err)
	}
	if report.RevenueByRegion, err = TopByRevenue(orders, GroupRegion, 0); err != nil {
		return nil, fmt.Errorf("revenue by region: %w", err)
	}
	if report.RevenueByPayment, err = TopByRevenue(orders, GroupPaymentMethod, 0); err != nil {
		return nil, fmt.Errorf("revenue by payment method: %w", err)
	}

	if report.Independence, err = IndependenceTest(orders, opts.TestColumns[0], opts.TestColumns[1]); err != nil {
		return nil, fmt.Errorf("independence test: %w", err)
	}
	if report.RevenueTrend, err = RevenueByDate(orders); err != nil {
		return nil, fmt.Errorf("revenue by date: %w", err)
	}
	if report.Correlation, err = CorrelationMatrix(orders, models.NumericColumns); err != nil {
		return nil, fmt.Errorf("correlation: %w", err)
	}

	report.Densities = make([]models.DensityCurve, 0, len(models.NumericColumns))
	for _, c := range models.NumericColumns {
		d, err := Density(orders, c, opts.DensityPoints)
		if err != nil {
			return nil, fmt.Errorf("density of %s: %w", c, err)
		}
		report.Densities = append(report.Densities, d)
	}

	report.Comparison, err = CompareRevenue(orders, opts.CompareKey, opts.CompareGroups[0], opts.CompareGroups[1])
	if err != nil {
		return nil, fmt.Errorf("compare revenue: %w", err)
	}

	if report.Sample, err = SampleColumns(orders, models.NumericColumns, opts.SampleRows); err != nil {
		return nil, fmt.Errorf("sample columns: %w", err)
	}

	return &Result{Report: report, Customers: customers}, nil
}
