package pipeline

import (
	"math"
	"slices"

	"github.com/aclements/go-moremath/stats"

	"ecommerce-eda/internal/models"
)

// Describe summarises numeric columns: count, mean, sample standard
// deviation, min, quartiles and max. Statistics that need more data than the
// column holds are NaN.
func Describe(orders []models.Order, columns []string) ([]models.ColumnSummary, error) {
	out := make([]models.ColumnSummary, 0, len(columns))
	for _, c := range columns {
		xs, err := numericColumn(orders, c)
		if err != nil {
			return nil, err
		}
		out = append(out, summarize(c, xs))
	}
	return out, nil
}

// SampleColumns copies the first limit values of each numeric column.
// limit <= 0 keeps every order.
func SampleColumns(orders []models.Order, columns []string, limit int) (models.NumericSample, error) {
	if limit > 0 && len(orders) > limit {
		orders = orders[:limit]
	}
	sample := models.NumericSample{
		Columns: slices.Clone(columns),
		Values:  make([][]float64, len(columns)),
	}
	for i, c := range columns {
		xs, err := numericColumn(orders, c)
		if err != nil {
			return models.NumericSample{}, err
		}
		sample.Values[i] = xs
	}
	return sample, nil
}

func summarize(column string, xs []float64) models.ColumnSummary {
	nan := math.NaN()
	s := models.ColumnSummary{
		Column: column,
		Count:  len(xs),
		Mean:   nan, Std: nan, Min: nan, P25: nan, P50: nan, P75: nan, Max: nan,
	}
	if len(xs) == 0 {
		return s
	}

	sample := stats.Sample{Xs: slices.Clone(xs)}
	sample.Sort()

	s.Min, s.Max = sample.Bounds()
	s.Mean = sample.Mean()
	if len(xs) > 1 {
		s.Std = sample.StdDev()
	}
	s.P25 = linearQuantile(sample.Xs, 0.25)
	s.P50 = linearQuantile(sample.Xs, 0.5)
	s.P75 = linearQuantile(sample.Xs, 0.75)
	return s
}

// linearQuantile interpolates between the two order statistics around
// h = (n-1)q, the Hyndman-Fan type 7 estimator. sorted must be ascending and
// non-empty.
func linearQuantile(sorted []float64, q float64) float64 {
	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[lo+1]-sorted[lo])
}

// DefaultDensityPoints is the resolution of density curves in the report.
const DefaultDensityPoints = 64

// Density estimates the distribution of a numeric column with a Gaussian
// kernel. Columns with fewer than two distinct values yield an empty curve.
func Density(orders []models.Order, column string, points int) (models.DensityCurve, error) {
	xs, err := numericColumn(orders, column)
	if err != nil {
		return models.DensityCurve{}, err
	}
	curve := models.DensityCurve{Column: column, X: []float64{}, Y: []float64{}}
	if len(xs) < 2 || constant(xs) || points < 2 {
		return curve, nil
	}

	kde := &stats.KDE{Sample: stats.Sample{Xs: xs}}
	lo, hi := kde.Sample.Bounds()
	pad := (hi - lo) * 0.1
	lo, hi = lo-pad, hi+pad
	step := (hi - lo) / float64(points-1)

	curve.X = make([]float64, points)
	curve.Y = make([]float64, points)
	for i := range points {
		x := lo + float64(i)*step
		curve.X[i] = x
		curve.Y[i] = kde.PDF(x)
	}
	return curve, nil
}
