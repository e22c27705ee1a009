package pipeline

import (
	"math"
	"slices"

	"gonum.org/v1/gonum/stat"

	"ecommerce-eda/internal/models"
)

// CorrelationMatrix computes pairwise Pearson coefficients between numeric
// columns. The diagonal is 1. A pair involving a constant column is NaN, and
// with fewer than two orders every entry is NaN and the outcome undefined.
func CorrelationMatrix(orders []models.Order, columns []string) (models.CorrelationMatrix, error) {
	data := make([][]float64, len(columns))
	for i, c := range columns {
		xs, err := numericColumn(orders, c)
		if err != nil {
			return models.CorrelationMatrix{}, err
		}
		data[i] = xs
	}

	m := models.CorrelationMatrix{
		Outcome: models.OutcomeDefined,
		Columns: slices.Clone(columns),
		Values:  make([][]float64, len(columns)),
	}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(columns))
	}

	if len(orders) < 2 {
		m.Outcome = models.OutcomeUndefined
		for i := range m.Values {
			for j := range m.Values[i] {
				m.Values[i][j] = math.NaN()
			}
		}
		return m, nil
	}

	for i := range columns {
		m.Values[i][i] = 1
		for j := i + 1; j < len(columns); j++ {
			r := pearson(data[i], data[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}
	return m, nil
}

func pearson(x, y []float64) float64 {
	if constant(x) || constant(y) {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return r
	}
	return math.Max(-1, math.Min(1, r))
}

func constant(xs []float64) bool {
	if len(xs) == 0 {
		return true
	}
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
