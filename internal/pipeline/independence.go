package pipeline

import (
	"math"
	"slices"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"ecommerce-eda/internal/models"
)

// SignificanceLevel is the fixed decision threshold for every test in the
// report. It is a policy choice.
const SignificanceLevel = 0.05

// Crosstab counts orders for every observed pair of values of a and b. Row
// and column labels are sorted ascending.
func Crosstab(orders []models.Order, a, b GroupKey) (models.ContingencyTable, error) {
	as := make([]string, len(orders))
	bs := make([]string, len(orders))
	for i, o := range orders {
		var err error
		if as[i], err = a.Of(o); err != nil {
			return models.ContingencyTable{}, err
		}
		if bs[i], err = b.Of(o); err != nil {
			return models.ContingencyTable{}, err
		}
	}

	rows := lo.Uniq(as)
	cols := lo.Uniq(bs)
	slices.Sort(rows)
	slices.Sort(cols)

	rowIdx := indexOf(rows)
	colIdx := indexOf(cols)
	counts := make([][]int, len(rows))
	for i := range counts {
		counts[i] = make([]int, len(cols))
	}
	for i := range orders {
		counts[rowIdx[as[i]]][colIdx[bs[i]]]++
	}

	return models.ContingencyTable{Rows: rows, Cols: cols, Counts: counts}, nil
}

// IndependenceTest runs a chi-square test of independence between two
// categorical columns, without continuity correction. Fewer than two
// observations leave the test undefined; a single distinct value on either
// axis makes it degenerate with zero degrees of freedom. Neither case carries
// a statistic or p-value.
func IndependenceTest(orders []models.Order, a, b GroupKey) (models.TestResult, error) {
	table, err := Crosstab(orders, a, b)
	if err != nil {
		return models.TestResult{}, err
	}
	return ChiSquareTest(table, string(a), string(b)), nil
}

// ChiSquareTest evaluates an already built contingency table. A table with an
// all-zero row or column is degenerate.
func ChiSquareTest(table models.ContingencyTable, columnA, columnB string) models.TestResult {
	res := models.TestResult{
		ColumnA:   columnA,
		ColumnB:   columnB,
		Statistic: math.NaN(),
		PValue:    math.NaN(),
		Table:     table,
		Alpha:     SignificanceLevel,
	}

	rowTotals := make([]float64, len(table.Counts))
	colTotals := make([]float64, len(table.Cols))
	var grand float64
	for i, row := range table.Counts {
		for j, n := range row {
			rowTotals[i] += float64(n)
			colTotals[j] += float64(n)
			grand += float64(n)
		}
	}

	if grand < 2 {
		res.Outcome = models.OutcomeUndefined
		return res
	}
	if degenerate(rowTotals) || degenerate(colTotals) {
		res.Outcome = models.OutcomeDegenerate
		return res
	}

	expected := make([][]float64, len(rowTotals))
	obs := make([]float64, 0, len(rowTotals)*len(colTotals))
	exp := make([]float64, 0, len(rowTotals)*len(colTotals))
	for i := range rowTotals {
		expected[i] = make([]float64, len(colTotals))
		for j := range colTotals {
			expected[i][j] = rowTotals[i] * colTotals[j] / grand
			obs = append(obs, float64(table.Counts[i][j]))
			exp = append(exp, expected[i][j])
		}
	}

	dof := (len(rowTotals) - 1) * (len(colTotals) - 1)
	chi2 := stat.ChiSquare(obs, exp)

	res.Outcome = models.OutcomeDefined
	res.Statistic = chi2
	res.DegreesOfFreedom = dof
	res.Expected = expected
	res.PValue = distuv.ChiSquared{K: float64(dof)}.Survival(chi2)
	return res
}

// degenerate reports an axis with fewer than two categories or an empty one.
func degenerate(totals []float64) bool {
	if len(totals) < 2 {
		return true
	}
	for _, t := range totals {
		if t == 0 {
			return true
		}
	}
	return false
}

func indexOf(labels []string) map[string]int {
	m := make(map[string]int, len(labels))
	for i, l := range labels {
		m[l] = i
	}
	return m
}
