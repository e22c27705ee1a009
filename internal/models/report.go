package models

import (
	"encoding/json"
	"math"
	"time"
)

type KeyTotal struct {
	Key     string  `json:"key"`
	Revenue float64 `json:"total_revenue"`
	Orders  int     `json:"orders"`
}

type KeyCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type DateTotal struct {
	Date    time.Time `json:"-"`
	Day     string    `json:"date"`
	Revenue float64   `json:"total_revenue"`
}

type ColumnCount struct {
	Column  string `json:"column"`
	Missing int    `json:"missing"`
}

// ColumnInfo is one line of the dataset overview: how many cells of a
// column hold a value and the storage type the column is read as.
type ColumnInfo struct {
	Column  string `json:"column"`
	NonNull int    `json:"non_null"`
	Dtype   string `json:"dtype"`
}

// NumericSample holds leading rows of the numeric columns, column-major, for
// pairwise scatter plots. Values[i] belongs to Columns[i].
type NumericSample struct {
	Columns []string    `json:"columns"`
	Values  [][]float64 `json:"values"`
}

// Outcome says whether a statistic could be computed from the data at hand.
type Outcome string

const (
	OutcomeDefined    Outcome = "defined"
	OutcomeDegenerate Outcome = "degenerate"
	OutcomeUndefined  Outcome = "undefined"
)

type ContingencyTable struct {
	Rows   []string `json:"rows"`
	Cols   []string `json:"cols"`
	Counts [][]int  `json:"counts"`
}

// TestResult is a chi-square test of independence. Statistic and PValue are
// NaN unless Outcome is OutcomeDefined.
type TestResult struct {
	ColumnA          string
	ColumnB          string
	Outcome          Outcome
	Statistic        float64
	PValue           float64
	DegreesOfFreedom int
	Expected         [][]float64
	Table            ContingencyTable
	Alpha            float64
}

// Significant applies the fixed decision rule p < Alpha.
func (r TestResult) Significant() bool {
	return r.Outcome == OutcomeDefined && r.PValue < r.Alpha
}

func (r TestResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ColumnA          string           `json:"column_a"`
		ColumnB          string           `json:"column_b"`
		Outcome          Outcome          `json:"outcome"`
		Statistic        *float64         `json:"chi2"`
		PValue           *float64         `json:"p_value"`
		DegreesOfFreedom int              `json:"dof"`
		Expected         [][]*float64     `json:"expected"`
		Table            ContingencyTable `json:"table"`
		Alpha            float64          `json:"alpha"`
		Significant      bool             `json:"significant"`
	}{
		ColumnA:          r.ColumnA,
		ColumnB:          r.ColumnB,
		Outcome:          r.Outcome,
		Statistic:        NullFloat(r.Statistic),
		PValue:           NullFloat(r.PValue),
		DegreesOfFreedom: r.DegreesOfFreedom,
		Expected:         nullMatrix(r.Expected),
		Table:            r.Table,
		Alpha:            r.Alpha,
		Significant:      r.Significant(),
	})
}

type CorrelationMatrix struct {
	Outcome Outcome
	Columns []string
	Values  [][]float64
}

// At returns the coefficient for a pair of columns, NaN when either is absent.
func (m CorrelationMatrix) At(a, b string) float64 {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 || i >= len(m.Values) || j >= len(m.Values[i]) {
		return math.NaN()
	}
	return m.Values[i][j]
}

func (m CorrelationMatrix) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Outcome Outcome      `json:"outcome"`
		Columns []string     `json:"columns"`
		Values  [][]*float64 `json:"values"`
	}{m.Outcome, m.Columns, nullMatrix(m.Values)})
}

type ColumnSummary struct {
	Column string
	Count  int
	Mean   float64
	Std    float64
	Min    float64
	P25    float64
	P50    float64
	P75    float64
	Max    float64
}

func (s ColumnSummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Column string   `json:"column"`
		Count  int      `json:"count"`
		Mean   *float64 `json:"mean"`
		Std    *float64 `json:"std"`
		Min    *float64 `json:"min"`
		P25    *float64 `json:"p25"`
		P50    *float64 `json:"p50"`
		P75    *float64 `json:"p75"`
		Max    *float64 `json:"max"`
	}{
		s.Column, s.Count,
		NullFloat(s.Mean), NullFloat(s.Std), NullFloat(s.Min),
		NullFloat(s.P25), NullFloat(s.P50), NullFloat(s.P75), NullFloat(s.Max),
	})
}

// ComparisonResult is a Welch two-sample t-test of per-order revenue between
// two groups of one categorical column.
type ComparisonResult struct {
	Key              string
	GroupA           string
	GroupB           string
	Outcome          Outcome
	NA               int
	NB               int
	MeanA            float64
	MeanB            float64
	T                float64
	DegreesOfFreedom float64
	PValue           float64
	Alpha            float64
}

func (r ComparisonResult) Significant() bool {
	return r.Outcome == OutcomeDefined && r.PValue < r.Alpha
}

func (r ComparisonResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Key              string   `json:"key"`
		GroupA           string   `json:"group_a"`
		GroupB           string   `json:"group_b"`
		Outcome          Outcome  `json:"outcome"`
		NA               int      `json:"n_a"`
		NB               int      `json:"n_b"`
		MeanA            *float64 `json:"mean_a"`
		MeanB            *float64 `json:"mean_b"`
		T                *float64 `json:"t"`
		DegreesOfFreedom *float64 `json:"dof"`
		PValue           *float64 `json:"p_value"`
		Alpha            float64  `json:"alpha"`
		Significant      bool     `json:"significant"`
	}{
		r.Key, r.GroupA, r.GroupB, r.Outcome, r.NA, r.NB,
		NullFloat(r.MeanA), NullFloat(r.MeanB), NullFloat(r.T),
		NullFloat(r.DegreesOfFreedom), NullFloat(r.PValue),
		r.Alpha, r.Significant(),
	})
}

type DensityCurve struct {
	Column string    `json:"column"`
	X      []float64 `json:"x"`
	Y      []float64 `json:"y"`
}

type Report struct {
	RecordCount        int               `json:"record_count"`
	TotalRevenue       float64           `json:"total_revenue"`
	DiscountOutOfRange int               `json:"discount_out_of_range"`
	Preview            []Order           `json:"preview"`
	Missing            []ColumnCount     `json:"missing"`
	Info               []ColumnInfo      `json:"info"`
	Summary            []ColumnSummary   `json:"summary"`
	CategoryCounts     []KeyCount        `json:"category_counts"`
	TopCustomers       []KeyTotal        `json:"top_customers"`
	RevenueByCategory  []KeyTotal        `json:"revenue_by_category"`
	RevenueByRegion    []KeyTotal        `json:"revenue_by_region"`
	RevenueByPayment   []KeyTotal        `json:"revenue_by_payment_method"`
	Independence       TestResult        `json:"independence"`
	RevenueTrend       []DateTotal       `json:"revenue_trend"`
	Correlation        CorrelationMatrix `json:"correlation"`
	Densities          []DensityCurve    `json:"densities"`
	Comparison         ComparisonResult  `json:"comparison"`
	Sample             NumericSample     `json:"-"`
	GeneratedAt        time.Time         `json:"generated_at"`
}

// NullFloat maps NaN and infinities to nil so they encode as JSON null.
func NullFloat(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return &f
}

func nullMatrix(m [][]float64) [][]*float64 {
	if m == nil {
		return nil
	}
	out := make([][]*float64, len(m))
	for i, row := range m {
		out[i] = make([]*float64, len(row))
		for j, v := range row {
			out[i][j] = NullFloat(v)
		}
	}
	return out
}
