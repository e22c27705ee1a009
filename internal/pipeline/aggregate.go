package pipeline

import (
	"cmp"
	"slices"

	"ecommerce-eda/internal/models"
)

// DefaultTopCustomers is how many customers the report ranks.
const DefaultTopCustomers = 5

// TopByRevenue sums revenue per group and orders the groups by total,
// highest first. Groups with equal totals keep the order in which they were
// first seen. n <= 0 keeps every group.
func TopByRevenue(orders []models.Order, key GroupKey, n int) ([]models.KeyTotal, error) {
	index := make(map[string]int)
	totals := make([]models.KeyTotal, 0)

	for _, o := range orders {
		k, err := key.Of(o)
		if err != nil {
			return nil, err
		}
		i, ok := index[k]
		if !ok {
			i = len(totals)
			index[k] = i
			totals = append(totals, models.KeyTotal{Key: k})
		}
		totals[i].Revenue += o.Revenue
		totals[i].Orders++
	}

	slices.SortStableFunc(totals, func(a, b models.KeyTotal) int {
		return cmp.Compare(b.Revenue, a.Revenue)
	})

	if n > 0 && len(totals) > n {
		totals = totals[:n]
	}
	return totals, nil
}

// ValueCounts counts orders per group, most frequent first, ties in
// first-seen order.
func ValueCounts(orders []models.Order, key GroupKey) ([]models.KeyCount, error) {
	index := make(map[string]int)
	counts := make([]models.KeyCount, 0)

	for _, o := range orders {
		k, err := key.Of(o)
		if err != nil {
			return nil, err
		}
		i, ok := index[k]
		if !ok {
			i = len(counts)
			index[k] = i
			counts = append(counts, models.KeyCount{Key: k})
		}
		counts[i].Count++
	}

	slices.SortStableFunc(counts, func(a, b models.KeyCount) int {
		return cmp.Compare(b.Count, a.Count)
	})
	return counts, nil
}

// MissingValues counts empty or NA cells per source column.
func MissingValues(raw []models.RawOrder) []models.ColumnCount {
	out := make([]models.ColumnCount, len(models.SourceColumns))
	for i, col := range models.SourceColumns {
		out[i].Column = col
		for _, r := range raw {
			v, _ := r.Field(col)
			if IsMissing(v) {
				out[i].Missing++
			}
		}
	}
	return out
}

// columnDtypes are the storage types the columns are read as.
var columnDtypes = map[string]string{
	models.ColumnPrice:    "float64",
	models.ColumnQuantity: "int64",
	models.ColumnDiscount: "float64",
	models.ColumnRevenue:  "float64",
}

// DatasetInfo lists every column with its non-null count and dtype, the
// derived revenue column last. Text columns are "object".
func DatasetInfo(raw []models.RawOrder) []models.ColumnInfo {
	missing := MissingValues(raw)
	out := make([]models.ColumnInfo, 0, len(missing)+1)
	for _, m := range missing {
		out = append(out, models.ColumnInfo{Column: m.Column, NonNull: len(raw) - m.Missing, Dtype: dtype(m.Column)})
	}
	return append(out, models.ColumnInfo{Column: models.ColumnRevenue, NonNull: len(raw), Dtype: dtype(models.ColumnRevenue)})
}

func dtype(column string) string {
	if t, ok := columnDtypes[column]; ok {
		return t
	}
	return "object"
}
