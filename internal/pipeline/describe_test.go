package pipeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-eda/internal/models"
)

func TestDescribe(t *testing.T) {
	got, err := Describe(sampleOrders(t), []string{models.ColumnPrice, models.ColumnQuantity})
	require.NoError(t, err)
	require.Len(t, got, 2)

	price := got[0]
	assert.Equal(t, models.ColumnPrice, price.Column)
	assert.Equal(t, 7, price.Count)
	assert.Equal(t, 15.5, price.Min)
	assert.Equal(t, 300.0, price.Max)
	assert.InDelta(t, 600.5/7, price.Mean, 1e-9)
	assert.InDelta(t, 50.0, price.P50, 1e-9)
	assert.LessOrEqual(t, price.Min, price.P25)
	assert.LessOrEqual(t, price.P25, price.P50)
	assert.LessOrEqual(t, price.P50, price.P75)
	assert.LessOrEqual(t, price.P75, price.Max)
	assert.Greater(t, price.Std, 0.0)

	quantity := got[1]
	assert.Equal(t, 1.0, quantity.Min)
	assert.Equal(t, 4.0, quantity.Max)
}

func TestDescribe_LinearQuartiles(t *testing.T) {
	orders := []models.Order{{Price: 4}, {Price: 1}, {Price: 3}, {Price: 2}}

	got, err := Describe(orders, []string{models.ColumnPrice})
	require.NoError(t, err)
	assert.InDelta(t, 1.75, got[0].P25, 1e-12)
	assert.InDelta(t, 2.5, got[0].P50, 1e-12)
	assert.InDelta(t, 3.25, got[0].P75, 1e-12)

	// Input order is left untouched.
	assert.Equal(t, 4.0, orders[0].Price)
}

func TestLinearQuantile(t *testing.T) {
	tests := []struct {
		xs   []float64
		q    float64
		want float64
	}{
		{[]float64{7}, 0.25, 7},
		{[]float64{1, 2, 3, 4, 5}, 0.25, 2},
		{[]float64{1, 2, 3, 4, 5}, 0.75, 4},
		{[]float64{10, 20}, 0.5, 15},
		{[]float64{1, 2, 3, 4}, 1, 4},
		{[]float64{1, 2, 3, 4}, 0, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, linearQuantile(tt.xs, tt.q), 1e-12, "%v q=%v", tt.xs, tt.q)
	}
}

func TestDescribe_SmallColumns(t *testing.T) {
	got, err := Describe([]models.Order{{Price: 9}}, []string{models.ColumnPrice})
	require.NoError(t, err)
	assert.Equal(t, 9.0, got[0].Mean)
	assert.True(t, math.IsNaN(got[0].Std))

	got, err = Describe(nil, []string{models.ColumnPrice})
	require.NoError(t, err)
	assert.Equal(t, 0, got[0].Count)
	assert.True(t, math.IsNaN(got[0].Mean))
}

func TestDescribe_UnknownColumn(t *testing.T) {
	_, err := Describe(sampleOrders(t), []string{"customer_id"})
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestDensity(t *testing.T) {
	curve, err := Density(sampleOrders(t), models.ColumnRevenue, 32)
	require.NoError(t, err)

	require.Len(t, curve.X, 32)
	require.Len(t, curve.Y, 32)
	for i := range curve.X {
		assert.GreaterOrEqual(t, curve.Y[i], 0.0)
		if i > 0 {
			assert.Greater(t, curve.X[i], curve.X[i-1])
		}
	}
	assert.Less(t, curve.X[0], 20.0)
	assert.Greater(t, curve.X[31], 300.0)
}

func TestDensity_ConstantColumn(t *testing.T) {
	orders := []models.Order{{Discount: 0}, {Discount: 0}}

	curve, err := Density(orders, models.ColumnDiscount, 16)
	require.NoError(t, err)
	assert.Empty(t, curve.X)
	assert.Empty(t, curve.Y)
}

func TestSampleColumns(t *testing.T) {
	orders := sampleOrders(t)

	all, err := SampleColumns(orders, []string{models.ColumnQuantity}, 0)
	require.NoError(t, err)
	assert.Equal(t, []float64{2, 1, 3, 4, 1, 1, 2}, all.Values[0])

	head, err := SampleColumns(orders, []string{models.ColumnPrice, models.ColumnDiscount}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{models.ColumnPrice, models.ColumnDiscount}, head.Columns)
	assert.Equal(t, [][]float64{{100, 20}, {0.1, 0}}, head.Values)

	_, err = SampleColumns(orders, []string{models.ColumnRegion}, 0)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}
