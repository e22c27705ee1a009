package charts

import (
	"bytes"
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"ecommerce-eda/internal/models"
	"ecommerce-eda/internal/pipeline"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func testReport(t *testing.T, raw []models.RawOrder) *models.Report {
	t.Helper()
	report, err := pipeline.Analyze(raw, pipeline.DefaultOptions())
	require.NoError(t, err)
	return report
}

func sampleRaw() []models.RawOrder {
	return []models.RawOrder{
		{CustomerID: "C1", Category: "Electronics", Price: "100", Quantity: "2", Discount: "0.1", Region: "North", PaymentMethod: "Card", OrderDate: "2024-01-01"},
		{CustomerID: "C2", Category: "Sports", Price: "50", Quantity: "1", Discount: "0", Region: "South", PaymentMethod: "Cash", OrderDate: "2024-01-01"},
		{CustomerID: "C1", Category: "Sports", Price: "20", Quantity: "3", Discount: "0", Region: "North", PaymentMethod: "Cash", OrderDate: "2024-01-02"},
		{CustomerID: "C3", Category: "Electronics", Price: "300", Quantity: "1", Discount: "0.5", Region: "South", PaymentMethod: "Card", OrderDate: "2024-01-03"},
		{CustomerID: "C2", Category: "Electronics", Price: "10", Quantity: "4", Discount: "0", Region: "North", PaymentMethod: "Card", OrderDate: "2024-01-03"},
		{CustomerID: "C4", Category: "Sports", Price: "70", Quantity: "1", Discount: "0", Region: "South", PaymentMethod: "Cash", OrderDate: "2024-01-02"},
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")

	paths, err := Write(context.Background(), dir, testReport(t, sampleRaw()))
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))

		data, err := os.ReadFile(p)
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data, pngMagic), "%s is not a PNG", p)
	}

	assert.Equal(t, []string{
		"category_counts.png",
		"correlation_heatmap.png",
		"density_discount.png",
		"density_price.png",
		"density_quantity.png",
		"density_revenue.png",
		"pair_discount_revenue.png",
		"pair_price_discount.png",
		"pair_price_revenue.png",
		"pair_quantity_discount.png",
		"pair_quantity_price.png",
		"pair_quantity_revenue.png",
		"revenue_by_category.png",
		"revenue_by_payment_method.png",
		"revenue_by_region.png",
		"revenue_trend.png",
	}, names)
}

func TestWrite_SkipsUnsupportedFigures(t *testing.T) {
	raw := []models.RawOrder{
		{CustomerID: "C1", Category: "Books", Price: "10", Quantity: "1", Discount: "0", Region: "East", PaymentMethod: "Card", OrderDate: "2024-05-01"},
	}

	paths, err := Write(context.Background(), t.TempDir(), testReport(t, raw))
	require.NoError(t, err)

	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	assert.NotContains(t, names, "revenue_trend.png")
	assert.NotContains(t, names, "density_price.png")
	assert.NotContains(t, names, "correlation_heatmap.png")
	assert.NotContains(t, names, "pair_quantity_price.png")
	assert.Contains(t, names, "revenue_by_region.png")
}

func TestWrite_Empty(t *testing.T) {
	paths, err := Write(context.Background(), t.TempDir(), testReport(t, nil))
	require.NoError(t, err)
	assert.Empty(t, paths)
}

func TestWrite_Errors(t *testing.T) {
	_, err := Write(context.Background(), t.TempDir(), nil)
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = Write(ctx, t.TempDir(), testReport(t, sampleRaw()))
	assert.ErrorIs(t, err, context.Canceled)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = Write(context.Background(), filepath.Join(file, "charts"), testReport(t, sampleRaw()))
	assert.Error(t, err)
}

func TestPaddedRange(t *testing.T) {
	tests := []struct {
		name     string
		ys       []float64
		fromZero bool
		min, max float64
	}{
		{"positive from zero", []float64{10, 50}, true, 0, 55},
		{"flat", []float64{3, 3}, false, 2, 4},
		{"flat zero", []float64{0, 0}, true, -1, 1},
		{"empty", nil, false, 0, 1},
		{"free range", []float64{10, 20}, false, 9, 21},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := paddedRange(tt.ys, tt.fromZero)
			assert.InDelta(t, tt.min, r.Min, 1e-9)
			assert.InDelta(t, tt.max, r.Max, 1e-9)
		})
	}
}

func TestRenderHeatmap(t *testing.T) {
	m := models.CorrelationMatrix{
		Outcome: models.OutcomeDefined,
		Columns: []string{"a", "b"},
		Values:  [][]float64{{1, math.NaN()}, {math.NaN(), 1}},
	}
	var buf bytes.Buffer
	require.NoError(t, renderHeatmap(&buf, m))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
}

func TestHeatColor(t *testing.T) {
	assert.Equal(t, warmColor, heatColor(1))
	assert.Equal(t, coldColor, heatColor(-1))
	assert.Equal(t, neutralColor, heatColor(0))
	assert.Equal(t, warmColor, heatColor(3))
	assert.Equal(t, drawing.ColorSilver, heatColor(math.NaN()))

	half := heatColor(0.5)
	assert.Less(t, half.B, neutralColor.B)
	assert.Greater(t, half.B, warmColor.B)
}
