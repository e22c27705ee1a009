package pipeline

import (
	"errors"
	"math"
	"testing"

	"github.com/aclements/go-moremath/stats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ecommerce-eda/internal/models"
)

func TestCompareRevenue(t *testing.T) {
	res, err := CompareRevenue(sampleOrders(t), GroupCategory, "Electronics", "Sports")
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeDefined, res.Outcome)
	assert.Equal(t, 3, res.NA)
	assert.Equal(t, 3, res.NB)
	assert.InDelta(t, 195.0, res.MeanA, 1e-9)
	assert.InDelta(t, 41.0, res.MeanB, 1e-9)
	assert.InDelta(t, 3.092810, res.T, 1e-5)
	assert.InDelta(t, 2.264355, res.DegreesOfFreedom, 1e-5)
	assert.Greater(t, res.PValue, 0.0)
	assert.Less(t, res.PValue, 1.0)
}

func TestCompareRevenue_Undefined(t *testing.T) {
	tests := []struct {
		name   string
		orders []models.Order
	}{
		{"empty", nil},
		{"single order group", []models.Order{
			{Category: "A", Revenue: 1}, {Category: "A", Revenue: 2}, {Category: "B", Revenue: 3},
		}},
		{"zero variance", []models.Order{
			{Category: "A", Revenue: 1}, {Category: "A", Revenue: 1},
			{Category: "B", Revenue: 3}, {Category: "B", Revenue: 3},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := CompareRevenue(tt.orders, GroupCategory, "A", "B")
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeUndefined, res.Outcome)
			assert.True(t, math.IsNaN(res.PValue))
			assert.False(t, res.Significant())
		})
	}
}

func TestCompareRevenue_TTestErrors(t *testing.T) {
	orders := []models.Order{
		{Category: "A", Revenue: 1}, {Category: "A", Revenue: 2},
		{Category: "B", Revenue: 3}, {Category: "B", Revenue: 5},
	}
	boom := errors.New("boom")

	tests := []struct {
		name    string
		err     error
		wantErr error
	}{
		{"sample size", stats.ErrSampleSize, nil},
		{"zero variance", stats.ErrZeroVariance, nil},
		{"unexpected", boom, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			orig := welchTTest
			t.Cleanup(func() { welchTTest = orig })
			welchTTest = func(_, _ stats.TTestSample, _ stats.LocationHypothesis) (*stats.TTestResult, error) {
				return nil, tt.err
			}

			res, err := CompareRevenue(orders, GroupCategory, "A", "B")
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "A vs B")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.OutcomeUndefined, res.Outcome)
			assert.True(t, math.IsNaN(res.T))
		})
	}
}
