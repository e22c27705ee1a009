package pipeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/aclements/go-moremath/stats"

	"ecommerce-eda/internal/models"
)

var welchTTest = stats.TwoSampleWelchTTest

// CompareRevenue runs a Welch two-sample t-test on per-order revenue of two
// groups of key. The test is undefined when either group has fewer than two
// orders or both groups have zero variance.
func CompareRevenue(orders []models.Order, key GroupKey, groupA, groupB string) (models.ComparisonResult, error) {
	var xs, ys []float64
	for _, o := range orders {
		k, err := key.Of(o)
		if err != nil {
			return models.ComparisonResult{}, err
		}
		switch k {
		case groupA:
			xs = append(xs, o.Revenue)
		case groupB:
			ys = append(ys, o.Revenue)
		}
	}

	nan := math.NaN()
	res := models.ComparisonResult{
		Key:              string(key),
		GroupA:           groupA,
		GroupB:           groupB,
		Outcome:          models.OutcomeUndefined,
		NA:               len(xs),
		NB:               len(ys),
		MeanA:            mean(xs),
		MeanB:            mean(ys),
		T:                nan,
		DegreesOfFreedom: nan,
		PValue:           nan,
		Alpha:            SignificanceLevel,
	}
	if len(xs) < 2 || len(ys) < 2 || (constant(xs) && constant(ys)) {
		return res, nil
	}

	t, err := welchTTest(stats.Sample{Xs: xs}, stats.Sample{Xs: ys}, stats.LocationDiffers)
	switch {
	case errors.Is(err, stats.ErrSampleSize), errors.Is(err, stats.ErrZeroVariance):
		return res, nil
	case err != nil:
		return models.ComparisonResult{}, fmt.Errorf("welch t-test %s vs %s: %w", groupA, groupB, err)
	}

	res.Outcome = models.OutcomeDefined
	res.T = t.T
	res.DegreesOfFreedom = t.DoF
	res.PValue = t.P
	return res, nil
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stats.Sample{Xs: xs}.Mean()
}
