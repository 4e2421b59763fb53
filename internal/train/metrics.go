package train

import (
	"math"

	"stock-prediction-lab/internal/domain"
)

// Evaluate computes RMSE, MAE and R² of predictions against actuals.
// A constant actual series has no variance to explain, so R² comes back NaN
// and the caller's validity checks take over.
func Evaluate(actual, predicted []float64) domain.Metrics {
	n := len(actual)
	if n == 0 || n != len(predicted) {
		return domain.Metrics{RMSE: math.NaN(), MAE: math.NaN(), R2: math.NaN()}
	}

	mean := 0.0
	for _, y := range actual {
		mean += y
	}
	mean /= float64(n)

	var ssRes, ssTot, absSum float64
	for i := range actual {
		diff := actual[i] - predicted[i]
		ssRes += diff * diff
		absSum += math.Abs(diff)
		dev := actual[i] - mean
		ssTot += dev * dev
	}

	r2 := math.NaN()
	if ssTot > 0 {
		r2 = 1 - ssRes/ssTot
	}

	return domain.Metrics{
		RMSE: math.Sqrt(ssRes / float64(n)),
		MAE:  absSum / float64(n),
		R2:   r2,
	}
}
