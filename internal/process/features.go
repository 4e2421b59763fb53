package process

import (
	"fmt"

	"stock-prediction-lab/internal/dataset"
)

// TargetColumn is the supervised learning target: the next session's close.
const TargetColumn = "next_close"

// FeatureColumns lists the engineered predictors in frame order.
var FeatureColumns = []string{"close", "ma_5", "ma_20", "daily_return", "close_lag_1"}

const warmup = 20 // longest moving-average window

// BuildFeatures engineers the model's feature frame from cleaned bars.
// Rows inside the moving-average warmup and the final row (which has no
// next close) are dropped, so the output is warmup+1 rows shorter than the
// input.
func BuildFeatures(bars []dataset.Bar) (*dataset.Frame, error) {
	if len(bars) <= warmup+1 {
		return nil, fmt.Errorf("build features: need more than %d bars, got %d", warmup+1, len(bars))
	}

	frame := &dataset.Frame{
		Columns: append(append([]string{}, FeatureColumns...), TargetColumn),
	}

	for i := warmup; i < len(bars)-1; i++ {
		b := bars[i]
		row := []float64{
			b.Close,
			movingAverage(bars, i, 5),
			movingAverage(bars, i, 20),
			bars[i].Close/bars[i-1].Close - 1,
			bars[i-1].Close,
			bars[i+1].Close, // target
		}
		frame.Dates = append(frame.Dates, b.Date)
		frame.Rows = append(frame.Rows, row)
	}

	return frame, nil
}

// movingAverage averages the closes of the window ending at index i.
func movingAverage(bars []dataset.Bar, i, window int) float64 {
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += bars[j].Close
	}
	return sum / float64(window)
}
