package train

import (
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"stock-prediction-lab/internal/dataset"
)

// linearFrame builds a frame whose target is an exact linear function of two
// features plus an intercept: y = 3 + 2*x1 - 0.5*x2.
func linearFrame(n int) *dataset.Frame {
	frame := &dataset.Frame{Columns: []string{"x1", "x2", "y"}}
	for i := 0; i < n; i++ {
		x1 := float64(i)
		x2 := float64(i%7) * 1.3
		y := 3 + 2*x1 - 0.5*x2
		frame.Dates = append(frame.Dates, fmt.Sprintf("2025-%02d-%02d", 1+i/28, 1+i%28))
		frame.Rows = append(frame.Rows, []float64{x1, x2, y})
	}
	return frame
}

func TestLinearTrainerRecoversCoefficients(t *testing.T) {
	trainer := &LinearTrainer{TestSize: 0.2}

	result, err := trainer.Train(linearFrame(100))
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if result.TrainRows != 80 || result.TestRows != 20 {
		t.Errorf("split = %d/%d, want 80/20", result.TrainRows, result.TestRows)
	}

	m := result.Model
	if math.Abs(m.Intercept-3) > 1e-6 {
		t.Errorf("intercept = %v, want 3", m.Intercept)
	}
	if math.Abs(m.Coefficients[0]-2) > 1e-6 || math.Abs(m.Coefficients[1]+0.5) > 1e-6 {
		t.Errorf("coefficients = %v, want [2 -0.5]", m.Coefficients)
	}

	// Exact fit: essentially zero error, R² at 1.
	if result.Metrics.RMSE > 1e-6 || result.Metrics.MAE > 1e-6 {
		t.Errorf("metrics = %+v", result.Metrics)
	}
	if math.Abs(result.Metrics.R2-1) > 1e-9 {
		t.Errorf("r2 = %v, want 1", result.Metrics.R2)
	}
}

func TestLinearTrainerHoldoutIsTail(t *testing.T) {
	frame := linearFrame(50)
	// Corrupt only the tail targets; training on the head must still recover
	// the clean coefficients, proving no shuffle happened.
	for i := 40; i < 50; i++ {
		frame.Rows[i][2] += 1000
	}

	result, err := (&LinearTrainer{TestSize: 0.2}).Train(frame)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if math.Abs(result.Model.Coefficients[0]-2) > 1e-6 {
		t.Errorf("coefficient = %v, tail leaked into training", result.Model.Coefficients[0])
	}
	// The corrupted holdout shows up as huge error.
	if result.Metrics.RMSE < 100 {
		t.Errorf("RMSE = %v, expected large holdout error", result.Metrics.RMSE)
	}
}

func TestLinearTrainerCollinearFeatures(t *testing.T) {
	frame := &dataset.Frame{Columns: []string{"x1", "x2", "y"}}
	for i := 0; i < 40; i++ {
		x := float64(i)
		frame.Dates = append(frame.Dates, fmt.Sprintf("2025-01-%02d", 1+i%28))
		frame.Rows = append(frame.Rows, []float64{x, 2 * x, x + 1})
	}

	if _, err := (&LinearTrainer{}).Train(frame); err == nil {
		t.Error("expected error for collinear features")
	}
}

func TestLinearTrainerTooFewRows(t *testing.T) {
	if _, err := (&LinearTrainer{}).Train(linearFrame(4)); err == nil {
		t.Error("expected error for tiny frame")
	}
}

func TestEvaluate(t *testing.T) {
	actual := []float64{10, 12, 14, 16}
	predicted := []float64{11, 11, 15, 15}

	m := Evaluate(actual, predicted)
	if math.Abs(m.MAE-1) > 1e-12 {
		t.Errorf("MAE = %v, want 1", m.MAE)
	}
	if math.Abs(m.RMSE-1) > 1e-12 {
		t.Errorf("RMSE = %v, want 1", m.RMSE)
	}
	// SStot = 20, SSres = 4.
	if math.Abs(m.R2-0.8) > 1e-12 {
		t.Errorf("R2 = %v, want 0.8", m.R2)
	}
}

func TestEvaluateConstantActuals(t *testing.T) {
	m := Evaluate([]float64{5, 5, 5}, []float64{5, 5, 5})
	if !math.IsNaN(m.R2) {
		t.Errorf("R2 = %v, want NaN for zero variance", m.R2)
	}
	if m.RMSE != 0 || m.MAE != 0 {
		t.Errorf("errors = %v/%v, want 0", m.RMSE, m.MAE)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models", "model_tsla_20250730_102338_with_outliers.json")

	m := &Model{
		ModelType:    "linear_regression",
		Features:     []string{"close", "ma_5"},
		Target:       "next_close",
		Intercept:    3.25,
		Coefficients: []float64{0.9, 0.1},
	}
	if err := Save(path, m); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Intercept != m.Intercept || got.Coefficients[1] != 0.1 || got.Target != "next_close" {
		t.Errorf("loaded = %+v", got)
	}

	if got.Predict([]float64{100, 101}) != 3.25+90+10.1 {
		t.Errorf("Predict = %v", got.Predict([]float64{100, 101}))
	}
}
