// Package train fits price prediction models on engineered feature frames
// and evaluates them on a held-out tail of the series.
package train

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"stock-prediction-lab/internal/dataset"
	"stock-prediction-lab/internal/domain"
)

// Model is a fitted linear model and its serialized artifact form.
type Model struct {
	ModelType    string    `json:"model_type"`
	Features     []string  `json:"features"`
	Target       string    `json:"target"`
	Intercept    float64   `json:"intercept"`
	Coefficients []float64 `json:"coefficients"`
}

// Predict applies the model to one feature row. The row must be ordered
// like Features.
func (m *Model) Predict(row []float64) float64 {
	y := m.Intercept
	for i, c := range m.Coefficients {
		y += c * row[i]
	}
	return y
}

// Result bundles a fitted model with its holdout evaluation.
type Result struct {
	Model     *Model
	Metrics   domain.Metrics
	TrainRows int
	TestRows  int
}

// Trainer fits a model on a feature frame.
type Trainer interface {
	Train(frame *dataset.Frame) (*Result, error)
}

// PredictFrame applies the model to every row of a frame whose leading
// columns match the model's features.
func PredictFrame(m *Model, frame *dataset.Frame) ([]float64, error) {
	k := len(m.Features)
	if len(frame.Columns) < k {
		return nil, fmt.Errorf("predict: frame has %d columns, model needs %d features", len(frame.Columns), k)
	}
	for i, name := range m.Features {
		if frame.Columns[i] != name {
			return nil, fmt.Errorf("predict: column %d is %q, model expects %q", i, frame.Columns[i], name)
		}
	}

	out := make([]float64, frame.Len())
	for i, row := range frame.Rows {
		out[i] = m.Predict(row[:k])
	}
	return out, nil
}

// Save writes the model artifact as indented JSON.
func Save(path string, m *Model) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal model: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create model dir: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return fmt.Errorf("write model artifact: %w", err)
	}
	return nil
}

// Load reads a model artifact written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal model artifact: %w", err)
	}
	if len(m.Coefficients) != len(m.Features) {
		return nil, fmt.Errorf("model artifact corrupt: %d coefficients for %d features",
			len(m.Coefficients), len(m.Features))
	}
	return &m, nil
}
