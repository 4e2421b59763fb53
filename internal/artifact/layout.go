// Package artifact owns the on-disk layout of everything a pipeline run
// produces. Paths embed the fetch or model id, so artifacts from different
// runs never collide and a run's outputs can be located from its ids alone.
package artifact

import (
	"fmt"
	"path/filepath"
	"strings"

	"stock-prediction-lab/internal/domain"
)

// Layout computes artifact paths under a base directory.
type Layout struct {
	base string
}

// NewLayout creates a Layout rooted at base.
func NewLayout(base string) *Layout {
	return &Layout{base: base}
}

// Base returns the root directory.
func (l *Layout) Base() string {
	return l.base
}

// RawData is the landing path for fetched bars.
func (l *Layout) RawData(symbol, fetchID string) string {
	return filepath.Join(l.base, "data", "raw",
		fmt.Sprintf("raw_%s_%s.csv", norm(symbol), fetchID))
}

// CleanedData is the path for cleaned bars of one variant.
func (l *Layout) CleanedData(symbol, fetchID string, variant domain.Variant) string {
	return filepath.Join(l.base, "data", "processed",
		fmt.Sprintf("cleaned_%s_%s_%s.csv", norm(symbol), fetchID, variant))
}

// FeatureData is the path for the engineered feature frame of one variant.
func (l *Layout) FeatureData(symbol, fetchID string, variant domain.Variant) string {
	return filepath.Join(l.base, "data", "processed",
		fmt.Sprintf("processed_%s_%s_%s.csv", norm(symbol), fetchID, variant))
}

// Model is the path for a serialized model artifact.
func (l *Layout) Model(modelID string) string {
	return filepath.Join(l.base, "models", modelID+".json")
}

// Predictions is the path for a model's prediction output.
func (l *Layout) Predictions(modelID string) string {
	return filepath.Join(l.base, "predictions", "predictions_"+modelID+".csv")
}

// Forecast is the path for a fetch's next-trading-day forecasts, one row
// per model variant.
func (l *Layout) Forecast(symbol, fetchID string) string {
	return filepath.Join(l.base, "predictions",
		fmt.Sprintf("forecast_%s_%s.csv", norm(symbol), fetchID))
}

// InspectionReport is the path for the raw-data inspection report.
func (l *Layout) InspectionReport(symbol, fetchID string) string {
	return filepath.Join(l.base, "docs", "data_evaluation",
		fmt.Sprintf("inspection_%s_%s.md", norm(symbol), fetchID))
}

// AnalysisReport is the path for a model's evaluation report.
func (l *Layout) AnalysisReport(modelID string) string {
	return filepath.Join(l.base, "docs", "model_evaluation", "analysis_"+modelID+".md")
}

// FinalReport is the path for the combined run report.
func (l *Layout) FinalReport(symbol, fetchID string) string {
	return filepath.Join(l.base, "docs",
		fmt.Sprintf("final_report_%s_%s.md", norm(symbol), fetchID))
}

func norm(symbol string) string {
	return strings.ToLower(strings.TrimSpace(symbol))
}
