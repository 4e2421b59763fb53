// Package report renders the run's markdown reports: the raw-data
// inspection, the per-model analysis, and the combined final report.
package report

import (
	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/process"
)

// Inspection carries everything the inspection report shows.
type Inspection struct {
	Symbol  string
	FetchID string
	Summary *process.InspectionSummary
}

// ModelAnalysis carries everything one model's analysis report shows.
type ModelAnalysis struct {
	Model     *domain.ModelRecord
	Summary   *domain.PerformanceSummary
	Clean     process.CleanReport
	TrainRows int
	TestRows  int
}

// Final carries the combined report inputs.
type Final struct {
	Symbol      string
	FetchID     string
	GeneratedAt string
	Sections    []Section
}

// Section is one previously rendered report embedded in the final report.
type Section struct {
	Title string
	Body  string
}
