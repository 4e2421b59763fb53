package domain

// PerformanceSummary is the outcome of one monitoring pass over a model.
// Summaries are appended for every pass, degraded or not, so the history
// supports trend analysis across fetches.
type PerformanceSummary struct {
	FetchID       string   `json:"fetch_id"`
	ModelID       string   `json:"model_id"`
	Symbol        string   `json:"symbol"`
	Metrics       Metrics  `json:"metrics_snapshot"`
	ThresholdUsed float64  `json:"threshold_used"` // absolute R² floor
	RelTolerance  float64  `json:"rel_tolerance"`  // trend tolerance vs previous summary
	Degraded      bool     `json:"degraded"`
	Reasons       []string `json:"reasons,omitempty"`
	EvaluatedAt   int64    `json:"evaluated_at"` // Unix ms
}
