package domain

// AlertKind classifies why an alert was raised.
type AlertKind string

const (
	AlertStageFailure   AlertKind = "stage_failure"
	AlertDegradation    AlertKind = "degradation"
	AlertInvalidMetrics AlertKind = "invalid_metrics"
)

// AlertEvent is a durable signal that an operator should investigate.
// Events are append-only: never deleted, never mutated. The alert log is
// the single channel for "needs human attention", decoupled from ordinary
// progress logging.
type AlertEvent struct {
	AlertID  string    `json:"alert_id"`
	Kind     AlertKind `json:"kind"`
	FetchID  string    `json:"fetch_id,omitempty"`
	ModelID  string    `json:"model_id,omitempty"`
	Symbol   string    `json:"symbol,omitempty"`
	Stage    string    `json:"stage,omitempty"`
	Message  string    `json:"message"`
	RaisedAt int64     `json:"raised_at"` // Unix ms
}
