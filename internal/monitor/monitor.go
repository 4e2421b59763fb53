// Package monitor evaluates freshly trained models against their own history
// and raises degradation alerts.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// Config holds the degradation thresholds.
type Config struct {
	// MinR2 is the absolute floor: any model explaining less variance than
	// this is degraded regardless of history.
	MinR2 float64

	// RelTolerance is the allowed relative worsening of RMSE or MAE against
	// the previous evaluation before the model counts as degraded.
	// 0.1 means a 10% slide is tolerated.
	RelTolerance float64
}

// DefaultConfig returns the thresholds used when none are configured.
func DefaultConfig() Config {
	return Config{MinR2: 0.75, RelTolerance: 0.10}
}

// Monitor evaluates model metrics and persists one performance summary per
// evaluation. Degraded evaluations additionally raise exactly one alert.
type Monitor struct {
	summaries storage.SummaryStore
	alerts    storage.AlertStore
	cfg       Config

	now func() time.Time
}

// New creates a Monitor over the given stores.
func New(summaries storage.SummaryStore, alerts storage.AlertStore, cfg Config) *Monitor {
	if cfg.MinR2 == 0 && cfg.RelTolerance == 0 {
		cfg = DefaultConfig()
	}
	return &Monitor{
		summaries: summaries,
		alerts:    alerts,
		cfg:       cfg,
		now:       time.Now,
	}
}

// Evaluate judges a model's metrics, appends the resulting performance
// summary, and raises an alert when degraded. The comparison baseline is the
// previous summary for the same symbol; the first evaluation of a symbol is
// judged on the absolute floor alone.
//
// NaN metrics always mean degraded: a comparison against garbage proves
// nothing either way.
func (m *Monitor) Evaluate(ctx context.Context, model *domain.ModelRecord) (*domain.PerformanceSummary, error) {
	if model == nil || model.ModelID == "" {
		return nil, fmt.Errorf("evaluate: %w", storage.ErrInvalidInput)
	}

	prev, err := m.summaries.LatestBySymbol(ctx, model.Symbol)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load previous summary: %w", err)
	}

	summary := &domain.PerformanceSummary{
		FetchID:       model.FetchID,
		ModelID:       model.ModelID,
		Symbol:        model.Symbol,
		Metrics:       model.Metrics,
		ThresholdUsed: m.cfg.MinR2,
		RelTolerance:  m.cfg.RelTolerance,
		EvaluatedAt:   m.now().UTC().UnixMilli(),
	}
	summary.Reasons = m.judge(model.Metrics, prev)
	summary.Degraded = len(summary.Reasons) > 0

	if err := m.summaries.Append(ctx, summary); err != nil {
		return nil, fmt.Errorf("append performance summary: %w", err)
	}

	if summary.Degraded {
		if err := m.raiseAlert(ctx, model, summary); err != nil {
			return nil, err
		}
	}

	return summary, nil
}

func (m *Monitor) judge(metrics domain.Metrics, prev *domain.PerformanceSummary) []string {
	if metrics.HasNaN() {
		return []string{"invalid metrics"}
	}

	var reasons []string
	if metrics.R2 < m.cfg.MinR2 {
		reasons = append(reasons, fmt.Sprintf("r2 %.4f below threshold %.2f", metrics.R2, m.cfg.MinR2))
	}

	// Relative checks need a trustworthy baseline.
	if prev == nil || prev.Metrics.HasNaN() {
		return reasons
	}

	if worsened(metrics.RMSE, prev.Metrics.RMSE, m.cfg.RelTolerance) {
		reasons = append(reasons, fmt.Sprintf("rmse %.4f worsened beyond tolerance vs %.4f", metrics.RMSE, prev.Metrics.RMSE))
	}
	if worsened(metrics.MAE, prev.Metrics.MAE, m.cfg.RelTolerance) {
		reasons = append(reasons, fmt.Sprintf("mae %.4f worsened beyond tolerance vs %.4f", metrics.MAE, prev.Metrics.MAE))
	}
	return reasons
}

// worsened reports whether current exceeds previous by more than the
// tolerance. The boundary value previous*(1+tol) is still acceptable.
func worsened(current, previous, tolerance float64) bool {
	return current > previous*(1+tolerance)
}

func (m *Monitor) raiseAlert(ctx context.Context, model *domain.ModelRecord, summary *domain.PerformanceSummary) error {
	kind := domain.AlertDegradation
	if model.Metrics.HasNaN() {
		kind = domain.AlertInvalidMetrics
	}

	alert := &domain.AlertEvent{
		AlertID:  uuid.NewString(),
		Kind:     kind,
		FetchID:  model.FetchID,
		ModelID:  model.ModelID,
		Symbol:   model.Symbol,
		Stage:    "monitoring",
		Message:  fmt.Sprintf("model %s degraded: %s", model.ModelID, strings.Join(summary.Reasons, "; ")),
		RaisedAt: summary.EvaluatedAt,
	}
	if err := m.alerts.Append(ctx, alert); err != nil {
		return fmt.Errorf("append alert: %w", err)
	}
	return nil
}
