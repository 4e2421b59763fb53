package clickhouse

import (
	"context"
	"fmt"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore using ClickHouse. It is the
// analytics sink for evaluation history: the pipeline keeps writing its
// authoritative log to the primary backend and mirrors summaries here so
// long-horizon metric trends can be queried cheaply.
//
// MergeTree does not preserve insert order, so scans order by
// (evaluated_at, model_id) instead of a write sequence. Summaries carry
// strictly increasing evaluation timestamps per symbol, which keeps the
// ordering equivalent for this table.
type SummaryStore struct {
	conn *Conn
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(conn *Conn) *SummaryStore {
	return &SummaryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

// Append adds a performance summary.
func (s *SummaryStore) Append(ctx context.Context, sum *domain.PerformanceSummary) error {
	if sum == nil || sum.ModelID == "" {
		return storage.ErrInvalidInput
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO performance_summaries (
			fetch_id, model_id, symbol, rmse, mae, r2,
			threshold_used, rel_tolerance, degraded, reasons, evaluated_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	degraded := uint8(0)
	if sum.Degraded {
		degraded = 1
	}
	err = batch.Append(
		sum.FetchID, sum.ModelID, sum.Symbol, sum.Metrics.RMSE, sum.Metrics.MAE, sum.Metrics.R2,
		sum.ThresholdUsed, sum.RelTolerance, degraded, sum.Reasons, sum.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// ScanForward returns all summaries ordered by evaluation time.
func (s *SummaryStore) ScanForward(ctx context.Context) ([]*domain.PerformanceSummary, error) {
	query := `
		SELECT fetch_id, model_id, symbol, rmse, mae, r2,
		       threshold_used, rel_tolerance, degraded, reasons, evaluated_at
		FROM performance_summaries
		ORDER BY evaluated_at ASC, model_id ASC
	`

	rows, err := s.conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan performance summaries: %w", err)
	}
	defer rows.Close()

	return scanSummaries(rows)
}

// LatestBySymbol returns the most recently evaluated summary for a symbol.
func (s *SummaryStore) LatestBySymbol(ctx context.Context, symbol string) (*domain.PerformanceSummary, error) {
	query := `
		SELECT fetch_id, model_id, symbol, rmse, mae, r2,
		       threshold_used, rel_tolerance, degraded, reasons, evaluated_at
		FROM performance_summaries
		WHERE symbol = ?
		ORDER BY evaluated_at DESC, model_id DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, symbol)
	if err != nil {
		return nil, fmt.Errorf("query latest summary: %w", err)
	}
	defer rows.Close()

	summaries, err := scanSummaries(rows)
	if err != nil {
		return nil, err
	}
	if len(summaries) == 0 {
		return nil, storage.ErrNotFound
	}
	return summaries[0], nil
}

func scanSummaries(rows chRows) ([]*domain.PerformanceSummary, error) {
	var summaries []*domain.PerformanceSummary

	for rows.Next() {
		var sum domain.PerformanceSummary
		var degraded uint8

		err := rows.Scan(
			&sum.FetchID, &sum.ModelID, &sum.Symbol, &sum.Metrics.RMSE, &sum.Metrics.MAE, &sum.Metrics.R2,
			&sum.ThresholdUsed, &sum.RelTolerance, &degraded, &sum.Reasons, &sum.EvaluatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan performance summary row: %w", err)
		}

		sum.Degraded = degraded != 0
		summaries = append(summaries, &sum)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance summary rows: %w", err)
	}

	return summaries, nil
}
