package postgres

import (
	"context"
	"fmt"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore using PostgreSQL.
type SummaryStore struct {
	pool *Pool
}

// NewSummaryStore creates a new SummaryStore.
func NewSummaryStore(pool *Pool) *SummaryStore {
	return &SummaryStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SummaryStore = (*SummaryStore)(nil)

const summaryColumns = `fetch_id, model_id, symbol, rmse, mae, r2,
		threshold_used, rel_tolerance, degraded, reasons, evaluated_at`

// Append adds a performance summary at the tail of the log.
func (s *SummaryStore) Append(ctx context.Context, sum *domain.PerformanceSummary) error {
	if sum == nil || sum.ModelID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO performance_summaries (` + summaryColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := s.pool.Exec(ctx, query,
		sum.FetchID, sum.ModelID, sum.Symbol, sum.Metrics.RMSE, sum.Metrics.MAE, sum.Metrics.R2,
		sum.ThresholdUsed, sum.RelTolerance, sum.Degraded, sum.Reasons, sum.EvaluatedAt,
	)
	if err != nil {
		return fmt.Errorf("append performance summary: %w", err)
	}
	return nil
}

// ScanForward returns all summaries in write order.
func (s *SummaryStore) ScanForward(ctx context.Context) ([]*domain.PerformanceSummary, error) {
	query := `SELECT ` + summaryColumns + ` FROM performance_summaries ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan performance summaries: %w", err)
	}
	defer rows.Close()

	var records []*domain.PerformanceSummary
	for rows.Next() {
		var sum domain.PerformanceSummary
		err := rows.Scan(
			&sum.FetchID, &sum.ModelID, &sum.Symbol, &sum.Metrics.RMSE, &sum.Metrics.MAE, &sum.Metrics.R2,
			&sum.ThresholdUsed, &sum.RelTolerance, &sum.Degraded, &sum.Reasons, &sum.EvaluatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan performance summary row: %w", err)
		}
		records = append(records, &sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance summary rows: %w", err)
	}
	return records, nil
}

// LatestBySymbol returns the most recent summary for a symbol.
func (s *SummaryStore) LatestBySymbol(ctx context.Context, symbol string) (*domain.PerformanceSummary, error) {
	query := `
		SELECT ` + summaryColumns + `
		FROM performance_summaries
		WHERE symbol = $1
		ORDER BY seq DESC
		LIMIT 1
	`

	var sum domain.PerformanceSummary
	err := s.pool.QueryRow(ctx, query, symbol).Scan(
		&sum.FetchID, &sum.ModelID, &sum.Symbol, &sum.Metrics.RMSE, &sum.Metrics.MAE, &sum.Metrics.R2,
		&sum.ThresholdUsed, &sum.RelTolerance, &sum.Degraded, &sum.Reasons, &sum.EvaluatedAt,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest performance summary: %w", err)
	}
	return &sum, nil
}
