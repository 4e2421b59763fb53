package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// AlertStore implements storage.AlertStore using PostgreSQL.
type AlertStore struct {
	pool *Pool
}

// NewAlertStore creates a new AlertStore.
func NewAlertStore(pool *Pool) *AlertStore {
	return &AlertStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AlertStore = (*AlertStore)(nil)

const alertColumns = `alert_id, kind, fetch_id, model_id, symbol, stage, message, raised_at`

// Append adds an alert event at the tail of the log.
func (s *AlertStore) Append(ctx context.Context, a *domain.AlertEvent) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO alert_events (` + alertColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := s.pool.Exec(ctx, query,
		a.AlertID, string(a.Kind), a.FetchID, a.ModelID, a.Symbol, a.Stage, a.Message, a.RaisedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append alert event: %w", err)
	}
	return nil
}

// ScanForward returns all alert events in write order.
func (s *AlertStore) ScanForward(ctx context.Context) ([]*domain.AlertEvent, error) {
	query := `SELECT ` + alertColumns + ` FROM alert_events ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan alert events: %w", err)
	}
	defer rows.Close()

	return scanAlertEvents(rows)
}

// GetByFetchID retrieves all alert events for a fetch, in write order.
func (s *AlertStore) GetByFetchID(ctx context.Context, fetchID string) ([]*domain.AlertEvent, error) {
	query := `SELECT ` + alertColumns + ` FROM alert_events WHERE fetch_id = $1 ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query, fetchID)
	if err != nil {
		return nil, fmt.Errorf("get alert events by fetch id: %w", err)
	}
	defer rows.Close()

	return scanAlertEvents(rows)
}

func scanAlertEvents(rows pgx.Rows) ([]*domain.AlertEvent, error) {
	var events []*domain.AlertEvent

	for rows.Next() {
		var a domain.AlertEvent
		var kind string

		err := rows.Scan(&a.AlertID, &kind, &a.FetchID, &a.ModelID, &a.Symbol, &a.Stage, &a.Message, &a.RaisedAt)
		if err != nil {
			return nil, fmt.Errorf("scan alert event row: %w", err)
		}
		a.Kind = domain.AlertKind(kind)
		events = append(events, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate alert event rows: %w", err)
	}

	return events, nil
}
