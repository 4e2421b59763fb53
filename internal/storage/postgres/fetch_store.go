package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// FetchStore implements storage.FetchStore using PostgreSQL.
// The fetch_ledger table is insert-only; a BIGSERIAL seq column preserves
// strict write order.
type FetchStore struct {
	pool *Pool
}

// NewFetchStore creates a new FetchStore.
func NewFetchStore(pool *Pool) *FetchStore {
	return &FetchStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FetchStore = (*FetchStore)(nil)

const fetchColumns = `fetch_id, symbol, requested_at, raw_data_path, status, fail_reason, updated_at`

// Append adds a fetch record version at the tail of the log.
func (s *FetchStore) Append(ctx context.Context, r *domain.FetchRecord) error {
	if r == nil || r.FetchID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO fetch_ledger (` + fetchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	_, err := s.pool.Exec(ctx, query,
		r.FetchID, r.Symbol, r.RequestedAt, r.RawDataPath, string(r.Status), r.FailReason, r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("append fetch record: %w", err)
	}
	return nil
}

// ScanForward returns all record versions in write order.
func (s *FetchStore) ScanForward(ctx context.Context) ([]*domain.FetchRecord, error) {
	return s.scan(ctx, "ASC")
}

// ScanReverse returns all record versions in reverse write order.
func (s *FetchStore) ScanReverse(ctx context.Context) ([]*domain.FetchRecord, error) {
	return s.scan(ctx, "DESC")
}

func (s *FetchStore) scan(ctx context.Context, direction string) ([]*domain.FetchRecord, error) {
	query := `SELECT ` + fetchColumns + ` FROM fetch_ledger ORDER BY seq ` + direction

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan fetch ledger: %w", err)
	}
	defer rows.Close()

	return scanFetchRecords(rows)
}

// Latest returns the most recent version for a fetch_id.
func (s *FetchStore) Latest(ctx context.Context, fetchID string) (*domain.FetchRecord, error) {
	query := `
		SELECT ` + fetchColumns + `
		FROM fetch_ledger
		WHERE fetch_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`

	row := s.pool.QueryRow(ctx, query, fetchID)
	r, err := scanFetchRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest fetch record: %w", err)
	}
	return r, nil
}

func scanFetchRecord(row pgx.Row) (*domain.FetchRecord, error) {
	var r domain.FetchRecord
	var status string

	err := row.Scan(&r.FetchID, &r.Symbol, &r.RequestedAt, &r.RawDataPath, &status, &r.FailReason, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	r.Status = domain.FetchStatus(status)
	return &r, nil
}

func scanFetchRecords(rows pgx.Rows) ([]*domain.FetchRecord, error) {
	var records []*domain.FetchRecord

	for rows.Next() {
		var r domain.FetchRecord
		var status string

		err := rows.Scan(&r.FetchID, &r.Symbol, &r.RequestedAt, &r.RawDataPath, &status, &r.FailReason, &r.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan fetch record row: %w", err)
		}
		r.Status = domain.FetchStatus(status)
		records = append(records, &r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate fetch record rows: %w", err)
	}

	return records, nil
}
