package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// ModelStore implements storage.ModelStore using PostgreSQL.
type ModelStore struct {
	pool *Pool
}

// NewModelStore creates a new ModelStore.
func NewModelStore(pool *Pool) *ModelStore {
	return &ModelStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ModelStore = (*ModelStore)(nil)

const modelColumns = `model_id, fetch_id, symbol, variant, trained_at, artifact_path,
		rmse, mae, r2, features, target, model_type`

// Append adds a model record. Returns ErrDuplicateKey if model_id exists.
func (s *ModelStore) Append(ctx context.Context, m *domain.ModelRecord) error {
	if m == nil || m.ModelID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO model_registry (` + modelColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	_, err := s.pool.Exec(ctx, query,
		m.ModelID, m.FetchID, m.Symbol, string(m.Variant), m.TrainedAt, m.ArtifactPath,
		m.Metrics.RMSE, m.Metrics.MAE, m.Metrics.R2, m.Features, m.Target, m.ModelType,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("append model record: %w", err)
	}
	return nil
}

// ScanReverse returns all records in reverse write order.
func (s *ModelStore) ScanReverse(ctx context.Context) ([]*domain.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM model_registry ORDER BY seq DESC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan model registry: %w", err)
	}
	defer rows.Close()

	return scanModelRecords(rows)
}

// GetByID retrieves a model record. Returns ErrNotFound if not exists.
func (s *ModelStore) GetByID(ctx context.Context, modelID string) (*domain.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM model_registry WHERE model_id = $1`

	row := s.pool.QueryRow(ctx, query, modelID)
	m, err := scanModelRecord(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get model record by id: %w", err)
	}
	return m, nil
}

// GetByFetchID retrieves all model records for a fetch, in write order.
func (s *ModelStore) GetByFetchID(ctx context.Context, fetchID string) ([]*domain.ModelRecord, error) {
	query := `SELECT ` + modelColumns + ` FROM model_registry WHERE fetch_id = $1 ORDER BY seq ASC`

	rows, err := s.pool.Query(ctx, query, fetchID)
	if err != nil {
		return nil, fmt.Errorf("get model records by fetch id: %w", err)
	}
	defer rows.Close()

	return scanModelRecords(rows)
}

func scanModelRecord(row pgx.Row) (*domain.ModelRecord, error) {
	var m domain.ModelRecord
	var variant string

	err := row.Scan(
		&m.ModelID, &m.FetchID, &m.Symbol, &variant, &m.TrainedAt, &m.ArtifactPath,
		&m.Metrics.RMSE, &m.Metrics.MAE, &m.Metrics.R2, &m.Features, &m.Target, &m.ModelType,
	)
	if err != nil {
		return nil, err
	}
	m.Variant = domain.Variant(variant)
	return &m, nil
}

func scanModelRecords(rows pgx.Rows) ([]*domain.ModelRecord, error) {
	var records []*domain.ModelRecord

	for rows.Next() {
		var m domain.ModelRecord
		var variant string

		err := rows.Scan(
			&m.ModelID, &m.FetchID, &m.Symbol, &variant, &m.TrainedAt, &m.ArtifactPath,
			&m.Metrics.RMSE, &m.Metrics.MAE, &m.Metrics.R2, &m.Features, &m.Target, &m.ModelType,
		)
		if err != nil {
			return nil, fmt.Errorf("scan model record row: %w", err)
		}
		m.Variant = domain.Variant(variant)
		records = append(records, &m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model record rows: %w", err)
	}

	return records, nil
}
