package postgres

import (
	"context"
	"fmt"

	"stock-prediction-lab/internal/storage"
)

// CurrentFetchStore implements storage.CurrentFetchStore using PostgreSQL.
// A single-row table holds the pointer; Set is an upsert.
type CurrentFetchStore struct {
	pool *Pool
}

// NewCurrentFetchStore creates a new CurrentFetchStore.
func NewCurrentFetchStore(pool *Pool) *CurrentFetchStore {
	return &CurrentFetchStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CurrentFetchStore = (*CurrentFetchStore)(nil)

// Set rewrites the pointer to the given fetch_id.
func (s *CurrentFetchStore) Set(ctx context.Context, fetchID string) error {
	if fetchID == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO current_fetch (id, fetch_id)
		VALUES (1, $1)
		ON CONFLICT (id) DO UPDATE SET fetch_id = EXCLUDED.fetch_id
	`

	if _, err := s.pool.Exec(ctx, query, fetchID); err != nil {
		return fmt.Errorf("set current fetch pointer: %w", err)
	}
	return nil
}

// Get returns the pointed-at fetch_id. Returns ErrNotFound if unset.
func (s *CurrentFetchStore) Get(ctx context.Context) (string, error) {
	var fetchID string

	err := s.pool.QueryRow(ctx, `SELECT fetch_id FROM current_fetch WHERE id = 1`).Scan(&fetchID)
	if err != nil {
		if isNotFoundError(err) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("get current fetch pointer: %w", err)
	}
	return fetchID, nil
}
