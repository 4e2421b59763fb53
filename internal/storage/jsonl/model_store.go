package jsonl

import (
	"context"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// ModelStore implements storage.ModelStore on a models_history.jsonl file.
type ModelStore struct {
	j *journal
}

// NewModelStore creates a JSONL-backed model store at path.
func NewModelStore(path string) *ModelStore {
	return &ModelStore{j: newJournal(path)}
}

var _ storage.ModelStore = (*ModelStore)(nil)

// Append adds a model record. Returns ErrDuplicateKey if model_id exists.
func (s *ModelStore) Append(ctx context.Context, m *domain.ModelRecord) error {
	if m == nil || m.ModelID == "" {
		return storage.ErrInvalidInput
	}

	existing, err := readLog[domain.ModelRecord](s.j)
	if err != nil {
		return err
	}
	for _, rec := range existing {
		if rec.ModelID == m.ModelID {
			return storage.ErrDuplicateKey
		}
	}
	return s.j.append(m)
}

// ScanReverse returns all records in reverse write order.
func (s *ModelStore) ScanReverse(_ context.Context) ([]*domain.ModelRecord, error) {
	records, err := readLog[domain.ModelRecord](s.j)
	if err != nil {
		return nil, err
	}
	return reversed(records), nil
}

// GetByID retrieves a model record. Returns ErrNotFound if not exists.
func (s *ModelStore) GetByID(_ context.Context, modelID string) (*domain.ModelRecord, error) {
	records, err := readLog[domain.ModelRecord](s.j)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		if rec.ModelID == modelID {
			return rec, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetByFetchID retrieves all model records for a fetch, in write order.
func (s *ModelStore) GetByFetchID(_ context.Context, fetchID string) ([]*domain.ModelRecord, error) {
	records, err := readLog[domain.ModelRecord](s.j)
	if err != nil {
		return nil, err
	}
	var result []*domain.ModelRecord
	for _, rec := range records {
		if rec.FetchID == fetchID {
			result = append(result, rec)
		}
	}
	return result, nil
}
