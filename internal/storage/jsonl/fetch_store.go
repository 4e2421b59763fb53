package jsonl

import (
	"context"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// FetchStore implements storage.FetchStore on a fetch_history.jsonl file.
type FetchStore struct {
	j *journal
}

// NewFetchStore creates a JSONL-backed fetch store at path.
func NewFetchStore(path string) *FetchStore {
	return &FetchStore{j: newJournal(path)}
}

var _ storage.FetchStore = (*FetchStore)(nil)

// Append adds a fetch record version at the tail of the log.
func (s *FetchStore) Append(_ context.Context, r *domain.FetchRecord) error {
	if r == nil || r.FetchID == "" {
		return storage.ErrInvalidInput
	}
	return s.j.append(r)
}

// ScanForward returns all record versions in write order.
func (s *FetchStore) ScanForward(_ context.Context) ([]*domain.FetchRecord, error) {
	return readLog[domain.FetchRecord](s.j)
}

// ScanReverse returns all record versions in reverse write order.
func (s *FetchStore) ScanReverse(_ context.Context) ([]*domain.FetchRecord, error) {
	records, err := readLog[domain.FetchRecord](s.j)
	if err != nil {
		return nil, err
	}
	return reversed(records), nil
}

// Latest returns the most recent version for a fetch_id.
func (s *FetchStore) Latest(_ context.Context, fetchID string) (*domain.FetchRecord, error) {
	records, err := readLog[domain.FetchRecord](s.j)
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].FetchID == fetchID {
			return records[i], nil
		}
	}
	return nil, storage.ErrNotFound
}
