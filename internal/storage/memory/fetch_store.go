package memory

import (
	"context"
	"sync"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// FetchStore is an in-memory implementation of storage.FetchStore.
// The slice preserves strict write order equal to call order.
type FetchStore struct {
	mu  sync.RWMutex
	log []*domain.FetchRecord
}

// NewFetchStore creates a new in-memory fetch store.
func NewFetchStore() *FetchStore {
	return &FetchStore{}
}

// Append adds a fetch record version at the tail of the log.
func (s *FetchStore) Append(_ context.Context, r *domain.FetchRecord) error {
	if r == nil || r.FetchID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *r
	s.log = append(s.log, &copy)
	return nil
}

// ScanForward returns all record versions in write order.
func (s *FetchStore) ScanForward(_ context.Context) ([]*domain.FetchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FetchRecord, 0, len(s.log))
	for _, r := range s.log {
		copy := *r
		result = append(result, &copy)
	}
	return result, nil
}

// ScanReverse returns all record versions in reverse write order.
func (s *FetchStore) ScanReverse(_ context.Context) ([]*domain.FetchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.FetchRecord, 0, len(s.log))
	for i := len(s.log) - 1; i >= 0; i-- {
		copy := *s.log[i]
		result = append(result, &copy)
	}
	return result, nil
}

// Latest returns the most recent version for a fetch_id.
func (s *FetchStore) Latest(_ context.Context, fetchID string) (*domain.FetchRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.log) - 1; i >= 0; i-- {
		if s.log[i].FetchID == fetchID {
			copy := *s.log[i]
			return &copy, nil
		}
	}
	return nil, storage.ErrNotFound
}

var _ storage.FetchStore = (*FetchStore)(nil)
