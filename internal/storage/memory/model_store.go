package memory

import (
	"context"
	"sync"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// ModelStore is an in-memory implementation of storage.ModelStore.
type ModelStore struct {
	mu   sync.RWMutex
	log  []*domain.ModelRecord
	byID map[string]int // model_id -> index in log
}

// NewModelStore creates a new in-memory model store.
func NewModelStore() *ModelStore {
	return &ModelStore{
		byID: make(map[string]int),
	}
}

// Append adds a model record. Returns ErrDuplicateKey if model_id exists.
func (s *ModelStore) Append(_ context.Context, m *domain.ModelRecord) error {
	if m == nil || m.ModelID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[m.ModelID]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *m
	s.byID[m.ModelID] = len(s.log)
	s.log = append(s.log, &copy)
	return nil
}

// ScanReverse returns all records in reverse write order.
func (s *ModelStore) ScanReverse(_ context.Context) ([]*domain.ModelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ModelRecord, 0, len(s.log))
	for i := len(s.log) - 1; i >= 0; i-- {
		copy := *s.log[i]
		result = append(result, &copy)
	}
	return result, nil
}

// GetByID retrieves a model record. Returns ErrNotFound if not exists.
func (s *ModelStore) GetByID(_ context.Context, modelID string) (*domain.ModelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, exists := s.byID[modelID]
	if !exists {
		return nil, storage.ErrNotFound
	}
	copy := *s.log[i]
	return &copy, nil
}

// GetByFetchID retrieves all model records for a fetch, in write order.
func (s *ModelStore) GetByFetchID(_ context.Context, fetchID string) ([]*domain.ModelRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.ModelRecord
	for _, m := range s.log {
		if m.FetchID == fetchID {
			copy := *m
			result = append(result, &copy)
		}
	}
	return result, nil
}

var _ storage.ModelStore = (*ModelStore)(nil)
