package memory

import (
	"context"
	"sync"

	"stock-prediction-lab/internal/storage"
)

// CurrentFetchStore is an in-memory implementation of storage.CurrentFetchStore.
type CurrentFetchStore struct {
	mu      sync.RWMutex
	fetchID string
	set     bool
}

// NewCurrentFetchStore creates a new in-memory current-fetch pointer store.
func NewCurrentFetchStore() *CurrentFetchStore {
	return &CurrentFetchStore{}
}

// Set rewrites the pointer to the given fetch_id.
func (s *CurrentFetchStore) Set(_ context.Context, fetchID string) error {
	if fetchID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.fetchID = fetchID
	s.set = true
	return nil
}

// Get returns the pointed-at fetch_id. Returns ErrNotFound if unset.
func (s *CurrentFetchStore) Get(_ context.Context) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.set {
		return "", storage.ErrNotFound
	}
	return s.fetchID, nil
}

var _ storage.CurrentFetchStore = (*CurrentFetchStore)(nil)
