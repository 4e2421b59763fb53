package memory

import (
	"context"
	"sync"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// AlertStore is an in-memory implementation of storage.AlertStore.
type AlertStore struct {
	mu  sync.RWMutex
	log []*domain.AlertEvent
}

// NewAlertStore creates a new in-memory alert store.
func NewAlertStore() *AlertStore {
	return &AlertStore{}
}

// Append adds an alert event at the tail of the log.
func (s *AlertStore) Append(_ context.Context, a *domain.AlertEvent) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *a
	s.log = append(s.log, &copy)
	return nil
}

// ScanForward returns all alert events in write order.
func (s *AlertStore) ScanForward(_ context.Context) ([]*domain.AlertEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.AlertEvent, 0, len(s.log))
	for _, a := range s.log {
		copy := *a
		result = append(result, &copy)
	}
	return result, nil
}

// GetByFetchID retrieves all alert events for a fetch, in write order.
func (s *AlertStore) GetByFetchID(_ context.Context, fetchID string) ([]*domain.AlertEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.AlertEvent
	for _, a := range s.log {
		if a.FetchID == fetchID {
			copy := *a
			result = append(result, &copy)
		}
	}
	return result, nil
}

var _ storage.AlertStore = (*AlertStore)(nil)
