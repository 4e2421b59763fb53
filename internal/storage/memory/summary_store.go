package memory

import (
	"context"
	"sync"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// SummaryStore is an in-memory implementation of storage.SummaryStore.
type SummaryStore struct {
	mu  sync.RWMutex
	log []*domain.PerformanceSummary
}

// NewSummaryStore creates a new in-memory performance summary store.
func NewSummaryStore() *SummaryStore {
	return &SummaryStore{}
}

// Append adds a performance summary at the tail of the log.
func (s *SummaryStore) Append(_ context.Context, sum *domain.PerformanceSummary) error {
	if sum == nil || sum.ModelID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *sum
	s.log = append(s.log, &copy)
	return nil
}

// ScanForward returns all summaries in write order.
func (s *SummaryStore) ScanForward(_ context.Context) ([]*domain.PerformanceSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.PerformanceSummary, 0, len(s.log))
	for _, sum := range s.log {
		copy := *sum
		result = append(result, &copy)
	}
	return result, nil
}

// LatestBySymbol returns the most recent summary for a symbol.
func (s *SummaryStore) LatestBySymbol(_ context.Context, symbol string) (*domain.PerformanceSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.log) - 1; i >= 0; i-- {
		if s.log[i].Symbol == symbol {
			copy := *s.log[i]
			return &copy, nil
		}
	}
	return nil, storage.ErrNotFound
}

var _ storage.SummaryStore = (*SummaryStore)(nil)
