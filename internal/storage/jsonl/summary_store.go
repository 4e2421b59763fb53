package jsonl

import (
	"context"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// SummaryStore implements storage.SummaryStore on a JSONL file.
type SummaryStore struct {
	j *journal
}

// NewSummaryStore creates a JSONL-backed performance summary store at path.
func NewSummaryStore(path string) *SummaryStore {
	return &SummaryStore{j: newJournal(path)}
}

var _ storage.SummaryStore = (*SummaryStore)(nil)

// Append adds a performance summary at the tail of the log.
func (s *SummaryStore) Append(_ context.Context, sum *domain.PerformanceSummary) error {
	if sum == nil || sum.ModelID == "" {
		return storage.ErrInvalidInput
	}
	return s.j.append(sum)
}

// ScanForward returns all summaries in write order.
func (s *SummaryStore) ScanForward(_ context.Context) ([]*domain.PerformanceSummary, error) {
	return readLog[domain.PerformanceSummary](s.j)
}

// LatestBySymbol returns the most recent summary for a symbol.
func (s *SummaryStore) LatestBySymbol(_ context.Context, symbol string) (*domain.PerformanceSummary, error) {
	records, err := readLog[domain.PerformanceSummary](s.j)
	if err != nil {
		return nil, err
	}
	for i := len(records) - 1; i >= 0; i-- {
		if records[i].Symbol == symbol {
			return records[i], nil
		}
	}
	return nil, storage.ErrNotFound
}
