package jsonl

import (
	"context"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

// AlertStore implements storage.AlertStore on an alerts.jsonl file. The
// file is the durable notification channel handed to external consumers.
type AlertStore struct {
	j *journal
}

// NewAlertStore creates a JSONL-backed alert store at path.
func NewAlertStore(path string) *AlertStore {
	return &AlertStore{j: newJournal(path)}
}

var _ storage.AlertStore = (*AlertStore)(nil)

// Append adds an alert event at the tail of the log.
func (s *AlertStore) Append(_ context.Context, a *domain.AlertEvent) error {
	if a == nil || a.AlertID == "" {
		return storage.ErrInvalidInput
	}
	return s.j.append(a)
}

// ScanForward returns all alert events in write order.
func (s *AlertStore) ScanForward(_ context.Context) ([]*domain.AlertEvent, error) {
	return readLog[domain.AlertEvent](s.j)
}

// GetByFetchID retrieves all alert events for a fetch, in write order.
func (s *AlertStore) GetByFetchID(_ context.Context, fetchID string) ([]*domain.AlertEvent, error) {
	records, err := readLog[domain.AlertEvent](s.j)
	if err != nil {
		return nil, err
	}
	var result []*domain.AlertEvent
	for _, rec := range records {
		if rec.FetchID == fetchID {
			result = append(result, rec)
		}
	}
	return result, nil
}
