package jsonl

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"stock-prediction-lab/internal/storage"
)

// CurrentFetchStore implements storage.CurrentFetchStore as a small JSON
// file rewritten atomically on every Set. This is the one mutable record
// in the persisted state layout.
type CurrentFetchStore struct {
	mu   sync.Mutex
	path string
}

// NewCurrentFetchStore creates a file-backed current-fetch pointer at path.
func NewCurrentFetchStore(path string) *CurrentFetchStore {
	return &CurrentFetchStore{path: path}
}

var _ storage.CurrentFetchStore = (*CurrentFetchStore)(nil)

type pointerRecord struct {
	FetchID string `json:"fetch_id"`
}

// Set rewrites the pointer via temp-file rename so a crash never leaves a
// half-written pointer.
func (s *CurrentFetchStore) Set(_ context.Context, fetchID string) error {
	if fetchID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create pointer dir: %w", err)
	}

	data, err := json.Marshal(pointerRecord{FetchID: fetchID})
	if err != nil {
		return fmt.Errorf("marshal pointer: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write pointer temp file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace pointer file: %w", err)
	}
	return nil
}

// Get returns the pointed-at fetch_id. Returns ErrNotFound if unset.
func (s *CurrentFetchStore) Get(_ context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("read pointer file: %w", err)
	}

	var rec pointerRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return "", fmt.Errorf("decode pointer file: %w", err)
	}
	if rec.FetchID == "" {
		return "", storage.ErrNotFound
	}
	return rec.FetchID, nil
}
