package artifact

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store writes artifact files, creating parent directories on demand.
type Store struct {
	layout *Layout
}

// NewStore creates a Store over the given layout.
func NewStore(layout *Layout) *Store {
	return &Store{layout: layout}
}

// Layout exposes the path scheme.
func (s *Store) Layout() *Layout {
	return s.layout
}

// Write persists content at path, creating parent directories as needed.
func (s *Store) Write(path string, content []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", filepath.Base(path), err)
	}
	return nil
}

// Read loads an artifact's content.
func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact %s: %w", filepath.Base(path), err)
	}
	return data, nil
}
