package storage

import (
	"context"

	"stock-prediction-lab/internal/domain"
)

// The stores below are ordered logs: Append adds a record at the tail,
// ScanForward replays in write order, ScanReverse in reverse write order.
// The backing store (memory, JSONL file, Postgres, ClickHouse) is swappable
// without touching ledger, registry, or monitor logic.

// FetchStore holds the append-only fetch ledger log. Every fetch status
// transition is a new appended version; the latest version per fetch_id is
// the record's current state.
type FetchStore interface {
	// Append adds a fetch record version at the tail of the log.
	Append(ctx context.Context, r *domain.FetchRecord) error

	// ScanForward returns all record versions in write order.
	ScanForward(ctx context.Context) ([]*domain.FetchRecord, error)

	// ScanReverse returns all record versions in reverse write order.
	ScanReverse(ctx context.Context) ([]*domain.FetchRecord, error)

	// Latest returns the most recent version for a fetch_id.
	// Returns ErrNotFound if the fetch was never begun.
	Latest(ctx context.Context, fetchID string) (*domain.FetchRecord, error)
}

// CurrentFetchStore holds the single mutable current-fetch pointer.
// It is the only entity in the system with in-place mutation.
type CurrentFetchStore interface {
	// Set rewrites the pointer to the given fetch_id.
	Set(ctx context.Context, fetchID string) error

	// Get returns the pointed-at fetch_id. Returns ErrNotFound if unset.
	Get(ctx context.Context) (string, error)
}

// ModelStore holds the append-only model registry log.
type ModelStore interface {
	// Append adds a model record. Returns ErrDuplicateKey if model_id exists.
	Append(ctx context.Context, m *domain.ModelRecord) error

	// ScanReverse returns all records in reverse write order.
	ScanReverse(ctx context.Context) ([]*domain.ModelRecord, error)

	// GetByID retrieves a model record. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, modelID string) (*domain.ModelRecord, error)

	// GetByFetchID retrieves all model records for a fetch, in write order.
	GetByFetchID(ctx context.Context, fetchID string) ([]*domain.ModelRecord, error)
}

// SummaryStore holds the append-only performance summary log.
type SummaryStore interface {
	// Append adds a performance summary at the tail of the log.
	Append(ctx context.Context, s *domain.PerformanceSummary) error

	// ScanForward returns all summaries in write order.
	ScanForward(ctx context.Context) ([]*domain.PerformanceSummary, error)

	// LatestBySymbol returns the most recent summary for a symbol.
	// Returns ErrNotFound if the symbol has never been evaluated.
	LatestBySymbol(ctx context.Context, symbol string) (*domain.PerformanceSummary, error)
}

// AlertStore holds the append-only alert event log. Events are never
// deleted or mutated; consumption is an external concern.
type AlertStore interface {
	// Append adds an alert event at the tail of the log.
	Append(ctx context.Context, a *domain.AlertEvent) error

	// ScanForward returns all alert events in write order.
	ScanForward(ctx context.Context) ([]*domain.AlertEvent, error)

	// GetByFetchID retrieves all alert events for a fetch, in write order.
	GetByFetchID(ctx context.Context, fetchID string) ([]*domain.AlertEvent, error)
}
