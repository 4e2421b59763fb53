// Package ledger maintains the fetch ledger: an append-only history of data
// fetch attempts plus a single mutable pointer to the fetch the rest of the
// pipeline should operate on.
//
// Status changes never rewrite history. Each transition appends a new record
// version; the latest version per fetch_id wins on replay. Only the current
// pointer is updated in place.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/idgen"
	"stock-prediction-lab/internal/storage"
)

var (
	// ErrNoCurrentFetch is returned when no usable current fetch exists.
	ErrNoCurrentFetch = errors.New("no current fetch")

	// ErrUnknownFetch is returned when a transition names a fetch that is
	// not the current pending fetch.
	ErrUnknownFetch = errors.New("unknown or non-pending fetch")
)

// Ledger coordinates fetch lifecycle transitions over the backing stores.
type Ledger struct {
	fetches storage.FetchStore
	current storage.CurrentFetchStore

	now func() time.Time
}

// New creates a Ledger over the given stores.
func New(fetches storage.FetchStore, current storage.CurrentFetchStore) *Ledger {
	return &Ledger{
		fetches: fetches,
		current: current,
		now:     time.Now,
	}
}

// BeginFetch registers a new pending fetch for the symbol and moves the
// current pointer to it. The record is durably appended before the pointer
// moves, so a crash between the two leaves the previous fetch current.
//
// The symbol is normalized to its canonical upper-case form here, so every
// downstream record of the run carries the same spelling and history lookups
// keyed by symbol agree across runs.
func (l *Ledger) BeginFetch(ctx context.Context, symbol string) (*domain.FetchRecord, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" {
		return nil, fmt.Errorf("begin fetch: %w", storage.ErrInvalidInput)
	}

	at := l.now().UTC()
	record := &domain.FetchRecord{
		FetchID:     idgen.NewFetchID(at),
		Symbol:      symbol,
		RequestedAt: at.UnixMilli(),
		Status:      domain.FetchPending,
		UpdatedAt:   at.UnixMilli(),
	}

	if err := l.fetches.Append(ctx, record); err != nil {
		return nil, fmt.Errorf("append pending fetch: %w", err)
	}
	if err := l.current.Set(ctx, record.FetchID); err != nil {
		return nil, fmt.Errorf("set current fetch: %w", err)
	}

	return record, nil
}

// CompleteFetch marks the current pending fetch complete and records where
// the raw data landed. Completing anything other than the current pending
// fetch returns ErrUnknownFetch.
func (l *Ledger) CompleteFetch(ctx context.Context, fetchID, rawDataPath string) (*domain.FetchRecord, error) {
	if rawDataPath == "" {
		return nil, fmt.Errorf("complete fetch: %w", storage.ErrInvalidInput)
	}

	prev, err := l.currentPending(ctx, fetchID)
	if err != nil {
		return nil, err
	}

	next := *prev
	next.Status = domain.FetchComplete
	next.RawDataPath = rawDataPath
	next.UpdatedAt = l.now().UTC().UnixMilli()

	if err := l.fetches.Append(ctx, &next); err != nil {
		return nil, fmt.Errorf("append complete fetch: %w", err)
	}
	return &next, nil
}

// FailFetch marks the current pending fetch failed with the given reason.
func (l *Ledger) FailFetch(ctx context.Context, fetchID, reason string) (*domain.FetchRecord, error) {
	prev, err := l.currentPending(ctx, fetchID)
	if err != nil {
		return nil, err
	}

	next := *prev
	next.Status = domain.FetchFailed
	next.FailReason = reason
	next.UpdatedAt = l.now().UTC().UnixMilli()

	if err := l.fetches.Append(ctx, &next); err != nil {
		return nil, fmt.Errorf("append failed fetch: %w", err)
	}
	return &next, nil
}

// CurrentFetch returns the latest version of the fetch the pointer names.
// Returns ErrNoCurrentFetch when the pointer is unset or the pointed-at
// fetch failed: downstream stages must never consume a failed fetch.
func (l *Ledger) CurrentFetch(ctx context.Context) (*domain.FetchRecord, error) {
	fetchID, err := l.current.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoCurrentFetch
		}
		return nil, fmt.Errorf("get current fetch pointer: %w", err)
	}

	record, err := l.fetches.Latest(ctx, fetchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Pointer names a fetch the log never saw; treat as unset.
			return nil, ErrNoCurrentFetch
		}
		return nil, fmt.Errorf("get current fetch record: %w", err)
	}

	if record.Status == domain.FetchFailed {
		return nil, ErrNoCurrentFetch
	}
	return record, nil
}

// History returns every record version in write order.
func (l *Ledger) History(ctx context.Context) ([]*domain.FetchRecord, error) {
	return l.fetches.ScanForward(ctx)
}

// currentPending loads the current fetch and verifies it matches fetchID and
// is still pending.
func (l *Ledger) currentPending(ctx context.Context, fetchID string) (*domain.FetchRecord, error) {
	currentID, err := l.current.Get(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownFetch
		}
		return nil, fmt.Errorf("get current fetch pointer: %w", err)
	}
	if currentID != fetchID {
		return nil, ErrUnknownFetch
	}

	record, err := l.fetches.Latest(ctx, fetchID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrUnknownFetch
		}
		return nil, fmt.Errorf("get fetch record: %w", err)
	}
	if record.Status != domain.FetchPending {
		return nil, ErrUnknownFetch
	}
	return record, nil
}
