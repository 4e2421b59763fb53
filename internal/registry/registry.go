// Package registry maintains the append-only model registry. Every trained
// model lands here exactly once; retraining produces a new model_id rather
// than rewriting an existing entry.
package registry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

var (
	// ErrInvalidMetrics is returned when a model's metrics cannot be real
	// evaluation output: negative error magnitudes, R² above 1, or NaN.
	ErrInvalidMetrics = errors.New("invalid model metrics")

	// ErrNoModel is returned when no model matches the lookup.
	ErrNoModel = errors.New("no model registered")
)

// Registry coordinates model registration and lookups over a ModelStore.
type Registry struct {
	models storage.ModelStore
}

// New creates a Registry over the given store.
func New(models storage.ModelStore) *Registry {
	return &Registry{models: models}
}

// Register validates and appends a model record. A record whose model_id is
// already registered returns storage.ErrDuplicateKey; nothing is overwritten.
func (r *Registry) Register(ctx context.Context, m *domain.ModelRecord) error {
	if m == nil || m.ModelID == "" || m.FetchID == "" || m.Symbol == "" {
		return fmt.Errorf("register model: %w", storage.ErrInvalidInput)
	}
	if !validVariant(m.Variant) {
		return fmt.Errorf("register model %s: unknown variant %q: %w", m.ModelID, m.Variant, storage.ErrInvalidInput)
	}
	if err := validateMetrics(m.Metrics); err != nil {
		return fmt.Errorf("register model %s: %w", m.ModelID, err)
	}

	if err := r.models.Append(ctx, m); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("register model %s: %w", m.ModelID, storage.ErrDuplicateKey)
		}
		return fmt.Errorf("register model %s: %w", m.ModelID, err)
	}
	return nil
}

// LatestModel returns the most recently registered model for a symbol and
// variant. Returns ErrNoModel when no match exists.
func (r *Registry) LatestModel(ctx context.Context, symbol string, variant domain.Variant) (*domain.ModelRecord, error) {
	models, err := r.models.ScanReverse(ctx)
	if err != nil {
		return nil, fmt.Errorf("scan model registry: %w", err)
	}

	symbol = strings.ToLower(symbol)
	for _, m := range models {
		if strings.ToLower(m.Symbol) == symbol && m.Variant == variant {
			return m, nil
		}
	}
	return nil, ErrNoModel
}

// ModelsForFetch returns every model trained from the given fetch, in
// registration order.
func (r *Registry) ModelsForFetch(ctx context.Context, fetchID string) ([]*domain.ModelRecord, error) {
	return r.models.GetByFetchID(ctx, fetchID)
}

// Get returns the model with the given id. Returns ErrNoModel if absent.
func (r *Registry) Get(ctx context.Context, modelID string) (*domain.ModelRecord, error) {
	m, err := r.models.GetByID(ctx, modelID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNoModel
		}
		return nil, fmt.Errorf("get model %s: %w", modelID, err)
	}
	return m, nil
}

func validVariant(v domain.Variant) bool {
	for _, known := range domain.Variants {
		if v == known {
			return true
		}
	}
	return false
}

// validateMetrics rejects metric sets that cannot come from a real
// evaluation. RMSE and MAE are error magnitudes and must be non-negative;
// R² may be arbitrarily negative for a bad fit but never exceeds 1.
func validateMetrics(m domain.Metrics) error {
	if m.HasNaN() {
		return fmt.Errorf("%w: NaN metric", ErrInvalidMetrics)
	}
	if m.RMSE < 0 || m.MAE < 0 {
		return fmt.Errorf("%w: negative error magnitude", ErrInvalidMetrics)
	}
	if m.R2 > 1 {
		return fmt.Errorf("%w: r2 above 1", ErrInvalidMetrics)
	}
	if math.IsInf(m.RMSE, 0) || math.IsInf(m.MAE, 0) || math.IsInf(m.R2, 0) {
		return fmt.Errorf("%w: infinite metric", ErrInvalidMetrics)
	}
	return nil
}
