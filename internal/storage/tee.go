package storage

import (
	"context"

	"github.com/rs/zerolog"

	"stock-prediction-lab/internal/domain"
)

// TeeSummaryStore writes performance summaries to a primary store and
// mirrors them to a secondary analytics store. Reads always come from the
// primary; a mirror write failure is logged and never fails the run.
type TeeSummaryStore struct {
	primary SummaryStore
	mirror  SummaryStore
	log     zerolog.Logger
}

// NewTeeSummaryStore creates a TeeSummaryStore.
func NewTeeSummaryStore(primary, mirror SummaryStore, log zerolog.Logger) *TeeSummaryStore {
	return &TeeSummaryStore{
		primary: primary,
		mirror:  mirror,
		log:     log.With().Str("component", "summary_tee").Logger(),
	}
}

// Compile-time interface check.
var _ SummaryStore = (*TeeSummaryStore)(nil)

// Append writes to the primary and best-effort mirrors.
func (s *TeeSummaryStore) Append(ctx context.Context, sum *domain.PerformanceSummary) error {
	if err := s.primary.Append(ctx, sum); err != nil {
		return err
	}
	if err := s.mirror.Append(ctx, sum); err != nil {
		s.log.Warn().Err(err).Str("model_id", sum.ModelID).Msg("mirror append failed")
	}
	return nil
}

// ScanForward reads from the primary.
func (s *TeeSummaryStore) ScanForward(ctx context.Context) ([]*domain.PerformanceSummary, error) {
	return s.primary.ScanForward(ctx)
}

// LatestBySymbol reads from the primary.
func (s *TeeSummaryStore) LatestBySymbol(ctx context.Context, symbol string) (*domain.PerformanceSummary, error) {
	return s.primary.LatestBySymbol(ctx, symbol)
}
