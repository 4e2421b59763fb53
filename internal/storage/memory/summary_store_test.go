package memory

import (
	"context"
	"errors"
	"testing"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

func TestSummaryStore_LatestBySymbol(t *testing.T) {
	store := NewSummaryStore()
	ctx := context.Background()

	first := &domain.PerformanceSummary{
		ModelID: "model_tsla_20250601_101500_without_outliers",
		Symbol:  "TSLA",
		Metrics: domain.Metrics{RMSE: 19.0, MAE: 14.0, R2: 0.80},
	}
	second := &domain.PerformanceSummary{
		ModelID: "model_tsla_20250602_101500_without_outliers",
		Symbol:  "TSLA",
		Metrics: domain.Metrics{RMSE: 18.0, MAE: 13.5, R2: 0.83},
	}
	other := &domain.PerformanceSummary{
		ModelID: "model_aapl_20250603_101500_without_outliers",
		Symbol:  "AAPL",
		Metrics: domain.Metrics{RMSE: 5.0, MAE: 4.0, R2: 0.9},
	}

	for _, s := range []*domain.PerformanceSummary{first, second, other} {
		if err := store.Append(ctx, s); err != nil {
			t.Fatalf("Append failed: %v", err)
		}
	}

	got, err := store.LatestBySymbol(ctx, "TSLA")
	if err != nil {
		t.Fatalf("LatestBySymbol failed: %v", err)
	}
	if got.ModelID != second.ModelID {
		t.Errorf("LatestBySymbol = %s, want %s", got.ModelID, second.ModelID)
	}

	_, err = store.LatestBySymbol(ctx, "MSFT")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
