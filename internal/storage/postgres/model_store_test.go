package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
)

func testModel(modelID string, variant domain.Variant) *domain.ModelRecord {
	return &domain.ModelRecord{
		ModelID:      modelID,
		FetchID:      "fetch_20250730_102000",
		Symbol:       "tsla",
		Variant:      variant,
		TrainedAt:    1753871018000,
		ArtifactPath: "models/" + modelID + ".json",
		Metrics:      domain.Metrics{RMSE: 19.0, MAE: 14.2, R2: 0.84},
		Features:     []string{"ma_5", "ma_20", "daily_return", "close_lag_1"},
		Target:       "next_close",
		ModelType:    "linear_regression",
	}
}

func TestModelStore_AppendDuplicate(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewModelStore(pool)

	m := testModel("model_tsla_20250730_102338_with_outliers", domain.VariantWithOutliers)
	require.NoError(t, store.Append(ctx, m))

	err := store.Append(ctx, m)
	require.True(t, errors.Is(err, storage.ErrDuplicateKey))
}

func TestModelStore_GetByFetchID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewModelStore(pool)

	m1 := testModel("model_tsla_20250730_102338_with_outliers", domain.VariantWithOutliers)
	m2 := testModel("model_tsla_20250730_102341_without_outliers", domain.VariantWithoutOutliers)
	require.NoError(t, store.Append(ctx, m1))
	require.NoError(t, store.Append(ctx, m2))

	models, err := store.GetByFetchID(ctx, m1.FetchID)
	require.NoError(t, err)
	require.Len(t, models, 2)
	require.Equal(t, m1.ModelID, models[0].ModelID)
	require.Equal(t, m2.ModelID, models[1].ModelID)
	require.Equal(t, m1.Features, models[0].Features)
	require.Equal(t, m1.Metrics, models[0].Metrics)

	got, err := store.GetByID(ctx, m2.ModelID)
	require.NoError(t, err)
	require.Equal(t, domain.VariantWithoutOutliers, got.Variant)

	_, err = store.GetByID(ctx, "model_tsla_19700101_000000_with_outliers")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestSummaryStore_LatestBySymbol(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSummaryStore(pool)

	first := &domain.PerformanceSummary{
		FetchID:       "fetch_20250617_093553",
		ModelID:       "model_tsla_20250617_094500_without_outliers",
		Symbol:        "tsla",
		Metrics:       domain.Metrics{RMSE: 19.0, MAE: 14.2, R2: 0.84},
		ThresholdUsed: 0.75,
		RelTolerance:  0.1,
		EvaluatedAt:   1750153000000,
	}
	second := &domain.PerformanceSummary{
		FetchID:       "fetch_20250730_102000",
		ModelID:       "model_tsla_20250730_102341_without_outliers",
		Symbol:        "tsla",
		Metrics:       domain.Metrics{RMSE: 21.5, MAE: 15.1, R2: 0.79},
		ThresholdUsed: 0.75,
		RelTolerance:  0.1,
		Degraded:      true,
		Reasons:       []string{"rmse worsened beyond tolerance"},
		EvaluatedAt:   1753871100000,
	}
	require.NoError(t, store.Append(ctx, first))
	require.NoError(t, store.Append(ctx, second))

	got, err := store.LatestBySymbol(ctx, "tsla")
	require.NoError(t, err)
	require.Equal(t, second.ModelID, got.ModelID)
	require.True(t, got.Degraded)
	require.Equal(t, second.Reasons, got.Reasons)

	_, err = store.LatestBySymbol(ctx, "aapl")
	require.True(t, errors.Is(err, storage.ErrNotFound))

	all, err := store.ScanForward(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, first.ModelID, all[0].ModelID)
}

func TestAlertStore_GetByFetchID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewAlertStore(pool)

	a := &domain.AlertEvent{
		AlertID:  "7c9e6679-7425-40de-944b-e07fc1f90ae7",
		Kind:     domain.AlertStageFailure,
		FetchID:  "fetch_20250617_093553",
		Symbol:   "tsla",
		Stage:    "fetching",
		Message:  "rate limited by provider",
		RaisedAt: 1750152960000,
	}
	require.NoError(t, store.Append(ctx, a))

	err := store.Append(ctx, a)
	require.True(t, errors.Is(err, storage.ErrDuplicateKey))

	alerts, err := store.GetByFetchID(ctx, a.FetchID)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	require.Equal(t, domain.AlertStageFailure, alerts[0].Kind)
}
