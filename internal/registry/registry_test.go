package registry

import (
	"context"
	"errors"
	"math"
	"testing"

	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/storage"
	"stock-prediction-lab/internal/storage/memory"
)

func validModel(modelID string, variant domain.Variant) *domain.ModelRecord {
	return &domain.ModelRecord{
		ModelID:      modelID,
		FetchID:      "fetch_20250730_102000",
		Symbol:       "tsla",
		Variant:      variant,
		TrainedAt:    1753871018000,
		ArtifactPath: "models/" + modelID + ".json",
		Metrics:      domain.Metrics{RMSE: 19.0, MAE: 14.2, R2: 0.84},
		Features:     []string{"ma_5", "ma_20"},
		Target:       "next_close",
		ModelType:    "linear_regression",
	}
}

func TestRegisterAndLatest(t *testing.T) {
	ctx := context.Background()
	r := New(memory.NewModelStore())

	older := validModel("model_tsla_20250617_094500_with_outliers", domain.VariantWithOutliers)
	newer := validModel("model_tsla_20250730_102338_with_outliers", domain.VariantWithOutliers)

	if err := r.Register(ctx, older); err != nil {
		t.Fatalf("Register older: %v", err)
	}
	if err := r.Register(ctx, newer); err != nil {
		t.Fatalf("Register newer: %v", err)
	}

	got, err := r.LatestModel(ctx, "TSLA", domain.VariantWithOutliers)
	if err != nil {
		t.Fatalf("LatestModel: %v", err)
	}
	if got.ModelID != newer.ModelID {
		t.Errorf("LatestModel = %q, want %q", got.ModelID, newer.ModelID)
	}
}

func TestLatestModelFiltersVariant(t *testing.T) {
	ctx := context.Background()
	r := New(memory.NewModelStore())

	with := validModel("model_tsla_20250730_102338_with_outliers", domain.VariantWithOutliers)
	if err := r.Register(ctx, with); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, err := r.LatestModel(ctx, "tsla", domain.VariantWithoutOutliers)
	if !errors.Is(err, ErrNoModel) {
		t.Errorf("LatestModel = %v, want ErrNoModel", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	ctx := context.Background()
	r := New(memory.NewModelStore())

	m := validModel("model_tsla_20250730_102338_with_outliers", domain.VariantWithOutliers)
	if err := r.Register(ctx, m); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if err := r.Register(ctx, m); !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("Register duplicate = %v, want ErrDuplicateKey", err)
	}
}

func TestRegisterInvalidMetrics(t *testing.T) {
	ctx := context.Background()
	r := New(memory.NewModelStore())

	cases := []struct {
		name    string
		metrics domain.Metrics
	}{
		{"negative rmse", domain.Metrics{RMSE: -1, MAE: 14.2, R2: 0.84}},
		{"negative mae", domain.Metrics{RMSE: 19.0, MAE: -0.5, R2: 0.84}},
		{"r2 above one", domain.Metrics{RMSE: 19.0, MAE: 14.2, R2: 1.2}},
		{"nan rmse", domain.Metrics{RMSE: math.NaN(), MAE: 14.2, R2: 0.84}},
		{"nan r2", domain.Metrics{RMSE: 19.0, MAE: 14.2, R2: math.NaN()}},
		{"inf mae", domain.Metrics{RMSE: 19.0, MAE: math.Inf(1), R2: 0.84}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := validModel("model_tsla_20250730_102338_with_outliers", domain.VariantWithOutliers)
			m.Metrics = tc.metrics
			if err := r.Register(ctx, m); !errors.Is(err, ErrInvalidMetrics) {
				t.Errorf("Register = %v, want ErrInvalidMetrics", err)
			}
		})
	}

	// Strongly negative R² is a terrible fit but a legal value.
	m := validModel("model_tsla_20250730_102341_without_outliers", domain.VariantWithoutOutliers)
	m.Metrics = domain.Metrics{RMSE: 19.0, MAE: 14.2, R2: -3.5}
	if err := r.Register(ctx, m); err != nil {
		t.Errorf("Register negative r2: %v", err)
	}
}

func TestRegisterUnknownVariant(t *testing.T) {
	ctx := context.Background()
	r := New(memory.NewModelStore())

	m := validModel("model_tsla_20250730_102338_with_outliers", domain.Variant("sideways"))
	if err := r.Register(ctx, m); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Register = %v, want ErrInvalidInput", err)
	}
}

func TestModelsForFetch(t *testing.T) {
	ctx := context.Background()
	r := New(memory.NewModelStore())

	m1 := validModel("model_tsla_20250730_102338_with_outliers", domain.VariantWithOutliers)
	m2 := validModel("model_tsla_20250730_102341_without_outliers", domain.VariantWithoutOutliers)
	if err := r.Register(ctx, m1); err != nil {
		t.Fatalf("Register m1: %v", err)
	}
	if err := r.Register(ctx, m2); err != nil {
		t.Fatalf("Register m2: %v", err)
	}

	models, err := r.ModelsForFetch(ctx, m1.FetchID)
	if err != nil {
		t.Fatalf("ModelsForFetch: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("len(models) = %d, want 2", len(models))
	}
}
