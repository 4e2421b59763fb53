package domain

import "math"

// Variant names the data-retention policy a model was trained under.
type Variant string

const (
	VariantWithOutliers    Variant = "with_outliers"
	VariantWithoutOutliers Variant = "without_outliers"
)

// Variants lists all model variants trained per fetch.
var Variants = []Variant{VariantWithOutliers, VariantWithoutOutliers}

// Metrics holds held-out evaluation metrics for a trained model.
type Metrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
	R2   float64 `json:"r2"`
}

// HasNaN reports whether any metric is NaN.
func (m Metrics) HasNaN() bool {
	return math.IsNaN(m.RMSE) || math.IsNaN(m.MAE) || math.IsNaN(m.R2)
}

// ModelRecord is the immutable registry entry for one trained model variant.
// Retraining for the same fetch appends a new record under a fresh model_id;
// nothing is ever overwritten.
type ModelRecord struct {
	ModelID      string   `json:"model_id"`
	FetchID      string   `json:"fetch_id"`
	Symbol       string   `json:"symbol"`
	Variant      Variant  `json:"variant"`
	TrainedAt    int64    `json:"trained_at"` // Unix ms
	ArtifactPath string   `json:"artifact_path"`
	Metrics      Metrics  `json:"metrics"`
	Features     []string `json:"features,omitempty"`
	Target       string   `json:"target,omitempty"`
	ModelType    string   `json:"model_type,omitempty"`
}
