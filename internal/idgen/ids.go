// Package idgen derives fetch and model identifiers from timestamps.
// IDs are monotonically distinguishable within one-second resolution,
// which matches the single-fetch-at-a-time execution model.
package idgen

import (
	"fmt"
	"strings"
	"time"

	"stock-prediction-lab/internal/domain"
)

// stampLayout is the timestamp encoding shared by fetch and model IDs.
const stampLayout = "20060102_150405"

// NewFetchID returns an ID of the form fetch_YYYYMMDD_HHMMSS.
func NewFetchID(at time.Time) string {
	return "fetch_" + at.UTC().Format(stampLayout)
}

// NewModelID returns an ID of the form model_<symbol>_YYYYMMDD_HHMMSS_<variant>.
// The timestamp is the training time, so retraining the same fetch yields a
// distinct ID.
func NewModelID(symbol string, trainedAt time.Time, variant domain.Variant) string {
	return fmt.Sprintf("model_%s_%s_%s",
		strings.ToLower(symbol), trainedAt.UTC().Format(stampLayout), variant)
}

// Timestamp extracts the encoded timestamp from a fetch or model ID.
func Timestamp(id string) (time.Time, error) {
	parts := strings.Split(id, "_")

	var stamp string
	switch {
	case len(parts) == 3 && parts[0] == "fetch":
		stamp = parts[1] + "_" + parts[2]
	case len(parts) >= 6 && parts[0] == "model":
		// model_<symbol>_<date>_<time>_<variant two words>
		suffix := strings.Join(parts[len(parts)-2:], "_")
		if suffix != string(domain.VariantWithOutliers) && suffix != string(domain.VariantWithoutOutliers) {
			return time.Time{}, fmt.Errorf("unrecognized model variant suffix %q", suffix)
		}
		stamp = parts[len(parts)-4] + "_" + parts[len(parts)-3]
	default:
		return time.Time{}, fmt.Errorf("unrecognized id format %q", id)
	}

	t, err := time.Parse(stampLayout, stamp)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp in id %q: %w", id, err)
	}
	return t.UTC(), nil
}
