package idgen

import (
	"testing"
	"time"

	"stock-prediction-lab/internal/domain"
)

func TestNewFetchID(t *testing.T) {
	at := time.Date(2025, 6, 17, 9, 35, 53, 0, time.UTC)
	got := NewFetchID(at)
	want := "fetch_20250617_093553"
	if got != want {
		t.Errorf("NewFetchID = %q, want %q", got, want)
	}
}

func TestNewModelID(t *testing.T) {
	at := time.Date(2025, 7, 30, 10, 23, 38, 0, time.UTC)
	got := NewModelID("TSLA", at, domain.VariantWithOutliers)
	want := "model_tsla_20250730_102338_with_outliers"
	if got != want {
		t.Errorf("NewModelID = %q, want %q", got, want)
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		id      string
		want    time.Time
		wantErr bool
	}{
		{"fetch_20250617_093553", time.Date(2025, 6, 17, 9, 35, 53, 0, time.UTC), false},
		{"model_tsla_20250730_102338_with_outliers", time.Date(2025, 7, 30, 10, 23, 38, 0, time.UTC), false},
		{"model_tsla_20250730_102338_without_outliers", time.Date(2025, 7, 30, 10, 23, 38, 0, time.UTC), false},
		{"model_tsla_20250730_102338_sometag", time.Time{}, true},
		{"fetch_20251340_093553", time.Time{}, true},
		{"bogus", time.Time{}, true},
	}

	for _, tt := range tests {
		got, err := Timestamp(tt.id)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Timestamp(%q) expected error, got %v", tt.id, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("Timestamp(%q) unexpected error: %v", tt.id, err)
			continue
		}
		if !got.Equal(tt.want) {
			t.Errorf("Timestamp(%q) = %v, want %v", tt.id, got, tt.want)
		}
	}
}
