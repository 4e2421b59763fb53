// Package process turns raw daily bars into model-ready feature frames:
// cleaning, inspection, and feature engineering.
package process

import (
	"fmt"
	"math"
	"sort"

	"stock-prediction-lab/internal/dataset"
)

// CleanReport records what cleaning did to the input.
type CleanReport struct {
	InputRows       int
	DuplicateDates  int
	InvalidRows     int
	OutliersRemoved int
	OutputRows      int
}

// Clean normalizes a raw bar series: sorts by date, drops duplicate dates
// (last write wins, matching provider behavior on corrections), drops rows
// with impossible prices, and optionally removes close-price outliers by the
// 1.5×IQR rule.
func Clean(bars []dataset.Bar, removeOutliers bool) ([]dataset.Bar, CleanReport, error) {
	report := CleanReport{InputRows: len(bars)}
	if len(bars) == 0 {
		return nil, report, fmt.Errorf("clean: empty bar series")
	}

	// Last occurrence of a date wins.
	byDate := make(map[string]dataset.Bar, len(bars))
	for _, b := range bars {
		if _, seen := byDate[b.Date]; seen {
			report.DuplicateDates++
		}
		byDate[b.Date] = b
	}

	cleaned := make([]dataset.Bar, 0, len(byDate))
	for _, b := range byDate {
		if !validBar(b) {
			report.InvalidRows++
			continue
		}
		cleaned = append(cleaned, b)
	}
	sort.Slice(cleaned, func(i, j int) bool { return cleaned[i].Date < cleaned[j].Date })

	if removeOutliers && len(cleaned) >= 4 {
		cleaned, report.OutliersRemoved = dropOutliers(cleaned)
	}

	report.OutputRows = len(cleaned)
	if report.OutputRows == 0 {
		return nil, report, fmt.Errorf("clean: no rows survived")
	}
	return cleaned, report, nil
}

func validBar(b dataset.Bar) bool {
	if _, err := b.ParseDate(); err != nil {
		return false
	}
	prices := []float64{b.Open, b.High, b.Low, b.Close}
	for _, p := range prices {
		if p <= 0 || math.IsNaN(p) || math.IsInf(p, 0) {
			return false
		}
	}
	return b.High >= b.Low && b.Volume >= 0
}

// dropOutliers removes bars whose close falls outside the 1.5×IQR fences.
func dropOutliers(bars []dataset.Bar) ([]dataset.Bar, int) {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	sort.Float64s(closes)

	q1 := quantile(closes, 0.25)
	q3 := quantile(closes, 0.75)
	iqr := q3 - q1
	lo := q1 - 1.5*iqr
	hi := q3 + 1.5*iqr

	kept := bars[:0]
	removed := 0
	for _, b := range bars {
		if b.Close < lo || b.Close > hi {
			removed++
			continue
		}
		kept = append(kept, b)
	}
	return kept, removed
}

// quantile computes the q-th quantile of sorted values by linear
// interpolation.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}
