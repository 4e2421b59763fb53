package marketdata

import (
	"context"
	"math"
	"strings"
	"time"

	"stock-prediction-lab/internal/dataset"
)

// Stub is a deterministic in-process provider for tests and offline runs.
// It synthesizes a smooth weekday price walk seeded by the symbol, so the
// same symbol always yields the same series.
type Stub struct {
	// Days is the number of weekday bars to generate.
	Days int

	// Start anchors the series end date. Zero means 2025-07-30.
	End time.Time

	// Fail, when set, makes every call return this error.
	Fail error
}

// Compile-time interface check.
var _ Client = (*Stub)(nil)

// FetchDaily generates the synthetic series.
func (s *Stub) FetchDaily(_ context.Context, symbol string) ([]dataset.Bar, error) {
	if s.Fail != nil {
		return nil, s.Fail
	}

	days := s.Days
	if days <= 0 {
		days = 250
	}
	end := s.End
	if end.IsZero() {
		end = time.Date(2025, 7, 30, 0, 0, 0, 0, time.UTC)
	}

	seed := float64(0)
	for _, c := range strings.ToLower(symbol) {
		seed += float64(c)
	}
	base := 50 + math.Mod(seed, 300)

	bars := make([]dataset.Bar, 0, days)
	day := end
	for len(bars) < days {
		if wd := day.Weekday(); wd != time.Saturday && wd != time.Sunday {
			i := float64(days - len(bars))
			close := base + 10*math.Sin(i/9) + i/25
			bars = append(bars, dataset.Bar{
				Date:   day.Format(dataset.DateLayout),
				Open:   close - 0.8,
				High:   close + 1.5,
				Low:    close - 1.7,
				Close:  close,
				Volume: 1_000_000 + 5_000*math.Mod(seed*i, 97),
			})
		}
		day = day.AddDate(0, 0, -1)
	}

	// Generated newest-first above; callers expect oldest first.
	for i, j := 0, len(bars)-1; i < j; i, j = i+1, j-1 {
		bars[i], bars[j] = bars[j], bars[i]
	}
	return bars, nil
}
