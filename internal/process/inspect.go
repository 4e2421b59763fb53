package process

import (
	"fmt"
	"math"
	"time"

	"stock-prediction-lab/internal/dataset"
)

// InspectionSummary captures the shape of a raw bar series before cleaning.
type InspectionSummary struct {
	Rows            int
	StartDate       string
	EndDate         string
	MissingWeekdays int
	DuplicateDates  int
	InvalidRows     int
	MinClose        float64
	MaxClose        float64
	MeanClose       float64
	MeanVolume      float64
}

// Inspect summarizes a raw series. It never modifies the input; the numbers
// feed the inspection report and the decision to proceed.
func Inspect(bars []dataset.Bar) (*InspectionSummary, error) {
	if len(bars) == 0 {
		return nil, fmt.Errorf("inspect: empty bar series")
	}

	s := &InspectionSummary{
		Rows:     len(bars),
		MinClose: math.Inf(1),
		MaxClose: math.Inf(-1),
	}

	seen := make(map[string]struct{}, len(bars))
	var closeSum, volumeSum float64
	for _, b := range bars {
		if _, dup := seen[b.Date]; dup {
			s.DuplicateDates++
		}
		seen[b.Date] = struct{}{}

		if !validBar(b) {
			s.InvalidRows++
			continue
		}

		if s.StartDate == "" || b.Date < s.StartDate {
			s.StartDate = b.Date
		}
		if b.Date > s.EndDate {
			s.EndDate = b.Date
		}
		s.MinClose = math.Min(s.MinClose, b.Close)
		s.MaxClose = math.Max(s.MaxClose, b.Close)
		closeSum += b.Close
		volumeSum += b.Volume
	}

	valid := s.Rows - s.InvalidRows
	if valid == 0 {
		return nil, fmt.Errorf("inspect: no valid rows")
	}
	s.MeanClose = closeSum / float64(valid)
	s.MeanVolume = volumeSum / float64(valid)
	s.MissingWeekdays = missingWeekdays(seen, s.StartDate, s.EndDate)

	return s, nil
}

// missingWeekdays counts weekdays in [start, end] with no bar. Market
// holidays land here too; the count is a data-quality signal, not an error.
func missingWeekdays(seen map[string]struct{}, start, end string) int {
	from, err := time.Parse(dataset.DateLayout, start)
	if err != nil {
		return 0
	}
	to, err := time.Parse(dataset.DateLayout, end)
	if err != nil {
		return 0
	}

	missing := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, ok := seen[d.Format(dataset.DateLayout)]; !ok {
			missing++
		}
	}
	return missing
}
