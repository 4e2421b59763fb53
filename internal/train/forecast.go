package train

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"stock-prediction-lab/internal/dataset"
	"stock-prediction-lab/internal/domain"
)

// Forecast is one next-trading-day price prediction, derived from the last
// engineered feature row a fetch produced.
type Forecast struct {
	FutureDate     string
	PredictedClose float64
	Variant        domain.Variant
	BasedOnDate    string
	FetchID        string
	ModelID        string
}

// ForecastNextClose predicts the close of the next trading day from the
// frame's last feature row. The caller fills in the provenance fields.
func ForecastNextClose(m *Model, frame *dataset.Frame) (*Forecast, error) {
	k := len(m.Features)
	if len(frame.Columns) < k {
		return nil, fmt.Errorf("forecast: frame has %d columns, model needs %d features", len(frame.Columns), k)
	}
	for i, name := range m.Features {
		if frame.Columns[i] != name {
			return nil, fmt.Errorf("forecast: column %d is %q, model expects %q", i, frame.Columns[i], name)
		}
	}
	if frame.Len() == 0 {
		return nil, fmt.Errorf("forecast: empty frame")
	}

	basedOn := frame.Dates[frame.Len()-1]
	at, err := time.Parse(dataset.DateLayout, basedOn)
	if err != nil {
		return nil, fmt.Errorf("forecast: parse date %q: %w", basedOn, err)
	}

	last := frame.Rows[frame.Len()-1]
	return &Forecast{
		FutureDate:     NextTradingDay(at).Format(dataset.DateLayout),
		PredictedClose: m.Predict(last[:k]),
		BasedOnDate:    basedOn,
	}, nil
}

// NextTradingDay returns the next weekday after t. Exchange holidays are not
// modeled; a holiday forecast simply lands on the next session after it.
func NextTradingDay(t time.Time) time.Time {
	next := t.AddDate(0, 0, 1)
	for next.Weekday() == time.Saturday || next.Weekday() == time.Sunday {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

var forecastHeader = []string{"future_date", "predicted_next_close", "model_variant", "based_on_date", "fetch_id", "model_id"}

// WriteForecasts writes forecasts as CSV with a header row.
func WriteForecasts(w io.Writer, forecasts []*Forecast) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(forecastHeader); err != nil {
		return fmt.Errorf("write forecast header: %w", err)
	}
	for _, f := range forecasts {
		row := []string{
			f.FutureDate,
			strconv.FormatFloat(f.PredictedClose, 'f', -1, 64),
			string(f.Variant),
			f.BasedOnDate,
			f.FetchID,
			f.ModelID,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write forecast row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// SaveForecasts writes forecasts to path, creating parent directories.
func SaveForecasts(path string, forecasts []*Forecast) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create forecast dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create forecast file: %w", err)
	}
	defer f.Close()

	if err := WriteForecasts(f, forecasts); err != nil {
		return err
	}
	return f.Close()
}
