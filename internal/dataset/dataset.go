// Package dataset defines the daily bar frame exchanged between pipeline
// stages and its CSV representation.
package dataset

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for bar dates.
const DateLayout = "2006-01-02"

// Bar is one daily OHLCV observation. Date uses DateLayout; ISO dates sort
// lexically, so string comparison is enough for ordering.
type Bar struct {
	Date   string
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// ParseDate returns the bar's date as a time.
func (b Bar) ParseDate() (time.Time, error) {
	t, err := time.Parse(DateLayout, b.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse bar date %q: %w", b.Date, err)
	}
	return t, nil
}

// Frame is a column-oriented numeric table keyed by date, used for
// engineered features. Every row has exactly len(Columns) values.
type Frame struct {
	Columns []string
	Dates   []string
	Rows    [][]float64
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Column returns the values of the named column.
func (f *Frame) Column(name string) ([]float64, error) {
	idx := -1
	for i, c := range f.Columns {
		if c == name {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("frame has no column %q", name)
	}

	out := make([]float64, len(f.Rows))
	for i, row := range f.Rows {
		out[i] = row[idx]
	}
	return out, nil
}
