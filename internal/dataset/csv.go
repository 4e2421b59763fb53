package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
)

var barHeader = []string{"date", "open", "high", "low", "close", "volume"}

// WriteBars writes bars as CSV with a header row.
func WriteBars(w io.Writer, bars []Bar) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(barHeader); err != nil {
		return fmt.Errorf("write bar header: %w", err)
	}
	for _, b := range bars {
		row := []string{
			b.Date,
			formatFloat(b.Open),
			formatFloat(b.High),
			formatFloat(b.Low),
			formatFloat(b.Close),
			formatFloat(b.Volume),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write bar row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadBars reads a CSV bar frame produced by WriteBars.
func ReadBars(r io.Reader) ([]Bar, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read bar header: %w", err)
	}
	if len(header) != len(barHeader) {
		return nil, fmt.Errorf("unexpected bar header: %v", header)
	}

	var bars []Bar
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read bar row: %w", err)
		}

		b := Bar{Date: row[0]}
		fields := []struct {
			dst *float64
			raw string
		}{
			{&b.Open, row[1]}, {&b.High, row[2]}, {&b.Low, row[3]},
			{&b.Close, row[4]}, {&b.Volume, row[5]},
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f.raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse %q: %w", line, f.raw, err)
			}
			*f.dst = v
		}
		bars = append(bars, b)
	}

	return bars, nil
}

// SaveBars writes bars to path, creating parent directories.
func SaveBars(path string, bars []Bar) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	if err := WriteBars(f, bars); err != nil {
		return err
	}
	return f.Close()
}

// LoadBars reads bars from path.
func LoadBars(path string) ([]Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	return ReadBars(f)
}

// WriteFrame writes a feature frame as CSV: date column first, then the
// frame's columns.
func WriteFrame(w io.Writer, frame *Frame) error {
	cw := csv.NewWriter(w)

	header := append([]string{"date"}, frame.Columns...)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write frame header: %w", err)
	}

	for i, row := range frame.Rows {
		out := make([]string, 0, len(row)+1)
		out = append(out, frame.Dates[i])
		for _, v := range row {
			out = append(out, formatFloat(v))
		}
		if err := cw.Write(out); err != nil {
			return fmt.Errorf("write frame row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadFrame reads a feature frame produced by WriteFrame.
func ReadFrame(r io.Reader) (*Frame, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read frame header: %w", err)
	}
	if len(header) < 2 || header[0] != "date" {
		return nil, fmt.Errorf("unexpected frame header: %v", header)
	}

	frame := &Frame{Columns: header[1:]}
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame row: %w", err)
		}

		values := make([]float64, len(row)-1)
		for i, raw := range row[1:] {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: parse %q: %w", line, raw, err)
			}
			values[i] = v
		}
		frame.Dates = append(frame.Dates, row[0])
		frame.Rows = append(frame.Rows, values)
	}

	return frame, nil
}

// SaveFrame writes a frame to path, creating parent directories.
func SaveFrame(path string, frame *Frame) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create dataset dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dataset file: %w", err)
	}
	defer f.Close()

	if err := WriteFrame(f, frame); err != nil {
		return err
	}
	return f.Close()
}

// LoadFrame reads a frame from path.
func LoadFrame(path string) (*Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset file: %w", err)
	}
	defer f.Close()

	return ReadFrame(f)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
