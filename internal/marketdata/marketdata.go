// Package marketdata abstracts the daily bar provider behind a small client
// interface so the pipeline can run against Alpha Vantage or a deterministic
// stub.
package marketdata

import (
	"context"
	"errors"

	"stock-prediction-lab/internal/dataset"
)

var (
	// ErrRateLimited is returned when the provider throttles the request.
	ErrRateLimited = errors.New("provider rate limited")

	// ErrUnknownSymbol is returned when the provider rejects the symbol.
	ErrUnknownSymbol = errors.New("unknown symbol")

	// ErrNoData is returned when the provider answers with an empty series.
	ErrNoData = errors.New("no bars returned")
)

// Client fetches daily bars for a symbol, oldest first.
type Client interface {
	FetchDaily(ctx context.Context, symbol string) ([]dataset.Bar, error)
}
