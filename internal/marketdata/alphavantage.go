package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"stock-prediction-lab/internal/dataset"
)

const (
	defaultBaseURL    = "https://www.alphavantage.co/query"
	defaultDaysBack   = 365
	defaultOutputSize = "full"
)

// AlphaVantageConfig configures the Alpha Vantage client.
type AlphaVantageConfig struct {
	APIKey     string
	BaseURL    string
	DaysBack   int
	OutputSize string
	Timeout    time.Duration
}

// AlphaVantage fetches daily bars from the Alpha Vantage TIME_SERIES_DAILY
// endpoint and trims the series to the trailing DaysBack window.
type AlphaVantage struct {
	cfg    AlphaVantageConfig
	client *http.Client
	log    zerolog.Logger

	now func() time.Time
}

// Compile-time interface check.
var _ Client = (*AlphaVantage)(nil)

// NewAlphaVantage creates a client. Zero-value config fields fall back to
// defaults; only APIKey is required.
func NewAlphaVantage(cfg AlphaVantageConfig, log zerolog.Logger) (*AlphaVantage, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("alpha vantage api key required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.DaysBack <= 0 {
		cfg.DaysBack = defaultDaysBack
	}
	if cfg.OutputSize == "" {
		cfg.OutputSize = defaultOutputSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &AlphaVantage{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
		log:    log.With().Str("component", "alphavantage").Logger(),
		now:    time.Now,
	}, nil
}

// dailyResponse mirrors the provider's envelope. Exactly one of the fields
// is populated per response.
type dailyResponse struct {
	Series       map[string]dailyBar `json:"Time Series (Daily)"`
	Note         string              `json:"Note"`
	Information  string              `json:"Information"`
	ErrorMessage string              `json:"Error Message"`
}

type dailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// FetchDaily retrieves the trailing window of daily bars, oldest first.
func (a *AlphaVantage) FetchDaily(ctx context.Context, symbol string) ([]dataset.Bar, error) {
	q := url.Values{}
	q.Set("function", "TIME_SERIES_DAILY")
	q.Set("symbol", symbol)
	q.Set("outputsize", a.cfg.OutputSize)
	q.Set("apikey", a.cfg.APIKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	a.log.Debug().Str("symbol", symbol).Msg("fetching daily series")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request daily series: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("provider returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	var parsed dailyResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	// The provider signals throttling and bad symbols with 200 responses.
	if parsed.Note != "" || parsed.Information != "" {
		return nil, ErrRateLimited
	}
	if parsed.ErrorMessage != "" {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSymbol, symbol)
	}
	if len(parsed.Series) == 0 {
		return nil, ErrNoData
	}

	cutoff := a.now().UTC().AddDate(0, 0, -a.cfg.DaysBack).Format(dataset.DateLayout)

	bars := make([]dataset.Bar, 0, len(parsed.Series))
	for date, raw := range parsed.Series {
		if date < cutoff {
			continue
		}
		bar, err := rawToBar(date, raw)
		if err != nil {
			return nil, err
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, ErrNoData
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date < bars[j].Date })

	a.log.Info().Str("symbol", symbol).Int("bars", len(bars)).Msg("fetched daily series")
	return bars, nil
}

func rawToBar(date string, raw dailyBar) (dataset.Bar, error) {
	b := dataset.Bar{Date: date}
	fields := []struct {
		dst *float64
		raw string
	}{
		{&b.Open, raw.Open}, {&b.High, raw.High}, {&b.Low, raw.Low},
		{&b.Close, raw.Close}, {&b.Volume, raw.Volume},
	}
	for _, f := range fields {
		v, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return dataset.Bar{}, fmt.Errorf("bar %s: parse %q: %w", date, f.raw, err)
		}
		*f.dst = v
	}
	return b, nil
}
