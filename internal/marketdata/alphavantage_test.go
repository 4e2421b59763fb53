package marketdata

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *AlphaVantage {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewAlphaVantage(AlphaVantageConfig{
		APIKey:   "test-key",
		BaseURL:  server.URL,
		DaysBack: 365,
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewAlphaVantage: %v", err)
	}
	client.now = func() time.Time { return time.Date(2025, 7, 30, 10, 0, 0, 0, time.UTC) }
	return client
}

func TestFetchDailyParsesAndSorts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("function"); got != "TIME_SERIES_DAILY" {
			t.Errorf("function = %q", got)
		}
		if got := r.URL.Query().Get("symbol"); got != "TSLA" {
			t.Errorf("symbol = %q", got)
		}
		w.Write([]byte(`{
			"Time Series (Daily)": {
				"2025-07-29": {"1. open": "325.10", "2. high": "330.00", "3. low": "323.00", "4. close": "328.50", "5. volume": "80123400"},
				"2025-07-28": {"1. open": "321.00", "2. high": "326.40", "3. low": "319.90", "4. close": "325.30", "5. volume": "77455100"},
				"2023-01-03": {"1. open": "118.47", "2. high": "118.80", "3. low": "104.64", "4. close": "108.10", "5. volume": "231402800"}
			}
		}`))
	})

	bars, err := client.FetchDaily(context.Background(), "TSLA")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}

	// The 2023 bar falls outside the trailing window.
	if len(bars) != 2 {
		t.Fatalf("len(bars) = %d, want 2", len(bars))
	}
	if bars[0].Date != "2025-07-28" || bars[1].Date != "2025-07-29" {
		t.Errorf("dates = %q, %q, want oldest first", bars[0].Date, bars[1].Date)
	}
	if bars[1].Close != 328.50 {
		t.Errorf("close = %v", bars[1].Close)
	}
}

func TestFetchDailyRateLimitNote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	})

	_, err := client.FetchDaily(context.Background(), "TSLA")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("err = %v, want ErrRateLimited", err)
	}
}

func TestFetchDailyUnknownSymbol(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	})

	_, err := client.FetchDaily(context.Background(), "NOPE")
	if !errors.Is(err, ErrUnknownSymbol) {
		t.Errorf("err = %v, want ErrUnknownSymbol", err)
	}
}

func TestFetchDailyEmptySeries(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Time Series (Daily)": {}}`))
	})

	_, err := client.FetchDaily(context.Background(), "TSLA")
	if !errors.Is(err, ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestFetchDailyServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := client.FetchDaily(context.Background(), "TSLA"); err == nil {
		t.Error("expected error for non-200 status")
	}
}

func TestStubDeterministic(t *testing.T) {
	stub := &Stub{Days: 30}

	a, err := stub.FetchDaily(context.Background(), "tsla")
	if err != nil {
		t.Fatalf("FetchDaily: %v", err)
	}
	b, _ := stub.FetchDaily(context.Background(), "tsla")

	if len(a) != 30 {
		t.Fatalf("len = %d, want 30", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("bar %d differs between runs", i)
		}
	}
	if a[0].Date >= a[len(a)-1].Date {
		t.Error("bars not oldest first")
	}
}
