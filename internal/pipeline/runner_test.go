package pipeline

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stock-prediction-lab/internal/artifact"
	"stock-prediction-lab/internal/dataset"
	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/ledger"
	"stock-prediction-lab/internal/marketdata"
	"stock-prediction-lab/internal/monitor"
	"stock-prediction-lab/internal/registry"
	"stock-prediction-lab/internal/storage/memory"
)

type testEnv struct {
	runner    *Runner
	ledger    *ledger.Ledger
	models    *memory.ModelStore
	summaries *memory.SummaryStore
	alerts    *memory.AlertStore
}

func newTestEnv(t *testing.T, market marketdata.Client) *testEnv {
	t.Helper()

	fetches := memory.NewFetchStore()
	current := memory.NewCurrentFetchStore()
	models := memory.NewModelStore()
	summaries := memory.NewSummaryStore()
	alerts := memory.NewAlertStore()

	led := ledger.New(fetches, current)
	runner := New(Options{
		Ledger:   led,
		Registry: registry.New(models),
		Monitor:  monitor.New(summaries, alerts, monitor.DefaultConfig()),
		Alerts:   alerts,
		Market:   market,
		Artifact: artifact.NewStore(artifact.NewLayout(t.TempDir())),
		Logger:   zerolog.Nop(),
	})

	return &testEnv{
		runner:    runner,
		ledger:    led,
		models:    models,
		summaries: summaries,
		alerts:    alerts,
	}
}

func TestRunSuccess(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &marketdata.Stub{Days: 120})

	result, err := env.runner.Run(ctx, "TSLA")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FinalState != StateComplete {
		t.Fatalf("FinalState = %s", result.FinalState)
	}

	// One complete fetch.
	fetch, err := env.ledger.CurrentFetch(ctx)
	if err != nil {
		t.Fatalf("CurrentFetch: %v", err)
	}
	if fetch.Status != domain.FetchComplete {
		t.Errorf("fetch status = %s", fetch.Status)
	}
	if fetch.RawDataPath == "" {
		t.Error("raw data path not recorded")
	}

	// Two models, one per variant.
	models, err := env.models.GetByFetchID(ctx, result.FetchID)
	if err != nil {
		t.Fatalf("GetByFetchID: %v", err)
	}
	if len(models) != 2 {
		t.Fatalf("models = %d, want 2", len(models))
	}
	variants := map[domain.Variant]bool{}
	for _, m := range models {
		variants[m.Variant] = true
		if _, err := os.Stat(m.ArtifactPath); err != nil {
			t.Errorf("model artifact missing: %v", err)
		}
	}
	if !variants[domain.VariantWithOutliers] || !variants[domain.VariantWithoutOutliers] {
		t.Errorf("variants = %v", variants)
	}

	// One performance summary, no alerts on a healthy cold start.
	summaries, _ := env.summaries.ScanForward(ctx)
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d, want 1", len(summaries))
	}
	if summaries[0].Degraded {
		t.Errorf("cold start degraded: %v", summaries[0].Reasons)
	}
	alerts, _ := env.alerts.ScanForward(ctx)
	if len(alerts) != 0 {
		t.Errorf("alerts = %d, want 0", len(alerts))
	}

	// Combined report exists.
	if _, err := os.Stat(result.ReportPath); err != nil {
		t.Errorf("final report missing: %v", err)
	}

	// Next-day forecast: one row per variant, predicted from the persisted
	// model artifacts, landing on a trading day after the series end.
	data, err := os.ReadFile(result.ForecastPath)
	if err != nil {
		t.Fatalf("forecast missing: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("forecast lines = %d, want header plus one row per variant", len(lines))
	}
	for _, line := range lines[1:] {
		fields := strings.Split(line, ",")
		future, err := time.Parse(dataset.DateLayout, fields[0])
		if err != nil {
			t.Fatalf("parse future_date %q: %v", fields[0], err)
		}
		basedOn, err := time.Parse(dataset.DateLayout, fields[3])
		if err != nil {
			t.Fatalf("parse based_on_date %q: %v", fields[3], err)
		}
		if !future.After(basedOn) {
			t.Errorf("future_date %s not after based_on_date %s", fields[0], fields[3])
		}
		if wd := future.Weekday(); wd == time.Saturday || wd == time.Sunday {
			t.Errorf("future_date %s falls on a %s", fields[0], wd)
		}
		if fields[4] != result.FetchID {
			t.Errorf("forecast fetch_id = %q, want %q", fields[4], result.FetchID)
		}
	}
	variantsSeen := lines[1] + lines[2]
	if !strings.Contains(variantsSeen, string(domain.VariantWithOutliers)) ||
		!strings.Contains(variantsSeen, string(domain.VariantWithoutOutliers)) {
		t.Errorf("forecast rows missing a variant: %q", variantsSeen)
	}
}

func TestRunFetchFailure(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &marketdata.Stub{Fail: marketdata.ErrRateLimited})

	result, err := env.runner.Run(ctx, "TSLA")
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, marketdata.ErrRateLimited) {
		t.Errorf("err = %v, want wrapped ErrRateLimited", err)
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StateFetching {
		t.Errorf("stage = %v, want fetching", err)
	}
	if result.FinalState != StateFailed {
		t.Errorf("FinalState = %s", result.FinalState)
	}

	// Ledger shows the failed fetch; nothing downstream exists.
	history, err := env.ledger.History(ctx)
	if err != nil {
		t.Fatalf("History: %v", err)
	}
	last := history[len(history)-1]
	if last.Status != domain.FetchFailed {
		t.Errorf("last status = %s, want failed", last.Status)
	}
	if last.FailReason == "" {
		t.Error("fail reason not recorded")
	}

	if _, err := env.ledger.CurrentFetch(ctx); !errors.Is(err, ledger.ErrNoCurrentFetch) {
		t.Errorf("CurrentFetch = %v, want ErrNoCurrentFetch", err)
	}

	models, _ := env.models.ScanReverse(ctx)
	if len(models) != 0 {
		t.Errorf("models = %d, want 0", len(models))
	}
	summaries, _ := env.summaries.ScanForward(ctx)
	if len(summaries) != 0 {
		t.Errorf("summaries = %d, want 0", len(summaries))
	}

	// Exactly one alert for the failure.
	alerts, _ := env.alerts.ScanForward(ctx)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].Kind != domain.AlertStageFailure {
		t.Errorf("alert kind = %s", alerts[0].Kind)
	}
	if alerts[0].Stage != string(StateFetching) {
		t.Errorf("alert stage = %s", alerts[0].Stage)
	}
}

func TestRunMidPipelineFailure(t *testing.T) {
	ctx := context.Background()
	// Too few bars to engineer features; fetch itself succeeds.
	env := newTestEnv(t, &marketdata.Stub{Days: 10})

	result, err := env.runner.Run(ctx, "TSLA")
	if err == nil {
		t.Fatal("expected error")
	}
	var stageErr *StageError
	if !errors.As(err, &stageErr) || stageErr.Stage != StateFeatureEngineering {
		t.Errorf("err = %v, want feature_engineering stage error", err)
	}
	if result.FinalState != StateFailed {
		t.Errorf("FinalState = %s", result.FinalState)
	}

	// The fetch completed before the failure and stays complete.
	fetch, err := env.ledger.CurrentFetch(ctx)
	if err != nil {
		t.Fatalf("CurrentFetch: %v", err)
	}
	if fetch.Status != domain.FetchComplete {
		t.Errorf("fetch status = %s", fetch.Status)
	}

	// Still exactly one alert.
	alerts, _ := env.alerts.ScanForward(ctx)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
}

func TestRunDegradationRaisesAlert(t *testing.T) {
	ctx := context.Background()
	env := newTestEnv(t, &marketdata.Stub{Days: 120})

	// A previous evaluation with implausibly good error magnitudes makes any
	// real model look worse beyond tolerance.
	err := env.summaries.Append(ctx, &domain.PerformanceSummary{
		FetchID:     "fetch_20250617_093553",
		ModelID:     "model_tsla_20250617_094500_without_outliers",
		Symbol:      "TSLA",
		Metrics:     domain.Metrics{RMSE: 1e-9, MAE: 1e-9, R2: 0.999},
		EvaluatedAt: 1750153000000,
	})
	if err != nil {
		t.Fatalf("seed summary: %v", err)
	}

	// Lower-case input must continue the TSLA trend, not start a fresh one.
	result, err := env.runner.Run(ctx, "tsla")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.FinalState != StateComplete {
		t.Fatalf("FinalState = %s", result.FinalState)
	}
	if result.Symbol != "TSLA" {
		t.Errorf("Symbol = %q, want canonical TSLA", result.Symbol)
	}
	if !result.Degraded {
		t.Error("Degraded = false, want true")
	}

	alerts, _ := env.alerts.ScanForward(ctx)
	if len(alerts) != 1 {
		t.Fatalf("alerts = %d, want 1", len(alerts))
	}
	if alerts[0].Kind != domain.AlertDegradation {
		t.Errorf("alert kind = %s", alerts[0].Kind)
	}
}
