// Package main rebuilds the combined final report for the current fetch
// from the artifacts a previous pipeline run left on disk.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"stock-prediction-lab/internal/app"
	"stock-prediction-lab/internal/artifact"
	"stock-prediction-lab/internal/ledger"
	"stock-prediction-lab/internal/registry"
	"stock-prediction-lab/internal/report"
	"stock-prediction-lab/internal/storage"
	"stock-prediction-lab/pkg/config"
	"stock-prediction-lab/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	flag.Usage = usage
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open storage")
		os.Exit(1)
	}
	defer stores.Close()

	led := ledger.New(stores.Fetches, stores.Current)
	fetch, err := led.CurrentFetch(ctx)
	if err != nil {
		if errors.Is(err, ledger.ErrNoCurrentFetch) {
			log.Error().Msg("no current fetch; run the pipeline first")
		} else {
			log.Error().Err(err).Msg("current fetch lookup failed")
		}
		os.Exit(1)
	}

	store := artifact.NewStore(artifact.NewLayout(cfg.DataDir))
	sections, err := collectSections(ctx, stores, store, fetch.Symbol, fetch.FetchID)
	if err != nil {
		log.Error().Err(err).Str("fetch_id", fetch.FetchID).Msg("failed to collect report sections")
		os.Exit(1)
	}

	body := report.RenderFinal(&report.Final{
		Symbol:      fetch.Symbol,
		FetchID:     fetch.FetchID,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Sections:    sections,
	})

	path := store.Layout().FinalReport(fetch.Symbol, fetch.FetchID)
	if err := store.Write(path, []byte(body)); err != nil {
		log.Error().Err(err).Msg("failed to write final report")
		os.Exit(1)
	}

	fmt.Printf("Report written: %s\n", path)
}

// collectSections gathers the inspection report, every model analysis for
// the fetch, and the latest monitoring verdict. Missing artifacts are
// skipped rather than failing the rebuild; a fetch that never reached a
// stage simply has no section for it.
func collectSections(ctx context.Context, stores *app.Stores, store *artifact.Store, symbol, fetchID string) ([]report.Section, error) {
	var sections []report.Section

	if body, err := store.Read(store.Layout().InspectionReport(symbol, fetchID)); err == nil {
		sections = append(sections, report.Section{Title: "Data Inspection", Body: string(body)})
	}

	reg := registry.New(stores.Models)
	models, err := reg.ModelsForFetch(ctx, fetchID)
	if err != nil {
		return nil, fmt.Errorf("list models for fetch: %w", err)
	}
	for _, m := range models {
		body, err := store.Read(store.Layout().AnalysisReport(m.ModelID))
		if err != nil {
			continue
		}
		sections = append(sections, report.Section{
			Title: fmt.Sprintf("Model Analysis (%s)", m.Variant),
			Body:  string(body),
		})
	}

	summary, err := stores.Summaries.LatestBySymbol(ctx, symbol)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("load latest summary: %w", err)
	}
	if summary != nil && summary.FetchID == fetchID {
		sections = append(sections, report.Section{
			Title: "Performance Monitoring",
			Body:  report.RenderMonitoring(summary),
		})
	}

	if len(sections) == 0 {
		return nil, fmt.Errorf("no artifacts found for fetch %s", fetchID)
	}
	return sections, nil
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\nRebuilds the combined report for the current fetch from stored artifacts.\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}
