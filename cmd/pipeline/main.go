// Package main runs the full prediction pipeline for one symbol:
// fetch → inspect → clean → features → train → predict → analyze →
// monitor → combine reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"stock-prediction-lab/internal/app"
	"stock-prediction-lab/internal/artifact"
	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/ledger"
	"stock-prediction-lab/internal/marketdata"
	"stock-prediction-lab/internal/monitor"
	"stock-prediction-lab/internal/observability"
	"stock-prediction-lab/internal/pipeline"
	"stock-prediction-lab/internal/registry"
	"stock-prediction-lab/internal/train"
	"stock-prediction-lab/pkg/config"
	"stock-prediction-lab/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	stub := flag.Bool("stub", false, "Use the deterministic offline data provider")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(1)
	}
	symbol := flag.Arg(0)

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

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Warn().Str("signal", sig.String()).Msg("cancelling run")
		cancel()
	}()

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open storage")
		os.Exit(1)
	}
	defer stores.Close()

	market, err := buildMarket(cfg, *stub, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to build market data client")
		os.Exit(1)
	}

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		metrics = observability.NewMetrics("")
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			if err := http.ListenAndServe(cfg.Metrics.Addr, mux); err != nil {
				log.Error().Err(err).Msg("metrics server stopped")
			}
		}()
	}

	runner := pipeline.New(pipeline.Options{
		Ledger:   ledger.New(stores.Fetches, stores.Current),
		Registry: registry.New(stores.Models),
		Monitor: monitor.New(stores.Summaries, stores.Alerts, monitor.Config{
			MinR2:        cfg.Monitor.MinR2,
			RelTolerance: cfg.Monitor.RelTolerance,
		}),
		Alerts:         stores.Alerts,
		Market:         market,
		Trainer:        &train.LinearTrainer{TestSize: cfg.Train.TestSize},
		Artifact:       artifact.NewStore(artifact.NewLayout(cfg.DataDir)),
		PrimaryVariant: domain.Variant(cfg.Monitor.Variant),
		Logger:         log,
		Metrics:        metrics,
	})

	result, err := runner.Run(ctx, symbol)
	if err != nil {
		log.Error().Err(err).Str("fetch_id", result.FetchID).Msg("run failed")
		os.Exit(1)
	}

	fmt.Printf("Run complete: %s\n", result.FetchID)
	for _, id := range result.ModelIDs {
		fmt.Printf("  model: %s\n", id)
	}
	if result.Degraded {
		fmt.Println("  performance: DEGRADED (alert raised)")
	}
	fmt.Printf("  forecast: %s\n", result.ForecastPath)
	fmt.Printf("  report: %s\n", result.ReportPath)
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

func buildMarket(cfg *config.Config, stub bool, log zerolog.Logger) (marketdata.Client, error) {
	if stub {
		return &marketdata.Stub{}, nil
	}
	return marketdata.NewAlphaVantage(marketdata.AlphaVantageConfig{
		APIKey:     cfg.AlphaVantage.APIKey,
		BaseURL:    cfg.AlphaVantage.BaseURL,
		DaysBack:   cfg.AlphaVantage.DaysBack,
		OutputSize: cfg.AlphaVantage.OutputSize,
		Timeout:    cfg.AlphaVantage.Timeout,
	}, log)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] SYMBOL\n\nRuns the prediction pipeline for one stock symbol.\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}
