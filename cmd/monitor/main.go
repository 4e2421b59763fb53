// Package main re-evaluates the latest registered model for a symbol
// against its performance history without running the pipeline.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"stock-prediction-lab/internal/app"
	"stock-prediction-lab/internal/domain"
	"stock-prediction-lab/internal/monitor"
	"stock-prediction-lab/internal/registry"
	"stock-prediction-lab/internal/report"
	"stock-prediction-lab/pkg/config"
	"stock-prediction-lab/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "Path to YAML config (optional)")
	variant := flag.String("variant", "", "Model variant to evaluate (defaults to the configured one)")
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

	ctx := context.Background()

	stores, err := app.OpenStores(ctx, cfg, log)
	if err != nil {
		log.Error().Err(err).Msg("failed to open storage")
		os.Exit(1)
	}
	defer stores.Close()

	v := domain.Variant(cfg.Monitor.Variant)
	if *variant != "" {
		v = domain.Variant(*variant)
	}

	reg := registry.New(stores.Models)
	model, err := reg.LatestModel(ctx, symbol, v)
	if err != nil {
		if errors.Is(err, registry.ErrNoModel) {
			log.Error().Str("symbol", symbol).Str("variant", string(v)).Msg("no model registered")
		} else {
			log.Error().Err(err).Msg("model lookup failed")
		}
		os.Exit(1)
	}

	mon := monitor.New(stores.Summaries, stores.Alerts, monitor.Config{
		MinR2:        cfg.Monitor.MinR2,
		RelTolerance: cfg.Monitor.RelTolerance,
	})
	summary, err := mon.Evaluate(ctx, model)
	if err != nil {
		log.Error().Err(err).Str("model_id", model.ModelID).Msg("evaluation failed")
		os.Exit(1)
	}

	fmt.Print(report.RenderMonitoring(summary))
	if summary.Degraded {
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default()
	}
	return config.Load(path)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [flags] SYMBOL\n\nEvaluates the latest model for a symbol and prints the verdict.\nExits non-zero when the model is degraded.\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}
