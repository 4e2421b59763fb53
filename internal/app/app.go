// Package app wires configuration into concrete stores and collaborators
// for the command-line entry points.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rs/zerolog"

	"stock-prediction-lab/internal/storage"
	"stock-prediction-lab/internal/storage/clickhouse"
	"stock-prediction-lab/internal/storage/jsonl"
	"stock-prediction-lab/internal/storage/memory"
	"stock-prediction-lab/internal/storage/migrations"
	"stock-prediction-lab/internal/storage/postgres"
	"stock-prediction-lab/pkg/config"
)

// Stores bundles every persistence interface the pipeline needs.
type Stores struct {
	Fetches   storage.FetchStore
	Current   storage.CurrentFetchStore
	Models    storage.ModelStore
	Summaries storage.SummaryStore
	Alerts    storage.AlertStore

	closers []func()
}

// Close releases backend connections.
func (s *Stores) Close() {
	for _, c := range s.closers {
		c()
	}
}

// OpenStores builds the configured storage backend. With a ClickHouse DSN
// configured, performance summaries are additionally mirrored there for
// analytics.
func OpenStores(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Stores, error) {
	var s *Stores
	var err error

	switch cfg.Storage.Backend {
	case "memory":
		s = &Stores{
			Fetches:   memory.NewFetchStore(),
			Current:   memory.NewCurrentFetchStore(),
			Models:    memory.NewModelStore(),
			Summaries: memory.NewSummaryStore(),
			Alerts:    memory.NewAlertStore(),
		}
	case "jsonl":
		s, err = openJSONL(cfg)
	case "postgres":
		s, err = openPostgres(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Storage.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		s.closers = append(s.closers, func() { conn.Close() })
		s.Summaries = storage.NewTeeSummaryStore(s.Summaries, clickhouse.NewSummaryStore(conn), log)
	}

	return s, nil
}

func openJSONL(cfg *config.Config) (*Stores, error) {
	dir := cfg.Storage.Dir
	if !filepath.IsAbs(dir) {
		dir = filepath.Join(cfg.DataDir, dir)
	}
	return &Stores{
		Fetches:   jsonl.NewFetchStore(filepath.Join(dir, "fetch_history.jsonl")),
		Current:   jsonl.NewCurrentFetchStore(filepath.Join(dir, "current_fetch.json")),
		Models:    jsonl.NewModelStore(filepath.Join(dir, "models_history.jsonl")),
		Summaries: jsonl.NewSummaryStore(filepath.Join(dir, "performance_history.jsonl")),
		Alerts:    jsonl.NewAlertStore(filepath.Join(dir, "alerts.jsonl")),
	}, nil
}

func openPostgres(ctx context.Context, cfg *config.Config) (*Stores, error) {
	if cfg.Storage.PostgresDSN == "" {
		return nil, fmt.Errorf("postgres backend requires a dsn")
	}

	pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres migrations: %w", err)
	}

	return &Stores{
		Fetches:   postgres.NewFetchStore(pool),
		Current:   postgres.NewCurrentFetchStore(pool),
		Models:    postgres.NewModelStore(pool),
		Summaries: postgres.NewSummaryStore(pool),
		Alerts:    postgres.NewAlertStore(pool),
		closers:   []func(){pool.Close},
	}, nil
}
