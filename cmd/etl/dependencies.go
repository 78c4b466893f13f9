package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/FACorreiaa/statement-etl/internal/domain/classify"
	"github.com/FACorreiaa/statement-etl/internal/domain/etl"
	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/reader"
	"github.com/FACorreiaa/statement-etl/internal/domain/store"
	"github.com/FACorreiaa/statement-etl/pkg/config"
	"github.com/FACorreiaa/statement-etl/pkg/db"
	"github.com/FACorreiaa/statement-etl/pkg/metrics"
)

// Dependencies wires the application graph once at startup.
type Dependencies struct {
	Config       *config.Config
	DB           *db.DB
	Orchestrator *etl.Orchestrator
}

// InitDependencies connects to the database, ensures the schema, and builds
// the pipeline with its classifier and loader.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	database, err := db.New(ctx, db.Config{DSN: cfg.Database.DSN()})
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := store.EnsureSchema(ctx, database.Pool); err != nil {
		database.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	loader := store.NewLoader(database.Pool, logger)

	var completer classify.Completer
	if cfg.Classifier.APIKey != "" {
		gemini, err := classify.NewGeminiClient(ctx, cfg.Classifier.APIKey, cfg.Classifier.Model)
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("creating classifier client: %w", err)
		}
		completer = gemini
	} else {
		logger.Warn("no classifier api key configured, all transactions will be uncategorized")
	}

	engine := classify.NewEngine(completer, logger).
		WithWorkers(cfg.Classifier.Workers).
		WithTimeout(cfg.Classifier.RequestTimeout).
		WithRateLimit(cfg.Classifier.RequestsPerSecond, cfg.Classifier.Workers)

	orchestrator := etl.New(
		reader.New(logger),
		engine,
		loader,
		metrics.New(nil),
		logger,
		cfg.Dirs,
		cfg.Pipeline,
	)

	return &Dependencies{
		Config:       cfg,
		DB:           database,
		Orchestrator: orchestrator,
	}, nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
