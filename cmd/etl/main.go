package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FACorreiaa/statement-etl/internal/domain/etl"
	"github.com/FACorreiaa/statement-etl/pkg/config"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	deps, err := InitDependencies(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	if cfg.Observability.MetricsEnabled {
		startMetricsServer(logger, cfg.Observability.MetricsPort)
	}

	summary, err := deps.Orchestrator.Run(ctx)
	if err != nil {
		return err
	}

	for _, out := range summary.Outcomes {
		if out.Status != etl.StatusProcessed {
			logger.Warn("quarantined", "file", out.File, "reason", out.Reason)
		}
	}
	logger.Info("done",
		"run_id", summary.RunID,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"records", summary.Records,
	)
	return nil
}

// startMetricsServer exposes /metrics for scrape-on-run setups. Errors are
// logged, not fatal: metrics are auxiliary to the pipeline.
func startMetricsServer(logger *slog.Logger, port int) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("metrics server stopped", "error", err)
		}
	}()
	logger.Info("metrics server listening", "port", port)
}
