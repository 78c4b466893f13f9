// Package etl drives the batch pipeline: scan the inbox, run each statement
// file through read, detect, parse, classify and load, then archive it.
package etl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/FACorreiaa/statement-etl/internal/domain/classify"
	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/detect"
	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/parser"
	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/reader"
	"github.com/FACorreiaa/statement-etl/internal/domain/transaction"
	"github.com/FACorreiaa/statement-etl/pkg/config"
	"github.com/FACorreiaa/statement-etl/pkg/metrics"
)

// Classifier labels a batch of descriptions, positionally aligned.
type Classifier interface {
	Classify(ctx context.Context, descriptions []string) []classify.Label
}

// Loader persists records and reports how many were new.
type Loader interface {
	Upsert(ctx context.Context, records []transaction.Record) (int, error)
}

// Statuses of a per-file outcome.
const (
	StatusProcessed   = "processed"
	StatusQuarantined = "quarantined"
)

// FileOutcome is the per-file result of one pipeline run.
type FileOutcome struct {
	RunID        uuid.UUID
	File         string
	Status       string
	Reason       string
	Format       string
	Transactions int
}

// Summary aggregates a whole run.
type Summary struct {
	RunID     uuid.UUID
	Processed int
	Failed    int
	Records   int
	Outcomes  []FileOutcome
}

// Orchestrator owns one run of the pipeline. Files are independent: each gets
// its own goroutine, and one file's failure never blocks another.
type Orchestrator struct {
	reader        *reader.StatementReader
	classifier    Classifier
	loader        Loader
	metrics       *metrics.Metrics
	logger        *slog.Logger
	dirs          config.DirsConfig
	retries       uint64
	retryInterval time.Duration
	now           func() time.Time
}

// New builds an orchestrator. The retry count applies per file on top of the
// first attempt and only to non-terminal failures.
func New(
	r *reader.StatementReader,
	classifier Classifier,
	loader Loader,
	m *metrics.Metrics,
	logger *slog.Logger,
	dirs config.DirsConfig,
	pipeline config.PipelineConfig,
) *Orchestrator {
	return &Orchestrator{
		reader:        r,
		classifier:    classifier,
		loader:        loader,
		metrics:       m,
		logger:        logger,
		dirs:          dirs,
		retries:       uint64(pipeline.FileRetries),
		retryInterval: pipeline.RetryInterval,
		now:           time.Now,
	}
}

var statementExtensions = map[string]bool{
	".csv":  true,
	".xls":  true,
	".xlsx": true,
	".pdf":  true,
}

// Run processes every statement file currently in the inbox and returns the
// per-file outcomes. Every file ends in exactly one of the processed or
// error directories.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	runID := uuid.New()

	for _, dir := range []string{o.dirs.Processed, o.dirs.Error} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return Summary{}, fmt.Errorf("creating %s: %w", dir, err)
		}
	}

	files, err := o.scanInbox()
	if err != nil {
		return Summary{}, err
	}
	if len(files) == 0 {
		o.logger.Info("inbox empty, nothing to do", "run_id", runID, "inbox", o.dirs.Inbox)
		return Summary{RunID: runID}, nil
	}

	o.logger.Info("starting pipeline run", "run_id", runID, "files", len(files))

	outcomes := make([]FileOutcome, len(files))
	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func(i int, file string) {
			defer wg.Done()
			outcomes[i] = o.processFile(ctx, runID, file)
		}(i, file)
	}
	wg.Wait()

	summary := Summary{RunID: runID, Outcomes: outcomes}
	for _, out := range outcomes {
		if out.Status == StatusProcessed {
			summary.Processed++
			summary.Records += out.Transactions
		} else {
			summary.Failed++
		}
	}

	o.logger.Info("pipeline run finished",
		"run_id", runID,
		"processed", summary.Processed,
		"failed", summary.Failed,
		"records", summary.Records,
	)
	return summary, nil
}

func (o *Orchestrator) scanInbox() ([]string, error) {
	entries, err := os.ReadDir(o.dirs.Inbox)
	if err != nil {
		return nil, fmt.Errorf("scanning inbox %s: %w", o.dirs.Inbox, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if !statementExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, filepath.Join(o.dirs.Inbox, entry.Name()))
	}
	return files, nil
}

type fileResult struct {
	records []transaction.Record
	format  detect.FormatTag
}

// processFile runs one file through the pipeline with retries, then archives
// it. Terminal failures (unreadable, unknown format, no valid rows) are not
// retried; transient ones get a constant-interval retry budget.
func (o *Orchestrator) processFile(ctx context.Context, runID uuid.UUID, path string) FileOutcome {
	start := o.now()
	logger := o.logger.With("run_id", runID, "file", filepath.Base(path))

	var result fileResult
	operation := func() error {
		res, err := o.ingestAndLoad(ctx, path)
		// Keep the partial result: a failed attempt still knows the detected
		// format, which the outcome record reports.
		result = res
		if err != nil {
			if isTerminal(err) {
				return backoff.Permanent(err)
			}
			logger.Warn("attempt failed, will retry", "error", err)
			return err
		}
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(o.retryInterval), o.retries),
		ctx,
	)
	err := backoff.Retry(operation, policy)

	outcome := FileOutcome{RunID: runID, File: path, Format: result.format.String()}
	if err != nil {
		outcome.Status = StatusQuarantined
		outcome.Reason = failureReason(err)
		o.metrics.FileProcessed(StatusQuarantined)
		logger.Error("file quarantined", "reason", outcome.Reason, "error", err)
		if archiveErr := o.archiveError(path); archiveErr != nil {
			logger.Error("archiving quarantined file failed", "error", archiveErr)
		}
	} else {
		outcome.Status = StatusProcessed
		outcome.Transactions = len(result.records)
		o.metrics.FileProcessed(StatusProcessed)
		logger.Info("file processed", "format", outcome.Format, "transactions", outcome.Transactions)
		if archiveErr := o.archiveProcessed(path, result.records); archiveErr != nil {
			logger.Error("archiving processed file failed", "error", archiveErr)
		}
	}

	o.metrics.ObserveFileDuration(o.now().Sub(start))
	return outcome
}

// ingestAndLoad is one attempt: read, detect, parse, classify, persist.
func (o *Orchestrator) ingestAndLoad(ctx context.Context, path string) (fileResult, error) {
	now := o.now()

	art, err := o.readArtifact(path)
	if err != nil {
		return fileResult{}, err
	}

	detection := detect.Detect(art)
	if detection.Tag == detect.TagUnknown {
		return fileResult{}, parser.ErrUnsupportedFormat
	}

	records, err := parser.Parse(detection, filepath.Base(path), now)
	if err != nil {
		return fileResult{format: detection.Tag}, err
	}

	descriptions := make([]string, len(records))
	for i, rec := range records {
		descriptions[i] = rec.Description
	}
	labels := o.classifier.Classify(ctx, descriptions)
	for i := range records {
		records[i] = records[i].Classified(labels[i].Category, labels[i].Subcategory)
		if labels[i] == classify.Uncategorized {
			o.metrics.ClassificationFallback()
		}
	}

	inserted, err := o.loader.Upsert(ctx, records)
	if err != nil {
		return fileResult{format: detection.Tag}, err
	}
	o.metrics.RecordsPersisted(inserted)

	return fileResult{records: records, format: detection.Tag}, nil
}

// readArtifact routes PDFs through page extraction; everything else goes
// through the decoding ladder. For PDFs each Lines element is one page, so
// the extractor sees real page boundaries.
func (o *Orchestrator) readArtifact(path string) (*reader.RawArtifact, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		pages, err := o.reader.ReadPDFPages(path)
		if err != nil {
			return nil, err
		}
		return &reader.RawArtifact{Kind: reader.KindText, Lines: pages}, nil
	}
	return o.reader.Read(path)
}

func isTerminal(err error) bool {
	return errors.Is(err, reader.ErrUnreadableFile) ||
		errors.Is(err, parser.ErrUnsupportedFormat) ||
		errors.Is(err, parser.ErrHeaderNotFound) ||
		errors.Is(err, parser.ErrNoValidRows)
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, parser.ErrUnsupportedFormat):
		return "Unknown bank format"
	case errors.Is(err, reader.ErrUnreadableFile):
		return "Unreadable file"
	case errors.Is(err, parser.ErrHeaderNotFound):
		return "Header row not found"
	case errors.Is(err, parser.ErrNoValidRows):
		return "No valid transaction rows"
	default:
		return err.Error()
	}
}
