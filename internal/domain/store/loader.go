// Package store persists canonical transaction records with natural-key
// deduplication and owns the schema migrations.
package store

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/FACorreiaa/statement-etl/internal/domain/transaction"
)

// querier is the slice of pgx the loader needs; pgxpool.Pool and pgxmock
// both satisfy it.
type querier interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

const upsertSQL = `INSERT INTO transactions
	(transaction_date, description, amount, category, subcategory, bank_account, source_file, processed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (transaction_date, description, bank_account) DO NOTHING`

// Loader writes records in batches. Re-running a file is safe: rows whose
// natural key already exists are silently skipped by the database.
type Loader struct {
	db     querier
	logger *slog.Logger
}

// NewLoader creates a loader over a pgx-compatible connection.
func NewLoader(db querier, logger *slog.Logger) *Loader {
	return &Loader{db: db, logger: logger}
}

// Upsert inserts the records in one batch and reports how many rows were
// actually new. An empty input is a no-op.
func (l *Loader) Upsert(ctx context.Context, records []transaction.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, rec := range records {
		batch.Queue(upsertSQL,
			rec.TransactionDate,
			rec.Description,
			rec.Amount,
			rec.Category,
			rec.Subcategory,
			rec.BankAccount,
			rec.SourceFile,
			rec.ProcessedAt,
		)
	}

	results := l.db.SendBatch(ctx, batch)
	defer results.Close()

	inserted := 0
	for range records {
		tag, err := results.Exec()
		if err != nil {
			return inserted, fmt.Errorf("inserting transaction batch: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}

	l.logger.Info("persisted transaction batch",
		"submitted", len(records),
		"inserted", inserted,
		"deduplicated", len(records)-inserted,
	)
	return inserted, nil
}
