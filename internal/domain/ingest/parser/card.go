package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/detect"
	"github.com/FACorreiaa/statement-etl/internal/domain/transaction"
)

const cardDateFormat = "02/01/2006"

// parseDelimitedCard handles comma-delimited card exports. Lines carry 4 or 5
// fields; the 5th is a leftover column that holds the SGD equivalent when the
// transaction was made in a foreign currency. Rows whose amount or date fail
// coercion are dropped, not defaulted.
func parseDelimitedCard(d detect.Detection, account, filename string, now time.Time) ([]transaction.Record, error) {
	source := sourceLabel(d, filename, now)

	var records []transaction.Record
	for _, line := range d.Lines {
		parts := splitFields(line)
		if len(parts) < 4 {
			continue
		}

		foreign := parts[2]
		primary, primaryOK := cleanAmount(parts[3])
		var secondary decimal.Decimal
		secondaryOK := false
		if len(parts) > 4 {
			secondary, secondaryOK = cleanAmount(parts[4])
		}

		// Foreign-currency rows report the SGD equivalent in the trailing
		// column; prefer it, fall back to the primary field. This mirrors the
		// source's own column layout, not a currency-aware rule.
		amount := primary
		ok := primaryOK
		if foreign != "" && secondaryOK {
			amount = secondary
			ok = true
		}
		if !ok {
			continue
		}

		date, err := time.Parse(cardDateFormat, stripToDateChars(parts[0]))
		if err != nil {
			continue
		}

		desc := squashSpaces(parts[1])
		if desc == "" {
			continue
		}

		records = append(records, transaction.Record{
			TransactionDate: date,
			Description:     desc,
			Amount:          amount,
			BankAccount:     account,
			SourceFile:      source,
			ProcessedAt:     now,
		})
	}

	if len(records) == 0 {
		return nil, ErrNoValidRows
	}
	return records, nil
}

func splitFields(line string) []string {
	raw := strings.Split(line, ",")
	parts := make([]string, len(raw))
	for i, p := range raw {
		parts[i] = squashSpaces(p)
	}
	return parts
}
