// Package transaction defines the canonical, format-independent representation
// of one financial transaction shared by every parser and the loader.
package transaction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// DefaultCategory is assigned when classification yields no usable label.
const DefaultCategory = "Uncategorized"

// Record is one normalized transaction. Amount sign convention: debits/spend
// are positive, credits/refunds are negative; parsers normalize their source's
// convention into this single signed field.
type Record struct {
	TransactionDate time.Time
	Description     string
	Amount          decimal.Decimal
	Category        string
	Subcategory     string
	BankAccount     string
	SourceFile      string
	ProcessedAt     time.Time
}

// NaturalKey returns the tuple that identifies a transaction for dedup
// purposes. Two ingestions of the same statement produce identical keys even
// though their SourceFile provenance strings differ.
func (r Record) NaturalKey() string {
	return fmt.Sprintf("%s|%s|%s", r.TransactionDate.Format("2006-01-02"), r.Description, r.BankAccount)
}

// Classified returns a copy of the record with category and subcategory set.
// Records are value types; the original is left untouched.
func (r Record) Classified(category, subcategory string) Record {
	if category == "" {
		category = DefaultCategory
	}
	if subcategory == "" {
		subcategory = DefaultCategory
	}
	r.Category = category
	r.Subcategory = subcategory
	return r
}

// SourceLabel builds the provenance string for a file ingested at ts. The
// timestamp prefix guarantees distinct provenance per run while the natural
// key keeps dedup stable across runs.
func SourceLabel(ts time.Time, name string) string {
	return fmt.Sprintf("%s_%s", ts.Format("20060102_150405"), name)
}
