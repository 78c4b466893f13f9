package transaction

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestClassifiedDefaultsEmptyLabels(t *testing.T) {
	rec := Record{Description: "NTUC FAIRPRICE"}

	classified := rec.Classified("", "")
	assert.Equal(t, DefaultCategory, classified.Category)
	assert.Equal(t, DefaultCategory, classified.Subcategory)
	// The receiver is a value; the original stays untouched.
	assert.Empty(t, rec.Category)

	labeled := rec.Classified("Groceries", "Groceries")
	assert.Equal(t, "Groceries", labeled.Category)
}

func TestNaturalKeyIgnoresProvenance(t *testing.T) {
	base := Record{
		TransactionDate: time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC),
		Description:     "NTUC FAIRPRICE SG",
		Amount:          decimal.RequireFromString("45.67"),
		BankAccount:     "UOB",
		SourceFile:      "20240201_120000_first",
	}
	reingested := base
	reingested.SourceFile = "20240301_090000_second"
	reingested.ProcessedAt = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	assert.Equal(t, base.NaturalKey(), reingested.NaturalKey())

	other := base
	other.BankAccount = "Standard Chartered"
	assert.NotEqual(t, base.NaturalKey(), other.NaturalKey())
}

func TestSourceLabel(t *testing.T) {
	ts := time.Date(2024, 2, 1, 12, 30, 45, 0, time.UTC)
	assert.Equal(t, "20240201_123045_statement", SourceLabel(ts, "statement"))
}
