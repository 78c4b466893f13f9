package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/detect"
)

func uobGrid() [][]string {
	return [][]string{
		{"United Overseas Bank Limited"},
		{"Account Number", "123-456-789-0"},
		{"Statement Period", "01 Mar 2024 to 31 Mar 2024"},
		{},
		{"Transaction Date", "Transaction Description", "Withdrawal", "Deposit", "Available Balance"},
		{"", "", "SGD", "SGD", "SGD"},
		{"01 Mar 2024", "GIRO PAYMENT  INSURANCE", "120.50", "", "1,879.50"},
		{"05 Mar 2024", "SALARY CREDIT", "", "5,000.00", "6,879.50"},
		{"06 Mar 2024", "", "10.00", "", "6,869.50"},
		{"31 Mar 2024", "BALANCE C/F", "", "", "6,869.50"},
	}
}

func TestParseUOBAccount(t *testing.T) {
	d := detect.Detection{Tag: detect.TagUOBAccount, Label: "United Overseas Bank Limited", Grid: uobGrid()}

	records, err := Parse(d, "export.xlsx", testNow)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), records[0].TransactionDate)
	assert.Equal(t, "GIRO PAYMENT INSURANCE", records[0].Description)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("120.50")))
	assert.Equal(t, "UOB", records[0].BankAccount)

	// Deposits land as negative amounts.
	assert.True(t, records[1].Amount.Equal(decimal.RequireFromString("-5000.00")))
}

func TestParseUOBAccountHeaderNotFound(t *testing.T) {
	d := detect.Detection{
		Tag: detect.TagUOBAccount,
		Grid: [][]string{
			{"United Overseas Bank Limited"},
			{"some", "other", "columns"},
			{"01 Mar 2024", "PAYMENT", "10.00"},
		},
	}

	_, err := Parse(d, "export.xlsx", testNow)
	require.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestParseUOBAccountHeaderBeyondScanWindow(t *testing.T) {
	grid := make([][]string, 0, 20)
	for i := 0; i < 16; i++ {
		grid = append(grid, []string{"United Overseas Bank Limited", "preamble"})
	}
	grid = append(grid,
		[]string{"Transaction Date", "Transaction Description", "Withdrawal", "Deposit", "Available Balance"},
		[]string{},
		[]string{"01 Mar 2024", "PAYMENT", "10.00", "", "90.00"},
	)

	_, err := Parse(detect.Detection{Tag: detect.TagUOBAccount, Grid: grid}, "export.xlsx", testNow)
	require.ErrorIs(t, err, ErrHeaderNotFound)
}

func TestParseUOBAccountNoDataRows(t *testing.T) {
	grid := uobGrid()[:6]

	_, err := Parse(detect.Detection{Tag: detect.TagUOBAccount, Grid: grid}, "export.xlsx", testNow)
	require.ErrorIs(t, err, ErrNoValidRows)
}
