package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPDFExtractBasic(t *testing.T) {
	pages := []string{
		"DBS Altitude Visa Signature Card\n" +
			"STATEMENT DATE 15 Jan 2024\n" +
			"05 Jan 2024   FOOBAR MART SINGAPORE SG   S$12.34\n" +
			"06 Jan 2024   ACME REFUND   S$5.00 cr\n",
	}

	records, err := NewPDFStatementExtractor().Extract(pages, "estatement.pdf", testNow)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), records[0].TransactionDate)
	assert.Equal(t, "FOOBAR MART SINGAPORE SG", records[0].Description)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("12.34")))
	assert.Equal(t, "DBS Altitude", records[0].BankAccount)
	assert.Equal(t, "20240201_120000_estatement", records[0].SourceFile)

	// A trailing "cr" marks a credit.
	assert.True(t, records[1].Amount.Equal(decimal.RequireFromString("-5.00")))
}

func TestPDFExtractSkipsPaymentSection(t *testing.T) {
	pages := []string{
		"03 Jan 2024   PAYMENT - DBS INTERNET/WIRELESS   S$500.00 cr\n" +
			"04 Jan 2024   SHOULD BE SKIPPED   S$1.00\n" +
			"SUB-TOTAL   S$501.00\n" +
			"05 Jan 2024   REAL PURCHASE   S$20.00\n",
	}

	records, err := NewPDFStatementExtractor().Extract(pages, "estatement.pdf", testNow)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "REAL PURCHASE", records[0].Description)
}

func TestPDFExtractSkipStateResetsPerPage(t *testing.T) {
	// A payment block left open at the bottom of one page must not swallow
	// the next page's transactions.
	pages := []string{
		"01 Jan 2024   PAYMENT - DBS INTERNET/WIRELESS   S$500.00 cr\n",
		"05 Jan 2024   REAL PURCHASE   S$20.00\n",
	}

	records, err := NewPDFStatementExtractor().Extract(pages, "estatement.pdf", testNow)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "REAL PURCHASE", records[0].Description)
}

func TestPDFExtractSkipEndsOnPrefixOnly(t *testing.T) {
	// A terminator token in the middle of a line does not close the block;
	// only a line starting with one does.
	pages := []string{
		"01 Jan 2024   PAYMENT - DBS INTERNET/WIRELESS   S$500.00 cr\n" +
			"02 Jan 2024   REFUND FOR SUB-TOTAL DISPUTE   S$9.99 cr\n" +
			"SUB-TOTAL   S$490.01\n" +
			"05 Jan 2024   REAL PURCHASE   S$20.00\n",
	}

	records, err := NewPDFStatementExtractor().Extract(pages, "estatement.pdf", testNow)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "REAL PURCHASE", records[0].Description)
}

func TestPDFExtractSortsByDate(t *testing.T) {
	pages := []string{
		"20 Jan 2024   LATER PURCHASE   S$3.00\n" +
			"05 Jan 2024   EARLIER PURCHASE   S$1.00\n",
		"12 Jan 2024   MIDDLE PURCHASE   S$2.00\n",
	}

	records, err := NewPDFStatementExtractor().Extract(pages, "estatement.pdf", testNow)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "EARLIER PURCHASE", records[0].Description)
	assert.Equal(t, "MIDDLE PURCHASE", records[1].Description)
	assert.Equal(t, "LATER PURCHASE", records[2].Description)
}

func TestPDFExtractCleansArtifacts(t *testing.T) {
	pages := []string{
		"07 Jan 2024   CAFE DU COIN�   S$ 8.80\n",
	}

	records, err := NewPDFStatementExtractor().Extract(pages, "estatement.pdf", testNow)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "CAFE DU COIN", records[0].Description)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("8.80")))
}

func TestPDFExtractIgnoresChrome(t *testing.T) {
	pages := []string{
		"15 Jan 2024 STATEMENT DATE S$0.00\n" +
			"31 Jan 2024 PAYMENT DUE DATE S$123.45\n" +
			"no transactions here\n",
	}

	_, err := NewPDFStatementExtractor().Extract(pages, "estatement.pdf", testNow)
	require.ErrorIs(t, err, ErrNoValidRows)
}
