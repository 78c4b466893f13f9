package parser

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/detect"
)

var testNow = time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)

func TestParseSCCard(t *testing.T) {
	d := detect.Detection{
		Tag:   detect.TagSCCard,
		Label: "SIMPLY CASH CREDIT CARD",
		Lines: []string{
			"\t25/01/2024 ,NTUC FAIRPRICE SG,,SGD 45.67 DR",
			"26/01/2024,GRAB* A-ABC SINGAPORE,,SGD 12.30",
		},
	}

	records, err := Parse(d, "statement.csv", testNow)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, time.Date(2024, 1, 25, 0, 0, 0, 0, time.UTC), records[0].TransactionDate)
	assert.Equal(t, "NTUC FAIRPRICE SG", records[0].Description)
	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("45.67")))
	assert.Equal(t, "Standard Chartered", records[0].BankAccount)
	assert.Equal(t, "20240201_120000_SIMPLY CASH CREDIT CARD", records[0].SourceFile)
	assert.Empty(t, records[0].Category)
}

func TestParseSCCardForeignCurrency(t *testing.T) {
	d := detect.Detection{
		Tag:   detect.TagSCCard,
		Label: "SIMPLY CASH CREDIT CARD",
		Lines: []string{
			// Foreign transactions carry the SGD equivalent in a trailing column.
			"26/01/2024,AMAZON.COM SEATTLE,USD 20.00,SGD 1.36,27.50",
			// Without the trailing column the primary field is all we have.
			"27/01/2024,STEAM PURCHASE,USD 5.00,SGD 6.80",
		},
	}

	records, err := Parse(d, "statement.csv", testNow)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].Amount.Equal(decimal.RequireFromString("27.50")))
	assert.True(t, records[1].Amount.Equal(decimal.RequireFromString("6.80")))
}

func TestParseUOBCardAccountName(t *testing.T) {
	d := detect.Detection{
		Tag:   detect.TagUOBCard,
		Label: "UOB Krisflyer CREDIT CARD",
		Lines: []string{"25/01/2024,SHENG SIONG,,SGD 30.00"},
	}

	records, err := Parse(d, "statement.csv", testNow)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "UOB", records[0].BankAccount)
}

func TestParseCardDropsBadRows(t *testing.T) {
	d := detect.Detection{
		Tag:   detect.TagSCCard,
		Label: "SIMPLY CASH CREDIT CARD",
		Lines: []string{
			"25/01/2024,GOOD ROW,,SGD 10.00",
			"not-a-date,BAD DATE,,SGD 5.00",
			"26/01/2024,BAD AMOUNT,,not-money",
			"27/01/2024,,,SGD 3.00",
			"too,short",
		},
	}

	records, err := Parse(d, "statement.csv", testNow)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "GOOD ROW", records[0].Description)
}

func TestParseCardNoValidRows(t *testing.T) {
	d := detect.Detection{
		Tag:   detect.TagSCCard,
		Label: "SIMPLY CASH CREDIT CARD",
		Lines: []string{"garbage,line,without,numbers"},
	}

	_, err := Parse(d, "statement.csv", testNow)
	require.ErrorIs(t, err, ErrNoValidRows)
}

func TestParseUnknownTag(t *testing.T) {
	_, err := Parse(detect.Detection{Tag: detect.TagUnknown}, "x.csv", testNow)
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
