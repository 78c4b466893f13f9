package parser

import (
	"io"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/detect"
	"github.com/FACorreiaa/statement-etl/internal/domain/transaction"
)

// genericRow maps the column names a plain tabular export may carry. Amount
// columns are kept as strings so currency markers survive until cleaning.
type genericRow struct {
	Date        string `csv:"date"`
	PostedDate  string `csv:"posted date"`
	TxnDate     string `csv:"transaction date"`
	Description string `csv:"description"`
	Merchant    string `csv:"merchant"`
	Payee       string `csv:"payee"`
	Amount      string `csv:"amount"`
	Debit       string `csv:"debit"`
	Credit      string `csv:"credit"`
	Account     string `csv:"account"`
}

var genericDateFormats = []string{
	"2006-01-02",
	"02/01/2006",
	"01/02/2006",
	"2006/01/02",
	"02-01-2006",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// parseGenericCSV handles tabular exports with a recognizable header row.
// Debit columns count as spend (positive), credit columns negate, and a bare
// amount column is taken at face value.
func parseGenericCSV(d detect.Detection, filename string, now time.Time) ([]transaction.Record, error) {
	source := sourceLabel(d, filename, now)

	var rows []genericRow
	if err := gocsv.UnmarshalCSV(newGridCSVReader(d.Grid), &rows); err != nil {
		return nil, ErrHeaderNotFound
	}

	var records []transaction.Record
	for _, row := range rows {
		when, ok := genericDate(row)
		if !ok {
			continue
		}

		desc := squashSpaces(firstNonEmpty(row.Description, row.Merchant, row.Payee))
		if desc == "" {
			continue
		}

		amount, ok := genericAmount(row)
		if !ok {
			continue
		}

		account := squashSpaces(row.Account)
		if account == "" {
			account = "Generic"
		}

		records = append(records, transaction.Record{
			TransactionDate: when,
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

func genericDate(row genericRow) (time.Time, bool) {
	raw := strings.TrimSpace(firstNonEmpty(row.TxnDate, row.Date, row.PostedDate))
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range genericDateFormats {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func genericAmount(row genericRow) (decimal.Decimal, bool) {
	if d, ok := cleanAmount(row.Debit); ok && !d.IsZero() {
		return d.Abs(), true
	}
	if c, ok := cleanAmount(row.Credit); ok && !c.IsZero() {
		return c.Abs().Neg(), true
	}
	return cleanAmount(row.Amount)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

// gridCSVReader adapts an in-memory grid to gocsv's reader interface and
// lowercases the header row so tag matching is case-insensitive.
type gridCSVReader struct {
	grid [][]string
	pos  int
}

func newGridCSVReader(grid [][]string) *gridCSVReader {
	return &gridCSVReader{grid: grid}
}

func (g *gridCSVReader) Read() ([]string, error) {
	if g.pos >= len(g.grid) {
		return nil, io.EOF
	}
	row := g.grid[g.pos]
	if g.pos == 0 {
		lowered := make([]string, len(row))
		for i, cell := range row {
			lowered[i] = strings.ToLower(strings.TrimSpace(cell))
		}
		row = lowered
	}
	g.pos++
	return row, nil
}

func (g *gridCSVReader) ReadAll() ([][]string, error) {
	var out [][]string
	for {
		row, err := g.Read()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
}
