package parser

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/detect"
	"github.com/FACorreiaa/statement-etl/internal/domain/transaction"
)

const uobDateFormat = "2 Jan 2006"

// uobHeaderScanRows bounds the preamble scan; UOB account exports bury the
// column header under a variable-length metadata block.
const uobHeaderScanRows = 15

var uobHeaderColumns = []string{
	"transaction date",
	"transaction description",
	"withdrawal",
	"deposit",
	"available balance",
}

// parseUOBAccount handles UOB account exports delivered as a spreadsheet
// grid. The header row is located by scanning the first rows for a row that
// matches at least three known column names; data starts one row below the
// header's sub-label row. Withdrawals are spend (positive), deposits negate.
func parseUOBAccount(d detect.Detection, filename string, now time.Time) ([]transaction.Record, error) {
	source := sourceLabel(d, filename, now)

	headerIdx, cols := findUOBHeader(d.Grid)
	if headerIdx < 0 {
		return nil, ErrHeaderNotFound
	}

	dataStart := headerIdx + 2
	if dataStart >= len(d.Grid) {
		return nil, ErrNoValidRows
	}

	var records []transaction.Record
	for _, row := range d.Grid[dataStart:] {
		date, ok := uobCell(row, cols.date)
		if !ok {
			continue
		}
		when, err := time.Parse(uobDateFormat, strings.TrimSpace(date))
		if err != nil {
			continue
		}

		desc, _ := uobCell(row, cols.description)
		desc = squashSpaces(desc)
		if desc == "" {
			continue
		}

		withdrawal := uobAmount(row, cols.withdrawal)
		deposit := uobAmount(row, cols.deposit)
		if withdrawal.IsZero() && deposit.IsZero() {
			continue
		}

		records = append(records, transaction.Record{
			TransactionDate: when,
			Description:     desc,
			Amount:          withdrawal.Sub(deposit),
			BankAccount:     "UOB",
			SourceFile:      source,
			ProcessedAt:     now,
		})
	}

	if len(records) == 0 {
		return nil, ErrNoValidRows
	}
	return records, nil
}

type uobColumns struct {
	date        int
	description int
	withdrawal  int
	deposit     int
}

// findUOBHeader returns the header row index and resolved column positions,
// or -1 when no row within the scan window matches enough known columns.
func findUOBHeader(grid [][]string) (int, uobColumns) {
	limit := len(grid)
	if limit > uobHeaderScanRows {
		limit = uobHeaderScanRows
	}

	for i := 0; i < limit; i++ {
		cols := uobColumns{date: -1, description: -1, withdrawal: -1, deposit: -1}
		matched := 0
		for j, cell := range grid[i] {
			c := strings.ToLower(squashSpaces(cell))
			if c == "" {
				continue
			}
			for _, known := range uobHeaderColumns {
				if !strings.Contains(c, known) {
					continue
				}
				matched++
				switch known {
				case "transaction date":
					cols.date = j
				case "transaction description":
					cols.description = j
				case "withdrawal":
					cols.withdrawal = j
				case "deposit":
					cols.deposit = j
				}
				break
			}
		}
		if matched >= 3 && cols.date >= 0 && cols.description >= 0 {
			return i, cols
		}
	}
	return -1, uobColumns{}
}

func uobCell(row []string, idx int) (string, bool) {
	if idx < 0 || idx >= len(row) {
		return "", false
	}
	cell := strings.TrimSpace(row[idx])
	return cell, cell != ""
}

func uobAmount(row []string, idx int) decimal.Decimal {
	cell, ok := uobCell(row, idx)
	if !ok {
		return decimal.Zero
	}
	d, ok := cleanAmount(cell)
	if !ok {
		return decimal.Zero
	}
	return d
}
