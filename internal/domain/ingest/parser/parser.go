// Package parser converts detected candidate lines or rows into canonical
// transaction records, one handler per source format.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/detect"
	"github.com/FACorreiaa/statement-etl/internal/domain/transaction"
)

var (
	// ErrHeaderNotFound means a tabular source had no recognizable header row.
	ErrHeaderNotFound = errors.New("header row not found")
	// ErrNoValidRows means the parser ran but produced zero usable records.
	ErrNoValidRows = errors.New("no valid transaction rows")
	// ErrUnsupportedFormat means no parser exists for the detected tag.
	ErrUnsupportedFormat = errors.New("unsupported statement format")
)

// Parse dispatches the detection result to the handler for its tag. The
// switch is exhaustive over the closed tag set; adding a format means adding
// a case here.
func Parse(d detect.Detection, filename string, now time.Time) ([]transaction.Record, error) {
	switch d.Tag {
	case detect.TagSCCard:
		return parseDelimitedCard(d, "Standard Chartered", filename, now)
	case detect.TagUOBCard:
		return parseDelimitedCard(d, "UOB", filename, now)
	case detect.TagUOBAccount:
		return parseUOBAccount(d, filename, now)
	case detect.TagGenericCSV:
		return parseGenericCSV(d, filename, now)
	case detect.TagDBSAltitudePDF:
		return NewPDFStatementExtractor().Extract(d.Lines, filename, now)
	case detect.TagUnknown:
		return nil, ErrUnsupportedFormat
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, d.Tag)
	}
}

// sourceLabel resolves the provenance string: the statement's own label when
// detection extracted one, otherwise the file's base name.
func sourceLabel(d detect.Detection, filename string, now time.Time) string {
	label := d.Label
	if label == "" {
		base := filepath.Base(filename)
		label = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return transaction.SourceLabel(now, label)
}

// cleanAmount strips currency and debit markers plus separators before
// numeric conversion. A false return means the cell is not an amount.
func cleanAmount(s string) (decimal.Decimal, bool) {
	s = strings.ReplaceAll(s, "SGD", "")
	s = strings.ReplaceAll(s, "S$", "")
	s = strings.ReplaceAll(s, "DR", "")
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, "\u00a0", " ")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}

// squashSpaces whitespace-normalizes a description.
func squashSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// stripToDateChars removes everything except digits and separators so tokens
// like "\t25/01/2024 " survive date parsing.
func stripToDateChars(s string) string {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '/' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
