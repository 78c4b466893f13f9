package parser

import (
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/FACorreiaa/statement-etl/internal/domain/transaction"
)

const pdfDateFormat = "2 Jan 2006"

// Section delimiters inside a DBS Altitude statement. Payment rows sit in a
// block that must not be ingested as spend.
const (
	pdfSkipStart = "PAYMENT - DBS INTERNET/WIRELESS"
)

var pdfSkipEnd = []string{"SUB-TOTAL", "TRANSACTION DATE", "DBS ALTITUDE"}

// pdfHeaderWords reject lines that look like dates but belong to the
// statement chrome rather than a transaction.
var pdfHeaderWords = []string{"STATEMENT DATE", "PAYMENT DUE", "CREDIT LIMIT", "MINIMUM PAYMENT"}

// PDFStatementExtractor turns the plain text of a DBS Altitude card statement
// into transaction records. A transaction line starts with a day-month-year
// prefix and ends with an S$ amount; a trailing "cr" marks a credit.
type PDFStatementExtractor struct {
	dateLine *regexp.Regexp
	amount   *regexp.Regexp
}

func NewPDFStatementExtractor() *PDFStatementExtractor {
	return &PDFStatementExtractor{
		dateLine: regexp.MustCompile(`^\s*(\d{1,2}\s+[A-Za-z]{3}\s+\d{4})\b`),
		amount:   regexp.MustCompile(`S\$\s*([0-9,]+(?:\.[0-9]{1,2})?)(\s*cr)?\s*$`),
	}
}

// Extract parses page or line text into records sorted by transaction date.
func (e *PDFStatementExtractor) Extract(pages []string, filename string, now time.Time) ([]transaction.Record, error) {
	base := filename
	if i := strings.LastIndexByte(base, '/'); i >= 0 {
		base = base[i+1:]
	}
	if i := strings.LastIndexByte(base, '.'); i > 0 {
		base = base[:i]
	}
	source := transaction.SourceLabel(now, base)

	var records []transaction.Record
	for _, page := range pages {
		// The skip state never crosses a page boundary: a payment block left
		// open at the bottom of a page must not swallow the next page.
		skipping := false
		for _, line := range strings.Split(page, "\n") {
			line = cleanPDFLine(line)
			if line == "" {
				continue
			}
			upper := strings.ToUpper(line)

			if skipping {
				if hasAnyPrefix(strings.TrimSpace(upper), pdfSkipEnd) {
					skipping = false
				}
				continue
			}
			if strings.Contains(upper, pdfSkipStart) {
				skipping = true
				continue
			}

			rec, ok := e.parseLine(line, upper)
			if !ok {
				continue
			}
			rec.BankAccount = "DBS Altitude"
			rec.SourceFile = source
			rec.ProcessedAt = now
			records = append(records, rec)
		}
	}

	if len(records) == 0 {
		return nil, ErrNoValidRows
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].TransactionDate.Before(records[j].TransactionDate)
	})
	return records, nil
}

func (e *PDFStatementExtractor) parseLine(line, upper string) (transaction.Record, bool) {
	dateMatch := e.dateLine.FindStringSubmatch(line)
	if dateMatch == nil {
		return transaction.Record{}, false
	}
	if containsAny(upper, pdfHeaderWords) {
		return transaction.Record{}, false
	}

	// The amount anchors at the end of the line; intermediate S$ tokens in
	// the description are left alone.
	amountLoc := e.amount.FindStringSubmatchIndex(line)
	if amountLoc == nil {
		return transaction.Record{}, false
	}

	when, err := time.Parse(pdfDateFormat, squashSpaces(dateMatch[1]))
	if err != nil {
		return transaction.Record{}, false
	}

	raw := line[amountLoc[2]:amountLoc[3]]
	amount, ok := cleanAmount(raw)
	if !ok {
		return transaction.Record{}, false
	}
	if amountLoc[4] >= 0 { // trailing "cr" marks a refund or payment credit
		amount = amount.Neg()
	}

	desc := squashSpaces(line[len(dateMatch[0]):amountLoc[0]])
	if desc == "" {
		return transaction.Record{}, false
	}

	return transaction.Record{
		TransactionDate: when,
		Description:     desc,
		Amount:          amount,
	}, true
}

// cleanPDFLine strips extraction artifacts: non-breaking spaces, replacement
// runes, stray control characters.
func cleanPDFLine(line string) string {
	line = strings.ReplaceAll(line, "\u00a0", " ")
	line = strings.ReplaceAll(line, "\ufffd", "")
	line = strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' {
			return -1
		}
		return r
	}, line)
	return strings.TrimRight(line, " \t")
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
