// Package detect identifies which bank export a raw artifact came from and
// pre-filters the candidate transaction lines for the matching parser.
package detect

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/statement-etl/internal/domain/ingest/reader"
)

// FormatTag is the enumerated identity of a detected source format. It is a
// closed set; parsers dispatch over it exhaustively.
type FormatTag int

const (
	// TagUnknown is terminal: the file is quarantined, never parsed.
	TagUnknown FormatTag = iota
	// TagSCCard is a Standard Chartered card export (delimited text).
	TagSCCard
	// TagUOBCard is a UOB card export (delimited text).
	TagUOBCard
	// TagUOBAccount is a UOB account export delivered as a spreadsheet grid.
	TagUOBAccount
	// TagDBSAltitudePDF is a DBS Altitude card statement extracted from PDF text.
	TagDBSAltitudePDF
	// TagGenericCSV is a tabular export with a recognizable generic header row.
	TagGenericCSV
)

func (t FormatTag) String() string {
	switch t {
	case TagSCCard:
		return "sc_card"
	case TagUOBCard:
		return "uob_card"
	case TagUOBAccount:
		return "uob_account"
	case TagDBSAltitudePDF:
		return "pdf_altitude"
	case TagGenericCSV:
		return "generic_csv"
	default:
		return "unknown"
	}
}

// Detection is the detector's output: the tag plus the candidate lines or
// rows the matching parser should consume. Label carries the statement's own
// header label when the format exposes one; it feeds the provenance string.
type Detection struct {
	Tag   FormatTag
	Label string
	Lines []string
	Grid  [][]string
}

// datePattern filters candidate transaction lines once a text format is
// already identified. It matches too many formats generically to identify
// one, which is why signature checks run first.
var datePattern = regexp.MustCompile(`\b\d{2}/\d{2}/\d{4}\b`)

const (
	scCardMarker      = "SIMPLY CASH CREDIT CARD"
	uobCardMarker     = "CREDIT CARD"
	uobInstitution    = "UOB"
	uobInstitutionAlt = "UNITED OVERSEAS BANK"
	dbsAltitudeMarker = "DBS ALTITUDE"
)

// genericHeaderKeywords recognize a plain tabular export. A header row needs
// a date column, a description column, and some amount-shaped column.
var (
	genericDateKeywords   = []string{"date", "posted date", "transaction date"}
	genericDescKeywords   = []string{"description", "merchant", "payee", "details", "memo"}
	genericAmountKeywords = []string{"amount", "debit", "credit", "value"}
)

// Detect inspects a raw artifact and returns the format tag plus candidates.
// Signature checks run in a fixed priority order; the defined fallthrough is
// TagUnknown with empty candidates.
func Detect(art *reader.RawArtifact) Detection {
	if art == nil {
		return Detection{Tag: TagUnknown}
	}

	if d, ok := detectSCCard(art); ok {
		return d
	}
	if d, ok := detectUOBCard(art); ok {
		return d
	}
	if d, ok := detectUOBAccount(art); ok {
		return d
	}
	if d, ok := detectAltitudePDF(art); ok {
		return d
	}
	if d, ok := detectGenericCSV(art); ok {
		return d
	}

	return Detection{Tag: TagUnknown}
}

// firstField returns the first comma-delimited field of the first content
// line; card exports carry their product label there.
func firstField(art *reader.RawArtifact) string {
	if art.Kind != reader.KindText || len(art.Lines) == 0 {
		return ""
	}
	return strings.TrimSpace(strings.Split(art.Lines[0], ",")[0])
}

func dateLines(lines []string) []string {
	var out []string
	for _, line := range lines {
		if datePattern.MatchString(line) {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}

func detectSCCard(art *reader.RawArtifact) (Detection, bool) {
	label := firstField(art)
	if label == "" || !strings.Contains(strings.ToUpper(label), scCardMarker) {
		return Detection{}, false
	}
	return Detection{Tag: TagSCCard, Label: label, Lines: dateLines(art.Lines)}, true
}

func detectUOBCard(art *reader.RawArtifact) (Detection, bool) {
	label := firstField(art)
	upper := strings.ToUpper(label)
	if label == "" || !strings.Contains(upper, uobInstitution) || !strings.Contains(upper, uobCardMarker) {
		return Detection{}, false
	}
	return Detection{Tag: TagUOBCard, Label: label, Lines: dateLines(art.Lines)}, true
}

// detectUOBAccount matches a grid whose first column header names the
// institution. The header row itself is still unresolved here; the parser
// scans for it.
func detectUOBAccount(art *reader.RawArtifact) (Detection, bool) {
	if art.Kind != reader.KindGrid || len(art.Grid) == 0 || len(art.Grid[0]) == 0 {
		return Detection{}, false
	}
	first := strings.ToUpper(art.Grid[0][0])
	if !strings.Contains(first, uobInstitution) && !strings.Contains(first, uobInstitutionAlt) {
		return Detection{}, false
	}
	return Detection{Tag: TagUOBAccount, Label: strings.TrimSpace(art.Grid[0][0]), Grid: art.Grid}, true
}

func detectAltitudePDF(art *reader.RawArtifact) (Detection, bool) {
	if art.Kind != reader.KindText {
		return Detection{}, false
	}
	for _, line := range art.Lines {
		if strings.Contains(strings.ToUpper(line), dbsAltitudeMarker) {
			return Detection{Tag: TagDBSAltitudePDF, Label: dbsAltitudeMarker, Lines: art.Lines}, true
		}
	}
	return Detection{}, false
}

func detectGenericCSV(art *reader.RawArtifact) (Detection, bool) {
	if art.Kind != reader.KindGrid || len(art.Grid) == 0 {
		return Detection{}, false
	}
	header := art.Grid[0]
	if matchesAny(header, genericDateKeywords) &&
		matchesAny(header, genericDescKeywords) &&
		matchesAny(header, genericAmountKeywords) {
		return Detection{Tag: TagGenericCSV, Grid: art.Grid}, true
	}
	return Detection{}, false
}

func matchesAny(header []string, keywords []string) bool {
	for _, cell := range header {
		c := strings.ToLower(strings.TrimSpace(cell))
		for _, kw := range keywords {
			if strings.Contains(c, kw) {
				return true
			}
		}
	}
	return false
}
