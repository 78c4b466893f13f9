// Package reader resolves raw statement files into either a line sequence or
// a tabular grid. It is a pure encoding-resolution ladder; no content
// heuristics run here.
package reader

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// ErrUnreadableFile means every decoding strategy failed for the file.
var ErrUnreadableFile = errors.New("no decoding strategy succeeded")

// Kind discriminates the two artifact shapes.
type Kind int

const (
	// KindText is an ordered sequence of text lines.
	KindText Kind = iota
	// KindGrid is a tabular grid of cells.
	KindGrid
)

// RawArtifact is the unparsed content of one input file. It is consumed by
// format detection and discarded after parsing.
type RawArtifact struct {
	Kind  Kind
	Lines []string
	Grid  [][]string
}

// StatementReader opens raw statement files, trying decodings in order:
// UTF-8 text, spreadsheet workbook, CSV-as-table.
type StatementReader struct {
	logger *slog.Logger
}

// New creates a statement reader.
func New(logger *slog.Logger) *StatementReader {
	return &StatementReader{logger: logger}
}

// Read returns the file content as a RawArtifact or ErrUnreadableFile when
// all decodings are exhausted.
func (r *StatementReader) Read(path string) (*RawArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}

	if art, ok := decodeText(data); ok {
		return art, nil
	}
	if art, ok := decodeWorkbook(data); ok {
		r.logger.Debug("decoded as workbook", "file", path)
		return art, nil
	}
	if art, ok := decodeCSVGrid(data); ok {
		r.logger.Debug("decoded as csv grid", "file", path)
		return art, nil
	}

	return nil, fmt.Errorf("%w: %s", ErrUnreadableFile, path)
}

// decodeText accepts valid UTF-8 that is not a binary container and returns
// its non-empty lines.
func decodeText(data []byte) (*RawArtifact, bool) {
	if len(data) == 0 || !utf8.Valid(data) || isBinaryContainer(data) {
		return nil, false
	}

	raw := strings.Split(string(data), "\n")
	lines := make([]string, 0, len(raw))
	for i, line := range raw {
		line = strings.TrimRight(line, "\r")
		if i == 0 {
			line = strings.TrimPrefix(line, "\ufeff")
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return nil, false
	}

	return &RawArtifact{Kind: KindText, Lines: lines}, true
}

// decodeWorkbook reads the first sheet of an XLSX workbook as a grid.
func decodeWorkbook(data []byte) (*RawArtifact, bool) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, false
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, false
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil || len(rows) == 0 {
		return nil, false
	}

	return &RawArtifact{Kind: KindGrid, Grid: rows}, true
}

// decodeCSVGrid is the last rung: parse bytes as delimited records. It
// demands at least one multi-field row so arbitrary binaries don't pass as a
// single-cell grid.
func decodeCSVGrid(data []byte) (*RawArtifact, bool) {
	if bytes.ContainsRune(data, 0) {
		return nil, false
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	var grid [][]string
	multiField := false
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, false
		}
		if len(record) > 1 {
			multiField = true
		}
		grid = append(grid, record)
	}
	if len(grid) == 0 || !multiField {
		return nil, false
	}

	return &RawArtifact{Kind: KindGrid, Grid: grid}, true
}

// isBinaryContainer recognizes ZIP (xlsx) and OLE (legacy xls) magic so those
// fall through to the spreadsheet rung even when their bytes happen to be
// valid UTF-8.
func isBinaryContainer(data []byte) bool {
	if bytes.HasPrefix(data, []byte("PK\x03\x04")) {
		return true
	}
	if bytes.HasPrefix(data, []byte{0xD0, 0xCF, 0x11, 0xE0}) {
		return true
	}
	return bytes.ContainsRune(data, 0)
}
