// Package parsers converts the two raw delimited exports into typed record
// sequences.
//
// Each export has its own schema: the payment export is comma-delimited with
// Stripe's column headers, the client export is semicolon-delimited with the
// registry's snake_case headers. Columns are resolved by exact header name,
// not position, so column reordering in either export is harmless. Rows whose
// identifying field is empty after trimming are dropped silently; the drop is
// only visible in the parse statistics.
package parsers

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	apperrors "lusio-reconciliation-service/pkg/errors"
)

// ParseStats holds statistics about a parsing operation
type ParseStats struct {
	LinesRead       int `json:"lines_read"`
	RecordsAccepted int `json:"records_accepted"`
	RowsDropped     int `json:"rows_dropped"`
}

// String returns a human-readable summary of parsing statistics
func (ps *ParseStats) String() string {
	return fmt.Sprintf("Read %d lines, accepted %d records, dropped %d rows",
		ps.LinesRead, ps.RecordsAccepted, ps.RowsDropped)
}

// table is a fully read delimited input with header-resolved column access
type table struct {
	headerIndex map[string]int
	rows        [][]string
	linesRead   int
}

// readTable reads the whole input and resolves the header row. Empty lines,
// including a trailing blank line, are skipped by the CSV reader before
// header detection.
func readTable(r io.Reader, delimiter rune, source string) (*table, error) {
	reader := csv.NewReader(r)
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	all, err := reader.ReadAll()
	if err != nil {
		return nil, apperrors.ParseError(apperrors.CodeInvalidFormat, source, 0, "", err)
	}

	if len(all) == 0 {
		return nil, apperrors.ParseError(apperrors.CodeEmptyInput, source, 0, "", nil)
	}

	t := &table{
		headerIndex: make(map[string]int),
		rows:        all[1:],
		linesRead:   len(all),
	}

	// Header match is exact and case-sensitive, per the export contracts.
	for i, name := range all[0] {
		t.headerIndex[strings.TrimSpace(name)] = i
	}

	return t, nil
}

// field returns the value of the named column for a row. A column absent from
// the header, or a row shorter than the header, yields an empty string rather
// than an error.
func (t *table) field(row []string, column string) string {
	idx, ok := t.headerIndex[column]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}
