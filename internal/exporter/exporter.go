// Package exporter lays matched results out as a multi-sheet spreadsheet,
// one sheet per calendar month of payment date.
package exporter

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"lusio-reconciliation-service/internal/models"
	apperrors "lusio-reconciliation-service/pkg/errors"
	"lusio-reconciliation-service/pkg/logger"
)

// monthAbbreviations maps month numbers 1-12 to the report's working-locale
// abbreviations, used in sheet names like "Out-25".
var monthAbbreviations = [12]string{
	"Jan", "Fev", "Mar", "Abr", "Mai", "Jun",
	"Jul", "Ago", "Set", "Out", "Nov", "Dez",
}

// sheetHeaders are the seven column labels of every report sheet
var sheetHeaders = []interface{}{
	"Date", "Amount", "Stripe Fee", "Client Name", "Email", "Tax ID", "Address",
}

// columnWidths are the approximate character widths of columns A through G
var columnWidths = []float64{12, 10, 12, 25, 30, 12, 40}

// currencyFormat is the display format applied to Amount and Stripe Fee
// cells of data rows.
const currencyFormat = "€#,##0.00"

// headerRow is the 1-based sheet row carrying the column labels; rows one
// and two are left blank, data starts on the row after the header.
const headerRow = 3

// artifactPrefix is the fixed stem of the generated file name
const artifactPrefix = "faturas-lusio"

// Builder assembles the report artifact from matched results.
//
// The clock is injectable so tests can pin the date-stamped file name; it
// defaults to time.Now.
type Builder struct {
	clock  func() time.Time
	logger logger.Logger
}

// NewBuilder creates a report builder
func NewBuilder() *Builder {
	return &Builder{
		clock:  time.Now,
		logger: logger.GetGlobalLogger().WithComponent("exporter"),
	}
}

// NewBuilderWithClock creates a report builder with a fixed clock
func NewBuilderWithClock(clock func() time.Time) *Builder {
	b := NewBuilder()
	b.clock = clock
	return b
}

// monthKey derives the partition key "<month abbreviation>-<2-digit year>"
// from a YYYY-MM-DD date. The month is bounds-checked: a non-numeric or
// out-of-range month, or a date without year and month parts, is a
// recoverable error rather than an out-of-bounds table lookup.
func monthKey(date string) (string, error) {
	parts := strings.Split(date, "-")
	if len(parts) < 2 {
		return "", apperrors.ExportError(apperrors.CodeInvalidMonth,
			fmt.Sprintf("date %q has no year and month parts", date), nil)
	}

	year, month := parts[0], parts[1]

	m, err := strconv.Atoi(month)
	if err != nil {
		return "", apperrors.ExportError(apperrors.CodeInvalidMonth,
			fmt.Sprintf("month %q in date %q is not numeric", month, date), err)
	}
	if m < 1 || m > 12 {
		return "", apperrors.ExportError(apperrors.CodeInvalidMonth,
			fmt.Sprintf("month %d in date %q is out of range", m, date), nil)
	}

	if len(year) < 2 {
		return "", apperrors.ExportError(apperrors.CodeInvalidMonth,
			fmt.Sprintf("year %q in date %q is too short", year, date), nil)
	}

	return monthAbbreviations[m-1] + "-" + year[len(year)-2:], nil
}

// partition groups matched results by month key, preserving first-occurrence
// order of each key and the relative order of results within a group.
func partition(matched []*models.MatchedResult) ([]string, map[string][]*models.MatchedResult, error) {
	var keys []string
	groups := make(map[string][]*models.MatchedResult)

	for _, result := range matched {
		key, err := monthKey(result.Date)
		if err != nil {
			return nil, nil, err
		}

		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], result)
	}

	return keys, groups, nil
}

// Build assembles the workbook: one sheet per month partition, named by the
// partition key. An empty matched set is rejected with a nothing-to-export
// error; a workbook cannot carry zero sheets.
func (b *Builder) Build(matched []*models.MatchedResult) (*excelize.File, error) {
	if len(matched) == 0 {
		return nil, apperrors.ExportError(apperrors.CodeNothingToExport, "", nil)
	}

	keys, groups, err := partition(matched)
	if err != nil {
		b.logger.WithError(err).Error("Failed to partition matched results")
		return nil, err
	}

	file := excelize.NewFile()

	style, err := file.NewStyle(&excelize.Style{CustomNumFmt: stringPtr(currencyFormat)})
	if err != nil {
		return nil, apperrors.ExportError(apperrors.CodeArtifactWriteFailed, "creating currency style", err)
	}

	for i, key := range keys {
		if i == 0 {
			// Rename the default sheet rather than leaving an empty Sheet1.
			if err := file.SetSheetName(file.GetSheetName(0), key); err != nil {
				return nil, apperrors.ExportError(apperrors.CodeArtifactWriteFailed, "naming sheet "+key, err)
			}
		} else {
			if _, err := file.NewSheet(key); err != nil {
				return nil, apperrors.ExportError(apperrors.CodeArtifactWriteFailed, "adding sheet "+key, err)
			}
		}

		if err := b.writeSheet(file, key, groups[key], style); err != nil {
			return nil, err
		}
	}

	b.logger.WithFields(logger.Fields{
		"sheets":  len(keys),
		"matched": len(matched),
	}).Debug("Built report workbook")

	return file, nil
}

// writeSheet lays out one partition: two blank rows, the header row, then
// one data row per result in partition order.
func (b *Builder) writeSheet(file *excelize.File, sheet string, results []*models.MatchedResult, currencyStyle int) error {
	for col, width := range columnWidths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return apperrors.ExportError(apperrors.CodeArtifactWriteFailed, "resolving column name", err)
		}
		if err := file.SetColWidth(sheet, name, name, width); err != nil {
			return apperrors.ExportError(apperrors.CodeArtifactWriteFailed, "setting column width", err)
		}
	}

	if err := file.SetSheetRow(sheet, fmt.Sprintf("A%d", headerRow), &sheetHeaders); err != nil {
		return apperrors.ExportError(apperrors.CodeArtifactWriteFailed, "writing header row", err)
	}

	for i, result := range results {
		rowNum := headerRow + 1 + i
		row := []interface{}{
			result.Date,
			result.Amount.InexactFloat64(),
			result.Fee.InexactFloat64(),
			result.ClientName,
			result.Email,
			result.NIF,
			result.Address,
		}
		if err := file.SetSheetRow(sheet, fmt.Sprintf("A%d", rowNum), &row); err != nil {
			return apperrors.ExportError(apperrors.CodeArtifactWriteFailed, "writing data row", err)
		}
	}

	// Currency format covers Amount and Stripe Fee data cells only; header
	// and blank rows keep the default style.
	if len(results) > 0 {
		first := fmt.Sprintf("B%d", headerRow+1)
		last := fmt.Sprintf("C%d", headerRow+len(results))
		if err := file.SetCellStyle(sheet, first, last, currencyStyle); err != nil {
			return apperrors.ExportError(apperrors.CodeArtifactWriteFailed, "applying currency format", err)
		}
	}

	return nil
}

// FileName returns the date-stamped artifact name for the builder's clock
func (b *Builder) FileName() string {
	return fmt.Sprintf("%s-%s.xlsx", artifactPrefix, b.clock().Format("2006-01-02"))
}

// Write builds the workbook and serializes it to w
func (b *Builder) Write(matched []*models.MatchedResult, w io.Writer) error {
	file, err := b.Build(matched)
	if err != nil {
		return err
	}
	defer file.Close()

	if err := file.Write(w); err != nil {
		return apperrors.ExportError(apperrors.CodeArtifactWriteFailed, "serializing workbook", err)
	}

	return nil
}

// Save builds the workbook and writes it under dir with the date-stamped
// name, returning the written path.
func (b *Builder) Save(matched []*models.MatchedResult, dir string) (string, error) {
	file, err := b.Build(matched)
	if err != nil {
		return "", err
	}
	defer file.Close()

	path := filepath.Join(dir, b.FileName())
	if err := file.SaveAs(path); err != nil {
		return "", apperrors.ExportError(apperrors.CodeArtifactWriteFailed, path, err)
	}

	b.logger.WithField("path", path).Info("Wrote report artifact")
	return path, nil
}

func stringPtr(s string) *string {
	return &s
}
