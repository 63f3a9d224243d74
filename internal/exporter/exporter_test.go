package exporter

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"lusio-reconciliation-service/internal/models"
	apperrors "lusio-reconciliation-service/pkg/errors"
)

func matchedResult(date string, amount, fee float64, name string) *models.MatchedResult {
	return &models.MatchedResult{
		Date:       date,
		Amount:     decimal.NewFromFloat(amount),
		Fee:        decimal.NewFromFloat(fee),
		ClientName: name,
		Email:      "client@example.com",
		NIF:        "123456789",
		Address:    "Rua A 1 1000-100 Lisboa",
	}
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		date     string
		expected string
	}{
		{"2025-01-05", "Jan-25"},
		{"2025-10-03", "Out-25"},
		{"2025-11-01", "Nov-25"},
		{"2024-12-31", "Dez-24"},
	}

	for _, tt := range tests {
		key, err := monthKey(tt.date)
		require.NoError(t, err, "monthKey(%q)", tt.date)
		assert.Equal(t, tt.expected, key)
	}
}

func TestMonthKey_Malformed(t *testing.T) {
	for _, date := range []string{"2025-13-01", "2025-00-01", "2025-xx-01", "garbage", "2025"} {
		_, err := monthKey(date)
		require.Error(t, err, "monthKey(%q)", date)
		assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidMonth), "code for %q", date)
	}
}

func TestBuilder_Build_GroupsByMonth(t *testing.T) {
	builder := NewBuilder()

	matched := []*models.MatchedResult{
		matchedResult("2025-10-03", 399, 20.31, "Ana Silva"),
		matchedResult("2025-10-28", 150.5, 8.05, "Bruno Costa"),
		matchedResult("2025-11-01", 75, 4.1, "Carla Dias"),
	}

	file, err := builder.Build(matched)
	require.NoError(t, err)
	defer file.Close()

	// One sheet per month, in first-occurrence order.
	assert.Equal(t, []string{"Out-25", "Nov-25"}, file.GetSheetList())

	// Rows 1-2 blank, headers on row 3.
	a1, err := file.GetCellValue("Out-25", "A1")
	require.NoError(t, err)
	assert.Empty(t, a1)

	a3, err := file.GetCellValue("Out-25", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Date", a3)

	g3, err := file.GetCellValue("Out-25", "G3")
	require.NoError(t, err)
	assert.Equal(t, "Address", g3)

	// Both October results land on the same sheet, input order preserved.
	a4, err := file.GetCellValue("Out-25", "A4")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-03", a4)

	a5, err := file.GetCellValue("Out-25", "A5")
	require.NoError(t, err)
	assert.Equal(t, "2025-10-28", a5)

	d4, err := file.GetCellValue("Out-25", "D4")
	require.NoError(t, err)
	assert.Equal(t, "Ana Silva", d4)

	// November gets its own sheet.
	a4nov, err := file.GetCellValue("Nov-25", "A4")
	require.NoError(t, err)
	assert.Equal(t, "2025-11-01", a4nov)
}

func TestBuilder_Build_CurrencyFormatOnDataCellsOnly(t *testing.T) {
	builder := NewBuilder()

	matched := []*models.MatchedResult{
		matchedResult("2025-10-03", 399, 20.31, "Ana Silva"),
		matchedResult("2025-10-28", 150.5, 8.05, "Bruno Costa"),
	}

	file, err := builder.Build(matched)
	require.NoError(t, err)
	defer file.Close()

	assertCurrency := func(cell string) {
		styleID, err := file.GetCellStyle("Out-25", cell)
		require.NoError(t, err)
		style, err := file.GetStyle(styleID)
		require.NoError(t, err)
		require.NotNil(t, style.CustomNumFmt, "cell %s should carry the currency format", cell)
		assert.Equal(t, "€#,##0.00", *style.CustomNumFmt)
	}

	assertPlain := func(cell string) {
		styleID, err := file.GetCellStyle("Out-25", cell)
		require.NoError(t, err)
		style, err := file.GetStyle(styleID)
		require.NoError(t, err)
		if style.CustomNumFmt != nil {
			assert.NotEqual(t, "€#,##0.00", *style.CustomNumFmt, "cell %s must not carry the currency format", cell)
		}
	}

	// Amount and Fee data cells, both rows.
	assertCurrency("B4")
	assertCurrency("C4")
	assertCurrency("B5")
	assertCurrency("C5")

	// Header row, blank rows and non-numeric columns stay plain.
	assertPlain("B3")
	assertPlain("C3")
	assertPlain("B1")
	assertPlain("A4")
	assertPlain("D4")
}

func TestBuilder_Build_Empty(t *testing.T) {
	builder := NewBuilder()

	_, err := builder.Build(nil)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNothingToExport))
}

func TestBuilder_Build_MalformedDateAbortsExport(t *testing.T) {
	builder := NewBuilder()

	matched := []*models.MatchedResult{
		matchedResult("2025-10-03", 399, 20.31, "Ana Silva"),
		matchedResult("2025-99-01", 10, 1, "Broken Date"),
	}

	_, err := builder.Build(matched)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidMonth))
}

func TestBuilder_FileName(t *testing.T) {
	builder := NewBuilderWithClock(func() time.Time {
		return time.Date(2025, 10, 14, 13, 5, 0, 0, time.UTC)
	})

	assert.Equal(t, "faturas-lusio-2025-10-14.xlsx", builder.FileName())
}

func TestBuilder_Write_RoundTrip(t *testing.T) {
	builder := NewBuilder()

	matched := []*models.MatchedResult{
		matchedResult("2025-10-03", 399, 20.31, "Ana Silva"),
	}

	var buf bytes.Buffer
	require.NoError(t, builder.Write(matched, &buf))

	reopened, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer reopened.Close()

	assert.Equal(t, []string{"Out-25"}, reopened.GetSheetList())

	value, err := reopened.GetCellValue("Out-25", "B4")
	require.NoError(t, err)
	assert.Equal(t, "399", value)
}

func TestBuilder_Save(t *testing.T) {
	builder := NewBuilderWithClock(func() time.Time {
		return time.Date(2025, 10, 14, 0, 0, 0, 0, time.UTC)
	})

	matched := []*models.MatchedResult{
		matchedResult("2025-10-03", 399, 20.31, "Ana Silva"),
	}

	dir := t.TempDir()
	path, err := builder.Save(matched, dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "faturas-lusio-2025-10-14.xlsx"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}
