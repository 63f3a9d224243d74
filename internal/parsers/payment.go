package parsers

import (
	"fmt"
	"io"
	"strings"

	"lusio-reconciliation-service/internal/models"
	"lusio-reconciliation-service/pkg/logger"
)

// PaymentParserConfig holds the schema for the payment-processor export:
// delimiter plus the source column header for each record field.
type PaymentParserConfig struct {
	DateColumn     string `json:"date_column"`
	AmountColumn   string `json:"amount_column"`
	FeeColumn      string `json:"fee_column"`
	IntentIDColumn string `json:"intent_id_column"`
	EmailColumn    string `json:"email_column"`
	Delimiter      rune   `json:"delimiter"`
}

// DefaultPaymentParserConfig returns the schema of the Stripe payment export
func DefaultPaymentParserConfig() *PaymentParserConfig {
	return &PaymentParserConfig{
		DateColumn:     "Created date (UTC)",
		AmountColumn:   "Amount",
		FeeColumn:      "Fee",
		IntentIDColumn: "PaymentIntent ID",
		EmailColumn:    "Customer Email",
		Delimiter:      ',',
	}
}

// Validate checks if the payment parser configuration is valid
func (c *PaymentParserConfig) Validate() error {
	if strings.TrimSpace(c.DateColumn) == "" {
		return fmt.Errorf("date column cannot be empty")
	}

	if strings.TrimSpace(c.AmountColumn) == "" {
		return fmt.Errorf("amount column cannot be empty")
	}

	if strings.TrimSpace(c.FeeColumn) == "" {
		return fmt.Errorf("fee column cannot be empty")
	}

	if strings.TrimSpace(c.IntentIDColumn) == "" {
		return fmt.Errorf("intent ID column cannot be empty")
	}

	if strings.TrimSpace(c.EmailColumn) == "" {
		return fmt.Errorf("email column cannot be empty")
	}

	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be zero")
	}

	return nil
}

// PaymentParser parses the payment-processor export into PaymentRecords
type PaymentParser struct {
	config *PaymentParserConfig
	logger logger.Logger
}

// NewPaymentParser creates a new PaymentParser with the given configuration
func NewPaymentParser(config *PaymentParserConfig) (*PaymentParser, error) {
	if config == nil {
		config = DefaultPaymentParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid payment parser config: %w", err)
	}

	return &PaymentParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("payment_parser"),
	}, nil
}

// Parse reads the raw export and returns the accepted payment records in
// input order. A row is accepted only if its payment intent ID is non-empty
// after trimming; rejected rows are dropped silently and counted in the
// stats. Malformed amounts and fees parse to zero, they never drop a row.
func (pp *PaymentParser) Parse(r io.Reader) ([]*models.PaymentRecord, *ParseStats, error) {
	t, err := readTable(r, pp.config.Delimiter, "payment export")
	if err != nil {
		pp.logger.WithError(err).Error("Failed to read payment export")
		return nil, nil, err
	}

	stats := &ParseStats{LinesRead: t.linesRead}
	var payments []*models.PaymentRecord

	for _, row := range t.rows {
		intentID := strings.TrimSpace(t.field(row, pp.config.IntentIDColumn))
		if intentID == "" {
			stats.RowsDropped++
			continue
		}

		payment := models.NewPaymentRecord(
			intentID,
			models.TruncateDate(t.field(row, pp.config.DateColumn)),
			models.ParseLocaleDecimal(t.field(row, pp.config.AmountColumn)),
			models.ParseLocaleDecimal(t.field(row, pp.config.FeeColumn)),
			t.field(row, pp.config.EmailColumn),
		)

		payments = append(payments, payment)
		stats.RecordsAccepted++
	}

	pp.logger.WithFields(logger.Fields{
		"lines_read":       stats.LinesRead,
		"records_accepted": stats.RecordsAccepted,
		"rows_dropped":     stats.RowsDropped,
	}).Debug("Parsed payment export")

	return payments, stats, nil
}

// ParseString parses a raw text blob, the form the UI boundary supplies
func (pp *PaymentParser) ParseString(raw string) ([]*models.PaymentRecord, *ParseStats, error) {
	return pp.Parse(strings.NewReader(raw))
}
