package parsers

import (
	"fmt"
	"io"
	"strings"

	"lusio-reconciliation-service/internal/models"
	"lusio-reconciliation-service/pkg/logger"
)

// ClientParserConfig holds the schema for the client-registry export.
//
// AcceptByEmail widens the row acceptance filter: normally a row needs a
// non-empty payment reference id, but when the matcher runs with email
// fallback enabled a row with only an email is still useful, so it is kept.
type ClientParserConfig struct {
	ReferenceIDColumn string `json:"reference_id_column"`
	FirstNameColumn   string `json:"first_name_column"`
	LastNameColumn    string `json:"last_name_column"`
	EmailColumn       string `json:"email_column"`
	NIFColumn         string `json:"nif_column"`
	StreetColumn      string `json:"street_column"`
	PostalCodeColumn  string `json:"postal_code_column"`
	LocalityColumn    string `json:"locality_column"`
	Delimiter         rune   `json:"delimiter"`
	AcceptByEmail     bool   `json:"accept_by_email"`
}

// DefaultClientParserConfig returns the schema of the Lusio registry export
func DefaultClientParserConfig() *ClientParserConfig {
	return &ClientParserConfig{
		ReferenceIDColumn: "service_payment_reference_id",
		FirstNameColumn:   "person_first_name",
		LastNameColumn:    "person_last_name",
		EmailColumn:       "person_email",
		NIFColumn:         "person_nif",
		StreetColumn:      "address_street",
		PostalCodeColumn:  "address_postal_code",
		LocalityColumn:    "address_locality",
		Delimiter:         ';',
		AcceptByEmail:     true,
	}
}

// Validate checks if the client parser configuration is valid
func (c *ClientParserConfig) Validate() error {
	columns := map[string]string{
		"reference ID": c.ReferenceIDColumn,
		"first name":   c.FirstNameColumn,
		"last name":    c.LastNameColumn,
		"email":        c.EmailColumn,
		"NIF":          c.NIFColumn,
		"street":       c.StreetColumn,
		"postal code":  c.PostalCodeColumn,
		"locality":     c.LocalityColumn,
	}

	for name, value := range columns {
		if strings.TrimSpace(value) == "" {
			return fmt.Errorf("%s column cannot be empty", name)
		}
	}

	if c.Delimiter == 0 {
		return fmt.Errorf("delimiter cannot be zero")
	}

	return nil
}

// ClientParser parses the client-registry export into ClientRecords
type ClientParser struct {
	config *ClientParserConfig
	logger logger.Logger
}

// NewClientParser creates a new ClientParser with the given configuration
func NewClientParser(config *ClientParserConfig) (*ClientParser, error) {
	if config == nil {
		config = DefaultClientParserConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client parser config: %w", err)
	}

	return &ClientParser{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("client_parser"),
	}, nil
}

// Parse reads the raw export and returns the accepted client records in
// input order. Acceptance requires a non-empty reference id, or a non-empty
// email when AcceptByEmail is set.
func (cp *ClientParser) Parse(r io.Reader) ([]*models.ClientRecord, *ParseStats, error) {
	t, err := readTable(r, cp.config.Delimiter, "client export")
	if err != nil {
		cp.logger.WithError(err).Error("Failed to read client export")
		return nil, nil, err
	}

	stats := &ParseStats{LinesRead: t.linesRead}
	var clients []*models.ClientRecord

	for _, row := range t.rows {
		client := &models.ClientRecord{
			PaymentReferenceID: strings.TrimSpace(t.field(row, cp.config.ReferenceIDColumn)),
			FirstName:          t.field(row, cp.config.FirstNameColumn),
			LastName:           t.field(row, cp.config.LastNameColumn),
			Email:              t.field(row, cp.config.EmailColumn),
			NIF:                t.field(row, cp.config.NIFColumn),
			Street:             t.field(row, cp.config.StreetColumn),
			PostalCode:         t.field(row, cp.config.PostalCodeColumn),
			Locality:           t.field(row, cp.config.LocalityColumn),
		}

		if !cp.accepts(client) {
			stats.RowsDropped++
			continue
		}

		clients = append(clients, client)
		stats.RecordsAccepted++
	}

	cp.logger.WithFields(logger.Fields{
		"lines_read":       stats.LinesRead,
		"records_accepted": stats.RecordsAccepted,
		"rows_dropped":     stats.RowsDropped,
	}).Debug("Parsed client export")

	return clients, stats, nil
}

// ParseString parses a raw text blob, the form the UI boundary supplies
func (cp *ClientParser) ParseString(raw string) ([]*models.ClientRecord, *ParseStats, error) {
	return cp.Parse(strings.NewReader(raw))
}

func (cp *ClientParser) accepts(client *models.ClientRecord) bool {
	if client.PaymentReferenceID != "" {
		return true
	}

	return cp.config.AcceptByEmail && client.NormalizedEmail() != ""
}
