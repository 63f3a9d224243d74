package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// PaymentRecord represents one row of the payment-processor export.
// The date is kept at date-only precision as a YYYY-MM-DD string; any
// time-of-day component in the source is discarded at parse time.
type PaymentRecord struct {
	PaymentIntentID string          `json:"paymentIntentId"`
	Date            string          `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	Fee             decimal.Decimal `json:"fee"`
	CustomerEmail   string          `json:"customerEmail"`
}

// NewPaymentRecord creates a new PaymentRecord instance
func NewPaymentRecord(intentID, date string, amount, fee decimal.Decimal, email string) *PaymentRecord {
	return &PaymentRecord{
		PaymentIntentID: intentID,
		Date:            date,
		Amount:          amount,
		Fee:             fee,
		CustomerEmail:   email,
	}
}

// Validate performs basic validation on the PaymentRecord
func (p *PaymentRecord) Validate() error {
	if strings.TrimSpace(p.PaymentIntentID) == "" {
		return fmt.Errorf("payment intent ID cannot be empty")
	}

	if strings.TrimSpace(p.Date) == "" {
		return fmt.Errorf("payment date cannot be empty")
	}

	return nil
}

// String returns a string representation of the PaymentRecord
func (p *PaymentRecord) String() string {
	return fmt.Sprintf("PaymentRecord{ID: %s, Date: %s, Amount: %s, Fee: %s, Email: %s}",
		p.PaymentIntentID, p.Date, p.Amount.String(), p.Fee.String(), p.CustomerEmail)
}

// Equals compares two PaymentRecord instances for equality
func (p *PaymentRecord) Equals(other *PaymentRecord) bool {
	if other == nil {
		return false
	}

	return p.PaymentIntentID == other.PaymentIntentID &&
		p.Date == other.Date &&
		p.Amount.Equal(other.Amount) &&
		p.Fee.Equal(other.Fee) &&
		p.CustomerEmail == other.CustomerEmail
}

// ClientRecord represents one row of the client-registry export. A single
// client may be referenced by many payments; records are indexed, never
// consumed.
type ClientRecord struct {
	PaymentReferenceID string `json:"servicePaymentReferenceId"`
	FirstName          string `json:"personFirstName"`
	LastName           string `json:"personLastName"`
	Email              string `json:"personEmail"`
	NIF                string `json:"personNif"`
	Street             string `json:"addressStreet"`
	PostalCode         string `json:"addressPostalCode"`
	Locality           string `json:"addressLocality"`
}

// DisplayName composes the client's full name, trimmed of surrounding
// whitespace so a missing first or last name does not leave a stray space.
func (c *ClientRecord) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// SingleLineAddress composes street, postal code and locality into one line
func (c *ClientRecord) SingleLineAddress() string {
	return strings.TrimSpace(c.Street + " " + c.PostalCode + " " + c.Locality)
}

// NormalizedEmail returns the email lower-cased and trimmed for use as a
// fallback matching key.
func (c *ClientRecord) NormalizedEmail() string {
	return NormalizeEmail(c.Email)
}

// String returns a string representation of the ClientRecord
func (c *ClientRecord) String() string {
	return fmt.Sprintf("ClientRecord{RefID: %s, Name: %s, Email: %s, NIF: %s}",
		c.PaymentReferenceID, c.DisplayName(), c.Email, c.NIF)
}

// MatchedResult is the read-only join of a payment with the client record it
// resolved to.
type MatchedResult struct {
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Fee        decimal.Decimal `json:"fee"`
	ClientName string          `json:"clientName"`
	Email      string          `json:"email"`
	NIF        string          `json:"nif"`
	Address    string          `json:"address"`
}

// NewMatchedResult derives a MatchedResult from a payment and the client it
// matched.
func NewMatchedResult(payment *PaymentRecord, client *ClientRecord) *MatchedResult {
	return &MatchedResult{
		Date:       payment.Date,
		Amount:     payment.Amount,
		Fee:        payment.Fee,
		ClientName: client.DisplayName(),
		Email:      client.Email,
		NIF:        client.NIF,
		Address:    client.SingleLineAddress(),
	}
}

// UnmatchedResult records a payment that resolved to no client
type UnmatchedResult struct {
	Date            string          `json:"date"`
	Amount          decimal.Decimal `json:"amount"`
	CustomerEmail   string          `json:"email"`
	PaymentIntentID string          `json:"paymentIntentId"`
}

// NewUnmatchedResult derives an UnmatchedResult from a payment
func NewUnmatchedResult(payment *PaymentRecord) *UnmatchedResult {
	return &UnmatchedResult{
		Date:            payment.Date,
		Amount:          payment.Amount,
		CustomerEmail:   payment.CustomerEmail,
		PaymentIntentID: payment.PaymentIntentID,
	}
}

// Named transform functions applied by the parsers

// TruncateDate keeps only the leading date portion of a timestamp string,
// splitting on the first space: "2025-10-14 13:05:00" -> "2025-10-14".
func TruncateDate(s string) string {
	s = strings.TrimSpace(s)
	if idx := strings.IndexByte(s, ' '); idx >= 0 {
		return s[:idx]
	}
	return s
}

// ParseLocaleDecimal parses a decimal value that uses a comma as the decimal
// separator, stripping quote artifacts first: `"399,00"` -> 399.00. Only the
// first comma is replaced; thousands-grouping input is out of the documented
// format. A value that still fails to parse yields zero, never an error - a
// malformed amount must not drop the row.
func ParseLocaleDecimal(s string) decimal.Decimal {
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.Replace(s, ",", ".", 1)
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}

	return d
}

// NormalizeEmail lower-cases and trims an email for keyed lookup
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
