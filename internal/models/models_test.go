package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruncateDate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"timestamp with time", "2025-10-14 13:05:00", "2025-10-14"},
		{"date only", "2025-10-14", "2025-10-14"},
		{"leading whitespace", "  2025-10-14 13:05:00", "2025-10-14"},
		{"empty", "", ""},
		{"only time after space", "2025-01-02 ", "2025-01-02"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TruncateDate(tt.input); got != tt.expected {
				t.Errorf("TruncateDate(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseLocaleDecimal(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected decimal.Decimal
	}{
		{"comma decimal", "399,00", decimal.NewFromFloat(399.00)},
		{"quoted comma decimal", `"399,00"`, decimal.NewFromFloat(399.00)},
		{"fee value", "20,31", decimal.NewFromFloat(20.31)},
		{"plain integer", "0", decimal.Zero},
		{"empty string", "", decimal.Zero},
		{"whitespace only", "   ", decimal.Zero},
		{"garbage", "abc", decimal.Zero},
		{"already dotted", "12.50", decimal.NewFromFloat(12.50)},
		// Thousands grouping is out of the documented format; only the
		// first comma is replaced, so the tail is truncated by parsing.
		{"grouped input", "1.234,56", decimal.NewFromFloat(1.234)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocaleDecimal(tt.input)
			if !got.Equal(tt.expected) {
				t.Errorf("ParseLocaleDecimal(%q) = %s, want %s", tt.input, got, tt.expected)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Foo@Bar.com "); got != "foo@bar.com" {
		t.Errorf("NormalizeEmail = %q, want %q", got, "foo@bar.com")
	}

	if got := NormalizeEmail(""); got != "" {
		t.Errorf("NormalizeEmail of empty = %q, want empty", got)
	}
}

func TestClientRecord_DisplayName(t *testing.T) {
	tests := []struct {
		name     string
		client   ClientRecord
		expected string
	}{
		{"both names", ClientRecord{FirstName: "Ana", LastName: "Silva"}, "Ana Silva"},
		{"first only", ClientRecord{FirstName: "Ana"}, "Ana"},
		{"last only", ClientRecord{LastName: "Silva"}, "Silva"},
		{"neither", ClientRecord{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.client.DisplayName(); got != tt.expected {
				t.Errorf("DisplayName() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestClientRecord_SingleLineAddress(t *testing.T) {
	client := ClientRecord{
		Street:     "Rua das Flores 12",
		PostalCode: "1200-192",
		Locality:   "Lisboa",
	}

	expected := "Rua das Flores 12 1200-192 Lisboa"
	if got := client.SingleLineAddress(); got != expected {
		t.Errorf("SingleLineAddress() = %q, want %q", got, expected)
	}

	empty := ClientRecord{}
	if got := empty.SingleLineAddress(); got != "" {
		t.Errorf("SingleLineAddress() of empty record = %q, want empty", got)
	}
}

func TestPaymentRecord_Validate(t *testing.T) {
	valid := NewPaymentRecord("pi_123", "2025-10-14", decimal.NewFromFloat(399), decimal.NewFromFloat(20.31), "ana@example.com")
	if err := valid.Validate(); err != nil {
		t.Errorf("expected valid payment, got error: %v", err)
	}

	missingID := NewPaymentRecord("  ", "2025-10-14", decimal.Zero, decimal.Zero, "")
	if err := missingID.Validate(); err == nil {
		t.Error("expected error for empty payment intent ID")
	}

	missingDate := NewPaymentRecord("pi_123", "", decimal.Zero, decimal.Zero, "")
	if err := missingDate.Validate(); err == nil {
		t.Error("expected error for empty date")
	}
}

func TestPaymentRecord_Equals(t *testing.T) {
	a := NewPaymentRecord("pi_1", "2025-10-14", decimal.NewFromFloat(399), decimal.NewFromFloat(20.31), "ana@example.com")
	b := NewPaymentRecord("pi_1", "2025-10-14", decimal.NewFromFloat(399.00), decimal.NewFromFloat(20.31), "ana@example.com")

	if !a.Equals(b) {
		t.Error("expected records with equal fields to be equal")
	}

	b.Amount = decimal.NewFromFloat(400)
	if a.Equals(b) {
		t.Error("expected records with different amounts to differ")
	}

	if a.Equals(nil) {
		t.Error("expected comparison with nil to be false")
	}
}

func TestNewMatchedResult(t *testing.T) {
	payment := NewPaymentRecord("pi_1", "2025-10-14", decimal.NewFromFloat(399), decimal.NewFromFloat(20.31), "payer@example.com")
	client := &ClientRecord{
		PaymentReferenceID: "pi_1",
		FirstName:          "Ana",
		LastName:           "Silva",
		Email:              "ana@example.com",
		NIF:                "123456789",
		Street:             "Rua A 1",
		PostalCode:         "1000-100",
		Locality:           "Lisboa",
	}

	result := NewMatchedResult(payment, client)

	if result.Date != "2025-10-14" {
		t.Errorf("Date = %q, want %q", result.Date, "2025-10-14")
	}
	if result.ClientName != "Ana Silva" {
		t.Errorf("ClientName = %q, want %q", result.ClientName, "Ana Silva")
	}
	// The matched row carries the client's email, not the payer email.
	if result.Email != "ana@example.com" {
		t.Errorf("Email = %q, want client email", result.Email)
	}
	if result.Address != "Rua A 1 1000-100 Lisboa" {
		t.Errorf("Address = %q", result.Address)
	}
	if !result.Amount.Equal(payment.Amount) || !result.Fee.Equal(payment.Fee) {
		t.Error("amount and fee must be carried over unchanged")
	}
}

func TestNewUnmatchedResult(t *testing.T) {
	payment := NewPaymentRecord("pi_9", "2025-11-01", decimal.NewFromFloat(10), decimal.NewFromFloat(1), "ghost@example.com")

	result := NewUnmatchedResult(payment)

	if result.PaymentIntentID != "pi_9" || result.Date != "2025-11-01" || result.CustomerEmail != "ghost@example.com" {
		t.Errorf("unexpected unmatched result: %+v", result)
	}
	if !result.Amount.Equal(payment.Amount) {
		t.Error("amount must be carried over unchanged")
	}
}
