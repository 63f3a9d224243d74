package matcher

import (
	"testing"

	"github.com/shopspring/decimal"

	"lusio-reconciliation-service/internal/models"
)

func createTestClients() []*models.ClientRecord {
	return []*models.ClientRecord{
		{
			PaymentReferenceID: "pi_001",
			FirstName:          "Ana",
			LastName:           "Silva",
			Email:              "ana@example.com",
			NIF:                "123456789",
			Street:             "Rua A 1",
			PostalCode:         "1000-100",
			Locality:           "Lisboa",
		},
		{
			FirstName: "Bruno",
			LastName:  "Costa",
			Email:     "bruno@example.com",
			NIF:       "987654321",
		},
	}
}

func payment(id, date string, amount float64, email string) *models.PaymentRecord {
	return models.NewPaymentRecord(id, date, decimal.NewFromFloat(amount), decimal.NewFromFloat(1), email)
}

func TestEngine_Reconcile_PrimaryKeyMatch(t *testing.T) {
	engine := NewEngine(nil)

	payments := []*models.PaymentRecord{
		payment("pi_001", "2025-10-14", 399, "payer@example.com"),
	}

	result := engine.Reconcile(payments, createTestClients())

	if len(result.Matched) != 1 || len(result.Unmatched) != 0 {
		t.Fatalf("expected 1 matched, got %s", result)
	}

	matched := result.Matched[0]
	if matched.ClientName != "Ana Silva" {
		t.Errorf("ClientName = %q, want Ana Silva", matched.ClientName)
	}
	if matched.NIF != "123456789" {
		t.Errorf("NIF = %q", matched.NIF)
	}
}

func TestEngine_Reconcile_EmailFallback(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// No reference id anywhere, but the payer email matches Bruno after
	// normalization.
	payments := []*models.PaymentRecord{
		payment("pi_unknown", "2025-10-14", 50, "  Bruno@Example.com "),
	}

	result := engine.Reconcile(payments, createTestClients())

	if len(result.Matched) != 1 {
		t.Fatalf("expected fallback match, got %s", result)
	}
	if result.Matched[0].ClientName != "Bruno Costa" {
		t.Errorf("ClientName = %q, want Bruno Costa", result.Matched[0].ClientName)
	}
}

func TestEngine_Reconcile_PrimaryBeatsFallback(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	// The payment's reference id points at Ana while its email points at
	// Bruno; the reference id tier must win.
	payments := []*models.PaymentRecord{
		payment("pi_001", "2025-10-14", 399, "bruno@example.com"),
	}

	result := engine.Reconcile(payments, createTestClients())

	if len(result.Matched) != 1 {
		t.Fatalf("expected 1 matched, got %s", result)
	}
	if result.Matched[0].ClientName != "Ana Silva" {
		t.Errorf("matched %q, want the reference-id client Ana Silva", result.Matched[0].ClientName)
	}
}

func TestEngine_Reconcile_StrictMode(t *testing.T) {
	engine := NewEngine(StrictConfig())

	payments := []*models.PaymentRecord{
		payment("pi_unknown", "2025-10-14", 50, "bruno@example.com"),
	}

	result := engine.Reconcile(payments, createTestClients())

	if len(result.Matched) != 0 || len(result.Unmatched) != 1 {
		t.Fatalf("strict mode must not fall back to email, got %s", result)
	}
	if result.Unmatched[0].PaymentIntentID != "pi_unknown" {
		t.Errorf("unexpected unmatched record: %+v", result.Unmatched[0])
	}
}

func TestEngine_Reconcile_EmptyEmailNeverFallsBack(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	clients := []*models.ClientRecord{
		{PaymentReferenceID: "pi_x", Email: ""},
	}
	payments := []*models.PaymentRecord{
		payment("pi_unknown", "2025-10-14", 50, ""),
	}

	result := engine.Reconcile(payments, clients)

	if len(result.Unmatched) != 1 {
		t.Fatalf("expected unmatched payment, got %s", result)
	}
}

func TestEngine_Reconcile_CountsAreConserved(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	payments := []*models.PaymentRecord{
		payment("pi_001", "2025-10-03", 399, "x@example.com"),
		payment("pi_miss_1", "2025-10-14", 10, "nobody@example.com"),
		payment("pi_miss_2", "2025-10-28", 20, ""),
		payment("pi_001", "2025-11-01", 399, ""), // duplicate id, matches again
	}

	result := engine.Reconcile(payments, createTestClients())

	if len(result.Matched)+len(result.Unmatched) != len(payments) {
		t.Errorf("matched(%d)+unmatched(%d) != payments(%d)",
			len(result.Matched), len(result.Unmatched), len(payments))
	}
}

func TestEngine_Reconcile_PreservesInputOrder(t *testing.T) {
	engine := NewEngine(DefaultConfig())

	payments := []*models.PaymentRecord{
		payment("pi_001", "2025-10-01", 1, ""),
		payment("pi_miss", "2025-10-02", 2, ""),
		payment("pi_001", "2025-10-03", 3, ""),
	}

	result := engine.Reconcile(payments, createTestClients())

	if len(result.Matched) != 2 || len(result.Unmatched) != 1 {
		t.Fatalf("unexpected split: %s", result)
	}
	if result.Matched[0].Date != "2025-10-01" || result.Matched[1].Date != "2025-10-03" {
		t.Error("matched results must keep payment input order")
	}
	if result.Unmatched[0].Date != "2025-10-02" {
		t.Error("unmatched results must keep payment input order")
	}
}

func TestEngine_Reconcile_NoPayments(t *testing.T) {
	engine := NewEngine(nil)

	result := engine.Reconcile(nil, createTestClients())

	if len(result.Matched) != 0 || len(result.Unmatched) != 0 {
		t.Errorf("expected empty result, got %s", result)
	}
}
