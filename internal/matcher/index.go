package matcher

import (
	"lusio-reconciliation-service/internal/models"
)

// ClientIndex provides keyed lookup of client records for matching.
//
// Two keys are maintained: the payment reference id (primary join key) and
// the normalized email (fallback join key). Duplicate keys follow
// last-write-wins: a later Add replaces the earlier record under that key.
// This is deliberate and explicit rather than a side effect of map
// assignment scattered through calling code.
type ClientIndex struct {
	byReferenceID map[string]*models.ClientRecord
	byEmail       map[string]*models.ClientRecord
	size          int
}

// NewClientIndex creates a ClientIndex from a slice of client records,
// inserted in input order.
func NewClientIndex(clients []*models.ClientRecord) *ClientIndex {
	index := &ClientIndex{
		byReferenceID: make(map[string]*models.ClientRecord, len(clients)),
		byEmail:       make(map[string]*models.ClientRecord, len(clients)),
	}

	for _, client := range clients {
		index.Add(client)
	}

	return index
}

// Add inserts a client under every key it carries. Keys the record lacks
// (empty reference id, empty email) are simply not indexed.
func (ci *ClientIndex) Add(client *models.ClientRecord) {
	if client == nil {
		return
	}

	if client.PaymentReferenceID != "" {
		ci.byReferenceID[client.PaymentReferenceID] = client
	}

	if email := client.NormalizedEmail(); email != "" {
		ci.byEmail[email] = client
	}

	ci.size++
}

// ByReferenceID looks up a client by payment reference id
func (ci *ClientIndex) ByReferenceID(id string) (*models.ClientRecord, bool) {
	client, ok := ci.byReferenceID[id]
	return client, ok
}

// ByEmail looks up a client by email; the key is normalized before lookup so
// callers can pass the payer email as-is.
func (ci *ClientIndex) ByEmail(email string) (*models.ClientRecord, bool) {
	normalized := models.NormalizeEmail(email)
	if normalized == "" {
		return nil, false
	}

	client, ok := ci.byEmail[normalized]
	return client, ok
}

// Size returns the number of records added to the index, including records
// that displaced an earlier one under a shared key.
func (ci *ClientIndex) Size() int {
	return ci.size
}

// IndexStats provides statistics about index key coverage
type IndexStats struct {
	TotalClients       int
	UniqueReferenceIDs int
	UniqueEmails       int
}

// GetIndexStats returns statistics about the client index
func (ci *ClientIndex) GetIndexStats() IndexStats {
	return IndexStats{
		TotalClients:       ci.size,
		UniqueReferenceIDs: len(ci.byReferenceID),
		UniqueEmails:       len(ci.byEmail),
	}
}
