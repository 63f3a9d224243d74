// Package matcher resolves payments to client records under a two-tier key
// strategy: the payment intent id against the client's payment reference id
// first, then - if enabled - the normalized payer email against the client's
// normalized email.
package matcher

import (
	"fmt"

	"lusio-reconciliation-service/internal/models"
	"lusio-reconciliation-service/pkg/logger"
)

// Config holds configuration for the matching engine
type Config struct {
	// EnableEmailFallback turns on the second lookup tier. With it off the
	// engine matches strictly by reference id.
	EnableEmailFallback bool `json:"enable_email_fallback"`
}

// DefaultConfig returns the default matching configuration, with email
// fallback enabled.
func DefaultConfig() *Config {
	return &Config{
		EnableEmailFallback: true,
	}
}

// StrictConfig returns a configuration that matches by reference id only
func StrictConfig() *Config {
	return &Config{
		EnableEmailFallback: false,
	}
}

// Result holds the two output sequences of a reconciliation. Output order
// equals payment input order; len(Matched)+len(Unmatched) always equals the
// number of payments given.
type Result struct {
	Matched   []*models.MatchedResult   `json:"matched"`
	Unmatched []*models.UnmatchedResult `json:"unmatched"`
}

// String returns a short summary of the result
func (r *Result) String() string {
	return fmt.Sprintf("Result{matched: %d, unmatched: %d}", len(r.Matched), len(r.Unmatched))
}

// Engine matches payments against an indexed set of client records
type Engine struct {
	config *Config
	logger logger.Logger
}

// NewEngine creates a matching engine with the given configuration
func NewEngine(config *Config) *Engine {
	if config == nil {
		config = DefaultConfig()
	}

	return &Engine{
		config: config,
		logger: logger.GetGlobalLogger().WithComponent("matcher"),
	}
}

// Reconcile resolves every payment to zero or one client. It is a pure
// function of its inputs: no I/O, deterministic, re-entrant. An unmatched
// payment is the expected common case, not an error.
func (e *Engine) Reconcile(payments []*models.PaymentRecord, clients []*models.ClientRecord) *Result {
	index := NewClientIndex(clients)

	result := &Result{
		Matched:   make([]*models.MatchedResult, 0, len(payments)),
		Unmatched: make([]*models.UnmatchedResult, 0),
	}

	for _, payment := range payments {
		client, found := e.resolve(index, payment)
		if found {
			result.Matched = append(result.Matched, models.NewMatchedResult(payment, client))
		} else {
			result.Unmatched = append(result.Unmatched, models.NewUnmatchedResult(payment))
		}
	}

	e.logger.WithFields(logger.Fields{
		"payments":       len(payments),
		"clients":        index.Size(),
		"matched":        len(result.Matched),
		"unmatched":      len(result.Unmatched),
		"email_fallback": e.config.EnableEmailFallback,
	}).Debug("Reconciliation complete")

	return result
}

// resolve applies the lookup tiers in precedence order. A reference-id hit
// wins even when the payer email would match a different client.
func (e *Engine) resolve(index *ClientIndex, payment *models.PaymentRecord) (*models.ClientRecord, bool) {
	if client, ok := index.ByReferenceID(payment.PaymentIntentID); ok {
		return client, true
	}

	if e.config.EnableEmailFallback && payment.CustomerEmail != "" {
		if client, ok := index.ByEmail(payment.CustomerEmail); ok {
			return client, true
		}
	}

	return nil, false
}
