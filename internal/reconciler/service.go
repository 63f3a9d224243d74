// Package reconciler orchestrates the reconciliation pipeline: parse the two
// raw exports, match payments to clients, and hand the results back to the
// caller, with an entry point for exporting the report artifact.
package reconciler

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"lusio-reconciliation-service/internal/exporter"
	"lusio-reconciliation-service/internal/matcher"
	"lusio-reconciliation-service/internal/models"
	"lusio-reconciliation-service/internal/parsers"
	apperrors "lusio-reconciliation-service/pkg/errors"
	"lusio-reconciliation-service/pkg/logger"
)

// Config aggregates the component configurations of one service instance
type Config struct {
	PaymentParser *parsers.PaymentParserConfig
	ClientParser  *parsers.ClientParserConfig
	Matcher       *matcher.Config
}

// DefaultConfig returns a service configuration with every component at its
// defaults (email fallback enabled).
func DefaultConfig() *Config {
	return &Config{
		PaymentParser: parsers.DefaultPaymentParserConfig(),
		ClientParser:  parsers.DefaultClientParserConfig(),
		Matcher:       matcher.DefaultConfig(),
	}
}

// Request carries the two raw text blobs supplied by the caller
type Request struct {
	PaymentCSV string
	ClientCSV  string
}

// Summary holds the aggregate numbers of one reconciliation run
type Summary struct {
	AcceptedPayments   int             `json:"accepted_payments"`
	AcceptedClients    int             `json:"accepted_clients"`
	MatchedCount       int             `json:"matched_count"`
	UnmatchedCount     int             `json:"unmatched_count"`
	TotalMatchedAmount decimal.Decimal `json:"total_matched_amount"`
	TotalMatchedFees   decimal.Decimal `json:"total_matched_fees"`
	ProcessingDuration time.Duration   `json:"processing_duration"`
}

// Result is what the caller receives: both result sequences for display,
// parse statistics for each input, and the summary.
type Result struct {
	Matched      []*models.MatchedResult   `json:"matched"`
	Unmatched    []*models.UnmatchedResult `json:"unmatched"`
	PaymentStats *parsers.ParseStats       `json:"payment_stats"`
	ClientStats  *parsers.ParseStats       `json:"client_stats"`
	Summary      *Summary                  `json:"summary"`
}

// Service wires the parser, matcher and exporter components together
type Service struct {
	paymentParser *parsers.PaymentParser
	clientParser  *parsers.ClientParser
	engine        *matcher.Engine
	builder       *exporter.Builder
	logger        logger.Logger
}

// NewService creates a reconciliation service from the given configuration
func NewService(config *Config) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}

	paymentParser, err := parsers.NewPaymentParser(config.PaymentParser)
	if err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "payment_parser", nil, err)
	}

	clientParser, err := parsers.NewClientParser(config.ClientParser)
	if err != nil {
		return nil, apperrors.ConfigurationError(apperrors.CodeInvalidConfig, "client_parser", nil, err)
	}

	return &Service{
		paymentParser: paymentParser,
		clientParser:  clientParser,
		engine:        matcher.NewEngine(config.Matcher),
		builder:       exporter.NewBuilder(),
		logger:        logger.GetGlobalLogger().WithComponent("reconciler"),
	}, nil
}

// Reconcile runs the full pipeline over the two raw exports. The operation
// is one-shot and deterministic; no retries happen anywhere below this call.
func (s *Service) Reconcile(ctx context.Context, request *Request) (*Result, error) {
	if request == nil {
		return nil, apperrors.ValidationError(apperrors.CodeMissingField, "request", nil, nil)
	}

	start := time.Now()

	payments, paymentStats, err := s.paymentParser.ParseString(request.PaymentCSV)
	if err != nil {
		return nil, apperrors.WrapIfNeeded(err, apperrors.CategoryParse, apperrors.CodeInvalidFormat,
			"failed to parse payment export")
	}

	if err := ctx.Err(); err != nil {
		return nil, apperrors.InternalError(apperrors.CodeUnexpectedError, "reconciliation", err)
	}

	clients, clientStats, err := s.clientParser.ParseString(request.ClientCSV)
	if err != nil {
		return nil, apperrors.WrapIfNeeded(err, apperrors.CategoryParse, apperrors.CodeInvalidFormat,
			"failed to parse client export")
	}

	matchResult := s.engine.Reconcile(payments, clients)

	result := &Result{
		Matched:      matchResult.Matched,
		Unmatched:    matchResult.Unmatched,
		PaymentStats: paymentStats,
		ClientStats:  clientStats,
		Summary:      buildSummary(matchResult, paymentStats, clientStats, time.Since(start)),
	}

	s.logger.WithFields(logger.Fields{
		"accepted_payments": result.Summary.AcceptedPayments,
		"accepted_clients":  result.Summary.AcceptedClients,
		"matched":           result.Summary.MatchedCount,
		"unmatched":         result.Summary.UnmatchedCount,
		"duration":          result.Summary.ProcessingDuration,
	}).Info("Reconciliation finished")

	return result, nil
}

// ExportReport builds the month-partitioned spreadsheet from the matched
// results and writes it under dir, returning the artifact path.
func (s *Service) ExportReport(result *Result, dir string) (string, error) {
	if result == nil {
		return "", apperrors.ValidationError(apperrors.CodeMissingField, "result", nil, nil)
	}

	return s.builder.Save(result.Matched, dir)
}

func buildSummary(matchResult *matcher.Result, paymentStats, clientStats *parsers.ParseStats, elapsed time.Duration) *Summary {
	totalAmount := decimal.Zero
	totalFees := decimal.Zero
	for _, m := range matchResult.Matched {
		totalAmount = totalAmount.Add(m.Amount)
		totalFees = totalFees.Add(m.Fee)
	}

	return &Summary{
		AcceptedPayments:   paymentStats.RecordsAccepted,
		AcceptedClients:    clientStats.RecordsAccepted,
		MatchedCount:       len(matchResult.Matched),
		UnmatchedCount:     len(matchResult.Unmatched),
		TotalMatchedAmount: totalAmount,
		TotalMatchedFees:   totalFees,
		ProcessingDuration: elapsed,
	}
}

// String returns a short description of the summary
func (s *Summary) String() string {
	return fmt.Sprintf("Summary{payments: %d, matched: %d, unmatched: %d, amount: %s}",
		s.AcceptedPayments, s.MatchedCount, s.UnmatchedCount, s.TotalMatchedAmount.String())
}
