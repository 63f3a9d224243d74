// Package reporter renders reconciliation results for the caller before an
// export is requested: the summary, the unmatched payments that need
// investigation, and optionally the matched rows.
//
// Supported output formats:
//   - Console: human-readable tabular output for terminal display
//   - JSON: structured data for programmatic consumption
//   - CSV: flat rows for spreadsheet applications
package reporter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"lusio-reconciliation-service/internal/reconciler"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatConsole OutputFormat = "console"
	FormatJSON    OutputFormat = "json"
	FormatCSV     OutputFormat = "csv"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatConsole, FormatJSON, FormatCSV:
		return true
	default:
		return false
	}
}

// ReportConfig holds configuration options for report generation
type ReportConfig struct {
	Format OutputFormat `json:"format"`

	IncludeMatched   bool `json:"include_matched"`
	IncludeUnmatched bool `json:"include_unmatched"`
	IncludeStats     bool `json:"include_stats"`

	// CSV options
	CSVDelimiter rune `json:"csv_delimiter"`
	CSVHeaders   bool `json:"csv_headers"`
}

// DefaultReportConfig returns a default report configuration
func DefaultReportConfig() *ReportConfig {
	return &ReportConfig{
		Format:           FormatConsole,
		IncludeMatched:   false,
		IncludeUnmatched: true,
		IncludeStats:     true,
		CSVDelimiter:     ',',
		CSVHeaders:       true,
	}
}

// Validate validates the report configuration
func (c *ReportConfig) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}

	if c.Format == FormatCSV && c.CSVDelimiter == 0 {
		return fmt.Errorf("CSV delimiter cannot be zero")
	}

	return nil
}

// Generator renders reconciliation results in the configured format
type Generator struct {
	config *ReportConfig
}

// NewGenerator creates a report generator with the given configuration
func NewGenerator(config *ReportConfig) (*Generator, error) {
	if config == nil {
		config = DefaultReportConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report config: %w", err)
	}

	return &Generator{config: config}, nil
}

// Generate writes the rendered result to w
func (g *Generator) Generate(result *reconciler.Result, w io.Writer) error {
	if result == nil {
		return fmt.Errorf("result cannot be nil")
	}

	switch g.config.Format {
	case FormatJSON:
		return g.generateJSON(result, w)
	case FormatCSV:
		return g.generateCSV(result, w)
	default:
		return g.generateConsole(result, w)
	}
}

func (g *Generator) generateConsole(result *reconciler.Result, w io.Writer) error {
	fmt.Fprintln(w, "Reconciliation Summary")
	fmt.Fprintln(w, "======================")

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Accepted payments:\t%d\n", result.Summary.AcceptedPayments)
	fmt.Fprintf(tw, "Accepted clients:\t%d\n", result.Summary.AcceptedClients)
	fmt.Fprintf(tw, "Matched:\t%d\n", result.Summary.MatchedCount)
	fmt.Fprintf(tw, "Unmatched:\t%d\n", result.Summary.UnmatchedCount)
	fmt.Fprintf(tw, "Matched amount:\t%s\n", result.Summary.TotalMatchedAmount.StringFixed(2))
	fmt.Fprintf(tw, "Matched fees:\t%s\n", result.Summary.TotalMatchedFees.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}

	if g.config.IncludeStats {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Payment export: %s\n", result.PaymentStats.String())
		fmt.Fprintf(w, "Client export:  %s\n", result.ClientStats.String())
	}

	if g.config.IncludeUnmatched && len(result.Unmatched) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Unmatched Payments")
		fmt.Fprintln(w, "------------------")

		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tAMOUNT\tEMAIL\tPAYMENT INTENT")
		for _, u := range result.Unmatched {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				u.Date, u.Amount.StringFixed(2), u.CustomerEmail, u.PaymentIntentID)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if g.config.IncludeMatched && len(result.Matched) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Matched Payments")
		fmt.Fprintln(w, "----------------")

		tw = tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "DATE\tAMOUNT\tFEE\tCLIENT\tEMAIL\tNIF")
		for _, m := range result.Matched {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				m.Date, m.Amount.StringFixed(2), m.Fee.StringFixed(2), m.ClientName, m.Email, m.NIF)
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	return nil
}

// jsonReport is the wire shape of the JSON report
type jsonReport struct {
	Summary   *reconciler.Summary `json:"summary"`
	Matched   interface{}         `json:"matched,omitempty"`
	Unmatched interface{}         `json:"unmatched,omitempty"`
}

func (g *Generator) generateJSON(result *reconciler.Result, w io.Writer) error {
	report := &jsonReport{Summary: result.Summary}

	if g.config.IncludeMatched {
		report.Matched = result.Matched
	}
	if g.config.IncludeUnmatched {
		report.Unmatched = result.Unmatched
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

func (g *Generator) generateCSV(result *reconciler.Result, w io.Writer) error {
	writer := csv.NewWriter(w)
	writer.Comma = g.config.CSVDelimiter
	defer writer.Flush()

	if g.config.CSVHeaders {
		header := []string{"status", "date", "amount", "fee", "client_name", "email", "nif", "payment_intent_id"}
		if err := writer.Write(header); err != nil {
			return err
		}
	}

	if g.config.IncludeMatched {
		for _, m := range result.Matched {
			row := []string{"matched", m.Date, m.Amount.StringFixed(2), m.Fee.StringFixed(2),
				m.ClientName, m.Email, m.NIF, ""}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	if g.config.IncludeUnmatched {
		for _, u := range result.Unmatched {
			row := []string{"unmatched", u.Date, u.Amount.StringFixed(2), "",
				"", u.CustomerEmail, "", u.PaymentIntentID}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}

	writer.Flush()
	return writer.Error()
}
