// Package config assembles component configurations from CLI flag values
package config

import (
	"lusio-reconciliation-service/internal/matcher"
	"lusio-reconciliation-service/internal/parsers"
	"lusio-reconciliation-service/internal/reconciler"
	"lusio-reconciliation-service/internal/reporter"
)

// CreateServiceConfig creates a reconciliation service configuration.
//
// The email-fallback flag controls two coupled behaviors at once: the
// matcher's second lookup tier and the client parser's widened acceptance
// filter. Keeping them on one switch avoids accepting client rows the
// matcher could never use.
func CreateServiceConfig(emailFallback bool) *reconciler.Config {
	config := reconciler.DefaultConfig()

	config.Matcher = &matcher.Config{EnableEmailFallback: emailFallback}

	clientConfig := parsers.DefaultClientParserConfig()
	clientConfig.AcceptByEmail = emailFallback
	config.ClientParser = clientConfig

	return config
}

// CreateReportConfig creates a report configuration for the specified output
// format.
func CreateReportConfig(format string, includeMatched bool) *reporter.ReportConfig {
	config := reporter.DefaultReportConfig()

	switch format {
	case "json":
		config.Format = reporter.FormatJSON
		config.IncludeUnmatched = true
		config.IncludeMatched = includeMatched
	case "csv":
		config.Format = reporter.FormatCSV
		config.CSVHeaders = true
		config.CSVDelimiter = ','
		config.IncludeUnmatched = true
		config.IncludeMatched = true
	default:
		config.Format = reporter.FormatConsole
		config.IncludeUnmatched = true
		config.IncludeMatched = includeMatched
		config.IncludeStats = true
	}

	return config
}
