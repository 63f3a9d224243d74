package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"lusio-reconciliation-service/cmd/reconciler/config"
	"lusio-reconciliation-service/internal/reconciler"
	"lusio-reconciliation-service/internal/reporter"
	apperrors "lusio-reconciliation-service/pkg/errors"
	"lusio-reconciliation-service/pkg/logger"
)

// Flags for the reconcile command
var (
	paymentsFile   string
	clientsFile    string
	outputFormat   string
	outputFile     string
	exportDir      string
	doExport       bool
	emailFallback  bool
	includeMatched bool
)

// reconcileCmd represents the reconcile command
var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Reconcile a payment export against the client registry",
	Long: `Reconcile matches each payment from the processor export to a client
record from the registry export, by payment reference id first and, unless
disabled, by normalized email as a fallback.

This command requires:
- A payment export file (comma-delimited CSV, Stripe column headers)
- A client registry export file (semicolon-delimited CSV)

Examples:
  # Basic reconciliation with console output
  reconciler reconcile --payments-file payments.csv --clients-file clients.csv

  # JSON results and spreadsheet export into ./reports
  reconciler reconcile -p payments.csv -c clients.csv \
    --output-format json --export-dir ./reports

  # Strict matching by reference id only
  reconciler reconcile -p payments.csv -c clients.csv --email-fallback=false

  # Skip the spreadsheet artifact
  reconciler reconcile -p payments.csv -c clients.csv --export=false`,

	PreRunE: validateReconcileFlags,
	RunE:    runReconcile,
}

func init() {
	rootCmd.AddCommand(reconcileCmd)

	// Required flags
	reconcileCmd.Flags().StringVarP(&paymentsFile, "payments-file", "p", "", "path to payment export CSV file (required)")
	reconcileCmd.Flags().StringVarP(&clientsFile, "clients-file", "c", "", "path to client registry export CSV file (required)")

	// Output flags
	reconcileCmd.Flags().StringVarP(&outputFormat, "output-format", "f", "console", "output format: console, json, csv")
	reconcileCmd.Flags().StringVarP(&outputFile, "output-file", "o", "", "output file path (default: stdout)")
	reconcileCmd.Flags().BoolVar(&includeMatched, "include-matched", false, "include matched payments in the output")

	// Export flags
	reconcileCmd.Flags().BoolVar(&doExport, "export", true, "write the spreadsheet artifact")
	reconcileCmd.Flags().StringVar(&exportDir, "export-dir", ".", "directory for the spreadsheet artifact")

	// Matching flags
	reconcileCmd.Flags().BoolVar(&emailFallback, "email-fallback", true, "fall back to normalized email matching when the reference id misses")

	reconcileCmd.MarkFlagRequired("payments-file")
	reconcileCmd.MarkFlagRequired("clients-file")

	// Bind flags to viper
	viper.BindPFlag("payments-file", reconcileCmd.Flags().Lookup("payments-file"))
	viper.BindPFlag("clients-file", reconcileCmd.Flags().Lookup("clients-file"))
	viper.BindPFlag("output-format", reconcileCmd.Flags().Lookup("output-format"))
	viper.BindPFlag("output-file", reconcileCmd.Flags().Lookup("output-file"))
	viper.BindPFlag("include-matched", reconcileCmd.Flags().Lookup("include-matched"))
	viper.BindPFlag("export", reconcileCmd.Flags().Lookup("export"))
	viper.BindPFlag("export-dir", reconcileCmd.Flags().Lookup("export-dir"))
	viper.BindPFlag("email-fallback", reconcileCmd.Flags().Lookup("email-fallback"))
}

func validateReconcileFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	paymentsFile = viper.GetString("payments-file")
	clientsFile = viper.GetString("clients-file")
	outputFormat = viper.GetString("output-format")
	outputFile = viper.GetString("output-file")
	includeMatched = viper.GetBool("include-matched")
	doExport = viper.GetBool("export")
	exportDir = viper.GetString("export-dir")
	emailFallback = viper.GetBool("email-fallback")

	if paymentsFile == "" {
		return fmt.Errorf("payments-file is required")
	}
	if clientsFile == "" {
		return fmt.Errorf("clients-file is required")
	}

	if err := validateFileExists(paymentsFile, "payment export file"); err != nil {
		return err
	}
	if err := validateFileExists(clientsFile, "client registry export file"); err != nil {
		return err
	}

	validFormats := map[string]bool{"console": true, "json": true, "csv": true}
	if !validFormats[outputFormat] {
		return fmt.Errorf("invalid output format '%s'. Valid formats: console, json, csv", outputFormat)
	}

	if outputFile != "" {
		dir := filepath.Dir(outputFile)
		if dir != "." {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				return fmt.Errorf("output directory does not exist: %s", dir)
			}
		}
	}

	if doExport {
		info, err := os.Stat(exportDir)
		if os.IsNotExist(err) {
			return fmt.Errorf("export directory does not exist: %s", exportDir)
		}
		if err != nil {
			return fmt.Errorf("error accessing export directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("export-dir is not a directory: %s", exportDir)
		}
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	return nil
}

func runReconcile(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if viper.GetBool("verbose") {
		logger.SetGlobalLogger(mustLogger(logger.DebugConfig()))
	}

	paymentCSV, err := os.ReadFile(paymentsFile)
	if err != nil {
		return apperrors.FileError(apperrors.CodeFileNotFound, paymentsFile, err)
	}

	clientCSV, err := os.ReadFile(clientsFile)
	if err != nil {
		return apperrors.FileError(apperrors.CodeFileNotFound, clientsFile, err)
	}

	service, err := reconciler.NewService(config.CreateServiceConfig(emailFallback))
	if err != nil {
		return err
	}

	result, err := service.Reconcile(ctx, &reconciler.Request{
		PaymentCSV: string(paymentCSV),
		ClientCSV:  string(clientCSV),
	})
	if err != nil {
		return err
	}

	generator, err := reporter.NewGenerator(config.CreateReportConfig(outputFormat, includeMatched))
	if err != nil {
		return fmt.Errorf("failed to create report generator: %w", err)
	}

	var output *os.File
	if outputFile != "" {
		output, err = os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer output.Close()
	} else {
		output = os.Stdout
	}

	if err := generator.Generate(result, output); err != nil {
		return fmt.Errorf("failed to generate report: %w", err)
	}

	if doExport {
		path, err := service.ExportReport(result, exportDir)
		if err != nil {
			// An empty matched set is not a failed run; say so and move on.
			if apperrors.HasCode(err, apperrors.CodeNothingToExport) {
				fmt.Fprintln(os.Stderr, "No matched payments; skipping spreadsheet export.")
				return nil
			}
			return err
		}
		fmt.Fprintf(os.Stderr, "Report written to %s\n", path)
	}

	return nil
}

func mustLogger(cfg *logger.Config) logger.Logger {
	log, err := logger.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	return log
}
