package main

import (
	"fmt"
	"os"

	"lusio-reconciliation-service/cmd/reconciler/cmd"
	apperrors "lusio-reconciliation-service/pkg/errors"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apperrors.FormatForDisplay(err))

		exitCode := 1
		if reconcilerErr, ok := apperrors.AsReconcilerError(err); ok {
			exitCode = reconcilerErr.GetExitCode()
		}
		os.Exit(exitCode)
	}
}
