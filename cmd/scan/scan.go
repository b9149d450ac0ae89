package scan

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/hposcan/internal/app"
	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/logger"
	"github.com/scan-io-git/hposcan/internal/report"
)

// RunOptionsScan holds the arguments for the scan command.
type RunOptionsScan struct {
	ReportFormat string
	OutputPath   string
}

var (
	AppConfig        *config.Config
	scanOptions      RunOptionsScan
	exampleScanUsage = `  # Scanning a plugin directory and printing JSON results
  hposcan scan /path/to/wp-content/plugins/my-plugin

  # Scanning the directory that contains a file
  hposcan scan /path/to/my-plugin/my-plugin.php

  # Printing a human-readable report
  hposcan scan --format text /path/to/my-plugin

  # Saving a SARIF report into a directory
  hposcan scan --format sarif --output /path/to/reports /path/to/my-plugin`
)

// ScanCmd represents the scan command.
var ScanCmd = &cobra.Command{
	Use:                   "scan [--format/-f json|sarif|text] [--output/-o PATH] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleScanUsage,
	Short:                 "Scans a source tree for code incompatible with HPOS",
	RunE:                  runScanCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runScanCommand executes the scan command.
func runScanCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-scan")

	if err := validateScanArgs(&scanOptions, args); err != nil {
		logger.Error("invalid scan arguments", "error", err)
		return err
	}

	a, err := app.New(AppConfig, logger)
	if err != nil {
		logger.Error("failed to initialize scan pipeline", "error", err)
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := a.Service.ScanTarget(ctx, args[0])
	if err != nil {
		return err
	}

	path, err := report.WriteTo(cmd.OutOrStdout(), scanOptions.OutputPath, scanOptions.ReportFormat, result)
	if err != nil {
		logger.Error("failed to write report", "error", err)
		return err
	}
	if path != "" {
		logger.Info("report saved", "path", path)
	}

	logger.Debug("scan command completed successfully")
	return nil
}

// Initialize flags for the scan command.
func init() {
	ScanCmd.Flags().StringVarP(&scanOptions.ReportFormat, "format", "f", report.FormatJSON, "Format for the report with results: json, sarif or text.")
	ScanCmd.Flags().StringVarP(&scanOptions.OutputPath, "output", "o", "", "Path to the output file or directory. Results are printed to stdout when omitted.")
	ScanCmd.Flags().BoolP("help", "h", false, "Show help for the scan command.")
}
