package scan

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/scan-io-git/hposcan/internal/report"
)

// validateScanArgs validates the arguments provided to the scan command.
func validateScanArgs(options *RunOptionsScan, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one target path must be specified")
	}

	if _, err := os.Stat(args[0]); os.IsNotExist(err) {
		return fmt.Errorf("the target path does not exist: %v", args[0])
	}

	options.ReportFormat = strings.ToLower(options.ReportFormat)
	if options.ReportFormat == "" {
		options.ReportFormat = report.FormatJSON
	}
	if !slices.Contains(report.Formats, options.ReportFormat) {
		return fmt.Errorf("the 'format' flag must be one of %s", strings.Join(report.Formats, ", "))
	}
	return nil
}
