package watch

import (
	"fmt"
	"net"
	"os"
	"slices"
	"strings"

	"github.com/scan-io-git/hposcan/internal/report"
)

// validateWatchArgs validates the arguments provided to the watch command.
func validateWatchArgs(options *RunOptionsWatch, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("exactly one target directory must be specified")
	}

	info, err := os.Stat(args[0])
	if os.IsNotExist(err) {
		return fmt.Errorf("the target path does not exist: %v", args[0])
	}
	if err != nil {
		return fmt.Errorf("the target path is not accessible: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("the target path must be a directory: %v", args[0])
	}

	options.ReportFormat = strings.ToLower(options.ReportFormat)
	if options.ReportFormat == "" {
		options.ReportFormat = report.FormatJSON
	}
	if !slices.Contains(report.Formats, options.ReportFormat) {
		return fmt.Errorf("the 'format' flag must be one of %s", strings.Join(report.Formats, ", "))
	}

	if options.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(options.MetricsAddr); err != nil {
			return fmt.Errorf("the 'metrics-addr' flag is invalid: %w", err)
		}
	}
	if options.Debounce < 0 {
		return fmt.Errorf("the 'debounce' flag must not be negative")
	}
	return nil
}
