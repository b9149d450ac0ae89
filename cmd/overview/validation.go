package overview

import (
	"fmt"
)

// validateOverviewArgs validates the arguments provided to the overview command.
func validateOverviewArgs(options *RunOptionsOverview, args []string) error {
	if options.InputFile == "" && len(args) == 0 {
		return fmt.Errorf("either 'input-file' flag or a target path must be specified")
	}
	if options.InputFile != "" && len(args) > 0 {
		return fmt.Errorf("you cannot use an 'input-file' flag and a target path at the same time")
	}
	return nil
}
