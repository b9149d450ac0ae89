package refresh

import (
	"fmt"

	"github.com/scan-io-git/hposcan/pkg/shared/files"
)

// validateRefreshArgs validates the arguments provided to the refresh command.
func validateRefreshArgs(options *RunOptionsRefresh, args []string) error {
	if options.InputFile == "" && len(args) == 0 {
		return fmt.Errorf("either 'input-file' flag or a target path must be specified")
	}
	if options.InputFile != "" && len(args) > 0 {
		return fmt.Errorf("you cannot use an 'input-file' flag and a target path at the same time")
	}
	if options.InputFile != "" {
		if err := files.ValidatePath(options.InputFile); err != nil {
			return fmt.Errorf("the 'input-file' flag is invalid: %w", err)
		}
	}
	return nil
}
