package refresh

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/hposcan/internal/app"
	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/logger"
	"github.com/scan-io-git/hposcan/internal/report"
	"github.com/scan-io-git/hposcan/internal/service"
)

// RunOptionsRefresh holds the arguments for the refresh command.
type RunOptionsRefresh struct {
	InputFile  string
	OutputPath string
}

var (
	AppConfig           *config.Config
	refreshOptions      RunOptionsRefresh
	exampleRefreshUsage = `  # Recomputing the cached verdicts of every target in a targets file
  hposcan refresh --input-file /path/to/targets.yml

  # Refreshing a single directory
  hposcan refresh /path/to/plugins/shop`
)

// RefreshCmd represents the refresh command.
var RefreshCmd = &cobra.Command{
	Use:                   "refresh [--output/-o PATH] {--input-file/-i PATH | PATH...}",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleRefreshUsage,
	Short:                 "Invalidates and recomputes cached compatibility verdicts",
	Long: `Invalidates and recomputes cached compatibility verdicts.

Refreshing only has a lasting effect with a persistent cache backend (cache.backend: badger).`,
	RunE: runRefreshCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runRefreshCommand executes the refresh command.
func runRefreshCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && refreshOptions.InputFile == "" {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-refresh")

	if err := validateRefreshArgs(&refreshOptions, args); err != nil {
		logger.Error("invalid refresh arguments", "error", err)
		return err
	}

	var (
		targets []service.Target
		err     error
	)
	if refreshOptions.InputFile != "" {
		targets, err = service.LoadTargets(refreshOptions.InputFile)
	} else {
		targets, err = service.TargetsFromPaths(args)
	}
	if err != nil {
		logger.Error("failed to load targets", "error", err)
		return err
	}

	a, err := app.New(AppConfig, logger)
	if err != nil {
		logger.Error("failed to initialize compatibility cache", "error", err)
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	result, err := a.Service.RefreshCompatibilityCache(ctx, targets)
	if err != nil {
		return err
	}

	if err := report.EmitJSON(cmd.OutOrStdout(), refreshOptions.OutputPath, result); err != nil {
		logger.Error("failed to write refresh result", "error", err)
		return err
	}
	return nil
}

// Initialize flags for the refresh command.
func init() {
	RefreshCmd.Flags().StringVarP(&refreshOptions.InputFile, "input-file", "i", "", "Path to a YAML file listing the targets (id, root, name, version, author).")
	RefreshCmd.Flags().StringVarP(&refreshOptions.OutputPath, "output", "o", "", "Path to the output JSON file. The result is printed to stdout when omitted.")
	RefreshCmd.Flags().BoolP("help", "h", false, "Show help for the refresh command.")
}
