package overview

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/hposcan/internal/app"
	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/logger"
	"github.com/scan-io-git/hposcan/internal/report"
	"github.com/scan-io-git/hposcan/internal/service"
)

// RunOptionsOverview holds the arguments for the overview command.
type RunOptionsOverview struct {
	InputFile    string
	ForceRefresh bool
	OutputPath   string
}

var (
	AppConfig            *config.Config
	overviewOptions      RunOptionsOverview
	exampleOverviewUsage = `  # Printing the compatibility verdict for every target in a targets file
  hposcan overview --input-file /path/to/targets.yml

  # Recomputing every verdict instead of using cached ones
  hposcan overview --input-file /path/to/targets.yml --force-refresh

  # Checking a couple of directories directly
  hposcan overview /path/to/plugins/shop /path/to/plugins/invoices`
)

// OverviewCmd represents the overview command.
var OverviewCmd = &cobra.Command{
	Use:                   "overview [--force-refresh] [--output/-o PATH] {--input-file/-i PATH | PATH...}",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleOverviewUsage,
	Short:                 "Reports whether each target declares HPOS compatibility",
	RunE:                  runOverviewCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runOverviewCommand executes the overview command.
func runOverviewCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && overviewOptions.InputFile == "" {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-overview")

	if err := validateOverviewArgs(&overviewOptions, args); err != nil {
		logger.Error("invalid overview arguments", "error", err)
		return err
	}

	targets, err := loadTargets(overviewOptions.InputFile, args)
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
	overview, err := a.Service.GetCompatibilityOverview(ctx, targets, overviewOptions.ForceRefresh)
	if err != nil {
		return err
	}

	if err := report.EmitJSON(cmd.OutOrStdout(), overviewOptions.OutputPath, overview); err != nil {
		logger.Error("failed to write overview", "error", err)
		return err
	}

	logger.Debug("overview command completed successfully", "targets", len(overview.Targets))
	return nil
}

func loadTargets(inputFile string, args []string) ([]service.Target, error) {
	if inputFile != "" {
		return service.LoadTargets(inputFile)
	}
	return service.TargetsFromPaths(args)
}

// Initialize flags for the overview command.
func init() {
	OverviewCmd.Flags().StringVarP(&overviewOptions.InputFile, "input-file", "i", "", "Path to a YAML file listing the targets (id, root, name, version, author).")
	OverviewCmd.Flags().BoolVar(&overviewOptions.ForceRefresh, "force-refresh", false, "Recompute every verdict instead of using cached ones.")
	OverviewCmd.Flags().StringVarP(&overviewOptions.OutputPath, "output", "o", "", "Path to the output JSON file. The overview is printed to stdout when omitted.")
	OverviewCmd.Flags().BoolP("help", "h", false, "Show help for the overview command.")
}
