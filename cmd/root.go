package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/scan-io-git/hposcan/cmd/overview"
	"github.com/scan-io-git/hposcan/cmd/refresh"
	"github.com/scan-io-git/hposcan/cmd/scan"
	"github.com/scan-io-git/hposcan/cmd/version"
	"github.com/scan-io-git/hposcan/cmd/watch"
	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/scanner"
)

var (
	cfgFile   string
	AppConfig *config.Config
	rootCmd   = &cobra.Command{
		Use:                   "hposcan [command]",
		SilenceUsage:          true,
		SilenceErrors:         true,
		DisableFlagsInUseLine: true,
		Short:                 "hposcan finds WooCommerce code that is not ready for High-Performance Order Storage.",
		Long: `hposcan scans WordPress plugin and theme source trees for direct order storage access
	that breaks under High-Performance Order Storage (HPOS), and reports whether each tree
	declares HPOS compatibility.
	`,
	}
)

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is config.yml in the working directory or $HPOSCAN_HOME)")

	rootCmd.AddCommand(scan.ScanCmd)
	rootCmd.AddCommand(overview.OverviewCmd)
	rootCmd.AddCommand(refresh.RefreshCmd)
	rootCmd.AddCommand(watch.WatchCmd)
	rootCmd.AddCommand(version.NewVersionCmd())
}

// Execute runs the root command and returns the process exit code.
func Execute() int {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if code := scanner.ErrorCode(err); code != scanner.CodeInternal {
			fmt.Fprintf(os.Stderr, "Error executing command: %v (code: %s)\n", err, code)
		} else {
			fmt.Fprintf(os.Stderr, "Error executing command: %v\n", err)
		}
		return 1
	}
	return 0
}

func initConfig() {
	var err error

	AppConfig, err = config.LoadConfig(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initializing config file function is crashed - %v \n", err)
		os.Exit(1)
	}
	if err := config.ValidateConfig(AppConfig); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	scan.Init(AppConfig)
	overview.Init(AppConfig)
	refresh.Init(AppConfig)
	watch.Init(AppConfig)
	version.Init(AppConfig)
}
