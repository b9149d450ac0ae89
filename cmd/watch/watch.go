package watch

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/scan-io-git/hposcan/internal/app"
	"github.com/scan-io-git/hposcan/internal/config"
	"github.com/scan-io-git/hposcan/internal/logger"
	"github.com/scan-io-git/hposcan/internal/report"
	fswatch "github.com/scan-io-git/hposcan/internal/watch"
)

// RunOptionsWatch holds the arguments for the watch command.
type RunOptionsWatch struct {
	ReportFormat string
	OutputPath   string
	MetricsAddr  string
	Debounce     time.Duration
}

var (
	AppConfig         *config.Config
	watchOptions      RunOptionsWatch
	exampleWatchUsage = `  # Re-scanning a plugin whenever its files change
  hposcan watch /path/to/my-plugin

  # Keeping a text report up to date and exposing Prometheus metrics
  hposcan watch --format text --output /path/to/report.md --metrics-addr 127.0.0.1:9102 /path/to/my-plugin`
)

// WatchCmd represents the watch command.
var WatchCmd = &cobra.Command{
	Use:                   "watch [--format/-f json|sarif|text] [--output/-o PATH] [--metrics-addr HOST:PORT] PATH",
	SilenceUsage:          true,
	DisableFlagsInUseLine: true,
	Example:               exampleWatchUsage,
	Short:                 "Re-scans a source tree every time it changes",
	RunE:                  runWatchCommand,
}

// Init initializes the global configuration variable.
func Init(cfg *config.Config) {
	AppConfig = cfg
}

// runWatchCommand executes the watch command.
func runWatchCommand(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}

	logger := logger.NewLogger(AppConfig, "core-watch")

	if watchOptions.MetricsAddr == "" && AppConfig != nil {
		watchOptions.MetricsAddr = AppConfig.Metrics.Listen
	}
	if err := validateWatchArgs(&watchOptions, args); err != nil {
		logger.Error("invalid watch arguments", "error", err)
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

	if watchOptions.MetricsAddr != "" {
		stop := serveMetrics(watchOptions.MetricsAddr, logger)
		defer stop()
	}

	target := args[0]
	rescan := func(ctx context.Context) {
		result, err := a.Service.ScanTarget(ctx, target)
		if err != nil {
			return
		}
		if _, err := report.WriteTo(cmd.OutOrStdout(), watchOptions.OutputPath, watchOptions.ReportFormat, result); err != nil {
			logger.Error("failed to write report", "error", err)
		}
	}

	rescan(ctx)
	w := &fswatch.Watcher{Trigger: rescan, Debounce: watchOptions.Debounce, Logger: logger.Named("fsnotify")}
	return w.Run(ctx, target)
}

// serveMetrics exposes the Prometheus registry on addr and returns a shutdown func.
func serveMetrics(addr string, logger hclog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("failed to stop metrics server", "error", err)
		}
	}
}

// Initialize flags for the watch command.
func init() {
	WatchCmd.Flags().StringVarP(&watchOptions.ReportFormat, "format", "f", report.FormatJSON, "Format for the report with results: json, sarif or text.")
	WatchCmd.Flags().StringVarP(&watchOptions.OutputPath, "output", "o", "", "Path to the output file or directory. Reports are printed to stdout when omitted.")
	WatchCmd.Flags().StringVar(&watchOptions.MetricsAddr, "metrics-addr", "", "Address to serve Prometheus metrics on, e.g. 127.0.0.1:9102. Defaults to metrics.listen from the config.")
	WatchCmd.Flags().DurationVar(&watchOptions.Debounce, "debounce", fswatch.DefaultDebounce, "Quiet period after the last change before re-scanning.")
	WatchCmd.Flags().BoolP("help", "h", false, "Show help for the watch command.")
}
