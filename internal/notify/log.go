package notify

import (
	"context"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/hposcan/internal/scanner"
	"github.com/scan-io-git/hposcan/internal/service"
)

// LogObserver writes a one-line summary of each event.
type LogObserver struct {
	Logger hclog.Logger
}

func (o LogObserver) ScanCompleted(_ context.Context, result *scanner.ScanResult) {
	o.Logger.Info("scan completed",
		"id", result.ID,
		"root", result.Root,
		"hpos_compatible", result.Compatible,
		"files", result.FilesScanned,
		"findings", len(result.Findings))
}

func (o LogObserver) CacheRefreshed(_ context.Context, result service.RefreshResult) {
	o.Logger.Info("compatibility cache refreshed",
		"refreshed", result.RefreshedCount,
		"skipped", len(result.Skipped))
}
