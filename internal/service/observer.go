package service

import (
	"context"

	"github.com/scan-io-git/hposcan/internal/scanner"
)

// Observer is notified after a successful scan or cache refresh.
// Implementations must not block for long and must not fail the operation.
type Observer interface {
	ScanCompleted(ctx context.Context, result *scanner.ScanResult)
	CacheRefreshed(ctx context.Context, result RefreshResult)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	OnScan    func(ctx context.Context, result *scanner.ScanResult)
	OnRefresh func(ctx context.Context, result RefreshResult)
}

func (o ObserverFuncs) ScanCompleted(ctx context.Context, result *scanner.ScanResult) {
	if o.OnScan != nil {
		o.OnScan(ctx, result)
	}
}

func (o ObserverFuncs) CacheRefreshed(ctx context.Context, result RefreshResult) {
	if o.OnRefresh != nil {
		o.OnRefresh(ctx, result)
	}
}
