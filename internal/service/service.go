// Package service exposes the three caller-facing operations: scanning a target,
// the compatibility overview and the bulk cache refresh.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/hposcan/internal/compat"
	"github.com/scan-io-git/hposcan/internal/scanner"
)

const (
	CacheStatusCached    = "cached"
	CacheStatusRefreshed = "refreshed"

	RefreshedMessage = "Compatibility cache refreshed successfully."
)

// OverviewEntry is the verdict for one target.
type OverviewEntry struct {
	Meta
	Root       string `json:"root"`
	Compatible bool   `json:"compatible"`
}

// Overview is the result of GetCompatibilityOverview.
type Overview struct {
	Targets     map[string]OverviewEntry `json:"targets"`
	CacheStatus string                   `json:"cache_status"`
	LastUpdated time.Time                `json:"last_updated"`
}

// RefreshResult is the result of RefreshCompatibilityCache.
type RefreshResult struct {
	RefreshedCount int       `json:"refreshed_count"`
	Skipped        []string  `json:"skipped,omitempty"`
	Message        string    `json:"message"`
	LastUpdated    time.Time `json:"last_updated"`
}

// Scanner runs a single scan.
type Scanner interface {
	Scan(ctx context.Context, target string) (*scanner.ScanResult, error)
}

// VerdictCache is the subset of the compatibility cache the service needs.
type VerdictCache interface {
	Verdict(ctx context.Context, root string, forceRefresh bool) (bool, error)
	RefreshAll(ctx context.Context, roots []string) (compat.RefreshSummary, error)
}

// Service wires the scanner and the cache behind the external operations.
type Service struct {
	scan   Scanner
	cache  VerdictCache
	logger hclog.Logger

	mu        sync.RWMutex
	observers []Observer

	// Now stamps overview and refresh results.
	Now func() time.Time
}

// New creates a Service.
func New(scan Scanner, cache VerdictCache, logger hclog.Logger) *Service {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Service{
		scan:   scan,
		cache:  cache,
		logger: logger,
		Now:    time.Now,
	}
}

// Register adds an observer notified after successful scans and refreshes.
func (s *Service) Register(o Observer) {
	if o == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// ScanTarget scans a directory, or the directory containing a file.
func (s *Service) ScanTarget(ctx context.Context, rootPathOrFile string) (*scanner.ScanResult, error) {
	result, err := s.scan.Scan(ctx, rootPathOrFile)
	if err != nil {
		return nil, err
	}
	for _, o := range s.snapshotObservers() {
		o.ScanCompleted(ctx, result)
	}
	return result, nil
}

// GetCompatibilityOverview returns the verdict for every target. Unreadable targets are
// included as not compatible. Cache failures abort the whole overview.
func (s *Service) GetCompatibilityOverview(ctx context.Context, targets []Target, forceRefresh bool) (Overview, error) {
	overview := Overview{
		Targets:     make(map[string]OverviewEntry, len(targets)),
		CacheStatus: CacheStatusCached,
	}
	if forceRefresh {
		overview.CacheStatus = CacheStatusRefreshed
	}

	for _, t := range targets {
		if err := ctx.Err(); err != nil {
			return Overview{}, err
		}
		compatible, err := s.cache.Verdict(ctx, t.Root, forceRefresh)
		if err != nil {
			s.logger.Error("failed to get compatibility verdict", "target", t.ID, "error", err)
			return Overview{}, err
		}
		overview.Targets[t.ID] = OverviewEntry{
			Meta:       t.Meta,
			Root:       t.Root,
			Compatible: compatible,
		}
	}

	overview.LastUpdated = s.Now()
	s.logger.Debug("overview built", "targets", len(targets), "cache_status", overview.CacheStatus)
	return overview, nil
}

// RefreshCompatibilityCache invalidates and recomputes every target's verdict.
func (s *Service) RefreshCompatibilityCache(ctx context.Context, targets []Target) (RefreshResult, error) {
	roots := make([]string, 0, len(targets))
	for _, t := range targets {
		roots = append(roots, t.Root)
	}

	summary, err := s.cache.RefreshAll(ctx, roots)
	if err != nil {
		s.logger.Error("cache refresh failed", "error", err)
		return RefreshResult{}, err
	}

	result := RefreshResult{
		RefreshedCount: summary.Refreshed,
		Skipped:        summary.Skipped,
		Message:        RefreshedMessage,
		LastUpdated:    s.Now(),
	}
	s.logger.Info("cache refreshed", "refreshed", result.RefreshedCount, "skipped", len(result.Skipped))
	for _, o := range s.snapshotObservers() {
		o.CacheRefreshed(ctx, result)
	}
	return result, nil
}

func (s *Service) snapshotObservers() []Observer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Observer, len(s.observers))
	copy(out, s.observers)
	return out
}
