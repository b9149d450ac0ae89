// Package compat memoizes per-tree compatibility verdicts behind a TTL store.
package compat

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/scan-io-git/hposcan/internal/store"
)

const (
	KeyPrefix  = "hpos_compatibility_"
	DefaultTTL = 24 * time.Hour
)

// ErrCacheUnavailable is returned when the backing store fails.
var ErrCacheUnavailable = errors.New("compatibility cache unavailable")

// Detector computes a fresh verdict for a tree.
type Detector interface {
	Detect(ctx context.Context, root string) (bool, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ctx context.Context, root string) (bool, error)

func (f DetectorFunc) Detect(ctx context.Context, root string) (bool, error) { return f(ctx, root) }

// RefreshSummary describes one bulk refresh.
type RefreshSummary struct {
	Refreshed   int       `json:"refreshed_count"`
	Skipped     []string  `json:"skipped,omitempty"`
	LastUpdated time.Time `json:"last_updated"`
}

// Cache is a read-through verdict cache.
type Cache struct {
	store    store.Store
	detector Detector
	logger   hclog.Logger

	// TTL is the lifetime of a written verdict.
	TTL time.Duration
	// Now is the clock used for expiry.
	Now func() time.Time
}

// New creates a Cache over st, computing misses with det.
func New(st store.Store, det Detector, logger hclog.Logger) *Cache {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Cache{
		store:    st,
		detector: det,
		logger:   logger,
		TTL:      DefaultTTL,
		Now:      time.Now,
	}
}

// Key derives the store key for root from its absolute, cleaned path.
func Key(root string) (string, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", root, err)
	}
	sum := md5.Sum([]byte(filepath.Clean(abs)))
	return KeyPrefix + hex.EncodeToString(sum[:]), nil
}

// Verdict returns whether root declares compatibility. A fresh cached value is returned
// unless forceRefresh is set; otherwise the detector runs and the result is written back.
// A root that is not a readable directory is reported as false without touching the store.
func (c *Cache) Verdict(ctx context.Context, root string, forceRefresh bool) (bool, error) {
	if !ReadableDir(root) {
		lookupsTotal.WithLabelValues("unreadable").Inc()
		c.logger.Debug("target is not a readable directory", "root", root)
		return false, nil
	}

	key, err := Key(root)
	if err != nil {
		return false, err
	}

	if !forceRefresh {
		e, ok, err := c.store.Get(ctx, key)
		if err != nil {
			return false, c.storeError("get", key, err)
		}
		if ok && !e.Expired(c.Now()) {
			lookupsTotal.WithLabelValues("hit").Inc()
			return e.Value, nil
		}
		lookupsTotal.WithLabelValues("miss").Inc()
	} else {
		lookupsTotal.WithLabelValues("forced").Inc()
	}

	value, err := c.detector.Detect(ctx, root)
	if err != nil {
		return false, err
	}
	detectorRunsTotal.WithLabelValues(strconv.FormatBool(value)).Inc()

	entry := store.Entry{Value: value, ExpiresAt: c.Now().Add(c.ttl())}
	if err := c.store.Set(ctx, key, entry); err != nil {
		return false, c.storeError("set", key, err)
	}
	c.logger.Debug("verdict cached", "root", root, "compatible", value, "expires_at", entry.ExpiresAt)
	return value, nil
}

// Invalidate removes the cached verdict for root.
func (c *Cache) Invalidate(ctx context.Context, root string) error {
	key, err := Key(root)
	if err != nil {
		return err
	}
	if err := c.store.Delete(ctx, key); err != nil {
		return c.storeError("delete", key, err)
	}
	return nil
}

// RefreshAll invalidates and recomputes every root in order. Roots that are not readable
// directories are invalidated and listed in Skipped; the batch continues past them.
func (c *Cache) RefreshAll(ctx context.Context, roots []string) (RefreshSummary, error) {
	var summary RefreshSummary

	for _, root := range roots {
		if err := ctx.Err(); err != nil {
			return RefreshSummary{}, err
		}
		if err := c.Invalidate(ctx, root); err != nil {
			return RefreshSummary{}, err
		}
		if !ReadableDir(root) {
			refreshesTotal.WithLabelValues("skipped").Inc()
			c.logger.Warn("skipping unreadable target", "root", root)
			summary.Skipped = append(summary.Skipped, root)
			continue
		}
		if _, err := c.Verdict(ctx, root, true); err != nil {
			return RefreshSummary{}, err
		}
		refreshesTotal.WithLabelValues("refreshed").Inc()
		summary.Refreshed++
	}

	summary.LastUpdated = c.Now()
	return summary, nil
}

func (c *Cache) ttl() time.Duration {
	if c.TTL <= 0 {
		return DefaultTTL
	}
	return c.TTL
}

func (c *Cache) storeError(op, key string, err error) error {
	storeErrorsTotal.WithLabelValues(op).Inc()
	c.logger.Error("cache store failed", "operation", op, "key", key, "error", err)
	return fmt.Errorf("%w: %s %s: %w", ErrCacheUnavailable, op, key, err)
}

// ReadableDir reports whether path is a directory whose entries can be listed.
func ReadableDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return false
	}
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	_, err = f.Readdirnames(1)
	return err == nil || errors.Is(err, io.EOF)
}
