// Package store provides the key-value backends that hold compatibility verdicts.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	BackendMemory = "memory"
	BackendBadger = "badger"

	DefaultMemorySize = 1024
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("store is closed")

// Entry is one cached verdict.
type Entry struct {
	Value     bool      `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is no longer valid at now.
func (e Entry) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt)
}

// Store is a key-value store with per-entry expiry.
type Store interface {
	// Get returns the entry for key. The bool is false when the key is absent or expired.
	Get(ctx context.Context, key string) (Entry, bool, error)
	// Set overwrites the entry for key.
	Set(ctx context.Context, key string, e Entry) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	Close() error
}

// Config selects and tunes a backend.
type Config struct {
	Backend    string
	Path       string
	Size       int
	InMemory   bool
	GCInterval time.Duration
}

// Open creates the backend named by cfg.Backend. An empty backend means memory.
func Open(cfg Config, logger hclog.Logger) (Store, error) {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	switch strings.ToLower(cfg.Backend) {
	case "", BackendMemory:
		return NewMemory(cfg.Size)
	case BackendBadger:
		bcfg := DefaultBadgerConfig()
		bcfg.Path = cfg.Path
		bcfg.InMemory = cfg.InMemory
		if cfg.GCInterval > 0 {
			bcfg.GCInterval = cfg.GCInterval
		}
		bcfg.Logger = logger.Named("badger")
		return OpenBadger(bcfg)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}
