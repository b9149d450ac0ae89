package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/hashicorp/go-hclog"
)

// BadgerConfig holds configuration for the persistent backend.
type BadgerConfig struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path     string
	InMemory bool
	// SyncWrites makes every write durable before returning.
	SyncWrites bool
	// GCInterval is how often value log GC runs. Zero disables it.
	GCInterval     time.Duration
	GCDiscardRatio float64
	Logger         hclog.Logger
}

// DefaultBadgerConfig returns production defaults: synchronous writes and value log GC every 5 minutes.
func DefaultBadgerConfig() BadgerConfig {
	return BadgerConfig{
		SyncWrites:     true,
		GCInterval:     5 * time.Minute,
		GCDiscardRatio: 0.5,
	}
}

// badgerLogger forwards badger's internal logging to hclog.
type badgerLogger struct {
	logger hclog.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Trace(fmt.Sprintf(format, args...))
}

// Badger stores entries in BadgerDB using its native per-key TTL.
type Badger struct {
	db       *badger.DB
	gcRunner *gcRunner
	once     sync.Once

	// Now is the clock used to derive TTLs and check expiry.
	Now func() time.Time
}

// OpenBadger opens (or creates) a BadgerDB-backed store.
func OpenBadger(cfg BadgerConfig) (*Badger, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("path is required for persistent cache")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0o750); err != nil {
			return nil, fmt.Errorf("create cache directory %q: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}
	opts = opts.WithSyncWrites(cfg.SyncWrites).WithNumVersionsToKeep(1)
	if cfg.Logger != nil {
		opts = opts.WithLogger(&badgerLogger{logger: cfg.Logger})
	} else {
		opts = opts.WithLogger(nil)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}

	b := &Badger{db: db, Now: time.Now}
	if cfg.GCInterval > 0 && !cfg.InMemory {
		b.gcRunner = newGCRunner(db, cfg.GCInterval, cfg.GCDiscardRatio, cfg.Logger)
		b.gcRunner.start()
	}
	return b, nil
}

func (b *Badger) Get(_ context.Context, key string) (Entry, bool, error) {
	if b.db.IsClosed() {
		return Entry{}, false, ErrClosed
	}

	var e Entry
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &e)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("read %q: %w", key, err)
	}
	if e.Expired(b.Now()) {
		return Entry{}, false, nil
	}
	return e, true, nil
}

// Set writes e with a TTL matching its expiry. An already expired entry removes the key.
func (b *Badger) Set(ctx context.Context, key string, e Entry) error {
	if b.db.IsClosed() {
		return ErrClosed
	}

	ttl := e.ExpiresAt.Sub(b.Now())
	if ttl <= 0 {
		return b.Delete(ctx, key)
	}
	val, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %q: %w", key, err)
	}
	err = b.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), val).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("write %q: %w", key, err)
	}
	return nil
}

func (b *Badger) Delete(_ context.Context, key string) error {
	if b.db.IsClosed() {
		return ErrClosed
	}
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(key))
	})
	if err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

// Close stops value log GC and closes the database. Safe to call more than once.
func (b *Badger) Close() error {
	var err error
	b.once.Do(func() {
		if b.gcRunner != nil {
			b.gcRunner.stop()
		}
		err = b.db.Close()
	})
	return err
}

// gcRunner runs periodic value log garbage collection.
type gcRunner struct {
	db       *badger.DB
	interval time.Duration
	ratio    float64
	stopCh   chan struct{}
	doneCh   chan struct{}
	logger   hclog.Logger
}

func newGCRunner(db *badger.DB, interval time.Duration, ratio float64, logger hclog.Logger) *gcRunner {
	if ratio <= 0 || ratio > 1 {
		ratio = 0.5
	}
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &gcRunner{
		db:       db,
		interval: interval,
		ratio:    ratio,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
		logger:   logger,
	}
}

func (r *gcRunner) start() {
	go r.run()
}

func (r *gcRunner) stop() {
	close(r.stopCh)
	<-r.doneCh
}

func (r *gcRunner) run() {
	defer close(r.doneCh)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case <-ticker.C:
			// ErrNoRewrite means there was nothing to collect
			if err := r.db.RunValueLogGC(r.ratio); err != nil && !errors.Is(err, badger.ErrNoRewrite) {
				r.logger.Warn("value log GC failed", "error", err)
			} else if err == nil {
				r.logger.Debug("value log GC completed")
			}
		}
	}
}
