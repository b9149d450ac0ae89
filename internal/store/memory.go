package store

import (
	"context"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Memory is a bounded in-process store. Least recently used entries are evicted when full.
type Memory struct {
	cache  *lru.Cache[string, Entry]
	closed atomic.Bool

	// Now is the clock used for expiry checks.
	Now func() time.Time
}

// NewMemory creates a Memory store holding at most size entries.
func NewMemory(size int) (*Memory, error) {
	if size <= 0 {
		size = DefaultMemorySize
	}
	cache, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, err
	}
	return &Memory{cache: cache, Now: time.Now}, nil
}

func (m *Memory) Get(_ context.Context, key string) (Entry, bool, error) {
	if m.closed.Load() {
		return Entry{}, false, ErrClosed
	}
	e, ok := m.cache.Get(key)
	if !ok {
		return Entry{}, false, nil
	}
	if e.Expired(m.Now()) {
		m.cache.Remove(key)
		return Entry{}, false, nil
	}
	return e, true, nil
}

func (m *Memory) Set(_ context.Context, key string, e Entry) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.cache.Add(key, e)
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	if m.closed.Load() {
		return ErrClosed
	}
	m.cache.Remove(key)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	return m.cache.Len()
}

func (m *Memory) Close() error {
	if m.closed.Swap(true) {
		return nil
	}
	m.cache.Purge()
	return nil
}
