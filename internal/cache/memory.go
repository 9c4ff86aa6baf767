package cache

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// sweepInterval bounds how often Set scans for expired entries.
const sweepInterval = time.Minute

type memoryCache struct {
	mu        sync.RWMutex
	items     map[string]entry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemory() Cache {
	return &memoryCache{items: make(map[string]entry), now: time.Now}
}

func (m *memoryCache) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	e, ok := m.items[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrMiss
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		m.mu.Lock()
		delete(m.items, key)
		m.mu.Unlock()
		return nil, ErrMiss
	}
	return e.value, nil
}

// Set stores value and drops expired entries at most once per
// sweepInterval, so keys that are never read again do not pile up.
func (m *memoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	now := m.now()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = now.Add(ttl)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if now.Sub(m.lastSweep) >= sweepInterval {
		m.sweep(now)
		m.lastSweep = now
	}
	m.items[key] = e
	return nil
}

func (m *memoryCache) sweep(now time.Time) {
	for k, e := range m.items {
		if !e.expiresAt.IsZero() && !now.Before(e.expiresAt) {
			delete(m.items, k)
		}
	}
}

func (m *memoryCache) Delete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	for _, k := range keys {
		delete(m.items, k)
	}
	m.mu.Unlock()
	return nil
}
