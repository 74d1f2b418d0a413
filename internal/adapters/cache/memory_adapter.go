package cache

import (
	"context"
	"sync"
	"time"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

// MemoryAdapter is an in-process cache and rate limiter for single
// instance deployments without Redis.
type MemoryAdapter struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	value     []byte
	count     int64
	expiresAt time.Time
}

var (
	_ providers.CacheProvider = (*MemoryAdapter)(nil)
	_ providers.RateLimiter   = (*MemoryAdapter)(nil)
)

// NewMemoryAdapter creates an empty in-process cache.
func NewMemoryAdapter() *MemoryAdapter {
	return &MemoryAdapter{entries: make(map[string]memoryEntry), now: time.Now}
}

// entry returns a live entry; expired entries are dropped. Caller holds mu.
func (m *MemoryAdapter) entry(key string) (memoryEntry, bool) {
	e, ok := m.entries[key]
	if !ok {
		return memoryEntry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		return memoryEntry{}, false
	}
	return e, true
}

// Get retrieves a value from cache
func (m *MemoryAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entry(key)
	if !ok || e.value == nil {
		return nil, providers.ErrCacheMiss
	}
	return append([]byte(nil), e.value...), nil
}

// Set stores a value; expirationSeconds <= 0 never expires.
func (m *MemoryAdapter) Set(ctx context.Context, key string, value []byte, expirationSeconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := memoryEntry{value: append([]byte{}, value...)}
	if expirationSeconds > 0 {
		e.expiresAt = m.now().Add(time.Duration(expirationSeconds) * time.Second)
	}
	m.entries[key] = e
	return nil
}

// Delete removes a value from cache
func (m *MemoryAdapter) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// DeletePattern removes every key matching a glob pattern
func (m *MemoryAdapter) DeletePattern(ctx context.Context, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key := range m.entries {
		if globMatch(pattern, key) {
			delete(m.entries, key)
		}
	}
	return nil
}

// Exists checks if a key exists in cache
func (m *MemoryAdapter) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.entry(key)
	return ok, nil
}

// Allow counts one event for key in a fixed window.
func (m *MemoryAdapter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entry(key)
	if !ok {
		e = memoryEntry{expiresAt: m.now().Add(window)}
	}
	e.count++
	m.entries[key] = e
	return e.count <= int64(limit), nil
}

// globMatch matches Redis-style patterns with * and ?. Unlike path.Match a
// star also spans '/', which appears in cached request paths.
func globMatch(pattern, s string) bool {
	px, sx := 0, 0
	star, next := -1, 0
	for sx < len(s) {
		switch {
		case px < len(pattern) && (pattern[px] == '?' || pattern[px] == s[sx]):
			px++
			sx++
		case px < len(pattern) && pattern[px] == '*':
			star, next = px, sx
			px++
		case star >= 0:
			next++
			px, sx = star+1, next
		default:
			return false
		}
	}
	for px < len(pattern) && pattern[px] == '*' {
		px++
	}
	return px == len(pattern)
}
