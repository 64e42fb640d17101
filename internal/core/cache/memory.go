package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// DefaultMaxEntries bounds a Memory cache built without a size.
const DefaultMaxEntries = 256

type memoryEntry struct {
	value     json.RawMessage
	expiresAt time.Time
}

// Memory is a bounded in-process cache. When full, the oldest inserted entry
// is evicted. A zero TTL keeps entries until evicted.
type Memory struct {
	MaxEntries int
	TTL        time.Duration
	Clock      func() time.Time

	mu      sync.Mutex
	entries map[string]memoryEntry
	order   []string
}

// NewMemory creates a memory cache.
func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	return &Memory{MaxEntries: maxEntries, TTL: ttl}
}

// Get returns the cached payload for key.
func (m *Memory) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if m == nil {
		return nil, false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt) {
		m.remove(key)
		return nil, false, nil
	}
	return entry.value, true, nil
}

// Set stores value under key, evicting the oldest entry when full.
func (m *Memory) Set(ctx context.Context, key string, value json.RawMessage) error {
	if m == nil {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entries == nil {
		m.entries = make(map[string]memoryEntry)
	}

	entry := memoryEntry{value: append(json.RawMessage(nil), value...)}
	if m.TTL > 0 {
		entry.expiresAt = m.now().Add(m.TTL)
	}

	if _, exists := m.entries[key]; exists {
		m.entries[key] = entry
		return nil
	}

	for len(m.order) >= m.maxEntries() {
		m.remove(m.order[0])
	}
	m.entries[key] = entry
	m.order = append(m.order, key)
	return nil
}

// Purge drops every entry.
func (m *Memory) Purge(ctx context.Context) (int64, error) {
	if m == nil {
		return 0, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.entries))
	m.entries = nil
	m.order = nil
	return n, nil
}

// Stats reports entry counts and payload bytes.
func (m *Memory) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: BackendMemory}
	if m == nil {
		return stats, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for _, entry := range m.entries {
		stats.Entries++
		stats.Bytes += int64(len(entry.value))
		if !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt) {
			stats.Expired++
		}
	}
	return stats, nil
}

// Len returns the number of stored entries, expired ones included.
func (m *Memory) Len() int {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) remove(key string) {
	delete(m.entries, key)
	for i, k := range m.order {
		if k == key {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
}

func (m *Memory) maxEntries() int {
	if m.MaxEntries <= 0 {
		return DefaultMaxEntries
	}
	return m.MaxEntries
}

func (m *Memory) now() time.Time {
	if m.Clock != nil {
		return m.Clock()
	}
	return time.Now().UTC()
}
