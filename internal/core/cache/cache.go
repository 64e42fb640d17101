// Package cache provides response caches for the dispatcher: a bounded
// in-process map and a Redis-backed store shared between processes.
package cache

import (
	"context"
	"encoding/json"
	"strings"
)

const (
	BackendMemory = "memory"
	BackendLibsql = "libsql"
	BackendRedis  = "redis"
)

// Stats summarizes a cache backend.
type Stats struct {
	Backend string `json:"backend"`
	Entries int64  `json:"entries"`
	Expired int64  `json:"expired"`
	Bytes   int64  `json:"bytes"`
}

// Store is a response cache that can also be inspected and emptied.
type Store interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
	Purge(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (Stats, error)
}

// NormalizeBackend lowercases a backend name. Empty selects memory.
func NormalizeBackend(value string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "", "mem", BackendMemory:
		return BackendMemory
	case "sqlite", "turso", BackendLibsql:
		return BackendLibsql
	default:
		return value
	}
}
