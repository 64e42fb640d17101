package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/namelens/fredlens/internal/core/cache"
)

// GetResponse returns a cached payload if it has not expired.
func (s *Store) GetResponse(ctx context.Context, key string, now time.Time) (json.RawMessage, bool, error) {
	if s == nil || s.DB == nil {
		return nil, false, errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return nil, false, errors.New("cache key is required")
	}

	var payload string
	row := s.DB.QueryRowContext(ctx, `
		SELECT payload
		FROM response_cache
		WHERE cache_key = ? AND expires_at > ?
	`, key, now.UTC().Unix())

	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("fetch cached response: %w", err)
	}

	return json.RawMessage(payload), true, nil
}

// SetResponse stores a payload with a TTL.
func (s *Store) SetResponse(ctx context.Context, key string, payload json.RawMessage, now time.Time, ttl time.Duration) error {
	if s == nil || s.DB == nil {
		return errors.New("store is not initialized")
	}

	if ctx == nil {
		ctx = context.Background()
	}

	if ttl <= 0 {
		return nil
	}

	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("cache key is required")
	}

	path := key
	if idx := strings.IndexByte(key, '?'); idx >= 0 {
		path = key[:idx]
	}

	now = now.UTC()
	_, err := s.DB.ExecContext(ctx, `
		INSERT INTO response_cache (cache_key, path, payload, stored_at, expires_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			payload = excluded.payload,
			stored_at = excluded.stored_at,
			expires_at = excluded.expires_at
	`, key, path, string(payload), now.Unix(), now.Add(ttl).Unix())
	if err != nil {
		return fmt.Errorf("store cached response: %w", err)
	}

	return nil
}

// PurgeResponses deletes cached payloads. With expiredOnly set, only entries
// past their expiry at now are removed.
func (s *Store) PurgeResponses(ctx context.Context, expiredOnly bool, now time.Time) (int64, error) {
	if s == nil || s.DB == nil {
		return 0, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	query := `DELETE FROM response_cache`
	var args []any
	if expiredOnly {
		query += ` WHERE expires_at <= ?`
		args = append(args, now.UTC().Unix())
	}

	result, err := s.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("purge cached responses: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge cached responses: %w", err)
	}
	return affected, nil
}

// ResponseStats summarizes the response cache table.
func (s *Store) ResponseStats(ctx context.Context, now time.Time) (cache.Stats, error) {
	stats := cache.Stats{Backend: cache.BackendLibsql}
	if s == nil || s.DB == nil {
		return stats, errors.New("store is not initialized")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	row := s.DB.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN expires_at <= ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(LENGTH(payload)), 0)
		FROM response_cache
	`, now.UTC().Unix())
	if err := row.Scan(&stats.Entries, &stats.Expired, &stats.Bytes); err != nil {
		return stats, fmt.Errorf("cache stats: %w", err)
	}
	return stats, nil
}

// DefaultResponseTTL applies when a ResponseCache has no TTL.
const DefaultResponseTTL = 24 * time.Hour

// ResponseCache adapts the store to the dispatcher cache contract.
type ResponseCache struct {
	Store *Store
	TTL   time.Duration
	Clock func() time.Time
}

// NewResponseCache creates a store-backed response cache.
func NewResponseCache(s *Store, ttl time.Duration) *ResponseCache {
	return &ResponseCache{Store: s, TTL: ttl}
}

func (c *ResponseCache) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	return c.Store.GetResponse(ctx, key, c.now())
}

func (c *ResponseCache) Set(ctx context.Context, key string, value json.RawMessage) error {
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultResponseTTL
	}
	return c.Store.SetResponse(ctx, key, value, c.now(), ttl)
}

func (c *ResponseCache) Purge(ctx context.Context) (int64, error) {
	return c.Store.PurgeResponses(ctx, false, c.now())
}

func (c *ResponseCache) Stats(ctx context.Context) (cache.Stats, error) {
	return c.Store.ResponseStats(ctx, c.now())
}

func (c *ResponseCache) now() time.Time {
	if c.Clock != nil {
		return c.Clock()
	}
	return time.Now().UTC()
}
