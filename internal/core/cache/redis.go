package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	// DefaultRedisPrefix namespaces cache keys in a shared Redis.
	DefaultRedisPrefix = "fredlens:cache:"

	// DefaultRedisTimeout bounds a single Get or Set.
	DefaultRedisTimeout = 2 * time.Second
)

// RedisOptions configures a Redis cache.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	TTL      time.Duration
}

// Redis stores payloads in Redis so several processes share one cache.
type Redis struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedis connects to Redis with opts.
func NewRedis(opts RedisOptions) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	return NewRedisWithClient(client, opts.Prefix, opts.TTL)
}

// NewRedisWithClient wraps an existing client.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl, timeout: DefaultRedisTimeout}
}

// Ping checks the connection.
func (r *Redis) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

// Get returns the cached payload for key.
func (r *Redis) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	value, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	return json.RawMessage(value), true, nil
}

// Set stores value under key with the configured TTL.
func (r *Redis) Set(ctx context.Context, key string, value json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Set(ctx, r.prefix+key, string(value), r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Purge deletes every key under the prefix.
func (r *Redis) Purge(ctx context.Context) (int64, error) {
	var deleted int64
	err := r.scan(ctx, func(keys []string) error {
		n, err := r.client.Del(ctx, keys...).Result()
		if err != nil {
			return fmt.Errorf("error deleting keys: %w", err)
		}
		deleted += n
		return nil
	})
	return deleted, err
}

// Stats counts keys under the prefix. Redis expires keys itself, so Expired
// is always zero.
func (r *Redis) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Backend: BackendRedis}
	err := r.scan(ctx, func(keys []string) error {
		stats.Entries += int64(len(keys))
		return nil
	})
	return stats, err
}

// Close releases the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) scan(ctx context.Context, fn func(keys []string) error) error {
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.prefix+"*", 100).Result()
		if err != nil {
			return fmt.Errorf("error scanning keys: %w", err)
		}
		if len(keys) > 0 {
			if err := fn(keys); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}
