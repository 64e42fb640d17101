package dispatch

import (
	"context"
	"encoding/json"
	"net/url"
)

// Cache stores raw response payloads by request key. Implementations used
// from concurrent callers must be safe for concurrent use; the dispatcher
// adds no locking of its own.
type Cache interface {
	Get(ctx context.Context, key string) (json.RawMessage, bool, error)
	Set(ctx context.Context, key string, value json.RawMessage) error
}

// credentialParams never take part in a cache key.
var credentialParams = []string{"api_key", "file_type"}

// CacheKey returns the deterministic key for a request: the path followed by
// the sorted, encoded query without the credential.
func CacheKey(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	clean := make(url.Values, len(query))
	for k, v := range query {
		clean[k] = v
	}
	for _, k := range credentialParams {
		clean.Del(k)
	}
	encoded := clean.Encode()
	if encoded == "" {
		return path
	}
	return path + "?" + encoded
}

func (d *Dispatcher) cached(next call) call {
	return func(ctx context.Context, path string, query url.Values) (json.RawMessage, error) {
		key := CacheKey(path, query)

		payload, ok, err := d.cache.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		d.recorder.CacheLookup(ok)
		if ok {
			d.logger.Debug("fred cache hit", fieldKey(key))
			return payload, nil
		}

		payload, err = next(ctx, path, query)
		if err != nil {
			return nil, err
		}
		// A response that arrives after the caller gave up is not stored.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if err := d.cache.Set(ctx, key, payload); err != nil {
			return nil, err
		}
		return payload, nil
	}
}
