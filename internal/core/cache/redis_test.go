package cache

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redismock/v8"
	"github.com/stretchr/testify/require"
)

func TestRedisGetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisWithClient(client, "", time.Hour)

	mock.ExpectGet(DefaultRedisPrefix + "series?series_id=GDP").RedisNil()

	val, ok, err := cache.Get(context.Background(), "series?series_id=GDP")
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, val)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisSetThenGet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisWithClient(client, "test:", 10*time.Minute)

	payload := `{"seriess":[{"id":"GDP"}]}`
	mock.ExpectSet("test:series?series_id=GDP", payload, 10*time.Minute).SetVal("OK")
	mock.ExpectGet("test:series?series_id=GDP").SetVal(payload)

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, "series?series_id=GDP", json.RawMessage(payload)))

	val, ok, err := cache.Get(ctx, "series?series_id=GDP")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, payload, string(val))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisGetError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisWithClient(client, "test:", 0)

	mock.ExpectGet("test:k").SetErr(errors.New("connection reset"))

	_, _, err := cache.Get(context.Background(), "k")
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
}

func TestRedisPurgeAndStats(t *testing.T) {
	client, mock := redismock.NewClientMock()
	cache := NewRedisWithClient(client, "test:", 0)

	mock.ExpectScan(0, "test:*", 100).SetVal([]string{"test:a", "test:b"}, 7)
	mock.ExpectScan(7, "test:*", 100).SetVal([]string{"test:c"}, 0)

	stats, err := cache.Stats(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 3, stats.Entries)
	require.Equal(t, BackendRedis, stats.Backend)

	mock.ExpectScan(0, "test:*", 100).SetVal([]string{"test:a", "test:b"}, 0)
	mock.ExpectDel("test:a", "test:b").SetVal(2)

	n, err := cache.Purge(context.Background())
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisGetIsBoundedByTimeout(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:       "unreachable:6379",
		MaxRetries: -1,
		Dialer: func(ctx context.Context, _, _ string) (net.Conn, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewRedisWithClient(client, "", time.Minute)
	cache.timeout = 50 * time.Millisecond

	start := time.Now()
	_, ok, err := cache.Get(context.Background(), "series?series_id=GDP")
	require.Error(t, err)
	require.False(t, ok)
	require.Less(t, time.Since(start), time.Second)
}
