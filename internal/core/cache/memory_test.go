package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestMemoryEvictsOldest(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(2, 0)

	require.NoError(t, mem.Set(ctx, "a", json.RawMessage(`1`)))
	require.NoError(t, mem.Set(ctx, "b", json.RawMessage(`2`)))
	require.NoError(t, mem.Set(ctx, "a", json.RawMessage(`11`)))
	require.NoError(t, mem.Set(ctx, "c", json.RawMessage(`3`)))

	_, ok, err := mem.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok, "oldest insert is evicted even after an overwrite")

	val, ok, err := mem.Get(ctx, "c")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, json.RawMessage(`3`), val)
	require.Equal(t, 2, mem.Len())
}

func TestMemoryTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mem := &Memory{TTL: time.Minute, Clock: func() time.Time { return now }}

	require.NoError(t, mem.Set(ctx, "series?series_id=GDP", json.RawMessage(`{}`)))
	_, ok, _ := mem.Get(ctx, "series?series_id=GDP")
	require.True(t, ok)

	stats, err := mem.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, Stats{Backend: BackendMemory, Entries: 1, Bytes: 2}, stats)

	now = now.Add(2 * time.Minute)
	stats, err = mem.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, stats.Expired)

	_, ok, _ = mem.Get(ctx, "series?series_id=GDP")
	require.False(t, ok)
	require.Zero(t, mem.Len())
}

func TestMemoryPurge(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(0, 0)
	for _, key := range []string{"a", "b", "c"} {
		require.NoError(t, mem.Set(ctx, key, json.RawMessage(`null`)))
	}

	n, err := mem.Purge(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	require.Zero(t, mem.Len())

	require.NoError(t, mem.Set(ctx, "d", json.RawMessage(`null`)))
	require.Equal(t, 1, mem.Len())
}

func TestMemoryCopiesValue(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory(0, 0)
	buf := []byte(`{"a":1}`)
	require.NoError(t, mem.Set(ctx, "k", buf))
	buf[2] = 'z'

	val, ok, err := mem.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"a":1}`, string(val))
}

func TestNormalizeBackend(t *testing.T) {
	require.Equal(t, BackendMemory, NormalizeBackend(""))
	require.Equal(t, BackendLibsql, NormalizeBackend(" SQLite "))
	require.Equal(t, BackendRedis, NormalizeBackend("redis"))
	require.Equal(t, "etcd", NormalizeBackend("etcd"))
}

func TestNilMemoryIsAnEmptyCache(t *testing.T) {
	ctx := context.Background()
	var mem *Memory

	require.NoError(t, mem.Set(ctx, "a", json.RawMessage(`1`)))
	_, ok, err := mem.Get(ctx, "a")
	require.NoError(t, err)
	require.False(t, ok)

	n, err := mem.Purge(ctx)
	require.NoError(t, err)
	require.Zero(t, n)

	stats, err := mem.Stats(ctx)
	require.NoError(t, err)
	require.Equal(t, Stats{Backend: BackendMemory}, stats)
	require.Zero(t, mem.Len())
}
