package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shop-insight-go/internal/config"
	"shop-insight-go/internal/model"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func questions(entries []model.HistoryEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Question)
	}
	return out
}

var sample = &model.FinalResponse{Answer: "Your top selling product...", Confidence: model.ConfidenceHigh}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "s1:Top products?", CacheKey("s1", "Top products?"))
}

func TestMemoryResponseCache_GetSet(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryResponseCache(10, time.Minute)

	_, ok, err := c.Get(ctx, "s1", "q")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "s1", "q", sample))
	got, ok, err := c.Get(ctx, "s1", "q")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sample, got)

	// 键区分店铺与问题的大小写
	_, ok, _ = c.Get(ctx, "s2", "q")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "s1", "Q")
	assert.False(t, ok)

	assert.Error(t, c.Set(ctx, "s1", "nil", nil))
}

func TestMemoryResponseCache_CapacityEviction(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryResponseCache(2, time.Minute)

	require.NoError(t, c.Set(ctx, "s", "q1", sample))
	require.NoError(t, c.Set(ctx, "s", "q2", sample))
	require.NoError(t, c.Set(ctx, "s", "q3", sample))

	_, ok, _ := c.Get(ctx, "s", "q1")
	assert.False(t, ok)
	_, ok, _ = c.Get(ctx, "s", "q3")
	assert.True(t, ok)
}

func TestMemoryResponseCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryResponseCache(10, 20*time.Millisecond)

	require.NoError(t, c.Set(ctx, "s", "q", sample))
	time.Sleep(60 * time.Millisecond)
	_, ok, _ := c.Get(ctx, "s", "q")
	assert.False(t, ok)
}

func TestRedisResponseCache(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniRedis(t)
	c := NewRedisResponseCache(rdb, time.Minute)

	_, ok, err := c.Get(ctx, "s1", "q")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.Set(ctx, "s1", "q", sample))
	assert.True(t, mr.Exists("insight:cache:s1:q"))

	got, ok, err := c.Get(ctx, "s1", "q")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sample, got)

	mr.FastForward(2 * time.Minute)
	_, ok, err = c.Get(ctx, "s1", "q")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisResponseCache_CorruptValue(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	require.NoError(t, mr.Set("insight:cache:s1:q", "not-json"))

	_, _, err := NewRedisResponseCache(rdb, time.Minute).Get(context.Background(), "s1", "q")
	assert.Error(t, err)
}

func TestNewResponseCache(t *testing.T) {
	_, rdb := newMiniRedis(t)

	c, err := NewResponseCache(config.CacheConfig{Backend: "memory", Capacity: 5}, nil)
	require.NoError(t, err)
	assert.NotNil(t, c)

	c, err = NewResponseCache(config.CacheConfig{Backend: "redis"}, rdb)
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = NewResponseCache(config.CacheConfig{Backend: "redis"}, nil)
	assert.Error(t, err)
	_, err = NewResponseCache(config.CacheConfig{Backend: "memcached"}, nil)
	assert.Error(t, err)
}

func TestMemoryHistory_AppendLastList(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistoryRepository(3, 10, time.Hour)

	_, ok, err := h.Last(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	for i := 1; i <= 5; i++ {
		require.NoError(t, h.Append(ctx, "s1", fmt.Sprintf("q%d", i)))
	}
	require.NoError(t, h.Append(ctx, "s2", "other"))

	last, ok, err := h.Last(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "q5", last)

	list, err := h.List(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"q3", "q4", "q5"}, questions(list))

	list, err = h.List(ctx, "unknown")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestMemoryHistory_ListIsACopy(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistoryRepository(5, 10, time.Hour)
	require.NoError(t, h.Append(ctx, "s", "q1"))

	list, err := h.List(ctx, "s")
	require.NoError(t, err)
	list[0].Question = "mutated"

	last, _, _ := h.Last(ctx, "s")
	assert.Equal(t, "q1", last)
}

func TestMemoryHistory_StoreCapacity(t *testing.T) {
	ctx := context.Background()
	h := NewMemoryHistoryRepository(5, 2, time.Hour)
	require.NoError(t, h.Append(ctx, "a", "q"))
	require.NoError(t, h.Append(ctx, "b", "q"))
	require.NoError(t, h.Append(ctx, "c", "q"))

	_, ok, _ := h.Last(ctx, "a")
	assert.False(t, ok)
	_, ok, _ = h.Last(ctx, "c")
	assert.True(t, ok)
}

func TestRedisHistory(t *testing.T) {
	ctx := context.Background()
	mr, rdb := newMiniRedis(t)
	h := NewRedisHistoryRepository(rdb, 2, time.Hour)

	_, ok, err := h.Last(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, h.Append(ctx, "s1", "q1"))
	require.NoError(t, h.Append(ctx, "s1", "q2"))
	require.NoError(t, h.Append(ctx, "s1", "q3"))

	last, ok, err := h.Last(ctx, "s1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "q3", last)

	list, err := h.List(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"q2", "q3"}, questions(list))
	assert.False(t, list[0].AskedAt.Time().IsZero())

	assert.Equal(t, time.Hour, mr.TTL("insight:history:s1"))
	mr.FastForward(2 * time.Hour)
	list, err = h.List(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestNewHistoryRepository(t *testing.T) {
	_, rdb := newMiniRedis(t)

	h, err := NewHistoryRepository(config.HistoryConfig{MaxEntries: 5}, nil)
	require.NoError(t, err)
	assert.NotNil(t, h)

	h, err = NewHistoryRepository(config.HistoryConfig{Backend: "redis", MaxEntries: 5}, rdb)
	require.NoError(t, err)
	assert.NotNil(t, h)

	_, err = NewHistoryRepository(config.HistoryConfig{Backend: "redis"}, nil)
	assert.Error(t, err)
	_, err = NewHistoryRepository(config.HistoryConfig{Backend: "sqlite"}, nil)
	assert.Error(t, err)
}
