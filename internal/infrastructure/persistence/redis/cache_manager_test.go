package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/pkg/logger"
)

type cachedSettings struct {
	TeamSizeMin int  `json:"team_size_min"`
	Analytics   bool `json:"analytics"`
}

func newTestCache(t *testing.T) (*CacheManager, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCacheManager(client, logger.NewNop()), mr
}

func TestCacheManager_SetAndGet(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	want := cachedSettings{TeamSizeMin: 3, Analytics: true}
	require.NoError(t, cache.Set(ctx, OrgSettingsKey("org-1"), want, time.Minute))

	var got cachedSettings
	require.NoError(t, cache.Get(ctx, OrgSettingsKey("org-1"), &got))
	assert.Equal(t, want, got)
}

func TestCacheManager_Miss(t *testing.T) {
	cache, _ := newTestCache(t)

	var got cachedSettings
	err := cache.Get(context.Background(), OrgSettingsKey("absent"), &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheManager_L1Backfill(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	want := cachedSettings{TeamSizeMin: 4}
	require.NoError(t, cache.Set(ctx, "k", want, time.Minute))

	// First read populates L1; deleting the Redis key afterwards must not be
	// visible until the L1 entry expires.
	var got cachedSettings
	require.NoError(t, cache.Get(ctx, "k", &got))
	mr.Del("k")

	got = cachedSettings{}
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, want, got)
}

func TestCacheManager_Delete(t *testing.T) {
	cache, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", cachedSettings{TeamSizeMin: 5}, time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))

	var got cachedSettings
	err := cache.Get(ctx, "k", &got)
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheManager_RedisTTL(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", cachedSettings{TeamSizeMin: 3}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("k"))
}

func TestCacheManager_Acquire(t *testing.T) {
	cache, mr := newTestCache(t)
	ctx := context.Background()

	ok, err := cache.Acquire(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("lock"))

	// Held keys cannot be claimed again until released.
	ok, err = cache.Acquire(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Release(ctx, "lock"))
	ok, err = cache.Acquire(ctx, "lock", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCacheKeys(t *testing.T) {
	assert.Equal(t, "org:settings:org-1", OrgSettingsKey("org-1"))
	assert.Equal(t, "formation:job:p-1", FormationJobKey("p-1"))
	assert.Equal(t, "formation:lock:p-1", FormationLockKey("p-1"))
}
