package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	redisclient "github.com/medtravel/hospitaldirectory/internal/infrastructure/clients/redis"
)

func newTestAdapter(t *testing.T) (providers.CacheProvider, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewRedisAdapter(redisclient.Wrap(rdb)), mr
}

func TestRedisAdapter_GetSet(t *testing.T) {
	adapter, _ := newTestAdapter(t)
	ctx := context.Background()

	_, err := adapter.Get(ctx, "missing")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)

	require.NoError(t, adapter.Set(ctx, "k", []byte("v"), 60))
	got, err := adapter.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	exists, err := adapter.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, adapter.Delete(ctx, "k"))
	exists, err = adapter.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisAdapter_DeletePattern(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	for _, key := range []string{"cms:DoctorMaster:1", "cms:DoctorMaster:2", "cms:CityMaster:1"} {
		require.NoError(t, adapter.Set(ctx, key, []byte("x"), 60))
	}

	require.NoError(t, adapter.DeletePattern(ctx, "cms:DoctorMaster:*"))

	assert.False(t, mr.Exists("cms:DoctorMaster:1"))
	assert.False(t, mr.Exists("cms:DoctorMaster:2"))
	assert.True(t, mr.Exists("cms:CityMaster:1"))
}

func TestRedisAdapter_Expiry(t *testing.T) {
	adapter, mr := newTestAdapter(t)
	ctx := context.Background()

	require.NoError(t, adapter.Set(ctx, "ttl", []byte("v"), 10))
	mr.FastForward(11 * time.Second)

	_, err := adapter.Get(ctx, "ttl")
	assert.ErrorIs(t, err, providers.ErrCacheMiss)
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	limiter := NewRedisRateLimiter(redisclient.Wrap(rdb), "rate:")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, "1.2.3.4", 2, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, "1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, time.Minute, mr.TTL("rate:1.2.3.4"))

	mr.FastForward(time.Minute + time.Second)
	ok, err = limiter.Allow(ctx, "1.2.3.4", 2, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
