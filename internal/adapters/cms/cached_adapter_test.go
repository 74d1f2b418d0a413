package cms

import (
	"context"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value []byte, ttl int) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *mockCache) DeletePattern(ctx context.Context, pattern string) error {
	return m.Called(ctx, pattern).Error(0)
}

func (m *mockCache) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type countingProvider struct {
	inner providers.CMSProvider
	calls atomic.Int32
	err   error
}

func (p *countingProvider) Query(ctx context.Context, q *providers.CMSQuery) (*providers.CMSResult, error) {
	p.calls.Add(1)
	if p.err != nil {
		return nil, p.err
	}
	return p.inner.Query(ctx, q)
}

func TestCachedAdapter_MissFillsCache(t *testing.T) {
	cache := new(mockCache)
	provider := &countingProvider{inner: seededMemory()}
	adapter := NewCachedAdapter(provider, cache, 60, nil)
	q := providers.NewQuery(providers.CollectionCities)

	cache.On("Get", mock.Anything, CacheKey(q)).Return(nil, providers.ErrCacheMiss)
	setDone := make(chan struct{})
	cache.On("Set", mock.Anything, CacheKey(q), mock.Anything, 60).Return(nil).Run(func(mock.Arguments) {
		close(setDone)
	})

	res, err := adapter.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalCount)
	assert.EqualValues(t, 1, provider.calls.Load())

	select {
	case <-setDone:
	case <-time.After(time.Second):
		t.Fatal("cache was not filled")
	}
}

func TestCachedAdapter_HitSkipsProvider(t *testing.T) {
	cache := new(mockCache)
	provider := &countingProvider{inner: seededMemory()}
	adapter := NewCachedAdapter(provider, cache, 60, nil)
	q := providers.NewQuery(providers.CollectionCities)

	cached, err := json.Marshal(providers.CMSResult{Items: []providers.CMSItem{{"_id": "c9"}}, TotalCount: 1})
	require.NoError(t, err)
	cache.On("Get", mock.Anything, CacheKey(q)).Return(cached, nil)

	res, err := adapter.Query(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, "c9", res.Items[0].ID())
	assert.EqualValues(t, 0, provider.calls.Load())
}

func TestCachedAdapter_ProviderErrorNotCached(t *testing.T) {
	cache := new(mockCache)
	provider := &countingProvider{err: errors.New("cms down")}
	adapter := NewCachedAdapter(provider, cache, 60, nil)
	q := providers.NewQuery(providers.CollectionCities)

	cache.On("Get", mock.Anything, CacheKey(q)).Return(nil, providers.ErrCacheMiss)

	_, err := adapter.Query(context.Background(), q)
	assert.EqualError(t, err, "cms down")
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestCachedAdapter_InvalidateCollection(t *testing.T) {
	cache := new(mockCache)
	adapter := NewCachedAdapter(seededMemory(), cache, 0, nil)

	cache.On("DeletePattern", mock.Anything, "cms:DoctorMaster:*").Return(nil)
	require.NoError(t, adapter.InvalidateCollection(context.Background(), providers.CollectionDoctors))
	cache.AssertExpectations(t)
}
