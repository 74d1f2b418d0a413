package services_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/medtravel/hospitaldirectory/internal/application/services"
)

func TestCacheWarmingService_WarmCache(t *testing.T) {
	var order []string
	svc := services.NewCacheWarmingService(0,
		services.Warmer{Name: "directory", Fn: func(context.Context) error {
			order = append(order, "directory")
			return errors.New("cms down")
		}},
		services.Warmer{Name: "blogs", Fn: func(context.Context) error {
			order = append(order, "blogs")
			return nil
		}},
	)

	err := svc.WarmCache(context.Background())

	require.Error(t, err)
	assert.ErrorContains(t, err, "cms down")
	assert.Equal(t, []string{"directory", "blogs"}, order)
}

func TestCacheWarmingService_Periodic(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	svc := services.NewCacheWarmingService(10*time.Millisecond, services.Warmer{Name: "count", Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}})
	ctx, cancel := context.WithCancel(context.Background())

	svc.StartPeriodicWarming(ctx)
	assert.Eventually(t, func() bool { return runs.Load() >= 3 }, time.Second, 5*time.Millisecond)

	cancel()
	svc.Wait()
}

func TestCacheWarmingService_Once(t *testing.T) {
	defer goleak.VerifyNone(t)

	var runs atomic.Int32
	svc := services.NewCacheWarmingService(0, services.Warmer{Name: "count", Fn: func(context.Context) error {
		runs.Add(1)
		return nil
	}})

	svc.StartPeriodicWarming(context.Background())
	svc.Wait()

	assert.Equal(t, int32(1), runs.Load())
}
