package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const warmTimeout = 2 * time.Minute

// Warmer is one named warm-up step, e.g. reloading the directory dataset
// or priming the first page of blog posts in the CMS cache.
type Warmer struct {
	Name string
	Fn   func(ctx context.Context) error
}

// CacheWarmingService runs its warmers once at start and then on an
// interval.
type CacheWarmingService struct {
	warmers  []Warmer
	interval time.Duration
	wg       sync.WaitGroup
}

// NewCacheWarmingService creates a warming service. A non-positive interval
// warms once only.
func NewCacheWarmingService(interval time.Duration, warmers ...Warmer) *CacheWarmingService {
	return &CacheWarmingService{warmers: warmers, interval: interval}
}

// WarmCache runs every warmer in order. A failing warmer does not stop the
// rest; failures are joined.
func (s *CacheWarmingService) WarmCache(ctx context.Context) error {
	start := time.Now()
	var errs []error
	for _, w := range s.warmers {
		wctx, cancel := context.WithTimeout(ctx, warmTimeout)
		err := w.Fn(wctx)
		cancel()
		if err != nil {
			log.Warn().Err(err).Str("warmer", w.Name).Msg("Cache warming step failed")
			errs = append(errs, err)
		}
	}
	log.Info().Int("steps", len(s.warmers)).Int("failed", len(errs)).Dur("took", time.Since(start)).Msg("Cache warming completed")
	return errors.Join(errs...)
}

// StartPeriodicWarming warms in the background until ctx is cancelled.
// The first run happens immediately.
func (s *CacheWarmingService) StartPeriodicWarming(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		_ = s.WarmCache(ctx)
		if s.interval <= 0 {
			return
		}

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				log.Info().Msg("Stopping cache warming service")
				return
			case <-ticker.C:
				_ = s.WarmCache(ctx)
			}
		}
	}()
	log.Info().Dur("interval", s.interval).Msg("Started periodic cache warming")
}

// Wait blocks until the background loop has exited.
func (s *CacheWarmingService) Wait() {
	s.wg.Wait()
}
