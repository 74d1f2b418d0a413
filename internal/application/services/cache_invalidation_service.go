package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
	"github.com/medtravel/hospitaldirectory/internal/domain/providers"
	"github.com/medtravel/hospitaldirectory/internal/query/directory"
)

const (
	invalidationTimeout  = 5 * time.Second
	refreshTimeout       = 60 * time.Second
	DefaultRefreshDelay  = 2 * time.Second
	directoryRoutePrefix = "/api/directory"
)

// CollectionInvalidator drops cached CMS queries of a collection.
type CollectionInvalidator interface {
	InvalidateCollection(ctx context.Context, collection string) error
}

// directoryCollections feed the hospital aggregation and the dataset.
var directoryCollections = map[string]bool{
	providers.CollectionHospitals:       true,
	providers.CollectionBranches:        true,
	providers.CollectionDoctors:         true,
	providers.CollectionCities:          true,
	providers.CollectionTreatments:      true,
	providers.CollectionSpecialists:     true,
	providers.CollectionSpecializations: true,
	providers.CollectionDepartments:     true,
	providers.CollectionAccreditations:  true,
}

// staleCollections lists the collections whose cached queries a change
// makes stale. Directory queries expand references in place, so a change
// to any directory collection drops all of them.
func staleCollections(collection string) []string {
	if !directoryCollections[collection] {
		return []string{collection}
	}
	out := make([]string, 0, len(directoryCollections))
	for c := range directoryCollections {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// routesFor lists the cached HTTP routes a collection change makes stale.
func routesFor(collection string) []string {
	switch {
	case directoryCollections[collection]:
		return []string{"/api/hospitals", directoryRoutePrefix, "/api/search"}
	case collection == providers.CollectionBlogPosts:
		return []string{"/api/blogs"}
	case collection == providers.CollectionAlbums:
		return []string{"/api/albums"}
	}
	return nil
}

// CacheInvalidationService drops cached responses and CMS queries when the
// CMS reports a change, and schedules a dataset refresh for directory
// collections. Bursts of events collapse into one refresh.
type CacheInvalidationService struct {
	eventBus  providers.EventBus
	httpCache providers.CacheProvider
	cmsCache  CollectionInvalidator
	refresher *directory.Debouncer

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCacheInvalidationService creates the service. cmsCache and refresh may
// be nil.
func NewCacheInvalidationService(eventBus providers.EventBus, httpCache providers.CacheProvider, cmsCache CollectionInvalidator, refresh func(ctx context.Context) error, delay time.Duration) *CacheInvalidationService {
	s := &CacheInvalidationService{eventBus: eventBus, httpCache: httpCache, cmsCache: cmsCache}
	if refresh != nil {
		if delay <= 0 {
			delay = DefaultRefreshDelay
		}
		s.refresher = directory.NewDebouncer(delay, func() {
			ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
			defer cancel()
			if err := refresh(ctx); err != nil {
				log.Error().Err(err).Msg("Scheduled directory refresh failed")
			}
		})
	}
	return s
}

// Start subscribes to content updates and processes them until ctx is
// cancelled or Stop is called.
func (s *CacheInvalidationService) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	events, err := s.eventBus.Subscribe(ctx, providers.EventChannelContentUpdates)
	if err != nil {
		cancel()
		return fmt.Errorf("failed to subscribe to content updates: %w", err)
	}
	s.cancel = cancel

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.processEvents(ctx, events)
	}()
	log.Info().Str("channel", providers.EventChannelContentUpdates).Msg("Cache invalidation service started")
	return nil
}

// Stop ends the subscription and cancels any pending refresh.
func (s *CacheInvalidationService) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
	if s.refresher != nil {
		s.refresher.Stop()
	}
	log.Info().Msg("Cache invalidation service stopped")
}

func (s *CacheInvalidationService) processEvents(ctx context.Context, events <-chan *entities.ContentEvent) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			hctx, cancel := context.WithTimeout(ctx, invalidationTimeout)
			if err := s.HandleEvent(hctx, event); err != nil {
				log.Warn().Err(err).Str("collection", event.Collection).Msg("Cache invalidation incomplete")
			}
			cancel()
		}
	}
}

// HandleEvent invalidates everything derived from the event's collection.
// Every step runs even if an earlier one fails; the errors are joined.
func (s *CacheInvalidationService) HandleEvent(ctx context.Context, event *entities.ContentEvent) error {
	logger := log.With().
		Str("event_id", event.ID).
		Str("collection", event.Collection).
		Str("item_id", event.ItemID).
		Str("type", string(event.EventType)).
		Logger()

	var errs []error
	if s.cmsCache != nil {
		for _, collection := range staleCollections(event.Collection) {
			if err := s.cmsCache.InvalidateCollection(ctx, collection); err != nil {
				errs = append(errs, fmt.Errorf("cms cache %s: %w", collection, err))
			}
		}
	}
	if s.httpCache != nil {
		for _, route := range routesFor(event.Collection) {
			if err := s.httpCache.DeletePattern(ctx, providers.HTTPCachePattern(route)); err != nil {
				errs = append(errs, fmt.Errorf("http cache %s: %w", route, err))
			}
		}
	}
	if s.refresher != nil && directoryCollections[event.Collection] {
		s.refresher.Trigger()
	}

	logger.Debug().Int("errors", len(errs)).Msg("Processed content event")
	return errors.Join(errs...)
}
