package directory

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/medtravel/hospitaldirectory/internal/domain/entities"
)

// LoadFunc fetches the full hospital list.
type LoadFunc func(ctx context.Context) ([]entities.Hospital, error)

// Store holds the current dataset snapshot. Refreshes may overlap; each one
// takes a generation number and a response older than the applied
// snapshot is discarded, so readers always see the newest successful load.
type Store struct {
	load LoadFunc

	mu      sync.RWMutex
	ds      *Dataset
	applied uint64
	loaded  time.Time

	generation atomic.Uint64
	inflight   atomic.Int32
}

// NewStore returns a store holding an empty dataset.
func NewStore(load LoadFunc) *Store {
	return &Store{load: load, ds: NewDataset(nil)}
}

// Refresh loads a new snapshot. On failure the previous snapshot (empty on
// first load) stays in place and the error is returned.
func (s *Store) Refresh(ctx context.Context) error {
	gen := s.generation.Add(1)
	s.inflight.Add(1)
	defer s.inflight.Add(-1)

	start := time.Now()
	hospitals, err := s.load(ctx)
	if err != nil {
		log.Error().Err(err).Uint64("generation", gen).Msg("Failed to load directory dataset")
		return err
	}
	ds := NewDataset(hospitals)

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen < s.applied {
		log.Debug().Uint64("generation", gen).Uint64("applied", s.applied).Msg("Discarding stale directory dataset")
		return nil
	}
	s.ds = ds
	s.applied = gen
	s.loaded = time.Now()

	log.Info().
		Uint64("generation", gen).
		Int("hospitals", len(ds.Hospitals)).
		Int("doctors", len(ds.Doctors)).
		Int("treatments", len(ds.Treatments)).
		Dur("took", time.Since(start)).
		Msg("Directory dataset refreshed")
	return nil
}

// Dataset returns the current snapshot. Snapshots are never mutated.
func (s *Store) Dataset() *Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ds
}

// Loading reports whether a refresh is in flight.
func (s *Store) Loading() bool {
	return s.inflight.Load() > 0
}

// LoadedAt returns when the current snapshot was applied, zero before the
// first successful load.
func (s *Store) LoadedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}
