package store

import (
	"context" // Context for cache and store calls

	"restaurant_system/internal/domain" // State document
	"restaurant_system/internal/utils"  // Redis JSON cache

	"github.com/sirupsen/logrus" // Logging
)

const stateCacheKey = "singleton" // Only one document exists

// CachedStateStore serves reads of the state document from Redis.
// Every write stores the new snapshot by version, so an older snapshot loaded
// by a concurrent reader can never replace it.
type CachedStateStore struct {
	inner StateStore       // Source of truth
	cache *utils.JSONCache // Versioned snapshot cache
}

// NewCachedStateStore wraps inner with cache
func NewCachedStateStore(inner StateStore, cache *utils.JSONCache) *CachedStateStore {
	return &CachedStateStore{inner: inner, cache: cache}
}

// Get returns the cached snapshot or loads and caches it
func (s *CachedStateStore) Get(ctx context.Context) (*Snapshot, error) {
	var cached Snapshot
	found, err := s.cache.Get(ctx, stateCacheKey, &cached) // Try the cache first
	if err == nil && found {
		return &cached, nil
	}
	if err != nil {
		logrus.WithField("error", err.Error()).Warn("State cache read failed")
	}
	snap, err := s.inner.Get(ctx) // Fall back to the database
	if err != nil {
		return nil, err
	}
	s.store(ctx, snap)
	return snap, nil
}

// Replace writes through and caches the stored snapshot
func (s *CachedStateStore) Replace(ctx context.Context, candidate domain.AppState) (*Snapshot, error) {
	snap, err := s.inner.Replace(ctx, candidate)
	if err != nil {
		return nil, err // Nothing was written
	}
	s.store(ctx, snap)
	return snap, nil
}

// Mutate writes through and caches the resulting snapshot
func (s *CachedStateStore) Mutate(ctx context.Context, expectVersion int64, fn Mutator) (*Snapshot, error) {
	snap, err := s.inner.Mutate(ctx, expectVersion, fn)
	if err != nil {
		return nil, err // Transaction rolled back
	}
	s.store(ctx, snap)
	return snap, nil
}

// store caches snap unless a newer version is already cached; on failure the entry is dropped
func (s *CachedStateStore) store(ctx context.Context, snap *Snapshot) {
	if _, err := s.cache.SetIfNewer(ctx, stateCacheKey, snap.Version, snap); err != nil {
		logrus.WithFields(logrus.Fields{
			"version": snap.Version,
			"error":   err.Error(),
		}).Warn("State cache write failed")
		if err := s.cache.Delete(ctx, stateCacheKey); err != nil {
			logrus.WithField("error", err.Error()).Warn("State cache invalidation failed")
		}
	}
}
