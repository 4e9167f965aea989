package models

import "time"

// CurrentCacheVersion is bumped on breaking changes to the cached data
// shape. Snapshots written by older versions are treated as absent.
const CurrentCacheVersion = 2

// DefaultCacheTTL is how long a cached snapshot stays servable.
const DefaultCacheTTL = 24 * time.Hour

// CacheMetadata is the envelope stamped onto every cached snapshot.
// It is the sole gate on cache validity.
type CacheMetadata struct {
	Version     int           `json:"version"`
	LastUpdated time.Time     `json:"last_updated"`
	DataSource  string        `json:"data_source"`
	TTL         time.Duration `json:"ttl"`
}

// Expired reports whether the snapshot has outlived its TTL. The check
// is strict: age exactly equal to the TTL is still servable, age > TTL
// triggers a refresh.
func (m *CacheMetadata) Expired(now time.Time) bool {
	return now.Sub(m.LastUpdated) > m.TTL
}

// Valid reports whether a cached snapshot may be served at all: the
// schema version must be current (or newer) and the TTL not exceeded.
func (m *CacheMetadata) Valid(now time.Time) bool {
	return m.Version >= CurrentCacheVersion && !m.Expired(now)
}
