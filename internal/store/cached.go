package store

import (
	"context"
	"crypto/sha256"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tvgrid/tvgrid/internal/cache"
	"github.com/tvgrid/tvgrid/internal/models"
)

// Hot-read TTLs. These are short: Redis only smooths read bursts, the
// 24h snapshot TTL lives in the metadata envelope, not here.
const (
	ttlChannels  = 1 * time.Minute
	ttlStreams   = 5 * time.Minute
	ttlMetadata  = 30 * time.Second
	ttlFavorites = 1 * time.Minute
	ttlRecents   = 30 * time.Second
	ttlSettings  = 5 * time.Minute
	ttlSearch    = 2 * time.Minute
)

// CachedStore wraps a Store with a Redis read-through layer. Reads are
// served from cache when possible; writes invalidate the affected keys.
type CachedStore struct {
	inner Store
	cache *cache.Redis
}

// NewCachedStore creates a CachedStore that wraps inner with Redis caching.
func NewCachedStore(inner Store, c *cache.Redis) *CachedStore {
	return &CachedStore{inner: inner, cache: c}
}

// --- cached reads ---

func (c *CachedStore) ListChannels(ctx context.Context) ([]models.Channel, error) {
	const key = "tvgrid:channels:all"
	if v, err := cache.Get[[]models.Channel](ctx, c.cache, key); err == nil {
		return v, nil
	}
	channels, err := c.inner.ListChannels(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, channels, ttlChannels)
	return channels, nil
}

func (c *CachedStore) GetStreams(ctx context.Context, channelID string) ([]models.Stream, error) {
	key := "tvgrid:streams:" + channelID
	if v, err := cache.Get[[]models.Stream](ctx, c.cache, key); err == nil {
		return v, nil
	}
	streams, err := c.inner.GetStreams(ctx, channelID)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, streams, ttlStreams)
	return streams, nil
}

func (c *CachedStore) GetMetadata(ctx context.Context) (*models.CacheMetadata, error) {
	const key = "tvgrid:metadata"
	if v, err := cache.Get[models.CacheMetadata](ctx, c.cache, key); err == nil {
		return &v, nil
	}
	meta, err := c.inner.GetMetadata(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, meta, ttlMetadata)
	return meta, nil
}

func (c *CachedStore) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	const key = "tvgrid:favorites:all"
	if v, err := cache.Get[[]models.Favorite](ctx, c.cache, key); err == nil {
		return v, nil
	}
	favorites, err := c.inner.ListFavorites(ctx)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, favorites, ttlFavorites)
	return favorites, nil
}

func (c *CachedStore) ListRecentlyPlayed(ctx context.Context, limit int) ([]models.RecentlyPlayed, error) {
	key := fmt.Sprintf("tvgrid:recent:%d", limit)
	if v, err := cache.Get[[]models.RecentlyPlayed](ctx, c.cache, key); err == nil {
		return v, nil
	}
	recents, err := c.inner.ListRecentlyPlayed(ctx, limit)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, recents, ttlRecents)
	return recents, nil
}

func (c *CachedStore) GetSettings(ctx context.Context) (models.Settings, error) {
	const key = "tvgrid:settings"
	if v, err := cache.Get[models.Settings](ctx, c.cache, key); err == nil {
		return v, nil
	}
	s, err := c.inner.GetSettings(ctx)
	if err != nil {
		return models.Settings{}, err
	}
	c.set(ctx, key, s, ttlSettings)
	return s, nil
}

// semanticSearchResult caches the SemanticSearch return value.
type semanticSearchResult struct {
	Results []SemanticResult `json:"results"`
}

func (c *CachedStore) SemanticSearch(ctx context.Context, queryVec []float32, limit int) ([]SemanticResult, error) {
	key := fmt.Sprintf("tvgrid:search:%s:%d", vecHash(queryVec), limit)
	if v, err := cache.Get[semanticSearchResult](ctx, c.cache, key); err == nil {
		return v.Results, nil
	}
	results, err := c.inner.SemanticSearch(ctx, queryVec, limit)
	if err != nil {
		return nil, err
	}
	c.set(ctx, key, semanticSearchResult{Results: results}, ttlSearch)
	return results, nil
}

// --- writes with invalidation ---

func (c *CachedStore) UpsertChannels(ctx context.Context, channels []models.Channel) error {
	if err := c.inner.UpsertChannels(ctx, channels); err != nil {
		return err
	}
	c.invalidate(ctx, "tvgrid:channels:all")
	c.invalidatePattern(ctx, "tvgrid:search:*")
	return nil
}

func (c *CachedStore) ReplaceStreams(ctx context.Context, channelID string, streams []models.Stream) error {
	if err := c.inner.ReplaceStreams(ctx, channelID, streams); err != nil {
		return err
	}
	c.invalidate(ctx, "tvgrid:streams:"+channelID)
	return nil
}

func (c *CachedStore) SaveMetadata(ctx context.Context, meta models.CacheMetadata) error {
	if err := c.inner.SaveMetadata(ctx, meta); err != nil {
		return err
	}
	c.invalidate(ctx, "tvgrid:metadata")
	return nil
}

func (c *CachedStore) ClearDataCache(ctx context.Context) error {
	if err := c.inner.ClearDataCache(ctx); err != nil {
		return err
	}
	c.invalidate(ctx, "tvgrid:channels:all", "tvgrid:metadata")
	c.invalidatePattern(ctx, "tvgrid:streams:*", "tvgrid:search:*")
	return nil
}

func (c *CachedStore) AddFavorite(ctx context.Context, channelID string) error {
	if err := c.inner.AddFavorite(ctx, channelID); err != nil {
		return err
	}
	c.invalidate(ctx, "tvgrid:favorites:all")
	return nil
}

func (c *CachedStore) RemoveFavorite(ctx context.Context, channelID string) error {
	if err := c.inner.RemoveFavorite(ctx, channelID); err != nil {
		return err
	}
	c.invalidate(ctx, "tvgrid:favorites:all")
	return nil
}

func (c *CachedStore) AddRecentlyPlayed(ctx context.Context, rp models.RecentlyPlayed) error {
	if err := c.inner.AddRecentlyPlayed(ctx, rp); err != nil {
		return err
	}
	c.invalidatePattern(ctx, "tvgrid:recent:*")
	return nil
}

func (c *CachedStore) SaveSettings(ctx context.Context, s models.Settings) error {
	if err := c.inner.SaveSettings(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx, "tvgrid:settings")
	return nil
}

func (c *CachedStore) ClearAll(ctx context.Context) error {
	if err := c.inner.ClearAll(ctx); err != nil {
		return err
	}
	c.invalidatePattern(ctx, "tvgrid:*")
	return nil
}

func (c *CachedStore) StoreEmbeddings(ctx context.Context, channelIDs []string, embeddings [][]float32) error {
	if err := c.inner.StoreEmbeddings(ctx, channelIDs, embeddings); err != nil {
		return err
	}
	c.invalidatePattern(ctx, "tvgrid:search:*")
	return nil
}

// --- passthrough (no caching) ---

func (c *CachedStore) ListAllStreams(ctx context.Context) ([]models.Stream, error) {
	return c.inner.ListAllStreams(ctx)
}

func (c *CachedStore) IsFavorite(ctx context.Context, channelID string) (bool, error) {
	return c.inner.IsFavorite(ctx, channelID)
}

func (c *CachedStore) ListChannelsWithoutEmbeddings(ctx context.Context, limit int) ([]models.Channel, error) {
	return c.inner.ListChannelsWithoutEmbeddings(ctx, limit)
}

// --- helpers ---

func (c *CachedStore) set(ctx context.Context, key string, v any, ttl time.Duration) {
	if err := cache.Set(ctx, c.cache, key, v, ttl); err != nil {
		log.Printf("cache: set %s: %v", key, err)
	}
}

func (c *CachedStore) invalidate(ctx context.Context, keys ...string) {
	if err := cache.Del(ctx, c.cache, keys...); err != nil && err != redis.Nil {
		log.Printf("cache: del %v: %v", keys, err)
	}
}

func (c *CachedStore) invalidatePattern(ctx context.Context, patterns ...string) {
	for _, p := range patterns {
		if err := cache.DelPattern(ctx, c.cache, p); err != nil {
			log.Printf("cache: del pattern %s: %v", p, err)
		}
	}
}

// vecHash produces a short deterministic hash for a float32 vector so
// it can be part of a cache key.
func vecHash(v []float32) string {
	raw := fmt.Sprintf("%v", v)
	h := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", h[:8])
}
