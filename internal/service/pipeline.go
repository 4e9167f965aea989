// Package service owns the cache-aside load path and the background
// refresh machinery.
package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/tvgrid/tvgrid/internal/fetcher"
	"github.com/tvgrid/tvgrid/internal/models"
	"github.com/tvgrid/tvgrid/internal/normalize"
	"github.com/tvgrid/tvgrid/internal/store"
)

// ErrNoCache means no servable snapshot exists: the metadata envelope
// is absent, version-outdated, or expired, or the channel set is empty.
// It is not a failure; callers proceed to a fresh fetch.
var ErrNoCache = errors.New("no usable cached data")

// NoticeCachedFallback annotates results served from cache because the
// fresh fetch failed.
const NoticeCachedFallback = "using cached data due to network error"

// Result is what a load produces: a normalized snapshot plus where it
// came from. Notice is non-empty only on the stale-fallback path.
type Result struct {
	Data      *normalize.NormalizedData
	FromCache bool
	CacheDate time.Time
	Notice    string
}

// Pipeline implements the cache-aside load: read cache, else fetch
// fresh and persist, else reread cache as a stale fallback. The three
// steps are explicit so each is testable alone.
type Pipeline struct {
	store   store.Store
	fetcher *fetcher.Fetcher
	ttl     time.Duration

	// now is swappable for TTL boundary tests.
	now func() time.Time
}

// NewPipeline creates a Pipeline writing snapshots with the given TTL.
func NewPipeline(s store.Store, f *fetcher.Fetcher, ttl time.Duration) *Pipeline {
	if ttl <= 0 {
		ttl = models.DefaultCacheTTL
	}
	return &Pipeline{store: s, fetcher: f, ttl: ttl, now: time.Now}
}

// LoadData obtains a snapshot for the source.
//
// Unless forceRefresh is set, a valid cached snapshot short-circuits
// the fetch. A failed fetch falls back to the cache once more and, when
// that succeeds, returns the cached snapshot annotated with a non-fatal
// notice. Only when both the fetch and the fallback fail does an error
// propagate.
func (p *Pipeline) LoadData(ctx context.Context, src models.Source, forceRefresh bool) (*Result, error) {
	if !forceRefresh {
		res, err := p.LoadFromCache(ctx)
		if err == nil {
			return res, nil
		}
		if !errors.Is(err, ErrNoCache) {
			log.Printf("cache read: %v", err)
		}
	}

	log.Printf("fetching fresh data from %s", src.Label())
	fresh, err := p.fetcher.Fetch(ctx, src)
	if err != nil {
		log.Printf("fetch failed: %v", err)
		res, cacheErr := p.LoadFromCache(ctx)
		if cacheErr == nil {
			res.Notice = NoticeCachedFallback
			return res, nil
		}
		return nil, fmt.Errorf("failed to load data and no cache available: %w", err)
	}

	if err := p.SaveToCache(ctx, fresh, src.Label()); err != nil {
		// A storage failure must not discard a good fetch.
		log.Printf("cache write: %v", err)
	}

	return &Result{
		Data: normalize.Normalize(fresh.Channels, fresh.Streams, fresh.Lookups),
	}, nil
}

// LoadFromCache reads the persisted snapshot. The metadata envelope is
// the sole validity gate: absent, version-outdated, or expired metadata
// means ErrNoCache, as does an empty channel set. Channels missing
// logos trigger a best-effort logo backfill that is persisted but never
// fatal.
func (p *Pipeline) LoadFromCache(ctx context.Context) (*Result, error) {
	meta, err := p.store.GetMetadata(ctx)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrNoCache
		}
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	now := p.now()
	if meta.Version < models.CurrentCacheVersion {
		log.Printf("cache version %d outdated (current %d), forcing refresh", meta.Version, models.CurrentCacheVersion)
		return nil, ErrNoCache
	}
	if meta.Expired(now) {
		log.Printf("cache expired (age %s > ttl %s)", now.Sub(meta.LastUpdated), meta.TTL)
		return nil, ErrNoCache
	}

	channels, err := p.store.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("read channels: %w", err)
	}
	if len(channels) == 0 {
		return nil, ErrNoCache
	}

	channels = p.backfillLogos(ctx, channels)

	streams, err := p.store.ListAllStreams(ctx)
	if err != nil {
		return nil, fmt.Errorf("read streams: %w", err)
	}

	log.Printf("loaded %d channels and %d streams from cache", len(channels), len(streams))
	return &Result{
		Data:      normalize.Normalize(channels, streams, models.Lookups{}),
		FromCache: true,
		CacheDate: meta.LastUpdated,
	}, nil
}

// SaveToCache persists a fetch result: channels upserted by id, stream
// lists re-aggregated per channel id (replacing prior lists), then a
// fresh metadata envelope. The envelope is written last so a partial
// write is seen as stale rather than current.
func (p *Pipeline) SaveToCache(ctx context.Context, res *fetcher.Result, sourceLabel string) error {
	if err := p.store.UpsertChannels(ctx, res.Channels); err != nil {
		return fmt.Errorf("save channels: %w", err)
	}

	byChannel := make(map[string][]models.Stream)
	var order []string
	for _, st := range res.Streams {
		if st.Channel == nil {
			continue
		}
		id := *st.Channel
		if _, ok := byChannel[id]; !ok {
			order = append(order, id)
		}
		byChannel[id] = append(byChannel[id], st)
	}
	for _, id := range order {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("save cancelled: %w", err)
		}
		if err := p.store.ReplaceStreams(ctx, id, byChannel[id]); err != nil {
			return fmt.Errorf("save streams %s: %w", id, err)
		}
	}

	meta := models.CacheMetadata{
		Version:     models.CurrentCacheVersion,
		LastUpdated: p.now(),
		DataSource:  sourceLabel,
		TTL:         p.ttl,
	}
	if err := p.store.SaveMetadata(ctx, meta); err != nil {
		return fmt.Errorf("save metadata: %w", err)
	}
	log.Printf("cached %d channels, %d stream lists (%s)", len(res.Channels), len(order), sourceLabel)
	return nil
}

// backfillLogos refetches the logos feed when any cached channel lacks
// a logo, stamping and persisting the result. Every failure here is
// non-fatal; the caller gets the channels back either way.
func (p *Pipeline) backfillLogos(ctx context.Context, channels []models.Channel) []models.Channel {
	missing := false
	for i := range channels {
		if !channels[i].HasLogo() {
			missing = true
			break
		}
	}
	if !missing {
		return channels
	}

	logos, err := p.fetcher.FetchLogos(ctx)
	if err != nil {
		log.Printf("logo backfill: %v", err)
		return channels
	}
	fetcher.ApplyLogoMap(channels, logos)
	if err := p.store.UpsertChannels(ctx, channels); err != nil {
		log.Printf("logo backfill save: %v", err)
	}
	return channels
}
