package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/tvgrid/tvgrid/internal/models"
)

// fetchJSONAPI issues the six endpoint requests concurrently. Channels
// and streams are load-bearing: either failing fails the fetch. The
// four supplementary feeds (categories, countries, languages, logos)
// fail independently and silently; their data only enriches the result.
func (f *Fetcher) fetchJSONAPI(ctx context.Context) (*Result, error) {
	var (
		channels []models.Channel
		streams  []models.Stream
		lookups  models.Lookups
		logos    []models.Logo
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return f.getJSON(gctx, f.Endpoints.Channels, &channels)
	})
	g.Go(func() error {
		return f.getJSON(gctx, f.Endpoints.Streams, &streams)
	})
	g.Go(f.supplementary(gctx, f.Endpoints.Categories, &lookups.Categories))
	g.Go(f.supplementary(gctx, f.Endpoints.Countries, &lookups.Countries))
	g.Go(f.supplementary(gctx, f.Endpoints.Languages, &lookups.Languages))
	g.Go(f.supplementary(gctx, f.Endpoints.Logos, &logos))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("fetch API: %w", err)
	}

	stitchLogos(channels, logos)
	return &Result{Channels: channels, Streams: streams, Lookups: lookups}, nil
}

// FetchLogos retrieves the logos feed as a channel-id to URL map, first
// occurrence winning on duplicate ids. Used for cache backfill.
func (f *Fetcher) FetchLogos(ctx context.Context) (map[string]string, error) {
	var logos []models.Logo
	if err := f.getJSON(ctx, f.Endpoints.Logos, &logos); err != nil {
		return nil, fmt.Errorf("fetch logos: %w", err)
	}
	return logoMap(logos), nil
}

// supplementary wraps a feed fetch so its failure never propagates.
func (f *Fetcher) supplementary(ctx context.Context, url string, dst any) func() error {
	return func() error {
		if err := f.getJSON(ctx, url, dst); err != nil {
			log.Printf("supplementary feed %s: %v", url, err)
		}
		return nil
	}
}

func (f *Fetcher) getJSON(ctx context.Context, url string, dst any) error {
	resp, err := f.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func logoMap(logos []models.Logo) map[string]string {
	m := make(map[string]string, len(logos))
	for _, l := range logos {
		if l.Channel == "" || l.URL == "" {
			continue
		}
		if _, ok := m[l.Channel]; !ok {
			m[l.Channel] = l.URL
		}
	}
	return m
}

// stitchLogos fills each channel's logo from the logos feed. A
// channel's own non-empty logo always wins over the feed entry.
func stitchLogos(channels []models.Channel, logos []models.Logo) {
	if len(logos) == 0 {
		return
	}
	m := logoMap(logos)
	ApplyLogoMap(channels, m)
}

// ApplyLogoMap backfills missing channel logos from a channel-id to URL
// map, in place.
func ApplyLogoMap(channels []models.Channel, m map[string]string) {
	for i := range channels {
		if channels[i].HasLogo() {
			continue
		}
		if u, ok := m[channels[i].ID]; ok {
			logo := u
			channels[i].Logo = &logo
		}
	}
}
