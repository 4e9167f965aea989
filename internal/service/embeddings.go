package service

import (
	"context"
	"fmt"
	"log"

	"github.com/tvgrid/tvgrid/internal/embedding"
	"github.com/tvgrid/tvgrid/internal/store"
)

const embedBatchSize = 128

// RefreshEmbeddings embeds every channel that does not yet have a
// vector, in batches, and returns how many were embedded. Channels keep
// their vector across data refreshes; only new ids are processed.
func RefreshEmbeddings(ctx context.Context, s store.Store, embedder *embedding.Client) (int, error) {
	total := 0
	for {
		if err := ctx.Err(); err != nil {
			return total, fmt.Errorf("embedding refresh cancelled: %w", err)
		}

		channels, err := s.ListChannelsWithoutEmbeddings(ctx, embedBatchSize)
		if err != nil {
			return total, fmt.Errorf("list channels without embeddings: %w", err)
		}
		if len(channels) == 0 {
			break
		}

		texts := make([]string, len(channels))
		ids := make([]string, len(channels))
		for i := range channels {
			texts[i] = embedding.ChannelText(&channels[i])
			ids[i] = channels[i].ID
		}

		vecs, err := embedder.Embed(ctx, texts, "document")
		if err != nil {
			return total, fmt.Errorf("embed batch: %w", err)
		}
		if err := s.StoreEmbeddings(ctx, ids, vecs); err != nil {
			return total, fmt.Errorf("store embeddings: %w", err)
		}

		total += len(channels)
		log.Printf("embedded %d channels (%d so far)", len(channels), total)
	}
	return total, nil
}
