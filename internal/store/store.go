package store

import (
	"context"
	"errors"

	"github.com/tvgrid/tvgrid/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// Store is the durable keyspace layout behind the pipeline: channels by
// id, per-channel stream lists, the cache metadata envelope, and the
// user keyspaces (favorites, recently played, settings) that cache
// invalidation never touches.
type Store interface {
	// UpsertChannels writes channels keyed by id with upsert semantics.
	UpsertChannels(ctx context.Context, channels []models.Channel) error
	// ListChannels returns all cached channels in id order.
	ListChannels(ctx context.Context) ([]models.Channel, error)
	// ReplaceStreams replaces the stream list stored for a channel id.
	ReplaceStreams(ctx context.Context, channelID string, streams []models.Stream) error
	// GetStreams returns the stream list for a channel id, or ErrNotFound.
	GetStreams(ctx context.Context, channelID string) ([]models.Stream, error)
	// ListAllStreams flattens every stored stream list, in channel id order.
	ListAllStreams(ctx context.Context) ([]models.Stream, error)

	// GetMetadata returns the cache envelope, or ErrNotFound when no
	// snapshot has ever been written.
	GetMetadata(ctx context.Context) (*models.CacheMetadata, error)
	// SaveMetadata stamps a fresh envelope.
	SaveMetadata(ctx context.Context, meta models.CacheMetadata) error
	// ClearDataCache wipes channels, streams, and metadata. Favorites,
	// recently played, and settings survive.
	ClearDataCache(ctx context.Context) error

	AddFavorite(ctx context.Context, channelID string) error
	RemoveFavorite(ctx context.Context, channelID string) error
	// ListFavorites returns favorites ordered by add time, oldest first.
	ListFavorites(ctx context.Context) ([]models.Favorite, error)
	IsFavorite(ctx context.Context, channelID string) (bool, error)

	// AddRecentlyPlayed records a playback, replacing any prior entry
	// for the same channel.
	AddRecentlyPlayed(ctx context.Context, rp models.RecentlyPlayed) error
	// ListRecentlyPlayed returns playbacks newest first.
	ListRecentlyPlayed(ctx context.Context, limit int) ([]models.RecentlyPlayed, error)

	// GetSettings returns the saved settings, or defaults when none exist.
	GetSettings(ctx context.Context) (models.Settings, error)
	SaveSettings(ctx context.Context, s models.Settings) error

	// ClearAll wipes every keyspace, user data included.
	ClearAll(ctx context.Context) error

	// StoreEmbeddings sets the embedding vectors for the given channel ids.
	StoreEmbeddings(ctx context.Context, channelIDs []string, embeddings [][]float32) error
	// ListChannelsWithoutEmbeddings returns channels missing a vector.
	ListChannelsWithoutEmbeddings(ctx context.Context, limit int) ([]models.Channel, error)
	// SemanticSearch ranks channels by cosine similarity to the query vector.
	SemanticSearch(ctx context.Context, queryVec []float32, limit int) ([]SemanticResult, error)
}

// SemanticResult is one semantic search hit.
type SemanticResult struct {
	Channel models.Channel `json:"channel"`
	Score   float64        `json:"score"`
}
