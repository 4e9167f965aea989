package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
	pgxvec "github.com/pgvector/pgvector-go/pgx"

	"github.com/tvgrid/tvgrid/internal/models"
)

const metadataKey = "cache-info"

// Postgres implements Store using PostgreSQL. Channel and stream
// records are stored as jsonb documents keyed the way the keyspace
// layout demands (channels by id, streams by parent channel id), so
// the record shape can evolve behind the cache version gate without
// schema churn.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a Postgres store from a DSN and registers the
// pgvector codec. Caller must Close when done.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.ParseConfig: %w", err)
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// Close closes the connection pool.
func (p *Postgres) Close() {
	p.pool.Close()
}

// --- channel / stream cache keyspaces ---

func (p *Postgres) UpsertChannels(ctx context.Context, channels []models.Channel) error {
	b := &pgx.Batch{}
	for i := range channels {
		data, err := json.Marshal(&channels[i])
		if err != nil {
			return fmt.Errorf("marshal channel %s: %w", channels[i].ID, err)
		}
		b.Queue(
			`INSERT INTO channels (id, data) VALUES ($1, $2)
			 ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data`,
			channels[i].ID, data,
		)
	}
	br := p.pool.SendBatch(ctx, b)
	defer br.Close()
	for range channels {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("UpsertChannels: %w", err)
		}
	}
	return nil
}

func (p *Postgres) ListChannels(ctx context.Context) ([]models.Channel, error) {
	rows, err := p.pool.Query(ctx, `SELECT data FROM channels ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("ListChannels: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("ListChannels scan: %w", err)
		}
		var ch models.Channel
		if err := json.Unmarshal(data, &ch); err != nil {
			return nil, fmt.Errorf("ListChannels unmarshal: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (p *Postgres) ReplaceStreams(ctx context.Context, channelID string, streams []models.Stream) error {
	data, err := json.Marshal(streams)
	if err != nil {
		return fmt.Errorf("marshal streams %s: %w", channelID, err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO streams (channel_id, streams) VALUES ($1, $2)
		 ON CONFLICT (channel_id) DO UPDATE SET streams = EXCLUDED.streams`,
		channelID, data,
	)
	if err != nil {
		return fmt.Errorf("ReplaceStreams: %w", err)
	}
	return nil
}

func (p *Postgres) GetStreams(ctx context.Context, channelID string) ([]models.Stream, error) {
	var data []byte
	err := p.pool.QueryRow(ctx,
		`SELECT streams FROM streams WHERE channel_id = $1`, channelID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetStreams: %w", err)
	}
	var streams []models.Stream
	if err := json.Unmarshal(data, &streams); err != nil {
		return nil, fmt.Errorf("GetStreams unmarshal: %w", err)
	}
	return streams, nil
}

func (p *Postgres) ListAllStreams(ctx context.Context) ([]models.Stream, error) {
	rows, err := p.pool.Query(ctx, `SELECT streams FROM streams ORDER BY channel_id`)
	if err != nil {
		return nil, fmt.Errorf("ListAllStreams: %w", err)
	}
	defer rows.Close()

	var all []models.Stream
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("ListAllStreams scan: %w", err)
		}
		var streams []models.Stream
		if err := json.Unmarshal(data, &streams); err != nil {
			return nil, fmt.Errorf("ListAllStreams unmarshal: %w", err)
		}
		all = append(all, streams...)
	}
	return all, rows.Err()
}

// --- metadata keyspace ---

func (p *Postgres) GetMetadata(ctx context.Context) (*models.CacheMetadata, error) {
	var (
		meta  models.CacheMetadata
		ttlMS int64
	)
	err := p.pool.QueryRow(ctx,
		`SELECT version, last_updated, data_source, ttl_ms FROM metadata WHERE key = $1`,
		metadataKey,
	).Scan(&meta.Version, &meta.LastUpdated, &meta.DataSource, &ttlMS)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("GetMetadata: %w", err)
	}
	meta.TTL = time.Duration(ttlMS) * time.Millisecond
	return &meta, nil
}

func (p *Postgres) SaveMetadata(ctx context.Context, meta models.CacheMetadata) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO metadata (key, version, last_updated, data_source, ttl_ms)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (key) DO UPDATE SET
		   version = EXCLUDED.version, last_updated = EXCLUDED.last_updated,
		   data_source = EXCLUDED.data_source, ttl_ms = EXCLUDED.ttl_ms`,
		metadataKey, meta.Version, meta.LastUpdated, meta.DataSource, meta.TTL.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("SaveMetadata: %w", err)
	}
	return nil
}

func (p *Postgres) ClearDataCache(ctx context.Context) error {
	for _, table := range []string{"channels", "streams", "metadata"} {
		if _, err := p.pool.Exec(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// --- favorites keyspace ---

func (p *Postgres) AddFavorite(ctx context.Context, channelID string) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO favorites (channel_id, added_at) VALUES ($1, NOW())
		 ON CONFLICT (channel_id) DO UPDATE SET added_at = EXCLUDED.added_at`,
		channelID,
	)
	if err != nil {
		return fmt.Errorf("AddFavorite: %w", err)
	}
	return nil
}

func (p *Postgres) RemoveFavorite(ctx context.Context, channelID string) error {
	_, err := p.pool.Exec(ctx, `DELETE FROM favorites WHERE channel_id = $1`, channelID)
	if err != nil {
		return fmt.Errorf("RemoveFavorite: %w", err)
	}
	return nil
}

func (p *Postgres) ListFavorites(ctx context.Context) ([]models.Favorite, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT channel_id, added_at FROM favorites ORDER BY added_at`)
	if err != nil {
		return nil, fmt.Errorf("ListFavorites: %w", err)
	}
	defer rows.Close()

	var favorites []models.Favorite
	for rows.Next() {
		var f models.Favorite
		if err := rows.Scan(&f.ChannelID, &f.AddedAt); err != nil {
			return nil, fmt.Errorf("ListFavorites scan: %w", err)
		}
		favorites = append(favorites, f)
	}
	return favorites, rows.Err()
}

func (p *Postgres) IsFavorite(ctx context.Context, channelID string) (bool, error) {
	var exists bool
	err := p.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM favorites WHERE channel_id = $1)`, channelID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("IsFavorite: %w", err)
	}
	return exists, nil
}

// --- recently played keyspace ---

func (p *Postgres) AddRecentlyPlayed(ctx context.Context, rp models.RecentlyPlayed) error {
	playedAt := rp.PlayedAt
	if playedAt.IsZero() {
		playedAt = time.Now()
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO recently_played (channel_id, stream_url, played_at, duration_seconds)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (channel_id) DO UPDATE SET
		   stream_url = EXCLUDED.stream_url, played_at = EXCLUDED.played_at,
		   duration_seconds = EXCLUDED.duration_seconds`,
		rp.ChannelID, rp.StreamURL, playedAt, rp.DurationSeconds,
	)
	if err != nil {
		return fmt.Errorf("AddRecentlyPlayed: %w", err)
	}
	return nil
}

func (p *Postgres) ListRecentlyPlayed(ctx context.Context, limit int) ([]models.RecentlyPlayed, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := p.pool.Query(ctx,
		`SELECT channel_id, stream_url, played_at, duration_seconds
		 FROM recently_played ORDER BY played_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("ListRecentlyPlayed: %w", err)
	}
	defer rows.Close()

	var recents []models.RecentlyPlayed
	for rows.Next() {
		var rp models.RecentlyPlayed
		if err := rows.Scan(&rp.ChannelID, &rp.StreamURL, &rp.PlayedAt, &rp.DurationSeconds); err != nil {
			return nil, fmt.Errorf("ListRecentlyPlayed scan: %w", err)
		}
		recents = append(recents, rp)
	}
	return recents, rows.Err()
}

// --- settings keyspace ---

func (p *Postgres) GetSettings(ctx context.Context) (models.Settings, error) {
	var data []byte
	err := p.pool.QueryRow(ctx,
		`SELECT data FROM settings WHERE key = $1`, "app-settings",
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.Settings{}, fmt.Errorf("GetSettings: %w", err)
	}
	var s models.Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return models.Settings{}, fmt.Errorf("GetSettings unmarshal: %w", err)
	}
	return s, nil
}

func (p *Postgres) SaveSettings(ctx context.Context, s models.Settings) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	_, err = p.pool.Exec(ctx,
		`INSERT INTO settings (key, data) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data`,
		"app-settings", data,
	)
	if err != nil {
		return fmt.Errorf("SaveSettings: %w", err)
	}
	return nil
}

func (p *Postgres) ClearAll(ctx context.Context) error {
	for _, table := range []string{"channels", "streams", "metadata", "favorites", "recently_played", "settings"} {
		if _, err := p.pool.Exec(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// --- embeddings ---

func (p *Postgres) StoreEmbeddings(ctx context.Context, channelIDs []string, embeddings [][]float32) error {
	if len(channelIDs) != len(embeddings) {
		return fmt.Errorf("StoreEmbeddings: %d ids for %d vectors", len(channelIDs), len(embeddings))
	}
	b := &pgx.Batch{}
	for i := range channelIDs {
		b.Queue(`UPDATE channels SET embedding = $2 WHERE id = $1`,
			channelIDs[i], pgvector.NewVector(embeddings[i]))
	}
	br := p.pool.SendBatch(ctx, b)
	defer br.Close()
	for range channelIDs {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("StoreEmbeddings: %w", err)
		}
	}
	return nil
}

func (p *Postgres) ListChannelsWithoutEmbeddings(ctx context.Context, limit int) ([]models.Channel, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT data FROM channels WHERE embedding IS NULL ORDER BY id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("ListChannelsWithoutEmbeddings: %w", err)
	}
	defer rows.Close()

	var channels []models.Channel
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("ListChannelsWithoutEmbeddings scan: %w", err)
		}
		var ch models.Channel
		if err := json.Unmarshal(data, &ch); err != nil {
			return nil, fmt.Errorf("ListChannelsWithoutEmbeddings unmarshal: %w", err)
		}
		channels = append(channels, ch)
	}
	return channels, rows.Err()
}

func (p *Postgres) SemanticSearch(ctx context.Context, queryVec []float32, limit int) ([]SemanticResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := p.pool.Query(ctx,
		`SELECT data, 1 - (embedding <=> $1) AS score
		 FROM channels WHERE embedding IS NOT NULL
		 ORDER BY embedding <=> $1 LIMIT $2`,
		pgvector.NewVector(queryVec), limit)
	if err != nil {
		return nil, fmt.Errorf("SemanticSearch: %w", err)
	}
	defer rows.Close()

	var results []SemanticResult
	for rows.Next() {
		var (
			data  []byte
			score float64
		)
		if err := rows.Scan(&data, &score); err != nil {
			return nil, fmt.Errorf("SemanticSearch scan: %w", err)
		}
		var ch models.Channel
		if err := json.Unmarshal(data, &ch); err != nil {
			return nil, fmt.Errorf("SemanticSearch unmarshal: %w", err)
		}
		results = append(results, SemanticResult{Channel: ch, Score: score})
	}
	return results, rows.Err()
}
