package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tvgrid/tvgrid/internal/models"
)

// Memory is an in-memory Store for tests. It mirrors the Postgres
// implementation's ordering contracts (channels and stream lists by id,
// favorites by add time, recents newest first).
type Memory struct {
	mu        sync.Mutex
	channels  map[string]models.Channel
	streams   map[string][]models.Stream
	meta      *models.CacheMetadata
	favorites map[string]models.Favorite
	recents   map[string]models.RecentlyPlayed
	settings  *models.Settings
	vectors   map[string][]float32

	// FailWrites, when set, makes every write return this error.
	FailWrites error
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		channels:  make(map[string]models.Channel),
		streams:   make(map[string][]models.Stream),
		favorites: make(map[string]models.Favorite),
		recents:   make(map[string]models.RecentlyPlayed),
		vectors:   make(map[string][]float32),
	}
}

func (m *Memory) UpsertChannels(_ context.Context, channels []models.Channel) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range channels {
		m.channels[ch.ID] = ch
	}
	return nil
}

func (m *Memory) ListChannels(_ context.Context) ([]models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.channels))
	for id := range m.channels {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	out := make([]models.Channel, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.channels[id])
	}
	return out, nil
}

func (m *Memory) ReplaceStreams(_ context.Context, channelID string, streams []models.Stream) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.streams[channelID] = append([]models.Stream(nil), streams...)
	return nil
}

func (m *Memory) GetStreams(_ context.Context, channelID string) ([]models.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	streams, ok := m.streams[channelID]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]models.Stream(nil), streams...), nil
}

func (m *Memory) ListAllStreams(_ context.Context) ([]models.Stream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.streams))
	for id := range m.streams {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	var all []models.Stream
	for _, id := range ids {
		all = append(all, m.streams[id]...)
	}
	return all, nil
}

func (m *Memory) GetMetadata(_ context.Context) (*models.CacheMetadata, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.meta == nil {
		return nil, ErrNotFound
	}
	meta := *m.meta
	return &meta, nil
}

func (m *Memory) SaveMetadata(_ context.Context, meta models.CacheMetadata) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.meta = &meta
	return nil
}

func (m *Memory) ClearDataCache(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels = make(map[string]models.Channel)
	m.streams = make(map[string][]models.Stream)
	m.meta = nil
	return nil
}

func (m *Memory) AddFavorite(_ context.Context, channelID string) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites[channelID] = models.Favorite{ChannelID: channelID, AddedAt: time.Now()}
	return nil
}

func (m *Memory) RemoveFavorite(_ context.Context, channelID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.favorites, channelID)
	return nil
}

func (m *Memory) ListFavorites(_ context.Context) ([]models.Favorite, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Favorite, 0, len(m.favorites))
	for _, f := range m.favorites {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].AddedAt.Before(out[j].AddedAt) })
	return out, nil
}

func (m *Memory) IsFavorite(_ context.Context, channelID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.favorites[channelID]
	return ok, nil
}

func (m *Memory) AddRecentlyPlayed(_ context.Context, rp models.RecentlyPlayed) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if rp.PlayedAt.IsZero() {
		rp.PlayedAt = time.Now()
	}
	m.recents[rp.ChannelID] = rp
	return nil
}

func (m *Memory) ListRecentlyPlayed(_ context.Context, limit int) ([]models.RecentlyPlayed, error) {
	if limit <= 0 {
		limit = 20
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.RecentlyPlayed, 0, len(m.recents))
	for _, rp := range m.recents {
		out = append(out, rp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayedAt.After(out[j].PlayedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *Memory) GetSettings(_ context.Context) (models.Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.settings == nil {
		return models.DefaultSettings(), nil
	}
	return *m.settings, nil
}

func (m *Memory) SaveSettings(_ context.Context, s models.Settings) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.settings = &s
	return nil
}

func (m *Memory) ClearAll(ctx context.Context) error {
	if err := m.ClearDataCache(ctx); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.favorites = make(map[string]models.Favorite)
	m.recents = make(map[string]models.RecentlyPlayed)
	m.settings = nil
	m.vectors = make(map[string][]float32)
	return nil
}

func (m *Memory) StoreEmbeddings(_ context.Context, channelIDs []string, embeddings [][]float32) error {
	if m.FailWrites != nil {
		return m.FailWrites
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, id := range channelIDs {
		if i < len(embeddings) {
			m.vectors[id] = embeddings[i]
		}
	}
	return nil
}

func (m *Memory) ListChannelsWithoutEmbeddings(_ context.Context, limit int) ([]models.Channel, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.channels))
	for id := range m.channels {
		if _, ok := m.vectors[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]models.Channel, 0, len(ids))
	for _, id := range ids {
		out = append(out, m.channels[id])
	}
	return out, nil
}

func (m *Memory) SemanticSearch(_ context.Context, _ []float32, limit int) ([]SemanticResult, error) {
	// Good enough for handler tests: every embedded channel, id order.
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.vectors))
	for id := range m.vectors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	out := make([]SemanticResult, 0, len(ids))
	for _, id := range ids {
		out = append(out, SemanticResult{Channel: m.channels[id], Score: 1})
	}
	return out, nil
}
