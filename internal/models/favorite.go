package models

import "time"

// Favorite marks a channel as user-pinned. Favorites live outside the
// cached snapshot and never expire with it.
type Favorite struct {
	ChannelID string    `json:"channel_id"`
	AddedAt   time.Time `json:"added_at"`
}

// RecentlyPlayed records the last playback of a channel. One entry per
// channel; replaying updates it.
type RecentlyPlayed struct {
	ChannelID       string    `json:"channel_id"`
	StreamURL       string    `json:"stream_url"`
	PlayedAt        time.Time `json:"played_at"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
}
