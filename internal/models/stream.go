package models

import "strings"

// Stream health statuses as reported by the streams feed.
const (
	StreamStatusOnline  = "online"
	StreamStatusError   = "error"
	StreamStatusTimeout = "timeout"
	StreamStatusOffline = "offline"
)

// Stream is a playable URL belonging to at most one channel. A nil
// Channel means the stream is orphaned: it is kept in the raw list but
// excluded from every per-channel lookup.
type Stream struct {
	Channel   *string `json:"channel"`
	URL       string  `json:"url"`
	Feed      *string `json:"feed,omitempty"`
	Title     *string `json:"title,omitempty"`
	Quality   *string `json:"quality,omitempty"`
	Referrer  *string `json:"referrer,omitempty"`
	UserAgent *string `json:"user_agent,omitempty"`
	Timeshift *string `json:"timeshift,omitempty"`
	Status    string  `json:"status,omitempty"`
}

// IsHTTP reports whether the stream URL uses plain HTTP. An HTTPS-hosted
// client playing such a stream triggers mixed-content blocking.
func (s *Stream) IsHTTP() bool {
	return strings.HasPrefix(s.URL, "http://")
}
