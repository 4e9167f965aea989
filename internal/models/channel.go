package models

// Channel is a logical broadcast entity, independent of any stream URL.
// IDs are strings (e.g. "BBC1.uk" from the JSON API, "m3u-3" synthesized
// by the playlist parser) and unique across the active dataset.
type Channel struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Network       *string  `json:"network,omitempty"`
	Country       string   `json:"country"`
	Subdivision   *string  `json:"subdivision,omitempty"`
	City          *string  `json:"city,omitempty"`
	BroadcastArea []string `json:"broadcast_area,omitempty"`
	Languages     []string `json:"languages"`
	Categories    []string `json:"categories"`
	IsNSFW        bool     `json:"is_nsfw"`
	Launched      *string  `json:"launched,omitempty"`
	Closed        *string  `json:"closed,omitempty"`
	ReplacedBy    *string  `json:"replaced_by,omitempty"`
	Website       *string  `json:"website,omitempty"`
	Logo          *string  `json:"logo,omitempty"`
}

// HasLogo reports whether the channel carries a non-empty logo URL.
func (c *Channel) HasLogo() bool {
	return c.Logo != nil && *c.Logo != ""
}
