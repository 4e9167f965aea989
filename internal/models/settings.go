package models

// Settings are user preferences. They live in their own keyspace,
// untouched by cache TTL/version invalidation.
type Settings struct {
	Autoplay           bool     `json:"autoplay"`
	Volume             float64  `json:"volume"`
	Quality            string   `json:"quality"`
	HideNSFW           bool     `json:"hide_nsfw"`
	HideHTTPOnHTTPS    bool     `json:"hide_http_on_https"`
	PreferredLanguages []string `json:"preferred_languages"`
	DataRefreshHours   int      `json:"data_refresh_hours"`
}

// DefaultSettings returns the settings used before the user saves any.
func DefaultSettings() Settings {
	return Settings{
		Autoplay:           false,
		Volume:             0.8,
		Quality:            "auto",
		HideNSFW:           true,
		HideHTTPOnHTTPS:    true,
		PreferredLanguages: []string{},
		DataRefreshHours:   24,
	}
}
