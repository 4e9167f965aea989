package models

// Country is display metadata for a country code.
type Country struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Languages []string `json:"languages,omitempty"`
	Flag      string   `json:"flag"`
}

// Category is a content category from the categories feed.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Language is a language code/name pair.
type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// Logo is one entry of the logos feed: a channel id to URL mapping.
type Logo struct {
	Channel string `json:"channel"`
	URL     string `json:"url"`
}

// Lookups carries the supplementary taxonomy feeds. All fields are
// optional: the feeds they come from are allowed to fail, in which case
// normalization falls back to the codes themselves.
type Lookups struct {
	Countries  []Country
	Categories []Category
	Languages  []Language
}
