package models

import (
	"fmt"
	"net/url"
)

// Source kind tags, used for persistence and the HTTP API.
const (
	SourceKindJSONAPI     = "json-api"
	SourceKindM3UPlaylist = "m3u-playlist"
	SourceKindCustomM3U   = "custom-m3u"
)

// Source identifies where channel and stream data come from. It is a
// closed set of variants; each carries exactly the fields it needs, so
// only the custom variant has a URL.
type Source interface {
	// Kind returns the stable tag for the variant.
	Kind() string
	// Label returns the display name stamped into cache metadata.
	Label() string

	source()
}

// JSONAPISource is the multi-endpoint JSON database (recommended).
type JSONAPISource struct{}

func (JSONAPISource) Kind() string  { return SourceKindJSONAPI }
func (JSONAPISource) Label() string { return "JSON API (Recommended)" }
func (JSONAPISource) source()       {}

// M3UPlaylistSource is the single consolidated official playlist.
type M3UPlaylistSource struct{}

func (M3UPlaylistSource) Kind() string  { return SourceKindM3UPlaylist }
func (M3UPlaylistSource) Label() string { return "M3U Playlist (Official)" }
func (M3UPlaylistSource) source()       {}

// CustomM3USource is a caller-supplied playlist URL.
type CustomM3USource struct {
	URL string
}

func (CustomM3USource) Kind() string  { return SourceKindCustomM3U }
func (CustomM3USource) Label() string { return "Custom M3U Playlist" }
func (CustomM3USource) source()       {}

// ParseSource builds a Source from a kind tag plus, for the custom
// variant, a playlist URL. The URL must be http or https.
func ParseSource(kind, customURL string) (Source, error) {
	switch kind {
	case SourceKindJSONAPI:
		return JSONAPISource{}, nil
	case SourceKindM3UPlaylist:
		return M3UPlaylistSource{}, nil
	case SourceKindCustomM3U:
		u, err := url.ParseRequestURI(customURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return nil, fmt.Errorf("custom source needs a valid http(s) URL, got %q", customURL)
		}
		return CustomM3USource{URL: customURL}, nil
	default:
		return nil, fmt.Errorf("unknown data source %q", kind)
	}
}
