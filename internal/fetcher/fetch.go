package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tvgrid/tvgrid/internal/models"
)

// Endpoints is the set of JSON API URLs for one deployment of the
// channel database.
type Endpoints struct {
	Channels   string
	Streams    string
	Categories string
	Countries  string
	Languages  string
	Logos      string
}

// DefaultEndpoints points at the public iptv-org database.
var DefaultEndpoints = Endpoints{
	Channels:   "https://iptv-org.github.io/api/channels.json",
	Streams:    "https://iptv-org.github.io/api/streams.json",
	Categories: "https://iptv-org.github.io/api/categories.json",
	Countries:  "https://iptv-org.github.io/api/countries.json",
	Languages:  "https://iptv-org.github.io/api/languages.json",
	Logos:      "https://iptv-org.github.io/api/logos.json",
}

// DefaultPlaylistURL is the official consolidated M3U playlist.
const DefaultPlaylistURL = "https://iptv-org.github.io/iptv/index.m3u"

// Fetcher retrieves raw channel/stream data for a selected source.
// It performs no retries and holds no cache; fallback policy belongs to
// the caller. Fields may be overridden before first use (tests point
// Endpoints and PlaylistURL at local servers).
type Fetcher struct {
	Client      *http.Client
	UserAgent   string
	Endpoints   Endpoints
	PlaylistURL string
}

// New creates a Fetcher against the default public endpoints.
func New(userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client:      &http.Client{Timeout: timeout},
		UserAgent:   userAgent,
		Endpoints:   DefaultEndpoints,
		PlaylistURL: DefaultPlaylistURL,
	}
}

// Fetch obtains raw data for the given source. Any unrecoverable
// failure (bad status, network error, parse error) fails the whole
// fetch; the caller decides whether to fall back to cache.
func (f *Fetcher) Fetch(ctx context.Context, src models.Source) (*Result, error) {
	switch s := src.(type) {
	case models.JSONAPISource:
		return f.fetchJSONAPI(ctx)
	case models.M3UPlaylistSource:
		return f.fetchM3U(ctx, f.PlaylistURL)
	case models.CustomM3USource:
		return f.fetchM3U(ctx, s.URL)
	default:
		return nil, fmt.Errorf("unknown data source %T", src)
	}
}

func (f *Fetcher) fetchM3U(ctx context.Context, url string) (*Result, error) {
	body, err := f.getText(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("fetch playlist: %w", err)
	}
	entries, err := ParseM3U(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse playlist: %w", err)
	}
	channels, streams := EntriesToChannelsAndStreams(entries)
	return &Result{Channels: channels, Streams: streams}, nil
}

func (f *Fetcher) getText(ctx context.Context, url string) (string, error) {
	resp, err := f.get(ctx, url)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("ReadAll: %w", err)
	}
	return string(body), nil
}

func (f *Fetcher) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("NewRequest: %w", err)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("Do: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: HTTP %d", url, resp.StatusCode)
	}
	return resp, nil
}
