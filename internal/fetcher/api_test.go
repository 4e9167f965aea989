package fetcher

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tvgrid/tvgrid/internal/models"
)

// newTestFetcher points a Fetcher at an httptest server whose handlers
// are registered per endpoint path.
func newTestFetcher(t *testing.T, mux *http.ServeMux) *Fetcher {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := New("tvgrid-test/1.0", 5*time.Second)
	f.Endpoints = Endpoints{
		Channels:   srv.URL + "/channels.json",
		Streams:    srv.URL + "/streams.json",
		Categories: srv.URL + "/categories.json",
		Countries:  srv.URL + "/countries.json",
		Languages:  srv.URL + "/languages.json",
		Logos:      srv.URL + "/logos.json",
	}
	f.PlaylistURL = srv.URL + "/index.m3u"
	return f
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func TestFetchJSONAPI(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/channels.json", jsonHandler(`[
		{"id":"BBCOne.uk","name":"BBC One","country":"UK","languages":["eng"],"categories":["general"]},
		{"id":"CNN.us","name":"CNN","country":"US","languages":["eng"],"categories":["news"],"logo":"https://example.com/cnn.png"}
	]`))
	mux.HandleFunc("/streams.json", jsonHandler(`[
		{"channel":"BBCOne.uk","url":"https://example.com/bbc.m3u8","status":"online"},
		{"channel":null,"url":"https://example.com/orphan.m3u8"}
	]`))
	mux.HandleFunc("/categories.json", jsonHandler(`[{"id":"news","name":"News"}]`))
	mux.HandleFunc("/countries.json", jsonHandler(`[{"code":"UK","name":"United Kingdom","languages":["eng"],"flag":"🇬🇧"}]`))
	mux.HandleFunc("/languages.json", jsonHandler(`[{"code":"eng","name":"English"}]`))
	mux.HandleFunc("/logos.json", jsonHandler(`[
		{"channel":"BBCOne.uk","url":"https://example.com/bbc-logo.png"},
		{"channel":"BBCOne.uk","url":"https://example.com/bbc-logo-dup.png"},
		{"channel":"CNN.us","url":"https://example.com/cnn-feed.png"}
	]`))

	f := newTestFetcher(t, mux)
	res, err := f.Fetch(context.Background(), models.JSONAPISource{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(res.Channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(res.Channels))
	}
	if len(res.Streams) != 2 {
		t.Fatalf("got %d streams, want 2", len(res.Streams))
	}
	if len(res.Lookups.Countries) != 1 || res.Lookups.Countries[0].Name != "United Kingdom" {
		t.Errorf("countries lookup = %+v", res.Lookups.Countries)
	}

	// Logo stitching: missing logo filled from the feed, first feed
	// occurrence winning; existing logo untouched.
	bbc := res.Channels[0]
	if bbc.Logo == nil || *bbc.Logo != "https://example.com/bbc-logo.png" {
		t.Errorf("BBC logo = %v, want first feed entry", bbc.Logo)
	}
	cnn := res.Channels[1]
	if cnn.Logo == nil || *cnn.Logo != "https://example.com/cnn.png" {
		t.Errorf("CNN logo = %v, want the channel's own", cnn.Logo)
	}
}

func TestFetchJSONAPISupplementaryFailureTolerated(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/channels.json", jsonHandler(`[{"id":"A.uk","name":"A","country":"UK","languages":[],"categories":[]}]`))
	mux.HandleFunc("/streams.json", jsonHandler(`[]`))
	fail := func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}
	mux.HandleFunc("/categories.json", fail)
	mux.HandleFunc("/countries.json", fail)
	mux.HandleFunc("/languages.json", fail)
	mux.HandleFunc("/logos.json", fail)

	f := newTestFetcher(t, mux)
	res, err := f.Fetch(context.Background(), models.JSONAPISource{})
	if err != nil {
		t.Fatalf("Fetch should tolerate supplementary failures, got %v", err)
	}
	if len(res.Channels) != 1 {
		t.Errorf("got %d channels, want 1", len(res.Channels))
	}
	if len(res.Lookups.Countries) != 0 {
		t.Errorf("countries lookup should be empty on feed failure")
	}
}

func TestFetchJSONAPILoadBearingFailure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/channels.json", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})
	mux.HandleFunc("/streams.json", jsonHandler(`[]`))
	mux.HandleFunc("/categories.json", jsonHandler(`[]`))
	mux.HandleFunc("/countries.json", jsonHandler(`[]`))
	mux.HandleFunc("/languages.json", jsonHandler(`[]`))
	mux.HandleFunc("/logos.json", jsonHandler(`[]`))

	f := newTestFetcher(t, mux)
	if _, err := f.Fetch(context.Background(), models.JSONAPISource{}); err == nil {
		t.Fatal("expected error when the channels feed fails")
	}
}

func TestFetchM3USource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/index.m3u", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(samplePlaylist))
	})

	f := newTestFetcher(t, mux)
	res, err := f.Fetch(context.Background(), models.M3UPlaylistSource{})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Channels) != 2 {
		t.Errorf("got %d channels, want 2", len(res.Channels))
	}
	if len(res.Streams) != 3 {
		t.Errorf("got %d streams, want 3", len(res.Streams))
	}
}

func TestFetchCustomM3USource(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/custom.m3u", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("#EXTM3U\n#EXTINF:-1,Solo\nhttps://example.com/solo.m3u8\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	f := New("tvgrid-test/1.0", 5*time.Second)
	res, err := f.Fetch(context.Background(), models.CustomM3USource{URL: srv.URL + "/custom.m3u"})
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(res.Channels) != 1 || res.Channels[0].Name != "Solo" {
		t.Errorf("channels = %+v", res.Channels)
	}
}

func TestFetchSetsUserAgent(t *testing.T) {
	var gotUA string
	mux := http.NewServeMux()
	mux.HandleFunc("/index.m3u", func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte("#EXTM3U\n"))
	})

	f := newTestFetcher(t, mux)
	if _, err := f.Fetch(context.Background(), models.M3UPlaylistSource{}); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if gotUA != "tvgrid-test/1.0" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestFetchLogos(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/logos.json", jsonHandler(`[
		{"channel":"A.uk","url":"https://example.com/a.png"},
		{"channel":"A.uk","url":"https://example.com/a-later.png"},
		{"channel":"","url":"https://example.com/empty.png"},
		{"channel":"B.uk","url":""}
	]`))

	f := newTestFetcher(t, mux)
	m, err := f.FetchLogos(context.Background())
	if err != nil {
		t.Fatalf("FetchLogos: %v", err)
	}
	if len(m) != 1 {
		t.Fatalf("got %d logo entries, want 1", len(m))
	}
	if m["A.uk"] != "https://example.com/a.png" {
		t.Errorf("A.uk = %q, want first occurrence", m["A.uk"])
	}
}
