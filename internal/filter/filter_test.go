package filter

import (
	"testing"

	"github.com/tvgrid/tvgrid/internal/models"
	"github.com/tvgrid/tvgrid/internal/normalize"
)

func strPtr(s string) *string { return &s }

func testData() *normalize.NormalizedData {
	channels := []models.Channel{
		{ID: "BBCOne.uk", Name: "BBC One", Network: strPtr("BBC"), Country: "UK", Languages: []string{"eng"}, Categories: []string{"general"}},
		{ID: "BBCNews.uk", Name: "BBC News", Network: strPtr("BBC"), Country: "UK", Languages: []string{"eng"}, Categories: []string{"news"}},
		{ID: "CNN.us", Name: "CNN", Country: "US", Languages: []string{"eng", "spa"}, Categories: []string{"news"}},
		{ID: "Adult.xx", Name: "Late Night", Country: "US", Languages: []string{"eng"}, Categories: []string{"xxx"}, IsNSFW: true},
		{ID: "TVE.es", Name: "TVE", Country: "ES", Languages: []string{"spa"}, Categories: []string{"general"}},
	}
	streams := []models.Stream{
		{Channel: strPtr("BBCOne.uk"), URL: "https://example.com/bbc1.m3u8"},
		{Channel: strPtr("CNN.us"), URL: "https://example.com/cnn.m3u8"},
		{Channel: strPtr("Adult.xx"), URL: "https://example.com/xx.m3u8"},
	}
	return normalize.Normalize(channels, streams, models.Lookups{})
}

func ids(channels []models.Channel) []string {
	out := make([]string, len(channels))
	for i, ch := range channels {
		out[i] = ch.ID
	}
	return out
}

func assertIDs(t *testing.T, got []models.Channel, want ...string) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got %v, want %v", gotIDs, want)
		}
	}
}

func TestApplyNoFilters(t *testing.T) {
	d := testData()
	got := Apply(d, Filters{})
	// Zero-value Filters leaves NSFW channels visible.
	assertIDs(t, got, "BBCOne.uk", "BBCNews.uk", "CNN.us", "Adult.xx", "TVE.es")
}

func TestApplyHideNSFW(t *testing.T) {
	d := testData()
	got := Apply(d, Filters{HideNSFW: true})
	assertIDs(t, got, "BBCOne.uk", "BBCNews.uk", "CNN.us", "TVE.es")
}

func TestApplyCountry(t *testing.T) {
	got := Apply(testData(), Filters{Country: "UK"})
	assertIDs(t, got, "BBCOne.uk", "BBCNews.uk")
}

func TestApplyCategory(t *testing.T) {
	got := Apply(testData(), Filters{Category: "news"})
	assertIDs(t, got, "BBCNews.uk", "CNN.us")
}

func TestApplyLanguage(t *testing.T) {
	got := Apply(testData(), Filters{Language: "spa"})
	assertIDs(t, got, "CNN.us", "TVE.es")
}

func TestApplyStreamPresence(t *testing.T) {
	d := testData()

	got := Apply(d, Filters{Presence: WithStreams})
	assertIDs(t, got, "BBCOne.uk", "CNN.us", "Adult.xx")

	got = Apply(d, Filters{Presence: NoStreams})
	assertIDs(t, got, "BBCNews.uk", "TVE.es")

	got = Apply(d, Filters{Presence: StreamsAll})
	assertIDs(t, got, "BBCOne.uk", "BBCNews.uk", "CNN.us", "Adult.xx", "TVE.es")
}

func TestApplyQuery(t *testing.T) {
	d := testData()

	// Name match, case-insensitive substring.
	assertIDs(t, Apply(d, Filters{Query: "bbc"}), "BBCOne.uk", "BBCNews.uk")
	// Network match.
	assertIDs(t, Apply(d, Filters{Query: "BBC", Country: "UK"}), "BBCOne.uk", "BBCNews.uk")
	// Category match: "general" contains "gener".
	assertIDs(t, Apply(d, Filters{Query: "gener"}), "BBCOne.uk", "TVE.es")
	// No match anywhere.
	assertIDs(t, Apply(d, Filters{Query: "zzz"}))
}

func TestApplyConjunction(t *testing.T) {
	// All active predicates must pass simultaneously.
	got := Apply(testData(), Filters{
		Query:    "bbc",
		Country:  "UK",
		Category: "news",
		Presence: NoStreams,
		HideNSFW: true,
	})
	assertIDs(t, got, "BBCNews.uk")
}

func TestApplyPreservesOrder(t *testing.T) {
	// Order must follow the snapshot's insertion order even when filters
	// remove interior elements.
	got := Apply(testData(), Filters{Language: "eng", HideNSFW: true})
	assertIDs(t, got, "BBCOne.uk", "BBCNews.uk", "CNN.us")
}

func TestParseStreamPresence(t *testing.T) {
	cases := []struct {
		in    string
		want  StreamPresence
		valid bool
	}{
		{"", StreamsAll, true},
		{"all", StreamsAll, true},
		{"with-streams", WithStreams, true},
		{"no-streams", NoStreams, true},
		{"bogus", "", false},
	}
	for _, tc := range cases {
		got, valid := ParseStreamPresence(tc.in)
		if got != tc.want || valid != tc.valid {
			t.Errorf("ParseStreamPresence(%q) = (%q, %v), want (%q, %v)", tc.in, got, valid, tc.want, tc.valid)
		}
	}
}
