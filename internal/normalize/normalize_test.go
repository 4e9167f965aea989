package normalize

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/tvgrid/tvgrid/internal/models"
)

func strPtr(s string) *string { return &s }

func testChannels() []models.Channel {
	return []models.Channel{
		{ID: "BBCOne.uk", Name: "BBC One", Country: "UK", Languages: []string{"eng"}, Categories: []string{"general"}},
		{ID: "CNN.us", Name: "CNN", Country: "US", Languages: []string{"eng", "spa"}, Categories: []string{"news"}},
		{ID: "TVE.es", Name: "TVE", Country: "ES", Languages: []string{"spa"}, Categories: []string{"general", "news"}},
	}
}

func testStreams() []models.Stream {
	return []models.Stream{
		{Channel: strPtr("BBCOne.uk"), URL: "https://example.com/bbc1.m3u8"},
		{Channel: strPtr("BBCOne.uk"), URL: "https://example.com/bbc2.m3u8"},
		{Channel: strPtr("CNN.us"), URL: "https://example.com/cnn.m3u8"},
		{Channel: nil, URL: "https://example.com/orphan.m3u8"},
	}
}

func TestNormalizeIndexes(t *testing.T) {
	d := Normalize(testChannels(), testStreams(), models.Lookups{})

	if len(d.Channels) != 3 {
		t.Fatalf("got %d channels, want 3", len(d.Channels))
	}
	if got := d.StreamCount("BBCOne.uk"); got != 2 {
		t.Errorf("StreamCount(BBCOne.uk) = %d, want 2", got)
	}
	if got := d.StreamCount("TVE.es"); got != 0 {
		t.Errorf("StreamCount(TVE.es) = %d, want 0", got)
	}

	// The orphan stream must not appear in any per-channel list.
	total := 0
	for _, streams := range d.StreamsByChannel {
		total += len(streams)
	}
	if total != 3 {
		t.Errorf("indexed %d streams, want 3 (orphan dropped)", total)
	}

	// Every channel is a member of each index its fields name.
	for id, ch := range d.Channels {
		if !containsID(d.ChannelsByCountry[ch.Country], id) {
			t.Errorf("%s missing from country index %s", id, ch.Country)
		}
		for _, cat := range ch.Categories {
			if !d.Categories[cat] {
				t.Errorf("category %s not registered", cat)
			}
			if !containsID(d.ChannelsByCategory[cat], id) {
				t.Errorf("%s missing from category index %s", id, cat)
			}
		}
		for _, lang := range ch.Languages {
			if !containsID(d.ChannelsByLanguage[lang], id) {
				t.Errorf("%s missing from language index %s", id, lang)
			}
		}
	}
}

func TestNormalizePreservesOrder(t *testing.T) {
	d := Normalize(testChannels(), nil, models.Lookups{})
	want := []string{"BBCOne.uk", "CNN.us", "TVE.es"}
	if !reflect.DeepEqual(d.Order, want) {
		t.Errorf("Order = %v, want %v", d.Order, want)
	}
}

func TestNormalizeDeterministic(t *testing.T) {
	a := Normalize(testChannels(), testStreams(), models.Lookups{})
	b := Normalize(testChannels(), testStreams(), models.Lookups{})

	if !reflect.DeepEqual(a.Channels, b.Channels) {
		t.Error("Channels differ between identical runs")
	}
	if !reflect.DeepEqual(a.Order, b.Order) {
		t.Error("Order differs between identical runs")
	}
	if !reflect.DeepEqual(a.ChannelsByCountry, b.ChannelsByCountry) {
		t.Error("ChannelsByCountry differs between identical runs")
	}
	if !reflect.DeepEqual(a.StreamsByChannel, b.StreamsByChannel) {
		t.Error("StreamsByChannel differs between identical runs")
	}
}

func TestNormalizeDuplicateIDLastWins(t *testing.T) {
	channels := []models.Channel{
		{ID: "X", Name: "First", Country: "UK", Languages: []string{}, Categories: []string{}},
		{ID: "X", Name: "Second", Country: "UK", Languages: []string{}, Categories: []string{}},
	}
	d := Normalize(channels, nil, models.Lookups{})
	if len(d.Order) != 1 {
		t.Fatalf("Order has %d entries, want 1", len(d.Order))
	}
	if d.Channels["X"].Name != "Second" {
		t.Errorf("Name = %q, want Second (last write wins)", d.Channels["X"].Name)
	}
}

func TestNormalizeLookupNames(t *testing.T) {
	lookups := models.Lookups{
		Countries: []models.Country{{Code: "UK", Name: "United Kingdom"}},
		Languages: []models.Language{{Code: "eng", Name: "English"}},
	}
	d := Normalize(testChannels(), nil, lookups)

	if d.Countries["UK"].Name != "United Kingdom" {
		t.Errorf("UK name = %q", d.Countries["UK"].Name)
	}
	// Codes absent from the lookups fall back to themselves.
	if d.Countries["ES"].Name != "ES" {
		t.Errorf("ES name = %q, want ES", d.Countries["ES"].Name)
	}
	if d.Languages["eng"].Name != "English" {
		t.Errorf("eng name = %q", d.Languages["eng"].Name)
	}
	if d.Languages["spa"].Name != "spa" {
		t.Errorf("spa name = %q, want spa", d.Languages["spa"].Name)
	}
}

func TestFlagEmoji(t *testing.T) {
	cases := []struct {
		code, want string
	}{
		{"UK", "🇺🇰"},
		{"us", "🇺🇸"},
		{"INT", "🌍"},
		{"", "🌍"},
		{"1A", "🌍"},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("code=%q", tc.code), func(t *testing.T) {
			if got := flagEmoji(tc.code); got != tc.want {
				t.Errorf("flagEmoji(%q) = %q, want %q", tc.code, got, tc.want)
			}
		})
	}
}

func containsID(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}
