package fetcher

import (
	"strings"
	"testing"
)

const samplePlaylist = `#EXTM3U
#EXTINF:-1 tvg-id="BBCOne.uk" tvg-name="BBC One" tvg-logo="https://example.com/bbc.png" group-title="News",BBC One HD
https://example.com/bbcone.m3u8
#EXTINF:-1 tvg-id="" tvg-name="NoID Channel" group-title="",NoID Channel
http://example.com/noid.m3u8

#EXTGRP:ignored
#EXTINF:-1 tvg-id="BBCOne.uk",Second BBC Entry
https://example.com/bbcone-alt.m3u8
`

func TestParseM3U(t *testing.T) {
	entries, err := ParseM3U(strings.NewReader(samplePlaylist))
	if err != nil {
		t.Fatalf("ParseM3U: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("got %d entries, want 3", len(entries))
	}

	e := entries[0]
	if e.TvgID != "BBCOne.uk" {
		t.Errorf("TvgID = %q, want BBCOne.uk", e.TvgID)
	}
	if e.TvgName != "BBC One" {
		t.Errorf("TvgName = %q, want BBC One", e.TvgName)
	}
	if e.Logo != "https://example.com/bbc.png" {
		t.Errorf("Logo = %q", e.Logo)
	}
	if e.GroupTitle != "News" {
		t.Errorf("GroupTitle = %q, want News", e.GroupTitle)
	}
	if e.Title != "BBC One HD" {
		t.Errorf("Title = %q, want BBC One HD", e.Title)
	}
	if e.URL != "https://example.com/bbcone.m3u8" {
		t.Errorf("URL = %q", e.URL)
	}
}

func TestParseM3UTitleAfterLastComma(t *testing.T) {
	playlist := `#EXTM3U
#EXTINF:-1 tvg-id="x" group-title="Movies, Classics",Turner Classic Movies
https://example.com/tcm.m3u8
`
	entries, err := ParseM3U(strings.NewReader(playlist))
	if err != nil {
		t.Fatalf("ParseM3U: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Title != "Turner Classic Movies" {
		t.Errorf("Title = %q, want Turner Classic Movies", entries[0].Title)
	}
	if entries[0].GroupTitle != "Movies, Classics" {
		t.Errorf("GroupTitle = %q", entries[0].GroupTitle)
	}
}

func TestParseM3UDropsUntitledEntries(t *testing.T) {
	playlist := `#EXTM3U
#EXTINF:-1 tvg-id="ghost"
https://example.com/ghost.m3u8
#EXTINF:-1,Named
https://example.com/named.m3u8
https://example.com/orphan-url.m3u8
`
	entries, err := ParseM3U(strings.NewReader(playlist))
	if err != nil {
		t.Fatalf("ParseM3U: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("got %d entries, want 1", len(entries))
	}
	if entries[0].Title != "Named" {
		t.Errorf("Title = %q, want Named", entries[0].Title)
	}
}

func TestParseM3UEmptyInput(t *testing.T) {
	entries, err := ParseM3U(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ParseM3U: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestEntriesToChannelsAndStreams(t *testing.T) {
	entries := []Entry{
		{TvgID: "BBCOne.uk", Title: "BBC One", Logo: "https://example.com/bbc.png", GroupTitle: "News", URL: "https://example.com/1.m3u8"},
		{Title: "No ID Channel", URL: "https://example.com/2.m3u8"},
		{TvgID: "BBCOne.uk", Title: "BBC One Backup", URL: "https://example.com/3.m3u8"},
	}

	channels, streams := EntriesToChannelsAndStreams(entries)

	if len(channels) != 2 {
		t.Fatalf("got %d channels, want 2 (duplicate id collapses)", len(channels))
	}
	if len(streams) != 3 {
		t.Fatalf("got %d streams, want 3 (every entry yields a stream)", len(streams))
	}

	bbc := channels[0]
	if bbc.ID != "BBCOne.uk" || bbc.Name != "BBC One" {
		t.Errorf("first channel = %s/%s, want BBCOne.uk/BBC One (first entry wins)", bbc.ID, bbc.Name)
	}
	if bbc.Country != "INT" {
		t.Errorf("Country = %q, want INT", bbc.Country)
	}
	if len(bbc.Categories) != 1 || bbc.Categories[0] != "news" {
		t.Errorf("Categories = %v, want [news] (lower-cased)", bbc.Categories)
	}
	if !bbc.HasLogo() {
		t.Error("expected logo carried over")
	}

	synthetic := channels[1]
	if synthetic.ID != "m3u-1" {
		t.Errorf("synthetic id = %q, want m3u-1", synthetic.ID)
	}
	if len(synthetic.Categories) != 1 || synthetic.Categories[0] != "general" {
		t.Errorf("Categories = %v, want [general]", synthetic.Categories)
	}

	// The duplicate entry's stream still points at the shared channel.
	third := streams[2]
	if third.Channel == nil || *third.Channel != "BBCOne.uk" {
		t.Errorf("third stream channel = %v, want BBCOne.uk", third.Channel)
	}
	if third.Title == nil || *third.Title != "BBC One Backup" {
		t.Errorf("third stream title = %v", third.Title)
	}
}

func TestEntriesToChannelsAndStreamsFallbackName(t *testing.T) {
	channels, _ := EntriesToChannelsAndStreams([]Entry{
		{TvgName: "From TVG", URL: "https://example.com/a.m3u8"},
		{URL: "https://example.com/b.m3u8", TvgID: "has-id"},
	})
	if channels[0].Name != "From TVG" {
		t.Errorf("Name = %q, want From TVG", channels[0].Name)
	}
	if channels[1].Name != "Channel 2" {
		t.Errorf("Name = %q, want Channel 2", channels[1].Name)
	}
}
