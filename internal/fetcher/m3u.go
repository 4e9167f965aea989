package fetcher

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/tvgrid/tvgrid/internal/models"
)

// Entry is one EXTINF directive paired with the URL line that closed it.
type Entry struct {
	URL        string
	Title      string
	TvgID      string
	TvgName    string
	Logo       string
	GroupTitle string
}

var reAttr = regexp.MustCompile(`([a-zA-Z-]+)="([^"]*)"`)

// ParseM3U reads an extended-M3U playlist and returns its entries.
//
// Blank lines and comment lines other than EXTINF are ignored. An EXTINF
// line opens a pending entry; the next line starting with http:// or
// https:// closes it, provided the entry has a title or a tvg-name;
// otherwise the URL line is dropped. Either way the pending state is
// cleared. The free-text title is everything after the last comma of the
// EXTINF line.
func ParseM3U(r io.Reader) ([]Entry, error) {
	var entries []Entry
	var pending *Entry

	scanner := bufio.NewScanner(r)
	// Some playlists carry very long EXTINF lines.
	const maxSize = 1024 * 1024
	scanner.Buffer(make([]byte, 0, 64*1024), maxSize)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "#EXTINF"):
			pending = entryFromEXTINF(line)
		case strings.HasPrefix(line, "#"):
			// Other directives carry nothing we use.
		case strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://"):
			if pending != nil && (pending.Title != "" || pending.TvgName != "") {
				e := *pending
				e.URL = line
				entries = append(entries, e)
			}
			pending = nil
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read playlist: %w", err)
	}
	return entries, nil
}

func entryFromEXTINF(line string) *Entry {
	attrs := map[string]string{}
	for _, m := range reAttr.FindAllStringSubmatch(line, -1) {
		attrs[strings.ToLower(m[1])] = m[2]
	}

	e := &Entry{
		TvgID:      attrs["tvg-id"],
		TvgName:    attrs["tvg-name"],
		Logo:       attrs["tvg-logo"],
		GroupTitle: attrs["group-title"],
	}
	if i := strings.LastIndex(line, ","); i >= 0 {
		e.Title = strings.TrimSpace(line[i+1:])
	}
	return e
}

// EntriesToChannelsAndStreams derives channel and stream records from
// parsed playlist entries.
//
// Channel identity is tvg-id when present, else a synthetic "m3u-<index>"
// id from the entry's ordinal position. Synthetic ids are only stable
// across refetches while entry order is. The first entry seen for an id
// wins; later entries with the same id still yield their own streams.
func EntriesToChannelsAndStreams(entries []Entry) ([]models.Channel, []models.Stream) {
	channels := make([]models.Channel, 0, len(entries))
	streams := make([]models.Stream, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for i, e := range entries {
		id := e.TvgID
		if id == "" {
			id = fmt.Sprintf("m3u-%d", i)
		}
		name := e.Title
		if name == "" {
			name = e.TvgName
		}
		if name == "" {
			name = fmt.Sprintf("Channel %d", i+1)
		}
		category := strings.ToLower(e.GroupTitle)
		if category == "" {
			category = "general"
		}

		if !seen[id] {
			seen[id] = true
			ch := models.Channel{
				ID:         id,
				Name:       name,
				Country:    "INT",
				Languages:  []string{},
				Categories: []string{category},
			}
			if e.Logo != "" {
				logo := e.Logo
				ch.Logo = &logo
			}
			channels = append(channels, ch)
		}

		chID, title := id, name
		streams = append(streams, models.Stream{
			Channel: &chID,
			URL:     e.URL,
			Title:   &title,
		})
	}
	return channels, streams
}
