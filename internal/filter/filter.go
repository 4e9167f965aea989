// Package filter derives the visible channel subset from a normalized
// snapshot and a set of independent, AND-combined predicates.
package filter

import (
	"strings"

	"github.com/tvgrid/tvgrid/internal/models"
	"github.com/tvgrid/tvgrid/internal/normalize"
)

// StreamPresence selects channels by how many streams they have.
type StreamPresence string

const (
	StreamsAll  StreamPresence = "all"
	WithStreams StreamPresence = "with-streams"
	NoStreams   StreamPresence = "no-streams"
)

// ParseStreamPresence validates a tri-state value, treating empty as all.
func ParseStreamPresence(s string) (StreamPresence, bool) {
	switch StreamPresence(s) {
	case "", StreamsAll:
		return StreamsAll, true
	case WithStreams:
		return WithStreams, true
	case NoStreams:
		return NoStreams, true
	}
	return "", false
}

// Filters holds the active predicates. Zero values bypass the
// corresponding predicate; all active predicates must pass.
type Filters struct {
	Query    string
	Country  string
	Category string
	Language string
	Presence StreamPresence
	HideNSFW bool
}

// Apply returns the channels passing every active predicate, in the
// snapshot's insertion order. It never mutates the snapshot.
func Apply(data *normalize.NormalizedData, f Filters) []models.Channel {
	out := make([]models.Channel, 0, len(data.Order))
	for _, id := range data.Order {
		ch, ok := data.Channels[id]
		if !ok {
			continue
		}
		if !matches(data, &ch, f) {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func matches(data *normalize.NormalizedData, ch *models.Channel, f Filters) bool {
	if f.HideNSFW && ch.IsNSFW {
		return false
	}
	if f.Country != "" && ch.Country != f.Country {
		return false
	}
	if f.Category != "" && !contains(ch.Categories, f.Category) {
		return false
	}
	if f.Language != "" && !contains(ch.Languages, f.Language) {
		return false
	}

	switch f.Presence {
	case WithStreams:
		if data.StreamCount(ch.ID) == 0 {
			return false
		}
	case NoStreams:
		if data.StreamCount(ch.ID) > 0 {
			return false
		}
	}

	if f.Query != "" && !matchesQuery(ch, f.Query) {
		return false
	}
	return true
}

// matchesQuery is a case-insensitive substring match against the
// channel name, its network, or any of its category strings.
func matchesQuery(ch *models.Channel, query string) bool {
	q := strings.ToLower(query)
	if strings.Contains(strings.ToLower(ch.Name), q) {
		return true
	}
	if ch.Network != nil && strings.Contains(strings.ToLower(*ch.Network), q) {
		return true
	}
	for _, cat := range ch.Categories {
		if strings.Contains(strings.ToLower(cat), q) {
			return true
		}
	}
	return false
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
