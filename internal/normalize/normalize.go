// Package normalize builds the derived lookup view over raw channel and
// stream lists. The transform is pure: given identical inputs it yields
// identical indices, and a snapshot is never mutated after it is built;
// every load replaces it wholesale.
package normalize

import (
	"strings"
	"time"

	"github.com/tvgrid/tvgrid/internal/models"
)

// NormalizedData is a read-only snapshot derived from a
// (channels, streams) pair.
//
// Order holds channel ids in first-seen order; Go maps do not iterate
// deterministically, so consumers that need source order (the filter
// engine) walk Order instead of Channels.
type NormalizedData struct {
	Channels         map[string]models.Channel
	Order            []string
	StreamsByChannel map[string][]models.Stream

	Countries  map[string]models.Country
	Categories map[string]bool
	Languages  map[string]models.Language

	ChannelsByCountry  map[string][]string
	ChannelsByCategory map[string][]string
	ChannelsByLanguage map[string][]string

	LastUpdated time.Time
}

// StreamCount returns how many streams reference the channel id.
func (d *NormalizedData) StreamCount(channelID string) int {
	return len(d.StreamsByChannel[channelID])
}

// Normalize builds a snapshot. Duplicate channel ids are last write
// wins (no warning, matching upstream data which should not contain
// any); streams with a nil channel reference are dropped from the
// per-channel index. Lookups may be zero; codes then stand in for
// display names.
func Normalize(channels []models.Channel, streams []models.Stream, lookups models.Lookups) *NormalizedData {
	d := &NormalizedData{
		Channels:           make(map[string]models.Channel, len(channels)),
		Order:              make([]string, 0, len(channels)),
		StreamsByChannel:   make(map[string][]models.Stream),
		Countries:          make(map[string]models.Country),
		Categories:         make(map[string]bool),
		Languages:          make(map[string]models.Language),
		ChannelsByCountry:  make(map[string][]string),
		ChannelsByCategory: make(map[string][]string),
		ChannelsByLanguage: make(map[string][]string),
		LastUpdated:        time.Now(),
	}

	countryNames := make(map[string]string, len(lookups.Countries))
	for _, c := range lookups.Countries {
		countryNames[c.Code] = c.Name
	}
	languageNames := make(map[string]string, len(lookups.Languages))
	for _, l := range lookups.Languages {
		languageNames[l.Code] = l.Name
	}

	for _, ch := range channels {
		if _, ok := d.Channels[ch.ID]; !ok {
			d.Order = append(d.Order, ch.ID)
		}
		d.Channels[ch.ID] = ch

		if ch.Country != "" {
			d.ChannelsByCountry[ch.Country] = append(d.ChannelsByCountry[ch.Country], ch.ID)
			if _, ok := d.Countries[ch.Country]; !ok {
				name := countryNames[ch.Country]
				if name == "" {
					name = ch.Country
				}
				d.Countries[ch.Country] = models.Country{
					Code: ch.Country,
					Name: name,
					Flag: flagEmoji(ch.Country),
				}
			}
		}

		for _, cat := range ch.Categories {
			d.Categories[cat] = true
			d.ChannelsByCategory[cat] = append(d.ChannelsByCategory[cat], ch.ID)
		}

		for _, lang := range ch.Languages {
			d.ChannelsByLanguage[lang] = append(d.ChannelsByLanguage[lang], ch.ID)
			if _, ok := d.Languages[lang]; !ok {
				name := languageNames[lang]
				if name == "" {
					name = lang
				}
				d.Languages[lang] = models.Language{Code: lang, Name: name}
			}
		}
	}

	for _, st := range streams {
		if st.Channel == nil {
			continue
		}
		id := *st.Channel
		d.StreamsByChannel[id] = append(d.StreamsByChannel[id], st)
	}

	return d
}

// flagEmoji maps an ISO 3166 alpha-2 code to its regional-indicator
// pair. Non-alphabetic or oddly sized codes (e.g. the "INT" pseudo
// country from M3U ingestion) get a globe.
func flagEmoji(code string) string {
	if len(code) != 2 {
		return "🌍"
	}
	code = strings.ToUpper(code)
	a, b := rune(code[0]), rune(code[1])
	if a < 'A' || a > 'Z' || b < 'A' || b > 'Z' {
		return "🌍"
	}
	return string([]rune{0x1F1E6 + a - 'A', 0x1F1E6 + b - 'A'})
}
