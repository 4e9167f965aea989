package fetcher

import "github.com/tvgrid/tvgrid/internal/models"

// Result is the raw payload of one fetch: the load-bearing channel and
// stream lists plus whatever supplementary taxonomy feeds succeeded.
type Result struct {
	Channels []models.Channel
	Streams  []models.Stream
	Lookups  models.Lookups
}
