// Package state holds the application's mutable state in one container
// owned by the composition root. Consumers read snapshots through it
// and may subscribe to replacements; nothing else in the system keeps
// process-wide mutable data.
package state

import (
	"sync"
	"time"

	"github.com/tvgrid/tvgrid/internal/models"
	"github.com/tvgrid/tvgrid/internal/normalize"
)

// Snapshot is one loaded dataset plus its provenance.
type Snapshot struct {
	Data      *normalize.NormalizedData
	Source    models.Source
	FromCache bool
	CacheDate time.Time
	Notice    string
	LoadedAt  time.Time
}

// Container guards the current snapshot, the selected data source, and
// the loading/error flags behind one mutex.
//
// Loads are tracked by a generation counter: Begin returns the current
// generation and Apply/Fail are no-ops for any other generation, so a
// refresh superseded by a source switch has its result dropped at the
// point it would be applied. There is no cancellation of the underlying
// fetch, matching the accepted ignore-superseded-result model.
type Container struct {
	mu       sync.RWMutex
	snapshot *Snapshot
	source   models.Source
	loading  bool
	lastErr  string
	gen      uint64
	subs     []chan Snapshot
}

// New creates a Container with the given initial source, in loading state.
func New(src models.Source) *Container {
	return &Container{source: src, loading: true}
}

// Source returns the currently selected data source.
func (c *Container) Source() models.Source {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.source
}

// SetSource switches the data source, clears the stale snapshot, and
// starts a new generation. Returns the generation for the reload the
// caller is about to run.
func (c *Container) SetSource(src models.Source) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.source = src
	c.snapshot = nil
	c.loading = true
	c.lastErr = ""
	c.gen++
	return c.gen
}

// Begin marks a load in progress and returns its generation.
func (c *Container) Begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = true
	c.lastErr = ""
	return c.gen
}

// Apply installs a snapshot if gen is still current, notifying
// subscribers. Returns false when the result was superseded and dropped.
func (c *Container) Apply(gen uint64, snap Snapshot) bool {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return false
	}
	if snap.LoadedAt.IsZero() {
		snap.LoadedAt = time.Now()
	}
	c.snapshot = &snap
	c.loading = false
	c.lastErr = ""
	subs := make([]chan Snapshot, len(c.subs))
	copy(subs, c.subs)
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- snap:
		default: // slow subscriber, drop rather than block
		}
	}
	return true
}

// Fail records a load failure if gen is still current.
func (c *Container) Fail(gen uint64, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return false
	}
	c.loading = false
	c.lastErr = err.Error()
	return true
}

// Snapshot returns the current snapshot (nil while none is loaded),
// the loading flag, and the last error message.
func (c *Container) Snapshot() (*Snapshot, bool, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snapshot, c.loading, c.lastErr
}

// Subscribe returns a channel that receives every applied snapshot.
// Sends never block; a subscriber that falls behind misses updates.
func (c *Container) Subscribe() <-chan Snapshot {
	ch := make(chan Snapshot, 1)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}
