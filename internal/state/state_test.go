package state

import (
	"errors"
	"testing"
	"time"

	"github.com/tvgrid/tvgrid/internal/models"
	"github.com/tvgrid/tvgrid/internal/normalize"
)

func testSnapshot() Snapshot {
	data := normalize.Normalize([]models.Channel{
		{ID: "A", Name: "A", Country: "UK", Languages: []string{}, Categories: []string{}},
	}, nil, models.Lookups{})
	return Snapshot{Data: data, Source: models.JSONAPISource{}}
}

func TestNewStartsLoading(t *testing.T) {
	c := New(models.JSONAPISource{})
	snap, loading, lastErr := c.Snapshot()
	if snap != nil {
		t.Error("new container must have no snapshot")
	}
	if !loading {
		t.Error("new container must report loading")
	}
	if lastErr != "" {
		t.Errorf("lastErr = %q, want empty", lastErr)
	}
}

func TestApplyAndSnapshot(t *testing.T) {
	c := New(models.JSONAPISource{})
	gen := c.Begin()

	if !c.Apply(gen, testSnapshot()) {
		t.Fatal("Apply with current generation must succeed")
	}

	snap, loading, _ := c.Snapshot()
	if snap == nil {
		t.Fatal("snapshot missing after Apply")
	}
	if loading {
		t.Error("loading must clear after Apply")
	}
	if snap.LoadedAt.IsZero() {
		t.Error("Apply must stamp LoadedAt")
	}
}

func TestFailRecordsError(t *testing.T) {
	c := New(models.JSONAPISource{})
	gen := c.Begin()

	if !c.Fail(gen, errors.New("fetch exploded")) {
		t.Fatal("Fail with current generation must succeed")
	}
	snap, loading, lastErr := c.Snapshot()
	if snap != nil {
		t.Error("failed load must not install a snapshot")
	}
	if loading {
		t.Error("loading must clear after Fail")
	}
	if lastErr != "fetch exploded" {
		t.Errorf("lastErr = %q", lastErr)
	}
}

func TestSetSourceSupersedesInFlightLoad(t *testing.T) {
	c := New(models.JSONAPISource{})
	oldGen := c.Begin()

	newGen := c.SetSource(models.M3UPlaylistSource{})
	if newGen == oldGen {
		t.Fatal("SetSource must start a new generation")
	}
	if c.Source().Kind() != models.SourceKindM3UPlaylist {
		t.Errorf("Source = %s", c.Source().Kind())
	}

	// The old load finishing now is stale and must be dropped.
	if c.Apply(oldGen, testSnapshot()) {
		t.Error("Apply with superseded generation must be dropped")
	}
	if snap, _, _ := c.Snapshot(); snap != nil {
		t.Error("stale result must not install a snapshot")
	}
	if c.Fail(oldGen, errors.New("stale failure")) {
		t.Error("Fail with superseded generation must be dropped")
	}
	if _, _, lastErr := c.Snapshot(); lastErr != "" {
		t.Errorf("stale failure leaked: %q", lastErr)
	}

	// The new generation's result lands normally.
	if !c.Apply(newGen, testSnapshot()) {
		t.Error("Apply with current generation must succeed")
	}
}

func TestSetSourceClearsSnapshot(t *testing.T) {
	c := New(models.JSONAPISource{})
	c.Apply(c.Begin(), testSnapshot())

	c.SetSource(models.CustomM3USource{URL: "https://example.com/x.m3u"})
	snap, loading, _ := c.Snapshot()
	if snap != nil {
		t.Error("SetSource must clear the previous snapshot")
	}
	if !loading {
		t.Error("SetSource must put the container back into loading")
	}
}

func TestSubscribeReceivesApplied(t *testing.T) {
	c := New(models.JSONAPISource{})
	sub := c.Subscribe()

	c.Apply(c.Begin(), testSnapshot())

	select {
	case snap := <-sub:
		if snap.Data == nil {
			t.Error("received snapshot has no data")
		}
	case <-time.After(time.Second):
		t.Fatal("subscriber never notified")
	}
}

func TestSubscribeNeverBlocksApply(t *testing.T) {
	c := New(models.JSONAPISource{})
	c.Subscribe() // never drained

	done := make(chan struct{})
	go func() {
		defer close(done)
		// Two applies overflow the buffered channel; the second send
		// must be dropped rather than block.
		gen := c.Begin()
		c.Apply(gen, testSnapshot())
		c.Apply(gen, testSnapshot())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Apply blocked on a slow subscriber")
	}
}
