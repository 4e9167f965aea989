package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/tvgrid/tvgrid/internal/cache"
	"github.com/tvgrid/tvgrid/internal/embedding"
	"github.com/tvgrid/tvgrid/internal/models"
	"github.com/tvgrid/tvgrid/internal/state"
)

const refreshLockTTL = 10 * time.Minute

// RunRefreshWorker consumes refresh jobs from Redis until ctx is
// cancelled. Each data job takes the refresh lock (so overlapping
// workers or tabs don't refetch in parallel), runs the pipeline, and
// publishes the result into the state container. embedder may be nil.
func RunRefreshWorker(ctx context.Context, rds *cache.Redis, p *Pipeline, st *state.Container, embedder *embedding.Client) {
	log.Println("refresh worker started")
	for {
		select {
		case <-ctx.Done():
			log.Println("refresh worker stopping")
			return
		default:
		}

		job, err := cache.Dequeue(ctx, rds, cache.RefreshQueue, 5*time.Second)
		if err != nil {
			log.Printf("refresh worker: dequeue error: %v", err)
			time.Sleep(2 * time.Second)
			continue
		}
		if job == nil {
			continue // timeout, loop back to check ctx
		}

		if job.EmbeddingsOnly {
			if embedder == nil {
				log.Printf("refresh worker: embeddings job skipped (embedder not configured)")
				continue
			}
			if n, err := RefreshEmbeddings(ctx, p.store, embedder); err != nil {
				log.Printf("refresh worker: embeddings: %v", err)
			} else {
				log.Printf("refresh worker: embedded %d channels", n)
			}
			continue
		}

		runRefreshJob(ctx, rds, p, st, embedder, job)
	}
}

func runRefreshJob(ctx context.Context, rds *cache.Redis, p *Pipeline, st *state.Container, embedder *embedding.Client, job *cache.RefreshJob) {
	unlock, err := cache.TryLock(ctx, rds, cache.RefreshLockKey, refreshLockTTL)
	if err != nil {
		if errors.Is(err, cache.ErrLocked) {
			log.Printf("refresh worker: refresh already running, skipping")
		} else {
			log.Printf("refresh worker: lock: %v", err)
		}
		return
	}
	defer unlock()

	src := st.Source()
	if job.Source != "" {
		parsed, err := models.ParseSource(job.Source, job.CustomURL)
		if err != nil {
			log.Printf("refresh worker: bad job source: %v", err)
			return
		}
		src = parsed
	}

	gen := st.Begin()
	res, err := p.LoadData(ctx, src, job.Force)
	if err != nil {
		st.Fail(gen, err)
		log.Printf("refresh worker: load: %v", err)
		return
	}
	applied := st.Apply(gen, state.Snapshot{
		Data:      res.Data,
		Source:    src,
		FromCache: res.FromCache,
		CacheDate: res.CacheDate,
		Notice:    res.Notice,
	})
	if !applied {
		log.Printf("refresh worker: result superseded, dropped")
		return
	}

	if embedder != nil && !res.FromCache {
		if _, err := RefreshEmbeddings(ctx, p.store, embedder); err != nil {
			log.Printf("refresh worker: embeddings after refresh: %v", err)
		}
	}
}
