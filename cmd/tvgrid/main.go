package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/tvgrid/tvgrid/internal/cache"
	"github.com/tvgrid/tvgrid/internal/config"
	"github.com/tvgrid/tvgrid/internal/embedding"
	"github.com/tvgrid/tvgrid/internal/fetcher"
	"github.com/tvgrid/tvgrid/internal/server"
	"github.com/tvgrid/tvgrid/internal/service"
	"github.com/tvgrid/tvgrid/internal/state"
	"github.com/tvgrid/tvgrid/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (env vars take precedence when unset)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(configPath string) error {
	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := store.EnsurePgvector(cfg.DatabaseURL); err != nil {
		return err
	}
	if err := store.RunMigrations(cfg.DatabaseURL, migrationsPath()); err != nil {
		return err
	}

	pg, err := store.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pg.Close()

	var st store.Store = pg
	var rds *cache.Redis
	if cfg.RedisURL != "" {
		rds, err = cache.New(cfg.RedisURL)
		if err != nil {
			return err
		}
		defer rds.Close()
		if err := rds.Ping(ctx); err != nil {
			return err
		}
		st = store.NewCachedStore(pg, rds)
		log.Printf("redis cache enabled")
	}

	var embedder *embedding.Client
	if cfg.VoyageAPIKey != "" {
		embedder = embedding.NewClient(cfg.VoyageAPIKey, cfg.VoyageModel)
		log.Printf("semantic search enabled (model %s)", cfg.VoyageModel)
	}

	src, err := cfg.Source()
	if err != nil {
		return err
	}
	container := state.New(src)

	f := fetcher.New(cfg.UserAgent, cfg.Timeout)
	pipeline := service.NewPipeline(st, f, cfg.CacheTTL)

	// Initial load in the background so the server starts serving
	// /api/status immediately.
	go func() {
		gen := container.Begin()
		res, err := pipeline.LoadData(ctx, src, false)
		if err != nil {
			container.Fail(gen, err)
			log.Printf("initial load failed: %v", err)
			return
		}
		container.Apply(gen, state.Snapshot{
			Data:      res.Data,
			Source:    src,
			FromCache: res.FromCache,
			CacheDate: res.CacheDate,
			Notice:    res.Notice,
		})
		log.Printf("loaded %d channels (from_cache=%v)", len(res.Data.Channels), res.FromCache)

		if embedder != nil && !res.FromCache {
			if n, err := service.RefreshEmbeddings(ctx, st, embedder); err != nil {
				log.Printf("embedding refresh: %v", err)
			} else if n > 0 {
				log.Printf("embedded %d channels", n)
			}
		}
	}()

	if rds != nil {
		go service.RunRefreshWorker(ctx, rds, pipeline, container, embedder)
	}

	srv := server.New(st, container, pipeline, cfg, embedder, rds)
	return srv.ListenAndServe(ctx)
}

// migrationsPath resolves the migrations directory relative to the
// working directory, falling back to the executable's directory.
func migrationsPath() string {
	if _, err := os.Stat("migrations"); err == nil {
		return "file://migrations"
	}
	if exe, err := os.Executable(); err == nil {
		dir := filepath.Join(filepath.Dir(exe), "migrations")
		if _, err := os.Stat(dir); err == nil {
			return "file://" + dir
		}
	}
	return "file://migrations"
}
