package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cbrevik/cbc-menu/internal/broadcast"
	"github.com/cbrevik/cbc-menu/internal/config"
	"github.com/cbrevik/cbc-menu/internal/dataset"
	"github.com/cbrevik/cbc-menu/internal/graph"
	"github.com/cbrevik/cbc-menu/internal/logging"
	"github.com/cbrevik/cbc-menu/internal/rating"
	"github.com/cbrevik/cbc-menu/internal/redis"
	"github.com/cbrevik/cbc-menu/internal/server"
)

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	return cfg
}

func setupRedis(cfg *config.Config) *goredis.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := redis.NewClient(ctx, cfg.RedisURL)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	return client
}

func setupGraph(cfg *config.Config) *graph.Client {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := graph.NewClient(ctx, cfg.Neo4jURI, cfg.Neo4jUsername, cfg.Neo4jPassword)
	if err != nil {
		slog.Error("Failed to connect to Neo4j", "error", err)
		os.Exit(1)
	}
	return client
}

// setupSource picks between the live graph store and a local dataset dump.
func setupSource(cfg *config.Config, graphClient *graph.Client) dataset.Source {
	if graphClient != nil {
		return graph.NewStore(graphClient)
	}

	source, err := dataset.NewFileSource(cfg.DatasetFile)
	if err != nil {
		slog.Error("Failed to load dataset file", "path", cfg.DatasetFile, "error", err)
		os.Exit(1)
	}
	slog.Info("Serving dataset from disk", "path", cfg.DatasetFile)
	return source
}

func runGracefulShutdown(srv *server.Server, broadcaster *broadcast.Broadcaster) <-chan struct{} {
	done := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		broadcaster.Stop()

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port)

	redisClient := setupRedis(cfg)
	defer func() { _ = redisClient.Close() }()

	var graphClient *graph.Client
	if cfg.DatasetFile == "" || cfg.DatasetPersist {
		graphClient = setupGraph(cfg)
		defer func() { _ = graphClient.Close(context.Background()) }()
	}

	ratingCache := rating.NewCache(redis.NewRatingStore(redisClient))
	broadcaster := broadcast.NewBroadcaster(ratingCache.Snapshot, clock, cfg.MaxWebSocketClients)
	ratingCache.SetPublisher(broadcaster)

	source := setupSource(cfg, graphClient)
	datasetSvc := dataset.NewService(source, ratingCache, clock, cfg.DatasetTTL)

	// Warm the dataset at startup; the original server refuses to come up
	// without beer data.
	warmCtx, cancelWarm := context.WithTimeout(context.Background(), 60*time.Second)
	ds, err := datasetSvc.Dataset(warmCtx)
	cancelWarm()
	if err != nil {
		slog.Error("Couldn't get beer data", "error", err)
		os.Exit(1)
	}
	slog.Info("Dataset loaded", "beers", len(ds.Beers), "breweries", len(ds.Breweries))

	if cfg.DatasetPersist {
		if err := dataset.WriteFile(cfg.DatasetFile, ds); err != nil {
			slog.Error("Failed to persist dataset", "path", cfg.DatasetFile, "error", err)
			os.Exit(1)
		}
		slog.Info("Wrote dataset to disk", "path", cfg.DatasetFile, "beers", len(ds.Beers))
	}

	checks := []server.HealthCheck{
		{Name: "redis", Check: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }},
	}
	if graphClient != nil {
		checks = append(checks, server.HealthCheck{Name: "neo4j", Check: graphClient.Ping})
	}

	srv, err := server.NewServer(cfg, server.Deps{
		Dataset:     datasetSvc,
		Ratings:     ratingCache,
		Snapshots:   redis.NewSnapshotStore(redisClient),
		Broadcaster: broadcaster,
		Checks:      checks,
		Clock:       clock,
	})
	if err != nil {
		slog.Error("Failed to create server", "error", err)
		os.Exit(1)
	}

	done := runGracefulShutdown(srv, broadcaster)

	slog.Info("Server starting", "port", cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		os.Exit(1)
	}

	<-done
}
