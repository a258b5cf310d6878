package main

// @title Praio API
// @version 1.2.0
// @description Beach conditions for monitored bathing points: latest weather and marine readings,
// @description a 24 hour forecast, water quality compliance from the public bulletin and user ratings.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8000
// @BasePath /
// @schemes http https

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/praio-service/docs"
	"github.com/praio-service/internal/config"
	httpDelivery "github.com/praio-service/internal/delivery/http"
	"github.com/praio-service/internal/delivery/http/handler"
	"github.com/praio-service/internal/infrastructure/identity"
	"github.com/praio-service/internal/pkg/logger"
	"github.com/praio-service/internal/repository/cache"
	"github.com/praio-service/internal/repository/filestore"
	redisRepo "github.com/praio-service/internal/repository/redis"
	"github.com/praio-service/internal/repository/store"
	"github.com/praio-service/internal/usecase"
	"github.com/praio-service/internal/worker"
	"github.com/praio-service/internal/worker/snapshot"
	"go.uber.org/zap"
)

// refreshGroupPrefix - prefix of each API replica's own consumer group on the refresh stream
const refreshGroupPrefix = "praio-api"

func main() {
	// 1. Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// 2. Initialize logger
	log, err := logger.New(cfg.Log.Level, "praio-api")
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer log.Sync()

	log.Info("Starting Praio API")
	log.Info("Configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("server_addr", cfg.GetServerAddr()),
		zap.String("snapshot_file", cfg.Files.Snapshot),
	)

	// 3. Connect to the vote store
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	votes, err := store.OpenVoteRepository(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open vote store", zap.Error(err))
	}
	defer func() {
		if err := votes.Close(); err != nil {
			log.Error("Failed to close vote store", zap.Error(err))
		}
	}()
	log.Info("Vote store connected")

	// 4. Load the snapshot cache. A missing file is not fatal, the poller picks it up later.
	snapshots := filestore.NewSnapshotRepository(cfg.Files.Snapshot, log)
	snapshotCache := usecase.NewSnapshotCache(snapshots, usecase.CacheOptions{
		RecheckAttempts: cfg.Cache.RecheckAttempts,
		RecheckInterval: cfg.Cache.RecheckInterval,
	}, log)

	if err := snapshotCache.Load(ctx); err != nil {
		log.Warn("Snapshot not loaded at startup", zap.Error(err))
	}

	// 5. Initialize use cases
	pointUC := usecase.NewPointUseCase(snapshotCache, log)
	verifier := identity.NewGoogleVerifier(cfg.Identity.GoogleClientID, log)
	voteUC := usecase.NewVoteUseCase(votes, verifier, cfg.Vote.Window, log)

	log.Info("Use cases initialized")

	// 6. Background cache refresh
	workerManager := worker.NewWorkerManager(log)
	workerManager.Register(snapshot.NewPollerWorker(snapshotCache, cfg.Cache.PollInterval, log))

	var redisClient *cache.Redis
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedis(ctx, &cfg.Redis, log)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		streams := redisRepo.NewStreamRepository(redisClient.Client(), log)
		workerManager.Register(snapshot.NewRefreshListener(streams, snapshotCache, refreshGroupPrefix, log))
		log.Info("Redis connected, listening for refresh events")
	}

	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()

	if err := workerManager.Start(workerCtx); err != nil {
		log.Fatal("Failed to start workers", zap.Error(err))
	}

	// 7. Initialize HTTP handlers and server
	pointHandler := handler.NewPointHandler(pointUC, snapshotCache, log)
	voteHandler := handler.NewVoteHandler(voteUC, log)
	healthHandler := handler.NewHealthHandler(snapshotCache.Loaded, votes, log)
	if redisClient != nil {
		healthHandler.WithStream(redisClient)
	}

	server := httpDelivery.NewServer(
		cfg,
		log,
		pointHandler,
		voteHandler,
		healthHandler,
	)

	// 8. Start server in goroutine
	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started successfully",
		zap.String("address", cfg.GetServerAddr()),
		zap.String("env", cfg.Server.Env),
	)

	// 9. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", zap.Error(err))
	}

	workerCancel()
	if err := workerManager.Stop(); err != nil {
		log.Error("Failed to stop workers", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Failed to close Redis", zap.Error(err))
		}
	}

	log.Info("Server stopped successfully")
}
