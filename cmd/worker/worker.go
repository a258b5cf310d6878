package main

import (
	"context"

	"github.com/praio-service/internal/config"
	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"github.com/praio-service/internal/infrastructure/bulletin"
	"github.com/praio-service/internal/infrastructure/httpfetch"
	"github.com/praio-service/internal/infrastructure/notify"
	"github.com/praio-service/internal/infrastructure/openmeteo"
	"github.com/praio-service/internal/pkg/logger"
	"github.com/praio-service/internal/repository/cache"
	"github.com/praio-service/internal/repository/filestore"
	redisRepo "github.com/praio-service/internal/repository/redis"
	"github.com/praio-service/internal/repository/store"
	"github.com/praio-service/internal/usecase"
	"github.com/praio-service/internal/worker"
	"github.com/praio-service/internal/worker/pipeline"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// startWorkers schedules ingestion and aggregation for the lifetime of the app.
func startWorkers(
	lc fx.Lifecycle,
	cfg *config.Config,
	ingestion *usecase.IngestionUseCase,
	aggregation *usecase.AggregationUseCase,
	logger *zap.Logger,
) error {
	ingestWorker, err := pipeline.NewIngestionWorker(ingestion, cfg.Schedule.Ingest, cfg.Location(), logger)
	if err != nil {
		return err
	}
	aggregateWorker, err := pipeline.NewAggregationWorker(aggregation, cfg.Schedule.Aggregate, cfg.Location(), logger)
	if err != nil {
		return err
	}

	manager := worker.NewWorkerManager(logger)
	manager.Register(ingestWorker)
	manager.Register(aggregateWorker)

	// workers outlive the start context
	ctx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("Starting scheduled workers",
				zap.String("ingest_schedule", cfg.Schedule.Ingest),
				zap.String("aggregate_schedule", cfg.Schedule.Aggregate),
				zap.Int("concurrency", cfg.Schedule.Concurrency))
			return manager.Start(ctx)
		},
		OnStop: func(context.Context) error {
			defer cancel()
			return manager.Stop()
		},
	})

	return nil
}

// step - one job run outside the schedule
type step struct {
	name string
	run  worker.Job
}

// runOnce runs the ingestion and aggregation workers' jobs a single time each.
func runOnce(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	cfg *config.Config,
	ingestion *usecase.IngestionUseCase,
	aggregation *usecase.AggregationUseCase,
	logger *zap.Logger,
) error {
	ingestWorker, err := pipeline.NewIngestionWorker(ingestion, cfg.Schedule.Ingest, cfg.Location(), logger)
	if err != nil {
		return err
	}
	aggregateWorker, err := pipeline.NewAggregationWorker(aggregation, cfg.Schedule.Aggregate, cfg.Location(), logger)
	if err != nil {
		return err
	}

	runSteps(lc, shutdowner, logger,
		step{name: ingestWorker.Name(), run: ingestWorker.RunOnce},
		step{name: aggregateWorker.Name(), run: aggregateWorker.RunOnce},
	)
	return nil
}

// runRate recomputes the ratings of the points named on the command line.
func runRate(codes []string) func(fx.Lifecycle, fx.Shutdowner, *usecase.AggregationUseCase, *zap.Logger) {
	return func(lc fx.Lifecycle, shutdowner fx.Shutdowner, aggregation *usecase.AggregationUseCase, logger *zap.Logger) {
		runSteps(lc, shutdowner, logger, step{name: "rate", run: pipeline.PointsJob(aggregation, codes)})
	}
}

// runSteps runs the steps in order once the app starts, then shuts it down
// with a non-zero exit code if any failed.
func runSteps(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *zap.Logger, steps ...step) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				defer close(done)

				code := 0
				for _, s := range steps {
					if err := s.run(ctx); err != nil {
						logger.Error("Job failed", zap.String("job", s.name), zap.Error(err))
						code = 1
					}
				}

				if err := shutdowner.Shutdown(fx.ExitCode(code)); err != nil {
					logger.Error("Failed to request shutdown", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case <-done:
				return nil
			case <-stopCtx.Done():
				return stopCtx.Err()
			}
		},
	})
}

// ProvideLogger creates the process logger
func ProvideLogger(lc fx.Lifecycle, cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(cfg.Log.Level, "praio-worker")
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			_ = log.Sync()
			return nil
		},
	})
	return log, nil
}

// ProvideVoteRepository opens the vote store selected by STORE_URI
func ProvideVoteRepository(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (repository.VoteRepository, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Fetch.Timeout)
	defer cancel()

	votes, err := store.OpenVoteRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return votes.Close()
		},
	})
	return votes, nil
}

// ProvideRegistry creates the static point registry reader
func ProvideRegistry(cfg *config.Config) repository.RegistryRepository {
	return filestore.NewRegistryRepository(cfg.Files.Registry)
}

// ProvideSnapshots creates the snapshot file repository
func ProvideSnapshots(cfg *config.Config, logger *zap.Logger) repository.SnapshotRepository {
	return filestore.NewSnapshotRepository(cfg.Files.Snapshot, logger)
}

// ProvideForecast creates the weather and marine forecast client
func ProvideForecast(cfg *config.Config, logger *zap.Logger) repository.ForecastRepository {
	fetcher := httpfetch.New(httpfetch.Options{
		Timeout:     cfg.Fetch.Timeout,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		BackoffMin:  cfg.Fetch.BackoffMin,
		BackoffMax:  cfg.Fetch.BackoffMax,
		UserAgent:   cfg.Fetch.UserAgent,
	}, logger)
	return openmeteo.NewClient(fetcher, cfg.Sources.ForecastURL, cfg.Sources.MarineURL, logger)
}

// ProvideReadings exposes the reading builder to the ingestion cycle
func ProvideReadings(forecast repository.ForecastRepository, logger *zap.Logger) usecase.ReadingFetcher {
	return usecase.NewReadingUseCase(forecast, logger)
}

// ProvideBulletin creates the water quality bulletin client. The document fetcher
// does not retry on its own, the client runs its own download attempts.
func ProvideBulletin(cfg *config.Config, logger *zap.Logger) repository.BulletinRepository {
	pages := httpfetch.New(httpfetch.Options{
		Timeout:     cfg.Fetch.IndexTimeout,
		MaxAttempts: cfg.Fetch.MaxAttempts,
		BackoffMin:  cfg.Fetch.BackoffMin,
		BackoffMax:  cfg.Fetch.BackoffMax,
		UserAgent:   cfg.Fetch.UserAgent,
	}, logger)
	documents := httpfetch.New(httpfetch.Options{
		Timeout:     cfg.Fetch.IndexTimeout,
		MaxAttempts: 1,
		UserAgent:   cfg.Fetch.UserAgent,
	}, logger)

	return bulletin.NewClient(bulletin.Options{
		IndexURL:         cfg.Sources.BulletinIndexURL,
		DownloadAttempts: cfg.Fetch.DownloadRetries,
		DownloadBackoff:  cfg.Fetch.DownloadBackoff,
	}, pages, documents, nil, logger)
}

// ProvideCompliance exposes the bulletin refresh to the ingestion cycle
func ProvideCompliance(cfg *config.Config, source repository.BulletinRepository, logger *zap.Logger) usecase.ComplianceSource {
	return usecase.NewBulletinUseCase(source, cfg.Files.Bulletin, logger)
}

// ProvideNotifier announces finished cycles over HTTP and, when Redis is enabled,
// on the refresh stream.
func ProvideNotifier(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (usecase.RefreshNotifier, error) {
	var notifiers notify.Multi
	if cfg.Notify.URL != "" {
		notifiers = append(notifiers, notify.NewHTTPNotifier(cfg.Notify.URL, cfg.Notify.Timeout, logger))
	}

	if cfg.Redis.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Notify.Timeout)
		defer cancel()

		redisClient, err := cache.NewRedis(ctx, &cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		lc.Append(fx.Hook{
			OnStop: func(context.Context) error {
				return redisClient.Close()
			},
		})
		streams := redisRepo.NewStreamRepository(redisClient.Client(), logger)
		notifiers = append(notifiers, notify.NewStreamNotifier(streams, domain.StreamSnapshotRefreshed))
	}

	return notifiers, nil
}

// ProvideIngestion creates the ingestion cycle
func ProvideIngestion(
	cfg *config.Config,
	registry repository.RegistryRepository,
	snapshots repository.SnapshotRepository,
	readings usecase.ReadingFetcher,
	compliance usecase.ComplianceSource,
	notifier usecase.RefreshNotifier,
	logger *zap.Logger,
) *usecase.IngestionUseCase {
	return usecase.NewIngestionUseCase(registry, snapshots, readings, compliance, notifier, usecase.IngestionOptions{
		Location:    cfg.Location(),
		Concurrency: cfg.Schedule.Concurrency,
	}, logger)
}

// ProvideAggregation creates the rating aggregation pass
func ProvideAggregation(
	votes repository.VoteRepository,
	snapshots repository.SnapshotRepository,
	logger *zap.Logger,
) *usecase.AggregationUseCase {
	return usecase.NewAggregationUseCase(votes, snapshots, logger)
}
