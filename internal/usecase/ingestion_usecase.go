package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ReadingFetcher builds the reading of one point at the reference hour.
type ReadingFetcher interface {
	Fetch(ctx context.Context, point domain.MonitoringPoint, hour time.Time) domain.CurrentReading
}

// ComplianceSource refreshes the station code -> compliance mapping.
type ComplianceSource interface {
	Refresh(ctx context.Context) map[string]bool
}

// RefreshNotifier announces a written snapshot to the read side.
type RefreshNotifier interface {
	Notify(ctx context.Context, event domain.SnapshotRefreshedEvent) error
}

// IngestionOptions tune a cycle. Zero values fall back to sequential fetches,
// the local clock and UTC.
type IngestionOptions struct {
	Location    *time.Location
	Concurrency int
	Now         func() time.Time
}

// CycleResult summarizes one ingestion cycle.
type CycleResult struct {
	Hour      time.Time
	Points    int
	Fresh     int
	Fallbacks int
	Snapshot  domain.Snapshot
}

// IngestionUseCase rebuilds the snapshot from the registry and the upstream sources.
type IngestionUseCase struct {
	registry  repository.RegistryRepository
	snapshots repository.SnapshotRepository
	readings  ReadingFetcher
	bulletin  ComplianceSource
	notifier  RefreshNotifier
	opts      IngestionOptions
	logger    *zap.Logger
}

func NewIngestionUseCase(
	registry repository.RegistryRepository,
	snapshots repository.SnapshotRepository,
	readings ReadingFetcher,
	bulletin ComplianceSource,
	notifier RefreshNotifier,
	opts IngestionOptions,
	logger *zap.Logger,
) *IngestionUseCase {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &IngestionUseCase{
		registry:  registry,
		snapshots: snapshots,
		readings:  readings,
		bulletin:  bulletin,
		notifier:  notifier,
		opts:      opts,
		logger:    logger,
	}
}

// RunCycle runs one full cycle. Only an unreadable registry or a failed
// snapshot write aborts it.
func (uc *IngestionUseCase) RunCycle(ctx context.Context) (*CycleResult, error) {
	started := uc.opts.Now()
	hour := domain.ReferenceHour(started, uc.opts.Location)

	registry, err := uc.registry.Load(ctx)
	if err != nil {
		uc.logger.Error("Failed to load point registry", zap.Error(err))
		return nil, fmt.Errorf("load registry: %w", err)
	}

	compliance := uc.bulletin.Refresh(ctx)

	previous, err := uc.snapshots.Load(ctx)
	if err != nil {
		uc.logger.Warn("Previous snapshot unavailable, starting empty", zap.Error(err))
		previous = domain.Snapshot{}
	}

	uc.logger.Info("Ingestion cycle started",
		zap.Int("points", len(registry)),
		zap.Int("compliance_stations", len(compliance)),
		zap.String("hour", hour.Format(domain.TimestampLayout)))

	result := &CycleResult{
		Hour:     hour,
		Points:   len(registry),
		Snapshot: make(domain.Snapshot, len(registry)),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.opts.Concurrency)

	for _, code := range registry.Codes() {
		entry := registry[code]
		g.Go(func() error {
			record, fallback, err := uc.mergePoint(gctx, entry, hour, compliance, previous[entry.Point.Code])
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			result.Snapshot[entry.Point.Code] = record
			if fallback {
				result.Fallbacks++
			} else {
				result.Fresh++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := uc.snapshots.Save(ctx, result.Snapshot); err != nil {
		uc.logger.Error("Failed to write snapshot", zap.Error(err))
		return nil, fmt.Errorf("save snapshot: %w", err)
	}

	uc.logger.Info("Ingestion cycle completed",
		zap.Int("points", result.Points),
		zap.Int("fresh", result.Fresh),
		zap.Int("fallbacks", result.Fallbacks),
		zap.Duration("duration", uc.opts.Now().Sub(started)))

	uc.notify(ctx, result)
	return result, nil
}

// mergePoint applies the fallback policy to one point. The bool reports
// whether the fetch failed for the point.
func (uc *IngestionUseCase) mergePoint(
	ctx context.Context,
	entry domain.RegistryEntry,
	hour time.Time,
	compliance map[string]bool,
	previous json.RawMessage,
) (json.RawMessage, bool, error) {
	code := entry.Point.Code
	reading := uc.readings.Fetch(ctx, entry.Point, hour)

	if reading.Failed() && len(previous) > 0 {
		uc.logger.Warn("Fetch failed, carrying previous record forward", zap.String("code", code))
		return previous, true, nil
	}

	if status, ok := compliance[code]; ok {
		reading.Compliance = &status
	}

	record, err := domain.BuildRecord(entry, reading, previous)
	if err != nil {
		return nil, false, err
	}

	if reading.Failed() {
		uc.logger.Warn("Fetch failed with no previous record, storing static fields", zap.String("code", code))
		return record, true, nil
	}
	return record, false, nil
}

func (uc *IngestionUseCase) notify(ctx context.Context, result *CycleResult) {
	if uc.notifier == nil {
		return
	}
	event := domain.SnapshotRefreshedEvent{
		ID:          uuid.New(),
		Points:      result.Points,
		Fallbacks:   result.Fallbacks,
		CompletedAt: uc.opts.Now(),
	}
	if err := uc.notifier.Notify(ctx, event); err != nil {
		uc.logger.Warn("Refresh notification failed, read side will poll", zap.Error(err))
	}
}
