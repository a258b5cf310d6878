package pipeline

import (
	"context"
	"time"

	"github.com/praio-service/internal/usecase"
	"github.com/praio-service/internal/worker"
	"go.uber.org/zap"
)

const (
	IngestionWorkerName   = "ingestion"
	AggregationWorkerName = "aggregation"
)

// CycleRunner runs one ingestion cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (*usecase.CycleResult, error)
}

// RatingAggregator runs one aggregation pass.
type RatingAggregator interface {
	Run(ctx context.Context) (*usecase.AggregationResult, error)
}

// PointAggregator recomputes the ratings of selected points.
type PointAggregator interface {
	RunPoints(ctx context.Context, codes []string) (*usecase.AggregationResult, error)
}

// NewIngestionWorker schedules ingestion cycles. The first cycle runs at start.
func NewIngestionWorker(runner CycleRunner, spec string, location *time.Location, logger *zap.Logger) (*worker.ScheduledWorker, error) {
	return worker.NewScheduledWorker(IngestionWorkerName, spec, IngestionJob(runner), true, location, logger)
}

// NewAggregationWorker schedules rating aggregation. The first pass runs at start.
func NewAggregationWorker(aggregator RatingAggregator, spec string, location *time.Location, logger *zap.Logger) (*worker.ScheduledWorker, error) {
	return worker.NewScheduledWorker(AggregationWorkerName, spec, AggregationJob(aggregator), true, location, logger)
}

func IngestionJob(runner CycleRunner) worker.Job {
	return func(ctx context.Context) error {
		_, err := runner.RunCycle(ctx)
		return err
	}
}

func AggregationJob(aggregator RatingAggregator) worker.Job {
	return func(ctx context.Context) error {
		_, err := aggregator.Run(ctx)
		return err
	}
}

// PointsJob recomputes the ratings of the given points only.
func PointsJob(aggregator PointAggregator, codes []string) worker.Job {
	return func(ctx context.Context) error {
		_, err := aggregator.RunPoints(ctx, codes)
		return err
	}
}
