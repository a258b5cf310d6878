package snapshot

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"github.com/praio-service/internal/worker"
	"go.uber.org/zap"
)

// groupCleanupTimeout bounds the group removal on stop
const groupCleanupTimeout = 5 * time.Second

// RefreshListener reloads the cache on refresh events published by the ingester.
// Every instance reads through its own consumer group so that each replica sees
// every event.
type RefreshListener struct {
	*worker.BaseWorker
	streams      repository.StreamRepository
	cache        Reloader
	stream       string
	consumerName string
}

// NewRefreshListener names the instance group groupPrefix:hostname-pid-suffix.
func NewRefreshListener(
	streams repository.StreamRepository,
	cache Reloader,
	groupPrefix string,
	logger *zap.Logger,
) *RefreshListener {
	hostname, _ := os.Hostname()
	consumerName := fmt.Sprintf("%s-%d-%s", hostname, os.Getpid(), uuid.NewString()[:8])

	return &RefreshListener{
		BaseWorker:   worker.NewBaseWorker("refresh-listener", groupPrefix+":"+consumerName, logger),
		streams:      streams,
		cache:        cache,
		stream:       domain.StreamSnapshotRefreshed,
		consumerName: consumerName,
	}
}

func (w *RefreshListener) Start(ctx context.Context) error {
	logger := w.Logger()

	if err := w.streams.CreateConsumerGroup(ctx, w.stream, w.ConsumerGroup()); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	defer w.deleteGroup()

	consumeCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := w.streams.ConsumeStream(consumeCtx, w.stream, w.ConsumerGroup(), w.consumerName)
	if err != nil {
		return fmt.Errorf("failed to consume stream: %w", err)
	}

	logger.Info("Refresh listener started",
		zap.String("stream", w.stream),
		zap.String("consumer_group", w.ConsumerGroup()),
		zap.String("consumer_name", w.consumerName))

	for {
		select {
		case <-w.StopChan():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			w.handle(ctx, msg)
		}
	}
}

func (w *RefreshListener) handle(ctx context.Context, msg domain.StreamMessage) {
	logger := w.Logger()

	var event domain.SnapshotRefreshedEvent
	if err := json.Unmarshal([]byte(msg.Data), &event); err != nil {
		// ack broken messages so they do not stay pending
		logger.Warn("Failed to parse refresh event, skipping",
			zap.String("message_id", msg.ID),
			zap.Error(err))
		_ = w.streams.AckMessage(ctx, w.stream, w.ConsumerGroup(), msg.ID)
		return
	}

	reloaded, err := w.cache.ReloadIfChanged(ctx)
	if err != nil {
		logger.Warn("Reload after refresh event failed",
			zap.String("event_id", event.ID.String()),
			zap.Error(err))
	} else {
		logger.Info("Refresh event handled",
			zap.String("event_id", event.ID.String()),
			zap.Int("points", event.Points),
			zap.Bool("reloaded", reloaded))
	}

	if err := w.streams.AckMessage(ctx, w.stream, w.ConsumerGroup(), msg.ID); err != nil {
		logger.Warn("Failed to ack refresh event", zap.String("message_id", msg.ID), zap.Error(err))
	}
}

// deleteGroup drops the instance group so restarts do not leave stale groups behind.
func (w *RefreshListener) deleteGroup() {
	ctx, cancel := context.WithTimeout(context.Background(), groupCleanupTimeout)
	defer cancel()

	if err := w.streams.DeleteConsumerGroup(ctx, w.stream, w.ConsumerGroup()); err != nil {
		w.Logger().Warn("Failed to delete consumer group",
			zap.String("consumer_group", w.ConsumerGroup()),
			zap.Error(err))
	}
}
