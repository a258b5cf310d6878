package snapshot

import (
	"context"
	"time"

	"github.com/praio-service/internal/worker"
	"go.uber.org/zap"
)

// Reloader - the snapshot cache as seen by the refresh workers
type Reloader interface {
	ReloadIfChanged(ctx context.Context) (bool, error)
}

// PollerWorker reloads the cache whenever the backing file hash moves.
// It covers lost refresh notifications.
type PollerWorker struct {
	*worker.BaseWorker
	cache    Reloader
	interval time.Duration
}

func NewPollerWorker(cache Reloader, interval time.Duration, logger *zap.Logger) *PollerWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &PollerWorker{
		BaseWorker: worker.NewBaseWorker("snapshot-poller", "", logger),
		cache:      cache,
		interval:   interval,
	}
}

func (w *PollerWorker) Start(ctx context.Context) error {
	logger := w.Logger()
	logger.Info("Snapshot poller started", zap.Duration("interval", w.interval))

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.StopChan():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			reloaded, err := w.cache.ReloadIfChanged(ctx)
			if err != nil {
				logger.Warn("Snapshot poll failed", zap.Error(err))
				continue
			}
			if reloaded {
				logger.Info("Snapshot changed on disk, cache reloaded")
			}
		}
	}
}
