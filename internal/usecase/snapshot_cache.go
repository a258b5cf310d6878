package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"github.com/praio-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// CacheOptions tune invalidation. Zero values take the defaults below.
type CacheOptions struct {
	RecheckAttempts int
	RecheckInterval time.Duration
	Sleep           func(ctx context.Context, d time.Duration) error
	Now             func() time.Time
}

const (
	defaultRecheckAttempts = 6
	defaultRecheckInterval = 60 * time.Second
)

// cacheState is immutable once published.
type cacheState struct {
	records  map[string]*domain.PointRecord
	codes    []string
	hash     uint64
	loadedAt time.Time
}

// SnapshotCache keeps the latest snapshot in memory. Reloads build a new
// state and swap it in, readers keep whatever state they already hold.
type SnapshotCache struct {
	snapshots repository.SnapshotRepository
	state     atomic.Pointer[cacheState]
	reloadMu  sync.Mutex
	opts      CacheOptions
	logger    *zap.Logger
}

func NewSnapshotCache(snapshots repository.SnapshotRepository, opts CacheOptions, logger *zap.Logger) *SnapshotCache {
	if opts.RecheckAttempts < 1 {
		opts.RecheckAttempts = defaultRecheckAttempts
	}
	if opts.RecheckInterval <= 0 {
		opts.RecheckInterval = defaultRecheckInterval
	}
	if opts.Sleep == nil {
		opts.Sleep = sleepContext
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &SnapshotCache{
		snapshots: snapshots,
		opts:      opts,
		logger:    logger,
	}
}

// Load reads the backing file and publishes it. On failure the previous
// state stays in place.
func (c *SnapshotCache) Load(ctx context.Context) error {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()
	return c.load(ctx)
}

func (c *SnapshotCache) load(ctx context.Context) error {
	data, hash, err := c.snapshots.Read(ctx)
	if err != nil {
		c.logger.Warn("Failed to read snapshot", zap.Error(err))
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		c.logger.Warn("Failed to decode snapshot", zap.Error(err))
		return fmt.Errorf("decode snapshot: %w", err)
	}

	state := &cacheState{
		records:  make(map[string]*domain.PointRecord, len(snapshot)),
		codes:    make([]string, 0, len(snapshot)),
		hash:     hash,
		loadedAt: c.opts.Now(),
	}
	for code, raw := range snapshot {
		record, err := domain.ParsePointRecord(code, raw)
		if err != nil {
			// still served verbatim by the full record view
			c.logger.Warn("Snapshot record not decodable", zap.String("code", code), zap.Error(err))
			record = &domain.PointRecord{Code: code, Point: domain.MonitoringPoint{Code: code}, Raw: raw}
		}
		state.records[code] = record
		state.codes = append(state.codes, code)
	}
	sort.Strings(state.codes)

	c.state.Store(state)
	c.logger.Info("Snapshot cache loaded",
		zap.Int("points", len(state.codes)),
		zap.String("hash", formatHash(hash)))
	return nil
}

// Invalidate rechecks the backing file hash until it differs from the cached
// one, then reloads. An unchanged file is reported, not treated as an error.
func (c *SnapshotCache) Invalidate(ctx context.Context) (*dto.RefreshResponse, error) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	for attempt := 1; attempt <= c.opts.RecheckAttempts; attempt++ {
		if c.changed(ctx) {
			if err := c.load(ctx); err == nil {
				return &dto.RefreshResponse{Status: dto.RefreshUpdated, Attempts: attempt}, nil
			}
		}
		if attempt == c.opts.RecheckAttempts {
			break
		}
		if err := c.opts.Sleep(ctx, c.opts.RecheckInterval); err != nil {
			return nil, err
		}
	}

	c.logger.Info("Snapshot unchanged after rechecks", zap.Int("attempts", c.opts.RecheckAttempts))
	return &dto.RefreshResponse{Status: dto.RefreshUnchanged, Hash: c.Hash()}, nil
}

// ReloadIfChanged reloads once when the backing file hash moved.
func (c *SnapshotCache) ReloadIfChanged(ctx context.Context) (bool, error) {
	c.reloadMu.Lock()
	defer c.reloadMu.Unlock()

	if !c.changed(ctx) {
		return false, nil
	}
	if err := c.load(ctx); err != nil {
		return false, err
	}
	return true, nil
}

func (c *SnapshotCache) changed(ctx context.Context) bool {
	hash, err := c.snapshots.Hash(ctx)
	if err != nil {
		c.logger.Debug("Snapshot hash unavailable", zap.Error(err))
		return false
	}
	state := c.state.Load()
	return state == nil || state.hash != hash
}

// Hash returns the hash of the cached content, empty before the first load.
func (c *SnapshotCache) Hash() string {
	state := c.state.Load()
	if state == nil {
		return ""
	}
	return formatHash(state.hash)
}

// Loaded reports whether a non-empty snapshot is being served.
func (c *SnapshotCache) Loaded() bool {
	state := c.state.Load()
	return state != nil && len(state.codes) > 0
}

func (c *SnapshotCache) current() *cacheState {
	return c.state.Load()
}

func formatHash(hash uint64) string {
	return fmt.Sprintf("%016x", hash)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
