package filestore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/google/renameio/v2"
	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"go.uber.org/zap"
)

const indent = "    "

type snapshotRepository struct {
	path   string
	mu     sync.Mutex
	logger *zap.Logger
}

// NewSnapshotRepository stores the snapshot as an indented JSON file. Writes go to a
// temporary file that is renamed over path, so readers never see a partial file.
func NewSnapshotRepository(path string, logger *zap.Logger) repository.SnapshotRepository {
	return &snapshotRepository{
		path:   path,
		logger: logger,
	}
}

func (r *snapshotRepository) Load(ctx context.Context) (domain.Snapshot, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Info("No previous snapshot", zap.String("path", r.path))
		} else {
			r.logger.Warn("Previous snapshot unreadable, starting empty",
				zap.String("path", r.path),
				zap.Error(err))
		}
		return domain.Snapshot{}, nil
	}

	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		r.logger.Warn("Previous snapshot corrupt, starting empty",
			zap.String("path", r.path),
			zap.Error(err))
		return domain.Snapshot{}, nil
	}
	if snapshot == nil {
		snapshot = domain.Snapshot{}
	}

	return snapshot, nil
}

func (r *snapshotRepository) Save(ctx context.Context, snapshot domain.Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.write(snapshot)
}

func (r *snapshotRepository) UpdateRecords(
	ctx context.Context,
	codes []string,
	fn func(code string, record json.RawMessage) (json.RawMessage, error),
) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return 0, fmt.Errorf("failed to read snapshot: %w", err)
	}
	var snapshot domain.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return 0, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	updated := 0
	for _, code := range codes {
		record, ok := snapshot[code]
		if !ok {
			continue
		}
		next, err := fn(code, record)
		if err != nil {
			return 0, fmt.Errorf("update %s: %w", code, err)
		}
		snapshot[code] = next
		updated++
	}

	if updated == 0 {
		return 0, nil
	}
	if err := r.write(snapshot); err != nil {
		return 0, err
	}
	return updated, nil
}

func (r *snapshotRepository) Read(ctx context.Context) ([]byte, uint64, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, 0, err
	}
	return data, xxhash.Sum64(data), nil
}

func (r *snapshotRepository) Hash(ctx context.Context) (uint64, error) {
	_, sum, err := r.Read(ctx)
	return sum, err
}

func (r *snapshotRepository) write(snapshot domain.Snapshot) error {
	data, err := Encode(snapshot)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	r.logger.Debug("Snapshot written",
		zap.String("path", r.path),
		zap.Int("points", len(snapshot)))
	return nil
}

// Encode renders a snapshot as indented JSON with codes in lexical order.
func Encode(snapshot domain.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", indent)
	if err := enc.Encode(snapshot); err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
