package repository

import (
	"context"
	"encoding/json"

	"github.com/praio-service/internal/domain"
)

// RegistryRepository - read access to the static monitoring point registry
type RegistryRepository interface {
	// Load reads every registered point. Errors wrap domain.ErrRegistryLoad.
	Load(ctx context.Context) (domain.Registry, error)
}

// SnapshotRepository - the persisted snapshot file
type SnapshotRepository interface {
	// Load returns the current snapshot; a missing or corrupt file is an empty snapshot.
	Load(ctx context.Context) (domain.Snapshot, error)

	// Save replaces the whole snapshot atomically.
	Save(ctx context.Context, snapshot domain.Snapshot) error

	// UpdateRecords rewrites chosen records under a read-modify-write of the whole file.
	// fn receives the code and current record and returns the replacement.
	UpdateRecords(ctx context.Context, codes []string, fn func(code string, record json.RawMessage) (json.RawMessage, error)) (int, error)

	// Read returns the raw file content and its content hash.
	Read(ctx context.Context) ([]byte, uint64, error)

	// Hash returns the content hash of the backing file.
	Hash(ctx context.Context) (uint64, error)
}
