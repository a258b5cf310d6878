package store

import (
	"context"
	"fmt"

	"github.com/praio-service/internal/config"
	"github.com/praio-service/internal/domain/repository"
	"github.com/praio-service/internal/repository/mongodb"
	"github.com/praio-service/internal/repository/postgres"
	"go.uber.org/zap"
)

// OpenVoteRepository connects the vote store STORE_URI points at.
func OpenVoteRepository(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.VoteRepository, error) {
	kind, err := cfg.StoreKind()
	if err != nil {
		return nil, err
	}

	switch kind {
	case config.StoreMongo:
		return mongodb.NewVoteRepository(ctx, cfg.Store.URI, cfg.Store.Database, logger)

	case config.StorePostgres:
		db, err := postgres.New(cfg.Store.URI, logger)
		if err != nil {
			return nil, err
		}
		if err := db.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return postgres.NewVoteRepository(db), nil
	}

	return nil, fmt.Errorf("unsupported vote store %q", kind)
}
