package testhelpers

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/praio-service/internal/domain/repository"
	"github.com/praio-service/internal/repository/postgres"
	"go.uber.org/zap"
)

// NewDBForTest creates a postgres.DB with test database and logger
func NewDBForTest(db *sqlx.DB, logger *zap.Logger) *postgres.DB {
	return postgres.NewDBForTest(db, logger)
}

// NewVoteRepositoryForTest applies the schema and creates a vote repository
func NewVoteRepositoryForTest(ctx context.Context, db *sqlx.DB, logger *zap.Logger) (repository.VoteRepository, error) {
	pgDB := NewDBForTest(db, logger)
	if err := pgDB.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	return postgres.NewVoteRepository(pgDB), nil
}
