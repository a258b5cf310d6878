package repository

import (
	"context"

	"github.com/praio-service/internal/domain"
)

// VoteRepository - persisted vote records
type VoteRepository interface {
	// FindByPointAndUser returns the stored vote for the pair, nil when none.
	FindByPointAndUser(ctx context.Context, pointID, userID string) (*domain.VoteRecord, error)

	// FindByPoint returns every vote for a point.
	FindByPoint(ctx context.Context, pointID string) ([]*domain.VoteRecord, error)

	// List returns every vote.
	List(ctx context.Context) ([]*domain.VoteRecord, error)

	// Insert stores a new vote.
	Insert(ctx context.Context, vote *domain.VoteRecord) error

	// Delete removes a vote by id.
	Delete(ctx context.Context, id string) error

	// Health checks the store connection.
	Health(ctx context.Context) error

	Close() error
}
