package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
)

type voteRepository struct {
	db *DB
}

// NewVoteRepository creates the Postgres-backed vote store.
func NewVoteRepository(db *DB) repository.VoteRepository {
	return &voteRepository{db: db}
}

// voteRow is the flat table layout of a vote
type voteRow struct {
	ID             string    `db:"id"`
	PointID        string    `db:"praia_id"`
	UserID         string    `db:"user_id"`
	Cleanliness    int       `db:"limpeza"`
	Accessibility  int       `db:"acessibilidade"`
	Infrastructure int       `db:"infraestrutura"`
	Safety         int       `db:"seguranca"`
	Tranquility    int       `db:"tranquilidade"`
	SubmittedAt    time.Time `db:"submitted_at"`
}

func (r voteRow) toDomain() *domain.VoteRecord {
	return &domain.VoteRecord{
		ID:      r.ID,
		PointID: r.PointID,
		UserID:  r.UserID,
		Scores: domain.Scores{
			Cleanliness:    r.Cleanliness,
			Accessibility:  r.Accessibility,
			Infrastructure: r.Infrastructure,
			Safety:         r.Safety,
			Tranquility:    r.Tranquility,
		},
		SubmittedAt: r.SubmittedAt,
	}
}

func fromDomain(v *domain.VoteRecord) voteRow {
	return voteRow{
		ID:             v.ID,
		PointID:        v.PointID,
		UserID:         v.UserID,
		Cleanliness:    v.Scores.Cleanliness,
		Accessibility:  v.Scores.Accessibility,
		Infrastructure: v.Scores.Infrastructure,
		Safety:         v.Scores.Safety,
		Tranquility:    v.Scores.Tranquility,
		SubmittedAt:    v.SubmittedAt,
	}
}

const selectVotes = `
	SELECT id, praia_id, user_id, limpeza, acessibilidade, infraestrutura,
	       seguranca, tranquilidade, submitted_at
	FROM votos`

func (r *voteRepository) FindByPointAndUser(ctx context.Context, pointID, userID string) (*domain.VoteRecord, error) {
	var row voteRow
	query := selectVotes + `
	WHERE praia_id = $1 AND user_id = $2
	ORDER BY submitted_at DESC
	LIMIT 1`

	err := r.db.GetContext(ctx, &row, query, pointID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}
	return row.toDomain(), nil
}

func (r *voteRepository) FindByPoint(ctx context.Context, pointID string) ([]*domain.VoteRecord, error) {
	var rows []voteRow
	if err := r.db.SelectContext(ctx, &rows, selectVotes+` WHERE praia_id = $1`, pointID); err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	return toDomainList(rows), nil
}

func (r *voteRepository) List(ctx context.Context) ([]*domain.VoteRecord, error) {
	var rows []voteRow
	if err := r.db.SelectContext(ctx, &rows, selectVotes); err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	return toDomainList(rows), nil
}

func (r *voteRepository) Insert(ctx context.Context, vote *domain.VoteRecord) error {
	query := `
	INSERT INTO votos (id, praia_id, user_id, limpeza, acessibilidade, infraestrutura,
	                   seguranca, tranquilidade, submitted_at)
	VALUES (:id, :praia_id, :user_id, :limpeza, :acessibilidade, :infraestrutura,
	        :seguranca, :tranquilidade, :submitted_at)`

	if _, err := r.db.NamedExecContext(ctx, query, fromDomain(vote)); err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

func (r *voteRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM votos WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

func (r *voteRepository) Health(ctx context.Context) error {
	return r.db.Health(ctx)
}

func (r *voteRepository) Close() error {
	return r.db.Close()
}

func toDomainList(rows []voteRow) []*domain.VoteRecord {
	votes := make([]*domain.VoteRecord, 0, len(rows))
	for _, row := range rows {
		votes = append(votes, row.toDomain())
	}
	return votes
}
