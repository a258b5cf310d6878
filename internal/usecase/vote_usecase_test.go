package usecase_test

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/pkg/errors"
	"github.com/praio-service/internal/usecase"
	"github.com/praio-service/internal/usecase/dto"
)

const validVote = `{"limpeza": 4, "acessibilidade": 5, "infraestrutura": 3, "seguranca": 4, "tranquilidade": 5}`

var voteNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newVoteUseCase(votes *MockVoteRepository, verifier *MockTokenVerifier) *usecase.VoteUseCase {
	return usecase.NewVoteUseCase(votes, verifier, 30*24*time.Hour, zap.NewNop()).
		WithClock(func() time.Time { return voteNow })
}

func TestVoteUseCase_Submit(t *testing.T) {
	ctx := context.Background()
	req := dto.VoteRequest{Token: "tok", PointID: "GB000"}

	t.Run("first vote is inserted", func(t *testing.T) {
		votes := &MockVoteRepository{}
		verifier := &MockTokenVerifier{}
		verifier.On("Verify", ctx, "tok").Return("google-sub-1", nil)
		votes.On("FindByPointAndUser", ctx, "GB000", "google-sub-1").Return(nil, nil)
		votes.On("Insert", ctx, mock.MatchedBy(func(v *domain.VoteRecord) bool {
			return v.PointID == "GB000" &&
				v.UserID == "google-sub-1" &&
				v.Scores.Infrastructure == 3 &&
				v.SubmittedAt.Equal(voteNow) &&
				v.ID != ""
		})).Return(nil)

		resp, err := newVoteUseCase(votes, verifier).Submit(ctx, req, []byte(validVote))
		require.NoError(t, err)
		assert.False(t, resp.AlreadyVoted)
		votes.AssertExpectations(t)
	})

	t.Run("second vote within the window is a no-op", func(t *testing.T) {
		votes := &MockVoteRepository{}
		verifier := &MockTokenVerifier{}
		verifier.On("Verify", ctx, "tok").Return("google-sub-1", nil)
		votes.On("FindByPointAndUser", ctx, "GB000", "google-sub-1").Return(&domain.VoteRecord{
			ID:          "old",
			SubmittedAt: voteNow.Add(-29 * 24 * time.Hour),
		}, nil)

		resp, err := newVoteUseCase(votes, verifier).Submit(ctx, req, []byte(validVote))
		require.NoError(t, err)
		assert.True(t, resp.AlreadyVoted)
		votes.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
		votes.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	})

	t.Run("expired vote is replaced", func(t *testing.T) {
		votes := &MockVoteRepository{}
		verifier := &MockTokenVerifier{}
		verifier.On("Verify", ctx, "tok").Return("google-sub-1", nil)
		votes.On("FindByPointAndUser", ctx, "GB000", "google-sub-1").Return(&domain.VoteRecord{
			ID:          "old",
			SubmittedAt: voteNow.Add(-31 * 24 * time.Hour),
		}, nil)
		votes.On("Delete", ctx, "old").Return(nil).Once()
		votes.On("Insert", ctx, mock.Anything).Return(nil).Once()

		resp, err := newVoteUseCase(votes, verifier).Submit(ctx, req, []byte(validVote))
		require.NoError(t, err)
		assert.False(t, resp.AlreadyVoted)
		votes.AssertExpectations(t)
	})

	t.Run("bad token", func(t *testing.T) {
		verifier := &MockTokenVerifier{}
		verifier.On("Verify", ctx, "tok").Return("", stderrors.New("expired"))
		votes := &MockVoteRepository{}

		_, err := newVoteUseCase(votes, verifier).Submit(ctx, req, []byte(validVote))
		assert.ErrorIs(t, err, errors.ErrUnauthorized)
		votes.AssertNotCalled(t, "FindByPointAndUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid scores never reach the store", func(t *testing.T) {
		verifier := &MockTokenVerifier{}
		verifier.On("Verify", ctx, "tok").Return("google-sub-1", nil)
		votes := &MockVoteRepository{}

		_, err := newVoteUseCase(votes, verifier).Submit(ctx, req, []byte(`{"limpeza": 4}`))
		assert.ErrorIs(t, err, errors.ErrValidation)
		votes.AssertNotCalled(t, "FindByPointAndUser", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing point id", func(t *testing.T) {
		verifier := &MockTokenVerifier{}
		verifier.On("Verify", ctx, "tok").Return("google-sub-1", nil)

		_, err := newVoteUseCase(&MockVoteRepository{}, verifier).Submit(ctx, dto.VoteRequest{Token: "tok"}, []byte(validVote))
		assert.ErrorIs(t, err, errors.ErrInvalidRequest)
	})

	t.Run("store failure", func(t *testing.T) {
		votes := &MockVoteRepository{}
		verifier := &MockTokenVerifier{}
		verifier.On("Verify", ctx, "tok").Return("google-sub-1", nil)
		votes.On("FindByPointAndUser", ctx, "GB000", "google-sub-1").Return(nil, stderrors.New("no reachable servers"))

		_, err := newVoteUseCase(votes, verifier).Submit(ctx, req, []byte(validVote))
		assert.ErrorIs(t, err, errors.ErrDatabaseError)
	})
}

func TestParseScores(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		valid bool
	}{
		{"all five criteria", validVote, true},
		{"boundaries", `{"limpeza": 1, "acessibilidade": 5, "infraestrutura": 1, "seguranca": 5, "tranquilidade": 1}`, true},
		{"missing criterion", `{"limpeza": 4, "acessibilidade": 5, "infraestrutura": 3, "seguranca": 4}`, false},
		{"extra key", `{"limpeza": 4, "acessibilidade": 5, "infraestrutura": 3, "seguranca": 4, "tranquilidade": 5, "vista": 5}`, false},
		{"zero", `{"limpeza": 0, "acessibilidade": 5, "infraestrutura": 3, "seguranca": 4, "tranquilidade": 5}`, false},
		{"six", `{"limpeza": 6, "acessibilidade": 5, "infraestrutura": 3, "seguranca": 4, "tranquilidade": 5}`, false},
		{"float", `{"limpeza": 4.5, "acessibilidade": 5, "infraestrutura": 3, "seguranca": 4, "tranquilidade": 5}`, false},
		{"string", `{"limpeza": "4", "acessibilidade": 5, "infraestrutura": 3, "seguranca": 4, "tranquilidade": 5}`, false},
		{"null", `{"limpeza": null, "acessibilidade": 5, "infraestrutura": 3, "seguranca": 4, "tranquilidade": 5}`, false},
		{"not an object", `[4, 5, 3, 4, 5]`, false},
		{"empty body", ``, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scores, err := usecase.ParseScores([]byte(tt.body))
			if tt.valid {
				require.NoError(t, err)
				for _, c := range domain.Criteria {
					assert.GreaterOrEqual(t, scores.Get(c), domain.MinStars)
					assert.LessOrEqual(t, scores.Get(c), domain.MaxStars)
				}
				return
			}
			assert.ErrorIs(t, err, errors.ErrValidation)
		})
	}
}
