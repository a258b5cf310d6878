package usecase

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"github.com/praio-service/internal/pkg/errors"
	"github.com/praio-service/internal/pkg/validator"
	"github.com/praio-service/internal/usecase/dto"
	"go.uber.org/zap"
)

// DefaultVoteWindow - how long a vote blocks a resubmission for the same point
const DefaultVoteWindow = 30 * 24 * time.Hour

// TokenVerifier resolves an identity token to a stable user id.
type TokenVerifier interface {
	Verify(ctx context.Context, token string) (string, error)
}

// VoteUseCase accepts rating votes, one active vote per user and point.
type VoteUseCase struct {
	votes    repository.VoteRepository
	verifier TokenVerifier
	window   time.Duration
	now      func() time.Time
	logger   *zap.Logger
}

func NewVoteUseCase(
	votes repository.VoteRepository,
	verifier TokenVerifier,
	window time.Duration,
	logger *zap.Logger,
) *VoteUseCase {
	if window <= 0 {
		window = DefaultVoteWindow
	}
	return &VoteUseCase{
		votes:    votes,
		verifier: verifier,
		window:   window,
		now:      time.Now,
		logger:   logger,
	}
}

// WithClock replaces the clock used for the vote window.
func (uc *VoteUseCase) WithClock(now func() time.Time) *VoteUseCase {
	uc.now = now
	return uc
}

// Submit records a vote unless the user already has an active one for the point.
func (uc *VoteUseCase) Submit(ctx context.Context, req dto.VoteRequest, body []byte) (*dto.VoteResponse, error) {
	userID, err := uc.verifier.Verify(ctx, req.Token)
	if err != nil {
		uc.logger.Debug("Vote rejected, bad identity token", zap.Error(err))
		return nil, errors.ErrUnauthorized
	}

	pointID := strings.TrimSpace(req.PointID)
	if pointID == "" {
		return nil, errors.ErrInvalidRequest.WithMessage("point_id is required")
	}

	scores, err := ParseScores(body)
	if err != nil {
		return nil, err
	}

	now := uc.now().UTC()

	existing, err := uc.votes.FindByPointAndUser(ctx, pointID, userID)
	if err != nil {
		uc.logger.Error("Failed to look up previous vote",
			zap.String("point_id", pointID),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	if existing != nil {
		if existing.ActiveAt(now, uc.window) {
			return &dto.VoteResponse{AlreadyVoted: true, Message: "vote already registered for this point"}, nil
		}
		if err := uc.votes.Delete(ctx, existing.ID); err != nil {
			uc.logger.Error("Failed to delete expired vote",
				zap.String("vote_id", existing.ID),
				zap.Error(err))
			return nil, errors.ErrDatabaseError
		}
	}

	vote := &domain.VoteRecord{
		ID:          uuid.NewString(),
		PointID:     pointID,
		UserID:      userID,
		Scores:      scores,
		SubmittedAt: now,
	}
	if err := uc.votes.Insert(ctx, vote); err != nil {
		uc.logger.Error("Failed to insert vote",
			zap.String("point_id", pointID),
			zap.Error(err))
		return nil, errors.ErrDatabaseError
	}

	uc.logger.Info("Vote recorded",
		zap.String("point_id", pointID),
		zap.Bool("replaced", existing != nil))

	return &dto.VoteResponse{AlreadyVoted: false, Message: "vote registered"}, nil
}

// ParseScores decodes a vote body holding exactly the five criteria as
// integers in [1,5].
func ParseScores(body []byte) (domain.Scores, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return domain.Scores{}, errors.ErrValidation.WithMessage("vote body must be a JSON object")
	}

	details := make(map[string]interface{})
	for key := range raw {
		if !isCriterion(key) {
			details[key] = "unknown"
		}
	}

	values := make(map[domain.Criterion]int, len(domain.Criteria))
	for _, c := range domain.Criteria {
		v, ok := raw[string(c)]
		if !ok {
			details[string(c)] = "required"
			continue
		}
		n, ok := decodeInt(v)
		if !ok {
			details[string(c)] = "integer"
			continue
		}
		values[c] = n
	}
	if len(details) > 0 {
		return domain.Scores{}, errors.ErrValidation.
			WithMessage("all five criteria must be present as integers").
			WithDetails(details)
	}

	scores := domain.ScoresFromMap(values)
	if err := validator.Validate(scores); err != nil {
		return domain.Scores{}, errors.ErrValidation.
			WithMessage("scores must be integers from 1 to 5").
			WithDetails(validator.FieldErrors(err))
	}
	return scores, nil
}

// decodeInt accepts JSON integer literals only; 4.0 and "4" are rejected.
func decodeInt(v json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(v, &n); err != nil {
		return 0, false
	}
	return n, true
}

func isCriterion(key string) bool {
	for _, c := range domain.Criteria {
		if string(c) == key {
			return true
		}
	}
	return false
}
