package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/praio-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func setupVoteRepository(t *testing.T) *voteRepository {
	t.Helper()

	uri := os.Getenv("TEST_MONGO_URI")
	if uri == "" {
		uri = "mongodb://127.0.0.1:27017/?compressors=disabled"
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	repo, err := NewVoteRepository(ctx, uri, "praio-test-"+uuid.NewString()[:8], zap.NewNop())
	if err != nil {
		t.Skipf("MongoDB not available for integration tests: %v", err)
	}

	r := repo.(*voteRepository)
	t.Cleanup(func() {
		_ = r.votes.Database().Drop(context.Background())
		_ = r.Close()
	})
	return r
}

func testVote(pointID, userID string, at time.Time) *domain.VoteRecord {
	return &domain.VoteRecord{
		ID:      uuid.NewString(),
		PointID: pointID,
		UserID:  userID,
		Scores: domain.Scores{
			Cleanliness:    4,
			Accessibility:  3,
			Infrastructure: 5,
			Safety:         2,
			Tranquility:    1,
		},
		SubmittedAt: at.UTC().Truncate(time.Millisecond),
	}
}

func TestVoteRepository_CRUD(t *testing.T) {
	repo := setupVoteRepository(t)
	ctx := context.Background()
	now := time.Now()

	missing, err := repo.FindByPointAndUser(ctx, "IC01", "user-1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := testVote("IC01", "user-1", now)
	require.NoError(t, repo.Insert(ctx, first))
	require.NoError(t, repo.Insert(ctx, testVote("IC01", "user-2", now)))
	require.NoError(t, repo.Insert(ctx, testVote("CH00", "user-1", now)))

	found, err := repo.FindByPointAndUser(ctx, "IC01", "user-1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, first.ID, found.ID)
	assert.Equal(t, first.Scores, found.Scores)
	assert.True(t, first.SubmittedAt.Equal(found.SubmittedAt))

	byPoint, err := repo.FindByPoint(ctx, "IC01")
	require.NoError(t, err)
	assert.Len(t, byPoint, 2)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, repo.Delete(ctx, first.ID))
	gone, err := repo.FindByPointAndUser(ctx, "IC01", "user-1")
	require.NoError(t, err)
	assert.Nil(t, gone)

	assert.NoError(t, repo.Health(ctx))
}

func TestVoteRepository_LegacyDocumentsAndUniqueness(t *testing.T) {
	repo := setupVoteRepository(t)
	ctx := context.Background()

	_, err := repo.votes.InsertOne(ctx, bson.M{
		"praia_id":  "IC01",
		"user_id":   "legacy-user",
		"votos":     bson.M{"limpeza": 5, "acessibilidade": 4, "infraestrutura": 3, "seguranca": 2, "tranquilidade": 1},
		"timestamp": "2025-06-01T12:34:56.123456",
	})
	require.NoError(t, err)

	found, err := repo.FindByPointAndUser(ctx, "IC01", "legacy-user")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Len(t, found.ID, 24)
	assert.Equal(t, 5, found.Scores.Cleanliness)

	// a second vote for the same pair is refused until the first is removed
	assert.Error(t, repo.Insert(ctx, testVote("IC01", "legacy-user", time.Now())))

	require.NoError(t, repo.Delete(ctx, found.ID))
	require.NoError(t, repo.Insert(ctx, testVote("IC01", "legacy-user", time.Now())))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
