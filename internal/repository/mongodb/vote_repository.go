package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

// VoteCollection - collection holding one document per vote
const VoteCollection = "votos"

const opTimeout = 5 * time.Second

type voteRepository struct {
	client *mongo.Client
	votes  *mongo.Collection
	logger *zap.Logger
}

// NewVoteRepository connects to uri and returns the Mongo-backed vote store.
func NewVoteRepository(ctx context.Context, uri, database string, logger *zap.Logger) (repository.VoteRepository, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	r := &voteRepository{
		client: client,
		votes:  client.Database(database).Collection(VoteCollection),
		logger: logger,
	}

	if _, err := r.votes.Indexes().CreateOne(pingCtx, mongo.IndexModel{
		Keys:    bson.D{{Key: "praia_id", Value: 1}, {Key: "user_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		logger.Warn("Failed to ensure vote index", zap.Error(err))
	}

	logger.Info("Mongo vote store connected", zap.String("database", database))
	return r, nil
}

func (r *voteRepository) FindByPointAndUser(ctx context.Context, pointID, userID string) (*domain.VoteRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var doc voteDocument
	err := r.votes.FindOne(ctx,
		bson.M{"praia_id": pointID, "user_id": userID},
		options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}}),
	).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}

	vote, err := doc.toDomain()
	if err != nil {
		return nil, fmt.Errorf("failed to decode vote: %w", err)
	}
	return vote, nil
}

func (r *voteRepository) FindByPoint(ctx context.Context, pointID string) ([]*domain.VoteRecord, error) {
	return r.find(ctx, bson.M{"praia_id": pointID})
}

func (r *voteRepository) List(ctx context.Context) ([]*domain.VoteRecord, error) {
	return r.find(ctx, bson.M{})
}

func (r *voteRepository) find(ctx context.Context, filter bson.M) ([]*domain.VoteRecord, error) {
	cursor, err := r.votes.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to query votes: %w", err)
	}
	defer cursor.Close(ctx)

	votes := make([]*domain.VoteRecord, 0)
	for cursor.Next(ctx) {
		var doc voteDocument
		if err := cursor.Decode(&doc); err != nil {
			r.logger.Warn("Skipping undecodable vote", zap.Error(err))
			continue
		}
		vote, err := doc.toDomain()
		if err != nil {
			r.logger.Warn("Skipping undecodable vote", zap.Error(err))
			continue
		}
		votes = append(votes, vote)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}
	return votes, nil
}

func (r *voteRepository) Insert(ctx context.Context, vote *domain.VoteRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if _, err := r.votes.InsertOne(ctx, vote); err != nil {
		return fmt.Errorf("failed to insert vote: %w", err)
	}
	return nil
}

// Delete accepts both generated ids and the hex form of legacy ObjectIDs.
func (r *voteRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	ids := bson.A{id}
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		ids = append(ids, oid)
	}

	if _, err := r.votes.DeleteOne(ctx, bson.M{"_id": bson.M{"$in": ids}}); err != nil {
		return fmt.Errorf("failed to delete vote: %w", err)
	}
	return nil
}

func (r *voteRepository) Health(ctx context.Context) error {
	return r.client.Ping(ctx, readpref.Primary())
}

func (r *voteRepository) Close() error {
	r.logger.Info("Closing Mongo connection")
	return r.client.Disconnect(context.Background())
}
