package repository

import (
	"context"

	"github.com/praio-service/internal/domain"
)

// StreamRepository - Redis Streams access
type StreamRepository interface {
	// ConsumeStream reads messages from a stream through a consumer group
	ConsumeStream(ctx context.Context, stream, group, consumer string) (<-chan domain.StreamMessage, error)

	// AckMessage acknowledges a processed message
	AckMessage(ctx context.Context, stream, group, messageID string) error

	// CreateConsumerGroup creates the group, tolerating an existing one
	CreateConsumerGroup(ctx context.Context, stream, group string) error

	// DeleteConsumerGroup removes the group and its pending entries
	DeleteConsumerGroup(ctx context.Context, stream, group string) error

	// PublishToStream publishes data as JSON in the "data" field
	PublishToStream(ctx context.Context, stream string, data interface{}) error
}
