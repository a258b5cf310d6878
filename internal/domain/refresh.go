package domain

import (
	"time"

	"github.com/google/uuid"
)

// StreamSnapshotRefreshed - redis stream the ingester announces finished cycles on
const StreamSnapshotRefreshed = "stream:snapshot:refreshed"

// SnapshotRefreshedEvent - published after a cycle has written the snapshot
type SnapshotRefreshedEvent struct {
	ID          uuid.UUID `json:"id"`
	Points      int       `json:"points"`
	Fallbacks   int       `json:"fallbacks"`
	CompletedAt time.Time `json:"completed_at"`
}

// StreamMessage - message read from a redis stream
type StreamMessage struct {
	ID   string
	Data string
}
