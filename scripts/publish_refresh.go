//go:build ignore

// Publishes a snapshot refresh event by hand, so API replicas listening on the
// refresh stream reload without waiting for an ingestion cycle.
//
//	go run scripts/publish_refresh.go -redis localhost:6379
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/praio-service/internal/domain"
	"github.com/redis/go-redis/v9"
)

func main() {
	redisAddr := flag.String("redis", "localhost:6379", "Redis address for streams")
	points := flag.Int("points", 0, "point count reported in the event")
	flag.Parse()

	client := redis.NewClient(&redis.Options{
		Addr: *redisAddr,
	})
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	event := domain.SnapshotRefreshedEvent{
		ID:          uuid.New(),
		Points:      *points,
		CompletedAt: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Fatalf("Failed to marshal event: %v", err)
	}

	result, err := client.XAdd(ctx, &redis.XAddArgs{
		Stream: domain.StreamSnapshotRefreshed,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		log.Fatalf("Failed to publish event: %v", err)
	}

	fmt.Printf("Event published\n")
	fmt.Printf("   Stream: %s\n", domain.StreamSnapshotRefreshed)
	fmt.Printf("   Message ID: %s\n", result)
	fmt.Printf("   Event ID: %s\n", event.ID)
}
