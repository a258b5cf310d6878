//go:build ignore

// Seeds the vote store with random votes for every registered point, so the
// aggregation job has something to summarize in a fresh environment.
//
//	go run scripts/seed_votes.go -users 20
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/praio-service/internal/config"
	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/repository/filestore"
	"github.com/praio-service/internal/repository/store"
	"go.uber.org/zap"
)

func main() {
	users := flag.Int("users", 10, "votes per point")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	registry, err := filestore.NewRegistryRepository(cfg.Files.Registry).Load(ctx)
	if err != nil {
		log.Fatalf("Failed to load registry: %v", err)
	}

	votes, err := store.OpenVoteRepository(ctx, cfg, zap.NewNop())
	if err != nil {
		log.Fatalf("Failed to open vote store: %v", err)
	}
	defer votes.Close()

	score := func() int { return rand.Intn(5) + 1 }

	inserted := 0
	for _, code := range registry.Codes() {
		for i := 0; i < *users; i++ {
			vote := &domain.VoteRecord{
				ID:      uuid.NewString(),
				PointID: code,
				UserID:  fmt.Sprintf("seed-user-%03d", i),
				Scores: domain.Scores{
					Cleanliness:    score(),
					Accessibility:  score(),
					Infrastructure: score(),
					Safety:         score(),
					Tranquility:    score(),
				},
				// spread over the last 60 days so some votes are outside the window
				SubmittedAt: time.Now().UTC().Add(-time.Duration(rand.Intn(60*24)) * time.Hour),
			}
			if err := votes.Insert(ctx, vote); err != nil {
				log.Fatalf("Failed to insert vote for %s: %v", code, err)
			}
			inserted++
		}
	}

	fmt.Printf("Inserted %d votes for %d points\n", inserted, len(registry))
}
