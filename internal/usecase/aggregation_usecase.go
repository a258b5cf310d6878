package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/praio-service/internal/domain"
	"github.com/praio-service/internal/domain/repository"
	"go.uber.org/zap"
)

// AggregationResult summarizes one aggregation pass.
type AggregationResult struct {
	Votes   int
	Points  int
	Updated int
	Skipped []string
}

// AggregationUseCase folds stored votes into per-point rating summaries.
type AggregationUseCase struct {
	votes     repository.VoteRepository
	snapshots repository.SnapshotRepository
	logger    *zap.Logger
}

func NewAggregationUseCase(
	votes repository.VoteRepository,
	snapshots repository.SnapshotRepository,
	logger *zap.Logger,
) *AggregationUseCase {
	return &AggregationUseCase{
		votes:     votes,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Run recomputes every rating summary. Only points present in the snapshot
// are written; points without votes are left untouched.
func (uc *AggregationUseCase) Run(ctx context.Context) (*AggregationResult, error) {
	votes, err := uc.votes.List(ctx)
	if err != nil {
		uc.logger.Error("Failed to list votes", zap.Error(err))
		return nil, fmt.Errorf("list votes: %w", err)
	}

	summaries := Summarize(votes)
	result := &AggregationResult{Votes: len(votes), Points: len(summaries)}
	if len(summaries) == 0 {
		uc.logger.Info("No votes to aggregate")
		return result, nil
	}

	if err := uc.write(ctx, summaries, result); err != nil {
		return nil, err
	}

	uc.logger.Info("Ratings aggregated",
		zap.Int("votes", result.Votes),
		zap.Int("updated", result.Updated),
		zap.Int("skipped", len(result.Skipped)))

	return result, nil
}

// RunPoints recomputes the rating summaries of the given points only, reading
// each point's votes on its own.
func (uc *AggregationUseCase) RunPoints(ctx context.Context, codes []string) (*AggregationResult, error) {
	var votes []*domain.VoteRecord
	for _, code := range codes {
		byPoint, err := uc.votes.FindByPoint(ctx, code)
		if err != nil {
			uc.logger.Error("Failed to read point votes", zap.String("code", code), zap.Error(err))
			return nil, fmt.Errorf("find votes of %s: %w", code, err)
		}
		votes = append(votes, byPoint...)
	}

	summaries := Summarize(votes)
	result := &AggregationResult{Votes: len(votes), Points: len(summaries)}
	if len(summaries) == 0 {
		uc.logger.Info("No votes for requested points", zap.Strings("codes", codes))
		return result, nil
	}

	if err := uc.write(ctx, summaries, result); err != nil {
		return nil, err
	}

	uc.logger.Info("Point ratings recomputed",
		zap.Strings("codes", codes),
		zap.Int("updated", result.Updated))

	return result, nil
}

// write stores summaries for points present in the snapshot and records the rest as skipped.
func (uc *AggregationUseCase) write(ctx context.Context, summaries map[string]domain.RatingSummary, result *AggregationResult) error {
	snapshot, err := uc.snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	codes := make([]string, 0, len(summaries))
	for code := range summaries {
		if _, ok := snapshot[code]; !ok {
			uc.logger.Warn("Voted point missing from snapshot, skipped", zap.String("code", code))
			result.Skipped = append(result.Skipped, code)
			continue
		}
		codes = append(codes, code)
	}
	sort.Strings(codes)
	sort.Strings(result.Skipped)

	updated, err := uc.snapshots.UpdateRecords(ctx, codes, func(code string, record json.RawMessage) (json.RawMessage, error) {
		return domain.WithRating(record, summaries[code])
	})
	if err != nil {
		uc.logger.Error("Failed to write ratings", zap.Error(err))
		return fmt.Errorf("update ratings: %w", err)
	}
	result.Updated = updated
	return nil
}

// Summarize averages per point and criterion every vote that stored all five
// criteria. Out of range values are kept; Stars clamps the average.
func Summarize(votes []*domain.VoteRecord) map[string]domain.RatingSummary {
	type tally struct {
		sum   map[domain.Criterion]int
		count int
	}
	tallies := make(map[string]*tally)

	for _, v := range votes {
		if v == nil || !v.HasAllCriteria() {
			continue
		}
		t, ok := tallies[v.PointID]
		if !ok {
			t = &tally{sum: make(map[domain.Criterion]int, len(domain.Criteria))}
			tallies[v.PointID] = t
		}
		for _, c := range domain.Criteria {
			t.sum[c] += v.Scores.Get(c)
		}
		t.count++
	}

	out := make(map[string]domain.RatingSummary, len(tallies))
	for code, t := range tallies {
		summary := make(domain.RatingSummary, len(domain.Criteria))
		for _, c := range domain.Criteria {
			summary[c] = domain.Stars(float64(t.sum[c]) / float64(t.count))
		}
		out[code] = summary
	}
	return out
}
