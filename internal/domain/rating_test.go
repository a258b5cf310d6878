package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStars(t *testing.T) {
	tests := []struct {
		avg  float64
		want int
	}{
		{avg: 14.0 / 3.0, want: 5},
		{avg: 1.2, want: 1},
		{avg: 2.5, want: 2},
		{avg: 3.5, want: 4},
		{avg: 0.2, want: 1},
		{avg: 7, want: 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stars(tt.avg), "avg %v", tt.avg)
	}
}

func TestScores_Get(t *testing.T) {
	full := ScoresFromMap(map[Criterion]int{
		CriterionCleanliness:    1,
		CriterionAccessibility:  2,
		CriterionInfrastructure: 3,
		CriterionSafety:         4,
		CriterionTranquility:    5,
	})
	assert.Equal(t, 4, full.Get(CriterionSafety))
	assert.Equal(t, 5, full.Get(CriterionTranquility))
	assert.Zero(t, full.Get(Criterion("praia")))
}

func TestVoteRecord_HasAllCriteria(t *testing.T) {
	assert.True(t, VoteRecord{}.HasAllCriteria())
	assert.False(t, VoteRecord{Missing: []Criterion{CriterionSafety}}.HasAllCriteria())
}

func TestVoteRecord_ActiveAt(t *testing.T) {
	window := 30 * 24 * time.Hour
	first := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	v := VoteRecord{SubmittedAt: first}

	assert.True(t, v.ActiveAt(first.Add(time.Hour), window))
	assert.True(t, v.ActiveAt(first.AddDate(0, 0, 29), window))
	assert.False(t, v.ActiveAt(first.Add(window), window))
	assert.False(t, v.ActiveAt(first.AddDate(0, 0, 31), window))
}
