package domain

import (
	"math"
	"time"
)

// Criterion - one of the fixed rating criteria
type Criterion string

const (
	CriterionCleanliness    Criterion = "limpeza"
	CriterionAccessibility  Criterion = "acessibilidade"
	CriterionInfrastructure Criterion = "infraestrutura"
	CriterionSafety         Criterion = "seguranca"
	CriterionTranquility    Criterion = "tranquilidade"
)

// Criteria lists every criterion in display order.
var Criteria = []Criterion{
	CriterionCleanliness,
	CriterionAccessibility,
	CriterionInfrastructure,
	CriterionSafety,
	CriterionTranquility,
}

const (
	MinStars = 1
	MaxStars = 5
)

// RatingSummary - criterion -> rounded average stars
type RatingSummary map[Criterion]int

// Scores - one vote's five criterion scores
type Scores struct {
	Cleanliness    int `json:"limpeza" bson:"limpeza" validate:"min=1,max=5"`
	Accessibility  int `json:"acessibilidade" bson:"acessibilidade" validate:"min=1,max=5"`
	Infrastructure int `json:"infraestrutura" bson:"infraestrutura" validate:"min=1,max=5"`
	Safety         int `json:"seguranca" bson:"seguranca" validate:"min=1,max=5"`
	Tranquility    int `json:"tranquilidade" bson:"tranquilidade" validate:"min=1,max=5"`
}

// ScoresFromMap builds Scores from criterion -> value pairs.
func ScoresFromMap(m map[Criterion]int) Scores {
	return Scores{
		Cleanliness:    m[CriterionCleanliness],
		Accessibility:  m[CriterionAccessibility],
		Infrastructure: m[CriterionInfrastructure],
		Safety:         m[CriterionSafety],
		Tranquility:    m[CriterionTranquility],
	}
}

// Get returns the score for c, 0 when c is unknown.
func (s Scores) Get(c Criterion) int {
	switch c {
	case CriterionCleanliness:
		return s.Cleanliness
	case CriterionAccessibility:
		return s.Accessibility
	case CriterionInfrastructure:
		return s.Infrastructure
	case CriterionSafety:
		return s.Safety
	case CriterionTranquility:
		return s.Tranquility
	}
	return 0
}

// VoteRecord - one user's rating of a point
type VoteRecord struct {
	ID          string    `json:"id" bson:"_id"`
	PointID     string    `json:"praia_id" bson:"praia_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Scores      Scores    `json:"votos" bson:"votos"`
	SubmittedAt time.Time `json:"timestamp" bson:"timestamp"`

	// Missing lists criteria absent from the stored document. Set by stores only.
	Missing []Criterion `json:"-" bson:"-"`
}

// HasAllCriteria reports whether the stored vote carries every criterion,
// whatever its value.
func (v VoteRecord) HasAllCriteria() bool {
	return len(v.Missing) == 0
}

// ActiveAt reports whether the vote still blocks a resubmission at now.
func (v VoteRecord) ActiveAt(now time.Time, window time.Duration) bool {
	return now.Before(v.SubmittedAt.Add(window))
}

// Stars rounds an average to the nearest star (halves to even), clamped to [1,5].
func Stars(avg float64) int {
	r := int(math.RoundToEven(avg))
	if r < MinStars {
		return MinStars
	}
	if r > MaxStars {
		return MaxStars
	}
	return r
}
