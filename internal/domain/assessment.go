package domain

import (
	"time"

	"github.com/google/uuid"
)

// Variant names which scaling law produced an assessment.
type Variant string

const (
	VariantBasic    Variant = "basic"
	VariantDetailed Variant = "detailed"
)

// Assessment is the record of one successful computation, published for
// downstream analytics.
type Assessment struct {
	ID           string       `json:"id"`
	Variant      Variant      `json:"variant"`
	AsteroidName string       `json:"asteroid_name,omitempty"`
	Result       ImpactResult `json:"result"`
	ComputedAt   time.Time    `json:"computed_at"`
}

// NewAssessment wraps a result with a fresh ID and the current UTC time.
func NewAssessment(variant Variant, asteroidName string, result ImpactResult) Assessment {
	return Assessment{
		ID:           uuid.NewString(),
		Variant:      variant,
		AsteroidName: asteroidName,
		Result:       result,
		ComputedAt:   clock.Now().UTC(),
	}
}
