package model

import (
	"fmt"
	"math"
)

// ScenarioParams holds the assumptions for one calculation request.
// Rates are fractions, not percentages.
type ScenarioParams struct {
	TargetYear    int     `json:"target_year"`
	IncrementRate float64 `json:"increment_rate"`
	DiscountRate  float64 `json:"discount_rate"`
	RetirementAge *int    `json:"retirement_age,omitempty"`
}

func (p ScenarioParams) Validate() error {
	if p.TargetYear <= 0 {
		return NewValidation(fmt.Sprintf("target year must be positive, got %d", p.TargetYear))
	}
	if math.IsNaN(p.IncrementRate) || math.IsInf(p.IncrementRate, 0) || p.IncrementRate < 0 {
		return NewValidation("increment percentage must be a non-negative number")
	}
	if math.IsNaN(p.DiscountRate) || p.DiscountRate < 0 || p.DiscountRate >= 1 {
		return NewValidation("discount percentage must be at least 0 and below 100")
	}
	if p.RetirementAge != nil && *p.RetirementAge <= 0 {
		return NewValidation(fmt.Sprintf("retirement age must be positive, got %d", *p.RetirementAge))
	}
	return nil
}
