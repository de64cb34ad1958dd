package formula

import (
	"fmt"

	"gratuity-engine/internal/model"
)

// Retirement measures tenure up to retirement, grows salary up to the target
// year and discounts over the years between target and retirement.
type Retirement struct{}

func (Retirement) Name() string { return "retirement" }

func (Retirement) Validate(params model.ScenarioParams) error {
	if params.RetirementAge == nil {
		return model.NewValidation("retirement age is required by the retirement formula")
	}
	return nil
}

func (Retirement) RequiresRetirementYear() bool { return true }

func (Retirement) Exponents(in Inputs) (Exponents, error) {
	ry, ok := RetirementYear(in)
	if !ok {
		return Exponents{}, fmt.Errorf("%w: %w", model.ErrIncompleteRecord, errNoRetirementYear)
	}
	return Exponents{
		Tenure:   ry - in.JoiningYear,
		Growth:   in.TargetYear - in.CurrentYear,
		Discount: ry - in.TargetYear,
	}, nil
}
