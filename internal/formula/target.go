package formula

import "gratuity-engine/internal/model"

// Target ignores retirement altogether and evaluates at the target year.
type Target struct{}

func (Target) Name() string { return "target" }

func (Target) Validate(model.ScenarioParams) error { return nil }

func (Target) Exponents(in Inputs) (Exponents, error) {
	n := in.TargetYear - in.CurrentYear
	return Exponents{
		Tenure:   in.TargetYear - in.JoiningYear,
		Growth:   n,
		Discount: n,
	}, nil
}
