package formula

import "gratuity-engine/internal/model"

// Canonical evaluates the payout at the earlier of the target year and the
// projected retirement year. Without a retirement year the target year is
// the horizon. Growth and discount both run from now to the horizon.
type Canonical struct{}

func (Canonical) Name() string { return "canonical" }

func (Canonical) Validate(model.ScenarioParams) error { return nil }

func (Canonical) Exponents(in Inputs) (Exponents, error) {
	horizon := in.TargetYear
	if ry, ok := RetirementYear(in); ok && ry < horizon {
		horizon = ry
	}
	n := horizon - in.CurrentYear
	return Exponents{
		Tenure:   horizon - in.JoiningYear,
		Growth:   n,
		Discount: n,
	}, nil
}
