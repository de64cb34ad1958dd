package formula

import (
	"errors"

	"gratuity-engine/internal/model"
)

// Inputs are the calendar years one payout depends on. BirthYear and
// RetirementAge are nil when unknown.
type Inputs struct {
	TargetYear    int
	CurrentYear   int
	JoiningYear   int
	BirthYear     *int
	RetirementAge *int
}

// Exponents feed the payout formula
//
//	S * (1+i)^Growth * 15/26 * Tenure * (1-d)^Discount
type Exponents struct {
	Tenure   int
	Growth   int
	Discount int
}

// Variant defines one rule for deriving tenure and the growth/discount
// exponents. Variants are stateless.
type Variant interface {
	Name() string
	// Validate rejects scenario parameters the variant cannot work with.
	Validate(params model.ScenarioParams) error
	Exponents(in Inputs) (Exponents, error)
}

// RetirementBound is implemented by variants that only report employees
// whose retirement year is known.
type RetirementBound interface {
	RequiresRetirementYear() bool
}

var errNoRetirementYear = errors.New("retirement year unknown")

// RetirementYear is birth year plus retirement age when both are known.
func RetirementYear(in Inputs) (int, bool) {
	if in.BirthYear == nil || in.RetirementAge == nil {
		return 0, false
	}
	return *in.BirthYear + *in.RetirementAge, true
}
