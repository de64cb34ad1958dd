package engine

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"gratuity-engine/internal/formula"
	"gratuity-engine/internal/model"
)

const (
	// MaxPayout is the statutory ceiling on a single gratuity payout.
	MaxPayout = 2_000_000

	// MinTenureYears is the service needed before gratuity vests.
	MinTenureYears = 5

	// 15 days' wages per year of service on a 26 working day month.
	wageDaysPerYear   = 15.0
	workingDaysPerMth = 26.0
)

var maxPayout = decimal.NewFromInt(MaxPayout)

// Calculator applies one formula variant to employee records. The clock
// supplies the current calendar year.
type Calculator struct {
	variant formula.Variant
	now     func() time.Time
}

func NewCalculator(variant formula.Variant, now func() time.Time) *Calculator {
	if now == nil {
		now = time.Now
	}
	return &Calculator{variant: variant, now: now}
}

func (c *Calculator) Variant() formula.Variant { return c.variant }

// Calculate computes the payout for one record. A record without a joining
// date yields a ValidationError wrapping model.ErrIncompleteRecord.
func (c *Calculator) Calculate(rec model.EmployeeRecord, params model.ScenarioParams) (model.GratuityResult, error) {
	res := model.GratuityResult{EmployeeID: rec.ID, Name: rec.Name, Amount: decimal.Zero}

	if !rec.DateOfJoining.Valid {
		return res, model.WrapValidation(
			fmt.Sprintf("Date of joining missing or unparseable for Employee ID '%s'", rec.ID),
			model.ErrIncompleteRecord,
		)
	}

	exp, err := c.variant.Exponents(formula.Inputs{
		TargetYear:    params.TargetYear,
		CurrentYear:   c.now().Year(),
		JoiningYear:   rec.DateOfJoining.Year(),
		BirthYear:     rec.DateOfBirth.YearPtr(),
		RetirementAge: params.RetirementAge,
	})
	if err != nil {
		return res, model.WrapValidation(
			fmt.Sprintf("Cannot apply %s formula to Employee ID '%s': %v", c.variant.Name(), rec.ID, err),
			err,
		)
	}

	res.Amount = payout(rec.EligibleSalary, params, exp)
	return res, nil
}

// CalculateBatch maps Calculate over recs in order. Incomplete records stay
// in the output with a zero amount.
func (c *Calculator) CalculateBatch(recs []model.EmployeeRecord, params model.ScenarioParams) []model.GratuityResult {
	results, _ := c.calculateAll(recs, params)
	return results
}

func (c *Calculator) calculateAll(recs []model.EmployeeRecord, params model.ScenarioParams) ([]model.GratuityResult, int) {
	results := make([]model.GratuityResult, len(recs))
	incomplete := 0
	for i, rec := range recs {
		res, err := c.Calculate(rec, params)
		if err != nil {
			if errors.Is(err, model.ErrIncompleteRecord) {
				incomplete++
			}
			res.Amount = decimal.Zero
		}
		results[i] = res
	}
	return results, incomplete
}

// AggregateResult is the company report before it is exported.
// UnknownRetirement counts employees left out because the variant needs a
// retirement year and the record has no birth date.
type AggregateResult struct {
	Results           []model.GratuityResult
	Total             decimal.Decimal
	Excluded          int
	UnknownRetirement int
	Incomplete        int
}

// Aggregate drops employees who retire before the target year, calculates
// the rest in roster order and totals the amounts.
func (c *Calculator) Aggregate(recs []model.EmployeeRecord, params model.ScenarioParams) (*AggregateResult, error) {
	if err := c.Check(params); err != nil {
		return nil, err
	}

	bound := requiresRetirementYear(c.variant)
	included := make([]model.EmployeeRecord, 0, len(recs))
	excluded, unknown := 0, 0
	for _, rec := range recs {
		switch {
		case bound && !rec.DateOfBirth.Valid:
			unknown++
		case retiredBefore(rec, params):
			excluded++
		default:
			included = append(included, rec)
		}
	}

	results, incomplete := c.calculateAll(included, params)
	total := decimal.Zero
	for _, r := range results {
		total = total.Add(r.Amount)
	}

	return &AggregateResult{
		Results:           results,
		Total:             total.Round(2),
		Excluded:          excluded,
		UnknownRetirement: unknown,
		Incomplete:        incomplete,
	}, nil
}

// Check validates params for this calculator's variant.
func (c *Calculator) Check(params model.ScenarioParams) error {
	if err := params.Validate(); err != nil {
		return err
	}
	return c.variant.Validate(params)
}

func requiresRetirementYear(v formula.Variant) bool {
	b, ok := v.(formula.RetirementBound)
	return ok && b.RequiresRetirementYear()
}

// retiredBefore is only decidable with both a birth date and a retirement age.
func retiredBefore(rec model.EmployeeRecord, params model.ScenarioParams) bool {
	if params.RetirementAge == nil || !rec.DateOfBirth.Valid {
		return false
	}
	return rec.DateOfBirth.Year()+*params.RetirementAge < params.TargetYear
}

func payout(salary float64, params model.ScenarioParams, exp formula.Exponents) decimal.Decimal {
	if exp.Tenure < MinTenureYears {
		return decimal.Zero
	}

	// Combined in log space: separate Pow factors can meet as Inf*0.
	factor := math.Exp(float64(exp.Growth)*math.Log1p(params.IncrementRate) +
		float64(exp.Discount)*math.Log1p(-params.DiscountRate))
	raw := salary * (wageDaysPerYear / workingDaysPerMth) * float64(exp.Tenure) * factor

	switch {
	case math.IsNaN(raw) || raw <= 0:
		return decimal.Zero
	case raw >= MaxPayout:
		return maxPayout
	}
	return decimal.NewFromFloat(raw).Round(2)
}
