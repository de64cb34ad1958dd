package model

import "github.com/shopspring/decimal"

// GratuityResult is the payout for one employee, capped and rounded to 2dp.
type GratuityResult struct {
	EmployeeID string          `json:"employee_id"`
	Name       string          `json:"name"`
	Amount     decimal.Decimal `json:"amount"`
}

type CalculationMetadata struct {
	CalculationID          string `json:"calculation_id"`
	FormulaVariant         string `json:"formula_variant"`
	CalculationStartedAt   string `json:"calculation_started_at"`
	CalculationCompletedAt string `json:"calculation_completed_at"`
	CalculationDurationMs  int64  `json:"calculation_duration_ms"`
	CalculationOutcome     string `json:"calculation_outcome"`
}

type IndividualResponse struct {
	CalculationMetadata CalculationMetadata `json:"calculation_metadata"`
	Result              GratuityResult      `json:"result"`
}

// RosterStats counts the non-blank data rows of a sheet and what the row
// filter did with them.
type RosterStats struct {
	TotalRows      int `json:"total_rows"`
	Accepted       int `json:"accepted"`
	MissingID      int `json:"missing_id"`
	InvalidSalary  int `json:"invalid_salary"`
	MissingJoining int `json:"missing_joining_date"`
	MissingBirth   int `json:"missing_birth_date"`
}

type CompanyResponse struct {
	CalculationMetadata CalculationMetadata  `json:"calculation_metadata"`
	Rows                []GratuityResult     `json:"rows"`
	Total               decimal.Decimal      `json:"total"`
	Excluded            int                  `json:"excluded_retired"`
	ExcludedUnknown     int                  `json:"excluded_unknown_retirement"`
	DownloadFilename    string               `json:"download_filename"`
	Stats               RosterStats          `json:"stats"`
	Messages            []CalculationMessage `json:"messages"`
}

type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

const (
	OutcomeSuccess = "SUCCESS"
)
