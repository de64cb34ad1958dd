package model

type CalculationMessage struct {
	ID      int    `json:"id"`
	Level   string `json:"level"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

const (
	LevelCritical = "CRITICAL"
	LevelWarning  = "WARNING"
)

const (
	CodeMissingID         = "ROWS_MISSING_EMPLOYEE_ID"
	CodeInvalidSalary     = "ROWS_INVALID_SALARY"
	CodeMissingJoining    = "MISSING_DATE_OF_JOINING"
	CodeMissingBirth      = "MISSING_DATE_OF_BIRTH"
	CodeRetiredExcluded   = "RETIRED_BEFORE_TARGET"
	CodeUnknownRetirement = "UNKNOWN_RETIREMENT_EXCLUDED"
	CodeIncompleteRecords = "INCOMPLETE_RECORDS_ZEROED"
)
