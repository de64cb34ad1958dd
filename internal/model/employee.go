package model

import "time"

// Date is a calendar date that may be missing when the source cell could
// not be parsed.
type Date struct {
	Time  time.Time
	Valid bool
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC), Valid: true}
}

func (d Date) Year() int { return d.Time.Year() }

// YearPtr returns nil for a missing date.
func (d Date) YearPtr() *int {
	if !d.Valid {
		return nil
	}
	y := d.Time.Year()
	return &y
}

func (d Date) String() string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}

func (d Date) MarshalJSON() ([]byte, error) {
	if !d.Valid {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Time.Format("2006-01-02") + `"`), nil
}

// EmployeeRecord is one roster row after normalization.
type EmployeeRecord struct {
	ID             string  `json:"employee_id"`
	Name           string  `json:"name"`
	EligibleSalary float64 `json:"eligible_salary"`
	DateOfJoining  Date    `json:"date_of_joining"`
	DateOfBirth    Date    `json:"date_of_birth"`
	Row            int     `json:"-"` // physical sheet row, 1-based
}
