package roster

import (
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"gratuity-engine/internal/model"
)

// Excel serial day numbers accepted as dates (1900-01-01 .. 9999-12-31).
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// Day precedes month in every ambiguous layout. Four-digit years are tried
// before two-digit ones.
var dayFirstLayouts = []string{
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006-1-2",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2-1-2006 15:04:05",
	"2 Jan 2006",
	"2-Jan-2006",
	"2 January 2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2/1/06",
	"2-1-06",
	"2.1.06",
	"2-Jan-06",
}

// ParseDayFirst parses a spreadsheet date cell. It returns a missing Date
// instead of an error when nothing matches.
func ParseDayFirst(value string) model.Date {
	value = strings.TrimSpace(value)
	if value == "" {
		return model.Date{}
	}

	if serial, err := strconv.ParseFloat(value, 64); err == nil {
		if serial < minExcelSerial || serial > maxExcelSerial {
			return model.Date{}
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return model.Date{}
		}
		return model.NewDate(t.Year(), t.Month(), t.Day())
	}

	for _, layout := range dayFirstLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return model.NewDate(t.Year(), t.Month(), t.Day())
		}
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return model.NewDate(t.Year(), t.Month(), t.Day())
	}
	return model.Date{}
}
