package roster

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gratuity-engine/internal/model"
)

// metadataRows precede the header row in payroll exports.
const metadataRows = 1

// Roster is the cleaned record set of one upload plus the counts of rows the
// row filter dropped or degraded.
type Roster struct {
	Records []model.EmployeeRecord
	Stats   model.RosterStats
}

// Load reads the named sheet of upload and normalizes it against schema.
func Load(upload model.Upload, sheet string, schema Schema) (*Roster, error) {
	table, err := ReadSheet(upload.Data, upload.Filename, sheet)
	if err != nil {
		return nil, err
	}
	return Normalize(table, schema)
}

// Normalize turns a raw sheet into employee records. Rows without an
// identifier or a usable salary are dropped and counted; unparseable dates
// become missing. table is not modified.
func Normalize(table [][]string, schema Schema) (*Roster, error) {
	if len(table) <= metadataRows {
		return nil, model.NewInputFormat("worksheet has no header row")
	}

	cols, err := schema.Bind(table[metadataRows])
	if err != nil {
		return nil, err
	}

	r := &Roster{Records: []model.EmployeeRecord{}}
	for i, row := range table[metadataRows+1:] {
		if isBlank(row) {
			continue
		}
		r.Stats.TotalRows++

		id := cellValue(row, cols.ID)
		if id == "" {
			r.Stats.MissingID++
			continue
		}
		salary, ok := parseSalary(cellValue(row, cols.Salary))
		if !ok {
			r.Stats.InvalidSalary++
			continue
		}

		rec := model.EmployeeRecord{
			ID:             id,
			Name:           cellValue(row, cols.Name),
			EligibleSalary: salary,
			DateOfJoining:  ParseDayFirst(cellValue(row, cols.Joining)),
			DateOfBirth:    ParseDayFirst(cellValue(row, cols.Birth)),
			Row:            metadataRows + 2 + i,
		}
		if !rec.DateOfJoining.Valid {
			r.Stats.MissingJoining++
		}
		if !rec.DateOfBirth.Valid {
			r.Stats.MissingBirth++
		}
		r.Records = append(r.Records, rec)
	}
	r.Stats.Accepted = len(r.Records)
	return r, nil
}

// Lookup returns the first record with the given identifier.
func (r *Roster) Lookup(id string) (model.EmployeeRecord, error) {
	id = strings.TrimSpace(id)
	for _, rec := range r.Records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return model.EmployeeRecord{}, model.NewValidation(fmt.Sprintf("No record for Employee ID '%s'", id))
}

// parseSalary accepts plain and thousands-separated numbers. Only positive
// finite values count as a usable salary.
func parseSalary(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, false
	}
	return v, true
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
