package roster

import (
	"fmt"
	"strings"

	"gratuity-engine/internal/model"
)

// Schema names the header labels of the required roster columns.
type Schema struct {
	ID      string
	Name    string
	Salary  string
	Joining string
	Birth   string
}

var DefaultSchema = Schema{
	ID:      "Employee ID",
	Name:    "Name",
	Salary:  "Monthly salary applicable for Gratuity calculation",
	Joining: "Date of Joining (DD/MM/YYYY)",
	Birth:   "Date of Birth (DD/MM/YYYY)",
}

// Columns holds the resolved zero-based column index of each field.
type Columns struct {
	ID      int
	Name    int
	Salary  int
	Joining int
	Birth   int
}

// Bind resolves every schema label against header once. Matching ignores
// case and repeated whitespace. All missing labels are reported together.
func (s Schema) Bind(header []string) (Columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := normalizeHeader(h)
		if key == "" {
			continue
		}
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}

	var missing []string
	lookup := func(label string) int {
		if i, ok := index[normalizeHeader(label)]; ok {
			return i
		}
		missing = append(missing, fmt.Sprintf("%q", label))
		return -1
	}

	cols := Columns{
		ID:      lookup(s.ID),
		Name:    lookup(s.Name),
		Salary:  lookup(s.Salary),
		Joining: lookup(s.Joining),
		Birth:   lookup(s.Birth),
	}
	if len(missing) == 1 {
		return Columns{}, model.NewInputFormat("missing column " + missing[0])
	}
	if len(missing) > 1 {
		return Columns{}, model.NewInputFormat("missing columns " + strings.Join(missing, ", "))
	}
	return cols, nil
}

func normalizeHeader(h string) string {
	return strings.ToLower(strings.Join(strings.Fields(h), " "))
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
