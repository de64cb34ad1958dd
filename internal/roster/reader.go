package roster

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	"gratuity-engine/internal/model"
)

// DefaultSheet is the worksheet payroll exports keep active staff in.
const DefaultSheet = "Active Employees"

// ReadSheet returns every physical row of the named worksheet as text.
// Legacy .xls files go through extrame/xls; anything else is treated as
// OOXML. Date cells in xlsx files come back as raw Excel serials.
func ReadSheet(data []byte, filename, sheet string) ([][]string, error) {
	if len(data) == 0 {
		return nil, model.NewInputFormat("uploaded file is empty")
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xls":
		return readXLS(data, sheet)
	default:
		return readXLSX(data, sheet)
	}
}

func readXLSX(data []byte, sheet string) ([][]string, error) {
	file, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, model.NewInputFormat(fmt.Sprintf("file is not a readable spreadsheet: %v", err))
	}
	defer func() { _ = file.Close() }()

	name, ok := findSheet(file.GetSheetList(), sheet)
	if !ok {
		return nil, model.NewInputFormat(fmt.Sprintf("worksheet %q not found", sheet))
	}

	rows, err := file.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, model.NewInputFormat(fmt.Sprintf("reading worksheet %q: %v", name, err))
	}
	return rows, nil
}

func readXLS(data []byte, sheet string) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, model.NewInputFormat(fmt.Sprintf("file is not a readable spreadsheet: %v", err))
	}
	if workbook == nil {
		return nil, model.NewInputFormat("file has no workbook stream")
	}

	names := make([]string, 0, workbook.NumSheets())
	for i := 0; i < workbook.NumSheets(); i++ {
		names = append(names, workbook.GetSheet(i).Name)
	}
	name, ok := findSheet(names, sheet)
	if !ok {
		return nil, model.NewInputFormat(fmt.Sprintf("worksheet %q not found", sheet))
	}

	var ws *xls.WorkSheet
	for i := 0; i < workbook.NumSheets(); i++ {
		if s := workbook.GetSheet(i); s.Name == name {
			ws = s
			break
		}
	}

	last := int(ws.MaxRow)
	// Blank rows are kept so the header stays at its physical position.
	rows := make([][]string, 0, last+1)
	for r := 0; r <= last; r++ {
		row := ws.Row(r)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for c := row.FirstCol(); c < row.LastCol(); c++ {
			cells[c] = row.Col(c)
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

func findSheet(names []string, want string) (string, bool) {
	want = strings.TrimSpace(want)
	for _, n := range names {
		if n == want {
			return n, true
		}
	}
	for _, n := range names {
		if strings.EqualFold(strings.TrimSpace(n), want) {
			return n, true
		}
	}
	return "", false
}
