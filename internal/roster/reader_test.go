package roster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"gratuity-engine/internal/model"
)

func buildWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf.Bytes()
}

func TestLoadXLSX(t *testing.T) {
	data := buildWorkbook(t, DefaultSheet, [][]any{
		{"Payroll export"},
		{"Employee ID", "Name", "Monthly salary applicable for Gratuity calculation", "Date of Joining (DD/MM/YYYY)", "Date of Birth (DD/MM/YYYY)"},
		{"E1", "Asha", 50000, 43831, "15/08/1980"},
		{"E2", "Ravi", "oops", "01/01/2015", "01/01/1990"},
	})

	r, err := Load(model.Upload{Filename: "roster.xlsx", Data: data}, DefaultSheet, DefaultSchema)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(r.Records) != 1 || r.Stats.InvalidSalary != 1 {
		t.Fatalf("records=%d stats=%+v", len(r.Records), r.Stats)
	}
	rec := r.Records[0]
	if rec.EligibleSalary != 50000 {
		t.Fatalf("salary=%v", rec.EligibleSalary)
	}
	if rec.DateOfJoining.String() != "2020-01-01" {
		t.Fatalf("joining=%s", rec.DateOfJoining)
	}
	if rec.DateOfBirth.String() != "1980-08-15" {
		t.Fatalf("birth=%s", rec.DateOfBirth)
	}
}

func TestReadSheetXLS(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "roster.xls"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}

	rows, err := ReadSheet(data, "roster.xls", DefaultSheet)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(rows) != 5 {
		t.Fatalf("rows=%d want 5: %q", len(rows), rows)
	}
	if rows[0][0] != "Payroll export" {
		t.Fatalf("metadata row=%q", rows[0])
	}
	if len(rows[1]) != 5 || rows[1][4] != "Date of Birth (DD/MM/YYYY)" {
		t.Fatalf("header=%q", rows[1])
	}
	if rows[3] != nil {
		t.Fatalf("blank row=%q want nil", rows[3])
	}
	if got := rows[4]; len(got) != 5 || got[0] != "E2" || got[2] != "42,000.50" {
		t.Fatalf("last row=%q", got)
	}

	if _, err := ReadSheet(data, "roster.xls", "Leavers"); !model.IsInputFormat(err) {
		t.Fatalf("missing sheet err=%v", err)
	}

	r, err := Load(model.Upload{Filename: "ROSTER.XLS", Data: data}, DefaultSheet, DefaultSchema)
	if err != nil {
		t.Fatalf("load err=%v", err)
	}
	if len(r.Records) != 2 {
		t.Fatalf("records=%+v", r.Records)
	}
	if rec := r.Records[1]; rec.ID != "E2" || rec.EligibleSalary != 42000.5 || rec.Row != 5 {
		t.Fatalf("record=%+v", rec)
	}
	if r.Records[0].DateOfJoining.String() != "2020-01-01" {
		t.Fatalf("joining=%s", r.Records[0].DateOfJoining)
	}
}

func TestReadSheetErrors(t *testing.T) {
	t.Run("wrong sheet", func(t *testing.T) {
		data := buildWorkbook(t, "Leavers", [][]any{{"x"}})
		_, err := ReadSheet(data, "roster.xlsx", DefaultSheet)
		if !model.IsInputFormat(err) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("sheet name match ignores case", func(t *testing.T) {
		data := buildWorkbook(t, "active employees", [][]any{{"x"}})
		rows, err := ReadSheet(data, "roster.xlsx", DefaultSheet)
		if err != nil {
			t.Fatalf("err=%v", err)
		}
		if len(rows) != 1 || rows[0][0] != "x" {
			t.Fatalf("rows=%v", rows)
		}
	})

	t.Run("not a spreadsheet", func(t *testing.T) {
		_, err := ReadSheet([]byte("id,name\n1,a\n"), "roster.xlsx", DefaultSheet)
		if !model.IsInputFormat(err) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ReadSheet(nil, "roster.xlsx", DefaultSheet)
		if !model.IsInputFormat(err) {
			t.Fatalf("err=%v", err)
		}
	})
}
