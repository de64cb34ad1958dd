package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"gratuity-engine/internal/formula"
	"gratuity-engine/internal/model"
)

func fixedClock() time.Time { return time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC) }

func intp(v int) *int { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func record(id string, salary float64, joinYear int) model.EmployeeRecord {
	return model.EmployeeRecord{
		ID:             id,
		Name:           "Employee " + id,
		EligibleSalary: salary,
		DateOfJoining:  model.NewDate(joinYear, time.April, 1),
		DateOfBirth:    model.NewDate(1985, time.June, 15),
	}
}

func canonical(t *testing.T) *Calculator {
	t.Helper()
	v, ok := formula.Get("canonical")
	if !ok {
		t.Fatalf("canonical variant missing")
	}
	return NewCalculator(v, fixedClock)
}

func baseParams() model.ScenarioParams {
	return model.ScenarioParams{TargetYear: 2031, IncrementRate: 0.10, DiscountRate: 0.05}
}

func TestCalculate(t *testing.T) {
	calc := canonical(t)

	cases := []struct {
		name   string
		rec    model.EmployeeRecord
		params model.ScenarioParams
		want   string
	}{
		{"fifteen years to horizon", record("E1", 50000, 2016), baseParams(), "539213.34"},
		{"eight years to horizon", record("E2", 50000, 2023), baseParams(), "287580.45"},
		{"four years to horizon", record("E3", 50000, 2027), baseParams(), "0"},
		{"exactly five years vests", record("E4", 26000, 2026), model.ScenarioParams{TargetYear: 2031}, "75000"},
		{"capped", record("E5", 10_000_000, 2000), baseParams(), "2000000"},
		{
			"extreme rates still cap",
			record("E8", 50000, 1996),
			model.ScenarioParams{TargetYear: 2066, IncrementRate: 1e10 - 1, DiscountRate: 1 - 1e-9},
			"2000000",
		},
		{
			"retirement caps horizon",
			record("E6", 30000, 2016),
			model.ScenarioParams{TargetYear: 2050, RetirementAge: intp(35)},
			"0",
		},
		{
			"horizon in the past",
			record("E7", 30000, 2010),
			model.ScenarioParams{TargetYear: 2020},
			"173076.92",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := calc.Calculate(tc.rec, tc.params)
			if err != nil {
				t.Fatalf("err=%v", err)
			}
			if !got.Amount.Equal(dec(tc.want)) {
				t.Fatalf("amount=%s want %s", got.Amount, tc.want)
			}
			if got.EmployeeID != tc.rec.ID || got.Name != tc.rec.Name {
				t.Fatalf("identity not carried: %+v", got)
			}
		})
	}
}

func TestCalculateRetirementVariant(t *testing.T) {
	v, _ := formula.Get("retirement")
	calc := NewCalculator(v, fixedClock)

	rec := model.EmployeeRecord{
		ID:             "R1",
		EligibleSalary: 40000,
		DateOfJoining:  model.NewDate(2010, time.January, 1),
		DateOfBirth:    model.NewDate(1980, time.March, 3),
	}
	params := model.ScenarioParams{TargetYear: 2030, IncrementRate: 0.08, DiscountRate: 0.10, RetirementAge: intp(60)}

	got, err := calc.Calculate(rec, params)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !got.Amount.Equal(dec("328412.19")) {
		t.Fatalf("amount=%s", got.Amount)
	}

	rec.DateOfBirth = model.Date{}
	_, err = calc.Calculate(rec, params)
	if !model.IsValidation(err) || !errors.Is(err, model.ErrIncompleteRecord) {
		t.Fatalf("expected incomplete record validation error, got %v", err)
	}
}

func TestCalculateMissingJoiningDate(t *testing.T) {
	rec := record("E1", 50000, 2016)
	rec.DateOfJoining = model.Date{}

	got, err := canonical(t).Calculate(rec, baseParams())
	if !model.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if !errors.Is(err, model.ErrIncompleteRecord) {
		t.Fatalf("expected ErrIncompleteRecord in chain")
	}
	if !got.Amount.IsZero() {
		t.Fatalf("amount=%s", got.Amount)
	}
}

func TestAmountAlwaysWithinCap(t *testing.T) {
	calc := canonical(t)
	salaries := []float64{1, 999.99, 50000, 1e6, 1e9}
	joins := []int{1960, 2000, 2020, 2026, 2040}
	targets := []int{1990, 2026, 2031, 2080}
	rates := []float64{0, 0.05, 0.5, 0.99}

	for _, s := range salaries {
		for _, j := range joins {
			for _, ty := range targets {
				for _, inc := range rates {
					for _, disc := range rates {
						params := model.ScenarioParams{TargetYear: ty, IncrementRate: inc, DiscountRate: disc}
						got, err := calc.Calculate(record("X", s, j), params)
						if err != nil {
							t.Fatalf("err=%v", err)
						}
						if got.Amount.IsNegative() || got.Amount.GreaterThan(maxPayout) {
							t.Fatalf("amount %s out of range for salary=%v join=%d target=%d inc=%v disc=%v", got.Amount, s, j, ty, inc, disc)
						}
						if ty-j < MinTenureYears && !got.Amount.IsZero() {
							t.Fatalf("tenure %d paid %s", ty-j, got.Amount)
						}
						if !got.Amount.Equal(got.Amount.Round(2)) {
							t.Fatalf("amount %s not rounded to 2dp", got.Amount)
						}
					}
				}
			}
		}
	}
}

func TestCalculateBatchMatchesCalculate(t *testing.T) {
	calc := canonical(t)
	params := baseParams()
	params.RetirementAge = intp(60)

	incomplete := record("E4", 40000, 2000)
	incomplete.DateOfJoining = model.Date{}
	recs := []model.EmployeeRecord{
		record("E1", 50000, 2016),
		record("E2", 10_000_000, 1990),
		record("E3", 30000, 2029),
		incomplete,
	}

	batch := calc.CalculateBatch(recs, params)
	if len(batch) != len(recs) {
		t.Fatalf("len=%d", len(batch))
	}
	for i, rec := range recs {
		single, err := calc.Calculate(rec, params)
		if err != nil && !errors.Is(err, model.ErrIncompleteRecord) {
			t.Fatalf("unexpected err=%v", err)
		}
		if batch[i].EmployeeID != single.EmployeeID || !batch[i].Amount.Equal(single.Amount) {
			t.Fatalf("row %d: batch %+v single %+v", i, batch[i], single)
		}
	}
	if !batch[3].Amount.IsZero() {
		t.Fatalf("incomplete record should be zero, got %s", batch[3].Amount)
	}
}

func TestAggregate(t *testing.T) {
	calc := canonical(t)

	retired := record("OLD", 80000, 1990)
	retired.DateOfBirth = model.NewDate(1966, time.January, 1)
	noBirth := record("NB", 20000, 2015)
	noBirth.DateOfBirth = model.Date{}
	noJoin := record("NJ", 20000, 2015)
	noJoin.DateOfJoining = model.Date{}

	recs := []model.EmployeeRecord{
		record("B", 50000, 2016),
		retired,
		record("A", 45000, 2010),
		noBirth,
		noJoin,
		record("C", 30000, 2028),
	}
	params := baseParams()
	params.RetirementAge = intp(60)

	agg, err := calc.Aggregate(recs, params)
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	var ids []string
	sum := decimal.Zero
	for _, r := range agg.Results {
		ids = append(ids, r.EmployeeID)
		sum = sum.Add(r.Amount)
		if r.EmployeeID == "OLD" {
			t.Fatalf("retired employee reported")
		}
	}
	if len(ids) != 5 || ids[0] != "B" || ids[1] != "A" || ids[2] != "NB" || ids[3] != "NJ" || ids[4] != "C" {
		t.Fatalf("order=%v", ids)
	}
	if agg.Excluded != 1 || agg.Incomplete != 1 || agg.UnknownRetirement != 0 {
		t.Fatalf("excluded=%d incomplete=%d unknown=%d", agg.Excluded, agg.Incomplete, agg.UnknownRetirement)
	}
	if !agg.Total.Equal(sum.Round(2)) {
		t.Fatalf("total=%s sum=%s", agg.Total, sum)
	}
	if !agg.Results[0].Amount.Equal(dec("539213.34")) {
		t.Fatalf("B amount=%s", agg.Results[0].Amount)
	}
}

func TestAggregateRetirementVariantDropsUnknownRetirement(t *testing.T) {
	v, _ := formula.Get("retirement")
	calc := NewCalculator(v, fixedClock)

	noBirth := record("NB", 20000, 2015)
	noBirth.DateOfBirth = model.Date{}
	recs := []model.EmployeeRecord{record("B", 50000, 2016), noBirth}

	params := baseParams()
	params.RetirementAge = intp(60)
	agg, err := calc.Aggregate(recs, params)
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(agg.Results) != 1 || agg.Results[0].EmployeeID != "B" {
		t.Fatalf("results=%+v", agg.Results)
	}
	if agg.UnknownRetirement != 1 || agg.Excluded != 0 || agg.Incomplete != 0 {
		t.Fatalf("unknown=%d excluded=%d incomplete=%d", agg.UnknownRetirement, agg.Excluded, agg.Incomplete)
	}
	if !agg.Total.Equal(agg.Results[0].Amount) {
		t.Fatalf("total=%s", agg.Total)
	}

	msgs := rosterMessages(model.RosterStats{}, agg)
	if len(msgs) != 1 || msgs[0].Code != model.CodeUnknownRetirement {
		t.Fatalf("messages=%+v", msgs)
	}
}

func TestAggregateWithoutRetirementAgeKeepsEveryone(t *testing.T) {
	retired := record("OLD", 80000, 1990)
	retired.DateOfBirth = model.NewDate(1940, time.January, 1)

	agg, err := canonical(t).Aggregate([]model.EmployeeRecord{retired}, baseParams())
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if len(agg.Results) != 1 || agg.Excluded != 0 {
		t.Fatalf("results=%d excluded=%d", len(agg.Results), agg.Excluded)
	}
}

func TestAggregateRejectsInvalidParams(t *testing.T) {
	cases := []model.ScenarioParams{
		{TargetYear: 2030, IncrementRate: -0.1},
		{TargetYear: 2030, DiscountRate: 1},
		{TargetYear: 2030, RetirementAge: intp(0)},
		{TargetYear: 0},
	}
	for _, p := range cases {
		if _, err := canonical(t).Aggregate(nil, p); !model.IsValidation(err) {
			t.Fatalf("params %+v: expected validation error, got %v", p, err)
		}
	}
}

// Flows

type memReports struct {
	results []model.GratuityResult
	total   decimal.Decimal
	err     error
}

func (m *memReports) Write(results []model.GratuityResult, total decimal.Decimal) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.results = results
	m.total = total
	return "gratuity_report_test.xlsx", nil
}

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", "Active Employees"); err != nil {
		t.Fatalf("rename: %v", err)
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		r := row
		if err := f.SetSheetRow("Active Employees", cell, &r); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	return buf.Bytes()
}

func rosterUpload(t *testing.T) model.Upload {
	return model.Upload{Filename: "roster.xlsx", Data: workbook(t, [][]any{
		{"Company roster"},
		{"Employee ID", "Name", "Monthly salary applicable for Gratuity calculation", "Date of Joining (DD/MM/YYYY)", "Date of Birth (DD/MM/YYYY)"},
		{"E1", "Asha", 50000, "01/04/2016", "15/06/1985"},
		{"E2", "Ravi", "abc", "01/04/2016", "15/06/1985"},
		{"E3", "Old Timer", 80000, "01/04/1990", "01/01/1960"},
		{"E4", "No Birth", 20000, "01/04/2015", "unknown"},
		{"", "Ghost", 1000, "01/04/2015", "01/01/1990"},
	})}
}

func newTestEngine(reports ReportWriter) *Engine {
	return New(Options{Reports: reports, Now: fixedClock})
}

func TestIndividual(t *testing.T) {
	e := newTestEngine(nil)
	upload := rosterUpload(t)

	resp, err := e.Individual(upload, model.IndividualRequest{EmployeeID: "E1", Params: baseParams()})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if !resp.Result.Amount.Equal(dec("539213.34")) {
		t.Fatalf("amount=%s", resp.Result.Amount)
	}
	if resp.CalculationMetadata.CalculationOutcome != model.OutcomeSuccess || resp.CalculationMetadata.FormulaVariant != "canonical" {
		t.Fatalf("metadata=%+v", resp.CalculationMetadata)
	}
	if resp.CalculationMetadata.CalculationID == "" {
		t.Fatalf("expected calculation id")
	}

	t.Run("unknown employee", func(t *testing.T) {
		_, err := e.Individual(upload, model.IndividualRequest{EmployeeID: "E9", Params: baseParams()})
		if !model.IsValidation(err) || err.Error() != "No record for Employee ID 'E9'" {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("dropped row is not found", func(t *testing.T) {
		_, err := e.Individual(upload, model.IndividualRequest{EmployeeID: "E2", Params: baseParams()})
		if !model.IsValidation(err) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("missing birth date", func(t *testing.T) {
		_, err := e.Individual(upload, model.IndividualRequest{EmployeeID: "E4", Params: baseParams()})
		if !model.IsValidation(err) || !errors.Is(err, model.ErrIncompleteRecord) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("unknown formula", func(t *testing.T) {
		_, err := e.Individual(upload, model.IndividualRequest{EmployeeID: "E1", Formula: "nope", Params: baseParams()})
		if !model.IsValidation(err) {
			t.Fatalf("err=%v", err)
		}
	})

	t.Run("wrong sheet", func(t *testing.T) {
		other := New(Options{Sheet: "Leavers", Now: fixedClock})
		_, err := other.Individual(upload, model.IndividualRequest{EmployeeID: "E1", Params: baseParams()})
		if !model.IsInputFormat(err) {
			t.Fatalf("err=%v", err)
		}
	})
}

func TestCompany(t *testing.T) {
	reports := &memReports{}
	e := newTestEngine(reports)

	params := baseParams()
	params.RetirementAge = intp(60)
	resp, err := e.Company(rosterUpload(t), model.CompanyRequest{Params: params})
	if err != nil {
		t.Fatalf("err=%v", err)
	}

	if len(resp.Rows) != 2 || resp.Rows[0].EmployeeID != "E1" || resp.Rows[1].EmployeeID != "E4" {
		t.Fatalf("rows=%+v", resp.Rows)
	}
	if resp.Excluded != 1 {
		t.Fatalf("excluded=%d", resp.Excluded)
	}
	if resp.DownloadFilename != "gratuity_report_test.xlsx" {
		t.Fatalf("filename=%s", resp.DownloadFilename)
	}
	if !reports.total.Equal(resp.Total) || len(reports.results) != 2 {
		t.Fatalf("report writer got total=%s rows=%d", reports.total, len(reports.results))
	}

	want := model.RosterStats{TotalRows: 5, Accepted: 3, MissingID: 1, InvalidSalary: 1, MissingBirth: 1}
	if resp.Stats != want {
		t.Fatalf("stats=%+v", resp.Stats)
	}

	codes := map[string]bool{}
	for i, m := range resp.Messages {
		if m.ID != i || m.Level != model.LevelWarning {
			t.Fatalf("message %d malformed: %+v", i, m)
		}
		codes[m.Code] = true
	}
	for _, c := range []string{model.CodeMissingID, model.CodeInvalidSalary, model.CodeMissingBirth, model.CodeRetiredExcluded} {
		if !codes[c] {
			t.Fatalf("missing message %s in %+v", c, resp.Messages)
		}
	}
	if codes[model.CodeIncompleteRecords] {
		t.Fatalf("no record should be incomplete")
	}
}

func TestCompanyReportWriteFailure(t *testing.T) {
	boom := errors.New("disk full")
	e := newTestEngine(&memReports{err: boom})

	_, err := e.Company(rosterUpload(t), model.CompanyRequest{Params: baseParams()})
	if !errors.Is(err, boom) {
		t.Fatalf("err=%v", err)
	}
}
