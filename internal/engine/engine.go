package engine

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gratuity-engine/internal/formula"
	"gratuity-engine/internal/model"
	"gratuity-engine/internal/roster"
)

// ReportWriter persists a company report and returns the name it can be
// downloaded under.
type ReportWriter interface {
	Write(results []model.GratuityResult, total decimal.Decimal) (string, error)
}

type Options struct {
	Sheet   string
	Schema  roster.Schema
	Variant string
	Reports ReportWriter
	Now     func() time.Time
	Logger  *slog.Logger
}

// Engine runs the individual and company flows over an uploaded roster.
// It keeps no state between calls.
type Engine struct {
	sheet   string
	schema  roster.Schema
	variant string
	reports ReportWriter
	now     func() time.Time
	logger  *slog.Logger
}

func New(opts Options) *Engine {
	e := &Engine{
		sheet:   opts.Sheet,
		schema:  opts.Schema,
		variant: opts.Variant,
		reports: opts.Reports,
		now:     opts.Now,
		logger:  opts.Logger,
	}
	if e.sheet == "" {
		e.sheet = roster.DefaultSheet
	}
	if e.schema == (roster.Schema{}) {
		e.schema = roster.DefaultSchema
	}
	if e.variant == "" {
		e.variant = formula.Default
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.logger == nil {
		e.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return e
}

func (e *Engine) calculator(name string) (*Calculator, error) {
	if name == "" {
		name = e.variant
	}
	v, ok := formula.Get(name)
	if !ok {
		return nil, model.NewValidation(fmt.Sprintf("Unknown formula: %s", name))
	}
	return NewCalculator(v, e.now), nil
}

// Individual computes the gratuity of one employee. Both dates of that
// employee must be parseable.
func (e *Engine) Individual(upload model.Upload, req model.IndividualRequest) (*model.IndividualResponse, error) {
	start := time.Now()

	calc, err := e.calculator(req.Formula)
	if err != nil {
		return nil, err
	}
	if err := calc.Check(req.Params); err != nil {
		return nil, err
	}

	r, err := roster.Load(upload, e.sheet, e.schema)
	if err != nil {
		return nil, err
	}
	rec, err := r.Lookup(req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !rec.DateOfJoining.Valid || !rec.DateOfBirth.Valid {
		return nil, model.WrapValidation("Could not parse DOJ or DOB for the given employee.", model.ErrIncompleteRecord)
	}

	res, err := calc.Calculate(rec, req.Params)
	if err != nil {
		return nil, err
	}

	e.logger.Info("individual gratuity calculated",
		"employee_id", rec.ID,
		"formula", calc.Variant().Name(),
		"amount", res.Amount.String(),
	)

	return &model.IndividualResponse{
		CalculationMetadata: metadata(start, calc.Variant().Name()),
		Result:              res,
	}, nil
}

// Company computes the report for every employee still in service at the
// target year and stores it as a downloadable artifact.
func (e *Engine) Company(upload model.Upload, req model.CompanyRequest) (*model.CompanyResponse, error) {
	start := time.Now()

	calc, err := e.calculator(req.Formula)
	if err != nil {
		return nil, err
	}
	if err := calc.Check(req.Params); err != nil {
		return nil, err
	}

	r, err := roster.Load(upload, e.sheet, e.schema)
	if err != nil {
		return nil, err
	}
	e.logger.Info("roster normalized",
		"rows", r.Stats.TotalRows,
		"accepted", r.Stats.Accepted,
		"missing_id", r.Stats.MissingID,
		"invalid_salary", r.Stats.InvalidSalary,
	)

	agg, err := calc.Aggregate(r.Records, req.Params)
	if err != nil {
		return nil, err
	}

	var filename string
	if e.reports != nil {
		filename, err = e.reports.Write(agg.Results, agg.Total)
		if err != nil {
			return nil, fmt.Errorf("writing company report: %w", err)
		}
	}

	e.logger.Info("company gratuity report computed",
		"employees", len(agg.Results),
		"excluded_retired", agg.Excluded,
		"excluded_unknown_retirement", agg.UnknownRetirement,
		"incomplete", agg.Incomplete,
		"total", agg.Total.String(),
		"report", filename,
	)

	return &model.CompanyResponse{
		CalculationMetadata: metadata(start, calc.Variant().Name()),
		Rows:                agg.Results,
		Total:               agg.Total,
		Excluded:            agg.Excluded,
		ExcludedUnknown:     agg.UnknownRetirement,
		DownloadFilename:    filename,
		Stats:               r.Stats,
		Messages:            rosterMessages(r.Stats, agg),
	}, nil
}

// rosterMessages reports rows the normalizer or aggregator filtered as
// warnings; they never fail the calculation.
func rosterMessages(stats model.RosterStats, agg *AggregateResult) []model.CalculationMessage {
	allMessages := []model.CalculationMessage{}
	add := func(count int, code, format string) {
		if count == 0 {
			return
		}
		allMessages = append(allMessages, model.CalculationMessage{
			ID:      len(allMessages),
			Level:   model.LevelWarning,
			Code:    code,
			Message: fmt.Sprintf(format, count),
		})
	}

	add(stats.MissingID, model.CodeMissingID, "%d row(s) without an Employee ID were skipped")
	add(stats.InvalidSalary, model.CodeInvalidSalary, "%d row(s) without a usable eligible salary were skipped")
	add(stats.MissingJoining, model.CodeMissingJoining, "%d employee(s) have no parseable date of joining")
	add(stats.MissingBirth, model.CodeMissingBirth, "%d employee(s) have no parseable date of birth")
	add(agg.Excluded, model.CodeRetiredExcluded, "%d employee(s) retire before the target year and were excluded")
	add(agg.UnknownRetirement, model.CodeUnknownRetirement, "%d employee(s) have no date of birth to project retirement from and were excluded")
	add(agg.Incomplete, model.CodeIncompleteRecords, "%d employee(s) could not be calculated and were reported as 0")
	return allMessages
}

func metadata(start time.Time, variant string) model.CalculationMetadata {
	elapsed := time.Since(start)
	now := time.Now().UTC()
	return model.CalculationMetadata{
		CalculationID:          uuid.New().String(),
		FormulaVariant:         variant,
		CalculationStartedAt:   now.Add(-elapsed).Format(time.RFC3339),
		CalculationCompletedAt: now.Format(time.RFC3339),
		CalculationDurationMs:  elapsed.Milliseconds(),
		CalculationOutcome:     model.OutcomeSuccess,
	}
}
