package handler

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"gratuity-engine/internal/engine"
	"gratuity-engine/internal/formula"
	"gratuity-engine/internal/model"
	"gratuity-engine/internal/report"
)

const (
	uploadField     = "excel_file"
	downloadPrefix  = "/download/"
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ReportReader serves previously generated report artifacts.
type ReportReader interface {
	Read(name string) ([]byte, error)
}

// Route describes one endpoint for the index page and startup logging.
type Route struct {
	Path    string   `json:"path"`
	Methods []string `json:"methods"`

	prefix bool
	handle fasthttp.RequestHandler
}

// Handler is the HTTP face of the engine. It renders every core error as a
// plain JSON message.
type Handler struct {
	engine  *engine.Engine
	reports ReportReader
	logger  *slog.Logger
	routes  []Route
}

func New(e *engine.Engine, reports ReportReader, logger *slog.Logger) *Handler {
	h := &Handler{engine: e, reports: reports, logger: logger}
	h.routes = []Route{
		{Path: "/", Methods: []string{fasthttp.MethodGet}, handle: h.handleIndex},
		{Path: "/healthz", Methods: []string{fasthttp.MethodGet}, handle: h.handleHealth},
		{Path: "/individual", Methods: []string{fasthttp.MethodPost}, handle: h.handleIndividual},
		{Path: "/company", Methods: []string{fasthttp.MethodPost}, handle: h.handleCompany},
		{Path: downloadPrefix + "{filename}", Methods: []string{fasthttp.MethodGet}, prefix: true, handle: h.handleDownload},
	}
	return h
}

func (h *Handler) Routes() []Route { return h.routes }

// Handle is the fasthttp entry point.
func (h *Handler) Handle(ctx *fasthttp.RequestCtx) {
	start := time.Now()
	h.dispatch(ctx)
	h.logger.Info("request completed",
		"method", string(ctx.Method()),
		"path", string(ctx.Path()),
		"status", ctx.Response.StatusCode(),
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (h *Handler) dispatch(ctx *fasthttp.RequestCtx) {
	path := string(ctx.Path())
	method := string(ctx.Method())

	for _, rt := range h.routes {
		if !rt.matches(path) {
			continue
		}
		for _, m := range rt.Methods {
			if m == method {
				rt.handle(ctx)
				return
			}
		}
		allowed := strings.Join(rt.Methods, ", ")
		ctx.Response.Header.Set(fasthttp.HeaderAllow, allowed)
		writeError(ctx, fasthttp.StatusMethodNotAllowed,
			fmt.Sprintf("Your request used %s but this URL only allows: %s", method, allowed))
		return
	}
	writeError(ctx, fasthttp.StatusNotFound, "Not found: "+path)
}

func (rt Route) matches(path string) bool {
	if rt.prefix {
		return strings.HasPrefix(path, downloadPrefix) && len(path) > len(downloadPrefix)
	}
	return path == rt.Path
}

func (h *Handler) handleIndex(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]any{
		"service":  "gratuity-engine",
		"routes":   h.routes,
		"formulas": formula.Names(),
	})
}

func (h *Handler) handleHealth(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, fasthttp.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleIndividual(ctx *fasthttp.RequestCtx) {
	upload, err := readUpload(ctx)
	if err != nil {
		h.writeCoreError(ctx, err)
		return
	}
	params, err := parseParams(ctx)
	if err != nil {
		h.writeCoreError(ctx, err)
		return
	}
	empID := strings.TrimSpace(string(ctx.FormValue("emp_id")))
	if empID == "" {
		h.writeCoreError(ctx, model.NewValidation("emp_id is required"))
		return
	}

	resp, err := h.engine.Individual(upload, model.IndividualRequest{
		EmployeeID: empID,
		Formula:    string(ctx.FormValue("formula")),
		Params:     params,
	})
	if err != nil {
		h.writeCoreError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (h *Handler) handleCompany(ctx *fasthttp.RequestCtx) {
	upload, err := readUpload(ctx)
	if err != nil {
		h.writeCoreError(ctx, err)
		return
	}
	params, err := parseParams(ctx)
	if err != nil {
		h.writeCoreError(ctx, err)
		return
	}

	resp, err := h.engine.Company(upload, model.CompanyRequest{
		Formula: string(ctx.FormValue("formula")),
		Params:  params,
	})
	if err != nil {
		h.writeCoreError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (h *Handler) handleDownload(ctx *fasthttp.RequestCtx) {
	name := strings.TrimPrefix(string(ctx.Path()), downloadPrefix)

	data, err := h.reports.Read(name)
	if err != nil {
		if errors.Is(err, report.ErrNotFound) {
			writeError(ctx, fasthttp.StatusNotFound, "Report not found: "+name)
			return
		}
		h.logger.Error("reading report failed", "report", name, "error", err)
		writeError(ctx, fasthttp.StatusInternalServerError, "Could not read report")
		return
	}

	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType(xlsxContentType)
	ctx.Response.Header.Set(fasthttp.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	ctx.SetBody(data)
}

func readUpload(ctx *fasthttp.RequestCtx) (model.Upload, error) {
	fh, err := ctx.FormFile(uploadField)
	if err != nil {
		return model.Upload{}, model.NewValidation(uploadField + " is required")
	}
	f, err := fh.Open()
	if err != nil {
		return model.Upload{}, model.NewInputFormat("could not open uploaded file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return model.Upload{}, model.NewInputFormat("could not read uploaded file")
	}
	return model.Upload{Filename: fh.Filename, Data: data}, nil
}

// parseParams reads the scenario form fields. Percentages arrive on a 0-100
// scale.
func parseParams(ctx *fasthttp.RequestCtx) (model.ScenarioParams, error) {
	var p model.ScenarioParams

	target, err := formInt(ctx, "target_year")
	if err != nil {
		return p, err
	}
	inc, err := formFloat(ctx, "inc_pct")
	if err != nil {
		return p, err
	}
	disc, err := formFloat(ctx, "disc_pct")
	if err != nil {
		return p, err
	}
	p = model.ScenarioParams{TargetYear: target, IncrementRate: inc / 100, DiscountRate: disc / 100}

	if strings.TrimSpace(string(ctx.FormValue("retirement_age"))) != "" {
		age, err := formInt(ctx, "retirement_age")
		if err != nil {
			return p, err
		}
		p.RetirementAge = &age
	}
	return p, nil
}

func formInt(ctx *fasthttp.RequestCtx, key string) (int, error) {
	raw := strings.TrimSpace(string(ctx.FormValue(key)))
	if raw == "" {
		return 0, model.NewValidation(key + " is required")
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, model.NewValidation(fmt.Sprintf("%s must be a whole number, got %q", key, raw))
	}
	return v, nil
}

func formFloat(ctx *fasthttp.RequestCtx, key string) (float64, error) {
	raw := strings.TrimSpace(string(ctx.FormValue(key)))
	if raw == "" {
		return 0, model.NewValidation(key + " is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, model.NewValidation(fmt.Sprintf("%s must be a number, got %q", key, raw))
	}
	return v, nil
}

func (h *Handler) writeCoreError(ctx *fasthttp.RequestCtx, err error) {
	switch {
	case model.IsInputFormat(err):
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
	case model.IsValidation(err):
		writeError(ctx, fasthttp.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("calculation failed", "path", string(ctx.Path()), "error", err)
		writeError(ctx, fasthttp.StatusInternalServerError, "Calculation failed")
	}
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetContentType("application/json")
		ctx.SetBodyString(`{"status":500,"message":"encoding response failed"}`)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json")
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, model.ErrorResponse{
		Status:  status,
		Message: message,
	})
}
