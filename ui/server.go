package ui

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"

	"medibot/adapters/excel"
	"medibot/app"
	"medibot/domain/diagnosis"
	"medibot/domain/metrics"
	"medibot/internal"
	"medibot/internal/errors"
	"medibot/internal/evaluation"
	"medibot/internal/report"
	"medibot/internal/session"
	"medibot/internal/tabular"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxBodyBytes = 32 << 20

// Config holds server settings and the defaults applied to API requests
type Config struct {
	Port         string
	Dataset      string
	Options      evaluation.Options
	SweepSeeds   int
	SweepWorkers int
}

// App serves the evaluation and diagnosis API
type App struct {
	router     *chi.Mux
	config     Config
	table      *tabular.Table
	evaluation *app.EvaluationService
	diagnosis  *app.DiagnosisService
	logger     *internal.Logger

	mu     sync.Mutex
	cached *app.EvaluationResult
}

// NewApp wires the services behind a chi router. table is the configured dataset.
func NewApp(config Config, table *tabular.Table, eval *app.EvaluationService, diag *app.DiagnosisService) *App {
	a := &App{
		router:     chi.NewRouter(),
		config:     config,
		table:      table,
		evaluation: eval,
		diagnosis:  diag,
		logger:     internal.DefaultLogger.With("UI"),
	}
	a.setupMiddleware()
	a.setupRoutes()
	return a
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/healthz", a.handleHealth)
	a.router.Get("/report", a.handleReport)
	a.router.Get("/report.xlsx", a.handleReportWorkbook)

	a.router.Route("/api", func(r chi.Router) {
		r.Get("/metrics", a.handleMetrics)
		r.Post("/evaluate", a.handleEvaluate)
		r.Post("/sweep", a.handleSweep)
		r.Post("/predict", a.handlePredict)
		r.Get("/symptoms", a.handleSymptoms)
		r.Get("/runs", a.handleListRuns)
		r.Get("/runs/{id}", a.handleGetRun)
	})
}

// Handler exposes the router, mainly for tests
func (a *App) Handler() http.Handler {
	return a.router
}

// Start starts the HTTP server
func (a *App) Start() error {
	port := a.config.Port
	if port == "" {
		port = "8080"
	}
	a.logger.Info("Starting server on :%s (dataset %s)", port, a.config.Dataset)
	return http.ListenAndServe(":"+port, a.router)
}

// currentReport evaluates the configured dataset once with the default options
func (a *App) currentReport(r *http.Request) (*app.EvaluationResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.cached != nil {
		return a.cached, nil
	}
	result, err := a.evaluation.Evaluate(r.Context(), app.EvaluationRequest{
		Dataset: a.config.Dataset,
		Table:   a.table,
		Options: a.config.Options,
	})
	if err != nil {
		return nil, err
	}
	a.cached = result
	return result, nil
}

func (a *App) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "ok",
		"dataset": a.config.Dataset,
		"archive": a.evaluation.ArchiveEnabled(),
	})
}

func (a *App) handleMetrics(w http.ResponseWriter, r *http.Request) {
	result, err := a.currentReport(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleReport(w http.ResponseWriter, r *http.Request) {
	result, err := a.currentReport(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(report.HTML(result.Report))
}

func (a *App) handleReportWorkbook(w http.ResponseWriter, r *http.Request) {
	result, err := a.currentReport(r)
	if err != nil {
		a.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="report-%s.xlsx"`, result.RunID))
	if _, err := excel.NewReportWriter(result.Report).WriteTo(w); err != nil {
		a.logger.Error("failed to stream workbook: %v", err)
	}
}

type evaluateRequest struct {
	Text         string   `json:"text"`
	Delimiter    string   `json:"delimiter"`
	TestFraction *float64 `json:"test_fraction"`
	Seed         *int64   `json:"seed"`
}

// options overlays the request fields on the configured defaults
func (req evaluateRequest) options(defaults evaluation.Options) evaluation.Options {
	opts := defaults
	if req.TestFraction != nil {
		opts.TestFraction = *req.TestFraction
	}
	if req.Seed != nil {
		opts.Seed = *req.Seed
	}
	if req.Delimiter != "" {
		opts.Delimiter = req.Delimiter
	}
	return opts
}

// target uses the posted text when present, else the configured dataset
func (a *App) target(req evaluateRequest) app.EvaluationRequest {
	er := app.EvaluationRequest{Options: req.options(a.config.Options)}
	if req.Text != "" {
		er.Dataset = "inline"
		er.Text = req.Text
	} else {
		er.Dataset = a.config.Dataset
		er.Table = a.table
	}
	return er
}

func (a *App) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	result, err := a.evaluation.Evaluate(r.Context(), a.target(req))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type sweepRequest struct {
	evaluateRequest
	Seeds   int `json:"seeds"`
	Workers int `json:"workers"`
}

func (a *App) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req sweepRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeError(w, err)
		return
	}
	if req.Seeds == 0 {
		req.Seeds = a.config.SweepSeeds
	}
	if req.Workers == 0 {
		req.Workers = a.config.SweepWorkers
	}

	result, err := a.evaluation.Sweep(r.Context(), app.SweepRequest{
		EvaluationRequest: a.target(req.evaluateRequest),
		Seeds:             req.Seeds,
		Workers:           req.Workers,
	})
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type predictRequest struct {
	Items []diagnosis.Item `json:"items"`
}

func (a *App) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if err := decodeBody(w, r, &req); err != nil {
		a.writeError(w, err)
		return
	}

	result, err := a.diagnosis.Diagnose(r.Context(), session.FromItems(req.Items))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *App) handleSymptoms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"symptoms": a.diagnosis.Vocabulary()})
}

func (a *App) handleListRuns(w http.ResponseWriter, r *http.Request) {
	runs := a.evaluation.Runs()
	if runs == nil {
		a.writeError(w, errors.NotFound("run archive"))
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			a.writeError(w, errors.InvalidInput("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	records, err := runs.List(r.Context(), limit)
	if err != nil {
		a.writeError(w, err)
		return
	}
	if records == nil {
		records = []*metrics.RunRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": records})
}

func (a *App) handleGetRun(w http.ResponseWriter, r *http.Request) {
	runs := a.evaluation.Runs()
	if runs == nil {
		a.writeError(w, errors.NotFound("run archive"))
		return
	}
	record, err := runs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// decodeBody treats an empty body as an empty request
func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	err := json.NewDecoder(r.Body).Decode(v)
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return errors.WithCode(errors.CodeInvalidInput, errors.Wrap(err, "invalid JSON body"))
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps error codes to HTTP status
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.CodeMalformedInput, errors.CodeInvalidInput, errors.CodeValidationError, errors.CodeEmptyQuery:
		return http.StatusBadRequest
	case errors.CodeNotFound:
		return http.StatusNotFound
	case errors.CodeExternalService:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (a *App) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("request failed: %v", err)
	}
	writeJSON(w, status, map[string]interface{}{
		"error": err.Error(),
		"code":  errors.GetCode(err),
	})
}
