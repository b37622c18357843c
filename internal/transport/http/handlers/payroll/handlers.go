package payrollhandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"paymaster/internal/domain/payroll"
	"paymaster/internal/domain/schedule"
	"paymaster/internal/platform/metrics"
	"paymaster/internal/reports"
	"paymaster/internal/transport/http/api"
	"paymaster/internal/transport/http/middleware"
	"paymaster/internal/transport/http/shared"
)

type Handler struct {
	Service     *payroll.Service
	Metrics     *metrics.Collector
	Idempotency middleware.IdempotencyStore
	StubDir     string
}

func NewHandler(service *payroll.Service, collector *metrics.Collector, idempotency middleware.IdempotencyStore, stubDir string) *Handler {
	return &Handler{Service: service, Metrics: collector, Idempotency: idempotency, StubDir: stubDir}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/payroll", func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Post("/runs", h.handleRunPayroll)
		r.Post("/runs/scheduled", h.handleScheduledRun)
		r.Get("/history", h.handleListHistory)
		r.Get("/history/{start}/{end}", h.handleGetRun)
		r.Get("/history/{start}/{end}/report", h.handleReport)
		r.Get("/history/{start}/{end}/register", h.handleRegister)
		r.Get("/history/{start}/{end}/stubs/{employeeID}/paystub.pdf", h.handleStubPDF)
	})
}

type employeePayload struct {
	EmployeeID    string             `json:"employeeId"`
	DisplayName   string             `json:"displayName"`
	PayBasis      string             `json:"payBasis"`
	AnnualSalary  float64            `json:"annualSalary"`
	HourlyRate    float64            `json:"hourlyRate"`
	RegularHours  float64            `json:"regularHours"`
	OvertimeHours float64            `json:"overtimeHours"`
	State         string             `json:"state"`
	Allowances    int                `json:"allowances"`
	Deductions    map[string]float64 `json:"deductions"`
}

type periodPayload struct {
	StartDate  string `json:"startDate"`
	EndDate    string `json:"endDate"`
	PayDate    string `json:"payDate"`
	PeriodType string `json:"periodType"`
}

type runPayload struct {
	Period        periodPayload     `json:"period"`
	Employees     []employeePayload `json:"employees"`
	Strict        bool              `json:"strict"`
	EmployerTaxes bool              `json:"employerTaxes"`
}

type scheduledRunPayload struct {
	Cadence       string            `json:"cadence"`
	RunDate       string            `json:"runDate"`
	Employees     []employeePayload `json:"employees"`
	Strict        bool              `json:"strict"`
	EmployerTaxes bool              `json:"employerTaxes"`
}

func (h *Handler) handleRunPayroll(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	body, ok := readBody(w, r, requestID)
	if !ok {
		return
	}
	var payload runPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON payload", requestID)
		return
	}

	validator := shared.NewValidator()
	start, _ := validator.Date("period.startDate", payload.Period.StartDate)
	end, _ := validator.Date("period.endDate", payload.Period.EndDate)
	validator.DateOrder("period.startDate", start, "period.endDate", end)
	validator.Required("period.periodType", payload.Period.PeriodType, "period type is required")
	var payDate time.Time
	if strings.TrimSpace(payload.Period.PayDate) != "" {
		payDate, _ = validator.Date("period.payDate", payload.Period.PayDate)
	}
	if len(payload.Employees) == 0 {
		validator.Add("employees", "at least one employee is required")
	}
	for i, employee := range payload.Employees {
		if strings.TrimSpace(employee.EmployeeID) == "" {
			validator.Add(fmt.Sprintf("employees[%d].employeeId", i), "employee id is required")
		}
		validator.NonNegative(fmt.Sprintf("employees[%d].annualSalary", i), employee.AnnualSalary)
		validator.NonNegative(fmt.Sprintf("employees[%d].hourlyRate", i), employee.HourlyRate)
		validator.NonNegative(fmt.Sprintf("employees[%d].regularHours", i), employee.RegularHours)
		validator.NonNegative(fmt.Sprintf("employees[%d].overtimeHours", i), employee.OvertimeHours)
		validator.NonNegative(fmt.Sprintf("employees[%d].allowances", i), float64(employee.Allowances))
	}
	if validator.Reject(w, requestID) {
		return
	}

	period := payroll.PayPeriod{
		StartDate:  start,
		EndDate:    end,
		PayDate:    payDate,
		PeriodType: payroll.PeriodType(strings.ToLower(strings.TrimSpace(payload.Period.PeriodType))),
	}

	idemKey, handled := h.checkIdempotency(w, r, "payroll.run", body, requestID)
	if handled {
		return
	}

	result, err := h.Service.Run(r.Context(), toRoster(payload.Employees), period, payroll.RunOptions{
		Strict:        payload.Strict,
		EmployerTaxes: payload.EmployerTaxes,
	})
	if err != nil {
		h.failRun(w, requestID, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordRun(len(result.Stubs), len(result.Failures))
	}
	h.saveIdempotency(r, "payroll.run", idemKey, body, result)
	api.Created(w, result, requestID)
}

func (h *Handler) handleScheduledRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	body, ok := readBody(w, r, requestID)
	if !ok {
		return
	}
	var payload scheduledRunPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "invalid JSON payload", requestID)
		return
	}

	validator := shared.NewValidator()
	runDate, _ := validator.Date("runDate", payload.RunDate)
	validator.Required("cadence", payload.Cadence, "pay cadence is required")
	if len(payload.Employees) == 0 {
		validator.Add("employees", "at least one employee is required")
	}
	if validator.Reject(w, requestID) {
		return
	}

	cadence := payroll.PeriodType(strings.ToLower(strings.TrimSpace(payload.Cadence)))
	period, payDay, err := schedule.Resolve(cadence, runDate)
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "unknown_cadence", err.Error(), requestID)
		return
	}
	if !payDay {
		api.Success(w, map[string]any{
			"status":  "skipped",
			"message": "no payroll scheduled for " + payload.RunDate,
		}, requestID)
		return
	}

	idemKey, handled := h.checkIdempotency(w, r, "payroll.run.scheduled", body, requestID)
	if handled {
		return
	}

	result, err := h.Service.Run(r.Context(), toRoster(payload.Employees), period, payroll.RunOptions{
		Strict:        payload.Strict,
		EmployerTaxes: payload.EmployerTaxes,
	})
	if err != nil {
		h.failRun(w, requestID, err)
		return
	}

	if h.Metrics != nil {
		h.Metrics.RecordRun(len(result.Stubs), len(result.Failures))
	}
	response := map[string]any{"status": "success", "run": result}
	h.saveIdempotency(r, "payroll.run.scheduled", idemKey, body, response)
	api.Created(w, response, requestID)
}

func (h *Handler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())

	from, err := shared.ParseDate(r.URL.Query().Get("from"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "from must be a valid date", requestID)
		return
	}
	to, err := shared.ParseDate(r.URL.Query().Get("to"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "to must be a valid date", requestID)
		return
	}

	summaries, err := h.Service.History(r.Context(), from, to)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_error", "could not list payroll history", requestID)
		return
	}
	api.Success(w, map[string]any{"runs": summaries}, requestID)
}

func (h *Handler) handleGetRun(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	result, ok := h.loadRun(w, r, requestID)
	if !ok {
		return
	}
	api.Success(w, result, requestID)
}

func (h *Handler) handleReport(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	result, ok := h.loadRun(w, r, requestID)
	if !ok {
		return
	}

	reportType := r.URL.Query().Get("type")
	if reportType == "" {
		reportType = "summary"
	}
	switch reportType {
	case "summary":
		api.Success(w, reports.Summary(result), requestID)
	case "detailed":
		api.Success(w, reports.Detailed(result), requestID)
	case "tax":
		api.Success(w, reports.Tax(result), requestID)
	default:
		api.Fail(w, http.StatusBadRequest, "bad_request", "report type must be summary, detailed or tax", requestID)
	}
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	result, ok := h.loadRun(w, r, requestID)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="register_`+result.Period.Key()+`.csv"`)
	if err := reports.WriteRegister(w, result); err != nil {
		api.Fail(w, http.StatusInternalServerError, "register_error", "could not write register", requestID)
	}
}

func (h *Handler) handleStubPDF(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	result, ok := h.loadRun(w, r, requestID)
	if !ok {
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	for _, stub := range result.Stubs {
		if stub.EmployeeID != employeeID {
			continue
		}
		filePath, err := reports.StubPDF(h.StubDir, stub, result.Period)
		if err != nil {
			api.Fail(w, http.StatusInternalServerError, "pdf_error", "could not generate pay stub", requestID)
			return
		}
		w.Header().Set("Content-Type", "application/pdf")
		http.ServeFile(w, r, filePath)
		return
	}
	api.Fail(w, http.StatusNotFound, "not_found", "no stub for employee "+employeeID+" in this run", requestID)
}

func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request, requestID string) (payroll.RunResult, bool) {
	start, err := time.Parse("2006-01-02", chi.URLParam(r, "start"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "start must be a date in YYYY-MM-DD format", requestID)
		return payroll.RunResult{}, false
	}
	end, err := time.Parse("2006-01-02", chi.URLParam(r, "end"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "bad_request", "end must be a date in YYYY-MM-DD format", requestID)
		return payroll.RunResult{}, false
	}

	result, err := h.Service.RunForPeriod(r.Context(), start, end)
	if errors.Is(err, payroll.ErrRunNotFound) {
		api.Fail(w, http.StatusNotFound, "not_found", "no payroll run recorded for this period", requestID)
		return payroll.RunResult{}, false
	}
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "history_error", "could not load payroll run", requestID)
		return payroll.RunResult{}, false
	}
	return result, true
}

// readBody drains the request body, translating the body-limit error into a
// 413 instead of a generic decode failure.
func readBody(w http.ResponseWriter, r *http.Request, requestID string) ([]byte, bool) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			api.Fail(w, http.StatusRequestEntityTooLarge, "payload_too_large", "request body exceeds the configured limit", requestID)
			return nil, false
		}
		api.Fail(w, http.StatusBadRequest, "bad_request", "could not read request body", requestID)
		return nil, false
	}
	return body, true
}

// checkIdempotency replays the stored response when an Idempotency-Key is
// reused with the same payload, and rejects reuse with a different payload.
// The bool reports that the request was fully handled here.
func (h *Handler) checkIdempotency(w http.ResponseWriter, r *http.Request, endpoint string, body []byte, requestID string) (string, bool) {
	key := r.Header.Get("Idempotency-Key")
	if key == "" || h.Idempotency == nil {
		return key, false
	}

	operator, _ := middleware.GetOperator(r.Context())
	stored, found, err := h.Idempotency.Check(r.Context(), operator, endpoint, key, middleware.RequestHash(body))
	if errors.Is(err, middleware.ErrIdempotencyConflict) {
		api.Fail(w, http.StatusConflict, "idempotency_conflict", "idempotency key was already used with a different payload", requestID)
		return key, true
	}
	if err != nil {
		log.Printf("idempotency check failed: %v", err)
		return key, false
	}
	if found {
		api.Success(w, json.RawMessage(stored), requestID)
		return key, true
	}
	return key, false
}

// saveIdempotency is best-effort; a failed save never fails a run that
// already computed.
func (h *Handler) saveIdempotency(r *http.Request, endpoint, key string, body []byte, response any) {
	if key == "" || h.Idempotency == nil {
		return
	}
	encoded, err := json.Marshal(response)
	if err != nil {
		log.Printf("idempotency response marshal failed: %v", err)
		return
	}
	operator, _ := middleware.GetOperator(r.Context())
	if err := h.Idempotency.Save(r.Context(), operator, endpoint, key, middleware.RequestHash(body), encoded); err != nil {
		log.Printf("idempotency save failed: %v", err)
	}
}

func (h *Handler) failRun(w http.ResponseWriter, requestID string, err error) {
	var recordErr *payroll.RecordError
	if errors.As(err, &recordErr) {
		api.FailWithDetails(w, http.StatusUnprocessableEntity, "invalid_record", recordErr.Error(), map[string]any{
			"employeeId": recordErr.EmployeeID,
			"field":      recordErr.Field,
		}, requestID)
		return
	}
	api.Fail(w, http.StatusInternalServerError, "run_error", "payroll run failed", requestID)
}

func toRoster(payloads []employeePayload) []payroll.CompensationRecord {
	roster := make([]payroll.CompensationRecord, 0, len(payloads))
	for _, employee := range payloads {
		roster = append(roster, payroll.CompensationRecord{
			EmployeeID:    employee.EmployeeID,
			DisplayName:   employee.DisplayName,
			PayBasis:      payroll.PayBasis(strings.ToLower(strings.TrimSpace(employee.PayBasis))),
			AnnualSalary:  employee.AnnualSalary,
			HourlyRate:    employee.HourlyRate,
			RegularHours:  employee.RegularHours,
			OvertimeHours: employee.OvertimeHours,
			State:         strings.ToUpper(strings.TrimSpace(employee.State)),
			Allowances:    employee.Allowances,
			Deductions:    employee.Deductions,
		})
	}
	return roster
}
