package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/timeclock/internal/application"
)

// ClockService is the kiosk-facing slice of the time accounting engine.
type ClockService interface {
	StartTask(ctx context.Context, params application.StartTaskParams) (application.StartTaskResult, error)
	EndTask(ctx context.Context, employeeID string) (application.EndTaskResult, error)
	StartBreak(ctx context.Context, params application.StartBreakParams) (application.StartBreakResult, error)
	EndBreak(ctx context.Context, params application.EndBreakParams) (application.EndBreakResult, error)
	CurrentState(ctx context.Context, employeeID string) (application.EmployeeState, error)
	DailyTotals(ctx context.Context, employeeID, date string) (application.DailyTotals, error)
}

// ClockHandler serves the kiosk clock-in surface.
type ClockHandler struct {
	service   ClockService
	responder responder
	logger    *slog.Logger
}

func NewClockHandler(service ClockService, logger *slog.Logger) *ClockHandler {
	logger = defaultLogger(logger)
	return &ClockHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *ClockHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "clock", operation, attrs...)
}

type startTaskRequest struct {
	EmployeeID   string `json:"employee_id"`
	DepartmentID string `json:"department_id"`
	TaskID       string `json:"task_id"`
}

type startTaskResponse struct {
	Entry       workEntryDTO   `json:"entry"`
	ClosedWork  *workEntryDTO  `json:"closed_work,omitempty"`
	ClosedBreak *breakEntryDTO `json:"closed_break,omitempty"`
}

// StartTask clocks an employee in against a task, auto-closing whatever was
// open beforehand.
func (h *ClockHandler) StartTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req startTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.StartTask(ctx, application.StartTaskParams{
		EmployeeID:   req.EmployeeID,
		DepartmentID: req.DepartmentID,
		TaskID:       req.TaskID,
	})
	if err != nil {
		h.log(ctx, "start_task").WarnContext(ctx, "start task rejected", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "start_task", "employee_id", result.Entry.EmployeeID).
		InfoContext(ctx, "task started", "entry_id", result.Entry.ID)
	h.responder.writeJSON(ctx, w, http.StatusCreated, startTaskResponse{
		Entry:       toWorkEntryDTO(result.Entry),
		ClosedWork:  toWorkEntryDTOPtr(result.ClosedWork),
		ClosedBreak: toBreakEntryDTOPtr(result.ClosedBreak),
	})
}

type employeeIDRequest struct {
	EmployeeID string `json:"employee_id"`
}

type endTaskResponse struct {
	Closed *workEntryDTO `json:"closed,omitempty"`
}

// EndTask clocks an employee out. Ending with nothing open is a no-op.
func (h *ClockHandler) EndTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req employeeIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.EmployeeID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	result, err := h.service.EndTask(ctx, req.EmployeeID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "end_task", "employee_id", req.EmployeeID).
		InfoContext(ctx, "task ended", "closed", result.Closed != nil)
	h.responder.writeJSON(ctx, w, http.StatusOK, endTaskResponse{Closed: toWorkEntryDTOPtr(result.Closed)})
}

type startBreakRequest struct {
	EmployeeID string `json:"employee_id"`
	Kind       string `json:"kind"`
}

type startBreakResponse struct {
	Entry       breakEntryDTO  `json:"entry"`
	ClosedWork  *workEntryDTO  `json:"closed_work,omitempty"`
	ClosedBreak *breakEntryDTO `json:"closed_break,omitempty"`
}

// StartBreak opens a paid or unpaid break, auto-closing open entries first.
func (h *ClockHandler) StartBreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req startBreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.StartBreak(ctx, application.StartBreakParams{
		EmployeeID: req.EmployeeID,
		Kind:       application.BreakKind(req.Kind),
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "start_break", "employee_id", result.Entry.EmployeeID).
		InfoContext(ctx, "break started", "kind", result.Entry.Kind)
	h.responder.writeJSON(ctx, w, http.StatusCreated, startBreakResponse{
		Entry:       toBreakEntryDTO(result.Entry),
		ClosedWork:  toWorkEntryDTOPtr(result.ClosedWork),
		ClosedBreak: toBreakEntryDTOPtr(result.ClosedBreak),
	})
}

type endBreakRequest struct {
	EmployeeID string `json:"employee_id"`
	Confirmed  bool   `json:"confirmed"`
}

type endBreakResponse struct {
	Closed  *breakEntryDTO   `json:"closed,omitempty"`
	Warning *breakWarningDTO `json:"warning,omitempty"`
}

// EndBreak closes the open break. An over-limit break answers with a warning
// and stays open until the caller repeats the request with confirmed=true.
func (h *ClockHandler) EndBreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req endBreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.EmployeeID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	result, err := h.service.EndBreak(ctx, application.EndBreakParams{
		EmployeeID: req.EmployeeID,
		Confirmed:  req.Confirmed,
	})
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "end_break", "employee_id", req.EmployeeID).
		InfoContext(ctx, "break ended", "closed", result.Closed != nil, "over_limit", result.Warning != nil)
	h.responder.writeJSON(ctx, w, http.StatusOK, endBreakResponse{
		Closed:  toBreakEntryDTOPtr(result.Closed),
		Warning: toBreakWarningDTO(result.Warning),
	})
}

type stateResponse struct {
	Status     string         `json:"status"`
	WorkEntry  *workEntryDTO  `json:"work_entry,omitempty"`
	BreakEntry *breakEntryDTO `json:"break_entry,omitempty"`
}

// State reports the employee's current activity status.
func (h *ClockHandler) State(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	employeeID := r.URL.Query().Get("employee_id")
	if employeeID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	state, err := h.service.CurrentState(ctx, employeeID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, stateResponse{
		Status:     string(state.Status),
		WorkEntry:  toWorkEntryDTOPtr(state.WorkEntry),
		BreakEntry: toBreakEntryDTOPtr(state.BreakEntry),
	})
}

type totalsResponse struct {
	Date               string `json:"date"`
	WorkMinutes        int    `json:"work_minutes"`
	PaidBreakMinutes   int    `json:"paid_break_minutes"`
	UnpaidBreakMinutes int    `json:"unpaid_break_minutes"`
}

// Totals reports the employee's booked minutes for one date. An omitted date
// defaults to today.
func (h *ClockHandler) Totals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	query := r.URL.Query()
	employeeID := query.Get("employee_id")
	if employeeID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	totals, err := h.service.DailyTotals(ctx, employeeID, query.Get("date"))
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, totalsResponse{
		Date:               totals.Date,
		WorkMinutes:        totals.WorkMinutes,
		PaidBreakMinutes:   totals.PaidBreakMinutes,
		UnpaidBreakMinutes: totals.UnpaidBreakMinutes,
	})
}
