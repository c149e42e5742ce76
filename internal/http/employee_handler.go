package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/timeclock/internal/application"
	"github.com/example/timeclock/internal/importer"
)

// EmployeeAdminService is the roster management slice of the employee service.
type EmployeeAdminService interface {
	CreateEmployee(ctx context.Context, input application.EmployeeInput) (application.Employee, error)
	UpdateEmployee(ctx context.Context, id string, input application.EmployeeInput) (application.Employee, error)
	GetEmployee(ctx context.Context, id string) (application.Employee, error)
	ListEmployees(ctx context.Context) ([]application.Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
	ResetPIN(ctx context.Context, employeeID string) error
}

// EmployeeHandler serves the administrator roster endpoints.
type EmployeeHandler struct {
	service   EmployeeAdminService
	responder responder
	logger    *slog.Logger
}

func NewEmployeeHandler(service EmployeeAdminService, logger *slog.Logger) *EmployeeHandler {
	logger = defaultLogger(logger)
	return &EmployeeHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *EmployeeHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "employee", operation, attrs...)
}

type employeeRequest struct {
	Name     string `json:"name"`
	Position string `json:"position"`
	IsTemp   bool   `json:"is_temp"`
	Email    string `json:"email"`
}

func (req employeeRequest) toInput() application.EmployeeInput {
	return application.EmployeeInput{
		Name:     req.Name,
		Position: req.Position,
		IsTemp:   req.IsTemp,
		Email:    req.Email,
	}
}

// Create registers a new employee and generates their code.
func (h *EmployeeHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	employee, err := h.service.CreateEmployee(ctx, req.toInput())
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "create", "employee_id", employee.ID).InfoContext(ctx, "employee created")
	h.responder.writeJSON(ctx, w, http.StatusCreated, toEmployeeDTO(employee))
}

// List returns the full roster.
func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	employees, err := h.service.ListEmployees(ctx)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	dtos := make([]employeeDTO, 0, len(employees))
	for _, employee := range employees {
		dtos = append(dtos, toEmployeeDTO(employee))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, dtos)
}

// Get returns one employee by id.
func (h *EmployeeHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := EmployeeIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	employee, err := h.service.GetEmployee(ctx, id)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, toEmployeeDTO(employee))
}

// Update rewrites an employee's mutable attributes. The code is immutable.
func (h *EmployeeHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := EmployeeIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	var req employeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	employee, err := h.service.UpdateEmployee(ctx, id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "update", "employee_id", id).InfoContext(ctx, "employee updated")
	h.responder.writeJSON(ctx, w, http.StatusOK, toEmployeeDTO(employee))
}

// Delete removes an employee and their recorded entries.
func (h *EmployeeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := EmployeeIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	if err := h.service.DeleteEmployee(ctx, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "delete", "employee_id", id).InfoContext(ctx, "employee deleted")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// ResetPIN clears an employee's PIN so the kiosk prompts for setup again.
func (h *EmployeeHandler) ResetPIN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := EmployeeIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	if err := h.service.ResetPIN(ctx, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "reset_pin", "employee_id", id).InfoContext(ctx, "pin reset")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

type importSkip struct {
	Line   int    `json:"line"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type importResponse struct {
	Created int          `json:"created"`
	Skipped []importSkip `json:"skipped,omitempty"`
}

// Import bulk-creates employees from an uploaded CSV or XLSX roster. Rows
// whose name already exists are skipped and reported, not failed.
func (h *EmployeeHandler) Import(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = "csv"
	}

	rows, err := importer.ParseRoster(r.Body, format)
	if err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, err)
		return
	}

	response := importResponse{}
	for _, row := range rows {
		if _, err := h.service.CreateEmployee(ctx, row.Input); err != nil {
			if errors.Is(err, application.ErrAlreadyExists) {
				response.Skipped = append(response.Skipped, importSkip{
					Line:   row.Line,
					Name:   row.Input.Name,
					Reason: "an employee with this name already exists",
				})
				continue
			}
			var vErr *application.ValidationError
			if errors.As(err, &vErr) {
				response.Skipped = append(response.Skipped, importSkip{
					Line:   row.Line,
					Name:   row.Input.Name,
					Reason: "the row failed validation",
				})
				continue
			}
			h.responder.handleServiceError(ctx, w, err)
			return
		}
		response.Created++
	}

	h.log(ctx, "import").InfoContext(ctx, "roster imported",
		"created", response.Created, "skipped", len(response.Skipped))
	h.responder.writeJSON(ctx, w, http.StatusOK, response)
}
