package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/example/timeclock/internal/application"
)

// IdentityService is the kiosk sign-in slice of the employee service.
type IdentityService interface {
	IdentifyByName(ctx context.Context, name string) (application.Employee, error)
	SetupPIN(ctx context.Context, employeeID, pin string) error
	VerifyPIN(ctx context.Context, employeeID, pin string) error
}

// LoginHandler serves the two-step kiosk sign-in: name lookup, then PIN.
type LoginHandler struct {
	service   IdentityService
	responder responder
	logger    *slog.Logger
}

func NewLoginHandler(service IdentityService, logger *slog.Logger) *LoginHandler {
	logger = defaultLogger(logger)
	return &LoginHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *LoginHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "login", operation, attrs...)
}

type identifyRequest struct {
	Name string `json:"name"`
}

type identifyResponse struct {
	Employee employeeDTO `json:"employee"`
	// PINRequired tells the kiosk whether to prompt for verification or
	// first-time setup.
	PINRequired bool `json:"pin_required"`
}

// Identify resolves a typed name to an employee account.
func (h *LoginHandler) Identify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req identifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	employee, err := h.service.IdentifyByName(ctx, req.Name)
	if err != nil {
		h.log(ctx, "identify").WarnContext(ctx, "identification failed", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusOK, identifyResponse{
		Employee:    toEmployeeDTO(employee),
		PINRequired: employee.PINSet,
	})
}

type pinRequest struct {
	EmployeeID string `json:"employee_id"`
	PIN        string `json:"pin"`
}

// SetupPIN stores a first-time PIN for the employee.
func (h *LoginHandler) SetupPIN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.EmployeeID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	if err := h.service.SetupPIN(ctx, req.EmployeeID, req.PIN); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "setup_pin", "employee_id", req.EmployeeID).InfoContext(ctx, "pin configured")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// VerifyPIN checks a PIN attempt during kiosk sign-in.
func (h *LoginHandler) VerifyPIN(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req pinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	if req.EmployeeID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEmployeeID)
		return
	}

	if err := h.service.VerifyPIN(ctx, req.EmployeeID, req.PIN); err != nil {
		h.log(ctx, "verify_pin", "employee_id", req.EmployeeID).
			WarnContext(ctx, "pin verification failed", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
