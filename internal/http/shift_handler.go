package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/timeclock/internal/application"
)

var errMissingShiftID = errors.New("a shift id is required")

// ShiftAdminService manages the configured shift windows.
type ShiftAdminService interface {
	CreateShift(ctx context.Context, input application.ShiftInput) (application.Shift, error)
	ListShifts(ctx context.Context) ([]application.Shift, error)
	UpdateShift(ctx context.Context, id string, input application.ShiftInput) (application.Shift, error)
	DeleteShift(ctx context.Context, id string) error
}

// ShiftHandler serves the administrator shift configuration endpoints.
type ShiftHandler struct {
	service   ShiftAdminService
	responder responder
	logger    *slog.Logger
}

func NewShiftHandler(service ShiftAdminService, logger *slog.Logger) *ShiftHandler {
	logger = defaultLogger(logger)
	return &ShiftHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *ShiftHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "shift", operation, attrs...)
}

type shiftRequest struct {
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color"`
}

func (req shiftRequest) toInput() application.ShiftInput {
	return application.ShiftInput{
		Name:      req.Name,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Color:     req.Color,
	}
}

// Create adds a shift window. Windows may wrap midnight.
func (h *ShiftHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	shift, err := h.service.CreateShift(ctx, req.toInput())
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "create", "shift_id", shift.ID).InfoContext(ctx, "shift created")
	h.responder.writeJSON(ctx, w, http.StatusCreated, toShiftDTO(shift))
}

// List returns shifts in their configured resolution order.
func (h *ShiftHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	shifts, err := h.service.ListShifts(ctx)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	dtos := make([]shiftDTO, 0, len(shifts))
	for _, shift := range shifts {
		dtos = append(dtos, toShiftDTO(shift))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, dtos)
}

// Update rewrites a shift window.
func (h *ShiftHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := ShiftIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingShiftID)
		return
	}

	var req shiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	shift, err := h.service.UpdateShift(ctx, id, req.toInput())
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "update", "shift_id", id).InfoContext(ctx, "shift updated")
	h.responder.writeJSON(ctx, w, http.StatusOK, toShiftDTO(shift))
}

// Delete removes a shift that no entry references.
func (h *ShiftHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := ShiftIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingShiftID)
		return
	}

	if err := h.service.DeleteShift(ctx, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "delete", "shift_id", id).InfoContext(ctx, "shift deleted")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
