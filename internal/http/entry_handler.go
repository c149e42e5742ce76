package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/timeclock/internal/application"
)

// EntryService is the administrator correction slice of the engine.
type EntryService interface {
	AdjustWorkEntry(ctx context.Context, params application.AdjustWorkEntryParams) (application.WorkEntry, error)
	AdjustBreakEntry(ctx context.Context, params application.AdjustBreakEntryParams) (application.BreakEntry, error)
	DeleteWorkEntry(ctx context.Context, entryID string) error
	DeleteBreakEntry(ctx context.Context, entryID string) error
}

// EntryHandler serves retroactive corrections of recorded entries.
type EntryHandler struct {
	service   EntryService
	responder responder
	logger    *slog.Logger
}

func NewEntryHandler(service EntryService, logger *slog.Logger) *EntryHandler {
	logger = defaultLogger(logger)
	return &EntryHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *EntryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "entry", operation, attrs...)
}

type adjustEntryRequest struct {
	Start *time.Time `json:"start"`
	End   *time.Time `json:"end"`
	Kind  string     `json:"kind,omitempty"`
}

// AdjustWork rewrites the interval of a work entry. A null end reopens it.
func (h *EntryHandler) AdjustWork(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	entryID, ok := EntryIDFromContext(ctx)
	if !ok || entryID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEntryID)
		return
	}

	var req adjustEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params := application.AdjustWorkEntryParams{EntryID: entryID, End: req.End}
	if req.Start != nil {
		params.Start = *req.Start
	}

	entry, err := h.service.AdjustWorkEntry(ctx, params)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "adjust_work", "entry_id", entryID).InfoContext(ctx, "work entry adjusted")
	h.responder.writeJSON(ctx, w, http.StatusOK, toWorkEntryDTO(entry))
}

// AdjustBreak rewrites the interval, and optionally the kind, of a break entry.
func (h *EntryHandler) AdjustBreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	entryID, ok := EntryIDFromContext(ctx)
	if !ok || entryID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEntryID)
		return
	}

	var req adjustEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	params := application.AdjustBreakEntryParams{
		EntryID: entryID,
		Kind:    application.BreakKind(req.Kind),
		End:     req.End,
	}
	if req.Start != nil {
		params.Start = *req.Start
	}

	entry, err := h.service.AdjustBreakEntry(ctx, params)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "adjust_break", "entry_id", entryID).InfoContext(ctx, "break entry adjusted")
	h.responder.writeJSON(ctx, w, http.StatusOK, toBreakEntryDTO(entry))
}

// DeleteWork removes a work entry outright.
func (h *EntryHandler) DeleteWork(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	entryID, ok := EntryIDFromContext(ctx)
	if !ok || entryID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEntryID)
		return
	}

	if err := h.service.DeleteWorkEntry(ctx, entryID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "delete_work", "entry_id", entryID).InfoContext(ctx, "work entry deleted")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

// DeleteBreak removes a break entry outright.
func (h *EntryHandler) DeleteBreak(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	entryID, ok := EntryIDFromContext(ctx)
	if !ok || entryID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingEntryID)
		return
	}

	if err := h.service.DeleteBreakEntry(ctx, entryID); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "delete_break", "entry_id", entryID).InfoContext(ctx, "break entry deleted")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
