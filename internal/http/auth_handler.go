package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/example/timeclock/internal/application"
)

// AuthenticationService is the administrator session slice of the auth layer.
type AuthenticationService interface {
	Authenticate(ctx context.Context, params application.AuthenticateParams) (application.AdminSession, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves administrator session creation and teardown.
type AuthHandler struct {
	service   AuthenticationService
	responder responder
	logger    *slog.Logger
}

func NewAuthHandler(service AuthenticationService, logger *slog.Logger) *AuthHandler {
	logger = defaultLogger(logger)
	return &AuthHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *AuthHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "auth", operation, attrs...)
}

type createSessionRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// CreateSession authenticates an administrator and issues a bearer token.
func (h *AuthHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	session, err := h.service.Authenticate(ctx, application.AuthenticateParams{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.log(ctx, "create_session").WarnContext(ctx, "authentication failed", "error", err)
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "create_session").InfoContext(ctx, "session created", "session_id", session.ID)
	h.responder.writeJSON(ctx, w, http.StatusCreated, sessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
	})
}

// DeleteCurrentSession revokes the token carried by the request.
func (h *AuthHandler) DeleteCurrentSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	token := extractTokenFromRequest(r)
	if token == "" {
		h.responder.writeError(ctx, w, http.StatusUnauthorized, errMissingSessionToken)
		return
	}

	if err := h.service.Logout(ctx, token); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "delete_session").InfoContext(ctx, "session revoked")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
