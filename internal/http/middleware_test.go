package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/example/timeclock/internal/application"
)

type stubSessionValidator struct {
	validate func(ctx context.Context, token string) (application.AdminSession, error)
}

func (s *stubSessionValidator) ValidateSession(ctx context.Context, token string) (application.AdminSession, error) {
	return s.validate(ctx, token)
}

func TestRequireSessionPassesValidToken(t *testing.T) {
	validator := &stubSessionValidator{
		validate: func(_ context.Context, token string) (application.AdminSession, error) {
			if token != "token-abc" {
				t.Errorf("token = %q", token)
			}
			return application.AdminSession{ID: "session1", Token: token, ExpiresAt: time.Now().Add(time.Hour)}, nil
		},
	}

	var sawSession bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, ok := SessionFromContext(r.Context())
		sawSession = ok && session.ID == "session1"
		w.WriteHeader(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/admin/employees", nil)
	req.Header.Set("Authorization", "Bearer token-abc")
	rec := httptest.NewRecorder()
	RequireSession(validator, nil)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", rec.Code)
	}
	if !sawSession {
		t.Error("session must be placed on the request context")
	}
}

func TestRequireSessionRejectsMissingToken(t *testing.T) {
	validator := &stubSessionValidator{
		validate: func(context.Context, string) (application.AdminSession, error) {
			t.Fatal("validator must not be called without a token")
			return application.AdminSession{}, nil
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/employees", nil)
	rec := httptest.NewRecorder()
	RequireSession(validator, nil)(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestRequireSessionRejectsExpiredSession(t *testing.T) {
	validator := &stubSessionValidator{
		validate: func(context.Context, string) (application.AdminSession, error) {
			return application.AdminSession{}, application.ErrSessionExpired
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/employees", nil)
	req.Header.Set("X-Session-Token", "token-old")
	rec := httptest.NewRecorder()
	RequireSession(validator, nil)(http.NotFoundHandler()).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestExtractTokenFromRequest(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(r *http.Request)
		want    string
	}{
		{
			name:    "bearer header",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") },
			want:    "abc",
		},
		{
			name:    "session header",
			prepare: func(r *http.Request) { r.Header.Set("X-Session-Token", "xyz") },
			want:    "xyz",
		},
		{
			name:    "non-bearer authorization falls through",
			prepare: func(r *http.Request) { r.Header.Set("Authorization", "Basic abc") },
			want:    "",
		},
		{
			name:    "no headers",
			prepare: func(r *http.Request) {},
			want:    "",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tc.prepare(req)
			if got := extractTokenFromRequest(req); got != tc.want {
				t.Errorf("token = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestRequestLoggerInjectsContextLogger(t *testing.T) {
	var sawLogger bool
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sawLogger = LoggerFromContext(r.Context()) != nil
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/clock/state", nil)
	rec := httptest.NewRecorder()
	RequestLogger(nil)(next).ServeHTTP(rec, req)

	if !sawLogger {
		t.Error("request logger must place a logger on the context")
	}
}
