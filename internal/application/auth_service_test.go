package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/timeclock/internal/testfixtures"
)

type stubAdminStore struct {
	credentials map[string]AdminCredentialRecord
	sessions    map[string]AdminSession
}

func newStubAdminStore() *stubAdminStore {
	return &stubAdminStore{
		credentials: make(map[string]AdminCredentialRecord),
		sessions:    make(map[string]AdminSession),
	}
}

func (s *stubAdminStore) GetAdminCredential(_ context.Context, username string) (AdminCredentialRecord, error) {
	record, ok := s.credentials[username]
	if !ok {
		return AdminCredentialRecord{}, ErrNotFound
	}
	return record, nil
}

func (s *stubAdminStore) UpsertAdminCredential(_ context.Context, record AdminCredentialRecord) error {
	s.credentials[record.Username] = record
	return nil
}

func (s *stubAdminStore) CreateAdminSession(_ context.Context, session AdminSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *stubAdminStore) GetAdminSessionByToken(_ context.Context, token string) (AdminSession, error) {
	for _, session := range s.sessions {
		if session.Token == token {
			return session, nil
		}
	}
	return AdminSession{}, ErrNotFound
}

func (s *stubAdminStore) RevokeAdminSession(_ context.Context, id string, revokedAt time.Time) error {
	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[id] = session
	return nil
}

func (s *stubAdminStore) DeleteExpiredAdminSessions(_ context.Context, cutoff time.Time) (int, error) {
	removed := 0
	for id, session := range s.sessions {
		if !session.ExpiresAt.After(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

func newAuthServiceForTest(t *testing.T, store *stubAdminStore, ttl time.Duration) (*AuthService, *testfixtures.Clock) {
	t.Helper()
	clock := testfixtures.NewClock(time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))
	ids := testfixtures.NewIDGenerator("session")
	service := NewAuthService(store, clock, ids.NextFunc(), ttl, nil)
	if err := service.BootstrapAdmin(context.Background(), "admin", "correct horse"); err != nil {
		t.Fatalf("BootstrapAdmin returned error: %v", err)
	}
	return service, clock
}

func TestAuthenticateOpensSession(t *testing.T) {
	t.Parallel()

	store := newStubAdminStore()
	service, _ := newAuthServiceForTest(t, store, time.Hour)

	session, err := service.Authenticate(context.Background(), AuthenticateParams{Username: "admin", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	if session.Token == "" {
		t.Error("expected a session token")
	}
	if !session.ExpiresAt.After(session.CreatedAt) {
		t.Error("expiry must be after creation")
	}

	validated, err := service.ValidateSession(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("ValidateSession returned error: %v", err)
	}
	if validated.ID != session.ID {
		t.Errorf("session id = %q, want %q", validated.ID, session.ID)
	}
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "unknown username", username: "ghost", password: "correct horse"},
		{name: "wrong password", username: "admin", password: "battery staple"},
		{name: "empty password", username: "admin", password: ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service, _ := newAuthServiceForTest(t, newStubAdminStore(), time.Hour)
			_, err := service.Authenticate(context.Background(), AuthenticateParams{Username: tc.username, Password: tc.password})
			if !errors.Is(err, ErrInvalidCredentials) {
				t.Fatalf("err = %v, want ErrInvalidCredentials", err)
			}
		})
	}
}

func TestValidateSessionExpiry(t *testing.T) {
	t.Parallel()

	store := newStubAdminStore()
	service, clock := newAuthServiceForTest(t, store, time.Hour)

	session, err := service.Authenticate(context.Background(), AuthenticateParams{Username: "admin", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	clock.Advance(time.Hour + time.Minute)
	if _, err := service.ValidateSession(context.Background(), session.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("err = %v, want ErrSessionExpired", err)
	}
}

func TestLogoutRevokesSession(t *testing.T) {
	t.Parallel()

	store := newStubAdminStore()
	service, _ := newAuthServiceForTest(t, store, time.Hour)
	ctx := context.Background()

	session, err := service.Authenticate(ctx, AuthenticateParams{Username: "admin", Password: "correct horse"})
	if err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	if err := service.Logout(ctx, session.Token); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if _, err := service.ValidateSession(ctx, session.Token); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("err = %v, want ErrSessionRevoked", err)
	}

	// Logout is idempotent, including for unknown tokens.
	if err := service.Logout(ctx, session.Token); err != nil {
		t.Errorf("repeated Logout returned error: %v", err)
	}
	if err := service.Logout(ctx, "no-such-token"); err != nil {
		t.Errorf("Logout of unknown token returned error: %v", err)
	}
}

func TestValidateSessionUnknownToken(t *testing.T) {
	t.Parallel()

	service, _ := newAuthServiceForTest(t, newStubAdminStore(), time.Hour)

	if _, err := service.ValidateSession(context.Background(), "bogus"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
	if _, err := service.ValidateSession(context.Background(), "  "); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestPurgeExpiredSessions(t *testing.T) {
	t.Parallel()

	store := newStubAdminStore()
	service, clock := newAuthServiceForTest(t, store, time.Hour)
	ctx := context.Background()

	if _, err := service.Authenticate(ctx, AuthenticateParams{Username: "admin", Password: "correct horse"}); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}
	clock.Advance(2 * time.Hour)
	if _, err := service.Authenticate(ctx, AuthenticateParams{Username: "admin", Password: "correct horse"}); err != nil {
		t.Fatalf("Authenticate returned error: %v", err)
	}

	removed, err := service.PurgeExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("PurgeExpiredSessions returned error: %v", err)
	}
	if removed != 1 {
		t.Errorf("removed = %d, want 1", removed)
	}
}
