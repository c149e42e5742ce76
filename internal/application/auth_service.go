package application

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/timeclock/internal/timeutil"
)

// AdminCredentialRecord is the storage view of an administrator account.
type AdminCredentialRecord struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// AdminStore captures the persistence interactions AuthService needs.
type AdminStore interface {
	GetAdminCredential(ctx context.Context, username string) (AdminCredentialRecord, error)
	UpsertAdminCredential(ctx context.Context, record AdminCredentialRecord) error

	CreateAdminSession(ctx context.Context, session AdminSession) error
	GetAdminSessionByToken(ctx context.Context, token string) (AdminSession, error)
	RevokeAdminSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredAdminSessions(ctx context.Context, cutoff time.Time) (int, error)
}

// DefaultSessionTTL bounds admin sessions when no TTL is configured.
const DefaultSessionTTL = 12 * time.Hour

// AuthService authenticates administrators and manages their sessions.
type AuthService struct {
	store       AdminStore
	clock       timeutil.Clock
	idGenerator func() string
	sessionTTL  time.Duration
	hashParams  Argon2idParams
	logger      *slog.Logger
}

// NewAuthService wires the service. A non-positive sessionTTL falls back to
// DefaultSessionTTL.
func NewAuthService(store AdminStore, clock timeutil.Clock, idGenerator func() string, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if clock == nil {
		clock = timeutil.NewSystemClock(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &AuthService{
		store:       store,
		clock:       clock,
		idGenerator: idGenerator,
		sessionTTL:  sessionTTL,
		hashParams:  DefaultArgon2idParams,
		logger:      defaultLogger(logger),
	}
}

// BootstrapAdmin creates or replaces the administrator credential. Called at
// startup from configuration so a fresh database is never locked out.
func (s *AuthService) BootstrapAdmin(ctx context.Context, username, password string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		vErr := &ValidationError{}
		if username == "" {
			vErr.add("username", "username is required")
		}
		if password == "" {
			vErr.add("password", "password is required")
		}
		return vErr
	}

	hash, err := CreateSecretHash(password, s.hashParams)
	if err != nil {
		return err
	}
	record := AdminCredentialRecord{
		ID:           s.idGenerator(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    s.clock.Now(),
	}
	return s.store.UpsertAdminCredential(ctx, record)
}

// Authenticate verifies an administrator login and opens a session. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (AdminSession, error) {
	if s == nil {
		return AdminSession{}, fmt.Errorf("AuthService is nil")
	}

	username := strings.TrimSpace(params.Username)
	if username == "" || params.Password == "" {
		return AdminSession{}, ErrInvalidCredentials
	}

	credential, err := s.store.GetAdminCredential(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AdminSession{}, ErrInvalidCredentials
		}
		return AdminSession{}, err
	}
	if err := VerifySecret(credential.PasswordHash, params.Password); err != nil {
		return AdminSession{}, err
	}

	token, err := generateSessionToken()
	if err != nil {
		return AdminSession{}, err
	}

	now := s.clock.Now()
	session := AdminSession{
		ID:        s.idGenerator(),
		Token:     token,
		ExpiresAt: now.Add(s.sessionTTL),
		CreatedAt: now,
	}
	if err := s.store.CreateAdminSession(ctx, session); err != nil {
		return AdminSession{}, err
	}

	serviceLogger(ctx, s.logger, "auth", "authenticate", "username", username).
		InfoContext(ctx, "admin session opened", "session_id", session.ID)
	return session, nil
}

// ValidateSession resolves a bearer token to a live session. Expired and
// revoked sessions map to their own sentinels so the transport can answer
// with precise messages.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (AdminSession, error) {
	if s == nil {
		return AdminSession{}, fmt.Errorf("AuthService is nil")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return AdminSession{}, ErrUnauthorized
	}

	session, err := s.store.GetAdminSessionByToken(ctx, token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AdminSession{}, ErrUnauthorized
		}
		return AdminSession{}, err
	}
	if session.RevokedAt != nil {
		return AdminSession{}, ErrSessionRevoked
	}
	if !s.clock.Now().Before(session.ExpiresAt) {
		return AdminSession{}, ErrSessionExpired
	}
	return session, nil
}

// Logout revokes the session behind the token. Revoking an unknown token is
// a no-op so logout is idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	session, err := s.store.GetAdminSessionByToken(ctx, strings.TrimSpace(token))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}
	if session.RevokedAt != nil {
		return nil
	}
	return s.store.RevokeAdminSession(ctx, session.ID, s.clock.Now())
}

// PurgeExpiredSessions deletes sessions past their expiry. Intended for a
// periodic maintenance call from the composition root.
func (s *AuthService) PurgeExpiredSessions(ctx context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("AuthService is nil")
	}
	removed, err := s.store.DeleteExpiredAdminSessions(ctx, s.clock.Now())
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		serviceLogger(ctx, s.logger, "auth", "purge_sessions").
			InfoContext(ctx, "expired sessions removed", "count", removed)
	}
	return removed, nil
}

func generateSessionToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
