package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

// AdminRepository implements persistence.AdminRepository using SQLite.
type AdminRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewAdminRepository creates a new SQLite admin repository.
func NewAdminRepository(pool *ConnectionPool) *AdminRepository {
	return &AdminRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// UpsertAdminCredential creates the credential or replaces the stored hash
// for an existing username.
func (r *AdminRepository) UpsertAdminCredential(ctx context.Context, credential persistence.AdminCredential) error {
	if credential.ID == "" || credential.Username == "" || credential.PasswordHash == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO admin_credentials (id, username, password_hash, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET password_hash = excluded.password_hash
	`

	_, err := r.helper.Exec(ctx, query,
		credential.ID,
		credential.Username,
		credential.PasswordHash,
		formatTime(credential.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetAdminByUsername retrieves an administrator credential.
func (r *AdminRepository) GetAdminByUsername(ctx context.Context, username string) (persistence.AdminCredential, error) {
	if username == "" {
		return persistence.AdminCredential{}, persistence.ErrNotFound
	}

	var (
		credential   persistence.AdminCredential
		createdAtStr string
	)
	err := r.helper.QueryRow(ctx,
		`SELECT id, username, password_hash, created_at FROM admin_credentials WHERE username = ?`,
		username,
	).Scan(&credential.ID, &credential.Username, &credential.PasswordHash, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.AdminCredential{}, persistence.ErrNotFound
		}
		return persistence.AdminCredential{}, r.mapper.MapError(err)
	}

	if credential.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.AdminCredential{}, err
	}
	return credential, nil
}

// CreateAdminSession stores a new session.
func (r *AdminRepository) CreateAdminSession(ctx context.Context, session persistence.AdminSession) error {
	if session.ID == "" || session.Token == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx,
		`INSERT INTO admin_sessions (id, token, expires_at, revoked_at, created_at) VALUES (?, ?, ?, ?, ?)`,
		session.ID,
		session.Token,
		formatTime(session.ExpiresAt),
		formatNullableTime(session.RevokedAt),
		formatTime(session.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetAdminSession retrieves a session by its bearer token.
func (r *AdminRepository) GetAdminSession(ctx context.Context, token string) (persistence.AdminSession, error) {
	if token == "" {
		return persistence.AdminSession{}, persistence.ErrNotFound
	}

	var (
		session      persistence.AdminSession
		expiresAtStr string
		revokedAt    sql.NullString
		createdAtStr string
	)
	err := r.helper.QueryRow(ctx,
		`SELECT id, token, expires_at, revoked_at, created_at FROM admin_sessions WHERE token = ?`,
		token,
	).Scan(&session.ID, &session.Token, &expiresAtStr, &revokedAt, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.AdminSession{}, persistence.ErrNotFound
		}
		return persistence.AdminSession{}, r.mapper.MapError(err)
	}

	if session.ExpiresAt, err = parseTime(expiresAtStr); err != nil {
		return persistence.AdminSession{}, err
	}
	if session.RevokedAt, err = parseNullableTime(revokedAt); err != nil {
		return persistence.AdminSession{}, err
	}
	if session.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.AdminSession{}, err
	}
	return session, nil
}

// RevokeAdminSession marks a session as revoked.
func (r *AdminRepository) RevokeAdminSession(ctx context.Context, id string, revokedAt time.Time) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE admin_sessions SET revoked_at = ? WHERE id = ? AND revoked_at IS NULL`,
		formatTime(revokedAt), id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// DeleteExpiredAdminSessions removes sessions whose expiry is at or before
// the cutoff and reports how many were removed.
func (r *AdminRepository) DeleteExpiredAdminSessions(ctx context.Context, cutoff time.Time) (int, error) {
	result, err := r.helper.Exec(ctx,
		`DELETE FROM admin_sessions WHERE expires_at <= ?`,
		formatTime(cutoff),
	)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}
