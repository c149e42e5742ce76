package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/timeclock/internal/persistence"
)

// ShiftRepository implements persistence.ShiftRepository using SQLite.
type ShiftRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewShiftRepository creates a new SQLite shift repository.
func NewShiftRepository(pool *ConnectionPool) *ShiftRepository {
	return &ShiftRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateShift inserts a new shift window.
func (r *ShiftRepository) CreateShift(ctx context.Context, shift persistence.Shift) error {
	if shift.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx,
		`INSERT INTO shifts (id, name, start_time, end_time, color, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		shift.ID, shift.Name, shift.StartTime, shift.EndTime, shift.Color, formatTime(shift.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateShift updates an existing shift window.
func (r *ShiftRepository) UpdateShift(ctx context.Context, shift persistence.Shift) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE shifts SET name = ?, start_time = ?, end_time = ?, color = ? WHERE id = ?`,
		shift.Name, shift.StartTime, shift.EndTime, shift.Color, shift.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// GetShift retrieves a shift by ID.
func (r *ShiftRepository) GetShift(ctx context.Context, id string) (persistence.Shift, error) {
	if id == "" {
		return persistence.Shift{}, persistence.ErrNotFound
	}

	var (
		shift        persistence.Shift
		createdAtStr string
	)
	err := r.helper.QueryRow(ctx,
		`SELECT id, name, start_time, end_time, color, created_at FROM shifts WHERE id = ?`, id,
	).Scan(&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime, &shift.Color, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Shift{}, persistence.ErrNotFound
		}
		return persistence.Shift{}, r.mapper.MapError(err)
	}

	if shift.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Shift{}, err
	}
	return shift, nil
}

// ListShifts returns all shifts in creation order. Resolution fallback
// picks the first row, so the order matters.
func (r *ShiftRepository) ListShifts(ctx context.Context) ([]persistence.Shift, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT id, name, start_time, end_time, color, created_at FROM shifts ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var shifts []persistence.Shift
	for rows.Next() {
		var (
			shift        persistence.Shift
			createdAtStr string
		)
		if err := rows.Scan(&shift.ID, &shift.Name, &shift.StartTime, &shift.EndTime, &shift.Color, &createdAtStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if shift.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return shifts, nil
}

// DeleteShift removes a shift window. Entries keep their shift label via
// the foreign key, so deletion is rejected while entries reference it.
func (r *ShiftRepository) DeleteShift(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var entryCount int
		if err := r.helper.QueryRowTx(tx, `SELECT COUNT(*) FROM work_entries WHERE shift_id = ?`, id).Scan(&entryCount); err != nil {
			return r.mapper.MapError(err)
		}
		if entryCount > 0 {
			return persistence.ErrForeignKeyViolation
		}

		result, err := r.helper.ExecTx(tx, `DELETE FROM shifts WHERE id = ?`, id)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return requireRowsAffected(result)
	})
}
