package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

// EntryRepository implements persistence.WorkEntryRepository and
// persistence.BreakEntryRepository using SQLite.
type EntryRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEntryRepository creates a new SQLite entry repository.
func NewEntryRepository(pool *ConnectionPool) *EntryRepository {
	return &EntryRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const workEntryColumns = `id, employee_id, department_id, task_id, start_time, end_time, duration_minutes, shift_id, entry_date, created_at`

const breakEntryColumns = `id, employee_id, break_kind, start_time, end_time, duration_minutes, entry_date, created_at`

// FindOpenWorkEntry returns the employee's open work entry, or ErrNotFound.
func (r *EntryRepository) FindOpenWorkEntry(ctx context.Context, employeeID string) (persistence.WorkEntry, error) {
	query := `SELECT ` + workEntryColumns + ` FROM work_entries WHERE employee_id = ? AND end_time IS NULL`
	return r.scanWorkEntrySingle(r.helper.QueryRow(ctx, query, employeeID))
}

// GetWorkEntry retrieves a work entry by ID.
func (r *EntryRepository) GetWorkEntry(ctx context.Context, id string) (persistence.WorkEntry, error) {
	if id == "" {
		return persistence.WorkEntry{}, persistence.ErrNotFound
	}
	query := `SELECT ` + workEntryColumns + ` FROM work_entries WHERE id = ?`
	return r.scanWorkEntrySingle(r.helper.QueryRow(ctx, query, id))
}

// InsertWorkEntry stores a new work entry.
func (r *EntryRepository) InsertWorkEntry(ctx context.Context, entry persistence.WorkEntry) error {
	if entry.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO work_entries (` + workEntryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		entry.ID,
		entry.EmployeeID,
		entry.DepartmentID,
		entry.TaskID,
		formatTime(entry.StartTime),
		formatNullableTime(entry.EndTime),
		nullableInt(entry.DurationMinutes),
		nullableString(entry.ShiftID),
		entry.EntryDate,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// CloseWorkEntry records the end instant and duration of an open entry.
func (r *EntryRepository) CloseWorkEntry(ctx context.Context, id string, end time.Time, durationMinutes int) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE work_entries SET end_time = ?, duration_minutes = ? WHERE id = ? AND end_time IS NULL`,
		formatTime(end), durationMinutes, id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// UpdateWorkEntry rewrites the interval fields of an entry.
func (r *EntryRepository) UpdateWorkEntry(ctx context.Context, entry persistence.WorkEntry) error {
	query := `
		UPDATE work_entries
		SET start_time = ?, end_time = ?, duration_minutes = ?, entry_date = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		formatTime(entry.StartTime),
		formatNullableTime(entry.EndTime),
		nullableInt(entry.DurationMinutes),
		entry.EntryDate,
		entry.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// ListWorkEntriesByDate returns one employee's entries for one local date.
func (r *EntryRepository) ListWorkEntriesByDate(ctx context.Context, employeeID, date string) ([]persistence.WorkEntry, error) {
	query := `
		SELECT ` + workEntryColumns + `
		FROM work_entries
		WHERE employee_id = ? AND entry_date = ?
		ORDER BY start_time ASC, id ASC
	`
	return r.queryWorkEntries(ctx, query, employeeID, date)
}

// ListWorkEntries returns entries matching the filter ordered by start time.
func (r *EntryRepository) ListWorkEntries(ctx context.Context, filter persistence.EntryFilter) ([]persistence.WorkEntry, error) {
	query := `SELECT ` + workEntryColumns + ` FROM work_entries WHERE 1=1`
	var args []any
	if filter.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, filter.EmployeeID)
	}
	if filter.FromDate != "" {
		query += ` AND entry_date >= ?`
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		query += ` AND entry_date <= ?`
		args = append(args, filter.ToDate)
	}
	query += ` ORDER BY entry_date ASC, start_time ASC, id ASC`

	return r.queryWorkEntries(ctx, query, args...)
}

// DeleteWorkEntry removes a work entry.
func (r *EntryRepository) DeleteWorkEntry(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM work_entries WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// FindOpenBreakEntry returns the employee's open break entry, or ErrNotFound.
func (r *EntryRepository) FindOpenBreakEntry(ctx context.Context, employeeID string) (persistence.BreakEntry, error) {
	query := `SELECT ` + breakEntryColumns + ` FROM break_entries WHERE employee_id = ? AND end_time IS NULL`
	return r.scanBreakEntrySingle(r.helper.QueryRow(ctx, query, employeeID))
}

// GetBreakEntry retrieves a break entry by ID.
func (r *EntryRepository) GetBreakEntry(ctx context.Context, id string) (persistence.BreakEntry, error) {
	if id == "" {
		return persistence.BreakEntry{}, persistence.ErrNotFound
	}
	query := `SELECT ` + breakEntryColumns + ` FROM break_entries WHERE id = ?`
	return r.scanBreakEntrySingle(r.helper.QueryRow(ctx, query, id))
}

// InsertBreakEntry stores a new break entry.
func (r *EntryRepository) InsertBreakEntry(ctx context.Context, entry persistence.BreakEntry) error {
	if entry.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO break_entries (` + breakEntryColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		entry.ID,
		entry.EmployeeID,
		entry.BreakKind,
		formatTime(entry.StartTime),
		formatNullableTime(entry.EndTime),
		nullableInt(entry.DurationMinutes),
		entry.EntryDate,
		formatTime(entry.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// CloseBreakEntry records the end instant and duration of an open entry.
func (r *EntryRepository) CloseBreakEntry(ctx context.Context, id string, end time.Time, durationMinutes int) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE break_entries SET end_time = ?, duration_minutes = ? WHERE id = ? AND end_time IS NULL`,
		formatTime(end), durationMinutes, id,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// UpdateBreakEntry rewrites the interval fields and kind of an entry.
func (r *EntryRepository) UpdateBreakEntry(ctx context.Context, entry persistence.BreakEntry) error {
	query := `
		UPDATE break_entries
		SET break_kind = ?, start_time = ?, end_time = ?, duration_minutes = ?, entry_date = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		entry.BreakKind,
		formatTime(entry.StartTime),
		formatNullableTime(entry.EndTime),
		nullableInt(entry.DurationMinutes),
		entry.EntryDate,
		entry.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// ListBreakEntriesByDate returns one employee's breaks for one local date.
func (r *EntryRepository) ListBreakEntriesByDate(ctx context.Context, employeeID, date string) ([]persistence.BreakEntry, error) {
	query := `
		SELECT ` + breakEntryColumns + `
		FROM break_entries
		WHERE employee_id = ? AND entry_date = ?
		ORDER BY start_time ASC, id ASC
	`
	return r.queryBreakEntries(ctx, query, employeeID, date)
}

// ListBreakEntries returns breaks matching the filter ordered by start time.
func (r *EntryRepository) ListBreakEntries(ctx context.Context, filter persistence.EntryFilter) ([]persistence.BreakEntry, error) {
	query := `SELECT ` + breakEntryColumns + ` FROM break_entries WHERE 1=1`
	var args []any
	if filter.EmployeeID != "" {
		query += ` AND employee_id = ?`
		args = append(args, filter.EmployeeID)
	}
	if filter.FromDate != "" {
		query += ` AND entry_date >= ?`
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		query += ` AND entry_date <= ?`
		args = append(args, filter.ToDate)
	}
	query += ` ORDER BY entry_date ASC, start_time ASC, id ASC`

	return r.queryBreakEntries(ctx, query, args...)
}

// DeleteBreakEntry removes a break entry.
func (r *EntryRepository) DeleteBreakEntry(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}
	result, err := r.helper.Exec(ctx, `DELETE FROM break_entries WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

func (r *EntryRepository) queryWorkEntries(ctx context.Context, query string, args ...any) ([]persistence.WorkEntry, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.WorkEntry
	for rows.Next() {
		entry, err := r.scanWorkEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return entries, nil
}

func (r *EntryRepository) queryBreakEntries(ctx context.Context, query string, args ...any) ([]persistence.BreakEntry, error) {
	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.BreakEntry
	for rows.Next() {
		entry, err := r.scanBreakEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return entries, nil
}

func (r *EntryRepository) scanWorkEntrySingle(row *sql.Row) (persistence.WorkEntry, error) {
	entry, err := r.scanWorkEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.WorkEntry{}, persistence.ErrNotFound
		}
		return persistence.WorkEntry{}, err
	}
	return entry, nil
}

func (r *EntryRepository) scanWorkEntry(scanner rowScanner) (persistence.WorkEntry, error) {
	var (
		entry        persistence.WorkEntry
		startTimeStr string
		endTime      sql.NullString
		duration     sql.NullInt64
		shiftID      sql.NullString
		createdAtStr string
	)

	err := scanner.Scan(
		&entry.ID,
		&entry.EmployeeID,
		&entry.DepartmentID,
		&entry.TaskID,
		&startTimeStr,
		&endTime,
		&duration,
		&shiftID,
		&entry.EntryDate,
		&createdAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.WorkEntry{}, err
		}
		return persistence.WorkEntry{}, r.mapper.MapError(err)
	}

	if entry.StartTime, err = parseTime(startTimeStr); err != nil {
		return persistence.WorkEntry{}, err
	}
	if entry.EndTime, err = parseNullableTime(endTime); err != nil {
		return persistence.WorkEntry{}, err
	}
	entry.DurationMinutes = intPointer(duration)
	entry.ShiftID = stringPointer(shiftID)
	if entry.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.WorkEntry{}, err
	}
	return entry, nil
}

func (r *EntryRepository) scanBreakEntrySingle(row *sql.Row) (persistence.BreakEntry, error) {
	entry, err := r.scanBreakEntry(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.BreakEntry{}, persistence.ErrNotFound
		}
		return persistence.BreakEntry{}, err
	}
	return entry, nil
}

func (r *EntryRepository) scanBreakEntry(scanner rowScanner) (persistence.BreakEntry, error) {
	var (
		entry        persistence.BreakEntry
		startTimeStr string
		endTime      sql.NullString
		duration     sql.NullInt64
		createdAtStr string
	)

	err := scanner.Scan(
		&entry.ID,
		&entry.EmployeeID,
		&entry.BreakKind,
		&startTimeStr,
		&endTime,
		&duration,
		&entry.EntryDate,
		&createdAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.BreakEntry{}, err
		}
		return persistence.BreakEntry{}, r.mapper.MapError(err)
	}

	if entry.StartTime, err = parseTime(startTimeStr); err != nil {
		return persistence.BreakEntry{}, err
	}
	if entry.EndTime, err = parseNullableTime(endTime); err != nil {
		return persistence.BreakEntry{}, err
	}
	entry.DurationMinutes = intPointer(duration)
	if entry.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.BreakEntry{}, err
	}
	return entry, nil
}
