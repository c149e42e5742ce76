package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/timeclock/internal/persistence"
)

// DirectoryRepository implements persistence.DepartmentRepository and
// persistence.TaskRepository using SQLite.
type DirectoryRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewDirectoryRepository creates a new SQLite directory repository.
func NewDirectoryRepository(pool *ConnectionPool) *DirectoryRepository {
	return &DirectoryRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateDepartment inserts a new department.
func (r *DirectoryRepository) CreateDepartment(ctx context.Context, department persistence.Department) error {
	if department.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx,
		`INSERT INTO departments (id, name, created_at) VALUES (?, ?, ?)`,
		department.ID, department.Name, formatTime(department.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetDepartment retrieves a department by ID.
func (r *DirectoryRepository) GetDepartment(ctx context.Context, id string) (persistence.Department, error) {
	if id == "" {
		return persistence.Department{}, persistence.ErrNotFound
	}

	var (
		department   persistence.Department
		createdAtStr string
	)
	err := r.helper.QueryRow(ctx,
		`SELECT id, name, created_at FROM departments WHERE id = ?`, id,
	).Scan(&department.ID, &department.Name, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Department{}, persistence.ErrNotFound
		}
		return persistence.Department{}, r.mapper.MapError(err)
	}

	if department.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Department{}, err
	}
	return department, nil
}

// ListDepartments returns all departments ordered by creation time then ID.
func (r *DirectoryRepository) ListDepartments(ctx context.Context) ([]persistence.Department, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT id, name, created_at FROM departments ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var departments []persistence.Department
	for rows.Next() {
		var (
			department   persistence.Department
			createdAtStr string
		)
		if err := rows.Scan(&department.ID, &department.Name, &createdAtStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if department.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, err
		}
		departments = append(departments, department)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return departments, nil
}

// UpdateDepartment updates an existing department.
func (r *DirectoryRepository) UpdateDepartment(ctx context.Context, department persistence.Department) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE departments SET name = ? WHERE id = ?`,
		department.Name, department.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// DeleteDepartment removes a department. Entries or tasks referencing it
// surface as a foreign key violation.
func (r *DirectoryRepository) DeleteDepartment(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		var taskCount int
		if err := r.helper.QueryRowTx(tx, `SELECT COUNT(*) FROM tasks WHERE department_id = ?`, id).Scan(&taskCount); err != nil {
			return r.mapper.MapError(err)
		}
		if taskCount > 0 {
			return persistence.ErrForeignKeyViolation
		}

		result, err := r.helper.ExecTx(tx, `DELETE FROM departments WHERE id = ?`, id)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return requireRowsAffected(result)
	})
}

// CreateTask inserts a new task.
func (r *DirectoryRepository) CreateTask(ctx context.Context, task persistence.Task) error {
	if task.ID == "" {
		return persistence.ErrConstraintViolation
	}

	_, err := r.helper.Exec(ctx,
		`INSERT INTO tasks (id, department_id, name, created_at) VALUES (?, ?, ?, ?)`,
		task.ID, task.DepartmentID, task.Name, formatTime(task.CreatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// GetTask retrieves a task by ID.
func (r *DirectoryRepository) GetTask(ctx context.Context, id string) (persistence.Task, error) {
	if id == "" {
		return persistence.Task{}, persistence.ErrNotFound
	}

	var (
		task         persistence.Task
		createdAtStr string
	)
	err := r.helper.QueryRow(ctx,
		`SELECT id, department_id, name, created_at FROM tasks WHERE id = ?`, id,
	).Scan(&task.ID, &task.DepartmentID, &task.Name, &createdAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Task{}, persistence.ErrNotFound
		}
		return persistence.Task{}, r.mapper.MapError(err)
	}

	if task.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Task{}, err
	}
	return task, nil
}

// ListTasks returns the tasks of one department ordered by creation time.
func (r *DirectoryRepository) ListTasks(ctx context.Context, departmentID string) ([]persistence.Task, error) {
	rows, err := r.helper.Query(ctx,
		`SELECT id, department_id, name, created_at FROM tasks WHERE department_id = ? ORDER BY created_at ASC, id ASC`,
		departmentID,
	)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var tasks []persistence.Task
	for rows.Next() {
		var (
			task         persistence.Task
			createdAtStr string
		)
		if err := rows.Scan(&task.ID, &task.DepartmentID, &task.Name, &createdAtStr); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if task.CreatedAt, err = parseTime(createdAtStr); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return tasks, nil
}

// UpdateTask updates an existing task.
func (r *DirectoryRepository) UpdateTask(ctx context.Context, task persistence.Task) error {
	result, err := r.helper.Exec(ctx,
		`UPDATE tasks SET department_id = ?, name = ? WHERE id = ?`,
		task.DepartmentID, task.Name, task.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// DeleteTask removes a task. Entries referencing it surface as a foreign
// key violation.
func (r *DirectoryRepository) DeleteTask(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}
