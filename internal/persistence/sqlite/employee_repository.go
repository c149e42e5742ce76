package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/example/timeclock/internal/persistence"
)

// EmployeeRepository implements persistence.EmployeeRepository using SQLite.
type EmployeeRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEmployeeRepository creates a new SQLite employee repository.
func NewEmployeeRepository(pool *ConnectionPool) *EmployeeRepository {
	return &EmployeeRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

const employeeColumns = `id, name, code, is_temp, position, pin_hash, pin_set_at, email, email_verified, created_at, updated_at`

// CreateEmployee inserts a new employee.
func (r *EmployeeRepository) CreateEmployee(ctx context.Context, employee persistence.Employee) error {
	if employee.ID == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		employee.ID,
		employee.Name,
		employee.Code,
		employee.IsTemp,
		employee.Position,
		nullableString(employee.PINHash),
		formatNullableTime(employee.PINSetAt),
		nullableString(employee.Email),
		employee.EmailVerified,
		formatTime(employee.CreatedAt),
		formatTime(employee.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

// UpdateEmployee updates an existing employee.
func (r *EmployeeRepository) UpdateEmployee(ctx context.Context, employee persistence.Employee) error {
	query := `
		UPDATE employees
		SET name = ?, code = ?, is_temp = ?, position = ?, pin_hash = ?, pin_set_at = ?,
			email = ?, email_verified = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		employee.Name,
		employee.Code,
		employee.IsTemp,
		employee.Position,
		nullableString(employee.PINHash),
		formatNullableTime(employee.PINSetAt),
		nullableString(employee.Email),
		employee.EmailVerified,
		formatTime(employee.UpdatedAt),
		employee.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}
	return requireRowsAffected(result)
}

// GetEmployee retrieves an employee by ID.
func (r *EmployeeRepository) GetEmployee(ctx context.Context, id string) (persistence.Employee, error) {
	if id == "" {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = ?`
	return r.scanEmployee(r.helper.QueryRow(ctx, query, id))
}

// GetEmployeeByName retrieves an employee by exact name.
func (r *EmployeeRepository) GetEmployeeByName(ctx context.Context, name string) (persistence.Employee, error) {
	if name == "" {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE name = ?`
	return r.scanEmployee(r.helper.QueryRow(ctx, query, name))
}

// ListEmployees returns all employees ordered by creation time then ID.
func (r *EmployeeRepository) ListEmployees(ctx context.Context) ([]persistence.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY created_at ASC, id ASC`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var employees []persistence.Employee
	for rows.Next() {
		employee, err := r.scanEmployeeRow(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return employees, nil
}

// DeleteEmployee removes an employee and their clocked entries.
func (r *EmployeeRepository) DeleteEmployee(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := r.helper.ExecTx(tx, "DELETE FROM break_entries WHERE employee_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}
		if _, err := r.helper.ExecTx(tx, "DELETE FROM work_entries WHERE employee_id = ?", id); err != nil {
			return r.mapper.MapError(err)
		}

		result, err := r.helper.ExecTx(tx, "DELETE FROM employees WHERE id = ?", id)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return requireRowsAffected(result)
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *EmployeeRepository) scanEmployee(row *sql.Row) (persistence.Employee, error) {
	employee, err := r.scanEmployeeRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Employee{}, persistence.ErrNotFound
		}
		return persistence.Employee{}, err
	}
	return employee, nil
}

func (r *EmployeeRepository) scanEmployeeRow(scanner rowScanner) (persistence.Employee, error) {
	var (
		employee     persistence.Employee
		pinHash      sql.NullString
		pinSetAt     sql.NullString
		email        sql.NullString
		createdAtStr string
		updatedAtStr string
	)

	err := scanner.Scan(
		&employee.ID,
		&employee.Name,
		&employee.Code,
		&employee.IsTemp,
		&employee.Position,
		&pinHash,
		&pinSetAt,
		&email,
		&employee.EmailVerified,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Employee{}, err
		}
		return persistence.Employee{}, r.mapper.MapError(err)
	}

	employee.PINHash = stringPointer(pinHash)
	employee.Email = stringPointer(email)
	if employee.PINSetAt, err = parseNullableTime(pinSetAt); err != nil {
		return persistence.Employee{}, err
	}
	if employee.CreatedAt, err = parseTime(createdAtStr); err != nil {
		return persistence.Employee{}, err
	}
	if employee.UpdatedAt, err = parseTime(updatedAtStr); err != nil {
		return persistence.Employee{}, err
	}
	return employee, nil
}

func requireRowsAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}
	return nil
}
