package persistence

import (
	"context"
	"time"
)

// EmployeeRepository exposes CRUD operations for employees.
type EmployeeRepository interface {
	CreateEmployee(ctx context.Context, employee Employee) error
	UpdateEmployee(ctx context.Context, employee Employee) error
	GetEmployee(ctx context.Context, id string) (Employee, error)
	GetEmployeeByName(ctx context.Context, name string) (Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// DepartmentRepository exposes CRUD operations for departments.
type DepartmentRepository interface {
	CreateDepartment(ctx context.Context, department Department) error
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	UpdateDepartment(ctx context.Context, department Department) error
	DeleteDepartment(ctx context.Context, id string) error
}

// TaskRepository exposes CRUD operations for tasks.
type TaskRepository interface {
	CreateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, departmentID string) ([]Task, error)
	UpdateTask(ctx context.Context, task Task) error
	DeleteTask(ctx context.Context, id string) error
}

// ShiftRepository exposes CRUD operations over the configured shift windows.
// List order is creation order; the engine's no-match fallback depends on it.
type ShiftRepository interface {
	CreateShift(ctx context.Context, shift Shift) error
	UpdateShift(ctx context.Context, shift Shift) error
	GetShift(ctx context.Context, id string) (Shift, error)
	ListShifts(ctx context.Context) ([]Shift, error)
	DeleteShift(ctx context.Context, id string) error
}

// EntryFilter narrows timesheet queries. Dates are inclusive "2006-01-02"
// bounds; an empty EmployeeID matches all employees.
type EntryFilter struct {
	EmployeeID string
	FromDate   string
	ToDate     string
}

// WorkEntryRepository stores clocked work intervals. The engine never builds
// ad-hoc queries; these are the only shapes it needs.
type WorkEntryRepository interface {
	FindOpenWorkEntry(ctx context.Context, employeeID string) (WorkEntry, error)
	GetWorkEntry(ctx context.Context, id string) (WorkEntry, error)
	InsertWorkEntry(ctx context.Context, entry WorkEntry) error
	CloseWorkEntry(ctx context.Context, id string, end time.Time, durationMinutes int) error
	UpdateWorkEntry(ctx context.Context, entry WorkEntry) error
	ListWorkEntriesByDate(ctx context.Context, employeeID, date string) ([]WorkEntry, error)
	ListWorkEntries(ctx context.Context, filter EntryFilter) ([]WorkEntry, error)
	DeleteWorkEntry(ctx context.Context, id string) error
}

// BreakEntryRepository stores clocked break intervals.
type BreakEntryRepository interface {
	FindOpenBreakEntry(ctx context.Context, employeeID string) (BreakEntry, error)
	GetBreakEntry(ctx context.Context, id string) (BreakEntry, error)
	InsertBreakEntry(ctx context.Context, entry BreakEntry) error
	CloseBreakEntry(ctx context.Context, id string, end time.Time, durationMinutes int) error
	UpdateBreakEntry(ctx context.Context, entry BreakEntry) error
	ListBreakEntriesByDate(ctx context.Context, employeeID, date string) ([]BreakEntry, error)
	ListBreakEntries(ctx context.Context, filter EntryFilter) ([]BreakEntry, error)
	DeleteBreakEntry(ctx context.Context, id string) error
}

// AdminRepository stores administrator credentials and sessions.
type AdminRepository interface {
	UpsertAdminCredential(ctx context.Context, credential AdminCredential) error
	GetAdminByUsername(ctx context.Context, username string) (AdminCredential, error)
	CreateAdminSession(ctx context.Context, session AdminSession) error
	GetAdminSession(ctx context.Context, token string) (AdminSession, error)
	RevokeAdminSession(ctx context.Context, id string, revokedAt time.Time) error
	DeleteExpiredAdminSessions(ctx context.Context, cutoff time.Time) (int, error)
}
