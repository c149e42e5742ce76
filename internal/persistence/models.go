package persistence

import "time"

// Employee represents a worker account tracked by the system.
type Employee struct {
	ID            string
	Name          string
	Code          string
	IsTemp        bool
	Position      string
	PINHash       *string
	PINSetAt      *time.Time
	Email         *string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Department groups the tasks employees clock in against.
type Department struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Task is a unit of work belonging to exactly one department.
type Task struct {
	ID           string
	DepartmentID string
	Name         string
	CreatedAt    time.Time
}

// Shift is an admin-configured time-of-day window used to label work entries.
// StartTime and EndTime use the "HH:MM" layout; StartTime >= EndTime means
// the window wraps past midnight.
type Shift struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
	Color     string
	CreatedAt time.Time
}

// WorkEntry is a single clocked interval of an employee performing one task.
// A nil EndTime marks the entry as open; DurationMinutes is only recorded at
// close time.
type WorkEntry struct {
	ID              string
	EmployeeID      string
	DepartmentID    string
	TaskID          string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	ShiftID         *string
	EntryDate       string
	CreatedAt       time.Time
}

// BreakEntry is a single clocked interval of an employee on a paid or unpaid
// break. Lifecycle mirrors WorkEntry.
type BreakEntry struct {
	ID              string
	EmployeeID      string
	BreakKind       string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	EntryDate       string
	CreatedAt       time.Time
}

// AdminCredential stores an administrator login for the review surface.
type AdminCredential struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}

// AdminSession represents an authenticated administrator session.
type AdminSession struct {
	ID        string
	Token     string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
