package application

import "time"

// BreakKind distinguishes paid from unpaid break entries.
type BreakKind string

const (
	// BreakPaid is a short paid break.
	BreakPaid BreakKind = "paid"
	// BreakUnpaid is a longer unpaid break.
	BreakUnpaid BreakKind = "unpaid"
)

// Valid reports whether the kind is one of the two supported values.
func (k BreakKind) Valid() bool {
	return k == BreakPaid || k == BreakUnpaid
}

// Employee represents a worker account exposed by the application services.
// PINSet reflects the credential lifecycle only; hashes never leave the
// persistence boundary.
type Employee struct {
	ID            string
	Name          string
	Code          string
	IsTemp        bool
	Position      string
	PINSet        bool
	PINSetAt      *time.Time
	Email         string
	EmailVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// EmployeeInput captures caller provided employee attributes.
type EmployeeInput struct {
	Name     string
	Position string
	IsTemp   bool
	Email    string
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

// Shift is a configured time-of-day window used to label work entries.
type Shift struct {
	ID        string
	Name      string
	StartTime string
	EndTime   string
	Color     string
	CreatedAt time.Time
}

// ShiftInput captures caller provided shift fields.
type ShiftInput struct {
	Name      string
	StartTime string
	EndTime   string
	Color     string
}

// WorkEntry is a clocked interval of one employee on one task. End and
// DurationMinutes are nil while the entry is open. ShiftID is resolved once
// at creation and never re-evaluated.
type WorkEntry struct {
	ID              string
	EmployeeID      string
	DepartmentID    string
	TaskID          string
	Start           time.Time
	End             *time.Time
	DurationMinutes *int
	ShiftID         *string
	EntryDate       string
	CreatedAt       time.Time
}

// BreakEntry is a clocked paid or unpaid break interval.
type BreakEntry struct {
	ID              string
	EmployeeID      string
	Kind            BreakKind
	Start           time.Time
	End             *time.Time
	DurationMinutes *int
	EntryDate       string
	CreatedAt       time.Time
}

// DailyTotals aggregates an employee's booked minutes for one calendar date.
// Open entries contribute their live elapsed duration.
type DailyTotals struct {
	Date               string
	WorkMinutes        int
	PaidBreakMinutes   int
	UnpaidBreakMinutes int
}

// ActivityStatus names the employee's current position in the state machine.
type ActivityStatus string

const (
	// StatusIdle means no open work or break entry exists.
	StatusIdle ActivityStatus = "idle"
	// StatusWorking means exactly one open work entry exists.
	StatusWorking ActivityStatus = "working"
	// StatusOnBreak means exactly one open break entry exists.
	StatusOnBreak ActivityStatus = "on_break"
)

// EmployeeState is the derived current state of an employee. At most one of
// WorkEntry and BreakEntry is non-nil.
type EmployeeState struct {
	Status     ActivityStatus
	WorkEntry  *WorkEntry
	BreakEntry *BreakEntry
}

// StartTaskParams wraps the data required to clock in against a task.
type StartTaskParams struct {
	EmployeeID   string
	DepartmentID string
	TaskID       string
}

// StartTaskResult reports the created entry and any entries the command
// auto-closed on the way in.
type StartTaskResult struct {
	Entry       WorkEntry
	ClosedWork  *WorkEntry
	ClosedBreak *BreakEntry
}

// EndTaskResult reports the closed entry; Closed is nil when nothing was
// open, which is a benign no-op rather than an error.
type EndTaskResult struct {
	Closed *WorkEntry
}

// StartBreakParams wraps the data required to start a break.
type StartBreakParams struct {
	EmployeeID string
	Kind       BreakKind
}

// StartBreakResult mirrors StartTaskResult for break entries.
type StartBreakResult struct {
	Entry       BreakEntry
	ClosedWork  *WorkEntry
	ClosedBreak *BreakEntry
}

// EndBreakParams wraps the data required to end a break. Confirmed
// acknowledges a previously reported over-limit warning.
type EndBreakParams struct {
	EmployeeID string
	Confirmed  bool
}

// BreakOverLimit is the advisory raised when a break ran past its configured
// limit. It is a signal for the caller to confirm, never a hard failure.
type BreakOverLimit struct {
	DurationMinutes int
	LimitMinutes    int
}

// EndBreakResult reports the closed entry. When the break exceeded its limit
// and the caller has not confirmed, Closed is nil, Warning is set and the
// entry stays open; a confirmed call closes it and still carries the warning.
type EndBreakResult struct {
	Closed  *BreakEntry
	Warning *BreakOverLimit
}

// AdjustWorkEntryParams captures an administrator correction of a recorded
// work entry. A nil End reopens the entry.
type AdjustWorkEntryParams struct {
	EntryID string
	Start   time.Time
	End     *time.Time
}

// AdjustBreakEntryParams captures an administrator correction of a recorded
// break entry.
type AdjustBreakEntryParams struct {
	EntryID string
	Kind    BreakKind
	Start   time.Time
	End     *time.Time
}

// AuthenticateParams captures an administrator login attempt.
type AuthenticateParams struct {
	Username string
	Password string
}

// AdminSession represents an authenticated administrator session.
type AdminSession struct {
	ID        string
	Token     string
	ExpiresAt time.Time
	RevokedAt *time.Time
	CreatedAt time.Time
}
