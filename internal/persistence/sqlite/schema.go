package sqlite

import (
	"context"
	"fmt"
)

// migrations holds the ordered schema statements. Statements must stay
// append-only; existing entries are assumed to have run on deployed
// databases.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS departments (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS tasks (
		id TEXT PRIMARY KEY,
		department_id TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (department_id) REFERENCES departments(id)
	)`,
	`CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		code TEXT NOT NULL UNIQUE,
		is_temp INTEGER NOT NULL DEFAULT 0,
		position TEXT NOT NULL DEFAULT '',
		pin_hash TEXT,
		pin_set_at TEXT,
		email TEXT,
		email_verified INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		color TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS work_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		department_id TEXT NOT NULL,
		task_id TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT,
		duration_minutes INTEGER,
		shift_id TEXT,
		entry_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (employee_id) REFERENCES employees(id),
		FOREIGN KEY (department_id) REFERENCES departments(id),
		FOREIGN KEY (task_id) REFERENCES tasks(id),
		FOREIGN KEY (shift_id) REFERENCES shifts(id)
	)`,
	`CREATE TABLE IF NOT EXISTS break_entries (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		break_kind TEXT NOT NULL CHECK (break_kind IN ('paid', 'unpaid')),
		start_time TEXT NOT NULL,
		end_time TEXT,
		duration_minutes INTEGER,
		entry_date TEXT NOT NULL,
		created_at TEXT NOT NULL,
		FOREIGN KEY (employee_id) REFERENCES employees(id)
	)`,
	`CREATE TABLE IF NOT EXISTS admin_credentials (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS admin_sessions (
		id TEXT PRIMARY KEY,
		token TEXT NOT NULL UNIQUE,
		expires_at TEXT NOT NULL,
		revoked_at TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_work_entries_employee_date
		ON work_entries(employee_id, entry_date)`,
	`CREATE INDEX IF NOT EXISTS idx_work_entries_open
		ON work_entries(employee_id) WHERE end_time IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_break_entries_employee_date
		ON break_entries(employee_id, entry_date)`,
	`CREATE INDEX IF NOT EXISTS idx_break_entries_open
		ON break_entries(employee_id) WHERE end_time IS NULL`,
	`CREATE INDEX IF NOT EXISTS idx_admin_sessions_token
		ON admin_sessions(token)`,
}

// Migrate applies the schema. Safe to call at every startup.
func (cp *ConnectionPool) Migrate(ctx context.Context) error {
	for i, statement := range migrations {
		if _, err := cp.db.ExecContext(ctx, statement); err != nil {
			return fmt.Errorf("migration %d failed: %w", i, err)
		}
	}
	return nil
}
