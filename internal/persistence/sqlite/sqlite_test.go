package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

func setupTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	pool, err := NewConnectionPool("file:" + dbPath)
	if err != nil {
		t.Fatalf("NewConnectionPool failed: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return pool
}

func seedEmployee(t *testing.T, pool *ConnectionPool, id, name string) {
	t.Helper()

	repo := NewEmployeeRepository(pool)
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
	err := repo.CreateEmployee(context.Background(), persistence.Employee{
		ID:        id,
		Name:      name,
		Code:      "EMP_" + id,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("seed employee %s failed: %v", id, err)
	}
}

func seedDirectory(t *testing.T, pool *ConnectionPool, departmentID, taskID string) {
	t.Helper()

	repo := NewDirectoryRepository(pool)
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
	ctx := context.Background()

	if err := repo.CreateDepartment(ctx, persistence.Department{ID: departmentID, Name: "Dept " + departmentID, CreatedAt: now}); err != nil {
		t.Fatalf("seed department failed: %v", err)
	}
	if err := repo.CreateTask(ctx, persistence.Task{ID: taskID, DepartmentID: departmentID, Name: "Task " + taskID, CreatedAt: now}); err != nil {
		t.Fatalf("seed task failed: %v", err)
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := setupTestPool(t)

	if err := pool.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
}

func TestForeignKeysEnforced(t *testing.T) {
	pool := setupTestPool(t)
	repo := NewEntryRepository(pool)

	err := repo.InsertWorkEntry(context.Background(), persistence.WorkEntry{
		ID:           "entry1",
		EmployeeID:   "missing",
		DepartmentID: "missing",
		TaskID:       "missing",
		StartTime:    time.Now().UTC(),
		EntryDate:    "2025-03-03",
		CreatedAt:    time.Now().UTC(),
	})
	if err != persistence.ErrForeignKeyViolation {
		t.Fatalf("err = %v, want ErrForeignKeyViolation", err)
	}
}
