package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

var (
	_ persistence.EmployeeRepository   = (*Storage)(nil)
	_ persistence.DepartmentRepository = (*Storage)(nil)
	_ persistence.TaskRepository       = (*Storage)(nil)
	_ persistence.ShiftRepository      = (*Storage)(nil)
	_ persistence.WorkEntryRepository  = (*Storage)(nil)
	_ persistence.BreakEntryRepository = (*Storage)(nil)
	_ persistence.AdminRepository      = (*Storage)(nil)
)

func seedStorage(t *testing.T) *Storage {
	t.Helper()

	storage := Open()
	ctx := context.Background()
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	err := storage.CreateEmployee(ctx, persistence.Employee{
		ID: "emp1", Name: "Jane Smith", Code: "EMP_A", CreatedAt: now, UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateEmployee failed: %v", err)
	}
	if err := storage.CreateDepartment(ctx, persistence.Department{ID: "dept1", Name: "Assembly", CreatedAt: now}); err != nil {
		t.Fatalf("CreateDepartment failed: %v", err)
	}
	if err := storage.CreateTask(ctx, persistence.Task{ID: "task1", DepartmentID: "dept1", Name: "Welding", CreatedAt: now}); err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	return storage
}

func TestStorageWorkEntryLifecycle(t *testing.T) {
	storage := seedStorage(t)
	ctx := context.Background()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	entry := persistence.WorkEntry{
		ID:           "work1",
		EmployeeID:   "emp1",
		DepartmentID: "dept1",
		TaskID:       "task1",
		StartTime:    start,
		EntryDate:    "2025-03-03",
		CreatedAt:    start,
	}
	if err := storage.InsertWorkEntry(ctx, entry); err != nil {
		t.Fatalf("InsertWorkEntry failed: %v", err)
	}

	open, err := storage.FindOpenWorkEntry(ctx, "emp1")
	if err != nil {
		t.Fatalf("FindOpenWorkEntry failed: %v", err)
	}
	if open.ID != "work1" || open.EndTime != nil {
		t.Errorf("open entry = %+v", open)
	}

	end := start.Add(45 * time.Minute)
	if err := storage.CloseWorkEntry(ctx, "work1", end, 45); err != nil {
		t.Fatalf("CloseWorkEntry failed: %v", err)
	}
	if _, err := storage.FindOpenWorkEntry(ctx, "emp1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound after close", err)
	}
	if err := storage.CloseWorkEntry(ctx, "work1", end.Add(time.Hour), 105); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound on double close", err)
	}

	closed, err := storage.GetWorkEntry(ctx, "work1")
	if err != nil {
		t.Fatalf("GetWorkEntry failed: %v", err)
	}
	if closed.DurationMinutes == nil || *closed.DurationMinutes != 45 {
		t.Errorf("duration = %v, want 45", closed.DurationMinutes)
	}
}

func TestStorageRejectsOrphanedEntry(t *testing.T) {
	storage := seedStorage(t)

	err := storage.InsertWorkEntry(context.Background(), persistence.WorkEntry{
		ID:           "work1",
		EmployeeID:   "ghost",
		DepartmentID: "dept1",
		TaskID:       "task1",
		StartTime:    time.Now().UTC(),
		EntryDate:    "2025-03-03",
	})
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("err = %v, want ErrForeignKeyViolation", err)
	}
}

func TestStorageRejectsUnknownBreakKind(t *testing.T) {
	storage := seedStorage(t)

	err := storage.InsertBreakEntry(context.Background(), persistence.BreakEntry{
		ID:         "break1",
		EmployeeID: "emp1",
		BreakKind:  "coffee",
		StartTime:  time.Now().UTC(),
		EntryDate:  "2025-03-03",
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("err = %v, want ErrConstraintViolation", err)
	}
}

func TestStorageDuplicateEmployeeName(t *testing.T) {
	storage := seedStorage(t)

	err := storage.CreateEmployee(context.Background(), persistence.Employee{
		ID: "emp2", Name: "Jane Smith", Code: "EMP_B",
	})
	if !errors.Is(err, persistence.ErrDuplicate) {
		t.Fatalf("err = %v, want ErrDuplicate", err)
	}
}

func TestStorageDeleteEmployeeCascades(t *testing.T) {
	storage := seedStorage(t)
	ctx := context.Background()

	start := time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC)
	err := storage.InsertWorkEntry(ctx, persistence.WorkEntry{
		ID: "work1", EmployeeID: "emp1", DepartmentID: "dept1", TaskID: "task1",
		StartTime: start, EntryDate: "2025-03-03", CreatedAt: start,
	})
	if err != nil {
		t.Fatalf("InsertWorkEntry failed: %v", err)
	}

	if err := storage.DeleteEmployee(ctx, "emp1"); err != nil {
		t.Fatalf("DeleteEmployee failed: %v", err)
	}
	if _, err := storage.GetWorkEntry(ctx, "work1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound for cascaded entry", err)
	}
}

func TestStorageDeleteDepartmentBlockedByTasks(t *testing.T) {
	storage := seedStorage(t)

	err := storage.DeleteDepartment(context.Background(), "dept1")
	if !errors.Is(err, persistence.ErrForeignKeyViolation) {
		t.Fatalf("err = %v, want ErrForeignKeyViolation while tasks remain", err)
	}
}

func TestStorageEntryFilter(t *testing.T) {
	storage := seedStorage(t)
	ctx := context.Background()

	base := time.Date(2025, time.March, 1, 9, 0, 0, 0, time.UTC)
	for i, date := range []string{"2025-03-01", "2025-03-02", "2025-03-03"} {
		entry := persistence.WorkEntry{
			ID:           "work" + string(rune('1'+i)),
			EmployeeID:   "emp1",
			DepartmentID: "dept1",
			TaskID:       "task1",
			StartTime:    base.AddDate(0, 0, i),
			EntryDate:    date,
			CreatedAt:    base,
		}
		if err := storage.InsertWorkEntry(ctx, entry); err != nil {
			t.Fatalf("InsertWorkEntry failed: %v", err)
		}
		end := entry.StartTime.Add(time.Hour)
		if err := storage.CloseWorkEntry(ctx, entry.ID, end, 60); err != nil {
			t.Fatalf("CloseWorkEntry failed: %v", err)
		}
	}

	entries, err := storage.ListWorkEntries(ctx, persistence.EntryFilter{
		EmployeeID: "emp1",
		FromDate:   "2025-03-02",
		ToDate:     "2025-03-03",
	})
	if err != nil {
		t.Fatalf("ListWorkEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].EntryDate != "2025-03-02" || entries[1].EntryDate != "2025-03-03" {
		t.Errorf("dates = %s, %s", entries[0].EntryDate, entries[1].EntryDate)
	}
}

func TestStorageAdminSessionLifecycle(t *testing.T) {
	storage := Open()
	ctx := context.Background()

	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
	session := persistence.AdminSession{
		ID: "session1", Token: "token-abc", ExpiresAt: now.Add(time.Hour), CreatedAt: now,
	}
	if err := storage.CreateAdminSession(ctx, session); err != nil {
		t.Fatalf("CreateAdminSession failed: %v", err)
	}

	revokedAt := now.Add(30 * time.Minute)
	if err := storage.RevokeAdminSession(ctx, "session1", revokedAt); err != nil {
		t.Fatalf("RevokeAdminSession failed: %v", err)
	}
	stored, err := storage.GetAdminSession(ctx, "token-abc")
	if err != nil {
		t.Fatalf("GetAdminSession failed: %v", err)
	}
	if stored.RevokedAt == nil || !stored.RevokedAt.Equal(revokedAt) {
		t.Errorf("revoked at = %v, want %v", stored.RevokedAt, revokedAt)
	}
	if err := storage.RevokeAdminSession(ctx, "session1", revokedAt); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound on double revoke", err)
	}
}
