package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/example/timeclock/internal/testfixtures"
	"github.com/example/timeclock/internal/timeutil"
)

type stubWorkStore struct {
	mu      sync.Mutex
	entries map[string]WorkEntry
}

func newStubWorkStore() *stubWorkStore {
	return &stubWorkStore{entries: make(map[string]WorkEntry)}
}

func (s *stubWorkStore) FindOpenWorkEntry(_ context.Context, employeeID string) (WorkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.EmployeeID == employeeID && entry.End == nil {
			return entry, nil
		}
	}
	return WorkEntry{}, ErrNotFound
}

func (s *stubWorkStore) GetWorkEntry(_ context.Context, id string) (WorkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return WorkEntry{}, ErrNotFound
	}
	return entry, nil
}

func (s *stubWorkStore) InsertWorkEntry(_ context.Context, entry WorkEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	return nil
}

func (s *stubWorkStore) CloseWorkEntry(_ context.Context, id string, end time.Time, durationMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return ErrNotFound
	}
	entry.End = &end
	entry.DurationMinutes = &durationMinutes
	s.entries[id] = entry
	return nil
}

func (s *stubWorkStore) UpdateWorkEntry(_ context.Context, entry WorkEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return ErrNotFound
	}
	s.entries[entry.ID] = entry
	return nil
}

func (s *stubWorkStore) ListWorkEntriesByDate(_ context.Context, employeeID, date string) ([]WorkEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []WorkEntry
	for _, entry := range s.entries {
		if entry.EmployeeID == employeeID && entry.EntryDate == date {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *stubWorkStore) DeleteWorkEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *stubWorkStore) openCount(employeeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, entry := range s.entries {
		if entry.EmployeeID == employeeID && entry.End == nil {
			count++
		}
	}
	return count
}

type stubBreakStore struct {
	mu      sync.Mutex
	entries map[string]BreakEntry
}

func newStubBreakStore() *stubBreakStore {
	return &stubBreakStore{entries: make(map[string]BreakEntry)}
}

func (s *stubBreakStore) FindOpenBreakEntry(_ context.Context, employeeID string) (BreakEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, entry := range s.entries {
		if entry.EmployeeID == employeeID && entry.End == nil {
			return entry, nil
		}
	}
	return BreakEntry{}, ErrNotFound
}

func (s *stubBreakStore) GetBreakEntry(_ context.Context, id string) (BreakEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return BreakEntry{}, ErrNotFound
	}
	return entry, nil
}

func (s *stubBreakStore) InsertBreakEntry(_ context.Context, entry BreakEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.ID] = entry
	return nil
}

func (s *stubBreakStore) CloseBreakEntry(_ context.Context, id string, end time.Time, durationMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return ErrNotFound
	}
	entry.End = &end
	entry.DurationMinutes = &durationMinutes
	s.entries[id] = entry
	return nil
}

func (s *stubBreakStore) UpdateBreakEntry(_ context.Context, entry BreakEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[entry.ID]; !ok {
		return ErrNotFound
	}
	s.entries[entry.ID] = entry
	return nil
}

func (s *stubBreakStore) ListBreakEntriesByDate(_ context.Context, employeeID, date string) ([]BreakEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []BreakEntry
	for _, entry := range s.entries {
		if entry.EmployeeID == employeeID && entry.EntryDate == date {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *stubBreakStore) DeleteBreakEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[id]; !ok {
		return ErrNotFound
	}
	delete(s.entries, id)
	return nil
}

func (s *stubBreakStore) openCount(employeeID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	count := 0
	for _, entry := range s.entries {
		if entry.EmployeeID == employeeID && entry.End == nil {
			count++
		}
	}
	return count
}

type staticShifts struct {
	shifts []Shift
}

func (s staticShifts) ListShifts(context.Context) ([]Shift, error) {
	return s.shifts, nil
}

type allowAllTasks struct{}

func (allowAllTasks) TaskInDepartment(context.Context, string, string) (bool, error) {
	return true, nil
}

// tickingClock advances by one second on every Now call so concurrent
// commands always observe strictly increasing instants.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

func (c *tickingClock) LocalDate(t time.Time) string {
	return t.Format(timeutil.DateLayout)
}

type engineFixture struct {
	service *TimeAccountingService
	work    *stubWorkStore
	breaks  *stubBreakStore
	clock   *testfixtures.Clock
}

func newEngineFixture(t *testing.T, shifts []Shift, limits BreakLimits) engineFixture {
	t.Helper()
	work := newStubWorkStore()
	breaks := newStubBreakStore()
	clock := testfixtures.NewClock(time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))
	ids := testfixtures.NewIDGenerator("entry")
	service := NewTimeAccountingService(work, breaks, staticShifts{shifts: shifts}, allowAllTasks{}, clock, ids.NextFunc(), limits)
	return engineFixture{service: service, work: work, breaks: breaks, clock: clock}
}

func defaultLimits() BreakLimits {
	return BreakLimits{PaidMinutes: 15, UnpaidMinutes: 30}
}

func TestStartTaskCreatesEntry(t *testing.T) {
	t.Parallel()

	shifts := []Shift{
		{ID: "shift-day", Name: "Day", StartTime: "08:00", EndTime: "17:00"},
		{ID: "shift-night", Name: "Night", StartTime: "22:00", EndTime: "06:00"},
	}
	fixture := newEngineFixture(t, shifts, defaultLimits())

	result, err := fixture.service.StartTask(context.Background(), StartTaskParams{
		EmployeeID:   "emp-1",
		DepartmentID: "dept-1",
		TaskID:       "task-1",
	})
	if err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}

	entry := result.Entry
	if entry.ID == "" {
		t.Error("expected a generated entry id")
	}
	if entry.EntryDate != "2025-03-03" {
		t.Errorf("entry date = %q, want 2025-03-03", entry.EntryDate)
	}
	if entry.ShiftID == nil || *entry.ShiftID != "shift-day" {
		t.Errorf("shift = %v, want shift-day", entry.ShiftID)
	}
	if entry.End != nil || entry.DurationMinutes != nil {
		t.Error("new entry must be open")
	}
	if result.ClosedWork != nil || result.ClosedBreak != nil {
		t.Error("no entries should have been auto-closed")
	}
}

func TestStartTaskResolvesWrappingShift(t *testing.T) {
	t.Parallel()

	shifts := []Shift{
		{ID: "shift-day", Name: "Day", StartTime: "08:00", EndTime: "17:00"},
		{ID: "shift-night", Name: "Night", StartTime: "22:00", EndTime: "06:00"},
	}
	fixture := newEngineFixture(t, shifts, defaultLimits())
	fixture.clock.Set(time.Date(2025, time.March, 3, 23, 30, 0, 0, time.UTC))

	result, err := fixture.service.StartTask(context.Background(), StartTaskParams{
		EmployeeID:   "emp-1",
		DepartmentID: "dept-1",
		TaskID:       "task-1",
	})
	if err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}
	if result.Entry.ShiftID == nil || *result.Entry.ShiftID != "shift-night" {
		t.Errorf("shift = %v, want shift-night", result.Entry.ShiftID)
	}
}

func TestStartTaskFallsBackToFirstShift(t *testing.T) {
	t.Parallel()

	shifts := []Shift{
		{ID: "shift-morning", Name: "Morning", StartTime: "06:00", EndTime: "10:00"},
		{ID: "shift-evening", Name: "Evening", StartTime: "18:00", EndTime: "22:00"},
	}
	fixture := newEngineFixture(t, shifts, defaultLimits())
	fixture.clock.Set(time.Date(2025, time.March, 3, 13, 0, 0, 0, time.UTC))

	result, err := fixture.service.StartTask(context.Background(), StartTaskParams{
		EmployeeID:   "emp-1",
		DepartmentID: "dept-1",
		TaskID:       "task-1",
	})
	if err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}
	if result.Entry.ShiftID == nil || *result.Entry.ShiftID != "shift-morning" {
		t.Errorf("shift = %v, want fallback shift-morning", result.Entry.ShiftID)
	}
}

func TestStartTaskWithoutShiftsLeavesShiftUnset(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())

	result, err := fixture.service.StartTask(context.Background(), StartTaskParams{
		EmployeeID:   "emp-1",
		DepartmentID: "dept-1",
		TaskID:       "task-1",
	})
	if err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}
	if result.Entry.ShiftID != nil {
		t.Errorf("shift = %v, want nil", result.Entry.ShiftID)
	}
}

func TestStartTaskValidation(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())

	_, err := fixture.service.StartTask(context.Background(), StartTaskParams{EmployeeID: "  "})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	for _, field := range []string{"employee_id", "department_id", "task_id"} {
		if _, ok := vErr.FieldErrors[field]; !ok {
			t.Errorf("missing field error for %s", field)
		}
	}
}

func TestStartTaskRejectsForeignTask(t *testing.T) {
	t.Parallel()

	work := newStubWorkStore()
	breaks := newStubBreakStore()
	clock := testfixtures.NewClock(time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))
	ids := testfixtures.NewIDGenerator("entry")
	service := NewTimeAccountingService(work, breaks, staticShifts{}, denyAllTasks{}, clock, ids.NextFunc(), defaultLimits())

	_, err := service.StartTask(context.Background(), StartTaskParams{
		EmployeeID:   "emp-1",
		DepartmentID: "dept-1",
		TaskID:       "task-9",
	})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["task_id"]; !ok {
		t.Error("missing field error for task_id")
	}
}

type denyAllTasks struct{}

func (denyAllTasks) TaskInDepartment(context.Context, string, string) (bool, error) {
	return false, nil
}

func TestStartTaskAutoClosesOpenEntries(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	if _, err := fixture.service.StartBreak(ctx, StartBreakParams{EmployeeID: "emp-1", Kind: BreakPaid}); err != nil {
		t.Fatalf("StartBreak returned error: %v", err)
	}

	fixture.clock.Advance(10 * time.Minute)
	result, err := fixture.service.StartTask(ctx, StartTaskParams{
		EmployeeID:   "emp-1",
		DepartmentID: "dept-1",
		TaskID:       "task-1",
	})
	if err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}
	if result.ClosedBreak == nil {
		t.Fatal("expected the open break to be auto-closed")
	}
	if got := *result.ClosedBreak.DurationMinutes; got != 10 {
		t.Errorf("auto-closed break duration = %d, want 10", got)
	}
	if !result.ClosedBreak.End.Equal(result.Entry.Start) {
		t.Error("auto-closed break must end at the new entry's start")
	}

	fixture.clock.Advance(45 * time.Minute)
	second, err := fixture.service.StartTask(ctx, StartTaskParams{
		EmployeeID:   "emp-1",
		DepartmentID: "dept-1",
		TaskID:       "task-2",
	})
	if err != nil {
		t.Fatalf("second StartTask returned error: %v", err)
	}
	if second.ClosedWork == nil {
		t.Fatal("expected the open work entry to be auto-closed")
	}
	if got := *second.ClosedWork.DurationMinutes; got != 45 {
		t.Errorf("auto-closed work duration = %d, want 45", got)
	}

	if fixture.work.openCount("emp-1") != 1 {
		t.Errorf("open work entries = %d, want 1", fixture.work.openCount("emp-1"))
	}
	if fixture.breaks.openCount("emp-1") != 0 {
		t.Errorf("open break entries = %d, want 0", fixture.breaks.openCount("emp-1"))
	}
}

func TestEndTaskRoundsDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{name: "rounds down below half minute", elapsed: 7*time.Minute + 29*time.Second, want: 7},
		{name: "rounds up above half minute", elapsed: 7*time.Minute + 31*time.Second, want: 8},
		{name: "half minute rounds up", elapsed: 7*time.Minute + 30*time.Second, want: 8},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			fixture := newEngineFixture(t, nil, defaultLimits())
			ctx := context.Background()

			if _, err := fixture.service.StartTask(ctx, StartTaskParams{EmployeeID: "emp-1", DepartmentID: "dept-1", TaskID: "task-1"}); err != nil {
				t.Fatalf("StartTask returned error: %v", err)
			}
			fixture.clock.Advance(tc.elapsed)

			result, err := fixture.service.EndTask(ctx, "emp-1")
			if err != nil {
				t.Fatalf("EndTask returned error: %v", err)
			}
			if result.Closed == nil {
				t.Fatal("expected a closed entry")
			}
			if got := *result.Closed.DurationMinutes; got != tc.want {
				t.Errorf("duration = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestEndTaskWithNothingOpenIsNoOp(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())

	result, err := fixture.service.EndTask(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("EndTask returned error: %v", err)
	}
	if result.Closed != nil {
		t.Errorf("Closed = %+v, want nil", result.Closed)
	}

	again, err := fixture.service.EndTask(context.Background(), "emp-1")
	if err != nil {
		t.Fatalf("repeated EndTask returned error: %v", err)
	}
	if again.Closed != nil {
		t.Error("repeated EndTask must stay a no-op")
	}
}

func TestEndTaskRejectsNonPositiveInterval(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	if _, err := fixture.service.StartTask(ctx, StartTaskParams{EmployeeID: "emp-1", DepartmentID: "dept-1", TaskID: "task-1"}); err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}

	// Clock has not advanced, so the close instant equals the start.
	_, err := fixture.service.EndTask(ctx, "emp-1")
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("err = %v, want ErrInvalidInterval", err)
	}
	if fixture.work.openCount("emp-1") != 1 {
		t.Error("entry must remain open after a rejected close")
	}
}

func TestStartBreakValidatesKind(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())

	_, err := fixture.service.StartBreak(context.Background(), StartBreakParams{EmployeeID: "emp-1", Kind: "coffee"})
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["kind"]; !ok {
		t.Error("missing field error for kind")
	}
}

func TestEndBreakWithinLimitCloses(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	if _, err := fixture.service.StartBreak(ctx, StartBreakParams{EmployeeID: "emp-1", Kind: BreakPaid}); err != nil {
		t.Fatalf("StartBreak returned error: %v", err)
	}
	fixture.clock.Advance(12 * time.Minute)

	result, err := fixture.service.EndBreak(ctx, EndBreakParams{EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("EndBreak returned error: %v", err)
	}
	if result.Warning != nil {
		t.Errorf("warning = %+v, want nil", result.Warning)
	}
	if result.Closed == nil || *result.Closed.DurationMinutes != 12 {
		t.Fatalf("closed = %+v, want 12 minute entry", result.Closed)
	}
}

func TestEndBreakOverLimitRequiresConfirmation(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	if _, err := fixture.service.StartBreak(ctx, StartBreakParams{EmployeeID: "emp-1", Kind: BreakPaid}); err != nil {
		t.Fatalf("StartBreak returned error: %v", err)
	}
	fixture.clock.Advance(16 * time.Minute)

	first, err := fixture.service.EndBreak(ctx, EndBreakParams{EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("unconfirmed EndBreak returned error: %v", err)
	}
	if first.Closed != nil {
		t.Error("unconfirmed over-limit close must leave the entry open")
	}
	if first.Warning == nil {
		t.Fatal("expected an over-limit warning")
	}
	if first.Warning.DurationMinutes != 16 || first.Warning.LimitMinutes != 15 {
		t.Errorf("warning = %+v, want 16 over 15", first.Warning)
	}
	if fixture.breaks.openCount("emp-1") != 1 {
		t.Fatal("break entry must still be open")
	}

	second, err := fixture.service.EndBreak(ctx, EndBreakParams{EmployeeID: "emp-1", Confirmed: true})
	if err != nil {
		t.Fatalf("confirmed EndBreak returned error: %v", err)
	}
	if second.Closed == nil {
		t.Fatal("confirmed close must close the entry")
	}
	if second.Warning == nil {
		t.Error("confirmed close still reports the warning")
	}
	if *second.Closed.DurationMinutes <= 15 {
		t.Errorf("duration = %d, want the true over-limit duration", *second.Closed.DurationMinutes)
	}
	if fixture.breaks.openCount("emp-1") != 0 {
		t.Error("break entry must be closed")
	}
}

func TestEndBreakUnpaidLimit(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	if _, err := fixture.service.StartBreak(ctx, StartBreakParams{EmployeeID: "emp-1", Kind: BreakUnpaid}); err != nil {
		t.Fatalf("StartBreak returned error: %v", err)
	}
	fixture.clock.Advance(25 * time.Minute)

	result, err := fixture.service.EndBreak(ctx, EndBreakParams{EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("EndBreak returned error: %v", err)
	}
	if result.Warning != nil {
		t.Errorf("25 minutes is within the 30 minute unpaid limit, warning = %+v", result.Warning)
	}
	if result.Closed == nil {
		t.Fatal("expected a closed entry")
	}
}

func TestEndBreakWithNothingOpenIsNoOp(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())

	result, err := fixture.service.EndBreak(context.Background(), EndBreakParams{EmployeeID: "emp-1"})
	if err != nil {
		t.Fatalf("EndBreak returned error: %v", err)
	}
	if result.Closed != nil || result.Warning != nil {
		t.Errorf("result = %+v, want empty", result)
	}
}

func TestCurrentStateTransitions(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	state, err := fixture.service.CurrentState(ctx, "emp-1")
	if err != nil {
		t.Fatalf("CurrentState returned error: %v", err)
	}
	if state.Status != StatusIdle {
		t.Errorf("status = %q, want idle", state.Status)
	}

	if _, err := fixture.service.StartTask(ctx, StartTaskParams{EmployeeID: "emp-1", DepartmentID: "dept-1", TaskID: "task-1"}); err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}
	state, err = fixture.service.CurrentState(ctx, "emp-1")
	if err != nil {
		t.Fatalf("CurrentState returned error: %v", err)
	}
	if state.Status != StatusWorking || state.WorkEntry == nil {
		t.Errorf("state = %+v, want working with entry", state)
	}

	fixture.clock.Advance(time.Minute)
	if _, err := fixture.service.StartBreak(ctx, StartBreakParams{EmployeeID: "emp-1", Kind: BreakUnpaid}); err != nil {
		t.Fatalf("StartBreak returned error: %v", err)
	}
	state, err = fixture.service.CurrentState(ctx, "emp-1")
	if err != nil {
		t.Fatalf("CurrentState returned error: %v", err)
	}
	if state.Status != StatusOnBreak || state.BreakEntry == nil {
		t.Errorf("state = %+v, want on_break with entry", state)
	}

	fixture.clock.Advance(time.Minute)
	if _, err := fixture.service.EndBreak(ctx, EndBreakParams{EmployeeID: "emp-1"}); err != nil {
		t.Fatalf("EndBreak returned error: %v", err)
	}
	state, err = fixture.service.CurrentState(ctx, "emp-1")
	if err != nil {
		t.Fatalf("CurrentState returned error: %v", err)
	}
	if state.Status != StatusIdle {
		t.Errorf("status = %q, want idle after break closed", state.Status)
	}
}

func TestDailyTotals(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	if _, err := fixture.service.StartTask(ctx, StartTaskParams{EmployeeID: "emp-1", DepartmentID: "dept-1", TaskID: "task-1"}); err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}
	fixture.clock.Advance(45 * time.Minute)
	if _, err := fixture.service.StartBreak(ctx, StartBreakParams{EmployeeID: "emp-1", Kind: BreakPaid}); err != nil {
		t.Fatalf("StartBreak returned error: %v", err)
	}
	fixture.clock.Advance(10 * time.Minute)
	if _, err := fixture.service.EndBreak(ctx, EndBreakParams{EmployeeID: "emp-1"}); err != nil {
		t.Fatalf("EndBreak returned error: %v", err)
	}

	totals, err := fixture.service.DailyTotals(ctx, "emp-1", "2025-03-03")
	if err != nil {
		t.Fatalf("DailyTotals returned error: %v", err)
	}
	want := DailyTotals{Date: "2025-03-03", WorkMinutes: 45, PaidBreakMinutes: 10}
	if totals != want {
		t.Errorf("totals = %+v, want %+v", totals, want)
	}
}

func TestDailyTotalsIncludesLiveOpenEntry(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	if _, err := fixture.service.StartTask(ctx, StartTaskParams{EmployeeID: "emp-1", DepartmentID: "dept-1", TaskID: "task-1"}); err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}

	fixture.clock.Advance(20 * time.Minute)
	totals, err := fixture.service.DailyTotals(ctx, "emp-1", "2025-03-03")
	if err != nil {
		t.Fatalf("DailyTotals returned error: %v", err)
	}
	if totals.WorkMinutes != 20 {
		t.Errorf("live work minutes = %d, want 20", totals.WorkMinutes)
	}

	// A day with an open entry is never cached, so the total keeps ticking.
	fixture.clock.Advance(10 * time.Minute)
	totals, err = fixture.service.DailyTotals(ctx, "emp-1", "2025-03-03")
	if err != nil {
		t.Fatalf("DailyTotals returned error: %v", err)
	}
	if totals.WorkMinutes != 30 {
		t.Errorf("live work minutes = %d, want 30", totals.WorkMinutes)
	}
}

func TestDailyTotalsDefaultsToToday(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())

	totals, err := fixture.service.DailyTotals(context.Background(), "emp-1", "")
	if err != nil {
		t.Fatalf("DailyTotals returned error: %v", err)
	}
	if totals.Date != "2025-03-03" {
		t.Errorf("date = %q, want 2025-03-03", totals.Date)
	}
}

func TestDailyTotalsRejectsMalformedDate(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())

	_, err := fixture.service.DailyTotals(context.Background(), "emp-1", "03/03/2025")
	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestAdjustWorkEntry(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	started, err := fixture.service.StartTask(ctx, StartTaskParams{EmployeeID: "emp-1", DepartmentID: "dept-1", TaskID: "task-1"})
	if err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}
	fixture.clock.Advance(30 * time.Minute)
	if _, err := fixture.service.EndTask(ctx, "emp-1"); err != nil {
		t.Fatalf("EndTask returned error: %v", err)
	}

	newEnd := started.Entry.Start.Add(50 * time.Minute)
	adjusted, err := fixture.service.AdjustWorkEntry(ctx, AdjustWorkEntryParams{
		EntryID: started.Entry.ID,
		Start:   started.Entry.Start,
		End:     &newEnd,
	})
	if err != nil {
		t.Fatalf("AdjustWorkEntry returned error: %v", err)
	}
	if adjusted.DurationMinutes == nil || *adjusted.DurationMinutes != 50 {
		t.Errorf("duration = %v, want 50", adjusted.DurationMinutes)
	}
	if adjusted.ShiftID != nil {
		// No shifts configured; the resolved shift never changes on adjust.
		t.Errorf("shift = %v, want nil", adjusted.ShiftID)
	}
}

func TestAdjustWorkEntryRejectsInvertedInterval(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	started, err := fixture.service.StartTask(ctx, StartTaskParams{EmployeeID: "emp-1", DepartmentID: "dept-1", TaskID: "task-1"})
	if err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}
	fixture.clock.Advance(30 * time.Minute)
	if _, err := fixture.service.EndTask(ctx, "emp-1"); err != nil {
		t.Fatalf("EndTask returned error: %v", err)
	}

	badEnd := started.Entry.Start.Add(-time.Minute)
	_, err = fixture.service.AdjustWorkEntry(ctx, AdjustWorkEntryParams{
		EntryID: started.Entry.ID,
		Start:   started.Entry.Start,
		End:     &badEnd,
	})
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("err = %v, want ErrInvalidInterval", err)
	}

	stored, err := fixture.work.GetWorkEntry(ctx, started.Entry.ID)
	if err != nil {
		t.Fatalf("GetWorkEntry returned error: %v", err)
	}
	if stored.DurationMinutes == nil || *stored.DurationMinutes != 30 {
		t.Error("rejected adjustment must leave the entry unmodified")
	}
}

func TestAdjustBreakEntryReclassifiesKind(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	started, err := fixture.service.StartBreak(ctx, StartBreakParams{EmployeeID: "emp-1", Kind: BreakPaid})
	if err != nil {
		t.Fatalf("StartBreak returned error: %v", err)
	}
	fixture.clock.Advance(10 * time.Minute)
	if _, err := fixture.service.EndBreak(ctx, EndBreakParams{EmployeeID: "emp-1"}); err != nil {
		t.Fatalf("EndBreak returned error: %v", err)
	}

	newEnd := started.Entry.Start.Add(20 * time.Minute)
	adjusted, err := fixture.service.AdjustBreakEntry(ctx, AdjustBreakEntryParams{
		EntryID: started.Entry.ID,
		Kind:    BreakUnpaid,
		Start:   started.Entry.Start,
		End:     &newEnd,
	})
	if err != nil {
		t.Fatalf("AdjustBreakEntry returned error: %v", err)
	}
	if adjusted.Kind != BreakUnpaid {
		t.Errorf("kind = %q, want unpaid", adjusted.Kind)
	}
	if adjusted.DurationMinutes == nil || *adjusted.DurationMinutes != 20 {
		t.Errorf("duration = %v, want 20", adjusted.DurationMinutes)
	}
}

func TestDeleteWorkEntry(t *testing.T) {
	t.Parallel()

	fixture := newEngineFixture(t, nil, defaultLimits())
	ctx := context.Background()

	started, err := fixture.service.StartTask(ctx, StartTaskParams{EmployeeID: "emp-1", DepartmentID: "dept-1", TaskID: "task-1"})
	if err != nil {
		t.Fatalf("StartTask returned error: %v", err)
	}
	fixture.clock.Advance(time.Minute)
	if _, err := fixture.service.EndTask(ctx, "emp-1"); err != nil {
		t.Fatalf("EndTask returned error: %v", err)
	}

	if err := fixture.service.DeleteWorkEntry(ctx, started.Entry.ID); err != nil {
		t.Fatalf("DeleteWorkEntry returned error: %v", err)
	}
	if err := fixture.service.DeleteWorkEntry(ctx, started.Entry.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("repeated delete err = %v, want ErrNotFound", err)
	}
}

func TestConcurrentCommandsKeepSingleOpenEntry(t *testing.T) {
	t.Parallel()

	work := newStubWorkStore()
	breaks := newStubBreakStore()
	clock := &tickingClock{now: time.Date(2025, time.March, 3, 0, 0, 0, 0, time.UTC)}
	ids := testfixtures.NewIDGenerator("entry")
	service := NewTimeAccountingService(work, breaks, staticShifts{}, allowAllTasks{}, clock, ids.NextFunc(), defaultLimits())

	ctx := context.Background()
	const workers = 8
	const opsPerWorker = 40

	var wg sync.WaitGroup
	errCh := make(chan error, workers*opsPerWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := 0; i < opsPerWorker; i++ {
				var err error
				switch (worker + i) % 4 {
				case 0:
					_, err = service.StartTask(ctx, StartTaskParams{EmployeeID: "emp-1", DepartmentID: "dept-1", TaskID: fmt.Sprintf("task-%d", worker)})
				case 1:
					_, err = service.StartBreak(ctx, StartBreakParams{EmployeeID: "emp-1", Kind: BreakPaid})
				case 2:
					_, err = service.EndTask(ctx, "emp-1")
				default:
					_, err = service.EndBreak(ctx, EndBreakParams{EmployeeID: "emp-1", Confirmed: true})
				}
				if err != nil {
					errCh <- err
				}
			}
		}(w)
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Errorf("command returned error: %v", err)
	}

	if open := work.openCount("emp-1") + breaks.openCount("emp-1"); open > 1 {
		t.Errorf("open entries = %d, want at most 1", open)
	}

	work.mu.Lock()
	for _, entry := range work.entries {
		if entry.End != nil {
			if !entry.End.After(entry.Start) {
				t.Errorf("entry %s closed with end not after start", entry.ID)
			}
			if entry.DurationMinutes == nil || *entry.DurationMinutes < 0 {
				t.Errorf("entry %s closed with invalid duration", entry.ID)
			}
		}
	}
	work.mu.Unlock()

	breaks.mu.Lock()
	for _, entry := range breaks.entries {
		if entry.End != nil && !entry.End.After(entry.Start) {
			t.Errorf("break %s closed with end not after start", entry.ID)
		}
	}
	breaks.mu.Unlock()
}
