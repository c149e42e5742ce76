package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/timeclock/internal/shift"
	"github.com/example/timeclock/internal/timeutil"
)

// WorkEntryStore captures the persistence interactions the engine needs for
// work entries. FindOpenWorkEntry reports ErrNotFound when nothing is open.
type WorkEntryStore interface {
	FindOpenWorkEntry(ctx context.Context, employeeID string) (WorkEntry, error)
	GetWorkEntry(ctx context.Context, id string) (WorkEntry, error)
	InsertWorkEntry(ctx context.Context, entry WorkEntry) error
	CloseWorkEntry(ctx context.Context, id string, end time.Time, durationMinutes int) error
	UpdateWorkEntry(ctx context.Context, entry WorkEntry) error
	ListWorkEntriesByDate(ctx context.Context, employeeID, date string) ([]WorkEntry, error)
	DeleteWorkEntry(ctx context.Context, id string) error
}

// BreakEntryStore mirrors WorkEntryStore for break entries.
type BreakEntryStore interface {
	FindOpenBreakEntry(ctx context.Context, employeeID string) (BreakEntry, error)
	GetBreakEntry(ctx context.Context, id string) (BreakEntry, error)
	InsertBreakEntry(ctx context.Context, entry BreakEntry) error
	CloseBreakEntry(ctx context.Context, id string, end time.Time, durationMinutes int) error
	UpdateBreakEntry(ctx context.Context, entry BreakEntry) error
	ListBreakEntriesByDate(ctx context.Context, employeeID, date string) ([]BreakEntry, error)
	DeleteBreakEntry(ctx context.Context, id string) error
}

// ShiftConfiguration exposes the admin-configured shift list, in creation
// order. The engine only reads it.
type ShiftConfiguration interface {
	ListShifts(ctx context.Context) ([]Shift, error)
}

// TaskDirectory answers whether a task belongs to a department.
type TaskDirectory interface {
	TaskInDepartment(ctx context.Context, departmentID, taskID string) (bool, error)
}

// BreakLimits carries the advisory per-kind break limits in minutes. A zero
// limit disables the warning for that kind.
type BreakLimits struct {
	PaidMinutes   int
	UnpaidMinutes int
}

// ForKind returns the limit configured for the given break kind.
func (l BreakLimits) ForKind(kind BreakKind) int {
	switch kind {
	case BreakPaid:
		return l.PaidMinutes
	case BreakUnpaid:
		return l.UnpaidMinutes
	default:
		return 0
	}
}

// TimeAccountingService owns the work/break state machines for every
// employee. All four commands run under a per-employee critical section so
// the find-close-insert sequence is atomic with respect to competing
// commands; reads skip the lock.
type TimeAccountingService struct {
	work        WorkEntryStore
	breaks      BreakEntryStore
	shifts      ShiftConfiguration
	tasks       TaskDirectory
	clock       timeutil.Clock
	idGenerator func() string
	limits      BreakLimits
	locks       *employeeLocks
	totals      *totalsCache
	logger      *slog.Logger
}

// NewTimeAccountingService wires the engine's collaborators.
func NewTimeAccountingService(work WorkEntryStore, breaks BreakEntryStore, shifts ShiftConfiguration, tasks TaskDirectory, clock timeutil.Clock, idGenerator func() string, limits BreakLimits) *TimeAccountingService {
	return NewTimeAccountingServiceWithLogger(work, breaks, shifts, tasks, clock, idGenerator, limits, nil)
}

// NewTimeAccountingServiceWithLogger wires the engine with a base logger.
func NewTimeAccountingServiceWithLogger(work WorkEntryStore, breaks BreakEntryStore, shifts ShiftConfiguration, tasks TaskDirectory, clock timeutil.Clock, idGenerator func() string, limits BreakLimits, logger *slog.Logger) *TimeAccountingService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if clock == nil {
		clock = timeutil.NewSystemClock(nil)
	}
	svc := &TimeAccountingService{
		work:        work,
		breaks:      breaks,
		shifts:      shifts,
		tasks:       tasks,
		clock:       clock,
		idGenerator: idGenerator,
		limits:      limits,
		locks:       newEmployeeLocks(),
		totals:      newTotalsCache(0, 0, clock.Now),
		logger:      defaultLogger(logger),
	}
	return svc
}

// StartTask clocks the employee in against a task. Any open break entry and
// any open work entry are closed first, exactly as the corresponding End
// command would close them with the same instant, before the new entry is
// inserted.
func (s *TimeAccountingService) StartTask(ctx context.Context, params StartTaskParams) (StartTaskResult, error) {
	if s == nil {
		return StartTaskResult{}, fmt.Errorf("TimeAccountingService is nil")
	}

	employeeID := strings.TrimSpace(params.EmployeeID)
	departmentID := strings.TrimSpace(params.DepartmentID)
	taskID := strings.TrimSpace(params.TaskID)

	vErr := &ValidationError{}
	if employeeID == "" {
		vErr.add("employee_id", "employee is required")
	}
	if departmentID == "" {
		vErr.add("department_id", "department is required")
	}
	if taskID == "" {
		vErr.add("task_id", "task is required")
	}
	if vErr.HasErrors() {
		return StartTaskResult{}, vErr
	}

	if s.tasks != nil {
		ok, err := s.tasks.TaskInDepartment(ctx, departmentID, taskID)
		if err != nil {
			return StartTaskResult{}, err
		}
		if !ok {
			vErr.add("task_id", "task does not belong to department")
			return StartTaskResult{}, vErr
		}
	}

	release := s.locks.Acquire(employeeID)
	defer release()

	now := s.clock.Now()

	closedBreak, err := s.closeOpenBreak(ctx, employeeID, now)
	if err != nil {
		return StartTaskResult{}, err
	}
	closedWork, err := s.closeOpenWork(ctx, employeeID, now)
	if err != nil {
		return StartTaskResult{}, err
	}

	shiftID, err := s.resolveShift(ctx, now)
	if err != nil {
		return StartTaskResult{}, err
	}

	entry := WorkEntry{
		ID:           s.idGenerator(),
		EmployeeID:   employeeID,
		DepartmentID: departmentID,
		TaskID:       taskID,
		Start:        now,
		ShiftID:      shiftID,
		EntryDate:    s.clock.LocalDate(now),
		CreatedAt:    now,
	}

	// If the insert fails after an auto-close was persisted the employee is
	// left Idle, never in a dual-open state; callers retry the whole command.
	if err := s.work.InsertWorkEntry(ctx, entry); err != nil {
		return StartTaskResult{}, err
	}

	s.totals.Invalidate(employeeID)

	serviceLogger(ctx, s.logger, "time_accounting", "start_task",
		"employee_id", employeeID, "task_id", taskID).
		InfoContext(ctx, "work entry opened", "entry_id", entry.ID)

	return StartTaskResult{Entry: entry, ClosedWork: closedWork, ClosedBreak: closedBreak}, nil
}

// EndTask clocks the employee out of the open work entry. With nothing open
// the call is a benign no-op reporting a nil Closed entry.
func (s *TimeAccountingService) EndTask(ctx context.Context, employeeID string) (EndTaskResult, error) {
	if s == nil {
		return EndTaskResult{}, fmt.Errorf("TimeAccountingService is nil")
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		vErr := &ValidationError{}
		vErr.add("employee_id", "employee is required")
		return EndTaskResult{}, vErr
	}

	release := s.locks.Acquire(employeeID)
	defer release()

	now := s.clock.Now()
	closed, err := s.closeOpenWork(ctx, employeeID, now)
	if err != nil {
		return EndTaskResult{}, err
	}
	if closed != nil {
		s.totals.Invalidate(employeeID)
		serviceLogger(ctx, s.logger, "time_accounting", "end_task",
			"employee_id", employeeID).
			InfoContext(ctx, "work entry closed", "entry_id", closed.ID, "duration_minutes", *closed.DurationMinutes)
	}
	return EndTaskResult{Closed: closed}, nil
}

// StartBreak opens a break entry, first closing any open break and any open
// work entry with the same instant.
func (s *TimeAccountingService) StartBreak(ctx context.Context, params StartBreakParams) (StartBreakResult, error) {
	if s == nil {
		return StartBreakResult{}, fmt.Errorf("TimeAccountingService is nil")
	}

	employeeID := strings.TrimSpace(params.EmployeeID)
	vErr := &ValidationError{}
	if employeeID == "" {
		vErr.add("employee_id", "employee is required")
	}
	if !params.Kind.Valid() {
		vErr.add("kind", "break kind must be paid or unpaid")
	}
	if vErr.HasErrors() {
		return StartBreakResult{}, vErr
	}

	release := s.locks.Acquire(employeeID)
	defer release()

	now := s.clock.Now()

	closedBreak, err := s.closeOpenBreak(ctx, employeeID, now)
	if err != nil {
		return StartBreakResult{}, err
	}
	closedWork, err := s.closeOpenWork(ctx, employeeID, now)
	if err != nil {
		return StartBreakResult{}, err
	}

	entry := BreakEntry{
		ID:         s.idGenerator(),
		EmployeeID: employeeID,
		Kind:       params.Kind,
		Start:      now,
		EntryDate:  s.clock.LocalDate(now),
		CreatedAt:  now,
	}

	if err := s.breaks.InsertBreakEntry(ctx, entry); err != nil {
		return StartBreakResult{}, err
	}

	s.totals.Invalidate(employeeID)

	serviceLogger(ctx, s.logger, "time_accounting", "start_break",
		"employee_id", employeeID, "kind", string(params.Kind)).
		InfoContext(ctx, "break entry opened", "entry_id", entry.ID)

	return StartBreakResult{Entry: entry, ClosedWork: closedWork, ClosedBreak: closedBreak}, nil
}

// EndBreak closes the open break entry. A break that ran past its configured
// limit is reported as a BreakOverLimit warning; an unconfirmed call leaves
// the entry open, a confirmed one always closes it. The engine never
// hard-blocks clocking out of a break.
func (s *TimeAccountingService) EndBreak(ctx context.Context, params EndBreakParams) (EndBreakResult, error) {
	if s == nil {
		return EndBreakResult{}, fmt.Errorf("TimeAccountingService is nil")
	}
	employeeID := strings.TrimSpace(params.EmployeeID)
	if employeeID == "" {
		vErr := &ValidationError{}
		vErr.add("employee_id", "employee is required")
		return EndBreakResult{}, vErr
	}

	release := s.locks.Acquire(employeeID)
	defer release()

	now := s.clock.Now()

	entry, err := s.breaks.FindOpenBreakEntry(ctx, employeeID)
	if err != nil {
		if isNotFound(err) {
			return EndBreakResult{}, nil
		}
		return EndBreakResult{}, err
	}
	if !now.After(entry.Start) {
		return EndBreakResult{}, ErrInvalidInterval
	}

	minutes := timeutil.ElapsedMinutes(entry.Start, now)

	var warning *BreakOverLimit
	if limit := s.limits.ForKind(entry.Kind); limit > 0 && minutes > limit {
		warning = &BreakOverLimit{DurationMinutes: minutes, LimitMinutes: limit}
		if !params.Confirmed {
			return EndBreakResult{Warning: warning}, nil
		}
	}

	if err := s.breaks.CloseBreakEntry(ctx, entry.ID, now, minutes); err != nil {
		return EndBreakResult{}, err
	}

	end := now
	entry.End = &end
	entry.DurationMinutes = &minutes

	s.totals.Invalidate(employeeID)

	serviceLogger(ctx, s.logger, "time_accounting", "end_break",
		"employee_id", employeeID, "kind", string(entry.Kind)).
		InfoContext(ctx, "break entry closed", "entry_id", entry.ID, "duration_minutes", minutes)

	return EndBreakResult{Closed: &entry, Warning: warning}, nil
}

// CurrentState derives the employee's position in the state machine. The
// invariants guarantee at most one open entry, checked work-first.
func (s *TimeAccountingService) CurrentState(ctx context.Context, employeeID string) (EmployeeState, error) {
	if s == nil {
		return EmployeeState{}, fmt.Errorf("TimeAccountingService is nil")
	}
	employeeID = strings.TrimSpace(employeeID)
	if employeeID == "" {
		vErr := &ValidationError{}
		vErr.add("employee_id", "employee is required")
		return EmployeeState{}, vErr
	}

	work, err := s.work.FindOpenWorkEntry(ctx, employeeID)
	if err == nil {
		return EmployeeState{Status: StatusWorking, WorkEntry: &work}, nil
	}
	if !isNotFound(err) {
		return EmployeeState{}, err
	}

	brk, err := s.breaks.FindOpenBreakEntry(ctx, employeeID)
	if err == nil {
		return EmployeeState{Status: StatusOnBreak, BreakEntry: &brk}, nil
	}
	if !isNotFound(err) {
		return EmployeeState{}, err
	}

	return EmployeeState{Status: StatusIdle}, nil
}

// DailyTotals sums booked minutes for the employee's entries on the given
// local date. Open entries contribute their live elapsed duration; days
// containing one are not cached.
func (s *TimeAccountingService) DailyTotals(ctx context.Context, employeeID, date string) (DailyTotals, error) {
	if s == nil {
		return DailyTotals{}, fmt.Errorf("TimeAccountingService is nil")
	}
	employeeID = strings.TrimSpace(employeeID)
	date = strings.TrimSpace(date)

	vErr := &ValidationError{}
	if employeeID == "" {
		vErr.add("employee_id", "employee is required")
	}
	if date == "" {
		date = s.clock.LocalDate(s.clock.Now())
	} else if _, err := time.Parse(timeutil.DateLayout, date); err != nil {
		vErr.add("date", "date must use the 2006-01-02 layout")
	}
	if vErr.HasErrors() {
		return DailyTotals{}, vErr
	}

	if cached, ok := s.totals.Get(employeeID, date); ok {
		return cached, nil
	}

	totals := DailyTotals{Date: date}
	sawOpen := false
	now := s.clock.Now()

	workEntries, err := s.work.ListWorkEntriesByDate(ctx, employeeID, date)
	if err != nil {
		return DailyTotals{}, err
	}
	for _, entry := range workEntries {
		switch {
		case entry.DurationMinutes != nil:
			totals.WorkMinutes += *entry.DurationMinutes
		case entry.End == nil:
			sawOpen = true
			totals.WorkMinutes += timeutil.ElapsedMinutes(entry.Start, now)
		}
	}

	breakEntries, err := s.breaks.ListBreakEntriesByDate(ctx, employeeID, date)
	if err != nil {
		return DailyTotals{}, err
	}
	for _, entry := range breakEntries {
		minutes := 0
		switch {
		case entry.DurationMinutes != nil:
			minutes = *entry.DurationMinutes
		case entry.End == nil:
			sawOpen = true
			minutes = timeutil.ElapsedMinutes(entry.Start, now)
		}
		if entry.Kind == BreakPaid {
			totals.PaidBreakMinutes += minutes
		} else {
			totals.UnpaidBreakMinutes += minutes
		}
	}

	if !sawOpen {
		s.totals.Store(employeeID, date, totals)
	}

	return totals, nil
}

// AdjustWorkEntry applies an administrator correction to a recorded work
// entry. The resolved shift is immutable for the entry's lifetime and the
// duration is always recomputed, never supplied.
func (s *TimeAccountingService) AdjustWorkEntry(ctx context.Context, params AdjustWorkEntryParams) (WorkEntry, error) {
	if s == nil {
		return WorkEntry{}, fmt.Errorf("TimeAccountingService is nil")
	}

	entry, err := s.work.GetWorkEntry(ctx, strings.TrimSpace(params.EntryID))
	if err != nil {
		return WorkEntry{}, mapRepositoryError(err)
	}

	release := s.locks.Acquire(entry.EmployeeID)
	defer release()

	updated, err := applyIntervalAdjustment(entry.Start, entry.End, entry.DurationMinutes, params.Start, params.End)
	if err != nil {
		return WorkEntry{}, err
	}
	entry.Start = updated.start
	entry.End = updated.end
	entry.DurationMinutes = updated.durationMinutes

	if err := s.work.UpdateWorkEntry(ctx, entry); err != nil {
		return WorkEntry{}, mapRepositoryError(err)
	}

	s.totals.Invalidate(entry.EmployeeID)
	return entry, nil
}

// AdjustBreakEntry applies an administrator correction to a recorded break
// entry, optionally reclassifying its kind.
func (s *TimeAccountingService) AdjustBreakEntry(ctx context.Context, params AdjustBreakEntryParams) (BreakEntry, error) {
	if s == nil {
		return BreakEntry{}, fmt.Errorf("TimeAccountingService is nil")
	}

	entry, err := s.breaks.GetBreakEntry(ctx, strings.TrimSpace(params.EntryID))
	if err != nil {
		return BreakEntry{}, mapRepositoryError(err)
	}

	if params.Kind != "" {
		if !params.Kind.Valid() {
			vErr := &ValidationError{}
			vErr.add("kind", "break kind must be paid or unpaid")
			return BreakEntry{}, vErr
		}
		entry.Kind = params.Kind
	}

	release := s.locks.Acquire(entry.EmployeeID)
	defer release()

	updated, err := applyIntervalAdjustment(entry.Start, entry.End, entry.DurationMinutes, params.Start, params.End)
	if err != nil {
		return BreakEntry{}, err
	}
	entry.Start = updated.start
	entry.End = updated.end
	entry.DurationMinutes = updated.durationMinutes

	if err := s.breaks.UpdateBreakEntry(ctx, entry); err != nil {
		return BreakEntry{}, mapRepositoryError(err)
	}

	s.totals.Invalidate(entry.EmployeeID)
	return entry, nil
}

// DeleteWorkEntry removes a recorded work entry.
func (s *TimeAccountingService) DeleteWorkEntry(ctx context.Context, entryID string) error {
	if s == nil {
		return fmt.Errorf("TimeAccountingService is nil")
	}
	entry, err := s.work.GetWorkEntry(ctx, strings.TrimSpace(entryID))
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.work.DeleteWorkEntry(ctx, entry.ID); err != nil {
		return mapRepositoryError(err)
	}
	s.totals.Invalidate(entry.EmployeeID)
	return nil
}

// DeleteBreakEntry removes a recorded break entry.
func (s *TimeAccountingService) DeleteBreakEntry(ctx context.Context, entryID string) error {
	if s == nil {
		return fmt.Errorf("TimeAccountingService is nil")
	}
	entry, err := s.breaks.GetBreakEntry(ctx, strings.TrimSpace(entryID))
	if err != nil {
		return mapRepositoryError(err)
	}
	if err := s.breaks.DeleteBreakEntry(ctx, entry.ID); err != nil {
		return mapRepositoryError(err)
	}
	s.totals.Invalidate(entry.EmployeeID)
	return nil
}

// closeOpenWork closes the employee's open work entry at now, exactly as
// EndTask would. It returns nil when nothing is open.
func (s *TimeAccountingService) closeOpenWork(ctx context.Context, employeeID string, now time.Time) (*WorkEntry, error) {
	entry, err := s.work.FindOpenWorkEntry(ctx, employeeID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !now.After(entry.Start) {
		return nil, ErrInvalidInterval
	}

	minutes := timeutil.ElapsedMinutes(entry.Start, now)
	if err := s.work.CloseWorkEntry(ctx, entry.ID, now, minutes); err != nil {
		return nil, err
	}

	end := now
	entry.End = &end
	entry.DurationMinutes = &minutes
	return &entry, nil
}

// closeOpenBreak closes the employee's open break entry at now, exactly as a
// confirmed EndBreak would. Auto-close never stops on the advisory limit.
func (s *TimeAccountingService) closeOpenBreak(ctx context.Context, employeeID string, now time.Time) (*BreakEntry, error) {
	entry, err := s.breaks.FindOpenBreakEntry(ctx, employeeID)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	if !now.After(entry.Start) {
		return nil, ErrInvalidInterval
	}

	minutes := timeutil.ElapsedMinutes(entry.Start, now)
	if err := s.breaks.CloseBreakEntry(ctx, entry.ID, now, minutes); err != nil {
		return nil, err
	}

	end := now
	entry.End = &end
	entry.DurationMinutes = &minutes
	return &entry, nil
}

func (s *TimeAccountingService) resolveShift(ctx context.Context, now time.Time) (*string, error) {
	if s.shifts == nil {
		return nil, nil
	}
	shifts, err := s.shifts.ListShifts(ctx)
	if err != nil {
		return nil, err
	}
	if len(shifts) == 0 {
		return nil, nil
	}

	windows := make([]shift.Window, 0, len(shifts))
	for _, sh := range shifts {
		windows = append(windows, shift.Window{ID: sh.ID, Name: sh.Name, Start: sh.StartTime, End: sh.EndTime})
	}

	resolved := shift.Resolve(now, windows)
	if resolved == nil {
		return nil, nil
	}
	id := resolved.ID
	return &id, nil
}

type adjustedInterval struct {
	start           time.Time
	end             *time.Time
	durationMinutes *int
}

// applyIntervalAdjustment recomputes an entry's interval from corrected
// bounds, enforcing end strictly after start and deriving the duration.
func applyIntervalAdjustment(currentStart time.Time, currentEnd *time.Time, currentDuration *int, newStart time.Time, newEnd *time.Time) (adjustedInterval, error) {
	start := currentStart
	if !newStart.IsZero() {
		start = newStart
	}

	if newEnd == nil {
		// Reopened entry: the duration is cleared until the next close.
		return adjustedInterval{start: start}, nil
	}
	if !newEnd.After(start) {
		return adjustedInterval{}, ErrInvalidInterval
	}

	end := *newEnd
	minutes := timeutil.ElapsedMinutes(start, end)
	return adjustedInterval{start: start, end: &end, durationMinutes: &minutes}, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// mapRepositoryError normalises store sentinels to application errors.
// Storage failures pass through unchanged; the engine never retries.
func mapRepositoryError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	return err
}
