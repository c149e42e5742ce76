package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/timeclock/internal/timeutil"
)

// TimesheetQuery narrows a timesheet report. Dates are inclusive
// "2006-01-02" bounds; an empty EmployeeID covers the whole roster.
type TimesheetQuery struct {
	EmployeeID string
	FromDate   string
	ToDate     string
}

// TimesheetRow is one rendered line of a timesheet report. Work and break
// entries are flattened into a single chronological listing.
type TimesheetRow struct {
	EmployeeName    string
	EmployeeCode    string
	Date            string
	Kind            string // "work", "break_paid" or "break_unpaid"
	Department      string
	Task            string
	Shift           string
	Start           time.Time
	End             *time.Time
	DurationMinutes int
}

// ReportEntryStore exposes the range queries the report needs.
type ReportEntryStore interface {
	ListWorkEntries(ctx context.Context, query TimesheetQuery) ([]WorkEntry, error)
	ListBreakEntries(ctx context.Context, query TimesheetQuery) ([]BreakEntry, error)
}

// ReportService assembles timesheet rows for the admin export surface.
type ReportService struct {
	entries   ReportEntryStore
	employees EmployeeStore
	directory DirectoryStore
	shifts    ShiftStore
	logger    *slog.Logger
}

// NewReportService wires the service.
func NewReportService(entries ReportEntryStore, employees EmployeeStore, directory DirectoryStore, shifts ShiftStore, logger *slog.Logger) *ReportService {
	return &ReportService{
		entries:   entries,
		employees: employees,
		directory: directory,
		shifts:    shifts,
		logger:    defaultLogger(logger),
	}
}

// BuildTimesheet resolves the query into rendered rows ordered by date and
// start time. Names are resolved once per referenced id.
func (s *ReportService) BuildTimesheet(ctx context.Context, query TimesheetQuery) ([]TimesheetRow, error) {
	if s == nil {
		return nil, fmt.Errorf("ReportService is nil")
	}
	if err := validateTimesheetQuery(&query); err != nil {
		return nil, err
	}

	workEntries, err := s.entries.ListWorkEntries(ctx, query)
	if err != nil {
		return nil, err
	}
	breakEntries, err := s.entries.ListBreakEntries(ctx, query)
	if err != nil {
		return nil, err
	}

	resolver := newNameResolver(s)
	rows := make([]TimesheetRow, 0, len(workEntries)+len(breakEntries))

	for _, entry := range workEntries {
		name, code, err := resolver.employee(ctx, entry.EmployeeID)
		if err != nil {
			return nil, err
		}
		row := TimesheetRow{
			EmployeeName: name,
			EmployeeCode: code,
			Date:         entry.EntryDate,
			Kind:         "work",
			Start:        entry.Start,
			End:          entry.End,
		}
		if entry.DurationMinutes != nil {
			row.DurationMinutes = *entry.DurationMinutes
		}
		if row.Department, err = resolver.department(ctx, entry.DepartmentID); err != nil {
			return nil, err
		}
		if row.Task, err = resolver.task(ctx, entry.TaskID); err != nil {
			return nil, err
		}
		if entry.ShiftID != nil {
			if row.Shift, err = resolver.shift(ctx, *entry.ShiftID); err != nil {
				return nil, err
			}
		}
		rows = append(rows, row)
	}

	for _, entry := range breakEntries {
		name, code, err := resolver.employee(ctx, entry.EmployeeID)
		if err != nil {
			return nil, err
		}
		row := TimesheetRow{
			EmployeeName: name,
			EmployeeCode: code,
			Date:         entry.EntryDate,
			Kind:         "break_" + string(entry.Kind),
			Start:        entry.Start,
			End:          entry.End,
		}
		if entry.DurationMinutes != nil {
			row.DurationMinutes = *entry.DurationMinutes
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Date != rows[j].Date {
			return rows[i].Date < rows[j].Date
		}
		if !rows[i].Start.Equal(rows[j].Start) {
			return rows[i].Start.Before(rows[j].Start)
		}
		return rows[i].EmployeeCode < rows[j].EmployeeCode
	})

	serviceLogger(ctx, s.logger, "report", "build_timesheet").
		InfoContext(ctx, "timesheet built", "rows", len(rows))
	return rows, nil
}

func validateTimesheetQuery(query *TimesheetQuery) error {
	query.EmployeeID = strings.TrimSpace(query.EmployeeID)
	query.FromDate = strings.TrimSpace(query.FromDate)
	query.ToDate = strings.TrimSpace(query.ToDate)

	vErr := &ValidationError{}
	for field, value := range map[string]string{"from": query.FromDate, "to": query.ToDate} {
		if value == "" {
			continue
		}
		if _, err := time.Parse(timeutil.DateLayout, value); err != nil {
			vErr.add(field, "date must use the 2006-01-02 layout")
		}
	}
	if query.FromDate != "" && query.ToDate != "" && query.FromDate > query.ToDate {
		vErr.add("to", "to must not be before from")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

// nameResolver memoises id-to-name lookups for the duration of one report.
type nameResolver struct {
	service     *ReportService
	employees   map[string][2]string
	departments map[string]string
	tasks       map[string]string
	shifts      map[string]string
}

func newNameResolver(service *ReportService) *nameResolver {
	return &nameResolver{
		service:     service,
		employees:   make(map[string][2]string),
		departments: make(map[string]string),
		tasks:       make(map[string]string),
		shifts:      make(map[string]string),
	}
}

func (r *nameResolver) employee(ctx context.Context, id string) (string, string, error) {
	if cached, ok := r.employees[id]; ok {
		return cached[0], cached[1], nil
	}
	record, err := r.service.employees.GetEmployee(ctx, id)
	if err != nil {
		// Deleted employees keep their entries readable in old exports.
		if errors.Is(err, ErrNotFound) {
			r.employees[id] = [2]string{id, ""}
			return id, "", nil
		}
		return "", "", err
	}
	r.employees[id] = [2]string{record.Name, record.Code}
	return record.Name, record.Code, nil
}

func (r *nameResolver) department(ctx context.Context, id string) (string, error) {
	if cached, ok := r.departments[id]; ok {
		return cached, nil
	}
	department, err := r.service.directory.GetDepartment(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.departments[id] = id
			return id, nil
		}
		return "", err
	}
	r.departments[id] = department.Name
	return department.Name, nil
}

func (r *nameResolver) task(ctx context.Context, id string) (string, error) {
	if cached, ok := r.tasks[id]; ok {
		return cached, nil
	}
	task, err := r.service.directory.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.tasks[id] = id
			return id, nil
		}
		return "", err
	}
	r.tasks[id] = task.Name
	return task.Name, nil
}

func (r *nameResolver) shift(ctx context.Context, id string) (string, error) {
	if cached, ok := r.shifts[id]; ok {
		return cached, nil
	}
	shift, err := r.service.shifts.GetShift(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.shifts[id] = id
			return id, nil
		}
		return "", err
	}
	r.shifts[id] = shift.Name
	return shift.Name, nil
}
