package main

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/example/timeclock/internal/application"
	"github.com/example/timeclock/internal/persistence"
)

// The application services speak their own types; these adapters translate
// them to and from the persistence models.

// translateStoreError maps the persistence sentinels onto the application's
// own so the services' errors.Is checks hold across the boundary. Anything
// else passes through unchanged.
func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, persistence.ErrNotFound):
		return application.ErrNotFound
	case errors.Is(err, persistence.ErrDuplicate):
		return application.ErrAlreadyExists
	default:
		return err
	}
}

type employeeStoreAdapter struct {
	repo persistence.EmployeeRepository
}

func newEmployeeStoreAdapter(repo persistence.EmployeeRepository) *employeeStoreAdapter {
	return &employeeStoreAdapter{repo: repo}
}

func (a *employeeStoreAdapter) CreateEmployee(ctx context.Context, record application.EmployeeRecord) error {
	return translateStoreError(a.repo.CreateEmployee(ctx, toPersistenceEmployee(record)))
}

func (a *employeeStoreAdapter) UpdateEmployee(ctx context.Context, record application.EmployeeRecord) error {
	return translateStoreError(a.repo.UpdateEmployee(ctx, toPersistenceEmployee(record)))
}

func (a *employeeStoreAdapter) GetEmployee(ctx context.Context, id string) (application.EmployeeRecord, error) {
	model, err := a.repo.GetEmployee(ctx, id)
	if err != nil {
		return application.EmployeeRecord{}, translateStoreError(err)
	}
	return toApplicationEmployeeRecord(model), nil
}

func (a *employeeStoreAdapter) GetEmployeeByName(ctx context.Context, name string) (application.EmployeeRecord, error) {
	model, err := a.repo.GetEmployeeByName(ctx, name)
	if err != nil {
		return application.EmployeeRecord{}, translateStoreError(err)
	}
	return toApplicationEmployeeRecord(model), nil
}

func (a *employeeStoreAdapter) ListEmployees(ctx context.Context) ([]application.EmployeeRecord, error) {
	models, err := a.repo.ListEmployees(ctx)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	records := make([]application.EmployeeRecord, 0, len(models))
	for _, model := range models {
		records = append(records, toApplicationEmployeeRecord(model))
	}
	return records, nil
}

func (a *employeeStoreAdapter) DeleteEmployee(ctx context.Context, id string) error {
	return translateStoreError(a.repo.DeleteEmployee(ctx, id))
}

func toApplicationEmployeeRecord(model persistence.Employee) application.EmployeeRecord {
	email := ""
	if model.Email != nil {
		email = *model.Email
	}
	return application.EmployeeRecord{
		Employee: application.Employee{
			ID:            model.ID,
			Name:          model.Name,
			Code:          model.Code,
			IsTemp:        model.IsTemp,
			Position:      model.Position,
			PINSet:        model.PINHash != nil,
			PINSetAt:      cloneTime(model.PINSetAt),
			Email:         email,
			EmailVerified: model.EmailVerified,
			CreatedAt:     model.CreatedAt,
			UpdatedAt:     model.UpdatedAt,
		},
		PINHash: cloneString(model.PINHash),
	}
}

func toPersistenceEmployee(record application.EmployeeRecord) persistence.Employee {
	var email *string
	if strings.TrimSpace(record.Email) != "" {
		email = cloneString(&record.Email)
	}
	return persistence.Employee{
		ID:            record.ID,
		Name:          record.Name,
		Code:          record.Code,
		IsTemp:        record.IsTemp,
		Position:      record.Position,
		PINHash:       cloneString(record.PINHash),
		PINSetAt:      cloneTime(record.PINSetAt),
		Email:         email,
		EmailVerified: record.EmailVerified,
		CreatedAt:     record.CreatedAt,
		UpdatedAt:     record.UpdatedAt,
	}
}

type directoryStoreAdapter struct {
	departments persistence.DepartmentRepository
	tasks       persistence.TaskRepository
}

func newDirectoryStoreAdapter(departments persistence.DepartmentRepository, tasks persistence.TaskRepository) *directoryStoreAdapter {
	return &directoryStoreAdapter{departments: departments, tasks: tasks}
}

func (a *directoryStoreAdapter) CreateDepartment(ctx context.Context, department application.Department) error {
	return translateStoreError(a.departments.CreateDepartment(ctx, persistence.Department(department)))
}

func (a *directoryStoreAdapter) GetDepartment(ctx context.Context, id string) (application.Department, error) {
	model, err := a.departments.GetDepartment(ctx, id)
	if err != nil {
		return application.Department{}, translateStoreError(err)
	}
	return application.Department(model), nil
}

func (a *directoryStoreAdapter) ListDepartments(ctx context.Context) ([]application.Department, error) {
	models, err := a.departments.ListDepartments(ctx)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	departments := make([]application.Department, 0, len(models))
	for _, model := range models {
		departments = append(departments, application.Department(model))
	}
	return departments, nil
}

func (a *directoryStoreAdapter) UpdateDepartment(ctx context.Context, department application.Department) error {
	return translateStoreError(a.departments.UpdateDepartment(ctx, persistence.Department(department)))
}

func (a *directoryStoreAdapter) DeleteDepartment(ctx context.Context, id string) error {
	return translateStoreError(a.departments.DeleteDepartment(ctx, id))
}

func (a *directoryStoreAdapter) CreateTask(ctx context.Context, task application.Task) error {
	return translateStoreError(a.tasks.CreateTask(ctx, persistence.Task(task)))
}

func (a *directoryStoreAdapter) GetTask(ctx context.Context, id string) (application.Task, error) {
	model, err := a.tasks.GetTask(ctx, id)
	if err != nil {
		return application.Task{}, translateStoreError(err)
	}
	return application.Task(model), nil
}

func (a *directoryStoreAdapter) ListTasks(ctx context.Context, departmentID string) ([]application.Task, error) {
	models, err := a.tasks.ListTasks(ctx, departmentID)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	tasks := make([]application.Task, 0, len(models))
	for _, model := range models {
		tasks = append(tasks, application.Task(model))
	}
	return tasks, nil
}

func (a *directoryStoreAdapter) UpdateTask(ctx context.Context, task application.Task) error {
	return translateStoreError(a.tasks.UpdateTask(ctx, persistence.Task(task)))
}

func (a *directoryStoreAdapter) DeleteTask(ctx context.Context, id string) error {
	return translateStoreError(a.tasks.DeleteTask(ctx, id))
}

type shiftStoreAdapter struct {
	repo persistence.ShiftRepository
}

func newShiftStoreAdapter(repo persistence.ShiftRepository) *shiftStoreAdapter {
	return &shiftStoreAdapter{repo: repo}
}

func (a *shiftStoreAdapter) CreateShift(ctx context.Context, record application.Shift) error {
	return translateStoreError(a.repo.CreateShift(ctx, persistence.Shift(record)))
}

func (a *shiftStoreAdapter) GetShift(ctx context.Context, id string) (application.Shift, error) {
	model, err := a.repo.GetShift(ctx, id)
	if err != nil {
		return application.Shift{}, translateStoreError(err)
	}
	return application.Shift(model), nil
}

func (a *shiftStoreAdapter) ListShifts(ctx context.Context) ([]application.Shift, error) {
	models, err := a.repo.ListShifts(ctx)
	if err != nil {
		return nil, translateStoreError(err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	shifts := make([]application.Shift, 0, len(models))
	for _, model := range models {
		shifts = append(shifts, application.Shift(model))
	}
	return shifts, nil
}

func (a *shiftStoreAdapter) UpdateShift(ctx context.Context, record application.Shift) error {
	return translateStoreError(a.repo.UpdateShift(ctx, persistence.Shift(record)))
}

func (a *shiftStoreAdapter) DeleteShift(ctx context.Context, id string) error {
	return translateStoreError(a.repo.DeleteShift(ctx, id))
}

// entryStoreAdapter serves the engine's work and break stores plus the
// report's range queries from one place.
type entryStoreAdapter struct {
	work   persistence.WorkEntryRepository
	breaks persistence.BreakEntryRepository
}

func newEntryStoreAdapter(work persistence.WorkEntryRepository, breaks persistence.BreakEntryRepository) *entryStoreAdapter {
	return &entryStoreAdapter{work: work, breaks: breaks}
}

func (a *entryStoreAdapter) FindOpenWorkEntry(ctx context.Context, employeeID string) (application.WorkEntry, error) {
	model, err := a.work.FindOpenWorkEntry(ctx, employeeID)
	if err != nil {
		return application.WorkEntry{}, translateStoreError(err)
	}
	return toApplicationWorkEntry(model), nil
}

func (a *entryStoreAdapter) GetWorkEntry(ctx context.Context, id string) (application.WorkEntry, error) {
	model, err := a.work.GetWorkEntry(ctx, id)
	if err != nil {
		return application.WorkEntry{}, translateStoreError(err)
	}
	return toApplicationWorkEntry(model), nil
}

func (a *entryStoreAdapter) InsertWorkEntry(ctx context.Context, entry application.WorkEntry) error {
	return translateStoreError(a.work.InsertWorkEntry(ctx, toPersistenceWorkEntry(entry)))
}

func (a *entryStoreAdapter) CloseWorkEntry(ctx context.Context, id string, end time.Time, durationMinutes int) error {
	return translateStoreError(a.work.CloseWorkEntry(ctx, id, end, durationMinutes))
}

func (a *entryStoreAdapter) UpdateWorkEntry(ctx context.Context, entry application.WorkEntry) error {
	return translateStoreError(a.work.UpdateWorkEntry(ctx, toPersistenceWorkEntry(entry)))
}

func (a *entryStoreAdapter) ListWorkEntriesByDate(ctx context.Context, employeeID, date string) ([]application.WorkEntry, error) {
	models, err := a.work.ListWorkEntriesByDate(ctx, employeeID, date)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return toApplicationWorkEntries(models), nil
}

func (a *entryStoreAdapter) DeleteWorkEntry(ctx context.Context, id string) error {
	return translateStoreError(a.work.DeleteWorkEntry(ctx, id))
}

func (a *entryStoreAdapter) FindOpenBreakEntry(ctx context.Context, employeeID string) (application.BreakEntry, error) {
	model, err := a.breaks.FindOpenBreakEntry(ctx, employeeID)
	if err != nil {
		return application.BreakEntry{}, translateStoreError(err)
	}
	return toApplicationBreakEntry(model), nil
}

func (a *entryStoreAdapter) GetBreakEntry(ctx context.Context, id string) (application.BreakEntry, error) {
	model, err := a.breaks.GetBreakEntry(ctx, id)
	if err != nil {
		return application.BreakEntry{}, translateStoreError(err)
	}
	return toApplicationBreakEntry(model), nil
}

func (a *entryStoreAdapter) InsertBreakEntry(ctx context.Context, entry application.BreakEntry) error {
	return translateStoreError(a.breaks.InsertBreakEntry(ctx, toPersistenceBreakEntry(entry)))
}

func (a *entryStoreAdapter) CloseBreakEntry(ctx context.Context, id string, end time.Time, durationMinutes int) error {
	return translateStoreError(a.breaks.CloseBreakEntry(ctx, id, end, durationMinutes))
}

func (a *entryStoreAdapter) UpdateBreakEntry(ctx context.Context, entry application.BreakEntry) error {
	return translateStoreError(a.breaks.UpdateBreakEntry(ctx, toPersistenceBreakEntry(entry)))
}

func (a *entryStoreAdapter) ListBreakEntriesByDate(ctx context.Context, employeeID, date string) ([]application.BreakEntry, error) {
	models, err := a.breaks.ListBreakEntriesByDate(ctx, employeeID, date)
	if err != nil {
		return nil, translateStoreError(err)
	}
	return toApplicationBreakEntries(models), nil
}

func (a *entryStoreAdapter) DeleteBreakEntry(ctx context.Context, id string) error {
	return translateStoreError(a.breaks.DeleteBreakEntry(ctx, id))
}

func (a *entryStoreAdapter) ListWorkEntries(ctx context.Context, query application.TimesheetQuery) ([]application.WorkEntry, error) {
	models, err := a.work.ListWorkEntries(ctx, toEntryFilter(query))
	if err != nil {
		return nil, translateStoreError(err)
	}
	return toApplicationWorkEntries(models), nil
}

func (a *entryStoreAdapter) ListBreakEntries(ctx context.Context, query application.TimesheetQuery) ([]application.BreakEntry, error) {
	models, err := a.breaks.ListBreakEntries(ctx, toEntryFilter(query))
	if err != nil {
		return nil, translateStoreError(err)
	}
	return toApplicationBreakEntries(models), nil
}

func toEntryFilter(query application.TimesheetQuery) persistence.EntryFilter {
	return persistence.EntryFilter{
		EmployeeID: query.EmployeeID,
		FromDate:   query.FromDate,
		ToDate:     query.ToDate,
	}
}

func toApplicationWorkEntry(model persistence.WorkEntry) application.WorkEntry {
	return application.WorkEntry{
		ID:              model.ID,
		EmployeeID:      model.EmployeeID,
		DepartmentID:    model.DepartmentID,
		TaskID:          model.TaskID,
		Start:           model.StartTime,
		End:             cloneTime(model.EndTime),
		DurationMinutes: cloneInt(model.DurationMinutes),
		ShiftID:         cloneString(model.ShiftID),
		EntryDate:       model.EntryDate,
		CreatedAt:       model.CreatedAt,
	}
}

func toApplicationWorkEntries(models []persistence.WorkEntry) []application.WorkEntry {
	if len(models) == 0 {
		return nil
	}
	entries := make([]application.WorkEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, toApplicationWorkEntry(model))
	}
	return entries
}

func toPersistenceWorkEntry(entry application.WorkEntry) persistence.WorkEntry {
	return persistence.WorkEntry{
		ID:              entry.ID,
		EmployeeID:      entry.EmployeeID,
		DepartmentID:    entry.DepartmentID,
		TaskID:          entry.TaskID,
		StartTime:       entry.Start,
		EndTime:         cloneTime(entry.End),
		DurationMinutes: cloneInt(entry.DurationMinutes),
		ShiftID:         cloneString(entry.ShiftID),
		EntryDate:       entry.EntryDate,
		CreatedAt:       entry.CreatedAt,
	}
}

func toApplicationBreakEntry(model persistence.BreakEntry) application.BreakEntry {
	return application.BreakEntry{
		ID:              model.ID,
		EmployeeID:      model.EmployeeID,
		Kind:            application.BreakKind(model.BreakKind),
		Start:           model.StartTime,
		End:             cloneTime(model.EndTime),
		DurationMinutes: cloneInt(model.DurationMinutes),
		EntryDate:       model.EntryDate,
		CreatedAt:       model.CreatedAt,
	}
}

func toApplicationBreakEntries(models []persistence.BreakEntry) []application.BreakEntry {
	if len(models) == 0 {
		return nil
	}
	entries := make([]application.BreakEntry, 0, len(models))
	for _, model := range models {
		entries = append(entries, toApplicationBreakEntry(model))
	}
	return entries
}

func toPersistenceBreakEntry(entry application.BreakEntry) persistence.BreakEntry {
	return persistence.BreakEntry{
		ID:              entry.ID,
		EmployeeID:      entry.EmployeeID,
		BreakKind:       string(entry.Kind),
		StartTime:       entry.Start,
		EndTime:         cloneTime(entry.End),
		DurationMinutes: cloneInt(entry.DurationMinutes),
		EntryDate:       entry.EntryDate,
		CreatedAt:       entry.CreatedAt,
	}
}

type adminStoreAdapter struct {
	repo persistence.AdminRepository
}

func newAdminStoreAdapter(repo persistence.AdminRepository) *adminStoreAdapter {
	return &adminStoreAdapter{repo: repo}
}

func (a *adminStoreAdapter) GetAdminCredential(ctx context.Context, username string) (application.AdminCredentialRecord, error) {
	model, err := a.repo.GetAdminByUsername(ctx, username)
	if err != nil {
		return application.AdminCredentialRecord{}, translateStoreError(err)
	}
	return application.AdminCredentialRecord(model), nil
}

func (a *adminStoreAdapter) UpsertAdminCredential(ctx context.Context, record application.AdminCredentialRecord) error {
	return translateStoreError(a.repo.UpsertAdminCredential(ctx, persistence.AdminCredential(record)))
}

func (a *adminStoreAdapter) CreateAdminSession(ctx context.Context, session application.AdminSession) error {
	return translateStoreError(a.repo.CreateAdminSession(ctx, toPersistenceAdminSession(session)))
}

func (a *adminStoreAdapter) GetAdminSessionByToken(ctx context.Context, token string) (application.AdminSession, error) {
	model, err := a.repo.GetAdminSession(ctx, token)
	if err != nil {
		return application.AdminSession{}, translateStoreError(err)
	}
	return application.AdminSession{
		ID:        model.ID,
		Token:     model.Token,
		ExpiresAt: model.ExpiresAt,
		RevokedAt: cloneTime(model.RevokedAt),
		CreatedAt: model.CreatedAt,
	}, nil
}

func (a *adminStoreAdapter) RevokeAdminSession(ctx context.Context, id string, revokedAt time.Time) error {
	return translateStoreError(a.repo.RevokeAdminSession(ctx, id, revokedAt))
}

func (a *adminStoreAdapter) DeleteExpiredAdminSessions(ctx context.Context, cutoff time.Time) (int, error) {
	count, err := a.repo.DeleteExpiredAdminSessions(ctx, cutoff)
	return count, translateStoreError(err)
}

func toPersistenceAdminSession(session application.AdminSession) persistence.AdminSession {
	return persistence.AdminSession{
		ID:        session.ID,
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		RevokedAt: cloneTime(session.RevokedAt),
		CreatedAt: session.CreatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneInt(value *int) *int {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
