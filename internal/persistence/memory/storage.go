// Package memory provides a map-backed implementation of every persistence
// repository. It backs handler and service tests and small single-node
// deployments that do not need a database file.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/timeclock/internal/persistence"
)

// Storage implements the persistence repositories in memory.
type Storage struct {
	mu           sync.RWMutex
	employees    map[string]persistence.Employee
	departments  map[string]persistence.Department
	tasks        map[string]persistence.Task
	shifts       map[string]persistence.Shift
	workEntries  map[string]persistence.WorkEntry
	breakEntries map[string]persistence.BreakEntry
	credentials  map[string]persistence.AdminCredential
	sessions     map[string]persistence.AdminSession
}

// Open returns a new empty Storage.
func Open() *Storage {
	return &Storage{
		employees:    make(map[string]persistence.Employee),
		departments:  make(map[string]persistence.Department),
		tasks:        make(map[string]persistence.Task),
		shifts:       make(map[string]persistence.Shift),
		workEntries:  make(map[string]persistence.WorkEntry),
		breakEntries: make(map[string]persistence.BreakEntry),
		credentials:  make(map[string]persistence.AdminCredential),
		sessions:     make(map[string]persistence.AdminSession),
	}
}

// Close releases resources. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// Migrate initialises the storage. No-op for the in-memory implementation.
func (s *Storage) Migrate(context.Context) error {
	return nil
}

// --- EmployeeRepository implementation ---

func (s *Storage) CreateEmployee(_ context.Context, employee persistence.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[employee.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.employees {
		if existing.Name == employee.Name || existing.Code == employee.Code {
			return persistence.ErrDuplicate
		}
	}

	s.employees[employee.ID] = cloneEmployee(employee)
	return nil
}

func (s *Storage) UpdateEmployee(_ context.Context, employee persistence.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[employee.ID]; !ok {
		return persistence.ErrNotFound
	}
	for id, existing := range s.employees {
		if id != employee.ID && existing.Name == employee.Name {
			return persistence.ErrDuplicate
		}
	}

	s.employees[employee.ID] = cloneEmployee(employee)
	return nil
}

func (s *Storage) GetEmployee(_ context.Context, id string) (persistence.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employee, ok := s.employees[id]
	if !ok {
		return persistence.Employee{}, persistence.ErrNotFound
	}
	return cloneEmployee(employee), nil
}

func (s *Storage) GetEmployeeByName(_ context.Context, name string) (persistence.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, employee := range s.employees {
		if employee.Name == name {
			return cloneEmployee(employee), nil
		}
	}
	return persistence.Employee{}, persistence.ErrNotFound
}

func (s *Storage) ListEmployees(_ context.Context) ([]persistence.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	employees := make([]persistence.Employee, 0, len(s.employees))
	for _, employee := range s.employees {
		employees = append(employees, cloneEmployee(employee))
	}
	sort.Slice(employees, func(i, j int) bool {
		if employees[i].CreatedAt.Equal(employees[j].CreatedAt) {
			return employees[i].ID < employees[j].ID
		}
		return employees[i].CreatedAt.Before(employees[j].CreatedAt)
	})
	return employees, nil
}

func (s *Storage) DeleteEmployee(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.employees, id)

	for entryID, entry := range s.workEntries {
		if entry.EmployeeID == id {
			delete(s.workEntries, entryID)
		}
	}
	for entryID, entry := range s.breakEntries {
		if entry.EmployeeID == id {
			delete(s.breakEntries, entryID)
		}
	}
	return nil
}

// --- DepartmentRepository implementation ---

func (s *Storage) CreateDepartment(_ context.Context, department persistence.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[department.ID]; ok {
		return persistence.ErrDuplicate
	}
	for _, existing := range s.departments {
		if existing.Name == department.Name {
			return persistence.ErrDuplicate
		}
	}

	s.departments[department.ID] = department
	return nil
}

func (s *Storage) GetDepartment(_ context.Context, id string) (persistence.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	department, ok := s.departments[id]
	if !ok {
		return persistence.Department{}, persistence.ErrNotFound
	}
	return department, nil
}

func (s *Storage) ListDepartments(_ context.Context) ([]persistence.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	departments := make([]persistence.Department, 0, len(s.departments))
	for _, department := range s.departments {
		departments = append(departments, department)
	}
	sort.Slice(departments, func(i, j int) bool {
		if departments[i].CreatedAt.Equal(departments[j].CreatedAt) {
			return departments[i].ID < departments[j].ID
		}
		return departments[i].CreatedAt.Before(departments[j].CreatedAt)
	})
	return departments, nil
}

func (s *Storage) UpdateDepartment(_ context.Context, department persistence.Department) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[department.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.departments[department.ID] = department
	return nil
}

func (s *Storage) DeleteDepartment(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.departments[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, task := range s.tasks {
		if task.DepartmentID == id {
			return persistence.ErrForeignKeyViolation
		}
	}

	delete(s.departments, id)
	return nil
}

// --- TaskRepository implementation ---

func (s *Storage) CreateTask(_ context.Context, task persistence.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.departments[task.DepartmentID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	s.tasks[task.ID] = task
	return nil
}

func (s *Storage) GetTask(_ context.Context, id string) (persistence.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return persistence.Task{}, persistence.ErrNotFound
	}
	return task, nil
}

func (s *Storage) ListTasks(_ context.Context, departmentID string) ([]persistence.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tasks := make([]persistence.Task, 0)
	for _, task := range s.tasks {
		if task.DepartmentID == departmentID {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID < tasks[j].ID
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (s *Storage) UpdateTask(_ context.Context, task persistence.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[task.ID]; !ok {
		return persistence.ErrNotFound
	}
	if _, ok := s.departments[task.DepartmentID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	s.tasks[task.ID] = task
	return nil
}

func (s *Storage) DeleteTask(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, entry := range s.workEntries {
		if entry.TaskID == id {
			return persistence.ErrForeignKeyViolation
		}
	}

	delete(s.tasks, id)
	return nil
}

// --- ShiftRepository implementation ---

func (s *Storage) CreateShift(_ context.Context, shift persistence.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shifts[shift.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.shifts[shift.ID] = shift
	return nil
}

func (s *Storage) UpdateShift(_ context.Context, shift persistence.Shift) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.shifts[shift.ID]
	if !ok {
		return persistence.ErrNotFound
	}
	shift.CreatedAt = existing.CreatedAt
	s.shifts[shift.ID] = shift
	return nil
}

func (s *Storage) GetShift(_ context.Context, id string) (persistence.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shift, ok := s.shifts[id]
	if !ok {
		return persistence.Shift{}, persistence.ErrNotFound
	}
	return shift, nil
}

func (s *Storage) ListShifts(_ context.Context) ([]persistence.Shift, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	shifts := make([]persistence.Shift, 0, len(s.shifts))
	for _, shift := range s.shifts {
		shifts = append(shifts, shift)
	}
	sort.Slice(shifts, func(i, j int) bool {
		if shifts[i].CreatedAt.Equal(shifts[j].CreatedAt) {
			return shifts[i].ID < shifts[j].ID
		}
		return shifts[i].CreatedAt.Before(shifts[j].CreatedAt)
	})
	return shifts, nil
}

func (s *Storage) DeleteShift(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.shifts[id]; !ok {
		return persistence.ErrNotFound
	}
	for _, entry := range s.workEntries {
		if entry.ShiftID != nil && *entry.ShiftID == id {
			return persistence.ErrForeignKeyViolation
		}
	}

	delete(s.shifts, id)
	return nil
}

// --- WorkEntryRepository implementation ---

func (s *Storage) FindOpenWorkEntry(_ context.Context, employeeID string) (persistence.WorkEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.workEntries {
		if entry.EmployeeID == employeeID && entry.EndTime == nil {
			return cloneWorkEntry(entry), nil
		}
	}
	return persistence.WorkEntry{}, persistence.ErrNotFound
}

func (s *Storage) GetWorkEntry(_ context.Context, id string) (persistence.WorkEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.workEntries[id]
	if !ok {
		return persistence.WorkEntry{}, persistence.ErrNotFound
	}
	return cloneWorkEntry(entry), nil
}

func (s *Storage) InsertWorkEntry(_ context.Context, entry persistence.WorkEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workEntries[entry.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.employees[entry.EmployeeID]; !ok {
		return persistence.ErrForeignKeyViolation
	}

	s.workEntries[entry.ID] = cloneWorkEntry(entry)
	return nil
}

func (s *Storage) CloseWorkEntry(_ context.Context, id string, end time.Time, durationMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.workEntries[id]
	if !ok || entry.EndTime != nil {
		return persistence.ErrNotFound
	}
	entry.EndTime = &end
	entry.DurationMinutes = &durationMinutes
	s.workEntries[id] = entry
	return nil
}

func (s *Storage) UpdateWorkEntry(_ context.Context, entry persistence.WorkEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workEntries[entry.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.workEntries[entry.ID] = cloneWorkEntry(entry)
	return nil
}

func (s *Storage) ListWorkEntriesByDate(_ context.Context, employeeID, date string) ([]persistence.WorkEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]persistence.WorkEntry, 0)
	for _, entry := range s.workEntries {
		if entry.EmployeeID == employeeID && entry.EntryDate == date {
			entries = append(entries, cloneWorkEntry(entry))
		}
	}
	sortWorkEntries(entries)
	return entries, nil
}

func (s *Storage) ListWorkEntries(_ context.Context, filter persistence.EntryFilter) ([]persistence.WorkEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]persistence.WorkEntry, 0)
	for _, entry := range s.workEntries {
		if !matchesFilter(entry.EmployeeID, entry.EntryDate, filter) {
			continue
		}
		entries = append(entries, cloneWorkEntry(entry))
	}
	sortWorkEntries(entries)
	return entries, nil
}

func (s *Storage) DeleteWorkEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.workEntries[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.workEntries, id)
	return nil
}

// --- BreakEntryRepository implementation ---

func (s *Storage) FindOpenBreakEntry(_ context.Context, employeeID string) (persistence.BreakEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.breakEntries {
		if entry.EmployeeID == employeeID && entry.EndTime == nil {
			return cloneBreakEntry(entry), nil
		}
	}
	return persistence.BreakEntry{}, persistence.ErrNotFound
}

func (s *Storage) GetBreakEntry(_ context.Context, id string) (persistence.BreakEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.breakEntries[id]
	if !ok {
		return persistence.BreakEntry{}, persistence.ErrNotFound
	}
	return cloneBreakEntry(entry), nil
}

func (s *Storage) InsertBreakEntry(_ context.Context, entry persistence.BreakEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.breakEntries[entry.ID]; ok {
		return persistence.ErrDuplicate
	}
	if _, ok := s.employees[entry.EmployeeID]; !ok {
		return persistence.ErrForeignKeyViolation
	}
	if entry.BreakKind != "paid" && entry.BreakKind != "unpaid" {
		return persistence.ErrConstraintViolation
	}

	s.breakEntries[entry.ID] = cloneBreakEntry(entry)
	return nil
}

func (s *Storage) CloseBreakEntry(_ context.Context, id string, end time.Time, durationMinutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.breakEntries[id]
	if !ok || entry.EndTime != nil {
		return persistence.ErrNotFound
	}
	entry.EndTime = &end
	entry.DurationMinutes = &durationMinutes
	s.breakEntries[id] = entry
	return nil
}

func (s *Storage) UpdateBreakEntry(_ context.Context, entry persistence.BreakEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.breakEntries[entry.ID]; !ok {
		return persistence.ErrNotFound
	}
	s.breakEntries[entry.ID] = cloneBreakEntry(entry)
	return nil
}

func (s *Storage) ListBreakEntriesByDate(_ context.Context, employeeID, date string) ([]persistence.BreakEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]persistence.BreakEntry, 0)
	for _, entry := range s.breakEntries {
		if entry.EmployeeID == employeeID && entry.EntryDate == date {
			entries = append(entries, cloneBreakEntry(entry))
		}
	}
	sortBreakEntries(entries)
	return entries, nil
}

func (s *Storage) ListBreakEntries(_ context.Context, filter persistence.EntryFilter) ([]persistence.BreakEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]persistence.BreakEntry, 0)
	for _, entry := range s.breakEntries {
		if !matchesFilter(entry.EmployeeID, entry.EntryDate, filter) {
			continue
		}
		entries = append(entries, cloneBreakEntry(entry))
	}
	sortBreakEntries(entries)
	return entries, nil
}

func (s *Storage) DeleteBreakEntry(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.breakEntries[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(s.breakEntries, id)
	return nil
}

// --- AdminRepository implementation ---

func (s *Storage) UpsertAdminCredential(_ context.Context, credential persistence.AdminCredential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.credentials[credential.Username]
	if ok {
		existing.PasswordHash = credential.PasswordHash
		s.credentials[credential.Username] = existing
		return nil
	}
	s.credentials[credential.Username] = credential
	return nil
}

func (s *Storage) GetAdminByUsername(_ context.Context, username string) (persistence.AdminCredential, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	credential, ok := s.credentials[username]
	if !ok {
		return persistence.AdminCredential{}, persistence.ErrNotFound
	}
	return credential, nil
}

func (s *Storage) CreateAdminSession(_ context.Context, session persistence.AdminSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.ID]; ok {
		return persistence.ErrDuplicate
	}
	s.sessions[session.ID] = cloneAdminSession(session)
	return nil
}

func (s *Storage) GetAdminSession(_ context.Context, token string) (persistence.AdminSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, session := range s.sessions {
		if session.Token == token {
			return cloneAdminSession(session), nil
		}
	}
	return persistence.AdminSession{}, persistence.ErrNotFound
}

func (s *Storage) RevokeAdminSession(_ context.Context, id string, revokedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok || session.RevokedAt != nil {
		return persistence.ErrNotFound
	}
	session.RevokedAt = &revokedAt
	s.sessions[id] = session
	return nil
}

func (s *Storage) DeleteExpiredAdminSessions(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, session := range s.sessions {
		if !session.ExpiresAt.After(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// --- Helpers ---

func matchesFilter(employeeID, entryDate string, filter persistence.EntryFilter) bool {
	if filter.EmployeeID != "" && employeeID != filter.EmployeeID {
		return false
	}
	if filter.FromDate != "" && entryDate < filter.FromDate {
		return false
	}
	if filter.ToDate != "" && entryDate > filter.ToDate {
		return false
	}
	return true
}

func sortWorkEntries(entries []persistence.WorkEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].StartTime.Equal(entries[j].StartTime) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].StartTime.Before(entries[j].StartTime)
	})
}

func sortBreakEntries(entries []persistence.BreakEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].StartTime.Equal(entries[j].StartTime) {
			return entries[i].ID < entries[j].ID
		}
		return entries[i].StartTime.Before(entries[j].StartTime)
	})
}

func cloneEmployee(employee persistence.Employee) persistence.Employee {
	employee.PINHash = cloneStringPtr(employee.PINHash)
	employee.PINSetAt = cloneTimePtr(employee.PINSetAt)
	employee.Email = cloneStringPtr(employee.Email)
	return employee
}

func cloneWorkEntry(entry persistence.WorkEntry) persistence.WorkEntry {
	entry.EndTime = cloneTimePtr(entry.EndTime)
	entry.DurationMinutes = cloneIntPtr(entry.DurationMinutes)
	entry.ShiftID = cloneStringPtr(entry.ShiftID)
	return entry
}

func cloneBreakEntry(entry persistence.BreakEntry) persistence.BreakEntry {
	entry.EndTime = cloneTimePtr(entry.EndTime)
	entry.DurationMinutes = cloneIntPtr(entry.DurationMinutes)
	return entry
}

func cloneAdminSession(session persistence.AdminSession) persistence.AdminSession {
	session.RevokedAt = cloneTimePtr(session.RevokedAt)
	return session
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}

func cloneIntPtr(value *int) *int {
	if value == nil {
		return nil
	}
	copied := *value
	return &copied
}
