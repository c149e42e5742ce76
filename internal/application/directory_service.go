package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/timeclock/internal/timeutil"
)

// DirectoryStore captures the persistence interactions DirectoryService
// needs for departments and their tasks.
type DirectoryStore interface {
	CreateDepartment(ctx context.Context, department Department) error
	GetDepartment(ctx context.Context, id string) (Department, error)
	ListDepartments(ctx context.Context) ([]Department, error)
	UpdateDepartment(ctx context.Context, department Department) error
	DeleteDepartment(ctx context.Context, id string) error

	CreateTask(ctx context.Context, task Task) error
	GetTask(ctx context.Context, id string) (Task, error)
	ListTasks(ctx context.Context, departmentID string) ([]Task, error)
	UpdateTask(ctx context.Context, task Task) error
	DeleteTask(ctx context.Context, id string) error
}

// DirectoryService manages the department and task catalogue the kiosk
// presents at clock-in.
type DirectoryService struct {
	store       DirectoryStore
	clock       timeutil.Clock
	idGenerator func() string
	logger      *slog.Logger
}

// NewDirectoryService wires the service.
func NewDirectoryService(store DirectoryStore, clock timeutil.Clock, idGenerator func() string, logger *slog.Logger) *DirectoryService {
	if clock == nil {
		clock = timeutil.NewSystemClock(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &DirectoryService{
		store:       store,
		clock:       clock,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

// CreateDepartment registers a department.
func (s *DirectoryService) CreateDepartment(ctx context.Context, name string) (Department, error) {
	if s == nil {
		return Department{}, fmt.Errorf("DirectoryService is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Department{}, vErr
	}

	department := Department{
		ID:        s.idGenerator(),
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.CreateDepartment(ctx, department); err != nil {
		return Department{}, err
	}

	serviceLogger(ctx, s.logger, "directory", "create_department", "department_id", department.ID).
		InfoContext(ctx, "department created")
	return department, nil
}

// GetDepartment fetches one department by id.
func (s *DirectoryService) GetDepartment(ctx context.Context, id string) (Department, error) {
	if s == nil {
		return Department{}, fmt.Errorf("DirectoryService is nil")
	}
	return s.store.GetDepartment(ctx, strings.TrimSpace(id))
}

// ListDepartments returns all departments.
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]Department, error) {
	if s == nil {
		return nil, fmt.Errorf("DirectoryService is nil")
	}
	return s.store.ListDepartments(ctx)
}

// RenameDepartment changes a department's name.
func (s *DirectoryService) RenameDepartment(ctx context.Context, id, name string) (Department, error) {
	if s == nil {
		return Department{}, fmt.Errorf("DirectoryService is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Department{}, vErr
	}

	department, err := s.store.GetDepartment(ctx, strings.TrimSpace(id))
	if err != nil {
		return Department{}, err
	}
	department.Name = name
	if err := s.store.UpdateDepartment(ctx, department); err != nil {
		return Department{}, err
	}
	return department, nil
}

// DeleteDepartment removes a department. The store rejects the delete while
// tasks or entries still reference it.
func (s *DirectoryService) DeleteDepartment(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("DirectoryService is nil")
	}
	return s.store.DeleteDepartment(ctx, strings.TrimSpace(id))
}

// CreateTask registers a task under a department.
func (s *DirectoryService) CreateTask(ctx context.Context, departmentID, name string) (Task, error) {
	if s == nil {
		return Task{}, fmt.Errorf("DirectoryService is nil")
	}

	departmentID = strings.TrimSpace(departmentID)
	name = strings.TrimSpace(name)
	vErr := &ValidationError{}
	if departmentID == "" {
		vErr.add("department_id", "department is required")
	}
	if name == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		return Task{}, vErr
	}

	if _, err := s.store.GetDepartment(ctx, departmentID); err != nil {
		return Task{}, err
	}

	task := Task{
		ID:           s.idGenerator(),
		DepartmentID: departmentID,
		Name:         name,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.CreateTask(ctx, task); err != nil {
		return Task{}, err
	}

	serviceLogger(ctx, s.logger, "directory", "create_task", "task_id", task.ID).
		InfoContext(ctx, "task created", "department_id", departmentID)
	return task, nil
}

// ListTasks returns the tasks of one department.
func (s *DirectoryService) ListTasks(ctx context.Context, departmentID string) ([]Task, error) {
	if s == nil {
		return nil, fmt.Errorf("DirectoryService is nil")
	}
	departmentID = strings.TrimSpace(departmentID)
	if departmentID == "" {
		vErr := &ValidationError{}
		vErr.add("department_id", "department is required")
		return nil, vErr
	}
	return s.store.ListTasks(ctx, departmentID)
}

// RenameTask changes a task's name.
func (s *DirectoryService) RenameTask(ctx context.Context, id, name string) (Task, error) {
	if s == nil {
		return Task{}, fmt.Errorf("DirectoryService is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Task{}, vErr
	}

	task, err := s.store.GetTask(ctx, strings.TrimSpace(id))
	if err != nil {
		return Task{}, err
	}
	task.Name = name
	if err := s.store.UpdateTask(ctx, task); err != nil {
		return Task{}, err
	}
	return task, nil
}

// DeleteTask removes a task.
func (s *DirectoryService) DeleteTask(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("DirectoryService is nil")
	}
	return s.store.DeleteTask(ctx, strings.TrimSpace(id))
}

// TaskInDepartment reports whether the task exists and belongs to the
// department. It satisfies the clock-in validation dependency.
func (s *DirectoryService) TaskInDepartment(ctx context.Context, departmentID, taskID string) (bool, error) {
	if s == nil {
		return false, fmt.Errorf("DirectoryService is nil")
	}
	task, err := s.store.GetTask(ctx, strings.TrimSpace(taskID))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return task.DepartmentID == strings.TrimSpace(departmentID), nil
}
