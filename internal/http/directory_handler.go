package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/example/timeclock/internal/application"
)

var (
	errMissingDepartmentID = errors.New("a department id is required")
	errMissingTaskID       = errors.New("a task id is required")
)

// DirectoryReader is the kiosk-facing read slice of the directory.
type DirectoryReader interface {
	ListDepartments(ctx context.Context) ([]application.Department, error)
	ListTasks(ctx context.Context, departmentID string) ([]application.Task, error)
}

// DirectoryAdminService adds the write operations for administrators.
type DirectoryAdminService interface {
	DirectoryReader
	CreateDepartment(ctx context.Context, name string) (application.Department, error)
	RenameDepartment(ctx context.Context, id, name string) (application.Department, error)
	DeleteDepartment(ctx context.Context, id string) error
	CreateTask(ctx context.Context, departmentID, name string) (application.Task, error)
	RenameTask(ctx context.Context, id, name string) (application.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// DirectoryHandler serves both the public directory reads used by the kiosk
// and the administrator writes.
type DirectoryHandler struct {
	service   DirectoryAdminService
	responder responder
	logger    *slog.Logger
}

func NewDirectoryHandler(service DirectoryAdminService, logger *slog.Logger) *DirectoryHandler {
	logger = defaultLogger(logger)
	return &DirectoryHandler{
		service:   service,
		responder: newResponder(logger),
		logger:    logger,
	}
}

func (h *DirectoryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, "directory", operation, attrs...)
}

// ListDepartments returns all departments.
func (h *DirectoryHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	departments, err := h.service.ListDepartments(ctx)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	dtos := make([]departmentDTO, 0, len(departments))
	for _, department := range departments {
		dtos = append(dtos, toDepartmentDTO(department))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, dtos)
}

// ListTasks returns the tasks of one department.
func (h *DirectoryHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	departmentID, ok := DepartmentIDFromContext(ctx)
	if !ok || departmentID == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingDepartmentID)
		return
	}

	tasks, err := h.service.ListTasks(ctx, departmentID)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	dtos := make([]taskDTO, 0, len(tasks))
	for _, task := range tasks {
		dtos = append(dtos, toTaskDTO(task))
	}
	h.responder.writeJSON(ctx, w, http.StatusOK, dtos)
}

type nameRequest struct {
	Name string `json:"name"`
}

// CreateDepartment adds a department.
func (h *DirectoryHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	department, err := h.service.CreateDepartment(ctx, req.Name)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "create_department", "department_id", department.ID).
		InfoContext(ctx, "department created")
	h.responder.writeJSON(ctx, w, http.StatusCreated, toDepartmentDTO(department))
}

// RenameDepartment changes a department's name.
func (h *DirectoryHandler) RenameDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := DepartmentIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingDepartmentID)
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	department, err := h.service.RenameDepartment(ctx, id, req.Name)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "rename_department", "department_id", id).InfoContext(ctx, "department renamed")
	h.responder.writeJSON(ctx, w, http.StatusOK, toDepartmentDTO(department))
}

// DeleteDepartment removes an empty department.
func (h *DirectoryHandler) DeleteDepartment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := DepartmentIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingDepartmentID)
		return
	}

	if err := h.service.DeleteDepartment(ctx, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "delete_department", "department_id", id).InfoContext(ctx, "department deleted")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}

type createTaskRequest struct {
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
}

// CreateTask adds a task under a department.
func (h *DirectoryHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	task, err := h.service.CreateTask(ctx, req.DepartmentID, req.Name)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "create_task", "task_id", task.ID).InfoContext(ctx, "task created")
	h.responder.writeJSON(ctx, w, http.StatusCreated, toTaskDTO(task))
}

// RenameTask changes a task's name.
func (h *DirectoryHandler) RenameTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := TaskIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingTaskID)
		return
	}

	var req nameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	task, err := h.service.RenameTask(ctx, id, req.Name)
	if err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "rename_task", "task_id", id).InfoContext(ctx, "task renamed")
	h.responder.writeJSON(ctx, w, http.StatusOK, toTaskDTO(task))
}

// DeleteTask removes a task.
func (h *DirectoryHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h == nil || h.service == nil {
		h.responder.writeError(ctx, w, http.StatusInternalServerError, nil)
		return
	}

	id, ok := TaskIDFromContext(ctx)
	if !ok || id == "" {
		h.responder.writeError(ctx, w, http.StatusBadRequest, errMissingTaskID)
		return
	}

	if err := h.service.DeleteTask(ctx, id); err != nil {
		h.responder.handleServiceError(ctx, w, err)
		return
	}

	h.log(ctx, "delete_task", "task_id", id).InfoContext(ctx, "task deleted")
	h.responder.writeJSON(ctx, w, http.StatusNoContent, nil)
}
