package http

import (
	"context"
	"log/slog"

	"github.com/example/timeclock/internal/application"
	"github.com/example/timeclock/internal/logging"
)

type contextKey string

const (
	employeeIDContextKey   contextKey = "employee_id"
	departmentIDContextKey contextKey = "department_id"
	taskIDContextKey       contextKey = "task_id"
	shiftIDContextKey      contextKey = "shift_id"
	entryIDContextKey      contextKey = "entry_id"
	sessionContextKey      contextKey = "admin_session"
)

func ContextWithEmployeeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, employeeIDContextKey, id)
}

func EmployeeIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(employeeIDContextKey).(string)
	return id, ok
}

func ContextWithDepartmentID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, departmentIDContextKey, id)
}

func DepartmentIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(departmentIDContextKey).(string)
	return id, ok
}

func ContextWithTaskID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, taskIDContextKey, id)
}

func TaskIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(taskIDContextKey).(string)
	return id, ok
}

func ContextWithShiftID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, shiftIDContextKey, id)
}

func ShiftIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(shiftIDContextKey).(string)
	return id, ok
}

func ContextWithEntryID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, entryIDContextKey, id)
}

func EntryIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(entryIDContextKey).(string)
	return id, ok
}

func ContextWithSession(ctx context.Context, session application.AdminSession) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

func SessionFromContext(ctx context.Context) (application.AdminSession, bool) {
	session, ok := ctx.Value(sessionContextKey).(application.AdminSession)
	return session, ok
}

// ContextWithLogger stores the request-scoped logger where the application
// services can pick it up too.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}
