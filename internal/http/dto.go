package http

import (
	"time"

	"github.com/example/timeclock/internal/application"
)

// Wire representations shared across handlers. Open entries carry no end or
// duration fields; JSON omits them entirely.

type workEntryDTO struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	DepartmentID    string     `json:"department_id"`
	TaskID          string     `json:"task_id"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	ShiftID         *string    `json:"shift_id,omitempty"`
	EntryDate       string     `json:"entry_date"`
}

func toWorkEntryDTO(entry application.WorkEntry) workEntryDTO {
	return workEntryDTO{
		ID:              entry.ID,
		EmployeeID:      entry.EmployeeID,
		DepartmentID:    entry.DepartmentID,
		TaskID:          entry.TaskID,
		Start:           entry.Start,
		End:             entry.End,
		DurationMinutes: entry.DurationMinutes,
		ShiftID:         entry.ShiftID,
		EntryDate:       entry.EntryDate,
	}
}

func toWorkEntryDTOPtr(entry *application.WorkEntry) *workEntryDTO {
	if entry == nil {
		return nil
	}
	dto := toWorkEntryDTO(*entry)
	return &dto
}

type breakEntryDTO struct {
	ID              string     `json:"id"`
	EmployeeID      string     `json:"employee_id"`
	Kind            string     `json:"kind"`
	Start           time.Time  `json:"start"`
	End             *time.Time `json:"end,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	EntryDate       string     `json:"entry_date"`
}

func toBreakEntryDTO(entry application.BreakEntry) breakEntryDTO {
	return breakEntryDTO{
		ID:              entry.ID,
		EmployeeID:      entry.EmployeeID,
		Kind:            string(entry.Kind),
		Start:           entry.Start,
		End:             entry.End,
		DurationMinutes: entry.DurationMinutes,
		EntryDate:       entry.EntryDate,
	}
}

func toBreakEntryDTOPtr(entry *application.BreakEntry) *breakEntryDTO {
	if entry == nil {
		return nil
	}
	dto := toBreakEntryDTO(*entry)
	return &dto
}

type breakWarningDTO struct {
	DurationMinutes int `json:"duration_minutes"`
	LimitMinutes    int `json:"limit_minutes"`
}

func toBreakWarningDTO(warning *application.BreakOverLimit) *breakWarningDTO {
	if warning == nil {
		return nil
	}
	return &breakWarningDTO{
		DurationMinutes: warning.DurationMinutes,
		LimitMinutes:    warning.LimitMinutes,
	}
}

type employeeDTO struct {
	ID       string     `json:"id"`
	Name     string     `json:"name"`
	Code     string     `json:"code"`
	Position string     `json:"position,omitempty"`
	IsTemp   bool       `json:"is_temp"`
	Email    string     `json:"email,omitempty"`
	PINSet   bool       `json:"pin_set"`
	PINSetAt *time.Time `json:"pin_set_at,omitempty"`
}

func toEmployeeDTO(employee application.Employee) employeeDTO {
	return employeeDTO{
		ID:       employee.ID,
		Name:     employee.Name,
		Code:     employee.Code,
		Position: employee.Position,
		IsTemp:   employee.IsTemp,
		Email:    employee.Email,
		PINSet:   employee.PINSet,
		PINSetAt: employee.PINSetAt,
	}
}

type departmentDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func toDepartmentDTO(department application.Department) departmentDTO {
	return departmentDTO{ID: department.ID, Name: department.Name}
}

type taskDTO struct {
	ID           string `json:"id"`
	DepartmentID string `json:"department_id"`
	Name         string `json:"name"`
}

func toTaskDTO(task application.Task) taskDTO {
	return taskDTO{ID: task.ID, DepartmentID: task.DepartmentID, Name: task.Name}
}

type shiftDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Color     string `json:"color,omitempty"`
}

func toShiftDTO(shift application.Shift) shiftDTO {
	return shiftDTO{
		ID:        shift.ID,
		Name:      shift.Name,
		StartTime: shift.StartTime,
		EndTime:   shift.EndTime,
		Color:     shift.Color,
	}
}
