package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/example/timeclock/internal/shift"
	"github.com/example/timeclock/internal/timeutil"
)

// ShiftStore captures the persistence interactions ShiftService needs.
// ListShifts must return shifts in creation order; the first configured
// shift doubles as the resolution fallback.
type ShiftStore interface {
	CreateShift(ctx context.Context, record Shift) error
	GetShift(ctx context.Context, id string) (Shift, error)
	ListShifts(ctx context.Context) ([]Shift, error)
	UpdateShift(ctx context.Context, record Shift) error
	DeleteShift(ctx context.Context, id string) error
}

// ShiftService manages the configured shift windows.
type ShiftService struct {
	store       ShiftStore
	clock       timeutil.Clock
	idGenerator func() string
	logger      *slog.Logger
}

// NewShiftService wires the service.
func NewShiftService(store ShiftStore, clock timeutil.Clock, idGenerator func() string, logger *slog.Logger) *ShiftService {
	if clock == nil {
		clock = timeutil.NewSystemClock(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	return &ShiftService{
		store:       store,
		clock:       clock,
		idGenerator: idGenerator,
		logger:      defaultLogger(logger),
	}
}

// CreateShift registers a shift window.
func (s *ShiftService) CreateShift(ctx context.Context, input ShiftInput) (Shift, error) {
	if s == nil {
		return Shift{}, fmt.Errorf("ShiftService is nil")
	}
	if err := validateShiftInput(&input); err != nil {
		return Shift{}, err
	}

	record := Shift{
		ID:        s.idGenerator(),
		Name:      input.Name,
		StartTime: input.StartTime,
		EndTime:   input.EndTime,
		Color:     input.Color,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.CreateShift(ctx, record); err != nil {
		return Shift{}, err
	}

	serviceLogger(ctx, s.logger, "shift", "create", "shift_id", record.ID).
		InfoContext(ctx, "shift created", "window", record.StartTime+"-"+record.EndTime)
	return record, nil
}

// GetShift fetches one shift by id.
func (s *ShiftService) GetShift(ctx context.Context, id string) (Shift, error) {
	if s == nil {
		return Shift{}, fmt.Errorf("ShiftService is nil")
	}
	return s.store.GetShift(ctx, strings.TrimSpace(id))
}

// ListShifts returns all shifts in creation order. It satisfies the
// clock-in shift resolution dependency.
func (s *ShiftService) ListShifts(ctx context.Context) ([]Shift, error) {
	if s == nil {
		return nil, fmt.Errorf("ShiftService is nil")
	}
	return s.store.ListShifts(ctx)
}

// UpdateShift changes a shift's attributes. Entries already labelled with
// the shift keep their label.
func (s *ShiftService) UpdateShift(ctx context.Context, id string, input ShiftInput) (Shift, error) {
	if s == nil {
		return Shift{}, fmt.Errorf("ShiftService is nil")
	}
	if err := validateShiftInput(&input); err != nil {
		return Shift{}, err
	}

	record, err := s.store.GetShift(ctx, strings.TrimSpace(id))
	if err != nil {
		return Shift{}, err
	}
	record.Name = input.Name
	record.StartTime = input.StartTime
	record.EndTime = input.EndTime
	record.Color = input.Color

	if err := s.store.UpdateShift(ctx, record); err != nil {
		return Shift{}, err
	}
	return record, nil
}

// DeleteShift removes a shift window.
func (s *ShiftService) DeleteShift(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("ShiftService is nil")
	}
	return s.store.DeleteShift(ctx, strings.TrimSpace(id))
}

func validateShiftInput(input *ShiftInput) error {
	input.Name = strings.TrimSpace(input.Name)
	input.StartTime = strings.TrimSpace(input.StartTime)
	input.EndTime = strings.TrimSpace(input.EndTime)
	input.Color = strings.TrimSpace(input.Color)

	vErr := &ValidationError{}
	if input.Name == "" {
		vErr.add("name", "name is required")
	}
	if _, err := shift.ParseMinutes(input.StartTime); err != nil {
		vErr.add("start_time", "start time must use the HH:MM layout")
	}
	if _, err := shift.ParseMinutes(input.EndTime); err != nil {
		vErr.add("end_time", "end time must use the HH:MM layout")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
