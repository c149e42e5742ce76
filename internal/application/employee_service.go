package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/example/timeclock/internal/timeutil"
)

// EmployeeRecord is the storage view of an employee, carrying the PIN hash
// that the service never exposes to callers.
type EmployeeRecord struct {
	Employee
	PINHash *string
}

// EmployeeStore captures the persistence interactions EmployeeService needs.
type EmployeeStore interface {
	CreateEmployee(ctx context.Context, record EmployeeRecord) error
	UpdateEmployee(ctx context.Context, record EmployeeRecord) error
	GetEmployee(ctx context.Context, id string) (EmployeeRecord, error)
	GetEmployeeByName(ctx context.Context, name string) (EmployeeRecord, error)
	ListEmployees(ctx context.Context) ([]EmployeeRecord, error)
	DeleteEmployee(ctx context.Context, id string) error
}

// EmployeeService manages the worker roster and the kiosk PIN lifecycle.
type EmployeeService struct {
	store       EmployeeStore
	clock       timeutil.Clock
	idGenerator func() string
	codeRandom  func() int
	hashParams  Argon2idParams
	logger      *slog.Logger
}

// NewEmployeeService wires the service. codeRandom supplies the numeric
// suffix for generated employee codes; nil uses math/rand.
func NewEmployeeService(store EmployeeStore, clock timeutil.Clock, idGenerator func() string, codeRandom func() int, logger *slog.Logger) *EmployeeService {
	if clock == nil {
		clock = timeutil.NewSystemClock(nil)
	}
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if codeRandom == nil {
		codeRandom = func() int { return 1000 + rand.Intn(9000) }
	}
	return &EmployeeService{
		store:       store,
		clock:       clock,
		idGenerator: idGenerator,
		codeRandom:  codeRandom,
		hashParams:  DefaultArgon2idParams,
		logger:      defaultLogger(logger),
	}
}

// CreateEmployee registers a worker and assigns a generated employee code.
func (s *EmployeeService) CreateEmployee(ctx context.Context, input EmployeeInput) (Employee, error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}

	name := strings.TrimSpace(input.Name)
	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "name is required")
	}
	if email := strings.TrimSpace(input.Email); email != "" && !strings.Contains(email, "@") {
		vErr.add("email", "email is malformed")
	}
	if vErr.HasErrors() {
		return Employee{}, vErr
	}

	if _, err := s.store.GetEmployeeByName(ctx, name); err == nil {
		return Employee{}, ErrAlreadyExists
	} else if !errors.Is(err, ErrNotFound) {
		return Employee{}, err
	}

	now := s.clock.Now()
	record := EmployeeRecord{
		Employee: Employee{
			ID:        s.idGenerator(),
			Name:      name,
			Code:      generateEmployeeCode(name, s.codeRandom),
			IsTemp:    input.IsTemp,
			Position:  strings.TrimSpace(input.Position),
			Email:     strings.TrimSpace(input.Email),
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	if err := s.store.CreateEmployee(ctx, record); err != nil {
		return Employee{}, err
	}

	serviceLogger(ctx, s.logger, "employee", "create", "employee_id", record.ID).
		InfoContext(ctx, "employee created", "code", record.Code)

	return record.Employee, nil
}

// UpdateEmployee changes a worker's editable attributes. The code and the
// PIN lifecycle fields are not editable through this path.
func (s *EmployeeService) UpdateEmployee(ctx context.Context, id string, input EmployeeInput) (Employee, error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}

	record, err := s.store.GetEmployee(ctx, strings.TrimSpace(id))
	if err != nil {
		return Employee{}, err
	}

	name := strings.TrimSpace(input.Name)
	vErr := &ValidationError{}
	if name == "" {
		vErr.add("name", "name is required")
	}
	if vErr.HasErrors() {
		return Employee{}, vErr
	}

	if name != record.Name {
		if _, err := s.store.GetEmployeeByName(ctx, name); err == nil {
			return Employee{}, ErrAlreadyExists
		} else if !errors.Is(err, ErrNotFound) {
			return Employee{}, err
		}
	}

	record.Name = name
	record.Position = strings.TrimSpace(input.Position)
	record.IsTemp = input.IsTemp
	record.Email = strings.TrimSpace(input.Email)
	record.UpdatedAt = s.clock.Now()

	if err := s.store.UpdateEmployee(ctx, record); err != nil {
		return Employee{}, err
	}
	return record.Employee, nil
}

// GetEmployee fetches one worker by id.
func (s *EmployeeService) GetEmployee(ctx context.Context, id string) (Employee, error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}
	record, err := s.store.GetEmployee(ctx, strings.TrimSpace(id))
	if err != nil {
		return Employee{}, err
	}
	return record.Employee, nil
}

// ListEmployees returns the full roster.
func (s *EmployeeService) ListEmployees(ctx context.Context) ([]Employee, error) {
	if s == nil {
		return nil, fmt.Errorf("EmployeeService is nil")
	}
	records, err := s.store.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	employees := make([]Employee, 0, len(records))
	for _, record := range records {
		employees = append(employees, record.Employee)
	}
	return employees, nil
}

// DeleteEmployee removes a worker from the roster.
func (s *EmployeeService) DeleteEmployee(ctx context.Context, id string) error {
	if s == nil {
		return fmt.Errorf("EmployeeService is nil")
	}
	return s.store.DeleteEmployee(ctx, strings.TrimSpace(id))
}

// IdentifyByName is the first kiosk login step. The returned PINSet flag
// tells the kiosk whether to prompt for PIN entry or PIN setup.
func (s *EmployeeService) IdentifyByName(ctx context.Context, name string) (Employee, error) {
	if s == nil {
		return Employee{}, fmt.Errorf("EmployeeService is nil")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return Employee{}, vErr
	}
	record, err := s.store.GetEmployeeByName(ctx, name)
	if err != nil {
		return Employee{}, err
	}
	return record.Employee, nil
}

// SetupPIN sets a worker's PIN for the first time. A worker with a PIN
// already set must have it reset by an administrator first.
func (s *EmployeeService) SetupPIN(ctx context.Context, employeeID, pin string) error {
	if s == nil {
		return fmt.Errorf("EmployeeService is nil")
	}
	if err := validatePIN(pin); err != nil {
		return err
	}

	record, err := s.store.GetEmployee(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		return err
	}
	if record.PINHash != nil {
		return ErrAlreadyExists
	}

	hash, err := CreateSecretHash(pin, s.hashParams)
	if err != nil {
		return err
	}
	now := s.clock.Now()
	record.PINHash = &hash
	record.PINSetAt = &now
	record.PINSet = true
	record.UpdatedAt = now

	if err := s.store.UpdateEmployee(ctx, record); err != nil {
		return err
	}

	serviceLogger(ctx, s.logger, "employee", "setup_pin", "employee_id", record.ID).
		InfoContext(ctx, "pin configured")
	return nil
}

// VerifyPIN is the second kiosk login step.
func (s *EmployeeService) VerifyPIN(ctx context.Context, employeeID, pin string) error {
	if s == nil {
		return fmt.Errorf("EmployeeService is nil")
	}
	record, err := s.store.GetEmployee(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		return err
	}
	if record.PINHash == nil {
		return ErrPINNotSet
	}
	return VerifySecret(*record.PINHash, pin)
}

// ResetPIN clears a worker's PIN so the kiosk offers setup again. This is an
// administrator operation.
func (s *EmployeeService) ResetPIN(ctx context.Context, employeeID string) error {
	if s == nil {
		return fmt.Errorf("EmployeeService is nil")
	}
	record, err := s.store.GetEmployee(ctx, strings.TrimSpace(employeeID))
	if err != nil {
		return err
	}
	record.PINHash = nil
	record.PINSetAt = nil
	record.PINSet = false
	record.UpdatedAt = s.clock.Now()

	if err := s.store.UpdateEmployee(ctx, record); err != nil {
		return err
	}

	serviceLogger(ctx, s.logger, "employee", "reset_pin", "employee_id", record.ID).
		InfoContext(ctx, "pin reset")
	return nil
}

func validatePIN(pin string) error {
	vErr := &ValidationError{}
	if len(pin) != 4 {
		vErr.add("pin", "pin must be exactly 4 digits")
		return vErr
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			vErr.add("pin", "pin must be exactly 4 digits")
			return vErr
		}
	}
	return nil
}

// generateEmployeeCode builds EMP_<NAME>_<nnnn> from the worker's name,
// uppercased with whitespace collapsed to underscores.
func generateEmployeeCode(name string, random func() int) string {
	normalized := strings.ToUpper(strings.Join(strings.Fields(name), "_"))
	return fmt.Sprintf("EMP_%s_%d", normalized, random())
}
