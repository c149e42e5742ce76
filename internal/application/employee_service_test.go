package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/timeclock/internal/testfixtures"
)

type stubEmployeeStore struct {
	records map[string]EmployeeRecord
}

func newStubEmployeeStore() *stubEmployeeStore {
	return &stubEmployeeStore{records: make(map[string]EmployeeRecord)}
}

func (s *stubEmployeeStore) CreateEmployee(_ context.Context, record EmployeeRecord) error {
	if _, ok := s.records[record.ID]; ok {
		return ErrAlreadyExists
	}
	s.records[record.ID] = record
	return nil
}

func (s *stubEmployeeStore) UpdateEmployee(_ context.Context, record EmployeeRecord) error {
	if _, ok := s.records[record.ID]; !ok {
		return ErrNotFound
	}
	s.records[record.ID] = record
	return nil
}

func (s *stubEmployeeStore) GetEmployee(_ context.Context, id string) (EmployeeRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return EmployeeRecord{}, ErrNotFound
	}
	return record, nil
}

func (s *stubEmployeeStore) GetEmployeeByName(_ context.Context, name string) (EmployeeRecord, error) {
	for _, record := range s.records {
		if record.Name == name {
			return record, nil
		}
	}
	return EmployeeRecord{}, ErrNotFound
}

func (s *stubEmployeeStore) ListEmployees(_ context.Context) ([]EmployeeRecord, error) {
	out := make([]EmployeeRecord, 0, len(s.records))
	for _, record := range s.records {
		out = append(out, record)
	}
	return out, nil
}

func (s *stubEmployeeStore) DeleteEmployee(_ context.Context, id string) error {
	if _, ok := s.records[id]; !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	return nil
}

func newEmployeeServiceForTest(store *stubEmployeeStore) (*EmployeeService, *testfixtures.Clock) {
	clock := testfixtures.NewClock(time.Date(2025, time.March, 3, 9, 0, 0, 0, time.UTC))
	ids := testfixtures.NewIDGenerator("emp")
	return NewEmployeeService(store, clock, ids.NextFunc(), func() int { return 4242 }, nil), clock
}

func TestCreateEmployeeGeneratesCode(t *testing.T) {
	t.Parallel()

	store := newStubEmployeeStore()
	service, _ := newEmployeeServiceForTest(store)

	employee, err := service.CreateEmployee(context.Background(), EmployeeInput{Name: "Jane Smith", Position: "Line Lead"})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	if employee.Code != "EMP_JANE_SMITH_4242" {
		t.Errorf("code = %q, want EMP_JANE_SMITH_4242", employee.Code)
	}
	if employee.PINSet {
		t.Error("new employee must not have a pin")
	}
}

func TestCreateEmployeeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input EmployeeInput
		field string
	}{
		{name: "missing name", input: EmployeeInput{Name: "   "}, field: "name"},
		{name: "malformed email", input: EmployeeInput{Name: "Jo", Email: "not-an-email"}, field: "email"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			service, _ := newEmployeeServiceForTest(newStubEmployeeStore())
			_, err := service.CreateEmployee(context.Background(), tc.input)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
			if _, ok := vErr.FieldErrors[tc.field]; !ok {
				t.Errorf("missing field error for %s", tc.field)
			}
		})
	}
}

func TestCreateEmployeeRejectsDuplicateName(t *testing.T) {
	t.Parallel()

	store := newStubEmployeeStore()
	service, _ := newEmployeeServiceForTest(store)
	ctx := context.Background()

	if _, err := service.CreateEmployee(ctx, EmployeeInput{Name: "Jane Smith"}); err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	_, err := service.CreateEmployee(ctx, EmployeeInput{Name: "Jane Smith"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}
}

func TestUpdateEmployeeKeepsCode(t *testing.T) {
	t.Parallel()

	store := newStubEmployeeStore()
	service, _ := newEmployeeServiceForTest(store)
	ctx := context.Background()

	created, err := service.CreateEmployee(ctx, EmployeeInput{Name: "Jane Smith"})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	updated, err := service.UpdateEmployee(ctx, created.ID, EmployeeInput{Name: "Jane Brown", IsTemp: true})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Name != "Jane Brown" || !updated.IsTemp {
		t.Errorf("updated = %+v", updated)
	}
	if updated.Code != created.Code {
		t.Errorf("code changed from %q to %q", created.Code, updated.Code)
	}
}

func TestIdentifyByName(t *testing.T) {
	t.Parallel()

	store := newStubEmployeeStore()
	service, _ := newEmployeeServiceForTest(store)
	ctx := context.Background()

	created, err := service.CreateEmployee(ctx, EmployeeInput{Name: "Jane Smith"})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	found, err := service.IdentifyByName(ctx, "Jane Smith")
	if err != nil {
		t.Fatalf("IdentifyByName returned error: %v", err)
	}
	if found.ID != created.ID {
		t.Errorf("id = %q, want %q", found.ID, created.ID)
	}

	if _, err := service.IdentifyByName(ctx, "Nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestPINLifecycle(t *testing.T) {
	t.Parallel()

	store := newStubEmployeeStore()
	service, _ := newEmployeeServiceForTest(store)
	ctx := context.Background()

	created, err := service.CreateEmployee(ctx, EmployeeInput{Name: "Jane Smith"})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	// Verification before setup names the missing pin explicitly.
	if err := service.VerifyPIN(ctx, created.ID, "1234"); !errors.Is(err, ErrPINNotSet) {
		t.Fatalf("err = %v, want ErrPINNotSet", err)
	}

	if err := service.SetupPIN(ctx, created.ID, "1234"); err != nil {
		t.Fatalf("SetupPIN returned error: %v", err)
	}

	employee, err := service.GetEmployee(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if !employee.PINSet || employee.PINSetAt == nil {
		t.Error("pin lifecycle fields not set after setup")
	}

	if err := service.VerifyPIN(ctx, created.ID, "1234"); err != nil {
		t.Errorf("VerifyPIN with correct pin returned error: %v", err)
	}
	if err := service.VerifyPIN(ctx, created.ID, "9999"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("err = %v, want ErrInvalidCredentials", err)
	}

	// A second setup requires an admin reset first.
	if err := service.SetupPIN(ctx, created.ID, "5678"); !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("err = %v, want ErrAlreadyExists", err)
	}

	if err := service.ResetPIN(ctx, created.ID); err != nil {
		t.Fatalf("ResetPIN returned error: %v", err)
	}
	employee, err = service.GetEmployee(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetEmployee returned error: %v", err)
	}
	if employee.PINSet || employee.PINSetAt != nil {
		t.Error("pin lifecycle fields not cleared after reset")
	}

	if err := service.SetupPIN(ctx, created.ID, "5678"); err != nil {
		t.Fatalf("SetupPIN after reset returned error: %v", err)
	}
	if err := service.VerifyPIN(ctx, created.ID, "5678"); err != nil {
		t.Errorf("VerifyPIN with new pin returned error: %v", err)
	}
}

func TestSetupPINValidatesFormat(t *testing.T) {
	t.Parallel()

	store := newStubEmployeeStore()
	service, _ := newEmployeeServiceForTest(store)
	ctx := context.Background()

	created, err := service.CreateEmployee(ctx, EmployeeInput{Name: "Jane Smith"})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	for _, pin := range []string{"", "123", "12345", "12a4", "١٢٣٤"} {
		err := service.SetupPIN(ctx, created.ID, pin)
		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Errorf("pin %q: expected ValidationError, got %v", pin, err)
		}
	}
}

func TestGenerateEmployeeCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "single word", in: "Jane", want: "EMP_JANE_4242"},
		{name: "multiple words", in: "Jane  Ann Smith", want: "EMP_JANE_ANN_SMITH_4242"},
		{name: "surrounding space", in: "  Jane ", want: "EMP_JANE_4242"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got := generateEmployeeCode(tc.in, func() int { return 4242 })
			if got != tc.want {
				t.Errorf("generateEmployeeCode(%q) = %q, want %q", tc.in, got, tc.want)
			}
			if !strings.HasPrefix(got, "EMP_") {
				t.Errorf("code %q missing EMP_ prefix", got)
			}
		})
	}
}
