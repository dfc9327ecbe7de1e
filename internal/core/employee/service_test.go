package employee

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubClock struct {
	now time.Time
}

func (s *stubClock) Now() time.Time {
	return s.now
}

type fakeEmployeeRepo struct {
	employees   map[int64]*Employee
	assignments map[int64][]Assignment
	knownPlans  map[int64]struct{}
	sequence    int64
	locked      []int64
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{
		employees:   make(map[int64]*Employee),
		assignments: make(map[int64][]Assignment),
		knownPlans:  make(map[int64]struct{}),
	}
}

func (r *fakeEmployeeRepo) Create(_ context.Context, emp *Employee) (*Employee, error) {
	clone := cloneEmployee(emp)
	r.sequence++
	clone.ID = r.sequence
	r.employees[clone.ID] = clone
	return cloneEmployee(clone), nil
}

func (r *fakeEmployeeRepo) Update(_ context.Context, emp *Employee) (*Employee, error) {
	if _, ok := r.employees[emp.ID]; !ok {
		return nil, ErrEmployeeNotFound
	}
	r.employees[emp.ID] = cloneEmployee(emp)
	return cloneEmployee(emp), nil
}

func (r *fakeEmployeeRepo) Delete(_ context.Context, id int64) error {
	if _, ok := r.employees[id]; !ok {
		return ErrEmployeeNotFound
	}
	delete(r.employees, id)
	delete(r.assignments, id)
	return nil
}

func (r *fakeEmployeeRepo) FindByID(_ context.Context, id int64) (*Employee, error) {
	emp, ok := r.employees[id]
	if !ok {
		return nil, ErrEmployeeNotFound
	}
	return cloneEmployee(emp), nil
}

func (r *fakeEmployeeRepo) FindByCode(_ context.Context, code string) (*Employee, error) {
	for _, emp := range r.employees {
		if emp.Code == code {
			return cloneEmployee(emp), nil
		}
	}
	return nil, ErrEmployeeNotFound
}

func (r *fakeEmployeeRepo) List(_ context.Context, filter ListEmployeesFilter) ([]*Employee, error) {
	var filtered []*Employee
	for id := int64(1); id <= r.sequence; id++ {
		emp, ok := r.employees[id]
		if !ok {
			continue
		}
		if filter.Department != nil && emp.Department != *filter.Department {
			continue
		}
		filtered = append(filtered, cloneEmployee(emp))
	}

	if filter.Offset > len(filtered) {
		return []*Employee{}, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(filtered) {
		end = len(filtered)
	}
	return filtered[filter.Offset:end], nil
}

func (r *fakeEmployeeRepo) LockForAssignment(_ context.Context, employeeID int64) error {
	if _, ok := r.employees[employeeID]; !ok {
		return ErrEmployeeNotFound
	}
	r.locked = append(r.locked, employeeID)
	return nil
}

func (r *fakeEmployeeRepo) FilterMissingPlanIDs(_ context.Context, planIDs []int64) ([]int64, error) {
	var missing []int64
	for _, id := range planIDs {
		if _, ok := r.knownPlans[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *fakeEmployeeRepo) ReplaceAssignments(_ context.Context, employeeID int64, batch []Assignment) (int, error) {
	removed := len(r.assignments[employeeID])
	out := make([]Assignment, len(batch))
	copy(out, batch)
	r.assignments[employeeID] = out
	return removed, nil
}

func (r *fakeEmployeeRepo) ListAssignments(_ context.Context, employeeID int64) ([]Assignment, error) {
	rows := r.assignments[employeeID]
	out := make([]Assignment, len(rows))
	copy(out, rows)
	return out, nil
}

func cloneEmployee(emp *Employee) *Employee {
	if emp == nil {
		return nil
	}
	clone := *emp
	if emp.Age != nil {
		age := *emp.Age
		clone.Age = &age
	}
	return &clone
}

func seedEmployee(t *testing.T, svc *Service) *Employee {
	t.Helper()
	age := 35
	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		IdentityID: 1,
		Code:       "EE001",
		Name:       "Sally Employee",
		Department: "HR",
		Age:        &age,
		Gender:     "Female",
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}
	return created
}

func TestService_CreateEmployee_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	svc := NewService(repo, &stubClock{now: now}, nil)

	age := 35
	created, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		IdentityID: 1,
		Code:       "  ee001  ",
		Name:       "  Sally Employee  ",
		Department: " HR ",
		Age:        &age,
		Gender:     "Female",
	})
	if err != nil {
		t.Fatalf("CreateEmployee returned error: %v", err)
	}

	if created.Code != "EE001" {
		t.Fatalf("expected normalized code EE001, got %s", created.Code)
	}
	if created.Name != "Sally Employee" || created.Department != "HR" {
		t.Fatalf("expected trimmed fields, got %q %q", created.Name, created.Department)
	}
	if created.Age == nil || *created.Age != 35 {
		t.Fatalf("unexpected age: %+v", created.Age)
	}
	if !created.CreatedAt.Equal(now) || !created.UpdatedAt.Equal(now) {
		t.Fatalf("expected timestamps to use clock now")
	}
}

func TestService_CreateEmployee_DuplicateCode(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)
	seedEmployee(t, svc)

	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		IdentityID: 2,
		Code:       "ee001",
		Name:       "Other Employee",
	})
	if !errors.Is(err, ErrEmployeeCodeAlreadyExists) {
		t.Fatalf("expected ErrEmployeeCodeAlreadyExists, got %v", err)
	}
}

func TestService_CreateEmployee_InvalidAge(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)

	age := 121
	_, err := svc.CreateEmployee(context.Background(), CreateEmployeeInput{
		IdentityID: 1,
		Code:       "EE002",
		Name:       "Too Old",
		Age:        &age,
	})
	if !errors.Is(err, ErrInvalidAge) {
		t.Fatalf("expected ErrInvalidAge, got %v", err)
	}
}

func TestService_UpdateEmployee_PartialUpdate(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	clk := &stubClock{now: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewService(repo, clk, nil)
	created := seedEmployee(t, svc)

	clk.now = clk.now.Add(time.Hour)

	dept := "Finance"
	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		ID:         created.ID,
		Department: &dept,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}

	if updated.Department != "Finance" {
		t.Fatalf("expected department Finance, got %s", updated.Department)
	}
	if updated.Name != created.Name {
		t.Fatalf("expected name untouched, got %s", updated.Name)
	}
	if updated.Age == nil || *updated.Age != 35 {
		t.Fatalf("expected age untouched without AgeSet, got %+v", updated.Age)
	}
	if !updated.UpdatedAt.After(created.UpdatedAt) {
		t.Fatalf("expected updated_at to advance")
	}
}

func TestService_UpdateEmployee_ClearAge(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)
	created := seedEmployee(t, svc)

	updated, err := svc.UpdateEmployee(context.Background(), UpdateEmployeeInput{
		ID:     created.ID,
		AgeSet: true,
	})
	if err != nil {
		t.Fatalf("UpdateEmployee returned error: %v", err)
	}
	if updated.Age != nil {
		t.Fatalf("expected age cleared, got %d", *updated.Age)
	}
}

func TestService_AssignPlans_ReplacesAll(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	repo.knownPlans[1] = struct{}{}
	repo.knownPlans[2] = struct{}{}
	repo.knownPlans[3] = struct{}{}
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)
	created := seedEmployee(t, svc)

	first, err := svc.AssignPlans(context.Background(), AssignPlansInput{
		EmployeeID: created.ID,
		PlanIDs:    []int64{1, 2},
	})
	if err != nil {
		t.Fatalf("AssignPlans returned error: %v", err)
	}
	if first.Removed != 0 || first.Assigned != 2 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := svc.AssignPlans(context.Background(), AssignPlansInput{
		EmployeeID: created.ID,
		PlanIDs:    []int64{3},
	})
	if err != nil {
		t.Fatalf("AssignPlans returned error: %v", err)
	}
	if second.Removed != 2 || second.Assigned != 1 {
		t.Fatalf("unexpected second result: %+v", second)
	}
	if second.BatchRef == first.BatchRef {
		t.Fatalf("expected a fresh batch ref per replacement")
	}

	assignments, err := svc.ListAssignments(context.Background(), ListAssignmentsInput{EmployeeID: created.ID})
	if err != nil {
		t.Fatalf("ListAssignments returned error: %v", err)
	}
	if len(assignments) != 1 || assignments[0].PlanID != 3 {
		t.Fatalf("expected only plan 3 assigned, got %+v", assignments)
	}
	if len(repo.locked) != 2 {
		t.Fatalf("expected employee row locked per replacement, got %d locks", len(repo.locked))
	}
}

func TestService_AssignPlans_UnknownPlanRejectedBeforeMutation(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	repo.knownPlans[1] = struct{}{}
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)
	created := seedEmployee(t, svc)

	if _, err := svc.AssignPlans(context.Background(), AssignPlansInput{
		EmployeeID: created.ID,
		PlanIDs:    []int64{1},
	}); err != nil {
		t.Fatalf("AssignPlans returned error: %v", err)
	}

	_, err := svc.AssignPlans(context.Background(), AssignPlansInput{
		EmployeeID: created.ID,
		PlanIDs:    []int64{1, 99},
	})
	if !errors.Is(err, ErrPlanNotFound) {
		t.Fatalf("expected ErrPlanNotFound, got %v", err)
	}

	assignments, err := svc.ListAssignments(context.Background(), ListAssignmentsInput{EmployeeID: created.ID})
	if err != nil {
		t.Fatalf("ListAssignments returned error: %v", err)
	}
	if len(assignments) != 1 || assignments[0].PlanID != 1 {
		t.Fatalf("expected existing assignment preserved, got %+v", assignments)
	}
}

func TestService_AssignPlans_EmptyClearsAssignments(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	repo.knownPlans[1] = struct{}{}
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)
	created := seedEmployee(t, svc)

	if _, err := svc.AssignPlans(context.Background(), AssignPlansInput{
		EmployeeID: created.ID,
		PlanIDs:    []int64{1},
	}); err != nil {
		t.Fatalf("AssignPlans returned error: %v", err)
	}

	result, err := svc.AssignPlans(context.Background(), AssignPlansInput{
		EmployeeID: created.ID,
		PlanIDs:    nil,
	})
	if err != nil {
		t.Fatalf("AssignPlans returned error: %v", err)
	}
	if result.Removed != 1 || result.Assigned != 0 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestService_AssignPlans_DeduplicatesPlanIDs(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	repo.knownPlans[1] = struct{}{}
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)
	created := seedEmployee(t, svc)

	result, err := svc.AssignPlans(context.Background(), AssignPlansInput{
		EmployeeID: created.ID,
		PlanIDs:    []int64{1, 1, 1},
	})
	if err != nil {
		t.Fatalf("AssignPlans returned error: %v", err)
	}
	if result.Assigned != 1 {
		t.Fatalf("expected duplicates collapsed, got %d assigned", result.Assigned)
	}
}

func TestService_AssignPlans_InvalidPlanID(t *testing.T) {
	t.Parallel()

	repo := newFakeEmployeeRepo()
	svc := NewService(repo, &stubClock{now: time.Now().UTC()}, nil)
	created := seedEmployee(t, svc)

	_, err := svc.AssignPlans(context.Background(), AssignPlansInput{
		EmployeeID: created.ID,
		PlanIDs:    []int64{0},
	})
	if !errors.Is(err, ErrInvalidPlanID) {
		t.Fatalf("expected ErrInvalidPlanID, got %v", err)
	}
}

func TestService_DeleteEmployee_NotFound(t *testing.T) {
	t.Parallel()

	svc := NewService(newFakeEmployeeRepo(), &stubClock{now: time.Now().UTC()}, nil)

	err := svc.DeleteEmployee(context.Background(), DeleteEmployeeInput{ID: 42})
	if !errors.Is(err, ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}
