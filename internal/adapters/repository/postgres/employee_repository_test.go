package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/coverbid/benefits-engine/internal/core/employee"
)

type stubRow struct {
	scanFn func(dest ...interface{}) error
}

func (s stubRow) Scan(dest ...interface{}) error {
	return s.scanFn(dest...)
}

func TestScanEmployee_Success(t *testing.T) {
	t.Parallel()

	createdAt := time.Now().UTC()
	updatedAt := createdAt.Add(time.Minute)

	row := stubRow{scanFn: func(dest ...interface{}) error {
		if len(dest) != 9 {
			return errors.New("unexpected dest length")
		}
		*(dest[0].(*int64)) = 1
		*(dest[1].(*int64)) = 4
		*(dest[2].(*string)) = "EE001"
		*(dest[3].(*string)) = "Sally Employee"
		*(dest[4].(*string)) = "HR"

		ageDest := dest[5].(*sql.NullInt64)
		ageDest.Int64 = 35
		ageDest.Valid = true

		*(dest[6].(*string)) = "Female"
		*(dest[7].(*time.Time)) = createdAt
		*(dest[8].(*time.Time)) = updatedAt
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}

	if emp.Code != "EE001" || emp.IdentityID != 4 {
		t.Fatalf("unexpected employee: %+v", emp)
	}
	if emp.Age == nil || *emp.Age != 35 {
		t.Fatalf("expected age 35, got %+v", emp.Age)
	}
}

func TestScanEmployee_NullAge(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		*(dest[0].(*int64)) = 1
		*(dest[1].(*int64)) = 4
		*(dest[2].(*string)) = "EE001"
		*(dest[3].(*string)) = "Sally Employee"
		return nil
	}}

	emp, err := scanEmployee(row)
	if err != nil {
		t.Fatalf("scanEmployee returned error: %v", err)
	}
	if emp.Age != nil {
		t.Fatalf("expected nil age, got %d", *emp.Age)
	}
}

func TestScanEmployee_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanEmployee(row)
	if !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}
}

func TestTranslateEmployeePgError(t *testing.T) {
	t.Parallel()

	codeErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_code_key"}
	if !errors.Is(translateEmployeePgError(codeErr), employee.ErrEmployeeCodeAlreadyExists) {
		t.Fatalf("expected code unique violation to map to ErrEmployeeCodeAlreadyExists")
	}

	identityErr := &pgconn.PgError{Code: uniqueViolationCode, ConstraintName: "employees_identity_id_key"}
	if !errors.Is(translateEmployeePgError(identityErr), employee.ErrIdentityAlreadyLinked) {
		t.Fatalf("expected identity unique violation to map to ErrIdentityAlreadyLinked")
	}

	fkErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "employees_identity_id_fkey"}
	if !errors.Is(translateEmployeePgError(fkErr), employee.ErrIdentityNotFound) {
		t.Fatalf("expected identity fk violation to map to ErrIdentityNotFound")
	}

	planErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "plan_assignments_plan_id_fkey"}
	if !errors.Is(translateEmployeePgError(planErr), employee.ErrPlanNotFound) {
		t.Fatalf("expected plan fk violation to map to ErrPlanNotFound")
	}

	checkErr := &pgconn.PgError{Code: checkViolationCode}
	if !errors.Is(translateEmployeePgError(checkErr), employee.ErrInvalidAge) {
		t.Fatalf("expected check violation to map to ErrInvalidAge")
	}

	other := errors.New("other")
	if translateEmployeePgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestEmployeeRepository_ReplaceAssignments(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	batchRef := uuid.New()
	assignedAt := time.Now().UTC()
	batch := []employee.Assignment{
		{EmployeeID: 1, PlanID: 1, BatchRef: batchRef, AssignedAt: assignedAt},
		{EmployeeID: 1, PlanID: 2, BatchRef: batchRef, AssignedAt: assignedAt},
	}

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM plan_assignments WHERE employee_id = $1`)).
		WithArgs(int64(1)).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	insert := regexp.QuoteMeta(`
            INSERT INTO plan_assignments (employee_id, plan_id, batch_ref, assigned_at)
            VALUES ($1, $2, $3, $4)
        `)
	mock.ExpectExec(insert).
		WithArgs(int64(1), int64(1), batchRef, assignedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(insert).
		WithArgs(int64(1), int64(2), batchRef, assignedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	removed, err := repo.ReplaceAssignments(context.Background(), 1, batch)
	if err != nil {
		t.Fatalf("ReplaceAssignments returned error: %v", err)
	}
	if removed != 3 {
		t.Fatalf("expected 3 removed, got %d", removed)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_FilterMissingPlanIDs_Empty(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	missing, err := repo.FilterMissingPlanIDs(context.Background(), nil)
	if err != nil {
		t.Fatalf("FilterMissingPlanIDs returned error: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected no query for empty input, got %v", missing)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEmployeeRepository_LockForAssignment_NotFound(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewEmployeeRepository(mock)

	mock.ExpectQuery(regexp.QuoteMeta(`
        SELECT id FROM employees WHERE id = $1 FOR UPDATE
    `)).
		WithArgs(int64(42)).
		WillReturnError(pgx.ErrNoRows)

	if err := repo.LockForAssignment(context.Background(), 42); !errors.Is(err, employee.ErrEmployeeNotFound) {
		t.Fatalf("expected ErrEmployeeNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
