package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coverbid/benefits-engine/internal/core/employee"
	pgdb "github.com/coverbid/benefits-engine/internal/platform/db/postgres"
)

// EmployeeRepository は PostgreSQL を利用した従業員永続化の実装です。
type EmployeeRepository struct {
	pool pgdb.Queryer
}

// NewEmployeeRepository は EmployeeRepository を生成します。
func NewEmployeeRepository(pool pgdb.Queryer) *EmployeeRepository {
	return &EmployeeRepository{pool: pool}
}

// Create は従業員を新規作成します。
func (r *EmployeeRepository) Create(ctx context.Context, emp *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO employees (identity_id, code, name, department, age, gender, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id, identity_id, code, name, department, age, gender, created_at, updated_at
    `,
		emp.IdentityID,
		emp.Code,
		emp.Name,
		emp.Department,
		nullableInt(emp.Age),
		emp.Gender,
		emp.CreatedAt,
		emp.UpdatedAt,
	)

	created, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return created, nil
}

// Update は従業員情報を更新します。
func (r *EmployeeRepository) Update(ctx context.Context, emp *employee.Employee) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE employees
           SET name = $1,
               department = $2,
               age = $3,
               gender = $4,
               updated_at = $5
         WHERE id = $6
        RETURNING id, identity_id, code, name, department, age, gender, created_at, updated_at
    `,
		emp.Name,
		emp.Department,
		nullableInt(emp.Age),
		emp.Gender,
		emp.UpdatedAt,
		emp.ID,
	)

	updated, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return updated, nil
}

// Delete は従業員を削除します。割当はストアの外部キーでカスケード削除されます。
func (r *EmployeeRepository) Delete(ctx context.Context, id int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return translateEmployeePgError(err)
	}
	if tag.RowsAffected() == 0 {
		return employee.ErrEmployeeNotFound
	}
	return nil
}

// FindByID は ID で従業員を取得します。
func (r *EmployeeRepository) FindByID(ctx context.Context, id int64) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, identity_id, code, name, department, age, gender, created_at, updated_at
          FROM employees
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// FindByCode は従業員コードで検索します。
func (r *EmployeeRepository) FindByCode(ctx context.Context, code string) (*employee.Employee, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, identity_id, code, name, department, age, gender, created_at, updated_at
          FROM employees
         WHERE code = $1
         LIMIT 1
    `, code)

	found, err := scanEmployee(row)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	return found, nil
}

// List は従業員の一覧を取得します。
func (r *EmployeeRepository) List(ctx context.Context, filter employee.ListEmployeesFilter) ([]*employee.Employee, error) {
	query := `
        SELECT id, identity_id, code, name, department, age, gender, created_at, updated_at
          FROM employees
    `
	args := []any{}
	if filter.Department != nil {
		query += ` WHERE department = $1`
		args = append(args, *filter.Department)
	}

	limitPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Limit)
	offsetPlaceholder := "$" + strconv.Itoa(len(args)+1)
	args = append(args, filter.Offset)

	query += `
         ORDER BY id
         LIMIT ` + limitPlaceholder + `
        OFFSET ` + offsetPlaceholder

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	var employees []*employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, translateEmployeePgError(err)
		}
		employees = append(employees, emp)
	}

	if err := rows.Err(); err != nil {
		return nil, translateEmployeePgError(err)
	}

	return employees, nil
}

// LockForAssignment は従業員行を FOR UPDATE で排他ロックします。
func (r *EmployeeRepository) LockForAssignment(ctx context.Context, employeeID int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var locked int64
	err := exec.QueryRow(ctx, `
        SELECT id FROM employees WHERE id = $1 FOR UPDATE
    `, employeeID).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.ErrEmployeeNotFound
		}
		return err
	}
	return nil
}

// FilterMissingPlanIDs は存在しないプランIDのみを返します。
func (r *EmployeeRepository) FilterMissingPlanIDs(ctx context.Context, planIDs []int64) ([]int64, error) {
	if len(planIDs) == 0 {
		return nil, nil
	}

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT wanted.id
          FROM unnest($1::bigint[]) AS wanted(id)
         WHERE NOT EXISTS (SELECT 1 FROM plans p WHERE p.id = wanted.id)
         ORDER BY wanted.id
    `, planIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var missing []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		missing = append(missing, id)
	}

	return missing, rows.Err()
}

// ReplaceAssignments は既存割当の削除と新割当の挿入を行います。呼び出し側の
// トランザクション内で実行される前提です。
func (r *EmployeeRepository) ReplaceAssignments(ctx context.Context, employeeID int64, batch []employee.Assignment) (int, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)

	tag, err := exec.Exec(ctx, `DELETE FROM plan_assignments WHERE employee_id = $1`, employeeID)
	if err != nil {
		return 0, translateEmployeePgError(err)
	}
	removed := int(tag.RowsAffected())

	for _, asg := range batch {
		if _, err := exec.Exec(ctx, `
            INSERT INTO plan_assignments (employee_id, plan_id, batch_ref, assigned_at)
            VALUES ($1, $2, $3, $4)
        `, asg.EmployeeID, asg.PlanID, asg.BatchRef, asg.AssignedAt); err != nil {
			return 0, translateEmployeePgError(err)
		}
	}

	return removed, nil
}

// ListAssignments は従業員の割当をプランID順で返します。
func (r *EmployeeRepository) ListAssignments(ctx context.Context, employeeID int64) ([]employee.Assignment, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT employee_id, plan_id, batch_ref, assigned_at
          FROM plan_assignments
         WHERE employee_id = $1
         ORDER BY plan_id
    `, employeeID)
	if err != nil {
		return nil, translateEmployeePgError(err)
	}
	defer rows.Close()

	var assignments []employee.Assignment
	for rows.Next() {
		var asg employee.Assignment
		if err := rows.Scan(&asg.EmployeeID, &asg.PlanID, &asg.BatchRef, &asg.AssignedAt); err != nil {
			return nil, err
		}
		assignments = append(assignments, asg)
	}

	return assignments, rows.Err()
}

func scanEmployee(row pgx.Row) (*employee.Employee, error) {
	var (
		id         int64
		identityID int64
		code       string
		name       string
		department string
		age        sql.NullInt64
		gender     string
		createdAt  time.Time
		updatedAt  time.Time
	)

	if err := row.Scan(&id, &identityID, &code, &name, &department, &age, &gender, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, employee.ErrEmployeeNotFound
		}
		return nil, err
	}

	var agePtr *int
	if age.Valid {
		value := int(age.Int64)
		agePtr = &value
	}

	return &employee.Employee{
		ID:         id,
		IdentityID: identityID,
		Code:       code,
		Name:       name,
		Department: department,
		Age:        agePtr,
		Gender:     gender,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}, nil
}

func translateEmployeePgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return employee.ErrEmployeeNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			switch pgErr.ConstraintName {
			case "employees_identity_id_key":
				return employee.ErrIdentityAlreadyLinked
			default:
				return employee.ErrEmployeeCodeAlreadyExists
			}
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "employees_identity_id_fkey":
				return employee.ErrIdentityNotFound
			case "plan_assignments_plan_id_fkey":
				return employee.ErrPlanNotFound
			case "plan_assignments_employee_id_fkey":
				return employee.ErrEmployeeNotFound
			default:
				return err
			}
		case checkViolationCode:
			return employee.ErrInvalidAge
		}
	}

	return err
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}
