package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/coverbid/benefits-engine/internal/core/coverage"
	pgdb "github.com/coverbid/benefits-engine/internal/platform/db/postgres"
)

// CoverageRepository は補償評価エンジン向けの読み取り専用実装です。
type CoverageRepository struct {
	pool pgdb.Queryer
}

// NewCoverageRepository は CoverageRepository を生成します。
func NewCoverageRepository(pool pgdb.Queryer) *CoverageRepository {
	return &CoverageRepository{pool: pool}
}

// FindEmployee は従業員の参照情報を取得します。
func (r *CoverageRepository) FindEmployee(ctx context.Context, id int64) (*coverage.EmployeeRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var ref coverage.EmployeeRef
	err := exec.QueryRow(ctx, `
        SELECT id, name FROM employees WHERE id = $1 LIMIT 1
    `, id).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coverage.ErrEmployeeNotFound
		}
		return nil, err
	}
	return &ref, nil
}

// ListEmployees は全従業員の参照情報をID順で返します。
func (r *CoverageRepository) ListEmployees(ctx context.Context) ([]coverage.EmployeeRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, name FROM employees ORDER BY id
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []coverage.EmployeeRef
	for rows.Next() {
		var ref coverage.EmployeeRef
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}

	return refs, rows.Err()
}

// FindCategoryByName は区分名で補償区分を取得します。
func (r *CoverageRepository) FindCategoryByName(ctx context.Context, name string) (*coverage.CategoryRef, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	var ref coverage.CategoryRef
	err := exec.QueryRow(ctx, `
        SELECT id, name FROM policy_categories WHERE name = $1 LIMIT 1
    `, name).Scan(&ref.ID, &ref.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coverage.ErrCategoryNotFound
		}
		return nil, err
	}
	return &ref, nil
}

// ListAssignedTiers は従業員の割当を経由して届くすべての保険金額を返します。
func (r *CoverageRepository) ListAssignedTiers(ctx context.Context, employeeID int64) ([]coverage.TierRow, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT t.plan_id,
               t.category_id,
               c.name,
               t.sum_insured
          FROM plan_assignments a
          JOIN plan_tiers t ON t.plan_id = a.plan_id
          JOIN policy_categories c ON c.id = t.category_id
         WHERE a.employee_id = $1
         ORDER BY t.plan_id, t.category_id
    `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tierRows []coverage.TierRow
	for rows.Next() {
		var row coverage.TierRow
		if err := rows.Scan(&row.PlanID, &row.CategoryID, &row.CategoryName, &row.SumInsured); err != nil {
			return nil, err
		}
		tierRows = append(tierRows, row)
	}

	return tierRows, rows.Err()
}

// CountTiersByCategory はカタログ全体の保険金額件数を区分ごとに集計します。
func (r *CoverageRepository) CountTiersByCategory(ctx context.Context) ([]coverage.CategoryCount, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT c.name, COUNT(t.id)
          FROM policy_categories c
          JOIN plan_tiers t ON t.category_id = c.id
         GROUP BY c.name
         ORDER BY c.name
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []coverage.CategoryCount
	for rows.Next() {
		var count coverage.CategoryCount
		if err := rows.Scan(&count.CategoryName, &count.TierCount); err != nil {
			return nil, err
		}
		counts = append(counts, count)
	}

	return counts, rows.Err()
}
