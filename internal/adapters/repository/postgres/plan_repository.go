package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coverbid/benefits-engine/internal/core/plan"
	pgdb "github.com/coverbid/benefits-engine/internal/platform/db/postgres"
)

// PlanRepository は PostgreSQL を利用したプランカタログ永続化の実装です。
type PlanRepository struct {
	pool pgdb.Queryer
}

// NewPlanRepository は PlanRepository を生成します。
func NewPlanRepository(pool pgdb.Queryer) *PlanRepository {
	return &PlanRepository{pool: pool}
}

// CreateCategory は補償区分を新規作成します。
func (r *PlanRepository) CreateCategory(ctx context.Context, category *plan.PolicyCategory) (*plan.PolicyCategory, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO policy_categories (name)
        VALUES ($1)
        RETURNING id, name
    `, category.Name)

	var created plan.PolicyCategory
	if err := row.Scan(&created.ID, &created.Name); err != nil {
		return nil, translatePlanPgError(err)
	}
	return &created, nil
}

// ListCategories は補償区分を名前順で返します。
func (r *PlanRepository) ListCategories(ctx context.Context) ([]*plan.PolicyCategory, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, name FROM policy_categories ORDER BY name
    `)
	if err != nil {
		return nil, translatePlanPgError(err)
	}
	defer rows.Close()

	var categories []*plan.PolicyCategory
	for rows.Next() {
		var category plan.PolicyCategory
		if err := rows.Scan(&category.ID, &category.Name); err != nil {
			return nil, err
		}
		categories = append(categories, &category)
	}

	return categories, rows.Err()
}

// CreatePlan はプランを新規作成します。
func (r *PlanRepository) CreatePlan(ctx context.Context, p *plan.Plan) (*plan.Plan, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO plans (name, insurer_identity_id, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, insurer_identity_id, created_at, updated_at
    `,
		p.Name,
		p.InsurerIdentityID,
		p.CreatedAt,
		p.UpdatedAt,
	)

	created, err := scanPlan(row)
	if err != nil {
		return nil, translatePlanPgError(err)
	}
	return created, nil
}

// FindPlanByID は ID でプランを取得します。
func (r *PlanRepository) FindPlanByID(ctx context.Context, id int64) (*plan.Plan, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, insurer_identity_id, created_at, updated_at
          FROM plans
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanPlan(row)
	if err != nil {
		return nil, translatePlanPgError(err)
	}
	return found, nil
}

// ListPlans はプランの一覧を取得します。
func (r *PlanRepository) ListPlans(ctx context.Context, filter plan.ListPlansFilter) ([]*plan.Plan, error) {
	query := `
        SELECT id, name, insurer_identity_id, created_at, updated_at
          FROM plans
    `
	args := []any{}
	if filter.InsurerIdentityID != nil {
		query += ` WHERE insurer_identity_id = $1`
		args = append(args, *filter.InsurerIdentityID)
	}
	query += ` ORDER BY id`

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translatePlanPgError(err)
	}
	defer rows.Close()

	var plans []*plan.Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}

	return plans, rows.Err()
}

// CreateTier はプランに保険金額を追加します。
func (r *PlanRepository) CreateTier(ctx context.Context, tier *plan.Tier) (*plan.Tier, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO plan_tiers (plan_id, category_id, sum_insured)
        VALUES ($1, $2, $3)
        RETURNING id, plan_id, category_id, sum_insured
    `,
		tier.PlanID,
		tier.CategoryID,
		tier.SumInsured,
	)

	var created plan.Tier
	if err := row.Scan(&created.ID, &created.PlanID, &created.CategoryID, &created.SumInsured); err != nil {
		return nil, translatePlanPgError(err)
	}
	return &created, nil
}

// DeleteTier は保険金額を削除します。
func (r *PlanRepository) DeleteTier(ctx context.Context, tierID int64) error {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	tag, err := exec.Exec(ctx, `DELETE FROM plan_tiers WHERE id = $1`, tierID)
	if err != nil {
		return translatePlanPgError(err)
	}
	if tag.RowsAffected() == 0 {
		return plan.ErrTierNotFound
	}
	return nil
}

// ListTiersByPlan はプランの保険金額を区分ID順で返します。
func (r *PlanRepository) ListTiersByPlan(ctx context.Context, planID int64) ([]plan.Tier, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, plan_id, category_id, sum_insured
          FROM plan_tiers
         WHERE plan_id = $1
         ORDER BY category_id
    `, planID)
	if err != nil {
		return nil, translatePlanPgError(err)
	}
	defer rows.Close()

	var tiers []plan.Tier
	for rows.Next() {
		var tier plan.Tier
		if err := rows.Scan(&tier.ID, &tier.PlanID, &tier.CategoryID, &tier.SumInsured); err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}

	return tiers, rows.Err()
}

func scanPlan(row pgx.Row) (*plan.Plan, error) {
	var (
		id        int64
		name      string
		insurerID int64
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &insurerID, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, plan.ErrPlanNotFound
		}
		return nil, err
	}

	return &plan.Plan{
		ID:                id,
		Name:              name,
		InsurerIdentityID: insurerID,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}, nil
}

func translatePlanPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return plan.ErrPlanNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			switch pgErr.ConstraintName {
			case "policy_categories_name_key":
				return plan.ErrCategoryExists
			case "plan_tiers_plan_id_category_id_key":
				return plan.ErrDuplicateTier
			default:
				return err
			}
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "plans_insurer_identity_id_fkey":
				return plan.ErrInsurerNotFound
			case "plan_tiers_plan_id_fkey":
				return plan.ErrPlanNotFound
			case "plan_tiers_category_id_fkey":
				return plan.ErrCategoryNotFound
			default:
				return err
			}
		case checkViolationCode:
			return plan.ErrInvalidSumInsured
		}
	}

	return err
}
