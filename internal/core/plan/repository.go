package plan

import "context"

// Repository はプランカタログ永続化の抽象です。
type Repository interface {
	CreateCategory(ctx context.Context, category *PolicyCategory) (*PolicyCategory, error)
	ListCategories(ctx context.Context) ([]*PolicyCategory, error)

	CreatePlan(ctx context.Context, p *Plan) (*Plan, error)
	FindPlanByID(ctx context.Context, id int64) (*Plan, error)
	ListPlans(ctx context.Context, filter ListPlansFilter) ([]*Plan, error)

	CreateTier(ctx context.Context, tier *Tier) (*Tier, error)
	DeleteTier(ctx context.Context, tierID int64) error
	ListTiersByPlan(ctx context.Context, planID int64) ([]Tier, error)
}

// ListPlansFilter は一覧取得用フィルタです。
type ListPlansFilter struct {
	InsurerIdentityID *int64
}
