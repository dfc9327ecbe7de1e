package plan

import (
	"context"
	"strings"
	"time"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// Service はプランカタログに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase はプランカタログユースケースの公開インターフェースです。
type UseCase interface {
	CreateCategory(ctx context.Context, in CreateCategoryInput) (*PolicyCategory, error)
	ListCategories(ctx context.Context) ([]*PolicyCategory, error)
	CreatePlan(ctx context.Context, in CreatePlanInput) (*Plan, error)
	GetPlan(ctx context.Context, in GetPlanInput) (*Plan, error)
	ListPlans(ctx context.Context, in ListPlansInput) ([]*Plan, error)
	AddTier(ctx context.Context, in AddTierInput) (*Tier, error)
	RemoveTier(ctx context.Context, in RemoveTierInput) error
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateCategoryInput は補償区分作成時の入力です。
type CreateCategoryInput struct {
	Name string
}

// CreatePlanInput はプラン作成時の入力です。
type CreatePlanInput struct {
	Name              string
	InsurerIdentityID int64
}

// GetPlanInput はプラン取得時の入力です。
type GetPlanInput struct {
	ID int64
}

// ListPlansInput は一覧取得時の入力です。
type ListPlansInput struct {
	InsurerIdentityID *int64
}

// AddTierInput は保険金額追加時の入力です。
type AddTierInput struct {
	PlanID     int64
	CategoryID int64
	SumInsured float64
}

// RemoveTierInput は保険金額削除時の入力です。
type RemoveTierInput struct {
	TierID int64
}

// CreateCategory は新しい補償区分を作成します。区分名の重複はストアの一意
// 制約で拒否されます。
func (s *Service) CreateCategory(ctx context.Context, in CreateCategoryInput) (*PolicyCategory, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidCategoryName
	}

	return s.repo.CreateCategory(ctx, &PolicyCategory{Name: name})
}

// ListCategories は補償区分の一覧を取得します。
func (s *Service) ListCategories(ctx context.Context) ([]*PolicyCategory, error) {
	return s.repo.ListCategories(ctx)
}

// CreatePlan は新しいプランを作成します。
func (s *Service) CreatePlan(ctx context.Context, in CreatePlanInput) (*Plan, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}
	if in.InsurerIdentityID <= 0 {
		return nil, ErrInvalidInsurerID
	}

	now := s.clock.Now()
	return s.repo.CreatePlan(ctx, &Plan{
		Name:              name,
		InsurerIdentityID: in.InsurerIdentityID,
		CreatedAt:         now,
		UpdatedAt:         now,
	})
}

// GetPlan はプランを保険金額つきで取得します。
func (s *Service) GetPlan(ctx context.Context, in GetPlanInput) (*Plan, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	found, err := s.repo.FindPlanByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	tiers, err := s.repo.ListTiersByPlan(ctx, found.ID)
	if err != nil {
		return nil, err
	}
	found.Tiers = tiers

	return found, nil
}

// ListPlans はプランの一覧を取得します。
func (s *Service) ListPlans(ctx context.Context, in ListPlansInput) ([]*Plan, error) {
	if in.InsurerIdentityID != nil && *in.InsurerIdentityID <= 0 {
		return nil, ErrInvalidInsurerID
	}

	return s.repo.ListPlans(ctx, ListPlansFilter{InsurerIdentityID: in.InsurerIdentityID})
}

// AddTier はプランに補償区分の保険金額を追加します。同一区分への二重宣言は
// ErrDuplicateTier になります。
func (s *Service) AddTier(ctx context.Context, in AddTierInput) (*Tier, error) {
	if in.PlanID <= 0 {
		return nil, ErrInvalidID
	}
	if in.CategoryID <= 0 {
		return nil, ErrInvalidCategoryName
	}
	if in.SumInsured < 0 {
		return nil, ErrInvalidSumInsured
	}

	return s.repo.CreateTier(ctx, &Tier{
		PlanID:     in.PlanID,
		CategoryID: in.CategoryID,
		SumInsured: in.SumInsured,
	})
}

// RemoveTier はプランから保険金額を削除します。
func (s *Service) RemoveTier(ctx context.Context, in RemoveTierInput) error {
	if in.TierID <= 0 {
		return ErrInvalidID
	}

	return s.repo.DeleteTier(ctx, in.TierID)
}
