package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

const (
	defaultListLimit = 50
	maxListLimit     = 200
	maxAge           = 120
)

// Service は従業員に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は従業員ユースケースの公開インターフェースです。
type UseCase interface {
	CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error)
	GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error)
	ListEmployees(ctx context.Context, in ListEmployeesInput) ([]*Employee, error)
	UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error)
	DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error
	AssignPlans(ctx context.Context, in AssignPlansInput) (*AssignPlansResult, error)
	ListAssignments(ctx context.Context, in ListAssignmentsInput) ([]Assignment, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// CreateEmployeeInput は従業員作成時の入力です。
type CreateEmployeeInput struct {
	IdentityID int64
	Code       string
	Name       string
	Department string
	Age        *int
	Gender     string
}

// UpdateEmployeeInput は従業員更新時の入力です。更新可能な項目のみを列挙し、
// nil の項目は変更しません。Age のクリアは AgeSet で表現します。
type UpdateEmployeeInput struct {
	ID         int64
	Name       *string
	Department *string
	Age        *int
	AgeSet     bool
	Gender     *string
}

// DeleteEmployeeInput は従業員削除時の入力です。
type DeleteEmployeeInput struct {
	ID int64
}

// GetEmployeeInput は従業員取得時の入力です。
type GetEmployeeInput struct {
	ID int64
}

// ListEmployeesInput は一覧取得時の入力です。
type ListEmployeesInput struct {
	Department *string
	Limit      int
	Offset     int
}

// AssignPlansInput はプラン一括差し替え時の入力です。PlanIDs が空の場合、
// 既存の割当がすべて解除されます。
type AssignPlansInput struct {
	EmployeeID int64
	PlanIDs    []int64
}

// AssignPlansResult はプラン一括差し替えの結果です。
type AssignPlansResult struct {
	Removed  int
	Assigned int
	BatchRef uuid.UUID
}

// ListAssignmentsInput は割当一覧取得時の入力です。
type ListAssignmentsInput struct {
	EmployeeID int64
}

// CreateEmployee は新しい従業員を作成します。
func (s *Service) CreateEmployee(ctx context.Context, in CreateEmployeeInput) (*Employee, error) {
	if in.IdentityID <= 0 {
		return nil, ErrInvalidIdentityID
	}

	code, err := normalizeCode(in.Code)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	if err := validateAge(in.Age); err != nil {
		return nil, err
	}

	var created *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.ensureCodeNotExists(txCtx, code); err != nil {
			return err
		}

		now := s.clock.Now()
		result, err := s.repo.Create(txCtx, &Employee{
			IdentityID: in.IdentityID,
			Code:       code,
			Name:       name,
			Department: strings.TrimSpace(in.Department),
			Age:        cloneAge(in.Age),
			Gender:     strings.TrimSpace(in.Gender),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
		if err != nil {
			return err
		}

		created = result
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// UpdateEmployee は従業員情報を部分更新します。
func (s *Service) UpdateEmployee(ctx context.Context, in UpdateEmployeeInput) (*Employee, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	var updated *Employee
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}

		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return ErrInvalidName
			}
			existing.Name = name
		}

		if in.Department != nil {
			existing.Department = strings.TrimSpace(*in.Department)
		}

		if in.AgeSet {
			if err := validateAge(in.Age); err != nil {
				return err
			}
			existing.Age = cloneAge(in.Age)
		}

		if in.Gender != nil {
			existing.Gender = strings.TrimSpace(*in.Gender)
		}

		existing.UpdatedAt = s.clock.Now()

		result, err := s.repo.Update(txCtx, existing)
		if err != nil {
			return err
		}

		updated = result
		return nil
	}); err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteEmployee は従業員を削除します。割当はストア側でカスケード削除されます。
func (s *Service) DeleteEmployee(ctx context.Context, in DeleteEmployeeInput) error {
	if in.ID <= 0 {
		return ErrInvalidID
	}

	return s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		return s.repo.Delete(txCtx, in.ID)
	})
}

// GetEmployee は従業員を取得します。
func (s *Service) GetEmployee(ctx context.Context, in GetEmployeeInput) (*Employee, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}

	var result *Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		found, err := s.repo.FindByID(txCtx, in.ID)
		if err != nil {
			return err
		}
		result = found
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployees は従業員の一覧を取得します。
func (s *Service) ListEmployees(ctx context.Context, in ListEmployeesInput) ([]*Employee, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	offset := in.Offset
	if offset < 0 {
		offset = 0
	}

	var employees []*Employee
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		result, err := s.repo.List(txCtx, ListEmployeesFilter{
			Department: in.Department,
			Limit:      limit,
			Offset:     offset,
		})
		if err != nil {
			return err
		}
		employees = result
		return nil
	}); err != nil {
		return nil, err
	}

	return employees, nil
}

// AssignPlans は従業員のプラン割当をまとめて差し替えます。既存の割当の削除と
// 新しい割当の挿入を同一トランザクションで行い、従業員行の排他ロックで同一
// 従業員への差し替えを直列化します。未知のプランIDは一切の変更より前に
// 拒否されます。
func (s *Service) AssignPlans(ctx context.Context, in AssignPlansInput) (*AssignPlansResult, error) {
	if in.EmployeeID <= 0 {
		return nil, ErrInvalidID
	}

	planIDs, err := normalizePlanIDs(in.PlanIDs)
	if err != nil {
		return nil, err
	}

	var result *AssignPlansResult
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		if err := s.repo.LockForAssignment(txCtx, in.EmployeeID); err != nil {
			return err
		}

		missing, err := s.repo.FilterMissingPlanIDs(txCtx, planIDs)
		if err != nil {
			return err
		}
		if len(missing) > 0 {
			return fmt.Errorf("plan %d: %w", missing[0], ErrPlanNotFound)
		}

		batchRef := uuid.New()
		now := s.clock.Now()

		batch := make([]Assignment, 0, len(planIDs))
		for _, planID := range planIDs {
			batch = append(batch, Assignment{
				EmployeeID: in.EmployeeID,
				PlanID:     planID,
				BatchRef:   batchRef,
				AssignedAt: now,
			})
		}

		removed, err := s.repo.ReplaceAssignments(txCtx, in.EmployeeID, batch)
		if err != nil {
			return err
		}

		result = &AssignPlansResult{
			Removed:  removed,
			Assigned: len(batch),
			BatchRef: batchRef,
		}
		return nil
	}); err != nil {
		return nil, err
	}

	return result, nil
}

// ListAssignments は従業員の現在の割当一覧を取得します。
func (s *Service) ListAssignments(ctx context.Context, in ListAssignmentsInput) ([]Assignment, error) {
	if in.EmployeeID <= 0 {
		return nil, ErrInvalidID
	}

	var assignments []Assignment
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindByID(txCtx, in.EmployeeID); err != nil {
			return err
		}

		result, err := s.repo.ListAssignments(txCtx, in.EmployeeID)
		if err != nil {
			return err
		}
		assignments = result
		return nil
	}); err != nil {
		return nil, err
	}

	return assignments, nil
}

func (s *Service) ensureCodeNotExists(ctx context.Context, code string) error {
	existing, err := s.repo.FindByCode(ctx, code)
	if err != nil && !errors.Is(err, ErrEmployeeNotFound) {
		return err
	}
	if existing != nil {
		return ErrEmployeeCodeAlreadyExists
	}
	return nil
}

func normalizeCode(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidEmployeeCode
	}
	return strings.ToUpper(trimmed), nil
}

// normalizePlanIDs は不正なIDを拒否し、重複を除いた順序維持のリストを返します。
func normalizePlanIDs(raw []int64) ([]int64, error) {
	seen := make(map[int64]struct{}, len(raw))
	ids := make([]int64, 0, len(raw))
	for _, id := range raw {
		if id <= 0 {
			return nil, fmt.Errorf("plan id %d: %w", id, ErrInvalidPlanID)
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}

func validateAge(age *int) error {
	if age == nil {
		return nil
	}
	if *age < 0 || *age > maxAge {
		return ErrInvalidAge
	}
	return nil
}

func cloneAge(age *int) *int {
	if age == nil {
		return nil
	}
	clone := *age
	return &clone
}
