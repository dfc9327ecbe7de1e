package identity

import (
	"context"
	"errors"
	"fmt"
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

// Service はアイデンティティに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
}

// UseCase はアイデンティティユースケースの公開インターフェースです。
type UseCase interface {
	CreateIdentity(ctx context.Context, in CreateIdentityInput) (*Identity, error)
	GetIdentity(ctx context.Context, in GetIdentityInput) (*Identity, error)
	ListIdentities(ctx context.Context, in ListIdentitiesInput) ([]*Identity, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock) *Service {
	if clock == nil {
		clock = realClock{}
	}
	return &Service{repo: repo, clock: clock}
}

// CreateIdentityInput はアイデンティティ作成時の入力です。
type CreateIdentityInput struct {
	Name string
	Role Role
}

// GetIdentityInput はアイデンティティ取得時の入力です。
type GetIdentityInput struct {
	ID int64
}

// ListIdentitiesInput は一覧取得時の入力です。
type ListIdentitiesInput struct {
	Role *Role
}

// CreateIdentity は新しいアイデンティティを作成します。
func (s *Service) CreateIdentity(ctx context.Context, in CreateIdentityInput) (*Identity, error) {
	name, err := normalizeName(in.Name)
	if err != nil {
		return nil, err
	}

	if !isValidRole(in.Role) {
		return nil, fmt.Errorf("role %q: %w", in.Role, ErrInvalidRole)
	}

	if err := s.ensureNameNotExists(ctx, name); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &Identity{
		Name:      name,
		Role:      in.Role,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// GetIdentity はアイデンティティを取得します。
func (s *Service) GetIdentity(ctx context.Context, in GetIdentityInput) (*Identity, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}
	return s.repo.FindByID(ctx, in.ID)
}

// ListIdentities はアイデンティティの一覧を取得します。
func (s *Service) ListIdentities(ctx context.Context, in ListIdentitiesInput) ([]*Identity, error) {
	var rolePtr *Role
	if in.Role != nil {
		if !isValidRole(*in.Role) {
			return nil, fmt.Errorf("role %q: %w", *in.Role, ErrInvalidRole)
		}
		role := *in.Role
		rolePtr = &role
	}

	return s.repo.List(ctx, ListIdentitiesFilter{Role: rolePtr})
}

func (s *Service) ensureNameNotExists(ctx context.Context, name string) error {
	existing, err := s.repo.FindByName(ctx, name)
	if err != nil && !errors.Is(err, ErrIdentityNotFound) {
		return err
	}
	if existing != nil {
		return ErrNameAlreadyExists
	}
	return nil
}

func normalizeName(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

func isValidRole(role Role) bool {
	switch role {
	case RoleEmployee, RoleAdmin, RoleInsurer:
		return true
	default:
		return false
	}
}
