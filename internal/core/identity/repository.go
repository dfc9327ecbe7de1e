package identity

import "context"

// Repository はアイデンティティ永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, ident *Identity) (*Identity, error)
	FindByID(ctx context.Context, id int64) (*Identity, error)
	FindByName(ctx context.Context, name string) (*Identity, error)
	List(ctx context.Context, filter ListIdentitiesFilter) ([]*Identity, error)
}

// ListIdentitiesFilter は一覧取得用フィルタです。
type ListIdentitiesFilter struct {
	Role *Role
}
