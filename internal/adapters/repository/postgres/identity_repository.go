package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coverbid/benefits-engine/internal/core/identity"
	pgdb "github.com/coverbid/benefits-engine/internal/platform/db/postgres"
)

const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
	checkViolationCode      = "23514"
)

// IdentityRepository は PostgreSQL を利用したアイデンティティ永続化の実装です。
type IdentityRepository struct {
	pool pgdb.Queryer
}

// NewIdentityRepository は IdentityRepository を生成します。
func NewIdentityRepository(pool pgdb.Queryer) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

// Create はアイデンティティを新規作成します。
func (r *IdentityRepository) Create(ctx context.Context, ident *identity.Identity) (*identity.Identity, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO identities (name, role, created_at, updated_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, role, created_at, updated_at
    `,
		ident.Name,
		string(ident.Role),
		ident.CreatedAt,
		ident.UpdatedAt,
	)

	created, err := scanIdentity(row)
	if err != nil {
		return nil, translateIdentityPgError(err)
	}
	return created, nil
}

// FindByID は ID でアイデンティティを取得します。
func (r *IdentityRepository) FindByID(ctx context.Context, id int64) (*identity.Identity, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, role, created_at, updated_at
          FROM identities
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanIdentity(row)
	if err != nil {
		return nil, translateIdentityPgError(err)
	}
	return found, nil
}

// FindByName は名前でアイデンティティを取得します。
func (r *IdentityRepository) FindByName(ctx context.Context, name string) (*identity.Identity, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, role, created_at, updated_at
          FROM identities
         WHERE name = $1
         LIMIT 1
    `, name)

	found, err := scanIdentity(row)
	if err != nil {
		return nil, translateIdentityPgError(err)
	}
	return found, nil
}

// List はアイデンティティの一覧を取得します。
func (r *IdentityRepository) List(ctx context.Context, filter identity.ListIdentitiesFilter) ([]*identity.Identity, error) {
	query := `
        SELECT id, name, role, created_at, updated_at
          FROM identities
    `
	args := []any{}
	if filter.Role != nil {
		query += ` WHERE role = $1`
		args = append(args, string(*filter.Role))
	}
	query += ` ORDER BY id`

	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, translateIdentityPgError(err)
	}
	defer rows.Close()

	var identities []*identity.Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, translateIdentityPgError(err)
		}
		identities = append(identities, ident)
	}

	if err := rows.Err(); err != nil {
		return nil, translateIdentityPgError(err)
	}

	return identities, nil
}

func scanIdentity(row pgx.Row) (*identity.Identity, error) {
	var (
		id        int64
		name      string
		role      string
		createdAt time.Time
		updatedAt time.Time
	)

	if err := row.Scan(&id, &name, &role, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, identity.ErrIdentityNotFound
		}
		return nil, err
	}

	return &identity.Identity{
		ID:        id,
		Name:      name,
		Role:      identity.Role(role),
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

func translateIdentityPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return identity.ErrIdentityNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolationCode:
			return identity.ErrNameAlreadyExists
		case checkViolationCode:
			return identity.ErrInvalidRole
		}
	}

	return err
}
