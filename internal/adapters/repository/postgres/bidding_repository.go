package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/coverbid/benefits-engine/internal/core/bidding"
	pgdb "github.com/coverbid/benefits-engine/internal/platform/db/postgres"
)

// BiddingRepository は PostgreSQL を利用した入札永続化の実装です。
type BiddingRepository struct {
	pool pgdb.Queryer
}

// NewBiddingRepository は BiddingRepository を生成します。
func NewBiddingRepository(pool pgdb.Queryer) *BiddingRepository {
	return &BiddingRepository{pool: pool}
}

// CreateRound は入札ラウンドを新規作成します。
func (r *BiddingRepository) CreateRound(ctx context.Context, round *bidding.Round) (*bidding.Round, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO bidding_rounds (name, start_date, end_date, created_at)
        VALUES ($1, $2, $3, $4)
        RETURNING id, name, start_date, end_date, created_at
    `,
		round.Name,
		nullableDate(round.StartDate),
		nullableDate(round.EndDate),
		round.CreatedAt,
	)

	created, err := scanRound(row)
	if err != nil {
		return nil, translateBiddingPgError(err)
	}
	return created, nil
}

// FindRoundByID は ID で入札ラウンドを取得します。
func (r *BiddingRepository) FindRoundByID(ctx context.Context, id int64) (*bidding.Round, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, name, start_date, end_date, created_at
          FROM bidding_rounds
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanRound(row)
	if err != nil {
		return nil, translateBiddingPgError(err)
	}
	return found, nil
}

// ListRounds は入札ラウンドの一覧を取得します。
func (r *BiddingRepository) ListRounds(ctx context.Context) ([]*bidding.Round, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT id, name, start_date, end_date, created_at
          FROM bidding_rounds
         ORDER BY id
    `)
	if err != nil {
		return nil, translateBiddingPgError(err)
	}
	defer rows.Close()

	var rounds []*bidding.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, round)
	}

	return rounds, rows.Err()
}

// CreateBid は入札を追記します。
func (r *BiddingRepository) CreateBid(ctx context.Context, bid *bidding.Bid) (*bidding.Bid, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        INSERT INTO bids (round_id, insurer_identity_id, category_id, premium, created_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, round_id, insurer_identity_id, category_id, premium, created_at
    `,
		bid.RoundID,
		bid.InsurerIdentityID,
		bid.CategoryID,
		bid.Premium,
		bid.CreatedAt,
	)

	created, err := scanBid(row)
	if err != nil {
		return nil, translateBiddingPgError(err)
	}
	return created, nil
}

// FindBidByID は ID で入札を取得します。
func (r *BiddingRepository) FindBidByID(ctx context.Context, id int64) (*bidding.Bid, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        SELECT id, round_id, insurer_identity_id, category_id, premium, created_at
          FROM bids
         WHERE id = $1
         LIMIT 1
    `, id)

	found, err := scanBid(row)
	if err != nil {
		return nil, translateBiddingPgError(err)
	}
	return found, nil
}

// UpdateBid は入札の保険料をその場で更新します。履歴行は増えません。
func (r *BiddingRepository) UpdateBid(ctx context.Context, bid *bidding.Bid) (*bidding.Bid, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	row := exec.QueryRow(ctx, `
        UPDATE bids
           SET premium = $1
         WHERE id = $2
        RETURNING id, round_id, insurer_identity_id, category_id, premium, created_at
    `,
		bid.Premium,
		bid.ID,
	)

	updated, err := scanBid(row)
	if err != nil {
		return nil, translateBiddingPgError(err)
	}
	return updated, nil
}

// ListBidRows はラウンドの全入札を区分名・保険会社名つきで返します。
func (r *BiddingRepository) ListBidRows(ctx context.Context, roundID int64) ([]bidding.BidRow, error) {
	exec := pgdb.QueryerFromContext(ctx, r.pool)
	rows, err := exec.Query(ctx, `
        SELECT b.id,
               b.category_id,
               c.name,
               b.insurer_identity_id,
               i.name,
               b.premium,
               b.created_at
          FROM bids b
          JOIN policy_categories c ON c.id = b.category_id
          JOIN identities i ON i.id = b.insurer_identity_id
         WHERE b.round_id = $1
         ORDER BY b.id
    `, roundID)
	if err != nil {
		return nil, translateBiddingPgError(err)
	}
	defer rows.Close()

	var bidRows []bidding.BidRow
	for rows.Next() {
		var row bidding.BidRow
		if err := rows.Scan(
			&row.BidID,
			&row.CategoryID,
			&row.CategoryName,
			&row.InsurerIdentityID,
			&row.InsurerName,
			&row.Premium,
			&row.CreatedAt,
		); err != nil {
			return nil, err
		}
		bidRows = append(bidRows, row)
	}

	return bidRows, rows.Err()
}

func scanRound(row pgx.Row) (*bidding.Round, error) {
	var (
		id        int64
		name      string
		startDate sql.NullTime
		endDate   sql.NullTime
		createdAt time.Time
	)

	if err := row.Scan(&id, &name, &startDate, &endDate, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bidding.ErrRoundNotFound
		}
		return nil, err
	}

	return &bidding.Round{
		ID:        id,
		Name:      name,
		StartDate: nullTimeToPtr(startDate),
		EndDate:   nullTimeToPtr(endDate),
		CreatedAt: createdAt,
	}, nil
}

func scanBid(row pgx.Row) (*bidding.Bid, error) {
	var bid bidding.Bid
	if err := row.Scan(
		&bid.ID,
		&bid.RoundID,
		&bid.InsurerIdentityID,
		&bid.CategoryID,
		&bid.Premium,
		&bid.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, bidding.ErrBidNotFound
		}
		return nil, err
	}
	return &bid, nil
}

func translateBiddingPgError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case foreignKeyViolationCode:
			switch pgErr.ConstraintName {
			case "bids_round_id_fkey":
				return bidding.ErrRoundNotFound
			case "bids_category_id_fkey":
				return bidding.ErrCategoryNotFound
			case "bids_insurer_identity_id_fkey":
				return bidding.ErrInsurerNotFound
			default:
				return err
			}
		case checkViolationCode:
			return bidding.ErrInvalidPremium
		}
	}

	return err
}

func nullableDate(value *time.Time) any {
	if value == nil {
		return nil
	}
	return *value
}

func nullTimeToPtr(value sql.NullTime) *time.Time {
	if !value.Valid {
		return nil
	}
	t := value.Time.UTC()
	return &t
}
