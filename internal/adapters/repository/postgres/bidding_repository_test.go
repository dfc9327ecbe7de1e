package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/coverbid/benefits-engine/internal/core/bidding"
)

func TestScanRound_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanRound(row)
	if !errors.Is(err, bidding.ErrRoundNotFound) {
		t.Fatalf("expected ErrRoundNotFound, got %v", err)
	}
}

func TestScanBid_NoRows(t *testing.T) {
	t.Parallel()

	row := stubRow{scanFn: func(dest ...interface{}) error {
		return pgx.ErrNoRows
	}}

	_, err := scanBid(row)
	if !errors.Is(err, bidding.ErrBidNotFound) {
		t.Fatalf("expected ErrBidNotFound, got %v", err)
	}
}

func TestTranslateBiddingPgError(t *testing.T) {
	t.Parallel()

	roundErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "bids_round_id_fkey"}
	if !errors.Is(translateBiddingPgError(roundErr), bidding.ErrRoundNotFound) {
		t.Fatalf("expected round fk violation to map to ErrRoundNotFound")
	}

	categoryErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "bids_category_id_fkey"}
	if !errors.Is(translateBiddingPgError(categoryErr), bidding.ErrCategoryNotFound) {
		t.Fatalf("expected category fk violation to map to ErrCategoryNotFound")
	}

	insurerErr := &pgconn.PgError{Code: foreignKeyViolationCode, ConstraintName: "bids_insurer_identity_id_fkey"}
	if !errors.Is(translateBiddingPgError(insurerErr), bidding.ErrInsurerNotFound) {
		t.Fatalf("expected insurer fk violation to map to ErrInsurerNotFound")
	}

	checkErr := &pgconn.PgError{Code: checkViolationCode}
	if !errors.Is(translateBiddingPgError(checkErr), bidding.ErrInvalidPremium) {
		t.Fatalf("expected check violation to map to ErrInvalidPremium")
	}

	other := errors.New("other")
	if translateBiddingPgError(other) != other {
		t.Fatalf("unexpected translation for generic error")
	}
}

func TestBiddingRepository_ListBidRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create mock pool: %v", err)
	}
	defer mock.Close()

	repo := NewBiddingRepository(mock)

	query := regexp.QuoteMeta(`
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
    `)

	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "category_id", "name", "insurer_identity_id", "name", "premium", "created_at"}).
		AddRow(int64(1), int64(10), "GTL", int64(2), "AIA", 12.50, now).
		AddRow(int64(2), int64(10), "GTL", int64(3), "Singlife", 11.00, now)

	mock.ExpectQuery(query).
		WithArgs(int64(1)).
		WillReturnRows(rows)

	bidRows, err := repo.ListBidRows(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListBidRows returned error: %v", err)
	}

	if len(bidRows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(bidRows))
	}
	if bidRows[0].InsurerName != "AIA" || bidRows[1].Premium != 11.00 {
		t.Fatalf("unexpected rows: %+v", bidRows)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
