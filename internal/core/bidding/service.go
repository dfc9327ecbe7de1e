package bidding

import (
	"context"
	"sort"
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

// Service は入札に関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase は入札ユースケースの公開インターフェースです。
type UseCase interface {
	CreateRound(ctx context.Context, in CreateRoundInput) (*Round, error)
	GetRound(ctx context.Context, in GetRoundInput) (*Round, error)
	ListRounds(ctx context.Context) ([]*Round, error)
	SubmitBid(ctx context.Context, in SubmitBidInput) (*Bid, error)
	ReviseBid(ctx context.Context, in ReviseBidInput) (*Bid, error)
	ListBids(ctx context.Context, in ListBidsInput) ([]BidRow, error)
	CompareBids(ctx context.Context, in CompareBidsInput) ([]Comparison, error)
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

// CreateRoundInput は入札ラウンド作成時の入力です。
type CreateRoundInput struct {
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
}

// GetRoundInput は入札ラウンド取得時の入力です。
type GetRoundInput struct {
	ID int64
}

// SubmitBidInput は入札提示時の入力です。
type SubmitBidInput struct {
	RoundID           int64
	InsurerIdentityID int64
	CategoryID        int64
	Premium           float64
}

// ReviseBidInput は既存入札の保険料訂正時の入力です。履歴行は増えません。
type ReviseBidInput struct {
	BidID   int64
	Premium float64
}

// ListBidsInput は入札履歴取得時の入力です。
type ListBidsInput struct {
	RoundID int64
}

// CompareBidsInput は入札比較時の入力です。
type CompareBidsInput struct {
	RoundID int64
}

// CreateRound は新しい入札ラウンドを作成します。
func (s *Service) CreateRound(ctx context.Context, in CreateRoundInput) (*Round, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, ErrInvalidName
	}

	if in.StartDate != nil && in.EndDate != nil && in.EndDate.Before(*in.StartDate) {
		return nil, ErrInvalidDateRange
	}

	return s.repo.CreateRound(ctx, &Round{
		Name:      name,
		StartDate: cloneTime(in.StartDate),
		EndDate:   cloneTime(in.EndDate),
		CreatedAt: s.clock.Now(),
	})
}

// GetRound は入札ラウンドを取得します。
func (s *Service) GetRound(ctx context.Context, in GetRoundInput) (*Round, error) {
	if in.ID <= 0 {
		return nil, ErrInvalidID
	}
	return s.repo.FindRoundByID(ctx, in.ID)
}

// ListRounds は入札ラウンドの一覧を取得します。
func (s *Service) ListRounds(ctx context.Context) ([]*Round, error) {
	return s.repo.ListRounds(ctx)
}

// SubmitBid は入札を追記します。同一 (ラウンド・保険会社・区分) への再提示は
// 新しい行になり、比較では最新の行だけが有効扱いになります。
func (s *Service) SubmitBid(ctx context.Context, in SubmitBidInput) (*Bid, error) {
	if in.RoundID <= 0 || in.InsurerIdentityID <= 0 || in.CategoryID <= 0 {
		return nil, ErrInvalidID
	}
	if in.Premium < 0 {
		return nil, ErrInvalidPremium
	}

	var created *Bid
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		result, err := s.repo.CreateBid(txCtx, &Bid{
			RoundID:           in.RoundID,
			InsurerIdentityID: in.InsurerIdentityID,
			CategoryID:        in.CategoryID,
			Premium:           in.Premium,
			CreatedAt:         s.clock.Now(),
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

// ReviseBid は既存入札の保険料をその場で訂正します。読み取りと更新を同一
// トランザクションで行います。
func (s *Service) ReviseBid(ctx context.Context, in ReviseBidInput) (*Bid, error) {
	if in.BidID <= 0 {
		return nil, ErrInvalidID
	}
	if in.Premium < 0 {
		return nil, ErrInvalidPremium
	}

	var revised *Bid
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		existing, err := s.repo.FindBidByID(txCtx, in.BidID)
		if err != nil {
			return err
		}

		existing.Premium = in.Premium

		result, err := s.repo.UpdateBid(txCtx, existing)
		if err != nil {
			return err
		}
		revised = result
		return nil
	}); err != nil {
		return nil, err
	}

	return revised, nil
}

// ListBids はラウンドの入札履歴を再提示分も含めてすべて返します。
func (s *Service) ListBids(ctx context.Context, in ListBidsInput) ([]BidRow, error) {
	if in.RoundID <= 0 {
		return nil, ErrInvalidID
	}

	var rows []BidRow
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindRoundByID(txCtx, in.RoundID); err != nil {
			return err
		}

		result, err := s.repo.ListBidRows(txCtx, in.RoundID)
		if err != nil {
			return err
		}
		rows = result
		return nil
	}); err != nil {
		return nil, err
	}

	return rows, nil
}

// CompareBids はラウンドの有効な入札を区分ごとに比較します。入札のない
// ラウンドは空の結果になり、ラウンド自体が存在しない場合はエラーです。
func (s *Service) CompareBids(ctx context.Context, in CompareBidsInput) ([]Comparison, error) {
	if in.RoundID <= 0 {
		return nil, ErrInvalidID
	}

	var rows []BidRow
	if err := s.tx.WithinReadOnly(ctx, func(txCtx context.Context) error {
		if _, err := s.repo.FindRoundByID(txCtx, in.RoundID); err != nil {
			return err
		}

		result, err := s.repo.ListBidRows(txCtx, in.RoundID)
		if err != nil {
			return err
		}
		rows = result
		return nil
	}); err != nil {
		return nil, err
	}

	return rankComparisons(currentBids(rows)), nil
}

// currentBids は同一 (保険会社・区分) の再提示のうち最新の行だけを残します。
// 作成順は採番されたID順とみなします。訂正ではなく再提示が優先される
// 設計判断です。
func currentBids(rows []BidRow) []BidRow {
	type key struct {
		insurerID  int64
		categoryID int64
	}

	latest := make(map[key]BidRow, len(rows))
	for _, row := range rows {
		k := key{insurerID: row.InsurerIdentityID, categoryID: row.CategoryID}
		if existing, ok := latest[k]; ok && existing.BidID >= row.BidID {
			continue
		}
		latest[k] = row
	}

	current := make([]BidRow, 0, len(latest))
	for _, row := range latest {
		current = append(current, row)
	}
	return current
}

// rankComparisons は区分名昇順、同一区分内は保険料昇順(最安優先)で並べます。
// 保険料が等しい場合は保険会社名昇順で決定的に順序づけます。
func rankComparisons(rows []BidRow) []Comparison {
	comparisons := make([]Comparison, 0, len(rows))
	for _, row := range rows {
		comparisons = append(comparisons, Comparison{
			CategoryName: row.CategoryName,
			InsurerName:  row.InsurerName,
			Premium:      row.Premium,
		})
	}

	sort.Slice(comparisons, func(i, j int) bool {
		a, b := comparisons[i], comparisons[j]
		if a.CategoryName != b.CategoryName {
			return a.CategoryName < b.CategoryName
		}
		if a.Premium != b.Premium {
			return a.Premium < b.Premium
		}
		return a.InsurerName < b.InsurerName
	})

	return comparisons
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}
