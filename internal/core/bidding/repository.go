package bidding

import "context"

// Repository は入札永続化の抽象です。
type Repository interface {
	CreateRound(ctx context.Context, round *Round) (*Round, error)
	FindRoundByID(ctx context.Context, id int64) (*Round, error)
	ListRounds(ctx context.Context) ([]*Round, error)

	CreateBid(ctx context.Context, bid *Bid) (*Bid, error)
	FindBidByID(ctx context.Context, id int64) (*Bid, error)
	UpdateBid(ctx context.Context, bid *Bid) (*Bid, error)
	// ListBidRows はラウンドの全入札を区分名・保険会社名つきで返します。
	// 再提示された履歴行も含みます。
	ListBidRows(ctx context.Context, roundID int64) ([]BidRow, error)
}
