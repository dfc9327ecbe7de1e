package bidding

import "time"

// Round は保険会社が保険料を提示する入札ラウンドです。
type Round struct {
	ID        int64
	Name      string
	StartDate *time.Time
	EndDate   *time.Time
	CreatedAt time.Time
}

// Bid は一つの補償区分に対する保険料の提示です。追記専用で、同一
// (ラウンド・保険会社・区分) への再提示は履歴行として残ります。
type Bid struct {
	ID                int64
	RoundID           int64
	InsurerIdentityID int64
	CategoryID        int64
	Premium           float64
	CreatedAt         time.Time
}

// BidRow は入札に区分名と保険会社名を結合した読み取り用の行です。
type BidRow struct {
	BidID             int64
	CategoryID        int64
	CategoryName      string
	InsurerIdentityID int64
	InsurerName       string
	Premium           float64
	CreatedAt         time.Time
}

// Comparison は比較結果の1行です。区分名昇順・保険料昇順で並びます。
type Comparison struct {
	CategoryName string
	InsurerName  string
	Premium      float64
}
