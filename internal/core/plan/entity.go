package plan

import "time"

// PolicyCategory は補償区分(GTL・GCI・FWMI など)を表します。区分名は一意です。
type PolicyCategory struct {
	ID   int64
	Name string
}

// Plan は保険会社が提供するプランエンティティです。
type Plan struct {
	ID                int64
	Name              string
	InsurerIdentityID int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	Tiers             []Tier
}

// Tier はプランが一つの補償区分に対して宣言する保険金額です。
// 同一プラン内で区分ごとに高々一つしか存在しません。
type Tier struct {
	ID         int64
	PlanID     int64
	CategoryID int64
	SumInsured float64
}
