package coverage

// EmployeeRef は補償解決に必要な従業員の参照情報です。
type EmployeeRef struct {
	ID   int64
	Name string
}

// CategoryRef は補償区分の参照情報です。
type CategoryRef struct {
	ID   int64
	Name string
}

// TierRow は従業員に割り当てられたプランの保険金額1行です。
type TierRow struct {
	PlanID       int64
	CategoryID   int64
	CategoryName string
	SumInsured   float64
}

// Entry は解決済み補償の1行です。区分名昇順で並びます。
type Entry struct {
	CategoryName string
	SumInsured   float64
	SourcePlanID int64
}

// Reason は非準拠の種別です。補償なしは不足よりも重大なケースとして
// 明示的に区別されます。
type Reason string

const (
	ReasonNoCoverage   Reason = "no_coverage"
	ReasonBelowMinimum Reason = "below_minimum"
)

// NonCompliantEmployee は規制下限を満たさない従業員の報告行です。
// 補償なしの場合 Coverage は nil です。
type NonCompliantEmployee struct {
	EmployeeID   int64
	EmployeeName string
	Coverage     *float64
	Reason       Reason
}

// CategoryCount はカタログ全体での区分ごとの保険金額件数です。
type CategoryCount struct {
	CategoryName string
	TierCount    int
}
