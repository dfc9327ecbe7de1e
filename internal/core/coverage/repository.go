package coverage

import "context"

// Repository は補償評価エンジンが必要とする読み取り専用の抽象です。
type Repository interface {
	FindEmployee(ctx context.Context, id int64) (*EmployeeRef, error)
	ListEmployees(ctx context.Context) ([]EmployeeRef, error)
	FindCategoryByName(ctx context.Context, name string) (*CategoryRef, error)
	// ListAssignedTiers は従業員の割当プランが宣言する保険金額を、
	// 区分名を結合した形ですべて返します。
	ListAssignedTiers(ctx context.Context, employeeID int64) ([]TierRow, error)
	CountTiersByCategory(ctx context.Context) ([]CategoryCount, error)
}
