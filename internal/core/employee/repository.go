package employee

import "context"

// Repository は従業員永続化の抽象です。
type Repository interface {
	Create(ctx context.Context, emp *Employee) (*Employee, error)
	Update(ctx context.Context, emp *Employee) (*Employee, error)
	Delete(ctx context.Context, id int64) error
	FindByID(ctx context.Context, id int64) (*Employee, error)
	FindByCode(ctx context.Context, code string) (*Employee, error)
	List(ctx context.Context, filter ListEmployeesFilter) ([]*Employee, error)

	// LockForAssignment は従業員行を排他ロックします。同一従業員への
	// 一括差し替えを直列化するため、割当の削除・挿入より先に呼び出します。
	LockForAssignment(ctx context.Context, employeeID int64) error
	// FilterMissingPlanIDs は存在しないプランIDのみを返します。
	FilterMissingPlanIDs(ctx context.Context, planIDs []int64) ([]int64, error)
	// ReplaceAssignments は既存の割当をすべて削除し、batch を挿入します。
	// 戻り値は削除された既存割当の件数です。
	ReplaceAssignments(ctx context.Context, employeeID int64, batch []Assignment) (int, error)
	ListAssignments(ctx context.Context, employeeID int64) ([]Assignment, error)
}

// ListEmployeesFilter は一覧取得用フィルタです。
type ListEmployeesFilter struct {
	Department *string
	Limit      int
	Offset     int
}
