package employee

import (
	"time"

	"github.com/google/uuid"
)

// Employee は従業員エンティティです。アイデンティティと1対1で紐づきます。
type Employee struct {
	ID         int64
	IdentityID int64
	Code       string
	Name       string
	Department string
	Age        *int
	Gender     string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Assignment は従業員とプランを結ぶ多対多のリンクレコードです。
// BatchRef は一括差し替えごとに採番され、置き換え単位を監査用に識別します。
type Assignment struct {
	EmployeeID int64
	PlanID     int64
	BatchRef   uuid.UUID
	AssignedAt time.Time
}
