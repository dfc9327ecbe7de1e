package identity

import "time"

// Role はアイデンティティの役割を表します。
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
	RoleInsurer  Role = "insurer"
)

// Identity は従業員・管理者・保険会社を束ねるアイデンティティエンティティです。
type Identity struct {
	ID        int64
	Name      string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}
