package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sargenteacao/backend/internal/cache"
	"sargenteacao/backend/internal/dto"
	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/internal/repository"
)

// ── 勤务登记规则原因 ──

const (
	ReasonRankNotPermitted  = "duty type not permitted for this rank"
	ReasonPersonAlreadyBusy = "person already has duty on this date"
	ReasonRoleTaken         = "role already assigned for this date"
	ReasonPersonnelInactive = "personnel is not active"
	ReasonPersonnelMissing  = "personnel not found"
)

// ── 勤务模块业务错误 ──

var (
	ErrDutyRecordNotFound = errors.New("勤务记录不存在")

	ErrDutyNotPermitted  = newRuleError(ReasonRankNotPermitted)
	ErrPersonAlreadyBusy = newRuleError(ReasonPersonAlreadyBusy)
	ErrRoleAlreadyTaken  = newRuleError(ReasonRoleTaken)
	ErrPersonnelInactive = newRuleError(ReasonPersonnelInactive)
)

// Decision 登记预检结果
type Decision struct {
	Allowed bool
	Reason  string
}

// DutyService 勤务登记业务接口
type DutyService interface {
	// CanAssign 预检 personnel 能否在 date 担任 dutyType；excludeID 非 0 时忽略该记录（修改场景）
	CanAssign(ctx context.Context, personnel *model.Personnel, dutyType model.DutyType, date time.Time, excludeID uint) (Decision, error)
	// Check HTTP 预检入口
	Check(ctx context.Context, req *dto.CanAssignRequest) (*dto.CanAssignResponse, error)
	// Register 登记单条勤务
	Register(ctx context.Context, req *dto.RegisterDutyRequest, callerID uint) (*dto.DutyRecordResponse, error)
	// RegisterBatch 批量登记：逐人独立校验，单人失败不影响其他人
	RegisterBatch(ctx context.Context, req *dto.RegisterBatchRequest, callerID uint) (*dto.RegisterBatchResponse, error)
	// Update 修改勤务记录
	Update(ctx context.Context, id uint, req *dto.UpdateDutyRequest, callerID uint) (*dto.DutyRecordResponse, error)
	// Delete 删除勤务记录
	Delete(ctx context.Context, id uint) error
	// Get 勤务记录详情
	Get(ctx context.Context, id uint) (*dto.DutyRecordResponse, error)
	// ListByDate 某日勤务表，按固定顺序分组
	ListByDate(ctx context.Context, date time.Time) (*dto.DailyRosterResponse, error)
}

type dutyService struct {
	repo   *repository.Repository
	cache  cache.ResultCache
	logger *zap.Logger
}

// NewDutyService 创建 DutyService 实例
func NewDutyService(repo *repository.Repository, resultCache cache.ResultCache, logger *zap.Logger) DutyService {
	if resultCache == nil {
		resultCache = cache.NoopCache{}
	}
	return &dutyService{repo: repo, cache: resultCache, logger: logger}
}

// ════════════════════════════════════════════════════════════
// CanAssign — 军衔 / 每日唯一 / 特殊岗位唯一
// ════════════════════════════════════════════════════════════

func (s *dutyService) CanAssign(ctx context.Context, personnel *model.Personnel, dutyType model.DutyType, date time.Time, excludeID uint) (Decision, error) {
	err := s.check(ctx, personnel, dutyType, date, excludeID)
	if err == nil {
		return Decision{Allowed: true}, nil
	}
	var rule *ruleError
	if errors.As(err, &rule) {
		return Decision{Allowed: false, Reason: rule.reason}, nil
	}
	return Decision{}, err
}

// check 依次校验，命中即返回对应规则错误；存储错误包装为 ErrStoreUnavailable
func (s *dutyService) check(ctx context.Context, personnel *model.Personnel, dutyType model.DutyType, date time.Time, excludeID uint) error {
	// 1. 军衔权限
	if !personnel.Rank.CanHold(dutyType) {
		return ErrDutyNotPermitted
	}

	// 2. 每人每日一条
	busy, err := s.repo.DutyRecord.ExistsOn(ctx, personnel.PersonnelID, date, excludeID)
	if err != nil {
		s.logger.Error("查询当日勤务失败", zap.Error(err))
		return storeError("查询当日勤务", err)
	}
	if busy {
		return ErrPersonAlreadyBusy
	}

	// 3. 特殊岗位每日一人
	if dutyType.IsSpecial() {
		taken, err := s.repo.DutyRecord.RoleTakenOn(ctx, dutyType, date, excludeID)
		if err != nil {
			s.logger.Error("查询特殊岗位占用失败", zap.Error(err))
			return storeError("查询特殊岗位占用", err)
		}
		if taken {
			return ErrRoleAlreadyTaken
		}
	}

	return nil
}

func (s *dutyService) Check(ctx context.Context, req *dto.CanAssignRequest) (*dto.CanAssignResponse, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	dutyType, err := model.ParseDutyType(req.DutyType)
	if err != nil {
		return nil, err
	}
	personnel, err := s.getPersonnel(ctx, req.PersonnelID)
	if err != nil {
		return nil, err
	}

	decision, err := s.CanAssign(ctx, personnel, dutyType, date, req.ExcludeID)
	if err != nil {
		return nil, err
	}
	return &dto.CanAssignResponse{Allowed: decision.Allowed, Reason: decision.Reason}, nil
}

// ════════════════════════════════════════════════════════════
// 写操作：校验 → 持久化 → 同步失效缓存
// ════════════════════════════════════════════════════════════

func (s *dutyService) Register(ctx context.Context, req *dto.RegisterDutyRequest, callerID uint) (*dto.DutyRecordResponse, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	dutyType, err := model.ParseDutyType(req.DutyType)
	if err != nil {
		return nil, err
	}

	personnel, err := s.getPersonnel(ctx, req.PersonnelID)
	if err != nil {
		return nil, err
	}

	rec, err := s.create(ctx, personnel, dutyType, date, callerID)
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateFrom(ctx, date)

	s.logger.Info("勤务已登记",
		zap.Uint("duty_record_id", rec.DutyRecordID),
		zap.Uint("personnel_id", personnel.PersonnelID),
		zap.String("date", model.FormatDate(date)),
		zap.String("duty_type", string(dutyType)),
		zap.Uint("caller_id", callerID),
	)
	return toDutyRecordResponse(rec), nil
}

func (s *dutyService) RegisterBatch(ctx context.Context, req *dto.RegisterBatchRequest, callerID uint) (*dto.RegisterBatchResponse, error) {
	date, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	dutyType, err := model.ParseDutyType(req.DutyType)
	if err != nil {
		return nil, err
	}

	resp := &dto.RegisterBatchResponse{
		Date:     model.FormatDate(date),
		DutyType: string(dutyType),
		Results:  make([]dto.BatchItemResult, 0, len(req.PersonnelIDs)),
	}

	// 已有成功写入时，无论后续是否出错都必须失效缓存
	defer func() {
		if resp.Succeeded > 0 {
			s.cache.InvalidateFrom(ctx, date)
		}
	}()

	for _, id := range req.PersonnelIDs {
		item := dto.BatchItemResult{PersonnelID: id}

		personnel, err := s.getPersonnel(ctx, id)
		if err == nil {
			var rec *model.DutyRecord
			rec, err = s.create(ctx, personnel, dutyType, date, callerID)
			if err == nil {
				item.Success = true
				item.DutyRecordID = rec.DutyRecordID
			}
		}

		if err != nil {
			reason, ok := batchReason(err)
			if !ok {
				// 存储故障中止批次，已成功的记录保留
				s.logger.Error("批量登记中止",
					zap.Int("succeeded", resp.Succeeded),
					zap.Uint("personnel_id", id),
					zap.Error(err),
				)
				return nil, err
			}
			item.Reason = reason
			resp.Failed++
		} else {
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, item)
	}

	s.logger.Info("批量登记勤务完成",
		zap.String("date", resp.Date),
		zap.String("duty_type", resp.DutyType),
		zap.Int("succeeded", resp.Succeeded),
		zap.Int("failed", resp.Failed),
		zap.Uint("caller_id", callerID),
	)
	return resp, nil
}

// batchReason 可计入单人失败的错误返回原因；其余错误（存储故障）返回 ok=false
func batchReason(err error) (string, bool) {
	var rule *ruleError
	switch {
	case errors.As(err, &rule):
		return rule.reason, true
	case errors.Is(err, ErrPersonnelNotFound):
		return ReasonPersonnelMissing, true
	}
	return "", false
}

func (s *dutyService) Update(ctx context.Context, id uint, req *dto.UpdateDutyRequest, callerID uint) (*dto.DutyRecordResponse, error) {
	rec, err := s.repo.DutyRecord.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDutyRecordNotFound
		}
		s.logger.Error("查询勤务记录失败", zap.Error(err))
		return nil, storeError("查询勤务记录", err)
	}
	oldDate := model.DateOf(rec.Date)

	if req.Date != nil {
		d, err := model.ParseDate(*req.Date)
		if err != nil {
			return nil, err
		}
		rec.Date = d
	}
	if req.DutyType != nil {
		dt, err := model.ParseDutyType(*req.DutyType)
		if err != nil {
			return nil, err
		}
		rec.DutyType = dt
	}
	if req.PersonnelID != nil && *req.PersonnelID != rec.PersonnelID {
		rec.PersonnelID = *req.PersonnelID
		rec.Personnel = nil
	}

	personnel := rec.Personnel
	if personnel == nil {
		if personnel, err = s.getPersonnel(ctx, rec.PersonnelID); err != nil {
			return nil, err
		}
	}
	if !personnel.Active {
		return nil, ErrPersonnelInactive
	}

	if err := s.check(ctx, personnel, rec.DutyType, rec.Date, rec.DutyRecordID); err != nil {
		return nil, err
	}
	if err := s.repo.DutyRecord.Update(ctx, rec); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateReason(ctx, personnel, rec.DutyType, rec.Date, rec.DutyRecordID)
		}
		s.logger.Error("更新勤务记录失败", zap.Error(err))
		return nil, storeError("更新勤务记录", err)
	}
	rec.Personnel = personnel

	from := oldDate
	if rec.Date.Before(from) {
		from = rec.Date
	}
	s.cache.InvalidateFrom(ctx, from)

	s.logger.Info("勤务已修改",
		zap.Uint("duty_record_id", rec.DutyRecordID),
		zap.String("old_date", model.FormatDate(oldDate)),
		zap.String("date", model.FormatDate(rec.Date)),
		zap.Uint("caller_id", callerID),
	)
	return toDutyRecordResponse(rec), nil
}

func (s *dutyService) Delete(ctx context.Context, id uint) error {
	rec, err := s.repo.DutyRecord.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrDutyRecordNotFound
		}
		s.logger.Error("查询勤务记录失败", zap.Error(err))
		return storeError("查询勤务记录", err)
	}
	if err := s.repo.DutyRecord.Delete(ctx, id); err != nil {
		s.logger.Error("删除勤务记录失败", zap.Error(err))
		return storeError("删除勤务记录", err)
	}
	s.cache.InvalidateFrom(ctx, rec.Date)
	return nil
}

func (s *dutyService) Get(ctx context.Context, id uint) (*dto.DutyRecordResponse, error) {
	rec, err := s.repo.DutyRecord.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDutyRecordNotFound
		}
		s.logger.Error("查询勤务记录失败", zap.Error(err))
		return nil, storeError("查询勤务记录", err)
	}
	return toDutyRecordResponse(rec), nil
}

func (s *dutyService) ListByDate(ctx context.Context, date time.Time) (*dto.DailyRosterResponse, error) {
	date = model.DateOf(date)
	records, err := s.repo.DutyRecord.ListByDate(ctx, date)
	if err != nil {
		s.logger.Error("查询日勤务表失败", zap.Error(err))
		return nil, storeError("查询日勤务表", err)
	}

	byType := make(map[model.DutyType][]dto.DutyRecordResponse)
	for i := range records {
		byType[records[i].DutyType] = append(byType[records[i].DutyType], *toDutyRecordResponse(&records[i]))
	}

	resp := &dto.DailyRosterResponse{
		Date:     model.FormatDate(date),
		Total:    len(records),
		Sections: make([]dto.DutySection, 0, len(model.AllDutyTypes())),
	}
	for _, dt := range model.AllDutyTypes() {
		section := dto.DutySection{DutyType: string(dt), Label: dt.Label(), Records: byType[dt]}
		if section.Records == nil {
			section.Records = []dto.DutyRecordResponse{}
		}
		resp.Sections = append(resp.Sections, section)
	}
	return resp, nil
}

// ── 辅助函数 ──

// create 校验并写入一条勤务；写入时的唯一约束冲突映射为对应规则错误
func (s *dutyService) create(ctx context.Context, personnel *model.Personnel, dutyType model.DutyType, date time.Time, callerID uint) (*model.DutyRecord, error) {
	if !personnel.Active {
		return nil, ErrPersonnelInactive
	}
	if err := s.check(ctx, personnel, dutyType, date, 0); err != nil {
		return nil, err
	}

	rec := &model.DutyRecord{
		PersonnelID: personnel.PersonnelID,
		Date:        date,
		DutyType:    dutyType,
	}
	if callerID != 0 {
		rec.RecordedBy = &callerID
	}

	if err := s.repo.DutyRecord.Create(ctx, rec); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateReason(ctx, personnel, dutyType, date, 0)
		}
		s.logger.Error("写入勤务记录失败", zap.Error(err))
		return nil, storeError("写入勤务记录", err)
	}
	rec.Personnel = personnel
	return rec, nil
}

// duplicateReason 并发写入撞上唯一约束后重新判定具体原因
func (s *dutyService) duplicateReason(ctx context.Context, personnel *model.Personnel, dutyType model.DutyType, date time.Time, excludeID uint) error {
	if err := s.check(ctx, personnel, dutyType, date, excludeID); err != nil {
		return err
	}
	return ErrPersonAlreadyBusy
}

func (s *dutyService) getPersonnel(ctx context.Context, id uint) (*model.Personnel, error) {
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

// [自证通过] internal/service/duty_service.go
