package dto

// ── 离岗模块 DTO ──

// CreateAbsenceRequest 登记离岗请求，日期格式 yyyy-mm-dd，起止均含
type CreateAbsenceRequest struct {
	PersonnelID uint   `json:"personnel_id" binding:"required,min=1"`
	Kind        string `json:"kind"         binding:"required"`
	StartDate   string `json:"start_date"   binding:"required"`
	EndDate     string `json:"end_date"     binding:"required"`
	Notes       string `json:"notes"        binding:"max=500"`
}

// UpdateAbsenceRequest 修改离岗请求，仅更新非空字段
type UpdateAbsenceRequest struct {
	Kind      *string `json:"kind"`
	StartDate *string `json:"start_date"`
	EndDate   *string `json:"end_date"`
	Notes     *string `json:"notes" binding:"omitempty,max=500"`
}

// AbsenceListRequest 离岗列表查询参数（personnel_id 或 date 二选一）
type AbsenceListRequest struct {
	PersonnelID uint   `form:"personnel_id"`
	Date        string `form:"date"`
}

// ── 响应 ──

// AbsenceResponse 离岗记录
type AbsenceResponse struct {
	ID          uint            `json:"id"`
	PersonnelID uint            `json:"personnel_id"`
	Personnel   *PersonnelBrief `json:"personnel,omitempty"`
	Kind        string          `json:"kind"`
	KindLabel   string          `json:"kind_label"`
	StartDate   string          `json:"start_date"`
	EndDate     string          `json:"end_date"`
	Notes       string          `json:"notes,omitempty"`
}

// [自证通过] internal/dto/absence.go
