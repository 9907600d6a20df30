package dto

// ── 勤务模块 DTO ──

// RegisterDutyRequest 登记单条勤务
type RegisterDutyRequest struct {
	PersonnelID uint   `json:"personnel_id" binding:"required,min=1"`
	Date        string `json:"date"         binding:"required"`
	DutyType    string `json:"duty_type"    binding:"required"`
}

// RegisterBatchRequest 同一日期、同一勤务类型批量登记多人
type RegisterBatchRequest struct {
	Date         string `json:"date"          binding:"required"`
	DutyType     string `json:"duty_type"     binding:"required"`
	PersonnelIDs []uint `json:"personnel_ids" binding:"required,min=1,max=200,dive,min=1"`
}

// UpdateDutyRequest 修改勤务记录，仅更新非空字段
type UpdateDutyRequest struct {
	PersonnelID *uint   `json:"personnel_id" binding:"omitempty,min=1"`
	Date        *string `json:"date"`
	DutyType    *string `json:"duty_type"`
}

// CanAssignRequest 预检能否登记
type CanAssignRequest struct {
	PersonnelID uint   `form:"personnel_id" binding:"required,min=1"`
	Date        string `form:"date"         binding:"required"`
	DutyType    string `form:"duty_type"    binding:"required"`
	ExcludeID   uint   `form:"exclude_id"`
}

// ── 响应 ──

// CanAssignResponse 预检结果
type CanAssignResponse struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// DutyRecordResponse 勤务记录
type DutyRecordResponse struct {
	ID            uint            `json:"id"`
	PersonnelID   uint            `json:"personnel_id"`
	Personnel     *PersonnelBrief `json:"personnel,omitempty"`
	Date          string          `json:"date"`
	DutyType      string          `json:"duty_type"`
	DutyTypeLabel string          `json:"duty_type_label"`
	RecordedBy    *uint           `json:"recorded_by,omitempty"`
	RecordedAt    string          `json:"recorded_at"`
}

// BatchItemResult 批量登记中单人的结果
type BatchItemResult struct {
	PersonnelID  uint   `json:"personnel_id"`
	Success      bool   `json:"success"`
	Reason       string `json:"reason,omitempty"`
	DutyRecordID uint   `json:"duty_record_id,omitempty"`
}

// RegisterBatchResponse 批量登记结果
type RegisterBatchResponse struct {
	Date      string            `json:"date"`
	DutyType  string            `json:"duty_type"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []BatchItemResult `json:"results"`
}

// DutySection 日勤务表中的一个勤务类型分组
type DutySection struct {
	DutyType string               `json:"duty_type"`
	Label    string               `json:"label"`
	Records  []DutyRecordResponse `json:"records"`
}

// DailyRosterResponse 某日勤务表，按固定顺序分组
type DailyRosterResponse struct {
	Date     string        `json:"date"`
	Total    int           `json:"total"`
	Sections []DutySection `json:"sections"`
}

// [自证通过] internal/dto/duty.go
