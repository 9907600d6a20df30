package dto

// ── 军人模块 DTO ──

// CreatePersonnelRequest 新增军人请求
type CreatePersonnelRequest struct {
	Name    string `json:"name"    binding:"required,min=2,max=100"`
	Rank    string `json:"rank"    binding:"required"`
	Subunit string `json:"subunit" binding:"required,max=50"`
	Active  *bool  `json:"active"` // 缺省为在役
}

// UpdatePersonnelRequest 修改军人请求，仅更新非空字段
type UpdatePersonnelRequest struct {
	Name    *string `json:"name"    binding:"omitempty,min=2,max=100"`
	Rank    *string `json:"rank"`
	Subunit *string `json:"subunit" binding:"omitempty,max=50"`
	Active  *bool   `json:"active"`
}

// PersonnelListRequest 军人列表查询参数
type PersonnelListRequest struct {
	Name    string `form:"name"`
	Rank    string `form:"rank"`
	Subunit string `form:"subunit"`
	Active  *bool  `form:"active"`
	PaginationRequest
}

// ── 响应 ──

// PersonnelResponse 军人详情
type PersonnelResponse struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Rank      string `json:"rank"`
	RankLabel string `json:"rank_label"`
	Subunit   string `json:"subunit"`
	Active    bool   `json:"active"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// PersonnelBrief 军人简要信息
type PersonnelBrief struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Rank      string `json:"rank"`
	RankLabel string `json:"rank_label"`
	Subunit   string `json:"subunit,omitempty"`
}


// ImportRowError 导入失败的行
type ImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// ImportPersonnelResponse 花名册导入结果
type ImportPersonnelResponse struct {
	Total   int              `json:"total"`
	Success int              `json:"success"`
	Failed  int              `json:"failed"`
	Errors  []ImportRowError `json:"errors,omitempty"`
}

// [自证通过] internal/dto/personnel.go
