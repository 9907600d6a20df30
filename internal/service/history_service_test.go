package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"sargenteacao/backend/internal/model"
	pkgerrors "sargenteacao/backend/pkg/errors"
)

// ── 勤务历史 ──

func TestHistoryService_Personnel(t *testing.T) {
	f := newFixture()
	id := f.addPersonnel("Silva", model.RankSoldado)
	f.duties.add(id, mustDate("2024-05-28"), model.DutyGuarda)
	f.duties.add(id, mustDate("2024-06-03"), model.DutyPlantao)
	f.duties.add(id, mustDate("2024-06-15"), model.DutyGuarda)
	svc := NewHistoryService(f.repo, f.logger)

	resp, err := svc.Personnel(context.Background(), id, 2024, 6)
	if err != nil {
		t.Fatalf("Personnel 失败: %v", err)
	}
	if resp.TotalDuties != 3 || resp.MonthDuties != 2 {
		t.Errorf("期望总数 3、当月 2，实际 %d / %d", resp.TotalDuties, resp.MonthDuties)
	}
	if resp.LastDuty == nil || resp.LastDuty.Date != "2024-06-15" {
		t.Errorf("最近一次勤务应为 2024-06-15: %+v", resp.LastDuty)
	}
	if resp.Records[len(resp.Records)-1].Date != "2024-05-28" {
		t.Errorf("记录应按日期倒序")
	}
}

func TestHistoryService_DefaultsAndErrors(t *testing.T) {
	f := newFixture()
	id := f.addPersonnel("Silva", model.RankSoldado)
	svc := NewHistoryService(f.repo, f.logger).(*historyService)
	svc.now = func() time.Time { return time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC) }
	ctx := context.Background()

	resp, err := svc.Personnel(ctx, id, 0, 0)
	if err != nil {
		t.Fatalf("Personnel 失败: %v", err)
	}
	if resp.Year != 2024 || resp.Month != 2 || resp.LastDuty != nil || len(resp.Records) != 0 {
		t.Errorf("缺省应为当月且无记录: %+v", resp)
	}

	if _, err := svc.Personnel(ctx, id, 2024, 13); !errors.Is(err, pkgerrors.ErrInvalidArgument) {
		t.Errorf("期望 ErrInvalidArgument，实际: %v", err)
	}
	if _, err := svc.Personnel(ctx, 404, 2024, 6); !errors.Is(err, ErrPersonnelNotFound) {
		t.Errorf("期望 ErrPersonnelNotFound，实际: %v", err)
	}
}

func TestMonthBounds(t *testing.T) {
	first, last := monthBounds(2024, 2)
	if model.FormatDate(first) != "2024-02-01" || model.FormatDate(last) != "2024-02-29" {
		t.Errorf("闰年二月边界错误: %s ~ %s", model.FormatDate(first), model.FormatDate(last))
	}
	_, last = monthBounds(2023, 12)
	if model.FormatDate(last) != "2023-12-31" {
		t.Errorf("十二月末日错误: %s", model.FormatDate(last))
	}
}
