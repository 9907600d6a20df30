package repository_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sargenteacao/backend/config"
	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/internal/repository"
	"sargenteacao/backend/pkg/database"
	pkgerrors "sargenteacao/backend/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

// newTestDB 每个测试独立的内存 sqlite 库（真实唯一约束与外键）
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	cfg := &config.DatabaseConfig{
		Driver:       "sqlite",
		Path:         fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		MaxOpenConns: 1,
	}
	db, err := database.NewDB(cfg, "error", zap.NewNop())
	if err != nil {
		t.Fatalf("初始化测试数据库失败: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func day(d int) time.Time {
	return time.Date(2024, 6, d, 0, 0, 0, 0, time.UTC)
}

func mustPersonnel(t *testing.T, repo *repository.Repository, name string, rank model.Rank) *model.Personnel {
	t.Helper()
	p := &model.Personnel{Name: name, Rank: rank, Subunit: "1ª Cia", Active: true}
	if err := repo.Personnel.Create(context.Background(), p); err != nil {
		t.Fatalf("创建军人失败: %v", err)
	}
	return p
}

func mustDuty(t *testing.T, repo *repository.Repository, p *model.Personnel, date time.Time, dt model.DutyType) *model.DutyRecord {
	t.Helper()
	rec := &model.DutyRecord{PersonnelID: p.PersonnelID, Date: date, DutyType: dt}
	if err := repo.DutyRecord.Create(context.Background(), rec); err != nil {
		t.Fatalf("创建勤务失败: %v", err)
	}
	return rec
}

// ═══════════════════════════════════════════════════════════
// Test: Personnel
// ═══════════════════════════════════════════════════════════

func TestPersonnelRepo_ListActiveAndFilter(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	silva := mustPersonnel(t, repo, "Silva", model.RankSoldado)
	costa := mustPersonnel(t, repo, "Costa", model.RankCabo)
	souza := mustPersonnel(t, repo, "Souza", model.RankSoldado)
	souza.Active = false
	if err := repo.Personnel.Update(ctx, souza); err != nil {
		t.Fatalf("停用军人失败: %v", err)
	}

	active, err := repo.Personnel.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive 失败: %v", err)
	}
	if len(active) != 2 || active[0].PersonnelID != silva.PersonnelID || active[1].PersonnelID != costa.PersonnelID {
		t.Fatalf("期望按主键顺序返回 Silva, Costa，实际 %+v", active)
	}

	list, total, err := repo.Personnel.List(ctx, repository.PersonnelFilter{Rank: model.RankSoldado}, 0, 10)
	if err != nil {
		t.Fatalf("List 失败: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Errorf("期望 2 名士兵，实际 total=%d len=%d", total, len(list))
	}

	list, total, _ = repo.Personnel.List(ctx, repository.PersonnelFilter{Name: "cos"}, 0, 10)
	if total != 1 || list[0].Name != "Costa" {
		t.Errorf("姓名过滤失败: %+v", list)
	}
}

func TestPersonnelRepo_OptimisticLock(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	p := mustPersonnel(t, repo, "Silva", model.RankSoldado)
	stale := *p

	p.Rank = model.RankCabo
	if err := repo.Personnel.Update(ctx, p); err != nil {
		t.Fatalf("首次更新失败: %v", err)
	}
	stale.Name = "Silva Jr"
	if err := repo.Personnel.Update(ctx, &stale); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Fatalf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: DutyRecord 约束与查询
// ═══════════════════════════════════════════════════════════

func TestDutyRecordRepo_UniquePerPersonPerDay(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	p := mustPersonnel(t, repo, "Silva", model.RankSoldado)
	mustDuty(t, repo, p, day(10), model.DutyGuarda)

	err := repo.DutyRecord.Create(ctx, &model.DutyRecord{PersonnelID: p.PersonnelID, Date: day(10), DutyType: model.DutyPlantao})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("期望 ErrDuplicatedKey，实际: %v", err)
	}
}

func TestDutyRecordRepo_SpecialRoleUniquePerDay(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	a := mustPersonnel(t, repo, "Almeida", model.RankSegundoTenente)
	b := mustPersonnel(t, repo, "Barros", model.RankPrimeiroTenente)
	mustDuty(t, repo, a, day(10), model.DutyOficialDia)

	err := repo.DutyRecord.Create(ctx, &model.DutyRecord{PersonnelID: b.PersonnelID, Date: day(10), DutyType: model.DutyOficialDia})
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("期望特殊岗位冲突 ErrDuplicatedKey，实际: %v", err)
	}

	// 次日不冲突
	mustDuty(t, repo, b, day(11), model.DutyOficialDia)

	// 普通岗位同日可多人
	c := mustPersonnel(t, repo, "Castro", model.RankSoldado)
	d := mustPersonnel(t, repo, "Dias", model.RankSoldado)
	mustDuty(t, repo, c, day(10), model.DutyGuarda)
	mustDuty(t, repo, d, day(10), model.DutyGuarda)

	taken, err := repo.DutyRecord.RoleTakenOn(ctx, model.DutyOficialDia, day(10), 0)
	if err != nil || !taken {
		t.Errorf("期望 10 日 OFICIAL_DIA 已占用，实际 %v, %v", taken, err)
	}
}

func TestDutyRecordRepo_LastDateBefore(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	p := mustPersonnel(t, repo, "Silva", model.RankSoldado)
	if _, ok, err := repo.DutyRecord.LastDateBefore(ctx, p.PersonnelID, day(10)); err != nil || ok {
		t.Fatalf("无记录时期望 ok=false，实际 ok=%v err=%v", ok, err)
	}

	mustDuty(t, repo, p, day(3), model.DutyGuarda)
	mustDuty(t, repo, p, day(6), model.DutyGuarda)
	mustDuty(t, repo, p, day(10), model.DutyGuarda)

	last, ok, err := repo.DutyRecord.LastDateBefore(ctx, p.PersonnelID, day(10))
	if err != nil || !ok {
		t.Fatalf("LastDateBefore 失败: ok=%v err=%v", ok, err)
	}
	if !last.Equal(day(6)) {
		t.Errorf("期望严格早于参考日的 06-06，实际 %s", model.FormatDate(last))
	}

	on, err := repo.DutyRecord.ListPersonnelOn(ctx, day(10))
	if err != nil || !on[p.PersonnelID] {
		t.Errorf("期望 10 日有勤务，实际 %v, %v", on, err)
	}

	n, err := repo.DutyRecord.CountByPersonnelBetween(ctx, p.PersonnelID, day(1), day(6))
	if err != nil || n != 2 {
		t.Errorf("期望区间内 2 次勤务，实际 %d, %v", n, err)
	}
}

func TestDutyRecordRepo_ExistsOnExcludesSelf(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	p := mustPersonnel(t, repo, "Silva", model.RankSoldado)
	rec := mustDuty(t, repo, p, day(10), model.DutyGuarda)

	exists, _ := repo.DutyRecord.ExistsOn(ctx, p.PersonnelID, day(10), 0)
	if !exists {
		t.Error("期望已有勤务")
	}
	exists, _ = repo.DutyRecord.ExistsOn(ctx, p.PersonnelID, day(10), rec.DutyRecordID)
	if exists {
		t.Error("排除自身后不应存在勤务")
	}
}

func TestDutyRecordRepo_CascadeOnPersonnelDelete(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	p := mustPersonnel(t, repo, "Silva", model.RankSoldado)
	rec := mustDuty(t, repo, p, day(10), model.DutyGuarda)

	if err := repo.Personnel.Delete(ctx, p.PersonnelID); err != nil {
		t.Fatalf("删除军人失败: %v", err)
	}
	if _, err := repo.DutyRecord.GetByID(ctx, rec.DutyRecordID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望级联删除勤务，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Absence
// ═══════════════════════════════════════════════════════════

func TestAbsenceRepo_CoveringAndOverlapping(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	p := mustPersonnel(t, repo, "Silva", model.RankSoldado)
	a := &model.Absence{PersonnelID: p.PersonnelID, Kind: model.AbsenceFerias, StartDate: day(5), EndDate: day(10)}
	if err := repo.Absence.Create(ctx, a); err != nil {
		t.Fatalf("创建离岗失败: %v", err)
	}

	for d, want := range map[int]int{4: 0, 5: 1, 10: 1, 11: 0} {
		list, err := repo.Absence.ListCovering(ctx, day(d))
		if err != nil {
			t.Fatalf("ListCovering 失败: %v", err)
		}
		if len(list) != want {
			t.Errorf("06-%02d 期望 %d 条覆盖记录，实际 %d", d, want, len(list))
		}
	}

	overlap, _ := repo.Absence.ListOverlapping(ctx, p.PersonnelID, day(10), day(15), 0)
	if len(overlap) != 1 {
		t.Errorf("端点相接应重叠，实际 %d", len(overlap))
	}
	overlap, _ = repo.Absence.ListOverlapping(ctx, p.PersonnelID, day(10), day(15), a.AbsenceID)
	if len(overlap) != 0 {
		t.Errorf("排除自身后不应重叠，实际 %d", len(overlap))
	}
}

func TestAbsenceRepo_CascadeOnPersonnelDelete(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	p := mustPersonnel(t, repo, "Silva", model.RankSoldado)
	a := &model.Absence{PersonnelID: p.PersonnelID, Kind: model.AbsenceFerias, StartDate: day(5), EndDate: day(10)}
	if err := repo.Absence.Create(ctx, a); err != nil {
		t.Fatalf("创建离岗失败: %v", err)
	}

	if err := repo.Personnel.Delete(ctx, p.PersonnelID); err != nil {
		t.Fatalf("删除军人失败: %v", err)
	}
	if _, err := repo.Absence.GetByID(ctx, a.AbsenceID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("期望级联删除离岗，实际: %v", err)
	}
}

func TestAbsenceRepo_RejectsUnknownPersonnel(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))

	a := &model.Absence{PersonnelID: 999, Kind: model.AbsenceFerias, StartDate: day(5), EndDate: day(10)}
	if err := repo.Absence.Create(context.Background(), a); err == nil {
		t.Error("引用不存在的军人应违反外键约束")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Transaction
// ═══════════════════════════════════════════════════════════

func TestTransaction_Rollback(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	var created *model.Personnel
	err := repo.Transaction(ctx, func(tx *repository.Repository) error {
		created = &model.Personnel{Name: "Silva", Rank: model.RankSoldado, Subunit: "1ª Cia", Active: true}
		if err := tx.Personnel.Create(ctx, created); err != nil {
			return err
		}
		return errors.New("强制回滚")
	})
	if err == nil {
		t.Fatal("期望事务返回错误")
	}
	if _, err := repo.Personnel.GetByID(ctx, created.PersonnelID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("期望回滚后查不到军人，实际: %v", err)
	}
}

func TestUserRepo_UniqueUsername(t *testing.T) {
	repo := repository.NewRepository(newTestDB(t))
	ctx := context.Background()

	u := &model.User{Username: "sgt.silva", Name: "Silva", PasswordHash: "x", Role: model.RoleSargenteante, Active: true}
	if err := repo.User.Create(ctx, u); err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	dup := &model.User{Username: "sgt.silva", Name: "Outro", PasswordHash: "x", Role: model.RoleAuxiliar, Active: true}
	if err := repo.User.Create(ctx, dup); !errors.Is(err, gorm.ErrDuplicatedKey) {
		t.Fatalf("期望用户名唯一冲突，实际: %v", err)
	}
	got, err := repo.User.GetByUsername(ctx, "sgt.silva")
	if err != nil || got.UserID != u.UserID {
		t.Fatalf("GetByUsername 失败: %v", err)
	}
}
