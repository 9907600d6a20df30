package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/internal/repository"
	pkgerrors "sargenteacao/backend/pkg/errors"
)

// ── 内存数据集（三个 mock 仓储共享，用于关联预加载与唯一约束） ──

type mockData struct {
	personnel []*model.Personnel
	absences  []*model.Absence
	duties    []*model.DutyRecord
	nextID    uint
	failWith  error // 非 nil 时所有读写返回该错误
}

func (d *mockData) id() uint {
	d.nextID++
	return d.nextID
}

func (d *mockData) findPersonnel(id uint) *model.Personnel {
	for _, p := range d.personnel {
		if p.PersonnelID == id {
			return p
		}
	}
	return nil
}

// ── Mock PersonnelRepository ──

type mockPersonnelRepo struct{ data *mockData }

func (m *mockPersonnelRepo) Create(_ context.Context, p *model.Personnel) error {
	if m.data.failWith != nil {
		return m.data.failWith
	}
	p.PersonnelID = m.data.id()
	p.Version = 1
	cp := *p
	m.data.personnel = append(m.data.personnel, &cp)
	return nil
}

func (m *mockPersonnelRepo) GetByID(_ context.Context, id uint) (*model.Personnel, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	if p := m.data.findPersonnel(id); p != nil {
		cp := *p
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPersonnelRepo) List(_ context.Context, filter repository.PersonnelFilter, offset, limit int) ([]model.Personnel, int64, error) {
	if m.data.failWith != nil {
		return nil, 0, m.data.failWith
	}
	var all []model.Personnel
	for _, p := range m.data.personnel {
		if filter.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Name)) {
			continue
		}
		if filter.Rank != "" && p.Rank != filter.Rank {
			continue
		}
		if filter.Subunit != "" && p.Subunit != filter.Subunit {
			continue
		}
		if filter.Active != nil && p.Active != *filter.Active {
			continue
		}
		all = append(all, *p)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockPersonnelRepo) ListActive(_ context.Context) ([]model.Personnel, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	var list []model.Personnel
	for _, p := range m.data.personnel {
		if p.Active {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (m *mockPersonnelRepo) Update(_ context.Context, p *model.Personnel) error {
	if m.data.failWith != nil {
		return m.data.failWith
	}
	stored := m.data.findPersonnel(p.PersonnelID)
	if stored == nil || stored.Version != p.Version {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version++
	*stored = *p
	return nil
}

func (m *mockPersonnelRepo) Delete(_ context.Context, id uint) error {
	if m.data.failWith != nil {
		return m.data.failWith
	}
	keep := m.data.personnel[:0]
	for _, p := range m.data.personnel {
		if p.PersonnelID != id {
			keep = append(keep, p)
		}
	}
	m.data.personnel = keep

	// 外键级联
	var absences []*model.Absence
	for _, a := range m.data.absences {
		if a.PersonnelID != id {
			absences = append(absences, a)
		}
	}
	m.data.absences = absences
	var duties []*model.DutyRecord
	for _, r := range m.data.duties {
		if r.PersonnelID != id {
			duties = append(duties, r)
		}
	}
	m.data.duties = duties
	return nil
}

// ── Mock AbsenceRepository ──

type mockAbsenceRepo struct{ data *mockData }

func (m *mockAbsenceRepo) Create(_ context.Context, a *model.Absence) error {
	if m.data.failWith != nil {
		return m.data.failWith
	}
	a.AbsenceID = m.data.id()
	a.Version = 1
	a.StartDate, a.EndDate = model.DateOf(a.StartDate), model.DateOf(a.EndDate)
	cp := *a
	cp.Personnel = nil
	m.data.absences = append(m.data.absences, &cp)
	return nil
}

func (m *mockAbsenceRepo) GetByID(_ context.Context, id uint) (*model.Absence, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	for _, a := range m.data.absences {
		if a.AbsenceID == id {
			cp := *a
			if p := m.data.findPersonnel(a.PersonnelID); p != nil {
				pc := *p
				cp.Personnel = &pc
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAbsenceRepo) ListCovering(_ context.Context, date time.Time) ([]model.Absence, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	var list []model.Absence
	for _, a := range m.data.absences {
		if a.Covers(date) {
			list = append(list, *a)
		}
	}
	return list, nil
}

func (m *mockAbsenceRepo) ListOverlapping(_ context.Context, personnelID uint, start, end time.Time, excludeID uint) ([]model.Absence, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	start, end = model.DateOf(start), model.DateOf(end)
	var list []model.Absence
	for _, a := range m.data.absences {
		if a.PersonnelID != personnelID || a.AbsenceID == excludeID {
			continue
		}
		if !a.StartDate.After(end) && !a.EndDate.Before(start) {
			list = append(list, *a)
		}
	}
	return list, nil
}

func (m *mockAbsenceRepo) ListByPersonnel(_ context.Context, personnelID uint) ([]model.Absence, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	var list []model.Absence
	for _, a := range m.data.absences {
		if a.PersonnelID == personnelID {
			list = append(list, *a)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].StartDate.After(list[j].StartDate) })
	return list, nil
}

func (m *mockAbsenceRepo) Update(_ context.Context, a *model.Absence) error {
	if m.data.failWith != nil {
		return m.data.failWith
	}
	for _, stored := range m.data.absences {
		if stored.AbsenceID == a.AbsenceID {
			if stored.Version != a.Version {
				return pkgerrors.ErrOptimisticLock
			}
			a.Version++
			*stored = *a
			stored.Personnel = nil
			return nil
		}
	}
	return pkgerrors.ErrOptimisticLock
}

func (m *mockAbsenceRepo) Delete(_ context.Context, id uint) error {
	if m.data.failWith != nil {
		return m.data.failWith
	}
	var keep []*model.Absence
	for _, a := range m.data.absences {
		if a.AbsenceID != id {
			keep = append(keep, a)
		}
	}
	m.data.absences = keep
	return nil
}

// ── Mock DutyRecordRepository ──
// 写入时模拟 (personnel_id, date) 唯一与特殊岗位 (date, duty_type) 部分唯一约束

type mockDutyRecordRepo struct{ data *mockData }

func (m *mockDutyRecordRepo) violates(rec *model.DutyRecord) bool {
	for _, r := range m.data.duties {
		if r.DutyRecordID == rec.DutyRecordID || !r.Date.Equal(model.DateOf(rec.Date)) {
			continue
		}
		if r.PersonnelID == rec.PersonnelID {
			return true
		}
		if rec.DutyType.IsSpecial() && r.DutyType == rec.DutyType {
			return true
		}
	}
	return false
}

func (m *mockDutyRecordRepo) withPersonnel(r *model.DutyRecord) model.DutyRecord {
	cp := *r
	if p := m.data.findPersonnel(r.PersonnelID); p != nil {
		pc := *p
		cp.Personnel = &pc
	}
	return cp
}

func (m *mockDutyRecordRepo) Create(_ context.Context, rec *model.DutyRecord) error {
	if m.data.failWith != nil {
		return m.data.failWith
	}
	if m.violates(rec) {
		return gorm.ErrDuplicatedKey
	}
	rec.DutyRecordID = m.data.id()
	rec.Date = model.DateOf(rec.Date)
	rec.RecordedAt = time.Now().UTC()
	cp := *rec
	cp.Personnel = nil
	m.data.duties = append(m.data.duties, &cp)
	return nil
}

// add 测试数据直接写入，不做约束校验
func (m *mockDutyRecordRepo) add(personnelID uint, date time.Time, dutyType model.DutyType) *model.DutyRecord {
	rec := &model.DutyRecord{
		DutyRecordID: m.data.id(),
		PersonnelID:  personnelID,
		Date:         model.DateOf(date),
		DutyType:     dutyType,
	}
	m.data.duties = append(m.data.duties, rec)
	return rec
}

func (m *mockDutyRecordRepo) GetByID(_ context.Context, id uint) (*model.DutyRecord, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	for _, r := range m.data.duties {
		if r.DutyRecordID == id {
			cp := m.withPersonnel(r)
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDutyRecordRepo) LastDateBefore(_ context.Context, personnelID uint, date time.Time) (time.Time, bool, error) {
	if m.data.failWith != nil {
		return time.Time{}, false, m.data.failWith
	}
	date = model.DateOf(date)
	var (
		last  time.Time
		found bool
	)
	for _, r := range m.data.duties {
		if r.PersonnelID == personnelID && r.Date.Before(date) && (!found || r.Date.After(last)) {
			last, found = r.Date, true
		}
	}
	return last, found, nil
}

func (m *mockDutyRecordRepo) ListPersonnelOn(_ context.Context, date time.Time) (map[uint]bool, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	ids := make(map[uint]bool)
	for _, r := range m.data.duties {
		if r.Date.Equal(model.DateOf(date)) {
			ids[r.PersonnelID] = true
		}
	}
	return ids, nil
}

func (m *mockDutyRecordRepo) ExistsOn(_ context.Context, personnelID uint, date time.Time, excludeID uint) (bool, error) {
	if m.data.failWith != nil {
		return false, m.data.failWith
	}
	for _, r := range m.data.duties {
		if r.PersonnelID == personnelID && r.Date.Equal(model.DateOf(date)) && r.DutyRecordID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDutyRecordRepo) RoleTakenOn(_ context.Context, dutyType model.DutyType, date time.Time, excludeID uint) (bool, error) {
	if m.data.failWith != nil {
		return false, m.data.failWith
	}
	for _, r := range m.data.duties {
		if r.DutyType == dutyType && r.Date.Equal(model.DateOf(date)) && r.DutyRecordID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockDutyRecordRepo) ListByDate(_ context.Context, date time.Time) ([]model.DutyRecord, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	var list []model.DutyRecord
	for _, r := range m.data.duties {
		if r.Date.Equal(model.DateOf(date)) {
			list = append(list, m.withPersonnel(r))
		}
	}
	return list, nil
}

func (m *mockDutyRecordRepo) ListByPersonnel(_ context.Context, personnelID uint) ([]model.DutyRecord, error) {
	if m.data.failWith != nil {
		return nil, m.data.failWith
	}
	var list []model.DutyRecord
	for _, r := range m.data.duties {
		if r.PersonnelID == personnelID {
			list = append(list, *r)
		}
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].Date.After(list[j].Date) })
	return list, nil
}

func (m *mockDutyRecordRepo) CountByPersonnelBetween(_ context.Context, personnelID uint, from, to time.Time) (int64, error) {
	if m.data.failWith != nil {
		return 0, m.data.failWith
	}
	var n int64
	for _, r := range m.data.duties {
		if r.PersonnelID == personnelID && !r.Date.Before(model.DateOf(from)) && !r.Date.After(model.DateOf(to)) {
			n++
		}
	}
	return n, nil
}

func (m *mockDutyRecordRepo) Update(_ context.Context, rec *model.DutyRecord) error {
	if m.data.failWith != nil {
		return m.data.failWith
	}
	if m.violates(rec) {
		return gorm.ErrDuplicatedKey
	}
	for _, stored := range m.data.duties {
		if stored.DutyRecordID == rec.DutyRecordID {
			stored.PersonnelID = rec.PersonnelID
			stored.Date = model.DateOf(rec.Date)
			stored.DutyType = rec.DutyType
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockDutyRecordRepo) Delete(_ context.Context, id uint) error {
	if m.data.failWith != nil {
		return m.data.failWith
	}
	var keep []*model.DutyRecord
	for _, r := range m.data.duties {
		if r.DutyRecordID != id {
			keep = append(keep, r)
		}
	}
	m.data.duties = keep
	return nil
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users  map[uint]*model.User
	nextID uint
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[uint]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Username == user.Username {
			return gorm.ErrDuplicatedKey
		}
	}
	m.nextID++
	user.UserID = m.nextID
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id uint) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.UserID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	m.users[user.UserID] = &cp
	return nil
}

func (m *mockUserRepo) List(_ context.Context, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		all = append(all, *u)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Username < all[j].Username })
	total := int64(len(all))
	if offset > len(all) {
		offset = len(all)
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock ResultCache（记录失效调用） ──

type dateRange struct{ start, end time.Time }

type recordingCache struct {
	entries      map[time.Time][]model.EligibilityResult
	invalidated  []time.Time
	ranges       []dateRange
	invalidFroms []time.Time
	gets, sets   int
}

func newRecordingCache() *recordingCache {
	return &recordingCache{entries: make(map[time.Time][]model.EligibilityResult)}
}

func (c *recordingCache) Get(_ context.Context, date time.Time) ([]model.EligibilityResult, bool) {
	c.gets++
	r, ok := c.entries[date]
	return r, ok
}

func (c *recordingCache) Set(_ context.Context, date time.Time, results []model.EligibilityResult) {
	c.sets++
	c.entries[date] = results
}

func (c *recordingCache) Invalidate(_ context.Context, dates ...time.Time) {
	for _, d := range dates {
		delete(c.entries, d)
	}
	c.invalidated = append(c.invalidated, dates...)
}

func (c *recordingCache) InvalidateRange(_ context.Context, start, end time.Time) {
	for d := range c.entries {
		if !d.Before(start) && !d.After(end) {
			delete(c.entries, d)
		}
	}
	c.ranges = append(c.ranges, dateRange{start: start, end: end})
}

func (c *recordingCache) InvalidateFrom(_ context.Context, date time.Time) {
	for d := range c.entries {
		if !d.Before(date) {
			delete(c.entries, d)
		}
	}
	c.invalidFroms = append(c.invalidFroms, date)
}

// ── 测试夹具 ──

type fixture struct {
	data      *mockData
	repo      *repository.Repository
	personnel *mockPersonnelRepo
	absences  *mockAbsenceRepo
	duties    *mockDutyRecordRepo
	users     *mockUserRepo
	cache     *recordingCache
	logger    *zap.Logger
}

func newFixture() *fixture {
	data := &mockData{}
	f := &fixture{
		data:      data,
		personnel: &mockPersonnelRepo{data: data},
		absences:  &mockAbsenceRepo{data: data},
		duties:    &mockDutyRecordRepo{data: data},
		users:     newMockUserRepo(),
		cache:     newRecordingCache(),
		logger:    zap.NewNop(),
	}
	f.repo = &repository.Repository{
		User:       f.users,
		Personnel:  f.personnel,
		Absence:    f.absences,
		DutyRecord: f.duties,
	}
	return f
}

// addPersonnel 直接写入在役军人，返回其 ID
func (f *fixture) addPersonnel(name string, rank model.Rank) uint {
	p := &model.Personnel{Name: name, Rank: rank, Subunit: "1ª Cia", Active: true}
	_ = f.personnel.Create(context.Background(), p)
	return p.PersonnelID
}

func (f *fixture) addAbsence(personnelID uint, kind model.AbsenceKind, start, end string) {
	_ = f.absences.Create(context.Background(), &model.Absence{
		PersonnelID: personnelID,
		Kind:        kind,
		StartDate:   mustDate(start),
		EndDate:     mustDate(end),
	})
}

func mustDate(s string) time.Time {
	d, err := model.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}
