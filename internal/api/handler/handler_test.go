package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"sargenteacao/backend/internal/dto"
	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/internal/service"
	pkgerrors "sargenteacao/backend/pkg/errors"
	"sargenteacao/backend/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	loginResult   *dto.TokenResponse
	loginErr      error
	logoutJTI     string
	logoutErr     error
	meResult      *dto.UserResponse
	meErr         error
	changePassErr error
}

func (m *mockAuthService) Login(_ context.Context, _ *dto.LoginRequest) (*dto.TokenResponse, error) {
	return m.loginResult, m.loginErr
}
func (m *mockAuthService) Logout(_ context.Context, jti string, _ time.Time) error {
	m.logoutJTI = jti
	return m.logoutErr
}
func (m *mockAuthService) Me(_ context.Context, _ uint) (*dto.UserResponse, error) {
	return m.meResult, m.meErr
}
func (m *mockAuthService) ChangePassword(_ context.Context, _ uint, _ *dto.ChangePasswordRequest) error {
	return m.changePassErr
}

// ── Mock DutyService ──

type mockDutyService struct {
	checkResult    *dto.CanAssignResponse
	registerResult *dto.DutyRecordResponse
	registerErr    error
	registerCaller uint
	batchResult    *dto.RegisterBatchResponse
	batchErr       error
	getErr         error
	rosterResult   *dto.DailyRosterResponse
	rosterDate     time.Time
}

func (m *mockDutyService) CanAssign(_ context.Context, _ *model.Personnel, _ model.DutyType, _ time.Time, _ uint) (service.Decision, error) {
	return service.Decision{Allowed: true}, nil
}
func (m *mockDutyService) Check(_ context.Context, _ *dto.CanAssignRequest) (*dto.CanAssignResponse, error) {
	return m.checkResult, nil
}
func (m *mockDutyService) Register(_ context.Context, _ *dto.RegisterDutyRequest, callerID uint) (*dto.DutyRecordResponse, error) {
	m.registerCaller = callerID
	return m.registerResult, m.registerErr
}
func (m *mockDutyService) RegisterBatch(_ context.Context, _ *dto.RegisterBatchRequest, _ uint) (*dto.RegisterBatchResponse, error) {
	return m.batchResult, m.batchErr
}
func (m *mockDutyService) Update(_ context.Context, _ uint, _ *dto.UpdateDutyRequest, _ uint) (*dto.DutyRecordResponse, error) {
	return m.registerResult, m.registerErr
}
func (m *mockDutyService) Delete(_ context.Context, _ uint) error {
	return m.getErr
}
func (m *mockDutyService) Get(_ context.Context, _ uint) (*dto.DutyRecordResponse, error) {
	return m.registerResult, m.getErr
}
func (m *mockDutyService) ListByDate(_ context.Context, date time.Time) (*dto.DailyRosterResponse, error) {
	m.rosterDate = date
	return m.rosterResult, nil
}

// ── Mock EligibilityService ──

type mockEligibilityService struct {
	result *dto.EligibilityResponse
	err    error
	req    *dto.EligibilityRequest
}

func (m *mockEligibilityService) Compute(_ context.Context, _ time.Time) ([]model.EligibilityResult, error) {
	return nil, nil
}
func (m *mockEligibilityService) ComputeToday(_ context.Context) ([]model.EligibilityResult, error) {
	return nil, nil
}
func (m *mockEligibilityService) Query(_ context.Context, req *dto.EligibilityRequest) (*dto.EligibilityResponse, error) {
	m.req = req
	return m.result, m.err
}

// ── Mock PersonnelService ──

type mockPersonnelService struct {
	getResult    *dto.PersonnelResponse
	getErr       error
	parseErr     error
	importRows   []service.ImportPersonnelRow
	importResult *dto.ImportPersonnelResponse
}

func (m *mockPersonnelService) Create(_ context.Context, _ *dto.CreatePersonnelRequest) (*dto.PersonnelResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockPersonnelService) Get(_ context.Context, _ uint) (*dto.PersonnelResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockPersonnelService) List(_ context.Context, _ *dto.PersonnelListRequest) ([]dto.PersonnelResponse, int64, error) {
	return nil, 0, m.getErr
}
func (m *mockPersonnelService) Update(_ context.Context, _ uint, _ *dto.UpdatePersonnelRequest) (*dto.PersonnelResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockPersonnelService) Delete(_ context.Context, _ uint) error {
	return m.getErr
}
func (m *mockPersonnelService) ParseImportFile(reader io.Reader) ([]service.ImportPersonnelRow, error) {
	if m.parseErr != nil {
		return nil, m.parseErr
	}
	_, _ = io.ReadAll(reader)
	return m.importRows, nil
}
func (m *mockPersonnelService) Import(_ context.Context, _ []service.ImportPersonnelRow) (*dto.ImportPersonnelResponse, error) {
	return m.importResult, nil
}

// ── Mock ExportService / CalendarService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) DailyBulletin(_ context.Context, _ time.Time) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) MonthlyReport(_ context.Context, _ uint, _, _ int) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

type mockCalendarService struct {
	body string
	err  error
}

func (m *mockCalendarService) PersonnelCalendar(_ context.Context, _ uint) (string, error) {
	return m.body, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

// withAuth 模拟 JWTAuth 中间件注入的操作员信息
func withAuth(c *gin.Context) {
	c.Set("user_id", uint(7))
	c.Set("username", "sgt.silva")
	c.Set("role", model.RoleSargenteante)
	c.Set("token_jti", "test-jti")
	c.Set("token_exp", time.Now().Add(time.Hour))
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// serve 注册单个路由并发起请求
func serve(method, route, target string, body io.Reader, h gin.HandlerFunc, auth bool) *httptest.ResponseRecorder {
	r := gin.New()
	handlers := []gin.HandlerFunc{h}
	if auth {
		handlers = append([]gin.HandlerFunc{withAuth}, handlers...)
	}
	r.Handle(method, route, handlers...)

	req := httptest.NewRequest(method, target, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ═══════════════════════════════════════════════════════════
// AuthHandler Tests
// ═══════════════════════════════════════════════════════════

func TestAuthHandler_Login(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		body     interface{}
		wantCode int
	}{
		{"成功", nil, dto.LoginRequest{Username: "sgt.silva", Password: "senha"}, http.StatusOK},
		{"缺少密码", nil, map[string]string{"username": "sgt.silva"}, http.StatusBadRequest},
		{"凭证错误", service.ErrInvalidCredentials, dto.LoginRequest{Username: "x", Password: "y"}, http.StatusUnauthorized},
		{"账号停用", service.ErrUserDisabled, dto.LoginRequest{Username: "x", Password: "y"}, http.StatusForbidden},
		{"存储不可用", fmt.Errorf("%w: 查询用户", pkgerrors.ErrStoreUnavailable), dto.LoginRequest{Username: "x", Password: "y"}, http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockAuthService{loginErr: tc.err}
			if tc.err == nil {
				mock.loginResult = &dto.TokenResponse{AccessToken: "token", ExpiresIn: 3600}
			}
			w := serve(http.MethodPost, "/auth/login", "/auth/login", jsonBody(tc.body), NewAuthHandler(mock).Login, false)
			if w.Code != tc.wantCode {
				t.Errorf("期望 %d，实际 %d: %s", tc.wantCode, w.Code, w.Body.String())
			}
		})
	}
}

func TestAuthHandler_LogoutAndMe(t *testing.T) {
	mock := &mockAuthService{meResult: &dto.UserResponse{ID: 7, Username: "sgt.silva"}}
	h := NewAuthHandler(mock)

	w := serve(http.MethodPost, "/auth/logout", "/auth/logout", nil, h.Logout, true)
	if w.Code != http.StatusOK || mock.logoutJTI != "test-jti" {
		t.Errorf("登出应传递当前 JTI: code=%d jti=%s", w.Code, mock.logoutJTI)
	}

	w = serve(http.MethodGet, "/auth/me", "/auth/me", nil, h.Me, true)
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}

	w = serve(http.MethodGet, "/auth/me", "/auth/me", nil, h.Me, false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("未认证期望 401，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// DutyHandler Tests
// ═══════════════════════════════════════════════════════════

func TestDutyHandler_Register(t *testing.T) {
	body := dto.RegisterDutyRequest{PersonnelID: 1, Date: "2024-06-10", DutyType: "GUARDA"}
	cases := []struct {
		name     string
		err      error
		wantCode int
		wantMsg  string
	}{
		{"成功", nil, http.StatusCreated, "success"},
		{"角色已占用", service.ErrRoleAlreadyTaken, http.StatusConflict, service.ReasonRoleTaken},
		{"同日已有勤务", service.ErrPersonAlreadyBusy, http.StatusConflict, service.ReasonPersonAlreadyBusy},
		{"参数非法", fmt.Errorf("%w: 未知勤务类型", pkgerrors.ErrInvalidArgument), http.StatusBadRequest, ""},
		{"军人不存在", service.ErrPersonnelNotFound, http.StatusNotFound, ""},
		{"存储不可用", fmt.Errorf("%w: 登记勤务", pkgerrors.ErrStoreUnavailable), http.StatusServiceUnavailable, ""},
		{"未知错误", errors.New("boom"), http.StatusInternalServerError, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			mock := &mockDutyService{registerErr: tc.err}
			if tc.err == nil {
				mock.registerResult = &dto.DutyRecordResponse{ID: 1, DutyType: "GUARDA"}
			}
			w := serve(http.MethodPost, "/duties", "/duties", jsonBody(body), NewDutyHandler(mock).Register, true)
			if w.Code != tc.wantCode {
				t.Fatalf("期望 %d，实际 %d: %s", tc.wantCode, w.Code, w.Body.String())
			}
			if tc.wantMsg != "" {
				if msg := parseResponse(w).Message; msg != tc.wantMsg {
					t.Errorf("期望消息 %q，实际 %q", tc.wantMsg, msg)
				}
			}
			if tc.err == nil && mock.registerCaller != 7 {
				t.Errorf("应传递当前操作员 ID，实际 %d", mock.registerCaller)
			}
		})
	}
}

func TestDutyHandler_BatchAndList(t *testing.T) {
	mock := &mockDutyService{
		batchResult:  &dto.RegisterBatchResponse{Succeeded: 1, Failed: 1},
		rosterResult: &dto.DailyRosterResponse{Date: "2024-06-10"},
		checkResult:  &dto.CanAssignResponse{Allowed: false, Reason: service.ReasonRankNotPermitted},
	}
	h := NewDutyHandler(mock)

	w := serve(http.MethodPost, "/duties/batch", "/duties/batch",
		jsonBody(dto.RegisterBatchRequest{Date: "2024-06-10", DutyType: "GUARDA", PersonnelIDs: []uint{1, 2}}), h.RegisterBatch, true)
	if w.Code != http.StatusOK {
		t.Errorf("批量登记部分失败仍应返回 200，实际 %d", w.Code)
	}

	w = serve(http.MethodPost, "/duties/batch", "/duties/batch",
		jsonBody(dto.RegisterBatchRequest{Date: "2024-06-10", DutyType: "GUARDA"}), h.RegisterBatch, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("空名单期望 400，实际 %d", w.Code)
	}

	w = serve(http.MethodGet, "/duties", "/duties?date=2024-06-10", nil, h.ListByDate, true)
	if w.Code != http.StatusOK || !mock.rosterDate.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("日勤务表查询错误: code=%d date=%v", w.Code, mock.rosterDate)
	}
	w = serve(http.MethodGet, "/duties", "/duties?date=10/06/2024", nil, h.ListByDate, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("日期格式错误期望 400，实际 %d", w.Code)
	}

	w = serve(http.MethodGet, "/duties/check", "/duties/check?personnel_id=1&date=2024-06-10&duty_type=OFICIAL_DIA", nil, h.Check, true)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), service.ReasonRankNotPermitted) {
		t.Errorf("预检结果应包含原因: %s", w.Body.String())
	}
}

func TestDutyHandler_BadID(t *testing.T) {
	h := NewDutyHandler(&mockDutyService{getErr: service.ErrDutyRecordNotFound})

	w := serve(http.MethodGet, "/duties/:id", "/duties/abc", nil, h.Get, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法 ID 期望 400，实际 %d", w.Code)
	}
	w = serve(http.MethodDelete, "/duties/:id", "/duties/9", nil, h.Delete, true)
	if w.Code != http.StatusNotFound {
		t.Errorf("不存在期望 404，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// EligibilityHandler Tests
// ═══════════════════════════════════════════════════════════

func TestEligibilityHandler_Query(t *testing.T) {
	mock := &mockEligibilityService{result: &dto.EligibilityResponse{Date: "2024-06-10", Total: 2, Eligible: 1, Ineligible: 1}}
	h := NewEligibilityHandler(mock)

	w := serve(http.MethodGet, "/eligibility", "/eligibility?date=2024-06-10&filter=eligible&rank=SD", nil, h.Query, true)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if mock.req.Filter != "eligible" || mock.req.Rank != "SD" {
		t.Errorf("查询参数未正确绑定: %+v", mock.req)
	}

	w = serve(http.MethodGet, "/eligibility", "/eligibility?filter=maybe", nil, h.Query, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法 filter 期望 400，实际 %d", w.Code)
	}

	mock.err = fmt.Errorf("%w: 日期格式错误", pkgerrors.ErrInvalidArgument)
	w = serve(http.MethodGet, "/eligibility", "/eligibility?date=ontem", nil, h.Query, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("服务层参数错误期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// PersonnelHandler Tests
// ═══════════════════════════════════════════════════════════

func TestPersonnelHandler_Get(t *testing.T) {
	h := NewPersonnelHandler(&mockPersonnelService{getErr: service.ErrPersonnelNotFound})
	w := serve(http.MethodGet, "/personnel/:id", "/personnel/5", nil, h.Get, true)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}

	h = NewPersonnelHandler(&mockPersonnelService{getErr: fmt.Errorf("%w: 更新军人", pkgerrors.ErrOptimisticLock)})
	w = serve(http.MethodPut, "/personnel/:id", "/personnel/5", jsonBody(dto.UpdatePersonnelRequest{}), h.Update, true)
	if w.Code != http.StatusConflict {
		t.Errorf("乐观锁冲突期望 409，实际 %d", w.Code)
	}
}

func TestPersonnelHandler_Import(t *testing.T) {
	mock := &mockPersonnelService{
		importRows:   []service.ImportPersonnelRow{{Row: 2, Name: "Silva", Rank: "SD", Subunit: "1ª Cia"}},
		importResult: &dto.ImportPersonnelResponse{Total: 1, Success: 1},
	}
	h := NewPersonnelHandler(mock)

	r := gin.New()
	r.POST("/personnel/import", withAuth, h.Import)

	var buf bytes.Buffer
	boundary := "sgtboundary"
	buf.WriteString("--" + boundary + "\r\n")
	buf.WriteString("Content-Disposition: form-data; name=\"file\"; filename=\"efetivo.xlsx\"\r\n")
	buf.WriteString("Content-Type: application/octet-stream\r\n\r\n")
	buf.WriteString("conteudo")
	buf.WriteString("\r\n--" + boundary + "--\r\n")

	req := httptest.NewRequest(http.MethodPost, "/personnel/import", &buf)
	req.Header.Set("Content-Type", "multipart/form-data; boundary="+boundary)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}

	w = serve(http.MethodPost, "/personnel/import", "/personnel/import", nil, h.Import, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少文件期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// Export / Calendar Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_DailyBulletin(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx"), filename: "aditamento_10_06_2024.xlsx"}
	h := NewExportHandler(mock)

	w := serve(http.MethodGet, "/export/bulletin", "/export/bulletin?date=2024-06-10", nil, h.DailyBulletin, true)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type 错误: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "aditamento_10_06_2024.xlsx") {
		t.Errorf("Content-Disposition 错误: %s", cd)
	}

	w = serve(http.MethodGet, "/export/bulletin", "/export/bulletin", nil, h.DailyBulletin, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("缺少日期期望 400，实际 %d", w.Code)
	}

	w = serve(http.MethodGet, "/personnel/:id/report", "/personnel/3/report?year=2024&month=13", nil, h.MonthlyReport, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法月份期望 400，实际 %d", w.Code)
	}
}

func TestCalendarHandler_PersonnelCalendar(t *testing.T) {
	h := NewCalendarHandler(&mockCalendarService{body: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"})
	w := serve(http.MethodGet, "/personnel/:id/calendar.ics", "/personnel/3/calendar.ics", nil, h.PersonnelCalendar, true)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Errorf("日历响应错误: code=%d ct=%s", w.Code, w.Header().Get("Content-Type"))
	}

	h = NewCalendarHandler(&mockCalendarService{err: service.ErrPersonnelNotFound})
	w = serve(http.MethodGet, "/personnel/:id/calendar.ics", "/personnel/3/calendar.ics", nil, h.PersonnelCalendar, true)
	if w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}
}
