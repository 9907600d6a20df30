package handler

import (
	"errors"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	pkgerrors "sargenteacao/backend/pkg/errors"
	"sargenteacao/backend/pkg/response"
)

// 上下文键，由 JWTAuth 中间件注入
const (
	ctxUserID   = "user_id"
	ctxUsername = "username"
	ctxRole     = "role"
	ctxTokenJTI = "token_jti"
	ctxTokenExp = "token_exp"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ctxUserID)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	id, ok := v.(uint)
	if !ok || id == 0 {
		response.Unauthorized(c, 10002, "未认证")
		return 0, false
	}
	return id, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxRole)
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// tokenInfo 当前令牌的 JTI 与过期时间（登出用）
func tokenInfo(c *gin.Context) (string, time.Time) {
	jti := c.GetString(ctxTokenJTI)
	exp, _ := c.Get(ctxTokenExp)
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}

// parseIDParam 解析路径参数中的正整数 ID，失败时写入 400
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, 10001, name+" 必须为正整数")
		return 0, false
	}
	return uint(id), true
}

// respondCommonError 按错误分类映射 HTTP 状态码，各模块未单独处理的错误统一走这里
func respondCommonError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		response.BadRequest(c, 10001, err.Error())
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 40901, pkgerrors.ErrOptimisticLock.Error())
	case errors.Is(err, pkgerrors.ErrBusinessRule):
		response.Conflict(c, 40900, err.Error())
	case errors.Is(err, pkgerrors.ErrStoreUnavailable):
		_ = c.Error(err)
		response.ServiceUnavailable(c)
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/context_helper.go
