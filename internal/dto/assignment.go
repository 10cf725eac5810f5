package dto

// ── 排班台账模块 DTO ──

// CreateAssignmentRequest 创建排班请求
type CreateAssignmentRequest struct {
	WorkerID        string  `json:"worker_id"         binding:"required,uuid"`
	ScheduledSlotID *string `json:"scheduled_slot_id" binding:"omitempty,uuid"` // 缺省 = 休息日
	AssignmentDate  string  `json:"assignment_date"   binding:"required"`       // "2025-03-03"
	Reason          string  `json:"reason"            binding:"max=500"`
}

// TransitionStateRequest 状态流转请求
type TransitionStateRequest struct {
	NewState string `json:"new_state" binding:"required,oneof=active historical cancelled fulfilled absence_recorded"`
	Reason   string `json:"reason"    binding:"max=500"`
}

// ReassignRequest 改派请求
type ReassignRequest struct {
	NewWorkerID string `json:"new_worker_id" binding:"required,uuid"`
	Reason      string `json:"reason"        binding:"required,max=500"`
}

// AssignmentListRequest 台账查询请求
type AssignmentListRequest struct {
	WorkerID string `form:"worker_id" binding:"omitempty,uuid"`
	State    string `form:"state"     binding:"omitempty,oneof=active historical cancelled fulfilled absence_recorded"`
	Date     string `form:"date"`
	Year     int    `form:"year"      binding:"omitempty,min=2000,max=2100"`
	Month    int    `form:"month"     binding:"omitempty,min=1,max=12"`
	Page     int    `form:"page"      binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// AssignmentResponse 排班信息响应
type AssignmentResponse struct {
	ID                 string   `json:"id"`
	ScheduledSlotID    *string  `json:"scheduled_slot_id,omitempty"`
	WorkerID           string   `json:"worker_id"`
	WorkerName         string   `json:"worker_name,omitempty"`
	ShiftTypeID        *string  `json:"shift_type_id,omitempty"`
	ShiftTypeLabel     string   `json:"shift_type_label,omitempty"`
	AssignmentDate     string   `json:"assignment_date"`
	State              string   `json:"state"`
	OriginAssignmentID *string  `json:"origin_assignment_id,omitempty"`
	ChangeReason       string   `json:"change_reason,omitempty"`
	EffectiveHours     *float64 `json:"effective_hours,omitempty"`
	RestDay            bool     `json:"rest_day"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

// AuditEntryResponse 审计流水响应
type AuditEntryResponse struct {
	ID           string `json:"id"`
	AssignmentID string `json:"assignment_id"`
	WorkerBefore string `json:"worker_before"`
	WorkerAfter  string `json:"worker_after"`
	ChangeKind   string `json:"change_kind"`
	Reason       string `json:"reason,omitempty"`
	ChangedAt    string `json:"changed_at"`
}
