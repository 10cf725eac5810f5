package dto

// ── 参考目录模块 DTO（班次类型 / 日历日） ──

// CreateShiftTypeRequest 创建班次类型请求
type CreateShiftTypeRequest struct {
	Label        string   `json:"label"         binding:"required,min=1,max=100"`
	DefaultStart string   `json:"default_start" binding:"required"` // "08:00"
	DefaultEnd   string   `json:"default_end"   binding:"required"` // "16:00"
	DefaultHours *float64 `json:"default_hours" binding:"omitempty,gte=0,lte=24"`
	WeekdayOnly  bool     `json:"weekday_only"`
	WeekendOnly  bool     `json:"weekend_only"`
}

// UpdateShiftTypeRequest 更新班次类型请求
type UpdateShiftTypeRequest struct {
	Label        *string  `json:"label"         binding:"omitempty,min=1,max=100"`
	DefaultStart *string  `json:"default_start"`
	DefaultEnd   *string  `json:"default_end"`
	DefaultHours *float64 `json:"default_hours" binding:"omitempty,gte=0,lte=24"`
	WeekdayOnly  *bool    `json:"weekday_only"`
	WeekendOnly  *bool    `json:"weekend_only"`
}

// ShiftTypeResponse 班次类型响应
type ShiftTypeResponse struct {
	ID           string   `json:"id"`
	Label        string   `json:"label"`
	DefaultStart string   `json:"default_start"`
	DefaultEnd   string   `json:"default_end"`
	DefaultHours *float64 `json:"default_hours,omitempty"`
	WeekdayOnly  bool     `json:"weekday_only"`
	WeekendOnly  bool     `json:"weekend_only"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

// CreateCalendarDayRequest 登记日历日请求
type CreateCalendarDayRequest struct {
	Day       string `json:"day"        binding:"required"` // "2025-03-03"
	IsHoliday bool   `json:"is_holiday"`
}

// CalendarDayResponse 日历日响应
type CalendarDayResponse struct {
	ID        string `json:"id"`
	Day       string `json:"day"`
	Weekday   int    `json:"weekday"`
	IsHoliday bool   `json:"is_holiday"`
}
