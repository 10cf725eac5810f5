package dto

// ── 排班槽位模块 DTO ──

// CreateSlotRequest 创建排班槽位请求
type CreateSlotRequest struct {
	Day            string  `json:"day"             binding:"required"` // "2025-03-03"
	ShiftTypeID    string  `json:"shift_type_id"   binding:"required,uuid"`
	StartTime      string  `json:"start_time"      binding:"required"`
	EndTime        string  `json:"end_time"        binding:"required"`
	EffectiveHours float64 `json:"effective_hours" binding:"required,gte=0,lte=24"`
	Headcount      int     `json:"headcount"       binding:"omitempty,min=1"`
}

// UpdateSlotRequest 更新排班槽位请求（仅限未被引用的槽位）
type UpdateSlotRequest struct {
	StartTime      *string  `json:"start_time"`
	EndTime        *string  `json:"end_time"`
	EffectiveHours *float64 `json:"effective_hours" binding:"omitempty,gte=0,lte=24"`
	Headcount      *int     `json:"headcount"       binding:"omitempty,min=1"`
}

// SlotListRequest 槽位列表请求
type SlotListRequest struct {
	From string `form:"from" binding:"required"` // "2025-03-01"
	To   string `form:"to"   binding:"required"` // "2025-03-31"
}

// SlotResponse 槽位响应
type SlotResponse struct {
	ID             string  `json:"id"`
	Day            string  `json:"day"`
	ShiftTypeID    string  `json:"shift_type_id"`
	ShiftTypeLabel string  `json:"shift_type_label,omitempty"`
	StartTime      string  `json:"start_time"`
	EndTime        string  `json:"end_time"`
	EffectiveHours float64 `json:"effective_hours"`
	Headcount      int     `json:"headcount"`
	Cancelled      bool    `json:"cancelled"`
}

// SlotImportRowError 导入失败行明细
type SlotImportRowError struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// SlotImportResult 槽位批量导入结果
type SlotImportResult struct {
	Created int                  `json:"created"`
	Updated int                  `json:"updated"`
	Skipped int                  `json:"skipped"`
	Errors  []SlotImportRowError `json:"errors,omitempty"`
}
