package dto

// ── 年度用工策略模块 DTO ──

// CreatePolicyRequest 创建策略请求
type CreatePolicyRequest struct {
	Year                int     `json:"year"                  binding:"required,min=2000,max=2100"`
	WindowStart         string  `json:"window_start"          binding:"required"` // "2025-02-15"
	WindowEnd           string  `json:"window_end"            binding:"required"` // "2025-12-31"
	WeeklyHoursRequired float64 `json:"weekly_hours_required" binding:"required,gt=0,lte=168"`
	IsActive            bool    `json:"is_active"`
}

// UpdatePolicyRequest 更新策略请求
type UpdatePolicyRequest struct {
	WindowStart         *string  `json:"window_start"`
	WindowEnd           *string  `json:"window_end"`
	WeeklyHoursRequired *float64 `json:"weekly_hours_required" binding:"omitempty,gt=0,lte=168"`
}

// PolicyResponse 策略响应
type PolicyResponse struct {
	ID                  string  `json:"id"`
	Year                int     `json:"year"`
	WindowStart         string  `json:"window_start"`
	WindowEnd           string  `json:"window_end"`
	WeeklyHoursRequired float64 `json:"weekly_hours_required"`
	IsActive            bool    `json:"is_active"`
	CreatedAt           string  `json:"created_at"`
	UpdatedAt           string  `json:"updated_at"`
}
