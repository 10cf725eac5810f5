package dto

// ── 工时结余 / 目标工时模块 DTO ──

// BalancePeriodResponse 单期结余响应
type BalancePeriodResponse struct {
	WorkerID         string  `json:"worker_id"`
	Month            int     `json:"month"`
	Year             int     `json:"year"`
	WorkedHoursMonth float64 `json:"worked_hours_month"`
	WorkedHoursYTD   float64 `json:"worked_hours_ytd"`
	LastRecomputedAt string  `json:"last_recomputed_at"`
}

// MonthlyTargetResponse 单月目标工时响应
type MonthlyTargetResponse struct {
	Month       int     `json:"month"`
	TargetHours float64 `json:"target_hours"`
	TargetYTD   float64 `json:"target_ytd"`
}

// WorkerTargetsResponse 职工全年目标工时响应
type WorkerTargetsResponse struct {
	WorkerID string                  `json:"worker_id"`
	Year     int                     `json:"year"`
	Months   []MonthlyTargetResponse `json:"months"`
}
