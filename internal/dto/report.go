package dto

// ── 月度报表模块 DTO ──

// MonthlyReportRow 单职工月度对账行
type MonthlyReportRow struct {
	WorkerID    string  `json:"worker_id"`
	WorkerName  string  `json:"worker_name"`
	WorkedHours float64 `json:"worked_hours"`
	TargetHours float64 `json:"target_hours"`
	Delta       float64 `json:"delta"`
	Level       string  `json:"level"` // low | normal | high
}

// MonthlyReportResponse 月度对账报表
type MonthlyReportResponse struct {
	Year      int                `json:"year"`
	Month     int                `json:"month"`
	HasPolicy bool               `json:"has_policy"`
	Rows      []MonthlyReportRow `json:"rows"`
}
