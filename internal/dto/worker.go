package dto

// ── 职工模块 DTO ──

// CreateWorkerRequest 创建职工请求
type CreateWorkerRequest struct {
	Name     string `json:"name"      binding:"required,min=2,max=100"`
	HireDate string `json:"hire_date" binding:"required"` // "2025-02-15"
}

// UpdateWorkerRequest 更新职工请求
type UpdateWorkerRequest struct {
	Name            *string `json:"name"             binding:"omitempty,min=2,max=100"`
	HireDate        *string `json:"hire_date"`
	TerminationDate *string `json:"termination_date"`
	IsActive        *bool   `json:"is_active"`
}

// WorkerListRequest 职工列表请求
type WorkerListRequest struct {
	ActiveOnly bool `form:"active_only"`
	Page       int  `form:"page"      binding:"omitempty,min=1"`
	PageSize   int  `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// WorkerResponse 职工信息响应
type WorkerResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	HireDate        string  `json:"hire_date"`
	TerminationDate *string `json:"termination_date,omitempty"`
	IsActive        bool    `json:"is_active"`
	CreatedAt       string  `json:"created_at"`
	UpdatedAt       string  `json:"updated_at"`
}
