package dto

// ── 休息日申请模块 DTO ──

// CreateRestRequest 提交休息日申请
type CreateRestRequest struct {
	WorkerID string `json:"worker_id" binding:"required,uuid"`
	RestDate string `json:"rest_date" binding:"required"` // "2025-03-03"
	Note     string `json:"note"      binding:"max=500"`
}

// ResolveRestRequest 审批休息日申请
type ResolveRestRequest struct {
	Grant bool   `json:"grant"`
	Note  string `json:"note" binding:"max=500"`
}

// RestRequestListRequest 休息日申请列表请求
type RestRequestListRequest struct {
	WorkerID string `form:"worker_id" binding:"omitempty,uuid"`
	State    string `form:"state"     binding:"omitempty,oneof=pending granted denied"`
	Page     int    `form:"page"      binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=200"`
}

// RestRequestResponse 休息日申请响应
type RestRequestResponse struct {
	ID          string  `json:"id"`
	WorkerID    string  `json:"worker_id"`
	WorkerName  string  `json:"worker_name,omitempty"`
	RestDate    string  `json:"rest_date"`
	State       string  `json:"state"`
	Note        string  `json:"note,omitempty"`
	RespondedAt *string `json:"responded_at,omitempty"`
}
