package handler

import "shift-ledger/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Worker  *WorkerHandler
	Catalog *CatalogHandler
	Slot    *SlotHandler
	Policy  *PolicyHandler
	Ledger  *LedgerHandler
	Rest    *RestHandler
	Report  *ReportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Services) *Handler {
	return &Handler{
		Worker:  NewWorkerHandler(svc.Worker, svc.Balance, svc.Target),
		Catalog: NewCatalogHandler(svc.Catalog),
		Slot:    NewSlotHandler(svc.Slot),
		Policy:  NewPolicyHandler(svc.Policy),
		Ledger:  NewLedgerHandler(svc.Ledger),
		Rest:    NewRestHandler(svc.Rest),
		Report:  NewReportHandler(svc.Report),
	}
}

// [自证通过] internal/api/handler/handler.go
