package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"shift-ledger/backend/internal/dto"
	"shift-ledger/backend/internal/model"
	"shift-ledger/backend/internal/repository"
	pkgerrors "shift-ledger/backend/pkg/errors"
)

// ledgerFixture 台账测试基础数据：
// 两名在册职工 + 2025-03-03 的 4 小时早班槽位
type ledgerFixture struct {
	ledger  LedgerService
	balance BalanceService
	repo    *repository.Repository
	mocks   *testMocks

	worker1 *model.Worker
	worker2 *model.Worker
	slot    *model.ScheduledSlot
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	ctx := context.Background()
	repo, mocks := newTestRepository()
	logger := zap.NewNop()

	w1 := &model.Worker{Name: "张三", HireDate: date(2025, 1, 1), IsActive: true}
	w2 := &model.Worker{Name: "李四", HireDate: date(2025, 1, 1), IsActive: true}
	if err := repo.Worker.Create(ctx, w1); err != nil {
		t.Fatalf("创建职工失败: %v", err)
	}
	if err := repo.Worker.Create(ctx, w2); err != nil {
		t.Fatalf("创建职工失败: %v", err)
	}

	st := &model.ShiftType{Label: "早班", DefaultStart: "08:00", DefaultEnd: "12:00"}
	if err := repo.ShiftType.Create(ctx, st); err != nil {
		t.Fatalf("创建班次类型失败: %v", err)
	}
	cd := &model.CalendarDay{Day: date(2025, 3, 3), Weekday: 1}
	if err := repo.CalendarDay.Create(ctx, cd); err != nil {
		t.Fatalf("登记日历日失败: %v", err)
	}
	slot := &model.ScheduledSlot{
		CalendarDayID:  cd.CalendarDayID,
		ShiftTypeID:    st.ShiftTypeID,
		StartTime:      "08:00",
		EndTime:        "12:00",
		EffectiveHours: 4,
		Headcount:      1,
	}
	if err := repo.ScheduledSlot.Create(ctx, slot); err != nil {
		t.Fatalf("创建槽位失败: %v", err)
	}

	balance := NewBalanceService(repo, false, logger)
	return &ledgerFixture{
		ledger:  NewLedgerService(repo, balance, nil, logger),
		balance: balance,
		repo:    repo,
		mocks:   mocks,
		worker1: w1,
		worker2: w2,
		slot:    slot,
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (f *ledgerFixture) monthBalance(t *testing.T, workerID string) float64 {
	t.Helper()
	bp, err := f.repo.BalancePeriod.GetByKey(context.Background(), workerID, 2025, 3)
	if err != nil {
		t.Fatalf("查询结余失败: %v", err)
	}
	return bp.WorkedHoursMonth
}

// ── Create ──

func TestLedgerCreate_BalanceRecomputed(t *testing.T) {
	f := newLedgerFixture(t)

	a, err := f.ledger.Create(context.Background(), &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	if err != nil {
		t.Fatalf("创建排班失败: %v", err)
	}
	if a.State != model.AssignmentActive {
		t.Errorf("新排班状态应为 active，实际 %s", a.State)
	}

	if got := f.monthBalance(t, f.worker1.WorkerID); got != 4 {
		t.Errorf("当月结余应为 4，实际 %v", got)
	}
}

func TestLedgerCreate_DuplicateActive(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	if _, err := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	}); err != nil {
		t.Fatalf("首次创建失败: %v", err)
	}

	// 同一职工同一日第二条 active（即便是休息日占位）必须被拦截
	_, err := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:       f.worker1.WorkerID,
		AssignmentDate: "2025-03-03",
	})
	if !errors.Is(err, pkgerrors.ErrDuplicateActiveAssignment) {
		t.Errorf("期望 ErrDuplicateActiveAssignment，实际 %v", err)
	}
}

func TestLedgerCreate_WorkerNotFound(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.ledger.Create(context.Background(), &dto.CreateAssignmentRequest{
		WorkerID:       "worker-999",
		AssignmentDate: "2025-03-03",
	})
	if !errors.Is(err, ErrWorkerNotFound) {
		t.Errorf("期望 ErrWorkerNotFound，实际 %v", err)
	}
}

func TestLedgerCreate_SlotCancelled(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	f.slot.Cancelled = true
	if err := f.repo.ScheduledSlot.Update(ctx, f.slot); err != nil {
		t.Fatalf("取消槽位失败: %v", err)
	}

	_, err := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	if !errors.Is(err, ErrSlotCancelled) {
		t.Errorf("期望 ErrSlotCancelled，实际 %v", err)
	}
}

func TestLedgerCreate_RestDayZeroHours(t *testing.T) {
	f := newLedgerFixture(t)

	a, err := f.ledger.Create(context.Background(), &dto.CreateAssignmentRequest{
		WorkerID:       f.worker1.WorkerID,
		AssignmentDate: "2025-03-04",
	})
	if err != nil {
		t.Fatalf("创建休息日排班失败: %v", err)
	}
	if !a.RestDay {
		t.Error("空槽位排班应标记为休息日")
	}
	if got := f.monthBalance(t, f.worker1.WorkerID); got != 0 {
		t.Errorf("休息日不计时，结余应为 0，实际 %v", got)
	}
}

// ── TransitionState ──

func TestLedgerTransition_CancelZeroesBalance(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a, err := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	if err != nil {
		t.Fatalf("创建排班失败: %v", err)
	}

	if _, err := f.ledger.TransitionState(ctx, a.ID, &dto.TransitionStateRequest{
		NewState: model.AssignmentCancelled,
		Reason:   "排班作废",
	}); err != nil {
		t.Fatalf("作废失败: %v", err)
	}

	if got := f.monthBalance(t, f.worker1.WorkerID); got != 0 {
		t.Errorf("作废后结余应归零，实际 %v", got)
	}

	// 恰好一条 cancellation 审计
	entries, err := f.repo.AuditEntry.ListByAssignments(ctx, []string{a.ID})
	if err != nil {
		t.Fatalf("查询审计失败: %v", err)
	}
	if len(entries) != 1 || entries[0].ChangeKind != model.AuditKindCancellation {
		t.Errorf("期望恰好一条 cancellation 审计，实际 %+v", entries)
	}
}

func TestLedgerTransition_TerminalStateRejected(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a, _ := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	if _, err := f.ledger.TransitionState(ctx, a.ID, &dto.TransitionStateRequest{
		NewState: model.AssignmentCancelled,
	}); err != nil {
		t.Fatalf("作废失败: %v", err)
	}

	// cancelled 为终态，不可复活
	_, err := f.ledger.TransitionState(ctx, a.ID, &dto.TransitionStateRequest{
		NewState: model.AssignmentActive,
	})
	if !errors.Is(err, ErrIllegalTransition) {
		t.Errorf("期望 ErrIllegalTransition，实际 %v", err)
	}
}

func TestLedgerTransition_SameStateIdempotent(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a, _ := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})

	if _, err := f.ledger.TransitionState(ctx, a.ID, &dto.TransitionStateRequest{
		NewState: model.AssignmentActive,
	}); err != nil {
		t.Fatalf("同态流转应为空操作: %v", err)
	}

	// 空操作不产生审计
	if len(f.mocks.audits.entries) != 0 {
		t.Errorf("同态流转不应写审计，实际 %d 条", len(f.mocks.audits.entries))
	}
}

func TestLedgerTransition_FulfilledKeepsBalance(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a, _ := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})

	// active → fulfilled 均在计时集合内，结余不变
	if _, err := f.ledger.TransitionState(ctx, a.ID, &dto.TransitionStateRequest{
		NewState: model.AssignmentFulfilled,
	}); err != nil {
		t.Fatalf("流转失败: %v", err)
	}
	if got := f.monthBalance(t, f.worker1.WorkerID); got != 4 {
		t.Errorf("fulfilled 仍计时，结余应为 4，实际 %v", got)
	}
}

// ── Reassign ──

func TestLedgerReassign_Conservation(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	orig, err := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	if err != nil {
		t.Fatalf("创建排班失败: %v", err)
	}

	replacement, err := f.ledger.Reassign(ctx, orig.ID, &dto.ReassignRequest{
		NewWorkerID: f.worker2.WorkerID,
		Reason:      "临时换人",
	})
	if err != nil {
		t.Fatalf("改派失败: %v", err)
	}

	// 守恒：旧职工清零，新职工获得等量工时
	if got := f.monthBalance(t, f.worker1.WorkerID); got != 0 {
		t.Errorf("原职工结余应归零，实际 %v", got)
	}
	if got := f.monthBalance(t, f.worker2.WorkerID); got != 4 {
		t.Errorf("新职工结余应为 4，实际 %v", got)
	}

	// 旧行转 historical，新行经 origin 链接
	stored, err := f.repo.Assignment.GetByID(ctx, orig.ID)
	if err != nil {
		t.Fatalf("查询原排班失败: %v", err)
	}
	if stored.State != model.AssignmentHistorical {
		t.Errorf("原排班应转 historical，实际 %s", stored.State)
	}
	if replacement.OriginAssignmentID == nil || *replacement.OriginAssignmentID != orig.ID {
		t.Error("新排班应链接原排班")
	}
	if replacement.State != model.AssignmentActive {
		t.Errorf("新排班应为 active，实际 %s", replacement.State)
	}

	// 恰好一条 reassignment 审计，附着于原排班
	entries, _ := f.repo.AuditEntry.ListByAssignments(ctx, []string{orig.ID})
	if len(entries) != 1 {
		t.Fatalf("期望恰好一条审计，实际 %d 条", len(entries))
	}
	e := entries[0]
	if e.ChangeKind != model.AuditKindReassignment ||
		e.WorkerBefore != f.worker1.WorkerID ||
		e.WorkerAfter != f.worker2.WorkerID {
		t.Errorf("审计内容不符: %+v", e)
	}
}

func TestLedgerReassign_NotActive(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a, _ := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	if _, err := f.ledger.TransitionState(ctx, a.ID, &dto.TransitionStateRequest{
		NewState: model.AssignmentCancelled,
	}); err != nil {
		t.Fatalf("作废失败: %v", err)
	}

	_, err := f.ledger.Reassign(ctx, a.ID, &dto.ReassignRequest{
		NewWorkerID: f.worker2.WorkerID,
		Reason:      "换人",
	})
	if !errors.Is(err, ErrReassignNotActive) {
		t.Errorf("期望 ErrReassignNotActive，实际 %v", err)
	}
}

func TestLedgerReassign_SameWorker(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a, _ := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})

	_, err := f.ledger.Reassign(ctx, a.ID, &dto.ReassignRequest{
		NewWorkerID: f.worker1.WorkerID,
		Reason:      "换人",
	})
	if !errors.Is(err, ErrReassignSameWorker) {
		t.Errorf("期望 ErrReassignSameWorker，实际 %v", err)
	}
}

func TestLedgerReassign_TargetAlreadyActive(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a, _ := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	// 目标职工当日已有排班
	if _, err := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:       f.worker2.WorkerID,
		AssignmentDate: "2025-03-03",
	}); err != nil {
		t.Fatalf("创建占位失败: %v", err)
	}

	_, err := f.ledger.Reassign(ctx, a.ID, &dto.ReassignRequest{
		NewWorkerID: f.worker2.WorkerID,
		Reason:      "换人",
	})
	if !errors.Is(err, pkgerrors.ErrDuplicateActiveAssignment) {
		t.Errorf("期望 ErrDuplicateActiveAssignment，实际 %v", err)
	}
}

// ── Delete ──

func TestLedgerDelete_EntryError(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	a, _ := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	if got := f.monthBalance(t, f.worker1.WorkerID); got != 4 {
		t.Fatalf("前置结余应为 4，实际 %v", got)
	}

	if err := f.ledger.Delete(ctx, a.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if got := f.monthBalance(t, f.worker1.WorkerID); got != 0 {
		t.Errorf("删除后结余应归零，实际 %v", got)
	}
}

func TestLedgerDelete_LineageGuard(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	orig, _ := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	replacement, err := f.ledger.Reassign(ctx, orig.ID, &dto.ReassignRequest{
		NewWorkerID: f.worker2.WorkerID,
		Reason:      "换人",
	})
	if err != nil {
		t.Fatalf("改派失败: %v", err)
	}

	// 原排班有审计与后继，新排班有谱系来源，均不可硬删除
	if err := f.ledger.Delete(ctx, orig.ID); !errors.Is(err, ErrAssignmentHasLineage) {
		t.Errorf("删除原排班应被拦截，实际 %v", err)
	}
	if err := f.ledger.Delete(ctx, replacement.ID); !errors.Is(err, ErrAssignmentHasLineage) {
		t.Errorf("删除后继排班应被拦截，实际 %v", err)
	}
}

// ── 审计完整性 ──

func TestAuditTrail_Completeness(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	orig, _ := f.ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	})
	replacement, err := f.ledger.Reassign(ctx, orig.ID, &dto.ReassignRequest{
		NewWorkerID: f.worker2.WorkerID,
		Reason:      "换人",
	})
	if err != nil {
		t.Fatalf("改派失败: %v", err)
	}
	if _, err := f.ledger.TransitionState(ctx, replacement.ID, &dto.TransitionStateRequest{
		NewState: model.AssignmentFulfilled,
	}); err != nil {
		t.Fatalf("流转失败: %v", err)
	}

	// 谱系任一端查询均应看到全部流水：1 条改派 + 1 条修正
	for _, id := range []string{orig.ID, replacement.ID} {
		trail, err := f.ledger.ListAuditTrail(ctx, id)
		if err != nil {
			t.Fatalf("查询审计流水失败: %v", err)
		}
		if len(trail) != 2 {
			t.Errorf("从 %s 查询应得 2 条流水，实际 %d", id, len(trail))
		}
	}
}
