package service

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"shift-ledger/backend/internal/model"
	"shift-ledger/backend/internal/repository"
)

// seedAssignment 直接向 mock 仓储插入一条绑定槽位的排班
func seedAssignment(t *testing.T, repo *repository.Repository, workerID, slotID, day, state string) *model.Assignment {
	t.Helper()
	a := &model.Assignment{
		ScheduledSlotID: &slotID,
		WorkerID:        workerID,
		AssignmentDate:  mustDate(t, day),
		State:           state,
	}
	if err := repo.Assignment.Create(context.Background(), a); err != nil {
		t.Fatalf("插入排班失败: %v", err)
	}
	return a
}

func seedSlot(t *testing.T, repo *repository.Repository, day string, hours float64) *model.ScheduledSlot {
	t.Helper()
	ctx := context.Background()
	st := &model.ShiftType{Label: "班次-" + day, DefaultStart: "08:00", DefaultEnd: "16:00"}
	if err := repo.ShiftType.Create(ctx, st); err != nil {
		t.Fatalf("创建班次类型失败: %v", err)
	}
	cd := &model.CalendarDay{Day: mustDate(t, day), Weekday: 1}
	if err := repo.CalendarDay.Create(ctx, cd); err != nil {
		t.Fatalf("登记日历日失败: %v", err)
	}
	slot := &model.ScheduledSlot{
		CalendarDayID:  cd.CalendarDayID,
		ShiftTypeID:    st.ShiftTypeID,
		StartTime:      "08:00",
		EndTime:        "16:00",
		EffectiveHours: hours,
		Headcount:      1,
	}
	if err := repo.ScheduledSlot.Create(ctx, slot); err != nil {
		t.Fatalf("创建槽位失败: %v", err)
	}
	return slot
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("日期无效: %v", err)
	}
	return parsed
}

func TestRecompute_SumsCountableStatesOnly(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()
	balance := NewBalanceService(repo, false, zap.NewNop())

	w := &model.Worker{Name: "张三", HireDate: date(2025, 1, 1), IsActive: true}
	repo.Worker.Create(ctx, w)

	s1 := seedSlot(t, repo, "2025-03-03", 4)
	s2 := seedSlot(t, repo, "2025-03-04", 8)
	s3 := seedSlot(t, repo, "2025-03-05", 6)
	seedAssignment(t, repo, w.WorkerID, s1.ScheduledSlotID, "2025-03-03", model.AssignmentActive)
	seedAssignment(t, repo, w.WorkerID, s2.ScheduledSlotID, "2025-03-04", model.AssignmentFulfilled)
	seedAssignment(t, repo, w.WorkerID, s3.ScheduledSlotID, "2025-03-05", model.AssignmentCancelled)

	if err := balance.Recompute(ctx, repo, w.WorkerID, 2025, 3); err != nil {
		t.Fatalf("重算失败: %v", err)
	}

	bp, err := repo.BalancePeriod.GetByKey(ctx, w.WorkerID, 2025, 3)
	if err != nil {
		t.Fatalf("查询结余失败: %v", err)
	}
	// active(4) + fulfilled(8)，cancelled 不计
	if bp.WorkedHoursMonth != 12 {
		t.Errorf("当月结余应为 12，实际 %v", bp.WorkedHoursMonth)
	}
}

func TestRecompute_Idempotent(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()
	balance := NewBalanceService(repo, false, zap.NewNop())

	w := &model.Worker{Name: "张三", HireDate: date(2025, 1, 1), IsActive: true}
	repo.Worker.Create(ctx, w)
	s1 := seedSlot(t, repo, "2025-03-03", 4)
	seedAssignment(t, repo, w.WorkerID, s1.ScheduledSlotID, "2025-03-03", model.AssignmentActive)

	for i := 0; i < 3; i++ {
		if err := balance.Recompute(ctx, repo, w.WorkerID, 2025, 3); err != nil {
			t.Fatalf("第 %d 次重算失败: %v", i+1, err)
		}
	}

	bp, _ := repo.BalancePeriod.GetByKey(ctx, w.WorkerID, 2025, 3)
	if bp.WorkedHoursMonth != 4 {
		t.Errorf("重复重算结果应不变，实际 %v", bp.WorkedHoursMonth)
	}
}

func TestRecompute_RefreshesLaterMonthsYTD(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()
	balance := NewBalanceService(repo, false, zap.NewNop())

	w := &model.Worker{Name: "张三", HireDate: date(2025, 1, 1), IsActive: true}
	repo.Worker.Create(ctx, w)

	s3 := seedSlot(t, repo, "2025-03-03", 4)
	s5 := seedSlot(t, repo, "2025-05-05", 8)
	a3 := seedAssignment(t, repo, w.WorkerID, s3.ScheduledSlotID, "2025-03-03", model.AssignmentActive)
	seedAssignment(t, repo, w.WorkerID, s5.ScheduledSlotID, "2025-05-05", model.AssignmentActive)

	if err := balance.Recompute(ctx, repo, w.WorkerID, 2025, 3); err != nil {
		t.Fatalf("重算失败: %v", err)
	}
	if err := balance.Recompute(ctx, repo, w.WorkerID, 2025, 5); err != nil {
		t.Fatalf("重算失败: %v", err)
	}

	may, _ := repo.BalancePeriod.GetByKey(ctx, w.WorkerID, 2025, 5)
	if may.WorkedHoursYTD != 12 {
		t.Fatalf("5 月年度累计应为 12，实际 %v", may.WorkedHoursYTD)
	}

	// 3 月排班作废后重算 3 月，5 月的年度累计必须跟着刷新
	a3.State = model.AssignmentCancelled
	if err := repo.Assignment.UpdateState(ctx, a3); err != nil {
		t.Fatalf("作废失败: %v", err)
	}
	if err := balance.Recompute(ctx, repo, w.WorkerID, 2025, 3); err != nil {
		t.Fatalf("重算失败: %v", err)
	}

	may, _ = repo.BalancePeriod.GetByKey(ctx, w.WorkerID, 2025, 5)
	if may.WorkedHoursYTD != 8 {
		t.Errorf("3 月归零后 5 月年度累计应为 8，实际 %v", may.WorkedHoursYTD)
	}
	march, _ := repo.BalancePeriod.GetByKey(ctx, w.WorkerID, 2025, 3)
	if march.WorkedHoursMonth != 0 {
		t.Errorf("3 月结余应归零，实际 %v", march.WorkedHoursMonth)
	}
}

func TestCountable_AbsencePolicySwitch(t *testing.T) {
	repo, _ := newTestRepository()

	strict := NewBalanceService(repo, false, zap.NewNop())
	lenient := NewBalanceService(repo, true, zap.NewNop())

	if strict.Countable(model.AssignmentAbsenceRecorded) {
		t.Error("开关关闭时缺勤登记不应计时")
	}
	if !lenient.Countable(model.AssignmentAbsenceRecorded) {
		t.Error("开关打开时缺勤登记应计时")
	}
	for _, svc := range []BalanceService{strict, lenient} {
		if !svc.Countable(model.AssignmentActive) || !svc.Countable(model.AssignmentFulfilled) {
			t.Error("active/fulfilled 应始终计时")
		}
		if svc.Countable(model.AssignmentCancelled) || svc.Countable(model.AssignmentHistorical) {
			t.Error("cancelled/historical 不应计时")
		}
	}
}

func TestRecompute_IgnoresCancelledSlots(t *testing.T) {
	repo, _ := newTestRepository()
	ctx := context.Background()
	balance := NewBalanceService(repo, false, zap.NewNop())

	w := &model.Worker{Name: "张三", HireDate: date(2025, 1, 1), IsActive: true}
	repo.Worker.Create(ctx, w)
	slot := seedSlot(t, repo, "2025-03-03", 4)
	seedAssignment(t, repo, w.WorkerID, slot.ScheduledSlotID, "2025-03-03", model.AssignmentActive)

	slot.Cancelled = true
	if err := repo.ScheduledSlot.Update(ctx, slot); err != nil {
		t.Fatalf("取消槽位失败: %v", err)
	}

	if err := balance.Recompute(ctx, repo, w.WorkerID, 2025, 3); err != nil {
		t.Fatalf("重算失败: %v", err)
	}
	bp, _ := repo.BalancePeriod.GetByKey(ctx, w.WorkerID, 2025, 3)
	if bp.WorkedHoursMonth != 0 {
		t.Errorf("已取消槽位不计时，结余应为 0，实际 %v", bp.WorkedHoursMonth)
	}
}
