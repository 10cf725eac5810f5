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

func assignmentFilterFor(workerID, day string) repository.AssignmentFilter {
	d, _ := time.Parse("2006-01-02", day)
	return repository.AssignmentFilter{WorkerID: workerID, Date: &d}
}

func newRestFixture(t *testing.T) (RestService, LedgerService, *ledgerFixture) {
	t.Helper()
	f := newLedgerFixture(t)
	rest := NewRestService(f.repo, f.balance, zap.NewNop())
	return rest, f.ledger, f
}

func TestRestSubmit_Pending(t *testing.T) {
	rest, _, f := newRestFixture(t)

	rr, err := rest.Submit(context.Background(), &dto.CreateRestRequest{
		WorkerID: f.worker1.WorkerID,
		RestDate: "2025-03-10",
		Note:     "家中有事",
	})
	if err != nil {
		t.Fatalf("提交申请失败: %v", err)
	}
	if rr.State != model.RestPending {
		t.Errorf("新申请状态应为 pending，实际 %s", rr.State)
	}
}

func TestRestSubmit_DuplicatePendingSameDay(t *testing.T) {
	rest, _, f := newRestFixture(t)
	ctx := context.Background()

	if _, err := rest.Submit(ctx, &dto.CreateRestRequest{
		WorkerID: f.worker1.WorkerID,
		RestDate: "2025-03-10",
	}); err != nil {
		t.Fatalf("首次提交失败: %v", err)
	}

	_, err := rest.Submit(ctx, &dto.CreateRestRequest{
		WorkerID: f.worker1.WorkerID,
		RestDate: "2025-03-10",
	})
	if !errors.Is(err, ErrRestDatePending) {
		t.Errorf("期望 ErrRestDatePending，实际 %v", err)
	}
}

func TestRestResolve_GrantCreatesPlaceholder(t *testing.T) {
	rest, _, f := newRestFixture(t)
	ctx := context.Background()

	rr, _ := rest.Submit(ctx, &dto.CreateRestRequest{
		WorkerID: f.worker1.WorkerID,
		RestDate: "2025-03-10",
	})

	resolved, err := rest.Resolve(ctx, rr.ID, &dto.ResolveRestRequest{Grant: true})
	if err != nil {
		t.Fatalf("批准失败: %v", err)
	}
	if resolved.State != model.RestGranted {
		t.Errorf("状态应为 granted，实际 %s", resolved.State)
	}

	// 台账生成 0 工时的休息日占位
	list, _, err := f.repo.Assignment.List(ctx,
		assignmentFilterFor(f.worker1.WorkerID, "2025-03-10"), 0, 10)
	if err != nil {
		t.Fatalf("查询台账失败: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("应有一条占位排班，实际 %d", len(list))
	}
	if !list[0].IsRestDay() || list[0].State != model.AssignmentActive {
		t.Errorf("占位应为空槽位 active 排班: %+v", list[0])
	}
}

func TestRestResolve_GrantBlockedByExistingActive(t *testing.T) {
	rest, ledger, f := newRestFixture(t)
	ctx := context.Background()

	// 当日已有生效排班
	if _, err := ledger.Create(ctx, &dto.CreateAssignmentRequest{
		WorkerID:        f.worker1.WorkerID,
		ScheduledSlotID: &f.slot.ScheduledSlotID,
		AssignmentDate:  "2025-03-03",
	}); err != nil {
		t.Fatalf("创建排班失败: %v", err)
	}

	rr, _ := rest.Submit(ctx, &dto.CreateRestRequest{
		WorkerID: f.worker1.WorkerID,
		RestDate: "2025-03-03",
	})
	_, err := rest.Resolve(ctx, rr.ID, &dto.ResolveRestRequest{Grant: true})
	if !errors.Is(err, pkgerrors.ErrDuplicateActiveAssignment) {
		t.Errorf("期望 ErrDuplicateActiveAssignment，实际 %v", err)
	}
}

func TestRestResolve_Deny(t *testing.T) {
	rest, _, f := newRestFixture(t)
	ctx := context.Background()

	rr, _ := rest.Submit(ctx, &dto.CreateRestRequest{
		WorkerID: f.worker1.WorkerID,
		RestDate: "2025-03-10",
	})
	resolved, err := rest.Resolve(ctx, rr.ID, &dto.ResolveRestRequest{Grant: false, Note: "排班紧张"})
	if err != nil {
		t.Fatalf("驳回失败: %v", err)
	}
	if resolved.State != model.RestDenied {
		t.Errorf("状态应为 denied，实际 %s", resolved.State)
	}

	// 驳回不产生台账记录
	list, _, _ := f.repo.Assignment.List(ctx,
		assignmentFilterFor(f.worker1.WorkerID, "2025-03-10"), 0, 10)
	if len(list) != 0 {
		t.Errorf("驳回不应写台账，实际 %d 条", len(list))
	}
}

func TestRestResolve_AlreadyResolved(t *testing.T) {
	rest, _, f := newRestFixture(t)
	ctx := context.Background()

	rr, _ := rest.Submit(ctx, &dto.CreateRestRequest{
		WorkerID: f.worker1.WorkerID,
		RestDate: "2025-03-10",
	})
	if _, err := rest.Resolve(ctx, rr.ID, &dto.ResolveRestRequest{Grant: false}); err != nil {
		t.Fatalf("驳回失败: %v", err)
	}

	_, err := rest.Resolve(ctx, rr.ID, &dto.ResolveRestRequest{Grant: true})
	if !errors.Is(err, ErrRestAlreadyResolved) {
		t.Errorf("期望 ErrRestAlreadyResolved，实际 %v", err)
	}
}
