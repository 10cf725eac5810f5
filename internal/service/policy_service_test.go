package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"shift-ledger/backend/internal/dto"
)

func newPolicySvc(t *testing.T) (PolicyService, *testMocks) {
	t.Helper()
	repo, mocks := newTestRepository()
	return NewPolicyService(repo, zap.NewNop()), mocks
}

func TestPolicyCreate_WindowValidation(t *testing.T) {
	svc, _ := newPolicySvc(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CreatePolicyRequest
		want error
	}{
		{
			name: "窗口倒置",
			req: dto.CreatePolicyRequest{
				Year: 2025, WindowStart: "2025-12-31", WindowEnd: "2025-02-15",
				WeeklyHoursRequired: 12,
			},
			want: ErrPolicyWindowOrder,
		},
		{
			name: "窗口跨年",
			req: dto.CreatePolicyRequest{
				Year: 2025, WindowStart: "2024-12-01", WindowEnd: "2025-12-31",
				WeeklyHoursRequired: 12,
			},
			want: ErrPolicyWindowYear,
		},
		{
			name: "日期格式错误",
			req: dto.CreatePolicyRequest{
				Year: 2025, WindowStart: "15/02/2025", WindowEnd: "2025-12-31",
				WeeklyHoursRequired: 12,
			},
			want: ErrPolicyDateInvalid,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tc.req)
			if !errors.Is(err, tc.want) {
				t.Errorf("期望 %v，实际 %v", tc.want, err)
			}
		})
	}
}

func TestPolicyActivate_SingleActivePerYear(t *testing.T) {
	svc, _ := newPolicySvc(t)
	ctx := context.Background()

	p1, err := svc.Create(ctx, &dto.CreatePolicyRequest{
		Year: 2025, WindowStart: "2025-02-15", WindowEnd: "2025-12-31",
		WeeklyHoursRequired: 12, IsActive: true,
	})
	if err != nil {
		t.Fatalf("创建策略失败: %v", err)
	}
	p2, err := svc.Create(ctx, &dto.CreatePolicyRequest{
		Year: 2025, WindowStart: "2025-03-01", WindowEnd: "2025-12-31",
		WeeklyHoursRequired: 10,
	})
	if err != nil {
		t.Fatalf("创建策略失败: %v", err)
	}

	// 激活第二条后，第一条必须失效
	if _, err := svc.Activate(ctx, p2.ID); err != nil {
		t.Fatalf("激活失败: %v", err)
	}

	active, err := svc.GetActiveByYear(ctx, 2025)
	if err != nil {
		t.Fatalf("查询生效策略失败: %v", err)
	}
	if active.ID != p2.ID {
		t.Errorf("生效策略应为 %s，实际 %s", p2.ID, active.ID)
	}

	old, _ := svc.Get(ctx, p1.ID)
	if old.IsActive {
		t.Error("旧策略应已失效")
	}
}

func TestPolicyActivate_Idempotent(t *testing.T) {
	svc, _ := newPolicySvc(t)
	ctx := context.Background()

	p, _ := svc.Create(ctx, &dto.CreatePolicyRequest{
		Year: 2025, WindowStart: "2025-02-15", WindowEnd: "2025-12-31",
		WeeklyHoursRequired: 12, IsActive: true,
	})

	again, err := svc.Activate(ctx, p.ID)
	if err != nil {
		t.Fatalf("重复激活应幂等: %v", err)
	}
	if !again.IsActive {
		t.Error("策略应保持生效")
	}
}

func TestPolicyGetActive_NotFound(t *testing.T) {
	svc, _ := newPolicySvc(t)

	_, err := svc.GetActiveByYear(context.Background(), 2030)
	if !errors.Is(err, ErrPolicyNotFound) {
		t.Errorf("期望 ErrPolicyNotFound，实际 %v", err)
	}
}
