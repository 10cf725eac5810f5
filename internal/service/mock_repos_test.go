package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"shift-ledger/backend/internal/model"
	"shift-ledger/backend/internal/repository"
	pkgerrors "shift-ledger/backend/pkg/errors"
)

// ── Mock WorkerRepository ──

type mockWorkerRepo struct {
	workers map[string]*model.Worker
	deleted map[string]*model.Worker // 软删除后的记录，模拟 gorm.DeletedAt
	seq     int
}

func newMockWorkerRepo() *mockWorkerRepo {
	return &mockWorkerRepo{
		workers: make(map[string]*model.Worker),
		deleted: make(map[string]*model.Worker),
	}
}

func (m *mockWorkerRepo) Create(_ context.Context, w *model.Worker) error {
	if w.WorkerID == "" {
		m.seq++
		w.WorkerID = fmt.Sprintf("worker-%d", m.seq)
	}
	m.workers[w.WorkerID] = w
	return nil
}

func (m *mockWorkerRepo) GetByID(_ context.Context, id string) (*model.Worker, error) {
	if w, ok := m.workers[id]; ok {
		return w, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWorkerRepo) List(_ context.Context, activeOnly bool, offset, limit int) ([]model.Worker, int64, error) {
	var result []model.Worker
	for _, w := range m.workers {
		if activeOnly && !w.IsActive {
			continue
		}
		result = append(result, *w)
	}
	return result, int64(len(result)), nil
}

func (m *mockWorkerRepo) ListActive(_ context.Context) ([]model.Worker, error) {
	var result []model.Worker
	for _, w := range m.workers {
		if w.IsActive {
			result = append(result, *w)
		}
	}
	return result, nil
}

func (m *mockWorkerRepo) Update(_ context.Context, w *model.Worker) error {
	if _, ok := m.workers[w.WorkerID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	w.Version++
	m.workers[w.WorkerID] = w
	return nil
}

func (m *mockWorkerRepo) Delete(_ context.Context, id string) error {
	if w, ok := m.workers[id]; ok {
		m.deleted[id] = w
		delete(m.workers, id)
	}
	return nil
}

// ── Mock ShiftTypeRepository ──

type mockShiftTypeRepo struct {
	types map[string]*model.ShiftType
	seq   int
}

func newMockShiftTypeRepo() *mockShiftTypeRepo {
	return &mockShiftTypeRepo{types: make(map[string]*model.ShiftType)}
}

func (m *mockShiftTypeRepo) Create(_ context.Context, st *model.ShiftType) error {
	if st.ShiftTypeID == "" {
		m.seq++
		st.ShiftTypeID = fmt.Sprintf("type-%d", m.seq)
	}
	m.types[st.ShiftTypeID] = st
	return nil
}

func (m *mockShiftTypeRepo) GetByID(_ context.Context, id string) (*model.ShiftType, error) {
	if st, ok := m.types[id]; ok {
		return st, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftTypeRepo) GetByLabel(_ context.Context, label string) (*model.ShiftType, error) {
	for _, st := range m.types {
		if st.Label == label {
			return st, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockShiftTypeRepo) List(_ context.Context) ([]model.ShiftType, error) {
	var result []model.ShiftType
	for _, st := range m.types {
		result = append(result, *st)
	}
	return result, nil
}

func (m *mockShiftTypeRepo) Update(_ context.Context, st *model.ShiftType) error {
	if _, ok := m.types[st.ShiftTypeID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	st.Version++
	m.types[st.ShiftTypeID] = st
	return nil
}

func (m *mockShiftTypeRepo) Delete(_ context.Context, id string) error {
	delete(m.types, id)
	return nil
}

// ── Mock CalendarDayRepository ──

type mockCalendarDayRepo struct {
	days map[string]*model.CalendarDay // key: "2006-01-02"
	seq  int
}

func newMockCalendarDayRepo() *mockCalendarDayRepo {
	return &mockCalendarDayRepo{days: make(map[string]*model.CalendarDay)}
}

func (m *mockCalendarDayRepo) Create(_ context.Context, cd *model.CalendarDay) error {
	if cd.CalendarDayID == "" {
		m.seq++
		cd.CalendarDayID = fmt.Sprintf("day-%d", m.seq)
	}
	m.days[cd.Day.Format("2006-01-02")] = cd
	return nil
}

func (m *mockCalendarDayRepo) GetByID(_ context.Context, id string) (*model.CalendarDay, error) {
	for _, cd := range m.days {
		if cd.CalendarDayID == id {
			return cd, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCalendarDayRepo) GetByDay(_ context.Context, day time.Time) (*model.CalendarDay, error) {
	if cd, ok := m.days[day.Format("2006-01-02")]; ok {
		return cd, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCalendarDayRepo) ListRange(_ context.Context, from, to time.Time) ([]model.CalendarDay, error) {
	var result []model.CalendarDay
	for _, cd := range m.days {
		if !cd.Day.Before(from) && !cd.Day.After(to) {
			result = append(result, *cd)
		}
	}
	return result, nil
}

func (m *mockCalendarDayRepo) Update(_ context.Context, cd *model.CalendarDay) error {
	m.days[cd.Day.Format("2006-01-02")] = cd
	return nil
}

// ── Mock ScheduledSlotRepository ──

type mockScheduledSlotRepo struct {
	slots map[string]*model.ScheduledSlot
	days  *mockCalendarDayRepo
	types *mockShiftTypeRepo
	seq   int
}

func newMockScheduledSlotRepo(days *mockCalendarDayRepo, types *mockShiftTypeRepo) *mockScheduledSlotRepo {
	return &mockScheduledSlotRepo{
		slots: make(map[string]*model.ScheduledSlot),
		days:  days,
		types: types,
	}
}

// attach 模拟 Preload
func (m *mockScheduledSlotRepo) attach(s *model.ScheduledSlot) *model.ScheduledSlot {
	cp := *s
	if cd, err := m.days.GetByID(context.Background(), s.CalendarDayID); err == nil {
		cp.CalendarDay = cd
	}
	if st, ok := m.types.types[s.ShiftTypeID]; ok {
		cp.ShiftType = st
	}
	return &cp
}

func (m *mockScheduledSlotRepo) Create(_ context.Context, s *model.ScheduledSlot) error {
	if s.ScheduledSlotID == "" {
		m.seq++
		s.ScheduledSlotID = fmt.Sprintf("slot-%d", m.seq)
	}
	m.slots[s.ScheduledSlotID] = s
	return nil
}

func (m *mockScheduledSlotRepo) GetByID(_ context.Context, id string) (*model.ScheduledSlot, error) {
	if s, ok := m.slots[id]; ok {
		return m.attach(s), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduledSlotRepo) GetByDayAndType(_ context.Context, calendarDayID, shiftTypeID string) (*model.ScheduledSlot, error) {
	for _, s := range m.slots {
		if s.CalendarDayID == calendarDayID && s.ShiftTypeID == shiftTypeID {
			return m.attach(s), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduledSlotRepo) ListRange(_ context.Context, from, to time.Time) ([]model.ScheduledSlot, error) {
	var result []model.ScheduledSlot
	for _, s := range m.slots {
		cd, err := m.days.GetByID(context.Background(), s.CalendarDayID)
		if err != nil {
			continue
		}
		if !cd.Day.Before(from) && !cd.Day.After(to) {
			result = append(result, *m.attach(s))
		}
	}
	return result, nil
}

func (m *mockScheduledSlotRepo) Update(_ context.Context, s *model.ScheduledSlot) error {
	if _, ok := m.slots[s.ScheduledSlotID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	s.Version++
	cp := *s
	cp.CalendarDay = nil
	cp.ShiftType = nil
	m.slots[s.ScheduledSlotID] = &cp
	return nil
}

func (m *mockScheduledSlotRepo) CountByShiftType(_ context.Context, shiftTypeID string) (int64, error) {
	var n int64
	for _, s := range m.slots {
		if s.ShiftTypeID == shiftTypeID {
			n++
		}
	}
	return n, nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	slots       *mockScheduledSlotRepo
	workers     *mockWorkerRepo
	seq         int
}

func newMockAssignmentRepo(slots *mockScheduledSlotRepo, workers *mockWorkerRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments: make(map[string]*model.Assignment),
		slots:       slots,
		workers:     workers,
	}
}

func (m *mockAssignmentRepo) attach(a *model.Assignment) *model.Assignment {
	cp := *a
	if a.ScheduledSlotID != nil {
		if s, err := m.slots.GetByID(context.Background(), *a.ScheduledSlotID); err == nil {
			cp.ScheduledSlot = s
		}
	}
	if w, ok := m.workers.workers[a.WorkerID]; ok {
		cp.Worker = w
	}
	return &cp
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	// 复刻部分唯一索引 uq_assignments_active_per_day
	if a.State == model.AssignmentActive {
		for _, x := range m.assignments {
			if x.State == model.AssignmentActive &&
				x.WorkerID == a.WorkerID &&
				x.AssignmentDate.Equal(a.AssignmentDate) {
				return pkgerrors.ErrDuplicateActiveAssignment
			}
		}
	}
	if a.AssignmentID == "" {
		m.seq++
		a.AssignmentID = fmt.Sprintf("asg-%d", m.seq)
	}
	if a.Version == 0 {
		a.Version = 1
	}
	a.CreatedAt = time.Now()
	a.UpdatedAt = a.CreatedAt
	m.assignments[a.AssignmentID] = a
	return nil
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		return m.attach(a), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) List(_ context.Context, f repository.AssignmentFilter, offset, limit int) ([]model.Assignment, int64, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if f.WorkerID != "" && a.WorkerID != f.WorkerID {
			continue
		}
		if f.State != "" && a.State != f.State {
			continue
		}
		if f.Date != nil && !a.AssignmentDate.Equal(*f.Date) {
			continue
		}
		if f.Year > 0 && a.AssignmentDate.Year() != f.Year {
			continue
		}
		if f.Month > 0 && int(a.AssignmentDate.Month()) != f.Month {
			continue
		}
		result = append(result, *m.attach(a))
	}
	return result, int64(len(result)), nil
}

func (m *mockAssignmentRepo) ListBySlot(_ context.Context, slotID string, states []string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.ScheduledSlotID == nil || *a.ScheduledSlotID != slotID {
			continue
		}
		if len(states) > 0 {
			ok := false
			for _, st := range states {
				if a.State == st {
					ok = true
					break
				}
			}
			if !ok {
				continue
			}
		}
		result = append(result, *a)
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListByOrigin(_ context.Context, originID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, a := range m.assignments {
		if a.OriginAssignmentID != nil && *a.OriginAssignmentID == originID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) UpdateState(_ context.Context, a *model.Assignment) error {
	stored, ok := m.assignments[a.AssignmentID]
	if !ok || stored.Version != a.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.State = a.State
	stored.ChangeReason = a.ChangeReason
	stored.Version++
	a.Version = stored.Version
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	delete(m.assignments, id)
	return nil
}

func (m *mockAssignmentRepo) CountBySlot(_ context.Context, slotID string) (int64, error) {
	var n int64
	for _, a := range m.assignments {
		if a.ScheduledSlotID != nil && *a.ScheduledSlotID == slotID {
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) CountByShiftType(_ context.Context, shiftTypeID string) (int64, error) {
	var n int64
	for _, a := range m.assignments {
		if a.ShiftTypeID != nil && *a.ShiftTypeID == shiftTypeID {
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) ListMonthlySums(_ context.Context, workerID string, year int, states []string) ([]repository.MonthlySum, error) {
	byMonth := make(map[int]float64)
	for _, a := range m.assignments {
		if a.WorkerID != workerID || a.AssignmentDate.Year() != year {
			continue
		}
		ok := false
		for _, st := range states {
			if a.State == st {
				ok = true
				break
			}
		}
		if !ok || a.ScheduledSlotID == nil {
			continue
		}
		slot, okSlot := m.slots.slots[*a.ScheduledSlotID]
		if !okSlot || slot.Cancelled {
			continue
		}
		byMonth[int(a.AssignmentDate.Month())] += slot.EffectiveHours
	}

	var sums []repository.MonthlySum
	for mo := 1; mo <= 12; mo++ {
		if h, ok := byMonth[mo]; ok {
			sums = append(sums, repository.MonthlySum{Month: mo, Hours: h})
		}
	}
	return sums, nil
}

// ── Mock AuditEntryRepository ──

type mockAuditEntryRepo struct {
	entries []*model.AuditEntry
	seq     int
}

func newMockAuditEntryRepo() *mockAuditEntryRepo {
	return &mockAuditEntryRepo{}
}

func (m *mockAuditEntryRepo) Create(_ context.Context, e *model.AuditEntry) error {
	m.seq++
	e.AuditEntryID = fmt.Sprintf("audit-%d", m.seq)
	if e.ChangedAt.IsZero() {
		e.ChangedAt = time.Now()
	}
	m.entries = append(m.entries, e)
	return nil
}

func (m *mockAuditEntryRepo) ListByAssignments(_ context.Context, assignmentIDs []string) ([]model.AuditEntry, error) {
	idSet := make(map[string]bool, len(assignmentIDs))
	for _, id := range assignmentIDs {
		idSet[id] = true
	}
	var result []model.AuditEntry
	for _, e := range m.entries {
		if idSet[e.AssignmentID] {
			result = append(result, *e)
		}
	}
	return result, nil
}

// ── Mock BalancePeriodRepository ──

type mockBalancePeriodRepo struct {
	periods map[string]*model.BalancePeriod // key: worker-year-month
}

func newMockBalancePeriodRepo() *mockBalancePeriodRepo {
	return &mockBalancePeriodRepo{periods: make(map[string]*model.BalancePeriod)}
}

func balanceKey(workerID string, year, month int) string {
	return fmt.Sprintf("%s-%d-%d", workerID, year, month)
}

func (m *mockBalancePeriodRepo) Upsert(_ context.Context, bp *model.BalancePeriod) error {
	bp.LastRecomputedAt = time.Now()
	cp := *bp
	m.periods[balanceKey(bp.WorkerID, bp.Year, bp.Month)] = &cp
	return nil
}

func (m *mockBalancePeriodRepo) GetByKey(_ context.Context, workerID string, year, month int) (*model.BalancePeriod, error) {
	if bp, ok := m.periods[balanceKey(workerID, year, month)]; ok {
		return bp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockBalancePeriodRepo) ListByWorkerYear(_ context.Context, workerID string, year int) ([]model.BalancePeriod, error) {
	var result []model.BalancePeriod
	for mo := 1; mo <= 12; mo++ {
		if bp, ok := m.periods[balanceKey(workerID, year, mo)]; ok {
			result = append(result, *bp)
		}
	}
	return result, nil
}

func (m *mockBalancePeriodRepo) ListByMonth(_ context.Context, year, month int) ([]model.BalancePeriod, error) {
	var result []model.BalancePeriod
	for _, bp := range m.periods {
		if bp.Year == year && bp.Month == month {
			result = append(result, *bp)
		}
	}
	return result, nil
}

// ── Mock CohortPolicyRepository ──

type mockCohortPolicyRepo struct {
	policies map[string]*model.CohortPolicy
	seq      int
}

func newMockCohortPolicyRepo() *mockCohortPolicyRepo {
	return &mockCohortPolicyRepo{policies: make(map[string]*model.CohortPolicy)}
}

func (m *mockCohortPolicyRepo) Create(_ context.Context, p *model.CohortPolicy) error {
	if p.CohortPolicyID == "" {
		m.seq++
		p.CohortPolicyID = fmt.Sprintf("policy-%d", m.seq)
	}
	m.policies[p.CohortPolicyID] = p
	return nil
}

func (m *mockCohortPolicyRepo) GetByID(_ context.Context, id string) (*model.CohortPolicy, error) {
	if p, ok := m.policies[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCohortPolicyRepo) GetActiveByYear(_ context.Context, year int) (*model.CohortPolicy, error) {
	for _, p := range m.policies {
		if p.Year == year && p.IsActive {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCohortPolicyRepo) List(_ context.Context) ([]model.CohortPolicy, error) {
	var result []model.CohortPolicy
	for _, p := range m.policies {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockCohortPolicyRepo) Update(_ context.Context, p *model.CohortPolicy) error {
	if _, ok := m.policies[p.CohortPolicyID]; !ok {
		return pkgerrors.ErrOptimisticLock
	}
	p.Version++
	m.policies[p.CohortPolicyID] = p
	return nil
}

func (m *mockCohortPolicyRepo) Delete(_ context.Context, id string) error {
	delete(m.policies, id)
	return nil
}

func (m *mockCohortPolicyRepo) ClearActive(_ context.Context, year int) error {
	for _, p := range m.policies {
		if p.Year == year {
			p.IsActive = false
		}
	}
	return nil
}

// ── Mock RestRequestRepository ──

type mockRestRequestRepo struct {
	requests map[string]*model.RestRequest
	workers  *mockWorkerRepo
	seq      int
}

func newMockRestRequestRepo(workers *mockWorkerRepo) *mockRestRequestRepo {
	return &mockRestRequestRepo{requests: make(map[string]*model.RestRequest), workers: workers}
}

func (m *mockRestRequestRepo) Create(_ context.Context, rr *model.RestRequest) error {
	if rr.RestRequestID == "" {
		m.seq++
		rr.RestRequestID = fmt.Sprintf("rest-%d", m.seq)
	}
	if rr.Version == 0 {
		rr.Version = 1
	}
	m.requests[rr.RestRequestID] = rr
	return nil
}

func (m *mockRestRequestRepo) GetByID(_ context.Context, id string) (*model.RestRequest, error) {
	if rr, ok := m.requests[id]; ok {
		cp := *rr
		if w, okW := m.workers.workers[rr.WorkerID]; okW {
			cp.Worker = w
		}
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRestRequestRepo) List(_ context.Context, workerID, state string, offset, limit int) ([]model.RestRequest, int64, error) {
	var result []model.RestRequest
	for _, rr := range m.requests {
		if workerID != "" && rr.WorkerID != workerID {
			continue
		}
		if state != "" && rr.State != state {
			continue
		}
		result = append(result, *rr)
	}
	return result, int64(len(result)), nil
}

func (m *mockRestRequestRepo) Update(_ context.Context, rr *model.RestRequest) error {
	stored, ok := m.requests[rr.RestRequestID]
	if !ok || stored.Version != rr.Version {
		return pkgerrors.ErrOptimisticLock
	}
	stored.State = rr.State
	stored.Note = rr.Note
	stored.RespondedAt = rr.RespondedAt
	stored.Version++
	rr.Version = stored.Version
	return nil
}

// ── 测试装配 ──

// testMocks 暴露各 mock 的内部存储，便于断言
type testMocks struct {
	workers     *mockWorkerRepo
	shiftTypes  *mockShiftTypeRepo
	days        *mockCalendarDayRepo
	slots       *mockScheduledSlotRepo
	assignments *mockAssignmentRepo
	audits      *mockAuditEntryRepo
	balances    *mockBalancePeriodRepo
	policies    *mockCohortPolicyRepo
	rests       *mockRestRequestRepo
}

// newTestRepository 装配全 mock 的 Repository 聚合。
// db 为 nil，Atomic 降级为直通调用。
func newTestRepository() (*repository.Repository, *testMocks) {
	workers := newMockWorkerRepo()
	shiftTypes := newMockShiftTypeRepo()
	days := newMockCalendarDayRepo()
	slots := newMockScheduledSlotRepo(days, shiftTypes)
	assignments := newMockAssignmentRepo(slots, workers)

	m := &testMocks{
		workers:     workers,
		shiftTypes:  shiftTypes,
		days:        days,
		slots:       slots,
		assignments: assignments,
		audits:      newMockAuditEntryRepo(),
		balances:    newMockBalancePeriodRepo(),
		policies:    newMockCohortPolicyRepo(),
		rests:       newMockRestRequestRepo(workers),
	}

	repo := &repository.Repository{
		Worker:        m.workers,
		ShiftType:     m.shiftTypes,
		CalendarDay:   m.days,
		ScheduledSlot: m.slots,
		Assignment:    m.assignments,
		AuditEntry:    m.audits,
		BalancePeriod: m.balances,
		CohortPolicy:  m.policies,
		RestRequest:   m.rests,
	}
	return repo, m
}
