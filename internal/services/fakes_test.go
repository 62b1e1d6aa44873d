package services

import (
	"sync"
	"time"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fakeClock is a manually advanced Clock so tests never sleep.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(start time.Time) *fakeClock {
	return &fakeClock{now: start}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// --- in-memory SessionRepository ---

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*models.TableSession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*models.TableSession)}
}

func copySession(s *models.TableSession) *models.TableSession {
	c := *s
	return &c
}

func (r *fakeSessionRepo) CreateSession(_ repositories.SQLExecutor, session *models.TableSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.sessions {
		if existing.TableID == session.TableID && existing.Status != models.SessionStatusEnded {
			return repositories.ErrDuplicateKey
		}
	}
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}
	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) GetSessionByID(sessionID uuid.UUID) (*models.TableSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[sessionID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copySession(session), nil
}

func (r *fakeSessionRepo) UpdateSession(_ repositories.SQLExecutor, session *models.TableSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[session.ID]; !ok {
		return repositories.ErrNotFound
	}
	r.sessions[session.ID] = copySession(session)
	return nil
}

func (r *fakeSessionRepo) FindActiveSessionForTable(tableID uuid.UUID) (*models.TableSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, session := range r.sessions {
		if session.TableID == tableID && session.Status != models.SessionStatusEnded {
			return copySession(session), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeSessionRepo) GetSessionsForTable(tableID uuid.UUID, _ int) ([]models.TableSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sessions := []models.TableSession{}
	for _, session := range r.sessions {
		if session.TableID == tableID {
			sessions = append(sessions, *copySession(session))
		}
	}
	return sessions, nil
}

// --- in-memory TableRepository ---

type fakeTableRepo struct {
	mu     sync.Mutex
	tables map[uuid.UUID]*models.BilliardTable
}

func newFakeTableRepo() *fakeTableRepo {
	return &fakeTableRepo{tables: make(map[uuid.UUID]*models.BilliardTable)}
}

func (r *fakeTableRepo) add(table *models.BilliardTable) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[table.ID] = table
}

func (r *fakeTableRepo) GetTableByID(tableID uuid.UUID) (*models.BilliardTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[tableID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *table
	return &c, nil
}

func (r *fakeTableRepo) GetTables() ([]models.BilliardTable, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tables := []models.BilliardTable{}
	for _, table := range r.tables {
		tables = append(tables, *table)
	}
	return tables, nil
}

func (r *fakeTableRepo) SetTableStatus(_ repositories.SQLExecutor, tableID uuid.UUID, status models.TableStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	table, ok := r.tables[tableID]
	if !ok {
		return repositories.ErrNotFound
	}
	table.Status = status
	return nil
}

// --- in-memory TariffRepository ---

type fakeTariffRepo struct {
	mu      sync.Mutex
	tariffs map[uuid.UUID]*models.Tariff
}

func newFakeTariffRepo() *fakeTariffRepo {
	return &fakeTariffRepo{tariffs: make(map[uuid.UUID]*models.Tariff)}
}

func (r *fakeTariffRepo) add(tariff *models.Tariff) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tariffs[tariff.ID] = tariff
}

func (r *fakeTariffRepo) CreateTariff(_ repositories.SQLExecutor, tariff *models.Tariff) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tariffs {
		if existing.Name == tariff.Name {
			return repositories.ErrDuplicateKey
		}
	}
	if tariff.ID == uuid.Nil {
		tariff.ID = uuid.New()
	}
	r.tariffs[tariff.ID] = tariff
	return nil
}

func (r *fakeTariffRepo) GetTariffByID(tariffID uuid.UUID) (*models.Tariff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tariff, ok := r.tariffs[tariffID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *tariff
	return &c, nil
}

func (r *fakeTariffRepo) GetTariffs(onlyActive bool) ([]models.Tariff, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tariffs := []models.Tariff{}
	for _, tariff := range r.tariffs {
		if onlyActive && !tariff.IsActive {
			continue
		}
		tariffs = append(tariffs, *tariff)
	}
	return tariffs, nil
}

func (r *fakeTariffRepo) DeactivateTariff(_ repositories.SQLExecutor, tariffID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tariff, ok := r.tariffs[tariffID]
	if !ok {
		return repositories.ErrNotFound
	}
	tariff.IsActive = false
	return nil
}

// --- in-memory MemberRepository ---

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[uuid.UUID]*models.Member
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[uuid.UUID]*models.Member)}
}

func (r *fakeMemberRepo) add(member *models.Member) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.members[member.ID] = member
}

func (r *fakeMemberRepo) GetMemberByID(memberID uuid.UUID) (*models.Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[memberID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	c := *member
	return &c, nil
}

func (r *fakeMemberRepo) DecrementFreeHours(_ repositories.SQLExecutor, memberID uuid.UUID, hours decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	member, ok := r.members[memberID]
	if !ok {
		return repositories.ErrNotFound
	}
	balance := member.FreeHoursBalance.Sub(hours)
	if balance.IsNegative() {
		balance = decimal.Zero
	}
	member.FreeHoursBalance = balance
	return nil
}

// --- in-memory ShiftRepository ---

type fakeShiftRepo struct {
	mu        sync.Mutex
	shifts    map[uuid.UUID]*models.Shift
	cashSales map[uuid.UUID]uuid.UUID // session ID -> shift ID

	// failNextCashSale makes the next RecordCashSale fail before anything is
	// recorded, like a rolled-back transaction.
	failNextCashSale error
}

func newFakeShiftRepo() *fakeShiftRepo {
	return &fakeShiftRepo{
		shifts:    make(map[uuid.UUID]*models.Shift),
		cashSales: make(map[uuid.UUID]uuid.UUID),
	}
}

func copyShift(s *models.Shift) *models.Shift {
	c := *s
	c.Movements = append([]models.CashMovement(nil), s.Movements...)
	return &c
}

func (r *fakeShiftRepo) CreateShift(_ repositories.SQLExecutor, shift *models.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.shifts {
		if existing.DrawerScope == shift.DrawerScope && existing.Status == models.ShiftStatusOpen {
			return repositories.ErrDuplicateKey
		}
	}
	if shift.ID == uuid.Nil {
		shift.ID = uuid.New()
	}
	r.shifts[shift.ID] = copyShift(shift)
	return nil
}

func (r *fakeShiftRepo) GetShiftByID(shiftID uuid.UUID) (*models.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	shift, ok := r.shifts[shiftID]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return copyShift(shift), nil
}

func (r *fakeShiftRepo) FindOpenShift(drawerScope string) (*models.Shift, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, shift := range r.shifts {
		if shift.DrawerScope == drawerScope && shift.Status == models.ShiftStatusOpen {
			return copyShift(shift), nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (r *fakeShiftRepo) AddMovement(_ repositories.SQLExecutor, movement *models.CashMovement) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	shift, ok := r.shifts[movement.ShiftID]
	if !ok {
		return repositories.ErrNotFound
	}
	if movement.ID == uuid.Nil {
		movement.ID = uuid.New()
	}
	shift.Movements = append(shift.Movements, *movement)
	return nil
}

func (r *fakeShiftRepo) RecordCashSale(shiftID uuid.UUID, sessionID uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failNextCashSale != nil {
		err := r.failNextCashSale
		r.failNextCashSale = nil
		return err
	}
	if _, seen := r.cashSales[sessionID]; seen {
		return repositories.ErrDuplicateKey
	}
	shift, ok := r.shifts[shiftID]
	if !ok || shift.Status != models.ShiftStatusOpen {
		return repositories.ErrNotFound
	}
	r.cashSales[sessionID] = shiftID
	shift.CashSalesTotal = shift.CashSalesTotal.Add(amount)
	return nil
}

func (r *fakeShiftRepo) CloseShift(_ repositories.SQLExecutor, shift *models.Shift) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.shifts[shift.ID]
	if !ok || stored.Status != models.ShiftStatusOpen {
		return repositories.ErrNotFound
	}
	closed := copyShift(shift)
	closed.Movements = append([]models.CashMovement(nil), stored.Movements...)
	closed.CashSalesTotal = stored.CashSalesTotal
	r.shifts[shift.ID] = closed
	return nil
}

// --- recording ShiftService stub for session tests ---

type recordedCashSale struct {
	drawerScope string
	sessionID   uuid.UUID
	amount      decimal.Decimal
}

type fakeShiftService struct {
	mu        sync.Mutex
	cashSales []recordedCashSale
	failWith  error
}

func (s *fakeShiftService) OpenShift(OpenShiftRequest, *int64) (*models.Shift, error) {
	return nil, ErrShiftNotFound
}

func (s *fakeShiftService) GetShift(uuid.UUID) (*models.Shift, error) {
	return nil, ErrShiftNotFound
}

func (s *fakeShiftService) GetSummary(uuid.UUID) (*models.ShiftSummary, error) {
	return nil, ErrShiftNotFound
}

func (s *fakeShiftService) RecordMovement(uuid.UUID, RecordMovementRequest) (*models.CashMovement, error) {
	return nil, ErrShiftNotFound
}

func (s *fakeShiftService) RecordCashSale(drawerScope string, sessionID uuid.UUID, amount decimal.Decimal) (*models.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.cashSales = append(s.cashSales, recordedCashSale{drawerScope: drawerScope, sessionID: sessionID, amount: amount})
	return &models.Shift{ID: uuid.New(), DrawerScope: drawerScope, Status: models.ShiftStatusOpen}, nil
}

func (s *fakeShiftService) CloseShift(uuid.UUID, CloseShiftRequest, *int64) (*models.Shift, error) {
	return nil, ErrShiftNotFound
}
