package services

import (
	"database/sql"
	"errors"
	"fmt"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
	"billiard_pos_backend/pkg/locks"

	"github.com/google/uuid"
)

// --- Custom Service Errors for Sessions ---
var (
	ErrTableNotFound   = errors.New("table not found")
	ErrTariffNotFound  = errors.New("tariff not found")
	ErrTariffInactive  = errors.New("tariff is not active")
	ErrMemberNotFound  = errors.New("member not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrAlreadyOccupied = errors.New("table already has a session in progress")
	ErrNotActive       = errors.New("session is not active")
	ErrNotPaused       = errors.New("session is not paused")
	ErrAlreadyEnded    = errors.New("session already ended")
	ErrInvalidPayment  = errors.New("invalid payment method")

	// ErrCashSaleNotRecorded means the session was finalized and persisted
	// but the drawer credit failed. The caller may retry RecordCashSale for
	// the session; the shift store deduplicates by session ID.
	ErrCashSaleNotRecorded = errors.New("session finalized but cash sale not recorded on shift")
)

// Payment methods accepted at session end. Only cash feeds the shift ledger.
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
)

// --- Session DTOs ---
type StartSessionRequest struct {
	TariffID *uuid.UUID `json:"tariff_id"` // falls back to the table's default tariff
	MemberID *uuid.UUID `json:"member_id"`
}

type EndSessionRequest struct {
	PaymentMethod string  `json:"payment_method" binding:"required"`
	DrawerScope   *string `json:"drawer_scope"` // required for cash payments
}

// --- SessionService Interface ---
type SessionService interface {
	StartSession(tableID uuid.UUID, req StartSessionRequest) (*models.TableSession, error)
	GetSession(sessionID uuid.UUID) (*models.TableSession, error)
	QuoteSession(sessionID uuid.UUID) (*ChargeResult, error)
	PauseSession(sessionID uuid.UUID) (*models.TableSession, error)
	ResumeSession(sessionID uuid.UUID) (*models.TableSession, error)
	EndSession(sessionID uuid.UUID, req EndSessionRequest) (*models.TableSession, error)
}

// --- sessionService Implementation ---
type sessionService struct {
	sessionRepo  repositories.SessionRepository
	tableRepo    repositories.TableRepository
	tariffRepo   repositories.TariffRepository
	memberRepo   repositories.MemberRepository
	shiftService ShiftService
	db           *sql.DB
	locks        *locks.KeyMutex
	clock        Clock
}

// NewSessionService creates a new instance of SessionService.
func NewSessionService(
	sr repositories.SessionRepository,
	tr repositories.TableRepository,
	fr repositories.TariffRepository,
	mr repositories.MemberRepository,
	shifts ShiftService,
	db *sql.DB,
	km *locks.KeyMutex,
	clock Clock,
) SessionService {
	return &sessionService{
		sessionRepo:  sr,
		tableRepo:    tr,
		tariffRepo:   fr,
		memberRepo:   mr,
		shiftService: shifts,
		db:           db,
		locks:        km,
		clock:        clock,
	}
}

func (s *sessionService) StartSession(tableID uuid.UUID, req StartSessionRequest) (*models.TableSession, error) {
	unlock := s.locks.Lock("table:" + tableID.String())
	defer unlock()

	table, err := s.tableRepo.GetTableByID(tableID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to load table: %w", err)
	}

	tariffID := req.TariffID
	if tariffID == nil {
		tariffID = table.TariffID
	}
	if tariffID == nil {
		return nil, fmt.Errorf("%w: no tariff specified and table %q has no default", ErrTariffNotFound, table.Name)
	}
	tariff, err := s.tariffRepo.GetTariffByID(*tariffID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrTariffNotFound
		}
		return nil, fmt.Errorf("failed to load tariff: %w", err)
	}
	if !tariff.IsActive {
		return nil, ErrTariffInactive
	}

	if req.MemberID != nil {
		if _, err := s.memberRepo.GetMemberByID(*req.MemberID); err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, ErrMemberNotFound
			}
			return nil, fmt.Errorf("failed to validate member: %w", err)
		}
	}

	_, err = s.sessionRepo.FindActiveSessionForTable(tableID)
	if err == nil {
		return nil, ErrAlreadyOccupied
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check table occupancy: %w", err)
	}

	session := &models.TableSession{
		TableID:   tableID,
		TariffID:  tariff.ID,
		MemberID:  req.MemberID,
		StartTime: s.clock.Now(),
		Status:    models.SessionStatusActive,
		Tariff:    tariff, // snapshot; later tariff edits do not reprice this session
	}
	if err := s.sessionRepo.CreateSession(s.db, session); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrAlreadyOccupied
		}
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := s.tableRepo.SetTableStatus(s.db, tableID, models.TableStatusOccupied); err != nil {
		return session, fmt.Errorf("session started but failed to mark table occupied: %w", err)
	}
	return session, nil
}

func (s *sessionService) GetSession(sessionID uuid.UUID) (*models.TableSession, error) {
	session, err := s.sessionRepo.GetSessionByID(sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return session, nil
}

// QuoteSession computes the amount owed so far without mutating anything.
// For an ended session it reports the settled values.
func (s *sessionService) QuoteSession(sessionID uuid.UUID) (*ChargeResult, error) {
	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionStatusEnded {
		return &ChargeResult{
			FreeMinutesUsed: session.FreeMinutesUsed,
			PaidMinutes:     session.PaidMinutes,
			ElapsedMinutes:  session.FreeMinutesUsed + session.PaidMinutes,
			TotalAmount:     session.TotalAmount,
			DiscountAmount:  session.DiscountAmount,
		}, nil
	}

	tariff, member, err := s.chargeInputs(session)
	if err != nil {
		return nil, err
	}
	result := ComputeCharge(session, tariff, s.clock.Now(), member)
	return &result, nil
}

func (s *sessionService) PauseSession(sessionID uuid.UUID) (*models.TableSession, error) {
	unlock := s.locks.Lock("session:" + sessionID.String())
	defer unlock()

	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusActive {
		return nil, ErrNotActive
	}

	now := s.clock.Now()
	session.PauseStartTime = &now
	session.Status = models.SessionStatusPaused
	if err := s.sessionRepo.UpdateSession(s.db, session); err != nil {
		return nil, fmt.Errorf("failed to pause session: %w", err)
	}
	return session, nil
}

func (s *sessionService) ResumeSession(sessionID uuid.UUID) (*models.TableSession, error) {
	unlock := s.locks.Lock("session:" + sessionID.String())
	defer unlock()

	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.SessionStatusPaused || session.PauseStartTime == nil {
		return nil, ErrNotPaused
	}

	now := s.clock.Now()
	session.TotalPausedTime += now.Sub(*session.PauseStartTime).Milliseconds()
	session.PauseStartTime = nil
	session.Status = models.SessionStatusActive
	if err := s.sessionRepo.UpdateSession(s.db, session); err != nil {
		return nil, fmt.Errorf("failed to resume session: %w", err)
	}
	return session, nil
}

// EndSession finalizes a session: it computes the charge, persists the ended
// session, applies the member's free-hours consumption, and only then credits
// a cash payment to the drawer's open shift. If the credit fails the session
// stays ended and ErrCashSaleNotRecorded is returned alongside it.
func (s *sessionService) EndSession(sessionID uuid.UUID, req EndSessionRequest) (*models.TableSession, error) {
	switch req.PaymentMethod {
	case PaymentMethodCash:
		if req.DrawerScope == nil || *req.DrawerScope == "" {
			return nil, fmt.Errorf("%w: cash payments require a drawer scope", ErrInvalidPayment)
		}
	case PaymentMethodCard:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidPayment, req.PaymentMethod)
	}

	unlock := s.locks.Lock("session:" + sessionID.String())
	defer unlock()

	session, err := s.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status == models.SessionStatusEnded {
		return nil, ErrAlreadyEnded
	}

	tariff, member, err := s.chargeInputs(session)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	if session.Status == models.SessionStatusPaused && session.PauseStartTime != nil {
		// Fold the live pause interval before pricing so the stored total
		// reflects the whole paused time.
		session.TotalPausedTime += now.Sub(*session.PauseStartTime).Milliseconds()
		session.PauseStartTime = nil
	}

	result := ComputeCharge(session, tariff, now, member)

	session.EndTime = &now
	session.Status = models.SessionStatusEnded
	session.FreeMinutesUsed = result.FreeMinutesUsed
	session.PaidMinutes = result.PaidMinutes
	session.TotalAmount = result.TotalAmount
	session.DiscountAmount = result.DiscountAmount

	if err := s.sessionRepo.UpdateSession(s.db, session); err != nil {
		return nil, fmt.Errorf("failed to finalize session: %w", err)
	}

	if session.MemberID != nil && result.FreeHoursConsumed.IsPositive() {
		if err := s.memberRepo.DecrementFreeHours(s.db, *session.MemberID, result.FreeHoursConsumed); err != nil {
			return session, fmt.Errorf("session finalized but failed to decrement member free hours: %w", err)
		}
	}

	if err := s.tableRepo.SetTableStatus(s.db, session.TableID, models.TableStatusAvailable); err != nil {
		return session, fmt.Errorf("session finalized but failed to release table: %w", err)
	}

	if req.PaymentMethod == PaymentMethodCash {
		if _, err := s.shiftService.RecordCashSale(*req.DrawerScope, session.ID, session.TotalAmount); err != nil {
			return session, fmt.Errorf("%w: %w", ErrCashSaleNotRecorded, err)
		}
	}
	return session, nil
}

// chargeInputs resolves the tariff snapshot and the member for pricing.
func (s *sessionService) chargeInputs(session *models.TableSession) (*models.Tariff, *models.Member, error) {
	tariff := session.Tariff
	if tariff == nil {
		loaded, err := s.tariffRepo.GetTariffByID(session.TariffID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, ErrTariffNotFound
			}
			return nil, nil, fmt.Errorf("failed to load tariff: %w", err)
		}
		tariff = loaded
	}

	var member *models.Member
	if session.MemberID != nil {
		loaded, err := s.memberRepo.GetMemberByID(*session.MemberID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, nil, ErrMemberNotFound
			}
			return nil, nil, fmt.Errorf("failed to load member: %w", err)
		}
		member = loaded
	}
	return tariff, member, nil
}
