package services

import (
	"database/sql"
	"errors"
	"fmt"

	"billiard_pos_backend/internal/models"
	"billiard_pos_backend/internal/repositories"
	"billiard_pos_backend/pkg/locks"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- Custom Service Errors for Shifts ---
var (
	ErrShiftNotFound    = errors.New("shift not found")
	ErrShiftAlreadyOpen = errors.New("an open shift already exists for this drawer")
	ErrShiftClosed      = errors.New("shift is closed")
	ErrNoOpenShift      = errors.New("no open shift for this drawer")
	ErrInvalidAmount    = errors.New("amount must not be negative or zero where a positive value is required")
	ErrInvalidMovement  = errors.New("invalid movement type or direction")
)

// --- Shift DTOs ---
type OpenShiftRequest struct {
	DrawerScope string          `json:"drawer_scope" binding:"required"`
	StartCash   decimal.Decimal `json:"start_cash"`
	Notes       *string         `json:"notes"`
}

type RecordMovementRequest struct {
	Type      string          `json:"type" binding:"required"`
	Direction *string         `json:"direction"` // required for adjustments, derived otherwise
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	Reason    string          `json:"reason"`
}

type CloseShiftRequest struct {
	EndCashCounted decimal.Decimal `json:"end_cash_counted"`
	Notes          *string         `json:"notes"`
}

// --- ShiftService Interface ---
type ShiftService interface {
	OpenShift(req OpenShiftRequest, openedBy *int64) (*models.Shift, error)
	GetShift(shiftID uuid.UUID) (*models.Shift, error)
	GetSummary(shiftID uuid.UUID) (*models.ShiftSummary, error)
	RecordMovement(shiftID uuid.UUID, req RecordMovementRequest) (*models.CashMovement, error)
	RecordCashSale(drawerScope string, sessionID uuid.UUID, amount decimal.Decimal) (*models.Shift, error)
	CloseShift(shiftID uuid.UUID, req CloseShiftRequest, closedBy *int64) (*models.Shift, error)
}

// --- shiftService Implementation ---
type shiftService struct {
	shiftRepo repositories.ShiftRepository
	db        *sql.DB
	locks     *locks.KeyMutex
	clock     Clock
}

// NewShiftService creates a new instance of ShiftService.
func NewShiftService(sr repositories.ShiftRepository, db *sql.DB, km *locks.KeyMutex, clock Clock) ShiftService {
	return &shiftService{
		shiftRepo: sr,
		db:        db,
		locks:     km,
		clock:     clock,
	}
}

func (s *shiftService) OpenShift(req OpenShiftRequest, openedBy *int64) (*models.Shift, error) {
	if req.StartCash.IsNegative() {
		return nil, fmt.Errorf("%w: start cash cannot be negative", ErrInvalidAmount)
	}

	unlock := s.locks.Lock("drawer:" + req.DrawerScope)
	defer unlock()

	_, err := s.shiftRepo.FindOpenShift(req.DrawerScope)
	if err == nil {
		return nil, ErrShiftAlreadyOpen
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check for open shift: %w", err)
	}

	shift := &models.Shift{
		DrawerScope:    req.DrawerScope,
		OpenedBy:       openedBy,
		StartCash:      req.StartCash,
		CashSalesTotal: decimal.Zero,
		Status:         models.ShiftStatusOpen,
		Notes:          req.Notes,
		OpenedAt:       s.clock.Now(),
	}
	if err := s.shiftRepo.CreateShift(s.db, shift); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			return nil, ErrShiftAlreadyOpen
		}
		return nil, fmt.Errorf("failed to open shift: %w", err)
	}
	return s.shiftRepo.GetShiftByID(shift.ID)
}

func (s *shiftService) GetShift(shiftID uuid.UUID) (*models.Shift, error) {
	shift, err := s.shiftRepo.GetShiftByID(shiftID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrShiftNotFound
		}
		return nil, fmt.Errorf("failed to get shift: %w", err)
	}
	return shift, nil
}

// GetSummary is a read-only projection of the drawer state; it is valid at
// any time before or after close and never mutates the shift.
func (s *shiftService) GetSummary(shiftID uuid.UUID) (*models.ShiftSummary, error) {
	shift, err := s.GetShift(shiftID)
	if err != nil {
		return nil, err
	}

	summary := &models.ShiftSummary{
		ShiftID:        shift.ID,
		Status:         shift.Status,
		StartCash:      shift.StartCash,
		CashSalesTotal: shift.CashSalesTotal,
		DropsTotal:     decimal.Zero,
		PayoutsTotal:   decimal.Zero,
		AdjustmentsNet: decimal.Zero,
		ExpectedCash:   shift.ExpectedCash(),
		EndCashCounted: shift.EndCashCounted,
		OverShort:      shift.OverShort,
		Movements:      shift.Movements,
	}
	for _, m := range shift.Movements {
		switch m.Type {
		case models.MovementTypeDrop:
			summary.DropsTotal = summary.DropsTotal.Add(m.Amount)
		case models.MovementTypePayout:
			summary.PayoutsTotal = summary.PayoutsTotal.Add(m.Amount)
		case models.MovementTypeAdjustment:
			if m.Direction == models.MovementDirectionIn {
				summary.AdjustmentsNet = summary.AdjustmentsNet.Add(m.Amount)
			} else {
				summary.AdjustmentsNet = summary.AdjustmentsNet.Sub(m.Amount)
			}
		}
	}
	return summary, nil
}

func (s *shiftService) RecordMovement(shiftID uuid.UUID, req RecordMovementRequest) (*models.CashMovement, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: movement amount must be greater than zero", ErrInvalidAmount)
	}
	if !models.IsValidMovementType(req.Type) {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMovement, req.Type)
	}

	direction, err := movementDirection(models.MovementType(req.Type), req.Direction)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.Lock("shift:" + shiftID.String())
	defer unlock()

	shift, err := s.GetShift(shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status != models.ShiftStatusOpen {
		return nil, ErrShiftClosed
	}

	movement := &models.CashMovement{
		ShiftID:   shift.ID,
		Type:      models.MovementType(req.Type),
		Direction: direction,
		Amount:    req.Amount,
		Reason:    req.Reason,
		CreatedAt: s.clock.Now(),
	}
	if err := s.shiftRepo.AddMovement(s.db, movement); err != nil {
		return nil, fmt.Errorf("failed to record movement: %w", err)
	}
	return movement, nil
}

// movementDirection derives the effect of a movement on expected cash.
// Drops and payouts always take cash out of the drawer; adjustments are
// corrective in either direction, so the caller must say which.
func movementDirection(movementType models.MovementType, direction *string) (models.MovementDirection, error) {
	switch movementType {
	case models.MovementTypeDrop, models.MovementTypePayout:
		if direction != nil && models.MovementDirection(*direction) != models.MovementDirectionOut {
			return "", fmt.Errorf("%w: %s movements always have direction %q", ErrInvalidMovement, movementType, models.MovementDirectionOut)
		}
		return models.MovementDirectionOut, nil
	case models.MovementTypeAdjustment:
		if direction == nil {
			return "", fmt.Errorf("%w: adjustments require an explicit direction", ErrInvalidMovement)
		}
		d := models.MovementDirection(*direction)
		if d != models.MovementDirectionIn && d != models.MovementDirectionOut {
			return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidMovement, *direction)
		}
		return d, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidMovement, movementType)
	}
}

// RecordCashSale credits a finalized session's cash amount to the drawer's
// open shift. The credit is idempotent per session: a retry after a partial
// failure finds the existing row and does not double-count.
func (s *shiftService) RecordCashSale(drawerScope string, sessionID uuid.UUID, amount decimal.Decimal) (*models.Shift, error) {
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: cash sale amount cannot be negative", ErrInvalidAmount)
	}

	unlock := s.locks.Lock("drawer:" + drawerScope)
	defer unlock()

	shift, err := s.shiftRepo.FindOpenShift(drawerScope)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrNoOpenShift
		}
		return nil, fmt.Errorf("failed to find open shift: %w", err)
	}

	if err := s.shiftRepo.RecordCashSale(shift.ID, sessionID, amount); err != nil {
		if errors.Is(err, repositories.ErrDuplicateKey) {
			// Already credited for this session; return the shift unchanged.
			return shift, nil
		}
		return nil, fmt.Errorf("failed to record cash sale: %w", err)
	}
	return s.shiftRepo.GetShiftByID(shift.ID)
}

func (s *shiftService) CloseShift(shiftID uuid.UUID, req CloseShiftRequest, closedBy *int64) (*models.Shift, error) {
	if req.EndCashCounted.IsNegative() {
		return nil, fmt.Errorf("%w: counted cash cannot be negative", ErrInvalidAmount)
	}

	unlock := s.locks.Lock("shift:" + shiftID.String())
	defer unlock()

	shift, err := s.GetShift(shiftID)
	if err != nil {
		return nil, err
	}
	if shift.Status != models.ShiftStatusOpen {
		return nil, ErrShiftClosed
	}

	expected := shift.ExpectedCash()
	overShort := req.EndCashCounted.Sub(expected)
	closedAt := s.clock.Now()

	shift.Status = models.ShiftStatusClosed
	shift.ClosedBy = closedBy
	shift.EndCashCounted = &req.EndCashCounted
	shift.OverShort = &overShort
	shift.ClosedAt = &closedAt

	if err := s.shiftRepo.CloseShift(s.db, shift); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			// Lost the WHERE status = 'open' race to a concurrent close.
			return nil, ErrShiftClosed
		}
		return nil, fmt.Errorf("failed to close shift: %w", err)
	}
	return s.shiftRepo.GetShiftByID(shift.ID)
}
