package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShiftStatus defines the type for shift statuses. A shift goes
// open -> closed exactly once; closed is terminal.
type ShiftStatus string

const (
	ShiftStatusOpen   ShiftStatus = "open"
	ShiftStatusClosed ShiftStatus = "closed"
)

// MovementType defines the type of a cash drawer movement.
type MovementType string

const (
	MovementTypeDrop       MovementType = "drop"       // cash moved from drawer to safe
	MovementTypePayout     MovementType = "payout"     // cash paid out for an expense
	MovementTypeAdjustment MovementType = "adjustment" // corrective entry, either direction
)

// IsValidMovementType checks if the provided string is a valid MovementType.
func IsValidMovementType(movementType string) bool {
	switch MovementType(movementType) {
	case MovementTypeDrop, MovementTypePayout, MovementTypeAdjustment:
		return true
	default:
		return false
	}
}

// MovementDirection is the effect a movement has on expected cash.
// Amounts are stored unsigned; the direction carries the sign.
type MovementDirection string

const (
	MovementDirectionIn  MovementDirection = "in"
	MovementDirectionOut MovementDirection = "out"
)

// CashMovement is one drawer movement recorded against an open shift.
type CashMovement struct {
	ID        uuid.UUID         `json:"id" db:"id"`
	ShiftID   uuid.UUID         `json:"shift_id" db:"shift_id"`
	Type      MovementType      `json:"type" db:"movement_type"`
	Direction MovementDirection `json:"direction" db:"direction"`
	Amount    decimal.Decimal   `json:"amount" db:"amount"` // always > 0
	Reason    string            `json:"reason" db:"reason"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
}

// Shift is one employee's accountable period for a cash drawer.
type Shift struct {
	ID             uuid.UUID        `json:"id" db:"id"`
	DrawerScope    string           `json:"drawer_scope" db:"drawer_scope"` // terminal/drawer identifier
	OpenedBy       *int64           `json:"opened_by,omitempty" db:"opened_by"`
	ClosedBy       *int64           `json:"closed_by,omitempty" db:"closed_by"`
	StartCash      decimal.Decimal  `json:"start_cash" db:"start_cash"`
	CashSalesTotal decimal.Decimal  `json:"cash_sales_total" db:"cash_sales_total"`
	EndCashCounted *decimal.Decimal `json:"end_cash_counted,omitempty" db:"end_cash_counted"`
	OverShort      *decimal.Decimal `json:"over_short,omitempty" db:"over_short"`
	Status         ShiftStatus      `json:"status" db:"status"`
	Notes          *string          `json:"notes,omitempty" db:"notes"`
	OpenedAt       time.Time        `json:"opened_at" db:"opened_at"`
	ClosedAt       *time.Time       `json:"closed_at,omitempty" db:"closed_at"`
	Movements      []CashMovement   `json:"movements,omitempty"`
}

// ExpectedCash is the drawer balance the shift should hold right now:
// start cash plus cash sales, minus drops and payouts, plus or minus
// adjustments according to their recorded direction.
func (s *Shift) ExpectedCash() decimal.Decimal {
	expected := s.StartCash.Add(s.CashSalesTotal)
	for _, m := range s.Movements {
		if m.Direction == MovementDirectionIn {
			expected = expected.Add(m.Amount)
		} else {
			expected = expected.Sub(m.Amount)
		}
	}
	return expected
}

// ShiftSummary is a read-only projection of a shift's drawer state.
type ShiftSummary struct {
	ShiftID         uuid.UUID        `json:"shift_id"`
	Status          ShiftStatus      `json:"status"`
	StartCash       decimal.Decimal  `json:"start_cash"`
	CashSalesTotal  decimal.Decimal  `json:"cash_sales_total"`
	DropsTotal      decimal.Decimal  `json:"drops_total"`
	PayoutsTotal    decimal.Decimal  `json:"payouts_total"`
	AdjustmentsNet  decimal.Decimal  `json:"adjustments_net"`
	ExpectedCash    decimal.Decimal  `json:"expected_cash"`
	EndCashCounted  *decimal.Decimal `json:"end_cash_counted,omitempty"`
	OverShort       *decimal.Decimal `json:"over_short,omitempty"`
	Movements       []CashMovement   `json:"movements"`
}
