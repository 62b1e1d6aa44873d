package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SessionStatus defines the type for table session statuses.
type SessionStatus string

const (
	SessionStatusActive SessionStatus = "active"
	SessionStatusPaused SessionStatus = "paused"
	SessionStatusEnded  SessionStatus = "ended"
)

// TableStatus defines the type for billiard table statuses.
type TableStatus string

const (
	TableStatusAvailable   TableStatus = "available"
	TableStatusOccupied    TableStatus = "occupied"
	TableStatusMaintenance TableStatus = "maintenance"
)

// BilliardTable represents a physical table in the venue.
type BilliardTable struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	Name        string      `json:"name" db:"name" binding:"required"`
	Description *string     `json:"description,omitempty" db:"description"`
	Status      TableStatus `json:"status" db:"status"`
	TariffID    *uuid.UUID  `json:"tariff_id,omitempty" db:"tariff_id"` // default tariff for the table
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// TableSession is one continuous (possibly paused) occupancy of a table.
// At most one session per table may be in a non-ended status at a time;
// sessions are never deleted, only ended.
type TableSession struct {
	ID              uuid.UUID       `json:"id" db:"id"`
	TableID         uuid.UUID       `json:"table_id" db:"table_id"`
	TariffID        uuid.UUID       `json:"tariff_id" db:"tariff_id"`
	MemberID        *uuid.UUID      `json:"member_id,omitempty" db:"member_id"`
	StartTime       time.Time       `json:"start_time" db:"start_time"`
	EndTime         *time.Time      `json:"end_time,omitempty" db:"end_time"`
	Status          SessionStatus   `json:"status" db:"status"`
	PauseStartTime  *time.Time      `json:"pause_start_time,omitempty" db:"pause_start_time"`
	TotalPausedTime int64           `json:"total_paused_time" db:"total_paused_time"` // milliseconds
	FreeMinutesUsed int             `json:"free_minutes_used" db:"free_minutes_used"`
	PaidMinutes     int             `json:"paid_minutes" db:"paid_minutes"`
	TotalAmount     decimal.Decimal `json:"total_amount" db:"total_amount"`
	DiscountAmount  decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at" db:"updated_at"`
	Tariff          *Tariff         `json:"tariff,omitempty"` // snapshot captured at session start
}
