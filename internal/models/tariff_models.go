package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateType defines how a tariff charges for table time.
type RateType string

const (
	RateTypeHourly  RateType = "hourly"
	RateTypeFixed   RateType = "fixed"
	RateTypeSession RateType = "session"
)

// IsValidRateType checks if the provided string is a valid RateType.
func IsValidRateType(rateType string) bool {
	switch RateType(rateType) {
	case RateTypeHourly, RateTypeFixed, RateTypeSession:
		return true
	default:
		return false
	}
}

// TierRate is one step of a tiered hourly price list.
// Rate applies from FromMinute (inclusive) until the next tier starts.
type TierRate struct {
	FromMinute int             `json:"from_minute"`
	Rate       decimal.Decimal `json:"rate"`
}

// Tariff is the pricing policy applied to a table session.
// A session captures the tariff as a snapshot at start, so edits to a
// tariff never change the price of a session already running on it.
type Tariff struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	Name        string          `json:"name" db:"name" binding:"required"`
	Description *string         `json:"description,omitempty" db:"description"`
	Rate        decimal.Decimal `json:"rate" db:"rate"` // currency per hour
	RateType    RateType        `json:"rate_type" db:"rate_type"`
	FreeMinutes int             `json:"free_minutes" db:"free_minutes"`
	TieredRates []TierRate      `json:"tiered_rates,omitempty" db:"tiered_rates"`
	MinDuration int             `json:"min_duration" db:"min_duration"` // minutes, 0 = none
	MaxDuration int             `json:"max_duration" db:"max_duration"` // minutes, 0 = unlimited
	IsActive    bool            `json:"is_active" db:"is_active"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}
