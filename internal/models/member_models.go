package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MembershipTier defines the type for club membership levels.
type MembershipTier string

const (
	TierBronze MembershipTier = "bronze"
	TierSilver MembershipTier = "silver"
	TierGold   MembershipTier = "gold"
)

// IsValidMembershipTier checks if the provided string is a valid MembershipTier.
func IsValidMembershipTier(tier string) bool {
	switch MembershipTier(tier) {
	case TierBronze, TierSilver, TierGold:
		return true
	default:
		return false
	}
}

// Member is a club member whose tier and free-hour balance affect billing.
type Member struct {
	ID               uuid.UUID       `json:"id" db:"id"`
	FullName         string          `json:"full_name" db:"full_name"`
	PhoneNumber      *string         `json:"phone_number,omitempty" db:"phone_number"`
	MembershipTier   MembershipTier  `json:"membership_tier" db:"membership_tier"`
	FreeHoursBalance decimal.Decimal `json:"free_hours_balance" db:"free_hours_balance"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at" db:"updated_at"`
}
