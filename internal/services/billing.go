package services

import (
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/shopspring/decimal"
)

// membershipDiscounts maps a membership tier to its percentage discount on
// the time charge. Bronze gets no discount.
var membershipDiscounts = map[models.MembershipTier]decimal.Decimal{
	models.TierSilver: decimal.NewFromFloat(0.10),
	models.TierGold:   decimal.NewFromFloat(0.15),
}

const (
	msPerMinute   = 60 * 1000
	minutesPerDay = 24 * 60
)

var sixty = decimal.NewFromInt(60)

// ChargeResult is the outcome of pricing a session at a given instant.
// FreeHoursConsumed is reported to the caller; the engine never writes the
// member's balance itself.
type ChargeResult struct {
	ElapsedMinutes    int             `json:"elapsed_minutes"`
	FreeMinutesUsed   int             `json:"free_minutes_used"`
	PaidMinutes       int             `json:"paid_minutes"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	DiscountAmount    decimal.Decimal `json:"discount_amount"`
	FreeHoursConsumed decimal.Decimal `json:"free_hours_consumed"`
}

// ComputeCharge prices a session against its tariff at the supplied instant.
// It is a pure function: calling it repeatedly with the same inputs returns
// identical results, and nothing is mutated, so it serves both live quotes
// and final settlement.
func ComputeCharge(session *models.TableSession, tariff *models.Tariff, now time.Time, member *models.Member) ChargeResult {
	elapsed := now.Sub(session.StartTime) - time.Duration(session.TotalPausedTime)*time.Millisecond
	if session.Status == models.SessionStatusPaused && session.PauseStartTime != nil {
		// The live pause interval has not been folded into TotalPausedTime yet.
		elapsed -= now.Sub(*session.PauseStartTime)
	}
	if elapsed < 0 {
		elapsed = 0
	}
	elapsedMinutes := int((elapsed.Milliseconds() + msPerMinute - 1) / msPerMinute)

	if tariff.MinDuration > 0 && elapsedMinutes > 0 && elapsedMinutes < tariff.MinDuration {
		elapsedMinutes = tariff.MinDuration
	}
	if tariff.MaxDuration > 0 && elapsedMinutes > tariff.MaxDuration {
		elapsedMinutes = tariff.MaxDuration
	}

	freeUsed := tariff.FreeMinutes
	if freeUsed < 0 {
		freeUsed = 0
	}
	if freeUsed > elapsedMinutes {
		freeUsed = elapsedMinutes
	}
	billable := elapsedMinutes - freeUsed

	result := ChargeResult{
		ElapsedMinutes:    elapsedMinutes,
		FreeMinutesUsed:   freeUsed,
		PaidMinutes:       billable,
		TotalAmount:       decimal.Zero,
		DiscountAmount:    decimal.Zero,
		FreeHoursConsumed: decimal.Zero,
	}
	if billable == 0 {
		return result
	}

	remaining := baseAmount(tariff, freeUsed, elapsedMinutes, billable)
	discount := decimal.Zero

	if member != nil {
		if pct, ok := membershipDiscounts[member.MembershipTier]; ok {
			tierDiscount := remaining.Mul(pct)
			discount = discount.Add(tierDiscount)
			remaining = remaining.Sub(tierDiscount)
		}
		if member.FreeHoursBalance.IsPositive() && tariff.Rate.IsPositive() {
			// Free hours settle at the tariff's base rate, not tiered rates.
			remainingHours := remaining.Div(tariff.Rate)
			consumed := decimal.Min(member.FreeHoursBalance, remainingHours)
			freeHoursDiscount := consumed.Mul(tariff.Rate)
			discount = discount.Add(freeHoursDiscount)
			remaining = remaining.Sub(freeHoursDiscount)
			result.FreeHoursConsumed = consumed
		}
	}

	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	// Rounding happens exactly once, here. Round is half away from zero,
	// which for these non-negative amounts is round-half-up.
	result.TotalAmount = remaining.Round(2)
	result.DiscountAmount = discount.Round(2)
	return result
}

func baseAmount(tariff *models.Tariff, freeUsed, elapsedMinutes, billable int) decimal.Decimal {
	switch tariff.RateType {
	case models.RateTypeFixed:
		return tariff.Rate
	case models.RateTypeSession:
		blocks := (billable + minutesPerDay - 1) / minutesPerDay
		return tariff.Rate.Mul(decimal.NewFromInt(int64(blocks)))
	default:
		if len(tariff.TieredRates) > 0 {
			return tieredAmount(tariff.TieredRates, freeUsed, elapsedMinutes)
		}
		return tariff.Rate.Mul(decimal.NewFromInt(int64(billable))).Div(sixty)
	}
}

// tieredAmount prices the minute interval [from, to) by walking the tiers in
// ascending fromMinute order. Minutes before the first tier's fromMinute are
// billed at the first tier's rate.
func tieredAmount(tiers []models.TierRate, from, to int) decimal.Decimal {
	amount := decimal.Zero
	for i := range tiers {
		segStart := tiers[i].FromMinute
		if i == 0 && segStart > 0 {
			segStart = 0
		}
		segEnd := to
		if i+1 < len(tiers) {
			segEnd = tiers[i+1].FromMinute
		}
		lo := max(segStart, from)
		hi := min(segEnd, to)
		if hi > lo {
			minutes := decimal.NewFromInt(int64(hi - lo))
			amount = amount.Add(tiers[i].Rate.Mul(minutes).Div(sixty))
		}
	}
	return amount
}
