package services

import (
	"testing"
	"time"

	"billiard_pos_backend/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var billingStart = time.Date(2026, 3, 14, 18, 0, 0, 0, time.UTC)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func hourlyTariff(rate string, freeMinutes int) *models.Tariff {
	return &models.Tariff{
		ID:          uuid.New(),
		Name:        "standard",
		Rate:        d(rate),
		RateType:    models.RateTypeHourly,
		FreeMinutes: freeMinutes,
		IsActive:    true,
	}
}

func activeSession(start time.Time) *models.TableSession {
	return &models.TableSession{
		ID:        uuid.New(),
		TableID:   uuid.New(),
		StartTime: start,
		Status:    models.SessionStatusActive,
	}
}

func TestComputeChargeHourlyWithFreeMinutes(t *testing.T) {
	tariff := hourlyTariff("15", 15)
	session := activeSession(billingStart)

	result := ComputeCharge(session, tariff, billingStart.Add(45*time.Minute), nil)

	if result.ElapsedMinutes != 45 {
		t.Errorf("elapsed minutes = %d, want 45", result.ElapsedMinutes)
	}
	if result.FreeMinutesUsed != 15 {
		t.Errorf("free minutes used = %d, want 15", result.FreeMinutesUsed)
	}
	if result.PaidMinutes != 30 {
		t.Errorf("paid minutes = %d, want 30", result.PaidMinutes)
	}
	if !result.TotalAmount.Equal(d("7.50")) {
		t.Errorf("total amount = %s, want 7.50", result.TotalAmount)
	}
	if !result.DiscountAmount.IsZero() {
		t.Errorf("discount amount = %s, want 0", result.DiscountAmount)
	}
}

func TestComputeChargeExcludesFoldedPauses(t *testing.T) {
	tariff := hourlyTariff("15", 15)
	session := activeSession(billingStart)
	session.TotalPausedTime = (20 * time.Minute).Milliseconds()

	result := ComputeCharge(session, tariff, billingStart.Add(45*time.Minute), nil)

	if result.ElapsedMinutes != 25 {
		t.Errorf("elapsed minutes = %d, want 25", result.ElapsedMinutes)
	}
	if result.PaidMinutes != 10 {
		t.Errorf("paid minutes = %d, want 10", result.PaidMinutes)
	}
	if !result.TotalAmount.Equal(d("2.50")) {
		t.Errorf("total amount = %s, want 2.50", result.TotalAmount)
	}
}

func TestComputeChargeExcludesLivePause(t *testing.T) {
	tariff := hourlyTariff("15", 0)
	session := activeSession(billingStart)
	pausedAt := billingStart.Add(30 * time.Minute)
	session.Status = models.SessionStatusPaused
	session.PauseStartTime = &pausedAt

	// 50 minutes on the wall, 20 of them inside the still-running pause.
	result := ComputeCharge(session, tariff, billingStart.Add(50*time.Minute), nil)

	if result.ElapsedMinutes != 30 {
		t.Errorf("elapsed minutes = %d, want 30", result.ElapsedMinutes)
	}
	if !result.TotalAmount.Equal(d("7.50")) {
		t.Errorf("total amount = %s, want 7.50", result.TotalAmount)
	}
}

func TestComputeChargeGoldMemberDiscount(t *testing.T) {
	tariff := hourlyTariff("15", 15)
	session := activeSession(billingStart)
	member := &models.Member{ID: uuid.New(), MembershipTier: models.TierGold}

	// 95 minutes elapsed, 80 paid, base charge 20.00.
	result := ComputeCharge(session, tariff, billingStart.Add(95*time.Minute), member)

	if !result.DiscountAmount.Equal(d("3.00")) {
		t.Errorf("discount amount = %s, want 3.00", result.DiscountAmount)
	}
	if !result.TotalAmount.Equal(d("17.00")) {
		t.Errorf("total amount = %s, want 17.00", result.TotalAmount)
	}
}

func TestComputeChargeSilverMemberDiscount(t *testing.T) {
	tariff := hourlyTariff("15", 15)
	session := activeSession(billingStart)
	member := &models.Member{ID: uuid.New(), MembershipTier: models.TierSilver}

	result := ComputeCharge(session, tariff, billingStart.Add(95*time.Minute), member)

	if !result.DiscountAmount.Equal(d("2.00")) {
		t.Errorf("discount amount = %s, want 2.00", result.DiscountAmount)
	}
	if !result.TotalAmount.Equal(d("18.00")) {
		t.Errorf("total amount = %s, want 18.00", result.TotalAmount)
	}
}

func TestComputeChargeBronzeMemberNoDiscount(t *testing.T) {
	tariff := hourlyTariff("15", 0)
	session := activeSession(billingStart)
	member := &models.Member{ID: uuid.New(), MembershipTier: models.TierBronze}

	result := ComputeCharge(session, tariff, billingStart.Add(60*time.Minute), member)

	if !result.DiscountAmount.IsZero() {
		t.Errorf("discount amount = %s, want 0", result.DiscountAmount)
	}
	if !result.TotalAmount.Equal(d("15.00")) {
		t.Errorf("total amount = %s, want 15.00", result.TotalAmount)
	}
}

func TestComputeChargeIdempotent(t *testing.T) {
	tariff := hourlyTariff("15", 15)
	session := activeSession(billingStart)
	before := *session
	now := billingStart.Add(45 * time.Minute)

	first := ComputeCharge(session, tariff, now, nil)
	second := ComputeCharge(session, tariff, now, nil)

	if !first.TotalAmount.Equal(second.TotalAmount) || first.PaidMinutes != second.PaidMinutes {
		t.Errorf("repeated calls differ: %+v vs %+v", first, second)
	}
	if *session != before {
		t.Error("ComputeCharge mutated the session")
	}
}

func TestComputeChargeMonotonicOverTime(t *testing.T) {
	tariff := hourlyTariff("12", 10)
	session := activeSession(billingStart)

	prev := decimal.Zero
	for minutes := 0; minutes <= 180; minutes += 7 {
		result := ComputeCharge(session, tariff, billingStart.Add(time.Duration(minutes)*time.Minute), nil)
		if result.TotalAmount.LessThan(prev) {
			t.Fatalf("total decreased at %d minutes: %s < %s", minutes, result.TotalAmount, prev)
		}
		prev = result.TotalAmount
	}
}

func TestComputeChargeZeroElapsed(t *testing.T) {
	tariff := hourlyTariff("15", 0)
	session := activeSession(billingStart)

	result := ComputeCharge(session, tariff, billingStart, nil)

	if result.ElapsedMinutes != 0 || result.PaidMinutes != 0 {
		t.Errorf("got elapsed=%d paid=%d, want both 0", result.ElapsedMinutes, result.PaidMinutes)
	}
	if !result.TotalAmount.IsZero() {
		t.Errorf("total amount = %s, want 0", result.TotalAmount)
	}
}

func TestComputeChargeWithinFreeMinutes(t *testing.T) {
	tariff := hourlyTariff("15", 15)
	session := activeSession(billingStart)

	result := ComputeCharge(session, tariff, billingStart.Add(10*time.Minute), nil)

	if result.FreeMinutesUsed != 10 {
		t.Errorf("free minutes used = %d, want 10", result.FreeMinutesUsed)
	}
	if result.PaidMinutes != 0 || !result.TotalAmount.IsZero() {
		t.Errorf("got paid=%d total=%s, want 0 and 0", result.PaidMinutes, result.TotalAmount)
	}
}

func TestComputeChargePartialMinuteRoundsUp(t *testing.T) {
	tariff := hourlyTariff("60", 0)
	session := activeSession(billingStart)

	result := ComputeCharge(session, tariff, billingStart.Add(61*time.Second), nil)

	if result.ElapsedMinutes != 2 {
		t.Errorf("elapsed minutes = %d, want 2", result.ElapsedMinutes)
	}
	if !result.TotalAmount.Equal(d("2.00")) {
		t.Errorf("total amount = %s, want 2.00", result.TotalAmount)
	}
}

func TestComputeChargeMinDurationClampsUp(t *testing.T) {
	tariff := hourlyTariff("15", 0)
	tariff.MinDuration = 60
	session := activeSession(billingStart)

	result := ComputeCharge(session, tariff, billingStart.Add(10*time.Minute), nil)

	if result.ElapsedMinutes != 60 {
		t.Errorf("elapsed minutes = %d, want 60", result.ElapsedMinutes)
	}
	if !result.TotalAmount.Equal(d("15.00")) {
		t.Errorf("total amount = %s, want 15.00", result.TotalAmount)
	}
}

func TestComputeChargeMinDurationIgnoredAtZeroElapsed(t *testing.T) {
	tariff := hourlyTariff("15", 0)
	tariff.MinDuration = 60
	session := activeSession(billingStart)

	result := ComputeCharge(session, tariff, billingStart, nil)

	if result.ElapsedMinutes != 0 || !result.TotalAmount.IsZero() {
		t.Errorf("got elapsed=%d total=%s, want 0 and 0", result.ElapsedMinutes, result.TotalAmount)
	}
}

func TestComputeChargeMaxDurationClampsDown(t *testing.T) {
	tariff := hourlyTariff("15", 0)
	tariff.MaxDuration = 120
	session := activeSession(billingStart)

	result := ComputeCharge(session, tariff, billingStart.Add(5*time.Hour), nil)

	if result.ElapsedMinutes != 120 {
		t.Errorf("elapsed minutes = %d, want 120", result.ElapsedMinutes)
	}
	if !result.TotalAmount.Equal(d("30.00")) {
		t.Errorf("total amount = %s, want 30.00", result.TotalAmount)
	}
}

func TestComputeChargeTieredRates(t *testing.T) {
	tariff := hourlyTariff("10", 0)
	tariff.TieredRates = []models.TierRate{
		{FromMinute: 0, Rate: d("10")},
		{FromMinute: 60, Rate: d("8")},
	}
	session := activeSession(billingStart)

	// 60 minutes at 10/hr plus 30 minutes at 8/hr.
	result := ComputeCharge(session, tariff, billingStart.Add(90*time.Minute), nil)

	if !result.TotalAmount.Equal(d("14.00")) {
		t.Errorf("total amount = %s, want 14.00", result.TotalAmount)
	}
}

func TestComputeChargeTieredGapBilledAtFirstTierRate(t *testing.T) {
	tariff := hourlyTariff("10", 0)
	tariff.TieredRates = []models.TierRate{
		{FromMinute: 30, Rate: d("12")},
		{FromMinute: 60, Rate: d("6")},
	}
	session := activeSession(billingStart)

	// Minutes 0-59 at 12/hr (the gap before minute 30 uses the first tier),
	// minutes 60-89 at 6/hr.
	result := ComputeCharge(session, tariff, billingStart.Add(90*time.Minute), nil)

	if !result.TotalAmount.Equal(d("15.00")) {
		t.Errorf("total amount = %s, want 15.00", result.TotalAmount)
	}
}

func TestComputeChargeTieredSkipsFreeMinutes(t *testing.T) {
	tariff := hourlyTariff("10", 30)
	tariff.TieredRates = []models.TierRate{
		{FromMinute: 0, Rate: d("10")},
		{FromMinute: 60, Rate: d("8")},
	}
	session := activeSession(billingStart)

	// Billing window is [30, 90): 30 minutes at 10/hr plus 30 at 8/hr.
	result := ComputeCharge(session, tariff, billingStart.Add(90*time.Minute), nil)

	if result.FreeMinutesUsed != 30 {
		t.Errorf("free minutes used = %d, want 30", result.FreeMinutesUsed)
	}
	if !result.TotalAmount.Equal(d("9.00")) {
		t.Errorf("total amount = %s, want 9.00", result.TotalAmount)
	}
}

func TestComputeChargeFixedRate(t *testing.T) {
	tariff := hourlyTariff("25", 0)
	tariff.RateType = models.RateTypeFixed
	session := activeSession(billingStart)

	short := ComputeCharge(session, tariff, billingStart.Add(20*time.Minute), nil)
	long := ComputeCharge(session, tariff, billingStart.Add(6*time.Hour), nil)

	if !short.TotalAmount.Equal(d("25.00")) || !long.TotalAmount.Equal(d("25.00")) {
		t.Errorf("fixed rate charged %s and %s, want 25.00 for both", short.TotalAmount, long.TotalAmount)
	}
}

func TestComputeChargeSessionRatePerDayBlock(t *testing.T) {
	tariff := hourlyTariff("100", 0)
	tariff.RateType = models.RateTypeSession
	session := activeSession(billingStart)

	oneBlock := ComputeCharge(session, tariff, billingStart.Add(5*time.Hour), nil)
	twoBlocks := ComputeCharge(session, tariff, billingStart.Add(25*time.Hour), nil)

	if !oneBlock.TotalAmount.Equal(d("100.00")) {
		t.Errorf("one-block total = %s, want 100.00", oneBlock.TotalAmount)
	}
	if !twoBlocks.TotalAmount.Equal(d("200.00")) {
		t.Errorf("two-block total = %s, want 200.00", twoBlocks.TotalAmount)
	}
}

func TestComputeChargeFreeHoursConsumed(t *testing.T) {
	tariff := hourlyTariff("15", 0)
	session := activeSession(billingStart)
	member := &models.Member{
		ID:               uuid.New(),
		MembershipTier:   models.TierBronze,
		FreeHoursBalance: d("1.5"),
	}

	// 2 hours billable, base 30.00; 1.5 free hours cover 22.50 of it.
	result := ComputeCharge(session, tariff, billingStart.Add(2*time.Hour), member)

	if !result.FreeHoursConsumed.Equal(d("1.5")) {
		t.Errorf("free hours consumed = %s, want 1.5", result.FreeHoursConsumed)
	}
	if !result.DiscountAmount.Equal(d("22.50")) {
		t.Errorf("discount amount = %s, want 22.50", result.DiscountAmount)
	}
	if !result.TotalAmount.Equal(d("7.50")) {
		t.Errorf("total amount = %s, want 7.50", result.TotalAmount)
	}
}

func TestComputeChargeFreeHoursAppliedAfterTierDiscount(t *testing.T) {
	tariff := hourlyTariff("15", 15)
	session := activeSession(billingStart)
	member := &models.Member{
		ID:               uuid.New(),
		MembershipTier:   models.TierGold,
		FreeHoursBalance: d("0.5"),
	}

	// Base 20.00, gold takes 3.00, then 0.5 free hours take 7.50 more.
	result := ComputeCharge(session, tariff, billingStart.Add(95*time.Minute), member)

	if !result.FreeHoursConsumed.Equal(d("0.5")) {
		t.Errorf("free hours consumed = %s, want 0.5", result.FreeHoursConsumed)
	}
	if !result.DiscountAmount.Equal(d("10.50")) {
		t.Errorf("discount amount = %s, want 10.50", result.DiscountAmount)
	}
	if !result.TotalAmount.Equal(d("9.50")) {
		t.Errorf("total amount = %s, want 9.50", result.TotalAmount)
	}
}

func TestComputeChargeFreeHoursCappedByCharge(t *testing.T) {
	tariff := hourlyTariff("15", 0)
	session := activeSession(billingStart)
	member := &models.Member{
		ID:               uuid.New(),
		MembershipTier:   models.TierBronze,
		FreeHoursBalance: d("10"),
	}

	// 1 hour billable: only 1 of the 10 banked hours is consumed.
	result := ComputeCharge(session, tariff, billingStart.Add(1*time.Hour), member)

	if !result.FreeHoursConsumed.Equal(d("1")) {
		t.Errorf("free hours consumed = %s, want 1", result.FreeHoursConsumed)
	}
	if !result.TotalAmount.IsZero() {
		t.Errorf("total amount = %s, want 0", result.TotalAmount)
	}
}

func TestComputeChargeRoundsHalfUp(t *testing.T) {
	tariff := hourlyTariff("15.01", 0)
	session := activeSession(billingStart)

	// 30 minutes at 15.01/hr is 7.505, which rounds up to 7.51.
	result := ComputeCharge(session, tariff, billingStart.Add(30*time.Minute), nil)

	if !result.TotalAmount.Equal(d("7.51")) {
		t.Errorf("total amount = %s, want 7.51", result.TotalAmount)
	}
}

func TestComputeChargeClockBeforeStartClampsToZero(t *testing.T) {
	tariff := hourlyTariff("15", 0)
	session := activeSession(billingStart)

	result := ComputeCharge(session, tariff, billingStart.Add(-5*time.Minute), nil)

	if result.ElapsedMinutes != 0 || !result.TotalAmount.IsZero() {
		t.Errorf("got elapsed=%d total=%s, want 0 and 0", result.ElapsedMinutes, result.TotalAmount)
	}
}
