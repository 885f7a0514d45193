package reservation

import (
	"math"
	"time"

	"tourspot/models"
)

// Pricing multipliers. They compound in a fixed order (season, weekend,
// group, duration); reordering changes the rounded result, so the order in
// Quote must not change.
const (
	highSeasonMultiplier   = 1.30
	weekendMultiplier      = 1.20
	largeGroupMultiplier   = 0.85 // party of 5+
	smallGroupMultiplier   = 0.90 // party of 3-4
	fullDayMultiplier      = 0.80 // 8+ units
	halfDayMultiplier      = 0.90 // 4-7 units
	platformFeeRate        = 0.10
	largeGroupThreshold    = 5
	smallGroupThreshold    = 3
	fullDayThreshold       = 8
	halfDayThreshold       = 4
)

// highSeason covers Nov-Feb and May-Jun.
var highSeason = map[time.Month]bool{
	time.November: true,
	time.December: true,
	time.January:  true,
	time.February: true,
	time.May:      true,
	time.June:     true,
}

// AppliedMultiplier is one line of a pricing breakdown.
type AppliedMultiplier struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// PriceBreakdown itemizes a full quote for display.
type PriceBreakdown struct {
	BaseRate      models.Money        `json:"base_rate"`
	AdjustedRate  models.Money        `json:"adjusted_rate"`
	Multipliers   []AppliedMultiplier `json:"multipliers"`
	ServiceAmount models.Money        `json:"service_amount"`
	VehicleAmount models.Money        `json:"vehicle_amount,omitempty"`
	Subtotal      models.Money        `json:"subtotal"`
	PlatformFee   models.Money        `json:"platform_fee"`
	Total         models.Money        `json:"total"`
}

// adjustedRate applies the dynamic multipliers to the base rate and
// returns the unrounded per-unit rate.
func adjustedRate(baseRate models.Money, date time.Time, partySize, durationUnits int) float64 {
	rate := float64(baseRate)

	if highSeason[date.Month()] {
		rate *= highSeasonMultiplier
	}
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		rate *= weekendMultiplier
	}
	// Group tiers are mutually exclusive; only the highest applies.
	if partySize >= largeGroupThreshold {
		rate *= largeGroupMultiplier
	} else if partySize >= smallGroupThreshold {
		rate *= smallGroupMultiplier
	}
	if durationUnits >= fullDayThreshold {
		rate *= fullDayMultiplier
	} else if durationUnits >= halfDayThreshold {
		rate *= halfDayMultiplier
	}
	return rate
}

// Quote computes the dynamic price for durationUnits at the given base
// rate. Pure and deterministic: identical inputs always produce an
// identical amount, rounded to whole currency units.
func Quote(baseRate models.Money, date time.Time, partySize, durationUnits int) models.Money {
	rate := adjustedRate(baseRate, date, partySize, durationUnits)
	return models.Money(math.Round(rate * float64(durationUnits)))
}

// PlatformFee is the 10% fee added on top of a finalized subtotal.
func PlatformFee(subtotal models.Money) models.Money {
	return models.Money(math.Round(float64(subtotal) * platformFeeRate))
}

// Breakdown itemizes the quote for a full booking: the dynamic service
// amount, an optional flat vehicle amount, and the platform fee on the
// combined subtotal.
func Breakdown(baseRate models.Money, date time.Time, partySize, durationUnits int, vehicleRate models.Money) PriceBreakdown {
	rate := float64(baseRate)
	var multipliers []AppliedMultiplier

	if highSeason[date.Month()] {
		multipliers = append(multipliers, AppliedMultiplier{Name: "High Season", Value: "+30%"})
		rate *= highSeasonMultiplier
	}
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		multipliers = append(multipliers, AppliedMultiplier{Name: "Weekend", Value: "+20%"})
		rate *= weekendMultiplier
	}
	if partySize >= largeGroupThreshold {
		multipliers = append(multipliers, AppliedMultiplier{Name: "Group Discount (5+)", Value: "-15%"})
		rate *= largeGroupMultiplier
	} else if partySize >= smallGroupThreshold {
		multipliers = append(multipliers, AppliedMultiplier{Name: "Group Discount (3-4)", Value: "-10%"})
		rate *= smallGroupMultiplier
	}
	if durationUnits >= fullDayThreshold {
		multipliers = append(multipliers, AppliedMultiplier{Name: "Full Day Discount", Value: "-20%"})
		rate *= fullDayMultiplier
	} else if durationUnits >= halfDayThreshold {
		multipliers = append(multipliers, AppliedMultiplier{Name: "Half Day Discount", Value: "-10%"})
		rate *= halfDayMultiplier
	}

	serviceAmount := models.Money(math.Round(rate * float64(durationUnits)))
	subtotal := serviceAmount + vehicleRate
	fee := PlatformFee(subtotal)

	return PriceBreakdown{
		BaseRate:      baseRate,
		AdjustedRate:  models.Money(math.Round(rate)),
		Multipliers:   multipliers,
		ServiceAmount: serviceAmount,
		VehicleAmount: vehicleRate,
		Subtotal:      subtotal,
		PlatformFee:   fee,
		Total:         subtotal + fee,
	}
}
