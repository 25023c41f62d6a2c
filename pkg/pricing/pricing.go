// Package pricing computes booking totals. The same function backs both the
// advisory price preview and the authoritative price stored at creation.
package pricing

import (
	"math"
	"spacelink/pkg/model"
	"time"
)

const (
	Hour  = time.Hour
	Month = 30 * 24 * time.Hour
	Year  = 365 * 24 * time.Hour
)

// UnitFor returns the billing unit of t, or zero for an unknown type.
func UnitFor(t model.RentType) time.Duration {
	switch t {
	case model.RentTypeHourly:
		return Hour
	case model.RentTypeMonthly:
		return Month
	case model.RentTypeYearly:
		return Year
	default:
		return 0
	}
}

// Units is the number of billable units in [from, to]: the ceiling of the
// span over the unit, never less than one. The span is taken from Unix
// milliseconds because time.Duration saturates after about 292 years.
func Units(unit time.Duration, from, to time.Time) int64 {
	span := to.UnixMilli() - from.UnixMilli()
	n := int64(math.Ceil(float64(span) / float64(unit.Milliseconds())))
	return max(1, n)
}

// ComputePrice returns basePrice times the billable units for bookingType.
// Unknown booking types are charged a flat basePrice.
func ComputePrice(basePrice float64, bookingType model.RentType, from, to time.Time) float64 {
	unit := UnitFor(bookingType)
	if unit == 0 {
		return basePrice
	}
	return basePrice * float64(Units(unit, from, to))
}
