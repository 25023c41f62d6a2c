package pricing

import (
	"spacelink/pkg/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var jan1 = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

func TestComputePrice(t *testing.T) {
	tests := []struct {
		name        string
		base        float64
		bookingType model.RentType
		from        time.Time
		to          time.Time
		want        float64
	}{
		{"hourly exact hours", 10, model.RentTypeHourly, jan1, jan1.Add(24 * time.Hour), 240},
		{"hourly rounds up partial hour", 10, model.RentTypeHourly, jan1, jan1.Add(25*time.Hour + time.Minute), 260},
		{"hourly 25 hours", 10, model.RentTypeHourly, jan1, jan1.Add(25 * time.Hour), 250},
		{"hourly under one hour", 10, model.RentTypeHourly, jan1, jan1.Add(30 * time.Minute), 10},
		{"monthly 31 days is two months", 500, model.RentTypeMonthly, jan1, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), 1000},
		{"monthly exactly 30 days", 500, model.RentTypeMonthly, jan1, jan1.Add(Month), 500},
		{"monthly two hours is one unit", 500, model.RentTypeMonthly, jan1, jan1.Add(2 * time.Hour), 500},
		{"yearly one year and a day", 1200, model.RentTypeYearly, jan1, time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC), 2400},
		{"yearly one year", 1200, model.RentTypeYearly, jan1, jan1.Add(Year), 1200},
		{"yearly span past duration range", 1, model.RentTypeYearly, jan1, time.Date(2400, 1, 1, 0, 0, 0, 0, time.UTC), 376},
		{"unknown type is flat", 75, model.RentType("weekly"), jan1, jan1.Add(40 * 24 * time.Hour), 75},
		{"empty type is flat", 75, "", jan1, jan1.Add(time.Hour), 75},
		{"zero base", 0, model.RentTypeHourly, jan1, jan1.Add(5 * time.Hour), 0},
		{"zero span charges one unit", 10, model.RentTypeHourly, jan1, jan1, 10},
		{"reversed span charges one unit", 10, model.RentTypeHourly, jan1.Add(5 * time.Hour), jan1, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ComputePrice(tt.base, tt.bookingType, tt.from, tt.to))
		})
	}
}

func TestComputePrice_NeverZeroUnits(t *testing.T) {
	for _, rt := range model.RentTypes {
		got := ComputePrice(100, rt, jan1, jan1.Add(time.Millisecond))
		assert.Equal(t, float64(100), got, "rent type %s", rt)
	}
}

func TestUnits_LongSpanDoesNotSaturate(t *testing.T) {
	to := time.Date(2600, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, int64(5040336), Units(Hour, jan1, to))
	assert.Equal(t, int64(576), Units(Year, jan1, to))
}

func TestUnitFor(t *testing.T) {
	assert.Equal(t, time.Hour, UnitFor(model.RentTypeHourly))
	assert.Equal(t, 720*time.Hour, UnitFor(model.RentTypeMonthly))
	assert.Equal(t, 8760*time.Hour, UnitFor(model.RentTypeYearly))
	assert.Zero(t, UnitFor("daily"))
}
