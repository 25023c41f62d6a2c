package testutil

import (
	"fmt"
	"time"

	"spacelink/pkg/model"
)

// CompleteUser returns a user whose profile satisfies the booking checks.
func CompleteUser(name string) *model.User {
	return &model.User{
		Email:        fmt.Sprintf("%s-%d@example.com", name, time.Now().UnixNano()),
		PasswordHash: "integration-test-hash",
		Name:         name,
		Phone:        "+15551234567",
		Address:      "5 Elm Street",
		CreatedAt:    time.Now().UTC(),
		UpdatedAt:    time.Now().UTC(),
	}
}

func MonthlyParking(ownerID string, price float64) *model.Property {
	return &model.Property{
		OwnerID:   ownerID,
		Title:     "Covered parking",
		Category:  model.CategoryParking,
		RentType:  []model.RentType{model.RentTypeMonthly},
		Price:     price,
		Address:   "12 Main Street",
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
}

// BookingPayload is the JSON body of POST /bookings.
func BookingPayload(propertyID string, from, to time.Time, bookingType model.RentType) map[string]any {
	return map[string]any{
		"propertyId":  propertyID,
		"fromDate":    from.Format(time.RFC3339),
		"toDate":      to.Format(time.RFC3339),
		"bookingType": string(bookingType),
	}
}
