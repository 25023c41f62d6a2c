package model

import (
	"time"
)

type BookingStatus string

const (
	BookingStatusActive    BookingStatus = "active"
	BookingStatusExpired   BookingStatus = "expired"
	BookingStatusCancelled BookingStatus = "cancelled"
)

// IsTerminal reports whether no further transition is possible from s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusExpired || s == BookingStatusCancelled
}

type Booking struct {
	ID          string        `json:"id,omitempty" bson:"_id,omitempty"`
	UserID      string        `json:"userId" bson:"user_id"`
	PropertyID  string        `json:"propertyId" bson:"property_id"`
	FromDate    time.Time     `json:"fromDate" bson:"from_date"`
	ToDate      time.Time     `json:"toDate" bson:"to_date"`
	BookingType RentType      `json:"bookingType" bson:"booking_type"`
	TotalPrice  float64       `json:"totalPrice" bson:"total_price"`
	Status      BookingStatus `json:"status" bson:"status"`
	Notes       string        `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt   time.Time     `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time     `json:"updatedAt" bson:"updated_at"`
}

// IsOverdue reports whether an active booking has ended before now.
func (b *Booking) IsOverdue(now time.Time) bool {
	return b.Status == BookingStatusActive && b.ToDate.Before(now)
}

// BookingRequest is the creation payload. Dates stay as strings until the
// validator parses them so missing and malformed values are reported apart.
type BookingRequest struct {
	PropertyID  string `json:"propertyId" validate:"required"`
	FromDate    string `json:"fromDate" validate:"required"`
	ToDate      string `json:"toDate" validate:"required"`
	BookingType string `json:"bookingType" validate:"required"`
	Notes       string `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

type AvailabilityRequest struct {
	PropertyID string `json:"propertyId" validate:"required"`
	FromDate   string `json:"fromDate" validate:"required"`
	ToDate     string `json:"toDate" validate:"required"`
}

type AvailabilityResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

type PricePreviewRequest struct {
	PropertyID  string `json:"propertyId" validate:"required"`
	FromDate    string `json:"fromDate" validate:"required"`
	ToDate      string `json:"toDate" validate:"required"`
	BookingType string `json:"bookingType" validate:"required"`
}

type PricePreviewResponse struct {
	PropertyID  string   `json:"propertyId"`
	BookingType RentType `json:"bookingType"`
	BasePrice   float64  `json:"basePrice"`
	TotalPrice  float64  `json:"totalPrice"`
}

// BookingDetails is a booking populated with summaries of the property and
// the booking user.
type BookingDetails struct {
	*Booking
	Property *PropertySummary `json:"property,omitempty"`
	User     *UserSummary     `json:"user,omitempty"`
}

// BookingLock is an advisory lock held while a booking for one property is
// checked and written.
type BookingLock struct {
	ID        string    `bson:"_id" json:"id"`
	Owner     string    `bson:"owner" json:"owner"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
