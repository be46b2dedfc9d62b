package dto

import (
	"time"

	"github.com/google/uuid"
)

// DateLayout is the wire format for booking dates.
const DateLayout = "2006-01-02"

type ListingRequest struct {
	Name          string   `json:"name" validate:"required,max=255"`
	Description   string   `json:"description"`
	Location      string   `json:"location" validate:"required,max=255"`
	PricePerNight float64  `json:"price_per_night" validate:"required,gt=0"`
	Amenities     []string `json:"amenities" validate:"omitempty,dive,required"`
	Capacity      int      `json:"capacity" validate:"gte=0"`
}

type CreateBookingRequest struct {
	PropertyID string `json:"property_id" validate:"required,uuid"`
	StartDate  string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate    string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

type UpdateBookingRequest struct {
	StartDate *string `json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate   *string `json:"end_date" validate:"omitempty,datetime=2006-01-02"`
}

type InitiatePaymentRequest struct {
	BookingID     string  `json:"booking_id" validate:"required,uuid"`
	Amount        float64 `json:"amount" validate:"gte=0"`
	PaymentMethod string  `json:"payment_method" validate:"omitempty,max=50"`
}

// ParseDate reads a DateLayout date as midnight UTC.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// ParseOptionalDate returns nil for a nil input.
func ParseOptionalDate(s *string) (*time.Time, error) {
	if s == nil {
		return nil, nil
	}
	t, err := ParseDate(*s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// ParseID parses a path or body identifier.
func ParseID(s string) (uuid.UUID, error) {
	return uuid.Parse(s)
}
