package dto

import (
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/google/uuid"
)

type ListingResponse struct {
	ID            uuid.UUID `json:"property_id"`
	Host          string    `json:"host"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Location      string    `json:"location"`
	PricePerNight float64   `json:"price_per_night"`
	Amenities     []string  `json:"amenities"`
	Capacity      int       `json:"capacity"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type BookingResponse struct {
	ID         uuid.UUID            `json:"booking_id"`
	PropertyID uuid.UUID            `json:"property_id"`
	UserID     string               `json:"user_id"`
	StartDate  string               `json:"start_date"`
	EndDate    string               `json:"end_date"`
	Status     models.BookingStatus `json:"status"`
	TotalPrice float64              `json:"total_price"`
	CreatedAt  time.Time            `json:"created_at"`
	UpdatedAt  time.Time            `json:"updated_at"`
}

type PaymentResponse struct {
	ID            uuid.UUID            `json:"payment_id"`
	BookingID     uuid.UUID            `json:"booking_id"`
	Amount        float64              `json:"amount"`
	PaymentMethod string               `json:"payment_method"`
	TransactionID string               `json:"transaction_id"`
	CheckoutURL   string               `json:"checkout_url,omitempty"`
	Status        models.PaymentStatus `json:"status"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

type InitiatePaymentResponse struct {
	Message       string    `json:"message"`
	CheckoutURL   string    `json:"checkout_url"`
	PaymentID     uuid.UUID `json:"payment_id"`
	TransactionID string    `json:"transaction_id"`
}

type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

func ToListingResponse(l *models.Listing) ListingResponse {
	amenities := []string(l.Amenities)
	if amenities == nil {
		amenities = []string{}
	}
	return ListingResponse{
		ID:            l.ID,
		Host:          l.HostID,
		Name:          l.Name,
		Description:   l.Description,
		Location:      l.Location,
		PricePerNight: l.PricePerNight,
		Amenities:     amenities,
		Capacity:      l.Capacity,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
}

func ToBookingResponse(b *models.Booking) BookingResponse {
	return BookingResponse{
		ID:         b.ID,
		PropertyID: b.ListingID,
		UserID:     b.UserID,
		StartDate:  b.StartDate.Format(DateLayout),
		EndDate:    b.EndDate.Format(DateLayout),
		Status:     b.Status,
		TotalPrice: b.TotalPrice,
		CreatedAt:  b.CreatedAt,
		UpdatedAt:  b.UpdatedAt,
	}
}

func ToPaymentResponse(p *models.Payment) PaymentResponse {
	return PaymentResponse{
		ID:            p.ID,
		BookingID:     p.BookingID,
		Amount:        p.Amount,
		PaymentMethod: p.PaymentMethod,
		TransactionID: p.TransactionID,
		CheckoutURL:   p.CheckoutURL,
		Status:        p.Status,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
