package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "PENDING"
	PaymentCompleted PaymentStatus = "COMPLETED"
	PaymentFailed    PaymentStatus = "FAILED"
)

// IsTerminal reports whether the status can no longer change.
func (s PaymentStatus) IsTerminal() bool {
	return s == PaymentCompleted || s == PaymentFailed
}

type Payment struct {
	ID            uuid.UUID     `gorm:"type:uuid;primaryKey" json:"payment_id"`
	BookingID     uuid.UUID     `gorm:"type:uuid;not null;index" json:"booking_id"`
	Amount        float64       `gorm:"type:numeric(12,2);not null" json:"amount"`
	PaymentMethod string        `gorm:"type:varchar(50)" json:"payment_method"`
	TransactionID string        `gorm:"type:varchar(100);not null;uniqueIndex" json:"transaction_id"`
	CheckoutURL   string        `json:"checkout_url,omitempty"`
	Status        PaymentStatus `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`

	Booking *Booking `gorm:"foreignKey:BookingID" json:"-"`
}

func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
