package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Listing struct {
	ID            uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"property_id"`
	HostID        string                      `gorm:"not null;index" json:"host"`
	Name          string                      `gorm:"not null" json:"name"`
	Description   string                      `json:"description"`
	Location      string                      `gorm:"index" json:"location"`
	PricePerNight float64                     `gorm:"type:numeric(12,2);not null" json:"price_per_night"`
	Amenities     datatypes.JSONSlice[string] `json:"amenities"`
	Capacity      int                         `gorm:"not null;default:1" json:"capacity"`
	CreatedAt     time.Time                   `json:"created_at"`
	UpdatedAt     time.Time                   `json:"updated_at"`
}

func (l *Listing) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
