package service

import (
	"math"
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
)

// Clock returns the current time. Services compare dates against its UTC day.
type Clock func() time.Time

// toDay truncates t to midnight UTC of its calendar day.
func toDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TotalPrice is nights * pricePerNight, rounded to cents.
func TotalPrice(pricePerNight float64, start, end time.Time) float64 {
	stay := models.Booking{StartDate: start, EndDate: end}
	return math.Round(float64(stay.Nights())*pricePerNight*100) / 100
}
