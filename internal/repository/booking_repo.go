package repository

import (
	"context"
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookingFilter mirrors the query filters exposed on the bookings endpoint.
// Zero values are ignored.
type BookingFilter struct {
	ListingID uuid.UUID
	UserID    string
	Status    models.BookingStatus
	StartDate *time.Time
	EndDate   *time.Time
}

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error)
	FindAll(ctx context.Context, filter BookingFilter) ([]models.Booking, error)
	FindOverlapping(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]models.Booking, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, status models.BookingStatus) error
	UpdateDates(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return translate(tx.WithContext(ctx).Create(booking).Error)
}

func (r *bookingRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindAll(ctx context.Context, filter BookingFilter) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx)
	if filter.ListingID != uuid.Nil {
		q = q.Where("listing_id = ?", filter.ListingID)
	}
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.StartDate != nil {
		q = q.Where("start_date = ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		q = q.Where("end_date = ?", *filter.EndDate)
	}
	if err := q.Order("start_date ASC, created_at ASC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindOverlapping returns PENDING or CONFIRMED bookings on the listing whose
// [start_date, end_date) range intersects [start, end). excludeID lets an
// update ignore the booking being edited.
func (r *bookingRepository) FindOverlapping(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]models.Booking, error) {
	var bookings []models.Booking
	q := tx.WithContext(ctx).
		Where("listing_id = ? AND start_date < ? AND end_date > ?", listingID, end, start).
		Where("status IN ?", models.ActiveBookingStatuses)
	if excludeID != uuid.Nil {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID, status models.BookingStatus) error {
	return tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Update("status", status).Error
}

func (r *bookingRepository) UpdateDates(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return translate(tx.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", booking.ID).
		Updates(map[string]any{
			"start_date":  booking.StartDate,
			"end_date":    booking.EndDate,
			"total_price": booking.TotalPrice,
		}).Error)
}
