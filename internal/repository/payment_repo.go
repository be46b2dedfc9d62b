package repository

import (
	"context"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error)
	FindByTransactionID(ctx context.Context, txRef string) (*models.Payment, error)
	FindActiveByBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Payment, error)
	// TransitionStatus moves a payment from one status to another and reports
	// whether a row was changed. A payment no longer in from is left alone.
	TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) (bool, error)
	SetCheckoutURL(ctx context.Context, id uuid.UUID, url string) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	return translate(tx.WithContext(ctx).Create(payment).Error)
}

func (r *paymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindByTransactionID(ctx context.Context, txRef string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "transaction_id = ?", txRef).Error; err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) FindActiveByBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Payment, error) {
	var payment models.Payment
	err := tx.WithContext(ctx).
		Where("booking_id = ? AND status <> ?", bookingID, models.PaymentFailed).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (r *paymentRepository) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *paymentRepository) SetCheckoutURL(ctx context.Context, id uuid.UUID, url string) error {
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ?", id).
		Update("checkout_url", url).Error
}
