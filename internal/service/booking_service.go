package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/notification"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/policy"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type CreateBookingInput struct {
	ListingID uuid.UUID
	StartDate time.Time
	EndDate   time.Time
}

// UpdateBookingInput patches the booking dates. Nil fields keep their value.
type UpdateBookingInput struct {
	StartDate *time.Time
	EndDate   *time.Time
}

type BookingService interface {
	CreateBooking(ctx context.Context, actor policy.Actor, in CreateBookingInput) (*models.Booking, error)
	ConfirmBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Booking, error)
	CancelBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Booking, error)
	UpdateBooking(ctx context.Context, actor policy.Actor, id uuid.UUID, in UpdateBookingInput) (*models.Booking, error)
	GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
}

type bookingService struct {
	txm         repository.Transactor
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	notifier    notification.Notifier
	log         *logrus.Logger
	now         Clock
}

func NewBookingService(
	txm repository.Transactor,
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	notifier notification.Notifier,
	log *logrus.Logger,
	now Clock,
) BookingService {
	if notifier == nil {
		notifier = notification.Noop{}
	}
	if now == nil {
		now = time.Now
	}
	return &bookingService{
		txm:         txm,
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		notifier:    notifier,
		log:         log,
		now:         now,
	}
}

func (s *bookingService) CreateBooking(ctx context.Context, actor policy.Actor, in CreateBookingInput) (*models.Booking, error) {
	if actor.IsAnonymous() {
		return nil, ErrForbidden
	}
	start, end := toDay(in.StartDate), toDay(in.EndDate)
	if err := s.checkRange(start, end); err != nil {
		return nil, err
	}

	var result *models.Booking

	err := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		// 1. Lock the listing row; creations for one listing serialize here
		listing, err := s.listingRepo.FindByIDForUpdate(ctx, tx, in.ListingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return fmt.Errorf("lock listing: %w", err)
		}

		// 2. Reject any overlap with a PENDING or CONFIRMED booking
		overlapping, err := s.bookingRepo.FindOverlapping(ctx, tx, listing.ID, start, end, uuid.Nil)
		if err != nil {
			return fmt.Errorf("find overlapping bookings: %w", err)
		}
		if len(overlapping) > 0 {
			return ErrOverlapConflict
		}

		// 3. Insert as PENDING
		booking := &models.Booking{
			ListingID:  listing.ID,
			UserID:     actor.ID,
			UserEmail:  actor.Email,
			StartDate:  start,
			EndDate:    end,
			Status:     models.BookingPending,
			TotalPrice: TotalPrice(listing.PricePerNight, start, end),
		}
		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			if errors.Is(err, repository.ErrOverlap) {
				return ErrOverlapConflict
			}
			return fmt.Errorf("create booking: %w", err)
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"booking_id": result.ID,
		"listing_id": result.ListingID,
		"user_id":    result.UserID,
	}).Info("booking created")
	s.notify(ctx, notification.BookingCreated, result.ID)

	return result, nil
}

func (s *bookingService) ConfirmBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Booking, error) {
	var result *models.Booking

	err := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}

		listing, err := s.listingRepo.FindByID(ctx, booking.ListingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return fmt.Errorf("load listing: %w", err)
		}
		if !policy.IsHost(actor, listing) {
			return ErrForbidden
		}
		if booking.Status != models.BookingPending {
			return ErrInvalidTransition
		}

		if err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, models.BookingConfirmed); err != nil {
			return fmt.Errorf("confirm booking: %w", err)
		}
		booking.Status = models.BookingConfirmed
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("booking_id", result.ID).Info("booking confirmed")
	s.notify(ctx, notification.BookingConfirmed, result.ID)

	return result, nil
}

func (s *bookingService) CancelBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Booking, error) {
	var result *models.Booking

	err := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !policy.CanWrite(actor, booking.UserID) {
			return ErrForbidden
		}
		if !booking.Status.CanTransitionTo(models.BookingCancelled) {
			return ErrInvalidTransition
		}

		if err := s.bookingRepo.UpdateStatus(ctx, tx, booking.ID, models.BookingCancelled); err != nil {
			return fmt.Errorf("cancel booking: %w", err)
		}
		booking.Status = models.BookingCancelled
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithField("booking_id", result.ID).Info("booking cancelled")
	return result, nil
}

func (s *bookingService) UpdateBooking(ctx context.Context, actor policy.Actor, id uuid.UUID, in UpdateBookingInput) (*models.Booking, error) {
	var result *models.Booking

	err := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		booking, err := s.lockBooking(ctx, tx, id)
		if err != nil {
			return err
		}
		if !policy.CanWrite(actor, booking.UserID) {
			return ErrForbidden
		}
		if booking.Status == models.BookingCancelled || booking.StartDate.Before(s.today()) {
			return ErrInvalidTransition
		}

		start, end := booking.StartDate, booking.EndDate
		if in.StartDate != nil {
			start = toDay(*in.StartDate)
		}
		if in.EndDate != nil {
			end = toDay(*in.EndDate)
		}
		if start.Equal(booking.StartDate) && end.Equal(booking.EndDate) {
			result = booking
			return nil
		}
		if err := s.checkRange(start, end); err != nil {
			return err
		}

		listing, err := s.listingRepo.FindByIDForUpdate(ctx, tx, booking.ListingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrListingNotFound
			}
			return fmt.Errorf("lock listing: %w", err)
		}

		overlapping, err := s.bookingRepo.FindOverlapping(ctx, tx, listing.ID, start, end, booking.ID)
		if err != nil {
			return fmt.Errorf("find overlapping bookings: %w", err)
		}
		if len(overlapping) > 0 {
			return ErrOverlapConflict
		}

		booking.StartDate = start
		booking.EndDate = end
		booking.TotalPrice = TotalPrice(listing.PricePerNight, start, end)
		if err := s.bookingRepo.UpdateDates(ctx, tx, booking); err != nil {
			if errors.Is(err, repository.ErrOverlap) {
				return ErrOverlapConflict
			}
			return fmt.Errorf("update booking dates: %w", err)
		}
		result = booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *bookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	if filter.StartDate != nil {
		d := toDay(*filter.StartDate)
		filter.StartDate = &d
	}
	if filter.EndDate != nil {
		d := toDay(*filter.EndDate)
		filter.EndDate = &d
	}
	return s.bookingRepo.FindAll(ctx, filter)
}

func (s *bookingService) lockBooking(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	booking, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("lock booking: %w", err)
	}
	return booking, nil
}

func (s *bookingService) today() time.Time {
	return toDay(s.now().UTC())
}

// checkRange requires today <= start < end.
func (s *bookingService) checkRange(start, end time.Time) error {
	if start.Before(s.today()) || !start.Before(end) {
		return ErrInvalidDateRange
	}
	return nil
}

// notify hands the message to the worker. Failures are logged only; the
// booking has already been committed.
func (s *bookingService) notify(ctx context.Context, kind notification.Kind, bookingID uuid.UUID) {
	ctx = context.WithoutCancel(ctx)
	msg := notification.Message{Kind: kind, BookingID: bookingID, EnqueuedAt: s.now().UTC()}
	if err := s.notifier.Enqueue(ctx, msg); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"booking_id": bookingID,
			"kind":       kind,
		}).Warn("failed to enqueue booking notification")
	}
}
