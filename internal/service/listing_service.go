package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/policy"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

type ListingInput struct {
	Name          string
	Description   string
	Location      string
	PricePerNight float64
	Amenities     []string
	Capacity      int
}

type ListingService interface {
	CreateListing(ctx context.Context, actor policy.Actor, in ListingInput) (*models.Listing, error)
	GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	ListListings(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error)
	UpdateListing(ctx context.Context, actor policy.Actor, id uuid.UUID, in ListingInput) (*models.Listing, error)
	DeleteListing(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

type listingService struct {
	listingRepo repository.ListingRepository
	bookingRepo repository.BookingRepository
	log         *logrus.Logger
}

func NewListingService(listingRepo repository.ListingRepository, bookingRepo repository.BookingRepository, log *logrus.Logger) ListingService {
	return &listingService{listingRepo: listingRepo, bookingRepo: bookingRepo, log: log}
}

func (s *listingService) CreateListing(ctx context.Context, actor policy.Actor, in ListingInput) (*models.Listing, error) {
	if actor.IsAnonymous() {
		return nil, ErrForbidden
	}
	listing := &models.Listing{HostID: actor.ID}
	apply(listing, in)
	if err := s.listingRepo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	s.log.WithFields(logrus.Fields{"listing_id": listing.ID, "host_id": listing.HostID}).Info("listing created")
	return listing, nil
}

func (s *listingService) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listingRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListingNotFound
		}
		return nil, err
	}
	return listing, nil
}

func (s *listingService) ListListings(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error) {
	return s.listingRepo.FindAll(ctx, filter)
}

func (s *listingService) UpdateListing(ctx context.Context, actor policy.Actor, id uuid.UUID, in ListingInput) (*models.Listing, error) {
	listing, err := s.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.IsHost(actor, listing) {
		return nil, ErrForbidden
	}
	apply(listing, in)
	if err := s.listingRepo.Update(ctx, listing); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return listing, nil
}

// DeleteListing refuses to remove a listing that still has bookings, so
// booking and payment history stay attached to their listing.
func (s *listingService) DeleteListing(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	listing, err := s.GetListing(ctx, id)
	if err != nil {
		return err
	}
	if !policy.IsHost(actor, listing) {
		return ErrForbidden
	}
	bookings, err := s.bookingRepo.FindAll(ctx, repository.BookingFilter{ListingID: listing.ID})
	if err != nil {
		return fmt.Errorf("list listing bookings: %w", err)
	}
	if len(bookings) > 0 {
		return ErrListingInUse
	}
	if err := s.listingRepo.Delete(ctx, listing.ID); err != nil {
		// a booking created after the check above
		if errors.Is(err, repository.ErrReferenced) {
			return ErrListingInUse
		}
		return fmt.Errorf("delete listing: %w", err)
	}
	s.log.WithField("listing_id", listing.ID).Info("listing deleted")
	return nil
}

func apply(l *models.Listing, in ListingInput) {
	l.Name = in.Name
	l.Description = in.Description
	l.Location = in.Location
	l.PricePerNight = in.PricePerNight
	l.Amenities = in.Amenities
	l.Capacity = in.Capacity
	if l.Capacity <= 0 {
		l.Capacity = 1
	}
}
