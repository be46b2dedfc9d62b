package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/dto"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/notification"
	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	handleTimeout = 30 * time.Second
	maxRetryDelay = 30 * time.Second
)

type BookingFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
}

type ListingFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// errDrop marks messages that can never succeed and must not be requeued.
var errDrop = errors.New("drop message")

// NotificationConsumer turns queued booking notifications into emails.
type NotificationConsumer struct {
	bookings BookingFinder
	listings ListingFinder
	mailer   notification.Mailer
	log      *logrus.Entry

	retryDelay time.Duration
}

func NewNotificationConsumer(bookings BookingFinder, listings ListingFinder, mailer notification.Mailer, log *logrus.Logger) *NotificationConsumer {
	return &NotificationConsumer{
		bookings: bookings,
		listings: listings,
		mailer:   mailer,
		log:      log.WithField("component", "notification-consumer"),

		retryDelay: time.Second,
	}
}

// DeliverySource opens a fresh delivery stream, reconnecting if needed.
type DeliverySource interface {
	Consume() (<-chan amqp.Delivery, error)
}

// Run processes deliveries until ctx is done. When the stream closes or
// cannot be opened it reconnects with exponential backoff.
func (nc *NotificationConsumer) Run(ctx context.Context, source DeliverySource) {
	backoff := nc.retryDelay
	for {
		msgs, err := source.Consume()
		if err != nil {
			nc.log.WithError(err).WithField("retry_in", backoff).Warn("failed to open deliveries")
			if !sleep(ctx, backoff) {
				return
			}
			if backoff < maxRetryDelay {
				backoff *= 2
			}
			continue
		}
		backoff = nc.retryDelay

		if !nc.drain(ctx, msgs) {
			nc.log.Info("stopping consumer")
			return
		}
		nc.log.Warn("delivery channel closed, reconnecting")
		if !sleep(ctx, nc.retryDelay) {
			return
		}
	}
}

// drain handles msgs until the channel closes. It reports false when ctx ended first.
func (nc *NotificationConsumer) drain(ctx context.Context, msgs <-chan amqp.Delivery) bool {
	for {
		select {
		case <-ctx.Done():
			return false
		case msg, ok := <-msgs:
			if !ok {
				return true
			}
			nc.handleMessage(msg)
		}
	}
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// handleMessage acks on success, drops permanent failures, and requeues a
// transient failure once. A redelivered message that fails again is dropped.
func (nc *NotificationConsumer) handleMessage(msg amqp.Delivery) {
	ctx, cancel := context.WithTimeout(context.Background(), handleTimeout)
	defer cancel()

	var m notification.Message
	if err := json.Unmarshal(msg.Body, &m); err != nil {
		nc.log.WithError(err).Warn("failed to unmarshal notification, dropping")
		_ = msg.Nack(false, false)
		return
	}

	logger := nc.log.WithFields(logrus.Fields{"kind": m.Kind, "booking_id": m.BookingID})

	err := nc.deliver(ctx, m)
	switch {
	case err == nil:
		logger.Info("notification sent")
		_ = msg.Ack(false)
	case errors.Is(err, errDrop):
		logger.WithError(err).Warn("notification dropped")
		_ = msg.Nack(false, false)
	case msg.Redelivered:
		logger.WithError(err).Error("notification failed after retry, dropping")
		_ = msg.Nack(false, false)
	default:
		logger.WithError(err).Warn("notification failed, requeueing")
		_ = msg.Nack(false, true)
	}
}

func (nc *NotificationConsumer) deliver(ctx context.Context, m notification.Message) error {
	if m.Kind != notification.BookingCreated && m.Kind != notification.BookingConfirmed {
		return fmt.Errorf("%w: unknown kind %q", errDrop, m.Kind)
	}

	booking, err := nc.bookings.FindByID(ctx, m.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("%w: booking not found", errDrop)
		}
		return fmt.Errorf("load booking: %w", err)
	}
	if booking.UserEmail == "" {
		return fmt.Errorf("%w: booking has no recipient", errDrop)
	}

	listingName := "your listing"
	listing, err := nc.listings.FindByID(ctx, booking.ListingID)
	switch {
	case err == nil:
		listingName = listing.Name
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("load listing: %w", err)
	}

	return nc.mailer.Send(ctx, compose(m.Kind, booking, listingName))
}

func compose(kind notification.Kind, b *models.Booking, listingName string) notification.Email {
	dates := fmt.Sprintf("%s to %s", b.StartDate.Format(dto.DateLayout), b.EndDate.Format(dto.DateLayout))

	if kind == notification.BookingConfirmed {
		return notification.Email{
			To:      b.UserEmail,
			Subject: "Booking Confirmed",
			Body: fmt.Sprintf("Your booking %s at %s from %s has been confirmed by the host.\n",
				b.ID, listingName, dates),
		}
	}
	return notification.Email{
		To:      b.UserEmail,
		Subject: "Booking Confirmation",
		Body: fmt.Sprintf("Thank you for your booking!\n\nBooking ID: %s\nListing: %s\nDates: %s\nTotal: %.2f\nStatus: %s\n",
			b.ID, listingName, dates, b.TotalPrice, b.Status),
	}
}
