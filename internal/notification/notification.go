// Package notification defines the booking notification message that flows
// from the request path to the background worker, and the mailers the worker
// delivers through.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	BookingCreated   Kind = "booking.created"
	BookingConfirmed Kind = "booking.confirmed"
)

// Message carries only a booking reference; the worker reloads current state.
type Message struct {
	Kind       Kind      `json:"kind"`
	BookingID  uuid.UUID `json:"booking_id"`
	EnqueuedAt time.Time `json:"enqueued_at"`
}

// Notifier hands a message to the background worker without waiting for it
// to be delivered.
type Notifier interface {
	Enqueue(ctx context.Context, msg Message) error
}

// Noop drops every message. Used when no broker is configured.
type Noop struct{}

func (Noop) Enqueue(context.Context, Message) error { return nil }
