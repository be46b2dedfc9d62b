package service

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateRange   = errors.New("invalid booking dates")
	ErrOverlapConflict    = errors.New("listing already booked for these dates")
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrForbidden          = errors.New("forbidden")
	ErrNotFound           = errors.New("not found")
	ErrGatewayUnavailable = errors.New("payment gateway unavailable")
	ErrGatewayRejected    = errors.New("payment gateway rejected the request")
	ErrPaymentInProgress  = errors.New("booking already has an active payment")
	ErrListingInUse       = errors.New("listing has bookings")

	ErrListingNotFound = fmt.Errorf("listing %w", ErrNotFound)
	ErrBookingNotFound = fmt.Errorf("booking %w", ErrNotFound)
	ErrPaymentNotFound = fmt.Errorf("payment %w", ErrNotFound)
)

// GatewayRejectedError carries the gateway's own explanation of a declined
// initiation.
type GatewayRejectedError struct {
	Message string
}

func (e *GatewayRejectedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrGatewayRejected, e.Message)
}

func (e *GatewayRejectedError) Is(target error) bool {
	return target == ErrGatewayRejected
}
