package handler

import (
	"context"
	"net/http/httptest"
	"strings"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/middleware"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/policy"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/repository"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/service"
	"github.com/Mitchkal/alx-travel-app-0x03/pkg/validation"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// --- Mock BookingService ---

type mockBookingService struct {
	createFn  func(ctx context.Context, actor policy.Actor, in service.CreateBookingInput) (*models.Booking, error)
	confirmFn func(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Booking, error)
	cancelFn  func(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Booking, error)
	updateFn  func(ctx context.Context, actor policy.Actor, id uuid.UUID, in service.UpdateBookingInput) (*models.Booking, error)
	getFn     func(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	listFn    func(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error)
}

func (m *mockBookingService) CreateBooking(ctx context.Context, actor policy.Actor, in service.CreateBookingInput) (*models.Booking, error) {
	return m.createFn(ctx, actor, in)
}
func (m *mockBookingService) ConfirmBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Booking, error) {
	return m.confirmFn(ctx, actor, id)
}
func (m *mockBookingService) CancelBooking(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Booking, error) {
	return m.cancelFn(ctx, actor, id)
}
func (m *mockBookingService) UpdateBooking(ctx context.Context, actor policy.Actor, id uuid.UUID, in service.UpdateBookingInput) (*models.Booking, error) {
	return m.updateFn(ctx, actor, id, in)
}
func (m *mockBookingService) GetBooking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	return m.getFn(ctx, id)
}
func (m *mockBookingService) ListBookings(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	return m.listFn(ctx, filter)
}

// --- Mock PaymentService ---

type mockPaymentService struct {
	initiateFn func(ctx context.Context, actor policy.Actor, in service.InitiatePaymentInput) (*models.Payment, error)
	callbackFn func(ctx context.Context, txRef string) (models.PaymentStatus, error)
	getFn      func(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Payment, error)
}

func (m *mockPaymentService) InitiatePayment(ctx context.Context, actor policy.Actor, in service.InitiatePaymentInput) (*models.Payment, error) {
	return m.initiateFn(ctx, actor, in)
}
func (m *mockPaymentService) HandleCallback(ctx context.Context, txRef string) (models.PaymentStatus, error) {
	return m.callbackFn(ctx, txRef)
}
func (m *mockPaymentService) GetPayment(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Payment, error) {
	return m.getFn(ctx, actor, id)
}

// --- Mock ListingService ---

type mockListingService struct {
	createFn func(ctx context.Context, actor policy.Actor, in service.ListingInput) (*models.Listing, error)
	getFn    func(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	listFn   func(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error)
	updateFn func(ctx context.Context, actor policy.Actor, id uuid.UUID, in service.ListingInput) (*models.Listing, error)
	deleteFn func(ctx context.Context, actor policy.Actor, id uuid.UUID) error
}

func (m *mockListingService) CreateListing(ctx context.Context, actor policy.Actor, in service.ListingInput) (*models.Listing, error) {
	return m.createFn(ctx, actor, in)
}
func (m *mockListingService) GetListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	return m.getFn(ctx, id)
}
func (m *mockListingService) ListListings(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error) {
	return m.listFn(ctx, filter)
}
func (m *mockListingService) UpdateListing(ctx context.Context, actor policy.Actor, id uuid.UUID, in service.ListingInput) (*models.Listing, error) {
	return m.updateFn(ctx, actor, id, in)
}
func (m *mockListingService) DeleteListing(ctx context.Context, actor policy.Actor, id uuid.UUID) error {
	return m.deleteFn(ctx, actor, id)
}

// --- Helpers ---

var testActor = policy.Actor{ID: "guest-1", Email: "guest@example.com"}

func newEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.New()
	return e
}

// newContext builds a request context carrying testActor. body may be empty.
func newContext(e *echo.Echo, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	middleware.WithActor(c, testActor)
	return c, rec
}
