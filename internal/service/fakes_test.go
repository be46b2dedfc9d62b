package service

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/gateway"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/notification"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- In-memory store ---
// txMu stands in for the row locks: one transaction at a time.

type memStore struct {
	txMu sync.Mutex
	mu   sync.Mutex

	listings map[uuid.UUID]models.Listing
	bookings map[uuid.UUID]models.Booking
	payments map[uuid.UUID]models.Payment
}

func newMemStore() *memStore {
	return &memStore{
		listings: map[uuid.UUID]models.Listing{},
		bookings: map[uuid.UUID]models.Booking{},
		payments: map[uuid.UUID]models.Payment{},
	}
}

func (s *memStore) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()
	return fn(nil)
}

func (s *memStore) addListing(l models.Listing) models.Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	s.listings[l.ID] = l
	return l
}

func (s *memStore) addBooking(b models.Booking) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	s.bookings[b.ID] = b
	return b
}

func (s *memStore) addPayment(p models.Payment) models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.payments[p.ID] = p
	return p
}

func (s *memStore) booking(id uuid.UUID) models.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.bookings[id]
}

func (s *memStore) payment(id uuid.UUID) models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.payments[id]
}

func (s *memStore) paymentsFor(bookingID uuid.UUID) []models.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Payment
	for _, p := range s.payments {
		if p.BookingID == bookingID {
			out = append(out, p)
		}
	}
	return out
}

// memListings implements repository.ListingRepository.
type memListings struct{ s *memStore }

func (r memListings) Create(ctx context.Context, l *models.Listing) error {
	*l = r.s.addListing(*l)
	return nil
}

func (r memListings) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &l, nil
}

func (r memListings) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Listing, error) {
	return r.FindByID(ctx, id)
}

func (r memListings) FindAll(ctx context.Context, filter repository.ListingFilter) ([]models.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Listing
	for _, l := range r.s.listings {
		if filter.HostID != "" && l.HostID != filter.HostID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (r memListings) Update(ctx context.Context, l *models.Listing) error {
	r.s.addListing(*l)
	return nil
}

func (r memListings) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.listings, id)
	return nil
}

// memBookings implements repository.BookingRepository.
type memBookings struct{ s *memStore }

func (r memBookings) Create(ctx context.Context, tx *gorm.DB, b *models.Booking) error {
	*b = r.s.addBooking(*b)
	return nil
}

func (r memBookings) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.bookings[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &b, nil
}

func (r memBookings) FindByIDForUpdate(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*models.Booking, error) {
	return r.FindByID(ctx, id)
}

func (r memBookings) FindAll(ctx context.Context, filter repository.BookingFilter) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Booking
	for _, b := range r.s.bookings {
		if filter.ListingID != uuid.Nil && b.ListingID != filter.ListingID {
			continue
		}
		if filter.UserID != "" && b.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && b.Status != filter.Status {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (r memBookings) FindOverlapping(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, start, end time.Time, excludeID uuid.UUID) ([]models.Booking, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []models.Booking
	for _, b := range r.s.bookings {
		if b.ListingID != listingID || b.ID == excludeID || b.Status == models.BookingCancelled {
			continue
		}
		if b.Overlaps(start, end) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r memBookings) UpdateStatus(ctx context.Context, tx *gorm.DB, id uuid.UUID, status models.BookingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b := r.s.bookings[id]
	b.Status = status
	r.s.bookings[id] = b
	return nil
}

func (r memBookings) UpdateDates(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b := r.s.bookings[booking.ID]
	b.StartDate, b.EndDate, b.TotalPrice = booking.StartDate, booking.EndDate, booking.TotalPrice
	r.s.bookings[booking.ID] = b
	return nil
}

// memPayments implements repository.PaymentRepository.
type memPayments struct{ s *memStore }

func (r memPayments) Create(ctx context.Context, tx *gorm.DB, p *models.Payment) error {
	r.s.mu.Lock()
	for _, existing := range r.s.payments {
		if existing.TransactionID == p.TransactionID {
			r.s.mu.Unlock()
			return repository.ErrDuplicate
		}
	}
	r.s.mu.Unlock()
	*p = r.s.addPayment(*p)
	return nil
}

func (r memPayments) FindByID(ctx context.Context, id uuid.UUID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

func (r memPayments) FindByTransactionID(ctx context.Context, txRef string) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.TransactionID == txRef {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memPayments) FindActiveByBooking(ctx context.Context, tx *gorm.DB, bookingID uuid.UUID) (*models.Payment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.payments {
		if p.BookingID == bookingID && p.Status != models.PaymentFailed {
			return &p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memPayments) TransitionStatus(ctx context.Context, id uuid.UUID, from, to models.PaymentStatus) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.payments[id]
	if !ok || p.Status != from {
		return false, nil
	}
	p.Status = to
	r.s.payments[id] = p
	return true, nil
}

func (r memPayments) SetCheckoutURL(ctx context.Context, id uuid.UUID, url string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p := r.s.payments[id]
	p.CheckoutURL = url
	r.s.payments[id] = p
	return nil
}

// --- Notifier ---

type recordingNotifier struct {
	mu   sync.Mutex
	msgs []notification.Message
	err  error
}

func (n *recordingNotifier) Enqueue(ctx context.Context, msg notification.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.msgs = append(n.msgs, msg)
	return nil
}

func (n *recordingNotifier) sent() []notification.Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]notification.Message(nil), n.msgs...)
}

// --- Gateway ---

type mockGateway struct {
	initializeFn func(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResponse, error)
	verifyFn     func(ctx context.Context, txRef string) (*gateway.VerifyResponse, error)
}

func (m *mockGateway) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	return m.initializeFn(ctx, req)
}

func (m *mockGateway) Verify(ctx context.Context, txRef string) (*gateway.VerifyResponse, error) {
	return m.verifyFn(ctx, txRef)
}

// --- Helpers ---

var fixedNow = time.Date(2025, 2, 1, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
