//go:build integration

package service_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/gateway"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/policy"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/repository"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/service"
	"github.com/Mitchkal/alx-travel-app-0x03/pkg/database"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		getEnv("TEST_DB_HOST", "localhost"),
		getEnv("TEST_DB_PORT", "5434"),
		getEnv("TEST_DB_USER", "postgres"),
		getEnv("TEST_DB_PASSWORD", "postgres"),
		getEnv("TEST_DB_NAME", "travel_test_db"),
	)

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to test database: %v", err)
	}

	dropTables()
	if err := database.Migrate(testDB); err != nil {
		log.Fatalf("failed to migrate test database: %v", err)
	}

	code := m.Run()

	dropTables()
	os.Exit(code)
}

func dropTables() {
	testDB.Exec("DROP TABLE IF EXISTS payments")
	testDB.Exec("DROP TABLE IF EXISTS bookings")
	testDB.Exec("DROP TABLE IF EXISTS listings")
}

func cleanTables() {
	testDB.Exec("DELETE FROM payments")
	testDB.Exec("DELETE FROM bookings")
	testDB.Exec("DELETE FROM listings")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var fixedNow = func() time.Time { return time.Date(2025, 2, 1, 12, 0, 0, 0, time.UTC) }

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(logrus.PanicLevel)
	return l
}

func newLedger() service.BookingService {
	return service.NewBookingService(
		repository.NewTransactor(testDB),
		repository.NewBookingRepository(testDB),
		repository.NewListingRepository(testDB),
		nil,
		quietLogger(),
		fixedNow,
	)
}

func createListing(t *testing.T) *models.Listing {
	t.Helper()
	listing := &models.Listing{HostID: "host-1", Name: "Beach House", Location: "Diani", PricePerNight: 120}
	require.NoError(t, repository.NewListingRepository(testDB).Create(context.Background(), listing))
	return listing
}

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// 30 guests try to book the same nights at once: exactly one wins.
func TestConcurrentOverlappingBookings(t *testing.T) {
	cleanTables()
	listing := createListing(t)
	svc := newLedger()

	total := 30
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
		others    []error
	)
	wg.Add(total)
	for i := 0; i < total; i++ {
		go func(i int) {
			defer wg.Done()
			actor := policy.Actor{ID: fmt.Sprintf("guest-%03d", i)}
			_, err := svc.CreateBooking(context.Background(), actor, service.CreateBookingInput{
				ListingID: listing.ID,
				StartDate: date("2025-03-01").AddDate(0, 0, i%3),
				EndDate:   date("2025-03-05"),
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, service.ErrOverlapConflict):
				conflicts++
			default:
				others = append(others, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Empty(t, others)
	assert.Equal(t, 1, successes)
	assert.Equal(t, total-1, conflicts)

	var active int64
	testDB.Model(&models.Booking{}).
		Where("listing_id = ? AND status IN ?", listing.ID, models.ActiveBookingStatuses).
		Count(&active)
	assert.Equal(t, int64(1), active)
}

func TestAdjacentBookingsBothSucceed(t *testing.T) {
	cleanTables()
	listing := createListing(t)
	svc := newLedger()
	guest := policy.Actor{ID: "guest-1"}

	_, err := svc.CreateBooking(context.Background(), guest, service.CreateBookingInput{
		ListingID: listing.ID, StartDate: date("2025-03-01"), EndDate: date("2025-03-05"),
	})
	require.NoError(t, err)

	_, err = svc.CreateBooking(context.Background(), guest, service.CreateBookingInput{
		ListingID: listing.ID, StartDate: date("2025-03-04"), EndDate: date("2025-03-06"),
	})
	assert.ErrorIs(t, err, service.ErrOverlapConflict)

	_, err = svc.CreateBooking(context.Background(), guest, service.CreateBookingInput{
		ListingID: listing.ID, StartDate: date("2025-03-05"), EndDate: date("2025-03-06"),
	})
	assert.NoError(t, err)
}

// The exclusion constraint rejects an overlapping row even when the service
// checks are skipped.
func TestExclusionConstraintRejectsDirectInsert(t *testing.T) {
	cleanTables()
	listing := createListing(t)
	repo := repository.NewBookingRepository(testDB)

	first := &models.Booking{ListingID: listing.ID, UserID: "a", StartDate: date("2025-03-01"), EndDate: date("2025-03-05"), Status: models.BookingPending, TotalPrice: 1}
	require.NoError(t, repo.Create(context.Background(), testDB, first))

	second := &models.Booking{ListingID: listing.ID, UserID: "b", StartDate: date("2025-03-03"), EndDate: date("2025-03-04"), Status: models.BookingConfirmed, TotalPrice: 1}
	assert.ErrorIs(t, repo.Create(context.Background(), testDB, second), repository.ErrOverlap)

	cancelled := &models.Booking{ListingID: listing.ID, UserID: "c", StartDate: date("2025-03-03"), EndDate: date("2025-03-04"), Status: models.BookingCancelled, TotalPrice: 1}
	assert.NoError(t, repo.Create(context.Background(), testDB, cancelled))
}

type stubGateway struct{}

func (stubGateway) Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResponse, error) {
	resp := &gateway.InitializeResponse{Status: "success"}
	resp.Data.CheckoutURL = "https://pay/" + req.TxRef
	return resp, nil
}

func (stubGateway) Verify(ctx context.Context, txRef string) (*gateway.VerifyResponse, error) {
	return &gateway.VerifyResponse{Status: "success"}, nil
}

func TestPaymentLifecycle(t *testing.T) {
	cleanTables()
	listing := createListing(t)
	guest := policy.Actor{ID: "guest-1", Email: "guest@example.com"}

	booking, err := newLedger().CreateBooking(context.Background(), guest, service.CreateBookingInput{
		ListingID: listing.ID, StartDate: date("2025-03-01"), EndDate: date("2025-03-03"),
	})
	require.NoError(t, err)

	payments := service.NewPaymentService(
		repository.NewTransactor(testDB),
		repository.NewPaymentRepository(testDB),
		repository.NewBookingRepository(testDB),
		repository.NewListingRepository(testDB),
		stubGateway{},
		gateway.Config{Currency: "ETB"},
		quietLogger(),
	)

	payment, err := payments.InitiatePayment(context.Background(), guest, service.InitiatePaymentInput{BookingID: booking.ID})
	require.NoError(t, err)
	assert.Equal(t, 240.0, payment.Amount)

	_, err = payments.InitiatePayment(context.Background(), guest, service.InitiatePaymentInput{BookingID: booking.ID})
	assert.ErrorIs(t, err, service.ErrPaymentInProgress)

	status, err := payments.HandleCallback(context.Background(), payment.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, status)

	status, err = payments.HandleCallback(context.Background(), payment.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, models.PaymentCompleted, status)

	stored, err := repository.NewPaymentRepository(testDB).FindByID(context.Background(), payment.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://pay/"+payment.TransactionID, stored.CheckoutURL)
}
