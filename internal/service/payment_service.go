package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/gateway"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/policy"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/repository"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const (
	defaultPayerName  = "User"
	defaultPayerPhone = "000-000-0000"
	defaultMethod     = "chapa"
)

// PaymentGateway is the subset of the gateway client the coordinator uses.
type PaymentGateway interface {
	Initialize(ctx context.Context, req gateway.InitializeRequest) (*gateway.InitializeResponse, error)
	Verify(ctx context.Context, txRef string) (*gateway.VerifyResponse, error)
}

type InitiatePaymentInput struct {
	BookingID     uuid.UUID
	Amount        float64
	PaymentMethod string
}

type PaymentService interface {
	// InitiatePayment always returns the persisted payment when one was
	// created, including alongside gateway errors.
	InitiatePayment(ctx context.Context, actor policy.Actor, in InitiatePaymentInput) (*models.Payment, error)
	HandleCallback(ctx context.Context, txRef string) (models.PaymentStatus, error)
	GetPayment(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Payment, error)
}

type paymentService struct {
	txm         repository.Transactor
	paymentRepo repository.PaymentRepository
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
	gateway     PaymentGateway
	cfg         gateway.Config
	log         *logrus.Logger
}

func NewPaymentService(
	txm repository.Transactor,
	paymentRepo repository.PaymentRepository,
	bookingRepo repository.BookingRepository,
	listingRepo repository.ListingRepository,
	gw PaymentGateway,
	cfg gateway.Config,
	log *logrus.Logger,
) PaymentService {
	return &paymentService{
		txm:         txm,
		paymentRepo: paymentRepo,
		bookingRepo: bookingRepo,
		listingRepo: listingRepo,
		gateway:     gw,
		cfg:         cfg,
		log:         log,
	}
}

func (s *paymentService) InitiatePayment(ctx context.Context, actor policy.Actor, in InitiatePaymentInput) (*models.Payment, error) {
	var (
		payment *models.Payment
		booking *models.Booking
	)

	err := s.txm.Transaction(ctx, func(tx *gorm.DB) error {
		b, err := s.bookingRepo.FindByIDForUpdate(ctx, tx, in.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBookingNotFound
			}
			return fmt.Errorf("lock booking: %w", err)
		}
		if !policy.CanWrite(actor, b.UserID) {
			return ErrForbidden
		}
		if b.Status == models.BookingCancelled {
			return ErrInvalidTransition
		}

		_, err = s.paymentRepo.FindActiveByBooking(ctx, tx, b.ID)
		if err == nil {
			return ErrPaymentInProgress
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("find active payment: %w", err)
		}

		amount := in.Amount
		if amount <= 0 {
			amount = b.TotalPrice
		}
		method := in.PaymentMethod
		if method == "" {
			method = defaultMethod
		}

		p := &models.Payment{
			BookingID:     b.ID,
			Amount:        amount,
			PaymentMethod: method,
			TransactionID: newTxRef(b.ID),
			Status:        models.PaymentPending,
		}
		if err := s.paymentRepo.Create(ctx, tx, p); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return ErrPaymentInProgress
			}
			return fmt.Errorf("create payment: %w", err)
		}
		payment, booking = p, b
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger := s.log.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"booking_id": booking.ID,
		"tx_ref":     payment.TransactionID,
	})

	req := s.initializeRequest(ctx, actor, booking, payment)
	resp, err := s.gateway.Initialize(ctx, req)
	if err != nil {
		logger.WithError(err).Error("payment initialization failed")
		s.markFailed(ctx, payment)
		return payment, fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}
	if !resp.OK() {
		msg := resp.Message
		if msg == "" {
			msg = "Failed to initiate payment"
		}
		logger.WithField("gateway_message", msg).Warn("payment initiation rejected")
		s.markFailed(ctx, payment)
		return payment, &GatewayRejectedError{Message: msg}
	}

	checkoutURL := resp.Data.CheckoutURL
	if err := s.paymentRepo.SetCheckoutURL(context.WithoutCancel(ctx), payment.ID, checkoutURL); err != nil {
		logger.WithError(err).Error("failed to save checkout url")
		s.markFailed(ctx, payment)
		return payment, fmt.Errorf("save checkout url: %w", err)
	}
	payment.CheckoutURL = checkoutURL

	logger.Info("payment initiated")
	return payment, nil
}

func (s *paymentService) HandleCallback(ctx context.Context, txRef string) (models.PaymentStatus, error) {
	if txRef == "" {
		return "", ErrPaymentNotFound
	}
	payment, err := s.paymentRepo.FindByTransactionID(ctx, txRef)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPaymentNotFound
		}
		return "", fmt.Errorf("find payment: %w", err)
	}

	logger := s.log.WithFields(logrus.Fields{
		"payment_id": payment.ID,
		"tx_ref":     txRef,
	})

	resp, err := s.gateway.Verify(ctx, txRef)
	if err != nil {
		logger.WithError(err).Error("payment verification failed")
		return "", fmt.Errorf("%w: %w", ErrGatewayUnavailable, err)
	}

	target := models.PaymentFailed
	if resp.OK() {
		target = models.PaymentCompleted
	}

	if !payment.Status.IsTerminal() {
		changed, err := s.paymentRepo.TransitionStatus(context.WithoutCancel(ctx), payment.ID, models.PaymentPending, target)
		if err != nil {
			return "", fmt.Errorf("update payment status: %w", err)
		}
		if changed {
			logger.WithField("status", target).Info("payment verified")
			return target, nil
		}
		// another callback settled it first
		payment, err = s.paymentRepo.FindByID(ctx, payment.ID)
		if err != nil {
			return "", fmt.Errorf("reload payment: %w", err)
		}
	}

	if payment.Status != target {
		logger.WithFields(logrus.Fields{
			"status":   payment.Status,
			"verified": target,
		}).Warn("verification disagrees with settled payment; keeping current status")
	}
	return payment.Status, nil
}

func (s *paymentService) GetPayment(ctx context.Context, actor policy.Actor, id uuid.UUID) (*models.Payment, error) {
	payment, err := s.paymentRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentNotFound
		}
		return nil, err
	}
	booking, err := s.bookingRepo.FindByID(ctx, payment.BookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if !policy.CanWrite(actor, booking.UserID) {
		return nil, ErrForbidden
	}
	return payment, nil
}

func (s *paymentService) initializeRequest(ctx context.Context, actor policy.Actor, booking *models.Booking, payment *models.Payment) gateway.InitializeRequest {
	title := fmt.Sprintf("Payment for Booking %s", booking.ID)
	description := title
	if listing, err := s.listingRepo.FindByID(ctx, booking.ListingID); err == nil {
		description = fmt.Sprintf("Payment for booking %s at %s", booking.ID, listing.Name)
	}

	email := actor.Email
	if email == "" {
		email = booking.UserEmail
	}

	return gateway.InitializeRequest{
		Amount:      strconv.FormatFloat(payment.Amount, 'f', 2, 64),
		Currency:    s.cfg.Currency,
		TxRef:       payment.TransactionID,
		Email:       email,
		FirstName:   orDefault(actor.FirstName, defaultPayerName),
		LastName:    orDefault(actor.LastName, defaultPayerName),
		PhoneNumber: orDefault(actor.Phone, defaultPayerPhone),
		ReturnURL:   s.cfg.ReturnURL,
		CallbackURL: s.cfg.CallbackURL,
		Title:       title,
		Description: description,
	}
}

// markFailed moves a PENDING payment to FAILED. It outlives the request
// context so an aborted client does not leave the payment PENDING.
func (s *paymentService) markFailed(ctx context.Context, payment *models.Payment) {
	changed, err := s.paymentRepo.TransitionStatus(context.WithoutCancel(ctx), payment.ID, models.PaymentPending, models.PaymentFailed)
	if err != nil {
		s.log.WithError(err).WithField("payment_id", payment.ID).Error("failed to mark payment as failed")
		return
	}
	if changed {
		payment.Status = models.PaymentFailed
	}
}

// newTxRef builds "<10 random hex chars>-<booking id>".
func newTxRef(bookingID uuid.UUID) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:10]
	return suffix + "-" + bookingID.String()
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
