package handler

import (
	"errors"
	"net/http"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/dto"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/middleware"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/service"
	"github.com/labstack/echo/v4"
)

type PaymentHandler struct {
	svc service.PaymentService
}

func NewPaymentHandler(svc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

func (h *PaymentHandler) RegisterRoutes(g *echo.Group) {
	g.POST("", h.InitiatePayment)
	g.GET("/:id", h.GetPayment)
}

// RegisterCallback mounts the gateway callback. Every method reaches the
// handler so that non-POST requests get the 405 body rather than echo's.
func (h *PaymentHandler) RegisterCallback(e *echo.Echo) {
	e.Any("/api/payment/callback/", h.Callback)
}

func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	var req dto.InitiatePaymentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	bookingID, err := dto.ParseID(req.BookingID)
	if err != nil {
		return badRequest("invalid booking id")
	}

	payment, err := h.svc.InitiatePayment(c.Request().Context(), middleware.ActorFrom(c), service.InitiatePaymentInput{
		BookingID:     bookingID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
	})
	if err != nil {
		var rejected *service.GatewayRejectedError
		if errors.As(err, &rejected) {
			return c.JSON(http.StatusBadRequest, dto.ErrorResponse{
				Message: "Payment initiation failed",
				Error:   rejected.Message,
			})
		}
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.InitiatePaymentResponse{
		Message:       "Payment initiated successfully",
		CheckoutURL:   payment.CheckoutURL,
		PaymentID:     payment.ID,
		TransactionID: payment.TransactionID,
	})
}

func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, err := dto.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid payment id")
	}

	payment, err := h.svc.GetPayment(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToPaymentResponse(payment))
}

// Callback receives the gateway's asynchronous notification, re-verifies
// the transaction and settles the payment.
func (h *PaymentHandler) Callback(c echo.Context) error {
	if c.Request().Method != http.MethodPost {
		return c.JSON(http.StatusMethodNotAllowed, dto.StatusResponse{Status: "error", Message: "Invalid request method"})
	}

	status, err := h.svc.HandleCallback(c.Request().Context(), c.FormValue("tx_ref"))
	switch {
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, dto.StatusResponse{Status: "error", Message: "Payment not found"})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, dto.StatusResponse{Status: "error", Message: "Error verifying payment"})
	case status == models.PaymentCompleted:
		return c.JSON(http.StatusOK, dto.StatusResponse{Status: "success", Message: "Payment Verified"})
	}
	return c.JSON(http.StatusOK, dto.StatusResponse{Status: "failed", Message: "Payment verification failed"})
}
