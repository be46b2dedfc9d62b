package handler

import (
	"net/http"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/dto"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/middleware"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/models"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/repository"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/service"
	"github.com/labstack/echo/v4"
)

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListBookings)
	g.POST("", h.CreateBooking)
	g.GET("/:id", h.GetBooking)
	g.PATCH("/:id", h.UpdateBooking)
	g.PATCH("/:id/confirm", h.ConfirmBooking)
	g.PATCH("/:id/cancel", h.CancelBooking)
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	var req dto.CreateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	listingID, err := dto.ParseID(req.PropertyID)
	if err != nil {
		return badRequest("invalid property id")
	}
	start, err := dto.ParseDate(req.StartDate)
	if err != nil {
		return badRequest("invalid start_date")
	}
	end, err := dto.ParseDate(req.EndDate)
	if err != nil {
		return badRequest("invalid end_date")
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), middleware.ActorFrom(c), service.CreateBookingInput{
		ListingID: listingID,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := dto.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid booking id")
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	var filter repository.BookingFilter

	if v := c.QueryParam("listing_id"); v != "" {
		id, err := dto.ParseID(v)
		if err != nil {
			return badRequest("invalid listing_id")
		}
		filter.ListingID = id
	}
	if v := c.QueryParam("status"); v != "" {
		status := models.BookingStatus(v)
		if !status.IsValid() {
			return badRequest("invalid status")
		}
		filter.Status = status
	}
	if v := c.QueryParam("start_date"); v != "" {
		d, err := dto.ParseDate(v)
		if err != nil {
			return badRequest("invalid start_date")
		}
		filter.StartDate = &d
	}
	if v := c.QueryParam("end_date"); v != "" {
		d, err := dto.ParseDate(v)
		if err != nil {
			return badRequest("invalid end_date")
		}
		filter.EndDate = &d
	}
	filter.UserID = c.QueryParam("user_id")

	bookings, err := h.svc.ListBookings(c.Request().Context(), filter)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) UpdateBooking(c echo.Context) error {
	id, err := dto.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid booking id")
	}
	var req dto.UpdateBookingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	start, err := dto.ParseOptionalDate(req.StartDate)
	if err != nil {
		return badRequest("invalid start_date")
	}
	end, err := dto.ParseOptionalDate(req.EndDate)
	if err != nil {
		return badRequest("invalid end_date")
	}

	booking, err := h.svc.UpdateBooking(c.Request().Context(), middleware.ActorFrom(c), id, service.UpdateBookingInput{
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ConfirmBooking(c echo.Context) error {
	id, err := dto.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid booking id")
	}

	if _, err := h.svc.ConfirmBooking(c.Request().Context(), middleware.ActorFrom(c), id); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.StatusResponse{Status: "confirmed"})
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := dto.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid booking id")
	}

	if _, err := h.svc.CancelBooking(c.Request().Context(), middleware.ActorFrom(c), id); err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.StatusResponse{Status: "cancelled"})
}
