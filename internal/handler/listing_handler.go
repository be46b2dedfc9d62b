package handler

import (
	"net/http"

	"github.com/Mitchkal/alx-travel-app-0x03/internal/dto"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/middleware"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/repository"
	"github.com/Mitchkal/alx-travel-app-0x03/internal/service"
	"github.com/labstack/echo/v4"
)

type ListingHandler struct {
	svc service.ListingService
}

func NewListingHandler(svc service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

func (h *ListingHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.ListListings)
	g.POST("", h.CreateListing)
	g.GET("/:id", h.GetListing)
	g.PUT("/:id", h.UpdateListing)
	g.DELETE("/:id", h.DeleteListing)
}

func (h *ListingHandler) CreateListing(c echo.Context) error {
	var req dto.ListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	listing, err := h.svc.CreateListing(c.Request().Context(), middleware.ActorFrom(c), listingInput(req))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusCreated, dto.ToListingResponse(listing))
}

func (h *ListingHandler) GetListing(c echo.Context) error {
	id, err := dto.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid listing id")
	}

	listing, err := h.svc.GetListing(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

func (h *ListingHandler) ListListings(c echo.Context) error {
	filter := repository.ListingFilter{
		HostID:   c.QueryParam("host"),
		Location: c.QueryParam("location"),
	}

	listings, err := h.svc.ListListings(c.Request().Context(), filter)
	if err != nil {
		return toHTTPError(err)
	}

	resp := make([]dto.ListingResponse, len(listings))
	for i := range listings {
		resp[i] = dto.ToListingResponse(&listings[i])
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *ListingHandler) UpdateListing(c echo.Context) error {
	id, err := dto.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid listing id")
	}
	var req dto.ListingRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	listing, err := h.svc.UpdateListing(c.Request().Context(), middleware.ActorFrom(c), id, listingInput(req))
	if err != nil {
		return toHTTPError(err)
	}

	return c.JSON(http.StatusOK, dto.ToListingResponse(listing))
}

func (h *ListingHandler) DeleteListing(c echo.Context) error {
	id, err := dto.ParseID(c.Param("id"))
	if err != nil {
		return badRequest("invalid listing id")
	}

	if err := h.svc.DeleteListing(c.Request().Context(), middleware.ActorFrom(c), id); err != nil {
		return toHTTPError(err)
	}

	return c.NoContent(http.StatusNoContent)
}

func listingInput(req dto.ListingRequest) service.ListingInput {
	return service.ListingInput{
		Name:          req.Name,
		Description:   req.Description,
		Location:      req.Location,
		PricePerNight: req.PricePerNight,
		Amenities:     req.Amenities,
		Capacity:      req.Capacity,
	}
}
