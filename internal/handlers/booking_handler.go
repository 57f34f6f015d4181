package handlers

import (
	"bytes"
	"encoding/json"
	"maps"
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/shreyas2228/momentcraftres/internal/models"
	"github.com/shreyas2228/momentcraftres/internal/services/booking"
	"github.com/shreyas2228/momentcraftres/internal/services/payment"
	"github.com/shreyas2228/momentcraftres/internal/services/review"
	"github.com/shreyas2228/momentcraftres/utils"
)

type BookingHandler struct {
	svc      booking.Service
	reviews  review.Service
	payments payment.Service
}

func NewBookingHandler(svc booking.Service, reviews review.Service, payments payment.Service) *BookingHandler {
	return &BookingHandler{svc: svc, reviews: reviews, payments: payments}
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.svc.Create(ctx, principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Booking created successfully", b))
}

func (h *BookingHandler) GetBookings(c *gin.Context) {
	var q models.BookingQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	bookings, err := h.svc.List(ctx, principal(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Bookings fetched successfully", gin.H{
		"count":    len(bookings),
		"bookings": bookings,
	}))
}

func (h *BookingHandler) GetBooking(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.svc.Get(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Booking fetched successfully", b))
}

// UpdateBooking rejects unknown fields so a vendor cannot slip extra changes
// past the status-only rule. Keys are collected before the typed decode since
// a null value leaves its pointer field unset.
func (h *BookingHandler) UpdateBooking(c *gin.Context) {
	raw, err := c.GetRawData()
	if err != nil {
		badRequest(c, err)
		return
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		badRequest(c, err)
		return
	}

	var input models.UpdateBookingInput
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&input); err != nil {
		badRequest(c, err)
		return
	}
	input.Keys = slices.Sorted(maps.Keys(keys))

	ctx, cancel := requestContext(c)
	defer cancel()

	b, err := h.svc.Update(ctx, principal(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Booking updated successfully", b))
}

func (h *BookingHandler) DeleteBooking(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, principal(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Booking deleted successfully", gin.H{}))
}
