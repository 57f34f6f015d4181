package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shreyas2228/momentcraftres/internal/models"
	"github.com/shreyas2228/momentcraftres/utils"
)

func (h *VendorHandler) GetVendorReviews(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	reviews, err := h.reviews.ListByVendor(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Reviews fetched successfully", gin.H{"reviews": reviews}))
}

// CreateReview handles POST /api/bookings/:id/reviews.
func (h *BookingHandler) CreateReview(c *gin.Context) {
	var input models.CreateReviewInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	review, err := h.reviews.Create(ctx, principal(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Review submitted successfully", gin.H{"review": review}))
}
