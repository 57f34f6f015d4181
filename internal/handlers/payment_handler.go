package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/services/payment"
	"github.com/shreyas2228/momentcraftres/utils"
)

const maxWebhookBody = int64(65536)

type PaymentHandler struct {
	svc payment.Service
}

func NewPaymentHandler(svc payment.Service) *PaymentHandler {
	return &PaymentHandler{svc: svc}
}

// CreatePaymentIntent handles POST /api/bookings/:id/payments/intent.
func (h *BookingHandler) CreatePaymentIntent(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.payments.CreateIntent(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Payment intent created", res))
}

func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Error reading request body"))
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.HandleWebhook(ctx, payload, c.GetHeader("Stripe-Signature")); err != nil {
		switch domain.KindOf(err) {
		case domain.KindValidation:
			c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		case domain.KindPrecondition, domain.KindNotFound:
			// acknowledge so the gateway does not retry an event we cannot apply
			c.Error(err)
			c.JSON(http.StatusOK, gin.H{"received": true})
		default:
			respondError(c, err)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
