package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/middleware"
	"github.com/shreyas2228/momentcraftres/utils"
)

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

// statusFor maps a domain error kind to its HTTP status.
func statusFor(err error) int {
	switch domain.KindOf(err) {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindUnauthorized:
		return http.StatusForbidden
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindPrecondition:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the error envelope. Upstream failures are attached to
// the context for the request logger and answered with a generic message.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, utils.ErrorResponse("Request timed out"))
			return
		}
		c.JSON(status, utils.ErrorResponse("Something went wrong"))
		return
	}
	c.JSON(status, utils.ErrorResponse(err.Error()))
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, utils.ErrorResponse("Validation failed: "+err.Error()))
}

// principal is only called behind AuthMiddleware.
func principal(c *gin.Context) domain.Principal {
	p, _ := middleware.GetPrincipal(c)
	return p
}
