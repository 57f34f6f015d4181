package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/models"
	"github.com/shreyas2228/momentcraftres/internal/services/auth"
	"github.com/shreyas2228/momentcraftres/utils"
)

type AuthHandler struct {
	svc auth.Service
}

func NewAuthHandler(svc auth.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var input models.RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.svc.Register(ctx, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("User registered successfully", res))
}

func (h *AuthHandler) Login(c *gin.Context) {
	var input models.LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.svc.Login(ctx, input)
	if err != nil {
		// bad credentials are an authentication failure, not a denial
		if domain.KindOf(err) == domain.KindUnauthorized {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse(err.Error()))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Login successful", res))
}

func (h *AuthHandler) Me(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.Me(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("User fetched successfully", user))
}

// Logout has nothing to revoke: tokens are bearer JWTs held by the client
// and expire on their own.
func (h *AuthHandler) Logout(c *gin.Context) {
	c.JSON(http.StatusOK, utils.SuccessResponse("User logged out successfully", gin.H{}))
}

func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	var input models.UpdateDetailsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.UpdateDetails(ctx, principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Details updated successfully", user))
}

func (h *AuthHandler) UpdatePassword(c *gin.Context) {
	var input models.UpdatePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	res, err := h.svc.UpdatePassword(ctx, principal(c), input)
	if err != nil {
		if domain.KindOf(err) == domain.KindUnauthorized {
			c.JSON(http.StatusUnauthorized, utils.ErrorResponse(err.Error()))
			return
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Password updated successfully", res))
}
