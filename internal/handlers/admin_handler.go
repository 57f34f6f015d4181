package handlers

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/shreyas2228/momentcraftres/internal/models"
	"github.com/shreyas2228/momentcraftres/internal/services/admin"
	"github.com/shreyas2228/momentcraftres/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type AdminHandler struct {
	svc admin.Service
}

func NewAdminHandler(svc admin.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

func (h *AdminHandler) GetPendingVendors(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	vendors, err := h.svc.ListPendingVendors(ctx, principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Pending vendors fetched successfully", gin.H{
		"count":   len(vendors),
		"vendors": vendors,
	}))
}

func (h *AdminHandler) ApproveVendor(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.svc.ApproveVendor(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vendor approved", v))
}

func (h *AdminHandler) RejectVendor(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.svc.RejectVendor(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vendor rejected", v))
}

func (h *AdminHandler) GetUsers(c *gin.Context) {
	var q models.UserQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.svc.ListUsers(ctx, principal(c), q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Users fetched successfully", page))
}

func (h *AdminHandler) GetUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.GetUser(ctx, principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("User fetched successfully", user))
}

func (h *AdminHandler) CreateUser(c *gin.Context) {
	var input models.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.CreateUser(ctx, principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("User created successfully", user))
}

func (h *AdminHandler) UpdateUser(c *gin.Context) {
	var input models.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	user, err := h.svc.UpdateUser(ctx, principal(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("User updated successfully", user))
}

func (h *AdminHandler) DeleteUser(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.DeleteUser(ctx, principal(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("User deleted successfully", gin.H{}))
}

// ExportBookings streams all bookings as an .xlsx workbook.
func (h *AdminHandler) ExportBookings(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	var buf bytes.Buffer
	if err := h.svc.ExportBookings(ctx, principal(c), &buf); err != nil {
		respondError(c, err)
		return
	}

	filename := "bookings-" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}
