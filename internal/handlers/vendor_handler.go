package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shreyas2228/momentcraftres/internal/models"
	"github.com/shreyas2228/momentcraftres/internal/services/review"
	"github.com/shreyas2228/momentcraftres/internal/services/vendor"
	"github.com/shreyas2228/momentcraftres/utils"
)

type VendorHandler struct {
	svc       vendor.Service
	reviews   review.Service
	maxUpload int64
}

func NewVendorHandler(svc vendor.Service, reviews review.Service, maxUpload int64) *VendorHandler {
	return &VendorHandler{svc: svc, reviews: reviews, maxUpload: maxUpload}
}

func (h *VendorHandler) GetVendors(c *gin.Context) {
	var q models.VendorQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	page, err := h.svc.List(ctx, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vendors fetched successfully", page))
}

func (h *VendorHandler) GetVendor(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.svc.Get(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vendor fetched successfully", v))
}

func (h *VendorHandler) CreateVendor(c *gin.Context) {
	var input models.CreateVendorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.svc.Create(ctx, principal(c), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, utils.SuccessResponse("Vendor application submitted", v))
}

func (h *VendorHandler) UpdateVendor(c *gin.Context) {
	var input models.UpdateVendorInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.svc.Update(ctx, principal(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vendor updated successfully", v))
}

func (h *VendorHandler) DeleteVendor(c *gin.Context) {
	ctx, cancel := requestContext(c)
	defer cancel()

	if err := h.svc.Delete(ctx, principal(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Vendor deleted successfully", gin.H{}))
}

// UploadPhoto handles PUT /api/vendors/:id/photo with a multipart "file" field.
func (h *VendorHandler) UploadPhoto(c *gin.Context) {
	// leave room for the multipart envelope; the service enforces the exact limit
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+(1<<20))

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Please upload an image smaller than the upload limit"))
			return
		}
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Please upload a file"))
		return
	}
	defer file.Close()

	ctx, cancel := requestContext(c)
	defer cancel()

	v, err := h.svc.UploadPhoto(ctx, principal(c), c.Param("id"), models.PhotoUpload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
	}, file)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("Photo uploaded successfully", gin.H{"photo": v.Photo}))
}
