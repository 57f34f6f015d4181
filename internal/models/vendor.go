package models

import (
	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type CreateVendorInput struct {
	BusinessName    string                  `json:"businessName" binding:"required"`
	Description     string                  `json:"description" binding:"required"`
	ServiceType     domain.ServiceType      `json:"serviceType" binding:"required"`
	Website         string                  `json:"website"`
	Phone           string                  `json:"phone" binding:"required"`
	Address         string                  `json:"address" binding:"required"`
	Pricing         []domain.PricingPackage `json:"pricing"`
	PortfolioImages []string                `json:"portfolioImages"`
}

// UpdateVendorInput is a partial update; nil fields are left untouched.
// Owner, status and rating are not client-writable.
type UpdateVendorInput struct {
	BusinessName    *string                  `json:"businessName"`
	Description     *string                  `json:"description"`
	ServiceType     *domain.ServiceType      `json:"serviceType"`
	Website         *string                  `json:"website"`
	Phone           *string                  `json:"phone"`
	Address         *string                  `json:"address"`
	Pricing         *[]domain.PricingPackage `json:"pricing"`
	PortfolioImages *[]string                `json:"portfolioImages"`
}

// Apply merges the present fields into v.
func (in UpdateVendorInput) Apply(v *domain.Vendor) {
	if in.BusinessName != nil {
		v.BusinessName = *in.BusinessName
	}
	if in.Description != nil {
		v.Description = *in.Description
	}
	if in.ServiceType != nil {
		v.ServiceType = *in.ServiceType
	}
	if in.Website != nil {
		v.Website = *in.Website
	}
	if in.Phone != nil {
		v.Phone = *in.Phone
	}
	if in.Address != nil {
		v.Address = *in.Address
	}
	if in.Pricing != nil {
		v.Pricing = *in.Pricing
	}
	if in.PortfolioImages != nil {
		v.PortfolioImages = *in.PortfolioImages
	}
}

// VendorQuery carries the public listing parameters of GET /api/vendors.
type VendorQuery struct {
	ServiceType string `form:"serviceType"`
	Status      string `form:"status"`
	Search      string `form:"search"`
	Sort        string `form:"sort"`
	Page        int    `form:"page"`
	Limit       int    `form:"limit"`
}

// VendorDetail is a vendor with its owner and bookings resolved.
type VendorDetail struct {
	*domain.Vendor
	User     *domain.UserSummary `json:"user,omitempty"`
	Bookings []domain.Booking    `json:"bookings"`
}

// PendingVendor is a vendor awaiting moderation, joined with its owner.
type PendingVendor struct {
	*domain.Vendor
	User *domain.UserSummary `json:"user,omitempty"`
}

type VendorPage struct {
	Vendors []domain.Vendor `json:"vendors"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
}

// PhotoUpload is an uploaded vendor photo as read from the request.
type PhotoUpload struct {
	Filename    string
	ContentType string
	Size        int64
}
