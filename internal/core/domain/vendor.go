package domain

import (
	"context"
	"time"
)

type VendorStatus string

const (
	VendorPending  VendorStatus = "pending"
	VendorApproved VendorStatus = "approved"
	VendorRejected VendorStatus = "rejected"
)

type ServiceType string

const (
	ServicePhotographer  ServiceType = "photographer"
	ServiceCaterer       ServiceType = "caterer"
	ServiceEventPlanner  ServiceType = "event-planner"
	ServiceVenue         ServiceType = "venue"
	ServiceDecorator     ServiceType = "decorator"
	ServiceEntertainment ServiceType = "entertainment"
	ServiceOther         ServiceType = "other"
)

type PricingPackage struct {
	PackageName string  `json:"packageName" bson:"packageName" validate:"required"`
	Price       float64 `json:"price" bson:"price" validate:"gte=0"`
	Description string  `json:"description,omitempty" bson:"description,omitempty"`
}

// Vendor is a service provider profile owned by exactly one user.
type Vendor struct {
	ID              string           `json:"id"`
	UserID          string           `json:"userId" validate:"required"`
	BusinessName    string           `json:"businessName" validate:"required,max=200"`
	Description     string           `json:"description" validate:"required"`
	ServiceType     ServiceType      `json:"serviceType" validate:"required,oneof=photographer caterer event-planner venue decorator entertainment other"`
	Website         string           `json:"website,omitempty" validate:"omitempty,http_url"`
	Phone           string           `json:"phone" validate:"required"`
	Address         string           `json:"address" validate:"required"`
	Pricing         []PricingPackage `json:"pricing" validate:"dive"`
	PortfolioImages []string         `json:"portfolioImages"`
	Photo           string           `json:"photo,omitempty"`
	Rating          *float64         `json:"rating,omitempty" validate:"omitempty,min=1,max=5"`
	Status          VendorStatus     `json:"status" validate:"required,oneof=pending approved rejected"`
	CreatedAt       time.Time        `json:"createdAt"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}

// VendorSummary is the projection of a vendor joined onto bookings.
type VendorSummary struct {
	ID           string      `json:"id"`
	BusinessName string      `json:"businessName"`
	ServiceType  ServiceType `json:"serviceType"`
}

func (v *Vendor) Summary() *VendorSummary {
	if v == nil {
		return nil
	}
	return &VendorSummary{ID: v.ID, BusinessName: v.BusinessName, ServiceType: v.ServiceType}
}

// VendorFilter narrows vendor listings.
type VendorFilter struct {
	ServiceType ServiceType
	Status      VendorStatus
	Search      string
}

type VendorRepository interface {
	Create(ctx context.Context, vendor *Vendor) error
	GetByID(ctx context.Context, id string) (*Vendor, error)
	// GetByUserID returns a NotFound error when the user owns no vendor.
	GetByUserID(ctx context.Context, userID string) (*Vendor, error)
	List(ctx context.Context, filter VendorFilter, q ListQuery) ([]Vendor, int64, error)
	// Update writes the owner-editable profile fields and the photo, then
	// refreshes vendor from the stored record. Status, rating and owner are
	// only changed through their own setters.
	Update(ctx context.Context, vendor *Vendor) error
	SetStatus(ctx context.Context, id string, status VendorStatus) error
	SetRating(ctx context.Context, id string, rating *float64) error
	Delete(ctx context.Context, id string) error
}
