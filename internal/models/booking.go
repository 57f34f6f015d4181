package models

import (
	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

// CreateBookingInput has no user field: the booker is always the caller.
type CreateBookingInput struct {
	Vendor          string   `json:"vendor" binding:"required"`
	ServiceType     string   `json:"serviceType" binding:"required"`
	EventDate       string   `json:"eventDate" binding:"required"`
	Location        string   `json:"location" binding:"required"`
	Guests          int      `json:"guests" binding:"required,gt=0"`
	SpecialRequests string   `json:"specialRequests"`
	Price           *float64 `json:"price" binding:"required"`
}

type UpdateBookingInput struct {
	ServiceType     *string               `json:"serviceType"`
	EventDate       *string               `json:"eventDate"`
	Location        *string               `json:"location"`
	Guests          *int                  `json:"guests"`
	SpecialRequests *string               `json:"specialRequests"`
	Status          *domain.BookingStatus `json:"status"`
	Price           *float64              `json:"price"`
	PaymentStatus   *domain.PaymentStatus `json:"paymentStatus"`
	// Keys are the top-level keys of the request body, null-valued ones included.
	Keys []string `json:"-"`
}

// Fields lists the json names of the fields present in the update. Keys take
// precedence when the caller decoded them.
func (in UpdateBookingInput) Fields() []string {
	if in.Keys != nil {
		return in.Keys
	}
	var f []string
	add := func(present bool, name string) {
		if present {
			f = append(f, name)
		}
	}
	add(in.ServiceType != nil, "serviceType")
	add(in.EventDate != nil, "eventDate")
	add(in.Location != nil, "location")
	add(in.Guests != nil, "guests")
	add(in.SpecialRequests != nil, "specialRequests")
	add(in.Status != nil, "status")
	add(in.Price != nil, "price")
	add(in.PaymentStatus != nil, "paymentStatus")
	return f
}

type BookingQuery struct {
	Vendor string `form:"vendor"`
	User   string `form:"user"`
}

// BookingView is a booking with its user and vendor resolved to public fields.
type BookingView struct {
	domain.Booking
	User   *domain.UserSummary   `json:"user,omitempty"`
	Vendor *domain.VendorSummary `json:"vendor,omitempty"`
}

type PaymentIntentResponse struct {
	BookingID string                `json:"bookingId"`
	Intent    *domain.PaymentIntent `json:"intent"`
}
