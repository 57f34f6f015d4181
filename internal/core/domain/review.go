package domain

import (
	"context"
	"math"
	"time"
)

// Review is a rating left by the user of a completed booking.
type Review struct {
	ID        string    `json:"id"`
	VendorID  string    `json:"vendorId" validate:"required"`
	BookingID string    `json:"bookingId" validate:"required"`
	UserID    string    `json:"userId" validate:"required"`
	UserName  string    `json:"userName"`
	Rating    int       `json:"rating" validate:"required,min=1,max=5"`
	Comment   string    `json:"comment" validate:"max=2000"`
	CreatedAt time.Time `json:"createdAt"`
}

type ReviewRepository interface {
	// Create returns a Conflict error when the booking already has a review.
	Create(ctx context.Context, review *Review) error
	ListByVendor(ctx context.Context, vendorID string) ([]Review, error)
	// AverageRating returns the mean rating and review count of a vendor.
	AverageRating(ctx context.Context, vendorID string) (float64, int, error)
	DeleteByVendor(ctx context.Context, vendorID string) (int64, error)
}

// RoundRating rounds an average rating to one decimal place.
func RoundRating(avg float64) float64 {
	return math.Round(avg*10) / 10
}
