package domain

import (
	"context"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func (s BookingStatus) Valid() bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return true
	}
	return false
}

// CanTransition reports whether a booking may move from s to next.
func (s BookingStatus) CanTransition(next BookingStatus) bool {
	if s == next {
		return true
	}
	switch s {
	case BookingPending:
		return next == BookingConfirmed || next == BookingCancelled
	case BookingConfirmed:
		return next == BookingCompleted || next == BookingCancelled
	}
	return false
}

type PaymentStatus string

const (
	PaymentUnpaid  PaymentStatus = "unpaid"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentUnpaid, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

type Booking struct {
	ID              string        `json:"id"`
	UserID          string        `json:"userId" validate:"required"`
	VendorID        string        `json:"vendorId" validate:"required"`
	ServiceType     string        `json:"serviceType" validate:"required"`
	EventDate       time.Time     `json:"eventDate" validate:"required"`
	Location        string        `json:"location" validate:"required"`
	Guests          int           `json:"guests" validate:"gt=0"`
	SpecialRequests string        `json:"specialRequests,omitempty"`
	Status          BookingStatus `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	Price           float64       `json:"price" validate:"gte=0"`
	PaymentStatus   PaymentStatus `json:"paymentStatus" validate:"required,oneof=unpaid partial paid"`
	AmountPaid      float64       `json:"amountPaid" validate:"gte=0"`
	PaymentIntentID string        `json:"paymentIntentId,omitempty"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// EventDay normalizes an event date to UTC midnight so that the
// (vendor, eventDate) uniqueness holds per calendar day.
func EventDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// Payment is the gateway-owned part of a booking.
type Payment struct {
	AmountPaid float64
	Status     PaymentStatus
	IntentID   string
}

// BookingFilter narrows booking listings. Empty fields match everything.
type BookingFilter struct {
	UserID   string
	VendorID string
}

type BookingRepository interface {
	// Create returns a Conflict error when the vendor is already booked on that date.
	Create(ctx context.Context, booking *Booking) error
	GetByID(ctx context.Context, id string) (*Booking, error)
	List(ctx context.Context, filter BookingFilter) ([]Booking, error)
	// Update writes the fields a booking's parties may edit and refreshes
	// booking from the stored record. Payment fields, paymentStatus included,
	// go through SetPayment.
	Update(ctx context.Context, booking *Booking) error
	// SetPayment writes the payment fields only while the stored intent id
	// still equals expectIntent, and returns a Conflict error otherwise.
	SetPayment(ctx context.Context, id, expectIntent string, p Payment) error
	Delete(ctx context.Context, id string) error
	DeleteByVendor(ctx context.Context, vendorID string) (int64, error)
}
