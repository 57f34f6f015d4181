// Package payment collects booking payments through the configured gateway.
package payment

import (
	"context"
	"errors"
	"math"

	"github.com/sirupsen/logrus"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/core/policy"
	"github.com/shreyas2228/momentcraftres/internal/models"
)

type Service interface {
	CreateIntent(ctx context.Context, p domain.Principal, bookingID string) (*models.PaymentIntentResponse, error)
	// HandleWebhook verifies and applies a gateway notification.
	HandleWebhook(ctx context.Context, payload []byte, signature string) error
}

type service struct {
	store   *domain.Store
	gateway domain.PaymentGateway
	log     logrus.FieldLogger
}

// NewService returns a payment service. A nil gateway disables payments.
func NewService(store *domain.Store, gateway domain.PaymentGateway, log logrus.FieldLogger) Service {
	return &service{store: store, gateway: gateway, log: log}
}

func cents(amount float64) int64 { return int64(math.Round(amount * 100)) }

func (s *service) CreateIntent(ctx context.Context, p domain.Principal, bookingID string) (*models.PaymentIntentResponse, error) {
	if s.gateway == nil {
		return nil, domain.Precondition("payments are not enabled")
	}
	b, err := s.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := policy.Booking(p, policy.ActionPay, policy.BookingFacts{UserID: b.UserID, VendorID: b.VendorID}); err != nil {
		return nil, err
	}
	if b.Status == domain.BookingCancelled {
		return nil, domain.Precondition("booking %s is cancelled", b.ID)
	}
	due := cents(b.Price) - cents(b.AmountPaid)
	if b.PaymentStatus == domain.PaymentPaid || due <= 0 {
		return nil, domain.Precondition("booking %s is already paid", b.ID)
	}

	intent, err := s.gateway.CreateIntent(ctx, due, map[string]string{"bookingId": b.ID})
	if err != nil {
		return nil, domain.Upstream(err, "create payment intent for booking %s", b.ID)
	}

	pay := domain.Payment{AmountPaid: b.AmountPaid, Status: b.PaymentStatus, IntentID: intent.ID}
	if err := s.store.Bookings.SetPayment(ctx, b.ID, b.PaymentIntentID, pay); err != nil {
		return nil, err
	}
	return &models.PaymentIntentResponse{BookingID: b.ID, Intent: intent}, nil
}

func (s *service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	if s.gateway == nil {
		return domain.Precondition("payments are not enabled")
	}
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return domain.Validation("invalid webhook: %v", err)
	}
	if ev.Type != domain.PaymentSucceeded {
		s.log.WithField("type", ev.Type).Debug("ignoring payment event")
		return nil
	}
	return s.record(ctx, ev)
}

// record applies a succeeded intent to its booking once. The write matches on
// the intent id and clears it, so a redelivered event is a no-op.
func (s *service) record(ctx context.Context, ev *domain.PaymentEvent) error {
	b, err := s.store.Bookings.GetByID(ctx, ev.BookingID)
	if err != nil {
		return err
	}
	fields := logrus.Fields{"bookingId": b.ID, "intentId": ev.IntentID}
	if b.PaymentIntentID != ev.IntentID {
		s.log.WithFields(fields).Warn("payment for unknown or already applied intent")
		return nil
	}

	paid := cents(b.AmountPaid) + ev.AmountCents
	pay := domain.Payment{AmountPaid: float64(paid) / 100, Status: b.PaymentStatus}
	switch {
	case paid >= cents(b.Price):
		pay.Status = domain.PaymentPaid
	case paid > 0:
		pay.Status = domain.PaymentPartial
	}
	err = s.store.Bookings.SetPayment(ctx, b.ID, ev.IntentID, pay)
	if errors.Is(err, domain.ErrConflict) {
		s.log.WithFields(fields).Warn("payment intent applied concurrently")
		return nil
	}
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"bookingId": b.ID,
		"amount":    ev.AmountCents,
		"status":    pay.Status,
	}).Info("payment recorded")
	return nil
}
