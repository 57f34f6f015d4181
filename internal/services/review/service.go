// Package review records customer reviews and keeps vendor ratings in step.
package review

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/core/policy"
	"github.com/shreyas2228/momentcraftres/internal/models"
)

type Service interface {
	Create(ctx context.Context, p domain.Principal, bookingID string, in models.CreateReviewInput) (*domain.Review, error)
	ListByVendor(ctx context.Context, vendorID string) ([]domain.Review, error)
}

type service struct {
	store *domain.Store
	v     *validator.Validate
}

func NewService(store *domain.Store) Service {
	return &service{store: store, v: domain.NewValidator()}
}

// Create reviews a completed booking. The review insert and the vendor's new
// average rating commit in one transaction.
func (s *service) Create(ctx context.Context, p domain.Principal, bookingID string, in models.CreateReviewInput) (*domain.Review, error) {
	b, err := s.store.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := policy.Booking(p, policy.ActionReview, policy.BookingFacts{UserID: b.UserID, VendorID: b.VendorID}); err != nil {
		return nil, err
	}
	if b.Status != domain.BookingCompleted {
		return nil, domain.Precondition("only completed bookings can be reviewed, booking is %s", b.Status)
	}

	r := &domain.Review{
		VendorID:  b.VendorID,
		BookingID: b.ID,
		UserID:    p.ID,
		Rating:    in.Rating,
		Comment:   strings.TrimSpace(in.Comment),
	}
	if u, err := s.store.Users.GetByID(ctx, p.ID); err == nil {
		r.UserName = u.Name
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if err := domain.Check(s.v, r); err != nil {
		return nil, err
	}

	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.store.Reviews.Create(ctx, r); err != nil {
			return err
		}
		avg, n, err := s.store.Reviews.AverageRating(ctx, b.VendorID)
		if err != nil {
			return err
		}
		var rating *float64
		if n > 0 {
			v := domain.RoundRating(avg)
			rating = &v
		}
		return s.store.Vendors.SetRating(ctx, b.VendorID, rating)
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *service) ListByVendor(ctx context.Context, vendorID string) ([]domain.Review, error) {
	if _, err := s.store.Vendors.GetByID(ctx, vendorID); err != nil {
		return nil, err
	}
	reviews, err := s.store.Reviews.ListByVendor(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	return reviews, nil
}
