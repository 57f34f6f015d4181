// Package booking implements the booking lifecycle: creation against approved
// vendors, role-scoped reads, guarded updates and deletion.
package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/core/policy"
	"github.com/shreyas2228/momentcraftres/internal/models"
	"github.com/shreyas2228/momentcraftres/utils"
)

type Service interface {
	Create(ctx context.Context, p domain.Principal, in models.CreateBookingInput) (*domain.Booking, error)
	Get(ctx context.Context, p domain.Principal, id string) (*models.BookingView, error)
	List(ctx context.Context, p domain.Principal, q models.BookingQuery) ([]models.BookingView, error)
	Update(ctx context.Context, p domain.Principal, id string, in models.UpdateBookingInput) (*domain.Booking, error)
	Delete(ctx context.Context, p domain.Principal, id string) error
}

type service struct {
	store *domain.Store
	v     *validator.Validate
}

func NewService(store *domain.Store) Service {
	return &service{store: store, v: domain.NewValidator()}
}

func facts(b *domain.Booking) policy.BookingFacts {
	return policy.BookingFacts{UserID: b.UserID, VendorID: b.VendorID}
}

func (s *service) Create(ctx context.Context, p domain.Principal, in models.CreateBookingInput) (*domain.Booking, error) {
	if err := policy.Booking(p, policy.ActionCreate, policy.BookingFacts{}); err != nil {
		return nil, err
	}

	vendor, err := s.store.Vendors.GetByID(ctx, in.Vendor)
	if err != nil {
		return nil, err
	}
	if vendor.Status != domain.VendorApproved {
		return nil, domain.Precondition("vendor %s is not approved for bookings", vendor.ID)
	}

	date, err := utils.ParseDate(in.EventDate)
	if err != nil {
		return nil, domain.Validation("%v", err)
	}
	if in.Price == nil {
		return nil, domain.Validation("validation failed: price is required")
	}

	b := &domain.Booking{
		UserID:          p.ID,
		VendorID:        vendor.ID,
		ServiceType:     strings.TrimSpace(in.ServiceType),
		EventDate:       domain.EventDay(date),
		Location:        in.Location,
		Guests:          in.Guests,
		SpecialRequests: in.SpecialRequests,
		Status:          domain.BookingPending,
		Price:           *in.Price,
		PaymentStatus:   domain.PaymentUnpaid,
	}
	if err := domain.Check(s.v, b); err != nil {
		return nil, err
	}
	if err := s.store.Bookings.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Get(ctx context.Context, p domain.Principal, id string) (*models.BookingView, error) {
	b, err := s.store.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Booking(p, policy.ActionRead, facts(b)); err != nil {
		return nil, err
	}
	views, err := s.resolve(ctx, []domain.Booking{*b})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// List scopes the result by role: vendors see their vendor's bookings, users
// their own, admins everything (optionally narrowed by the query).
func (s *service) List(ctx context.Context, p domain.Principal, q models.BookingQuery) ([]models.BookingView, error) {
	var filter domain.BookingFilter
	switch {
	case p.IsAdmin():
		filter = domain.BookingFilter{UserID: q.User, VendorID: q.Vendor}
	case p.Role == domain.RoleVendor:
		if p.VendorID == "" {
			return []models.BookingView{}, nil
		}
		filter = domain.BookingFilter{VendorID: p.VendorID}
	default:
		filter = domain.BookingFilter{UserID: p.ID}
	}

	bookings, err := s.store.Bookings.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	return s.resolve(ctx, bookings)
}

func (s *service) resolve(ctx context.Context, bookings []domain.Booking) ([]models.BookingView, error) {
	userIDs := make([]string, 0, len(bookings))
	for _, b := range bookings {
		userIDs = append(userIDs, b.UserID)
	}
	users, err := s.store.Users.GetMany(ctx, userIDs)
	if err != nil {
		return nil, err
	}

	vendors := map[string]*domain.VendorSummary{}
	views := make([]models.BookingView, 0, len(bookings))
	for _, b := range bookings {
		vs, seen := vendors[b.VendorID]
		if !seen {
			v, err := s.store.Vendors.GetByID(ctx, b.VendorID)
			if err != nil && !errors.Is(err, domain.ErrNotFound) {
				return nil, err
			}
			vs = v.Summary()
			vendors[b.VendorID] = vs
		}
		views = append(views, models.BookingView{
			Booking: b,
			User:    users[b.UserID].Summary(),
			Vendor:  vs,
		})
	}
	return views, nil
}

func (s *service) Update(ctx context.Context, p domain.Principal, id string, in models.UpdateBookingInput) (*domain.Booking, error) {
	b, err := s.store.Bookings.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := policy.Booking(p, policy.ActionUpdate, facts(b)); err != nil {
		return nil, err
	}
	if err := policy.BookingUpdateFields(p, in.Fields()); err != nil {
		return nil, err
	}

	if in.Status != nil {
		next := *in.Status
		if !next.Valid() {
			return nil, domain.Validation("validation failed: status must be one of: pending, confirmed, completed, cancelled")
		}
		if !b.Status.CanTransition(next) {
			return nil, domain.Precondition("booking cannot move from %s to %s", b.Status, next)
		}
		b.Status = next
	}
	var pay *domain.Payment
	if in.PaymentStatus != nil {
		if !in.PaymentStatus.Valid() {
			return nil, domain.Validation("validation failed: paymentStatus must be one of: unpaid, partial, paid")
		}
		b.PaymentStatus = *in.PaymentStatus
		pay = &domain.Payment{AmountPaid: b.AmountPaid, Status: b.PaymentStatus, IntentID: b.PaymentIntentID}
	}
	if in.EventDate != nil {
		date, err := utils.ParseDate(*in.EventDate)
		if err != nil {
			return nil, domain.Validation("%v", err)
		}
		b.EventDate = domain.EventDay(date)
	}
	if in.ServiceType != nil {
		b.ServiceType = strings.TrimSpace(*in.ServiceType)
	}
	if in.Location != nil {
		b.Location = *in.Location
	}
	if in.Guests != nil {
		b.Guests = *in.Guests
	}
	if in.SpecialRequests != nil {
		b.SpecialRequests = *in.SpecialRequests
	}
	if in.Price != nil {
		b.Price = *in.Price
	}

	if err := domain.Check(s.v, b); err != nil {
		return nil, err
	}
	// a payment recorded since the read moves the intent id and fails SetPayment
	err = s.store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if pay != nil {
			if err := s.store.Bookings.SetPayment(ctx, b.ID, pay.IntentID, *pay); err != nil {
				return err
			}
		}
		return s.store.Bookings.Update(ctx, b)
	})
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, p domain.Principal, id string) error {
	b, err := s.store.Bookings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := policy.Booking(p, policy.ActionDelete, facts(b)); err != nil {
		return err
	}
	return s.store.Bookings.Delete(ctx, id)
}
