package booking

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyas2228/momentcraftres/internal/adapters/repository/memory"
	"github.com/shreyas2228/momentcraftres/internal/core/domain"
	"github.com/shreyas2228/momentcraftres/internal/models"
)

type fixture struct {
	store    *domain.Store
	svc      Service
	vendor   *domain.Vendor
	owner    domain.Principal // vendor principal
	customer domain.Principal
	admin    domain.Principal
}

func setup(t *testing.T, status domain.VendorStatus) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memory.New().Domain()

	vu := &domain.User{Name: "Una", Email: "una@example.com", Role: domain.RoleVendor}
	require.NoError(t, store.Users.Create(ctx, vu))
	cu := &domain.User{Name: "Cal", Email: "cal@example.com", Role: domain.RoleUser}
	require.NoError(t, store.Users.Create(ctx, cu))

	v := &domain.Vendor{UserID: vu.ID, BusinessName: "Acme Photos", ServiceType: domain.ServicePhotographer, Status: status}
	require.NoError(t, store.Vendors.Create(ctx, v))

	return &fixture{
		store:    store,
		svc:      NewService(store),
		vendor:   v,
		owner:    domain.Principal{ID: vu.ID, Role: domain.RoleVendor, VendorID: v.ID},
		customer: domain.Principal{ID: cu.ID, Role: domain.RoleUser},
		admin:    domain.Principal{ID: "root", Role: domain.RoleAdmin},
	}
}

func price(p float64) *float64 { return &p }

func (f *fixture) input(date string) models.CreateBookingInput {
	return models.CreateBookingInput{
		Vendor:      f.vendor.ID,
		ServiceType: "photography",
		EventDate:   date,
		Location:    "Town Hall",
		Guests:      50,
		Price:       price(500),
	}
}

func TestCreateBindsCaller(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	b, err := f.svc.Create(context.Background(), f.customer, f.input("2024-06-01"))
	require.NoError(t, err)
	assert.Equal(t, f.customer.ID, b.UserID)
	assert.Equal(t, domain.BookingPending, b.Status)
	assert.Equal(t, domain.PaymentUnpaid, b.PaymentStatus)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), b.EventDate)
}

func TestCreateInputCannotCarryUser(t *testing.T) {
	var in models.CreateBookingInput
	require.NoError(t, json.Unmarshal([]byte(`{"user":"someone-else","vendor":"v1"}`), &in))
	assert.Equal(t, "v1", in.Vendor)
}

func TestSameVendorSameDayConflicts(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
	require.NoError(t, err)

	// a different user and a different time of the same day
	_, err = f.svc.Create(ctx, f.admin, f.input("2024-06-01T17:00:00Z"))
	assert.True(t, errors.Is(err, domain.ErrConflict))

	_, err = f.svc.Create(ctx, f.customer, f.input("2024-06-02"))
	assert.NoError(t, err)
}

func TestCreateNeedsApprovedVendor(t *testing.T) {
	for _, status := range []domain.VendorStatus{domain.VendorPending, domain.VendorRejected} {
		f := setup(t, status)
		_, err := f.svc.Create(context.Background(), f.customer, f.input("2024-06-01"))
		assert.True(t, errors.Is(err, domain.ErrPrecondition), "%s: %v", status, err)
	}

	f := setup(t, domain.VendorApproved)
	in := f.input("2024-06-01")
	in.Vendor = "missing"
	_, err := f.svc.Create(context.Background(), f.customer, in)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreateRejectsVendorsAndBadInput(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, f.owner, f.input("2024-06-01"))
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	_, err = f.svc.Create(ctx, f.customer, f.input("first of june"))
	assert.True(t, errors.Is(err, domain.ErrValidation))

	in := f.input("2024-06-01")
	in.Guests = 0
	_, err = f.svc.Create(ctx, f.customer, in)
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestReadIsScopedByRole(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
	require.NoError(t, err)

	for _, p := range []domain.Principal{f.customer, f.owner, f.admin} {
		view, err := f.svc.Get(ctx, p, b.ID)
		require.NoError(t, err)
		assert.Equal(t, "Cal", view.User.Name)
		assert.Equal(t, "Acme Photos", view.Vendor.BusinessName)
	}

	stranger := domain.Principal{ID: "someone", Role: domain.RoleUser}
	_, err = f.svc.Get(ctx, stranger, b.ID)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	mine, err := f.svc.List(ctx, stranger, models.BookingQuery{})
	require.NoError(t, err)
	assert.Empty(t, mine)

	mine, err = f.svc.List(ctx, f.owner, models.BookingQuery{User: "ignored"})
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := f.svc.List(ctx, f.admin, models.BookingQuery{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	none, err := f.svc.List(ctx, f.admin, models.BookingQuery{User: "someone"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func status(s domain.BookingStatus) *domain.BookingStatus { return &s }

func TestVendorMayOnlyChangeStatus(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
	require.NoError(t, err)

	got, err := f.svc.Update(ctx, f.owner, b.ID, models.UpdateBookingInput{Status: status(domain.BookingConfirmed)})
	require.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, got.Status)

	_, err = f.svc.Update(ctx, f.owner, b.ID, models.UpdateBookingInput{Status: status(domain.BookingConfirmed), Price: price(600)})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	stored, err := f.store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 500.0, stored.Price)
}

func TestOwnerUpdates(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
	require.NoError(t, err)

	guests := 80
	day := "2024-07-04"
	got, err := f.svc.Update(ctx, f.customer, b.ID, models.UpdateBookingInput{Guests: &guests, EventDate: &day, Price: price(650)})
	require.NoError(t, err)
	assert.Equal(t, 80, got.Guests)
	assert.Equal(t, 650.0, got.Price)
	assert.Equal(t, time.Date(2024, 7, 4, 0, 0, 0, 0, time.UTC), got.EventDate)

	bad := domain.PaymentStatus("refunded")
	_, err = f.svc.Update(ctx, f.customer, b.ID, models.UpdateBookingInput{PaymentStatus: &bad})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	_, err = f.svc.Update(ctx, f.customer, b.ID, models.UpdateBookingInput{Status: status("archived")})
	assert.True(t, errors.Is(err, domain.ErrValidation))

	zero := 0
	_, err = f.svc.Update(ctx, f.customer, b.ID, models.UpdateBookingInput{Guests: &zero})
	assert.True(t, errors.Is(err, domain.ErrValidation))
}

func TestStatusTransitions(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.owner, b.ID, models.UpdateBookingInput{Status: status(domain.BookingCompleted)})
	assert.True(t, errors.Is(err, domain.ErrPrecondition), "pending cannot complete")

	_, err = f.svc.Update(ctx, f.owner, b.ID, models.UpdateBookingInput{Status: status(domain.BookingCancelled)})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, f.admin, b.ID, models.UpdateBookingInput{Status: status(domain.BookingPending)})
	assert.True(t, errors.Is(err, domain.ErrPrecondition), "cancelled is terminal")
}

func TestMovingOntoTakenDateConflicts(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
	require.NoError(t, err)
	b, err := f.svc.Create(ctx, f.customer, f.input("2024-06-02"))
	require.NoError(t, err)

	day := "2024-06-01"
	_, err = f.svc.Update(ctx, f.customer, b.ID, models.UpdateBookingInput{EventDate: &day})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestDeleteExcludesVendor(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
	require.NoError(t, err)

	err = f.svc.Delete(ctx, f.owner, b.ID)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	require.NoError(t, f.svc.Delete(ctx, f.customer, b.ID))
	err = f.svc.Delete(ctx, f.customer, b.ID)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestUpdateErrorMessagesNameTheField(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
	require.NoError(t, err)

	neg := -5.0
	_, err = f.svc.Update(ctx, f.customer, b.ID, models.UpdateBookingInput{Price: &neg})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "price"), err.Error())
}

func TestParallelCreatesForOneSlotAdmitOne(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()

	const n = 16
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, domain.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, n-1, conflicts)

	all, err := f.store.Bookings.List(ctx, domain.BookingFilter{VendorID: f.vendor.ID})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

// payingBookings records a gateway payment right after a booking is read.
type payingBookings struct {
	domain.BookingRepository
}

func (r payingBookings) GetByID(ctx context.Context, id string) (*domain.Booking, error) {
	b, err := r.BookingRepository.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return b, r.BookingRepository.SetPayment(ctx, id, b.PaymentIntentID, domain.Payment{AmountPaid: 100, Status: domain.PaymentPartial})
}

func TestPaymentStatusEdits(t *testing.T) {
	f := setup(t, domain.VendorApproved)
	ctx := context.Background()
	b, err := f.svc.Create(ctx, f.customer, f.input("2024-06-01"))
	require.NoError(t, err)

	paid := domain.PaymentPaid
	got, err := f.svc.Update(ctx, f.customer, b.ID, models.UpdateBookingInput{PaymentStatus: &paid})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)

	// a payment landing between read and write wins over the manual edit
	require.NoError(t, f.store.Bookings.SetPayment(ctx, b.ID, "", domain.Payment{Status: domain.PaymentUnpaid, IntentID: "pi_1"}))
	racing := *f.store
	racing.Bookings = payingBookings{f.store.Bookings}
	unpaid := domain.PaymentUnpaid
	_, err = NewService(&racing).Update(ctx, f.customer, b.ID, models.UpdateBookingInput{PaymentStatus: &unpaid})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	stored, err := f.store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartial, stored.PaymentStatus)
	assert.Equal(t, 100.0, stored.AmountPaid)

	// edits without a paymentStatus keep the recorded payment
	guests := 60
	got, err = f.svc.Update(ctx, f.customer, b.ID, models.UpdateBookingInput{Guests: &guests})
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartial, got.PaymentStatus)
	assert.Equal(t, 100.0, got.AmountPaid)
}
