package postgres

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

func TestParseID(t *testing.T) {
	_, err := parseID("42", "booking")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	id := uuid.New()
	got, err := parseID(id.String(), "booking")
	require.NoError(t, err)
	assert.Equal(t, id, got)
	assert.Equal(t, uuid.Nil, ref("nope"))
	assert.Equal(t, "", str(uuid.Nil))
}

func TestMapErr(t *testing.T) {
	assert.True(t, errors.Is(mapErr(gorm.ErrRecordNotFound, "vendor"), domain.ErrNotFound))
	assert.True(t, errors.Is(mapErr(gorm.ErrDuplicatedKey, "vendor"), domain.ErrConflict))
	assert.True(t, errors.Is(mapErr(errors.New("conn refused"), "vendor"), domain.ErrUpstream))
}

func TestOrderBy(t *testing.T) {
	assert.Equal(t, "business_name ASC, id ASC", orderBy(domain.ListQuery{Sort: "businessName"}, vendorColumns, "-createdAt"))
	assert.Equal(t, "created_at DESC, id DESC", orderBy(domain.ListQuery{Sort: "password"}, vendorColumns, "-createdAt"))
	assert.Equal(t, "rating DESC, id DESC", orderBy(domain.ListQuery{Sort: "-rating"}, vendorColumns, "-createdAt"))
}

func TestEscapeLike(t *testing.T) {
	assert.Equal(t, `100\%\_off\\`, escapeLike(`100%_off\`))
}

// Runs against a scratch database when POSTGRES_TEST_DSN is set.
func TestStoreAgainstPostgres(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.db.Exec("TRUNCATE reviews, bookings, vendors, users")
		_ = s.Close(context.Background())
	})
	store := s.Domain()

	u := &domain.User{Name: "Una", Email: "una-" + uuid.NewString() + "@example.com", Role: domain.RoleUser}
	require.NoError(t, store.Users.Create(ctx, u))
	_, err = uuid.Parse(u.ID)
	require.NoError(t, err)

	v := &domain.Vendor{UserID: u.ID, BusinessName: "Acme Photos", ServiceType: domain.ServicePhotographer,
		Status: domain.VendorPending, Pricing: []domain.PricingPackage{{PackageName: "Basic", Price: 500}}}
	require.NoError(t, store.Vendors.Create(ctx, v))
	err = store.Vendors.Create(ctx, &domain.Vendor{UserID: u.ID, BusinessName: "Again", Status: domain.VendorPending})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	got, err := store.Vendors.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Pricing, got.Pricing)

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	b := &domain.Booking{UserID: u.ID, VendorID: v.ID, ServiceType: "photo", Location: "Hall", Guests: 1,
		EventDate: day, Status: domain.BookingPending, PaymentStatus: domain.PaymentUnpaid}
	require.NoError(t, store.Bookings.Create(ctx, b))
	dup := *b
	dup.ID = ""
	err = store.Bookings.Create(ctx, &dup)
	assert.True(t, errors.Is(err, domain.ErrConflict))

	require.NoError(t, store.Vendors.SetStatus(ctx, v.ID, domain.VendorApproved))
	got.Photo = "/uploads/photo.jpg"
	require.NoError(t, store.Vendors.Update(ctx, got))
	assert.Equal(t, domain.VendorApproved, got.Status)
	assert.Equal(t, "/uploads/photo.jpg", got.Photo)

	require.NoError(t, store.Bookings.SetPayment(ctx, b.ID, "", domain.Payment{Status: domain.PaymentUnpaid, IntentID: "pi_1"}))
	err = store.Bookings.SetPayment(ctx, b.ID, "", domain.Payment{Status: domain.PaymentUnpaid, IntentID: "pi_2"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	b.Status = domain.BookingConfirmed
	require.NoError(t, store.Bookings.Update(ctx, b))
	assert.Equal(t, "pi_1", b.PaymentIntentID)

	err = store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if _, err := store.Bookings.DeleteByVendor(ctx, v.ID); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)
	left, err := store.Bookings.List(ctx, domain.BookingFilter{VendorID: v.ID})
	require.NoError(t, err)
	assert.Len(t, left, 1)
}
