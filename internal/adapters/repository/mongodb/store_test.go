package mongodb

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

func TestMalformedIDReadsAsNotFound(t *testing.T) {
	_, err := oid("not-hex", "vendor")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	o := primitive.NewObjectID()
	got, err := oid(o.Hex(), "vendor")
	require.NoError(t, err)
	assert.Equal(t, o, got)
	assert.Equal(t, "", hex(primitive.NilObjectID))
}

func TestMapErr(t *testing.T) {
	assert.NoError(t, mapErr(nil, "x"))
	assert.True(t, errors.Is(mapErr(mongo.ErrNoDocuments, "vendor %s", "1"), domain.ErrNotFound))
	assert.True(t, errors.Is(mapErr(errors.New("socket closed"), "list"), domain.ErrUpstream))

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	assert.True(t, errors.Is(mapErr(dup, "vendor"), domain.ErrConflict))

	tagged := domain.Precondition("nope")
	assert.Same(t, tagged, mapErr(tagged, "x"))
}

func TestVendorFilter(t *testing.T) {
	f := vendorFilter(domain.VendorFilter{ServiceType: domain.ServiceVenue, Status: domain.VendorApproved, Search: "a.b"})
	assert.Equal(t, domain.ServiceVenue, f["serviceType"])
	assert.Equal(t, domain.VendorApproved, f["status"])
	assert.Equal(t, bson.M{"$regex": `a\.b`, "$options": "i"}, f["businessName"])
	assert.Empty(t, vendorFilter(domain.VendorFilter{}))
}

func TestSortDoc(t *testing.T) {
	d := sortDoc(domain.ListQuery{Sort: "-rating"}, vendorSortFields, "-createdAt")
	assert.Equal(t, bson.D{{Key: "rating", Value: -1}, {Key: "_id", Value: -1}}, d)

	d = sortDoc(domain.ListQuery{Sort: "password"}, userSortFields, "-createdAt")
	assert.Equal(t, "createdAt", d[0].Key)
}

func TestBookingDocNormalizesEventDate(t *testing.T) {
	b := &domain.Booking{
		ID:        primitive.NewObjectID().Hex(),
		UserID:    primitive.NewObjectID().Hex(),
		VendorID:  primitive.NewObjectID().Hex(),
		EventDate: time.Date(2024, 6, 1, 18, 30, 0, 0, time.UTC),
		Status:    domain.BookingPending,
	}
	doc := toBookingDoc(b)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), doc.EventDate)

	back := doc.toDomain()
	assert.Equal(t, b.ID, back.ID)
	assert.Equal(t, b.VendorID, back.VendorID)
}

// Runs against a real replica set when MONGODB_TEST_URI is set, e.g.
// mongodb://localhost:27017/?replicaSet=rs0
func TestStoreAgainstMongo(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	dbName := "momentcraft_test_" + primitive.NewObjectID().Hex()
	s, err := Connect(ctx, uri, dbName)
	require.NoError(t, err)
	defer func() {
		_ = s.Database().Drop(ctx)
		_ = s.Domain().Close(ctx)
	}()
	store := s.Domain()

	u := &domain.User{Name: "Una", Email: "una@example.com", Role: domain.RoleUser}
	require.NoError(t, store.Users.Create(ctx, u))
	err = store.Users.Create(ctx, &domain.User{Name: "Una", Email: "UNA@example.com", Role: domain.RoleUser})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	v := &domain.Vendor{UserID: u.ID, BusinessName: "Acme Photos", Status: domain.VendorPending}
	require.NoError(t, store.Vendors.Create(ctx, v))
	err = store.Vendors.Create(ctx, &domain.Vendor{UserID: u.ID, BusinessName: "Again"})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	day := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	b := &domain.Booking{UserID: u.ID, VendorID: v.ID, EventDate: day, Status: domain.BookingPending}
	require.NoError(t, store.Bookings.Create(ctx, b))
	err = store.Bookings.Create(ctx, &domain.Booking{UserID: u.ID, VendorID: v.ID, EventDate: day.Add(5 * time.Hour)})
	assert.True(t, errors.Is(err, domain.ErrConflict))

	err = store.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := store.Vendors.SetStatus(ctx, v.ID, domain.VendorApproved); err != nil {
			return err
		}
		return errors.New("abort")
	})
	require.Error(t, err)
	got, err := store.Vendors.GetByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.VendorPending, got.Status)

	// A profile write from a stale copy keeps the status set in between.
	stale := *got
	require.NoError(t, store.Vendors.SetStatus(ctx, v.ID, domain.VendorApproved))
	stale.Photo = "/uploads/photo_" + v.ID + ".jpg"
	require.NoError(t, store.Vendors.Update(ctx, &stale))
	assert.Equal(t, domain.VendorApproved, stale.Status)
	assert.Equal(t, "/uploads/photo_"+v.ID+".jpg", stale.Photo)

	require.NoError(t, store.Bookings.SetPayment(ctx, b.ID, "", domain.Payment{Status: domain.PaymentUnpaid, IntentID: "pi_1"}))
	err = store.Bookings.SetPayment(ctx, b.ID, "", domain.Payment{Status: domain.PaymentUnpaid, IntentID: "pi_2"})
	assert.True(t, errors.Is(err, domain.ErrConflict))
	require.NoError(t, store.Bookings.SetPayment(ctx, b.ID, "pi_1", domain.Payment{AmountPaid: 10, Status: domain.PaymentPartial}))
	paid, err := store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 10.0, paid.AmountPaid)
	assert.Empty(t, paid.PaymentIntentID)

	n, err := store.Bookings.DeleteByVendor(ctx, v.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
