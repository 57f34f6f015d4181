package payment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shreyas2228/momentcraftres/internal/adapters/repository/memory"
	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

type fakeGateway struct {
	amounts []int64
	event   *domain.PaymentEvent
	err     error
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, md map[string]string) (*domain.PaymentIntent, error) {
	if g.err != nil {
		return nil, g.err
	}
	g.amounts = append(g.amounts, amount)
	return &domain.PaymentIntent{ID: "pi_" + md["bookingId"], ClientSecret: "secret", Amount: amount, Currency: "usd"}, nil
}

func (g *fakeGateway) ParseWebhook(payload []byte, sig string) (*domain.PaymentEvent, error) {
	if sig != "ok" {
		return nil, errors.New("bad signature")
	}
	return g.event, nil
}

func setup(t *testing.T) (*domain.Store, *fakeGateway, Service, *domain.Booking) {
	t.Helper()
	store := memory.New().Domain()
	gw := &fakeGateway{}
	log, _ := test.NewNullLogger()

	b := &domain.Booking{
		UserID: "cal", VendorID: "acme", EventDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Status: domain.BookingConfirmed, Price: 500, PaymentStatus: domain.PaymentUnpaid,
	}
	require.NoError(t, store.Bookings.Create(context.Background(), b))
	return store, gw, NewService(store, gw, log), b
}

var cal = domain.Principal{ID: "cal", Role: domain.RoleUser}

func TestPartialThenFullPayment(t *testing.T) {
	store, gw, svc, b := setup(t)
	ctx := context.Background()

	resp, err := svc.CreateIntent(ctx, cal, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 50000, resp.Intent.Amount)

	gw.event = &domain.PaymentEvent{Type: domain.PaymentSucceeded, IntentID: resp.Intent.ID, BookingID: b.ID, AmountCents: 20000}
	require.NoError(t, svc.HandleWebhook(ctx, nil, "ok"))
	got, err := store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPartial, got.PaymentStatus)
	assert.Equal(t, 200.0, got.AmountPaid)

	// redelivery is ignored
	require.NoError(t, svc.HandleWebhook(ctx, nil, "ok"))
	got, err = store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.AmountPaid)

	resp, err = svc.CreateIntent(ctx, cal, b.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 30000, resp.Intent.Amount, "only the outstanding amount")

	gw.event = &domain.PaymentEvent{Type: domain.PaymentSucceeded, IntentID: resp.Intent.ID, BookingID: b.ID, AmountCents: 30000}
	require.NoError(t, svc.HandleWebhook(ctx, nil, "ok"))
	got, err = store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, got.PaymentStatus)

	_, err = svc.CreateIntent(ctx, cal, b.ID)
	assert.True(t, errors.Is(err, domain.ErrPrecondition))
}

func TestCreateIntentRules(t *testing.T) {
	store, gw, svc, b := setup(t)
	ctx := context.Background()

	_, err := svc.CreateIntent(ctx, domain.Principal{ID: "acme-owner", Role: domain.RoleVendor, VendorID: "acme"}, b.ID)
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))

	gw.err = errors.New("stripe down")
	_, err = svc.CreateIntent(ctx, cal, b.ID)
	assert.True(t, errors.Is(err, domain.ErrUpstream))

	b.Status = domain.BookingCancelled
	require.NoError(t, store.Bookings.Update(ctx, b))
	_, err = svc.CreateIntent(ctx, cal, b.ID)
	assert.True(t, errors.Is(err, domain.ErrPrecondition))

	log, _ := test.NewNullLogger()
	_, err = NewService(store, nil, log).CreateIntent(ctx, cal, b.ID)
	assert.True(t, errors.Is(err, domain.ErrPrecondition))
}

func TestWebhookSignatureAndEventType(t *testing.T) {
	_, gw, svc, b := setup(t)
	ctx := context.Background()

	err := svc.HandleWebhook(ctx, nil, "forged")
	assert.True(t, errors.Is(err, domain.ErrValidation))

	gw.event = &domain.PaymentEvent{Type: "payment_intent.created", BookingID: b.ID}
	assert.NoError(t, svc.HandleWebhook(ctx, nil, "ok"))
}

func TestBookingEditsKeepRecordedPayment(t *testing.T) {
	store, gw, svc, b := setup(t)
	ctx := context.Background()

	resp, err := svc.CreateIntent(ctx, cal, b.ID)
	require.NoError(t, err)
	stale, err := store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)

	gw.event = &domain.PaymentEvent{Type: domain.PaymentSucceeded, IntentID: resp.Intent.ID, BookingID: b.ID, AmountCents: 20000}
	require.NoError(t, svc.HandleWebhook(ctx, nil, "ok"))

	stale.Status = domain.BookingCompleted
	require.NoError(t, store.Bookings.Update(ctx, stale))

	got, err := store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.BookingCompleted, got.Status)
	assert.Equal(t, 200.0, got.AmountPaid)
	assert.Empty(t, got.PaymentIntentID)

	// the cleared intent cannot be replayed by a later write
	err = store.Bookings.SetPayment(ctx, b.ID, resp.Intent.ID, domain.Payment{AmountPaid: 400, Status: domain.PaymentPartial})
	assert.True(t, errors.Is(err, domain.ErrConflict))
}

func TestConcurrentWebhookDeliveriesApplyOnce(t *testing.T) {
	store, gw, svc, b := setup(t)
	ctx := context.Background()

	resp, err := svc.CreateIntent(ctx, cal, b.ID)
	require.NoError(t, err)
	gw.event = &domain.PaymentEvent{Type: domain.PaymentSucceeded, IntentID: resp.Intent.ID, BookingID: b.ID, AmountCents: 20000}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.HandleWebhook(ctx, nil, "ok"))
		}()
	}
	wg.Wait()

	got, err := store.Bookings.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, got.AmountPaid)
	assert.Equal(t, domain.PaymentPartial, got.PaymentStatus)
}
