package payments

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v81/webhook"

	"github.com/shreyas2228/momentcraftres/internal/core/domain"
)

const whsec = "whsec_test"

func signed(t *testing.T, payload string) *webhook.SignedPayload {
	t.Helper()
	return webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    whsec,
		Timestamp: time.Now(),
	})
}

func TestParseWebhookSucceeded(t *testing.T) {
	s := NewStripe("sk_test", whsec)
	p := signed(t, `{
		"id": "evt_1", "object": "event", "type": "payment_intent.succeeded",
		"data": {"object": {"id": "pi_1", "object": "payment_intent", "amount_received": 20000,
			"metadata": {"bookingId": "b1"}}}
	}`)

	ev, err := s.ParseWebhook(p.Payload, p.Header)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentSucceeded, ev.Type)
	assert.Equal(t, "pi_1", ev.IntentID)
	assert.Equal(t, "b1", ev.BookingID)
	assert.EqualValues(t, 20000, ev.AmountCents)
}

func TestParseWebhookOtherEvent(t *testing.T) {
	s := NewStripe("sk_test", whsec)
	p := signed(t, `{"id": "evt_2", "object": "event", "type": "charge.refunded", "data": {"object": {}}}`)

	ev, err := s.ParseWebhook(p.Payload, p.Header)
	require.NoError(t, err)
	assert.Equal(t, "charge.refunded", ev.Type)
	assert.Empty(t, ev.BookingID)
}

func TestParseWebhookRejectsBadSignature(t *testing.T) {
	s := NewStripe("sk_test", "whsec_other")
	p := signed(t, `{"id": "evt_3", "object": "event", "type": "payment_intent.succeeded", "data": {"object": {}}}`)

	_, err := s.ParseWebhook(p.Payload, p.Header)
	assert.Error(t, err)
}
